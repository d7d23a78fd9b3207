package httpclient

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// redactedHeaders are never written to debug logs.
var redactedHeaders = map[string]bool{
	"Authorization": true,
	"Cookie":        true,
}

// logRequest logs the request details using zerolog.
func logRequest(logger zerolog.Logger, req *http.Request) {
	headers := zerolog.Dict()
	for k, v := range req.Header {
		if redactedHeaders[k] {
			headers.Str(k, "***")
			continue
		}
		headers.Strs(k, v)
	}

	logger.Debug().
		Str("method", req.Method).
		Str("url", req.URL.String()).
		Dict("headers", headers).
		Msg("HTTP request")
}

// logResponse logs the response details using zerolog.
func logResponse(logger zerolog.Logger, req *http.Request, resp *http.Response, size int, duration time.Duration) {
	logger.Debug().
		Str("method", req.Method).
		Str("url", req.URL.String()).
		Int("status", resp.StatusCode).
		Int("body_size", size).
		Dur("duration", duration).
		Msg("HTTP response")
}
