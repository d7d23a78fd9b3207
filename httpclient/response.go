package httpclient

import (
	"net/http"

	json "github.com/goccy/go-json"
)

// Response is the raw result of a single request before classification.
//
// The body is read completely before the call returns, so a Response never
// holds an open connection.
type Response struct {
	// StatusCode is the HTTP status code.
	StatusCode int

	// Header holds the response headers.
	Header http.Header

	// Body is the response body exactly as received.
	Body []byte
}

// IsSuccess returns true if the status code is in [200, 300).
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// String returns the body as a string.
func (r *Response) String() string {
	return string(r.Body)
}

// JSON decodes the body as a generic structured value.
func (r *Response) JSON() (any, error) {
	if len(r.Body) == 0 {
		return nil, nil
	}
	var v any
	if err := json.Unmarshal(r.Body, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// Decode stores the body into target.
//
// *[]byte, *json.RawMessage and *string targets receive the body unmodified. Any other target
// is decoded as JSON without validating its shape; an empty body leaves the
// target untouched.
func (r *Response) Decode(target any) error {
	switch t := target.(type) {
	case *[]byte:
		*t = r.Body
		return nil
	case *json.RawMessage:
		*t = r.Body
		return nil
	case *string:
		*t = string(r.Body)
		return nil
	}

	if len(r.Body) == 0 {
		return nil
	}
	return json.Unmarshal(r.Body, target)
}

// errorMessage returns the top-level "message" field of a JSON object body,
// or "Request failed" when the body is not an object or has no such string.
// Nested or array-shaped error bodies are not inspected.
func (r *Response) errorMessage() string {
	var obj map[string]any
	if err := json.Unmarshal(r.Body, &obj); err != nil {
		return defaultErrorMessage
	}
	if msg, ok := obj["message"].(string); ok && msg != "" {
		return msg
	}
	return defaultErrorMessage
}
