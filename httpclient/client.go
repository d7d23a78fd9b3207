package httpclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Client performs GET and POST calls against a fixed base URL with one
// option-merging rule and one error contract.
//
// A Client holds no mutable state after New returns and is safe for
// concurrent use.
//
//	client := httpclient.New("https://engine.example.com/",
//	    httpclient.WithBearerToken(token),
//	)
//
//	resp, err := client.Get(ctx, "backend-wallet/get-all", nil)
type Client struct {
	// httpClient is the underlying HTTP client with the transport chain.
	httpClient *http.Client

	// base is the innermost RoundTripper of the chain.
	base http.RoundTripper

	// baseURL is normalized: it never ends with the one stripped slash.
	baseURL string

	// defaults are merged under every call's RequestOptions.
	defaults RequestOptions

	// headers are applied to every request before per-call headers.
	headers map[string]string

	requestIDHeader string

	logger zerolog.Logger
	debug  bool
}

// New creates a Client for baseURL.
//
// Exactly one trailing slash is stripped from baseURL. The default options
// are {JSON: true, Timeout: 10s} unless overridden with WithDefaultOptions.
//
// The transport chain is, from the outside in: OpenTelemetry instrumentation,
// rate limiting, circuit breaker, retry, base transport. The resilience
// layers are only installed when configured.
func New(baseURL string, opts ...Option) *Client {
	cfg := newConfig(opts...)

	base := cfg.baseTransport()

	rt := newRetryTransport(base, cfg)
	rt = newCircuitBreakerTransport(rt, cfg)
	rt = newRateLimitTransport(rt, cfg.rateLimit)
	rt = newOtelTransport(rt, cfg)

	headers := make(map[string]string, len(cfg.headers))
	for k, v := range cfg.headers {
		headers[k] = v
	}

	return &Client{
		// Deadlines are per call, see RequestOptions.Timeout.
		httpClient:      &http.Client{Transport: rt},
		base:            base,
		baseURL:         normalizeBaseURL(baseURL),
		defaults:        cfg.defaults,
		headers:         headers,
		requestIDHeader: cfg.requestIDHeader,
		logger:          cfg.logger,
		debug:           cfg.debug,
	}
}

// BaseURL returns the normalized base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// DefaultOptions returns the options every call starts from.
func (c *Client) DefaultOptions() RequestOptions {
	return c.defaults
}

// HTTP returns the underlying *http.Client, for libraries that need one.
func (c *Client) HTTP() *http.Client {
	return c.httpClient
}

// URL returns the request URL for endpoint.
//
// A "/" is prepended to endpoint unless it already starts with one; the
// result is the base URL followed by that path, with no other rewriting.
func (c *Client) URL(endpoint string) string {
	if strings.HasPrefix(endpoint, "/") {
		return c.baseURL + endpoint
	}
	return c.baseURL + "/" + endpoint
}

// Get performs a GET request. params become the query string.
//
// A 2xx response is returned as is. Every failure is a *ClientError.
func (c *Client) Get(
	ctx context.Context,
	endpoint string,
	params map[string]any,
	opts ...RequestOptions,
) (*Response, error) {
	return c.do(ctx, http.MethodGet, endpoint, params, opts)
}

// Post performs a POST request. data becomes the body, JSON encoded unless
// the effective JSON option is false, in which case it is form encoded.
//
// A 2xx response is returned as is. Every failure is a *ClientError.
func (c *Client) Post(
	ctx context.Context,
	endpoint string,
	data map[string]any,
	opts ...RequestOptions,
) (*Response, error) {
	return c.do(ctx, http.MethodPost, endpoint, data, opts)
}

// Get performs a GET request and decodes the 2xx body into T.
// The body's shape is not validated.
//
// Example:
//
//	type envelope struct {
//	    Result []Wallet `json:"result"`
//	}
//	res, err := httpclient.Get[envelope](ctx, client, "/backend-wallet/get-all", nil)
func Get[T any](
	ctx context.Context,
	c *Client,
	endpoint string,
	params map[string]any,
	opts ...RequestOptions,
) (T, error) {
	resp, err := c.Get(ctx, endpoint, params, opts...)
	return decodeAs[T](resp, err, http.MethodGet, endpoint)
}

// Post performs a POST request and decodes the 2xx body into T.
// The body's shape is not validated.
func Post[T any](
	ctx context.Context,
	c *Client,
	endpoint string,
	data map[string]any,
	opts ...RequestOptions,
) (T, error) {
	resp, err := c.Post(ctx, endpoint, data, opts...)
	return decodeAs[T](resp, err, http.MethodPost, endpoint)
}

// decodeAs finishes a generic call. Decode failures are transport-class
// failures and surface as a 500 *ClientError.
func decodeAs[T any](resp *Response, err error, method, endpoint string) (T, error) {
	var out T
	if err != nil {
		return out, err
	}
	if err := resp.Decode(&out); err != nil {
		return out, wrapError(fmt.Errorf("decode response: %w", err), method, endpoint)
	}
	return out, nil
}

// do runs one call: merge options, send, classify.
func (c *Client) do(
	ctx context.Context,
	method string,
	endpoint string,
	payload map[string]any,
	opts []RequestOptions,
) (*Response, error) {
	merged := c.defaults
	for _, o := range opts {
		merged = merged.Merge(o)
	}

	resp, err := c.send(ctx, method, endpoint, payload, merged)
	if err != nil {
		return nil, wrapError(err, method, endpoint)
	}

	if !resp.IsSuccess() {
		return nil, newResponseError(resp)
	}

	return resp, nil
}

// send issues the request and reads the whole response.
// It returns an error only when no response was received.
func (c *Client) send(
	ctx context.Context,
	method string,
	endpoint string,
	payload map[string]any,
	opts RequestOptions,
) (*Response, error) {
	if timeout := opts.EffectiveTimeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := c.newRequest(ctx, method, endpoint, payload, opts)
	if err != nil {
		return nil, err
	}

	if c.debug {
		logRequest(c.logger, req)
	}

	start := time.Now()

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, err
	}

	if c.debug {
		logResponse(c.logger, req, httpResp, len(body), time.Since(start))
	}

	return &Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Body:       body,
	}, nil
}

// newRequest builds the *http.Request for a call.
func (c *Client) newRequest(
	ctx context.Context,
	method string,
	endpoint string,
	payload map[string]any,
	opts RequestOptions,
) (*http.Request, error) {
	target := c.URL(endpoint)

	var (
		body        io.Reader
		contentType string
	)

	if method == http.MethodGet {
		if query := encodeQuery(payload); query != "" {
			sep := "?"
			if strings.Contains(target, "?") {
				sep = "&"
			}
			target += sep + query
		}
	} else {
		data, ct, err := encodeBody(payload, opts.IsJSON())
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(data)
		contentType = ct
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, err
	}

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if opts.IsJSON() {
		req.Header.Set("Accept", "application/json")
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	for k, v := range opts.Headers {
		req.Header.Set(k, v)
	}
	if opts.UserAgent != nil {
		req.Header.Set("User-Agent", *opts.UserAgent)
	}
	if c.requestIDHeader != "" && req.Header.Get(c.requestIDHeader) == "" {
		req.Header.Set(c.requestIDHeader, uuid.NewString())
	}

	return req, nil
}

// normalizeBaseURL strips exactly one trailing slash.
func normalizeBaseURL(baseURL string) string {
	return strings.TrimSuffix(baseURL, "/")
}

// encodeBody encodes a POST payload. A nil payload is an empty object.
func encodeBody(payload map[string]any, asJSON bool) ([]byte, string, error) {
	if asJSON {
		if payload == nil {
			payload = map[string]any{}
		}
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, "", err
		}
		return data, "application/json", nil
	}
	return []byte(formValues(payload).Encode()), "application/x-www-form-urlencoded", nil
}

// encodeQuery encodes GET params. Keys are sorted.
func encodeQuery(params map[string]any) string {
	if len(params) == 0 {
		return ""
	}
	return formValues(params).Encode()
}

// formValues flattens a payload into url.Values.
// Slices and arrays expand to repeated keys; nil values are skipped.
func formValues(payload map[string]any) url.Values {
	values := make(url.Values, len(payload))
	for k, v := range payload {
		if v == nil {
			continue
		}
		if b, ok := v.([]byte); ok {
			values.Set(k, string(b))
			continue
		}
		rv := reflect.ValueOf(v)
		if (rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array) && rv.Type().Elem().Kind() != reflect.Uint8 {
			for i := 0; i < rv.Len(); i++ {
				values.Add(k, fmt.Sprint(rv.Index(i).Interface()))
			}
			continue
		}
		values.Set(k, fmt.Sprint(v))
	}
	return values
}
