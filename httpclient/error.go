package httpclient

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
)

// defaultErrorMessage is used when a failed response carries no usable message.
const defaultErrorMessage = "Request failed"

// ClientError is the single failure type returned by Client calls.
//
// A ClientError is built exactly once per failed call, either from a
// non-2xx response or from a transport-level failure, and is never mutated
// afterwards.
//
// Use errors.As (or AsClientError) to inspect it:
//
//	_, err := client.Get(ctx, "/wallets", nil)
//	if ce, ok := httpclient.AsClientError(err); ok {
//	    log.Printf("status=%d message=%s", ce.StatusCode, ce.Message)
//	}
type ClientError struct {
	// StatusCode is the HTTP status of the failed response,
	// or 500 when the request never produced a response.
	StatusCode int

	// Message is the body's "message" field for rejected requests,
	// "Request failed" when none is present, or a synthesized
	// "<METHOD> request to <endpoint> failed: ..." for transport failures.
	Message string

	// Response is the full response for non-2xx failures.
	Response *Response

	// Err is the underlying error for transport failures.
	Err error
}

var _ error = (*ClientError)(nil)

// Error implements error.
func (e *ClientError) Error() string {
	return e.Message
}

// Unwrap returns the underlying transport error, if any.
func (e *ClientError) Unwrap() error {
	return e.Err
}

// Cause returns the original failure context: the response for rejected
// requests, the underlying error for transport failures.
func (e *ClientError) Cause() any {
	if e.Response != nil {
		return e.Response
	}
	if e.Err != nil {
		return e.Err
	}
	return nil
}

// AsClientError reports whether err (or anything it wraps) is a *ClientError.
func AsClientError(err error) (*ClientError, bool) {
	var ce *ClientError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// newResponseError builds the error for a response outside [200, 300).
func newResponseError(resp *Response) *ClientError {
	return &ClientError{
		StatusCode: resp.StatusCode,
		Message:    resp.errorMessage(),
		Response:   resp,
	}
}

// wrapError normalizes any failure into a *ClientError.
// An error chain that already holds a *ClientError yields that same instance.
func wrapError(err error, method, endpoint string) *ClientError {
	if ce, ok := AsClientError(err); ok {
		return ce
	}

	// *url.Error repeats the method and URL; only its cause is reported.
	reason := err
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil {
		reason = urlErr.Err
	}

	msg := "Unknown error"
	if reason != nil && reason.Error() != "" {
		msg = reason.Error()
	}

	return &ClientError{
		StatusCode: http.StatusInternalServerError,
		Message:    fmt.Sprintf("%s request to %s failed: %s", method, endpoint, msg),
		Err:        err,
	}
}
