package httpclient

import "time"

// Default values for RequestOptions.
const (
	// DefaultJSON encodes payloads as JSON and parses responses as structured data.
	DefaultJSON = true

	// DefaultTimeout is the per-call deadline.
	DefaultTimeout = 10 * time.Second
)

// RequestOptions is the per-call configuration bag.
//
// Every field is optional: a nil value means "not set" and falls back to the
// client's default options. Per-call options are shallow-merged over the
// defaults, so a call that only sets JSON keeps the default Timeout.
//
// Example:
//
//	resp, err := client.Post(ctx, "/backend-wallet/create", data,
//	    httpclient.RequestOptions{Timeout: httpclient.Duration(30 * time.Second)},
//	)
type RequestOptions struct {
	// JSON encodes the request payload as JSON and asks for a JSON response.
	// When false, POST payloads are form encoded.
	// Default: true
	JSON *bool

	// Timeout is the deadline for the whole call, including reading the body.
	// Zero disables the deadline.
	// Default: 10s
	Timeout *time.Duration

	// Headers are extra request headers. Setting Headers on a call replaces
	// the default Headers as a whole.
	Headers map[string]string

	// UserAgent overrides the User-Agent header.
	UserAgent *string
}

// DefaultRequestOptions returns {JSON: true, Timeout: 10s}.
func DefaultRequestOptions() RequestOptions {
	return RequestOptions{
		JSON:    Bool(DefaultJSON),
		Timeout: Duration(DefaultTimeout),
	}
}

// Merge returns o with every key set in override replacing the same key in o.
// Neither o nor override is modified.
func (o RequestOptions) Merge(override RequestOptions) RequestOptions {
	merged := o
	if override.JSON != nil {
		merged.JSON = override.JSON
	}
	if override.Timeout != nil {
		merged.Timeout = override.Timeout
	}
	if override.Headers != nil {
		merged.Headers = override.Headers
	}
	if override.UserAgent != nil {
		merged.UserAgent = override.UserAgent
	}
	return merged
}

// IsJSON reports the effective JSON setting.
func (o RequestOptions) IsJSON() bool {
	if o.JSON == nil {
		return DefaultJSON
	}
	return *o.JSON
}

// EffectiveTimeout reports the effective timeout.
func (o RequestOptions) EffectiveTimeout() time.Duration {
	if o.Timeout == nil {
		return DefaultTimeout
	}
	return *o.Timeout
}

// Bool returns a pointer to v.
func Bool(v bool) *bool { return &v }

// Duration returns a pointer to v.
func Duration(v time.Duration) *time.Duration { return &v }

// String returns a pointer to v.
func String(v string) *string { return &v }
