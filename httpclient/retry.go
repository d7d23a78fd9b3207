package httpclient

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"io"
	"net"
	"net/http"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// RetryConfig holds the retry behavior configuration.
//
// Retries are disabled unless a config with MaxRetries > 0 is passed to
// WithRetryConfig. The wait between attempts is exponential backoff with
// jitter (cenkalti/backoff).
type RetryConfig struct {
	// MaxRetries is the maximum number of retry attempts.
	// The initial request is not counted. 0 disables retries.
	MaxRetries uint

	// InitialInterval is the first backoff interval.
	InitialInterval time.Duration

	// MaxInterval caps the backoff interval.
	MaxInterval time.Duration

	// MaxElapsedTime is the total time budget for all attempts.
	// 0 means only MaxRetries applies.
	MaxElapsedTime time.Duration

	// Multiplier controls exponential growth of backoff intervals.
	Multiplier float64

	// JitterFactor randomizes each interval by ±JitterFactor.
	JitterFactor float64
}

// Default values for RetryConfig.
const (
	DefaultMaxRetries      = 3
	DefaultInitialInterval = 500 * time.Millisecond
	DefaultMaxInterval     = 30 * time.Second
	DefaultMaxElapsedTime  = 2 * time.Minute
	DefaultMultiplier      = 2.0
	DefaultJitterFactor    = 0.5
)

// DefaultRetryConfig returns balanced defaults:
// 3 retries (500ms → 1s → 2s), 50% jitter, 2 minute budget.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:      DefaultMaxRetries,
		InitialInterval: DefaultInitialInterval,
		MaxInterval:     DefaultMaxInterval,
		MaxElapsedTime:  DefaultMaxElapsedTime,
		Multiplier:      DefaultMultiplier,
		JitterFactor:    DefaultJitterFactor,
	}
}

// NoRetryConfig returns a configuration that disables retries.
func NoRetryConfig() RetryConfig {
	return RetryConfig{}
}

// IsEnabled returns true if retries are enabled.
func (c RetryConfig) IsEnabled() bool {
	return c.MaxRetries > 0
}

// ExponentialBackOffFromConfig creates an ExponentialBackOff from a RetryConfig.
// Jitter is never disabled.
func ExponentialBackOffFromConfig(cfg RetryConfig) *backoff.ExponentialBackOff {
	jitterFactor := cfg.JitterFactor
	if jitterFactor <= 0 {
		jitterFactor = DefaultJitterFactor
	}

	b := &backoff.ExponentialBackOff{
		InitialInterval:     cfg.InitialInterval,
		RandomizationFactor: jitterFactor,
		Multiplier:          cfg.Multiplier,
		MaxInterval:         cfg.MaxInterval,
	}
	b.Reset()
	return b
}

// =============================================================================
// Classification
// =============================================================================

// RetryClassifier determines if an attempt should be retried.
// Return true to retry, false to stop.
type RetryClassifier func(resp *http.Response, err error) bool

// DefaultClassifier retries transient failures only.
//
// Retries on:
//   - network errors (timeout, connection refused/reset, temporary DNS)
//   - 429, 502, 503, 504
//
// Does not retry on:
//   - context cancellation or deadline
//   - TLS certificate errors and unknown hosts
//   - 500 and other status codes
func DefaultClassifier(resp *http.Response, err error) bool {
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return false
		}
		if errors.Is(err, ErrRateLimited) || isBreakerRejection(err) {
			return false
		}
		if isPermanentError(err) {
			return false
		}
		return true
	}

	if resp == nil {
		return false
	}

	switch resp.StatusCode {
	case http.StatusTooManyRequests,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

// NeverRetryClassifier returns a classifier that never retries.
func NeverRetryClassifier() RetryClassifier {
	return func(_ *http.Response, _ error) bool {
		return false
	}
}

// isPermanentError returns true for errors that will not succeed on retry.
func isPermanentError(err error) bool {
	var certErr *tls.CertificateVerificationError
	if errors.As(err, &certErr) {
		return true
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) && dnsErr.IsNotFound {
		return true
	}

	return errors.Is(err, syscall.EACCES) || errors.Is(err, syscall.EHOSTDOWN)
}

// =============================================================================
// Transport
// =============================================================================

// errRetryableStatus marks an attempt that got a response worth retrying.
// It never reaches callers: the last such response is returned instead.
var errRetryableStatus = errors.New("retryable status")

// retryTransport wraps an http.RoundTripper with retry logic.
type retryTransport struct {
	base       http.RoundTripper
	cfg        *internalConfig
	classifier RetryClassifier
}

// newRetryTransport returns base unchanged when retries are disabled.
func newRetryTransport(base http.RoundTripper, cfg *internalConfig) http.RoundTripper {
	if !cfg.retry.IsEnabled() {
		return base
	}

	classifier := cfg.retryClassifier
	if classifier == nil {
		classifier = DefaultClassifier
	}

	return &retryTransport{
		base:       base,
		cfg:        cfg,
		classifier: classifier,
	}
}

// RoundTrip implements http.RoundTripper with automatic retries.
func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	span := trace.SpanFromContext(ctx)
	baseAttrs := t.cfg.baseAttributes()

	bodyBytes, err := snapshotBody(req)
	if err != nil {
		return nil, err
	}

	var (
		lastResp *http.Response
		attempt  int
	)

	opts := []backoff.RetryOption{
		backoff.WithBackOff(t.newBackOff()),
		backoff.WithMaxTries(t.cfg.retry.MaxRetries + 1),
		backoff.WithNotify(func(err error, next time.Duration) {
			attempt++
			recordRetryEvent(span, attempt, err, next)
			t.cfg.metrics.recordRetryAttempt(ctx, baseAttrs, attempt)
		}),
	}
	if t.cfg.retry.MaxElapsedTime > 0 {
		opts = append(opts, backoff.WithMaxElapsedTime(t.cfg.retry.MaxElapsedTime))
	}

	resp, err := backoff.Retry(ctx, func() (*http.Response, error) {
		resp, err := t.base.RoundTrip(cloneWithBody(req, bodyBytes))

		if !t.classifier(resp, err) {
			if err != nil {
				return nil, backoff.Permanent(err)
			}
			return resp, nil
		}

		if err != nil {
			return nil, err
		}

		buffered, err := bufferResponse(resp)
		if err != nil {
			return nil, err
		}
		lastResp = buffered
		return nil, errRetryableStatus
	}, opts...)

	if attempt > 0 {
		span.SetAttributes(
			attribute.Int("http.retry_count", attempt),
			attribute.Bool("http.retry_success", err == nil),
		)
		if err != nil {
			t.cfg.metrics.recordRetryExhausted(ctx, baseAttrs)
		}
	}

	if errors.Is(err, errRetryableStatus) && lastResp != nil {
		return lastResp, nil
	}
	return resp, err
}

// newBackOff returns a fresh backoff strategy for one request.
func (t *retryTransport) newBackOff() backoff.BackOff {
	if t.cfg.retryBackOff != nil {
		b := t.cfg.retryBackOff()
		b.Reset()
		return b
	}
	return ExponentialBackOffFromConfig(t.cfg.retry)
}

// snapshotBody reads a body that cannot be replayed through GetBody.
func snapshotBody(req *http.Request) ([]byte, error) {
	if req.Body == nil || req.Body == http.NoBody || req.GetBody != nil {
		return nil, nil
	}
	data, err := io.ReadAll(req.Body)
	if err != nil {
		return nil, err
	}
	req.Body.Close()
	return data, nil
}

// cloneWithBody creates a copy of the request with a fresh body.
func cloneWithBody(req *http.Request, bodyBytes []byte) *http.Request {
	clone := req.Clone(req.Context())

	switch {
	case bodyBytes != nil:
		clone.Body = io.NopCloser(bytes.NewReader(bodyBytes))
		clone.ContentLength = int64(len(bodyBytes))
	case req.GetBody != nil:
		if body, err := req.GetBody(); err == nil {
			clone.Body = body
		}
	}

	return clone
}

// bufferResponse reads and closes the body so the connection can be reused,
// keeping a replayable copy.
func bufferResponse(resp *http.Response) (*http.Response, error) {
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	resp.Body = io.NopCloser(bytes.NewReader(data))
	return resp, nil
}

// recordRetryEvent adds a span event for the retry attempt.
func recordRetryEvent(span trace.Span, attempt int, err error, next time.Duration) {
	if !span.IsRecording() {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.Int("retry.attempt", attempt),
		attribute.Int64("retry.delay_ms", next.Milliseconds()),
	}

	if err != nil && !errors.Is(err, errRetryableStatus) {
		reason := err.Error()
		if len(reason) > 50 {
			reason = reason[:50] + "..."
		}
		attrs = append(attrs, attribute.String("retry.reason", reason))
	} else {
		attrs = append(attrs, attribute.String("retry.reason", "status_code"))
	}

	span.AddEvent("http.retry", trace.WithAttributes(attrs...))
}
