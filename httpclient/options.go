package httpclient

import (
	"crypto/tls"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	// scope is the instrumentation scope name for OpenTelemetry.
	scope = "github.com/kroma-labs/engine-go/httpclient"

	// DefaultRequestIDHeader carries a per-call correlation ID.
	DefaultRequestIDHeader = "X-Request-Id"
)

// =============================================================================
// TransportConfig - connection pool settings
// =============================================================================

// TransportConfig holds the connection settings of the default transport.
// It is ignored when a transport is supplied with WithTransport.
//
// Request deadlines are not configured here: they come from the
// RequestOptions Timeout of each call.
type TransportConfig struct {
	// MaxIdleConns controls the maximum number of idle connections across all hosts.
	// Default: 100
	MaxIdleConns int

	// MaxIdleConnsPerHost controls the idle connections kept per host.
	// Most clients of this package talk to a single engine host, so this is
	// close to MaxIdleConns.
	// Default: 20
	MaxIdleConnsPerHost int

	// IdleConnTimeout is how long an idle connection stays in the pool.
	// Default: 90s
	IdleConnTimeout time.Duration

	// TLSHandshakeTimeout is the maximum time to wait for a TLS handshake.
	// Default: 10s
	TLSHandshakeTimeout time.Duration

	// DialTimeout is the maximum time to establish a TCP connection.
	// Default: 5s
	DialTimeout time.Duration

	// KeepAlive is the TCP keep-alive probe interval.
	// Default: 30s
	KeepAlive time.Duration

	// TLSConfig overrides the TLS configuration. Nil uses Go defaults.
	TLSConfig *tls.Config
}

// DefaultTransportConfig returns balanced connection settings.
func DefaultTransportConfig() TransportConfig {
	return TransportConfig{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 20,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		DialTimeout:         5 * time.Second,
		KeepAlive:           30 * time.Second,
	}
}

// build creates an http.Transport from the configuration.
func (tc TransportConfig) build() *http.Transport {
	dialer := &net.Dialer{
		Timeout:   tc.DialTimeout,
		KeepAlive: tc.KeepAlive,
	}

	return &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         dialer.DialContext,
		MaxIdleConns:        tc.MaxIdleConns,
		MaxIdleConnsPerHost: tc.MaxIdleConnsPerHost,
		IdleConnTimeout:     tc.IdleConnTimeout,
		TLSHandshakeTimeout: tc.TLSHandshakeTimeout,
		TLSClientConfig:     tc.TLSConfig,
		ForceAttemptHTTP2:   true,
	}
}

// =============================================================================
// Internal Configuration
// =============================================================================

// internalConfig holds everything a Client is built from.
type internalConfig struct {
	defaults RequestOptions

	transportConfig TransportConfig

	// transport replaces the default *http.Transport when set.
	transport http.RoundTripper

	headers         map[string]string
	requestIDHeader string

	logger zerolog.Logger
	debug  bool

	// === OpenTelemetry ===

	serviceName    string
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
	tracer         trace.Tracer
	metrics        *metrics

	// === Opt-in resilience layers ===

	retry           RetryConfig
	retryClassifier RetryClassifier
	retryBackOff    func() backoff.BackOff
	breaker         *BreakerConfig
	rateLimit       RateLimitConfig
}

// newConfig creates the internal config with defaults and applies options.
func newConfig(opts ...Option) *internalConfig {
	cfg := &internalConfig{
		defaults:        DefaultRequestOptions(),
		transportConfig: DefaultTransportConfig(),
		headers:         make(map[string]string),
		requestIDHeader: DefaultRequestIDHeader,
		logger:          zerolog.New(os.Stderr).With().Timestamp().Logger(),
		tracerProvider:  otel.GetTracerProvider(),
		meterProvider:   otel.GetMeterProvider(),
		retry:           NoRetryConfig(),
	}

	for _, opt := range opts {
		opt(cfg)
	}

	cfg.tracer = cfg.tracerProvider.Tracer(scope)

	// Metrics stay nil when instrument creation fails; recorders are nil-safe.
	cfg.metrics, _ = newMetrics(cfg.meterProvider.Meter(scope))

	return cfg
}

// baseTransport returns the innermost RoundTripper.
func (cfg *internalConfig) baseTransport() http.RoundTripper {
	if cfg.transport != nil {
		return cfg.transport
	}
	return cfg.transportConfig.build()
}

// baseAttributes returns common attributes for all spans and metrics.
func (cfg *internalConfig) baseAttributes() []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, 1)
	if cfg.serviceName != "" {
		attrs = append(attrs, attribute.String("http.client.name", cfg.serviceName))
	}
	return attrs
}

// =============================================================================
// Options
// =============================================================================

// Option configures the HTTP client.
type Option func(*internalConfig)

// WithDefaultOptions overrides the default RequestOptions key by key.
// Keys left unset in opts keep their built-in defaults (JSON: true, Timeout: 10s).
//
// Example:
//
//	client := httpclient.New("https://engine.example.com",
//	    httpclient.WithDefaultOptions(httpclient.RequestOptions{
//	        Timeout: httpclient.Duration(30 * time.Second),
//	    }),
//	)
func WithDefaultOptions(opts RequestOptions) Option {
	return func(cfg *internalConfig) {
		cfg.defaults = cfg.defaults.Merge(opts)
	}
}

// WithTransportConfig sets the connection settings of the default transport.
func WithTransportConfig(tc TransportConfig) Option {
	return func(cfg *internalConfig) {
		cfg.transportConfig = tc
	}
}

// WithTransport replaces the default transport. Instrumentation and any
// enabled resilience layers still wrap it.
func WithTransport(rt http.RoundTripper) Option {
	return func(cfg *internalConfig) {
		cfg.transport = rt
	}
}

// WithHeader adds a header sent with every request.
// Per-call RequestOptions.Headers take precedence.
func WithHeader(key, value string) Option {
	return func(cfg *internalConfig) {
		cfg.headers[key] = value
	}
}

// WithBearerToken authenticates every request with "Authorization: Bearer <token>".
func WithBearerToken(token string) Option {
	return WithHeader("Authorization", "Bearer "+token)
}

// WithRequestIDHeader sets the header used for per-call correlation IDs.
// An empty name disables request IDs.
//
// Default: "X-Request-Id"
func WithRequestIDHeader(name string) Option {
	return func(cfg *internalConfig) {
		cfg.requestIDHeader = name
	}
}

// WithLogger sets the zerolog logger used for debug output.
func WithLogger(logger zerolog.Logger) Option {
	return func(cfg *internalConfig) {
		cfg.logger = logger
	}
}

// WithDebug enables request/response logging at debug level.
func WithDebug(enabled bool) Option {
	return func(cfg *internalConfig) {
		cfg.debug = enabled
	}
}

// WithServiceName sets an identifier for this client in traces and metrics.
// It is added as the "http.client.name" attribute and names the circuit breaker.
func WithServiceName(name string) Option {
	return func(cfg *internalConfig) {
		cfg.serviceName = name
	}
}

// WithTracerProvider sets a custom OpenTelemetry TracerProvider.
// If not called, the global provider from otel.GetTracerProvider() is used.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(cfg *internalConfig) {
		cfg.tracerProvider = tp
	}
}

// WithMeterProvider sets a custom OpenTelemetry MeterProvider.
// If not called, the global provider from otel.GetMeterProvider() is used.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(cfg *internalConfig) {
		cfg.meterProvider = mp
	}
}

// WithRetryConfig enables automatic retries.
//
// Retries are off by default: every call makes exactly one attempt.
//
// Example:
//
//	client := httpclient.New(baseURL,
//	    httpclient.WithRetryConfig(httpclient.DefaultRetryConfig()),
//	)
func WithRetryConfig(rc RetryConfig) Option {
	return func(cfg *internalConfig) {
		cfg.retry = rc
	}
}

// WithRetryClassifier sets the function that decides whether an attempt is retried.
// Default: DefaultClassifier
func WithRetryClassifier(c RetryClassifier) Option {
	return func(cfg *internalConfig) {
		cfg.retryClassifier = c
	}
}

// WithRetryBackOff sets a factory for the backoff strategy.
// The factory is called once per request so strategies never share state.
func WithRetryBackOff(newBackOff func() backoff.BackOff) Option {
	return func(cfg *internalConfig) {
		cfg.retryBackOff = newBackOff
	}
}

// WithCircuitBreaker enables the circuit breaker.
//
// Example:
//
//	client := httpclient.New(baseURL,
//	    httpclient.WithServiceName("engine"),
//	    httpclient.WithCircuitBreaker(httpclient.DefaultBreakerConfig()),
//	)
func WithCircuitBreaker(bc BreakerConfig) Option {
	return func(cfg *internalConfig) {
		cfg.breaker = &bc
	}
}

// WithRateLimit enables client-side rate limiting.
func WithRateLimit(rl RateLimitConfig) Option {
	return func(cfg *internalConfig) {
		cfg.rateLimit = rl
	}
}
