package wallet

import (
	"context"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/kroma-labs/engine-go/config"
	"github.com/kroma-labs/engine-go/httpclient"
)

// Service is the entry point for wallet operations. It validates input,
// logs failures and returns every error unchanged.
type Service struct {
	backend Backend
	logger  zerolog.Logger
}

var _ Backend = (*Service)(nil)

// options holds the Service configuration.
type options struct {
	logger        zerolog.Logger
	clientOptions []httpclient.Option
	backendOpts   []BackendOption
}

// Option configures a Service.
type Option func(*options)

// WithLogger sets the logger used to report failed operations.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithClientOptions adds options for the HTTP client built by NewFromConfig.
func WithClientOptions(opts ...httpclient.Option) Option {
	return func(o *options) {
		o.clientOptions = append(o.clientOptions, opts...)
	}
}

// WithBackendOptions adds options for the HTTPBackend built by NewFromConfig.
func WithBackendOptions(opts ...BackendOption) Option {
	return func(o *options) {
		o.backendOpts = append(o.backendOpts, opts...)
	}
}

func newOptions(opts []Option) *options {
	o := &options{
		logger: zerolog.New(os.Stderr).With().Timestamp().Logger(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// NewService creates a Service over backend.
func NewService(backend Backend, opts ...Option) *Service {
	o := newOptions(opts)
	return &Service{
		backend: backend,
		logger:  o.logger.With().Str("component", "wallet").Logger(),
	}
}

// NewFromConfig creates a Service backed by the engine at cfg.EngineURL,
// authenticated with cfg.EngineToken.
func NewFromConfig(cfg *config.Config, opts ...Option) *Service {
	o := newOptions(opts)

	clientOpts := []httpclient.Option{
		httpclient.WithBearerToken(cfg.EngineToken),
		httpclient.WithServiceName("wallet-engine"),
		httpclient.WithLogger(o.logger),
	}
	clientOpts = append(clientOpts, o.clientOptions...)

	backend := NewHTTPBackend(httpclient.New(cfg.EngineURL, clientOpts...), o.backendOpts...)
	return NewService(backend, opts...)
}

// Backend returns the underlying backend.
func (s *Service) Backend() Backend {
	return s.backend
}

// CreateWallet creates a wallet named label.
// An empty or blank label fails with ErrEmptyLabel without calling the backend.
func (s *Service) CreateWallet(ctx context.Context, label string) (*Wallet, error) {
	if strings.TrimSpace(label) == "" {
		s.logError(ErrEmptyLabel, "Error creating wallet")
		return nil, ErrEmptyLabel
	}

	w, err := s.backend.CreateWallet(ctx, label)
	if err != nil {
		s.logError(err, "Error creating wallet", "label", label)
		return nil, err
	}
	return w, nil
}

// ListWallets returns every wallet known to the backend.
func (s *Service) ListWallets(ctx context.Context) ([]Wallet, error) {
	wallets, err := s.backend.ListWallets(ctx)
	if err != nil {
		s.logError(err, "Error getting wallets")
		return nil, err
	}
	return wallets, nil
}

// logError logs err with its HTTP status when it came from the client.
// fields are key/value string pairs.
func (s *Service) logError(err error, msg string, fields ...string) {
	event := s.logger.Error().Err(err)
	if ce, ok := httpclient.AsClientError(err); ok {
		event = event.Int("status", ce.StatusCode)
	}
	for i := 0; i+1 < len(fields); i += 2 {
		event = event.Str(fields[i], fields[i+1])
	}
	event.Msg(msg)
}
