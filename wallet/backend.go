package wallet

import (
	"context"
	"errors"
	"fmt"

	"github.com/kroma-labs/engine-go/httpclient"
)

// Engine REST endpoints.
const (
	createEndpoint = "/backend-wallet/create"
	listEndpoint   = "/backend-wallet/get-all"
)

// DefaultMaxPages caps how many pages a paged ListWallets reads.
const DefaultMaxPages = 100

// ErrPageLimit is returned when a paged ListWallets reaches its page cap
// before the engine returned a short page.
var ErrPageLimit = errors.New("wallet list page limit reached")

// envelope is the engine's response wrapper.
type envelope[T any] struct {
	Result T `json:"result"`
}

// HTTPBackend is a Backend that calls the engine's REST API.
// Failures are the *httpclient.ClientError returned by the client.
type HTTPBackend struct {
	client     *httpclient.Client
	walletType WalletType

	// pageSize of 0 reads the list with a single unpaged request.
	pageSize int
	maxPages int
}

var _ Backend = (*HTTPBackend)(nil)

// BackendOption configures an HTTPBackend.
type BackendOption func(*HTTPBackend)

// WithWalletType sets the type of wallets created by CreateWallet.
// Default: TypeLocal
func WithWalletType(t WalletType) BackendOption {
	return func(b *HTTPBackend) {
		b.walletType = t
	}
}

// WithPageSize makes ListWallets page through the list with page/limit
// query parameters, n wallets per page. Values below 1 keep the single
// unpaged request.
// Default: 0 (unpaged)
func WithPageSize(n int) BackendOption {
	return func(b *HTTPBackend) {
		if n > 0 {
			b.pageSize = n
		}
	}
}

// WithMaxPages caps how many pages a paged ListWallets reads. Values below 1
// are ignored.
// Default: DefaultMaxPages
func WithMaxPages(n int) BackendOption {
	return func(b *HTTPBackend) {
		if n > 0 {
			b.maxPages = n
		}
	}
}

// NewHTTPBackend creates an HTTPBackend on top of client. The client is
// expected to carry the engine's base URL and access token.
func NewHTTPBackend(client *httpclient.Client, opts ...BackendOption) *HTTPBackend {
	b := &HTTPBackend{
		client:     client,
		walletType: TypeLocal,
		maxPages:   DefaultMaxPages,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Client returns the underlying HTTP client.
func (b *HTTPBackend) Client() *httpclient.Client {
	return b.client
}

// CreateWallet sends POST /backend-wallet/create with {label, type}.
func (b *HTTPBackend) CreateWallet(ctx context.Context, label string) (*Wallet, error) {
	res, err := httpclient.Post[envelope[Wallet]](ctx, b.client, createEndpoint, map[string]any{
		"label": label,
		"type":  string(b.walletType),
	})
	if err != nil {
		return nil, err
	}

	w := res.Result
	if w.Label == "" {
		w.Label = label
	}
	if w.Type == "" {
		w.Type = b.walletType
	}
	return &w, nil
}

// ListWallets sends GET /backend-wallet/get-all. With WithPageSize it reads
// page by page until a short page, a page that repeats the previous one, or
// the page cap.
func (b *HTTPBackend) ListWallets(ctx context.Context) ([]Wallet, error) {
	if b.pageSize == 0 {
		res, err := httpclient.Get[envelope[[]Wallet]](ctx, b.client, listEndpoint, nil)
		if err != nil {
			return nil, err
		}
		if res.Result == nil {
			return []Wallet{}, nil
		}
		return res.Result, nil
	}

	wallets := make([]Wallet, 0)
	var prevFirst string

	for page := 1; page <= b.maxPages; page++ {
		res, err := httpclient.Get[envelope[[]Wallet]](ctx, b.client, listEndpoint, map[string]any{
			"page":  page,
			"limit": b.pageSize,
		})
		if err != nil {
			return nil, err
		}
		if len(res.Result) == 0 {
			return wallets, nil
		}

		// The engine ignored the page parameter and sent the same page again.
		first := res.Result[0].Address
		if page > 1 && first != "" && first == prevFirst {
			return wallets, nil
		}
		prevFirst = first

		wallets = append(wallets, res.Result...)
		if len(res.Result) < b.pageSize {
			return wallets, nil
		}
	}

	return nil, fmt.Errorf("%w: %d pages of %d", ErrPageLimit, b.maxPages, b.pageSize)
}
