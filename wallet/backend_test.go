package wallet

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kroma-labs/engine-go/httpclient"
)

func TestHTTPBackend_CreateWallet(t *testing.T) {
	tests := []struct {
		name        string
		opts        []BackendOption
		status      int
		response    string
		want        *Wallet
		wantType    string
		wantErr     bool
		wantStatus  int
		wantMessage string
	}{
		{
			name:     "given engine accepts, then returns created wallet",
			status:   http.StatusOK,
			response: `{"result":{"walletAddress":"0xabc","status":"success","type":"local"}}`,
			want:     &Wallet{Address: "0xabc", Label: "USER_ID", Type: TypeLocal},
			wantType: "local",
		},
		{
			name:     "given wallet type option, then sends that type",
			opts:     []BackendOption{WithWalletType(TypeSmartLocal)},
			status:   http.StatusOK,
			response: `{"result":{"walletAddress":"0xdef"}}`,
			want:     &Wallet{Address: "0xdef", Label: "USER_ID", Type: TypeSmartLocal},
			wantType: "smart:local",
		},
		{
			name:        "given engine rejects, then returns client error",
			status:      http.StatusBadRequest,
			response:    `{"error":{"message":"invalid"},"message":"Label already exists"}`,
			wantType:    "local",
			wantErr:     true,
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Label already exists",
		},
		{
			name:        "given unauthorized, then returns generic message",
			status:      http.StatusUnauthorized,
			response:    "Unauthorized",
			wantType:    "local",
			wantErr:     true,
			wantStatus:  http.StatusUnauthorized,
			wantMessage: "Request failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/backend-wallet/create", r.URL.Path)
				assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

				var body map[string]string
				require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
				assert.Equal(t, map[string]string{"label": "USER_ID", "type": tt.wantType}, body)

				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.response)
			}))
			defer server.Close()

			client := httpclient.New(server.URL+"/", httpclient.WithBearerToken("secret"))
			backend := NewHTTPBackend(client, tt.opts...)

			got, err := backend.CreateWallet(context.Background(), "USER_ID")

			if tt.wantErr {
				ce, ok := httpclient.AsClientError(err)
				require.True(t, ok)
				assert.Equal(t, tt.wantStatus, ce.StatusCode)
				assert.Equal(t, tt.wantMessage, ce.Message)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want.Address, got.Address)
			assert.Equal(t, tt.want.Label, got.Label)
			assert.Equal(t, tt.want.Type, got.Type)
			assert.NotEmpty(t, got.Raw)
		})
	}
}

func TestHTTPBackend_ListWallets_Unpaged(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     []string
	}{
		{
			name:     "given wallets, then returns them from one request",
			response: `{"result":[{"address":"0x1"},{"address":"0x2"}]}`,
			want:     []string{"0x1", "0x2"},
		},
		{
			name:     "given empty result, then returns empty list",
			response: `{"result":[]}`,
			want:     []string{},
		},
		{
			name:     "given missing result, then returns empty list",
			response: `{}`,
			want:     []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				assert.Empty(t, r.URL.RawQuery)
				_, _ = io.WriteString(w, tt.response)
			}))
			defer server.Close()

			got, err := NewHTTPBackend(httpclient.New(server.URL)).ListWallets(context.Background())

			require.NoError(t, err)
			require.NotNil(t, got)
			addresses := make([]string, 0, len(got))
			for _, w := range got {
				addresses = append(addresses, w.Address)
			}
			assert.Equal(t, tt.want, addresses)
			assert.Equal(t, int32(1), calls.Load())
		})
	}
}

func TestHTTPBackend_ListWallets_PagingIgnored(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		_, _ = io.WriteString(w, `{"result":[{"address":"0x1"},{"address":"0x2"}]}`)
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	backend := NewHTTPBackend(httpclient.New(server.URL), WithPageSize(2))
	got, err := backend.ListWallets(ctx)

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "0x1", got[0].Address)
	assert.Equal(t, "0x2", got[1].Address)
	assert.Equal(t, int32(2), calls.Load())
}

func TestHTTPBackend_ListWallets_PageLimit(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		// Full pages of fresh addresses forever.
		page := r.URL.Query().Get("page")
		_, _ = fmt.Fprintf(w, `{"result":[{"address":"0x%sa"},{"address":"0x%sb"}]}`, page, page)
	}))
	defer server.Close()

	backend := NewHTTPBackend(httpclient.New(server.URL), WithPageSize(2), WithMaxPages(3))
	got, err := backend.ListWallets(context.Background())

	require.ErrorIs(t, err, ErrPageLimit)
	assert.Nil(t, got)
	assert.Equal(t, int32(3), calls.Load())
}

func TestHTTPBackend_ListWallets(t *testing.T) {
	tests := []struct {
		name      string
		total     int
		pageSize  int
		wantPages int32
	}{
		{name: "given no wallets, then returns empty list", total: 0, pageSize: 10, wantPages: 1},
		{name: "given fewer than a page, then reads one page", total: 3, pageSize: 10, wantPages: 1},
		{name: "given exact page multiple, then reads a trailing empty page", total: 4, pageSize: 2, wantPages: 3},
		{name: "given several pages, then concatenates them", total: 5, pageSize: 2, wantPages: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var pages atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				pages.Add(1)
				assert.Equal(t, http.MethodGet, r.Method)
				assert.Equal(t, "/backend-wallet/get-all", r.URL.Path)

				page, _ := strconv.Atoi(r.URL.Query().Get("page"))
				limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
				assert.Equal(t, tt.pageSize, limit)

				result := make([]map[string]string, 0)
				for i := (page - 1) * limit; i < page*limit && i < tt.total; i++ {
					result = append(result, map[string]string{
						"address": fmt.Sprintf("0x%d", i),
						"label":   fmt.Sprintf("w%d", i),
						"type":    "local",
					})
				}
				_ = json.NewEncoder(w).Encode(map[string]any{"result": result})
			}))
			defer server.Close()

			backend := NewHTTPBackend(httpclient.New(server.URL), WithPageSize(tt.pageSize))

			got, err := backend.ListWallets(context.Background())

			require.NoError(t, err)
			assert.NotNil(t, got)
			assert.Len(t, got, tt.total)
			assert.Equal(t, tt.wantPages, pages.Load())
			for i, w := range got {
				assert.Equal(t, fmt.Sprintf("0x%d", i), w.Address)
				assert.Equal(t, TypeLocal, w.Type)
			}
		})
	}
}

func TestHTTPBackend_ListWallets_Error(t *testing.T) {
	mock := httpclient.NewMockTransport().
		StubPath("/backend-wallet/get-all", http.StatusInternalServerError, `{"message":"database unavailable"}`)
	backend := NewHTTPBackend(httpclient.New("https://engine.test", httpclient.WithMockTransport(mock)))

	got, err := backend.ListWallets(context.Background())

	ce, ok := httpclient.AsClientError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusInternalServerError, ce.StatusCode)
	assert.Equal(t, "database unavailable", ce.Message)
	assert.Nil(t, got)
}

func TestNewHTTPBackend_Defaults(t *testing.T) {
	client := httpclient.New("https://engine.test")
	backend := NewHTTPBackend(client, WithPageSize(0), WithMaxPages(-1))

	assert.Same(t, client, backend.Client())
	assert.Equal(t, TypeLocal, backend.walletType)
	assert.Zero(t, backend.pageSize)
	assert.Equal(t, DefaultMaxPages, backend.maxPages)
}
