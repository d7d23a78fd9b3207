package httpclient

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetryConfig(maxRetries uint) RetryConfig {
	return RetryConfig{
		MaxRetries:      maxRetries,
		InitialInterval: time.Millisecond,
		MaxInterval:     5 * time.Millisecond,
		Multiplier:      2,
		JitterFactor:    0.1,
	}
}

func TestDefaultRetryConfig(t *testing.T) {
	cfg := DefaultRetryConfig()

	assert.Equal(t, uint(3), cfg.MaxRetries)
	assert.Equal(t, 500*time.Millisecond, cfg.InitialInterval)
	assert.Equal(t, 30*time.Second, cfg.MaxInterval)
	assert.Equal(t, 2*time.Minute, cfg.MaxElapsedTime)
	assert.True(t, cfg.IsEnabled())
	assert.False(t, NoRetryConfig().IsEnabled())
}

func TestExponentialBackOffFromConfig(t *testing.T) {
	t.Run("given config, then copies intervals", func(t *testing.T) {
		b := ExponentialBackOffFromConfig(DefaultRetryConfig())

		assert.Equal(t, 500*time.Millisecond, b.InitialInterval)
		assert.Equal(t, 30*time.Second, b.MaxInterval)
		assert.InEpsilon(t, 2.0, b.Multiplier, 0.001)
		assert.InEpsilon(t, 0.5, b.RandomizationFactor, 0.001)
	})

	t.Run("given no jitter, then uses default jitter", func(t *testing.T) {
		cfg := DefaultRetryConfig()
		cfg.JitterFactor = 0

		b := ExponentialBackOffFromConfig(cfg)
		assert.InEpsilon(t, DefaultJitterFactor, b.RandomizationFactor, 0.001)
	})
}

func TestDefaultClassifier(t *testing.T) {
	tests := []struct {
		name string
		resp *http.Response
		err  error
		want bool
	}{
		{name: "given 429, then retries", resp: &http.Response{StatusCode: 429}, want: true},
		{name: "given 502, then retries", resp: &http.Response{StatusCode: 502}, want: true},
		{name: "given 503, then retries", resp: &http.Response{StatusCode: 503}, want: true},
		{name: "given 504, then retries", resp: &http.Response{StatusCode: 504}, want: true},
		{name: "given 500, then does not retry", resp: &http.Response{StatusCode: 500}, want: false},
		{name: "given 404, then does not retry", resp: &http.Response{StatusCode: 404}, want: false},
		{name: "given 200, then does not retry", resp: &http.Response{StatusCode: 200}, want: false},
		{name: "given nil response and no error, then does not retry", want: false},
		{name: "given network error, then retries", err: &net.OpError{Op: "dial", Err: errors.New("connection refused")}, want: true},
		{name: "given context canceled, then does not retry", err: context.Canceled, want: false},
		{name: "given deadline exceeded, then does not retry", err: context.DeadlineExceeded, want: false},
		{name: "given rate limited, then does not retry", err: ErrRateLimited, want: false},
		{name: "given open breaker, then does not retry", err: gobreaker.ErrOpenState, want: false},
		{name: "given unknown host, then does not retry", err: &net.DNSError{Err: "no such host", IsNotFound: true}, want: false},
		{
			name: "given certificate error, then does not retry",
			err:  &tls.CertificateVerificationError{Err: x509.UnknownAuthorityError{}},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DefaultClassifier(tt.resp, tt.err))
		})
	}
}

func TestNeverRetryClassifier(t *testing.T) {
	assert.False(t, NeverRetryClassifier()(&http.Response{StatusCode: 503}, nil))
	assert.False(t, NeverRetryClassifier()(nil, errors.New("boom")))
}

func TestRetryTransport(t *testing.T) {
	tests := []struct {
		name         string
		opts         []Option
		statuses     []int
		wantErr      bool
		wantStatus   int
		wantAttempts int32
	}{
		{
			name:         "given retries disabled, then makes one attempt",
			statuses:     []int{503, 200},
			wantErr:      true,
			wantStatus:   503,
			wantAttempts: 1,
		},
		{
			name:         "given transient 503s, then retries until success",
			opts:         []Option{WithRetryConfig(fastRetryConfig(3))},
			statuses:     []int{503, 502, 200},
			wantStatus:   200,
			wantAttempts: 3,
		},
		{
			name:         "given retries exhausted, then returns last response as error",
			opts:         []Option{WithRetryConfig(fastRetryConfig(2))},
			statuses:     []int{503, 503, 503, 200},
			wantErr:      true,
			wantStatus:   503,
			wantAttempts: 3,
		},
		{
			name:         "given non-retryable status, then stops after one attempt",
			opts:         []Option{WithRetryConfig(fastRetryConfig(3))},
			statuses:     []int{400, 200},
			wantErr:      true,
			wantStatus:   400,
			wantAttempts: 1,
		},
		{
			name: "given never-retry classifier, then stops after one attempt",
			opts: []Option{
				WithRetryConfig(fastRetryConfig(3)),
				WithRetryClassifier(NeverRetryClassifier()),
			},
			statuses:     []int{503, 200},
			wantErr:      true,
			wantStatus:   503,
			wantAttempts: 1,
		},
		{
			name: "given custom backoff, then uses it",
			opts: []Option{
				WithRetryConfig(fastRetryConfig(2)),
				WithRetryBackOff(func() backoff.BackOff { return &backoff.ZeroBackOff{} }),
			},
			statuses:     []int{503, 200},
			wantStatus:   200,
			wantAttempts: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var attempts atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				n := attempts.Add(1)
				body, _ := io.ReadAll(r.Body)
				assert.JSONEq(t, `{"label":"alice"}`, string(body))

				status := tt.statuses[len(tt.statuses)-1]
				if int(n) <= len(tt.statuses) {
					status = tt.statuses[n-1]
				}
				w.WriteHeader(status)
				_, _ = io.WriteString(w, `{"message":"attempt"}`)
			}))
			defer server.Close()

			client := New(server.URL, tt.opts...)
			resp, err := client.Post(context.Background(), "/create", map[string]any{"label": "alice"})

			assert.Equal(t, tt.wantAttempts, attempts.Load())
			if tt.wantErr {
				ce, ok := AsClientError(err)
				require.True(t, ok)
				assert.Equal(t, tt.wantStatus, ce.StatusCode)
				assert.Equal(t, "attempt", ce.Message)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}
}

func TestRetryTransport_NetworkError(t *testing.T) {
	var attempts atomic.Int32
	client := New("https://engine.test",
		WithRetryConfig(fastRetryConfig(2)),
		WithTransport(roundTripperFunc(func(*http.Request) (*http.Response, error) {
			attempts.Add(1)
			return nil, &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}
		})),
	)

	_, err := client.Get(context.Background(), "/x", nil)

	ce, ok := AsClientError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusInternalServerError, ce.StatusCode)
	assert.Equal(t, "GET request to /x failed: dial tcp: connection refused", ce.Message)
	assert.Equal(t, int32(3), attempts.Load())
}
