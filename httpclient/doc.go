// Package httpclient provides a small HTTP client for JSON APIs with one
// option-merging rule and one error contract.
//
// # Quick Start
//
//	client := httpclient.New("https://engine.example.com/",
//	    httpclient.WithBearerToken(token),
//	    httpclient.WithServiceName("engine"),
//	)
//
//	// Raw response
//	resp, err := client.Get(ctx, "backend-wallet/get-all", nil)
//
//	// Decoded response
//	type envelope struct {
//	    Result []Wallet `json:"result"`
//	}
//	out, err := httpclient.Post[envelope](ctx, client, "/backend-wallet/create",
//	    map[string]any{"label": "alice", "type": "local"},
//	)
//
// # URLs
//
// New strips exactly one trailing slash from the base URL. Each endpoint is
// appended with exactly one "/" between the two:
//
//	New("https://api.example.com/").URL("wallets") // https://api.example.com/wallets
//
// # Options
//
// Every call starts from the client's default RequestOptions
// ({JSON: true, Timeout: 10s}) and each RequestOptions passed to the call is
// merged over them key by key:
//
//	client.Post(ctx, "/form", data, httpclient.RequestOptions{JSON: httpclient.Bool(false)})
//	// still uses the default 10s timeout
//
// # Errors
//
// Every failure is a *ClientError:
//
//   - a response outside [200, 300) keeps its status code; the message is the
//     body's top-level "message" string or "Request failed"
//   - a call that produced no response (network failure, timeout) has status
//     500 and the message "<METHOD> request to <endpoint> failed: <reason>"
//   - a *ClientError raised below the client (e.g. by a custom transport) is
//     returned as the same instance
//
// # Resilience
//
// A call makes exactly one attempt unless the client opts in:
//
//	client := httpclient.New(baseURL,
//	    httpclient.WithRetryConfig(httpclient.DefaultRetryConfig()),
//	    httpclient.WithCircuitBreaker(httpclient.DefaultBreakerConfig()),
//	    httpclient.WithRateLimit(httpclient.DefaultRateLimitConfig()),
//	)
//
// Breaker state can be shared across processes through Redis:
//
//	rdb := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
//	client := httpclient.New(baseURL,
//	    httpclient.WithCircuitBreaker(httpclient.DistributedBreakerConfig(httpclient.NewRedisStore(rdb))),
//	)
//
// # Observability
//
// Each call produces one client span ("HTTP GET", "HTTP POST") and the
// http.client.* metrics through the configured OpenTelemetry providers.
// W3C trace context and baggage are injected into outgoing headers. With
// WithDebug(true) requests and responses are logged through zerolog with the
// Authorization header redacted.
//
// # Testing
//
// MockTransport serves stubbed responses without a network:
//
//	mock := httpclient.NewMockTransport().
//	    StubJSON(http.MethodGet, "/backend-wallet/get-all", 200, map[string]any{"result": []any{}})
//	client := httpclient.New("https://engine.test", httpclient.WithMockTransport(mock))
package httpclient
