package httpclient

import (
	"net/http"
	"time"
)

// PoolStats is a snapshot of the connection pool settings of the base
// transport.
type PoolStats struct {
	// MaxIdleConns is the maximum idle connections across all hosts.
	MaxIdleConns int

	// MaxIdleConnsPerHost is the maximum idle connections per host.
	// Zero means Go's default (2).
	MaxIdleConnsPerHost int

	// MaxConnsPerHost is the maximum total connections per host.
	// Zero means unlimited.
	MaxConnsPerHost int

	// IdleConnTimeout is how long idle connections are kept before closing.
	IdleConnTimeout time.Duration

	// DisableKeepAlives reports whether keep-alives are disabled.
	DisableKeepAlives bool
}

// PoolStats returns the pool settings of the base transport.
//
// It returns an empty PoolStats when the base transport is not an
// *http.Transport, for example a MockTransport.
func (c *Client) PoolStats() PoolStats {
	transport, ok := c.base.(*http.Transport)
	if !ok {
		return PoolStats{}
	}

	return PoolStats{
		MaxIdleConns:        transport.MaxIdleConns,
		MaxIdleConnsPerHost: transport.MaxIdleConnsPerHost,
		MaxConnsPerHost:     transport.MaxConnsPerHost,
		IdleConnTimeout:     transport.IdleConnTimeout,
		DisableKeepAlives:   transport.DisableKeepAlives,
	}
}
