package engine

import (
	"net"
	"net/http"
	"time"

	"golang.org/x/net/http2"
)

// requestTimeout is the per-request hard cap spec §4.H/§5 mandates.
const requestTimeout = 30 * time.Second

// newHTTPClient builds the shared client every worker uses to fire
// requests. Connection pool sizing mirrors the aggressive tuning in the
// teacher lineage's stress-testing harness, but HTTP/2 is wired through
// golang.org/x/net/http2.ConfigureTransport instead of the bare
// ForceAttemptHTTP2 bool so the dependency is actually exercised.
func newHTTPClient(maxWorkers int) *http.Client {
	transport := &http.Transport{
		MaxIdleConns:        maxWorkers * 2,
		MaxIdleConnsPerHost: maxWorkers * 2,
		MaxConnsPerHost:     0,
		IdleConnTimeout:     90 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	_ = http2.ConfigureTransport(transport)

	return &http.Client{
		Transport: transport,
		// No client-level Timeout: per-request cancellation is driven by
		// the context deadline attached to each request instead, so an
		// in-flight call can be distinguished from a pool-shutdown cancel.
	}
}
