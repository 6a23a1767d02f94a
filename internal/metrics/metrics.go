// Package metrics provides lightweight hooks for instrumentation.
package metrics

// Proxy fetch outcomes passed to IncProxyFetch.
const (
	ProxySuccess       = "success"
	ProxyUpstreamError = "upstream_error"
	ProxyFailed        = "failed"
	ProxyBadRequest    = "bad_request"
)

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Grid store metrics
	IncGridCreated()
	IncGridListed()
	IncStoreError(op string) // op: "create" or "list"

	// Auth gate metrics
	IncAuthFailure(reason string) // reason: "missing_token" or "invalid_token"

	// Image proxy metrics
	IncProxyFetch(outcome string)
	AddProxyBytes(n int64)
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
