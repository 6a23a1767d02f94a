package metrics

import (
	"sync/atomic"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	GridsCreated        uint64
	GridsListed         uint64
	StoreCreateErrors   uint64
	StoreListErrors     uint64
	AuthMissingToken    uint64
	AuthInvalidToken    uint64
	ProxySuccess        uint64
	ProxyUpstreamErrors uint64
	ProxyFailed         uint64
	ProxyBadRequests    uint64
	ProxyBytes          int64
}

// InMemoryRecorder keeps counters in process memory.
type InMemoryRecorder struct {
	gridsCreated        atomic.Uint64
	gridsListed         atomic.Uint64
	storeCreateErrors   atomic.Uint64
	storeListErrors     atomic.Uint64
	authMissingToken    atomic.Uint64
	authInvalidToken    atomic.Uint64
	proxySuccess        atomic.Uint64
	proxyUpstreamErrors atomic.Uint64
	proxyFailed         atomic.Uint64
	proxyBadRequests    atomic.Uint64
	proxyBytes          atomic.Int64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		GridsCreated:        m.gridsCreated.Load(),
		GridsListed:         m.gridsListed.Load(),
		StoreCreateErrors:   m.storeCreateErrors.Load(),
		StoreListErrors:     m.storeListErrors.Load(),
		AuthMissingToken:    m.authMissingToken.Load(),
		AuthInvalidToken:    m.authInvalidToken.Load(),
		ProxySuccess:        m.proxySuccess.Load(),
		ProxyUpstreamErrors: m.proxyUpstreamErrors.Load(),
		ProxyFailed:         m.proxyFailed.Load(),
		ProxyBadRequests:    m.proxyBadRequests.Load(),
		ProxyBytes:          m.proxyBytes.Load(),
	}
}

// IncGridCreated increments the grid created counter.
func (m *InMemoryRecorder) IncGridCreated() {
	m.gridsCreated.Add(1)
}

// IncGridListed increments the grid list counter.
func (m *InMemoryRecorder) IncGridListed() {
	m.gridsListed.Add(1)
}

// IncStoreError increments the store error counter for op.
func (m *InMemoryRecorder) IncStoreError(op string) {
	switch op {
	case "create":
		m.storeCreateErrors.Add(1)
	case "list":
		m.storeListErrors.Add(1)
	}
}

// IncAuthFailure increments the auth failure counter for reason.
func (m *InMemoryRecorder) IncAuthFailure(reason string) {
	switch reason {
	case "missing_token":
		m.authMissingToken.Add(1)
	case "invalid_token":
		m.authInvalidToken.Add(1)
	}
}

// IncProxyFetch increments the proxy counter for outcome.
func (m *InMemoryRecorder) IncProxyFetch(outcome string) {
	switch outcome {
	case ProxySuccess:
		m.proxySuccess.Add(1)
	case ProxyUpstreamError:
		m.proxyUpstreamErrors.Add(1)
	case ProxyFailed:
		m.proxyFailed.Add(1)
	case ProxyBadRequest:
		m.proxyBadRequests.Add(1)
	}
}

// AddProxyBytes adds n to the proxied byte total.
func (m *InMemoryRecorder) AddProxyBytes(n int64) {
	if n > 0 {
		m.proxyBytes.Add(n)
	}
}
