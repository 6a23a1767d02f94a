package metrics

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncGridCreated is a no-op.
func (n *NoopRecorder) IncGridCreated() {}

// IncGridListed is a no-op.
func (n *NoopRecorder) IncGridListed() {}

// IncStoreError is a no-op.
func (n *NoopRecorder) IncStoreError(op string) {}

// IncAuthFailure is a no-op.
func (n *NoopRecorder) IncAuthFailure(reason string) {}

// IncProxyFetch is a no-op.
func (n *NoopRecorder) IncProxyFetch(outcome string) {}

// AddProxyBytes is a no-op.
func (n *NoopRecorder) AddProxyBytes(int64) {}
