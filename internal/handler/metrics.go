package handler

import (
	"fmt"
	"net/http"

	"github.com/tsunderebot/covers/internal/metrics"
)

// MetricsHandler exposes in-memory metrics.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(snapshotter metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter}
}

// Metrics returns metrics in Prometheus exposition format.
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	snap := h.snapshotter.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	writeMetric(w, "covers_grids_created_total %d\n", snap.GridsCreated)
	writeMetric(w, "covers_grids_listed_total %d\n", snap.GridsListed)
	writeMetric(w, "covers_store_errors_total{op=\"create\"} %d\n", snap.StoreCreateErrors)
	writeMetric(w, "covers_store_errors_total{op=\"list\"} %d\n", snap.StoreListErrors)

	writeMetric(w, "covers_auth_failures_total{reason=\"missing_token\"} %d\n", snap.AuthMissingToken)
	writeMetric(w, "covers_auth_failures_total{reason=\"invalid_token\"} %d\n", snap.AuthInvalidToken)

	writeMetric(w, "covers_proxy_fetches_total{outcome=\"success\"} %d\n", snap.ProxySuccess)
	writeMetric(w, "covers_proxy_fetches_total{outcome=\"upstream_error\"} %d\n", snap.ProxyUpstreamErrors)
	writeMetric(w, "covers_proxy_fetches_total{outcome=\"failed\"} %d\n", snap.ProxyFailed)
	writeMetric(w, "covers_proxy_fetches_total{outcome=\"bad_request\"} %d\n", snap.ProxyBadRequests)
	writeMetric(w, "covers_proxy_bytes_total %d\n", snap.ProxyBytes)
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
