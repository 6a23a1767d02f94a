package handler

import (
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/tsunderebot/covers/internal/metrics"
	"github.com/tsunderebot/covers/internal/service"
)

// ProxyHandler streams remote images back to the browser with permissive CORS.
type ProxyHandler struct {
	svc     *service.ProxyService
	logger  *slog.Logger
	metrics metrics.Recorder
}

// NewProxyHandler creates a new ProxyHandler.
func NewProxyHandler(svc *service.ProxyService, logger *slog.Logger, recorder metrics.Recorder) *ProxyHandler {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &ProxyHandler{
		svc:     svc,
		logger:  logger,
		metrics: recorder,
	}
}

// Proxy handles GET /api/proxy?url=...
// The upstream status and body are relayed unchanged.
func (h *ProxyHandler) Proxy(w http.ResponseWriter, r *http.Request) {
	resp, err := h.svc.Fetch(r.Context(), r.URL.Query().Get("url"))
	if err != nil {
		writeTextError(w, r, err)
		return
	}
	defer resp.Body.Close()

	header := w.Header()
	header.Set("Access-Control-Allow-Origin", "*")
	if ct := resp.Header.Get("Content-Type"); ct != "" {
		header.Set("Content-Type", ct)
	} else {
		// nil suppresses net/http content sniffing
		header["Content-Type"] = nil
	}
	if resp.ContentLength >= 0 {
		header.Set("Content-Length", strconv.FormatInt(resp.ContentLength, 10))
	}

	w.WriteHeader(resp.StatusCode)

	n, err := io.Copy(w, resp.Body)
	h.metrics.AddProxyBytes(n)
	if err != nil {
		// Headers are already sent; all that is left is to stop writing.
		h.logger.WarnContext(r.Context(), "proxy stream interrupted",
			slog.Int64("bytes", n),
			slog.String("error", err.Error()),
		)
	}
}
