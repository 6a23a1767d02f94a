package service

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/tsunderebot/covers/internal/apperror"
	"github.com/tsunderebot/covers/internal/metrics"
)

// Messages returned to proxy clients.
const (
	MsgNoURL      = "No URL"
	MsgProxyError = "Proxy error"
)

const (
	// DefaultProxyDialTimeout is the connection timeout.
	DefaultProxyDialTimeout = 10 * time.Second
	// DefaultProxyResponseHeaderTimeout is time to wait for response headers.
	DefaultProxyResponseHeaderTimeout = 15 * time.Second
	tlsHandshakeTimeout               = 10 * time.Second
	proxyUserAgent                    = "covers-image-proxy/1.0"
)

// ProxyConfig holds the outbound client settings.
type ProxyConfig struct {
	DialTimeout           time.Duration
	ResponseHeaderTimeout time.Duration
	// BlockPrivateNetworks refuses connections to loopback, private and link-local addresses.
	BlockPrivateNetworks bool
}

// NewProxyHTTPClient creates the client used for image fetches.
// It follows redirects and has no overall timeout so large bodies can stream;
// the request context bounds the whole exchange.
func NewProxyHTTPClient(cfg ProxyConfig) *http.Client {
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = DefaultProxyDialTimeout
	}
	if cfg.ResponseHeaderTimeout <= 0 {
		cfg.ResponseHeaderTimeout = DefaultProxyResponseHeaderTimeout
	}

	dialer := &net.Dialer{
		Timeout:   cfg.DialTimeout,
		KeepAlive: 30 * time.Second,
	}
	if cfg.BlockPrivateNetworks {
		dialer.Control = denyPrivateDial
	}

	transport := &http.Transport{
		DialContext:           dialer.DialContext,
		TLSHandshakeTimeout:   tlsHandshakeTimeout,
		ResponseHeaderTimeout: cfg.ResponseHeaderTimeout,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
	}
	if !cfg.BlockPrivateNetworks {
		// With the guard on, dials must go to the destination itself, not an outbound proxy.
		transport.Proxy = http.ProxyFromEnvironment
	}

	return &http.Client{Transport: transport}
}

// ProxyService fetches remote images on behalf of browsers.
type ProxyService struct {
	client  *http.Client
	logger  *slog.Logger
	metrics metrics.Recorder
}

// NewProxyService creates a new ProxyService. A nil client gets NewProxyHTTPClient defaults.
func NewProxyService(client *http.Client, logger *slog.Logger, recorder metrics.Recorder) *ProxyService {
	if client == nil {
		client = NewProxyHTTPClient(ProxyConfig{})
	}
	if logger == nil {
		logger = slog.Default()
	}
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &ProxyService{
		client:  client,
		logger:  logger,
		metrics: recorder,
	}
}

// Fetch issues a GET for rawURL. Any upstream status is returned as-is;
// the caller owns the response body.
func (s *ProxyService) Fetch(ctx context.Context, rawURL string) (*http.Response, error) {
	if rawURL == "" {
		s.metrics.IncProxyFetch(metrics.ProxyBadRequest)
		return nil, apperror.BadRequest(MsgNoURL, nil)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, s.fail(ctx, rawURL, err)
	}
	req.Header.Set("User-Agent", proxyUserAgent)
	req.Header.Set("Accept", "image/*,*/*;q=0.8")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, s.fail(ctx, rawURL, err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		s.metrics.IncProxyFetch(metrics.ProxySuccess)
	} else {
		s.metrics.IncProxyFetch(metrics.ProxyUpstreamError)
		s.logger.WarnContext(ctx, "proxy upstream returned non-success status",
			slog.String("host", targetHost(rawURL)),
			slog.Int("status", resp.StatusCode),
		)
	}
	return resp, nil
}

func (s *ProxyService) fail(ctx context.Context, rawURL string, err error) error {
	s.metrics.IncProxyFetch(metrics.ProxyFailed)
	s.logger.ErrorContext(ctx, "proxy fetch failed",
		slog.String("host", targetHost(rawURL)),
		slog.String("error", err.Error()),
	)
	return apperror.Proxy(MsgProxyError, err)
}
