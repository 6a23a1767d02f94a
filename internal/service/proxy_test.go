package service

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/tsunderebot/covers/internal/apperror"
	"github.com/tsunderebot/covers/internal/metrics"
)

func newTestProxyService(t *testing.T) (*ProxyService, *metrics.InMemoryRecorder) {
	t.Helper()
	recorder := metrics.NewInMemory()
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	return NewProxyService(NewProxyHTTPClient(ProxyConfig{}), logger, recorder), recorder
}

func TestProxyService_EmptyURL(t *testing.T) {
	svc, recorder := newTestProxyService(t)

	resp, err := svc.Fetch(context.Background(), "")
	if resp != nil {
		t.Fatal("expected no response")
	}
	if apperror.KindOf(err) != apperror.KindBadRequest || apperror.MessageOf(err) != MsgNoURL {
		t.Fatalf("err = %v, want bad request %q", err, MsgNoURL)
	}
	if recorder.Snapshot().ProxyBadRequests != 1 {
		t.Error("bad request not counted")
	}
}

func TestProxyService_Success(t *testing.T) {
	img := []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}
	var gotUA atomic.Value
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA.Store(r.UserAgent())
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(img)
	}))
	defer upstream.Close()

	svc, recorder := newTestProxyService(t)
	resp, err := svc.Fetch(context.Background(), upstream.URL+"/cover.png")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if !bytes.Equal(body, img) {
		t.Errorf("body = %v, want %v", body, img)
	}
	if resp.Header.Get("Content-Type") != "image/png" {
		t.Errorf("content type = %q", resp.Header.Get("Content-Type"))
	}
	if gotUA.Load() != proxyUserAgent {
		t.Errorf("user agent = %v", gotUA.Load())
	}
	if recorder.Snapshot().ProxySuccess != 1 {
		t.Error("success not counted")
	}
}

func TestProxyService_FollowsRedirects(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/old" {
			http.Redirect(w, r, "/new", http.StatusFound)
			return
		}
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write([]byte("jpeg"))
	}))
	defer upstream.Close()

	svc, _ := newTestProxyService(t)
	resp, err := svc.Fetch(context.Background(), upstream.URL+"/old")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200 after redirect", resp.StatusCode)
	}
}

func TestProxyService_UpstreamErrorPassedThrough(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer upstream.Close()

	svc, recorder := newTestProxyService(t)
	resp, err := svc.Fetch(context.Background(), upstream.URL)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
	if recorder.Snapshot().ProxyUpstreamErrors != 1 {
		t.Error("upstream error not counted")
	}
}

func TestProxyService_FetchErrors(t *testing.T) {
	closed := httptest.NewServer(http.NotFoundHandler())
	closedURL := closed.URL
	closed.Close()

	tests := []struct {
		name string
		url  string
	}{
		{"unreachable host", closedURL + "/x.png"},
		{"unsupported scheme", "ftp://example.com/x.png"},
		{"malformed", "http://[::1"},
		{"relative", "/covers/x.png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, recorder := newTestProxyService(t)

			resp, err := svc.Fetch(context.Background(), tt.url)
			if resp != nil {
				resp.Body.Close()
				t.Fatal("expected no response")
			}
			if apperror.KindOf(err) != apperror.KindProxy || apperror.MessageOf(err) != MsgProxyError {
				t.Fatalf("err = %v, want proxy error", err)
			}
			if recorder.Snapshot().ProxyFailed != 1 {
				t.Error("failure not counted")
			}
		})
	}
}

func TestNewProxyHTTPClient_Defaults(t *testing.T) {
	client := NewProxyHTTPClient(ProxyConfig{})
	if client.Timeout != 0 {
		t.Errorf("Timeout = %v, want none", client.Timeout)
	}
	if client.CheckRedirect != nil {
		t.Error("redirects should be followed")
	}
	transport, ok := client.Transport.(*http.Transport)
	if !ok {
		t.Fatalf("transport type = %T", client.Transport)
	}
	if transport.ResponseHeaderTimeout != DefaultProxyResponseHeaderTimeout {
		t.Errorf("ResponseHeaderTimeout = %v", transport.ResponseHeaderTimeout)
	}
}
