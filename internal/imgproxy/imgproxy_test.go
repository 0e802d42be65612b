package imgproxy

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
)

func TestProxyFetchesImage(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte("fake-png-bytes"))
	}))
	defer upstream.Close()

	h := NewHandler(0)
	req := httptest.NewRequest("GET", "/api/img?url="+url.QueryEscape(upstream.URL+"/star.png"), nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("allow-origin = %q, want *", got)
	}
	if got := rec.Header().Get("Content-Type"); got != "image/png" {
		t.Errorf("content-type = %q", got)
	}
	if rec.Body.String() != "fake-png-bytes" {
		t.Error("body not relayed")
	}
}

func TestProxyRejectsBadInput(t *testing.T) {
	h := NewHandler(0)

	tests := []struct {
		name string
		path string
	}{
		{"missing url", "/api/img"},
		{"non-http scheme", "/api/img?url=" + url.QueryEscape("file:///etc/passwd")},
		{"relative url", "/api/img?url=" + url.QueryEscape("/assets/a.png")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest("GET", tt.path, nil))
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestProxyUpstreamFailure(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer upstream.Close()

	h := NewHandler(0)
	req := httptest.NewRequest("GET", "/api/img?url="+url.QueryEscape(upstream.URL+"/gone.png"), nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", rec.Code)
	}
}

func TestProxyRejectsNonImage(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html>"))
	}))
	defer upstream.Close()

	h := NewHandler(0)
	req := httptest.NewRequest("GET", "/api/img?url="+url.QueryEscape(upstream.URL), nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", rec.Code)
	}
}

func TestProxyBodyCap(t *testing.T) {
	big := make([]byte, 2048)
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write(big)
	}))
	defer upstream.Close()

	h := NewHandler(1024)
	req := httptest.NewRequest("GET", "/api/img?url="+url.QueryEscape(upstream.URL), nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Body.Len() != 1024 {
		t.Errorf("relayed %d bytes, want capped 1024", rec.Body.Len())
	}
}
