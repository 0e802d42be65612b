// Package imgproxy fetches remote library artwork on the client's behalf so
// canvas image data stays readable for export.
package imgproxy

import (
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultMaxBytes = 25 << 20 // 25MB

// Handler proxies GET /api/img?url=... for http(s) image sources.
type Handler struct {
	client   *http.Client
	maxBytes int64
}

func NewHandler(maxBytes int64) *Handler {
	if maxBytes <= 0 {
		maxBytes = defaultMaxBytes
	}
	return &Handler{
		client:   &http.Client{Timeout: 15 * time.Second},
		maxBytes: maxBytes,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("url")
	if raw == "" {
		http.Error(w, "missing url parameter", http.StatusBadRequest)
		return
	}

	target, err := url.Parse(raw)
	if err != nil || (target.Scheme != "http" && target.Scheme != "https") {
		http.Error(w, "invalid url", http.StatusBadRequest)
		return
	}

	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, target.String(), nil)
	if err != nil {
		http.Error(w, "invalid url", http.StatusBadRequest)
		return
	}

	resp, err := h.client.Do(req)
	if err != nil {
		slog.Warn("image proxy fetch failed", "url", raw, "error", err)
		http.Error(w, "upstream fetch failed", http.StatusBadGateway)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		http.Error(w, "upstream returned "+resp.Status, http.StatusBadGateway)
		return
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType != "" && !strings.HasPrefix(contentType, "image/") {
		http.Error(w, "upstream is not an image", http.StatusBadGateway)
		return
	}

	w.Header().Set("Access-Control-Allow-Origin", "*")
	if contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	w.Header().Set("Cache-Control", "public, max-age=86400")

	if _, err := io.Copy(w, io.LimitReader(resp.Body, h.maxBytes)); err != nil {
		slog.Warn("image proxy copy failed", "url", raw, "error", err)
	}
}
