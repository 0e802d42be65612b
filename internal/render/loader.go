package render

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const maxImageBytes = 25 << 20 // 25MB decoded source cap

var ErrUnsupportedSource = errors.New("unsupported image source")

// ImageLoader resolves the source shapes a canvas item can carry: embedded
// data URIs, http(s) URLs, proxied library paths, and same-origin paths
// served from the local asset directory.
//
// Every remote load is bounded by Timeout. The source this replaces waited on
// browser decode events with no timeout; a hung fetch here is skipped instead
// of stalling the whole export.
type ImageLoader struct {
	client  *http.Client
	baseDir string
	timeout time.Duration
}

// NewImageLoader creates a loader serving local paths from baseDir.
func NewImageLoader(baseDir string, timeout time.Duration) *ImageLoader {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &ImageLoader{
		client:  &http.Client{Timeout: timeout},
		baseDir: baseDir,
		timeout: timeout,
	}
}

// Load fetches and decodes an image from src.
func (l *ImageLoader) Load(ctx context.Context, src string) (image.Image, error) {
	switch {
	case strings.HasPrefix(src, "data:"):
		return decodeDataURI(src)
	case strings.HasPrefix(src, "http://"), strings.HasPrefix(src, "https://"):
		return l.fetch(ctx, src)
	case src == "":
		return nil, ErrUnsupportedSource
	default:
		if remote, ok := proxiedURL(src); ok {
			return l.fetch(ctx, remote)
		}
		return l.readLocal(src)
	}
}

// proxiedURL unwraps same-origin image proxy paths like
// "/api/img?url=<remote>" back to the remote URL they wrap. The canvas stores
// library items in the proxied form so the browser can read their pixels; the
// server fetches the original directly.
func proxiedURL(src string) (string, bool) {
	u, err := url.Parse(src)
	if err != nil {
		return "", false
	}
	remote := u.Query().Get("url")
	if strings.HasPrefix(remote, "http://") || strings.HasPrefix(remote, "https://") {
		return remote, true
	}
	return "", false
}

func (l *ImageLoader) fetch(ctx context.Context, url string) (image.Image, error) {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch image: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, fmt.Errorf("read image body: %w", err)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

func (l *ImageLoader) readLocal(src string) (image.Image, error) {
	// Served asset URLs look like "/assets/asset_x.png" but the files live at
	// the root of the asset dir, mirroring the upload handler's StripPrefix.
	rel := strings.TrimPrefix(src, "/")
	rel = strings.TrimPrefix(rel, "assets/")
	path := filepath.Join(l.baseDir, filepath.FromSlash(rel))

	// Keep traversal inside the base dir.
	absBase, err := filepath.Abs(l.baseDir)
	if err != nil {
		return nil, err
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(absPath, absBase+string(os.PathSeparator)) && absPath != absBase {
		return nil, fmt.Errorf("%w: path escapes asset dir", ErrUnsupportedSource)
	}

	f, err := os.Open(absPath)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

func decodeDataURI(src string) (image.Image, error) {
	idx := strings.IndexByte(src, ',')
	if idx < 0 {
		return nil, fmt.Errorf("%w: malformed data URI", ErrUnsupportedSource)
	}
	meta, payload := src[5:idx], src[idx+1:]

	var data []byte
	var err error
	if strings.HasSuffix(meta, ";base64") {
		data, err = base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("decode data URI: %w", err)
		}
	} else {
		data = []byte(payload)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

// EncodeDataURI wraps PNG bytes in the data URI form the order flow and the
// download endpoint both consume.
func EncodeDataURI(pngBytes []byte) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngBytes)
}

// DecodeDataURI returns the raw bytes of a base64 data URI.
func DecodeDataURI(uri string) ([]byte, error) {
	idx := strings.IndexByte(uri, ',')
	if idx < 0 || !strings.HasPrefix(uri, "data:") {
		return nil, fmt.Errorf("%w: malformed data URI", ErrUnsupportedSource)
	}
	return base64.StdEncoding.DecodeString(uri[idx+1:])
}
