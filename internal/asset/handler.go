package asset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gorilla/mux"

	"github.com/maketee/maketee/backend-go/internal/render"
	"github.com/maketee/maketee/backend-go/internal/typeid"
)

const (
	maxUploadSize = 10 << 20 // 10MB
	maxDimension  = 2048     // print masters never need more
)

// UploadResponse is returned from the upload endpoint. DataURI lets the
// client place the image on the canvas without a second round trip.
type UploadResponse struct {
	ID      string `json:"id"`
	URL     string `json:"url"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	Type    string `json:"type"`
	Name    string `json:"name"`
	DataURI string `json:"dataUri"`
}

// Handler serves buyer artwork upload and retrieval endpoints.
type Handler struct {
	dir string
}

// NewHandler creates an asset handler that stores files in dir.
func NewHandler(dir string) *Handler {
	if err := os.MkdirAll(dir, 0755); err != nil {
		slog.Error("create asset dir", "error", err, "dir", dir)
	}
	return &Handler{dir: dir}
}

// Upload handles POST /api/assets/upload (multipart form with "file" field).
// Images are normalized to PNG and downscaled to fit 2048x2048.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		http.Error(w, "file too large (max 10MB)", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "missing file field", http.StatusBadRequest)
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/png") && !strings.HasPrefix(contentType, "image/jpeg") {
		http.Error(w, "only PNG and JPEG images are supported", http.StatusBadRequest)
		return
	}

	img, _, err := image.Decode(file)
	if err != nil {
		http.Error(w, "invalid image: "+err.Error(), http.StatusBadRequest)
		return
	}

	bounds := img.Bounds()
	if bounds.Dx() > maxDimension || bounds.Dy() > maxDimension {
		img = imaging.Fit(img, maxDimension, maxDimension, imaging.Lanczos)
		bounds = img.Bounds()
	}

	var encoded bytes.Buffer
	if err := png.Encode(&encoded, img); err != nil {
		slog.Error("encode png", "error", err)
		http.Error(w, "failed to encode image", http.StatusInternalServerError)
		return
	}

	assetID := typeid.NewAssetID()
	filename := assetID + ".png"
	filePath := filepath.Join(h.dir, filename)

	if err := os.WriteFile(filePath, encoded.Bytes(), 0644); err != nil {
		slog.Error("create asset file", "error", err)
		http.Error(w, "failed to save file", http.StatusInternalServerError)
		return
	}

	resp := UploadResponse{
		ID:      assetID,
		URL:     fmt.Sprintf("/assets/%s", filename),
		Width:   bounds.Dx(),
		Height:  bounds.Dy(),
		Type:    "png",
		Name:    header.Filename,
		DataURI: render.EncodeDataURI(encoded.Bytes()),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(resp)
}

// Serve returns an http.Handler that serves stored asset files with caching
// headers. Asset IDs are unique, so files are immutable.
func (h *Handler) Serve() http.Handler {
	fs := http.FileServer(http.Dir(h.dir))
	return http.StripPrefix("/assets/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		fs.ServeHTTP(w, r)
	}))
}

// Delete removes an asset file from disk.
func (h *Handler) Delete(assetID string) error {
	path := filepath.Join(h.dir, assetID+".png")
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("asset not found: %s", assetID)
	}
	return nil
}

// Remove handles DELETE /api/assets/{assetId}, the staff cleanup endpoint for
// abandoned uploads.
func (h *Handler) Remove(w http.ResponseWriter, r *http.Request) {
	assetID := mux.Vars(r)["assetId"]
	if err := h.Delete(assetID); err != nil {
		http.Error(w, "asset not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
