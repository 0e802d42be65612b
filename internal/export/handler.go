package export

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/maketee/maketee/backend-go/internal/design"
	"github.com/maketee/maketee/backend-go/internal/render"
	"github.com/maketee/maketee/backend-go/internal/stage"
)

// ControllerSource looks up the live stage controller for a session.
type ControllerSource interface {
	Controller(sessionID string) (*stage.Controller, error)
}

// Handler exposes the export endpoints the checkout flow calls.
type Handler struct {
	coordinator *Coordinator
	sessions    ControllerSource
}

func NewHandler(coordinator *Coordinator, sessions ControllerSource) *Handler {
	return &Handler{coordinator: coordinator, sessions: sessions}
}

// exportResponse is the checkout payload: flattened PNGs per customized side
// plus the raw sources for production.
type exportResponse struct {
	SessionID       string                 `json:"sessionId"`
	CustomizedSides []design.Side          `json:"customizedSides"`
	SidesCount      int                    `json:"sidesCount"`
	Designs         map[design.Side]string `json:"designs"`
	RawAssets       RawAssets              `json:"rawAssets"`
}

// ExportAll handles POST /sessions/{sessionId}/export.
func (h *Handler) ExportAll(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionId"]
	ctrl, err := h.sessions.Controller(sessionID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
		return
	}

	designs, err := h.coordinator.ExportAllCustomizedSides(r.Context(), ctrl)
	if err != nil {
		// Only context cancellation aborts the fan-out.
		slog.Warn("export cancelled", "session", sessionID, "error", err)
		writeJSON(w, http.StatusRequestTimeout, map[string]string{"error": "export cancelled"})
		return
	}

	sides := h.coordinator.CustomizedSides(ctrl)
	writeJSON(w, http.StatusOK, exportResponse{
		SessionID:       sessionID,
		CustomizedSides: sides,
		SidesCount:      len(sides),
		Designs:         designs,
		RawAssets:       h.coordinator.GetRawAssets(ctrl),
	})
}

// ExportActive handles GET /sessions/{sessionId}/export/active and returns
// the live side's capture as a data URI.
func (h *Handler) ExportActive(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionId"]
	ctrl, err := h.sessions.Controller(sessionID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
		return
	}

	uri, err := h.coordinator.ExportActiveSide(r.Context(), ctrl)
	if err != nil {
		slog.Error("active side export failed", "session", sessionID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "export failed"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"side":    string(ctrl.ActiveSide()),
		"dataUri": uri,
	})
}

// Download handles GET /sessions/{sessionId}/design.png and streams the
// active side's capture as a PNG attachment named after the product.
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionId"]
	ctrl, err := h.sessions.Controller(sessionID)
	if err != nil {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	uri, err := h.coordinator.ExportActiveSide(r.Context(), ctrl)
	if err != nil || uri == "" {
		slog.Error("download export failed", "session", sessionID, "error", err)
		http.Error(w, "export failed", http.StatusInternalServerError)
		return
	}

	pngBytes, err := render.DecodeDataURI(uri)
	if err != nil {
		http.Error(w, "export failed", http.StatusInternalServerError)
		return
	}

	filename := fmt.Sprintf("design-%s.png", ctrl.Product().ID)
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Write(pngBytes)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}
