package session

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/maketee/maketee/backend-go/internal/catalog"
	"github.com/maketee/maketee/backend-go/internal/stage"
)

// Handler exposes the REST surface for creating and resuming customizer
// sessions; the websocket endpoint carries everything after that.
type Handler struct {
	hub     *Hub
	catalog *catalog.Catalog
}

func NewHandler(hub *Hub, cat *catalog.Catalog) *Handler {
	return &Handler{hub: hub, catalog: cat}
}

type createSessionRequest struct {
	ProductID string `json:"productId"`
	ColorID   string `json:"colorId"`
}

type sessionResponse struct {
	SessionID    string              `json:"sessionId"`
	ProductID    string              `json:"productId"`
	ColorID      string              `json:"colorId"`
	ActiveSide   string              `json:"activeSide"`
	MockupURL    string              `json:"mockupUrl"`
	GarmentColor string              `json:"garmentColor"`
	View         stage.ViewTransform `json:"view"`
}

func sessionToResponse(sessionID string, c *stage.Controller) sessionResponse {
	return sessionResponse{
		SessionID:    sessionID,
		ProductID:    c.Product().ID,
		ColorID:      c.ColorID(),
		ActiveSide:   string(c.ActiveSide()),
		MockupURL:    c.MockupURL(),
		GarmentColor: c.GarmentColor(),
		View:         c.View(),
	}
}

// Create mounts a new session for a catalog product.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	product, err := h.catalog.Get(req.ProductID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "product not found"})
		return
	}

	sessionID := h.hub.CreateSession(product, req.ColorID)
	ctrl, err := h.hub.Controller(sessionID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "session not mounted"})
		return
	}

	writeJSON(w, http.StatusCreated, sessionToResponse(sessionID, ctrl))
}

// Get returns the current state of a live session, remounting it from its
// stored snapshot when the hub no longer holds it (cart reload).
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionId"]

	ctrl, err := h.hub.Controller(sessionID)
	if errors.Is(err, ErrSessionNotFound) {
		productID := r.URL.Query().Get("productId")
		product, catErr := h.catalog.Get(productID)
		if catErr != nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
			return
		}
		ctrl, err = h.hub.ResumeSession(sessionID, product)
	}
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
		return
	}

	writeJSON(w, http.StatusOK, sessionToResponse(sessionID, ctrl))
}

// ServeWS upgrades GET /ws/session/{sessionId} to the session's websocket.
// Buyers connect anonymously; staff connect with ?observer=1 to watch.
func (h *Handler) ServeWS(allowedOrigins []string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := mux.Vars(r)["sessionId"]
		if !h.hub.HasSession(sessionID) {
			productID := r.URL.Query().Get("productId")
			product, err := h.catalog.Get(productID)
			if err != nil {
				http.Error(w, "session not found", http.StatusNotFound)
				return
			}
			if _, err := h.hub.ResumeSession(sessionID, product); err != nil {
				http.Error(w, "session not found", http.StatusNotFound)
				return
			}
		}

		observer := r.URL.Query().Get("observer") == "1"
		displayName := r.URL.Query().Get("name")
		if displayName == "" {
			displayName = "Anonymous"
		}

		conn, err := acceptWebSocket(w, r, allowedOrigins)
		if err != nil {
			slog.Error("websocket accept", "error", err)
			return
		}

		clientID := uuid.New().String()
		client := NewClient(h.hub, conn, sessionID, clientID, displayName, observer)
		h.hub.Register(client)

		ctx := r.Context()
		go client.WritePump(ctx)
		client.ReadPump(ctx)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}
