package order

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/maketee/maketee/backend-go/internal/store"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// orderResponse is the wire shape for both the buyer confirmation and the
// staff list. Designs and raw assets are passed through as stored.
type orderResponse struct {
	ID              string          `json:"id"`
	ProductID       string          `json:"productId"`
	Email           string          `json:"email"`
	Color           string          `json:"color"`
	Size            string          `json:"size"`
	Quantity        int             `json:"quantity"`
	Status          string          `json:"status"`
	TotalCents      int64           `json:"totalCents"`
	Currency        string          `json:"currency"`
	CustomizedSides []string        `json:"customizedSides"`
	Designs         json.RawMessage `json:"designs,omitempty"`
	RawAssets       json.RawMessage `json:"rawAssets,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
}

func toResponse(o store.Order, includeDesigns bool) orderResponse {
	resp := orderResponse{
		ID:              o.ID,
		ProductID:       o.ProductID,
		Email:           o.Email,
		Color:           o.Color,
		Size:            o.Size,
		Quantity:        o.Quantity,
		Status:          o.Status,
		TotalCents:      o.TotalCents,
		Currency:        o.Currency,
		CustomizedSides: o.CustomizedSides,
		CreatedAt:       o.CreatedAt,
	}
	if includeDesigns {
		resp.Designs = o.Designs
		resp.RawAssets = o.RawAssets
	}
	return resp
}

// Submit is the public checkout endpoint.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var sub Submission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	o, err := h.service.Submit(r.Context(), sub)
	if err != nil {
		if errors.Is(err, ErrInvalidOrder) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		slog.Error("submit order failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "could not create order"})
		return
	}

	writeJSON(w, http.StatusCreated, toResponse(o, false))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["orderId"]
	o, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
		return
	}
	writeJSON(w, http.StatusOK, toResponse(o, true))
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	orders, err := h.service.List(r.Context(), limit)
	if err != nil {
		slog.Error("list orders failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "could not list orders"})
		return
	}

	out := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, toResponse(o, false))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["orderId"]

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	o, err := h.service.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, ErrOrderNotFound):
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
		case errors.Is(err, ErrInvalidOrder):
			writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		default:
			slog.Error("update order status failed", "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "could not update order"})
		}
		return
	}

	writeJSON(w, http.StatusOK, toResponse(o, false))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}
