package handler

import (
	"encoding/json"
	"net/http"

	"threadkart/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// CartHandler handles cart-related HTTP requests.
type CartHandler struct {
	service service.CartService
	logger  zerolog.Logger
}

// NewCartHandler creates a new cart handler.
func NewCartHandler(service service.CartService, logger zerolog.Logger) *CartHandler {
	return &CartHandler{
		service: service,
		logger:  logger.With().Str("handler", "cart").Logger(),
	}
}

type cartItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// Cart handles GET, POST, PUT and DELETE /api/cart requests.
func (h *CartHandler) Cart(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, h.logger)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.get(w, r, userID)
	case http.MethodPost:
		h.add(w, r, userID)
	case http.MethodPut:
		h.setQuantity(w, r, userID)
	case http.MethodDelete:
		h.remove(w, r, userID)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
	}
}

func (h *CartHandler) get(w http.ResponseWriter, r *http.Request, userID string) {
	lines, err := h.service.Get(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to retrieve cart", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, lines)
}

func (h *CartHandler) add(w http.ResponseWriter, r *http.Request, userID string) {
	var req cartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", h.logger)
		return
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid product ID format", h.logger)
		return
	}

	if err := h.service.Add(r.Context(), userID, productID); err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	lines, err := h.service.Get(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to retrieve cart", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, lines)
}

func (h *CartHandler) setQuantity(w http.ResponseWriter, r *http.Request, userID string) {
	var req cartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", h.logger)
		return
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid product ID format", h.logger)
		return
	}

	if err := h.service.SetQuantity(r.Context(), userID, productID, req.Quantity); err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	lines, err := h.service.Get(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to retrieve cart", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, lines)
}

func (h *CartHandler) remove(w http.ResponseWriter, r *http.Request, userID string) {
	var req struct {
		ProductID string `json:"productId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", h.logger)
		return
	}

	// An empty product ID clears the whole cart.
	if req.ProductID == "" {
		if err := h.service.Clear(r.Context(), userID); err != nil {
			writeError(w, http.StatusInternalServerError, "failed to clear cart", h.logger)
			return
		}
		writeJSON(w, http.StatusOK, []struct{}{})
		return
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid product ID format", h.logger)
		return
	}

	if err := h.service.Remove(r.Context(), userID, productID); err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	lines, err := h.service.Get(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to retrieve cart", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, lines)
}
