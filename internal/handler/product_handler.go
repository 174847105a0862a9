package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"threadkart/internal/model"
	"threadkart/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ProductHandler handles product-related HTTP requests.
type ProductHandler struct {
	service service.ProductService
	logger  zerolog.Logger
}

// NewProductHandler creates a new product handler.
func NewProductHandler(service service.ProductService, logger zerolog.Logger) *ProductHandler {
	return &ProductHandler{
		service: service,
		logger:  logger.With().Str("handler", "product").Logger(),
	}
}

// Collection handles GET and POST /api/products requests. Listing the
// full catalogue and creating products are admin operations.
func (h *ProductHandler) Collection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.getAll(w, r)
	case http.MethodPost:
		h.create(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
	}
}

func (h *ProductHandler) getAll(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r, h.logger) {
		return
	}

	products, err := h.service.GetAll(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to retrieve products", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, products)
}

func (h *ProductHandler) create(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r, h.logger) {
		return
	}

	var req model.ProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", h.logger)
		return
	}

	product, err := h.service.Create(r.Context(), &req)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, product)
}

// GetFeatured handles GET /api/products/featured requests.
func (h *ProductHandler) GetFeatured(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	products, err := h.service.GetFeatured(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to retrieve featured products", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, products)
}

// GetRecommended handles GET /api/products/recommended requests.
func (h *ProductHandler) GetRecommended(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	products, err := h.service.GetRecommended(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to retrieve recommended products", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, products)
}

// GetByCategory handles GET /api/products/category/{category} requests.
func (h *ProductHandler) GetByCategory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	// Expecting path: /api/products/category/{category}
	category := r.URL.Path[len("/api/products/category/"):]
	if category == "" || strings.Contains(category, "/") {
		writeError(w, http.StatusBadRequest, "category is required", h.logger)
		return
	}

	products, err := h.service.GetByCategory(r.Context(), category)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to retrieve products", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, products)
}

// ByID handles DELETE and PATCH /api/products/{id} requests. Both are
// admin operations; PATCH toggles the featured flag.
func (h *ProductHandler) ByID(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r, h.logger) {
		return
	}

	// Expecting path: /api/products/{id}
	productIDStr := r.URL.Path[len("/api/products/"):]
	if productIDStr == "" {
		writeError(w, http.StatusBadRequest, "product ID is required", h.logger)
		return
	}

	productID, err := uuid.Parse(productIDStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid product ID format", h.logger)
		return
	}

	switch r.Method {
	case http.MethodDelete:
		if err := h.service.Delete(r.Context(), productID); err != nil {
			writeServiceError(w, err, h.logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "Product deleted successfully"})
	case http.MethodPatch:
		product, err := h.service.ToggleFeatured(r.Context(), productID)
		if err != nil {
			writeServiceError(w, err, h.logger)
			return
		}
		writeJSON(w, http.StatusOK, product)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
	}
}
