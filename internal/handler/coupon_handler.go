package handler

import (
	"encoding/json"
	"net/http"

	"threadkart/internal/model"
	"threadkart/internal/service"

	"github.com/rs/zerolog"
)

// CouponHandler handles coupon-related HTTP requests.
type CouponHandler struct {
	service service.CouponService
	logger  zerolog.Logger
}

// NewCouponHandler creates a new coupon handler.
func NewCouponHandler(service service.CouponService, logger zerolog.Logger) *CouponHandler {
	return &CouponHandler{
		service: service,
		logger:  logger.With().Str("handler", "coupon").Logger(),
	}
}

// Validate handles POST /api/coupons/validate requests. It checks
// eligibility for the requesting user without consuming a use.
func (h *CouponHandler) Validate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	userID, ok := requireUser(w, r, h.logger)
	if !ok {
		return
	}

	var req struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", h.logger)
		return
	}
	if req.Code == "" {
		writeError(w, http.StatusBadRequest, "coupon code is required", h.logger)
		return
	}

	coupon, err := h.service.Validate(r.Context(), req.Code, userID)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":            "Coupon is valid",
		"code":               coupon.Code,
		"discountPercentage": coupon.DiscountPercentage,
	})
}

// Collection handles GET and POST /api/coupons requests. Both are admin
// operations.
func (h *CouponHandler) Collection(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r, h.logger) {
		return
	}

	switch r.Method {
	case http.MethodGet:
		coupons, err := h.service.GetAll(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to retrieve coupons", h.logger)
			return
		}
		writeJSON(w, http.StatusOK, coupons)
	case http.MethodPost:
		var req model.CouponRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body", h.logger)
			return
		}

		coupon, err := h.service.Create(r.Context(), &req)
		if err != nil {
			writeServiceError(w, err, h.logger)
			return
		}
		writeJSON(w, http.StatusCreated, coupon)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
	}
}

// Delete handles DELETE /api/coupons/{code} requests.
func (h *CouponHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	if !requireAdmin(w, r, h.logger) {
		return
	}

	// Expecting path: /api/coupons/{code}
	code := r.URL.Path[len("/api/coupons/"):]
	if code == "" {
		writeError(w, http.StatusBadRequest, "coupon code is required", h.logger)
		return
	}

	if err := h.service.Delete(r.Context(), code); err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Coupon deleted successfully"})
}
