package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"threadkart/internal/model"
	"threadkart/internal/payment"
	"threadkart/internal/service"

	"github.com/rs/zerolog"
)

// maxWebhookBody caps webhook payload reads at 1 MiB.
const maxWebhookBody = 1 << 20

// CheckoutHandler handles checkout session and payment completion requests.
type CheckoutHandler struct {
	service service.CheckoutService
	logger  zerolog.Logger
}

// NewCheckoutHandler creates a new checkout handler.
func NewCheckoutHandler(service service.CheckoutService, logger zerolog.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		service: service,
		logger:  logger.With().Str("handler", "checkout").Logger(),
	}
}

// CreateSession handles POST /api/checkout/session requests.
func (h *CheckoutHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	userID, ok := requireUser(w, r, h.logger)
	if !ok {
		return
	}

	var req model.CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", h.logger)
		return
	}

	resp, err := h.service.CreateSession(r.Context(), userID, &req)
	if err != nil {
		if errors.Is(err, payment.ErrProviderUnavailable) {
			writeError(w, http.StatusBadGateway, "payment provider unavailable", h.logger)
			return
		}
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Confirm handles POST /api/checkout/confirm requests. The client calls
// this after being redirected back from the hosted payment page.
func (h *CheckoutHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	if _, ok := requireUser(w, r, h.logger); !ok {
		return
	}

	var req struct {
		SessionID string `json:"sessionId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", h.logger)
		return
	}
	if req.SessionID == "" {
		writeError(w, http.StatusBadRequest, "session ID is required", h.logger)
		return
	}

	order, err := h.service.Reconcile(r.Context(), req.SessionID)
	if err != nil {
		if errors.Is(err, payment.ErrProviderUnavailable) {
			writeError(w, http.StatusBadGateway, "payment provider unavailable", h.logger)
			return
		}
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Payment successful and order created",
		"orderId": order.ID,
	})
}

// Webhook handles POST /api/webhooks/payment requests from the payment
// provider. The raw body is read before any parsing so the signature is
// verified over the exact bytes the provider signed.
func (h *CheckoutHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body", h.logger)
		return
	}

	err = h.service.HandleWebhook(r.Context(), payload, r.Header.Get(payment.SignatureHeader))
	if err != nil {
		var domainErr *model.DomainError
		if errors.As(err, &domainErr) && domainErr.Code == model.ErrCodeInvalidSignature {
			writeError(w, http.StatusBadRequest, "invalid webhook signature", h.logger)
			return
		}
		// Any other failure returns 500 so the provider retries delivery.
		writeError(w, http.StatusInternalServerError, "webhook processing failed", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"received": true})
}
