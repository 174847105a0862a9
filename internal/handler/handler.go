package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"threadkart/internal/middleware"
	"threadkart/internal/model"

	"github.com/rs/zerolog"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but don't expose it to the client
		return
	}
}

// writeError writes an error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string, logger zerolog.Logger) {
	logger.Error().Str("error", message).Int("status", status).Msg("handler error")
	writeJSON(w, status, model.ErrorResponse{Error: message})
}

// writeServiceError maps a service-layer error to an HTTP response.
func writeServiceError(w http.ResponseWriter, err error, logger zerolog.Logger) {
	var domainErr *model.DomainError
	if !errors.As(err, &domainErr) {
		writeError(w, http.StatusInternalServerError, "internal server error", logger)
		return
	}

	status := http.StatusBadRequest
	switch domainErr.Code {
	case model.ErrCodeProductNotFound, model.ErrCodeCouponNotFound, model.ErrCodeOrderNotFound:
		status = http.StatusNotFound
	case model.ErrCodeUnauthorised:
		status = http.StatusUnauthorized
	case model.ErrCodeForbidden:
		status = http.StatusForbidden
	case model.ErrCodeInternalError:
		status = http.StatusInternalServerError
	}

	logger.Warn().Str("code", domainErr.Code).Int("status", status).Msg("request rejected")
	writeJSON(w, status, model.ErrorResponse{Error: domainErr.Code, Message: domainErr.Message})
}

// requireUser extracts the authenticated user ID or writes a 401.
func requireUser(w http.ResponseWriter, r *http.Request, logger zerolog.Logger) (string, bool) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required", logger)
		return "", false
	}
	return userID, true
}

// requireAdmin verifies the request carries the admin role or writes a 403.
func requireAdmin(w http.ResponseWriter, r *http.Request, logger zerolog.Logger) bool {
	if !middleware.IsAdmin(r.Context()) {
		writeError(w, http.StatusForbidden, "admin access required", logger)
		return false
	}
	return true
}
