package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"duedesk-backend/internal/domain"
	"duedesk-backend/internal/logger"
	"duedesk-backend/internal/security"
	"duedesk-backend/internal/service"
)

// envelope is the uniform response shape. Error responses carry success=false
// and an error message; some failures attach extra hint fields.
type envelope map[string]any

func respond(w http.ResponseWriter, status int, payload envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

func respondData(w http.ResponseWriter, status int, data any) {
	respond(w, status, envelope{"success": true, "data": data})
}

func respondMessage(w http.ResponseWriter, status int, data any, message string) {
	respond(w, status, envelope{"success": true, "data": data, "message": message})
}

func respondErrorMessage(w http.ResponseWriter, status int, message string) {
	respond(w, status, envelope{"success": false, "error": message})
}

// respondError maps service and domain errors onto HTTP statuses.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		invalid  *domain.InvalidInputError
		settled  *domain.AlreadySettledError
		exceeded *domain.ExceedsBalanceError
	)

	switch {
	case errors.As(err, &invalid):
		respondErrorMessage(w, http.StatusBadRequest, invalid.Reason)
	case errors.As(err, &settled):
		status := "Fully Paid"
		if settled.AmountPaid > settled.AmountToPay {
			status = "Overpaid"
		}
		respond(w, http.StatusBadRequest, envelope{
			"success":       false,
			"error":         err.Error(),
			"currentStatus": status,
		})
	case errors.As(err, &exceeded):
		respond(w, http.StatusBadRequest, envelope{
			"success":           false,
			"error":             err.Error(),
			"maxAllowedPayment": exceeded.MaxAllowed,
		})
	case errors.Is(err, domain.ErrNotFound):
		respondErrorMessage(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrDuplicateEmail):
		respondErrorMessage(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrGatewayDeclined):
		respondErrorMessage(w, http.StatusPaymentRequired, err.Error())
	case errors.Is(err, domain.ErrSettlementInProgress):
		respondErrorMessage(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		respondErrorMessage(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrWeakPassword):
		respondErrorMessage(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, security.ErrInvalidToken), errors.Is(err, security.ErrExpiredToken):
		respondErrorMessage(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		respondErrorMessage(w, http.StatusRequestTimeout, "request cancelled before the operation finished")
	default:
		logger.ErrorContext(r.Context(), "Request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		respondErrorMessage(w, http.StatusInternalServerError, "internal server error")
	}
}

// decodeJSON reads a single JSON object into dst, rejecting trailing content.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1_048_576)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return domain.NewInvalidInput("invalid request body")
	}
	if dec.More() {
		return domain.NewInvalidInput("request body must contain a single JSON object")
	}
	return nil
}
