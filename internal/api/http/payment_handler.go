package http

import (
	"net/http"
	"strings"

	"duedesk-backend/internal/domain"
	"duedesk-backend/internal/service"
)

type PaymentHandler struct {
	payments service.PaymentService
}

func NewPaymentHandler(payments service.PaymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

// UpdatePayment records a manual payment adjustment, either adding to or
// setting the paid amount.
func (h *PaymentHandler) UpdatePayment(w http.ResponseWriter, r *http.Request) {
	id, err := customerID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	var req struct {
		PaymentAmount float64 `json:"paymentAmount"`
		PaymentType   string  `json:"paymentType"`
		PaymentMode   string  `json:"paymentMode"`
		Description   string  `json:"description"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if req.PaymentType == "" {
		req.PaymentType = "add"
	}
	if req.PaymentMode == "" {
		req.PaymentMode = string(domain.PaymentModeCash)
	}

	mode := domain.PaymentMode(strings.ToLower(req.PaymentMode))
	var details *domain.CustomerDetails
	switch req.PaymentType {
	case "add":
		details, err = h.payments.ApplyPayment(r.Context(), id, req.PaymentAmount, mode, req.Description)
	case "set":
		details, err = h.payments.SetPayment(r.Context(), id, req.PaymentAmount, mode, req.Description)
	default:
		respondError(w, r, domain.NewInvalidInput("payment type must be add or set"))
		return
	}
	if err != nil {
		respondError(w, r, err)
		return
	}

	respond(w, http.StatusOK, envelope{
		"success":     true,
		"data":        details,
		"paymentMode": strings.ToUpper(string(mode)),
		"message":     "Payment updated successfully",
	})
}

// ProcessPayment routes the payment through the gateway. The response is held
// until the settlement finishes or the client gives up.
func (h *PaymentHandler) ProcessPayment(w http.ResponseWriter, r *http.Request) {
	id, err := customerID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	var req struct {
		PaymentAmount float64 `json:"paymentAmount"`
		PaymentMode   string  `json:"paymentMode"`
		Description   string  `json:"description"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	mode := domain.PaymentMode(strings.ToLower(req.PaymentMode))
	result, err := h.payments.ProcessPayment(r.Context(), id, req.PaymentAmount, mode, req.Description)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respond(w, http.StatusOK, envelope{
		"success":        true,
		"data":           result.Customer,
		"transactionId":  result.TransactionID,
		"paymentMode":    strings.ToUpper(string(result.PaymentMode)),
		"processingTime": result.ProcessingTime.Milliseconds(),
		"instant":        result.Instant,
		"status":         result.Status,
		"message":        "Payment processed successfully",
	})
}

func (h *PaymentHandler) Reactivate(w http.ResponseWriter, r *http.Request) {
	id, err := customerID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	req := struct {
		NewAmountToPay  float64 `json:"newAmountToPay"`
		ResetAmountPaid *bool   `json:"resetAmountPaid"`
		Description     string  `json:"description"`
	}{}
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	resetPaid := true
	if req.ResetAmountPaid != nil {
		resetPaid = *req.ResetAmountPaid
	}

	details, err := h.payments.Reactivate(r.Context(), id, req.NewAmountToPay, resetPaid, req.Description)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondMessage(w, http.StatusOK, details, "Customer reactivated successfully")
}

func (h *PaymentHandler) Reset(w http.ResponseWriter, r *http.Request) {
	id, err := customerID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	var req struct {
		NewAmountToPay *float64 `json:"newAmountToPay"`
		Description    string   `json:"description"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	details, err := h.payments.Reset(r.Context(), id, req.NewAmountToPay, req.Description)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondMessage(w, http.StatusOK, details, "Customer payment data reset successfully")
}
