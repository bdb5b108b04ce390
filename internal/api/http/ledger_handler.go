package http

import (
	"net/http"
	"strconv"

	"duedesk-backend/internal/domain"
	"duedesk-backend/internal/repository"
	"duedesk-backend/internal/service"
)

type LedgerHandler struct {
	ledger service.LedgerService
}

func NewLedgerHandler(ledger service.LedgerService) *LedgerHandler {
	return &LedgerHandler{ledger: ledger}
}

func (h *LedgerHandler) CustomerTransactions(w http.ResponseWriter, r *http.Request) {
	id, err := customerID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	q := r.URL.Query()
	entries, total, err := h.ledger.ListCustomerTransactions(r.Context(), id,
		intQuery(q.Get("limit"), 50), intQuery(q.Get("offset"), 0))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, envelope{
		"success": true,
		"data":    entries,
		"total":   total,
	})
}

func (h *LedgerHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := repository.TransactionFilter{
		Type:   domain.TransactionType(q.Get("transactionType")),
		Limit:  intQuery(q.Get("limit"), 100),
		Offset: intQuery(q.Get("offset"), 0),
	}
	if raw := q.Get("customerId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			respondError(w, r, domain.NewInvalidInput("valid customer ID is required"))
			return
		}
		filter.CustomerID = id
	}

	entries, total, err := h.ledger.ListTransactions(r.Context(), filter)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, envelope{
		"success": true,
		"data":    entries,
		"total":   total,
	})
}

func (h *LedgerHandler) Cycles(w http.ResponseWriter, r *http.Request) {
	id, err := customerID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	cycles, err := h.ledger.ListCycles(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, cycles)
}

func (h *LedgerHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	summary, err := h.ledger.DashboardSummary(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, summary)
}
