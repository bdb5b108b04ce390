package http

import (
	"net/http"
	"strconv"

	"duedesk-backend/internal/domain"
	"duedesk-backend/internal/service"

	"github.com/gorilla/mux"
)

type CustomerHandler struct {
	customers service.CustomerService
}

func NewCustomerHandler(customers service.CustomerService) *CustomerHandler {
	return &CustomerHandler{customers: customers}
}

func (h *CustomerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var draft service.CustomerDraft
	if err := decodeJSON(w, r, &draft); err != nil {
		respondError(w, r, err)
		return
	}

	details, err := h.customers.Create(r.Context(), draft)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondMessage(w, http.StatusCreated, details, "Customer created successfully")
}

func (h *CustomerHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := customerID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	var draft service.CustomerDraft
	if err := decodeJSON(w, r, &draft); err != nil {
		respondError(w, r, err)
		return
	}

	details, err := h.customers.Update(r.Context(), id, draft)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondMessage(w, http.StatusOK, details, "Customer updated successfully")
}

func (h *CustomerHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := customerID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	details, err := h.customers.Get(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, details)
}

func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := service.ListOptions{
		Status: domain.PaymentStatus(q.Get("status")),
		SortBy: q.Get("sortBy"),
		Order:  q.Get("order"),
		Limit:  intQuery(q.Get("limit"), 0),
		Offset: intQuery(q.Get("offset"), 0),
	}

	customers, summary, total, err := h.customers.List(r.Context(), opts)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, envelope{
		"success": true,
		"data":    customers,
		"summary": summary,
		"total":   total,
	})
}

func (h *CustomerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := customerID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	details, err := h.customers.Delete(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondMessage(w, http.StatusOK, details, "Customer deleted successfully")
}

func customerID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.NewInvalidInput("valid customer ID is required")
	}
	return id, nil
}

func intQuery(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
