package http

import (
	"net/http"

	"duedesk-backend/internal/service"
)

type ReminderHandler struct {
	reminders service.ReminderService
}

func NewReminderHandler(reminders service.ReminderService) *ReminderHandler {
	return &ReminderHandler{reminders: reminders}
}

func (h *ReminderHandler) SendReminders(w http.ResponseWriter, r *http.Request) {
	report, err := h.reminders.SendReminders(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, envelope{
		"success": true,
		"count":   report.Count,
		"results": report.Results,
		"message": "Payment reminders dispatched",
	})
}
