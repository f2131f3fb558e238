package handlers

import (
	"net/http"

	"trello-project/microservices/task-manager/logging"
	"trello-project/microservices/task-manager/services"
)

type ReminderHandler struct {
	scanner *services.ReminderScanner
}

func NewReminderHandler(scanner *services.ReminderScanner) *ReminderHandler {
	return &ReminderHandler{scanner: scanner}
}

// Trigger runs one reminder pass synchronously and returns the matched tasks.
func (h *ReminderHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	caller, ok := actor(w, r)
	if !ok {
		return
	}
	logging.Logger.Infof("Event ID: REMINDERS_TRIGGERED, Description: Manual reminder pass requested by %s", caller.DisplayName())
	matches := h.scanner.Scan(r.Context())
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"matched": len(matches),
		"tasks":   matches,
	})
}
