package handlers

import (
	"net/http"

	"trello-project/microservices/task-manager/services"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ActivityHandler struct {
	service *services.ActivityService
}

func NewActivityHandler(service *services.ActivityService) *ActivityHandler {
	return &ActivityHandler{service: service}
}

// GetActivities lists recent activity, optionally filtered with ?taskId=.
func (h *ActivityHandler) GetActivities(w http.ResponseWriter, r *http.Request) {
	var taskID *primitive.ObjectID
	if raw := r.URL.Query().Get("taskId"); raw != "" {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			http.Error(w, "Invalid taskId", http.StatusBadRequest)
			return
		}
		taskID = &id
	}
	activities, err := h.service.List(r.Context(), taskID, queryLimit(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, activities)
}
