package handlers

import (
	"net/http"

	"trello-project/microservices/task-manager/logging"
	"trello-project/microservices/task-manager/services"
)

type NotificationHandler struct {
	service *services.NotificationService
}

func NewNotificationHandler(service *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{service: service}
}

// HTTP handler za dobijanje notifikacija korisnika
func (nh *NotificationHandler) GetNotifications(w http.ResponseWriter, r *http.Request) {
	caller, ok := actor(w, r)
	if !ok {
		return
	}
	notifications, err := nh.service.GetNotificationsByUsername(caller.Username)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, notifications)
}

type notificationKey struct {
	ID        string `json:"id"`
	CreatedAt string `json:"createdAt"`
}

func (nh *NotificationHandler) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	caller, ok := actor(w, r)
	if !ok {
		return
	}
	var req notificationKey
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := nh.service.MarkNotificationAsRead(caller.Username, req.ID, req.CreatedAt); err != nil {
		writeError(w, r, err)
		return
	}
	logging.Logger.Infof("Event ID: NOTIFICATION_READ, Description: Notification %s marked as read for %s", req.ID, caller.Username)
	w.WriteHeader(http.StatusNoContent)
}

func (nh *NotificationHandler) DeleteNotification(w http.ResponseWriter, r *http.Request) {
	caller, ok := actor(w, r)
	if !ok {
		return
	}
	var req notificationKey
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := nh.service.DeleteNotification(caller.Username, req.ID, req.CreatedAt); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
