package services

import (
	"fmt"
	"time"

	"trello-project/microservices/task-manager/logging"
	"trello-project/microservices/task-manager/models"

	"github.com/google/uuid"
)

// Notifier delivers an in-app notification; failures are the notifier's to log.
type Notifier interface {
	Notify(user models.User, message string)
}

type nopNotifier struct{}

func (nopNotifier) Notify(models.User, string) {}

// NotificationService backs the in-app feed. A nil store means the feed is not configured.
type NotificationService struct {
	repo NotificationStore
}

func NewNotificationService(repo NotificationStore) *NotificationService {
	return &NotificationService{repo: repo}
}

func (ns *NotificationService) Enabled() bool {
	return ns != nil && ns.repo != nil
}

func (ns *NotificationService) Notify(user models.User, message string) {
	if !ns.Enabled() {
		return
	}
	if err := ns.CreateNotification(user.ID.Hex(), user.Username, message); err != nil {
		logging.Logger.Warnf("Event ID: NOTIFICATION_CREATE_FAILED, Description: Failed to notify %s: %v", user.Username, err)
	}
}

func (ns *NotificationService) CreateNotification(userID, username, message string) error {
	if !ns.Enabled() {
		return ErrUnavailable
	}
	if userID == "" || username == "" || message == "" {
		return validationf("userID, username, and message are required")
	}
	notification := models.Notification{
		UserID:    userID,
		Username:  username,
		Message:   message,
		CreatedAt: time.Now(),
		IsRead:    false,
	}
	return ns.repo.CreateNotification(&notification)
}

func (ns *NotificationService) GetNotificationsByUsername(username string) ([]models.Notification, error) {
	if !ns.Enabled() {
		return nil, ErrUnavailable
	}
	notifications, err := ns.repo.GetNotificationsByUsername(username)
	if err != nil {
		return nil, fmt.Errorf("failed to load notifications: %w", err)
	}
	return notifications, nil
}

func (ns *NotificationService) MarkNotificationAsRead(username, notificationID, createdAt string) error {
	if !ns.Enabled() {
		return ErrUnavailable
	}
	if err := validateKey(username, notificationID, createdAt); err != nil {
		return err
	}
	return ns.repo.MarkNotificationAsRead(username, notificationID, createdAt)
}

func (ns *NotificationService) DeleteNotification(username, notificationID, createdAt string) error {
	if !ns.Enabled() {
		return ErrUnavailable
	}
	if err := validateKey(username, notificationID, createdAt); err != nil {
		return err
	}
	return ns.repo.DeleteNotification(username, notificationID, createdAt)
}

// validateKey checks the (username, id, createdAt) triple that addresses one feed row.
func validateKey(username, notificationID, createdAt string) error {
	if username == "" || notificationID == "" || createdAt == "" {
		return validationf("username, notificationID, and createdAt are required")
	}
	if _, err := uuid.Parse(notificationID); err != nil {
		return validationf("invalid notification id %q", notificationID)
	}
	if _, err := time.Parse(time.RFC3339, createdAt); err != nil {
		return validationf("invalid createdAt %q", createdAt)
	}
	return nil
}
