package services

import (
	"errors"
	"testing"

	"trello-project/microservices/task-manager/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type memoryNotificationStore struct {
	created []models.Notification
	read    []string
}

func (s *memoryNotificationStore) CreateNotification(n *models.Notification) error {
	s.created = append(s.created, *n)
	return nil
}

func (s *memoryNotificationStore) GetNotificationsByUsername(username string) ([]models.Notification, error) {
	var out []models.Notification
	for _, n := range s.created {
		if n.Username == username {
			out = append(out, n)
		}
	}
	return out, nil
}

func (s *memoryNotificationStore) MarkNotificationAsRead(_, notificationID, _ string) error {
	s.read = append(s.read, notificationID)
	return nil
}

func (s *memoryNotificationStore) DeleteNotification(string, string, string) error { return nil }

func TestNotificationServiceDisabled(t *testing.T) {
	svc := NewNotificationService(nil)
	if svc.Enabled() {
		t.Fatal("service without a store must be disabled")
	}
	svc.Notify(models.User{Username: "ana"}, "ignored")
	if _, err := svc.GetNotificationsByUsername("ana"); !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}

func TestNotificationService(t *testing.T) {
	store := &memoryNotificationStore{}
	svc := NewNotificationService(store)
	ana := models.User{ID: primitive.NewObjectID(), Username: "ana"}

	svc.Notify(ana, "Task 'x' is due soon")
	list, err := svc.GetNotificationsByUsername("ana")
	if err != nil || len(list) != 1 {
		t.Fatalf("notifications = %d (%v), want 1", len(list), err)
	}
	if list[0].UserID != ana.ID.Hex() || list[0].IsRead {
		t.Errorf("unexpected notification %+v", list[0])
	}

	if err := svc.MarkNotificationAsRead("ana", "not-a-uuid", "2024-01-01T10:00:00Z"); !errors.Is(err, ErrValidation) {
		t.Errorf("bad id: expected validation error, got %v", err)
	}
	if err := svc.MarkNotificationAsRead("ana", "0c6b2a9e-9f3e-11ee-8c90-0242ac120002", "yesterday"); !errors.Is(err, ErrValidation) {
		t.Errorf("bad createdAt: expected validation error, got %v", err)
	}
	if err := svc.MarkNotificationAsRead("ana", "0c6b2a9e-9f3e-11ee-8c90-0242ac120002", "2024-01-01T10:00:00Z"); err != nil {
		t.Fatalf("MarkNotificationAsRead: %v", err)
	}
	if len(store.read) != 1 {
		t.Errorf("read = %v", store.read)
	}
}
