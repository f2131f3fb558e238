package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"trello-project/microservices/task-manager/middleware"
	"trello-project/microservices/task-manager/models"
	"trello-project/microservices/task-manager/services"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestWriteErrorStatuses(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{fmt.Errorf("task 1: %w", models.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("%w: title is required", services.ErrValidation), http.StatusBadRequest},
		{services.ErrForbidden, http.StatusForbidden},
		{services.ErrUnauthorized, http.StatusUnauthorized},
		{services.ErrUnavailable, http.StatusServiceUnavailable},
		{errors.New("connection reset"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		writeError(rec, httptest.NewRequest(http.MethodGet, "/api/tasks", nil), tt.err)
		if rec.Code != tt.status {
			t.Errorf("%v: status = %d, want %d", tt.err, rec.Code, tt.status)
		}
	}

	rec := httptest.NewRecorder()
	writeError(rec, httptest.NewRequest(http.MethodGet, "/", nil), errors.New("mongo: secret detail"))
	if strings.Contains(rec.Body.String(), "secret detail") {
		t.Error("storage error details leaked to the client")
	}
}

func TestPathIDRejectsMalformedID(t *testing.T) {
	r := mux.NewRouter()
	r.HandleFunc("/tasks/{id}", func(w http.ResponseWriter, req *http.Request) {
		if _, ok := pathID(w, req, "id"); ok {
			w.WriteHeader(http.StatusOK)
		}
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tasks/abc", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("malformed id: status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tasks/"+primitive.NewObjectID().Hex(), nil))
	if rec.Code != http.StatusOK {
		t.Errorf("valid id: status = %d", rec.Code)
	}
}

type memoryActivities struct {
	items  []models.Activity
	listed *primitive.ObjectID
	limit  int64
}

func (m *memoryActivities) Create(_ context.Context, a *models.Activity) error {
	m.items = append(m.items, *a)
	return nil
}

func (m *memoryActivities) List(_ context.Context, taskID *primitive.ObjectID, limit int64) ([]models.Activity, error) {
	m.listed, m.limit = taskID, limit
	return m.items, nil
}

func TestGetActivities(t *testing.T) {
	store := &memoryActivities{items: []models.Activity{{Action: "created", Username: "ana"}}}
	h := NewActivityHandler(services.NewActivityService(store))

	taskID := primitive.NewObjectID()
	rec := httptest.NewRecorder()
	h.GetActivities(rec, httptest.NewRequest(http.MethodGet, "/api/activities?taskId="+taskID.Hex()+"&limit=5", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if store.listed == nil || *store.listed != taskID || store.limit != 5 {
		t.Errorf("filter not passed through: task=%v limit=%d", store.listed, store.limit)
	}
	if !strings.Contains(rec.Body.String(), `"created"`) {
		t.Errorf("unexpected body %s", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	h.GetActivities(rec, httptest.NewRequest(http.MethodGet, "/api/activities?taskId=nope", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad taskId: status = %d", rec.Code)
	}
}

func TestNotificationsDisabled(t *testing.T) {
	h := NewNotificationHandler(services.NewNotificationService(nil))

	req := httptest.NewRequest(http.MethodGet, "/api/notifications", nil)
	rec := httptest.NewRecorder()
	h.GetNotifications(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("without actor: status = %d", rec.Code)
	}

	caller := services.Actor{ID: primitive.NewObjectID(), Username: "ana", Role: models.RoleUser}
	req = req.WithContext(middleware.WithActor(req.Context(), caller))
	rec = httptest.NewRecorder()
	h.GetNotifications(rec, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("disabled feed: status = %d", rec.Code)
	}
}
