package services

import (
	"context"
	"fmt"
	"time"

	"trello-project/microservices/task-manager/logging"
	"trello-project/microservices/task-manager/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const defaultActivityLimit = 100

type ActivityService struct {
	store ActivityStore
	now   func() time.Time
}

func NewActivityService(store ActivityStore) *ActivityService {
	return &ActivityService{store: store, now: time.Now}
}

// Record appends an audit entry. A failed write is logged and does not fail
// the operation that triggered it.
func (s *ActivityService) Record(ctx context.Context, actor Actor, action string, task *models.Task, details string) {
	activity := &models.Activity{
		Action:    action,
		UserID:    actor.ID,
		Username:  actor.DisplayName(),
		Details:   details,
		Timestamp: s.now(),
	}
	if task != nil {
		id := task.ID
		activity.TaskID = &id
		activity.TaskTitle = task.Title
	}
	if err := s.store.Create(ctx, activity); err != nil {
		logging.Logger.Warnf("Event ID: ACTIVITY_WRITE_FAILED, Description: Failed to record '%s' activity for %s: %v", action, actor.DisplayName(), err)
	}
}

func (s *ActivityService) List(ctx context.Context, taskID *primitive.ObjectID, limit int64) ([]models.Activity, error) {
	if limit <= 0 || limit > 1000 {
		limit = defaultActivityLimit
	}
	activities, err := s.store.List(ctx, taskID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	return activities, nil
}
