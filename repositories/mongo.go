package repositories

import (
	"context"
	"errors"
	"fmt"

	"trello-project/microservices/task-manager/logging"
	"trello-project/microservices/task-manager/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	TasksCollection      = "tasks"
	TeamsCollection      = "teams"
	UsersCollection      = "users"
	RemindersCollection  = "reminders"
	ActivitiesCollection = "activities"
	MessagesCollection   = "messages"
)

// mapError translates driver errors into the storage sentinels.
func mapError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return models.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %v", models.ErrDuplicate, err)
	}
	return err
}

func decodeAll[T any](ctx context.Context, cursor *mongo.Cursor) ([]T, error) {
	defer cursor.Close(ctx)
	out := []T{}
	for cursor.Next(ctx) {
		var item T
		if err := cursor.Decode(&item); err != nil {
			return nil, fmt.Errorf("failed to decode document: %w", err)
		}
		out = append(out, item)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return out, nil
}

// EnsureIndexes creates the uniqueness constraints the services rely on.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		RemindersCollection: {{
			Keys:    bson.D{{Key: "taskId", Value: 1}, {Key: "userId", Value: 1}, {Key: "type", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_task_user_type"),
		}},
		UsersCollection: {
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		TeamsCollection: {
			{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "members", Value: 1}}},
		},
		TasksCollection: {
			{Keys: bson.D{{Key: "dueDate", Value: 1}, {Key: "status", Value: 1}}},
		},
		ActivitiesCollection: {
			{Keys: bson.D{{Key: "timestamp", Value: -1}}},
		},
		MessagesCollection: {
			{Keys: bson.D{{Key: "teamId", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
	}
	for name, specs := range indexes {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, specs); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", name, err)
		}
	}
	logging.Logger.Info("Event ID: INDEXES_READY, Description: Mongo indexes ensured")
	return nil
}
