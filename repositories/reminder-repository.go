package repositories

import (
	"context"
	"fmt"

	"trello-project/microservices/task-manager/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type ReminderRepo struct {
	collection *mongo.Collection
}

func NewReminderRepo(db *mongo.Database) *ReminderRepo {
	return &ReminderRepo{collection: db.Collection(RemindersCollection)}
}

func (r *ReminderRepo) Exists(ctx context.Context, taskID, userID primitive.ObjectID, kind models.ReminderType) (bool, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"taskId": taskID, "userId": userID, "type": kind})
	if err != nil {
		return false, fmt.Errorf("failed to check reminder: %w", err)
	}
	return count > 0, nil
}

// Create inserts the reminder; the unique index turns a repeat into models.ErrDuplicate.
func (r *ReminderRepo) Create(ctx context.Context, reminder *models.Reminder) error {
	if reminder.ID.IsZero() {
		reminder.ID = primitive.NewObjectID()
	}
	_, err := r.collection.InsertOne(ctx, reminder)
	return mapError(err)
}
