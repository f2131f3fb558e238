package repositories

import (
	"context"
	"fmt"

	"trello-project/microservices/task-manager/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ActivityRepo struct {
	collection *mongo.Collection
}

func NewActivityRepo(db *mongo.Database) *ActivityRepo {
	return &ActivityRepo{collection: db.Collection(ActivitiesCollection)}
}

func (r *ActivityRepo) Create(ctx context.Context, activity *models.Activity) error {
	if activity.ID.IsZero() {
		activity.ID = primitive.NewObjectID()
	}
	_, err := r.collection.InsertOne(ctx, activity)
	return mapError(err)
}

// List returns the newest entries first, optionally only for one task.
func (r *ActivityRepo) List(ctx context.Context, taskID *primitive.ObjectID, limit int64) ([]models.Activity, error) {
	filter := bson.M{}
	if taskID != nil {
		filter["taskId"] = *taskID
	}
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}}).SetLimit(limit)
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve activities: %w", err)
	}
	return decodeAll[models.Activity](ctx, cursor)
}
