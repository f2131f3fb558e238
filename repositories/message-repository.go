package repositories

import (
	"context"
	"fmt"

	"trello-project/microservices/task-manager/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/exp/slices"
)

type MessageRepo struct {
	collection *mongo.Collection
}

func NewMessageRepo(db *mongo.Database) *MessageRepo {
	return &MessageRepo{collection: db.Collection(MessagesCollection)}
}

func (r *MessageRepo) Create(ctx context.Context, message *models.Message) error {
	if message.ID.IsZero() {
		message.ID = primitive.NewObjectID()
	}
	_, err := r.collection.InsertOne(ctx, message)
	return mapError(err)
}

// ListByTeam returns the latest messages of a team, oldest first.
func (r *MessageRepo) ListByTeam(ctx context.Context, teamID primitive.ObjectID, limit int64) ([]models.Message, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}).SetLimit(limit)
	cursor, err := r.collection.Find(ctx, bson.M{"teamId": teamID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve messages: %w", err)
	}
	messages, err := decodeAll[models.Message](ctx, cursor)
	if err != nil {
		return nil, err
	}
	slices.Reverse(messages)
	return messages, nil
}
