package repositories

import (
	"context"
	"fmt"
	"time"

	"trello-project/microservices/task-manager/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type TeamRepo struct {
	collection *mongo.Collection
}

func NewTeamRepo(db *mongo.Database) *TeamRepo {
	return &TeamRepo{collection: db.Collection(TeamsCollection)}
}

func (r *TeamRepo) Create(ctx context.Context, team *models.Team) error {
	if team.ID.IsZero() {
		team.ID = primitive.NewObjectID()
	}
	_, err := r.collection.InsertOne(ctx, team)
	return mapError(err)
}

func (r *TeamRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Team, error) {
	var team models.Team
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&team); err != nil {
		return nil, mapError(err)
	}
	return &team, nil
}

func (r *TeamRepo) find(ctx context.Context, filter bson.M) ([]models.Team, error) {
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve teams: %w", err)
	}
	return decodeAll[models.Team](ctx, cursor)
}

func (r *TeamRepo) FindAll(ctx context.Context) ([]models.Team, error) {
	return r.find(ctx, bson.M{})
}

// FindByUser returns teams where the user is a member or a manager.
func (r *TeamRepo) FindByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Team, error) {
	return r.find(ctx, bson.M{"$or": bson.A{
		bson.M{"members": userID},
		bson.M{"managers": userID},
	}})
}

func (r *TeamRepo) Update(ctx context.Context, team *models.Team) error {
	update := bson.M{"$set": bson.M{
		"name":        team.Name,
		"description": team.Description,
		"members":     team.Members,
		"managers":    team.Managers,
		"updatedAt":   team.UpdatedAt,
	}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": team.ID}, update)
	if err != nil {
		return mapError(err)
	}
	if result.MatchedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *TeamRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete team: %w", err)
	}
	if result.DeletedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *TeamRepo) modifySet(ctx context.Context, teamID primitive.ObjectID, op, field string, userID primitive.ObjectID) error {
	update := bson.M{
		op:     bson.M{field: userID},
		"$set": bson.M{"updatedAt": time.Now()},
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": teamID}, update)
	if err != nil {
		return mapError(err)
	}
	if result.MatchedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *TeamRepo) AddMember(ctx context.Context, teamID, userID primitive.ObjectID) error {
	return r.modifySet(ctx, teamID, "$addToSet", "members", userID)
}

func (r *TeamRepo) RemoveMember(ctx context.Context, teamID, userID primitive.ObjectID) error {
	return r.modifySet(ctx, teamID, "$pull", "members", userID)
}

func (r *TeamRepo) AddManager(ctx context.Context, teamID, userID primitive.ObjectID) error {
	return r.modifySet(ctx, teamID, "$addToSet", "managers", userID)
}

func (r *TeamRepo) RemoveManager(ctx context.Context, teamID, userID primitive.ObjectID) error {
	return r.modifySet(ctx, teamID, "$pull", "managers", userID)
}
