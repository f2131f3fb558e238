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

type TaskRepo struct {
	collection *mongo.Collection
}

func NewTaskRepo(db *mongo.Database) *TaskRepo {
	return &TaskRepo{collection: db.Collection(TasksCollection)}
}

func (r *TaskRepo) Create(ctx context.Context, task *models.Task) error {
	if task.ID.IsZero() {
		task.ID = primitive.NewObjectID()
	}
	_, err := r.collection.InsertOne(ctx, task)
	return mapError(err)
}

func (r *TaskRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Task, error) {
	var task models.Task
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&task); err != nil {
		return nil, mapError(err)
	}
	return &task, nil
}

func (r *TaskRepo) FindAll(ctx context.Context) ([]models.Task, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve tasks: %w", err)
	}
	return decodeAll[models.Task](ctx, cursor)
}

// FindDueBetween returns tasks not yet done whose due date lies in [from, to].
func (r *TaskRepo) FindDueBetween(ctx context.Context, from, to time.Time) ([]models.Task, error) {
	filter := bson.M{
		"dueDate": bson.M{"$gte": from, "$lte": to},
		"status":  bson.M{"$ne": models.StatusDone},
	}
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to query due tasks: %w", err)
	}
	return decodeAll[models.Task](ctx, cursor)
}

// Save writes the mutable fields and, if given, appends the completion entry
// in the same single-document update.
func (r *TaskRepo) Save(ctx context.Context, task *models.Task, completion *models.CompletionEntry) (*models.Task, error) {
	set := bson.M{
		"title":             task.Title,
		"description":       task.Description,
		"status":            task.Status,
		"priority":          task.Priority,
		"dueDate":           task.DueDate,
		"updatedAt":         task.UpdatedAt,
		"assignedTo":        task.AssignedTo,
		"assignedTeam":      task.AssignedTeam,
		"isTeamTask":        task.IsTeamTask,
		"isRecurrent":       task.IsRecurrent,
		"recurrencePattern": task.RecurrencePattern,
		"recurrenceEndDate": task.RecurrenceEndDate,
		"isPrivate":         task.IsPrivate,
	}
	update := bson.M{"$set": set}
	if completion != nil {
		update["$push"] = bson.M{"completionLog": completion}
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var saved models.Task
	if err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": task.ID}, update, opts).Decode(&saved); err != nil {
		return nil, mapError(err)
	}
	return &saved, nil
}

func (r *TaskRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if result.DeletedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *TaskRepo) updateOne(ctx context.Context, filter, update bson.M) error {
	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return mapError(err)
	}
	if result.MatchedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *TaskRepo) AddComment(ctx context.Context, taskID primitive.ObjectID, comment models.Comment) error {
	return r.updateOne(ctx, bson.M{"_id": taskID}, bson.M{"$push": bson.M{"comments": comment}})
}

func (r *TaskRepo) UpdateComment(ctx context.Context, taskID, commentID primitive.ObjectID, text string, at time.Time) error {
	filter := bson.M{"_id": taskID, "comments._id": commentID}
	update := bson.M{"$set": bson.M{"comments.$.text": text, "comments.$.updatedAt": at}}
	return r.updateOne(ctx, filter, update)
}

func (r *TaskRepo) DeleteComment(ctx context.Context, taskID, commentID primitive.ObjectID) error {
	return r.updateOne(ctx, bson.M{"_id": taskID}, bson.M{"$pull": bson.M{"comments": bson.M{"_id": commentID}}})
}

func (r *TaskRepo) AddAttachment(ctx context.Context, taskID primitive.ObjectID, attachment models.Attachment) error {
	return r.updateOne(ctx, bson.M{"_id": taskID}, bson.M{"$push": bson.M{"attachments": attachment}})
}

func (r *TaskRepo) DeleteAttachment(ctx context.Context, taskID, attachmentID primitive.ObjectID) error {
	return r.updateOne(ctx, bson.M{"_id": taskID}, bson.M{"$pull": bson.M{"attachments": bson.M{"_id": attachmentID}}})
}
