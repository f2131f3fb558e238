package services

import (
	"context"
	"time"

	"trello-project/microservices/task-manager/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TaskStore is the document-store access the task, scoring and reminder logic needs.
type TaskStore interface {
	Create(ctx context.Context, task *models.Task) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Task, error)
	FindAll(ctx context.Context) ([]models.Task, error)
	FindDueBetween(ctx context.Context, from, to time.Time) ([]models.Task, error)
	// Save persists the mutable fields of task and, when completion is not nil,
	// appends it to the completion log in the same write.
	Save(ctx context.Context, task *models.Task, completion *models.CompletionEntry) (*models.Task, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	AddComment(ctx context.Context, taskID primitive.ObjectID, comment models.Comment) error
	UpdateComment(ctx context.Context, taskID, commentID primitive.ObjectID, text string, at time.Time) error
	DeleteComment(ctx context.Context, taskID, commentID primitive.ObjectID) error
	AddAttachment(ctx context.Context, taskID primitive.ObjectID, attachment models.Attachment) error
	DeleteAttachment(ctx context.Context, taskID, attachmentID primitive.ObjectID) error
}

type TeamStore interface {
	Create(ctx context.Context, team *models.Team) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Team, error)
	FindAll(ctx context.Context) ([]models.Team, error)
	FindByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Team, error)
	Update(ctx context.Context, team *models.Team) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	AddMember(ctx context.Context, teamID, userID primitive.ObjectID) error
	RemoveMember(ctx context.Context, teamID, userID primitive.ObjectID) error
	AddManager(ctx context.Context, teamID, userID primitive.ObjectID) error
	RemoveManager(ctx context.Context, teamID, userID primitive.ObjectID) error
}

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByRole(ctx context.Context, role models.Role) ([]models.User, error)
	FindAll(ctx context.Context) ([]models.User, error)
}

type ReminderStore interface {
	Exists(ctx context.Context, taskID, userID primitive.ObjectID, kind models.ReminderType) (bool, error)
	// Create returns models.ErrDuplicate when the (task, user, type) triple is already recorded.
	Create(ctx context.Context, reminder *models.Reminder) error
}

type ActivityStore interface {
	Create(ctx context.Context, activity *models.Activity) error
	List(ctx context.Context, taskID *primitive.ObjectID, limit int64) ([]models.Activity, error)
}

type MessageStore interface {
	Create(ctx context.Context, message *models.Message) error
	ListByTeam(ctx context.Context, teamID primitive.ObjectID, limit int64) ([]models.Message, error)
}

type NotificationStore interface {
	CreateNotification(notification *models.Notification) error
	GetNotificationsByUsername(username string) ([]models.Notification, error)
	MarkNotificationAsRead(username, notificationID, createdAt string) error
	DeleteNotification(username, notificationID, createdAt string) error
}

// Mailer sends one plain email.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}
