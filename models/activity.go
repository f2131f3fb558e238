package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	ActionCreated   = "created"
	ActionUpdated   = "updated"
	ActionDeleted   = "deleted"
	ActionCommented = "commented"
	ActionAttached  = "attached"
)

// Activity is a write-only audit entry.
type Activity struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Action    string              `bson:"action" json:"action"`
	TaskID    *primitive.ObjectID `bson:"taskId,omitempty" json:"taskId,omitempty"`
	TaskTitle string              `bson:"taskTitle" json:"taskTitle"`
	UserID    primitive.ObjectID  `bson:"userId" json:"userId"`
	Username  string              `bson:"username" json:"username"`
	Details   string              `bson:"details" json:"details"`
	Timestamp time.Time           `bson:"timestamp" json:"timestamp"`
}
