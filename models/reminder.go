package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ReminderType string

const (
	ReminderDueSoon     ReminderType = "due_soon"
	ReminderDueSoonTeam ReminderType = "due_soon_team"
)

// Reminder is unique per (TaskID, UserID, Type); the store enforces it.
type Reminder struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TaskID primitive.ObjectID `bson:"taskId" json:"taskId"`
	UserID primitive.ObjectID `bson:"userId" json:"userId"`
	Type   ReminderType       `bson:"type" json:"type"`
	SentAt time.Time          `bson:"sentAt" json:"sentAt"`
}

// ReminderMatch summarizes one task picked up by a scan pass.
type ReminderMatch struct {
	TaskID        primitive.ObjectID `json:"taskId"`
	Title         string             `json:"title"`
	DueDate       time.Time          `json:"dueDate"`
	IsTeamTask    bool               `json:"isTeamTask"`
	RemindersSent int                `json:"remindersSent"`
}
