package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TaskStatus string

const (
	StatusTodo       TaskStatus = "todo"
	StatusInProgress TaskStatus = "in_progress"
	StatusDone       TaskStatus = "done"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// RecurrencePattern is the cadence a recurring task rolls over with.
type RecurrencePattern string

const (
	RecurrenceNone      RecurrencePattern = "none"
	RecurrenceDaily     RecurrencePattern = "daily"
	RecurrenceWeekly    RecurrencePattern = "weekly"
	RecurrenceFortnight RecurrencePattern = "fortnight"
	RecurrenceMonthly   RecurrencePattern = "monthly"
)

func (p RecurrencePattern) Valid() bool {
	switch p {
	case RecurrenceNone, RecurrenceDaily, RecurrenceWeekly, RecurrenceFortnight, RecurrenceMonthly:
		return true
	}
	return false
}

// CompletionEntry records one closed occurrence of a recurring task.
type CompletionEntry struct {
	CompletedAt time.Time `bson:"completedAt" json:"completedAt"`
	CompletedBy string    `bson:"completedBy" json:"completedBy"`
}

type Comment struct {
	ID         primitive.ObjectID `bson:"_id" json:"id"`
	AuthorID   primitive.ObjectID `bson:"authorId" json:"authorId"`
	AuthorName string             `bson:"authorName" json:"authorName"`
	Role       Role               `bson:"role" json:"role"`
	Text       string             `bson:"text" json:"text"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Attachment payloads are stored inline; Data is never serialized to JSON.
type Attachment struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	Filename    string             `bson:"filename" json:"filename"`
	ContentType string             `bson:"contentType" json:"contentType"`
	Size        int64              `bson:"size" json:"size"`
	Data        []byte             `bson:"data" json:"-"`
	UploadedBy  primitive.ObjectID `bson:"uploadedBy" json:"uploadedBy"`
	UploadedAt  time.Time          `bson:"uploadedAt" json:"uploadedAt"`
}

type Task struct {
	ID                primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Title             string              `bson:"title" json:"title"`
	Description       string              `bson:"description" json:"description"`
	Status            TaskStatus          `bson:"status" json:"status"`
	Priority          TaskPriority        `bson:"priority" json:"priority"`
	DueDate           *time.Time          `bson:"dueDate,omitempty" json:"dueDate,omitempty"`
	CreatedAt         time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time           `bson:"updatedAt" json:"updatedAt"`
	CreatedBy         primitive.ObjectID  `bson:"createdBy" json:"createdBy"`
	AssignedTo        *primitive.ObjectID `bson:"assignedTo,omitempty" json:"assignedTo,omitempty"`
	AssignedTeam      *primitive.ObjectID `bson:"assignedTeam,omitempty" json:"assignedTeam,omitempty"`
	IsTeamTask        bool                `bson:"isTeamTask" json:"isTeamTask"`
	IsRecurrent       bool                `bson:"isRecurrent" json:"isRecurrent"`
	RecurrencePattern RecurrencePattern   `bson:"recurrencePattern" json:"recurrencePattern"`
	RecurrenceEndDate *time.Time          `bson:"recurrenceEndDate,omitempty" json:"recurrenceEndDate,omitempty"`
	CompletionLog     []CompletionEntry   `bson:"completionLog" json:"completionLog"`
	Comments          []Comment           `bson:"comments" json:"comments"`
	Attachments       []Attachment        `bson:"attachments" json:"attachments"`
	IsPrivate         bool                `bson:"isPrivate" json:"isPrivate"`
}

// RollsOver reports whether completing the task advances it instead of closing it.
func (t *Task) RollsOver() bool {
	return t.IsRecurrent && t.RecurrencePattern != "" && t.RecurrencePattern != RecurrenceNone
}

// TaskUpdate is a partial update payload; nil fields are left untouched.
type TaskUpdate struct {
	Title             *string            `json:"title,omitempty"`
	Description       *string            `json:"description,omitempty"`
	Status            *TaskStatus        `json:"status,omitempty"`
	Priority          *TaskPriority      `json:"priority,omitempty"`
	DueDate           *string            `json:"dueDate,omitempty"`
	AssignedTo        *string            `json:"assignedTo,omitempty"`
	AssignedTeam      *string            `json:"assignedTeam,omitempty"`
	IsTeamTask        *bool              `json:"isTeamTask,omitempty"`
	IsRecurrent       *bool              `json:"isRecurrent,omitempty"`
	RecurrencePattern *RecurrencePattern `json:"recurrencePattern,omitempty"`
	RecurrenceEndDate *string            `json:"recurrenceEndDate,omitempty"`
	IsPrivate         *bool              `json:"isPrivate,omitempty"`
	CompletedBy       string             `json:"completedBy,omitempty"`
}

// NewTask is the creation payload.
type NewTask struct {
	Title             string            `json:"title"`
	Description       string            `json:"description"`
	Status            TaskStatus        `json:"status"`
	Priority          TaskPriority      `json:"priority"`
	DueDate           string            `json:"dueDate"`
	AssignedTo        string            `json:"assignedTo"`
	AssignedTeam      string            `json:"assignedTeam"`
	IsTeamTask        bool              `json:"isTeamTask"`
	IsRecurrent       bool              `json:"isRecurrent"`
	RecurrencePattern RecurrencePattern `json:"recurrencePattern"`
	RecurrenceEndDate string            `json:"recurrenceEndDate"`
	IsPrivate         bool              `json:"isPrivate"`
}
