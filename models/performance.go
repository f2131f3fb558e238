package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// TaskStats are the derived metrics shared by every leaderboard entry.
type TaskStats struct {
	TotalTasks            int     `json:"totalTasks"`
	CompletedTasks        int     `json:"completedTasks"`
	InProgressTasks       int     `json:"inProgressTasks"`
	CompletionRate        float64 `json:"completionRate"`
	AvgCompletionTime     int64   `json:"avgCompletionTime"`
	HighPriorityTasks     int     `json:"highPriorityTasks"`
	HighPriorityCompleted int     `json:"highPriorityCompleted"`
	OnTimeRate            float64 `json:"onTimeRate"`
}

type MemberRef struct {
	ID       primitive.ObjectID `json:"id"`
	Username string             `json:"username"`
	Email    string             `json:"email"`
}

type TeamRef struct {
	ID   primitive.ObjectID `json:"id"`
	Name string             `json:"name"`
}

type TeamPerformance struct {
	TeamID           primitive.ObjectID `json:"teamId"`
	Name             string             `json:"name"`
	Members          []MemberRef        `json:"members"`
	PerformanceScore float64            `json:"performanceScore"`
	TaskStats
}

type MemberPerformance struct {
	UserID           primitive.ObjectID `json:"userId"`
	Username         string             `json:"username"`
	Email            string             `json:"email"`
	Teams            []TeamRef          `json:"teams"`
	PerformanceScore float64            `json:"performanceScore"`
	TaskStats
}

type TeamMemberBreakdown struct {
	UserID           primitive.ObjectID `json:"userId"`
	Username         string             `json:"username"`
	Email            string             `json:"email"`
	PerformanceScore float64            `json:"performanceScore"`
	TaskStats
}
