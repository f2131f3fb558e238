package services

import (
	"trello-project/microservices/task-manager/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Actor is the authenticated caller of a service operation.
type Actor struct {
	ID       primitive.ObjectID
	Username string
	Email    string
	Role     models.Role
}

func (a Actor) IsAdmin() bool {
	return a.Role == models.RoleAdmin
}

// DisplayName is what ends up in completion logs and activity entries.
func (a Actor) DisplayName() string {
	if a.Username != "" {
		return a.Username
	}
	return a.ID.Hex()
}
