package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Team keeps members and managers as independent sets.
type Team struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name        string               `bson:"name" json:"name"`
	Description string               `bson:"description" json:"description"`
	Members     []primitive.ObjectID `bson:"members" json:"members"`
	Managers    []primitive.ObjectID `bson:"managers" json:"managers"`
	CreatedBy   primitive.ObjectID   `bson:"createdBy" json:"createdBy"`
	CreatedAt   time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time            `bson:"updatedAt" json:"updatedAt"`
}

func (t *Team) HasMember(id primitive.ObjectID) bool {
	return containsID(t.Members, id)
}

func (t *Team) HasManager(id primitive.ObjectID) bool {
	return containsID(t.Managers, id)
}

func containsID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

type TeamInput struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Members     []string `json:"members"`
	Managers    []string `json:"managers"`
}
