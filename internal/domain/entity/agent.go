package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Agent represents a sales agent. UserID is the optional owning operator;
// a nil UserID means the agent is global.
type Agent struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty"`
	Name      string              `bson:"name"`
	Company   string              `bson:"company,omitempty"`
	Email     string              `bson:"email"`
	Phone     string              `bson:"phone,omitempty"`
	Country   string              `bson:"country"`
	Address   string              `bson:"address,omitempty"`
	Notes     string              `bson:"notes,omitempty"`
	IsActive  bool                `bson:"is_active"`
	UserID    *primitive.ObjectID `bson:"user_id,omitempty"`
	CreatedAt time.Time           `bson:"created_at"`
	UpdatedAt time.Time           `bson:"updated_at"`
}

// AgentPatch carries the fields of a partial update. ClearOwner detaches the
// agent from its owning operator; it wins over UserID when both are set.
type AgentPatch struct {
	Name       *string
	Company    *string
	Email      *string
	Phone      *string
	Country    *string
	Address    *string
	Notes      *string
	IsActive   *bool
	UserID     *primitive.ObjectID
	ClearOwner bool
}
