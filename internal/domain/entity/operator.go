package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Operator roles
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// ValidRole reports whether role is one of the enumerated operator roles.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleUser
}

// Operator represents a user of the system who owns agents and bookings.
// PasswordHash is an opaque string produced by the excluded auth layer.
type Operator struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Username     string             `bson:"username"`
	Email        string             `bson:"email"`
	PasswordHash string             `bson:"password_hash"`
	FirstName    string             `bson:"first_name,omitempty"`
	LastName     string             `bson:"last_name,omitempty"`
	Role         string             `bson:"role"`
	IsActive     bool               `bson:"is_active"`
	CreatedAt    time.Time          `bson:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at"`
}

// OperatorPatch carries the fields of a partial update. Nil means "leave
// unchanged"; there is no way to unset a required field.
type OperatorPatch struct {
	Username  *string
	Email     *string
	FirstName *string
	LastName  *string
	Role      *string
	IsActive  *bool
}
