package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Booking represents one travel booking. Notes holds whatever rich-text
// string the editor produced; the core stores and returns it untouched.
type Booking struct {
	ID         primitive.ObjectID  `bson:"_id,omitempty"`
	Name       string              `bson:"name"`
	DateFrom   time.Time           `bson:"date_from"`
	DateTo     time.Time           `bson:"date_to"`
	Country    string              `bson:"country"`
	Pax        int                 `bson:"pax"`
	Ladies     int                 `bson:"ladies"`
	Men        int                 `bson:"men"`
	Children   int                 `bson:"children"`
	Teens      int                 `bson:"teens"`
	AgentID    *primitive.ObjectID `bson:"agent_id,omitempty"`
	Consultant string              `bson:"consultant,omitempty"`
	UserID     primitive.ObjectID  `bson:"user_id"`
	Notes      string              `bson:"notes,omitempty"`
	IsDeleted  bool                `bson:"is_deleted"`
	DeletedAt  *time.Time          `bson:"deleted_at,omitempty"`
	DeletedBy  *primitive.ObjectID `bson:"deleted_by,omitempty"`
	CreatedAt  time.Time           `bson:"created_at"`
	UpdatedAt  time.Time           `bson:"updated_at"`
}

// Headcount is the sum of the four passenger groups.
func (b *Booking) Headcount() int {
	return b.Ladies + b.Men + b.Children + b.Teens
}

// BookingPatch carries the fields of a partial update. ClearAgent detaches
// the booking from its agent; it wins over AgentID when both are set.
type BookingPatch struct {
	Name       *string
	DateFrom   *time.Time
	DateTo     *time.Time
	Country    *string
	Pax        *int
	Ladies     *int
	Men        *int
	Children   *int
	Teens      *int
	AgentID    *primitive.ObjectID
	ClearAgent bool
	Consultant *string
	Notes      *string
}
