package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"tourdesk-service/internal/domain/entity"
	"tourdesk-service/internal/domain/query"
)

// BookingRepository defines the interface for booking document operations.
// Reads exclude trashed bookings unless the method says otherwise.
type BookingRepository interface {
	Create(ctx context.Context, booking *entity.Booking) (*entity.Booking, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*entity.Booking, error)
	FindOne(ctx context.Context, f query.Filter) (*entity.Booking, error)
	FindMany(ctx context.Context, f query.Filter, s query.Sort, p query.Page) ([]*entity.Booking, error)
	FindByAgent(ctx context.Context, agentID primitive.ObjectID, p query.Page) ([]*entity.Booking, error)
	FindByOwner(ctx context.Context, userID primitive.ObjectID, p query.Page) ([]*entity.Booking, error)
	FindTrashed(ctx context.Context, p query.Page) ([]*entity.Booking, error)
	Update(ctx context.Context, id primitive.ObjectID, patch entity.BookingPatch) (*entity.Booking, error)
	MoveToTrash(ctx context.Context, id, deletedBy primitive.ObjectID) error
	RestoreFromTrash(ctx context.Context, id primitive.ObjectID) error
	EmptyTrash(ctx context.Context) (int64, error)
}
