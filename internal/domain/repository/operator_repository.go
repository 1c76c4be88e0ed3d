package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"tourdesk-service/internal/domain/entity"
	"tourdesk-service/internal/domain/query"
)

// OperatorRepository defines the interface for operator document operations
type OperatorRepository interface {
	Create(ctx context.Context, op *entity.Operator) (*entity.Operator, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*entity.Operator, error)
	FindByUsername(ctx context.Context, username string) (*entity.Operator, error)
	FindByEmail(ctx context.Context, email string) (*entity.Operator, error)
	FindOne(ctx context.Context, f query.Filter) (*entity.Operator, error)
	FindMany(ctx context.Context, f query.Filter, s query.Sort, p query.Page) ([]*entity.Operator, error)
	Update(ctx context.Context, id primitive.ObjectID, patch entity.OperatorPatch) (*entity.Operator, error)
	UpdatePassword(ctx context.Context, id primitive.ObjectID, passwordHash string) error
	Deactivate(ctx context.Context, id primitive.ObjectID) error
}
