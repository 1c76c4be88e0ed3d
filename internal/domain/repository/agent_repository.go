package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"tourdesk-service/internal/domain/entity"
	"tourdesk-service/internal/domain/query"
)

// AgentRepository defines the interface for agent document operations
type AgentRepository interface {
	Create(ctx context.Context, agent *entity.Agent) (*entity.Agent, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*entity.Agent, error)
	FindByEmail(ctx context.Context, email string) (*entity.Agent, error)
	FindByName(ctx context.Context, name string) (*entity.Agent, error)
	FindOne(ctx context.Context, f query.Filter) (*entity.Agent, error)
	FindMany(ctx context.Context, f query.Filter, s query.Sort, p query.Page) ([]*entity.Agent, error)
	FindActive(ctx context.Context, p query.Page) ([]*entity.Agent, error)
	Update(ctx context.Context, id primitive.ObjectID, patch entity.AgentPatch) (*entity.Agent, error)
	Deactivate(ctx context.Context, id primitive.ObjectID) error
}
