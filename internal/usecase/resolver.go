package usecase

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"tourdesk-service/internal/domain/entity"
	"tourdesk-service/internal/domain/repository"
	"tourdesk-service/pkg/apperr"
	"tourdesk-service/pkg/identifier"
	"tourdesk-service/pkg/logger"
	"tourdesk-service/pkg/metrics"
)

// Resolver inlines reference summaries into view objects. Resolution is
// read-only and exactly one level deep: a booking's resolved agent does not
// carry the agent's resolved owner. A reference to a missing or deleted
// document resolves to a marker with Resolved false, never an error; only
// store failures propagate.
type Resolver struct {
	operatorRepo repository.OperatorRepository
	agentRepo    repository.AgentRepository
	cache        *SummaryCache
	metrics      *metrics.Metrics
	logger       logger.Logger
}

// NewResolver creates a new resolver. cache and metrics may be nil.
func NewResolver(
	operatorRepo repository.OperatorRepository,
	agentRepo repository.AgentRepository,
	cache *SummaryCache,
	metrics *metrics.Metrics,
	logger logger.Logger,
) *Resolver {
	return &Resolver{
		operatorRepo: operatorRepo,
		agentRepo:    agentRepo,
		cache:        cache,
		metrics:      metrics,
		logger:       logger,
	}
}

// AgentSummary resolves one agent reference
func (r *Resolver) AgentSummary(ctx context.Context, id primitive.ObjectID) (*entity.RefSummary, error) {
	token := identifier.Encode(id)

	if r.cache != nil {
		if summary, ok := r.cache.Get(ctx, "agent", token); ok {
			if r.metrics != nil {
				r.metrics.SummaryCacheHits.Inc()
			}
			return summary, nil
		}
		if r.metrics != nil {
			r.metrics.SummaryCacheMiss.Inc()
		}
	}

	agent, err := r.agentRepo.FindByID(ctx, id)
	if errors.Is(err, apperr.ErrNotFound) {
		return r.dangling(token), nil
	}
	if err != nil {
		return nil, err
	}

	summary := &entity.RefSummary{
		ID:       token,
		Name:     agent.Name,
		Country:  agent.Country,
		Resolved: true,
	}
	if r.cache != nil {
		r.cache.Set(ctx, "agent", token, summary)
	}
	return summary, nil
}

// OperatorSummary resolves one operator reference
func (r *Resolver) OperatorSummary(ctx context.Context, id primitive.ObjectID) (*entity.RefSummary, error) {
	token := identifier.Encode(id)

	op, err := r.operatorRepo.FindByID(ctx, id)
	if errors.Is(err, apperr.ErrNotFound) {
		return r.dangling(token), nil
	}
	if err != nil {
		return nil, err
	}

	return &entity.RefSummary{
		ID:       token,
		Name:     op.Username,
		Resolved: true,
	}, nil
}

func (r *Resolver) dangling(token string) *entity.RefSummary {
	if r.metrics != nil {
		r.metrics.DanglingRefs.Inc()
	}
	r.logger.Debug("Reference resolved to missing document", "id", token)
	return &entity.RefSummary{ID: token, Resolved: false}
}

// BookingView builds the denormalized view of one booking
func (r *Resolver) BookingView(ctx context.Context, b *entity.Booking) (*entity.BookingView, error) {
	view := &entity.BookingView{
		ID:         identifier.Encode(b.ID),
		Name:       b.Name,
		DateFrom:   b.DateFrom,
		DateTo:     b.DateTo,
		Country:    b.Country,
		Pax:        b.Pax,
		Ladies:     b.Ladies,
		Men:        b.Men,
		Children:   b.Children,
		Teens:      b.Teens,
		Consultant: b.Consultant,
		Notes:      b.Notes,
		IsDeleted:  b.IsDeleted,
		DeletedAt:  b.DeletedAt,
		CreatedAt:  b.CreatedAt,
		UpdatedAt:  b.UpdatedAt,
	}

	if b.AgentID != nil {
		summary, err := r.AgentSummary(ctx, *b.AgentID)
		if err != nil {
			return nil, err
		}
		view.Agent = summary
	}

	operator, err := r.OperatorSummary(ctx, b.UserID)
	if err != nil {
		return nil, err
	}
	view.Operator = operator

	return view, nil
}

// BookingViews builds views for a result set in order
func (r *Resolver) BookingViews(ctx context.Context, bookings []*entity.Booking) ([]*entity.BookingView, error) {
	views := make([]*entity.BookingView, 0, len(bookings))
	for _, b := range bookings {
		view, err := r.BookingView(ctx, b)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

// AgentView builds the denormalized view of one agent
func (r *Resolver) AgentView(ctx context.Context, a *entity.Agent) (*entity.AgentView, error) {
	view := &entity.AgentView{
		ID:        identifier.Encode(a.ID),
		Name:      a.Name,
		Company:   a.Company,
		Email:     a.Email,
		Phone:     a.Phone,
		Country:   a.Country,
		Address:   a.Address,
		Notes:     a.Notes,
		IsActive:  a.IsActive,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}

	if a.UserID != nil {
		owner, err := r.OperatorSummary(ctx, *a.UserID)
		if err != nil {
			return nil, err
		}
		view.Owner = owner
	}

	return view, nil
}

// OperatorView builds the view of one operator. The password hash stays
// inside the core.
func OperatorView(op *entity.Operator) *entity.OperatorView {
	return &entity.OperatorView{
		ID:        identifier.Encode(op.ID),
		Username:  op.Username,
		Email:     op.Email,
		FirstName: op.FirstName,
		LastName:  op.LastName,
		Role:      op.Role,
		IsActive:  op.IsActive,
		CreatedAt: op.CreatedAt,
		UpdatedAt: op.UpdatedAt,
	}
}
