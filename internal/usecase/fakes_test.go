package usecase

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"tourdesk-service/internal/domain/entity"
	"tourdesk-service/internal/domain/query"
	"tourdesk-service/pkg/apperr"
	"tourdesk-service/pkg/identifier"
)

// Map-backed repository fakes. They enforce just enough of the document
// mapper contract for pipeline behavior to be observable: required fields,
// date order and pax derivation for bookings, required fields for agents.

type fakeAgentRepo struct {
	mu      sync.Mutex
	agents  map[primitive.ObjectID]*entity.Agent
	findErr error
}

func newFakeAgentRepo() *fakeAgentRepo {
	return &fakeAgentRepo{agents: make(map[primitive.ObjectID]*entity.Agent)}
}

func (r *fakeAgentRepo) add(a *entity.Agent) *entity.Agent {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a.ID.IsZero() {
		a.ID = identifier.New()
	}
	r.agents[a.ID] = a
	return a
}

func (r *fakeAgentRepo) Create(ctx context.Context, a *entity.Agent) (*entity.Agent, error) {
	if strings.TrimSpace(a.Name) == "" {
		return nil, apperr.Validationf("name is required")
	}
	if strings.TrimSpace(a.Email) == "" {
		return nil, apperr.Validationf("email is required")
	}
	if strings.TrimSpace(a.Country) == "" {
		return nil, apperr.Validationf("country is required")
	}
	a.IsActive = true
	return r.add(a), nil
}

func (r *fakeAgentRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*entity.Agent, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.agents[id]; ok {
		return a, nil
	}
	return nil, apperr.NotFoundf("agent %s", identifier.Encode(id))
}

func (r *fakeAgentRepo) FindByEmail(ctx context.Context, email string) (*entity.Agent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.agents {
		if strings.EqualFold(a.Email, email) {
			return a, nil
		}
	}
	return nil, apperr.NotFoundf("agent with email %s", email)
}

func (r *fakeAgentRepo) FindByName(ctx context.Context, name string) (*entity.Agent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.agents {
		if a.Name == name {
			return a, nil
		}
	}
	return nil, apperr.NotFoundf("agent named %s", name)
}

func (r *fakeAgentRepo) FindOne(ctx context.Context, f query.Filter) (*entity.Agent, error) {
	return nil, apperr.NotFoundf("no agent matches filter")
}

func (r *fakeAgentRepo) FindMany(ctx context.Context, f query.Filter, s query.Sort, p query.Page) ([]*entity.Agent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*entity.Agent, 0, len(r.agents))
	for _, a := range r.agents {
		out = append(out, a)
	}
	return out, nil
}

func (r *fakeAgentRepo) FindActive(ctx context.Context, p query.Page) ([]*entity.Agent, error) {
	return r.FindMany(ctx, nil, query.DefaultSort(), p)
}

func (r *fakeAgentRepo) Update(ctx context.Context, id primitive.ObjectID, patch entity.AgentPatch) (*entity.Agent, error) {
	return r.FindByID(ctx, id)
}

func (r *fakeAgentRepo) Deactivate(ctx context.Context, id primitive.ObjectID) error {
	a, err := r.FindByID(ctx, id)
	if err != nil {
		return err
	}
	a.IsActive = false
	return nil
}

type fakeOperatorRepo struct {
	mu        sync.Mutex
	operators map[primitive.ObjectID]*entity.Operator
}

func newFakeOperatorRepo() *fakeOperatorRepo {
	return &fakeOperatorRepo{operators: make(map[primitive.ObjectID]*entity.Operator)}
}

func (r *fakeOperatorRepo) add(op *entity.Operator) *entity.Operator {
	r.mu.Lock()
	defer r.mu.Unlock()
	if op.ID.IsZero() {
		op.ID = identifier.New()
	}
	r.operators[op.ID] = op
	return op
}

func (r *fakeOperatorRepo) Create(ctx context.Context, op *entity.Operator) (*entity.Operator, error) {
	return r.add(op), nil
}

func (r *fakeOperatorRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*entity.Operator, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if op, ok := r.operators[id]; ok {
		return op, nil
	}
	return nil, apperr.NotFoundf("operator %s", identifier.Encode(id))
}

func (r *fakeOperatorRepo) FindByUsername(ctx context.Context, username string) (*entity.Operator, error) {
	return nil, apperr.NotFoundf("operator %s", username)
}

func (r *fakeOperatorRepo) FindByEmail(ctx context.Context, email string) (*entity.Operator, error) {
	return nil, apperr.NotFoundf("operator with email %s", email)
}

func (r *fakeOperatorRepo) FindOne(ctx context.Context, f query.Filter) (*entity.Operator, error) {
	return nil, apperr.NotFoundf("no operator matches filter")
}

func (r *fakeOperatorRepo) FindMany(ctx context.Context, f query.Filter, s query.Sort, p query.Page) ([]*entity.Operator, error) {
	return nil, nil
}

func (r *fakeOperatorRepo) Update(ctx context.Context, id primitive.ObjectID, patch entity.OperatorPatch) (*entity.Operator, error) {
	return r.FindByID(ctx, id)
}

func (r *fakeOperatorRepo) UpdatePassword(ctx context.Context, id primitive.ObjectID, passwordHash string) error {
	return nil
}

func (r *fakeOperatorRepo) Deactivate(ctx context.Context, id primitive.ObjectID) error {
	return nil
}

type fakeBookingRepo struct {
	mu       sync.Mutex
	bookings []*entity.Booking
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{}
}

func (r *fakeBookingRepo) Create(ctx context.Context, b *entity.Booking) (*entity.Booking, error) {
	if strings.TrimSpace(b.Name) == "" {
		return nil, apperr.Validationf("name is required")
	}
	if b.DateTo.Before(b.DateFrom) {
		return nil, apperr.Validationf("date_to is before date_from")
	}
	if b.Pax == 0 {
		b.Pax = b.Headcount()
	} else if b.Pax != b.Headcount() {
		return nil, apperr.Validationf("pax does not match headcounts")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	b.ID = identifier.New()
	now := time.Now().UTC().Truncate(time.Millisecond)
	b.CreatedAt = now
	b.UpdatedAt = now
	r.bookings = append(r.bookings, b)
	return b, nil
}

func (r *fakeBookingRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*entity.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.bookings {
		if b.ID == id {
			return b, nil
		}
	}
	return nil, apperr.NotFoundf("booking %s", identifier.Encode(id))
}

func (r *fakeBookingRepo) FindOne(ctx context.Context, f query.Filter) (*entity.Booking, error) {
	return nil, apperr.NotFoundf("no booking matches filter")
}

func (r *fakeBookingRepo) FindMany(ctx context.Context, f query.Filter, s query.Sort, p query.Page) ([]*entity.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*entity.Booking(nil), r.bookings...), nil
}

func (r *fakeBookingRepo) FindByAgent(ctx context.Context, agentID primitive.ObjectID, p query.Page) ([]*entity.Booking, error) {
	return nil, nil
}

func (r *fakeBookingRepo) FindByOwner(ctx context.Context, userID primitive.ObjectID, p query.Page) ([]*entity.Booking, error) {
	return nil, nil
}

func (r *fakeBookingRepo) FindTrashed(ctx context.Context, p query.Page) ([]*entity.Booking, error) {
	return nil, nil
}

func (r *fakeBookingRepo) Update(ctx context.Context, id primitive.ObjectID, patch entity.BookingPatch) (*entity.Booking, error) {
	return r.FindByID(ctx, id)
}

func (r *fakeBookingRepo) MoveToTrash(ctx context.Context, id, deletedBy primitive.ObjectID) error {
	return nil
}

func (r *fakeBookingRepo) RestoreFromTrash(ctx context.Context, id primitive.ObjectID) error {
	return nil
}

func (r *fakeBookingRepo) EmptyTrash(ctx context.Context) (int64, error) {
	return 0, nil
}

type fakeCountryRepo struct {
	byName map[string]*entity.Country
}

func newFakeCountryRepo(countries ...*entity.Country) *fakeCountryRepo {
	r := &fakeCountryRepo{byName: make(map[string]*entity.Country)}
	for _, c := range countries {
		r.byName[strings.ToLower(c.Name)] = c
	}
	return r
}

func (r *fakeCountryRepo) GetByCode(ctx context.Context, code string) (*entity.Country, error) {
	for _, c := range r.byName {
		if strings.EqualFold(c.Code, code) {
			return c, nil
		}
	}
	return nil, apperr.NotFoundf("country %s", code)
}

func (r *fakeCountryRepo) GetByName(ctx context.Context, name string) (*entity.Country, error) {
	if c, ok := r.byName[strings.ToLower(name)]; ok {
		return c, nil
	}
	return nil, apperr.NotFoundf("country %s", name)
}
