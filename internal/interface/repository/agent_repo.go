package repository

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"tourdesk-service/internal/domain/entity"
	"tourdesk-service/internal/domain/query"
	"tourdesk-service/internal/domain/repository"
	"tourdesk-service/pkg/apperr"
	"tourdesk-service/pkg/identifier"
)

// MongoAgentRepository implements the AgentRepository interface
type MongoAgentRepository struct {
	collection Collection
}

// NewMongoAgentRepository creates a new MongoDB agent repository
func NewMongoAgentRepository(db *mongo.Database) repository.AgentRepository {
	collection := db.Collection("agents")

	ctx := context.Background()

	// Case-insensitive unique index on email, backstop for the Create
	// pre-check under concurrent writers.
	emailIndex := mongo.IndexModel{
		Keys: bson.M{"email": 1},
		Options: options.Index().SetUnique(true).
			SetCollation(&options.Collation{Locale: "en", Strength: 2}),
	}

	// Name lookups drive agent references during import
	nameIndex := mongo.IndexModel{
		Keys: bson.M{"name": 1},
	}

	ownerIndex := mongo.IndexModel{
		Keys: bson.M{"user_id": 1},
	}

	createdAtIndex := mongo.IndexModel{
		Keys: bson.M{"created_at": -1},
	}

	collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		emailIndex,
		nameIndex,
		ownerIndex,
		createdAtIndex,
	})

	return &MongoAgentRepository{
		collection: collection,
	}
}

func newAgentRepository(collection Collection) *MongoAgentRepository {
	return &MongoAgentRepository{collection: collection}
}

func validateAgent(agent *entity.Agent) error {
	agent.Name = strings.TrimSpace(agent.Name)
	agent.Email = strings.TrimSpace(agent.Email)
	agent.Country = strings.TrimSpace(agent.Country)
	if agent.Name == "" {
		return apperr.Validationf("name is required")
	}
	if agent.Email == "" {
		return apperr.Validationf("email is required")
	}
	if agent.Country == "" {
		return apperr.Validationf("country is required")
	}
	return nil
}

// Create validates the agent, enforces case-insensitive email uniqueness and
// stamps created_at == updated_at.
func (r *MongoAgentRepository) Create(ctx context.Context, agent *entity.Agent) (*entity.Agent, error) {
	if err := validateAgent(agent); err != nil {
		return nil, err
	}

	n, err := r.collection.CountDocuments(ctx, bson.M{"email": ciExact(agent.Email)})
	if err != nil {
		return nil, apperr.Store("agents.count", err)
	}
	if n > 0 {
		return nil, apperr.Duplicatef("email", agent.Email)
	}

	now := time.Now().UTC().Truncate(time.Millisecond)
	agent.ID = identifier.New()
	agent.IsActive = true
	agent.CreatedAt = now
	agent.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, agent); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, apperr.Duplicatef("email", agent.Email)
		}
		return nil, apperr.Store("agents.insert", err)
	}
	return agent, nil
}

// FindByID finds an agent by ID. Deactivated agents are still returned;
// deactivation is not deletion.
func (r *MongoAgentRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*entity.Agent, error) {
	var agent entity.Agent
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&agent)
	if err == mongo.ErrNoDocuments {
		return nil, apperr.NotFoundf("agent %s", identifier.Encode(id))
	}
	if err != nil {
		return nil, apperr.Store("agents.find", err)
	}
	return &agent, nil
}

// FindByEmail finds an agent by email, case-insensitively
func (r *MongoAgentRepository) FindByEmail(ctx context.Context, email string) (*entity.Agent, error) {
	var agent entity.Agent
	err := r.collection.FindOne(ctx, bson.M{"email": ciExact(email)}).Decode(&agent)
	if err == mongo.ErrNoDocuments {
		return nil, apperr.NotFoundf("agent with email %q", email)
	}
	if err != nil {
		return nil, apperr.Store("agents.find", err)
	}
	return &agent, nil
}

// FindByName finds an agent by exact name, used to resolve agent references
// during import
func (r *MongoAgentRepository) FindByName(ctx context.Context, name string) (*entity.Agent, error) {
	var agent entity.Agent
	err := r.collection.FindOne(ctx, bson.M{"name": name}).Decode(&agent)
	if err == mongo.ErrNoDocuments {
		return nil, apperr.NotFoundf("agent named %q", name)
	}
	if err != nil {
		return nil, apperr.Store("agents.find", err)
	}
	return &agent, nil
}

// FindOne returns the first agent matching the translated filter
func (r *MongoAgentRepository) FindOne(ctx context.Context, f query.Filter) (*entity.Agent, error) {
	predicate, err := translateFilter(f, agentFields)
	if err != nil {
		return nil, err
	}
	var agent entity.Agent
	err = r.collection.FindOne(ctx, predicate).Decode(&agent)
	if err == mongo.ErrNoDocuments {
		return nil, apperr.NotFoundf("no agent matches filter")
	}
	if err != nil {
		return nil, apperr.Store("agents.find", err)
	}
	return &agent, nil
}

// FindMany returns agents matching the translated filter, sorted and paged
func (r *MongoAgentRepository) FindMany(ctx context.Context, f query.Filter, s query.Sort, p query.Page) ([]*entity.Agent, error) {
	predicate, err := translateFilter(f, agentFields)
	if err != nil {
		return nil, err
	}
	sort, err := translateSort(s, agentFields)
	if err != nil {
		return nil, err
	}
	p = p.Clamp()

	cursor, err := r.collection.Find(ctx, predicate, options.Find().
		SetSort(sort).
		SetLimit(p.Limit).
		SetSkip(p.Offset))
	if err != nil {
		return nil, apperr.Store("agents.find", err)
	}
	defer cursor.Close(ctx)

	var agents []*entity.Agent
	if err := cursor.All(ctx, &agents); err != nil {
		return nil, apperr.Store("agents.decode", err)
	}
	return agents, nil
}

// FindActive returns only active agents, newest first
func (r *MongoAgentRepository) FindActive(ctx context.Context, p query.Page) ([]*entity.Agent, error) {
	return r.FindMany(ctx, query.Filter{"is_active": query.Eq{Value: true}}, query.DefaultSort(), p)
}

// Update merges only the fields present in the patch and refreshes updated_at
func (r *MongoAgentRepository) Update(ctx context.Context, id primitive.ObjectID, patch entity.AgentPatch) (*entity.Agent, error) {
	set := bson.M{}
	unset := bson.M{}

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, apperr.Validationf("name cannot be empty")
		}
		set["name"] = name
	}
	if patch.Email != nil {
		email := strings.TrimSpace(*patch.Email)
		if email == "" {
			return nil, apperr.Validationf("email cannot be empty")
		}
		n, err := r.collection.CountDocuments(ctx, bson.M{
			"email": ciExact(email),
			"_id":   bson.M{"$ne": id},
		})
		if err != nil {
			return nil, apperr.Store("agents.count", err)
		}
		if n > 0 {
			return nil, apperr.Duplicatef("email", email)
		}
		set["email"] = email
	}
	if patch.Company != nil {
		set["company"] = *patch.Company
	}
	if patch.Phone != nil {
		set["phone"] = *patch.Phone
	}
	if patch.Country != nil {
		country := strings.TrimSpace(*patch.Country)
		if country == "" {
			return nil, apperr.Validationf("country cannot be empty")
		}
		set["country"] = country
	}
	if patch.Address != nil {
		set["address"] = *patch.Address
	}
	if patch.Notes != nil {
		set["notes"] = *patch.Notes
	}
	if patch.IsActive != nil {
		set["is_active"] = *patch.IsActive
	}
	if patch.ClearOwner {
		unset["user_id"] = ""
	} else if patch.UserID != nil {
		set["user_id"] = *patch.UserID
	}

	set["updated_at"] = time.Now().UTC().Truncate(time.Millisecond)

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, apperr.Duplicatef("email", "")
		}
		return nil, apperr.Store("agents.update", err)
	}
	if result.MatchedCount == 0 {
		return nil, apperr.NotFoundf("agent %s", identifier.Encode(id))
	}
	return r.FindByID(ctx, id)
}

// Deactivate flips the active flag. Agents are never purged; bookings may
// still reference them.
func (r *MongoAgentRepository) Deactivate(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"is_active":  false,
		"updated_at": time.Now().UTC().Truncate(time.Millisecond),
	}})
	if err != nil {
		return apperr.Store("agents.update", err)
	}
	if result.MatchedCount == 0 {
		return apperr.NotFoundf("agent %s", identifier.Encode(id))
	}
	return nil
}
