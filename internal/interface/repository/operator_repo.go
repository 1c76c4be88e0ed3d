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

// MongoOperatorRepository implements the OperatorRepository interface
type MongoOperatorRepository struct {
	collection Collection
}

// NewMongoOperatorRepository creates a new MongoDB operator repository
func NewMongoOperatorRepository(db *mongo.Database) repository.OperatorRepository {
	collection := db.Collection("operators")

	ctx := context.Background()

	// Unique index on username
	usernameIndex := mongo.IndexModel{
		Keys:    bson.M{"username": 1},
		Options: options.Index().SetUnique(true),
	}

	// Case-insensitive unique index on email. The pre-check in Create gives
	// the typed error; this index is the race-safety backstop.
	emailIndex := mongo.IndexModel{
		Keys: bson.M{"email": 1},
		Options: options.Index().SetUnique(true).
			SetCollation(&options.Collation{Locale: "en", Strength: 2}),
	}

	createdAtIndex := mongo.IndexModel{
		Keys: bson.M{"created_at": -1},
	}

	collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		usernameIndex,
		emailIndex,
		createdAtIndex,
	})

	return &MongoOperatorRepository{
		collection: collection,
	}
}

func newOperatorRepository(collection Collection) *MongoOperatorRepository {
	return &MongoOperatorRepository{collection: collection}
}

func validateOperator(op *entity.Operator) error {
	op.Username = strings.TrimSpace(op.Username)
	op.Email = strings.TrimSpace(op.Email)
	if op.Username == "" {
		return apperr.Validationf("username is required")
	}
	if op.Email == "" {
		return apperr.Validationf("email is required")
	}
	if op.PasswordHash == "" {
		return apperr.Validationf("password_hash is required")
	}
	if op.Role == "" {
		op.Role = entity.RoleUser
	}
	if !entity.ValidRole(op.Role) {
		return apperr.Validationf("unknown role %q", op.Role)
	}
	return nil
}

// Create validates the operator, enforces username and email uniqueness and
// stamps created_at == updated_at.
func (r *MongoOperatorRepository) Create(ctx context.Context, op *entity.Operator) (*entity.Operator, error) {
	if err := validateOperator(op); err != nil {
		return nil, err
	}

	if err := r.checkUnique(ctx, "username", bson.M{"username": op.Username}, op.Username, primitive.NilObjectID); err != nil {
		return nil, err
	}
	if err := r.checkUnique(ctx, "email", bson.M{"email": ciExact(op.Email)}, op.Email, primitive.NilObjectID); err != nil {
		return nil, err
	}

	now := time.Now().UTC().Truncate(time.Millisecond)
	op.ID = identifier.New()
	op.IsActive = true
	op.CreatedAt = now
	op.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, op); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, apperr.Duplicatef("email or username", op.Email)
		}
		return nil, apperr.Store("operators.insert", err)
	}
	return op, nil
}

func (r *MongoOperatorRepository) checkUnique(ctx context.Context, field string, filter bson.M, value string, exclude primitive.ObjectID) error {
	if exclude != primitive.NilObjectID {
		filter["_id"] = bson.M{"$ne": exclude}
	}
	n, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return apperr.Store("operators.count", err)
	}
	if n > 0 {
		return apperr.Duplicatef(field, value)
	}
	return nil
}

// FindByID finds an operator by ID
func (r *MongoOperatorRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*entity.Operator, error) {
	var op entity.Operator
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&op)
	if err == mongo.ErrNoDocuments {
		return nil, apperr.NotFoundf("operator %s", identifier.Encode(id))
	}
	if err != nil {
		return nil, apperr.Store("operators.find", err)
	}
	return &op, nil
}

// FindByUsername finds an operator by exact username
func (r *MongoOperatorRepository) FindByUsername(ctx context.Context, username string) (*entity.Operator, error) {
	var op entity.Operator
	err := r.collection.FindOne(ctx, bson.M{"username": username}).Decode(&op)
	if err == mongo.ErrNoDocuments {
		return nil, apperr.NotFoundf("operator with username %q", username)
	}
	if err != nil {
		return nil, apperr.Store("operators.find", err)
	}
	return &op, nil
}

// FindByEmail finds an operator by email, case-insensitively
func (r *MongoOperatorRepository) FindByEmail(ctx context.Context, email string) (*entity.Operator, error) {
	var op entity.Operator
	err := r.collection.FindOne(ctx, bson.M{"email": ciExact(email)}).Decode(&op)
	if err == mongo.ErrNoDocuments {
		return nil, apperr.NotFoundf("operator with email %q", email)
	}
	if err != nil {
		return nil, apperr.Store("operators.find", err)
	}
	return &op, nil
}

// FindOne returns the first operator matching the translated filter
func (r *MongoOperatorRepository) FindOne(ctx context.Context, f query.Filter) (*entity.Operator, error) {
	predicate, err := translateFilter(f, operatorFields)
	if err != nil {
		return nil, err
	}
	var op entity.Operator
	err = r.collection.FindOne(ctx, predicate).Decode(&op)
	if err == mongo.ErrNoDocuments {
		return nil, apperr.NotFoundf("no operator matches filter")
	}
	if err != nil {
		return nil, apperr.Store("operators.find", err)
	}
	return &op, nil
}

// FindMany returns operators matching the translated filter, sorted and paged
func (r *MongoOperatorRepository) FindMany(ctx context.Context, f query.Filter, s query.Sort, p query.Page) ([]*entity.Operator, error) {
	predicate, err := translateFilter(f, operatorFields)
	if err != nil {
		return nil, err
	}
	sort, err := translateSort(s, operatorFields)
	if err != nil {
		return nil, err
	}
	p = p.Clamp()

	cursor, err := r.collection.Find(ctx, predicate, options.Find().
		SetSort(sort).
		SetLimit(p.Limit).
		SetSkip(p.Offset))
	if err != nil {
		return nil, apperr.Store("operators.find", err)
	}
	defer cursor.Close(ctx)

	var ops []*entity.Operator
	if err := cursor.All(ctx, &ops); err != nil {
		return nil, apperr.Store("operators.decode", err)
	}
	return ops, nil
}

// Update merges only the fields present in the patch and refreshes
// updated_at. The password hash has its own operation.
func (r *MongoOperatorRepository) Update(ctx context.Context, id primitive.ObjectID, patch entity.OperatorPatch) (*entity.Operator, error) {
	set := bson.M{}

	if patch.Username != nil {
		username := strings.TrimSpace(*patch.Username)
		if username == "" {
			return nil, apperr.Validationf("username cannot be empty")
		}
		if err := r.checkUnique(ctx, "username", bson.M{"username": username}, username, id); err != nil {
			return nil, err
		}
		set["username"] = username
	}
	if patch.Email != nil {
		email := strings.TrimSpace(*patch.Email)
		if email == "" {
			return nil, apperr.Validationf("email cannot be empty")
		}
		if err := r.checkUnique(ctx, "email", bson.M{"email": ciExact(email)}, email, id); err != nil {
			return nil, err
		}
		set["email"] = email
	}
	if patch.FirstName != nil {
		set["first_name"] = *patch.FirstName
	}
	if patch.LastName != nil {
		set["last_name"] = *patch.LastName
	}
	if patch.Role != nil {
		if !entity.ValidRole(*patch.Role) {
			return nil, apperr.Validationf("unknown role %q", *patch.Role)
		}
		set["role"] = *patch.Role
	}
	if patch.IsActive != nil {
		set["is_active"] = *patch.IsActive
	}

	set["updated_at"] = time.Now().UTC().Truncate(time.Millisecond)

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, apperr.Duplicatef("email or username", "")
		}
		return nil, apperr.Store("operators.update", err)
	}
	if result.MatchedCount == 0 {
		return nil, apperr.NotFoundf("operator %s", identifier.Encode(id))
	}
	return r.FindByID(ctx, id)
}

// UpdatePassword replaces the stored password hash. The hash is opaque to
// the core; hashing belongs to the auth layer.
func (r *MongoOperatorRepository) UpdatePassword(ctx context.Context, id primitive.ObjectID, passwordHash string) error {
	if passwordHash == "" {
		return apperr.Validationf("password_hash is required")
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"password_hash": passwordHash,
		"updated_at":    time.Now().UTC().Truncate(time.Millisecond),
	}})
	if err != nil {
		return apperr.Store("operators.update", err)
	}
	if result.MatchedCount == 0 {
		return apperr.NotFoundf("operator %s", identifier.Encode(id))
	}
	return nil
}

// Deactivate flips the active flag. Operators are never hard-deleted.
func (r *MongoOperatorRepository) Deactivate(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"is_active":  false,
		"updated_at": time.Now().UTC().Truncate(time.Millisecond),
	}})
	if err != nil {
		return apperr.Store("operators.update", err)
	}
	if result.MatchedCount == 0 {
		return apperr.NotFoundf("operator %s", identifier.Encode(id))
	}
	return nil
}
