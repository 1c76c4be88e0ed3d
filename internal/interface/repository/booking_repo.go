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

// MongoBookingRepository implements the BookingRepository interface
type MongoBookingRepository struct {
	collection Collection
}

// NewMongoBookingRepository creates a new MongoDB booking repository
func NewMongoBookingRepository(db *mongo.Database) repository.BookingRepository {
	collection := db.Collection("bookings")

	ctx := context.Background()

	// Compound index for owner queries, the most common pattern
	ownerDateIndex := mongo.IndexModel{
		Keys: bson.D{
			{Key: "user_id", Value: 1},
			{Key: "date_from", Value: 1},
		},
	}

	agentDateIndex := mongo.IndexModel{
		Keys: bson.D{
			{Key: "agent_id", Value: 1},
			{Key: "date_from", Value: 1},
		},
	}

	// Date range queries for filtering
	dateRangeIndex := mongo.IndexModel{
		Keys: bson.D{
			{Key: "date_from", Value: 1},
			{Key: "date_to", Value: 1},
		},
	}

	createdAtIndex := mongo.IndexModel{
		Keys: bson.M{"created_at": -1},
	}

	collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		ownerDateIndex,
		agentDateIndex,
		dateRangeIndex,
		createdAtIndex,
	})

	return &MongoBookingRepository{
		collection: collection,
	}
}

func newBookingRepository(collection Collection) *MongoBookingRepository {
	return &MongoBookingRepository{collection: collection}
}

// validateBooking checks required fields, headcounts and date order, and
// derives pax from the four groups when it was not supplied. When pax is
// supplied it must agree with the groups; mismatches are rejected, not
// silently carried.
func validateBooking(b *entity.Booking) error {
	b.Name = strings.TrimSpace(b.Name)
	b.Country = strings.TrimSpace(b.Country)
	if b.Name == "" {
		return apperr.Validationf("name is required")
	}
	if b.Country == "" {
		return apperr.Validationf("country is required")
	}
	if b.UserID == primitive.NilObjectID {
		return apperr.Validationf("user_id is required")
	}
	if b.DateFrom.IsZero() || b.DateTo.IsZero() {
		return apperr.Validationf("date_from and date_to are required")
	}
	b.DateFrom = b.DateFrom.UTC()
	b.DateTo = b.DateTo.UTC()
	if b.DateTo.Before(b.DateFrom) {
		return apperr.Validationf("date_to %s is before date_from %s",
			b.DateTo.Format("2006-01-02"), b.DateFrom.Format("2006-01-02"))
	}
	for _, hc := range []struct {
		field string
		value int
	}{
		{"pax", b.Pax},
		{"ladies", b.Ladies},
		{"men", b.Men},
		{"children", b.Children},
		{"teens", b.Teens},
	} {
		if hc.value < 0 {
			return apperr.Validationf("%s must be a non-negative integer", hc.field)
		}
	}
	if b.Pax == 0 {
		b.Pax = b.Headcount()
	} else if b.Pax != b.Headcount() {
		return apperr.Validationf("pax %d does not match ladies+men+children+teens %d", b.Pax, b.Headcount())
	}
	return nil
}

// Create validates the booking and stamps created_at == updated_at. Agent
// references are not existence-checked here; a reference to a not-yet-landed
// agent is a tolerated transient state resolved as dangling at read time.
func (r *MongoBookingRepository) Create(ctx context.Context, b *entity.Booking) (*entity.Booking, error) {
	if err := validateBooking(b); err != nil {
		return nil, err
	}

	now := time.Now().UTC().Truncate(time.Millisecond)
	b.ID = identifier.New()
	b.IsDeleted = false
	b.DeletedAt = nil
	b.DeletedBy = nil
	b.CreatedAt = now
	b.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, b); err != nil {
		return nil, apperr.Store("bookings.insert", err)
	}
	return b, nil
}

// FindByID finds a booking by ID. Trashed bookings count as deleted.
func (r *MongoBookingRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*entity.Booking, error) {
	filter := notTrashed()
	filter["_id"] = id

	var b entity.Booking
	err := r.collection.FindOne(ctx, filter).Decode(&b)
	if err == mongo.ErrNoDocuments {
		return nil, apperr.NotFoundf("booking %s", identifier.Encode(id))
	}
	if err != nil {
		return nil, apperr.Store("bookings.find", err)
	}
	return &b, nil
}

// FindOne returns the first non-trashed booking matching the translated filter
func (r *MongoBookingRepository) FindOne(ctx context.Context, f query.Filter) (*entity.Booking, error) {
	predicate, err := translateFilter(f, bookingFields)
	if err != nil {
		return nil, err
	}
	for k, v := range notTrashed() {
		predicate[k] = v
	}

	var b entity.Booking
	err = r.collection.FindOne(ctx, predicate).Decode(&b)
	if err == mongo.ErrNoDocuments {
		return nil, apperr.NotFoundf("no booking matches filter")
	}
	if err != nil {
		return nil, apperr.Store("bookings.find", err)
	}
	return &b, nil
}

// FindMany returns non-trashed bookings matching the translated filter,
// sorted and paged
func (r *MongoBookingRepository) FindMany(ctx context.Context, f query.Filter, s query.Sort, p query.Page) ([]*entity.Booking, error) {
	predicate, err := translateFilter(f, bookingFields)
	if err != nil {
		return nil, err
	}
	for k, v := range notTrashed() {
		predicate[k] = v
	}
	sort, err := translateSort(s, bookingFields)
	if err != nil {
		return nil, err
	}
	return r.findMany(ctx, predicate, sort, p)
}

func (r *MongoBookingRepository) findMany(ctx context.Context, predicate bson.M, sort bson.D, p query.Page) ([]*entity.Booking, error) {
	p = p.Clamp()

	cursor, err := r.collection.Find(ctx, predicate, options.Find().
		SetSort(sort).
		SetLimit(p.Limit).
		SetSkip(p.Offset))
	if err != nil {
		return nil, apperr.Store("bookings.find", err)
	}
	defer cursor.Close(ctx)

	var bookings []*entity.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, apperr.Store("bookings.decode", err)
	}
	return bookings, nil
}

// FindByAgent returns the non-trashed bookings referencing an agent
func (r *MongoBookingRepository) FindByAgent(ctx context.Context, agentID primitive.ObjectID, p query.Page) ([]*entity.Booking, error) {
	predicate := notTrashed()
	predicate["agent_id"] = agentID
	sort, _ := translateSort(query.DefaultSort(), bookingFields)
	return r.findMany(ctx, predicate, sort, p)
}

// FindByOwner returns the non-trashed bookings owned by an operator
func (r *MongoBookingRepository) FindByOwner(ctx context.Context, userID primitive.ObjectID, p query.Page) ([]*entity.Booking, error) {
	predicate := notTrashed()
	predicate["user_id"] = userID
	sort, _ := translateSort(query.DefaultSort(), bookingFields)
	return r.findMany(ctx, predicate, sort, p)
}

// FindTrashed returns bookings currently in the trash
func (r *MongoBookingRepository) FindTrashed(ctx context.Context, p query.Page) ([]*entity.Booking, error) {
	sort, _ := translateSort(query.DefaultSort(), bookingFields)
	return r.findMany(ctx, bson.M{"is_deleted": true}, sort, p)
}

// Update merges only the fields present in the patch, re-validates the
// merged document and refreshes updated_at. Trashed bookings are NotFound.
func (r *MongoBookingRepository) Update(ctx context.Context, id primitive.ObjectID, patch entity.BookingPatch) (*entity.Booking, error) {
	existing, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	merged := *existing
	set := bson.M{}
	unset := bson.M{}

	if patch.Name != nil {
		merged.Name = *patch.Name
		set["name"] = strings.TrimSpace(*patch.Name)
	}
	if patch.DateFrom != nil {
		merged.DateFrom = patch.DateFrom.UTC()
		set["date_from"] = merged.DateFrom
	}
	if patch.DateTo != nil {
		merged.DateTo = patch.DateTo.UTC()
		set["date_to"] = merged.DateTo
	}
	if patch.Country != nil {
		merged.Country = *patch.Country
		set["country"] = strings.TrimSpace(*patch.Country)
	}
	if patch.Pax != nil {
		merged.Pax = *patch.Pax
		set["pax"] = *patch.Pax
	}
	if patch.Ladies != nil {
		merged.Ladies = *patch.Ladies
		set["ladies"] = *patch.Ladies
	}
	if patch.Men != nil {
		merged.Men = *patch.Men
		set["men"] = *patch.Men
	}
	if patch.Children != nil {
		merged.Children = *patch.Children
		set["children"] = *patch.Children
	}
	if patch.Teens != nil {
		merged.Teens = *patch.Teens
		set["teens"] = *patch.Teens
	}
	if patch.ClearAgent {
		merged.AgentID = nil
		unset["agent_id"] = ""
	} else if patch.AgentID != nil {
		merged.AgentID = patch.AgentID
		set["agent_id"] = *patch.AgentID
	}
	if patch.Consultant != nil {
		merged.Consultant = *patch.Consultant
		set["consultant"] = *patch.Consultant
	}
	if patch.Notes != nil {
		merged.Notes = *patch.Notes
		set["notes"] = *patch.Notes
	}

	// Headcount patches without an explicit pax re-derive it
	if patch.Pax == nil &&
		(patch.Ladies != nil || patch.Men != nil || patch.Children != nil || patch.Teens != nil) {
		merged.Pax = 0
	}
	if err := validateBooking(&merged); err != nil {
		return nil, err
	}
	if _, patched := set["pax"]; patched || merged.Pax != existing.Pax {
		set["pax"] = merged.Pax
	}

	set["updated_at"] = time.Now().UTC().Truncate(time.Millisecond)

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	filter := notTrashed()
	filter["_id"] = id
	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return nil, apperr.Store("bookings.update", err)
	}
	if result.MatchedCount == 0 {
		return nil, apperr.NotFoundf("booking %s", identifier.Encode(id))
	}
	return r.FindByID(ctx, id)
}

// MoveToTrash soft-deletes a booking and records who deleted it
func (r *MongoBookingRepository) MoveToTrash(ctx context.Context, id, deletedBy primitive.ObjectID) error {
	filter := notTrashed()
	filter["_id"] = id

	now := time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.UpdateOne(ctx, filter, bson.M{"$set": bson.M{
		"is_deleted": true,
		"deleted_at": now,
		"deleted_by": deletedBy,
		"updated_at": now,
	}})
	if err != nil {
		return apperr.Store("bookings.update", err)
	}
	if result.MatchedCount == 0 {
		return apperr.NotFoundf("booking %s", identifier.Encode(id))
	}
	return nil
}

// RestoreFromTrash brings a trashed booking back
func (r *MongoBookingRepository) RestoreFromTrash(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "is_deleted": true},
		bson.M{
			"$set": bson.M{
				"is_deleted": false,
				"updated_at": time.Now().UTC().Truncate(time.Millisecond),
			},
			"$unset": bson.M{
				"deleted_at": "",
				"deleted_by": "",
			},
		})
	if err != nil {
		return apperr.Store("bookings.update", err)
	}
	if result.MatchedCount == 0 {
		return apperr.NotFoundf("booking %s not in trash", identifier.Encode(id))
	}
	return nil
}

// EmptyTrash permanently deletes all trashed bookings and returns how many
// were removed. Identifiers are never reused afterwards.
func (r *MongoBookingRepository) EmptyTrash(ctx context.Context) (int64, error) {
	result, err := r.collection.DeleteMany(ctx, bson.M{"is_deleted": true})
	if err != nil {
		return 0, apperr.Store("bookings.delete", err)
	}
	return result.DeletedCount, nil
}
