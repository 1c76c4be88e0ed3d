package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tourdesk-service/internal/domain/entity"
	"tourdesk-service/internal/domain/query"
	"tourdesk-service/pkg/apperr"
)

func operatorFixture() *entity.Operator {
	return &entity.Operator{
		Username:     "jdoe",
		Email:        "jdoe@example.com",
		PasswordHash: "pbkdf2:sha256:600000$abc",
		FirstName:    "Jane",
		LastName:     "Doe",
	}
}

func newTestOperatorRepo() *MongoOperatorRepository {
	return newOperatorRepository(newMemCollection(
		uniqueSpec{field: "username"},
		uniqueSpec{field: "email", ci: true},
	))
}

func TestOperatorCreateAndFindByID(t *testing.T) {
	ctx := context.Background()
	repo := newTestOperatorRepo()

	created, err := repo.Create(ctx, operatorFixture())
	require.NoError(t, err)
	require.False(t, created.ID.IsZero())
	assert.Equal(t, entity.RoleUser, created.Role, "role defaults to user")
	assert.True(t, created.IsActive)
	assert.True(t, created.CreatedAt.Equal(created.UpdatedAt))

	found, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "jdoe", found.Username)
	assert.Equal(t, "jdoe@example.com", found.Email)
	assert.Equal(t, "Jane", found.FirstName)
	assert.True(t, found.CreatedAt.Equal(found.UpdatedAt))
}

func TestOperatorCreateValidation(t *testing.T) {
	ctx := context.Background()
	repo := newTestOperatorRepo()

	op := operatorFixture()
	op.Username = ""
	_, err := repo.Create(ctx, op)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	op = operatorFixture()
	op.PasswordHash = ""
	_, err = repo.Create(ctx, op)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	op = operatorFixture()
	op.Role = "superuser"
	_, err = repo.Create(ctx, op)
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestOperatorDuplicateEmailCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	repo := newTestOperatorRepo()

	_, err := repo.Create(ctx, operatorFixture())
	require.NoError(t, err)

	second := operatorFixture()
	second.Username = "jdoe2"
	second.Email = "JDoe@Example.COM"
	_, err = repo.Create(ctx, second)
	assert.ErrorIs(t, err, apperr.ErrDuplicateKey)
}

func TestOperatorFindByUsernameAndEmail(t *testing.T) {
	ctx := context.Background()
	repo := newTestOperatorRepo()

	created, err := repo.Create(ctx, operatorFixture())
	require.NoError(t, err)

	byName, err := repo.FindByUsername(ctx, "jdoe")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byName.ID)

	byEmail, err := repo.FindByEmail(ctx, "JDOE@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)

	_, err = repo.FindByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestOperatorUpdatePartial(t *testing.T) {
	ctx := context.Background()
	repo := newTestOperatorRepo()

	created, err := repo.Create(ctx, operatorFixture())
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)
	firstName := "Janet"
	updated, err := repo.Update(ctx, created.ID, entity.OperatorPatch{FirstName: &firstName})
	require.NoError(t, err)

	assert.Equal(t, "Janet", updated.FirstName)
	assert.Equal(t, created.Username, updated.Username)
	assert.Equal(t, created.Email, updated.Email)
	assert.Equal(t, created.LastName, updated.LastName)
	assert.True(t, updated.CreatedAt.Equal(created.CreatedAt), "created_at is immutable")
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt), "updated_at strictly advances")
}

func TestOperatorUpdateRejectsTakenEmail(t *testing.T) {
	ctx := context.Background()
	repo := newTestOperatorRepo()

	_, err := repo.Create(ctx, operatorFixture())
	require.NoError(t, err)

	second := operatorFixture()
	second.Username = "asmith"
	second.Email = "asmith@example.com"
	created, err := repo.Create(ctx, second)
	require.NoError(t, err)

	taken := "JDOE@example.com"
	_, err = repo.Update(ctx, created.ID, entity.OperatorPatch{Email: &taken})
	assert.ErrorIs(t, err, apperr.ErrDuplicateKey)
}

func TestOperatorUpdateNotFound(t *testing.T) {
	ctx := context.Background()
	repo := newTestOperatorRepo()

	role := entity.RoleAdmin
	_, err := repo.Update(ctx, newFakeID(), entity.OperatorPatch{Role: &role})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestOperatorUpdatePasswordAndDeactivate(t *testing.T) {
	ctx := context.Background()
	repo := newTestOperatorRepo()

	created, err := repo.Create(ctx, operatorFixture())
	require.NoError(t, err)

	require.NoError(t, repo.UpdatePassword(ctx, created.ID, "pbkdf2:sha256:600000$new"))
	found, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "pbkdf2:sha256:600000$new", found.PasswordHash)

	require.NoError(t, repo.Deactivate(ctx, created.ID))
	found, err = repo.FindByID(ctx, created.ID)
	require.NoError(t, err, "deactivated operators are kept, not deleted")
	assert.False(t, found.IsActive)
}

func TestOperatorFindManyFiltered(t *testing.T) {
	ctx := context.Background()
	repo := newTestOperatorRepo()

	admin := operatorFixture()
	admin.Username = "root"
	admin.Email = "root@example.com"
	admin.Role = entity.RoleAdmin
	_, err := repo.Create(ctx, admin)
	require.NoError(t, err)

	_, err = repo.Create(ctx, operatorFixture())
	require.NoError(t, err)

	admins, err := repo.FindMany(ctx,
		query.Filter{"role": query.Eq{Value: entity.RoleAdmin}},
		query.DefaultSort(), query.Page{})
	require.NoError(t, err)
	require.Len(t, admins, 1)
	assert.Equal(t, "root", admins[0].Username)

	_, err = repo.FindMany(ctx,
		query.Filter{"shoe_size": query.Eq{Value: 42}},
		query.DefaultSort(), query.Page{})
	assert.ErrorIs(t, err, apperr.ErrUnsupportedFilter)
}
