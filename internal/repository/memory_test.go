package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"vmportal/internal/models"
)

func newUser(id, email string) *models.User {
	return &models.User{
		ID:           id,
		Username:     "user-" + id,
		Email:        email,
		FullName:     "User " + id,
		PasswordHash: "hash",
		Role:         models.RoleStudent,
		AssignedVMs:  []int64{100},
	}
}

func TestMemoryRepository_CRUD(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewMemoryUserRepository()

	user := newUser("u1", "u1@school.com")
	require.NoError(t, repo.Create(ctx, user))
	assert.False(t, user.CreatedAt.IsZero())

	got, err := repo.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1@school.com", got.Email)

	got, err = repo.GetByEmail(ctx, "u1@school.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.ID)

	got.AssignedVMs = []int64{100, 101}
	require.NoError(t, repo.Update(ctx, got))

	got, err = repo.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []int64{100, 101}, []int64(got.AssignedVMs))

	users, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)

	require.NoError(t, repo.Delete(ctx, "u1"))
	_, err = repo.GetByID(ctx, "u1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryRepository_DuplicateEmail(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewMemoryUserRepository()

	require.NoError(t, repo.Create(ctx, newUser("u1", "same@school.com")))
	err := repo.Create(ctx, newUser("u2", "same@school.com"))
	assert.ErrorIs(t, err, ErrDuplicateEmail)

	users, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1, "no duplicate record may be created")

	// Updating one user onto another's email must also be refused.
	require.NoError(t, repo.Create(ctx, newUser("u3", "other@school.com")))
	u3, err := repo.GetByID(ctx, "u3")
	require.NoError(t, err)
	u3.Email = "same@school.com"
	assert.ErrorIs(t, repo.Update(ctx, u3), ErrDuplicateEmail)
}

func TestMemoryRepository_MissingRecords(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewMemoryUserRepository()

	_, err := repo.GetByID(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = repo.GetByEmail(ctx, "nope@school.com")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, "nope"), ErrNotFound)
	assert.ErrorIs(t, repo.Update(ctx, newUser("nope", "x@school.com")), ErrNotFound)
}

func TestSeedUsers(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewMemoryUserRepository()
	log := zap.NewNop()

	require.NoError(t, SeedUsers(ctx, repo, log))

	admin, err := repo.GetByEmail(ctx, "admin@school.com")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, admin.Role)
	assert.Empty(t, admin.AssignedVMs)

	student, err := repo.GetByEmail(ctx, "student1@school.com")
	require.NoError(t, err)
	assert.Equal(t, []int64{100, 101}, []int64(student.AssignedVMs))

	// Re-seeding is a no-op, not an error.
	require.NoError(t, SeedUsers(ctx, repo, log))
	users, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 3)
}
