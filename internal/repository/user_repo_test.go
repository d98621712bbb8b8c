package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trophyangler/internal/domain"
)

func TestUserUpsert_CreateThenUpdate(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t))
	repo.now = frozenClock(t0)
	ctx := context.Background()

	created, err := repo.Upsert(ctx, &domain.User{ID: "u1", Email: " Anna@Example.com ", Username: "anna"})
	require.NoError(t, err)
	assert.True(t, created)

	repo.now = frozenClock(t0.Add(time.Hour))
	bio := "river rat"
	created, err = repo.Upsert(ctx, &domain.User{ID: "u1", Email: "anna@example.com", Username: "anna_k", Bio: &bio, IsPremium: true})
	require.NoError(t, err)
	assert.False(t, created)

	got, err := repo.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "anna@example.com", got.Email)
	assert.Equal(t, "anna_k", got.Username)
	require.NotNil(t, got.Bio)
	assert.Equal(t, "river rat", *got.Bio)
	assert.True(t, got.IsPremium)
	assert.True(t, got.CreatedAt.Equal(t0))
	assert.True(t, got.UpdatedAt.Equal(t0.Add(time.Hour)))
}

func TestUserUpsert_DuplicateUsername(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t))
	ctx := context.Background()

	_, err := repo.Upsert(ctx, &domain.User{ID: "u1", Email: "a@example.com", Username: "anna"})
	require.NoError(t, err)

	_, err = repo.Upsert(ctx, &domain.User{ID: "u2", Email: "b@example.com", Username: "anna"})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestUserDelete_CascadesTrophies(t *testing.T) {
	db := setupTestDB(t)
	users := NewUserRepository(db)
	trophies := NewTrophyRepository(db)
	ctx := context.Background()

	_, err := users.Upsert(ctx, &domain.User{ID: "u1", Email: "a@example.com", Username: "anna"})
	require.NoError(t, err)

	mine := newTrophy("u1", 40, -74, true, t0)
	theirs := newTrophy("u2", 40, -74, true, t0)
	require.NoError(t, trophies.Put(ctx, mine))
	require.NoError(t, trophies.Put(ctx, theirs))

	removed, err := users.Delete(ctx, "u1")
	require.NoError(t, err)
	assert.EqualValues(t, 1, removed)

	_, err = trophies.Get(ctx, mine.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.EqualValues(t, 0, countIndexRows(t, db, mine.ID))
	_, err = trophies.Get(ctx, theirs.ID)
	assert.NoError(t, err)

	_, err = users.Delete(ctx, "u1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
