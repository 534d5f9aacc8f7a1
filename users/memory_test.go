// users/memory_test.go

package users

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUser(username string) User {
	return User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: "$2a$10$notarealhashnotarealhashnotarealhash",
		CreatedAt:    time.Now().UTC(),
	}
}

func TestMemoryStoreCreateAndFind(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	user := newUser("admin")

	require.NoError(t, store.Create(ctx, user))

	byName, err := store.FindByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byName.ID)

	byID, err := store.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "admin", byID.Username)
}

func TestMemoryStoreUsernameLookupIsCaseInsensitive(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Create(ctx, newUser("Admin")))

	found, err := store.FindByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, "Admin", found.Username)

	err = store.Create(ctx, newUser("ADMIN"))
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestMemoryStoreRejectsDuplicateUsername(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Create(ctx, newUser("admin")))

	err := store.Create(ctx, newUser("admin"))
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestMemoryStoreMissingLookups(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, err := store.FindByUsername(ctx, "ghost")
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = store.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrUserNotFound)
}
