// tokens/memory_test.go

package tokens

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRefreshToken(value string, expiresAt time.Time) RefreshToken {
	return RefreshToken{
		ID:        uuid.New(),
		Token:     value,
		UserID:    uuid.New(),
		ExpiresAt: expiresAt,
		CreatedAt: time.Now().UTC(),
	}
}

func TestMemoryStoreCreateFindDelete(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	token := newRefreshToken("rt-1", time.Now().Add(time.Hour))

	require.NoError(t, store.Create(ctx, token))

	found, err := store.Find(ctx, "rt-1")
	require.NoError(t, err)
	assert.Equal(t, token.UserID, found.UserID)

	require.NoError(t, store.Delete(ctx, "rt-1"))
	_, err = store.Find(ctx, "rt-1")
	assert.ErrorIs(t, err, ErrTokenNotFound)

	// Deleting an already-gone token is fine.
	assert.NoError(t, store.Delete(ctx, "rt-1"))
}

func TestMemoryStoreReplace(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	old := newRefreshToken("rt-old", time.Now().Add(time.Hour))
	require.NoError(t, store.Create(ctx, old))

	next := newRefreshToken("rt-new", time.Now().Add(2*time.Hour))
	require.NoError(t, store.Replace(ctx, "rt-old", next))

	_, err := store.Find(ctx, "rt-old")
	assert.ErrorIs(t, err, ErrTokenNotFound)

	found, err := store.Find(ctx, "rt-new")
	require.NoError(t, err)
	assert.Equal(t, next.UserID, found.UserID)
	assert.Equal(t, 1, store.Len())
}

func TestMemoryStoreReplaceConsumedToken(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	err := store.Replace(ctx, "rt-gone", newRefreshToken("rt-new", time.Now().Add(time.Hour)))
	assert.ErrorIs(t, err, ErrTokenNotFound)

	// The losing rotation must not leave its replacement behind.
	_, err = store.Find(ctx, "rt-new")
	assert.ErrorIs(t, err, ErrTokenNotFound)
}

func TestMemoryStoreDeleteExpired(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, store.Create(ctx, newRefreshToken("rt-stale", now.Add(-time.Minute))))
	require.NoError(t, store.Create(ctx, newRefreshToken("rt-live", now.Add(time.Hour))))

	dropped, err := store.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), dropped)

	_, err = store.Find(ctx, "rt-stale")
	assert.ErrorIs(t, err, ErrTokenNotFound)
	_, err = store.Find(ctx, "rt-live")
	assert.NoError(t, err)
}
