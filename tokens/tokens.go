// tokens/tokens.go

/* The tokens package issues and verifies the credentials the API server hands
out: short-lived JWT access tokens (HS256, stateless) and long-lived opaque
refresh tokens (random, stored server-side so they can be revoked and rotated).
Refresh tokens are single-use when rotation is on: consuming one atomically
replaces it, so a replayed token is refused. */

package tokens

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrTokenNotFound is returned by store lookups for unknown refresh tokens.
	ErrTokenNotFound = errors.New("refresh token not found")

	// ErrRefreshInvalid is returned when a refresh token is unknown, expired,
	// or already consumed by rotation. The server answers all three the same
	// way, so callers get one sentinel.
	ErrRefreshInvalid = errors.New("refresh token invalid or expired")

	// ErrAccessInvalid is returned by Verify for any unusable access token.
	ErrAccessInvalid = errors.New("access token invalid")
)

// RefreshToken is one stored refresh credential.
type RefreshToken struct {
	ID        uuid.UUID
	Token     string // opaque value handed to the client
	UserID    uuid.UUID
	ExpiresAt time.Time
	CreatedAt time.Time
}

// RefreshTokenStore is the storage contract for refresh tokens.
type RefreshTokenStore interface {
	// Create inserts a new refresh token row.
	Create(ctx context.Context, token RefreshToken) error

	// Find returns the row for the given opaque token value, or ErrTokenNotFound.
	Find(ctx context.Context, token string) (RefreshToken, error)

	// Delete removes the row for the given opaque token value. Deleting an
	// unknown token is not an error; revocation is idempotent.
	Delete(ctx context.Context, token string) error

	// Replace atomically consumes oldToken and inserts newToken. When oldToken
	// is already gone it returns ErrTokenNotFound and inserts nothing; of two
	// concurrent rotations of the same token exactly one wins.
	Replace(ctx context.Context, oldToken string, newToken RefreshToken) error

	// DeleteExpired removes rows whose expiry is before now and reports how
	// many were dropped.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
