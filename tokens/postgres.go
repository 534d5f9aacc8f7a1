// tokens/postgres.go
package tokens

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// PostgresStore persists refresh tokens in Postgres via database/sql with the
// pgx driver.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore returns a refresh token store bound to db.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Create inserts a new refresh token row.
func (s *PostgresStore) Create(ctx context.Context, token RefreshToken) error {
	const q = `
INSERT INTO refresh_tokens (id, token, user_id, expires_at, created_at)
VALUES ($1, $2, $3, $4, $5);
`
	if _, err := s.db.ExecContext(ctx, q, token.ID, token.Token, token.UserID, token.ExpiresAt, token.CreatedAt); err != nil {
		return fmt.Errorf("insert refresh token: %w", err)
	}
	return nil
}

// Find returns the row for the given opaque token value, or ErrTokenNotFound.
func (s *PostgresStore) Find(ctx context.Context, token string) (RefreshToken, error) {
	const q = `
SELECT id, token, user_id, expires_at, created_at
FROM refresh_tokens
WHERE token = $1;
`
	var stored RefreshToken
	err := s.db.QueryRowContext(ctx, q, token).
		Scan(&stored.ID, &stored.Token, &stored.UserID, &stored.ExpiresAt, &stored.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return RefreshToken{}, ErrTokenNotFound
		}
		return RefreshToken{}, fmt.Errorf("select refresh token: %w", err)
	}
	return stored, nil
}

// Delete removes the row for the given opaque token value, if present.
func (s *PostgresStore) Delete(ctx context.Context, token string) error {
	const q = `
DELETE FROM refresh_tokens
WHERE token = $1;
`
	if _, err := s.db.ExecContext(ctx, q, token); err != nil {
		return fmt.Errorf("delete refresh token: %w", err)
	}
	return nil
}

// Replace consumes oldToken and inserts newToken in one transaction. The
// delete's row count decides the winner when two rotations race: the loser
// sees zero rows and gets ErrTokenNotFound.
func (s *PostgresStore) Replace(ctx context.Context, oldToken string, newToken RefreshToken) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin rotation: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE token = $1;`, oldToken)
	if err != nil {
		return fmt.Errorf("consume refresh token: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("consume refresh token: %w", err)
	}
	if affected == 0 {
		return ErrTokenNotFound
	}

	const insert = `
INSERT INTO refresh_tokens (id, token, user_id, expires_at, created_at)
VALUES ($1, $2, $3, $4, $5);
`
	if _, err := tx.ExecContext(ctx, insert, newToken.ID, newToken.Token, newToken.UserID, newToken.ExpiresAt, newToken.CreatedAt); err != nil {
		return fmt.Errorf("insert rotated refresh token: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit rotation: %w", err)
	}
	return nil
}

// DeleteExpired removes rows whose expiry is before now.
func (s *PostgresStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	const q = `
DELETE FROM refresh_tokens
WHERE expires_at < $1;
`
	res, err := s.db.ExecContext(ctx, q, now)
	if err != nil {
		return 0, fmt.Errorf("delete expired refresh tokens: %w", err)
	}
	dropped, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete expired refresh tokens: %w", err)
	}
	return dropped, nil
}
