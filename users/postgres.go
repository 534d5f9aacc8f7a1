// users/postgres.go
package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// pgUniqueViolation is the Postgres error code for a unique constraint violation.
const pgUniqueViolation = "23505"

// PostgresStore persists users in Postgres via database/sql with the pgx driver.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore returns a user store bound to db.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Create inserts a new user, rejecting duplicate usernames.
func (s *PostgresStore) Create(ctx context.Context, user User) error {
	const q = `
INSERT INTO users (id, username, password_hash, created_at)
VALUES ($1, $2, $3, $4);
`
	if _, err := s.db.ExecContext(ctx, q, user.ID, user.Username, user.PasswordHash, user.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return ErrUsernameTaken
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// FindByUsername returns the user with the given username, or ErrUserNotFound.
func (s *PostgresStore) FindByUsername(ctx context.Context, username string) (User, error) {
	const q = `
SELECT id, username, password_hash, created_at
FROM users
WHERE lower(username) = lower($1);
`
	return s.scanUser(s.db.QueryRowContext(ctx, q, username))
}

// FindByID returns the user with the given ID, or ErrUserNotFound.
func (s *PostgresStore) FindByID(ctx context.Context, id uuid.UUID) (User, error) {
	const q = `
SELECT id, username, password_hash, created_at
FROM users
WHERE id = $1;
`
	return s.scanUser(s.db.QueryRowContext(ctx, q, id))
}

func (s *PostgresStore) scanUser(row *sql.Row) (User, error) {
	var user User
	if err := row.Scan(&user.ID, &user.Username, &user.PasswordHash, &user.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrUserNotFound
		}
		return User{}, fmt.Errorf("scan user: %w", err)
	}
	return user, nil
}
