// users/users.go

/* The users package holds the server's user accounts: the model, password
hashing, and the storage contract with in-memory and Postgres implementations.
The starter keeps accounts deliberately small (username + bcrypt hash); product
fields belong in the application that grows out of it. */

package users

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// User is one account able to obtain tokens.
type User struct {
	ID           uuid.UUID
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

var (
	// ErrUserNotFound is returned by lookups for usernames or IDs that have no account.
	ErrUserNotFound = errors.New("user not found")

	// ErrUsernameTaken is returned by Create when the username is already in use.
	ErrUsernameTaken = errors.New("username already taken")
)

// Store is the storage contract for user accounts.
type Store interface {
	// Create inserts a new user. The caller provides the ID and password hash.
	Create(ctx context.Context, user User) error

	// FindByUsername returns the user with the given username, or ErrUserNotFound.
	FindByUsername(ctx context.Context, username string) (User, error)

	// FindByID returns the user with the given ID, or ErrUserNotFound.
	FindByID(ctx context.Context, id uuid.UUID) (User, error)
}

// EnsureUser creates username with the given password unless the account
// already exists. It is used to seed the demo account in development setups;
// the existing account is returned untouched so repeated startups are stable.
func EnsureUser(ctx context.Context, store Store, username, password string) (User, error) {
	if existing, err := store.FindByUsername(ctx, username); err == nil {
		return existing, nil
	} else if !errors.Is(err, ErrUserNotFound) {
		return User{}, err
	}

	hash, err := HashPassword(password)
	if err != nil {
		return User{}, err
	}
	user := User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := store.Create(ctx, user); err != nil {
		if errors.Is(err, ErrUsernameTaken) {
			// Lost a race against a concurrent seed; the account exists now.
			return store.FindByUsername(ctx, username)
		}
		return User{}, err
	}
	return user, nil
}
