// users/memory.go
package users

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore keeps users in process memory. It is the development default and
// the fixture store in tests; everything is lost on restart.
type MemoryStore struct {
	mu         sync.RWMutex
	byID       map[uuid.UUID]User
	byUsername map[string]uuid.UUID
}

// NewMemoryStore returns an empty in-memory user store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:       make(map[uuid.UUID]User),
		byUsername: make(map[string]uuid.UUID),
	}
}

// Create inserts a new user, rejecting duplicate usernames.
func (s *MemoryStore) Create(ctx context.Context, user User) error {
	key := usernameKey(user.Username)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byUsername[key]; exists {
		return ErrUsernameTaken
	}
	s.byID[user.ID] = user
	s.byUsername[key] = user.ID
	return nil
}

// FindByUsername returns the user with the given username, or ErrUserNotFound.
func (s *MemoryStore) FindByUsername(ctx context.Context, username string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byUsername[usernameKey(username)]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return s.byID[id], nil
}

// FindByID returns the user with the given ID, or ErrUserNotFound.
func (s *MemoryStore) FindByID(ctx context.Context, id uuid.UUID) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.byID[id]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return user, nil
}

// usernameKey normalizes usernames for lookup. Postgres enforces the same
// case-insensitive uniqueness through a lower(username) index.
func usernameKey(username string) string {
	return strings.ToLower(username)
}
