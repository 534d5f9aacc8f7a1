// tokens/memory.go
package tokens

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps refresh tokens in process memory. It is the development
// default; a restart logs every client out.
type MemoryStore struct {
	mu      sync.Mutex
	byToken map[string]RefreshToken
}

// NewMemoryStore returns an empty in-memory refresh token store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byToken: make(map[string]RefreshToken)}
}

// Create inserts a new refresh token row.
func (s *MemoryStore) Create(ctx context.Context, token RefreshToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byToken[token.Token] = token
	return nil
}

// Find returns the row for the given opaque token value, or ErrTokenNotFound.
func (s *MemoryStore) Find(ctx context.Context, token string) (RefreshToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.byToken[token]
	if !ok {
		return RefreshToken{}, ErrTokenNotFound
	}
	return stored, nil
}

// Delete removes the row for the given opaque token value, if present.
func (s *MemoryStore) Delete(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byToken, token)
	return nil
}

// Replace atomically consumes oldToken and inserts newToken under one lock.
func (s *MemoryStore) Replace(ctx context.Context, oldToken string, newToken RefreshToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byToken[oldToken]; !ok {
		return ErrTokenNotFound
	}
	delete(s.byToken, oldToken)
	s.byToken[newToken.Token] = newToken
	return nil
}

// DeleteExpired removes rows whose expiry is before now.
func (s *MemoryStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var dropped int64
	for value, stored := range s.byToken {
		if now.After(stored.ExpiresAt) {
			delete(s.byToken, value)
			dropped++
		}
	}
	return dropped, nil
}

// Len reports how many refresh tokens are currently stored.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byToken)
}
