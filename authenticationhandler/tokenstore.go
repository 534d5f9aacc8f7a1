// authenticationhandler/tokenstore.go

package authenticationhandler

import "sync"

// TokenStore is the credential store backing the client: one access token slot
// and one refresh token slot, always read and written together. Implementations
// must be safe for concurrent use.
type TokenStore interface {
	// Tokens returns the current access and refresh tokens. Empty strings mean
	// no credential is held in that slot.
	Tokens() (access string, refresh string)
	// SetTokens replaces both slots in one step.
	SetTokens(access string, refresh string)
	// SetAccessToken replaces only the access slot, keeping the refresh token.
	SetAccessToken(access string)
	// Clear empties both slots.
	Clear()
}

// MemoryTokenStore is the in-memory TokenStore used by default. Processes that
// must survive restarts authenticated can supply their own implementation.
type MemoryTokenStore struct {
	mu      sync.RWMutex
	access  string
	refresh string
}

// NewMemoryTokenStore returns an empty in-memory token store.
func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{}
}

func (s *MemoryTokenStore) Tokens() (string, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.access, s.refresh
}

func (s *MemoryTokenStore) SetTokens(access, refresh string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = access
	s.refresh = refresh
}

func (s *MemoryTokenStore) SetAccessToken(access string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = access
}

func (s *MemoryTokenStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = ""
	s.refresh = ""
}
