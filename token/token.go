package token

import (
	"context"
	"sync"
	"time"
)

// CachedToken is a bearer token shared by all processes together with the time after which it must not be used
type CachedToken struct {
	Value     string    `json:"value"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Store persists the cached token outside of the process
type Store interface {
	// Get returns nil when no token is stored
	Get(ctx context.Context) (*CachedToken, error)
	Set(ctx context.Context, token CachedToken) error
}

type MemoryStore struct {
	mu    sync.Mutex
	token *CachedToken
}

var _ Store = &MemoryStore{}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Get(_ context.Context) (*CachedToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.token == nil {
		return nil, nil
	}
	token := *m.token
	return &token, nil
}

func (m *MemoryStore) Set(_ context.Context, token CachedToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.token = &token
	return nil
}
