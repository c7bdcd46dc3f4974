package lmsclient

import (
	"context"
	"errors"
	"sync"
)

// Well-known keys the client persists its session under.
const (
	KeyToken        = "token"
	KeyRole         = "role"
	KeyRefreshToken = "refresh_token"
)

// ErrNotFound is returned by Storage.Get for a missing key.
var ErrNotFound = errors.New("lmsclient: key not found")

// Storage is the persistent key/value store that keeps the session across
// process restarts. Implementations must be safe for concurrent use.
type Storage interface {
	// Get returns the value for key or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Delete removes the given keys. Missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error
}

// Toucher is implemented by storages whose keys expire. Touch restarts the
// expiry of the given keys without rewriting them so a session that is only
// partly rewritten, as on a token rotation, expires as a whole.
type Toucher interface {
	Touch(ctx context.Context, keys ...string) error
}

// MemoryStorage is a Storage that lives only as long as the process.
type MemoryStorage struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemoryStorage returns an empty MemoryStorage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{data: make(map[string]string)}
}

func (m *MemoryStorage) Get(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.data[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (m *MemoryStorage) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *MemoryStorage) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

// Len reports how many keys are stored.
func (m *MemoryStorage) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}
