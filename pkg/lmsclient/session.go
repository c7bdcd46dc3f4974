package lmsclient

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Session is the authenticated state of a console user.
type Session struct {
	Token        string
	Role         string
	RefreshToken string
}

// TokenStore is the single source of truth for the current session token.
// Reads are served from memory and never block on I/O; writes go through to
// the backing Storage so the session survives restarts.
type TokenStore struct {
	storage Storage

	mu      sync.RWMutex
	current Session
}

// NewTokenStore creates a TokenStore over storage. Call Load to pick up a
// session persisted by a previous process.
func NewTokenStore(storage Storage) *TokenStore {
	if storage == nil {
		storage = NewMemoryStorage()
	}
	return &TokenStore{storage: storage}
}

// Load reads the persisted session into memory.
func (s *TokenStore) Load(ctx context.Context) error {
	var loaded Session
	fields := []struct {
		key string
		dst *string
	}{
		{KeyToken, &loaded.Token},
		{KeyRole, &loaded.Role},
		{KeyRefreshToken, &loaded.RefreshToken},
	}

	for _, f := range fields {
		v, err := s.storage.Get(ctx, f.key)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", f.key, err)
		}
		*f.dst = v
	}

	s.mu.Lock()
	s.current = loaded
	s.mu.Unlock()
	return nil
}

// Token returns the current session token and whether one is present.
func (s *TokenStore) Token() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Token, s.current.Token != ""
}

// Role returns the role of the logged in user, or "" when logged out.
func (s *TokenStore) Role() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Role
}

// RefreshCredential returns the stored refresh token, if the backend issued one.
func (s *TokenStore) RefreshCredential() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.RefreshToken
}

// Session returns a copy of the current session.
func (s *TokenStore) Session() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// SetSession replaces the whole session, as after a login.
func (s *TokenStore) SetSession(ctx context.Context, sess Session) error {
	s.mu.Lock()
	s.current = sess
	s.mu.Unlock()

	return s.persist(ctx, map[string]string{
		KeyToken:        sess.Token,
		KeyRole:         sess.Role,
		KeyRefreshToken: sess.RefreshToken,
	})
}

// SetToken replaces the session token and keeps role and refresh credential.
func (s *TokenStore) SetToken(ctx context.Context, token string) error {
	return s.Rotate(ctx, token, "")
}

// Rotate stores a refreshed token. An empty refreshToken keeps the current
// refresh credential.
func (s *TokenStore) Rotate(ctx context.Context, token, refreshToken string) error {
	values := map[string]string{KeyToken: token}

	s.mu.Lock()
	s.current.Token = token
	if refreshToken != "" {
		s.current.RefreshToken = refreshToken
		values[KeyRefreshToken] = refreshToken
	}
	s.mu.Unlock()

	return s.persist(ctx, values)
}

// Clear removes the token together with the role and refresh credential.
func (s *TokenStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.current = Session{}
	s.mu.Unlock()

	if err := s.storage.Delete(ctx, KeyToken, KeyRole, KeyRefreshToken); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// persist writes non-empty values and deletes keys whose value is empty.
func (s *TokenStore) persist(ctx context.Context, values map[string]string) error {
	var empty []string
	for key, v := range values {
		if v == "" {
			empty = append(empty, key)
			continue
		}
		if err := s.storage.Set(ctx, key, v); err != nil {
			return fmt.Errorf("failed to persist %s: %w", key, err)
		}
	}

	if len(empty) > 0 {
		if err := s.storage.Delete(ctx, empty...); err != nil {
			return fmt.Errorf("failed to persist session: %w", err)
		}
	}

	toucher, ok := s.storage.(Toucher)
	if !ok {
		return nil
	}
	var untouched []string
	for _, key := range []string{KeyToken, KeyRole, KeyRefreshToken} {
		if _, written := values[key]; !written {
			untouched = append(untouched, key)
		}
	}
	if len(untouched) > 0 {
		if err := toucher.Touch(ctx, untouched...); err != nil {
			return fmt.Errorf("failed to extend session: %w", err)
		}
	}
	return nil
}
