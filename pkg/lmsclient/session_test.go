package lmsclient

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type failingStorage struct {
	*MemoryStorage
	err error
}

func (f *failingStorage) Set(context.Context, string, string) error { return f.err }

type touchingStorage struct {
	*MemoryStorage
	touched []string
}

func (s *touchingStorage) Touch(_ context.Context, keys ...string) error {
	s.touched = append(s.touched, keys...)
	return nil
}

func TestTokenStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("load restores persisted session", func(t *testing.T) {
		t.Parallel()

		storage := NewMemoryStorage()
		require.NoError(t, storage.Set(ctx, KeyToken, "tok"))
		require.NoError(t, storage.Set(ctx, KeyRole, "teacher"))

		tokens := NewTokenStore(storage)
		_, ok := tokens.Token()
		require.False(t, ok)

		require.NoError(t, tokens.Load(ctx))
		require.Equal(t, Session{Token: "tok", Role: "teacher"}, tokens.Session())
	})

	t.Run("load of empty storage is not an error", func(t *testing.T) {
		t.Parallel()

		tokens := NewTokenStore(nil)
		require.NoError(t, tokens.Load(ctx))
		require.Equal(t, Session{}, tokens.Session())
	})

	t.Run("set session drops empty fields", func(t *testing.T) {
		t.Parallel()

		storage := NewMemoryStorage()
		tokens := NewTokenStore(storage)

		require.NoError(t, tokens.SetSession(ctx, Session{Token: "a", Role: "admin", RefreshToken: "rt"}))
		require.Equal(t, 3, storage.Len())

		require.NoError(t, tokens.SetSession(ctx, Session{Token: "b", Role: "admin"}))
		require.Equal(t, 2, storage.Len())

		_, err := storage.Get(ctx, KeyRefreshToken)
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("rotate keeps role", func(t *testing.T) {
		t.Parallel()

		tokens := NewTokenStore(nil)
		require.NoError(t, tokens.SetSession(ctx, Session{Token: "a", Role: "admin", RefreshToken: "rt"}))
		require.NoError(t, tokens.SetToken(ctx, "b"))

		require.Equal(t, Session{Token: "b", Role: "admin", RefreshToken: "rt"}, tokens.Session())
	})

	t.Run("rotate extends keys it does not rewrite", func(t *testing.T) {
		t.Parallel()

		storage := &touchingStorage{MemoryStorage: NewMemoryStorage()}
		tokens := NewTokenStore(storage)
		require.NoError(t, tokens.SetSession(ctx, Session{Token: "a", Role: "admin", RefreshToken: "rt"}))
		require.Empty(t, storage.touched)

		require.NoError(t, tokens.Rotate(ctx, "b", ""))
		require.ElementsMatch(t, []string{KeyRole, KeyRefreshToken}, storage.touched)

		storage.touched = nil
		require.NoError(t, tokens.Rotate(ctx, "c", "rt2"))
		require.Equal(t, []string{KeyRole}, storage.touched)
	})

	t.Run("clear removes every key", func(t *testing.T) {
		t.Parallel()

		storage := NewMemoryStorage()
		require.NoError(t, storage.Set(ctx, "unrelated", "x"))

		tokens := NewTokenStore(storage)
		require.NoError(t, tokens.SetSession(ctx, Session{Token: "a", Role: "admin", RefreshToken: "rt"}))
		require.NoError(t, tokens.Clear(ctx))

		require.Equal(t, Session{}, tokens.Session())
		require.Equal(t, 1, storage.Len())
	})

	t.Run("storage errors surface but memory is updated", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("disk full")
		tokens := NewTokenStore(&failingStorage{MemoryStorage: NewMemoryStorage(), err: boom})

		err := tokens.SetSession(ctx, Session{Token: "a"})
		require.ErrorIs(t, err, boom)

		token, ok := tokens.Token()
		require.True(t, ok)
		require.Equal(t, "a", token)
	})
}
