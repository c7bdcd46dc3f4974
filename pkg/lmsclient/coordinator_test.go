package lmsclient

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeRefresher blocks every refresh until release is closed.
type fakeRefresher struct {
	calls   atomic.Int32
	release chan struct{}
	resp    *RefreshResponse
	err     error
}

func (f *fakeRefresher) refresh(ctx context.Context) (*RefreshResponse, error) {
	f.calls.Add(1)
	select {
	case <-f.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return f.resp, f.err
}

func newTestCoordinator(t *testing.T, f *fakeRefresher) (*refreshCoordinator, *TokenStore, *atomic.Int32) {
	t.Helper()

	tokens := NewTokenStore(NewMemoryStorage())
	require.NoError(t, tokens.SetSession(context.Background(), Session{Token: "old", Role: "admin"}))

	var redirects atomic.Int32
	c := &refreshCoordinator{
		tokens:  tokens,
		refresh: f.refresh,
		expired: func(context.Context, error) { redirects.Add(1) },
		timeout: time.Second,
	}
	return c, tokens, &redirects
}

func (c *refreshCoordinator) queued() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

func TestCoordinatorSharesOneRefresh(t *testing.T) {
	t.Parallel()

	f := &fakeRefresher{release: make(chan struct{}), resp: &RefreshResponse{Token: "new"}}
	c, tokens, redirects := newTestCoordinator(t, f)

	const n = 10
	var wg sync.WaitGroup
	wg.Add(n)

	type result struct {
		token string
		err   error
	}
	results := make(chan result, n)
	for range n {
		go func() {
			defer wg.Done()
			token, err := c.awaitToken(context.Background(), "old")
			results <- result{token, err}
		}()
	}

	// One caller runs the refresh, everybody else queues behind it.
	require.Eventually(t, func() bool { return c.queued() == n-1 }, time.Second, time.Millisecond)
	close(f.release)

	wg.Wait()
	close(results)

	for r := range results {
		require.NoError(t, r.err)
		require.Equal(t, "new", r.token)
	}

	require.EqualValues(t, 1, f.calls.Load())
	require.EqualValues(t, 0, redirects.Load())
	require.Equal(t, 0, c.queued())
	require.False(t, c.refreshing)

	token, ok := tokens.Token()
	require.True(t, ok)
	require.Equal(t, "new", token)
	require.Equal(t, "admin", tokens.Role())
}

func TestCoordinatorReleasesEveryQueuedCaller(t *testing.T) {
	t.Parallel()

	f := &fakeRefresher{release: make(chan struct{}), resp: &RefreshResponse{Token: "new"}}
	c, _, _ := newTestCoordinator(t, f)

	go func() { _, _ = c.awaitToken(context.Background(), "old") }()
	require.Eventually(t, func() bool { return f.calls.Load() == 1 }, time.Second, time.Millisecond)

	// Enqueue waiters one at a time so their queue position is known.
	const n = 5
	done := make(chan error, n)
	for i := range n {
		go func() {
			_, err := c.awaitToken(context.Background(), "old")
			done <- err
		}()
		require.Eventually(t, func() bool { return c.queued() == i+1 }, time.Second, time.Millisecond)
	}

	c.mu.Lock()
	queue := append([]chan refreshResult(nil), c.pending...)
	c.mu.Unlock()

	close(f.release)
	for range n {
		require.NoError(t, <-done)
	}

	// Each queued channel was sent to exactly once and drained by its owner.
	for i, ch := range queue {
		require.Empty(t, ch, "waiter %d", i)
	}
	require.Equal(t, 0, c.queued())
}

func TestCoordinatorRefreshFailureTearsDownSession(t *testing.T) {
	t.Parallel()

	cause := &APIError{StatusCode: 401, Code: "invalid_refresh_token"}
	f := &fakeRefresher{release: make(chan struct{}), err: cause}
	c, tokens, redirects := newTestCoordinator(t, f)

	const n = 4
	var wg sync.WaitGroup
	wg.Add(n)
	errs := make(chan error, n)
	for range n {
		go func() {
			defer wg.Done()
			_, err := c.awaitToken(context.Background(), "old")
			errs <- err
		}()
	}

	require.Eventually(t, func() bool { return c.queued() == n-1 }, time.Second, time.Millisecond)
	close(f.release)
	wg.Wait()
	close(errs)

	for err := range errs {
		require.ErrorIs(t, err, ErrSessionExpired)

		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, 401, apiErr.StatusCode)
	}

	require.EqualValues(t, 1, f.calls.Load())
	require.EqualValues(t, 1, redirects.Load())

	_, ok := tokens.Token()
	require.False(t, ok)
	require.Empty(t, tokens.Role())
}

func TestCoordinatorLateRequestAfterSuccess(t *testing.T) {
	t.Parallel()

	f := &fakeRefresher{release: make(chan struct{})}
	c, tokens, _ := newTestCoordinator(t, f)
	require.NoError(t, tokens.SetToken(context.Background(), "already-refreshed"))

	token, err := c.awaitToken(context.Background(), "old")
	require.NoError(t, err)
	require.Equal(t, "already-refreshed", token)
	require.EqualValues(t, 0, f.calls.Load())
}

func TestCoordinatorLateRequestAfterFailure(t *testing.T) {
	t.Parallel()

	f := &fakeRefresher{release: make(chan struct{})}
	c, tokens, redirects := newTestCoordinator(t, f)
	require.NoError(t, tokens.Clear(context.Background()))

	_, err := c.awaitToken(context.Background(), "old")
	require.ErrorIs(t, err, ErrSessionExpired)
	require.EqualValues(t, 0, f.calls.Load())
	require.EqualValues(t, 0, redirects.Load())
}

func TestCoordinatorQueuedCallerCanGiveUp(t *testing.T) {
	t.Parallel()

	f := &fakeRefresher{release: make(chan struct{}), resp: &RefreshResponse{Token: "new"}}
	c, _, _ := newTestCoordinator(t, f)

	refreshed := make(chan error, 1)
	go func() {
		_, err := c.awaitToken(context.Background(), "old")
		refreshed <- err
	}()
	require.Eventually(t, func() bool { return f.calls.Load() == 1 }, time.Second, time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	gaveUp := make(chan error, 1)
	go func() {
		_, err := c.awaitToken(ctx, "old")
		gaveUp <- err
	}()
	require.Eventually(t, func() bool { return c.queued() == 1 }, time.Second, time.Millisecond)

	cancel()
	require.ErrorIs(t, <-gaveUp, context.Canceled)

	// The abandoned entry does not block the release.
	close(f.release)
	require.NoError(t, <-refreshed)
}

func TestCoordinatorRefreshIgnoresTriggerCancellation(t *testing.T) {
	t.Parallel()

	f := &fakeRefresher{release: make(chan struct{}), resp: &RefreshResponse{Token: "new"}}
	c, tokens, _ := newTestCoordinator(t, f)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := c.awaitToken(ctx, "old")
		done <- err
	}()
	require.Eventually(t, func() bool { return f.calls.Load() == 1 }, time.Second, time.Millisecond)

	cancel()
	close(f.release)
	require.NoError(t, <-done)

	token, _ := tokens.Token()
	require.Equal(t, "new", token)
}

func TestCoordinatorRefreshTimeout(t *testing.T) {
	t.Parallel()

	f := &fakeRefresher{release: make(chan struct{})} // never released
	c, tokens, redirects := newTestCoordinator(t, f)
	c.timeout = 20 * time.Millisecond

	_, err := c.awaitToken(context.Background(), "old")
	require.ErrorIs(t, err, ErrSessionExpired)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.EqualValues(t, 1, redirects.Load())

	_, ok := tokens.Token()
	require.False(t, ok)
}

func TestCoordinatorEmptyTokenIsFailure(t *testing.T) {
	t.Parallel()

	f := &fakeRefresher{release: make(chan struct{}), resp: &RefreshResponse{}}
	close(f.release)
	c, _, redirects := newTestCoordinator(t, f)

	_, err := c.awaitToken(context.Background(), "old")
	require.ErrorIs(t, err, ErrSessionExpired)
	require.True(t, errors.Is(err, errMissingToken))
	require.EqualValues(t, 1, redirects.Load())
}

func TestCoordinatorKeepsRefreshCredentialUnlessRotated(t *testing.T) {
	t.Parallel()

	f := &fakeRefresher{release: make(chan struct{}), resp: &RefreshResponse{AccessToken: "new"}}
	close(f.release)
	c, tokens, _ := newTestCoordinator(t, f)
	require.NoError(t, tokens.SetSession(context.Background(), Session{Token: "old", RefreshToken: "rt-1"}))

	token, err := c.awaitToken(context.Background(), "old")
	require.NoError(t, err)
	require.Equal(t, "new", token)
	require.Equal(t, "rt-1", tokens.RefreshCredential())

	f.resp = &RefreshResponse{Token: "newer", RefreshToken: "rt-2"}
	token, err = c.awaitToken(context.Background(), "new")
	require.NoError(t, err)
	require.Equal(t, "newer", token)
	require.Equal(t, "rt-2", tokens.RefreshCredential())
}
