package lmsclient

import (
	"context"
	"sync"
	"time"

	"github.com/aussiebroadwan/lmsconsole/pkg/slogx"
)

// DefaultRefreshTimeout bounds a single call to the refresh endpoint.
const DefaultRefreshTimeout = 15 * time.Second

// RefreshResponse is the body returned by POST /auth/refresh.
type RefreshResponse struct {
	Token string `json:"token"`

	// AccessToken is accepted as an alias of Token
	AccessToken string `json:"accessToken,omitempty"`

	// RefreshToken is set when the backend rotates the refresh credential
	RefreshToken string `json:"refreshToken,omitempty"`
}

// SessionToken returns whichever token field the backend filled in.
func (r *RefreshResponse) SessionToken() string {
	if r.Token != "" {
		return r.Token
	}
	return r.AccessToken
}

type refreshResult struct {
	token string
	err   error
}

// refreshCoordinator makes sure that requests rejected with 401 share one
// refresh call. The first caller to observe a 401 runs the refresh; callers
// that arrive while it is in flight are queued and released in FIFO order
// with its outcome.
type refreshCoordinator struct {
	tokens  *TokenStore
	refresh func(ctx context.Context) (*RefreshResponse, error)
	expired func(ctx context.Context, cause error)
	timeout time.Duration

	mu         sync.Mutex
	refreshing bool
	pending    []chan refreshResult
}

// awaitToken returns the token to retry a request with after it was rejected
// with 401 while carrying staleToken.
//
// A queued caller that gives up through ctx stays queued; its channel is
// buffered so the release never blocks.
func (c *refreshCoordinator) awaitToken(ctx context.Context, staleToken string) (string, error) {
	log := slogx.FromContext(ctx)

	c.mu.Lock()
	if c.refreshing {
		ch := make(chan refreshResult, 1)
		c.pending = append(c.pending, ch)
		queued := len(c.pending)
		c.mu.Unlock()

		log.Debug("request queued behind token refresh", "queued", queued)

		select {
		case res := <-ch:
			return res.token, res.err
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	// The request raced a refresh that has already finished: retry with its
	// token, or fail if that refresh tore the session down.
	if current, ok := c.tokens.Token(); current != staleToken {
		c.mu.Unlock()
		if !ok {
			return "", &RefreshError{Err: errSessionCleared}
		}
		return current, nil
	}

	// Set the flag before any I/O so concurrent 401s queue up behind us.
	c.refreshing = true
	c.mu.Unlock()

	log.Info("session token rejected, refreshing")
	token, err := c.runRefresh(ctx)

	c.mu.Lock()
	waiters := c.pending
	c.pending = nil
	c.refreshing = false
	c.mu.Unlock()

	if err != nil {
		log.Warn("token refresh failed, session cleared", "err", err, "waiters", len(waiters))
	} else {
		log.Info("token refreshed", "waiters", len(waiters))
	}

	for _, ch := range waiters {
		ch <- refreshResult{token: token, err: err}
	}

	return token, err
}

// runRefresh calls the refresh endpoint and applies the outcome to the
// Token Store. On failure the session is cleared and the login redirect
// fires exactly once.
func (c *refreshCoordinator) runRefresh(ctx context.Context) (string, error) {
	log := slogx.FromContext(ctx)

	timeout := c.timeout
	if timeout <= 0 {
		timeout = DefaultRefreshTimeout
	}

	// The refresh serves every queued caller, so it must not die with the
	// caller that happened to trigger it.
	refreshCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	resp, err := c.refresh(refreshCtx)
	if err == nil && resp.SessionToken() == "" {
		err = errMissingToken
	}

	if err != nil {
		refreshErr := &RefreshError{Err: err}
		if clearErr := c.tokens.Clear(refreshCtx); clearErr != nil {
			log.Error("failed to clear session after refresh failure", "err", clearErr)
		}
		if c.expired != nil {
			c.expired(ctx, refreshErr)
		}
		return "", refreshErr
	}

	token := resp.SessionToken()
	if err := c.tokens.Rotate(refreshCtx, token, resp.RefreshToken); err != nil {
		// The new token is live in memory; only persistence failed.
		log.Error("failed to persist refreshed token", "err", err)
	}

	return token, nil
}
