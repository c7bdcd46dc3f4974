package lmsclient

import (
	"context"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"github.com/aussiebroadwan/lmsconsole/pkg/slogx"
)

// DefaultRefreshPath is the backend endpoint that exchanges an expired
// session for a new token.
const DefaultRefreshPath = "/auth/refresh"

// LoginRedirector is told when the session can no longer be recovered and
// the user has to log in again.
type LoginRedirector interface {
	RedirectToLogin(ctx context.Context, cause error)
}

// RedirectFunc adapts a plain function to LoginRedirector.
type RedirectFunc func(ctx context.Context, cause error)

func (f RedirectFunc) RedirectToLogin(ctx context.Context, cause error) { f(ctx, cause) }

// Client talks to the LMS admin backend. It attaches the session token to
// every request and transparently refreshes it when the backend answers 401.
//
// A Client holds the process-wide refresh state, so create one per process
// and share it between goroutines.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	tokens         *TokenStore
	redirector     LoginRedirector
	refreshPath    string
	refreshTimeout time.Duration

	coordinator *refreshCoordinator
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client. The same client is used
// for the refresh call, so a cookie jar on it carries refresh cookies. Its
// Timeout does not apply to the refresh call, which is bounded by the
// refresh timeout instead.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.HTTPClient = hc }
}

// WithStorage persists the session through storage instead of memory.
func WithStorage(storage Storage) Option {
	return func(c *Client) { c.tokens = NewTokenStore(storage) }
}

// WithTokenStore shares an existing TokenStore.
func WithTokenStore(tokens *TokenStore) Option {
	return func(c *Client) { c.tokens = tokens }
}

// WithRedirector sets what happens when the session is torn down.
func WithRedirector(r LoginRedirector) Option {
	return func(c *Client) { c.redirector = r }
}

// WithRefreshPath overrides DefaultRefreshPath.
func WithRefreshPath(path string) Option {
	return func(c *Client) { c.refreshPath = path }
}

// WithRefreshTimeout bounds how long callers wait for a refresh. It may be
// longer than the HTTP client's Timeout.
func WithRefreshTimeout(d time.Duration) Option {
	return func(c *Client) { c.refreshTimeout = d }
}

// NewClient creates a client for the backend at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	jar, _ := cookiejar.New(nil)

	c := &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
			Jar:     jar,
		},
		refreshPath:    DefaultRefreshPath,
		refreshTimeout: DefaultRefreshTimeout,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.tokens == nil {
		c.tokens = NewTokenStore(NewMemoryStorage())
	}
	if c.redirector == nil {
		c.redirector = RedirectFunc(func(ctx context.Context, cause error) {
			slogx.FromContext(ctx).Warn("session expired, login required", "cause", cause)
		})
	}

	c.coordinator = &refreshCoordinator{
		tokens:  c.tokens,
		refresh: c.refreshToken,
		expired: c.redirector.RedirectToLogin,
		timeout: c.refreshTimeout,
	}

	return c
}

// Tokens returns the client's Token Store.
func (c *Client) Tokens() *TokenStore {
	return c.tokens
}

// IsAuthenticated reports whether a session token is stored.
func (c *Client) IsAuthenticated() bool {
	_, ok := c.tokens.Token()
	return ok
}

// Role returns the role of the logged in user.
func (c *Client) Role() string {
	return c.tokens.Role()
}
