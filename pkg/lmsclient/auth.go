package lmsclient

import (
	"context"
	"net/http"

	"github.com/aussiebroadwan/lmsconsole/pkg/slogx"
)

// Login exchanges credentials for a session and stores it.
// A 401 here means bad credentials; it never triggers a refresh.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	req, err := NewJSONRequest(http.MethodPost, "/auth/login", LoginRequest{
		Email:    email,
		Password: password,
	})
	if err != nil {
		return nil, err
	}

	resp, err := c.send(ctx, req, "")
	if err != nil {
		return nil, err
	}

	var loginResp LoginResponse
	if err := decodeJSON(resp, &loginResp, http.StatusOK); err != nil {
		return nil, err
	}
	if loginResp.Token == "" {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: "login response missing token"}
	}

	err = c.tokens.SetSession(ctx, Session{
		Token:        loginResp.Token,
		Role:         loginResp.Role,
		RefreshToken: loginResp.RefreshToken,
	})
	if err != nil {
		return nil, err
	}

	return &loginResp, nil
}

// Logout tells the backend to end the session and clears it locally. The
// local session is cleared even when the backend call fails.
func (c *Client) Logout(ctx context.Context) error {
	token, ok := c.tokens.Token()
	if !ok {
		return c.tokens.Clear(ctx)
	}

	var body any
	if rt := c.tokens.RefreshCredential(); rt != "" {
		body = map[string]string{"refreshToken": rt}
	}
	req, err := NewJSONRequest(http.MethodPost, "/auth/logout", body)
	if err != nil {
		return err
	}

	// Sent directly: an expired token should not be refreshed just to log out.
	resp, err := c.send(ctx, req, token)
	if err != nil {
		slogx.FromContext(ctx).Warn("logout request failed", "err", err)
	} else {
		drain(resp)
	}

	return c.tokens.Clear(ctx)
}

// Me returns the logged in user.
func (c *Client) Me(ctx context.Context) (*User, error) {
	if !c.IsAuthenticated() {
		return nil, ErrNotAuthenticated
	}

	var user User
	if err := c.doJSON(ctx, http.MethodGet, "/auth/me", nil, &user, http.StatusOK); err != nil {
		return nil, err
	}
	return &user, nil
}
