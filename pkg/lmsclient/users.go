package lmsclient

import (
	"context"
	"net/http"
	"net/url"
)

// ListUsers returns all users. Requires the admin role on the backend.
func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	var users []User
	if err := c.doJSON(ctx, http.MethodGet, "/users", nil, &users, http.StatusOK); err != nil {
		return nil, err
	}
	return users, nil
}

// GetUser returns a user by ID.
func (c *Client) GetUser(ctx context.Context, id string) (*User, error) {
	var user User
	if err := c.doJSON(ctx, http.MethodGet, "/users/"+url.PathEscape(id), nil, &user, http.StatusOK); err != nil {
		return nil, err
	}
	return &user, nil
}
