package lmsclient

import (
	"context"
	"net/http"
)

// DashboardStats returns the entity counts shown on the console dashboard.
func (c *Client) DashboardStats(ctx context.Context) (*DashboardStats, error) {
	var stats DashboardStats
	if err := c.doJSON(ctx, http.MethodGet, "/dashboard/stats", nil, &stats, http.StatusOK); err != nil {
		return nil, err
	}
	return &stats, nil
}

// GetLiveness checks if the backend is alive. It does not need a session.
func (c *Client) GetLiveness(ctx context.Context) (*HealthResponse, error) {
	resp, err := c.send(ctx, &Request{Method: http.MethodGet, Path: "/livez"}, "")
	if err != nil {
		return nil, err
	}

	var health HealthResponse
	if err := decodeJSON(resp, &health, http.StatusOK); err != nil {
		return nil, err
	}

	return &health, nil
}
