package lmsclient

import (
	"context"
	"net/http"
	"net/url"
)

// ListGroups returns all groups.
func (c *Client) ListGroups(ctx context.Context) ([]Group, error) {
	var groups []Group
	if err := c.doJSON(ctx, http.MethodGet, "/groups", nil, &groups, http.StatusOK); err != nil {
		return nil, err
	}
	return groups, nil
}

// CreateGroup creates a group attached to a course.
func (c *Client) CreateGroup(ctx context.Context, req CreateGroupRequest) (*Group, error) {
	var group Group
	if err := c.doJSON(ctx, http.MethodPost, "/groups", req, &group, http.StatusCreated); err != nil {
		return nil, err
	}
	return &group, nil
}

// AddGroupMembers enrolls users in a group and returns the updated group.
func (c *Client) AddGroupMembers(ctx context.Context, groupID string, userIDs ...string) (*Group, error) {
	var group Group
	path := "/groups/" + url.PathEscape(groupID) + "/members"
	if err := c.doJSON(ctx, http.MethodPost, path, AddMembersRequest{UserIDs: userIDs}, &group, http.StatusOK); err != nil {
		return nil, err
	}
	return &group, nil
}
