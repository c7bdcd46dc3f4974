package lmsclient

import (
	"context"
	"net/http"
	"net/url"
)

// ListCourses returns all courses visible to the logged in user.
func (c *Client) ListCourses(ctx context.Context) ([]Course, error) {
	var courses []Course
	if err := c.doJSON(ctx, http.MethodGet, "/courses", nil, &courses, http.StatusOK); err != nil {
		return nil, err
	}
	return courses, nil
}

// GetCourse returns a course by ID.
func (c *Client) GetCourse(ctx context.Context, id string) (*Course, error) {
	var course Course
	if err := c.doJSON(ctx, http.MethodGet, "/courses/"+url.PathEscape(id), nil, &course, http.StatusOK); err != nil {
		return nil, err
	}
	return &course, nil
}

// CreateCourse creates a course and returns it with its assigned ID.
func (c *Client) CreateCourse(ctx context.Context, req CreateCourseRequest) (*Course, error) {
	var course Course
	if err := c.doJSON(ctx, http.MethodPost, "/courses", req, &course, http.StatusCreated); err != nil {
		return nil, err
	}
	return &course, nil
}

// UpdateCourse applies the non-nil fields of req to a course.
func (c *Client) UpdateCourse(ctx context.Context, id string, req UpdateCourseRequest) (*Course, error) {
	var course Course
	if err := c.doJSON(ctx, http.MethodPut, "/courses/"+url.PathEscape(id), req, &course, http.StatusOK); err != nil {
		return nil, err
	}
	return &course, nil
}

// DeleteCourse deletes a course by ID.
func (c *Client) DeleteCourse(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/courses/"+url.PathEscape(id), nil, nil, http.StatusNoContent)
}
