package lmsclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
)

// ListQuizzes returns the quizzes of a course.
func (c *Client) ListQuizzes(ctx context.Context, courseID string) ([]Quiz, error) {
	var quizzes []Quiz
	path := "/courses/" + url.PathEscape(courseID) + "/quizzes"
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &quizzes, http.StatusOK); err != nil {
		return nil, err
	}
	return quizzes, nil
}

// CreateQuiz adds a quiz to a course. Questions are checked locally first
// so an obviously broken quiz never reaches the backend.
func (c *Client) CreateQuiz(ctx context.Context, courseID string, req CreateQuizRequest) (*Quiz, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var quiz Quiz
	path := "/courses/" + url.PathEscape(courseID) + "/quizzes"
	if err := c.doJSON(ctx, http.MethodPost, path, req, &quiz, http.StatusCreated); err != nil {
		return nil, err
	}
	return &quiz, nil
}

// Validate checks that the quiz has a title and that every question has at
// least two choices and a correct answer among them.
func (r CreateQuizRequest) Validate() error {
	if r.Title == "" {
		return errors.New("quiz title is required")
	}
	if len(r.Questions) == 0 {
		return errors.New("quiz needs at least one question")
	}
	for i, q := range r.Questions {
		if q.Prompt == "" {
			return fmt.Errorf("question %d: prompt is required", i+1)
		}
		if len(q.Choices) < 2 {
			return fmt.Errorf("question %d: at least two choices are required", i+1)
		}
		if q.Correct < 0 || q.Correct >= len(q.Choices) {
			return fmt.Errorf("question %d: correct answer %d out of range", i+1, q.Correct)
		}
	}
	return nil
}
