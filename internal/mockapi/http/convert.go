package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/lmsconsole/internal/mockapi/domain"
	"github.com/aussiebroadwan/lmsconsole/internal/mockapi/service"
	"github.com/aussiebroadwan/lmsconsole/internal/mockapi/store"
	"github.com/aussiebroadwan/lmsconsole/pkg/httpx"
	"github.com/aussiebroadwan/lmsconsole/pkg/lmsclient"
	"github.com/aussiebroadwan/lmsconsole/pkg/slogx"
)

// writeServiceError maps service and store errors onto API errors.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", verr.Message)
	case errors.Is(err, store.ErrNotFound):
		httpx.WriteError(w, http.StatusNotFound, "not_found", "resource not found")
	case errors.Is(err, store.ErrAlreadyExists):
		httpx.WriteError(w, http.StatusConflict, "conflict", "resource already exists")
	default:
		slogx.FromContext(r.Context()).Error("request failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "internal server error")
	}
}

func toUser(u domain.User) lmsclient.User {
	return lmsclient.User{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role}
}

func toCourse(c domain.Course) lmsclient.Course {
	return lmsclient.Course{
		ID:          c.ID,
		Title:       c.Title,
		Description: c.Description,
		Published:   c.Published,
		CreatedAt:   c.CreatedAt,
	}
}

func toGroup(g domain.Group) lmsclient.Group {
	members := g.MemberIDs
	if members == nil {
		members = []string{}
	}
	return lmsclient.Group{ID: g.ID, Name: g.Name, CourseID: g.CourseID, MemberIDs: members}
}

func toQuiz(q domain.Quiz) lmsclient.Quiz {
	questions := make([]lmsclient.Question, len(q.Questions))
	for i, qq := range q.Questions {
		questions[i] = lmsclient.Question{Prompt: qq.Prompt, Choices: qq.Choices, Correct: qq.Correct}
	}
	return lmsclient.Quiz{ID: q.ID, CourseID: q.CourseID, Title: q.Title, Questions: questions}
}

func fromQuestions(in []lmsclient.Question) []domain.Question {
	out := make([]domain.Question, len(in))
	for i, q := range in {
		out[i] = domain.Question{Prompt: q.Prompt, Choices: q.Choices, Correct: q.Correct}
	}
	return out
}

// mapSlice converts every element and never returns nil, so empty lists
// encode as [] instead of null.
func mapSlice[T, U any](in []T, f func(T) U) []U {
	out := make([]U, len(in))
	for i, v := range in {
		out[i] = f(v)
	}
	return out
}
