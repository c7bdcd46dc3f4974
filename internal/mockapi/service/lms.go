package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aussiebroadwan/lmsconsole/internal/mockapi/domain"
	"github.com/aussiebroadwan/lmsconsole/internal/mockapi/store"
	"github.com/aussiebroadwan/lmsconsole/pkg/idx"
)

// ValidationError is returned when a request body is well-formed JSON but
// does not describe a valid resource.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a *ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// Stats counts every resource kind for the dashboard.
type Stats struct {
	Courses int
	Groups  int
	Users   int
	Quizzes int
}

// CoursePatch carries the fields of a partial course update. Nil fields are
// left unchanged.
type CoursePatch struct {
	Title       *string
	Description *string
	Published   *bool
}

type LMSService struct {
	Store store.Store
}

func (s *LMSService) CreateCourse(ctx context.Context, title, description string, published bool) (domain.Course, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return domain.Course{}, invalid("course title is required")
	}

	course := domain.Course{
		ID:          idx.NewPrefixed("crs").String(),
		Title:       title,
		Description: description,
		Published:   published,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.Store.Courses().CreateCourse(ctx, course); err != nil {
		return domain.Course{}, err
	}
	return course, nil
}

func (s *LMSService) UpdateCourse(ctx context.Context, id string, patch CoursePatch) (domain.Course, error) {
	course, err := s.Store.Courses().GetCourse(ctx, id)
	if err != nil {
		return domain.Course{}, err
	}

	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return domain.Course{}, invalid("course title cannot be empty")
		}
		course.Title = title
	}
	if patch.Description != nil {
		course.Description = *patch.Description
	}
	if patch.Published != nil {
		course.Published = *patch.Published
	}

	if err := s.Store.Courses().UpdateCourse(ctx, course); err != nil {
		return domain.Course{}, err
	}
	return course, nil
}

func (s *LMSService) CreateGroup(ctx context.Context, name, courseID string) (domain.Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Group{}, invalid("group name is required")
	}
	if courseID == "" {
		return domain.Group{}, invalid("courseId is required")
	}

	group := domain.Group{
		ID:        idx.NewPrefixed("grp").String(),
		Name:      name,
		CourseID:  courseID,
		MemberIDs: []string{},
	}
	if err := s.Store.Groups().CreateGroup(ctx, group); err != nil {
		return domain.Group{}, err
	}
	return group, nil
}

func (s *LMSService) AddMembers(ctx context.Context, groupID string, userIDs []string) (domain.Group, error) {
	if len(userIDs) == 0 {
		return domain.Group{}, invalid("userIds must not be empty")
	}
	return s.Store.Groups().AddMembers(ctx, groupID, userIDs)
}

func (s *LMSService) CreateQuiz(ctx context.Context, courseID, title string, questions []domain.Question) (domain.Quiz, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return domain.Quiz{}, invalid("quiz title is required")
	}
	if len(questions) == 0 {
		return domain.Quiz{}, invalid("a quiz needs at least one question")
	}
	for i, q := range questions {
		switch {
		case strings.TrimSpace(q.Prompt) == "":
			return domain.Quiz{}, invalid("question %d: prompt is required", i+1)
		case len(q.Choices) < 2:
			return domain.Quiz{}, invalid("question %d: at least two choices are required", i+1)
		case q.Correct < 0 || q.Correct >= len(q.Choices):
			return domain.Quiz{}, invalid("question %d: correct answer %d out of range", i+1, q.Correct)
		}
	}

	quiz := domain.Quiz{
		ID:        idx.NewPrefixed("qz").String(),
		CourseID:  courseID,
		Title:     title,
		Questions: questions,
	}
	if err := s.Store.Quizzes().CreateQuiz(ctx, quiz); err != nil {
		return domain.Quiz{}, err
	}
	return quiz, nil
}

func (s *LMSService) Stats(ctx context.Context) (Stats, error) {
	courses, err := s.Store.Courses().ListCourses(ctx)
	if err != nil {
		return Stats{}, err
	}
	groups, err := s.Store.Groups().ListGroups(ctx)
	if err != nil {
		return Stats{}, err
	}
	users, err := s.Store.Users().ListUsers(ctx)
	if err != nil {
		return Stats{}, err
	}
	quizzes, err := s.Store.Quizzes().CountQuizzes(ctx)
	if err != nil {
		return Stats{}, err
	}

	return Stats{
		Courses: len(courses),
		Groups:  len(groups),
		Users:   len(users),
		Quizzes: quizzes,
	}, nil
}
