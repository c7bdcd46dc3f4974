package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/lmsconsole/internal/mockapi/domain"
	"github.com/aussiebroadwan/lmsconsole/internal/mockapi/store"
	"github.com/aussiebroadwan/lmsconsole/pkg/cryptox"
	"github.com/aussiebroadwan/lmsconsole/pkg/idx"
	"github.com/aussiebroadwan/lmsconsole/pkg/slogx"
)

// SeedUser is an account created when the mock backend starts. Users
// without a password exist in listings but cannot log in.
type SeedUser struct {
	Email    string
	Name     string
	Role     string
	Password string
}

type SeedService struct {
	Store  store.Store
	Hasher *cryptox.Hasher
}

// Seed creates users and, when sample is set, one course with a group and
// a quiz. Users whose email already exists are skipped.
func (s *SeedService) Seed(ctx context.Context, users []SeedUser, sample bool) error {
	l := slogx.FromContext(ctx)
	now := time.Now().UTC()

	var created []domain.User
	for _, su := range users {
		u := domain.User{
			ID:        idx.NewPrefixed("usr").String(),
			Email:     su.Email,
			Name:      su.Name,
			Role:      su.Role,
			CreatedAt: now,
		}
		if su.Password != "" {
			hash, err := s.Hasher.Hash(su.Password)
			if err != nil {
				return fmt.Errorf("failed to hash password for %s: %w", su.Email, err)
			}
			u.PasswordHash = hash
		}

		if err := s.Store.Users().CreateUser(ctx, u); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				l.Debug("seed user exists, skipping", slog.String("email", su.Email))
				continue
			}
			return fmt.Errorf("failed to create user %s: %w", su.Email, err)
		}
		created = append(created, u)
	}

	if !sample {
		l.Info("seeded users", slog.Int("users", len(created)))
		return nil
	}

	course := domain.Course{
		ID:          idx.NewPrefixed("crs").String(),
		Title:       "Introduction to Networking",
		Description: "Packets, routing and the people who keep them moving.",
		Published:   true,
		CreatedAt:   now,
	}
	if err := s.Store.Courses().CreateCourse(ctx, course); err != nil {
		return fmt.Errorf("failed to create sample course: %w", err)
	}

	var students []string
	for _, u := range created {
		if u.Role == domain.RoleStudent {
			students = append(students, u.ID)
		}
	}
	group := domain.Group{
		ID:        idx.NewPrefixed("grp").String(),
		Name:      "Monday cohort",
		CourseID:  course.ID,
		MemberIDs: students,
	}
	if err := s.Store.Groups().CreateGroup(ctx, group); err != nil {
		return fmt.Errorf("failed to create sample group: %w", err)
	}

	quiz := domain.Quiz{
		ID:       idx.NewPrefixed("qz").String(),
		CourseID: course.ID,
		Title:    "Layers",
		Questions: []domain.Question{
			{Prompt: "Which layer routes packets?", Choices: []string{"Link", "Network", "Transport"}, Correct: 1},
			{Prompt: "Which protocol is connectionless?", Choices: []string{"TCP", "UDP"}, Correct: 1},
		},
	}
	if err := s.Store.Quizzes().CreateQuiz(ctx, quiz); err != nil {
		return fmt.Errorf("failed to create sample quiz: %w", err)
	}

	l.Info("seeded users and sample data", slog.Int("users", len(created)), slog.String("course_id", course.ID))
	return nil
}
