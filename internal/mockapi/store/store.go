package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/lmsconsole/internal/mockapi/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface of the mock backend. It exposes
// sub-repositories so handlers and services only see the slice they need.
type Store interface {
	Users() Users
	Courses() Courses
	Groups() Groups
	Quizzes() Quizzes
	RefreshTokens() RefreshTokens

	Close() error
	Ping(ctx context.Context) error
}

type Users interface {
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail is used during login. Emails compare case-insensitively.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	ListUsers(ctx context.Context) ([]domain.User, error)

	// CreateUser fails with ErrAlreadyExists when the email is taken.
	CreateUser(ctx context.Context, u domain.User) error
}

type Courses interface {
	GetCourse(ctx context.Context, id string) (domain.Course, error)
	ListCourses(ctx context.Context) ([]domain.Course, error)
	CreateCourse(ctx context.Context, c domain.Course) error
	UpdateCourse(ctx context.Context, c domain.Course) error

	// DeleteCourse cascades to the course's groups and quizzes.
	DeleteCourse(ctx context.Context, id string) error
}

type Groups interface {
	GetGroup(ctx context.Context, id string) (domain.Group, error)
	ListGroups(ctx context.Context) ([]domain.Group, error)
	CreateGroup(ctx context.Context, g domain.Group) error

	// AddMembers appends user ids that are not members yet and returns the
	// updated group.
	AddMembers(ctx context.Context, groupID string, userIDs []string) (domain.Group, error)
}

type Quizzes interface {
	ListQuizzesByCourse(ctx context.Context, courseID string) ([]domain.Quiz, error)
	CountQuizzes(ctx context.Context) (int, error)
	CreateQuiz(ctx context.Context, q domain.Quiz) error
}

type RefreshTokens interface {
	CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error
	GetRefreshTokenByHash(ctx context.Context, hash string) (domain.RefreshToken, error)

	// RotateRefreshToken revokes the token with oldHash and stores next in
	// one step. It returns ErrNotFound when oldHash is unknown or was
	// already revoked, so only one of two concurrent rotations wins.
	RotateRefreshToken(ctx context.Context, oldHash string, next domain.RefreshToken) error

	RevokeRefreshToken(ctx context.Context, hash string) error
	RevokeUserRefreshTokens(ctx context.Context, userID string) error

	// DeleteExpiredRefreshTokens removes tokens that expired before now and
	// reports how many were removed.
	DeleteExpiredRefreshTokens(ctx context.Context, now time.Time) (int, error)
}
