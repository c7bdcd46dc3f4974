package domain

import "time"

const (
	RoleAdmin   = "admin"
	RoleTeacher = "teacher"
	RoleStudent = "student"
)

type User struct {
	ID           string
	Email        string
	Name         string
	Role         string
	PasswordHash string
	CreatedAt    time.Time
}

type Course struct {
	ID          string
	Title       string
	Description string
	Published   bool
	CreatedAt   time.Time
}

type Group struct {
	ID        string
	Name      string
	CourseID  string
	MemberIDs []string
}

type Question struct {
	Prompt  string
	Choices []string
	Correct int
}

type Quiz struct {
	ID        string
	CourseID  string
	Title     string
	Questions []Question
}

// RefreshToken is persisted by fingerprint only; the opaque value is handed
// to the client once and never stored.
type RefreshToken struct {
	ID        string
	UserID    string
	TokenHash string
	ExpiresAt time.Time
	Revoked   bool
	CreatedAt time.Time
}

// Active reports whether the token can still be exchanged at now.
func (t RefreshToken) Active(now time.Time) bool {
	return !t.Revoked && now.Before(t.ExpiresAt)
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    time.Duration
}
