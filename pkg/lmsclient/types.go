package lmsclient

import "time"

// ============================================================================
// Auth Types
// ============================================================================

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is returned by POST /auth/login.
type LoginResponse struct {
	// Token is the session token attached to every authenticated request
	Token string `json:"token"`

	// RefreshToken is the optional credential sent to POST /auth/refresh
	RefreshToken string `json:"refreshToken,omitempty"`

	// Role of the user, e.g. "admin" or "teacher"
	Role string `json:"role"`

	User User `json:"user"`
}

// ============================================================================
// LMS Types
// ============================================================================

// User is an account known to the LMS.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// Course is a unit of teaching material with groups and quizzes.
type Course struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Published   bool      `json:"published"`
	CreatedAt   time.Time `json:"createdAt"`
}

// CreateCourseRequest is the body of POST /courses.
type CreateCourseRequest struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Published   bool   `json:"published"`
}

// UpdateCourseRequest is the body of PUT /courses/{id}. Nil fields are left unchanged.
type UpdateCourseRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Published   *bool   `json:"published,omitempty"`
}

// Group is a set of students enrolled in a course together.
type Group struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	CourseID  string   `json:"courseId"`
	MemberIDs []string `json:"memberIds"`
}

// CreateGroupRequest is the body of POST /groups.
type CreateGroupRequest struct {
	Name     string `json:"name"`
	CourseID string `json:"courseId"`
}

// AddMembersRequest is the body of POST /groups/{id}/members.
type AddMembersRequest struct {
	UserIDs []string `json:"userIds"`
}

// Question is a single multiple-choice question of a quiz.
type Question struct {
	Prompt  string   `json:"prompt"`
	Choices []string `json:"choices"`
	Correct int      `json:"correct"`
}

// Quiz belongs to a course.
type Quiz struct {
	ID        string     `json:"id"`
	CourseID  string     `json:"courseId"`
	Title     string     `json:"title"`
	Questions []Question `json:"questions"`
}

// CreateQuizRequest is the body of POST /courses/{id}/quizzes.
type CreateQuizRequest struct {
	Title     string     `json:"title"`
	Questions []Question `json:"questions"`
}

// DashboardStats is returned by GET /dashboard/stats.
type DashboardStats struct {
	Courses int `json:"courses"`
	Groups  int `json:"groups"`
	Users   int `json:"users"`
	Quizzes int `json:"quizzes"`
}

// HealthResponse is returned by GET /livez.
type HealthResponse struct {
	Status  string `json:"status"`
	Uptime  string `json:"uptime"`
	Version string `json:"version"`
}
