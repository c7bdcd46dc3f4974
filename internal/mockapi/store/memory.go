package store

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/aussiebroadwan/lmsconsole/internal/mockapi/domain"
)

// Memory is a Store kept entirely in process memory. A single RWMutex
// guards every table, which keeps multi-table operations such as course
// deletion and refresh rotation atomic.
type Memory struct {
	mu sync.RWMutex

	users         map[string]domain.User
	courses       map[string]domain.Course
	groups        map[string]domain.Group
	quizzes       map[string]domain.Quiz
	refreshTokens map[string]domain.RefreshToken // by TokenHash
}

var _ Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		users:         make(map[string]domain.User),
		courses:       make(map[string]domain.Course),
		groups:        make(map[string]domain.Group),
		quizzes:       make(map[string]domain.Quiz),
		refreshTokens: make(map[string]domain.RefreshToken),
	}
}

type (
	memoryUsers         Memory
	memoryCourses       Memory
	memoryGroups        Memory
	memoryQuizzes       Memory
	memoryRefreshTokens Memory
)

func (m *Memory) Users() Users                 { return (*memoryUsers)(m) }
func (m *Memory) Courses() Courses             { return (*memoryCourses)(m) }
func (m *Memory) Groups() Groups               { return (*memoryGroups)(m) }
func (m *Memory) Quizzes() Quizzes             { return (*memoryQuizzes)(m) }
func (m *Memory) RefreshTokens() RefreshTokens { return (*memoryRefreshTokens)(m) }

func (m *Memory) Close() error { return nil }

func (m *Memory) Ping(ctx context.Context) error { return ctx.Err() }

// sortedValues returns the map values ordered by id. Ids are ULIDs, so this
// is creation order.
func sortedValues[T any](in map[string]T, id func(T) string) []T {
	out := make([]T, 0, len(in))
	for _, v := range in {
		out = append(out, v)
	}
	slices.SortFunc(out, func(a, b T) int { return cmp.Compare(id(a), id(b)) })
	return out
}

// ----------------------------------------------------------------------------
// Users
// ----------------------------------------------------------------------------

func (r *memoryUsers) GetUserByID(_ context.Context, id string) (domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return domain.User{}, ErrNotFound
	}
	return u, nil
}

func (r *memoryUsers) GetUserByEmail(_ context.Context, email string) (domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return domain.User{}, ErrNotFound
}

func (r *memoryUsers) ListUsers(context.Context) ([]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return sortedValues(r.users, func(u domain.User) string { return u.ID }), nil
}

func (r *memoryUsers) CreateUser(_ context.Context, u domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[u.ID]; ok {
		return ErrAlreadyExists
	}
	for _, existing := range r.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return ErrAlreadyExists
		}
	}
	r.users[u.ID] = u
	return nil
}

// ----------------------------------------------------------------------------
// Courses
// ----------------------------------------------------------------------------

func (r *memoryCourses) GetCourse(_ context.Context, id string) (domain.Course, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.courses[id]
	if !ok {
		return domain.Course{}, ErrNotFound
	}
	return c, nil
}

func (r *memoryCourses) ListCourses(context.Context) ([]domain.Course, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return sortedValues(r.courses, func(c domain.Course) string { return c.ID }), nil
}

func (r *memoryCourses) CreateCourse(_ context.Context, c domain.Course) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.courses[c.ID]; ok {
		return ErrAlreadyExists
	}
	r.courses[c.ID] = c
	return nil
}

func (r *memoryCourses) UpdateCourse(_ context.Context, c domain.Course) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.courses[c.ID]; !ok {
		return ErrNotFound
	}
	r.courses[c.ID] = c
	return nil
}

func (r *memoryCourses) DeleteCourse(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.courses[id]; !ok {
		return ErrNotFound
	}
	delete(r.courses, id)

	for gid, g := range r.groups {
		if g.CourseID == id {
			delete(r.groups, gid)
		}
	}
	for qid, q := range r.quizzes {
		if q.CourseID == id {
			delete(r.quizzes, qid)
		}
	}
	return nil
}

// ----------------------------------------------------------------------------
// Groups
// ----------------------------------------------------------------------------

func (r *memoryGroups) GetGroup(_ context.Context, id string) (domain.Group, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, ok := r.groups[id]
	if !ok {
		return domain.Group{}, ErrNotFound
	}
	g.MemberIDs = slices.Clone(g.MemberIDs)
	return g, nil
}

func (r *memoryGroups) ListGroups(context.Context) ([]domain.Group, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	groups := sortedValues(r.groups, func(g domain.Group) string { return g.ID })
	for i := range groups {
		groups[i].MemberIDs = slices.Clone(groups[i].MemberIDs)
	}
	return groups, nil
}

func (r *memoryGroups) CreateGroup(_ context.Context, g domain.Group) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.groups[g.ID]; ok {
		return ErrAlreadyExists
	}
	if _, ok := r.courses[g.CourseID]; !ok {
		return ErrNotFound
	}
	g.MemberIDs = slices.Clone(g.MemberIDs)
	r.groups[g.ID] = g
	return nil
}

func (r *memoryGroups) AddMembers(_ context.Context, groupID string, userIDs []string) (domain.Group, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	g, ok := r.groups[groupID]
	if !ok {
		return domain.Group{}, ErrNotFound
	}
	for _, id := range userIDs {
		if _, ok := r.users[id]; !ok {
			return domain.Group{}, ErrNotFound
		}
	}

	members := slices.Clone(g.MemberIDs)
	for _, id := range userIDs {
		if !slices.Contains(members, id) {
			members = append(members, id)
		}
	}
	g.MemberIDs = members
	r.groups[groupID] = g

	g.MemberIDs = slices.Clone(members)
	return g, nil
}

// ----------------------------------------------------------------------------
// Quizzes
// ----------------------------------------------------------------------------

func (r *memoryQuizzes) ListQuizzesByCourse(_ context.Context, courseID string) ([]domain.Quiz, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.courses[courseID]; !ok {
		return nil, ErrNotFound
	}

	var out []domain.Quiz
	for _, q := range sortedValues(r.quizzes, func(q domain.Quiz) string { return q.ID }) {
		if q.CourseID == courseID {
			out = append(out, q)
		}
	}
	return out, nil
}

func (r *memoryQuizzes) CountQuizzes(context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.quizzes), nil
}

func (r *memoryQuizzes) CreateQuiz(_ context.Context, q domain.Quiz) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.courses[q.CourseID]; !ok {
		return ErrNotFound
	}
	if _, ok := r.quizzes[q.ID]; ok {
		return ErrAlreadyExists
	}
	r.quizzes[q.ID] = q
	return nil
}

// ----------------------------------------------------------------------------
// Refresh tokens
// ----------------------------------------------------------------------------

func (r *memoryRefreshTokens) CreateRefreshToken(_ context.Context, t domain.RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.refreshTokens[t.TokenHash]; ok {
		return ErrAlreadyExists
	}
	r.refreshTokens[t.TokenHash] = t
	return nil
}

func (r *memoryRefreshTokens) GetRefreshTokenByHash(_ context.Context, hash string) (domain.RefreshToken, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.refreshTokens[hash]
	if !ok {
		return domain.RefreshToken{}, ErrNotFound
	}
	return t, nil
}

func (r *memoryRefreshTokens) RotateRefreshToken(_ context.Context, oldHash string, next domain.RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	old, ok := r.refreshTokens[oldHash]
	if !ok || old.Revoked {
		return ErrNotFound
	}
	if _, ok := r.refreshTokens[next.TokenHash]; ok {
		return ErrAlreadyExists
	}

	old.Revoked = true
	r.refreshTokens[oldHash] = old
	r.refreshTokens[next.TokenHash] = next
	return nil
}

func (r *memoryRefreshTokens) RevokeRefreshToken(_ context.Context, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.refreshTokens[hash]
	if !ok {
		return ErrNotFound
	}
	t.Revoked = true
	r.refreshTokens[hash] = t
	return nil
}

func (r *memoryRefreshTokens) RevokeUserRefreshTokens(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for hash, t := range r.refreshTokens {
		if t.UserID == userID && !t.Revoked {
			t.Revoked = true
			r.refreshTokens[hash] = t
		}
	}
	return nil
}

func (r *memoryRefreshTokens) DeleteExpiredRefreshTokens(_ context.Context, now time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var deleted int
	for hash, t := range r.refreshTokens {
		if !now.Before(t.ExpiresAt) {
			delete(r.refreshTokens, hash)
			deleted++
		}
	}
	return deleted, nil
}
