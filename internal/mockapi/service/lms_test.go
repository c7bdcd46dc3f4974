package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/lmsconsole/internal/mockapi/domain"
	"github.com/aussiebroadwan/lmsconsole/internal/mockapi/service"
	"github.com/aussiebroadwan/lmsconsole/internal/mockapi/store"
)

func ptr[T any](v T) *T { return &v }

func TestCourseLifecycle(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	lms := &service.LMSService{Store: store.NewMemory()}

	_, err := lms.CreateCourse(ctx, "  ", "", false)
	require.True(t, service.IsValidation(err))

	course, err := lms.CreateCourse(ctx, " Go 101 ", "basics", false)
	require.NoError(t, err)
	require.Equal(t, "Go 101", course.Title)

	updated, err := lms.UpdateCourse(ctx, course.ID, service.CoursePatch{Published: ptr(true)})
	require.NoError(t, err)
	require.True(t, updated.Published)
	require.Equal(t, "basics", updated.Description)

	_, err = lms.UpdateCourse(ctx, course.ID, service.CoursePatch{Title: ptr("")})
	require.True(t, service.IsValidation(err))

	_, err = lms.UpdateCourse(ctx, "crs_404", service.CoursePatch{})
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestCreateQuizValidation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	lms := &service.LMSService{Store: store.NewMemory()}

	course, err := lms.CreateCourse(ctx, "Maths", "", true)
	require.NoError(t, err)

	ok := domain.Question{Prompt: "1+1?", Choices: []string{"1", "2"}, Correct: 1}

	tests := []struct {
		name      string
		title     string
		questions []domain.Question
		wantErr   string
	}{
		{name: "no title", questions: []domain.Question{ok}, wantErr: "quiz title is required"},
		{name: "no questions", title: "Q", wantErr: "at least one question"},
		{name: "one choice", title: "Q", questions: []domain.Question{{Prompt: "?", Choices: []string{"a"}}}, wantErr: "question 1: at least two choices"},
		{name: "out of range", title: "Q", questions: []domain.Question{ok, {Prompt: "?", Choices: []string{"a", "b"}, Correct: -1}}, wantErr: "question 2: correct answer -1 out of range"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := lms.CreateQuiz(ctx, course.ID, tt.title, tt.questions)
			require.True(t, service.IsValidation(err))
			require.ErrorContains(t, err, tt.wantErr)
		})
	}

	quiz, err := lms.CreateQuiz(ctx, course.ID, "Sums", []domain.Question{ok})
	require.NoError(t, err)
	require.Equal(t, course.ID, quiz.CourseID)

	_, err = lms.CreateQuiz(ctx, "crs_404", "Sums", []domain.Question{ok})
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestGroupsAndStats(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := store.NewMemory()
	lms := &service.LMSService{Store: st}

	require.NoError(t, st.Users().CreateUser(ctx, domain.User{ID: "usr_1", Email: "a@lms.local"}))
	course, err := lms.CreateCourse(ctx, "History", "", true)
	require.NoError(t, err)

	_, err = lms.CreateGroup(ctx, "", course.ID)
	require.True(t, service.IsValidation(err))

	group, err := lms.CreateGroup(ctx, "Tuesday", course.ID)
	require.NoError(t, err)
	require.Empty(t, group.MemberIDs)

	_, err = lms.AddMembers(ctx, group.ID, nil)
	require.True(t, service.IsValidation(err))

	group, err = lms.AddMembers(ctx, group.ID, []string{"usr_1"})
	require.NoError(t, err)
	require.Equal(t, []string{"usr_1"}, group.MemberIDs)

	stats, err := lms.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, service.Stats{Courses: 1, Groups: 1, Users: 1}, stats)
}
