package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/lmsconsole/internal/mockapi/app"
	redisstore "github.com/aussiebroadwan/lmsconsole/internal/storage/redis"
	"github.com/aussiebroadwan/lmsconsole/pkg/lmsclient"
)

// The password prompt reads from stdinFD; tests pick a password by fd.
const (
	stdinAdmin = iota
	stdinTeacher
	stdinWrong
	stdinEmpty
)

var testPasswords = map[int]string{
	stdinAdmin:   "admin",
	stdinTeacher: "teacher",
	stdinWrong:   "letmein",
	stdinEmpty:   "",
}

func TestMain(m *testing.M) {
	readPasswordFunc = func(fd int) ([]byte, error) {
		return []byte(testPasswords[fd]), nil
	}
	os.Exit(m.Run())
}

func newMockBackend(t *testing.T) *httptest.Server {
	t.Helper()

	backend, err := app.New(app.Config{
		Issuer:               "lms-mock",
		AccessTTL:            time.Minute,
		RefreshTTL:           time.Hour,
		LoginRateLimit:       20,
		AdminEmail:           "admin@lms.local",
		AdminPassword:        "admin",
		TeacherEmail:         "teacher@lms.local",
		TeacherPassword:      "teacher",
		SeedSampleData:       true,
		Env:                  "test",
		LogLevel:             "error",
		LogFormat:            "text",
		ShutdownGracePeriod:  time.Second,
		HousekeepingInterval: time.Hour,
	})
	require.NoError(t, err)

	srv := httptest.NewServer(backend.Handler())
	t.Cleanup(srv.Close)
	return srv
}

type console struct {
	*App
	out    bytes.Buffer
	errOut bytes.Buffer
}

func openConsole(t *testing.T, cfg Config) *console {
	t.Helper()

	c := &console{}
	a, err := NewApp(context.Background(), cfg, &c.out, &c.errOut)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	c.App = a
	return c
}

func sqliteConfig(t *testing.T, apiURL string) Config {
	return Config{
		APIURL:         apiURL,
		StateBackend:   BackendSQLite,
		StateFile:      filepath.Join(t.TempDir(), "lmsctl", "state.db"),
		HTTPTimeout:    5 * time.Second,
		RefreshTimeout: 5 * time.Second,
	}
}

// run executes one command line with fresh output buffers.
func (c *console) run(stdin int, args ...string) error {
	c.out.Reset()
	c.errOut.Reset()
	c.CLI.stdinFD = stdin
	return c.CLI.Run(context.Background(), append([]string{"lmsctl"}, args...))
}

type cliTest struct {
	name       string
	args       []string // without program name
	stdin      int
	wantErr    error
	wantErrStr string
	wantOut    string
}

func runCLITests(t *testing.T, c *console, tests []cliTest) {
	t.Helper()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := c.run(tt.stdin, tt.args...)
			switch {
			case tt.wantErr != nil:
				require.ErrorIs(t, err, tt.wantErr)
			case tt.wantErrStr != "":
				require.ErrorContains(t, err, tt.wantErrStr)
			default:
				require.NoError(t, err)
			}
			if tt.wantOut != "" {
				require.Contains(t, c.out.String(), tt.wantOut)
			}
		})
	}
}

func TestCommandLineLogin(t *testing.T) {
	c := openConsole(t, sqliteConfig(t, newMockBackend(t).URL))

	runCLITests(t, c, []cliTest{
		{name: "no command", wantErr: ErrHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: ErrHelp},
		{name: "not logged in", args: []string{"courses"}, wantErr: errNotLoggedIn},
		{name: "whoami logged out", args: []string{"whoami"}, wantErr: errNotLoggedIn},
		{name: "login: no email", args: []string{"login"}, wantErr: ErrHelp},
		{name: "login: help", args: []string{"login", "-h"}, wantErr: ErrHelp},
		{name: "login: empty password", args: []string{"login", "-email", "admin@lms.local"}, stdin: stdinEmpty, wantErr: ErrHelp},
		{name: "login: wrong password", args: []string{"login", "-email", "admin@lms.local"}, stdin: stdinWrong, wantErrStr: "invalid_credentials"},
		{name: "health without session", args: []string{"health"}, wantOut: "ok (version"},
		{name: "login", args: []string{"login", "-email", "admin@lms.local"}, stdin: stdinAdmin, wantOut: "logged in as admin@lms.local (admin)"},
		{name: "whoami", args: []string{"whoami"}, wantOut: "admin@lms.local"},
		{name: "whoami remote", args: []string{"whoami", "-remote"}, wantOut: "Administrator"},
		{name: "logout", args: []string{"logout"}, wantOut: "logged out"},
		{name: "after logout", args: []string{"stats"}, wantErr: errNotLoggedIn},
	})

}

func TestCommandLineCourses(t *testing.T) {
	c := openConsole(t, sqliteConfig(t, newMockBackend(t).URL))
	require.NoError(t, c.run(stdinAdmin, "login", "-email", "admin@lms.local"))

	runCLITests(t, c, []cliTest{
		{name: "list", args: []string{"courses"}, wantOut: "Introduction to Networking"},
		{name: "create: no title", args: []string{"course-create"}, wantErr: ErrHelp},
		{name: "create", args: []string{"course-create", "-title", "Operating Systems", "-description", "Processes and memory"}},
		{name: "publish: no id", args: []string{"course-publish"}, wantErr: ErrHelp},
		{name: "publish: unknown", args: []string{"course-publish", "-id", "crs_missing"}, wantErrStr: "not_found"},
		{name: "delete: no id", args: []string{"course-delete"}, wantErr: ErrHelp},
		{name: "quizzes: no course", args: []string{"quizzes"}, wantErr: ErrHelp},
	})

	require.NoError(t, c.run(stdinAdmin, "course-create", "-title", "Compilers"))
	id := strings.TrimSpace(c.out.String())
	require.NotEmpty(t, id)

	require.NoError(t, c.run(stdinAdmin, "course-publish", "-id", id))
	require.Equal(t, id+" published: yes\n", c.out.String())

	require.NoError(t, c.run(stdinAdmin, "course-publish", "-id", id, "-unpublish"))
	require.Equal(t, id+" published: no\n", c.out.String())

	require.NoError(t, c.run(stdinAdmin, "courses", "-json"))
	var courses []lmsclient.Course
	require.NoError(t, json.Unmarshal(c.out.Bytes(), &courses))
	require.Len(t, courses, 3)

	require.NoError(t, c.run(stdinAdmin, "course-delete", "-id", id))
	require.NoError(t, c.run(stdinAdmin, "courses"))
	require.NotContains(t, c.out.String(), "Compilers")
}

func TestCommandLineGroupsAndQuizzes(t *testing.T) {
	c := openConsole(t, sqliteConfig(t, newMockBackend(t).URL))
	require.NoError(t, c.run(stdinAdmin, "login", "-email", "admin@lms.local"))

	require.NoError(t, c.run(stdinAdmin, "courses", "-json"))
	var courses []lmsclient.Course
	require.NoError(t, json.Unmarshal(c.out.Bytes(), &courses))
	require.Len(t, courses, 1)
	courseID := courses[0].ID

	require.NoError(t, c.run(stdinAdmin, "users", "-json"))
	var users []lmsclient.User
	require.NoError(t, json.Unmarshal(c.out.Bytes(), &users))
	require.Len(t, users, 4)

	var teacherID string
	for _, u := range users {
		if u.Role == "teacher" {
			teacherID = u.ID
		}
	}
	require.NotEmpty(t, teacherID)

	require.NoError(t, c.run(stdinAdmin, "group-create", "-name", "Tuesday cohort", "-course", courseID))
	groupID := strings.TrimSpace(c.out.String())

	runCLITests(t, c, []cliTest{
		{name: "group-create: no course", args: []string{"group-create", "-name", "x"}, wantErr: ErrHelp},
		{name: "group-create: unknown course", args: []string{"group-create", "-name", "x", "-course", "crs_missing"}, wantErrStr: "HTTP 404"},
		{name: "group-add: no users", args: []string{"group-add", "-group", groupID, "-users", " , "}, wantErr: ErrHelp},
		{name: "group-add", args: []string{"group-add", "-group", groupID, "-users", teacherID + ","}, wantOut: groupID + " now has 1 members"},
		{name: "groups", args: []string{"groups"}, wantOut: "Tuesday cohort"},
		{name: "users", args: []string{"users"}, wantOut: "ada@lms.local"},
		{name: "quizzes", args: []string{"quizzes", "-course", courseID}, wantOut: "Layers"},
		{name: "stats", args: []string{"stats"}, wantOut: "COURSES"},
		{name: "get", args: []string{"get", "/dashboard/stats"}, wantOut: `"groups":2`},
		{name: "get: no path", args: []string{"get"}, wantErr: ErrHelp},
		{name: "get: not found", args: []string{"get", "/courses/crs_missing"}, wantErrStr: "HTTP 404"},
	})
}

func TestCommandLineRoleIsEnforcedByBackend(t *testing.T) {
	c := openConsole(t, sqliteConfig(t, newMockBackend(t).URL))
	require.NoError(t, c.run(stdinTeacher, "login", "-email", "teacher@lms.local"))
	require.Contains(t, c.out.String(), "(teacher)")

	err := c.run(stdinTeacher, "course-create", "-title", "Not allowed")
	require.ErrorContains(t, err, "HTTP 403")

	// A 403 is not a session problem.
	require.True(t, c.CLI.client.IsAuthenticated())
}

func TestSessionSurvivesRestart(t *testing.T) {
	cfg := sqliteConfig(t, newMockBackend(t).URL)

	first := openConsole(t, cfg)
	require.NoError(t, first.run(stdinAdmin, "login", "-email", "admin@lms.local"))
	require.NoError(t, first.Close())

	second := openConsole(t, cfg)
	require.NoError(t, second.run(stdinAdmin, "whoami"))
	require.Contains(t, second.out.String(), "admin@lms.local")
	require.NoError(t, second.run(stdinAdmin, "stats"))
}

func TestRejectedTokenIsRefreshed(t *testing.T) {
	c := openConsole(t, sqliteConfig(t, newMockBackend(t).URL))
	require.NoError(t, c.run(stdinAdmin, "login", "-email", "admin@lms.local"))

	tokens := c.CLI.client.Tokens()
	require.NoError(t, tokens.SetToken(context.Background(), "not-a-valid-token"))

	require.NoError(t, c.run(stdinAdmin, "courses"))
	require.Contains(t, c.out.String(), "Introduction to Networking")
	require.Empty(t, c.errOut.String())

	token, ok := tokens.Token()
	require.True(t, ok)
	require.NotEqual(t, "not-a-valid-token", token)
}

func TestFailedRefreshEndsSession(t *testing.T) {
	c := openConsole(t, sqliteConfig(t, newMockBackend(t).URL))
	require.NoError(t, c.run(stdinAdmin, "login", "-email", "admin@lms.local"))

	// Both credentials are unknown to the backend; the cookie from the login
	// is overridden by the body.
	tokens := c.CLI.client.Tokens()
	require.NoError(t, tokens.Rotate(context.Background(), "not-a-valid-token", "not-a-refresh-token"))

	err := c.run(stdinAdmin, "courses")
	require.ErrorIs(t, err, lmsclient.ErrSessionExpired)
	require.Equal(t, SessionExpiredNotice+"\n", c.errOut.String())

	require.ErrorIs(t, c.run(stdinAdmin, "whoami"), errNotLoggedIn)
}

func TestRedisStateBackend(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := Config{
		APIURL:         newMockBackend(t).URL,
		StateBackend:   BackendRedis,
		Redis:          redisstore.Config{Addr: mr.Addr(), Prefix: "lmsctl:test:"},
		HTTPTimeout:    5 * time.Second,
		RefreshTimeout: 5 * time.Second,
	}

	c := openConsole(t, cfg)
	require.NoError(t, c.run(stdinAdmin, "login", "-email", "admin@lms.local"))

	token, err := mr.Get("lmsctl:test:" + lmsclient.KeyToken)
	require.NoError(t, err)
	require.Equal(t, c.CLI.client.Tokens().Session().Token, token)

	role, err := mr.Get("lmsctl:test:" + lmsclient.KeyRole)
	require.NoError(t, err)
	require.Equal(t, "admin", role)

	require.NoError(t, c.run(stdinAdmin, "logout"))
	require.False(t, mr.Exists("lmsctl:test:"+lmsclient.KeyToken))
}

func TestMemoryStateBackendForgetsOnRestart(t *testing.T) {
	cfg := Config{
		APIURL:         newMockBackend(t).URL,
		StateBackend:   BackendMemory,
		HTTPTimeout:    5 * time.Second,
		RefreshTimeout: 5 * time.Second,
	}

	first := openConsole(t, cfg)
	require.NoError(t, first.run(stdinAdmin, "login", "-email", "admin@lms.local"))

	second := openConsole(t, cfg)
	require.ErrorIs(t, second.run(stdinAdmin, "stats"), errNotLoggedIn)
}

func TestSplitIDs(t *testing.T) {
	t.Parallel()

	require.Equal(t, []string{"a", "b", "c"}, splitIDs("a, b,,c"))
	require.Empty(t, splitIDs(" , "))
}
