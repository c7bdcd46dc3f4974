// Package cli implements lmsctl, the command line LMS admin console.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/aussiebroadwan/lmsconsole/pkg/lmsclient"
	"github.com/aussiebroadwan/lmsconsole/pkg/slogx"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	// ErrHelp is returned after usage was printed; the caller should exit
	// non-zero without printing anything else.
	ErrHelp = errors.New("help provided")

	errNotLoggedIn = errors.New("not logged in, run `lmsctl login`")
)

// SessionExpiredNotice is printed when the session cannot be refreshed.
const SessionExpiredNotice = "session expired, run `lmsctl login`"

// loginNotice is the console's LoginRedirector: a terminal has no login
// page, so it tells the user to log in again.
type loginNotice struct {
	w io.Writer
}

func (n loginNotice) RedirectToLogin(ctx context.Context, cause error) {
	slogx.FromContext(ctx).Debug("session torn down", "cause", cause)
	fmt.Fprintln(n.w, SessionExpiredNotice)
}

// App owns the session storage and the CommandLine built on top of it.
type App struct {
	storage closableStorage
	CLI     *CommandLine
}

// NewApp opens the configured session storage and builds the client.
func NewApp(ctx context.Context, cfg Config, out, errOut io.Writer) (*App, error) {
	storage, err := openStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}

	jar, _ := cookiejar.New(nil)
	client := lmsclient.NewClient(cfg.APIURL,
		lmsclient.WithHTTPClient(&http.Client{Timeout: cfg.HTTPTimeout, Jar: jar}),
		lmsclient.WithStorage(storage),
		lmsclient.WithRefreshTimeout(cfg.RefreshTimeout),
		lmsclient.WithRedirector(loginNotice{w: errOut}),
	)

	if err := client.Tokens().Load(ctx); err != nil {
		_ = storage.Close()
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	return &App{storage: storage, CLI: NewCommandLine(client, out, errOut)}, nil
}

// Close releases the session storage.
func (a *App) Close() error {
	return a.storage.Close()
}

// CommandLine parses lmsctl arguments and runs the matching command.
type CommandLine struct {
	client *lmsclient.Client
	out    io.Writer
	errOut io.Writer

	stdinFD int
}

func NewCommandLine(client *lmsclient.Client, out, errOut io.Writer) *CommandLine {
	return &CommandLine{client: client, out: out, errOut: errOut, stdinFD: int(syscall.Stdin)}
}

func (cli *CommandLine) printUsage() {
	fmt.Fprintln(cli.errOut, "Usage:")
	fmt.Fprintln(cli.errOut, "  login -email EMAIL                          - log in, the password is prompted next")
	fmt.Fprintln(cli.errOut, "  logout                                      - end the session")
	fmt.Fprintln(cli.errOut, "  whoami [-remote]                            - show the logged in user")
	fmt.Fprintln(cli.errOut, "  courses [-json]                             - list courses")
	fmt.Fprintln(cli.errOut, "  course-create -title T [-description D] [-published]")
	fmt.Fprintln(cli.errOut, "  course-publish -id ID [-unpublish]          - change course visibility")
	fmt.Fprintln(cli.errOut, "  course-delete -id ID                        - delete a course with its groups and quizzes")
	fmt.Fprintln(cli.errOut, "  groups [-json]                              - list groups")
	fmt.Fprintln(cli.errOut, "  group-create -name N -course ID             - create a group")
	fmt.Fprintln(cli.errOut, "  group-add -group ID -users ID[,ID...]       - add members to a group")
	fmt.Fprintln(cli.errOut, "  users [-json]                               - list users")
	fmt.Fprintln(cli.errOut, "  quizzes -course ID [-json]                  - list a course's quizzes")
	fmt.Fprintln(cli.errOut, "  stats                                       - dashboard counters")
	fmt.Fprintln(cli.errOut, "  get PATH                                    - authenticated GET, prints the raw body")
	fmt.Fprintln(cli.errOut, "  health                                      - backend liveness")
}

func (cli *CommandLine) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(cli.errOut)
	return fs
}

// parse maps -h to ErrHelp since usage has already been printed.
func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ErrHelp
		}
		return err
	}
	return nil
}

func (cli *CommandLine) requireLogin() error {
	if !cli.client.IsAuthenticated() {
		return errNotLoggedIn
	}
	return nil
}

// Run executes the command in args, where args[0] is the program name.
func (cli *CommandLine) Run(ctx context.Context, args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return ErrHelp
	}

	cmd, rest := args[1], args[2:]
	switch cmd {
	case "login":
		return cli.login(ctx, rest)
	case "logout":
		return cli.logout(ctx)
	case "whoami":
		return cli.whoami(ctx, rest)
	case "health":
		return cli.health(ctx)
	}

	authed := map[string]func(context.Context, []string) error{
		"courses":        cli.listCourses,
		"course-create":  cli.createCourse,
		"course-publish": cli.publishCourse,
		"course-delete":  cli.deleteCourse,
		"groups":         cli.listGroups,
		"group-create":   cli.createGroup,
		"group-add":      cli.addGroupMembers,
		"users":          cli.listUsers,
		"quizzes":        cli.listQuizzes,
		"stats":          cli.stats,
		"get":            cli.get,
	}

	run, ok := authed[cmd]
	if !ok {
		cli.printUsage()
		return ErrHelp
	}
	if err := cli.requireLogin(); err != nil {
		return err
	}
	return run(ctx, rest)
}

// splitIDs turns "a, b,,c" into [a b c].
func splitIDs(s string) []string {
	var ids []string
	for _, id := range strings.Split(s, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}
