package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/aussiebroadwan/lmsconsole/pkg/lmsclient"
)

func (cli *CommandLine) login(ctx context.Context, args []string) error {
	fs := cli.newFlagSet("login")
	email := fs.String("email", "", "The account's email. The password will be prompted next.")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *email == "" {
		fs.Usage()
		return ErrHelp
	}

	fmt.Fprint(cli.errOut, "Password: ")
	pwd, err := readPasswordFunc(cli.stdinFD)
	fmt.Fprintln(cli.errOut)
	if err != nil {
		return err
	}
	if len(pwd) == 0 {
		fs.Usage()
		return ErrHelp
	}

	resp, err := cli.client.Login(ctx, *email, string(pwd))
	if err != nil {
		return err
	}

	fmt.Fprintf(cli.out, "logged in as %s (%s)\n", resp.User.Email, resp.Role)
	return nil
}

func (cli *CommandLine) logout(ctx context.Context) error {
	if err := cli.client.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(cli.out, "logged out")
	return nil
}

func (cli *CommandLine) whoami(ctx context.Context, args []string) error {
	fs := cli.newFlagSet("whoami")
	remote := fs.Bool("remote", false, "Ask the backend instead of reading the stored token.")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := cli.requireLogin(); err != nil {
		return err
	}

	session := cli.client.Tokens().Session()
	claims, err := lmsclient.ParseTokenClaims(session.Token)
	if *remote || errors.Is(err, lmsclient.ErrOpaqueToken) {
		user, err := cli.client.Me(ctx)
		if err != nil {
			return err
		}
		return writeTable(cli.out, []string{"ID", "EMAIL", "NAME", "ROLE"},
			[][]string{{user.ID, user.Email, user.Name, user.Role}})
	}
	if err != nil {
		return err
	}

	expires := "never"
	if !claims.ExpiresAt.IsZero() {
		expires = claims.ExpiresAt.Local().Format(time.RFC3339)
		if claims.Expired(time.Now()) {
			expires += " (expired, refreshed on next request)"
		}
	}
	return writeTable(cli.out, []string{"ID", "EMAIL", "ROLE", "EXPIRES"},
		[][]string{{claims.Subject, claims.Email, session.Role, expires}})
}

func (cli *CommandLine) health(ctx context.Context) error {
	health, err := cli.client.GetLiveness(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "%s (version %s, up %s)\n", health.Status, health.Version, health.Uptime)
	return nil
}

func (cli *CommandLine) listCourses(ctx context.Context, args []string) error {
	fs := cli.newFlagSet("courses")
	asJSON := fs.Bool("json", false, "Print JSON instead of a table.")
	if err := parse(fs, args); err != nil {
		return err
	}

	courses, err := cli.client.ListCourses(ctx)
	if err != nil {
		return err
	}
	if *asJSON {
		return writeJSON(cli.out, courses)
	}

	rows := make([][]string, len(courses))
	for i, c := range courses {
		rows[i] = []string{c.ID, c.Title, yesNo(c.Published), c.CreatedAt.Format(time.DateOnly)}
	}
	return writeTable(cli.out, []string{"ID", "TITLE", "PUBLISHED", "CREATED"}, rows)
}

func (cli *CommandLine) createCourse(ctx context.Context, args []string) error {
	fs := cli.newFlagSet("course-create")
	title := fs.String("title", "", "Course title.")
	description := fs.String("description", "", "Optional description.")
	published := fs.Bool("published", false, "Publish the course right away.")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *title == "" {
		fs.Usage()
		return ErrHelp
	}

	course, err := cli.client.CreateCourse(ctx, lmsclient.CreateCourseRequest{
		Title:       *title,
		Description: *description,
		Published:   *published,
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(cli.out, course.ID)
	return nil
}

func (cli *CommandLine) publishCourse(ctx context.Context, args []string) error {
	fs := cli.newFlagSet("course-publish")
	id := fs.String("id", "", "Course ID.")
	unpublish := fs.Bool("unpublish", false, "Hide the course instead.")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *id == "" {
		fs.Usage()
		return ErrHelp
	}

	published := !*unpublish
	course, err := cli.client.UpdateCourse(ctx, *id, lmsclient.UpdateCourseRequest{Published: &published})
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "%s published: %s\n", course.ID, yesNo(course.Published))
	return nil
}

func (cli *CommandLine) deleteCourse(ctx context.Context, args []string) error {
	fs := cli.newFlagSet("course-delete")
	id := fs.String("id", "", "Course ID.")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *id == "" {
		fs.Usage()
		return ErrHelp
	}

	if err := cli.client.DeleteCourse(ctx, *id); err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "deleted %s\n", *id)
	return nil
}

func (cli *CommandLine) listGroups(ctx context.Context, args []string) error {
	fs := cli.newFlagSet("groups")
	asJSON := fs.Bool("json", false, "Print JSON instead of a table.")
	if err := parse(fs, args); err != nil {
		return err
	}

	groups, err := cli.client.ListGroups(ctx)
	if err != nil {
		return err
	}
	if *asJSON {
		return writeJSON(cli.out, groups)
	}

	rows := make([][]string, len(groups))
	for i, g := range groups {
		rows[i] = []string{g.ID, g.Name, g.CourseID, strconv.Itoa(len(g.MemberIDs))}
	}
	return writeTable(cli.out, []string{"ID", "NAME", "COURSE", "MEMBERS"}, rows)
}

func (cli *CommandLine) createGroup(ctx context.Context, args []string) error {
	fs := cli.newFlagSet("group-create")
	name := fs.String("name", "", "Group name.")
	courseID := fs.String("course", "", "Course the group belongs to.")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *name == "" || *courseID == "" {
		fs.Usage()
		return ErrHelp
	}

	group, err := cli.client.CreateGroup(ctx, lmsclient.CreateGroupRequest{Name: *name, CourseID: *courseID})
	if err != nil {
		return err
	}
	fmt.Fprintln(cli.out, group.ID)
	return nil
}

func (cli *CommandLine) addGroupMembers(ctx context.Context, args []string) error {
	fs := cli.newFlagSet("group-add")
	groupID := fs.String("group", "", "Group ID.")
	users := fs.String("users", "", "Comma separated user IDs.")
	if err := parse(fs, args); err != nil {
		return err
	}
	ids := splitIDs(*users)
	if *groupID == "" || len(ids) == 0 {
		fs.Usage()
		return ErrHelp
	}

	group, err := cli.client.AddGroupMembers(ctx, *groupID, ids...)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "%s now has %d members\n", group.ID, len(group.MemberIDs))
	return nil
}

func (cli *CommandLine) listUsers(ctx context.Context, args []string) error {
	fs := cli.newFlagSet("users")
	asJSON := fs.Bool("json", false, "Print JSON instead of a table.")
	if err := parse(fs, args); err != nil {
		return err
	}

	users, err := cli.client.ListUsers(ctx)
	if err != nil {
		return err
	}
	if *asJSON {
		return writeJSON(cli.out, users)
	}

	rows := make([][]string, len(users))
	for i, u := range users {
		rows[i] = []string{u.ID, u.Email, u.Name, u.Role}
	}
	return writeTable(cli.out, []string{"ID", "EMAIL", "NAME", "ROLE"}, rows)
}

func (cli *CommandLine) listQuizzes(ctx context.Context, args []string) error {
	fs := cli.newFlagSet("quizzes")
	courseID := fs.String("course", "", "Course ID.")
	asJSON := fs.Bool("json", false, "Print JSON instead of a table.")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *courseID == "" {
		fs.Usage()
		return ErrHelp
	}

	quizzes, err := cli.client.ListQuizzes(ctx, *courseID)
	if err != nil {
		return err
	}
	if *asJSON {
		return writeJSON(cli.out, quizzes)
	}

	rows := make([][]string, len(quizzes))
	for i, q := range quizzes {
		rows[i] = []string{q.ID, q.Title, strconv.Itoa(len(q.Questions))}
	}
	return writeTable(cli.out, []string{"ID", "TITLE", "QUESTIONS"}, rows)
}

func (cli *CommandLine) stats(ctx context.Context, _ []string) error {
	stats, err := cli.client.DashboardStats(ctx)
	if err != nil {
		return err
	}
	return writeTable(cli.out, []string{"COURSES", "GROUPS", "USERS", "QUIZZES"}, [][]string{{
		strconv.Itoa(stats.Courses),
		strconv.Itoa(stats.Groups),
		strconv.Itoa(stats.Users),
		strconv.Itoa(stats.Quizzes),
	}})
}

// get sends an authenticated GET through the dispatcher and prints the
// body as-is, so any endpoint can be inspected.
func (cli *CommandLine) get(ctx context.Context, args []string) error {
	if len(args) != 1 || !strings.HasPrefix(args[0], "/") {
		fmt.Fprintln(cli.errOut, "Usage: get /PATH")
		return ErrHelp
	}

	resp, err := cli.client.Do(ctx, &lmsclient.Request{Method: http.MethodGet, Path: args[0]})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if _, err := io.Copy(cli.out, resp.Body); err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("GET %s: HTTP %d", args[0], resp.StatusCode)
	}
	return nil
}
