package cli

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/dmitrijs2005/agentdeck/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExec struct {
	loggedIn bool

	calls []string
	args  []string
	err   error
}

func (f *fakeExec) record(name string, args ...string) error {
	f.calls = append(f.calls, name)
	f.args = append(f.args, args...)
	return f.err
}

func (f *fakeExec) isLoggedIn() bool { return f.loggedIn }
func (f *fakeExec) Register(ctx context.Context) error {
	return f.record("register")
}
func (f *fakeExec) Login(ctx context.Context) error {
	f.loggedIn = true
	return f.record("login")
}
func (f *fakeExec) Logout(ctx context.Context) error {
	f.loggedIn = false
	return f.record("logout")
}
func (f *fakeExec) WhoAmI(ctx context.Context) error       { return f.record("whoami") }
func (f *fakeExec) ListProjects(ctx context.Context) error { return f.record("projects") }
func (f *fakeExec) AddProject(ctx context.Context) error   { return f.record("addproject") }
func (f *fakeExec) ShowProject(ctx context.Context, id string) error {
	return f.record("project", id)
}
func (f *fakeExec) DeleteProject(ctx context.Context, id string) error {
	return f.record("rmproject", id)
}
func (f *fakeExec) ListTasks(ctx context.Context, projectID string) error {
	return f.record("tasks", projectID)
}
func (f *fakeExec) AddTask(ctx context.Context) error { return f.record("addtask") }
func (f *fakeExec) ShowTask(ctx context.Context, id string) error {
	return f.record("task", id)
}
func (f *fakeExec) SetTaskStatus(ctx context.Context, id, status string) error {
	return f.record("status", id, status)
}
func (f *fakeExec) Chat(ctx context.Context, id string) error { return f.record("chat", id) }
func (f *fakeExec) ShowPrefs(ctx context.Context) error       { return f.record("prefs") }
func (f *fakeExec) SetPrefs(ctx context.Context) error        { return f.record("setprefs") }

func runLines(exec execIface, input string) []string {
	var out bytes.Buffer
	runREPL(context.Background(), exec, func() string { return "s" }, bufio.NewReader(strings.NewReader(input)), &out)
	return strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
}

func TestRunREPL_DispatchesCommands(t *testing.T) {
	input := strings.Join([]string{
		"help",
		"login",
		"projects",
		"project p1",
		"tasks",
		"tasks p1",
		"task t1",
		"status t1 running",
		"chat t1",
		"prefs",
		"setprefs",
		"rmproject p1",
		"logout",
		"exit",
		"whoami",
	}, "\n")

	exec := &fakeExec{}
	printed := runLines(exec, input)
	assert.Equal(t, "agentdeck s > ", printed[0])

	require.Equal(t, []string{
		"login", "projects", "project", "tasks", "tasks", "task", "status",
		"chat", "prefs", "setprefs", "rmproject", "logout",
	}, exec.calls)
	require.Equal(t, []string{"p1", "", "p1", "t1", "t1", "running", "t1", "p1"}, exec.args)
}

func TestRunREPL_UsageAndQuit(t *testing.T) {
	exec := &fakeExec{loggedIn: true}
	printed := runLines(exec, "project\nstatus t1\nchat\nfoobar\n\nquit\n")

	require.Empty(t, exec.calls)
	require.Contains(t, printed, "Usage: project <id>")
	require.Contains(t, printed, "Usage: status <id> <status>")
	require.Contains(t, printed, "Unknown command: foobar")
	require.Contains(t, printed, "Bye!")
}

func TestRunREPL_StopsOnEOF(t *testing.T) {
	exec := &fakeExec{}
	runLines(exec, "projects")

	require.Equal(t, []string{"projects"}, exec.calls)
}

func TestRunREPL_PrintsCommandErrors(t *testing.T) {
	exec := &fakeExec{err: fmt.Errorf("list: %w", store.ErrUnauthenticated)}
	printed := runLines(exec, "projects\ntasks\n")

	require.Equal(t, []string{"projects", "tasks"}, exec.calls)
	require.Contains(t, printed, "Error: please log in first")

	exec.err = errors.New("boom")
	require.Contains(t, runLines(exec, "prefs\n"), "Error: boom")
}
