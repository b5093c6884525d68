package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// execIface defines the command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	ListProjects(ctx context.Context) error
	AddProject(ctx context.Context) error
	ShowProject(ctx context.Context, id string) error
	DeleteProject(ctx context.Context, id string) error
	ListTasks(ctx context.Context, projectID string) error
	AddTask(ctx context.Context) error
	ShowTask(ctx context.Context, id string) error
	SetTaskStatus(ctx context.Context, id, status string) error
	Chat(ctx context.Context, id string) error
	ShowPrefs(ctx context.Context) error
	SetPrefs(ctx context.Context) error
}

// runREPL starts a read–eval–print loop for the agentdeck CLI.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on 'a'. The loop exits on EOF or when the user types
// "exit" or "quit". Output goes to out, the same writer the commands use.
// Commands and prompts share reader, so a command that asks
// for more input consumes the lines that follow it.
//
// Commands
//
//	help                     show available commands
//	register | login         create an account / sign in
//	logout | whoami          sign out / show the signed-in user
//	projects                 list projects with task counters
//	addproject               create a project
//	project <id>             show one project
//	rmproject <id>           delete a project
//	tasks [project-id]       list tasks, newest first
//	addtask                  create a task
//	task <id>                show one task with its conversation
//	status <id> <status>     move a task to pending|running|completed|failed|cancelled
//	chat <id>                append a message to a task
//	prefs | setprefs         show / update preferences
//	exit | quit              leave the program
//
// A command's error is printed and the loop carries on.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader, out io.Writer) {
	say := func(args ...any) {
		fmt.Fprintln(out, args...)
	}

	for {
		say(fmt.Sprintf("agentdeck %s > ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var cmdErr error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				say("Available commands: whoami, projects, addproject, project, rmproject, tasks, addtask, task, status, chat, prefs, setprefs, logout, exit")
			} else {
				say("Available commands: register, login, projects, tasks, prefs, exit")
			}

		case "register":
			cmdErr = a.Register(ctx)
		case "login":
			cmdErr = a.Login(ctx)
		case "logout":
			cmdErr = a.Logout(ctx)
		case "whoami":
			cmdErr = a.WhoAmI(ctx)

		case "projects":
			cmdErr = a.ListProjects(ctx)
		case "addproject":
			cmdErr = a.AddProject(ctx)
		case "project", "rmproject":
			if len(args) != 1 {
				say("Usage:", cmd, "<id>")
				continue
			}
			if cmd == "project" {
				cmdErr = a.ShowProject(ctx, args[0])
			} else {
				cmdErr = a.DeleteProject(ctx, args[0])
			}

		case "tasks":
			projectID := ""
			if len(args) > 0 {
				projectID = args[0]
			}
			cmdErr = a.ListTasks(ctx, projectID)
		case "addtask":
			cmdErr = a.AddTask(ctx)
		case "task", "chat":
			if len(args) != 1 {
				say("Usage:", cmd, "<id>")
				continue
			}
			if cmd == "task" {
				cmdErr = a.ShowTask(ctx, args[0])
			} else {
				cmdErr = a.Chat(ctx, args[0])
			}
		case "status":
			if len(args) != 2 {
				say("Usage: status <id> <status>")
				continue
			}
			cmdErr = a.SetTaskStatus(ctx, args[0], args[1])

		case "prefs":
			cmdErr = a.ShowPrefs(ctx)
		case "setprefs":
			cmdErr = a.SetPrefs(ctx)

		case "exit", "quit":
			say("Bye!")
			return

		default:
			say("Unknown command:", cmd)
		}

		if cmdErr != nil {
			say("Error:", describe(cmdErr))
		}
	}
}
