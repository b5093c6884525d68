package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/agentdeck/internal/models"
)

const taskPageSize = 20

// nowFn stamps the opening message of a new task.
var nowFn = func() time.Time { return time.Now().UTC() }

func (a *App) ListTasks(ctx context.Context, projectID string) error {
	return a.protected(ctx, func(ctx context.Context) error {
		var filter *string
		if projectID != "" {
			filter = &projectID
		}
		limit := taskPageSize
		tasks, err := a.data.ListTasks(ctx, filter, models.ListOptions{Limit: &limit})
		if err != nil {
			return err
		}
		if len(tasks) == 0 {
			fmt.Fprintln(a.out, "No tasks")
			return nil
		}
		for _, t := range tasks {
			fmt.Fprintf(a.out, "%s  %-9s %s@%s (%s)\n", t.ID, t.Status, t.RepoURL, t.TargetBranch, t.Agent)
		}
		return nil
	})
}

// AddTask prompts for the task's repository, branch, agent and opening
// prompt. Empty branch and agent fall back to the defaults.
func (a *App) AddTask(ctx context.Context) error {
	return a.protected(ctx, func(ctx context.Context) error {
		projectID, err := getSimpleText(a.reader, "Project id (optional)", a.out)
		if err != nil {
			return err
		}
		repoURL, err := getSimpleText(a.reader, "Repository URL", a.out)
		if err != nil {
			return err
		}
		branch, err := getSimpleText(a.reader, "Target branch [main]", a.out)
		if err != nil {
			return err
		}
		agent, err := getSimpleText(a.reader, "Agent [claude]", a.out)
		if err != nil {
			return err
		}
		prompt, err := getMultiline(a.reader, "Prompt", a.out)
		if err != nil {
			return err
		}

		nt := models.NewTask{RepoURL: repoURL, TargetBranch: branch, Agent: agent}
		if projectID != "" {
			nt.ProjectID = &projectID
		}
		if prompt != "" {
			nt.ChatMessages = []models.ChatMessage{{Role: "user", Content: prompt, Timestamp: nowFn()}}
		}

		t, err := a.data.CreateTask(ctx, nt)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Created task %s (%s)\n", t.ID, t.Status)
		return nil
	})
}

func (a *App) ShowTask(ctx context.Context, id string) error {
	return a.protected(ctx, func(ctx context.Context) error {
		t, err := a.data.GetTask(ctx, id)
		if err != nil {
			return err
		}
		if t == nil {
			fmt.Fprintln(a.out, "Task not found")
			return nil
		}
		a.printTask(t)
		return nil
	})
}

func (a *App) SetTaskStatus(ctx context.Context, id, status string) error {
	return a.protected(ctx, func(ctx context.Context) error {
		s := models.TaskStatus(status)
		if !s.Valid() {
			return fmt.Errorf("unknown status %q", status)
		}
		t, err := a.data.UpdateTask(ctx, id, models.TaskUpdate{Status: &s})
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Task %s is now %s\n", t.ID, t.Status)
		return nil
	})
}

// Chat appends a user message to the task's conversation.
func (a *App) Chat(ctx context.Context, id string) error {
	return a.protected(ctx, func(ctx context.Context) error {
		content, err := getMultiline(a.reader, "Message", a.out)
		if err != nil {
			return err
		}
		if content == "" {
			return nil
		}
		t, err := a.data.AddChatMessage(ctx, id, "user", content)
		if err != nil {
			return err
		}
		if t == nil {
			fmt.Fprintln(a.out, "Task not found")
			return nil
		}
		fmt.Fprintf(a.out, "%d messages\n", len(t.ChatMessages))
		return nil
	})
}

func (a *App) printTask(t *models.Task) {
	fmt.Fprintf(a.out, "%s  %s\n  repo: %s@%s\n  agent: %s\n", t.ID, t.Status, t.RepoURL, t.TargetBranch, t.Agent)
	if t.StartedAt != nil {
		fmt.Fprintf(a.out, "  started: %s\n", t.StartedAt.Format("2006-01-02 15:04"))
	}
	if t.CompletedAt != nil {
		fmt.Fprintf(a.out, "  completed: %s\n", t.CompletedAt.Format("2006-01-02 15:04"))
	}
	for _, m := range t.ChatMessages {
		fmt.Fprintf(a.out, "  [%s] %s\n", m.Role, m.Content)
	}
}
