package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/agentdeck/internal/models"
)

func (a *App) ListProjects(ctx context.Context) error {
	return a.protected(ctx, func(ctx context.Context) error {
		projects, err := a.data.ListProjects(ctx)
		if err != nil {
			return err
		}
		if len(projects) == 0 {
			fmt.Fprintln(a.out, "No projects")
			return nil
		}
		for _, p := range projects {
			fmt.Fprintf(a.out, "%s  %-24s tasks=%d completed=%d active=%d\n",
				p.ID, p.Name, p.TaskCount, p.CompletedTasks, p.ActiveTasks)
		}
		return nil
	})
}

// AddProject prompts for a name and repository URL. Repository owner and
// name are taken from the URL path when it has the owner/name shape.
func (a *App) AddProject(ctx context.Context) error {
	return a.protected(ctx, func(ctx context.Context) error {
		name, err := getSimpleText(a.reader, "Project name", a.out)
		if err != nil {
			return err
		}
		repoURL, err := getSimpleText(a.reader, "Repository URL", a.out)
		if err != nil {
			return err
		}
		description, err := getSimpleText(a.reader, "Description (optional)", a.out)
		if err != nil {
			return err
		}

		owner, repo := splitRepoURL(repoURL)
		p, err := a.data.CreateProject(ctx, models.NewProject{
			Name:        name,
			Description: description,
			RepoURL:     repoURL,
			RepoName:    repo,
			RepoOwner:   owner,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Created project %s\n", p.ID)
		return nil
	})
}

func (a *App) ShowProject(ctx context.Context, id string) error {
	return a.protected(ctx, func(ctx context.Context) error {
		p, err := a.data.GetProject(ctx, id)
		if err != nil {
			return err
		}
		if p == nil {
			fmt.Fprintln(a.out, "Project not found")
			return nil
		}
		fmt.Fprintf(a.out, "%s\n  id: %s\n  repo: %s\n  description: %s\n  active: %t\n  created: %s\n",
			p.Name, p.ID, p.RepoURL, p.Description, p.IsActive, p.CreatedAt.Format("2006-01-02 15:04"))
		return nil
	})
}

func (a *App) DeleteProject(ctx context.Context, id string) error {
	return a.protected(ctx, func(ctx context.Context) error {
		if err := a.data.DeleteProject(ctx, id); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "Deleted")
		return nil
	})
}

// splitRepoURL returns owner and name from URLs such as
// https://github.com/owner/name(.git).
func splitRepoURL(u string) (owner, name string) {
	u = strings.TrimSuffix(strings.TrimSuffix(u, "/"), ".git")
	parts := strings.Split(u, "/")
	if len(parts) < 2 {
		return "", ""
	}
	return parts[len(parts)-2], parts[len(parts)-1]
}
