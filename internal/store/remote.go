package store

import (
	"context"
	"time"

	"github.com/dmitrijs2005/agentdeck/internal/models"
)

// Remote is the configured-mode backing store. Each method is one logical
// query, scoped to the rows owned by userID. A row owned by someone else is
// reported the same as a missing one: common.ErrorNotFound, which the policy
// layer can tell apart from faults.
type Remote interface {
	ListProjects(ctx context.Context, userID string) Result[[]models.Project]
	CreateProject(ctx context.Context, userID string, p models.NewProject) Result[*models.Project]
	GetProject(ctx context.Context, userID, id string) Result[*models.Project]
	UpdateProject(ctx context.Context, userID, id string, upd models.ProjectUpdate, at time.Time) Result[*models.Project]
	DeleteProject(ctx context.Context, userID, id string) Result[struct{}]

	ListTasks(ctx context.Context, userID string, projectID *string, opts models.ListOptions) Result[[]models.Task]
	CreateTask(ctx context.Context, userID string, t models.NewTask) Result[*models.Task]
	GetTask(ctx context.Context, userID, id string) Result[*models.Task]
	UpdateTask(ctx context.Context, userID, id string, upd models.TaskUpdate) Result[*models.Task]
	AppendChatMessage(ctx context.Context, userID, id string, msg models.ChatMessage, at time.Time) Result[*models.Task]

	GetProfile(ctx context.Context, userID string) Result[*models.Profile]
	UpsertProfile(ctx context.Context, userID string, prefs map[string]any) Result[*models.Profile]
}

// IdentitySource resolves the signed-in user. *authstate.Provider satisfies
// it.
type IdentitySource interface {
	Identity(ctx context.Context) (string, bool)
}

// PreferenceCache is the local slot preferences fall back to while no
// remote store is configured. *tokenstore.Store satisfies it.
type PreferenceCache interface {
	SetPreferences(ctx context.Context, prefs map[string]any) error
}
