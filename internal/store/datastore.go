// Package store is the dual-mode data access layer. With a remote store
// configured every operation is one query against it; without one, reads
// come back empty and writes fail with ErrStoreUnavailable, except profile
// preferences which are cached locally.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/agentdeck/internal/logging"
	"github.com/dmitrijs2005/agentdeck/internal/models"
)

type DataStore struct {
	mode     *ModeResolver
	remote   Remote
	identity IdentitySource
	prefs    PreferenceCache
	logger   logging.Logger
	now      func() time.Time
}

// NewDataStore wires the layer. remote may be nil when the resolver will
// never report ModeConfigured.
func NewDataStore(mode *ModeResolver, remote Remote, identity IdentitySource, prefs PreferenceCache, logger logging.Logger) *DataStore {
	return &DataStore{
		mode:     mode,
		remote:   remote,
		identity: identity,
		prefs:    prefs,
		logger:   logger.With("component", "store"),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *DataStore) Mode() Mode {
	return s.mode.Mode()
}

func (s *DataStore) local() bool {
	return !s.mode.Configured()
}

func (s *DataStore) ListProjects(ctx context.Context) ([]models.Project, error) {
	if s.local() {
		return []models.Project{}, nil
	}
	userID, ok := s.identity.Identity(ctx)
	if !ok {
		return []models.Project{}, nil
	}

	projects, err := settle(ctx, s, OpListProjects, s.remote.ListProjects(ctx, userID))
	if projects == nil {
		projects = []models.Project{}
	}
	return projects, err
}

// CreateProject inserts p owned by the signed-in user.
func (s *DataStore) CreateProject(ctx context.Context, p models.NewProject) (*models.Project, error) {
	if s.local() {
		return nil, ErrStoreUnavailable
	}
	userID, ok := s.identity.Identity(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}
	if p.Settings == nil {
		p.Settings = map[string]any{}
	}
	return settle(ctx, s, OpCreateProject, s.remote.CreateProject(ctx, userID, p))
}

// GetProject returns nil when the signed-in user has no project with this
// id.
func (s *DataStore) GetProject(ctx context.Context, id string) (*models.Project, error) {
	if s.local() {
		return nil, nil
	}
	userID, ok := s.identity.Identity(ctx)
	if !ok {
		return nil, nil
	}
	return settle(ctx, s, OpGetProject, s.remote.GetProject(ctx, userID, id))
}

func (s *DataStore) UpdateProject(ctx context.Context, id string, upd models.ProjectUpdate) (*models.Project, error) {
	if s.local() {
		return nil, ErrStoreUnavailable
	}
	userID, ok := s.identity.Identity(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}
	return settle(ctx, s, OpUpdateProject, s.remote.UpdateProject(ctx, userID, id, upd, s.now()))
}

func (s *DataStore) DeleteProject(ctx context.Context, id string) error {
	if s.local() {
		return ErrStoreUnavailable
	}
	userID, ok := s.identity.Identity(ctx)
	if !ok {
		return ErrUnauthenticated
	}
	_, err := settle(ctx, s, OpDeleteProject, s.remote.DeleteProject(ctx, userID, id))
	return err
}

// ListTasks lists the signed-in user's tasks, newest first, optionally
// restricted to one project.
func (s *DataStore) ListTasks(ctx context.Context, projectID *string, opts models.ListOptions) ([]models.Task, error) {
	if s.local() {
		return []models.Task{}, nil
	}
	userID, ok := s.identity.Identity(ctx)
	if !ok {
		return []models.Task{}, nil
	}

	tasks, err := settle(ctx, s, OpListTasks, s.remote.ListTasks(ctx, userID, projectID, opts))
	if tasks == nil {
		tasks = []models.Task{}
	}
	return tasks, err
}

func (s *DataStore) CreateTask(ctx context.Context, t models.NewTask) (*models.Task, error) {
	if s.local() {
		return nil, ErrStoreUnavailable
	}
	userID, ok := s.identity.Identity(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}
	if t.TargetBranch == "" {
		t.TargetBranch = models.DefaultTargetBranch
	}
	if t.Agent == "" {
		t.Agent = models.DefaultAgent
	}
	if t.ChatMessages == nil {
		t.ChatMessages = []models.ChatMessage{}
	}
	return settle(ctx, s, OpCreateTask, s.remote.CreateTask(ctx, userID, t))
}

// GetTask returns nil when the signed-in user has no task with this id.
func (s *DataStore) GetTask(ctx context.Context, id string) (*models.Task, error) {
	if s.local() {
		return nil, nil
	}
	userID, ok := s.identity.Identity(ctx)
	if !ok {
		return nil, nil
	}
	return settle(ctx, s, OpGetTask, s.remote.GetTask(ctx, userID, id))
}

// UpdateTask applies upd, stamping started_at when the task starts running
// and completed_at when it reaches a terminal status, unless the caller set
// them.
func (s *DataStore) UpdateTask(ctx context.Context, id string, upd models.TaskUpdate) (*models.Task, error) {
	if s.local() {
		return nil, ErrStoreUnavailable
	}
	userID, ok := s.identity.Identity(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}
	stampTask(&upd, s.now())
	return settle(ctx, s, OpUpdateTask, s.remote.UpdateTask(ctx, userID, id, upd))
}

func stampTask(upd *models.TaskUpdate, now time.Time) {
	if upd.Status != nil {
		switch {
		case *upd.Status == models.TaskRunning && upd.StartedAt == nil:
			upd.StartedAt = &now
		case upd.Status.Terminal() && upd.CompletedAt == nil:
			upd.CompletedAt = &now
		}
	}
	upd.UpdatedAt = now
}

// AddChatMessage appends a message to the task's conversation. It returns
// nil when the task does not exist.
func (s *DataStore) AddChatMessage(ctx context.Context, taskID, role, content string) (*models.Task, error) {
	if s.local() {
		return nil, ErrStoreUnavailable
	}
	userID, ok := s.identity.Identity(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}
	now := s.now()
	msg := models.ChatMessage{Role: role, Content: content, Timestamp: now}
	return settle(ctx, s, OpAddChatMessage, s.remote.AppendChatMessage(ctx, userID, taskID, msg, now))
}

// GetUserProfile returns the signed-in user's profile, or nil when there is
// no store, no identity or no profile yet.
func (s *DataStore) GetUserProfile(ctx context.Context) (*models.Profile, error) {
	if s.local() {
		return nil, nil
	}
	userID, ok := s.identity.Identity(ctx)
	if !ok {
		return nil, nil
	}
	return settle(ctx, s, OpGetUserProfile, s.remote.GetProfile(ctx, userID))
}

// UpdateUserProfile stores preferences. Without a remote store they go to
// the local cache, which is the one write that succeeds in local mode.
func (s *DataStore) UpdateUserProfile(ctx context.Context, prefs map[string]any) (*models.Profile, error) {
	if s.local() {
		if err := s.prefs.SetPreferences(ctx, prefs); err != nil {
			return nil, fmt.Errorf("cache preferences: %w", err)
		}
		return &models.Profile{Preferences: prefs}, nil
	}
	userID, ok := s.identity.Identity(ctx)
	if !ok {
		return nil, nil
	}
	return settle(ctx, s, OpUpdateUserProfile, s.remote.UpsertProfile(ctx, userID, prefs))
}
