package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/agentdeck/internal/client/localdb"
	"github.com/dmitrijs2005/agentdeck/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/agentdeck/internal/client/tokenstore"
	"github.com/dmitrijs2005/agentdeck/internal/common"
	"github.com/dmitrijs2005/agentdeck/internal/logging"
	"github.com/dmitrijs2005/agentdeck/internal/models"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---- fakes ----

type fakeIdentity struct{ id string }

func (f fakeIdentity) Identity(context.Context) (string, bool) {
	return f.id, f.id != ""
}

type fakePrefs struct {
	got map[string]any
	err error
}

func (f *fakePrefs) SetPreferences(_ context.Context, p map[string]any) error {
	f.got = p
	return f.err
}

// fakeRemote answers every call with err when set, otherwise with canned
// values, and records what it was asked. Rows listed in owners are visible
// only to their owner, the way the PostgreSQL queries scope them.
type fakeRemote struct {
	err    error
	calls  []string
	owners map[string]string

	projects []models.Project
	tasks    []models.Task

	lastUserID     string
	lastNewProject models.NewProject
	lastNewTask    models.NewTask
	lastTaskUpdate models.TaskUpdate
	lastMessage    models.ChatMessage
	lastProjectID  *string
	lastOpts       models.ListOptions
}

func (f *fakeRemote) record(name string) { f.calls = append(f.calls, name) }

// check records the call and returns the error the row lookup ends in.
func (f *fakeRemote) check(name, userID, id string) error {
	f.record(name)
	f.lastUserID = userID
	if f.err != nil {
		return f.err
	}
	if owner, ok := f.owners[id]; ok && owner != userID {
		return common.ErrorNotFound
	}
	return nil
}

func (f *fakeRemote) ListProjects(_ context.Context, userID string) Result[[]models.Project] {
	f.record("ListProjects")
	f.lastUserID = userID
	if f.err != nil {
		return Fail[[]models.Project](f.err)
	}
	return Ok(f.projects)
}

func (f *fakeRemote) CreateProject(_ context.Context, userID string, p models.NewProject) Result[*models.Project] {
	f.record("CreateProject")
	f.lastUserID = userID
	f.lastNewProject = p
	if f.err != nil {
		return Fail[*models.Project](f.err)
	}
	return Ok(&models.Project{ID: "p1", UserID: userID, Name: p.Name, IsActive: true})
}

func (f *fakeRemote) GetProject(_ context.Context, userID, id string) Result[*models.Project] {
	if err := f.check("GetProject", userID, id); err != nil {
		return Fail[*models.Project](err)
	}
	return Ok(&models.Project{ID: id, UserID: userID})
}

func (f *fakeRemote) UpdateProject(_ context.Context, userID, id string, _ models.ProjectUpdate, at time.Time) Result[*models.Project] {
	if err := f.check("UpdateProject", userID, id); err != nil {
		return Fail[*models.Project](err)
	}
	return Ok(&models.Project{ID: id, UserID: userID, UpdatedAt: at})
}

func (f *fakeRemote) DeleteProject(_ context.Context, userID, id string) Result[struct{}] {
	if err := f.check("DeleteProject", userID, id); err != nil {
		return Fail[struct{}](err)
	}
	return Ok(struct{}{})
}

func (f *fakeRemote) ListTasks(_ context.Context, userID string, projectID *string, opts models.ListOptions) Result[[]models.Task] {
	f.record("ListTasks")
	f.lastUserID = userID
	f.lastProjectID = projectID
	f.lastOpts = opts
	if f.err != nil {
		return Fail[[]models.Task](f.err)
	}
	return Ok(f.tasks)
}

func (f *fakeRemote) CreateTask(_ context.Context, userID string, t models.NewTask) Result[*models.Task] {
	f.record("CreateTask")
	f.lastUserID = userID
	f.lastNewTask = t
	if f.err != nil {
		return Fail[*models.Task](f.err)
	}
	return Ok(&models.Task{ID: "t1", UserID: userID, TargetBranch: t.TargetBranch, Agent: t.Agent, Status: models.TaskPending})
}

func (f *fakeRemote) GetTask(_ context.Context, userID, id string) Result[*models.Task] {
	if err := f.check("GetTask", userID, id); err != nil {
		return Fail[*models.Task](err)
	}
	return Ok(&models.Task{ID: id, UserID: userID})
}

func (f *fakeRemote) UpdateTask(_ context.Context, userID, id string, upd models.TaskUpdate) Result[*models.Task] {
	f.lastTaskUpdate = upd
	if err := f.check("UpdateTask", userID, id); err != nil {
		return Fail[*models.Task](err)
	}
	return Ok(&models.Task{ID: id, UserID: userID})
}

func (f *fakeRemote) AppendChatMessage(_ context.Context, userID, id string, msg models.ChatMessage, _ time.Time) Result[*models.Task] {
	f.lastMessage = msg
	if err := f.check("AppendChatMessage", userID, id); err != nil {
		return Fail[*models.Task](err)
	}
	return Ok(&models.Task{ID: id, UserID: userID, ChatMessages: []models.ChatMessage{msg}})
}

func (f *fakeRemote) GetProfile(_ context.Context, userID string) Result[*models.Profile] {
	f.record("GetProfile")
	if f.err != nil {
		return Fail[*models.Profile](f.err)
	}
	return Ok(&models.Profile{UserID: userID, Preferences: map[string]any{"theme": "dark"}})
}

func (f *fakeRemote) UpsertProfile(_ context.Context, userID string, prefs map[string]any) Result[*models.Profile] {
	f.record("UpsertProfile")
	if f.err != nil {
		return Fail[*models.Profile](f.err)
	}
	return Ok(&models.Profile{UserID: userID, Preferences: prefs})
}

// ---- helpers ----

var fixedNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func newLocal(prefs PreferenceCache) *DataStore {
	s := NewDataStore(NewModeResolver(FromSettings("", "")), nil, fakeIdentity{}, prefs, logging.Discard())
	s.now = func() time.Time { return fixedNow }
	return s
}

func newConfigured(remote Remote, userID string) *DataStore {
	s := NewDataStore(NewModeResolver(FromSettings("postgres://db", "key")), remote, fakeIdentity{id: userID}, &fakePrefs{}, logging.Discard())
	s.now = func() time.Time { return fixedNow }
	return s
}

func intPtr(i int) *int { return &i }
func strPtr(s string) *string { return &s }

// ---- local mode ----

func TestLocal_ReadsAreEmptyForAnyInput(t *testing.T) {
	s := newLocal(&fakePrefs{})
	ctx := context.Background()

	projects, err := s.ListProjects(ctx)
	require.NoError(t, err)
	assert.NotNil(t, projects)
	assert.Empty(t, projects)

	inputs := []struct {
		projectID *string
		opts      models.ListOptions
	}{
		{nil, models.ListOptions{}},
		{strPtr("p1"), models.ListOptions{Limit: intPtr(10), Offset: intPtr(5)}},
		{strPtr(""), models.ListOptions{Limit: intPtr(-1), Offset: intPtr(-3)}},
	}
	for _, in := range inputs {
		tasks, err := s.ListTasks(ctx, in.projectID, in.opts)
		require.NoError(t, err)
		assert.NotNil(t, tasks)
		assert.Empty(t, tasks)
	}

	p, err := s.GetProject(ctx, "p1")
	assert.NoError(t, err)
	assert.Nil(t, p)

	task, err := s.GetTask(ctx, "t1")
	assert.NoError(t, err)
	assert.Nil(t, task)

	prof, err := s.GetUserProfile(ctx)
	assert.NoError(t, err)
	assert.Nil(t, prof)
}

func TestLocal_WritesAreUnavailable(t *testing.T) {
	s := newLocal(&fakePrefs{})
	ctx := context.Background()

	_, err := s.CreateProject(ctx, models.NewProject{Name: "x"})
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.EqualError(t, err, "Database not available in local development mode")

	_, err = s.UpdateProject(ctx, "p1", models.ProjectUpdate{})
	assert.ErrorIs(t, err, ErrStoreUnavailable)

	assert.ErrorIs(t, s.DeleteProject(ctx, "p1"), ErrStoreUnavailable)

	_, err = s.CreateTask(ctx, models.NewTask{})
	assert.ErrorIs(t, err, ErrStoreUnavailable)

	_, err = s.UpdateTask(ctx, "t1", models.TaskUpdate{})
	assert.ErrorIs(t, err, ErrStoreUnavailable)

	_, err = s.AddChatMessage(ctx, "t1", "user", "hi")
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}

func TestLocal_UpdateUserProfileCachesPreferences(t *testing.T) {
	db, err := localdb.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	defer db.Close()
	cache := tokenstore.New(metadata.NewSQLiteRepository(db))

	s := newLocal(cache)
	prefs := map[string]any{"theme": "dark", "font_size": float64(14)}

	prof, err := s.UpdateUserProfile(context.Background(), prefs)
	require.NoError(t, err)
	assert.Equal(t, &models.Profile{Preferences: prefs}, prof)

	stored, err := cache.Preferences(context.Background())
	require.NoError(t, err)
	assert.Equal(t, prefs, stored)
}

func TestLocal_UpdateUserProfileCacheFailure(t *testing.T) {
	s := newLocal(&fakePrefs{err: errors.New("disk full")})

	_, err := s.UpdateUserProfile(context.Background(), map[string]any{"a": 1})
	assert.ErrorContains(t, err, "cache preferences: disk full")
}

func TestModeResolver_DetectsOnce(t *testing.T) {
	calls := 0
	r := NewModeResolver(func() Mode {
		calls++
		return ModeConfigured
	})

	for i := 0; i < 3; i++ {
		assert.Equal(t, ModeConfigured, r.Mode())
		assert.True(t, r.Configured())
	}
	assert.Equal(t, 1, calls)
}

func TestFromSettings(t *testing.T) {
	assert.Equal(t, ModeConfigured, FromSettings("u", "k")())
	assert.Equal(t, ModeLocal, FromSettings("u", "")())
	assert.Equal(t, ModeLocal, FromSettings("", "k")())
	assert.Equal(t, "configured", ModeConfigured.String())
	assert.Equal(t, "local", ModeLocal.String())
}

// ---- configured mode ----

func TestConfigured_ListsDegradeOnFault(t *testing.T) {
	remote := &fakeRemote{err: errors.New("connection reset")}
	s := newConfigured(remote, "u1")
	ctx := context.Background()

	projects, err := s.ListProjects(ctx)
	require.NoError(t, err)
	assert.Empty(t, projects)

	tasks, err := s.ListTasks(ctx, nil, models.ListOptions{})
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestConfigured_ListsWithoutIdentityAreEmpty(t *testing.T) {
	remote := &fakeRemote{projects: []models.Project{{ID: "p1"}}}
	s := newConfigured(remote, "")
	ctx := context.Background()

	projects, err := s.ListProjects(ctx)
	require.NoError(t, err)
	assert.Empty(t, projects)

	tasks, err := s.ListTasks(ctx, nil, models.ListOptions{})
	require.NoError(t, err)
	assert.Empty(t, tasks)
	assert.Empty(t, remote.calls)
}

func TestConfigured_ListTasksPassesFilter(t *testing.T) {
	remote := &fakeRemote{tasks: []models.Task{{ID: "t2"}, {ID: "t1"}}}
	s := newConfigured(remote, "u1")
	opts := models.ListOptions{Limit: intPtr(2), Offset: intPtr(4)}

	tasks, err := s.ListTasks(context.Background(), strPtr("p1"), opts)
	require.NoError(t, err)
	assert.Len(t, tasks, 2)
	assert.Equal(t, "u1", remote.lastUserID)
	assert.Equal(t, "p1", *remote.lastProjectID)
	assert.Equal(t, opts, remote.lastOpts)
}

func TestConfigured_CreateProjectInjectsOwner(t *testing.T) {
	remote := &fakeRemote{}
	s := newConfigured(remote, "owner-1")

	p, err := s.CreateProject(context.Background(), models.NewProject{Name: "deck"})
	require.NoError(t, err)
	assert.Equal(t, "owner-1", p.UserID)
	assert.Equal(t, "owner-1", remote.lastUserID)
	assert.Equal(t, map[string]any{}, remote.lastNewProject.Settings)
}

func TestConfigured_IdentityBoundWritesNeedUser(t *testing.T) {
	remote := &fakeRemote{}
	s := newConfigured(remote, "")
	ctx := context.Background()

	_, err := s.CreateProject(ctx, models.NewProject{Name: "deck"})
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = s.CreateTask(ctx, models.NewTask{})
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = s.UpdateProject(ctx, "p1", models.ProjectUpdate{})
	assert.ErrorIs(t, err, ErrUnauthenticated)

	assert.ErrorIs(t, s.DeleteProject(ctx, "p1"), ErrUnauthenticated)

	_, err = s.UpdateTask(ctx, "t1", models.TaskUpdate{})
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = s.AddChatMessage(ctx, "t1", "user", "hi")
	assert.ErrorIs(t, err, ErrUnauthenticated)

	p, err := s.GetProject(ctx, "p1")
	assert.NoError(t, err)
	assert.Nil(t, p)

	task, err := s.GetTask(ctx, "t1")
	assert.NoError(t, err)
	assert.Nil(t, task)

	prof, err := s.GetUserProfile(ctx)
	assert.NoError(t, err)
	assert.Nil(t, prof)

	prof, err = s.UpdateUserProfile(ctx, map[string]any{"a": 1})
	assert.NoError(t, err)
	assert.Nil(t, prof)

	assert.Empty(t, remote.calls)
}

func TestConfigured_GetAbsentOnNotFound(t *testing.T) {
	remote := &fakeRemote{err: common.ErrorNotFound}
	s := newConfigured(remote, "u1")
	ctx := context.Background()

	p, err := s.GetProject(ctx, "missing")
	assert.NoError(t, err)
	assert.Nil(t, p)

	task, err := s.GetTask(ctx, "missing")
	assert.NoError(t, err)
	assert.Nil(t, task)

	task, err = s.AddChatMessage(ctx, "missing", "user", "hi")
	assert.NoError(t, err)
	assert.Nil(t, task)
}

func TestConfigured_FaultsPropagate(t *testing.T) {
	cause := errors.New("permission denied")
	remote := &fakeRemote{err: cause}
	s := newConfigured(remote, "u1")
	ctx := context.Background()

	check := func(err error) {
		t.Helper()
		assert.ErrorIs(t, err, ErrStoreFault)
		assert.ErrorIs(t, err, cause)
	}

	_, err := s.GetProject(ctx, "p1")
	check(err)
	_, err = s.GetTask(ctx, "t1")
	check(err)
	_, err = s.CreateProject(ctx, models.NewProject{})
	check(err)
	_, err = s.UpdateProject(ctx, "p1", models.ProjectUpdate{})
	check(err)
	check(s.DeleteProject(ctx, "p1"))
	_, err = s.CreateTask(ctx, models.NewTask{})
	check(err)
	_, err = s.UpdateTask(ctx, "t1", models.TaskUpdate{})
	check(err)
	_, err = s.AddChatMessage(ctx, "t1", "user", "hi")
	check(err)
	_, err = s.GetUserProfile(ctx)
	check(err)
	_, err = s.UpdateUserProfile(ctx, map[string]any{})
	check(err)
}

func TestConfigured_RowsOfOtherUsersAreUnreachable(t *testing.T) {
	remote := &fakeRemote{owners: map[string]string{"p1": "u1", "t1": "u1"}}
	ctx := context.Background()

	owner := newConfigured(remote, "u1")
	task, err := owner.GetTask(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "u1", task.UserID)

	other := newConfigured(remote, "u2")

	p, err := other.GetProject(ctx, "p1")
	assert.NoError(t, err)
	assert.Nil(t, p)

	task, err = other.GetTask(ctx, "t1")
	assert.NoError(t, err)
	assert.Nil(t, task)

	task, err = other.AddChatMessage(ctx, "t1", "user", "hi")
	assert.NoError(t, err)
	assert.Nil(t, task)
	assert.Equal(t, "u2", remote.lastUserID)

	_, err = other.UpdateTask(ctx, "t1", models.TaskUpdate{})
	assert.ErrorIs(t, err, common.ErrorNotFound)

	_, err = other.UpdateProject(ctx, "p1", models.ProjectUpdate{})
	assert.ErrorIs(t, err, common.ErrorNotFound)

	err = other.DeleteProject(ctx, "p1")
	assert.ErrorIs(t, err, ErrStoreFault)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestConfigured_StrictNotFoundIsAFault(t *testing.T) {
	s := newConfigured(&fakeRemote{err: common.ErrorNotFound}, "u1")

	err := s.DeleteProject(context.Background(), "gone")
	assert.ErrorIs(t, err, ErrStoreFault)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestConfigured_CreateTaskDefaults(t *testing.T) {
	remote := &fakeRemote{}
	s := newConfigured(remote, "u1")

	task, err := s.CreateTask(context.Background(), models.NewTask{RepoURL: "https://github.com/a/b"})
	require.NoError(t, err)
	assert.Equal(t, models.TaskPending, task.Status)

	want := models.NewTask{
		RepoURL:      "https://github.com/a/b",
		TargetBranch: "main",
		Agent:        "claude",
		ChatMessages: []models.ChatMessage{},
	}
	if diff := cmp.Diff(want, remote.lastNewTask); diff != "" {
		t.Errorf("new task mismatch (-want +got):\n%s", diff)
	}
}

func TestConfigured_UpdateTaskStamps(t *testing.T) {
	status := func(s models.TaskStatus) *models.TaskStatus { return &s }
	earlier := fixedNow.Add(-time.Hour)

	tests := []struct {
		name          string
		upd           models.TaskUpdate
		wantStarted   *time.Time
		wantCompleted *time.Time
	}{
		{"no status", models.TaskUpdate{}, nil, nil},
		{"pending", models.TaskUpdate{Status: status(models.TaskPending)}, nil, nil},
		{"running", models.TaskUpdate{Status: status(models.TaskRunning)}, &fixedNow, nil},
		{"running keeps caller start", models.TaskUpdate{Status: status(models.TaskRunning), StartedAt: &earlier}, &earlier, nil},
		{"completed", models.TaskUpdate{Status: status(models.TaskCompleted)}, nil, &fixedNow},
		{"failed", models.TaskUpdate{Status: status(models.TaskFailed)}, nil, &fixedNow},
		{"cancelled keeps caller end", models.TaskUpdate{Status: status(models.TaskCancelled), CompletedAt: &earlier}, nil, &earlier},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			remote := &fakeRemote{}
			s := newConfigured(remote, "u1")

			_, err := s.UpdateTask(context.Background(), "t1", tt.upd)
			require.NoError(t, err)

			got := remote.lastTaskUpdate
			assert.Equal(t, tt.wantStarted, got.StartedAt)
			assert.Equal(t, tt.wantCompleted, got.CompletedAt)
			assert.Equal(t, fixedNow, got.UpdatedAt)
		})
	}
}

func TestConfigured_AddChatMessage(t *testing.T) {
	remote := &fakeRemote{}
	s := newConfigured(remote, "u1")

	task, err := s.AddChatMessage(context.Background(), "t1", "assistant", "done")
	require.NoError(t, err)
	require.Len(t, task.ChatMessages, 1)
	assert.Equal(t, models.ChatMessage{Role: "assistant", Content: "done", Timestamp: fixedNow}, remote.lastMessage)
}

func TestConfigured_Profile(t *testing.T) {
	remote := &fakeRemote{}
	s := newConfigured(remote, "u1")
	ctx := context.Background()

	prof, err := s.GetUserProfile(ctx)
	require.NoError(t, err)
	assert.Equal(t, "u1", prof.UserID)

	prefs := map[string]any{"theme": "light"}
	prof, err = s.UpdateUserProfile(ctx, prefs)
	require.NoError(t, err)
	assert.Equal(t, prefs, prof.Preferences)
}

func TestPolicies_CoverEveryOperation(t *testing.T) {
	ops := []Op{
		OpListProjects, OpCreateProject, OpGetProject, OpUpdateProject, OpDeleteProject,
		OpListTasks, OpCreateTask, OpGetTask, OpUpdateTask, OpAddChatMessage,
		OpGetUserProfile, OpUpdateUserProfile,
	}
	assert.Len(t, Policies, len(ops))
	for _, op := range ops {
		_, ok := Policies[op]
		assert.True(t, ok, "no policy for %s", op)
	}

	assert.Equal(t, BestEffort, Policies[OpListProjects])
	assert.Equal(t, BestEffort, Policies[OpListTasks])
	assert.Equal(t, AbsentOnNotFound, Policies[OpGetProject])
	assert.Equal(t, AbsentOnNotFound, Policies[OpGetTask])
	assert.Equal(t, Strict, Policies[OpUpdateProject])
	assert.Equal(t, Strict, Policies[OpDeleteProject])
	assert.Equal(t, Strict, policyFor(Op("unknown")))
}

func TestResult(t *testing.T) {
	r := From(5, nil)
	assert.Equal(t, 5, r.Value)
	assert.NoError(t, r.Err)

	nf := From(0, common.ErrorNotFound)
	assert.True(t, nf.NotFound())

	other := Fail[int](errors.New("x"))
	assert.False(t, other.NotFound())
}
