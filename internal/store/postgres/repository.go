package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/agentdeck/internal/common"
	"github.com/dmitrijs2005/agentdeck/internal/dbx"
	"github.com/dmitrijs2005/agentdeck/internal/models"
	"github.com/dmitrijs2005/agentdeck/internal/store"
	"github.com/google/uuid"
)

// Conn is what the repository needs from a database handle. *sql.DB
// satisfies it.
type Conn interface {
	dbx.DBTX
	dbx.TxBeginner
}

type Repository struct {
	db    Conn
	newID func() string
}

var _ store.Remote = (*Repository)(nil)

func NewRepository(db Conn) *Repository {
	return &Repository{db: db, newID: uuid.NewString}
}

const projectColumns = `id, user_id, name, description, repo_url, repo_name, repo_owner, settings, is_active, created_at, updated_at`

const taskColumns = `id, user_id, project_id, repo_url, target_branch, agent, status, chat_messages, execution_metadata, created_at, updated_at, started_at, completed_at`

type scanner interface {
	Scan(dest ...any) error
}

// notFound maps sql.ErrNoRows to common.ErrorNotFound.
func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return common.ErrorNotFound
	}
	return fmt.Errorf("db error: %w", err)
}

func scanProject(s scanner, extra ...any) (*models.Project, error) {
	var (
		p        models.Project
		settings []byte
	)
	dest := append([]any{
		&p.ID, &p.UserID, &p.Name, &p.Description, &p.RepoURL, &p.RepoName, &p.RepoOwner,
		&settings, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	}, extra...)
	if err := s.Scan(dest...); err != nil {
		return nil, err
	}
	if err := decodeJSON(settings, &p.Settings); err != nil {
		return nil, fmt.Errorf("decode project settings: %w", err)
	}
	return &p, nil
}

func scanTask(s scanner) (*models.Task, error) {
	var (
		t         models.Task
		projectID sql.NullString
		messages  []byte
		metadata  []byte
		started   sql.NullTime
		completed sql.NullTime
	)
	if err := s.Scan(
		&t.ID, &t.UserID, &projectID, &t.RepoURL, &t.TargetBranch, &t.Agent, &t.Status,
		&messages, &metadata, &t.CreatedAt, &t.UpdatedAt, &started, &completed,
	); err != nil {
		return nil, err
	}
	if projectID.Valid {
		t.ProjectID = &projectID.String
	}
	if started.Valid {
		t.StartedAt = &started.Time
	}
	if completed.Valid {
		t.CompletedAt = &completed.Time
	}
	if err := decodeJSON(messages, &t.ChatMessages); err != nil {
		return nil, fmt.Errorf("decode chat messages: %w", err)
	}
	if err := decodeJSON(metadata, &t.ExecutionMetadata); err != nil {
		return nil, fmt.Errorf("decode execution metadata: %w", err)
	}
	return &t, nil
}

func decodeJSON(b []byte, v any) error {
	if len(b) == 0 {
		return nil
	}
	return json.Unmarshal(b, v)
}

// encodeJSON returns nil for a nil value so that COALESCE keeps the column.
func encodeJSON[T any](v T, isNil bool) (any, error) {
	if isNil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// ListProjects returns userID's projects, newest first, with task counters
// derived from one LEFT JOIN row per task.
func (r *Repository) ListProjects(ctx context.Context, userID string) store.Result[[]models.Project] {
	query := `
		SELECT p.id, p.user_id, p.name, p.description, p.repo_url, p.repo_name, p.repo_owner,
		       p.settings, p.is_active, p.created_at, p.updated_at, t.status
		FROM projects p
		LEFT JOIN tasks t ON t.project_id = p.id
		WHERE p.user_id = $1
		ORDER BY p.created_at DESC, p.id
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return store.Fail[[]models.Project](fmt.Errorf("failed to select projects: %w", err))
	}
	defer rows.Close()

	var joined []projectRow
	for rows.Next() {
		var status sql.NullString
		p, err := scanProject(rows, &status)
		if err != nil {
			return store.Fail[[]models.Project](err)
		}
		joined = append(joined, projectRow{project: *p, status: status})
	}
	if err := rows.Err(); err != nil {
		return store.Fail[[]models.Project](err)
	}
	return store.Ok(deriveCounters(joined))
}

type projectRow struct {
	project models.Project
	status  sql.NullString
}

// deriveCounters folds joined rows into one project each, keeping the
// order in which projects first appear. A NULL status is a project with no
// tasks.
func deriveCounters(rows []projectRow) []models.Project {
	result := []models.Project{}
	index := make(map[string]int)

	for _, row := range rows {
		i, ok := index[row.project.ID]
		if !ok {
			i = len(result)
			index[row.project.ID] = i
			result = append(result, row.project)
		}
		if !row.status.Valid {
			continue
		}
		p := &result[i]
		p.TaskCount++
		switch models.TaskStatus(row.status.String) {
		case models.TaskCompleted:
			p.CompletedTasks++
		case models.TaskRunning:
			p.ActiveTasks++
		}
	}
	return result
}

func (r *Repository) CreateProject(ctx context.Context, userID string, np models.NewProject) store.Result[*models.Project] {
	if np.Settings == nil {
		np.Settings = map[string]any{}
	}
	settings, err := encodeJSON(np.Settings, false)
	if err != nil {
		return store.Fail[*models.Project](fmt.Errorf("encode settings: %w", err))
	}

	query := `
		INSERT INTO projects (id, user_id, name, description, repo_url, repo_name, repo_owner, settings, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8::jsonb, TRUE)
		RETURNING ` + projectColumns

	row := r.db.QueryRowContext(ctx, query,
		r.newID(), userID, np.Name, np.Description, np.RepoURL, np.RepoName, np.RepoOwner, settings)
	p, err := scanProject(row)
	if err != nil {
		return store.Fail[*models.Project](fmt.Errorf("db error: %w", err))
	}
	return store.Ok(p)
}

func (r *Repository) GetProject(ctx context.Context, userID, id string) store.Result[*models.Project] {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1 AND user_id = $2`

	p, err := scanProject(r.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		return store.Fail[*models.Project](notFound(err))
	}
	return store.Ok(p)
}

// UpdateProject changes the fields set in upd and stamps updated_at.
func (r *Repository) UpdateProject(ctx context.Context, userID, id string, upd models.ProjectUpdate, at time.Time) store.Result[*models.Project] {
	settings, err := encodeJSON(upd.Settings, upd.Settings == nil)
	if err != nil {
		return store.Fail[*models.Project](fmt.Errorf("encode settings: %w", err))
	}

	query := `
		UPDATE projects SET
			name        = COALESCE($2, name),
			description = COALESCE($3, description),
			repo_url    = COALESCE($4, repo_url),
			settings    = COALESCE($5::jsonb, settings),
			is_active   = COALESCE($6, is_active),
			updated_at  = $7
		WHERE id = $1 AND user_id = $8
		RETURNING ` + projectColumns

	row := r.db.QueryRowContext(ctx, query,
		id, nullable(upd.Name), nullable(upd.Description), nullable(upd.RepoURL), settings, nullable(upd.IsActive), at, userID)
	p, err := scanProject(row)
	if err != nil {
		return store.Fail[*models.Project](notFound(err))
	}
	return store.Ok(p)
}

func (r *Repository) DeleteProject(ctx context.Context, userID, id string) store.Result[struct{}] {
	res, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return store.Fail[struct{}](fmt.Errorf("db error: %w", err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return store.Fail[struct{}](fmt.Errorf("rows affected error: %w", err))
	}
	if n == 0 {
		return store.Fail[struct{}](common.ErrorNotFound)
	}
	return store.Ok(struct{}{})
}

// ListTasks returns userID's tasks, newest first. Negative limit or offset
// values are ignored.
func (r *Repository) ListTasks(ctx context.Context, userID string, projectID *string, opts models.ListOptions) store.Result[[]models.Task] {
	var b strings.Builder
	args := []any{userID}

	b.WriteString(`SELECT ` + taskColumns + ` FROM tasks WHERE user_id = $1`)
	if projectID != nil {
		args = append(args, *projectID)
		fmt.Fprintf(&b, ` AND project_id = $%d`, len(args))
	}
	b.WriteString(` ORDER BY created_at DESC`)
	if opts.Limit != nil && *opts.Limit >= 0 {
		args = append(args, *opts.Limit)
		fmt.Fprintf(&b, ` LIMIT $%d`, len(args))
	}
	if opts.Offset != nil && *opts.Offset > 0 {
		args = append(args, *opts.Offset)
		fmt.Fprintf(&b, ` OFFSET $%d`, len(args))
	}

	rows, err := r.db.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return store.Fail[[]models.Task](fmt.Errorf("failed to select tasks: %w", err))
	}
	defer rows.Close()

	result := []models.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return store.Fail[[]models.Task](err)
		}
		result = append(result, *t)
	}
	if err := rows.Err(); err != nil {
		return store.Fail[[]models.Task](err)
	}
	return store.Ok(result)
}

// CreateTask inserts a pending task and, when it belongs to a project,
// bumps the project's updated_at in the same transaction. A project not
// owned by userID rolls the insert back with common.ErrorNotFound.
func (r *Repository) CreateTask(ctx context.Context, userID string, nt models.NewTask) store.Result[*models.Task] {
	if nt.ChatMessages == nil {
		nt.ChatMessages = []models.ChatMessage{}
	}
	messages, err := encodeJSON(nt.ChatMessages, false)
	if err != nil {
		return store.Fail[*models.Task](fmt.Errorf("encode chat messages: %w", err))
	}

	var task *models.Task
	err = dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		query := `
			INSERT INTO tasks (id, user_id, project_id, repo_url, target_branch, agent, status, chat_messages, execution_metadata)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8::jsonb, '{}'::jsonb)
			RETURNING ` + taskColumns

		row := tx.QueryRowContext(ctx, query,
			r.newID(), userID, nullable(nt.ProjectID), nt.RepoURL, nt.TargetBranch, nt.Agent, string(models.TaskPending), messages)
		t, err := scanTask(row)
		if err != nil {
			return fmt.Errorf("db error: %w", err)
		}

		if nt.ProjectID != nil {
			res, err := tx.ExecContext(ctx, `UPDATE projects SET updated_at = $2 WHERE id = $1 AND user_id = $3`, *nt.ProjectID, t.CreatedAt, userID)
			if err != nil {
				return fmt.Errorf("touch project: %w", err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("rows affected error: %w", err)
			}
			if n == 0 {
				return common.ErrorNotFound
			}
		}
		task = t
		return nil
	})
	if err != nil {
		return store.Fail[*models.Task](err)
	}
	return store.Ok(task)
}

func (r *Repository) GetTask(ctx context.Context, userID, id string) store.Result[*models.Task] {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1 AND user_id = $2`

	t, err := scanTask(r.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		return store.Fail[*models.Task](notFound(err))
	}
	return store.Ok(t)
}

func (r *Repository) UpdateTask(ctx context.Context, userID, id string, upd models.TaskUpdate) store.Result[*models.Task] {
	messages, err := encodeJSON(upd.ChatMessages, upd.ChatMessages == nil)
	if err != nil {
		return store.Fail[*models.Task](fmt.Errorf("encode chat messages: %w", err))
	}

	var status any
	if upd.Status != nil {
		status = string(*upd.Status)
	}

	query := `
		UPDATE tasks SET
			status        = COALESCE($2, status),
			chat_messages = COALESCE($3::jsonb, chat_messages),
			started_at    = COALESCE($4, started_at),
			completed_at  = COALESCE($5, completed_at),
			updated_at    = $6
		WHERE id = $1 AND user_id = $7
		RETURNING ` + taskColumns

	row := r.db.QueryRowContext(ctx, query,
		id, status, messages, nullable(upd.StartedAt), nullable(upd.CompletedAt), upd.UpdatedAt, userID)
	t, err := scanTask(row)
	if err != nil {
		return store.Fail[*models.Task](notFound(err))
	}
	return store.Ok(t)
}

// AppendChatMessage appends msg to the task's chat_messages array in one
// statement, so concurrent appends cannot drop each other.
func (r *Repository) AppendChatMessage(ctx context.Context, userID, id string, msg models.ChatMessage, at time.Time) store.Result[*models.Task] {
	payload, err := encodeJSON([]models.ChatMessage{msg}, false)
	if err != nil {
		return store.Fail[*models.Task](fmt.Errorf("encode chat message: %w", err))
	}

	query := `
		UPDATE tasks SET
			chat_messages = chat_messages || $2::jsonb,
			updated_at    = $3
		WHERE id = $1 AND user_id = $4
		RETURNING ` + taskColumns

	t, err := scanTask(r.db.QueryRowContext(ctx, query, id, payload, at, userID))
	if err != nil {
		return store.Fail[*models.Task](notFound(err))
	}
	return store.Ok(t)
}

func (r *Repository) GetProfile(ctx context.Context, userID string) store.Result[*models.Profile] {
	query := `SELECT user_id, preferences FROM user_profiles WHERE user_id = $1`

	p, err := scanProfile(r.db.QueryRowContext(ctx, query, userID))
	if err != nil {
		return store.Fail[*models.Profile](notFound(err))
	}
	return store.Ok(p)
}

func (r *Repository) UpsertProfile(ctx context.Context, userID string, prefs map[string]any) store.Result[*models.Profile] {
	if prefs == nil {
		prefs = map[string]any{}
	}
	payload, err := encodeJSON(prefs, false)
	if err != nil {
		return store.Fail[*models.Profile](fmt.Errorf("encode preferences: %w", err))
	}

	query := `
		INSERT INTO user_profiles (user_id, preferences)
		VALUES ($1, $2::jsonb)
		ON CONFLICT (user_id)
		DO UPDATE SET preferences = EXCLUDED.preferences, updated_at = now()
		RETURNING user_id, preferences
	`
	p, err := scanProfile(r.db.QueryRowContext(ctx, query, userID, payload))
	if err != nil {
		return store.Fail[*models.Profile](fmt.Errorf("db error: %w", err))
	}
	return store.Ok(p)
}

func scanProfile(s scanner) (*models.Profile, error) {
	var (
		p     models.Profile
		prefs []byte
	)
	if err := s.Scan(&p.UserID, &prefs); err != nil {
		return nil, err
	}
	if err := decodeJSON(prefs, &p.Preferences); err != nil {
		return nil, fmt.Errorf("decode preferences: %w", err)
	}
	return &p, nil
}

// nullable turns a nil pointer into SQL NULL and dereferences the rest.
func nullable[T any](v *T) any {
	if v == nil {
		return nil
	}
	return *v
}
