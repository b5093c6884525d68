package models

import "time"

// Project is a repository-bound workspace owned by a single user.
//
// TaskCount, CompletedTasks and ActiveTasks are derived when projects are
// listed and are never persisted.
type Project struct {
	ID          string         `json:"id"`
	UserID      string         `json:"user_id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	RepoURL     string         `json:"repo_url"`
	RepoName    string         `json:"repo_name"`
	RepoOwner   string         `json:"repo_owner"`
	Settings    map[string]any `json:"settings"`
	IsActive    bool           `json:"is_active"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`

	TaskCount      int `json:"task_count"`
	CompletedTasks int `json:"completed_tasks"`
	ActiveTasks    int `json:"active_tasks"`
}

// NewProject is the caller-supplied part of a project. The owner is never
// taken from here.
type NewProject struct {
	Name        string
	Description string
	RepoURL     string
	RepoName    string
	RepoOwner   string
	Settings    map[string]any
}

// ProjectUpdate lists the mutable project fields; nil means unchanged.
type ProjectUpdate struct {
	Name        *string
	Description *string
	RepoURL     *string
	Settings    map[string]any
	IsActive    *bool
}
