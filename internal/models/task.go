package models

import "time"

type TaskStatus string

const (
	TaskPending   TaskStatus = "pending"
	TaskRunning   TaskStatus = "running"
	TaskCompleted TaskStatus = "completed"
	TaskFailed    TaskStatus = "failed"
	TaskCancelled TaskStatus = "cancelled"
)

// Terminal reports whether no further transitions are expected.
func (s TaskStatus) Terminal() bool {
	switch s {
	case TaskCompleted, TaskFailed, TaskCancelled:
		return true
	}
	return false
}

// Valid reports whether s is one of the known statuses.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskPending, TaskRunning, TaskCompleted, TaskFailed, TaskCancelled:
		return true
	}
	return false
}

const (
	DefaultTargetBranch = "main"
	DefaultAgent        = "claude"
)

type ChatMessage struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

type Task struct {
	ID                string         `json:"id"`
	UserID            string         `json:"user_id"`
	ProjectID         *string        `json:"project_id,omitempty"`
	RepoURL           string         `json:"repo_url"`
	TargetBranch      string         `json:"target_branch"`
	Agent             string         `json:"agent"`
	Status            TaskStatus     `json:"status"`
	ChatMessages      []ChatMessage  `json:"chat_messages"`
	ExecutionMetadata map[string]any `json:"execution_metadata"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	StartedAt         *time.Time     `json:"started_at,omitempty"`
	CompletedAt       *time.Time     `json:"completed_at,omitempty"`
}

type NewTask struct {
	ProjectID    *string
	RepoURL      string
	TargetBranch string
	Agent        string
	ChatMessages []ChatMessage
}

// TaskUpdate lists the mutable task fields; nil means unchanged.
type TaskUpdate struct {
	Status       *TaskStatus
	ChatMessages []ChatMessage
	StartedAt    *time.Time
	CompletedAt  *time.Time
	UpdatedAt    time.Time
}

// ListOptions paginates a listing. Offset and Limit select the inclusive row
// range [Offset, Offset+Limit-1]; a nil Limit means no upper bound.
type ListOptions struct {
	Limit  *int
	Offset *int
}
