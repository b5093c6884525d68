package store

import (
	"context"
	"fmt"
)

type Op string

const (
	OpListProjects      Op = "list_projects"
	OpCreateProject     Op = "create_project"
	OpGetProject        Op = "get_project"
	OpUpdateProject     Op = "update_project"
	OpDeleteProject     Op = "delete_project"
	OpListTasks         Op = "list_tasks"
	OpCreateTask        Op = "create_task"
	OpGetTask           Op = "get_task"
	OpUpdateTask        Op = "update_task"
	OpAddChatMessage    Op = "add_chat_message"
	OpGetUserProfile    Op = "get_user_profile"
	OpUpdateUserProfile Op = "update_user_profile"
)

type Policy int

const (
	// Strict propagates every fault.
	Strict Policy = iota
	// BestEffort logs a warning and hands back the zero value.
	BestEffort
	// AbsentOnNotFound turns not-found into the zero value and propagates
	// anything else.
	AbsentOnNotFound
)

func (p Policy) String() string {
	switch p {
	case BestEffort:
		return "best-effort"
	case AbsentOnNotFound:
		return "absent-on-not-found"
	default:
		return "strict"
	}
}

// Policies is the fault policy of every DataStore operation in configured
// mode. All list faults degrade the same way whatever their cause.
var Policies = map[Op]Policy{
	OpListProjects:      BestEffort,
	OpListTasks:         BestEffort,
	OpGetProject:        AbsentOnNotFound,
	OpGetTask:           AbsentOnNotFound,
	OpAddChatMessage:    AbsentOnNotFound,
	OpGetUserProfile:    AbsentOnNotFound,
	OpCreateProject:     Strict,
	OpUpdateProject:     Strict,
	OpDeleteProject:     Strict,
	OpCreateTask:        Strict,
	OpUpdateTask:        Strict,
	OpUpdateUserProfile: Strict,
}

func policyFor(op Op) Policy {
	if p, ok := Policies[op]; ok {
		return p
	}
	return Strict
}

// settle applies op's policy to r.
func settle[T any](ctx context.Context, s *DataStore, op Op, r Result[T]) (T, error) {
	if r.Err == nil {
		return r.Value, nil
	}

	var zero T
	switch policyFor(op) {
	case BestEffort:
		s.logger.Warn(ctx, fmt.Sprintf("%s failed, returning empty result", op), "error", r.Err)
		return zero, nil
	case AbsentOnNotFound:
		if r.NotFound() {
			return zero, nil
		}
	}
	return zero, fault(r.Err)
}
