package store

import (
	"errors"

	"github.com/dmitrijs2005/agentdeck/internal/common"
)

// Result is what a Remote call produced: a value or an error, never both.
// Whether the error reaches the caller is decided by the operation's
// Policy, not by the Remote.
type Result[T any] struct {
	Value T
	Err   error
}

func Ok[T any](v T) Result[T] {
	return Result[T]{Value: v}
}

func Fail[T any](err error) Result[T] {
	return Result[T]{Err: err}
}

// From adapts a conventional (value, error) pair.
func From[T any](v T, err error) Result[T] {
	if err != nil {
		return Fail[T](err)
	}
	return Ok(v)
}

func (r Result[T]) NotFound() bool {
	return errors.Is(r.Err, common.ErrorNotFound)
}
