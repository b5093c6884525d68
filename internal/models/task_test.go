package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTaskStatus_Terminal(t *testing.T) {
	assert.False(t, TaskPending.Terminal())
	assert.False(t, TaskRunning.Terminal())
	assert.True(t, TaskCompleted.Terminal())
	assert.True(t, TaskFailed.Terminal())
	assert.True(t, TaskCancelled.Terminal())
}

func TestTaskStatus_Valid(t *testing.T) {
	for _, s := range []TaskStatus{TaskPending, TaskRunning, TaskCompleted, TaskFailed, TaskCancelled} {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, TaskStatus("paused").Valid())
	assert.False(t, TaskStatus("").Valid())
}
