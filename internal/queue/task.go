package queue

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Status represents the current lifecycle state of a queued task
type Status string

// Possible task status values
const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusRetrying  Status = "retrying"
	StatusFailed    Status = "failed"
)

// TaskFunc is the unit of work executed by the queue. Implementations
// capture their own inputs; the queue stays agnostic to what the work
// does. The function must honor ctx cancellation and either return a
// result value or an error.
type TaskFunc func(ctx context.Context) (any, error)

// Task is the mutable record for one submitted unit of work. It is
// created by Manager.Submit, mutated only by the worker loop, and
// retained in the manager's table for the life of the process so its
// status can be queried after completion.
type Task struct {
	mu sync.Mutex

	id         uuid.UUID
	name       string
	fn         TaskFunc
	status     Status
	retryCount int
	maxRetries int
	retryDelay time.Duration

	result any
	errMsg string

	createdAt   time.Time
	startedAt   time.Time
	completedAt time.Time
}

// ID returns the task's unique identifier
func (t *Task) ID() uuid.UUID {
	return t.id
}

// Name returns the display name given at submission
func (t *Task) Name() string {
	return t.name
}

// Status returns the current task status
func (t *Task) Status() Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

// markRunning transitions the task to running. startedAt is overwritten
// on every attempt so it always reflects the latest attempt.
func (t *Task) markRunning() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status = StatusRunning
	t.startedAt = time.Now()
}

// markCompleted records the result and moves the task to its terminal
// completed state.
func (t *Task) markCompleted(result any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status = StatusCompleted
	t.result = result
	t.completedAt = time.Now()
}

// markFailure records the attempt's error and increments the retry
// count. It returns true if the task should be retried (retry budget
// not yet exhausted), in which case the status is retrying; otherwise
// the task moves to its terminal failed state.
func (t *Task) markFailure(err error) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.errMsg = err.Error()
	t.retryCount++

	if t.retryCount < t.maxRetries {
		t.status = StatusRetrying
		return true
	}

	t.status = StatusFailed
	t.completedAt = time.Now()
	return false
}
