package queue

import "errors"

// Common errors returned by the queue package
var (
	// ErrTaskNotFound is returned when a status query names an
	// identifier that was never issued by this manager.
	ErrTaskNotFound = errors.New("task not found")

	// ErrTaskNotCompleted is returned when a result is requested for a
	// task that has not reached the completed state.
	ErrTaskNotCompleted = errors.New("task has not completed")
)
