package queue

import "time"

// StatusSnapshot is a read-only, client-facing projection of a task
// record, taken at a single instant.
type StatusSnapshot struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Status      Status  `json:"status"`
	RetryCount  int     `json:"retry_count"`
	MaxRetries  int     `json:"max_retries"`
	Progress    float64 `json:"progress"`
	CreatedAt   string  `json:"created_at,omitempty"`
	StartedAt   string  `json:"started_at,omitempty"`
	CompletedAt string  `json:"completed_at,omitempty"`
	Error       string  `json:"error,omitempty"`
}

// snapshot projects the task's current fields into a StatusSnapshot.
func (t *Task) snapshot() StatusSnapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	return StatusSnapshot{
		ID:          t.id.String(),
		Name:        t.name,
		Status:      t.status,
		RetryCount:  t.retryCount,
		MaxRetries:  t.maxRetries,
		Progress:    progress(t.status, t.retryCount, t.maxRetries),
		CreatedAt:   formatTime(t.createdAt),
		StartedAt:   formatTime(t.startedAt),
		CompletedAt: formatTime(t.completedAt),
		Error:       t.errMsg,
	}
}

// progress derives a display percentage from the task state. This is a
// display heuristic for polling clients, not a measure of work done: a
// running task always reads 50, and a retrying task climbs from just
// above 50 toward 80 as its retry count grows.
func progress(status Status, retryCount, maxRetries int) float64 {
	switch status {
	case StatusCompleted:
		return 100.0
	case StatusFailed:
		return 0.0
	case StatusRetrying:
		return 50.0 + (float64(retryCount)/float64(maxRetries))*30.0
	case StatusRunning:
		return 50.0
	case StatusPending:
		return 0.0
	}
	return 0.0
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
