package queue

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Config holds configuration for the queue manager
type Config struct {
	// Size determines the buffer size for the in-memory FIFO
	Size int

	// MaxRetries is the default retry budget applied to submitted
	// tasks that do not override it
	MaxRetries int

	// RetryDelay is the default wait between a failed attempt and the
	// task's re-enqueue. This is a fixed per-retry delay; backoff
	// multiplication is left to the task's own inner retry policy.
	RetryDelay time.Duration
}

// DefaultConfig returns a Config with reasonable defaults
func DefaultConfig() Config {
	return Config{
		Size:       100,
		MaxRetries: 3,
		RetryDelay: 20 * time.Second,
	}
}

// SubmitOption customizes a single task at submission time
type SubmitOption func(*Task)

// WithMaxRetries overrides the manager's default retry budget for one task
func WithMaxRetries(n int) SubmitOption {
	return func(t *Task) {
		if n >= 0 {
			t.maxRetries = n
		}
	}
}

// WithRetryDelay overrides the manager's default retry delay for one task
func WithRetryDelay(d time.Duration) SubmitOption {
	return func(t *Task) {
		if d >= 0 {
			t.retryDelay = d
		}
	}
}

// Manager owns the task table and the FIFO, and runs the single worker
// loop that drains it. At most one task executes at any instant; a task
// that fails is re-enqueued at the tail after its retry delay until its
// retry budget is exhausted. Task records are never evicted, so status
// queries keep working after a task reaches a terminal state.
type Manager struct {
	// mu guards the task table, submission order, and lifecycle fields
	mu sync.RWMutex

	tasks map[uuid.UUID]*Task
	order []uuid.UUID
	fifo  chan *Task

	config  Config
	logger  *slog.Logger
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewManager creates a new queue manager. The manager does not process
// anything until Start is called.
func NewManager(config Config, logger *slog.Logger) *Manager {
	if config.Size <= 0 {
		logger.Warn("invalid queue size specified, using default",
			"specified_size", config.Size,
			"default_size", 100)
		config.Size = 100
	}
	if config.MaxRetries < 0 {
		config.MaxRetries = 0
	}
	if config.RetryDelay < 0 {
		config.RetryDelay = 0
	}

	return &Manager{
		tasks:  make(map[uuid.UUID]*Task),
		fifo:   make(chan *Task, config.Size),
		config: config,
		logger: logger.With("component", "queue_manager"),
	}
}

// Submit registers a new unit of work and pushes it onto the FIFO.
// It returns the task's identifier immediately without waiting for
// execution. Safe for concurrent use.
func (m *Manager) Submit(name string, fn TaskFunc, opts ...SubmitOption) uuid.UUID {
	t := &Task{
		id:         uuid.New(),
		name:       name,
		fn:         fn,
		status:     StatusPending,
		maxRetries: m.config.MaxRetries,
		retryDelay: m.config.RetryDelay,
		createdAt:  time.Now(),
	}
	for _, opt := range opts {
		opt(t)
	}

	m.mu.Lock()
	m.tasks[t.id] = t
	m.order = append(m.order, t.id)
	m.mu.Unlock()

	m.enqueue(t)

	m.logger.Info("task submitted",
		"task_id", t.id,
		"task_name", t.name,
		"max_retries", t.maxRetries)
	return t.id
}

// enqueue pushes a task onto the FIFO tail. The fast path is a
// non-blocking channel send; if the buffer is full the push is handed
// off to a goroutine so the caller never blocks.
func (m *Manager) enqueue(t *Task) {
	select {
	case m.fifo <- t:
	default:
		m.logger.Warn("task queue buffer full, enqueueing asynchronously",
			"task_id", t.id,
			"queue_cap", cap(m.fifo))
		go func() {
			m.fifo <- t
		}()
	}
}

// Status returns a snapshot of the task with the given identifier, or
// ErrTaskNotFound if the identifier is unknown.
func (m *Manager) Status(id uuid.UUID) (StatusSnapshot, error) {
	m.mu.RLock()
	t, ok := m.tasks[id]
	m.mu.RUnlock()
	if !ok {
		return StatusSnapshot{}, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	return t.snapshot(), nil
}

// Statuses returns a snapshot for every known task in submission order.
// Callers must not rely on the ordering.
func (m *Manager) Statuses() []StatusSnapshot {
	m.mu.RLock()
	ids := make([]uuid.UUID, len(m.order))
	copy(ids, m.order)
	tasks := make([]*Task, 0, len(ids))
	for _, id := range ids {
		tasks = append(tasks, m.tasks[id])
	}
	m.mu.RUnlock()

	snapshots := make([]StatusSnapshot, 0, len(tasks))
	for _, t := range tasks {
		snapshots = append(snapshots, t.snapshot())
	}
	return snapshots
}

// Result returns the stored result of a completed task. It returns
// ErrTaskNotFound for unknown identifiers and ErrTaskNotCompleted for
// tasks that have not reached the completed state.
func (m *Manager) Result(id uuid.UUID) (any, error) {
	m.mu.RLock()
	t, ok := m.tasks[id]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.status != StatusCompleted {
		return nil, fmt.Errorf("%w: task %s is %s", ErrTaskNotCompleted, id, t.status)
	}
	return t.result, nil
}

// Start launches the worker loop in the background and returns
// immediately. Calling Start while the manager is already running is a
// no-op, so there is never more than one consumer draining the FIFO.
func (m *Manager) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.running = true

	m.wg.Add(1)
	go m.run(ctx)

	m.logger.Info("queue manager started")
}

// Stop requests termination of the worker loop and waits for it to
// exit. Safe to call when the manager was never started. A task that is
// mid-execution when Stop is called may be left in the running state;
// callers should treat that as an indeterminate outcome. Tasks still in
// the FIFO are processed by a subsequent Start.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	cancel := m.cancel
	m.mu.Unlock()

	cancel()
	m.wg.Wait()

	m.logger.Info("queue manager stopped")
}

// run is the single worker loop. It drains the FIFO one task at a time
// until the context is cancelled. Task errors never terminate the loop.
func (m *Manager) run(ctx context.Context) {
	defer m.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case t := <-m.fifo:
			m.execute(ctx, t)
		}
	}
}

// execute runs one attempt of a task and applies the retry policy.
func (m *Manager) execute(ctx context.Context, t *Task) {
	logger := m.logger.With(
		"task_id", t.id,
		"task_name", t.name)

	t.markRunning()
	logger.Info("executing task", "attempt", t.retryCount+1)

	result, err := m.invoke(ctx, t)

	if err != nil && ctx.Err() != nil {
		// Stopped mid-execution. The task stays in the running state:
		// there is no way to know whether the underlying call took
		// effect, so the outcome is reported as indeterminate.
		logger.Warn("task interrupted by shutdown, leaving state as-is")
		return
	}

	if err == nil {
		t.markCompleted(result)
		logger.Info("task completed")
		return
	}

	if t.markFailure(err) {
		logger.Warn("task failed, will retry",
			"error", err,
			"retry_count", t.retryCount,
			"max_retries", t.maxRetries,
			"retry_delay", t.retryDelay)

		// The delay runs inside the worker so only one task is ever
		// in flight; it is cancellable so Stop never leaves a timer
		// behind. A task interrupted here stays in the retrying state
		// and is not re-enqueued.
		select {
		case <-time.After(t.retryDelay):
		case <-ctx.Done():
			logger.Warn("retry delay interrupted by shutdown")
			return
		}

		m.enqueue(t)
		return
	}

	logger.Error("task failed permanently",
		"error", err,
		"retry_count", t.retryCount)
}

// invoke calls the task function, converting a panic into an ordinary
// error so a misbehaving task cannot take down the worker loop.
func (m *Manager) invoke(ctx context.Context, t *Task) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task panicked: %v", r)
			m.logger.Error("recovered from task panic",
				"task_id", t.id,
				"task_name", t.name,
				"panic", r)
		}
	}()
	return t.fn(ctx)
}
