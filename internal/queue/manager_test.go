package queue

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

func testConfig() Config {
	return Config{
		Size:       10,
		MaxRetries: 3,
		RetryDelay: 10 * time.Millisecond,
	}
}

func TestNewManager(t *testing.T) {
	t.Parallel()

	m := NewManager(testConfig(), testLogger())
	assert.NotNil(t, m)
	assert.Equal(t, 10, cap(m.fifo))
	assert.False(t, m.running)
}

func TestNewManager_InvalidSize(t *testing.T) {
	t.Parallel()

	m := NewManager(Config{Size: -1}, testLogger())
	assert.Equal(t, 100, cap(m.fifo))
}

func TestSubmit_UniqueIdentifiers(t *testing.T) {
	t.Parallel()

	m := NewManager(Config{Size: 200}, testLogger())

	const n = 100
	var mu sync.Mutex
	ids := make(map[uuid.UUID]struct{}, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := m.Submit("concurrent", func(ctx context.Context) (any, error) {
				return nil, nil
			})
			mu.Lock()
			ids[id] = struct{}{}
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, ids, n, "every submission must produce a distinct identifier")
	assert.Len(t, m.Statuses(), n)
}

func TestSubmit_PendingSnapshot(t *testing.T) {
	t.Parallel()

	m := NewManager(testConfig(), testLogger())
	id := m.Submit("unstarted", func(ctx context.Context) (any, error) {
		return nil, nil
	})

	snap, err := m.Status(id)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, snap.Status)
	assert.Equal(t, 0, snap.RetryCount)
	assert.Equal(t, 0.0, snap.Progress)
	assert.NotEmpty(t, snap.CreatedAt)
	assert.Empty(t, snap.StartedAt)
	assert.Empty(t, snap.Error)
}

func TestSubmit_BufferFull(t *testing.T) {
	t.Parallel()

	m := NewManager(Config{Size: 1}, testLogger())

	// Fill the buffer, then keep submitting; the overflow pushes must
	// not block the submitter.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 5; i++ {
			m.Submit("overflow", func(ctx context.Context) (any, error) {
				return nil, nil
			})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Submit blocked on a full queue buffer")
	}

	m.Start()
	defer m.Stop()

	require.Eventually(t, func() bool {
		for _, s := range m.Statuses() {
			if s.Status != StatusCompleted {
				return false
			}
		}
		return true
	}, 2*time.Second, 10*time.Millisecond, "all overflow tasks should complete")
}

func TestStatus_NotFound(t *testing.T) {
	t.Parallel()

	m := NewManager(testConfig(), testLogger())

	_, err := m.Status(uuid.New())
	assert.Error(t, err)
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestExecute_Success(t *testing.T) {
	t.Parallel()

	m := NewManager(testConfig(), testLogger())
	m.Start()
	defer m.Stop()

	id := m.Submit("succeeds", func(ctx context.Context) (any, error) {
		return "proposal text", nil
	})

	require.Eventually(t, func() bool {
		snap, err := m.Status(id)
		return err == nil && snap.Status == StatusCompleted
	}, 2*time.Second, 5*time.Millisecond)

	snap, err := m.Status(id)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, snap.Status)
	assert.Equal(t, 100.0, snap.Progress)
	assert.Equal(t, 0, snap.RetryCount)
	assert.Empty(t, snap.Error)
	assert.NotEmpty(t, snap.StartedAt)
	assert.NotEmpty(t, snap.CompletedAt)

	result, err := m.Result(id)
	require.NoError(t, err)
	assert.Equal(t, "proposal text", result)
}

func TestExecute_PermanentFailure(t *testing.T) {
	t.Parallel()

	m := NewManager(testConfig(), testLogger())
	m.Start()
	defer m.Stop()

	var attempts atomic.Int32
	id := m.Submit("always fails", func(ctx context.Context) (any, error) {
		attempts.Add(1)
		return nil, errors.New("upstream rate limited")
	}, WithMaxRetries(2), WithRetryDelay(5*time.Millisecond))

	require.Eventually(t, func() bool {
		snap, err := m.Status(id)
		return err == nil && snap.Status == StatusFailed
	}, 2*time.Second, 5*time.Millisecond)

	snap, err := m.Status(id)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, snap.Status)
	assert.Equal(t, 2, snap.RetryCount)
	assert.Equal(t, 0.0, snap.Progress)
	assert.Equal(t, "upstream rate limited", snap.Error)
	assert.Equal(t, int32(2), attempts.Load())

	_, err = m.Result(id)
	assert.ErrorIs(t, err, ErrTaskNotCompleted)
}

func TestExecute_RetryThenSucceed(t *testing.T) {
	t.Parallel()

	m := NewManager(testConfig(), testLogger())
	m.Start()
	defer m.Stop()

	var attempts atomic.Int32
	id := m.Submit("flaky", func(ctx context.Context) (any, error) {
		if attempts.Add(1) == 1 {
			return nil, errors.New("timeout talking to model")
		}
		return "second attempt result", nil
	}, WithRetryDelay(50*time.Millisecond))

	// The retrying state must be observable while the task waits for
	// its re-enqueue.
	var retrySnap StatusSnapshot
	require.Eventually(t, func() bool {
		snap, err := m.Status(id)
		if err == nil && snap.Status == StatusRetrying {
			retrySnap = snap
			return true
		}
		return false
	}, 2*time.Second, time.Millisecond)

	assert.Equal(t, 1, retrySnap.RetryCount)
	assert.Greater(t, retrySnap.Progress, 50.0)
	assert.Less(t, retrySnap.Progress, 80.01)
	assert.Equal(t, "timeout talking to model", retrySnap.Error)

	require.Eventually(t, func() bool {
		snap, err := m.Status(id)
		return err == nil && snap.Status == StatusCompleted
	}, 2*time.Second, 5*time.Millisecond)

	result, err := m.Result(id)
	require.NoError(t, err)
	assert.Equal(t, "second attempt result", result)
}

func TestExecute_PanicIsAbsorbed(t *testing.T) {
	t.Parallel()

	m := NewManager(testConfig(), testLogger())
	m.Start()
	defer m.Stop()

	id := m.Submit("panics", func(ctx context.Context) (any, error) {
		panic("malformed model output")
	}, WithMaxRetries(1), WithRetryDelay(time.Millisecond))

	require.Eventually(t, func() bool {
		snap, err := m.Status(id)
		return err == nil && snap.Status == StatusFailed
	}, 2*time.Second, 5*time.Millisecond)

	snap, err := m.Status(id)
	require.NoError(t, err)
	assert.Contains(t, snap.Error, "malformed model output")

	// The worker loop must survive and process subsequent tasks.
	next := m.Submit("after panic", func(ctx context.Context) (any, error) {
		return nil, nil
	})
	require.Eventually(t, func() bool {
		snap, err := m.Status(next)
		return err == nil && snap.Status == StatusCompleted
	}, 2*time.Second, 5*time.Millisecond)
}

func TestStart_Idempotent(t *testing.T) {
	t.Parallel()

	m := NewManager(testConfig(), testLogger())
	m.Start()
	m.Start()
	defer m.Stop()

	// If a duplicate worker loop were running, two tasks could execute
	// concurrently. Track the maximum observed concurrency.
	var inFlight, maxInFlight atomic.Int32
	ids := make([]uuid.UUID, 0, 4)
	for i := 0; i < 4; i++ {
		id := m.Submit("serial", func(ctx context.Context) (any, error) {
			cur := inFlight.Add(1)
			defer inFlight.Add(-1)
			for {
				prev := maxInFlight.Load()
				if cur <= prev || maxInFlight.CompareAndSwap(prev, cur) {
					break
				}
			}
			time.Sleep(20 * time.Millisecond)
			return nil, nil
		})
		ids = append(ids, id)
	}

	require.Eventually(t, func() bool {
		for _, id := range ids {
			snap, err := m.Status(id)
			if err != nil || snap.Status != StatusCompleted {
				return false
			}
		}
		return true
	}, 3*time.Second, 10*time.Millisecond)

	assert.Equal(t, int32(1), maxInFlight.Load(),
		"at most one task may execute at any instant")
}

func TestStop_NeverStarted(t *testing.T) {
	t.Parallel()

	m := NewManager(testConfig(), testLogger())
	assert.NotPanics(t, func() { m.Stop() })
}

func TestStop_MidExecutionAndRestart(t *testing.T) {
	t.Parallel()

	m := NewManager(testConfig(), testLogger())
	m.Start()

	started := make(chan struct{})
	blockedID := m.Submit("blocked", func(ctx context.Context) (any, error) {
		close(started)
		<-ctx.Done()
		return nil, ctx.Err()
	})
	pendingID := m.Submit("still pending", func(ctx context.Context) (any, error) {
		return "done after restart", nil
	})

	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("blocked task never started")
	}

	m.Stop()

	// The interrupted task stays in the running state: its outcome is
	// indeterminate, not failed.
	snap, err := m.Status(blockedID)
	require.NoError(t, err)
	assert.Equal(t, StatusRunning, snap.Status)

	// Restarting resumes processing of tasks still in the FIFO.
	m.Start()
	defer m.Stop()

	require.Eventually(t, func() bool {
		snap, err := m.Status(pendingID)
		return err == nil && snap.Status == StatusCompleted
	}, 2*time.Second, 5*time.Millisecond)

	snap, err = m.Status(blockedID)
	require.NoError(t, err)
	assert.Equal(t, StatusRunning, snap.Status,
		"interrupted task is not re-executed on restart")
}

func TestResult_NotFound(t *testing.T) {
	t.Parallel()

	m := NewManager(testConfig(), testLogger())
	_, err := m.Result(uuid.New())
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestStatuses_ConcurrentWithExecution(t *testing.T) {
	t.Parallel()

	m := NewManager(testConfig(), testLogger())
	m.Start()
	defer m.Stop()

	for i := 0; i < 5; i++ {
		m.Submit("worker fodder", func(ctx context.Context) (any, error) {
			time.Sleep(time.Millisecond)
			return nil, nil
		})
	}

	// Hammer the read side while the worker mutates records.
	done := make(chan struct{})
	go func() {
		defer close(done)
		deadline := time.Now().Add(200 * time.Millisecond)
		for time.Now().Before(deadline) {
			for _, s := range m.Statuses() {
				assert.NotEmpty(t, s.ID)
			}
		}
	}()
	<-done
}
