package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luocheng/bidwriter/internal/domain"
	"github.com/luocheng/bidwriter/internal/queue"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// stubGenerator implements generation.Generator for testing
type stubGenerator struct {
	outline    *domain.Outline
	outlineErr error
	contentErr error

	lastOverview     string
	lastRequirements string
}

func (s *stubGenerator) GenerateOutline(ctx context.Context, overview, requirements string) (*domain.Outline, error) {
	s.lastOverview = overview
	s.lastRequirements = requirements
	return s.outline, s.outlineErr
}

func (s *stubGenerator) GenerateContent(ctx context.Context, outline *domain.Outline, overview string) (*domain.Outline, error) {
	if s.contentErr != nil {
		return nil, s.contentErr
	}
	return outline, nil
}

func testQueue() *queue.Manager {
	return queue.NewManager(queue.Config{
		Size:       10,
		MaxRetries: 1,
		RetryDelay: time.Millisecond,
	}, testLogger())
}

func TestEnqueueOutline(t *testing.T) {
	t.Parallel()

	expected := &domain.Outline{Chapters: []*domain.Chapter{
		{ID: "chapter_1", Title: "技术方案"},
	}}
	gen := &stubGenerator{outline: expected}

	q := testQueue()
	q.Start()
	defer q.Stop()

	svc := NewProposalService(q, gen, testLogger())
	id := svc.EnqueueOutline("项目概述", "评分要求")
	require.NotEqual(t, uuid.Nil, id)

	require.Eventually(t, func() bool {
		snap, err := q.Status(id)
		return err == nil && snap.Status == queue.StatusCompleted
	}, 2*time.Second, 5*time.Millisecond)

	assert.Equal(t, "项目概述", gen.lastOverview)
	assert.Equal(t, "评分要求", gen.lastRequirements)

	result, err := svc.Result(id)
	require.NoError(t, err)
	assert.Equal(t, expected, result)
}

func TestEnqueueOutline_GeneratorFailure(t *testing.T) {
	t.Parallel()

	gen := &stubGenerator{outlineErr: errors.New("rate limited")}

	q := testQueue()
	q.Start()
	defer q.Stop()

	svc := NewProposalService(q, gen, testLogger())
	id := svc.EnqueueOutline("项目概述", "评分要求")

	require.Eventually(t, func() bool {
		snap, err := q.Status(id)
		return err == nil && snap.Status == queue.StatusFailed
	}, 2*time.Second, 5*time.Millisecond)

	snap, err := q.Status(id)
	require.NoError(t, err)
	assert.Equal(t, "rate limited", snap.Error)
}

func TestEnqueueContent(t *testing.T) {
	t.Parallel()

	outline := &domain.Outline{Chapters: []*domain.Chapter{
		{ID: "chapter_1", Title: "技术方案"},
	}}
	gen := &stubGenerator{}

	q := testQueue()
	q.Start()
	defer q.Stop()

	svc := NewProposalService(q, gen, testLogger())
	id, err := svc.EnqueueContent(outline, "项目概述")
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		snap, err := q.Status(id)
		return err == nil && snap.Status == queue.StatusCompleted
	}, 2*time.Second, 5*time.Millisecond)
}

func TestEnqueueContent_InvalidOutline(t *testing.T) {
	t.Parallel()

	svc := NewProposalService(testQueue(), &stubGenerator{}, testLogger())

	_, err := svc.EnqueueContent(&domain.Outline{}, "项目概述")
	assert.ErrorIs(t, err, domain.ErrEmptyOutline)
}
