package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/luocheng/bidwriter/internal/domain"
	"github.com/luocheng/bidwriter/internal/generation"
	"github.com/luocheng/bidwriter/internal/queue"
)

// Task names used for queue submissions
const (
	TaskNameGenerateOutline = "generate_outline"
	TaskNameGenerateContent = "generate_content"
)

// ProposalService submits proposal-generation work to the task queue.
// Each operation is captured as a closure over the generator and its
// inputs; the queue sequences them so only one LLM call chain runs at a
// time.
type ProposalService struct {
	queue     *queue.Manager
	generator generation.Generator
	logger    *slog.Logger
}

// NewProposalService creates a new ProposalService
func NewProposalService(q *queue.Manager, g generation.Generator, logger *slog.Logger) *ProposalService {
	return &ProposalService{
		queue:     q,
		generator: g,
		logger:    logger.With("component", "proposal_service"),
	}
}

// EnqueueOutline submits outline generation for the given project and
// returns the task identifier for status polling.
func (s *ProposalService) EnqueueOutline(overview, requirements string) uuid.UUID {
	id := s.queue.Submit(TaskNameGenerateOutline, func(ctx context.Context) (any, error) {
		return s.generator.GenerateOutline(ctx, overview, requirements)
	})

	s.logger.Info("outline generation enqueued", "task_id", id)
	return id
}

// EnqueueContent submits content generation for an existing outline and
// returns the task identifier for status polling.
func (s *ProposalService) EnqueueContent(outline *domain.Outline, overview string) (uuid.UUID, error) {
	if err := outline.Validate(); err != nil {
		return uuid.Nil, err
	}

	id := s.queue.Submit(TaskNameGenerateContent, func(ctx context.Context) (any, error) {
		return s.generator.GenerateContent(ctx, outline, overview)
	})

	s.logger.Info("content generation enqueued",
		"task_id", id,
		"leaf_sections", outline.CountLeaves())
	return id, nil
}

// Result returns the finished document for a completed generation task.
func (s *ProposalService) Result(id uuid.UUID) (any, error) {
	return s.queue.Result(id)
}
