package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/luocheng/bidwriter/internal/api/shared"
	"github.com/luocheng/bidwriter/internal/domain"
	"github.com/luocheng/bidwriter/internal/queue"
	"github.com/luocheng/bidwriter/internal/service"
)

// GenerateOutlineRequest represents the request body for starting outline generation
type GenerateOutlineRequest struct {
	ProjectOverview     string `json:"project_overview"     validate:"required,min=1"`
	ScoringRequirements string `json:"scoring_requirements"`
}

// GenerateContentRequest represents the request body for starting content generation
type GenerateContentRequest struct {
	Outline         *domain.Outline `json:"outline"          validate:"required"`
	ProjectOverview string          `json:"project_overview" validate:"required,min=1"`
}

// TaskAcceptedResponse carries the identifier used to poll task progress
type TaskAcceptedResponse struct {
	TaskID string `json:"task_id"`
}

// ProposalHandler handles proposal generation HTTP requests
type ProposalHandler struct {
	proposalService *service.ProposalService
	validator       *validator.Validate
}

// NewProposalHandler creates a new ProposalHandler
func NewProposalHandler(proposalService *service.ProposalService) *ProposalHandler {
	return &ProposalHandler{
		proposalService: proposalService,
		validator:       validator.New(),
	}
}

// GenerateOutline handles POST /api/proposals/outline requests. Generation
// runs asynchronously; the response carries the task ID for status polling.
func (h *ProposalHandler) GenerateOutline(w http.ResponseWriter, r *http.Request) {
	var req GenerateOutlineRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	id := h.proposalService.EnqueueOutline(req.ProjectOverview, req.ScoringRequirements)

	shared.RespondWithJSON(w, r, http.StatusAccepted, TaskAcceptedResponse{TaskID: id.String()})
}

// GenerateContent handles POST /api/proposals/content requests
func (h *ProposalHandler) GenerateContent(w http.ResponseWriter, r *http.Request) {
	var req GenerateContentRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	id, err := h.proposalService.EnqueueContent(req.Outline, req.ProjectOverview)
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid outline: "+err.Error())
			return
		}
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Failed to enqueue content generation", err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusAccepted, TaskAcceptedResponse{TaskID: id.String()})
}

// GetResult handles GET /api/proposals/{id}/result requests. The result is
// only available once the underlying task has completed.
func (h *ProposalHandler) GetResult(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid task ID format")
		return
	}

	result, err := h.proposalService.Result(id)
	if err != nil {
		switch {
		case errors.Is(err, queue.ErrTaskNotFound):
			shared.RespondWithError(w, r, http.StatusNotFound, "Task not found")
		case errors.Is(err, queue.ErrTaskNotCompleted):
			shared.RespondWithError(w, r, http.StatusConflict, "Task has not completed yet")
		default:
			shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Failed to get task result", err)
		}
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, result)
}
