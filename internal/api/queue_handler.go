package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/luocheng/bidwriter/internal/api/shared"
	"github.com/luocheng/bidwriter/internal/queue"
)

// QueueStatusResponse wraps the full task list for the status endpoint.
type QueueStatusResponse struct {
	Tasks []queue.StatusSnapshot `json:"tasks"`
}

// QueueControlResponse reports the outcome of a start or stop request.
type QueueControlResponse struct {
	Message string `json:"message"`
}

// QueueHandler handles queue-related HTTP requests
type QueueHandler struct {
	queue *queue.Manager
}

// NewQueueHandler creates a new QueueHandler
func NewQueueHandler(q *queue.Manager) *QueueHandler {
	return &QueueHandler{queue: q}
}

// GetTaskStatus handles GET /api/queue/status/{id} requests
func (h *QueueHandler) GetTaskStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid task ID format")
		return
	}

	snapshot, err := h.queue.Status(id)
	if err != nil {
		if errors.Is(err, queue.ErrTaskNotFound) {
			shared.RespondWithError(w, r, http.StatusNotFound, "Task not found")
			return
		}
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Failed to get task status", err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, snapshot)
}

// ListTaskStatuses handles GET /api/queue/status requests
func (h *QueueHandler) ListTaskStatuses(w http.ResponseWriter, r *http.Request) {
	snapshots := h.queue.Statuses()
	if snapshots == nil {
		snapshots = []queue.StatusSnapshot{}
	}

	shared.RespondWithJSON(w, r, http.StatusOK, QueueStatusResponse{Tasks: snapshots})
}

// StartQueue handles POST /api/queue/start requests
func (h *QueueHandler) StartQueue(w http.ResponseWriter, r *http.Request) {
	h.queue.Start()
	shared.RespondWithJSON(w, r, http.StatusOK, QueueControlResponse{Message: "queue started"})
}

// StopQueue handles POST /api/queue/stop requests
func (h *QueueHandler) StopQueue(w http.ResponseWriter, r *http.Request) {
	h.queue.Stop()
	shared.RespondWithJSON(w, r, http.StatusOK, QueueControlResponse{Message: "queue stopped"})
}
