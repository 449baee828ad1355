package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/luocheng/bidwriter/internal/api"
	apiMiddleware "github.com/luocheng/bidwriter/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes
// and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	queueHandler := api.NewQueueHandler(app.queue)
	proposalHandler := api.NewProposalHandler(app.proposalService)
	settingsHandler := api.NewSettingsHandler(app.settingsService)

	r.Route("/api", func(r chi.Router) {
		// Queue inspection and control
		r.Get("/queue/status/{id}", queueHandler.GetTaskStatus)
		r.Get("/queue/status", queueHandler.ListTaskStatuses)
		r.Post("/queue/start", queueHandler.StartQueue)
		r.Post("/queue/stop", queueHandler.StopQueue)

		// Proposal generation
		r.Post("/proposals/outline", proposalHandler.GenerateOutline)
		r.Post("/proposals/content", proposalHandler.GenerateContent)
		r.Get("/proposals/{id}/result", proposalHandler.GetResult)

		// User-adjustable settings
		r.Get("/config", settingsHandler.GetSettings)
		r.Put("/config", settingsHandler.UpdateSettings)
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
