package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/luocheng/bidwriter/internal/config"
	"github.com/luocheng/bidwriter/internal/platform/gemini"
	"github.com/luocheng/bidwriter/internal/platform/logger"
	"github.com/luocheng/bidwriter/internal/queue"
	"github.com/luocheng/bidwriter/internal/service"
)

// application holds the initialized dependencies shared by the HTTP
// handlers. It is assembled once at startup.
type application struct {
	config *config.Config
	logger *slog.Logger

	queue           *queue.Manager
	generator       *gemini.Generator
	proposalService *service.ProposalService
	settingsService *service.SettingsService
}

// newApplication loads configuration and wires up all application
// components. The queue worker is started before returning so the
// server accepts generation requests immediately.
func newApplication(ctx context.Context) (*application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	log.Info("server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"model_name", cfg.LLM.ModelName,
		"queue_size", cfg.Queue.Size)

	generator, err := gemini.NewGenerator(ctx, log, cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("failed to create generator: %w", err)
	}

	q := queue.NewManager(queue.Config{
		Size:       cfg.Queue.Size,
		MaxRetries: cfg.Queue.MaxRetries,
		RetryDelay: time.Duration(cfg.Queue.RetryDelaySeconds) * time.Second,
	}, log)

	// Saved user settings override the configured model name, both at
	// startup and whenever the settings endpoint updates them.
	settingsService := service.NewSettingsService(cfg.LLM.ModelName, log,
		service.WithModelChangeListener(generator.SetModel))
	if settings := settingsService.Load(); settings.ModelName != cfg.LLM.ModelName {
		generator.SetModel(settings.ModelName)
		log.Info("applying saved model override", "model_name", settings.ModelName)
	}

	app := &application{
		config:          cfg,
		logger:          log,
		queue:           q,
		generator:       generator,
		proposalService: service.NewProposalService(q, generator, log),
		settingsService: settingsService,
	}

	app.queue.Start()

	return app, nil
}

// cleanup releases application resources during shutdown.
func (app *application) cleanup() {
	app.logger.Info("stopping task queue")
	app.queue.Stop()
}
