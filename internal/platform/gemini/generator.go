package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"strings"
	"sync"
	"time"

	"google.golang.org/genai"

	"github.com/luocheng/bidwriter/internal/config"
	"github.com/luocheng/bidwriter/internal/generation"
)

// jsonCheckDelay is the pause between attempts of the structural JSON
// validation loop. Shape mismatches are a model problem, not a rate
// limit, so the re-prompt happens almost immediately.
const jsonCheckDelay = 500 * time.Millisecond

// levelOneTitle is one entry of the model's level-1 outline response.
type levelOneTitle struct {
	RatingItem string `json:"rating_item"`
	NewTitle   string `json:"new_title"`
}

// Generator implements generation.Generator using Google's Gemini API.
type Generator struct {
	logger *slog.Logger
	cfg    config.LLMConfig
	client *genai.Client
	rng    *rand.Rand

	// mu guards model, which can be changed at runtime through the
	// settings endpoint.
	mu    sync.RWMutex
	model string
}

// NewGenerator creates a new Generator with the provided dependencies.
func NewGenerator(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig) (*Generator, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: API key cannot be empty", generation.ErrInvalidConfig)
	}
	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", generation.ErrInvalidConfig)
	}

	clientConfig := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientConfig.HTTPOptions.BaseURL = cfg.BaseURL
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v",
			generation.ErrInvalidConfig, err)
	}

	return &Generator{
		logger: logger.With("component", "gemini_generator"),
		cfg:    cfg,
		client: client,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		model:  cfg.ModelName,
	}, nil
}

// Model returns the model name currently in use.
func (g *Generator) Model() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.model
}

// SetModel switches the model used for subsequent requests.
func (g *Generator) SetModel(name string) {
	if name == "" {
		return
	}
	g.mu.Lock()
	g.model = name
	g.mu.Unlock()
	g.logger.Info("model changed", "model", name)
}

// collect streams one completion and concatenates the chunks into a
// full response string. Safety blocks and empty responses are reported
// through the generation package's permanent-error sentinels.
func (g *Generator) collect(ctx context.Context, system, prompt string, jsonMode bool) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", ErrEmptyPrompt
	}

	genCfg := &genai.GenerateContentConfig{
		Temperature:       genai.Ptr[float32](0.7),
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
	}
	if jsonMode {
		genCfg.ResponseMIMEType = "application/json"
	}

	var b strings.Builder
	for resp, err := range g.client.Models.GenerateContentStream(ctx, g.Model(), genai.Text(prompt), genCfg) {
		if err != nil {
			return "", err
		}
		if len(resp.Candidates) > 0 && resp.Candidates[0].FinishReason == genai.FinishReasonSafety {
			return "", fmt.Errorf("%w: finish reason safety", generation.ErrContentBlocked)
		}
		b.WriteString(resp.Text())
	}

	if b.Len() == 0 {
		return "", fmt.Errorf("%w: no content generated", generation.ErrInvalidResponse)
	}
	return b.String(), nil
}

// generateWithRetry calls the API with exponential backoff plus jitter
// for transient failures. Permanent errors (safety blocks, malformed
// responses) are returned immediately without retrying. This inner
// backoff is independent of the task queue's fixed-delay retry layer.
func (g *Generator) generateWithRetry(ctx context.Context, system, prompt string, jsonMode bool) (string, error) {
	maxRetries := g.cfg.MaxRetries
	baseDelaySeconds := g.cfg.RetryDelaySeconds
	if maxRetries < 0 {
		g.logger.WarnContext(ctx, "invalid max retries value, using default", "max_retries", 3)
		maxRetries = 3
	}
	if baseDelaySeconds < 1 {
		g.logger.WarnContext(ctx, "invalid retry delay value, using default", "base_delay_seconds", 2)
		baseDelaySeconds = 2
	}

	for attempt := 0; ; attempt++ {
		text, err := g.collect(ctx, system, prompt, jsonMode)
		if err == nil {
			return text, nil
		}

		if errors.Is(err, generation.ErrContentBlocked) ||
			errors.Is(err, generation.ErrInvalidResponse) ||
			errors.Is(err, ErrEmptyPrompt) {
			g.logger.WarnContext(ctx, "permanent error, not retrying", "error", err)
			return "", err
		}

		if attempt >= maxRetries {
			g.logger.WarnContext(ctx, "maximum retry attempts reached", "max_retries", maxRetries)
			return "", fmt.Errorf("%w: exceeded maximum retry attempts (%d): %v",
				generation.ErrTransientFailure, maxRetries, err)
		}

		// delay = baseDelay * (2^attempt) * (0.5 + rand(0, 0.5))
		backoffSeconds := float64(baseDelaySeconds) * math.Pow(2, float64(attempt))
		jitterFactor := 0.5 + g.rng.Float64()*0.5
		delay := time.Duration(backoffSeconds * jitterFactor * float64(time.Second))

		g.logger.WarnContext(ctx, "transient API failure, retrying after delay",
			"attempt", attempt+1,
			"max_attempts", maxRetries+1,
			"delay", delay,
			"error", err)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return "", fmt.Errorf("%w: %v", generation.ErrTransientFailure, ctx.Err())
		}
	}
}

// generateChecked generates a JSON response and validates its structure
// against the schema example, re-prompting on shape mismatch. When
// failSoft is true the last response is returned even if it never
// passed validation, so callers can degrade to a placeholder instead of
// losing the whole chapter.
func (g *Generator) generateChecked(ctx context.Context, system, prompt, schema string, failSoft bool) (string, error) {
	maxRetries := g.cfg.MaxRetries
	var lastErr error

	for attempt := 0; ; attempt++ {
		content, err := g.generateWithRetry(ctx, system, prompt, true)
		if err != nil {
			return "", err
		}

		if err := generation.CheckJSON(content, schema); err == nil {
			return content, nil
		} else {
			lastErr = err
		}

		if attempt >= maxRetries {
			g.logger.WarnContext(ctx, "JSON validation failed after all attempts",
				"max_retries", maxRetries,
				"error", lastErr)
			if failSoft {
				return content, nil
			}
			return "", lastErr
		}

		g.logger.WarnContext(ctx, "JSON validation failed, re-prompting",
			"attempt", attempt+1,
			"error", lastErr)

		select {
		case <-time.After(jsonCheckDelay):
		case <-ctx.Done():
			return "", fmt.Errorf("%w: %v", generation.ErrTransientFailure, ctx.Err())
		}
	}
}
