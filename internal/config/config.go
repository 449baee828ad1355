package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server ServerConfig `mapstructure:"server" validate:"required"`
	LLM    LLMConfig    `mapstructure:"llm"    validate:"required"`
	Queue  QueueConfig  `mapstructure:"queue"  validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// LLMConfig contains all settings for the LLM backend used to generate
// proposal outlines and section prose.
type LLMConfig struct {
	APIKey string `mapstructure:"api_key" validate:"required"`

	// BaseURL optionally points the client at an API-compatible
	// endpoint; empty means the default Gemini API host.
	BaseURL string `mapstructure:"base_url" validate:"omitempty,url"`

	ModelName string `mapstructure:"model_name" validate:"required"`

	// MaxRetries and RetryDelaySeconds govern the generator's own
	// exponential-backoff policy for a single API call. This is
	// separate from the task queue's fixed-delay retry layer.
	MaxRetries        int `mapstructure:"max_retries"         validate:"gte=0"`
	RetryDelaySeconds int `mapstructure:"retry_delay_seconds" validate:"gte=1"`
}

// QueueConfig contains the task queue settings.
type QueueConfig struct {
	Size int `mapstructure:"size" validate:"gt=0"`

	// MaxRetries and RetryDelaySeconds are the queue-level defaults
	// applied to submitted tasks. The delay is fixed per retry; any
	// backoff multiplication happens inside the task itself.
	MaxRetries        int `mapstructure:"max_retries"         validate:"gte=0"`
	RetryDelaySeconds int `mapstructure:"retry_delay_seconds" validate:"gte=0"`
}
