package service

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/viper"
)

// settingsFileName is the per-user settings file, stored under the
// user's home directory so it survives restarts and redeploys.
const (
	settingsDirName  = ".bidwriter"
	settingsFileName = "settings.json"
)

// Settings holds the user-adjustable runtime settings. Only the model
// name is user-settable; credentials and endpoints stay in the server
// configuration.
type Settings struct {
	ModelName string `json:"model_name" mapstructure:"model_name"`
}

// SettingsService loads and persists user settings, and notifies an
// optional listener when the model name changes so a running generator
// can pick it up without a restart.
type SettingsService struct {
	mu       sync.Mutex
	path     string
	fallback string
	logger   *slog.Logger

	// onModelChange, if set, is invoked with the new model name after
	// every successful save.
	onModelChange func(model string)
}

// SettingsOption customizes a SettingsService
type SettingsOption func(*SettingsService)

// WithSettingsPath overrides the settings file location
func WithSettingsPath(path string) SettingsOption {
	return func(s *SettingsService) {
		s.path = path
	}
}

// WithModelChangeListener registers a callback invoked after the model
// name is saved
func WithModelChangeListener(fn func(model string)) SettingsOption {
	return func(s *SettingsService) {
		s.onModelChange = fn
	}
}

// NewSettingsService creates a SettingsService. fallbackModel is the
// configured model name used until a user override is saved.
func NewSettingsService(fallbackModel string, logger *slog.Logger, opts ...SettingsOption) *SettingsService {
	s := &SettingsService{
		fallback: fallbackModel,
		logger:   logger.With("component", "settings_service"),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			// No home directory; settings stay in the working directory.
			s.logger.Warn("failed to resolve home directory, using working directory", "error", err)
			home = "."
		}
		s.path = filepath.Join(home, settingsDirName, settingsFileName)
	}

	return s
}

// Load returns the effective settings. A missing or unreadable settings
// file falls back to the configured model name rather than failing.
func (s *SettingsService) Load() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *SettingsService) load() Settings {
	settings := Settings{ModelName: s.fallback}

	v := viper.New()
	v.SetConfigFile(s.path)
	v.SetConfigType("json")
	if err := v.ReadInConfig(); err != nil {
		if !os.IsNotExist(err) {
			s.logger.Debug("no readable settings file, using configured defaults",
				"path", s.path,
				"error", err)
		}
		return settings
	}

	if err := v.Unmarshal(&settings); err != nil {
		s.logger.Warn("failed to parse settings file, using configured defaults",
			"path", s.path,
			"error", err)
		return Settings{ModelName: s.fallback}
	}

	if settings.ModelName == "" {
		settings.ModelName = s.fallback
	}
	return settings
}

// Save persists the model name override and notifies the registered
// listener.
func (s *SettingsService) Save(modelName string) error {
	if modelName == "" {
		return fmt.Errorf("model name cannot be empty")
	}

	s.mu.Lock()
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to create settings directory: %w", err)
	}

	v := viper.New()
	v.SetConfigType("json")
	v.Set("model_name", modelName)
	if err := v.WriteConfigAs(s.path); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to write settings file: %w", err)
	}
	onChange := s.onModelChange
	s.mu.Unlock()

	s.logger.Info("settings saved", "model_name", modelName)

	if onChange != nil {
		onChange(modelName)
	}
	return nil
}
