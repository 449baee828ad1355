package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/luocheng/bidwriter/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup_LevelFiltering(t *testing.T) {
	tests := []struct {
		name          string
		level         string
		debugExpected bool
	}{
		{"debug level passes debug records", "debug", true},
		{"info level filters debug records", "info", false},
		{"warn level filters debug records", "warn", false},
		{"level is case-insensitive", "DEBUG", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger, err := setup(config.ServerConfig{LogLevel: tt.level}, &buf)
			require.NoError(t, err)
			require.NotNil(t, logger)

			logger.Debug("debug message")
			if tt.debugExpected {
				assert.Contains(t, buf.String(), "debug message")
			} else {
				assert.Empty(t, buf.String())
			}
		})
	}
}

func TestSetup_InvalidLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger, err := setup(config.ServerConfig{LogLevel: "bogus"}, &buf)
	require.NoError(t, err)

	logger.Debug("filtered")
	logger.Info("kept")

	assert.NotContains(t, buf.String(), "filtered")
	assert.Contains(t, buf.String(), "kept")
}

func TestSetup_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	logger, err := setup(config.ServerConfig{LogLevel: "info"}, &buf)
	require.NoError(t, err)

	logger.Info("task submitted", "task_name", "generate_outline")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "task submitted", record["msg"])
	assert.Equal(t, "generate_outline", record["task_name"])
	assert.Equal(t, "INFO", record["level"])
}
