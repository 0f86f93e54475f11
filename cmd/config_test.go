package cmd

import (
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"climb.dev/pkg/climb/internal/domain"
)

func TestConfigConstants(t *testing.T) {
	assert.Equal(t, "climb", configBaseName)
	assert.Equal(t, "climb.yaml", configFileName)
	assert.Equal(t, ".", configFolderPath)
	assert.Equal(t, "output", outputFlagName)
	assert.Equal(t, "parallel", runParallelFlagName)
	assert.Equal(t, "budget.type", budgetTypeKey)
	assert.Equal(t, ".climb-reports", defaultReportsDir)
	assert.Equal(t, 1, defaultRunParallel)
	assert.Equal(t, "CLIMB", envPrefix)
}

func TestConfigVersionConstants(t *testing.T) {
	assert.Equal(t, "version", configVersionKey)
	assert.Equal(t, 1, currentConfigVersion)
}

func TestSearchConfigDefaults(t *testing.T) {
	assert.Equal(t, domain.DefaultConfig(), searchConfig())
}

func TestParseSlogLevel(t *testing.T) {
	tests := []struct {
		value string
		want  slog.Level
	}{
		{"", slog.LevelWarn},
		{"debug", slog.LevelDebug},
		{" INFO ", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"-4", slog.LevelDebug},
		{"loud", slog.LevelWarn},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			assert.Equal(t, tt.want, parseSlogLevel(tt.value, slog.LevelWarn))
		})
	}
}

func TestConfigureLogger(t *testing.T) {
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })

	configureLogger(filepath.Join(t.TempDir(), "climb.log"), true)

	assert.Same(t, globalLogger, slog.Default())
	assert.True(t, globalLogger.Enabled(t.Context(), slog.LevelDebug))

	configureLogger(filepath.Join(t.TempDir(), "climb.log"), false)

	assert.False(t, globalLogger.Enabled(t.Context(), slog.LevelDebug))
	assert.True(t, globalLogger.Enabled(t.Context(), slog.LevelInfo))
}
