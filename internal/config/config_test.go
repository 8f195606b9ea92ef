package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "leads.db", cfg.Store.DatabaseURL)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 15, cfg.Sources.MaxEntries)
	assert.Equal(t, 20, cfg.Signals.MaxHits)
	assert.InDelta(t, 10.0, cfg.Scoring.BaseScale, 0.001)
	assert.InDelta(t, 60.0, cfg.Scoring.BaseCap, 0.001)
	assert.InDelta(t, 35.0, cfg.Scoring.PropensityWeight, 0.001)
	assert.InDelta(t, 70.0, cfg.Scoring.HighScore, 0.001)
	assert.InDelta(t, 0.6, cfg.Scoring.HighConfidence, 0.001)
	assert.InDelta(t, 40.0, cfg.Scoring.LowScore, 0.001)
	assert.InDelta(t, 0.3, cfg.Scoring.LowConfidence, 0.001)
	assert.InDelta(t, 0.05, cfg.Learning.LearningRate, 0.001)
	assert.InDelta(t, 0.25, cfg.Learning.MinWeight, 0.001)
	assert.InDelta(t, 4.0, cfg.Learning.MaxWeight, 0.001)
	assert.Equal(t, 10, cfg.Learning.MinTrainingEvents)
	assert.True(t, cfg.Notify.OnNewLead)
	assert.Equal(t, 5, cfg.Batch.MaxConcurrent)
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
store:
  driver: postgres
  database_url: postgres://localhost/leads
log:
  level: debug
  format: console
scoring:
  high_score: 80
batch:
  max_concurrent: 10
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.InDelta(t, 80.0, cfg.Scoring.HighScore, 0.001)
	assert.Equal(t, 10, cfg.Batch.MaxConcurrent)
	// Defaults still apply for unset values
	assert.InDelta(t, 0.6, cfg.Scoring.HighConfidence, 0.001)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
store:
  driver: sqlite
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("LEADGEN_STORE_DRIVER", "postgres")
	t.Setenv("LEADGEN_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}
