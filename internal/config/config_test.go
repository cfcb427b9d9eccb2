package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.SQLDatabase.URI = "/tmp/bench.db"
	cfg.Runner.MaxConcurrent = 16
	cfg.Runner.RequestTimeoutSeconds = 45
	cfg.Metrics.CostCeiling = 0.25
	cfg.LogLevel = "debug"

	require.NoError(t, cfg.Save(path))
	assert.True(t, Exists(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/bench.db", loaded.SQLDatabase.URI)
	assert.Equal(t, 16, loaded.Runner.MaxConcurrent)
	assert.Equal(t, 45, loaded.Runner.RequestTimeoutSeconds)
	assert.Equal(t, 0.25, loaded.Metrics.CostCeiling)
	assert.Equal(t, "debug", loaded.LogLevel)
}

func TestLoadFillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	partial := []byte("sql_database:\n  provider: sqlite\n  uri: custom.db\n")
	require.NoError(t, os.WriteFile(path, partial, 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "custom.db", cfg.SQLDatabase.URI)
	assert.Equal(t, "mongodb", cfg.RunDatabase.Provider)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 8, cfg.Runner.MaxConcurrent)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestRunnerOptionsConversion(t *testing.T) {
	opts := RunnerConfig{
		MaxConcurrent:         4,
		PerModelConcurrent:    1,
		RequestTimeoutSeconds: 10,
		PerModelRPS:           2.5,
	}.RunnerOptions()

	assert.Equal(t, 4, opts.MaxConcurrent)
	assert.Equal(t, 1, opts.PerModelConcurrent)
	assert.Equal(t, 10*time.Second, opts.RequestTimeout)
	assert.Equal(t, 2.5, opts.PerModelRPS)
}

func TestRunnerOptionsDefaults(t *testing.T) {
	opts := RunnerConfig{}.RunnerOptions()

	assert.Equal(t, 8, opts.MaxConcurrent)
	assert.Equal(t, 2, opts.PerModelConcurrent)
	assert.Equal(t, 30*time.Second, opts.RequestTimeout)
	assert.Zero(t, opts.PerModelRPS)
}
