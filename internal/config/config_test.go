package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chtemp(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })
}

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	chtemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "metric", cfg.Units.System)
	assert.Equal(t, 10, cfg.Sizing.MaxIterations)
	assert.InDelta(t, 1e-3, cfg.Sizing.Tolerance, 1e-12)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "sizer.db", cfg.Store.SQLitePath)
	assert.Equal(t, 4, cfg.Sweep.Concurrency)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.InDelta(t, 50.0, cfg.Server.RequestsPerSec, 1e-9)
	assert.Equal(t, 100, cfg.Server.Burst)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
units:
  system: imperial
sizing:
  max_iterations: 20
store:
  driver: postgres
  database_url: postgres://localhost/sizer
log:
  level: debug
  format: console
server:
  port: 9090
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "imperial", cfg.Units.System)
	assert.Equal(t, 20, cfg.Sizing.MaxIterations)
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "postgres://localhost/sizer", cfg.Store.DatabaseURL)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 9090, cfg.Server.Port)
	// Defaults still apply for unset values
	assert.Equal(t, 4, cfg.Sweep.Concurrency)
	assert.InDelta(t, 1e-3, cfg.Sizing.Tolerance, 1e-12)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	chtemp(t)
	t.Setenv("SIZER_UNITS_SYSTEM", "imperial")
	t.Setenv("SIZER_SERVER_PORT", "7070")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "imperial", cfg.Units.System)
	assert.Equal(t, 7070, cfg.Server.Port)
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	assert.NotNil(t, zap.L())

	require.NoError(t, InitLogger(LogConfig{Level: "warn", Format: "json"}))

	err := InitLogger(LogConfig{Level: "shouting", Format: "json"})
	require.Error(t, err)
}
