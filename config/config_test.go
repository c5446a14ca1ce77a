package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cardlink.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 20.0, cfg.Routing.Margin)
	assert.Equal(t, 50, cfg.Debug.MaxSessions)
	assert.Equal(t, time.Second, cfg.Viewer.PollInterval)
}

func TestLoad_EmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
routing:
  margin: 32
debug:
  maxSessions: 10
storage:
  inMemory: true
  dir: ""
viewer:
  pollInterval: 250ms
log:
  level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 32.0, cfg.Routing.Margin)
	assert.Equal(t, 256, cfg.Routing.CacheSize, "unset keys keep defaults")
	assert.Equal(t, 10, cfg.Debug.MaxSessions)
	assert.True(t, cfg.Storage.InMemory)
	assert.Equal(t, 250*time.Millisecond, cfg.Viewer.PollInterval)
	assert.Equal(t, slog.LevelDebug, cfg.Log.SlogLevel())
	assert.Equal(t, "cardlink", cfg.Metrics.Namespace)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"negative margin", "routing:\n  margin: -1\n"},
		{"zero history", "debug:\n  maxSessions: 0\n"},
		{"unknown level", "log:\n  level: loud\n"},
		{"fast poll", "viewer:\n  pollInterval: 1ms\n"},
		{"no store dir", "storage:\n  dir: \"\"\n"},
		{"bad namespace", "metrics:\n  namespace: \"a b\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalid)

	_, err = Load(writeConfig(t, "routing: [1, 2"))
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("anything"))
}
