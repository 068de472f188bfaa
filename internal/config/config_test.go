package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8765", cfg.ExecutorURL)
	assert.Equal(t, "https://open.spotify.com", cfg.SpotifyBaseURL)
	assert.Equal(t, "/", cfg.StartLocation)
	assert.Equal(t, 500*time.Millisecond, cfg.Presence.RetryInterval)
	assert.Equal(t, 40, cfg.Presence.MaxAttempts)
	assert.Equal(t, "fixed", cfg.Presence.Backoff)
	assert.False(t, cfg.Telemetry.Enabled)
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("EXECUTOR_URL", "http://127.0.0.1:9000")
	t.Setenv("PRESENCE_RETRY_INTERVAL", "250ms")
	t.Setenv("PRESENCE_BACKOFF", "exponential")
	t.Setenv("TELEMETRY_ENABLED", "true")
	t.Setenv("TELEMETRY_OTLP_ENDPOINT", "collector:4317")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "http://127.0.0.1:9000", cfg.ExecutorURL)
	assert.Equal(t, 250*time.Millisecond, cfg.Presence.RetryInterval)
	assert.Equal(t, "exponential", cfg.Presence.Backoff)
	assert.True(t, cfg.Telemetry.Enabled)
	assert.Equal(t, "collector:4317", cfg.Telemetry.OTLPEndpoint)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"zero attempts", "PRESENCE_MAX_ATTEMPTS", "0"},
		{"unknown backoff", "PRESENCE_BACKOFF", "random"},
		{"negative interval", "PRESENCE_RETRY_INTERVAL", "-1s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}

func TestSlogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"ERROR":   slog.LevelError,
		"verbose": slog.LevelInfo,
	}

	for in, want := range tests {
		c := &Config{LogLevel: in}
		assert.Equal(t, want, c.SlogLevel(), in)
	}
}
