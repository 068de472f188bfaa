package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config struct for environment variables.
type Config struct {
	ExecutorURL    string        `envconfig:"EXECUTOR_URL" default:"http://localhost:8765"`
	SpotifyBaseURL string        `envconfig:"SPOTIFY_BASE_URL" default:"https://open.spotify.com"`
	DBPath         string        `envconfig:"DB_PATH" default:"spotdl_exporter.db"`
	StartLocation  string        `envconfig:"START_LOCATION" default:"/"`
	PageTimeout    time.Duration `envconfig:"PAGE_TIMEOUT" default:"10s"`

	LogLevel          string `envconfig:"LOG_LEVEL" default:"INFO"`
	LogFile           string `envconfig:"LOG_FILE" default:"spotdl_exporter.log"`
	DiscordWebhookURL string `envconfig:"DISCORD_WEBHOOK_URL"`

	Presence struct {
		RetryInterval time.Duration `split_words:"true" default:"500ms"`
		MaxInterval   time.Duration `split_words:"true" default:"5s"`
		MaxAttempts   int           `split_words:"true" default:"40"`
		Backoff       string        `default:"fixed"`
	}

	Telemetry struct {
		Enabled         bool          `default:"false"`
		MetricsAddress  string        `split_words:"true" default:"127.0.0.1:9464"`
		OTLPEndpoint    string        `envconfig:"OTLP_ENDPOINT"`
		ShutdownTimeout time.Duration `split_words:"true" default:"5s"`
	}
}

// LoadConfig reads environment variables and populates the Config struct.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("error processing env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Presence.RetryInterval <= 0 {
		return fmt.Errorf("PRESENCE_RETRY_INTERVAL must be positive, got %s", c.Presence.RetryInterval)
	}

	if c.Presence.MaxAttempts <= 0 {
		return fmt.Errorf("PRESENCE_MAX_ATTEMPTS must be positive, got %d", c.Presence.MaxAttempts)
	}

	switch strings.ToLower(c.Presence.Backoff) {
	case "fixed", "linear", "exponential":
	default:
		return fmt.Errorf("invalid PRESENCE_BACKOFF: %s", c.Presence.Backoff)
	}

	return nil
}

func (c *Config) SlogLevel() slog.Level {
	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
