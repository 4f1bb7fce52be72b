package config

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	// ListenAddr is the HTTP listen address.
	ListenAddr string `env:"EVALD_LISTEN_ADDR" envDefault:":8000"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `env:"EVALD_LOG_LEVEL" envDefault:"info"`

	// MaxWorkers caps the number of concurrently running workflow
	// executions. 0 disables the cap.
	MaxWorkers int64 `env:"EVALD_MAX_WORKERS" envDefault:"8"`

	LLM LLMConfig
}

// LLMConfig configures the hosted chat-completions endpoint the evaluation
// pipeline talks to.
type LLMConfig struct {
	BaseURL string        `env:"EVALD_LLM_BASE_URL" envDefault:"https://api.groq.com/openai/v1"`
	APIKey  string        `env:"GROQ_API_KEY"`
	Timeout time.Duration `env:"EVALD_LLM_TIMEOUT" envDefault:"120s"`
}

// Load reads configuration from environment variables and applies guardrails.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.Sanitize()
	return cfg, nil
}

// Sanitize applies guardrails to values loaded from env.
func (c *Config) Sanitize() {
	if c.MaxWorkers < 0 {
		c.MaxWorkers = 0
	}
	if c.LLM.Timeout <= 0 {
		c.LLM.Timeout = 120 * time.Second
	}
	c.LLM.BaseURL = strings.TrimRight(c.LLM.BaseURL, "/")
}

// SlogLevel maps the configured level string to a slog.Level, defaulting to
// info for unknown values.
func (c Config) SlogLevel() slog.Level {
	return parseLogLevel(c.LogLevel)
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger creates a structured JSON logger writing to w at the given level.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
}
