package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Config holds all runtime configuration for the engine and its services.
// Values are read from environment variables with sensible development
// defaults.
type Config struct {
	Port        string `env:"PORT" envDefault:"8080"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevelRaw string `env:"LOG_LEVEL" envDefault:"info"`

	RedisURL string `env:"REDIS_URL" envDefault:"localhost:6379"`

	// Cloud provider settings.
	GeminiAPIKey  string `env:"GEMINI_API_KEY"`
	GeminiBaseURL string `env:"GEMINI_BASE_URL" envDefault:"https://generativelanguage.googleapis.com"`

	// Local provider settings.
	OllamaBaseURL  string `env:"OLLAMA_BASE_URL" envDefault:"http://localhost:11434"`
	SDLocalBaseURL string `env:"SD_LOCAL_BASE_URL" envDefault:"http://localhost:7860"`

	// Credit ledger settings.
	MaxCredits       int  `env:"MAX_CREDITS" envDefault:"100"`
	CostTextTurn     int  `env:"COST_TEXT_TURN" envDefault:"1"`
	CostImage        int  `env:"COST_IMAGE" envDefault:"5"`
	CostImageEdit    int  `env:"COST_IMAGE_EDIT" envDefault:"5"`
	CostSuggestion   int  `env:"COST_SUGGESTION" envDefault:"1"`
	PromptAssist     bool `env:"PROMPT_ASSIST" envDefault:"true"`
	StreamingEnabled bool `env:"STREAMING_ENABLED" envDefault:"true"`
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// LogLevel returns the parsed slog level for the configured LOG_LEVEL.
func (c *Config) LogLevel() slog.Level {
	switch strings.ToLower(c.LogLevelRaw) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// IsProduction reports whether the service runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
