package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/jwebster45206/story-console/pkg/generation"
	"github.com/jwebster45206/story-console/pkg/prompts"
)

// Fixed deployment settings. The game itself takes no flags or environment.
const (
	DefaultOllamaBaseURL     = "http://localhost:11434"
	DefaultModelName         = "llama3.2"
	DefaultHealthMode        = generation.HealthModeAbsolute
	DefaultGenerationTimeout = 2 * time.Minute
	DefaultStartupTimeout    = 10 * time.Minute
)

type Config struct {
	OllamaBaseURL     string
	ModelName         string
	HealthMode        generation.HealthMode
	Theme             string
	GenerationTimeout time.Duration
	StartupTimeout    time.Duration
	HistoryLimit      int // story entries sent with each continuation; 0 sends all

	// Operator settings; these only affect diagnostics.
	Environment string
	LogLevel    slog.Level
	LogFile     string
}

// Load returns the deployment configuration. Only the logging settings may be
// overridden from the environment (ENVIRONMENT, LOG_LEVEL, LOG_FILE).
func Load() (*Config, error) {
	cfg := &Config{
		OllamaBaseURL:     DefaultOllamaBaseURL,
		ModelName:         DefaultModelName,
		HealthMode:        DefaultHealthMode,
		Theme:             prompts.DefaultTheme,
		GenerationTimeout: DefaultGenerationTimeout,
		StartupTimeout:    DefaultStartupTimeout,
		Environment:       getEnv("ENVIRONMENT", "development"),
		LogLevel:          parseLogLevel(getEnv("LOG_LEVEL", "info")),
		LogFile:           getEnv("LOG_FILE", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings that would otherwise fail later at first use.
func (c *Config) Validate() error {
	u, err := url.Parse(c.OllamaBaseURL)
	if err != nil {
		return fmt.Errorf("invalid ollama base url %q: %w", c.OllamaBaseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid ollama base url %q: scheme and host are required", c.OllamaBaseURL)
	}
	if strings.TrimSpace(c.ModelName) == "" {
		return fmt.Errorf("model name is required")
	}
	if c.HealthMode != generation.HealthModeAbsolute && c.HealthMode != generation.HealthModeDelta {
		return fmt.Errorf("unknown health mode %q", c.HealthMode)
	}
	if c.HistoryLimit < 0 {
		return fmt.Errorf("history limit must not be negative")
	}
	if c.GenerationTimeout < 0 {
		return fmt.Errorf("generation timeout must not be negative")
	}
	return nil
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
