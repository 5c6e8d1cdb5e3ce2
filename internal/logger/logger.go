package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	charmlog "github.com/charmbracelet/log"
	"github.com/jwebster45206/story-console/internal/config"
)

// Setup configures the global slog logger based on environment.
// The console owns stdout, so log output goes to w (stderr or a log file).
func Setup(cfg *config.Config, w io.Writer) *slog.Logger {
	var handler slog.Handler

	if cfg.Environment == "production" {
		// JSON format for production
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level: cfg.LogLevel,
		})
	} else {
		handler = charmlog.NewWithOptions(w, charmlog.Options{
			Level:           charmlog.Level(cfg.LogLevel),
			Prefix:          "story-console",
			ReportTimestamp: true,
			TimeFormat:      time.TimeOnly,
		})
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)

	return logger
}

// OpenOutput returns the writer logs should go to: the configured log file,
// or stderr when none is set. The returned close func is always safe to call.
func OpenOutput(cfg *config.Config) (io.Writer, func() error, error) {
	if cfg.LogFile == "" {
		return os.Stderr, func() error { return nil }, nil
	}

	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, f.Close, nil
}

// WithRequestID adds request ID to logger context
func WithRequestID(logger *slog.Logger, requestID string) *slog.Logger {
	return logger.With("request_id", requestID)
}

// WithError adds error to logger context
func WithError(logger *slog.Logger, err error) *slog.Logger {
	return logger.With("error", err.Error())
}
