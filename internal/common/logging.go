package common

import (
	"log/slog"
	"os"
	"strings"
)

// NewLogger builds the process-wide JSON logger with its level taken
// from LOG_LEVEL (DEBUG, INFO, WARN, ERROR). Unrecognized values fall
// back to INFO.
func NewLogger() *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToUpper(strings.TrimSpace(os.Getenv("LOG_LEVEL"))) {
	case "DEBUG":
		level = slog.LevelDebug
	case "WARN", "WARNING":
		level = slog.LevelWarn
	case "ERROR":
		level = slog.LevelError
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
}
