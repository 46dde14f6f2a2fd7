package logging

import (
	"log/slog"
	"os"
	"strings"

	"faturas/internal/config"
)

// New creates a slog.Logger from log configuration. The console format is a
// text handler; anything else falls back to JSON.
func New(cfg *config.LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: levelFromString(cfg.Level)}
	if strings.EqualFold(cfg.Format, "console") {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

func levelFromString(value string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "error":
		return slog.LevelError
	case "warn", "warning":
		return slog.LevelWarn
	case "info":
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}
