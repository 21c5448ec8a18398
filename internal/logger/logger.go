// Package logger configures the global slog logger for gcpsetup.
package logger

import (
	"log/slog"
	"os"

	"github.com/wajahatashraf/gcp-setup/internal/constants"
)

// Initialize sets up the global slog logger based on the environment.
// CLI invocations get a colored human-readable handler on stderr; the
// deployed service logs JSON so Cloud Logging can parse it.
func Initialize(env constants.Environment, level slog.Level) *slog.Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level: level,
	}

	if env == constants.Service {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = NewColorHandler(os.Stderr, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	slog.Debug("logger initialized", "env", env, "level", level)

	return logger
}
