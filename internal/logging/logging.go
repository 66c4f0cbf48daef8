// Package logging configures the process-wide logger.
package logging

import (
	"log/slog"
	"os"
)

// Setup installs a text handler on stderr as the default logger. Debug
// level is enabled in verbose mode. Log output never carries secret
// material; callers log names and error kinds only.
func Setup(verbose bool) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}
