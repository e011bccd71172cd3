// Package sqligitlog configures the process-wide structured logger, the way
// the teacher's util.InitSlog does for sqldef, extended with an explicit
// verbose flag so the driver's -v option and the LOG_LEVEL environment
// variable agree on the same precedence.
package sqligitlog

import (
	"log/slog"
	"os"
	"strings"
)

// Init configures slog's default logger. verbose raises the level to
// debug outright; otherwise LOG_LEVEL (if set) picks the level, defaulting
// to info. Neither input changes what export/import write to disk — only
// how much diagnostic narration accompanies it.
func Init(verbose bool) {
	level := slog.LevelInfo

	if raw, ok := os.LookupEnv("LOG_LEVEL"); ok {
		switch strings.ToLower(raw) {
		case "debug":
			level = slog.LevelDebug
		case "info":
			level = slog.LevelInfo
		case "warn":
			level = slog.LevelWarn
		case "error":
			level = slog.LevelError
		}
	}

	if verbose {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}
