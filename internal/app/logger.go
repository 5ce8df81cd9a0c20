package app

import (
	"io"
	"log/slog"
)

// newLogger builds the application's isolated slog.Logger. It never sets
// the global logger; every component receives this instance through
// ctxlog. An unrecognized level falls back to info rather than failing
// the boot.
func newLogger(levelStr, formatStr string, outW io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(levelStr)); err != nil {
		level = slog.LevelInfo
	}

	handlerOpts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if formatStr == "text" {
		handler = slog.NewTextHandler(outW, handlerOpts)
	} else {
		// JSON is the default format, matching the CLI default.
		handler = slog.NewJSONHandler(outW, handlerOpts)
	}

	return slog.New(handler).With("app", "flockgo")
}
