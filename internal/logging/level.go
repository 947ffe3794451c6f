package logging

import (
	"context"
	"log/slog"
	"strings"
)

// LevelTrace is more verbose than slog.LevelDebug. It is used for
// per-key env resolution and raw process output.
const LevelTrace = slog.Level(-8)

// LevelFromVerbosity maps the count of -v flags to a log level.
//
//	0: Warn
//	1: Info
//	2: Debug
//	3+: Trace
func LevelFromVerbosity(v int) slog.Level {
	switch {
	case v <= 0:
		return slog.LevelWarn
	case v == 1:
		return slog.LevelInfo
	case v == 2:
		return slog.LevelDebug
	default:
		return LevelTrace
	}
}

// EnvVerbosity maps the MCPM_DEBUG environment value to a -v count:
// "1" or "true" enable debug, "2" enables trace.
func EnvVerbosity(value string) int {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true":
		return 2
	case "2":
		return 3
	}
	return 0
}

// levelString renders a level name, naming LevelTrace explicitly.
func levelString(l slog.Level) string {
	if l <= LevelTrace {
		return "TRACE"
	}
	return l.String()
}

type ctxKey struct{}

// NewContext returns a copy of ctx carrying logger.
func NewContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// FromContext returns the logger stored in ctx, or slog.Default() when none is set.
func FromContext(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if logger, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && logger != nil {
			return logger
		}
	}
	return slog.Default()
}
