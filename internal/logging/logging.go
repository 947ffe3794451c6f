package logging

import (
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/thoreinstein/mcpm/internal/errors"
)

// Format selects how records are written to the primary output.
type Format string

const (
	// FormatText writes one colored line per record for humans.
	FormatText Format = "text"
	// FormatJSON writes one JSON object per record.
	FormatJSON Format = "json"
)

// ErrInvalidFormat is returned for a log format other than text or json.
var ErrInvalidFormat = errors.New("invalid log format")

// ParseFormat validates a --log-format value. The empty string means text.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	}
	return "", errors.Wrapf(ErrInvalidFormat, "%q", s)
}

// Options configures [New].
type Options struct {
	Level  slog.Level
	Format Format

	// Output receives the primary stream, os.Stderr when nil.
	Output io.Writer

	// File, when set, additionally receives every record as JSON regardless
	// of Format.
	File io.Writer
}

// New builds a logger from opts.
func New(opts Options) (*slog.Logger, error) {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	hopts := &slog.HandlerOptions{Level: opts.Level, ReplaceAttr: redactAttr}

	var h slog.Handler
	switch opts.Format {
	case "", FormatText:
		h = NewConsoleHandler(out, opts.Level)
	case FormatJSON:
		h = slog.NewJSONHandler(out, hopts)
	default:
		return nil, errors.Wrapf(ErrInvalidFormat, "%q", opts.Format)
	}

	if opts.File != nil {
		h = fanout{h, slog.NewJSONHandler(opts.File, hopts)}
	}
	return slog.New(h), nil
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// ForTest returns a debug-level logger writing through t.Log, so output
// only shows for failing tests or with -v.
func ForTest(t testing.TB) *slog.Logger {
	t.Helper()
	return slog.New(NewConsoleHandler(testWriter{t}, LevelTrace))
}

type testWriter struct{ t testing.TB }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Helper()
	n := len(p)
	if n > 0 && p[n-1] == '\n' {
		p = p[:n-1]
	}
	w.t.Log(string(p))
	return n, nil
}
