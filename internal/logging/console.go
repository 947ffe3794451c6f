package logging

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/thoreinstein/mcpm/internal/env"
)

// ConsoleHandler writes records as single lines:
//
//	15:04:05 WARN  doppler unavailable err="not logged in"
//
// Levels are colored when the output is a color-capable terminal. Attribute
// values are passed through secret redaction before they are printed.
type ConsoleHandler struct {
	level  slog.Leveler
	out    io.Writer
	mu     *sync.Mutex
	prefix string // pre-rendered WithAttrs attributes
	group  string // dotted group path, with trailing dot
	color  bool
}

// NewConsoleHandler returns a handler writing records at or above level to out.
func NewConsoleHandler(out io.Writer, level slog.Leveler) *ConsoleHandler {
	if level == nil {
		level = slog.LevelInfo
	}
	return &ConsoleHandler{
		level: level,
		out:   out,
		mu:    &sync.Mutex{},
		color: SupportsColor(out),
	}
}

func (h *ConsoleHandler) Enabled(_ context.Context, l slog.Level) bool {
	return l >= h.level.Level()
}

func (h *ConsoleHandler) Handle(_ context.Context, r slog.Record) error {
	var buf bytes.Buffer

	if !r.Time.IsZero() {
		buf.WriteString(h.paint(color.FgHiBlack, r.Time.Format("15:04:05")))
		buf.WriteByte(' ')
	}
	name := levelString(r.Level)
	buf.WriteString(h.paint(levelColor(r.Level), name))
	buf.WriteString(strings.Repeat(" ", max(1, 6-len(name))))
	buf.WriteString(r.Message)
	buf.WriteString(h.prefix)
	r.Attrs(func(a slog.Attr) bool {
		h.writeAttr(&buf, h.group, a)
		return true
	})
	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.out.Write(buf.Bytes())
	return err
}

func (h *ConsoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	var buf bytes.Buffer
	for _, a := range attrs {
		h.writeAttr(&buf, h.group, a)
	}
	c := *h
	c.prefix += buf.String()
	return &c
}

func (h *ConsoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	c := *h
	c.group += name + "."
	return &c
}

func (h *ConsoleHandler) writeAttr(buf *bytes.Buffer, group string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	if a.Value.Kind() == slog.KindGroup {
		for _, ga := range a.Value.Group() {
			h.writeAttr(buf, group+a.Key+".", ga)
		}
		return
	}

	key := group + a.Key
	val := redactValue(key, a.Value)
	if strings.ContainsAny(val, " \t\"=") {
		val = fmt.Sprintf("%q", val)
	}
	fmt.Fprintf(buf, " %s=%s", h.paint(color.FgCyan, key), val)
}

func (h *ConsoleHandler) paint(attr color.Attribute, s string) string {
	if !h.color {
		return s
	}
	c := color.New(attr)
	c.EnableColor()
	return c.Sprint(s)
}

func levelColor(l slog.Level) color.Attribute {
	switch {
	case l >= slog.LevelError:
		return color.FgRed
	case l >= slog.LevelWarn:
		return color.FgYellow
	case l >= slog.LevelInfo:
		return color.FgGreen
	case l > LevelTrace:
		return color.FgMagenta
	default:
		return color.FgHiBlack
	}
}

// redactValue renders v for display with secrets masked.
func redactValue(key string, v slog.Value) string {
	s := v.String()
	if v.Kind() == slog.KindAny {
		if err, ok := v.Any().(error); ok {
			s = err.Error()
		}
	}
	return env.Redact(key, s)
}

// redactAttr is the ReplaceAttr hook for the JSON handlers.
func redactAttr(groups []string, a slog.Attr) slog.Attr {
	if len(groups) == 0 {
		switch a.Key {
		case slog.TimeKey, slog.LevelKey, slog.MessageKey, slog.SourceKey:
			return a
		}
	}
	key := a.Key
	if len(groups) > 0 {
		key = strings.Join(groups, ".") + "." + key
	}
	switch a.Value.Kind() {
	case slog.KindString, slog.KindAny:
		if red := redactValue(key, a.Value); red != a.Value.String() {
			return slog.String(a.Key, red)
		}
	}
	return a
}

// IsTTY reports whether w is a terminal. Anything exposing Fd, such as
// *os.File, is checked.
func IsTTY(w any) bool {
	f, ok := w.(interface{ Fd() uintptr })
	return ok && term.IsTerminal(int(f.Fd()))
}

// SupportsColor reports whether ANSI colors should be written to w. NO_COLOR
// and TERM=dumb disable colors.
func SupportsColor(w io.Writer) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	return IsTTY(w)
}
