// Package obslog provides the runtime's structured logger. It emits the
// same bracketed text-log line shape the rest of the corpus parses
// (internal/reference/log_structured_teacher_test.go.txt):
//
//	2026-02-08 01:11:57 [INFO] [RUNTIME] [Pipeline] pipeline.go:42 - message
//
// via a small slog.Handler so call sites still use the standard
// log/slog API (the ambient logging library every other package in this
// repo reaches for, rather than a hand-rolled logger).
package obslog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

// TextHandler renders slog.Record values as one bracketed line per the
// corpus's observed log format.
type TextHandler struct {
	w        io.Writer
	category string
	level    slog.Leveler
}

// NewTextHandler builds a TextHandler writing to w, tagging every line
// with category (e.g. "RUNTIME", "JIT", "EVENTBUS").
func NewTextHandler(w io.Writer, category string, level slog.Leveler) *TextHandler {
	if level == nil {
		level = slog.LevelInfo
	}
	return &TextHandler{w: w, category: category, level: level}
}

func (h *TextHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *TextHandler) Handle(_ context.Context, r slog.Record) error {
	component := "Runtime"
	var attrs []string
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == "component" {
			component = a.Value.String()
			return true
		}
		attrs = append(attrs, fmt.Sprintf("%s=%v", a.Key, a.Value.Any()))
		return true
	})

	_, file, line := callerInfo()
	ts := r.Time
	if ts.IsZero() {
		ts = time.Now()
	}

	msg := r.Message
	if len(attrs) > 0 {
		msg = msg + " " + strings.Join(attrs, " ")
	}

	_, err := fmt.Fprintf(h.w, "%s [%s] [%s] [%s] %s:%d - %s\n",
		ts.Format("2006-01-02 15:04:05"),
		levelTag(r.Level),
		h.category,
		component,
		file, line,
		msg,
	)
	return err
}

func (h *TextHandler) WithAttrs(attrs []slog.Attr) slog.Handler { return h }
func (h *TextHandler) WithGroup(name string) slog.Handler       { return h }

func levelTag(l slog.Level) string {
	switch {
	case l >= slog.LevelError:
		return "ERROR"
	case l >= slog.LevelWarn:
		return "WARN"
	case l >= slog.LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}

// callerInfo best-efforts a source file:line for the log line, skipping
// slog's own frames.
func callerInfo() (pc uintptr, file string, line int) {
	var pcs [1]uintptr
	n := runtime.Callers(5, pcs[:])
	if n == 0 {
		return 0, "unknown", 0
	}
	frames := runtime.CallersFrames(pcs[:n])
	f, _ := frames.Next()
	return pcs[0], filepath.Base(f.File), f.Line
}

// New builds a component-scoped logger writing through a TextHandler to w.
func New(w io.Writer, category, component string) *slog.Logger {
	return slog.New(NewTextHandler(w, category, slog.LevelInfo)).With("component", component)
}
