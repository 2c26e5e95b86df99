// Package logger builds the *slog.Logger used by the ragbot server and
// commands.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"

	charmlog "github.com/charmbracelet/log"
)

type config struct {
	level     slog.Level
	pretty    bool
	json      bool
	component string
	writers   []io.Writer
	source    bool
}

// New builds a *slog.Logger from the given options. Without options it writes
// text at Info level to stdout. JSON wins over pretty when both are set.
func New(opts ...Option) *slog.Logger {
	c := &config{level: slog.LevelInfo}
	for _, opt := range opts {
		opt(c)
	}

	w := c.writer()

	if c.pretty && !c.json {
		h := charmlog.NewWithOptions(w, charmlog.Options{
			Level:           charmlog.Level(c.level),
			ReportTimestamp: true,
			ReportCaller:    c.source,
			Prefix:          c.component,
		})
		return slog.New(h)
	}

	hopts := &slog.HandlerOptions{Level: c.level, AddSource: c.source}
	var h slog.Handler = slog.NewTextHandler(w, hopts)
	if c.json {
		h = slog.NewJSONHandler(w, hopts)
	}

	l := slog.New(h)
	if c.component != "" {
		l = l.With("component", c.component)
	}
	return l
}

func (c *config) writer() io.Writer {
	switch len(c.writers) {
	case 0:
		return os.Stdout
	case 1:
		return c.writers[0]
	default:
		return io.MultiWriter(c.writers...)
	}
}

// Nop returns a logger that discards everything.
func Nop() *slog.Logger {
	return slog.New(nopHandler{})
}

type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (h nopHandler) WithAttrs([]slog.Attr) slog.Handler      { return h }
func (h nopHandler) WithGroup(string) slog.Handler           { return h }
