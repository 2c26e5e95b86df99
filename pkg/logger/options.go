package logger

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Option configures a Logger created with New.
type Option func(*config)

// WithDebug sets the level to Debug when true, Info otherwise.
func WithDebug(debug bool) Option {
	return func(c *config) {
		c.level = slog.LevelInfo
		if debug {
			c.level = slog.LevelDebug
		}
	}
}

// WithLevel sets the minimum level.
func WithLevel(level slog.Level) Option {
	return func(c *config) {
		c.level = level
	}
}

// ParseLevel maps "debug", "info", "warn"/"warning" and "error" to a level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// WithPretty switches to the charmbracelet/log handler for terminal output.
func WithPretty(pretty bool) Option {
	return func(c *config) {
		c.pretty = pretty
	}
}

// WithJSON switches to slog's JSON handler, used for --log-file.
func WithJSON(json bool) Option {
	return func(c *config) {
		c.json = json
	}
}

// WithComponent tags every record with component=name. Pretty output shows
// it as the line prefix instead.
func WithComponent(name string) Option {
	return func(c *config) {
		c.component = name
	}
}

// WithWriter overrides the output writer. Defaults to os.Stdout.
func WithWriter(w io.Writer) Option {
	return func(c *config) {
		c.writers = []io.Writer{w}
	}
}

// WithWriters writes to every w.
func WithWriters(w ...io.Writer) Option {
	return func(c *config) {
		c.writers = w
	}
}

// WithSource includes source file:line in log output.
func WithSource(source bool) Option {
	return func(c *config) {
		c.source = source
	}
}
