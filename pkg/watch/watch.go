// Package watch rebuilds the index when the supplemental store changes on disk.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/pipeline"
)

// DefaultDebounce coalesces the burst of events an editor save produces.
const DefaultDebounce = 2 * time.Second

// Rebuilder runs a full rebuild.
type Rebuilder interface {
	Rebuild(ctx context.Context) pipeline.RebuildResult
}

// Watcher triggers a rebuild after the watched file settles.
type Watcher struct {
	path      string
	rebuilder Rebuilder
	debounce  time.Duration
	logger    *slog.Logger
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period after the last change.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		w.debounce = d
	}
}

// New returns a Watcher for path.
func New(path string, rebuilder Rebuilder, logger *slog.Logger, opts ...Option) (*Watcher, error) {
	if path == "" {
		return nil, errors.New("watch path is required")
	}
	if rebuilder == nil {
		return nil, errors.New("rebuilder is required")
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving watch path: %w", err)
	}

	w := &Watcher{
		path:      abs,
		rebuilder: rebuilder,
		debounce:  DefaultDebounce,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Run blocks until ctx is done. The parent directory is watched so the file
// may be created, replaced or renamed over while the watcher runs.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating supplemental watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("watching supplemental dir: %w", err)
	}

	w.logger.Info("watching supplemental store", "path", w.path, "debounce", w.debounce)

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug("supplemental store changed", "op", event.Op.String())
			timer.Reset(w.debounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("supplemental watcher error: %w", err)

		case <-timer.C:
			result := w.rebuilder.Rebuild(ctx)
			if !result.OK() {
				w.logger.Warn("rebuild after supplemental change failed", "error", result.Err)
			}
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0
}
