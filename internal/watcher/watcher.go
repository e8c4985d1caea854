// Package watcher reloads the catalog when the dataset file changes on
// disk. It watches the parent directory rather than the file itself so
// editors and tools that replace the file via rename are still seen.
package watcher

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Service watches the dataset file and triggers a reload after changes
// settle.
type Service struct {
	path     string
	reloadFn func(ctx context.Context) error
	logger   *slog.Logger
	debounce time.Duration
}

// NewService creates a dataset file watcher. reloadFn is invoked once
// per burst of write events.
func NewService(path string, reloadFn func(ctx context.Context) error, logger *slog.Logger) *Service {
	return &Service{
		path:     filepath.Clean(path),
		reloadFn: reloadFn,
		logger:   logger.With("component", "dataset-watcher"),
		debounce: 1 * time.Second,
	}
}

// SetDebounce overrides the default debounce interval (for testing).
func (s *Service) SetDebounce(d time.Duration) {
	s.debounce = d
}

// Start blocks until ctx is canceled, dispatching reloads as the dataset
// file changes. If fsnotify is unavailable the watcher logs and returns;
// the dataset can still be reloaded through the API.
func (s *Service) Start(ctx context.Context) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		s.logger.Warn("fsnotify unavailable, dataset watch disabled", "error", err)
		return
	}
	defer w.Close() //nolint:errcheck

	dir := filepath.Dir(s.path)
	if err := w.Add(dir); err != nil {
		s.logger.Warn("watching dataset directory failed", "dir", dir, "error", err)
		return
	}
	s.logger.Info("watching dataset", slog.String("path", s.path))

	// Debounce timer for coalescing write events into a single reload.
	// Starts stopped; reset on each relevant event.
	timer := time.NewTimer(0)
	if !timer.Stop() {
		<-timer.C
	}
	reloadPending := false

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("dataset watcher stopping")
			return

		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if !s.relevant(ev) {
				continue
			}
			s.logger.Debug("dataset change detected", "op", ev.Op.String())
			if reloadPending {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
			}
			timer.Reset(s.debounce)
			reloadPending = true

		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			s.logger.Warn("dataset watch error", "error", err)

		case <-timer.C:
			reloadPending = false
			if err := s.reloadFn(ctx); err != nil {
				s.logger.Error("dataset reload failed", "error", err)
			}
		}
	}
}

// relevant reports whether the event touches the dataset file with an
// operation that changes its contents.
func (s *Service) relevant(ev fsnotify.Event) bool {
	if filepath.Clean(ev.Name) != s.path {
		return false
	}
	return ev.Op.Has(fsnotify.Write) || ev.Op.Has(fsnotify.Create) || ev.Op.Has(fsnotify.Rename)
}
