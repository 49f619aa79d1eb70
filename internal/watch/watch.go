// Package watch re-reads a file every time it changes.
//
// It implements the file-following half of "recase watch": the whole file
// is handed to a callback once at start and again after each burst of
// writes. Editors that save by renaming a new file into place are followed
// through the rename.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the watcher waits after the last write
// before reading the file.
const DefaultDebounce = 100 * time.Millisecond

// ErrRotated is returned when the file disappears and does not come back
// within the reopen timeout.
var ErrRotated = errors.New("watched file was removed")

// Options configures the watcher behavior.
type Options struct {
	FilePath      string        // File to watch
	Debounce      time.Duration // Quiet period before re-reading; DefaultDebounce when zero
	ReopenTimeout time.Duration // How long to wait for a removed file to reappear
	Logger        *slog.Logger

	// OnChange receives the full file content. An error stops the watcher.
	OnChange func(ctx context.Context, content string) error
}

// Watcher follows one file.
type Watcher struct {
	opts    Options
	last    string
	emitted bool
}

// New creates a Watcher. FilePath, OnChange and Logger are required.
func New(opts Options) (*Watcher, error) {
	if opts.FilePath == "" {
		return nil, fmt.Errorf("file path cannot be empty")
	}
	if opts.OnChange == nil {
		return nil, fmt.Errorf("change callback cannot be nil")
	}
	if opts.Logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.ReopenTimeout <= 0 {
		opts.ReopenTimeout = 10 * time.Second
	}
	return &Watcher{opts: opts}, nil
}

// Run emits the current content, then follows the file until ctx is
// cancelled or an error occurs. Cancellation is not an error.
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.emit(ctx); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to setup watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(w.opts.FilePath); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.opts.FilePath, err)
	}

	var timer *time.Timer
	var fire <-chan time.Time
	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(w.opts.Debounce)
		} else {
			timer.Reset(w.opts.Debounce)
		}
		fire = timer.C
	}
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("watcher closed unexpectedly")
			}
			switch {
			case event.Has(fsnotify.Write) || event.Has(fsnotify.Create):
				schedule()
			case event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename):
				if err := w.reopen(ctx, watcher); err != nil {
					return err
				}
				schedule()
			}

		case <-fire:
			fire = nil
			if err := w.emit(ctx); err != nil {
				return err
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher error channel closed")
			}
			return fmt.Errorf("watcher error: %w", err)
		}
	}
}

// emit reads the file and calls OnChange unless the content is the same
// as last time.
func (w *Watcher) emit(ctx context.Context) error {
	data, err := os.ReadFile(w.opts.FilePath)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", w.opts.FilePath, err)
	}
	content := string(data)
	if w.emitted && content == w.last {
		w.opts.Logger.Debug("file unchanged, skipping", "path", w.opts.FilePath)
		return nil
	}
	w.last, w.emitted = content, true
	return w.opts.OnChange(ctx, content)
}

// reopen waits for a removed or renamed file to reappear and watches it
// again.
func (w *Watcher) reopen(ctx context.Context, watcher *fsnotify.Watcher) error {
	// The old inode may still be registered after a rename.
	_ = watcher.Remove(w.opts.FilePath)

	timeout := time.After(w.opts.ReopenTimeout)
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		if _, err := os.Stat(w.opts.FilePath); err == nil {
			if err := watcher.Add(w.opts.FilePath); err != nil {
				return fmt.Errorf("failed to watch replaced file: %w", err)
			}
			w.opts.Logger.Debug("following replaced file", "path", w.opts.FilePath)
			return nil
		}

		select {
		case <-ctx.Done():
			return nil
		case <-timeout:
			return fmt.Errorf("%w: %s", ErrRotated, w.opts.FilePath)
		case <-ticker.C:
		}
	}
}
