// Package watcher reports changes to registry, spec and docs paths so the
// CLI can re-ingest in watch mode.
package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/alexandria/internal/logger"
)

// DefaultDebounce is how long the watcher waits for events to settle.
const DefaultDebounce = 500 * time.Millisecond

// ChangeFunc receives the paths that changed during one debounce window,
// sorted and deduplicated. It runs on the watcher goroutine, so events that
// arrive while it runs are batched into the next call.
type ChangeFunc func(ctx context.Context, changed []string)

// Watcher watches files and flat directories of markdown files.
type Watcher struct {
	fsw      *fsnotify.Watcher
	debounce time.Duration

	mu    sync.Mutex
	files map[string]bool // watched files, by absolute path
	dirs  map[string]bool // watched docs directories
}

// New creates a watcher. A non-positive debounce uses DefaultDebounce.
func New(debounce time.Duration) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		fsw:      fsw,
		debounce: debounce,
		files:    make(map[string]bool),
		dirs:     make(map[string]bool),
	}, nil
}

// AddFile watches a single file. Its parent directory is watched so that
// editors that replace the file on save are still seen.
func (w *Watcher) AddFile(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := w.fsw.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watching %s: %w", path, err)
	}

	w.mu.Lock()
	w.files[abs] = true
	w.mu.Unlock()
	return nil
}

// AddDir watches the markdown files directly inside dir. A missing
// directory is skipped.
func (w *Watcher) AddDir(dir string) error {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return err
	}
	if _, err := os.Stat(abs); os.IsNotExist(err) {
		logger.Warn("not watching %s: directory does not exist", dir)
		return nil
	}
	if err := w.fsw.Add(abs); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}

	w.mu.Lock()
	w.dirs[abs] = true
	w.mu.Unlock()
	return nil
}

// Run delivers debounced changes to fn until ctx is canceled.
func (w *Watcher) Run(ctx context.Context, fn ChangeFunc) error {
	var (
		pending = make(map[string]bool)
		timer   *time.Timer
		fire    <-chan time.Time
	)

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			logger.Debug("watch: %s %s", event.Op, event.Name)
			pending[event.Name] = true

			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			changed := make([]string, 0, len(pending))
			for p := range pending {
				changed = append(changed, p)
			}
			sort.Strings(changed)
			clear(pending)
			fn(ctx, changed)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error: %v", err)
		}
	}
}

// relevant filters events down to watched files and markdown files in
// watched directories. Chmod-only events are ignored.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.files[event.Name] {
		return true
	}
	return w.dirs[filepath.Dir(event.Name)] && strings.EqualFold(filepath.Ext(event.Name), ".md")
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}
