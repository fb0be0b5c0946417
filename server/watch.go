package server

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const defaultDebounce = 250 * time.Millisecond

// fileWatcher calls a function when a watched file changes.
// Parent directories are watched so files replaced by rename are still seen.
type fileWatcher struct {
	fs       *fsnotify.Watcher
	logger   *slog.Logger
	debounce time.Duration

	mu       sync.Mutex
	handlers map[string]func()
}

func newFileWatcher(logger *slog.Logger, debounce time.Duration) (*fileWatcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	return &fileWatcher{
		fs:       fsw,
		logger:   logger,
		debounce: debounce,
		handlers: make(map[string]func()),
	}, nil
}

// Add registers fn to run after path changes. Several quick changes result in one call.
func (w *fileWatcher) Add(path string, fn func()) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", path, err)
	}
	if err := w.fs.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(abs), err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.handlers[abs] = fn
	return nil
}

// Run dispatches change events until ctx is cancelled, then closes the watcher.
func (w *fileWatcher) Run(ctx context.Context) {
	defer w.fs.Close()

	pending := make(map[string]*time.Timer)
	defer func() {
		for _, t := range pending {
			t.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}

			name := filepath.Clean(event.Name)
			w.mu.Lock()
			fn, found := w.handlers[name]
			w.mu.Unlock()
			if !found {
				continue
			}

			w.logger.Debug("watched file changed", "path", name, "op", event.Op.String())
			if t, ok := pending[name]; ok {
				t.Reset(w.debounce)
				continue
			}
			pending[name] = time.AfterFunc(w.debounce, fn)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Warn("file watcher error", "error", err)
		}
	}
}
