// Package watch reports changes of a single file.
package watch

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/giantswarm/actionmock/pkg/logging"
)

// DefaultDebounce applies when NewFileWatcher is given no interval.
const DefaultDebounce = 200 * time.Millisecond

// FileWatcher sends one notification per burst of changes to a file.
//
// The parent directory is watched rather than the file itself, so editors
// that save by renaming a temporary file over the original keep working.
type FileWatcher struct {
	mu sync.Mutex

	path     string
	debounce time.Duration

	watcher *fsnotify.Watcher
	timer   *time.Timer
	stopCh  chan struct{}
	running bool
}

// NewFileWatcher creates a watcher for path.
func NewFileWatcher(path string, debounce time.Duration) *FileWatcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &FileWatcher{
		path:     filepath.Clean(path),
		debounce: debounce,
	}
}

// Start begins watching. Notifications are sent on changes without blocking;
// a notification that finds the channel full is dropped since one is
// already pending.
func (w *FileWatcher) Start(ctx context.Context, changes chan<- struct{}) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		watcher.Close()
		return err
	}

	w.watcher = watcher
	w.stopCh = make(chan struct{})
	w.running = true

	go w.processEvents(ctx, watcher, w.stopCh, changes)

	logging.Info("FileWatcher", "Watching %s for changes", w.path)
	return nil
}

func (w *FileWatcher) processEvents(ctx context.Context, watcher *fsnotify.Watcher, stopCh <-chan struct{}, changes chan<- struct{}) {
	for {
		select {
		case <-ctx.Done():
			w.cancelPending()
			return

		case <-stopCh:
			w.cancelPending()
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			w.handleFsEvent(event, changes)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logging.Error("FileWatcher", err, "Filesystem watcher error")
		}
	}
}

func (w *FileWatcher) handleFsEvent(event fsnotify.Event, changes chan<- struct{}) {
	if filepath.Clean(event.Name) != w.path {
		return
	}
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Rename) {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		select {
		case changes <- struct{}{}:
			logging.Debug("FileWatcher", "Emitted change for %s", w.path)
		default:
			logging.Debug("FileWatcher", "Change for %s already pending", w.path)
		}
	})
}

func (w *FileWatcher) cancelPending() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
}

// Stop ends watching.
func (w *FileWatcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return nil
	}

	w.running = false
	close(w.stopCh)

	var err error
	if w.watcher != nil {
		err = w.watcher.Close()
		w.watcher = nil
	}
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}

	logging.Info("FileWatcher", "Stopped watching %s", w.path)
	return err
}
