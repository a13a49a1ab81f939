package config

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/wago/wdx-core/pkg/logging"
)

// debounceInterval absorbs the burst of events a single device-document
// write produces (editor save, atomic rename, etc.), grounded on the
// teacher's FilesystemDetector debounce loop.
const debounceInterval = 500 * time.Millisecond

// ReloadFunc is called once, debounced, after one or more device documents
// in the watched directory change.
type ReloadFunc func()

// Watcher watches a device directory for .json document changes and calls
// its ReloadFunc, debounced, after each burst of activity.
type Watcher struct {
	dir    string
	reload ReloadFunc

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	stop    chan struct{}
	timer   *time.Timer
}

// NewWatcher creates a watcher over dir; call Start to begin watching.
func NewWatcher(dir string, reload ReloadFunc) *Watcher {
	return &Watcher{dir: dir, reload: reload}
}

// Start begins watching. Safe to call once; call Stop to halt it.
func (w *Watcher) Start() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(w.dir); err != nil {
		_ = watcher.Close()
		return err
	}

	w.mu.Lock()
	w.watcher = watcher
	w.stop = make(chan struct{})
	w.mu.Unlock()

	go w.run()
	logging.Info("config", "watching %s for device document changes", w.dir)
	return nil
}

func (w *Watcher) run() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !strings.HasSuffix(event.Name, ".json") {
				continue
			}
			logging.Debug("config", "device document change detected: %s %s", event.Op, filepath.Base(event.Name))
			w.debounceReload()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logging.Warn("config", "device directory watcher error: %v", err)
		case <-w.stop:
			return
		}
	}
}

func (w *Watcher) debounceReload() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(debounceInterval, w.reload)
}

// Stop halts the watcher; safe to call more than once.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stop == nil {
		return
	}
	select {
	case <-w.stop:
	default:
		close(w.stop)
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	if w.watcher != nil {
		_ = w.watcher.Close()
	}
}
