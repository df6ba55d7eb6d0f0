package config

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// RobotTomlFile is the per-folder project configuration file watched for
// profile changes.
const RobotTomlFile = "robot.toml"

const defaultDebounce = 200 * time.Millisecond

// Watcher watches settings files and robot.toml for external edits, reloads
// the store's cache and notifies observers with a whole-file reload change.
//
// Editors typically write files with several rapid events (truncate, write,
// chmod), so events are debounced per file.
type Watcher struct {
	store    *Store
	fw       *fsnotify.Watcher
	debounce time.Duration

	mu      sync.Mutex
	folders map[string]string // watched file path -> folder scope
	timers  map[string]*time.Timer
	closed  bool
}

// NewWatcher creates a watcher feeding reloads into the store's notifier.
// A debounce of 0 selects the default.
func NewWatcher(store *Store, debounce time.Duration) (*Watcher, error) {
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		store:    store,
		fw:       fw,
		debounce: debounce,
		folders:  make(map[string]string),
		timers:   make(map[string]*time.Timer),
	}
	go w.run()
	return w, nil
}

// AddFolder watches the folder's settings file and robot.toml.
// Parent directories are watched so files created later are picked up.
func (w *Watcher) AddFolder(folder string) error {
	settings := FolderFile(folder)
	w.track(settings, folder)
	w.track(filepath.Join(folder, RobotTomlFile), folder)

	// Watch both the folder itself (robot.toml) and the settings dir.
	if err := w.fw.Add(folder); err != nil {
		return err
	}
	// The settings dir may not exist yet; ignore the error and rely on the
	// folder watch to see it appear.
	_ = w.fw.Add(filepath.Dir(settings))
	return nil
}

// AddUserFile watches the user-level settings file.
func (w *Watcher) AddUserFile() error {
	path := w.store.UserFile()
	if path == "" {
		return nil
	}
	w.track(path, "")
	return w.fw.Add(filepath.Dir(path))
}

func (w *Watcher) track(path, folder string) {
	w.mu.Lock()
	w.folders[filepath.Clean(path)] = folder
	w.mu.Unlock()
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	w.mu.Lock()
	w.closed = true
	for _, t := range w.timers {
		t.Stop()
	}
	w.mu.Unlock()
	return w.fw.Close()
}

func (w *Watcher) run() {
	for {
		select {
		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			w.handle(filepath.Clean(ev.Name))
		case _, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			// Watch errors are not actionable here; the next explicit
			// read still goes through the store.
		}
	}
}

func (w *Watcher) handle(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	folder, tracked := w.folders[path]
	if !tracked || w.closed {
		return
	}

	if t, ok := w.timers[path]; ok {
		t.Stop()
	}
	w.timers[path] = time.AfterFunc(w.debounce, func() {
		w.fire(path, folder)
	})
}

func (w *Watcher) fire(path, folder string) {
	w.mu.Lock()
	delete(w.timers, path)
	closed := w.closed
	w.mu.Unlock()
	if closed {
		return
	}

	w.store.Invalidate(path)
	w.store.Notifier().Notify(Change{Folder: folder})
}
