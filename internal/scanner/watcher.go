package scanner

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// FileHandler is called when a new file has settled and is ready for import.
type FileHandler func(path string) error

// Watcher monitors directories for new video files and reports them to a
// handler after a debounce delay.
type Watcher struct {
	walker        *Walker
	directories   []string
	debounceDelay time.Duration
	recursive     bool
	handler       FileHandler
	watcher       *fsnotify.Watcher
	stopChan      chan struct{}
	doneChan      chan struct{}

	// Debouncing state
	mu            sync.Mutex
	pendingTimers map[string]*time.Timer
}

// WatcherConfig holds configuration for the file watcher
type WatcherConfig struct {
	Directories   []string
	Extensions    []string
	ExcludeDirs   []string
	DebounceDelay time.Duration
	Recursive     bool
}

// NewWatcher creates a new directory watcher
func NewWatcher(cfg WatcherConfig, handler FileHandler) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &Watcher{
		walker:        NewWalkerWithExclusions(cfg.Extensions, cfg.ExcludeDirs),
		directories:   cfg.Directories,
		debounceDelay: cfg.DebounceDelay,
		recursive:     cfg.Recursive,
		handler:       handler,
		watcher:       fsWatcher,
		stopChan:      make(chan struct{}),
		doneChan:      make(chan struct{}),
		pendingTimers: make(map[string]*time.Timer),
	}, nil
}

// Start begins watching directories for changes
func (w *Watcher) Start() error {
	for _, dir := range w.directories {
		if err := w.addDirectory(dir); err != nil {
			slog.Warn("failed to watch directory", "path", dir, "error", err)
		}
	}

	go w.processEvents()

	slog.Info("file watcher started",
		"directories", len(w.directories),
		"debounce_seconds", w.debounceDelay.Seconds(),
		"recursive", w.recursive,
	)
	return nil
}

// Stop stops watching directories
func (w *Watcher) Stop() error {
	close(w.stopChan)
	<-w.doneChan

	w.mu.Lock()
	for _, timer := range w.pendingTimers {
		timer.Stop()
	}
	w.mu.Unlock()

	return w.watcher.Close()
}

// addDirectory adds a directory (and optionally subdirectories) to watch
func (w *Watcher) addDirectory(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("directory does not exist: %s", path)
	}
	if !info.IsDir() {
		return fmt.Errorf("not a directory: %s", path)
	}

	if !w.recursive {
		if err := w.watcher.Add(path); err != nil {
			return fmt.Errorf("failed to add directory to watch: %w", err)
		}
		return nil
	}

	return filepath.Walk(path, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // Skip directories we can't access
		}
		if info.IsDir() {
			if p != path && w.walker.isExcludedDir(p) {
				return filepath.SkipDir
			}
			if err := w.watcher.Add(p); err != nil {
				slog.Warn("failed to add directory to watch", "path", p, "error", err)
			}
		}
		return nil
	})
}

// processEvents handles fsnotify events
func (w *Watcher) processEvents() {
	defer close(w.doneChan)

	for {
		select {
		case <-w.stopChan:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Error("watcher error", "error", err)
		}
	}
}

// handleEvent processes a single fsnotify event
func (w *Watcher) handleEvent(event fsnotify.Event) {
	path := event.Name

	// New directories join the watch set when recursive
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if w.recursive && !w.walker.isExcludedDir(path) {
				if err := w.addDirectory(path); err != nil {
					slog.Warn("failed to add new directory to watch", "path", path, "error", err)
				}
			}
			return
		}
	}

	if !w.walker.IsVideoFile(filepath.Base(path)) {
		return
	}

	if event.Has(fsnotify.Create) || event.Has(fsnotify.Write) {
		w.scheduleProcessing(path)
	}
}

// scheduleProcessing schedules a file for processing after debounce delay.
// Repeated events for the same path reset the timer, so a file still being
// copied is not imported until writes settle.
func (w *Watcher) scheduleProcessing(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, exists := w.pendingTimers[path]; exists {
		timer.Stop()
	}

	w.pendingTimers[path] = time.AfterFunc(w.debounceDelay, func() {
		w.processFile(path)
	})
}

// processFile hands a settled file to the handler
func (w *Watcher) processFile(path string) {
	w.mu.Lock()
	delete(w.pendingTimers, path)
	w.mu.Unlock()

	// The file may have been moved or deleted during the debounce window
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return
	}

	slog.Info("new file detected", "file", filepath.Base(path))
	if err := w.handler(path); err != nil {
		slog.Error("failed to import file", "file", filepath.Base(path), "error", err)
	}
}
