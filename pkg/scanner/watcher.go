package scanner

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period before changed files are re-parsed.
const DefaultDebounce = 200 * time.Millisecond

// WatchEvent reports a rescan triggered by file changes.
type WatchEvent struct {
	// Changed are the files whose events triggered the rescan, sorted.
	Changed []string
	Result  *ScanResult
	Err     error
}

// WatchOptions configures a Watcher.
type WatchOptions struct {
	Config   ScanConfig
	Debounce time.Duration
	Logger   *slog.Logger
}

// Watcher rescans a directory when its sources change. Events within the
// debounce window are batched into one rescan.
type Watcher struct {
	watcher  *fsnotify.Watcher
	scanner  *Scanner
	root     string
	cfg      ScanConfig
	debounce time.Duration
	onEvent  func(WatchEvent)
	logger   *slog.Logger

	pendingMu sync.Mutex
	pending   map[string]struct{}
	timer     *time.Timer

	// scanMu serializes rescans.
	scanMu sync.Mutex

	stopChan chan struct{}
	stopped  bool
	mu       sync.Mutex
}

// NewWatcher creates a watcher over rootDir. onEvent is called from a
// background goroutine after every rescan.
func NewWatcher(s *Scanner, rootDir string, opts WatchOptions, onEvent func(WatchEvent)) (*Watcher, error) {
	root, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root path: %w", err)
	}
	if err := validatePatterns(opts.Config); err != nil {
		return nil, err
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	return &Watcher{
		watcher:  fw,
		scanner:  s,
		root:     root,
		cfg:      opts.Config,
		debounce: opts.Debounce,
		onEvent:  onEvent,
		logger:   opts.Logger,
		pending:  make(map[string]struct{}),
		stopChan: make(chan struct{}),
	}, nil
}

// Start watches the root and all non-excluded subdirectories.
func (w *Watcher) Start() error {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return fmt.Errorf("watcher already stopped")
	}
	w.mu.Unlock()

	if err := w.addTree(w.root); err != nil {
		return err
	}
	w.logger.Info("file watcher started", "root", w.root)

	go w.eventLoop()
	return nil
}

func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.root && excluded(w.cfg, w.rel(path)) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			if path == w.root {
				return fmt.Errorf("failed to watch %s: %w", path, err)
			}
			w.logger.Warn("failed to watch directory", "path", path, "error", err)
		}
		return nil
	})
}

// Stop stops watching. It is safe to call more than once.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return nil
	}
	w.stopped = true
	close(w.stopChan)

	w.pendingMu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.pending = make(map[string]struct{})
	w.pendingMu.Unlock()

	err := w.watcher.Close()
	w.logger.Info("file watcher stopped")
	return err
}

func (w *Watcher) eventLoop() {
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
			w.logger.Error("file watcher error", "error", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	path := filepath.Clean(event.Name)
	rel := w.rel(path)

	if event.Op.Has(fsnotify.Create) {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if !excluded(w.cfg, rel) {
				if err := w.addTree(path); err != nil {
					w.logger.Warn("failed to watch new directory", "path", path, "error", err)
				}
			}
			return
		}
	}
	if !Matches(w.cfg, rel) {
		return
	}
	if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) &&
		!event.Op.Has(fsnotify.Remove) && !event.Op.Has(fsnotify.Rename) {
		return
	}

	w.logger.Debug("file event", "op", event.Op.String(), "file", path)
	w.schedule(path)
}

// schedule adds path to the pending batch and restarts the debounce timer.
func (w *Watcher) schedule(path string) {
	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()

	w.pending[path] = struct{}{}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.flush)
}

func (w *Watcher) flush() {
	w.pendingMu.Lock()
	changed := make([]string, 0, len(w.pending))
	for path := range w.pending {
		changed = append(changed, path)
	}
	w.pending = make(map[string]struct{})
	w.timer = nil
	w.pendingMu.Unlock()

	if len(changed) == 0 {
		return
	}
	sort.Strings(changed)

	w.scanMu.Lock()
	defer w.scanMu.Unlock()

	w.mu.Lock()
	stopped := w.stopped
	w.mu.Unlock()
	if stopped {
		return
	}

	for _, path := range changed {
		w.scanner.Invalidate(path)
	}
	result, err := w.scanner.Run(context.Background(), w.root, w.cfg)
	w.logger.Debug("rescan complete", "changed", len(changed), "error", err)
	if w.onEvent != nil {
		w.onEvent(WatchEvent{Changed: changed, Result: result, Err: err})
	}
}

// Pending returns the number of changed files waiting for a rescan.
func (w *Watcher) Pending() int {
	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()
	return len(w.pending)
}

func (w *Watcher) rel(path string) string {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}
