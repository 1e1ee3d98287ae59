package internal

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/giact/awaitlint/internal/syntax"
	tt "github.com/giact/awaitlint/internal/types"
	"github.com/giact/awaitlint/scanner"
)

// DefaultDebounce is how long the watcher waits after the last change to a
// file before linting it.
const DefaultDebounce = 100 * time.Millisecond

var ErrAlreadyWatching = errors.New("already watching")

// ReportFunc receives the result of every re-lint.
type ReportFunc func(filename string, issues []tt.Issue)

// Watcher re-lints JavaScript and TypeScript files as they change.
type Watcher struct {
	engine   *Engine
	logger   *zap.Logger
	report   ReportFunc
	debounce time.Duration

	watcher *fsnotify.Watcher

	mu         sync.Mutex
	isWatching bool
	timers     map[string]*time.Timer
	ready      chan string
}

// NewWatcher creates a watcher that lints with engine and hands results to report.
func NewWatcher(engine *Engine, logger *zap.Logger, report ReportFunc) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("error creating watcher: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if report == nil {
		report = func(string, []tt.Issue) {}
	}
	return &Watcher{
		engine:   engine,
		logger:   logger,
		report:   report,
		debounce: DefaultDebounce,
		watcher:  fw,
		timers:   make(map[string]*time.Timer),
		ready:    make(chan string, 16),
	}, nil
}

// SetDebounce changes the quiet period before a changed file is linted.
func (w *Watcher) SetDebounce(d time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.debounce = d
}

// Add watches dir and every directory below it, except ignored ones.
func (w *Watcher) Add(dir string) error {
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && scanner.SkipDir(d.Name()) {
			return filepath.SkipDir
		}
		if w.engine != nil && w.engine.IsIgnoredPath(filepath.Join(path, "x.js")) {
			return filepath.SkipDir
		}
		return w.watcher.Add(path)
	})
	if err != nil {
		return fmt.Errorf("error adding directory to watcher: %w", err)
	}
	return nil
}

// Run processes file events until ctx is done. The underlying fsnotify
// watcher is closed on return.
func (w *Watcher) Run(ctx context.Context) error {
	w.mu.Lock()
	if w.isWatching {
		w.mu.Unlock()
		return ErrAlreadyWatching
	}
	w.isWatching = true
	w.mu.Unlock()

	defer w.stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleFileEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watch error", zap.Error(err))
		case filename := <-w.ready:
			w.lint(ctx, filename)
		}
	}
}

func (w *Watcher) stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	for name, t := range w.timers {
		t.Stop()
		delete(w.timers, name)
	}
	w.isWatching = false
	if err := w.watcher.Close(); err != nil {
		w.logger.Warn("error closing watcher", zap.Error(err))
	}
}

func (w *Watcher) handleFileEvent(event fsnotify.Event) {
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.Add(event.Name); err != nil {
				w.logger.Warn("cannot watch new directory", zap.String("dir", event.Name), zap.Error(err))
			}
			return
		}
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}
	if !syntax.IsSupported(event.Name) {
		return
	}
	w.schedule(event.Name)
}

// schedule (re)starts the debounce timer for filename.
func (w *Watcher) schedule(filename string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.timers[filename]; ok {
		t.Stop()
	}
	w.timers[filename] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.timers, filename)
		w.mu.Unlock()
		select {
		case w.ready <- filename:
		default:
			w.logger.Warn("lint queue full, dropping change", zap.String("file", filename))
		}
	})
}

func (w *Watcher) lint(ctx context.Context, filename string) {
	issues, err := w.engine.Run(ctx, filename)
	if err != nil {
		w.logger.Error("error linting file", zap.String("file", filename), zap.Error(err))
		return
	}
	w.logger.Debug("file linted", zap.String("file", filename), zap.Int("issues", len(issues)))
	w.report(filename, issues)
}
