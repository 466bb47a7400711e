// Package watch re-runs uploads when notes change and on a periodic sweep.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/imgup/internal/logfields"
	"git.home.luguber.info/inful/imgup/internal/vault"
)

const queueSize = 256

// Handler processes one note, given as an absolute path.
type Handler func(ctx context.Context, note string)

// Config selects the watched notes.
type Config struct {
	Root     string
	Include  []string
	Exclude  []string
	Debounce time.Duration
}

// Watcher debounces filesystem events per note and hands notes to a single
// worker, so two runs never overlap.
type Watcher struct {
	root     string
	include  []string
	exclude  []string
	debounce time.Duration
	handle   Handler
	logger   *slog.Logger

	fsw   *fsnotify.Watcher
	jobs  chan string
	ready chan struct{}

	mu      sync.Mutex
	timers  map[string]*time.Timer
	pending map[string]bool
	closed  bool
}

// New creates a Watcher. It does not watch anything until Run is called.
func New(cfg Config, handle Handler, logger *slog.Logger) (*Watcher, error) {
	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve vault root: %w", err)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = 2 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		root:     root,
		include:  cfg.Include,
		exclude:  cfg.Exclude,
		debounce: cfg.Debounce,
		handle:   handle,
		logger:   logger,
		fsw:      fsw,
		jobs:     make(chan string, queueSize),
		ready:    make(chan struct{}),
		timers:   make(map[string]*time.Timer),
		pending:  make(map[string]bool),
	}, nil
}

// Ready is closed once Run has registered the vault directories.
func (w *Watcher) Ready() <-chan struct{} { return w.ready }

// Run watches until ctx is done. The worker finishes its current note before
// Run returns.
func (w *Watcher) Run(ctx context.Context) error {
	defer func() { _ = w.fsw.Close() }()
	if err := w.addTree(w.root); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		w.work(ctx)
	}()
	defer wg.Wait()
	// The worker must stop even when the event channels close first.
	defer cancel()
	defer w.stopTimers()

	w.logger.Info("Watching vault", slog.String("root", w.root), slog.Duration("debounce", w.debounce))
	close(w.ready)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("File watcher error", logfields.Error(err))
		}
	}
}

// Enqueue hands note to the worker unless it is already queued.
func (w *Watcher) Enqueue(note string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed || w.pending[note] {
		return
	}
	select {
	case w.jobs <- note:
		w.pending[note] = true
	default:
		w.logger.Warn("Watch queue full; dropping note", logfields.Note(note))
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	rel, ok := w.relative(event.Name)
	if !ok {
		return
	}

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if !vault.Excluded(rel, w.exclude) {
				if err := w.addTree(event.Name); err != nil {
					w.logger.Warn("Failed to watch new directory", slog.String("path", event.Name), logfields.Error(err))
				}
			}
			return
		}
	}

	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}
	if vault.Excluded(rel, w.exclude) || !vault.Included(rel, w.include) {
		return
	}
	w.logger.Debug("Note changed", logfields.Note(rel), slog.String("op", event.Op.String()))
	w.schedule(event.Name)
}

// schedule restarts the quiet period for note.
func (w *Watcher) schedule(note string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	if t, ok := w.timers[note]; ok {
		t.Stop()
	}
	w.timers[note] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.timers, note)
		w.mu.Unlock()
		w.Enqueue(note)
	})
}

func (w *Watcher) work(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case note := <-w.jobs:
			w.mu.Lock()
			delete(w.pending, note)
			w.mu.Unlock()
			w.handle(ctx, note)
		}
	}
}

func (w *Watcher) stopTimers() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	for note, t := range w.timers {
		t.Stop()
		delete(w.timers, note)
	}
}

func (w *Watcher) relative(path string) (string, bool) {
	rel, err := filepath.Rel(w.root, path)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

// addTree watches dir and every non-excluded directory below it.
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.root {
			if rel, ok := w.relative(path); ok && vault.Excluded(rel, w.exclude) {
				return filepath.SkipDir
			}
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		return nil
	})
}
