package watcher

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"tagit/internal/adapters/filesystem"
	"tagit/internal/domain"
)

// TagMaintainer is the part of the tag store the watcher drives
type TagMaintainer interface {
	ListIdentities(ctx context.Context) ([]string, error)
	ClearTags(ctx context.Context, id string) error
	RenameIdentity(ctx context.Context, oldID, newID string) (bool, error)
}

// Stats counts what the watcher did
type Stats struct {
	Renamed int
	Cleared int
	Skipped int // the path was back by the time the event settled
	Errors  int
}

type changeKind int

const (
	changeRename changeKind = iota
	changeRemove
)

// pendingChange is a rename or remove waiting for its settle window.
// A rename collects the next create as its destination.
type pendingChange struct {
	kind changeKind
	old  string
	new  string
	at   time.Time
}

// Watcher keeps associations in step with the file tree under a workspace.
// A rename whose destination shows up within the settle window migrates the
// tags; a remove, or a rename out of the tree, clears them. Nothing happens
// if the original path exists again once the window closes, which covers
// editors that save through a temporary file.
type Watcher struct {
	mu        sync.Mutex
	fs        *fsnotify.Watcher
	store     TagMaintainer
	workspace *filesystem.Workspace
	logger    *zap.Logger
	settle    time.Duration
	pending   []*pendingChange
	stopCh    chan struct{}
	doneCh    chan struct{}
	running   bool
	stats     Stats
}

// Option configures a Watcher
type Option func(*Watcher)

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithSettle sets how long a change waits before it is applied
func WithSettle(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.settle = d
		}
	}
}

// New creates a watcher for workspace that updates store
func New(workspace *filesystem.Workspace, store TagMaintainer, opts ...Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fs:        fsw,
		store:     store,
		workspace: workspace,
		logger:    zap.NewNop(),
		settle:    500 * time.Millisecond,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Start adds every directory under the root and begins processing events.
// It does not block. A failed Start leaves the watcher stopped.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return nil
	}

	if err := w.addTree(ctx, w.workspace.Root()); err != nil {
		return err
	}
	w.logger.Info("watching", zap.String("root", w.workspace.Root()))

	w.running = true
	go w.run(ctx)
	return nil
}

// Stop stops the event loop and releases the underlying watcher
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		w.fs.Close()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh

	if err := w.fs.Close(); err != nil {
		w.logger.Error("closing watcher", zap.Error(err))
	}
}

// Stats returns a copy of the counters
func (w *Watcher) Stats() Stats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stats
}

// Watching reports whether dir is currently watched
func (w *Watcher) Watching(dir string) bool {
	for _, p := range w.fs.WatchList() {
		if p == dir {
			return true
		}
	}
	return false
}

// addTree watches dir and every directory below it that is not ignored.
// The walk stops when ctx is done.
func (w *Watcher) addTree(ctx context.Context, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			// Vanished while walking
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if w.workspace.Ignored(path) {
			return filepath.SkipDir
		}
		if err := w.fs.Add(path); err != nil {
			w.logger.Warn("cannot watch directory", zap.String("path", path), zap.Error(err))
		}
		return nil
	})
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	tick := w.settle / 4
	if tick < 10*time.Millisecond {
		tick = 10 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-w.stopCh:
			return

		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			w.handleEvent(ctx, event)

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Error("watch error", zap.Error(err))
			w.mu.Lock()
			w.stats.Errors++
			w.mu.Unlock()

		case <-ticker.C:
			w.applySettled(ctx, time.Now())
		}
	}
}

func (w *Watcher) handleEvent(ctx context.Context, event fsnotify.Event) {
	if w.workspace.Ignored(event.Name) {
		return
	}

	w.logger.Debug("event", zap.String("op", event.Op.String()), zap.String("path", event.Name))

	switch {
	case event.Has(fsnotify.Create):
		w.handleCreate(ctx, event.Name)
	case event.Has(fsnotify.Rename):
		w.enqueue(&pendingChange{kind: changeRename, old: event.Name, at: time.Now()})
	case event.Has(fsnotify.Remove):
		w.enqueue(&pendingChange{kind: changeRemove, old: event.Name, at: time.Now()})
	}
}

func (w *Watcher) enqueue(c *pendingChange) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pending = append(w.pending, c)
}

// handleCreate pairs path with the oldest related rename still missing a
// destination and starts watching it when it is a directory.
func (w *Watcher) handleCreate(ctx context.Context, path string) {
	w.mu.Lock()
	for _, c := range w.pending {
		if c.kind == changeRename && c.new == "" && c.old != path && related(c.old, path) {
			c.new = path
			break
		}
	}
	w.mu.Unlock()

	if info, err := os.Stat(path); err == nil && info.IsDir() {
		if err := w.addTree(ctx, path); err != nil {
			w.logger.Warn("cannot watch new directory", zap.String("path", path), zap.Error(err))
		}
	}
}

// related reports whether a create at path can be where old went.
// fsnotify does not link the two events, so this is a heuristic: a move
// keeps the base name and a rename keeps the directory. A file created in
// the same directory right after an unrelated rename is still paired with it.
func related(old, path string) bool {
	return filepath.Base(old) == filepath.Base(path) || filepath.Dir(old) == filepath.Dir(path)
}

// applySettled applies every change older than the settle window
func (w *Watcher) applySettled(ctx context.Context, now time.Time) {
	w.mu.Lock()
	var ready []*pendingChange
	kept := w.pending[:0]
	for _, c := range w.pending {
		if now.Sub(c.at) >= w.settle {
			ready = append(ready, c)
		} else {
			kept = append(kept, c)
		}
	}
	w.pending = kept
	w.mu.Unlock()

	for _, c := range ready {
		w.apply(ctx, c)
	}
}

func (w *Watcher) apply(ctx context.Context, c *pendingChange) {
	if _, err := os.Lstat(c.old); err == nil {
		w.count(func(s *Stats) { s.Skipped++ })
		return
	}

	moves, err := w.affected(ctx, c.old, c.new)
	if err != nil {
		w.logger.Error("listing identities", zap.Error(err))
		w.count(func(s *Stats) { s.Errors++ })
		return
	}

	for oldID, newID := range moves {
		if newID == "" {
			if err := w.store.ClearTags(ctx, oldID); err != nil {
				w.logger.Error("clearing tags", zap.String("id", oldID), zap.Error(err))
				w.count(func(s *Stats) { s.Errors++ })
				continue
			}
			w.logger.Info("tags cleared", zap.String("id", oldID))
			w.count(func(s *Stats) { s.Cleared++ })
			continue
		}

		moved, err := w.store.RenameIdentity(ctx, oldID, newID)
		if err != nil {
			w.logger.Error("renaming identity", zap.String("old", oldID), zap.String("new", newID), zap.Error(err))
			w.count(func(s *Stats) { s.Errors++ })
			continue
		}
		if moved {
			w.logger.Info("tags moved", zap.String("old", oldID), zap.String("new", newID))
			w.count(func(s *Stats) { s.Renamed++ })
		}
	}
}

// affected maps every tagged identity at or below oldPath to its identity
// under newPath, or to "" when the tags should be cleared.
func (w *Watcher) affected(ctx context.Context, oldPath, newPath string) (map[string]string, error) {
	ids, err := w.store.ListIdentities(ctx)
	if err != nil {
		return nil, err
	}

	moves := make(map[string]string)
	for _, id := range ids {
		if !domain.IsFileIdentity(id) {
			continue
		}
		p := domain.PathFromIdentity(id)
		if p != oldPath && !strings.HasPrefix(p, oldPath+string(filepath.Separator)) {
			continue
		}
		if newPath == "" {
			moves[id] = ""
			continue
		}
		newID, err := domain.IdentityFromPath(newPath + p[len(oldPath):])
		if err != nil {
			return nil, err
		}
		moves[id] = newID
	}
	return moves, nil
}

func (w *Watcher) count(fn func(*Stats)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	fn(&w.stats)
}
