// Package watcher reports changes to a fixed set of files using fsnotify.
//
// Files are observed through their parent directories so that editors which
// save by writing a temporary file and renaming it over the original are
// still seen. Bursts of events for one file are coalesced: a change is only
// reported once the file has stopped changing size for the stability window.
package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/gmacarthur/innersync-desktop/internal/core/domain"
	"github.com/gmacarthur/innersync-desktop/internal/core/ports/driven"
	"github.com/gmacarthur/innersync-desktop/internal/logger"
)

// Ensure Watcher implements the interface.
var _ driven.ChangeWatcher = (*Watcher)(nil)

// Watcher is an fsnotify-backed driven.ChangeWatcher.
type Watcher struct {
	stability time.Duration
}

// New creates a watcher with the given stability window.
// A zero window reports changes as soon as they are seen.
func New(stability time.Duration) *Watcher {
	if stability < 0 {
		stability = 0
	}
	return &Watcher{stability: stability}
}

// pendingChange is a change waiting for its file to settle.
type pendingChange struct {
	typ   domain.ChangeType
	size  int64
	gen   int
	timer *time.Timer
}

// tick identifies one stability timer; stale ticks are ignored.
type tick struct {
	path string
	gen  int
}

// session is one Watch call.
type session struct {
	stability time.Duration
	targets   map[string]bool
	fsw       *fsnotify.Watcher
	out       chan domain.FileChange
	ready     chan tick
	pending   map[string]*pendingChange
}

// Watch starts observing paths until ctx is cancelled, then closes the
// returned channel. Parent directories that cannot be watched are logged
// and skipped; it is an error if none can be watched.
func (w *Watcher) Watch(ctx context.Context, paths []string) (<-chan domain.FileChange, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: no paths to watch", domain.ErrInvalidInput)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	s := &session{
		stability: w.stability,
		targets:   make(map[string]bool, len(paths)),
		fsw:       fsw,
		out:       make(chan domain.FileChange, 16),
		ready:     make(chan tick, 16),
		pending:   make(map[string]*pendingChange),
	}

	dirs := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			fsw.Close()
			return nil, fmt.Errorf("resolve %s: %w", p, err)
		}
		s.targets[abs] = true
		dirs[filepath.Dir(abs)] = true
	}

	watched := 0
	for dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			logger.Warn("Cannot watch %s: %v", dir, err)
			continue
		}
		watched++
	}
	if watched == 0 {
		fsw.Close()
		return nil, fmt.Errorf("no watchable directories for %v", paths)
	}

	go s.run(ctx)
	return s.out, nil
}

func (s *session) run(ctx context.Context) {
	defer close(s.out)
	defer s.fsw.Close()
	defer func() {
		for _, p := range s.pending {
			p.timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-s.fsw.Events:
			if !ok {
				return
			}
			change := s.handleEvent(event)
			if change == nil {
				continue
			}
			if !s.settle(ctx, *change) {
				return
			}

		case t := <-s.ready:
			if !s.check(ctx, t) {
				return
			}

		case err, ok := <-s.fsw.Errors:
			if !ok {
				return
			}
			logger.Warn("watcher error: %v", err)
		}
	}
}

// handleEvent maps an fsnotify event to a change for a watched file.
// Removals are logged and clear any pending change; they never trigger.
func (s *session) handleEvent(event fsnotify.Event) *domain.FileChange {
	path := filepath.Clean(event.Name)
	if !s.targets[path] {
		return nil
	}

	switch {
	case event.Has(fsnotify.Create):
		return &domain.FileChange{Path: path, Type: domain.ChangeAdded, At: time.Now()}
	case event.Has(fsnotify.Write):
		return &domain.FileChange{Path: path, Type: domain.ChangeModified, At: time.Now()}
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		logger.Info("Watched file removed: %s", path)
		if p, ok := s.pending[path]; ok {
			p.timer.Stop()
			delete(s.pending, path)
		}
		return nil
	default:
		return nil
	}
}

// settle records change and (re)starts its stability timer.
func (s *session) settle(ctx context.Context, change domain.FileChange) bool {
	if s.stability == 0 {
		return s.emit(ctx, change)
	}

	p, ok := s.pending[change.Path]
	if !ok {
		p = &pendingChange{typ: change.Type, size: fileSize(change.Path)}
		s.pending[change.Path] = p
	} else {
		p.timer.Stop()
		// An add followed by writes is still an add.
		if p.typ != domain.ChangeAdded {
			p.typ = change.Type
		}
	}
	s.arm(ctx, change.Path, p)
	return true
}

// check runs when a stability timer fires.
func (s *session) check(ctx context.Context, t tick) bool {
	path := t.path
	p, ok := s.pending[path]
	if !ok || p.gen != t.gen {
		return true
	}

	size := fileSize(path)
	if size < 0 {
		// Gone before it settled.
		delete(s.pending, path)
		return true
	}
	if size != p.size {
		p.size = size
		s.arm(ctx, path, p)
		return true
	}

	delete(s.pending, path)
	return s.emit(ctx, domain.FileChange{Path: path, Type: p.typ, At: time.Now()})
}

func (s *session) arm(ctx context.Context, path string, p *pendingChange) {
	p.gen++
	t := tick{path: path, gen: p.gen}
	p.timer = time.AfterFunc(s.stability, func() {
		select {
		case s.ready <- t:
		case <-ctx.Done():
		}
	})
}

func (s *session) emit(ctx context.Context, change domain.FileChange) bool {
	logger.Debug("File %s: %s", change.Type, change.Path)
	select {
	case s.out <- change:
		return true
	case <-ctx.Done():
		return false
	}
}

// fileSize returns the size of path, or -1 if it cannot be read.
func fileSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return -1
	}
	return info.Size()
}
