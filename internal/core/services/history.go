package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gmacarthur/innersync-desktop/internal/core/domain"
	"github.com/gmacarthur/innersync-desktop/internal/core/ports/driven"
	"github.com/gmacarthur/innersync-desktop/internal/logger"
)

// historySaveTimeout bounds a single background save.
const historySaveTimeout = 10 * time.Second

// HistoryLog is the bounded, append-only run history.
// Every mutation schedules a best-effort save of the latest snapshot on a
// background writer; save failures are logged and never returned.
type HistoryLog struct {
	store driven.HistoryStore
	limit int

	mu      sync.RWMutex
	entries []domain.HistoryEntry
	closed  bool

	saves chan []domain.HistoryEntry
	done  chan struct{}
}

// NewHistoryLog creates a history log backed by store.
// A nil store keeps history in memory only.
func NewHistoryLog(store driven.HistoryStore, limit int) *HistoryLog {
	if limit <= 0 {
		limit = domain.DefaultHistoryLimit
	}
	h := &HistoryLog{
		store: store,
		limit: limit,
		saves: make(chan []domain.HistoryEntry, 1),
		done:  make(chan struct{}),
	}
	go h.writer()
	return h
}

// Limit returns the maximum number of entries kept.
func (h *HistoryLog) Limit() int {
	return h.limit
}

// Load replaces the in-memory history with the stored one, trimmed to the limit.
func (h *HistoryLog) Load(ctx context.Context) error {
	if h.store == nil {
		return nil
	}
	entries, err := h.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append([]domain.HistoryEntry(nil), domain.TrimHistory(entries, h.limit)...)
	return nil
}

// Append adds entry, evicting the oldest entries beyond the limit, and
// returns a copy of the resulting history.
func (h *HistoryLog) Append(entry domain.HistoryEntry) []domain.HistoryEntry {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries = append(h.entries, entry)
	if len(h.entries) > h.limit {
		// Copy so the evicted prefix can be collected.
		h.entries = append([]domain.HistoryEntry(nil), domain.TrimHistory(h.entries, h.limit)...)
	}
	snapshot := h.snapshotLocked()
	h.scheduleSaveLocked(snapshot)
	return snapshot
}

// Clear removes all entries.
func (h *HistoryLog) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries = nil
	h.scheduleSaveLocked([]domain.HistoryEntry{})
}

// Entries returns a copy of the history, oldest first.
func (h *HistoryLog) Entries() []domain.HistoryEntry {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.snapshotLocked()
}

// Len returns the number of entries.
func (h *HistoryLog) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.entries)
}

// Close flushes the last pending save and stops the writer.
func (h *HistoryLog) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		<-h.done
		return
	}
	h.closed = true
	close(h.saves)
	h.mu.Unlock()

	<-h.done
}

func (h *HistoryLog) snapshotLocked() []domain.HistoryEntry {
	return append([]domain.HistoryEntry{}, h.entries...)
}

// scheduleSaveLocked replaces any queued snapshot with the newest one.
func (h *HistoryLog) scheduleSaveLocked(snapshot []domain.HistoryEntry) {
	if h.store == nil || h.closed {
		return
	}
	select {
	case <-h.saves:
	default:
	}
	select {
	case h.saves <- snapshot:
	default:
	}
}

func (h *HistoryLog) writer() {
	defer close(h.done)
	for snapshot := range h.saves {
		ctx, cancel := context.WithTimeout(context.Background(), historySaveTimeout)
		if err := h.store.Save(ctx, snapshot); err != nil {
			logger.Error("saving history: %v", err)
		}
		cancel()
	}
}
