package memory

import (
	"context"
	"sync"

	"github.com/gmacarthur/innersync-desktop/internal/core/domain"
	"github.com/gmacarthur/innersync-desktop/internal/core/ports/driven"
)

// Ensure HistoryStore implements the interface.
var _ driven.HistoryStore = (*HistoryStore)(nil)

// HistoryStore is an in-memory implementation of driven.HistoryStore.
type HistoryStore struct {
	mu      sync.RWMutex
	entries []domain.HistoryEntry
	saves   int
}

// NewHistoryStore creates a new in-memory history store.
func NewHistoryStore(entries ...domain.HistoryEntry) *HistoryStore {
	return &HistoryStore{
		entries: append([]domain.HistoryEntry(nil), entries...),
	}
}

// Load returns a copy of the stored entries.
func (s *HistoryStore) Load(_ context.Context) ([]domain.HistoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.HistoryEntry(nil), s.entries...), nil
}

// Save replaces the stored entries.
func (s *HistoryStore) Save(_ context.Context, entries []domain.HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append([]domain.HistoryEntry(nil), entries...)
	s.saves++
	return nil
}

// Saves returns the number of Save calls.
func (s *HistoryStore) Saves() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}
