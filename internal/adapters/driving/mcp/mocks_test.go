package mcp

import (
	"context"
	"sync"

	"github.com/gmacarthur/innersync-desktop/internal/core/domain"
	"github.com/gmacarthur/innersync-desktop/internal/core/ports/driving"
)

var _ driving.SyncService = (*mockSyncService)(nil)

// mockSyncService is a mock implementation of driving.SyncService.
type mockSyncService struct {
	mu       sync.Mutex
	status   domain.SyncStatus
	history  []domain.HistoryEntry
	result   domain.RunResult
	err      error
	triggers []string
	pauses   int
	resumes  int
}

func (m *mockSyncService) Start(_ context.Context) error { return m.err }
func (m *mockSyncService) Stop(_ context.Context) error  { return m.err }

func (m *mockSyncService) Pause(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.pauses++
	m.status.Paused = true
	return nil
}

func (m *mockSyncService) Resume(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.resumes++
	m.status.Paused = false
	return nil
}

func (m *mockSyncService) TriggerSync(_ context.Context, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.triggers = append(m.triggers, reason)
	return m.err
}

func (m *mockSyncService) SyncNow(_ context.Context, reason string) (domain.RunResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.triggers = append(m.triggers, reason)
	return m.result, m.err
}

func (m *mockSyncService) UpdateWatchFiles(_ context.Context, _ []string) error { return m.err }

func (m *mockSyncService) Status() domain.SyncStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status.Clone()
}

func (m *mockSyncService) History() []domain.HistoryEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.HistoryEntry(nil), m.history...)
}

func (m *mockSyncService) ClearHistory(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.history = nil
	return m.err
}

func (m *mockSyncService) Subscribe(_ int) (<-chan domain.Event, func()) {
	ch := make(chan domain.Event)
	close(ch)
	return ch, func() {}
}
