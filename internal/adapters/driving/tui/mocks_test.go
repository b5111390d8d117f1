package tui

import (
	"context"
	"sync"

	"github.com/gmacarthur/innersync-desktop/internal/core/domain"
	"github.com/gmacarthur/innersync-desktop/internal/core/ports/driving"
)

var _ driving.SyncService = (*MockSyncService)(nil)

// MockSyncService is a mock implementation of driving.SyncService.
type MockSyncService struct {
	mu           sync.Mutex
	status       domain.SyncStatus
	result       domain.RunResult
	err          error
	reasons      []string
	pauses       int
	resumes      int
	clears       int
	events       chan domain.Event
	unsubscribed int
}

func newMockSyncService() *MockSyncService {
	return &MockSyncService{
		status: domain.SyncStatus{State: domain.StateIdle},
		events: make(chan domain.Event, 4),
	}
}

func (m *MockSyncService) Start(_ context.Context) error { return nil }
func (m *MockSyncService) Stop(_ context.Context) error  { return nil }

func (m *MockSyncService) Pause(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.pauses++
	m.status.Paused = true
	return nil
}

func (m *MockSyncService) Resume(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.resumes++
	m.status.Paused = false
	return nil
}

func (m *MockSyncService) TriggerSync(_ context.Context, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reasons = append(m.reasons, reason)
	return m.err
}

func (m *MockSyncService) SyncNow(_ context.Context, reason string) (domain.RunResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reasons = append(m.reasons, reason)
	return m.result, m.err
}

func (m *MockSyncService) UpdateWatchFiles(_ context.Context, _ []string) error { return nil }

func (m *MockSyncService) Status() domain.SyncStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status.Clone()
}

func (m *MockSyncService) History() []domain.HistoryEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.HistoryEntry(nil), m.status.History...)
}

func (m *MockSyncService) ClearHistory(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.clears++
	m.status.History = nil
	return nil
}

func (m *MockSyncService) Subscribe(_ int) (<-chan domain.Event, func()) {
	var once sync.Once
	return m.events, func() {
		once.Do(func() {
			m.mu.Lock()
			m.unsubscribed++
			m.mu.Unlock()
			close(m.events)
		})
	}
}
