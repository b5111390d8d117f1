package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gmacarthur/innersync-desktop/internal/core/domain"
)

// --- Mock implementations for scheduler testing ---

// mockTriggerer records TriggerSync calls.
type mockTriggerer struct {
	mu      sync.Mutex
	reasons []string
	err     error
}

func (m *mockTriggerer) TriggerSync(_ context.Context, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reasons = append(m.reasons, reason)
	return m.err
}

func (m *mockTriggerer) calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.reasons...)
}

// ==================== Scheduler Tests ====================

func TestNewScheduler(t *testing.T) {
	scheduler := NewScheduler(time.Minute, &mockTriggerer{})

	require.NotNil(t, scheduler)
	assert.True(t, scheduler.Enabled())
}

func TestScheduler_DisabledReturnsImmediately(t *testing.T) {
	trig := &mockTriggerer{}
	scheduler := NewScheduler(0, trig)

	assert.False(t, scheduler.Enabled())
	require.NoError(t, scheduler.Start(context.Background()))
	require.NoError(t, scheduler.Stop())
	assert.Empty(t, trig.calls())
}

func TestScheduler_TriggersOnInterval(t *testing.T) {
	trig := &mockTriggerer{}
	scheduler := NewScheduler(10*time.Millisecond, trig)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = scheduler.Start(context.Background())
	}()

	require.Eventually(t, func() bool {
		return len(trig.calls()) >= 2
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, scheduler.Stop())
	wg.Wait()

	for _, reason := range trig.calls() {
		assert.Equal(t, domain.TriggerScheduled, reason)
	}
}

func TestScheduler_StartStop(t *testing.T) {
	scheduler := NewScheduler(time.Hour, &mockTriggerer{})

	ctx, cancel := context.WithCancel(context.Background())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = scheduler.Start(ctx)
	}()

	time.Sleep(50 * time.Millisecond)

	cancel()
	err := scheduler.Stop()
	require.NoError(t, err)

	wg.Wait()
}

func TestScheduler_ContextCancelIsCleanExit(t *testing.T) {
	scheduler := NewScheduler(time.Hour, &mockTriggerer{})

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- scheduler.Start(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("scheduler did not exit on cancel")
	}
	require.NoError(t, scheduler.Stop())
}

func TestScheduler_StopWithoutStart(t *testing.T) {
	scheduler := NewScheduler(time.Hour, &mockTriggerer{})

	// Stop without starting should be safe
	err := scheduler.Stop()
	require.NoError(t, err)
}

func TestScheduler_DoubleStart(t *testing.T) {
	scheduler := NewScheduler(time.Hour, &mockTriggerer{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = scheduler.Start(ctx)
	}()

	time.Sleep(50 * time.Millisecond)

	// Second start should return immediately (already running)
	err := scheduler.Start(context.Background())
	assert.NoError(t, err)

	scheduler.Stop() //nolint:errcheck
	wg.Wait()
}

func TestScheduler_TriggerErrorsDoNotStopLoop(t *testing.T) {
	trig := &mockTriggerer{err: domain.ErrStopped}
	scheduler := NewScheduler(10*time.Millisecond, trig)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = scheduler.Start(context.Background())
	}()

	require.Eventually(t, func() bool {
		return len(trig.calls()) >= 3
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, scheduler.Stop())
	wg.Wait()
}
