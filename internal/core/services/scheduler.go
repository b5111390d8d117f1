package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gmacarthur/innersync-desktop/internal/core/domain"
	"github.com/gmacarthur/innersync-desktop/internal/core/ports/driving"
	"github.com/gmacarthur/innersync-desktop/internal/logger"
)

// Ensure Scheduler implements the interface.
var _ driving.Scheduler = (*Scheduler)(nil)

// triggerer is the part of the sync service the scheduler needs.
type triggerer interface {
	TriggerSync(ctx context.Context, reason string) error
}

// Scheduler triggers periodic re-syncs. Triggers go through the normal
// sync path, so they are dropped while paused and coalesce with a run in
// flight.
type Scheduler struct {
	interval time.Duration
	trigger  triggerer

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewScheduler creates a scheduler. A non-positive interval disables it.
func NewScheduler(interval time.Duration, trigger triggerer) *Scheduler {
	return &Scheduler{
		interval: interval,
		trigger:  trigger,
	}
}

// Enabled reports whether the scheduler has an interval to run on.
func (s *Scheduler) Enabled() bool {
	return s.interval > 0 && s.trigger != nil
}

// Start begins the scheduler loop. This method blocks until Stop is called
// or ctx is cancelled, and returns nil in both cases. When disabled it
// returns immediately.
func (s *Scheduler) Start(ctx context.Context) error {
	if !s.Enabled() {
		return nil
	}

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil // Already running
	}
	s.running = true
	s.stopCh = make(chan struct{})
	stopCh := s.stopCh
	s.wg.Add(1)
	s.mu.Unlock()

	defer s.wg.Done()
	logger.Info("Scheduled sync every %s", s.interval)
	return s.run(ctx, stopCh)
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	s.wg.Wait()
	return nil
}

// run is the main scheduler loop. Cancellation is a normal shutdown, like Stop.
func (s *Scheduler) run(ctx context.Context, stopCh <-chan struct{}) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-stopCh:
			return nil
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

// tick triggers one scheduled run.
func (s *Scheduler) tick(ctx context.Context) {
	err := s.trigger.TriggerSync(ctx, domain.TriggerScheduled)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrStopped), errors.Is(err, context.Canceled):
		logger.Debug("scheduler: engine gone: %v", err)
	default:
		logger.Warn("scheduler: trigger failed: %v", err)
	}
}
