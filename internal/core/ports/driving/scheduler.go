package driving

import "context"

// Scheduler runs periodic background re-syncs.
type Scheduler interface {
	// Start begins triggering runs on an interval.
	// Blocks until context is cancelled or Stop is called.
	Start(ctx context.Context) error

	// Stop gracefully stops the scheduler.
	Stop() error
}
