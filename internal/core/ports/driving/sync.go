package driving

import (
	"context"

	"github.com/gmacarthur/innersync-desktop/internal/core/domain"
)

// SyncService is the sync engine as seen by presentation layers
// (CLI, TUI, MCP).
type SyncService interface {
	// Start loads history, begins watching and performs an initial run.
	Start(ctx context.Context) error

	// Stop halts watching and cancels any pending debounce timer.
	// An in-flight run finishes first; Stop returns once the engine is stopped.
	Stop(ctx context.Context) error

	// Pause stops accepting triggers without discarding state.
	Pause(ctx context.Context) error

	// Resume accepts triggers again.
	Resume(ctx context.Context) error

	// TriggerSync requests an immediate run. It returns once the request
	// has been accepted; triggers dropped while paused are not an error.
	TriggerSync(ctx context.Context, reason string) error

	// SyncNow triggers an immediate run and waits for its result.
	// Returns domain.ErrSyncPaused if the trigger was dropped.
	SyncNow(ctx context.Context, reason string) (domain.RunResult, error)

	// UpdateWatchFiles replaces the watch set. The change is applied
	// after any in-flight run completes.
	UpdateWatchFiles(ctx context.Context, paths []string) error

	// Status returns the current snapshot.
	Status() domain.SyncStatus

	// History returns the current bounded history, oldest first.
	History() []domain.HistoryEntry

	// ClearHistory removes every history entry.
	ClearHistory(ctx context.Context) error

	// Subscribe returns a stream of events emitted after the call, and a
	// function that ends the subscription and closes the stream.
	Subscribe(buffer int) (<-chan domain.Event, func())
}
