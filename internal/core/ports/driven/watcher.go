package driven

import (
	"context"

	"github.com/gmacarthur/innersync-desktop/internal/core/domain"
)

// ChangeWatcher observes a set of absolute file paths.
type ChangeWatcher interface {
	// Watch starts observing paths. Only add and change events are delivered;
	// removals are logged by the implementation and dropped.
	// The channel is closed when ctx is cancelled.
	Watch(ctx context.Context, paths []string) (<-chan domain.FileChange, error)
}
