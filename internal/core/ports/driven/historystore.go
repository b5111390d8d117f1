package driven

import (
	"context"

	"github.com/gmacarthur/innersync-desktop/internal/core/domain"
)

// HistoryStore persists the run history.
type HistoryStore interface {
	// Load returns all stored entries, oldest first.
	// A store that has never been written returns an empty slice and no error.
	Load(ctx context.Context) ([]domain.HistoryEntry, error)

	// Save replaces the stored history with entries.
	Save(ctx context.Context, entries []domain.HistoryEntry) error
}
