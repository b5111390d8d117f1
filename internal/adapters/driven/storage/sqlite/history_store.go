package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/gmacarthur/innersync-desktop/internal/core/domain"
	"github.com/gmacarthur/innersync-desktop/internal/core/ports/driven"
)

// historyStore implements driven.HistoryStore.
type historyStore struct {
	store *Store
}

var _ driven.HistoryStore = (*historyStore)(nil)

// Load returns all history entries, oldest first.
func (s *historyStore) Load(ctx context.Context) ([]domain.HistoryEntry, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, trigger_reason, status, timestamp, payload_hash, message, reason
		FROM run_history
		ORDER BY position ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("querying run history: %w", err)
	}
	defer rows.Close()

	var entries []domain.HistoryEntry //nolint:prealloc // size unknown from query
	for rows.Next() {
		entry, err := scanHistoryEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating run history: %w", err)
	}

	return entries, nil
}

// Save replaces the stored history with entries in one transaction.
func (s *historyStore) Save(ctx context.Context, entries []domain.HistoryEntry) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting history save: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx, "DELETE FROM run_history"); err != nil {
		return fmt.Errorf("clearing run history: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO run_history (id, position, trigger_reason, status, timestamp, payload_hash, message, reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing history insert: %w", err)
	}
	defer stmt.Close()

	for i, e := range entries {
		if e.ID == "" {
			return fmt.Errorf("%w: history entry %d has no id", domain.ErrInvalidInput, i)
		}
		_, err := stmt.ExecContext(ctx,
			e.ID, i, e.Trigger, string(e.Status),
			formatNullableTime(e.Timestamp),
			nullString(e.PayloadHash), nullString(e.Message), nullString(e.Reason))
		if err != nil {
			return fmt.Errorf("saving history entry %s: %w", e.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing history: %w", err)
	}
	return nil
}

// scanHistoryEntry scans a history entry from *sql.Rows.
func scanHistoryEntry(rows *sql.Rows) (*domain.HistoryEntry, error) {
	var entry domain.HistoryEntry
	var status string
	var timestamp, payloadHash, message, reason sql.NullString

	if err := rows.Scan(&entry.ID, &entry.Trigger, &status,
		&timestamp, &payloadHash, &message, &reason); err != nil {
		return nil, fmt.Errorf("scanning history entry: %w", err)
	}

	entry.Status = domain.RunStatus(status)
	entry.Timestamp = parseNullableTime(timestamp)
	entry.PayloadHash = payloadHash.String
	entry.Message = message.String
	entry.Reason = reason.String

	return &entry, nil
}

// formatNullableTime formats a time as RFC3339Nano, or nil if zero.
func formatNullableTime(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(time.RFC3339Nano)
}

// parseNullableTime parses a nullable RFC3339 string to time.Time.
// Returns zero time if the string is empty or invalid.
func parseNullableTime(s sql.NullString) time.Time {
	if !s.Valid || s.String == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s.String)
	if err != nil {
		return time.Time{}
	}
	return t
}

// nullString returns nil for empty strings, otherwise the string.
func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
