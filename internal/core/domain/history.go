package domain

import "time"

// DefaultHistoryLimit is the number of history entries kept when none is configured.
const DefaultHistoryLimit = 50

// HistoryEntry is a persisted projection of a RunResult plus what triggered it.
type HistoryEntry struct {
	// ID uniquely identifies the entry.
	ID string `json:"id"`

	// Trigger is the reason the run was started (e.g. "changed Timetable.tfx").
	Trigger string `json:"trigger"`

	Status      RunStatus `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
	PayloadHash string    `json:"payloadHash,omitempty"`
	Message     string    `json:"message,omitempty"`
	Reason      string    `json:"reason,omitempty"`
}

// NewHistoryEntry projects a run result into a history entry.
// The ID is assigned when the entry is appended to the log.
func NewHistoryEntry(trigger string, result RunResult) HistoryEntry {
	return HistoryEntry{
		Trigger:     trigger,
		Status:      result.Status,
		Timestamp:   result.Timestamp,
		PayloadHash: result.PayloadHash,
		Message:     result.Message,
		Reason:      result.Reason,
	}
}

// Result returns the run result the entry was built from.
func (e HistoryEntry) Result() RunResult {
	return RunResult{
		Status:      e.Status,
		Timestamp:   e.Timestamp,
		PayloadHash: e.PayloadHash,
		Message:     e.Message,
		Reason:      e.Reason,
	}
}

// TrimHistory drops the oldest entries so that at most limit remain.
// A non-positive limit falls back to DefaultHistoryLimit.
func TrimHistory(entries []HistoryEntry, limit int) []HistoryEntry {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if len(entries) <= limit {
		return entries
	}
	return entries[len(entries)-limit:]
}
