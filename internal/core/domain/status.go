package domain

import "time"

// SyncStatus is a full snapshot of the engine, sent with every event.
type SyncStatus struct {
	State      RunState       `json:"state"`
	Paused     bool           `json:"paused"`
	Running    bool           `json:"running"`
	LastRun    time.Time      `json:"lastRun,omitempty"`
	LastResult *RunResult     `json:"lastResult,omitempty"`
	History    []HistoryEntry `json:"history"`
	WatchFiles []string       `json:"watchFiles"`
}

// Clone returns a deep copy safe to hand to another goroutine.
func (s SyncStatus) Clone() SyncStatus {
	out := s
	if s.LastResult != nil {
		r := *s.LastResult
		out.LastResult = &r
	}
	out.History = append([]HistoryEntry(nil), s.History...)
	out.WatchFiles = append([]string(nil), s.WatchFiles...)
	return out
}

// EventType identifies what changed.
type EventType string

const (
	// EventStatus is emitted on every state transition.
	EventStatus EventType = "status"

	// EventHistory is emitted on every history mutation.
	EventHistory EventType = "history"
)

// Event is published to subscribers. Status always carries the full snapshot.
type Event struct {
	Type   EventType
	Status SyncStatus
}
