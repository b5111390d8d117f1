package domain

import (
	"fmt"
	"time"
)

// RunState is the public state of the sync engine.
type RunState string

const (
	// StateIdle means no run is active.
	StateIdle RunState = "idle"

	// StateSyncing means a pipeline run is in flight.
	StateSyncing RunState = "syncing"

	// StateError means the last run failed. Otherwise equivalent to idle.
	StateError RunState = "error"

	// StateStopped is terminal. The watcher has been released.
	StateStopped RunState = "stopped"
)

// Transition table: from -> allowed tos.
var runTransitions = map[RunState][]RunState{
	StateIdle:    {StateSyncing, StateStopped},
	StateError:   {StateSyncing, StateStopped},
	StateSyncing: {StateIdle, StateError},
	StateStopped: {},
}

// CanTransition reports whether the engine may move from one state to another.
// Syncing never moves straight to stopped: the in-flight run settles first.
func CanTransition(from, to RunState) bool {
	for _, s := range runTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Transition validates a state change.
func Transition(from, to RunState) error {
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}

// IsTerminal returns true for states the engine never leaves.
func (s RunState) IsTerminal() bool {
	return s == StateStopped
}

// RunStatus classifies a completed pipeline attempt.
type RunStatus string

const (
	RunSuccess RunStatus = "success"
	RunSkipped RunStatus = "skipped"
	RunError   RunStatus = "error"
)

// Outcome reasons reported for skipped runs.
const (
	ReasonNoToken   = "no token"
	ReasonNoFiles   = "no files"
	ReasonDuplicate = "duplicate"
)

// Trigger reasons raised by the engine itself.
const (
	TriggerStartup   = "startup"
	TriggerManual    = "manual"
	TriggerScheduled = "scheduled"
)

// RunResult is the immutable outcome of one pipeline attempt.
type RunResult struct {
	// Status is success, skipped or error.
	Status RunStatus `json:"status"`

	// Timestamp is when the run finished.
	Timestamp time.Time `json:"timestamp"`

	// PayloadHash is the fingerprint of the uploaded files, if one was computed.
	PayloadHash string `json:"payloadHash,omitempty"`

	// Message carries the error text or the remote's message.
	Message string `json:"message,omitempty"`

	// Reason explains a skipped outcome (e.g. "no token", "duplicate").
	Reason string `json:"reason,omitempty"`
}

// OK returns true unless the run failed.
func (r RunResult) OK() bool {
	return r.Status != RunError
}
