// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/gmacarthur/innersync-desktop/internal/core/domain"
)

// EventReceived carries an engine event to the model.
type EventReceived struct {
	Event domain.Event
}

// EventsClosed is sent when the engine closes the event stream.
type EventsClosed struct{}

// SyncFinished carries the result of a sync started from the TUI.
type SyncFinished struct {
	Result domain.RunResult
	Err    error
}

// Action identifies a user command sent to the engine.
type Action int

const (
	// ActionSync starts a run.
	ActionSync Action = iota
	// ActionPause pauses the engine.
	ActionPause
	// ActionResume resumes the engine.
	ActionResume
	// ActionClearHistory clears the history.
	ActionClearHistory
)

// String returns the string representation of the action.
func (a Action) String() string {
	switch a {
	case ActionSync:
		return "sync"
	case ActionPause:
		return "pause"
	case ActionResume:
		return "resume"
	case ActionClearHistory:
		return "clear history"
	default:
		return "unknown"
	}
}

// ActionCompleted is sent when a pause, resume or clear finishes.
type ActionCompleted struct {
	Action Action
	Err    error
}

// ErrorOccurred is sent when an error should be displayed.
type ErrorOccurred struct {
	Err error
}
