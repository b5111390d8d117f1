package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidTransition indicates a RunState change the state machine forbids.
	ErrInvalidTransition = errors.New("invalid state transition")

	// Engine lifecycle errors.

	// ErrNotStarted indicates the sync engine has not been started.
	ErrNotStarted = errors.New("sync engine not started")

	// ErrAlreadyStarted indicates Start was called twice.
	ErrAlreadyStarted = errors.New("sync engine already started")

	// ErrStopped indicates the sync engine has stopped and accepts no commands.
	ErrStopped = errors.New("sync engine stopped")

	// ErrSyncPaused indicates a trigger was dropped because syncing is paused.
	ErrSyncPaused = errors.New("sync paused")

	// Pipeline errors.

	// ErrExportFailed indicates the exporter could not produce its files.
	ErrExportFailed = errors.New("export failed")

	// ErrUnauthorized indicates the remote rejected the credential token.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrLoginFailed indicates the remote refused or failed a login.
	ErrLoginFailed = errors.New("login failed")
)
