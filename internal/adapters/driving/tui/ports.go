// Package tui provides an interactive terminal dashboard for the sync engine.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/gmacarthur/innersync-desktop/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Sync is the running sync engine.
	Sync driving.SyncService
}

// NewPorts creates a new Ports aggregate.
func NewPorts(sync driving.SyncService) *Ports {
	return &Ports{Sync: sync}
}

// Validate ensures all required ports are set.
// Returns an error if any port is nil.
func (p *Ports) Validate() error {
	if p == nil || p.Sync == nil {
		return ErrMissingSyncService
	}
	return nil
}
