// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The central service is SyncOrchestrator, which turns change events and
// manual triggers into a debounced, single-flight sequence of
// export-then-upload runs and broadcasts its status to subscribers.
package services
