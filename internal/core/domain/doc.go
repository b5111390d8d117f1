// Package domain defines the core entities of the innersync engine.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - RunState / RunResult: the engine state machine and run outcomes
//   - HistoryEntry: a bounded, persisted record of runs
//   - SyncStatus / Event: snapshots broadcast to consumers
//   - SyncConfig: the resolved, immutable configuration
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
