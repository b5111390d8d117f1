// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - Exporter: Turns the timetable document into export files
//   - RemoteClient: Logs in and uploads payloads to the remote endpoint
//   - TokenCache: Persists the single cached credential token
//   - HistoryStore: Persists the bounded run history
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the engine degrades gracefully:
//
//   - ChangeWatcher: Without it, only manual and scheduled triggers run.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
