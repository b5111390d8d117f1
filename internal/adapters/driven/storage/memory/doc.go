// Package memory provides in-memory implementations of driven ports.
// They back tests and ephemeral runs; nothing is persisted.
package memory
