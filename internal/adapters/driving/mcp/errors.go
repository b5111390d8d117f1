// Package mcp provides an MCP (Model Context Protocol) server adapter for innersync.
// It lets AI assistants inspect the sync engine and trigger, pause or resume it.
package mcp

import "errors"

// ErrMissingSyncService is returned when the sync service is not provided.
var ErrMissingSyncService = errors.New("mcp: sync service is required")
