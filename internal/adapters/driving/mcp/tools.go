package mcp

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/gmacarthur/innersync-desktop/internal/core/domain"
)

// EmptyInput is the input schema for tools without arguments.
type EmptyInput struct{}

// TriggerInput is the input schema for the trigger_sync tool.
type TriggerInput struct {
	Reason string `json:"reason,omitempty" jsonschema:"why the sync is requested (default manual)"`
	Wait   bool   `json:"wait,omitempty" jsonschema:"wait for the run to finish and return its result"`
}

// StatusOutput is the output schema for status-returning tools.
type StatusOutput struct {
	State      string        `json:"state"`
	Paused     bool          `json:"paused"`
	Running    bool          `json:"running"`
	LastRun    string        `json:"last_run,omitempty"`
	LastResult *ResultOutput `json:"last_result,omitempty"`
	WatchFiles []string      `json:"watch_files"`
	History    int           `json:"history_entries"`
}

// ResultOutput describes one pipeline run.
type ResultOutput struct {
	Status      string `json:"status"`
	Timestamp   string `json:"timestamp"`
	PayloadHash string `json:"payload_hash,omitempty"`
	Message     string `json:"message,omitempty"`
	Reason      string `json:"reason,omitempty"`
}

// TriggerOutput is the output schema for the trigger_sync tool.
type TriggerOutput struct {
	Accepted bool          `json:"accepted"`
	Result   *ResultOutput `json:"result,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "sync_status",
		Description: "Show the sync engine state, last result and watched files",
	}, s.handleStatus)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "trigger_sync",
		Description: "Export the timetable and upload it now",
	}, s.handleTrigger)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "pause_sync",
		Description: "Stop reacting to file changes and triggers until resumed",
	}, s.handlePause)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "resume_sync",
		Description: "Resume automatic syncing",
	}, s.handleResume)
}

// handleStatus handles the sync_status tool invocation.
func (s *Server) handleStatus(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ EmptyInput,
) (*mcp.CallToolResult, StatusOutput, error) {
	return nil, toStatusOutput(s.ports.Sync.Status()), nil
}

// handleTrigger handles the trigger_sync tool invocation.
func (s *Server) handleTrigger(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input TriggerInput,
) (*mcp.CallToolResult, TriggerOutput, error) {
	if !input.Wait {
		if err := s.ports.Sync.TriggerSync(ctx, input.Reason); err != nil {
			return nil, TriggerOutput{}, err
		}
		return nil, TriggerOutput{Accepted: !s.ports.Sync.Status().Paused}, nil
	}

	result, err := s.ports.Sync.SyncNow(ctx, input.Reason)
	if err != nil {
		return nil, TriggerOutput{}, err
	}
	out := toResultOutput(result)
	return nil, TriggerOutput{Accepted: true, Result: &out}, nil
}

// handlePause handles the pause_sync tool invocation.
func (s *Server) handlePause(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ EmptyInput,
) (*mcp.CallToolResult, StatusOutput, error) {
	if err := s.ports.Sync.Pause(ctx); err != nil {
		return nil, StatusOutput{}, err
	}
	return nil, toStatusOutput(s.ports.Sync.Status()), nil
}

// handleResume handles the resume_sync tool invocation.
func (s *Server) handleResume(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ EmptyInput,
) (*mcp.CallToolResult, StatusOutput, error) {
	if err := s.ports.Sync.Resume(ctx); err != nil {
		return nil, StatusOutput{}, err
	}
	return nil, toStatusOutput(s.ports.Sync.Status()), nil
}

func toStatusOutput(status domain.SyncStatus) StatusOutput {
	out := StatusOutput{
		State:      string(status.State),
		Paused:     status.Paused,
		Running:    status.Running,
		WatchFiles: status.WatchFiles,
		History:    len(status.History),
	}
	if out.WatchFiles == nil {
		out.WatchFiles = []string{}
	}
	if !status.LastRun.IsZero() {
		out.LastRun = status.LastRun.Format(time.RFC3339)
	}
	if status.LastResult != nil {
		r := toResultOutput(*status.LastResult)
		out.LastResult = &r
	}
	return out
}

func toResultOutput(r domain.RunResult) ResultOutput {
	return ResultOutput{
		Status:      string(r.Status),
		Timestamp:   r.Timestamp.Format(time.RFC3339),
		PayloadHash: r.PayloadHash,
		Message:     r.Message,
		Reason:      r.Reason,
	}
}
