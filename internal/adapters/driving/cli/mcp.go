package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gmacarthur/innersync-desktop/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the sync engine behind an MCP server",
	Long: `Starts the sync engine and exposes it over the Model Context Protocol so
AI assistants can read its status and history and trigger syncs.

By default, the server communicates over stdio using JSON-RPC.
Use --port to start an HTTP server instead.

Examples:
  # Stdio mode (default)
  innersync mcp serve

  # HTTP mode (for MCP Inspector, remote access)
  innersync mcp serve --port 8080`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}

	rt, err := loadRuntime(BuildOptions{})
	if err != nil {
		return err
	}
	defer rt.release()

	server, err := mcp.NewServer(&mcp.Ports{Sync: rt.Sync})
	if err != nil {
		return err
	}

	if err := startEngine(cmd.Context(), rt); err != nil {
		return err
	}
	runScheduler(cmd.Context(), rt)

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://localhost%s\n", addr)
		err = server.RunHTTP(cmd.Context(), addr)
	} else {
		err = server.Run(cmd.Context())
	}

	if stopErr := stopEngine(rt); stopErr != nil && err == nil {
		err = stopErr
	}
	return err
}
