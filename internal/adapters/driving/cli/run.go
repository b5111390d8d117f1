package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/gmacarthur/innersync-desktop/internal/adapters/driving/mcp"
	"github.com/gmacarthur/innersync-desktop/internal/logger"
)

// stopTimeout bounds how long shutdown waits for an in-flight run.
var stopTimeout = 30 * time.Second

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the sync engine in the foreground",
	Long: `Starts the sync engine: an initial export and upload, then a new run
whenever a watched file changes. Runs until interrupted.

Use --mcp-port to also serve the MCP interface over HTTP so assistants can
query status and trigger syncs while the engine runs.`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().Int("mcp-port", 0, "serve MCP over HTTP on this port (0 = disabled)")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("mcp-port")
	if err != nil {
		return fmt.Errorf("getting mcp-port flag: %w", err)
	}

	rt, err := loadRuntime(BuildOptions{})
	if err != nil {
		return err
	}
	defer rt.release()

	var server *mcp.Server
	if port > 0 {
		server, err = mcp.NewServer(&mcp.Ports{Sync: rt.Sync})
		if err != nil {
			return err
		}
	}

	if err := startEngine(cmd.Context(), rt); err != nil {
		return err
	}
	cmd.Printf("Watching %s\n", strings.Join(rt.Config.WatchFiles, ", "))

	g, ctx := errgroup.WithContext(cmd.Context())
	if rt.Scheduler != nil {
		g.Go(func() error {
			return rt.Scheduler.Start(ctx)
		})
	}
	if server != nil {
		addr := fmt.Sprintf(":%d", port)
		cmd.Printf("MCP server listening on http://localhost%s\n", addr)
		g.Go(func() error {
			return server.RunHTTP(ctx, addr)
		})
	}
	g.Go(func() error {
		<-ctx.Done()
		return nil
	})

	err = g.Wait()
	if stopErr := stopEngine(rt); stopErr != nil && err == nil {
		err = stopErr
	}
	return err
}

// startEngine starts the engine in rt.
func startEngine(ctx context.Context, rt *Runtime) error {
	if err := rt.Sync.Start(ctx); err != nil {
		return fmt.Errorf("starting sync engine: %w", err)
	}
	return nil
}

// runScheduler runs the scheduler in the background until ctx is done or
// stopEngine is called.
func runScheduler(ctx context.Context, rt *Runtime) {
	if rt.Scheduler == nil {
		return
	}
	go func() {
		if err := rt.Scheduler.Start(ctx); err != nil {
			logger.Warn("scheduler stopped: %v", err)
		}
	}()
}

// stopEngine stops the scheduler and the engine, waiting up to stopTimeout
// for an in-flight run.
func stopEngine(rt *Runtime) error {
	if rt.Scheduler != nil {
		if err := rt.Scheduler.Stop(); err != nil {
			logger.Warn("scheduler stop error: %v", err)
		}
	}
	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	if err := rt.Sync.Stop(ctx); err != nil {
		return fmt.Errorf("stopping sync engine: %w", err)
	}
	return nil
}
