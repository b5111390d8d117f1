// Package cli provides the innersync command-line interface.
// It implements a driving adapter following hexagonal architecture principles.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gmacarthur/innersync-desktop/internal/core/domain"
	"github.com/gmacarthur/innersync-desktop/internal/core/ports/driven"
	"github.com/gmacarthur/innersync-desktop/internal/core/ports/driving"
	"github.com/gmacarthur/innersync-desktop/internal/logger"
)

// version is set at build time via SetVersion.
var version = "dev"

// Runtime is the set of services one command invocation runs against.
type Runtime struct {
	// Config is the resolved engine configuration.
	Config domain.SyncConfig

	// Sync is the engine. It is not started.
	Sync driving.SyncService

	// Scheduler triggers periodic re-syncs when an interval is configured.
	Scheduler driving.Scheduler

	// History is the persisted run history, readable without the engine.
	History driven.HistoryStore

	Tokens driven.TokenCache
	Remote driven.RemoteClient

	// Close releases resources opened by the bootstrap. May be nil.
	Close func() error
}

// BuildOptions tune how the runtime is wired.
type BuildOptions struct {
	// OneShot builds an engine without a watcher or startup run.
	OneShot bool
}

// Bootstrap wires the CLI to concrete adapters.
type Bootstrap struct {
	// OpenSettings opens the configuration store in dir, or the default
	// location when dir is empty.
	OpenSettings func(dir string) (driven.ConfigStore, error)

	// Build wires the engine and its adapters for the given settings.
	Build func(settings driven.ConfigStore, opts BuildOptions) (*Runtime, error)
}

var bootstrap *Bootstrap

// SetBootstrap sets the adapter wiring used by every command.
func SetBootstrap(b *Bootstrap) {
	bootstrap = b
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

var (
	configDir string
	verbose   bool
)

var rootCmd = &cobra.Command{
	Use:   "innersync",
	Short: "Sync timetable exports to the innersync server",
	Long: `innersync watches a timetable document, exports it to CSV files whenever
it changes, and uploads the export to the innersync server.

Run "innersync run" to start the background engine, or "innersync sync"
for a single export and upload.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "configuration directory (default ~/.innersync)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// Execute runs the root command. SIGINT and SIGTERM cancel the command context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

// openSettings opens the configuration store for --config-dir.
func openSettings() (driven.ConfigStore, error) {
	if bootstrap == nil || bootstrap.OpenSettings == nil {
		return nil, errors.New("settings not configured")
	}
	store, err := bootstrap.OpenSettings(configDir)
	if err != nil {
		return nil, fmt.Errorf("opening settings: %w", err)
	}
	return store, nil
}

// loadRuntime builds the runtime for --config-dir.
func loadRuntime(opts BuildOptions) (*Runtime, error) {
	if bootstrap == nil || bootstrap.Build == nil {
		return nil, errors.New("sync service not configured")
	}
	settings, err := openSettings()
	if err != nil {
		return nil, err
	}
	rt, err := bootstrap.Build(settings, opts)
	if err != nil {
		return nil, err
	}
	if rt.Sync == nil {
		rt.release()
		return nil, errors.New("sync service not configured")
	}
	return rt, nil
}

// release closes the runtime, logging failures.
func (rt *Runtime) release() {
	if rt == nil || rt.Close == nil {
		return
	}
	if err := rt.Close(); err != nil {
		logger.Warn("closing: %v", err)
	}
}
