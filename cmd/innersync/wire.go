package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gmacarthur/innersync-desktop/internal/adapters/driven/auth"
	configfile "github.com/gmacarthur/innersync-desktop/internal/adapters/driven/config/file"
	"github.com/gmacarthur/innersync-desktop/internal/adapters/driven/exporter"
	"github.com/gmacarthur/innersync-desktop/internal/adapters/driven/remote"
	historyfile "github.com/gmacarthur/innersync-desktop/internal/adapters/driven/storage/file"
	"github.com/gmacarthur/innersync-desktop/internal/adapters/driven/storage/sqlite"
	"github.com/gmacarthur/innersync-desktop/internal/adapters/driven/watcher"
	"github.com/gmacarthur/innersync-desktop/internal/adapters/driving/cli"
	"github.com/gmacarthur/innersync-desktop/internal/core/domain"
	"github.com/gmacarthur/innersync-desktop/internal/core/ports/driven"
	"github.com/gmacarthur/innersync-desktop/internal/core/services"
	"github.com/gmacarthur/innersync-desktop/internal/logger"
)

// getenv is replaced in tests.
var getenv = os.Getenv

func openSettings(dir string) (driven.ConfigStore, error) {
	return configfile.NewConfigStore(dir)
}

// buildRuntime wires the engine and its adapters. The base directory
// defaults to the directory holding the configuration file.
func buildRuntime(settings driven.ConfigStore, opts cli.BuildOptions) (*cli.Runtime, error) {
	cfg, err := services.ResolveConfig(settings, filepath.Dir(settings.Path()), getenv)
	if err != nil {
		return nil, fmt.Errorf("resolving configuration: %w", err)
	}
	cfg.SkipStartupRun = opts.OneShot

	logger.Debug("base dir %s, history %s (%s)", cfg.BaseDir, cfg.HistoryPath, cfg.HistoryBackend)

	var (
		store   driven.HistoryStore
		closers []func() error
	)
	switch cfg.HistoryBackend {
	case domain.HistoryBackendSQLite:
		db, err := sqlite.NewStore(cfg.HistoryPath)
		if err != nil {
			return nil, fmt.Errorf("opening history database: %w", err)
		}
		store = db.HistoryStore()
		closers = append(closers, db.Close)
	default:
		store = historyfile.NewHistoryStore(cfg.HistoryPath)
	}

	tokens := auth.NewFileTokenCache(cfg.TokenCachePath)
	client := remote.NewClient(cfg.APIBaseURL)

	var changes driven.ChangeWatcher
	if !opts.OneShot {
		changes = watcher.New(cfg.StabilityWindow)
	}

	history := services.NewHistoryLog(store, cfg.HistoryLimit)
	engine := services.NewSyncOrchestrator(
		cfg,
		exporter.NewCommand(cfg.ExporterCommand, 0),
		services.NewUploader(client, tokens),
		changes,
		history,
	)

	// The history log flushes before the database closes.
	closers = append([]func() error{func() error { history.Close(); return nil }}, closers...)

	return &cli.Runtime{
		Config:    cfg,
		Sync:      engine,
		Scheduler: services.NewScheduler(cfg.Interval, engine),
		History:   store,
		Tokens:    tokens,
		Remote:    client,
		Close: func() error {
			var errs []error
			for _, c := range closers {
				errs = append(errs, c())
			}
			return errors.Join(errs...)
		},
	}, nil
}
