package domain

import "time"

// History backends.
const (
	HistoryBackendFile   = "file"
	HistoryBackendSQLite = "sqlite"
)

// Configuration defaults.
const (
	DefaultDebounce        = 2000 * time.Millisecond
	DefaultStabilityWindow = 500 * time.Millisecond
	DefaultSourceFile      = "Timetable.tfx"
	DefaultOutputDirName   = "exports"
	DefaultHistoryFile     = "history.json"
	DefaultHistoryDBDir    = "data"
	DefaultTokenCacheFile  = "token"
	DefaultAPIBaseURL      = "http://localhost:8080"
)

// SyncConfig is the fully resolved, immutable configuration of the engine.
// It is produced once by services.ResolveConfig and never mutated.
type SyncConfig struct {
	// BaseDir anchors every relative path below.
	BaseDir string

	// SourcePath is the timetable document to export.
	SourcePath string

	// OutputDir receives the export files.
	OutputDir string

	// WatchFiles are the absolute paths observed for changes.
	WatchFiles []string

	// Debounce is the idle window after the last trigger before a run starts.
	Debounce time.Duration

	// StabilityWindow is how long a file must stay unchanged before the
	// watcher reports it.
	StabilityWindow time.Duration

	// Interval enables periodic re-syncs when positive.
	Interval time.Duration

	HistoryPath    string
	HistoryLimit   int
	HistoryBackend string

	TokenCachePath string
	APIBaseURL     string
	Credentials    Credentials
	APIToken       string

	// ExporterCommand is the external exporter invocation; the source path and
	// output directory are appended as the final two arguments.
	ExporterCommand []string

	// SkipStartupRun disables the run Start normally performs. One-shot
	// invocations set it and trigger their own run.
	SkipStartupRun bool
}

// WatchSet returns a copy of the watched paths.
func (c SyncConfig) WatchSet() []string {
	return append([]string(nil), c.WatchFiles...)
}
