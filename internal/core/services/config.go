package services

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gmacarthur/innersync-desktop/internal/core/domain"
	"github.com/gmacarthur/innersync-desktop/internal/core/ports/driven"
)

// Configuration keys.
const (
	KeyBaseDir         = "sync.base_dir"
	KeySource          = "sync.source"
	KeyOutputDir       = "sync.output_dir"
	KeyWatch           = "sync.watch"
	KeyDebounceMS      = "sync.debounce_ms"
	KeyStabilityMS     = "sync.stability_ms"
	KeyIntervalMinutes = "sync.interval_minutes"
	KeyHistoryPath     = "history.path"
	KeyHistoryLimit    = "history.limit"
	KeyHistoryBackend  = "history.backend"
	KeyTokenCache      = "auth.token_cache"
	KeyToken           = "auth.token"
	KeyEmail           = "auth.email"
	KeyPassword        = "auth.password"
	KeyAPIBaseURL      = "api.base_url"
	KeyExporterCommand = "exporter.command"
)

// Environment overrides.
const (
	EnvBaseDir  = "INNERSYNC_BASE_DIR"
	EnvAPIURL   = "INNERSYNC_API_URL"
	EnvAPIToken = "INNERSYNC_API_TOKEN"
	EnvEmail    = "INNERSYNC_EMAIL"
	EnvPassword = "INNERSYNC_PASSWORD"
)

// DefaultExporterCommand is used when exporter.command is not configured.
var DefaultExporterCommand = []string{"innersync-export"}

// ResolveConfig consolidates the config file, environment and defaults into
// one immutable SyncConfig. defaultBaseDir is used when neither the file nor
// the environment names a base directory. getenv may be nil.
func ResolveConfig(store driven.ConfigStore, defaultBaseDir string, getenv func(string) string) (domain.SyncConfig, error) {
	if getenv == nil {
		getenv = func(string) string { return "" }
	}
	str := func(key, env string) string {
		if env != "" {
			if v := strings.TrimSpace(getenv(env)); v != "" {
				return v
			}
		}
		if store == nil {
			return ""
		}
		return strings.TrimSpace(store.GetString(key))
	}
	num := func(key string) (int, bool) {
		if store == nil {
			return 0, false
		}
		if _, ok := store.Get(key); !ok {
			return 0, false
		}
		return store.GetInt(key), true
	}
	list := func(key string) []string {
		if store == nil {
			return nil
		}
		return store.GetStringSlice(key)
	}

	baseDir := str(KeyBaseDir, EnvBaseDir)
	if baseDir == "" {
		baseDir = defaultBaseDir
	}
	if baseDir == "" {
		return domain.SyncConfig{}, fmt.Errorf("%w: no base directory", domain.ErrInvalidInput)
	}
	baseDir, err := expandHome(baseDir)
	if err != nil {
		return domain.SyncConfig{}, err
	}
	baseDir, err = filepath.Abs(baseDir)
	if err != nil {
		return domain.SyncConfig{}, fmt.Errorf("resolve base dir: %w", err)
	}

	resolve := func(p, fallback string) (string, error) {
		if p == "" {
			p = fallback
		}
		p, err := expandHome(p)
		if err != nil {
			return "", err
		}
		if !filepath.IsAbs(p) {
			p = filepath.Join(baseDir, p)
		}
		return filepath.Clean(p), nil
	}

	cfg := domain.SyncConfig{
		BaseDir:         baseDir,
		Debounce:        domain.DefaultDebounce,
		StabilityWindow: domain.DefaultStabilityWindow,
		HistoryLimit:    domain.DefaultHistoryLimit,
		HistoryBackend:  domain.HistoryBackendFile,
		APIBaseURL:      domain.DefaultAPIBaseURL,
	}

	if cfg.SourcePath, err = resolve(str(KeySource, ""), domain.DefaultSourceFile); err != nil {
		return domain.SyncConfig{}, err
	}
	if cfg.OutputDir, err = resolve(str(KeyOutputDir, ""), domain.DefaultOutputDirName); err != nil {
		return domain.SyncConfig{}, err
	}

	watch := list(KeyWatch)
	if watch == nil {
		watch = []string{cfg.SourcePath}
	}
	seen := make(map[string]bool, len(watch))
	for _, w := range watch {
		w = strings.TrimSpace(w)
		if w == "" {
			continue
		}
		p, err := resolve(w, "")
		if err != nil {
			return domain.SyncConfig{}, err
		}
		if !seen[p] {
			seen[p] = true
			cfg.WatchFiles = append(cfg.WatchFiles, p)
		}
	}

	if ms, ok := num(KeyDebounceMS); ok {
		if ms < 0 {
			return domain.SyncConfig{}, fmt.Errorf("%w: %s must not be negative", domain.ErrInvalidInput, KeyDebounceMS)
		}
		cfg.Debounce = time.Duration(ms) * time.Millisecond
	}
	if ms, ok := num(KeyStabilityMS); ok {
		if ms < 0 {
			return domain.SyncConfig{}, fmt.Errorf("%w: %s must not be negative", domain.ErrInvalidInput, KeyStabilityMS)
		}
		cfg.StabilityWindow = time.Duration(ms) * time.Millisecond
	}
	if minutes, ok := num(KeyIntervalMinutes); ok && minutes > 0 {
		cfg.Interval = time.Duration(minutes) * time.Minute
	}
	if limit, ok := num(KeyHistoryLimit); ok && limit > 0 {
		cfg.HistoryLimit = limit
	}

	switch backend := strings.ToLower(str(KeyHistoryBackend, "")); backend {
	case "", domain.HistoryBackendFile:
	case domain.HistoryBackendSQLite:
		cfg.HistoryBackend = backend
	default:
		return domain.SyncConfig{}, fmt.Errorf("%w: unknown history backend %q", domain.ErrInvalidInput, backend)
	}

	historyDefault := domain.DefaultHistoryFile
	if cfg.HistoryBackend == domain.HistoryBackendSQLite {
		historyDefault = filepath.Join(domain.DefaultHistoryDBDir, "history.db")
	}
	if cfg.HistoryPath, err = resolve(str(KeyHistoryPath, ""), historyDefault); err != nil {
		return domain.SyncConfig{}, err
	}
	if cfg.TokenCachePath, err = resolve(str(KeyTokenCache, ""), domain.DefaultTokenCacheFile); err != nil {
		return domain.SyncConfig{}, err
	}

	if u := str(KeyAPIBaseURL, EnvAPIURL); u != "" {
		cfg.APIBaseURL = strings.TrimRight(u, "/")
	}
	cfg.APIToken = str(KeyToken, EnvAPIToken)
	cfg.Credentials = domain.Credentials{
		Email:    str(KeyEmail, EnvEmail),
		Password: str(KeyPassword, EnvPassword),
	}

	cfg.ExporterCommand = list(KeyExporterCommand)
	if len(cfg.ExporterCommand) == 0 {
		cfg.ExporterCommand = append([]string(nil), DefaultExporterCommand...)
	}

	return cfg, nil
}

// expandHome replaces a leading ~ with the user's home directory.
func expandHome(p string) (string, error) {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~")), nil
}
