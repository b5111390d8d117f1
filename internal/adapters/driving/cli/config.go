package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gmacarthur/innersync-desktop/internal/core/services"
)

type valueKind int

const (
	kindString valueKind = iota
	kindInt
	kindList
	kindArgs
)

// configKeys are the keys accepted by "config set".
var configKeys = map[string]valueKind{
	services.KeyBaseDir:         kindString,
	services.KeySource:          kindString,
	services.KeyOutputDir:       kindString,
	services.KeyWatch:           kindList,
	services.KeyDebounceMS:      kindInt,
	services.KeyStabilityMS:     kindInt,
	services.KeyIntervalMinutes: kindInt,
	services.KeyHistoryPath:     kindString,
	services.KeyHistoryLimit:    kindInt,
	services.KeyHistoryBackend:  kindString,
	services.KeyTokenCache:      kindString,
	services.KeyToken:           kindString,
	services.KeyEmail:           kindString,
	services.KeyPassword:        kindString,
	services.KeyAPIBaseURL:      kindString,
	services.KeyExporterCommand: kindArgs,
}

// secretKeys are masked by "config show".
var secretKeys = map[string]bool{
	services.KeyToken:    true,
	services.KeyPassword: true,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `View and change the innersync configuration file.

Environment variables override the file:
  INNERSYNC_BASE_DIR, INNERSYNC_API_URL, INNERSYNC_API_TOKEN,
  INNERSYNC_EMAIL, INNERSYNC_PASSWORD`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show configured values",
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Sets a configuration value and saves the file.

Lists: sync.watch takes comma-separated paths; exporter.command takes the
command line, split on whitespace.`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file path",
	RunE:  runConfigPath,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	store, err := openSettings()
	if err != nil {
		return err
	}

	cmd.Printf("Configuration (%s)\n", store.Path())
	cmd.Println("=============")
	keys := store.Keys()
	if len(keys) == 0 {
		cmd.Println("(no values set, defaults apply)")
	}
	for _, key := range keys {
		value, _ := store.Get(key)
		cmd.Printf("  %s = %s\n", key, formatValue(key, value))
	}

	cmd.Println()
	if _, err := services.ResolveConfig(store, filepath.Dir(store.Path()), os.Getenv); err != nil {
		cmd.Printf("Warning: %v\n", err)
	} else {
		cmd.Println("Configuration is valid.")
	}
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, raw := args[0], args[1]

	kind, ok := configKeys[key]
	if !ok {
		return fmt.Errorf("unknown key %q (known keys: %s)", key, strings.Join(knownKeys(), ", "))
	}
	value, err := parseValue(kind, raw)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}

	store, err := openSettings()
	if err != nil {
		return err
	}
	if err := store.Set(key, value); err != nil {
		return fmt.Errorf("saving %s: %w", key, err)
	}

	cmd.Printf("Set %s = %s\n", key, formatValue(key, value))
	return nil
}

func runConfigPath(cmd *cobra.Command, _ []string) error {
	store, err := openSettings()
	if err != nil {
		return err
	}
	cmd.Println(store.Path())
	return nil
}

func parseValue(kind valueKind, raw string) (any, error) {
	switch kind {
	case kindInt:
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("expected an integer: %w", err)
		}
		return n, nil
	case kindList:
		var out []string
		for _, p := range strings.Split(raw, ",") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out, nil
	case kindArgs:
		return strings.Fields(raw), nil
	default:
		return strings.TrimSpace(raw), nil
	}
}

func formatValue(key string, value any) string {
	if secretKeys[key] {
		s, _ := value.(string)
		return maskSecret(s)
	}
	switch v := value.(type) {
	case []string:
		return "[" + strings.Join(v, ", ") + "]"
	case []any:
		parts := make([]string, len(v))
		for i, p := range v {
			parts[i] = fmt.Sprint(p)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return fmt.Sprint(v)
	}
}

func maskSecret(s string) string {
	if s == "" {
		return "(not set)"
	}
	if len(s) <= 8 {
		return "****"
	}
	return s[:4] + "..." + s[len(s)-4:]
}

func knownKeys() []string {
	keys := make([]string, 0, len(configKeys))
	for k := range configKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
