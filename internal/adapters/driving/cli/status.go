package cli

import (
	"github.com/spf13/cobra"

	"github.com/gmacarthur/innersync-desktop/internal/core/domain"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configuration and the last sync",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	rt, err := loadRuntime(BuildOptions{OneShot: true})
	if err != nil {
		return err
	}
	defer rt.release()

	cfg := rt.Config
	cmd.Println("innersync status")
	cmd.Println("================")
	cmd.Printf("Source:      %s\n", cfg.SourcePath)
	cmd.Printf("Output:      %s\n", cfg.OutputDir)
	for i, p := range cfg.WatchFiles {
		label := "Watching:"
		if i > 0 {
			label = ""
		}
		cmd.Printf("%-12s %s\n", label, p)
	}
	cmd.Printf("Debounce:    %s\n", cfg.Debounce)
	if cfg.Interval > 0 {
		cmd.Printf("Interval:    %s\n", cfg.Interval)
	} else {
		cmd.Println("Interval:    disabled")
	}
	cmd.Printf("Server:      %s\n", cfg.APIBaseURL)
	cmd.Printf("Auth:        %s\n", authSummary(rt))

	entries, err := loadHistory(cmd, rt)
	if err != nil {
		return err
	}
	cmd.Println()
	if len(entries) == 0 {
		cmd.Println("Last sync:   never")
		return nil
	}
	last := entries[len(entries)-1]
	cmd.Printf("Last sync:   %s  %s  [%s]\n",
		last.Timestamp.Local().Format(timeLayout), formatResult(last.Result()), last.Trigger)
	cmd.Printf("History:     %d of %d entries\n", len(entries), cfg.HistoryLimit)
	return nil
}

// authSummary describes which credential a run would use.
func authSummary(rt *Runtime) string {
	switch {
	case rt.Config.APIToken != "":
		return "explicit token"
	case rt.Tokens != nil && rt.Tokens.Load() != "":
		return "cached token (" + rt.Tokens.Path() + ")"
	case rt.Config.Credentials.IsSet():
		return "login as " + rt.Config.Credentials.Email
	default:
		return "not configured (runs are skipped: " + domain.ReasonNoToken + ")"
	}
}
