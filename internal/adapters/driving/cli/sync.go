package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gmacarthur/innersync-desktop/internal/core/domain"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Export and upload once",
	Long: `Runs a single export and upload and prints the outcome.
The run is recorded in the history like any other.`,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().String("reason", domain.TriggerManual, "trigger reason recorded in the history")
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, _ []string) error {
	reason, err := cmd.Flags().GetString("reason")
	if err != nil {
		return fmt.Errorf("getting reason flag: %w", err)
	}

	rt, err := loadRuntime(BuildOptions{OneShot: true})
	if err != nil {
		return err
	}
	defer rt.release()

	if err := startEngine(cmd.Context(), rt); err != nil {
		return err
	}

	cmd.Println("Synchronising...")
	result, syncErr := rt.Sync.SyncNow(cmd.Context(), reason)
	if err := stopEngine(rt); err != nil && syncErr == nil {
		syncErr = err
	}
	if syncErr != nil {
		return fmt.Errorf("sync failed: %w", syncErr)
	}

	cmd.Printf("Result: %s\n", formatResult(result))
	if result.PayloadHash != "" {
		cmd.Printf("Payload: %s\n", result.PayloadHash)
	}
	if result.Status == domain.RunError {
		return fmt.Errorf("sync failed: %s", result.Message)
	}
	return nil
}

// formatResult renders a run outcome on one line.
func formatResult(r domain.RunResult) string {
	switch {
	case r.Reason != "":
		return fmt.Sprintf("%s (%s)", r.Status, r.Reason)
	case r.Message != "":
		return fmt.Sprintf("%s (%s)", r.Status, r.Message)
	default:
		return string(r.Status)
	}
}
