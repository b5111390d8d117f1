package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gmacarthur/innersync-desktop/internal/core/domain"
)

const timeLayout = "2006-01-02 15:04:05"

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent sync runs",
	Long:  `Lists recorded sync runs, newest first.`,
	RunE:  runHistory,
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all history entries",
	RunE:  runHistoryClear,
}

func init() {
	historyCmd.Flags().IntP("limit", "n", 20, "maximum number of entries to show (0 = all)")
	historyCmd.AddCommand(historyClearCmd)
	rootCmd.AddCommand(historyCmd)
}

func loadHistory(cmd *cobra.Command, rt *Runtime) ([]domain.HistoryEntry, error) {
	if rt.History == nil {
		return nil, errors.New("history store not configured")
	}
	entries, err := rt.History.Load(cmd.Context())
	if err != nil {
		return nil, fmt.Errorf("loading history: %w", err)
	}
	return domain.TrimHistory(entries, rt.Config.HistoryLimit), nil
}

func runHistory(cmd *cobra.Command, _ []string) error {
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return fmt.Errorf("getting limit flag: %w", err)
	}

	rt, err := loadRuntime(BuildOptions{OneShot: true})
	if err != nil {
		return err
	}
	defer rt.release()

	entries, err := loadHistory(cmd, rt)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		cmd.Println("No sync runs recorded.")
		return nil
	}

	shown := 0
	for i := len(entries) - 1; i >= 0; i-- {
		if limit > 0 && shown == limit {
			break
		}
		e := entries[i]
		cmd.Printf("%s  %-8s %-28s %s\n",
			e.Timestamp.Local().Format(timeLayout), e.Status, e.Trigger, entryDetail(e))
		shown++
	}
	if shown < len(entries) {
		cmd.Printf("(%d more, use --limit 0 to show all)\n", len(entries)-shown)
	}
	return nil
}

func runHistoryClear(cmd *cobra.Command, _ []string) error {
	rt, err := loadRuntime(BuildOptions{OneShot: true})
	if err != nil {
		return err
	}
	defer rt.release()

	if rt.History == nil {
		return errors.New("history store not configured")
	}
	if err := rt.History.Save(cmd.Context(), []domain.HistoryEntry{}); err != nil {
		return fmt.Errorf("clearing history: %w", err)
	}
	cmd.Println("History cleared.")
	return nil
}

func entryDetail(e domain.HistoryEntry) string {
	switch {
	case e.Reason != "":
		return e.Reason
	case e.Message != "":
		return e.Message
	case e.PayloadHash != "":
		if len(e.PayloadHash) > 12 {
			return e.PayloadHash[:12]
		}
		return e.PayloadHash
	default:
		return ""
	}
}
