package cli

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/gmacarthur/innersync-desktop/internal/adapters/driving/tui"
	"github.com/gmacarthur/innersync-desktop/internal/logger"
)

// tuiCmd represents the tui command.
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive dashboard",
	Long: `Runs the sync engine with an interactive terminal dashboard showing
the engine state, the last run and the history.

Controls:
  s        - Sync now
  p        - Pause / resume
  c        - Clear history
  ↑/k, ↓/j - Scroll history
  ?        - Toggle help
  q        - Quit`,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) (err error) {
	// Add panic recovery to get stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
			err = fmt.Errorf("TUI panic: %v", r)
		}
	}()

	rt, err := loadRuntime(BuildOptions{})
	if err != nil {
		return err
	}
	defer rt.release()

	// Engine logs would corrupt the alternate screen.
	logger.SetOutput(io.Discard)
	defer logger.SetOutput(os.Stderr)

	app, err := tui.NewApp(tui.NewPorts(rt.Sync))
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	app.WithContext(cmd.Context())

	if err := startEngine(cmd.Context(), rt); err != nil {
		app.Close()
		return err
	}

	runScheduler(cmd.Context(), rt)

	runErr := app.Run()
	stopErr := stopEngine(rt)
	if runErr != nil {
		return fmt.Errorf("TUI error: %w", runErr)
	}
	return stopErr
}
