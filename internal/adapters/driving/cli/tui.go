package cli

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/alexandria/internal/adapters/driving/tui"
)

var tuiLimit int

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Browse indexed documentation interactively",
	Long: `Launch the interactive terminal UI for searching indexed API specs and
docs, browsing sources and reading endpoints.

Queries accept filters:
  api:<name>           restrict results to one API
  type:<kind>[,kind]   restrict results to chunk kinds

Controls:
  ↑/k, ↓/j  Navigate
  Enter     Search / Open
  /         New search
  Tab       Sources
  Esc       Back
  ?         Help
  q         Quit`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func init() {
	tuiCmd.Flags().IntVarP(&tuiLimit, "limit", "n", 0, "results per query (0 = configured default)")
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	app, err := tui.NewApp(&tui.Ports{
		Search: searchService,
		Source: sourceService,
	})
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}

	app.WithContext(cmd.Context()).WithSearchLimit(tuiLimit)

	if err := app.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
