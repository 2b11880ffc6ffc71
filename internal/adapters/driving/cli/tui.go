package cli

import (
	"fmt"
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/kush-lhmm/sampann-search/internal/adapters/driving/tui"
)

// tuiCmd represents the tui command.
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive terminal UI",
	Long: `Launch the interactive terminal user interface.

Search the catalog, browse product details, ask the assistant and edit
settings with keyboard navigation.

Controls:
  ↑/k, ↓/j - Navigate products
  Enter    - Search / Details
  s        - Cycle sort order
  r        - Toggle re-ranker
  Esc      - Back
  Ctrl+C   - Quit`,
	RunE: runTUI,
}

// newProgram is swapped in tests to avoid taking over the terminal.
var newProgram = func(m tea.Model) interface{ Run() (tea.Model, error) } {
	return tea.NewProgram(m, tea.WithAltScreen())
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	// Add panic recovery to get stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	if err := loadServices(cmd); err != nil {
		return err
	}

	app, err := tui.NewApp(&tui.Ports{
		Search:    searchService,
		Assistant: assistantService,
		Catalog:   catalogService,
		Settings:  settingsService,
	})
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	app.WithContext(cmd.Context())

	if _, err := newProgram(app).Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
