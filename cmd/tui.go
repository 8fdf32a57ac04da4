package cmd

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/sravya/xtrack/internal/model"
	"github.com/sravya/xtrack/internal/tui"
	"github.com/sravya/xtrack/internal/tui/theme"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive expense dashboard",
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(_ *cobra.Command, _ []string) error {
	c, err := filterCriteria()
	if err != nil {
		return err
	}
	if len(flagCategories) > 1 {
		return errors.New("the dashboard starts with one --category or all of them")
	}
	f := tui.Filters{From: c.From, To: c.To, Search: flagSearch}
	if len(flagCategories) == 1 {
		names := resolveFilterNames(appConfig.CategoryList(), flagCategories)
		f.Category = model.Category(names[0])
	}

	db, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	theme.SetActive(appConfig.Appearance.Theme)

	// Force TrueColor so background fills render even when lipgloss
	// cannot detect the terminal.
	lipgloss.SetColorProfile(termenv.TrueColor)

	app := tui.NewApp(db, appConfig, f)
	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
