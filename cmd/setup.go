package cmd

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/sravya/xtrack/internal/config"
	"github.com/sravya/xtrack/internal/model"
	"github.com/sravya/xtrack/internal/tui/theme"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "First-time setup wizard",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(_ *cobra.Command, _ []string) error {
	// Start from the file, not appConfig, so env and flag overrides
	// are not written back.
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	currency := cfg.General.Currency
	dbPath := cfg.General.DBPath
	themeName := cfg.Appearance.Theme
	cats := cfg.CategoryList().Strings()

	catOptions := make([]huh.Option[string], 0, len(model.DefaultCategories)+len(cats))
	seen := make(map[string]bool)
	for _, c := range append(model.DefaultCategories.Strings(), cats...) {
		if seen[c] {
			continue
		}
		seen[c] = true
		catOptions = append(catOptions, huh.NewOption(c, c).Selected(slices.Contains(cats, c)))
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to xtrack").
				Description(fmt.Sprintf("Settings are saved to %s", config.ConfigPath())),
			huh.NewInput().
				Title("Currency symbol").
				Value(&currency).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("currency symbol is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("Expense database").
				Placeholder(appConfig.DBPath()).
				Description("Leave empty for the default location.").
				Value(&dbPath),
		),
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("Categories").
				Options(catOptions...).
				Value(&cats).
				Validate(func(v []string) error {
					if len(v) == 0 {
						return errors.New("pick at least one category")
					}
					return nil
				}),
			huh.NewSelect[string]().
				Title("Color theme").
				Options(huh.NewOptions(theme.Names()...)...).
				Value(&themeName),
		),
	)
	if err := form.Run(); err != nil {
		return err
	}

	cfg.General.Currency = strings.TrimSpace(currency)
	cfg.General.DBPath = strings.TrimSpace(dbPath)
	cfg.Appearance.Theme = themeName
	cfg.Categories = cats

	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Println()
	fmt.Printf("  Saved to %s\n", config.ConfigPath())
	fmt.Println("  Run `xtrack setup` anytime to reconfigure.")
	fmt.Println()
	return nil
}
