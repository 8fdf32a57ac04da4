package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/sravya/xtrack/internal/config"
	"github.com/sravya/xtrack/internal/model"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg := appConfig

	fmt.Printf("  Config file: %s\n", config.ConfigPath())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [General]")
	fmt.Printf("    Database:  %s\n", cfg.DBPath())
	fmt.Printf("    Currency:  %s\n", cfg.General.Currency)
	fmt.Printf("    Log level: %s (%s)\n", cfg.General.LogLevel, cfg.General.LogFormat)
	fmt.Println()

	fmt.Println("  [Categories]")
	for _, c := range cfg.CategoryList() {
		fmt.Printf("    %s\n", c)
	}
	fmt.Println()

	fmt.Println("  [Budget]")
	limits := cfg.BudgetLimits()
	if len(limits) == 0 {
		fmt.Println("    No limits set")
	}
	names := make([]string, 0, len(limits))
	for c := range limits {
		names = append(names, string(c))
	}
	sort.Strings(names)
	for _, n := range names {
		fmt.Printf("    %-14s %s\n", n, money(limits[model.Category(n)]))
	}
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  [Server]")
	fmt.Printf("    Address:  %s\n", cfg.Server.Addr)
	fmt.Printf("    Refresh:  every %ds\n", cfg.Server.RefreshIntervalSec)
	fmt.Println()

	fmt.Println("  Run `xtrack setup` to reconfigure.")
	return nil
}
