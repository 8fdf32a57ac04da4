package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sravya/xtrack/internal/cli"
	"github.com/sravya/xtrack/internal/config"
)

var budgetCmd = &cobra.Command{
	Use:   "budget",
	Short: "Spending against per-category limits",
	RunE:  runBudget,
}

var budgetSetCmd = &cobra.Command{
	Use:   "set <category> <limit>",
	Short: "Set the spending limit for a category",
	Args:  cobra.ExactArgs(2),
	RunE:  runBudgetSet,
}

var budgetClearCmd = &cobra.Command{
	Use:   "clear <category>",
	Short: "Remove the spending limit for a category",
	Args:  cobra.ExactArgs(1),
	RunE:  runBudgetClear,
}

func init() {
	budgetCmd.AddCommand(budgetSetCmd, budgetClearCmd)
	rootCmd.AddCommand(budgetCmd)
}

func runBudget(cmd *cobra.Command, _ []string) error {
	dash, _, err := buildDashboard(cmd.Context())
	if err != nil {
		return err
	}
	if len(dash.Budget) == 0 {
		fmt.Println("\n  No budget limits set.")
		fmt.Println("  Set one with `xtrack budget set <category> <limit>`.")
		return nil
	}

	labelW := 0
	for _, u := range dash.Budget {
		labelW = max(labelW, len(u.Category))
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("BUDGET  " + filterLabel()))
	fmt.Println()
	for _, u := range dash.Budget {
		fmt.Printf("  %-*s %s  %s / %s\n", labelW, u.Category,
			cli.RenderBudgetBar(u.UsedPercent, 30), money(u.Spent), money(u.Limit))
	}

	if len(dash.Alerts) == 0 {
		fmt.Println()
		fmt.Println("  " + cli.RenderMuted("Every category is within its limit."))
		return nil
	}
	fmt.Println()
	for _, a := range dash.Alerts {
		fmt.Println("  " + cli.RenderWarning(fmt.Sprintf("%s: spent %s of %s, over by %s",
			a.Category, money(a.Total), money(a.Limit), money(a.ExceededBy))))
	}
	return nil
}

func runBudgetSet(_ *cobra.Command, args []string) error {
	cat, err := config.ResolveCategory(appConfig.CategoryList(), args[0])
	if err != nil {
		return err
	}
	limit, err := parseAmount(args[1])
	if err != nil {
		return fmt.Errorf("invalid limit %q: %w", args[1], err)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.SetLimit(cat, limit); err != nil {
		return err
	}
	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	fmt.Printf("  %s limit set to %s\n", cat, money(cfg.BudgetLimits()[cat]))
	return nil
}

func runBudgetClear(_ *cobra.Command, args []string) error {
	cat, err := config.ResolveCategory(appConfig.CategoryList(), args[0])
	if err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if !cfg.ClearLimit(cat) {
		fmt.Printf("  %s has no limit\n", cat)
		return nil
	}
	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	fmt.Printf("  Removed the %s limit\n", cat)
	return nil
}
