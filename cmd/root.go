// Package cmd implements the xtrack CLI commands.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/sravya/xtrack/internal/cli"
	"github.com/sravya/xtrack/internal/config"
	"github.com/sravya/xtrack/internal/logging"
	"github.com/sravya/xtrack/internal/model"
	"github.com/sravya/xtrack/internal/pipeline"
	"github.com/sravya/xtrack/internal/selection"
	"github.com/sravya/xtrack/internal/store"
)

var (
	flagDB         string
	flagCategories []string
	flagFrom       string
	flagTo         string
	flagSearch     string
	flagQuiet      bool
	flagLogLevel   string
)

// appConfig is the effective configuration: file, then environment, then flags.
var appConfig = config.DefaultConfig()

var rootCmd = &cobra.Command{
	Use:               "xtrack",
	Short:             "Personal expense tracker",
	Long:              "Record expenses, filter them, and see where the money goes: category totals, monthly trends and budget alerts.",
	SilenceUsage:      true,
	PersistentPreRunE: loadAppConfig,
	RunE:              runSummary,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagDB, "db", "", "Expense database path (default $XDG_DATA_HOME/xtrack/expenses.db)")
	pf.StringSliceVarP(&flagCategories, "category", "c", nil, "Only include these categories (repeatable)")
	pf.StringVar(&flagFrom, "from", "", "Only include expenses on or after this date (YYYY-MM-DD)")
	pf.StringVar(&flagTo, "to", "", "Only include expenses on or before this date (YYYY-MM-DD)")
	pf.StringVarP(&flagSearch, "search", "s", "", "Only include expenses whose title contains this text")
	pf.BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
	pf.StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")
}

func loadAppConfig(_ *cobra.Command, _ []string) error {
	config.LoadDotEnv()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := config.ApplyEnv(&cfg); err != nil {
		return err
	}
	if flagDB != "" {
		cfg.General.DBPath = flagDB
	}
	if flagLogLevel != "" {
		cfg.General.LogLevel = flagLogLevel
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration in %s: %w", config.ConfigPath(), err)
	}
	if _, err := logging.Setup(cfg.General.LogLevel, cfg.General.LogFormat, os.Stderr); err != nil {
		return err
	}

	appConfig = cfg
	return nil
}

func openStore() (*store.SQLite, error) {
	return store.Open(appConfig.DBPath())
}

// loadExpenses reads the full snapshot from the store.
func loadExpenses(ctx context.Context) ([]model.Expense, error) {
	db, err := openStore()
	if err != nil {
		return nil, err
	}
	defer func() { _ = db.Close() }()

	return db.List(ctx)
}

// filterCriteria builds the criteria from the shared filter flags.
func filterCriteria() (pipeline.Criteria, error) {
	var c pipeline.Criteria
	var err error
	if c.From, err = parseDateFlag("from", flagFrom); err != nil {
		return c, err
	}
	if c.To, err = parseDateFlag("to", flagTo); err != nil {
		return c, err
	}
	if !c.From.IsZero() && !c.To.IsZero() && c.To.Before(c.From) {
		return c, errors.New("--to is before --from")
	}

	cats := appConfig.CategoryList()
	picked := selection.CriteriaFromNames(cats, resolveFilterNames(cats, flagCategories))
	c.AnyCategory, c.Categories = picked.AnyCategory, picked.Categories
	c.TitleQuery = flagSearch
	return c, nil
}

// resolveFilterNames maps filter names onto configured categories ignoring
// case. Names that match nothing are kept as given, so imported categories
// outside the configured list can still be selected.
func resolveFilterNames(cats model.Categories, names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if c, err := config.ResolveCategory(cats, n); err == nil {
			out = append(out, string(c))
			continue
		}
		out = append(out, strings.TrimSpace(n))
	}
	return out
}

// buildDashboard loads the snapshot and runs the full view pipeline over it
// with the filter flags applied.
func buildDashboard(ctx context.Context) (pipeline.Dashboard, int, error) {
	c, err := filterCriteria()
	if err != nil {
		return pipeline.Dashboard{}, 0, err
	}
	expenses, err := loadExpenses(ctx)
	if err != nil {
		return pipeline.Dashboard{}, 0, err
	}
	cats := appConfig.CategoryList()
	return pipeline.BuildDashboard(expenses, c, appConfig.BudgetLimits(), cats), len(expenses), nil
}

func parseDateFlag(name, value string) (t time.Time, err error) {
	if value == "" {
		return t, nil
	}
	t, err = model.ParseDate(value)
	if err != nil {
		return t, fmt.Errorf("invalid --%s %q: expected YYYY-MM-DD", name, value)
	}
	return t, nil
}

// filterLabel describes the active filter flags for command titles.
func filterLabel() string {
	var parts []string
	if len(flagCategories) > 0 {
		parts = append(parts, strings.Join(flagCategories, ", "))
	}
	switch {
	case flagFrom != "" && flagTo != "":
		parts = append(parts, flagFrom+" to "+flagTo)
	case flagFrom != "":
		parts = append(parts, "since "+flagFrom)
	case flagTo != "":
		parts = append(parts, "until "+flagTo)
	}
	if flagSearch != "" {
		parts = append(parts, fmt.Sprintf("%q", flagSearch))
	}
	if len(parts) == 0 {
		return "All expenses"
	}
	return strings.Join(parts, " · ")
}

func money(d decimal.Decimal) string {
	return cli.FormatMoney(appConfig.General.Currency, d)
}
