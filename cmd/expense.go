package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/sravya/xtrack/internal/cli"
	"github.com/sravya/xtrack/internal/config"
	"github.com/sravya/xtrack/internal/model"
	"github.com/sravya/xtrack/internal/store"
)

var (
	flagExpenseDate   string
	flagExpenseTitle  string
	flagExpenseAmount string
	flagDeleteYes     bool
)

var addCmd = &cobra.Command{
	Use:   "add <title> <amount>",
	Short: "Record an expense",
	Example: `  xtrack add "Coffee" 3.50 -c Food
  xtrack add "Train ticket" 42 -c Travel --date 2024-03-01`,
	Args: cobra.ExactArgs(2),
	RunE: runAdd,
}

var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Change fields of a recorded expense",
	Long:  "Change fields of a recorded expense. The id may be any unique prefix, as shown by `xtrack list`.",
	Args:  cobra.ExactArgs(1),
	RunE:  runEdit,
}

var deleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete a recorded expense",
	Args:    cobra.ExactArgs(1),
	RunE:    runDelete,
}

func init() {
	addCmd.Flags().StringVar(&flagExpenseDate, "date", "", "Expense date YYYY-MM-DD (default today)")

	editCmd.Flags().StringVar(&flagExpenseTitle, "title", "", "New title")
	editCmd.Flags().StringVar(&flagExpenseAmount, "amount", "", "New amount")
	editCmd.Flags().StringVar(&flagExpenseDate, "date", "", "New date YYYY-MM-DD")

	deleteCmd.Flags().BoolVarP(&flagDeleteYes, "yes", "y", false, "Do not print the deleted expense")

	rootCmd.AddCommand(addCmd, editCmd, deleteCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	amount, err := parseAmount(args[1])
	if err != nil {
		return err
	}
	cat, err := expenseCategory()
	if err != nil {
		return err
	}
	date := model.DateOf(time.Now())
	if flagExpenseDate != "" {
		if date, err = parseDateFlag("date", flagExpenseDate); err != nil {
			return err
		}
	}

	d := model.Draft{Title: strings.TrimSpace(args[0]), Amount: amount, Date: date, Category: cat}
	if err := d.Validate(); err != nil {
		return err
	}

	db, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	e, err := db.Create(cmd.Context(), d)
	if err != nil {
		return fmt.Errorf("saving expense: %w", err)
	}
	fmt.Printf("  Added %s  %s  %s  %s  (%s)\n",
		e.Title, money(e.Amount), e.Category, cli.FormatDate(e.Date), shortID(e.ID))
	return nil
}

func runEdit(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	db, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	e, err := findExpense(ctx, db, args[0])
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	changed := false
	if flags.Changed("title") {
		e.Title = strings.TrimSpace(flagExpenseTitle)
		changed = true
	}
	if flags.Changed("amount") {
		if e.Amount, err = parseAmount(flagExpenseAmount); err != nil {
			return err
		}
		changed = true
	}
	if flags.Changed("date") {
		if e.Date, err = parseDateFlag("date", flagExpenseDate); err != nil {
			return err
		}
		changed = true
	}
	if len(flagCategories) > 0 {
		if e.Category, err = expenseCategory(); err != nil {
			return err
		}
		changed = true
	}
	if !changed {
		return errors.New("nothing to change: pass --title, --amount, --date or --category")
	}

	updated, err := db.Update(ctx, e)
	if err != nil {
		return fmt.Errorf("updating expense: %w", err)
	}
	fmt.Printf("  Updated %s  %s  %s  %s\n",
		updated.Title, money(updated.Amount), updated.Category, cli.FormatDate(updated.Date))
	return nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	db, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	e, err := findExpense(ctx, db, args[0])
	if err != nil {
		return err
	}
	if err := db.Delete(ctx, e.ID); err != nil {
		return fmt.Errorf("deleting expense: %w", err)
	}
	if !flagDeleteYes {
		fmt.Printf("  Deleted %s  %s  %s\n", e.Title, money(e.Amount), cli.FormatDate(e.Date))
	}
	return nil
}

// findExpense resolves a full id or a unique id prefix.
func findExpense(ctx context.Context, repo store.Repository, id string) (model.Expense, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return model.Expense{}, errors.New("empty id")
	}
	e, err := repo.Get(ctx, id)
	if err == nil {
		return e, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return model.Expense{}, err
	}

	all, err := repo.List(ctx)
	if err != nil {
		return model.Expense{}, err
	}
	var matches []model.Expense
	for _, e := range all {
		if strings.HasPrefix(e.ID, id) {
			matches = append(matches, e)
		}
	}
	switch len(matches) {
	case 0:
		return model.Expense{}, fmt.Errorf("%w: %s", store.ErrNotFound, id)
	case 1:
		return matches[0], nil
	}
	return model.Expense{}, fmt.Errorf("id prefix %q matches %d expenses", id, len(matches))
}

// expenseCategory resolves the single --category given to add or edit.
// Unknown names fail with the closest configured category as a hint.
func expenseCategory() (model.Category, error) {
	switch len(flagCategories) {
	case 0:
		return "", errors.New("--category is required")
	case 1:
		return config.ResolveCategory(appConfig.CategoryList(), flagCategories[0])
	}
	return "", errors.New("an expense has exactly one --category")
}

func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), appConfig.General.Currency))
	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", ""))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q", s)
	}
	if d.IsNegative() {
		return decimal.Zero, model.ErrNegativeAmount
	}
	return d.Round(2), nil
}
