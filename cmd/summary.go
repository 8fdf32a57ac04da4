package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sravya/xtrack/internal/cli"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Headline spending metrics for the filtered expenses",
	RunE:  runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(cmd *cobra.Command, _ []string) error {
	dash, stored, err := buildDashboard(cmd.Context())
	if err != nil {
		return err
	}

	if stored == 0 {
		fmt.Println("\n  No expenses recorded yet.")
		fmt.Println("  Add one with `xtrack add` or load a file with `xtrack import`.")
		return nil
	}
	if len(dash.Expenses) == 0 {
		fmt.Println("\n  No expenses match the current filters.")
		return nil
	}

	m := dash.Metrics
	fmt.Println()
	fmt.Println(cli.RenderTitle("SPENDING  " + filterLabel()))
	fmt.Println()

	top := m.Top.Name()
	if m.Top.Found {
		top = fmt.Sprintf("%s (%s)", top, money(m.Top.Total))
	}

	rows := [][]string{
		{"Total Spent", money(m.TotalSpent)},
		{"Transactions", cli.FormatNumber(int64(m.TransactionCount))},
		{"Top Category", top},
		{"Avg / Day", money(m.AveragePerDay)},
		{"---"},
	}
	for _, c := range dash.Totals.Categories() {
		rows = append(rows, []string{string(c), money(dash.Totals.Total(c))})
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Metric", "Value"},
		Rows:    rows,
	}))

	for _, a := range dash.Alerts {
		fmt.Println("  " + cli.RenderWarning(fmt.Sprintf("%s is over budget by %s", a.Category, money(a.ExceededBy))))
	}
	return nil
}
