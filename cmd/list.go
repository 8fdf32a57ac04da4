package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/sravya/xtrack/internal/cli"
)

var flagListLimit int

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List the filtered expenses, newest first",
	RunE:    runList,
}

func init() {
	listCmd.Flags().IntVarP(&flagListLimit, "limit", "n", 0, "Show at most this many expenses (0 = all)")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, _ []string) error {
	dash, _, err := buildDashboard(cmd.Context())
	if err != nil {
		return err
	}
	if len(dash.Expenses) == 0 {
		fmt.Println("\n  No expenses match the current filters.")
		return nil
	}

	expenses := dash.Expenses
	sort.SliceStable(expenses, func(i, j int) bool {
		return expenses[i].Date.After(expenses[j].Date)
	})
	shown := expenses
	if flagListLimit > 0 && len(shown) > flagListLimit {
		shown = shown[:flagListLimit]
	}

	rows := make([][]string, 0, len(shown)+2)
	for _, e := range shown {
		rows = append(rows, []string{
			shortID(e.ID),
			cli.FormatDate(e.Date),
			cli.Truncate(e.Title, 32),
			string(e.Category),
			money(e.Amount),
		})
	}
	rows = append(rows, []string{"---"}, []string{"", "", "Total", "", money(dash.Metrics.TotalSpent)})

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("EXPENSES  %s", filterLabel())))
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Headers:  []string{"ID", "Date", "Title", "Category", "Amount"},
		Rows:     rows,
		LeftCols: 4,
	}))
	if len(shown) < len(expenses) {
		fmt.Printf("  %d more not shown\n", len(expenses)-len(shown))
	}
	return nil
}

// shortID returns the first block of a UUID, enough to pass back to
// edit and delete.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
