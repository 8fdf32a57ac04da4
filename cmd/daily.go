package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sravya/xtrack/internal/cli"
	"github.com/sravya/xtrack/internal/pipeline"
)

var dailyCmd = &cobra.Command{
	Use:   "daily",
	Short: "Spending per day",
	RunE:  runDaily,
}

func init() {
	rootCmd.AddCommand(dailyCmd)
}

func runDaily(cmd *cobra.Command, _ []string) error {
	dash, _, err := buildDashboard(cmd.Context())
	if err != nil {
		return err
	}
	days := pipeline.AggregateDays(dash.Expenses)
	if len(days) == 0 {
		fmt.Println("\n  No dated expenses match the current filters.")
		return nil
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("DAILY  " + filterLabel()))
	fmt.Println()

	values := make([]float64, 0, len(days))
	rows := make([][]string, 0, len(days))
	for _, d := range days {
		values = append(values, d.Total.InexactFloat64())
		if d.Count == 0 {
			continue
		}
		rows = append(rows, []string{
			d.Date.Format("2006-01-02"),
			d.Date.Format("Mon"),
			cli.FormatNumber(int64(d.Count)),
			money(d.Total),
		})
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers:  []string{"Date", "Day", "Expenses", "Spent"},
		Rows:     rows,
		LeftCols: 2,
	}))
	fmt.Printf("\n  %s  %s/day over %d days\n",
		cli.RenderSparkline(values), money(dash.Metrics.AveragePerDay), len(days))
	return nil
}
