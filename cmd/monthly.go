package cmd

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/sravya/xtrack/internal/cli"
)

var monthlyCmd = &cobra.Command{
	Use:   "monthly",
	Short: "Spending per month, split by category",
	RunE:  runMonthly,
}

func init() {
	rootCmd.AddCommand(monthlyCmd)
}

func runMonthly(cmd *cobra.Command, _ []string) error {
	dash, _, err := buildDashboard(cmd.Context())
	if err != nil {
		return err
	}
	if len(dash.Stacked) == 0 {
		fmt.Println("\n  No dated expenses match the current filters.")
		return nil
	}

	cats := dash.Stacked[0].Categories
	headers := make([]string, 0, len(cats)+2)
	headers = append(headers, "Month")
	for _, c := range cats {
		headers = append(headers, string(c))
	}
	headers = append(headers, "Total")

	rows := make([][]string, 0, len(dash.Stacked))
	for _, r := range dash.Stacked {
		row := make([]string, 0, len(headers))
		row = append(row, string(r.Month))
		sum := decimal.Zero
		for _, c := range cats {
			v := r.Value(c)
			sum = sum.Add(v)
			if v.IsZero() {
				row = append(row, cli.RenderMuted("-"))
				continue
			}
			row = append(row, cli.FormatMoneyShort(appConfig.General.Currency, v))
		}
		row = append(row, money(sum))
		rows = append(rows, row)
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("MONTHLY  " + filterLabel()))
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: headers,
		Rows:    rows,
	}))
	return nil
}
