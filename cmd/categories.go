package cmd

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/sravya/xtrack/internal/cli"
)

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "Spending per category",
	RunE:  runCategories,
}

func init() {
	rootCmd.AddCommand(categoriesCmd)
}

func runCategories(cmd *cobra.Command, _ []string) error {
	dash, _, err := buildDashboard(cmd.Context())
	if err != nil {
		return err
	}
	if len(dash.Pie) == 0 {
		fmt.Println("\n  No spending matches the current filters.")
		return nil
	}

	total := dash.Metrics.TotalSpent
	peak := 0.0
	labelW := 0
	for _, s := range dash.Pie {
		peak = max(peak, s.Value.InexactFloat64())
		labelW = max(labelW, len(s.Name))
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("CATEGORIES  " + filterLabel()))
	fmt.Println()
	for _, s := range dash.Pie {
		suffix := fmt.Sprintf("%s  %s", money(s.Value), cli.FormatPercent(share(s.Value, total)))
		fmt.Println(cli.RenderHorizontalBar(s.Name, labelW, s.Value.InexactFloat64(), peak, 36, suffix))
	}
	fmt.Println()
	fmt.Printf("  %s across %d categories\n", cli.RenderMoney(money(total)), len(dash.Pie))
	return nil
}

// share returns part as a 0-100 percentage of whole.
func share(part, whole decimal.Decimal) float64 {
	if !whole.IsPositive() {
		return 0
	}
	return part.Div(whole).Mul(decimal.NewFromInt(100)).InexactFloat64()
}
