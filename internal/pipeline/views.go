package pipeline

import (
	"github.com/shopspring/decimal"

	"github.com/sravya/xtrack/internal/model"
)

// Dashboard is every view of one filtered snapshot.
type Dashboard struct {
	Expenses []model.Expense      `json:"expenses"`
	Totals   model.CategoryTotals `json:"category_totals"`
	Pie      []model.PieSlice     `json:"pie"`
	Stacked  []model.StackedRow   `json:"stacked"`
	Metrics  model.Metrics        `json:"metrics"`
	Alerts   []model.Alert        `json:"alerts"`
	Budget   []model.BudgetUsage  `json:"budget"`
}

// BuildDashboard filters the snapshot, aggregates the result and assembles
// every view from the same aggregates.
func BuildDashboard(snapshot []model.Expense, c Criteria, limits model.BudgetLimits, categories model.Categories) Dashboard {
	filtered := Filter(snapshot, c)
	agg := Aggregate(filtered)
	return Dashboard{
		Expenses: filtered,
		Totals:   agg.ByCategory,
		Pie:      PieSeries(agg),
		Stacked:  StackedSeries(agg),
		Metrics:  MetricsOf(agg),
		Alerts:   EvaluateBudget(agg.ByCategory, limits, categories),
		Budget:   BudgetUsage(agg.ByCategory, limits, categories),
	}
}

// PieSeries lists every category with a non-zero total, in first-seen order.
func PieSeries(agg Aggregates) []model.PieSlice {
	slices := make([]model.PieSlice, 0, agg.ByCategory.Len())
	for _, c := range agg.ByCategory.Categories() {
		v := agg.ByCategory.Total(c)
		if v.IsZero() {
			continue
		}
		slices = append(slices, model.PieSlice{Name: string(c), Value: v})
	}
	return slices
}

// StackedSeries returns one row per month. Each row carries every category
// seen anywhere in the input, zero-filled where the month had no spending.
func StackedSeries(agg Aggregates) []model.StackedRow {
	cats := agg.ByCategory.Categories()
	months := agg.ByMonth.Months()

	rows := make([]model.StackedRow, 0, len(months))
	for _, m := range months {
		totals, _ := agg.ByMonth.Month(m)
		values := make(map[model.Category]decimal.Decimal, len(cats))
		for _, c := range cats {
			values[c] = totals.Total(c)
		}
		rows = append(rows, model.StackedRow{Month: m, Categories: cats, Values: values})
	}
	return rows
}

// MetricsOf extracts the headline numbers.
func MetricsOf(agg Aggregates) model.Metrics {
	return model.Metrics{
		TotalSpent:       agg.TotalSpent,
		TransactionCount: agg.Count,
		Top:              agg.Top,
		AveragePerDay:    agg.AveragePerDay,
	}
}
