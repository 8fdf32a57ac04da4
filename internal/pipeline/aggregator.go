// Package pipeline turns expense snapshots into filtered views, aggregates,
// chart series and budget alerts, and loads expenses from import files.
package pipeline

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/sravya/xtrack/internal/model"
)

// Aggregates bundles every derived figure for one record set so views can
// reshape them without summing again.
type Aggregates struct {
	ByCategory    model.CategoryTotals
	ByMonth       model.MonthlyTotals
	TotalSpent    decimal.Decimal
	Count         int
	Top           model.TopCategory
	AveragePerDay decimal.Decimal
}

// Aggregate computes all aggregates for expenses in one pass.
func Aggregate(expenses []model.Expense) Aggregates {
	var agg Aggregates
	var earliest, latest time.Time

	agg.TotalSpent = decimal.Zero
	for _, e := range expenses {
		amount := amountOf(e)
		agg.Count++
		agg.TotalSpent = agg.TotalSpent.Add(amount)
		agg.ByCategory.Add(e.Category, amount)

		if e.Date.IsZero() {
			continue
		}
		agg.ByMonth.Add(model.MonthKeyOf(e.Date), e.Category, amount)
		if earliest.IsZero() || e.Date.Before(earliest) {
			earliest = e.Date
		}
		if latest.IsZero() || e.Date.After(latest) {
			latest = e.Date
		}
	}

	agg.Top = topOf(agg.ByCategory)
	agg.AveragePerDay = averageOver(agg.TotalSpent, earliest, latest)
	return agg
}

// AggregateByCategory sums amounts per category, keyed in order of first
// appearance.
func AggregateByCategory(expenses []model.Expense) model.CategoryTotals {
	var totals model.CategoryTotals
	for _, e := range expenses {
		totals.Add(e.Category, amountOf(e))
	}
	return totals
}

// AggregateByCategoryPerMonth sums amounts per month and category. Months
// appear in the order they are first seen in the input. Undated expenses
// are skipped.
func AggregateByCategoryPerMonth(expenses []model.Expense) model.MonthlyTotals {
	var monthly model.MonthlyTotals
	for _, e := range expenses {
		if e.Date.IsZero() {
			continue
		}
		monthly.Add(model.MonthKeyOf(e.Date), e.Category, amountOf(e))
	}
	return monthly
}

// TotalSpent sums every amount.
func TotalSpent(expenses []model.Expense) decimal.Decimal {
	total := decimal.Zero
	for _, e := range expenses {
		total = total.Add(amountOf(e))
	}
	return total
}

// TransactionCount returns the number of expenses.
func TransactionCount(expenses []model.Expense) int {
	return len(expenses)
}

// TopCategory returns the category with the largest total. On a tie the
// category seen first wins. Returns model.NoTopCategory for no expenses.
func TopCategory(expenses []model.Expense) model.TopCategory {
	return topOf(AggregateByCategory(expenses))
}

// AveragePerDay divides the total by the number of calendar days between
// the earliest and latest expense, inclusive, rounded to cents. Returns
// zero when no expense carries a date.
func AveragePerDay(expenses []model.Expense) decimal.Decimal {
	var earliest, latest time.Time
	for _, e := range expenses {
		if e.Date.IsZero() {
			continue
		}
		if earliest.IsZero() || e.Date.Before(earliest) {
			earliest = e.Date
		}
		if latest.IsZero() || e.Date.After(latest) {
			latest = e.Date
		}
	}
	return averageOver(TotalSpent(expenses), earliest, latest)
}

// AggregateDays sums amounts per calendar day, oldest first. Days between
// the first and last expense with no spending are included as zeros so
// charts show gaps.
func AggregateDays(expenses []model.Expense) []model.DailyTotal {
	dayMap := make(map[time.Time]*model.DailyTotal)
	var first, last time.Time

	for _, e := range expenses {
		if e.Date.IsZero() {
			continue
		}
		day := model.DateOf(e.Date)
		dt, ok := dayMap[day]
		if !ok {
			dt = &model.DailyTotal{Date: day, Total: decimal.Zero}
			dayMap[day] = dt
		}
		dt.Total = dt.Total.Add(amountOf(e))
		dt.Count++

		if first.IsZero() || day.Before(first) {
			first = day
		}
		if last.IsZero() || day.After(last) {
			last = day
		}
	}
	if first.IsZero() {
		return nil
	}

	days := make([]model.DailyTotal, 0, model.DaysBetween(first, last)+1)
	for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
		if dt, ok := dayMap[day]; ok {
			days = append(days, *dt)
			continue
		}
		days = append(days, model.DailyTotal{Date: day, Total: decimal.Zero})
	}
	return days
}

func topOf(totals model.CategoryTotals) model.TopCategory {
	top := model.NoTopCategory
	for _, c := range totals.Categories() {
		sum := totals.Total(c)
		if !top.Found || sum.GreaterThan(top.Total) {
			top = model.TopCategory{Category: c, Total: sum, Found: true}
		}
	}
	return top
}

func averageOver(total decimal.Decimal, earliest, latest time.Time) decimal.Decimal {
	if earliest.IsZero() {
		return decimal.Zero
	}
	days := model.DaysBetween(earliest, latest) + 1
	return total.Div(decimal.NewFromInt(int64(days))).Round(2)
}

// amountOf returns the amount an expense contributes to sums. Negative
// amounts are malformed and contribute nothing.
func amountOf(e model.Expense) decimal.Decimal {
	if e.Amount.IsNegative() {
		return decimal.Zero
	}
	return e.Amount
}
