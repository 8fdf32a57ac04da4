package pipeline

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/sravya/xtrack/internal/model"
)

// EvaluateBudget returns an alert for every category whose total is
// strictly greater than its limit. Categories without spending never
// alert. Alerts follow the order of order, then any remaining limited
// categories by name. Evaluation holds no state, so repeated calls with the
// same input return the same alerts.
func EvaluateBudget(totals model.CategoryTotals, limits model.BudgetLimits, order model.Categories) []model.Alert {
	var alerts []model.Alert
	for _, c := range budgetOrder(limits, order) {
		limit := limits[c]
		total, ok := totals.Get(c)
		if !ok || !total.GreaterThan(limit) {
			continue
		}
		alerts = append(alerts, model.Alert{
			Category:   c,
			Limit:      limit,
			Total:      total,
			ExceededBy: total.Sub(limit).Round(2),
		})
	}
	return alerts
}

// BudgetUsage reports spend against limit for every limited category, in
// the same order as EvaluateBudget.
func BudgetUsage(totals model.CategoryTotals, limits model.BudgetLimits, order model.Categories) []model.BudgetUsage {
	cats := budgetOrder(limits, order)
	usage := make([]model.BudgetUsage, 0, len(cats))
	for _, c := range cats {
		limit := limits[c]
		spent := totals.Total(c)
		u := model.BudgetUsage{
			Category: c,
			Limit:    limit,
			Spent:    spent,
			Exceeded: spent.GreaterThan(limit),
		}
		if limit.IsPositive() {
			u.UsedPercent = spent.Div(limit).Mul(decimal.NewFromInt(100)).InexactFloat64()
		}
		usage = append(usage, u)
	}
	return usage
}

// budgetOrder lists the limited categories: those in order first, then the
// rest sorted by name.
func budgetOrder(limits model.BudgetLimits, order model.Categories) model.Categories {
	cats := make(model.Categories, 0, len(limits))
	for _, c := range order {
		if _, ok := limits[c]; ok {
			cats = append(cats, c)
		}
	}
	var rest model.Categories
	for c := range limits {
		if !order.Contains(c) {
			rest = append(rest, c)
		}
	}
	sort.Slice(rest, func(i, j int) bool { return rest[i] < rest[j] })
	return append(cats, rest...)
}

// ChangedAlerts returns the alerts in next that are new or whose overage
// differs from the same category's alert in prev. Callers use it to avoid
// re-notifying for an overage the user already saw.
func ChangedAlerts(prev, next []model.Alert) []model.Alert {
	seen := make(map[model.Category]decimal.Decimal, len(prev))
	for _, a := range prev {
		seen[a.Category] = a.ExceededBy
	}
	var changed []model.Alert
	for _, a := range next {
		if old, ok := seen[a.Category]; ok && old.Equal(a.ExceededBy) {
			continue
		}
		changed = append(changed, a)
	}
	return changed
}
