package tui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sravya/xtrack/internal/model"
	"github.com/sravya/xtrack/internal/pipeline"
	"github.com/sravya/xtrack/internal/selection"
)

// period is a preset date range cycled with the p key.
type period int

const (
	periodAll period = iota
	periodThisMonth
	periodLast30
	periodThisYear
	periodCustom // from command line flags; skipped when cycling
)

var periodNames = map[period]string{
	periodAll:       "All time",
	periodThisMonth: "This month",
	periodLast30:    "Last 30 days",
	periodThisYear:  "This year",
}

// bounds returns the date range of p relative to now. periodAll and
// periodCustom return zero times.
func (p period) bounds(now time.Time) (from, to time.Time) {
	today := model.DateOf(now)
	switch p {
	case periodThisMonth:
		return time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC), today
	case periodLast30:
		return today.AddDate(0, 0, -29), today
	case periodThisYear:
		return time.Date(today.Year(), time.January, 1, 0, 0, 0, 0, time.UTC), today
	}
	return time.Time{}, time.Time{}
}

func (p period) next() period {
	if p >= periodThisYear {
		return periodAll
	}
	return p + 1
}

// criteria builds the filter criteria from the current UI state.
func (a App) criteria() pipeline.Criteria {
	c := a.sel.Criteria()
	c.From, c.To, c.TitleQuery = a.from, a.to, a.query
	return c
}

// recompute rebuilds every view from the loaded snapshot. Budget alerts
// that are new or changed since the previous evaluation are announced in
// the status line.
func (a *App) recompute() {
	a.dash = pipeline.BuildDashboard(a.expenses, a.criteria(), a.limits, a.categories)
	a.daily = pipeline.AggregateDays(a.dash.Expenses)

	if changed := pipeline.ChangedAlerts(a.alerts, a.dash.Alerts); len(changed) > 0 {
		a.status = alertStatus(a.currency, changed)
	}
	a.alerts = a.dash.Alerts

	a.rows = make([]model.Expense, len(a.dash.Expenses))
	copy(a.rows, a.dash.Expenses)
	sort.SliceStable(a.rows, func(i, j int) bool {
		return a.rows[i].Date.After(a.rows[j].Date)
	})

	if a.list.cursor >= len(a.rows) {
		a.list.cursor = len(a.rows) - 1
	}
	if a.list.cursor < 0 {
		a.list.cursor = 0
	}
}

func (a *App) cyclePeriod() {
	a.period = a.period.next()
	a.from, a.to = a.period.bounds(time.Now())
	a.list.cursor = 0
	a.recompute()
}

// toggleCategory applies a click on the i-th configured category.
func (a *App) toggleCategory(i int) {
	if i < 0 || i >= len(a.categories) {
		return
	}
	a.sel = a.sel.Toggle(a.categories[i])
	a.list.cursor = 0
	a.recompute()
}

func (a *App) toggleAllCategories() {
	a.sel = a.sel.ToggleAll()
	a.list.cursor = 0
	a.recompute()
}

// filterSummary describes the active filters for the header pill.
func (a App) filterSummary() []string {
	var parts []string
	switch a.sel.Mode() {
	case selection.All:
		parts = append(parts, "All categories")
	case selection.One:
		c, _ := a.sel.Selected()
		parts = append(parts, c.Label())
	default:
		parts = append(parts, "No categories")
	}

	if a.period == periodCustom {
		parts = append(parts, rangeLabel(a.from, a.to))
	} else {
		parts = append(parts, periodNames[a.period])
	}

	if q := strings.TrimSpace(a.query); q != "" {
		parts = append(parts, fmt.Sprintf("%q", q))
	}
	return parts
}

func rangeLabel(from, to time.Time) string {
	switch {
	case from.IsZero() && to.IsZero():
		return periodNames[periodAll]
	case from.IsZero():
		return "until " + to.Format(model.DateLayout)
	case to.IsZero():
		return "since " + from.Format(model.DateLayout)
	}
	return from.Format(model.DateLayout) + " → " + to.Format(model.DateLayout)
}
