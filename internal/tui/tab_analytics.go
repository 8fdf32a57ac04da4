package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/sravya/xtrack/internal/cli"
	"github.com/sravya/xtrack/internal/model"
	"github.com/sravya/xtrack/internal/tui/components"
	"github.com/sravya/xtrack/internal/tui/theme"
)

func (a App) renderAnalyticsTab(cw int) string {
	m := a.dash.Metrics

	top := components.Metric{Label: "Top Category", Value: m.Top.Name()}
	if m.Top.Found {
		top.Value = m.Top.Category.Label()
		top.Note = cli.FormatMoney(a.currency, m.Top.Total)
	}
	cards := components.MetricCardRow([]components.Metric{
		{Label: "Total Spent", Value: cli.FormatMoney(a.currency, m.TotalSpent)},
		{Label: "Transactions", Value: cli.FormatNumber(int64(m.TransactionCount))},
		top,
		{Label: "Average / Day", Value: cli.FormatMoney(a.currency, m.AveragePerDay)},
	}, cw)

	var b strings.Builder
	b.WriteString(cards)
	b.WriteString("\n")

	if a.isCompactLayout() {
		b.WriteString(a.renderCategoryShare(cw))
		b.WriteString("\n")
		b.WriteString(a.renderDailyChart(cw))
		return b.String()
	}

	widths := components.LayoutRow(cw, 2)
	b.WriteString(components.CardRow([]string{
		a.renderCategoryShare(widths[0]),
		a.renderDailyChart(widths[1]),
	}))
	return b.String()
}

// renderCategoryShare draws the pie series as horizontal bars.
func (a App) renderCategoryShare(cw int) string {
	t := theme.Active
	innerW := components.CardInnerWidth(cw)

	if len(a.dash.Pie) == 0 {
		return components.ContentCard("By Category", lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).Render("Nothing to show"), cw)
	}

	labelW := 0
	for _, s := range a.dash.Pie {
		labelW = max(labelW, lipgloss.Width(model.Category(s.Name).Label()))
	}
	amountW := 12
	pctW := 5
	barW := max(innerW-labelW-amountW-pctW-3, 5)

	total := a.dash.Metrics.TotalSpent.InexactFloat64()
	peak := 0.0
	for _, s := range a.dash.Pie {
		peak = max(peak, s.Value.InexactFloat64())
	}

	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)

	var body strings.Builder
	for i, s := range a.dash.Pie {
		c := model.Category(s.Name)
		v := s.Value.InexactFloat64()
		share := 0.0
		if total > 0 {
			share = v / total * 100
		}
		body.WriteString(mutedStyle.Render(padTo(c.Label(), labelW)))
		body.WriteString(mutedStyle.Render(" "))
		body.WriteString(components.HBar(v, peak, barW, categoryColor(a.categories, c)))
		body.WriteString(valueStyle.Render(fmt.Sprintf(" %*s", amountW, cli.FormatMoney(a.currency, s.Value))))
		body.WriteString(mutedStyle.Render(fmt.Sprintf(" %*s", pctW, cli.FormatPercent(share))))
		if i < len(a.dash.Pie)-1 {
			body.WriteString("\n")
		}
	}
	return components.ContentCard("By Category", body.String(), cw)
}

func (a App) renderDailyChart(cw int) string {
	t := theme.Active
	innerW := components.CardInnerWidth(cw)

	if len(a.daily) == 0 {
		return components.ContentCard("Daily Spending", lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).Render("No dated expenses"), cw)
	}

	values := make([]float64, len(a.daily))
	for i, d := range a.daily {
		values[i] = d.Total.InexactFloat64()
	}
	chart := components.BarChart(values, chartDateLabels(a.daily), t.Accent, innerW, 8)
	return components.ContentCard(fmt.Sprintf("Daily Spending [%d days]", len(a.daily)), chart, cw)
}

// chartDateLabels builds compact X-axis labels for an oldest-first series:
// the month name at the start and at each month boundary, otherwise the day.
func chartDateLabels(days []model.DailyTotal) []string {
	labels := make([]string, len(days))
	prev := time.Month(0)
	for i, d := range days {
		if i == 0 || d.Date.Month() != prev {
			labels[i] = d.Date.Format("Jan")
		} else {
			labels[i] = strconv.Itoa(d.Date.Day())
		}
		prev = d.Date.Month()
	}
	return labels
}
