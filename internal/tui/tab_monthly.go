package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/sravya/xtrack/internal/cli"
	"github.com/sravya/xtrack/internal/model"
	"github.com/sravya/xtrack/internal/tui/components"
	"github.com/sravya/xtrack/internal/tui/theme"
)

// renderMonthlyTab draws the stacked series: one bar per month split by
// category, with a legend and the month total.
func (a App) renderMonthlyTab(cw int) string {
	t := theme.Active
	innerW := components.CardInnerWidth(cw)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	if len(a.dash.Stacked) == 0 {
		return components.ContentCard("Monthly", mutedStyle.Render("No dated expenses"), cw)
	}

	cats := a.dash.Stacked[0].Categories
	colors := make([]lipgloss.Color, len(cats))
	for i, c := range cats {
		colors[i] = categoryColor(a.categories, c)
	}

	totals := make([]decimal.Decimal, len(a.dash.Stacked))
	peak := 0.0
	for i, row := range a.dash.Stacked {
		for _, c := range cats {
			totals[i] = totals[i].Add(row.Value(c))
		}
		peak = max(peak, totals[i].InexactFloat64())
	}

	monthW := len("Jan 2006")
	amountW := 14
	barW := max(innerW-monthW-amountW-2, 10)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)

	var body strings.Builder
	body.WriteString(renderLegend(cats, colors, innerW))
	body.WriteString("\n\n")
	for i, row := range a.dash.Stacked {
		segments := make([]float64, len(cats))
		for j, c := range cats {
			segments[j] = row.Value(c).InexactFloat64()
		}
		body.WriteString(mutedStyle.Render(fmt.Sprintf("%-*s ", monthW, row.Month)))
		body.WriteString(components.StackedBar(segments, colors, peak, barW))
		body.WriteString(valueStyle.Render(fmt.Sprintf(" %*s", amountW, cli.FormatMoney(a.currency, totals[i]))))
		body.WriteString("\n")
	}

	body.WriteString("\n")
	body.WriteString(a.renderMonthlyTable(cats, innerW))
	return components.ContentCard("Monthly by Category", body.String(), cw)
}

// renderMonthlyTable lists the exact per-category amounts for each month.
func (a App) renderMonthlyTable(cats model.Categories, innerW int) string {
	t := theme.Active
	headerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	monthW := len("Jan 2006")
	colW := 12
	fit := max((innerW-monthW)/(colW+1), 1)
	shown := cats
	if len(shown) > fit {
		shown = shown[:fit]
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("%-*s", monthW, "Month")))
	for _, c := range shown {
		b.WriteString(headerStyle.Render(fmt.Sprintf(" %*s", colW, cli.Truncate(string(c), colW))))
	}
	b.WriteString("\n")
	for _, row := range a.dash.Stacked {
		b.WriteString(mutedStyle.Render(fmt.Sprintf("%-*s", monthW, row.Month)))
		for _, c := range shown {
			b.WriteString(rowStyle.Render(fmt.Sprintf(" %*s", colW, cli.FormatMoneyShort(a.currency, row.Value(c)))))
		}
		b.WriteString("\n")
	}
	if len(shown) < len(cats) {
		b.WriteString(mutedStyle.Render(fmt.Sprintf("+%d more categories; widen the terminal to see them", len(cats)-len(shown))))
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderLegend(cats model.Categories, colors []lipgloss.Color, width int) string {
	t := theme.Active
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	var lines []string
	line, lineW := "", 0
	for i, c := range cats {
		item := lipgloss.NewStyle().Foreground(colors[i]).Background(t.Surface).Render("■") +
			mutedStyle.Render(" "+c.Label()+"  ")
		w := lipgloss.Width(item)
		if lineW > 0 && lineW+w > width {
			lines = append(lines, line)
			line, lineW = "", 0
		}
		line += item
		lineW += w
	}
	return strings.Join(append(lines, line), "\n")
}
