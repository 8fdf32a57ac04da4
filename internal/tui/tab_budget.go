package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/sravya/xtrack/internal/cli"
	"github.com/sravya/xtrack/internal/model"
	"github.com/sravya/xtrack/internal/tui/components"
	"github.com/sravya/xtrack/internal/tui/theme"
)

func (a App) renderBudgetTab(cw int) string {
	t := theme.Active
	innerW := components.CardInnerWidth(cw)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	if len(a.dash.Budget) == 0 {
		return components.ContentCard("Budget", mutedStyle.Render(
			"No budget limits configured.\nSet one with: xtrack budget set <category> <amount>"), cw)
	}

	labelW := 0
	for _, u := range a.dash.Budget {
		labelW = max(labelW, lipgloss.Width(u.Category.Label()))
	}
	suffixW := 28
	barW := max(innerW-labelW-suffixW-8, 10)

	var usage strings.Builder
	for i, u := range a.dash.Budget {
		suffix := fmt.Sprintf("%s / %s",
			cli.FormatMoney(a.currency, u.Spent),
			cli.FormatMoney(a.currency, u.Limit))
		usage.WriteString(components.BudgetBar(padTo(u.Category.Label(), labelW), u.UsedPercent/100, labelW, barW, suffix))
		if i < len(a.dash.Budget)-1 {
			usage.WriteString("\n")
		}
	}

	var b strings.Builder
	b.WriteString(components.ContentCard("Budget Usage", usage.String(), cw))
	b.WriteString("\n")
	b.WriteString(a.renderAlerts(cw))
	return b.String()
}

func (a App) renderAlerts(cw int) string {
	t := theme.Active
	if len(a.dash.Alerts) == 0 {
		ok := lipgloss.NewStyle().Foreground(t.Green).Background(t.Surface)
		return components.ContentCard("Alerts", ok.Render("✓ Every category is within its limit"), cw)
	}

	warn := lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface).Bold(true)
	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	lines := make([]string, len(a.dash.Alerts))
	for i, al := range a.dash.Alerts {
		lines[i] = warn.Render("⚠ "+al.Category.Label()) +
			muted.Render(fmt.Sprintf(" over by %s (spent %s of %s)",
				cli.FormatMoney(a.currency, al.ExceededBy),
				cli.FormatMoney(a.currency, al.Total),
				cli.FormatMoney(a.currency, al.Limit)))
	}
	return components.ContentCard(fmt.Sprintf("Alerts [%d]", len(lines)), strings.Join(lines, "\n"), cw)
}

// alertStatus summarizes newly raised or changed alerts for the status bar.
func alertStatus(currency string, alerts []model.Alert) string {
	if len(alerts) == 1 {
		al := alerts[0]
		return fmt.Sprintf("⚠ %s over budget by %s", al.Category, cli.FormatMoney(currency, al.ExceededBy))
	}
	return fmt.Sprintf("⚠ %d categories over budget", len(alerts))
}
