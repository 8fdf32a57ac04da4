package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/sravya/xtrack/internal/tui/theme"
)

// ProgressBar renders a loading bar with percentage. pct is 0-1.
func ProgressBar(pct float64, width int) string {
	t := theme.Active
	pct = clamp01(pct)
	filled := int(pct * float64(width))

	filledStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface)
	emptyStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	pctStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)

	var b strings.Builder
	b.WriteString(filledStyle.Render(strings.Repeat("█", filled)))
	b.WriteString(emptyStyle.Render(strings.Repeat("░", width-filled)))
	b.WriteString(pctStyle.Render(fmt.Sprintf(" %.0f%%", pct*100)))
	return b.String()
}

// ColorForPct returns green/yellow/orange/red for a budget usage ratio.
func ColorForPct(pct float64) lipgloss.Color {
	t := theme.Active
	switch {
	case pct > 1:
		return t.Red
	case pct >= 0.9:
		return t.Orange
	case pct >= 0.7:
		return t.Yellow
	default:
		return t.Green
	}
}

// BudgetBar renders one labeled budget line: the bar shows spending against
// the limit and the suffix carries the formatted amounts.
func BudgetBar(label string, pct float64, labelW, barW int, suffix string) string {
	t := theme.Active
	color := ColorForPct(pct)

	bar := progress.New(
		progress.WithSolidFill(string(color)),
		progress.WithWidth(barW),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	pctStyle := lipgloss.NewStyle().Foreground(color).Background(t.Surface).Bold(true)
	suffixStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	space := lipgloss.NewStyle().Background(t.Surface).Render(" ")

	return labelStyle.Render(fmt.Sprintf("%-*s", labelW, label)) +
		space +
		bar.ViewAs(clamp01(pct)) +
		space +
		pctStyle.Render(fmt.Sprintf("%4.0f%%", pct*100)) +
		space + space +
		suffixStyle.Render(suffix)
}

func clamp01(v float64) float64 {
	return min(max(v, 0), 1)
}
