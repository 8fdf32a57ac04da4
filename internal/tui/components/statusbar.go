package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/sravya/xtrack/internal/tui/theme"
)

// RenderStatusBar renders the bottom status bar: key hints on the left and
// info (record counts, refresh state, messages) on the right.
func RenderStatusBar(width int, hints, info string, refreshing bool) string {
	t := theme.Active

	style := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Background(t.Surface).
		Width(width)
	spinStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface)

	left := " " + hints
	right := info + " "
	if refreshing {
		right = spinStyle.Render("↻ ") + right
	}

	padding := max(width-lipgloss.Width(left)-lipgloss.Width(right), 0)
	return style.Render(left + strings.Repeat(" ", padding) + right)
}
