package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme colors (Flexoki Dark)
var (
	ColorBorder    = lipgloss.Color("#282726")
	ColorTextDim   = lipgloss.Color("#575653")
	ColorTextMuted = lipgloss.Color("#6F6E69")
	ColorText      = lipgloss.Color("#FFFCF0")
	ColorAccent    = lipgloss.Color("#3AA99F")
	ColorGreen     = lipgloss.Color("#879A39")
	ColorOrange    = lipgloss.Color("#DA702C")
	ColorRed       = lipgloss.Color("#D14D41")
	ColorBlue      = lipgloss.Color("#4385BE")
)

// Bar colors cycle through categories in series order.
var barColors = []lipgloss.Color{
	ColorAccent, ColorBlue, ColorOrange, ColorGreen,
	lipgloss.Color("#8B7EC8"), lipgloss.Color("#D0A215"), lipgloss.Color("#CE5D97"), ColorRed,
}

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorText).
			Align(lipgloss.Center)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorAccent)

	valueStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	mutedStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)

	moneyStyle = lipgloss.NewStyle().
			Foreground(ColorGreen)

	warnStyle = lipgloss.NewStyle().
			Foreground(ColorOrange)

	dimStyle = lipgloss.NewStyle().
			Foreground(ColorTextDim)
)

// Table represents a bordered text table for CLI output.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
	Widths  []int // optional column widths, auto-calculated if nil
	// LeftCols is the number of leading left-aligned columns; the rest are
	// right-aligned. Zero means one.
	LeftCols int
}

// RenderTitle renders a centered title bar in a bordered box.
func RenderTitle(title string) string {
	width := 55
	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Width(width).
		Align(lipgloss.Center).
		Padding(0, 1)

	return border.Render(titleStyle.Render(title))
}

// RenderTable renders a bordered table with headers and rows. A row
// holding the single cell "---" renders as a separator.
func RenderTable(t Table) string {
	if len(t.Rows) == 0 && len(t.Headers) == 0 {
		return ""
	}

	numCols := len(t.Headers)
	if numCols == 0 {
		numCols = len(t.Rows[0])
	}
	widths := columnWidths(t, numCols)
	leftCols := max(t.LeftCols, 1)

	var b strings.Builder
	if t.Title != "" {
		b.WriteString("  " + headerStyle.Render(t.Title) + "\n")
	}

	b.WriteString(rule(widths, "╭", "┬", "╮"))
	if len(t.Headers) > 0 {
		b.WriteString(tableRow(t.Headers, widths, numCols, headerStyle))
		b.WriteString(rule(widths, "├", "┼", "┤"))
	}
	for _, row := range t.Rows {
		if len(row) == 1 && row[0] == "---" {
			b.WriteString(rule(widths, "├", "┼", "┤"))
			continue
		}
		cells := make([]string, numCols)
		for i := range cells {
			if i < len(row) {
				cells[i] = row[i]
			}
			if i >= leftCols {
				cells[i] = padLeft(cells[i], widths[i])
			}
		}
		b.WriteString(tableRow(cells, widths, numCols, valueStyle))
	}
	b.WriteString(rule(widths, "╰", "┴", "╯"))

	return b.String()
}

// columnWidths uses the fixed widths when given, otherwise the widest
// display width in each column.
func columnWidths(t Table, numCols int) []int {
	widths := make([]int, numCols)
	if t.Widths != nil {
		copy(widths, t.Widths)
		return widths
	}
	grow := func(cells []string) {
		for i, cell := range cells {
			if i < numCols {
				widths[i] = max(widths[i], lipgloss.Width(cell))
			}
		}
	}
	grow(t.Headers)
	for _, row := range t.Rows {
		if len(row) == 1 && row[0] == "---" {
			continue
		}
		grow(row)
	}
	return widths
}

// rule renders a horizontal border line with the given corner and junction
// runes.
func rule(widths []int, left, mid, right string) string {
	segs := make([]string, len(widths))
	for i, w := range widths {
		segs[i] = strings.Repeat("─", w+2)
	}
	return dimStyle.Render(left+strings.Join(segs, mid)+right) + "\n"
}

func tableRow(cells []string, widths []int, numCols int, style lipgloss.Style) string {
	sep := dimStyle.Render("│")
	var b strings.Builder
	b.WriteString(sep)
	for i := 0; i < numCols; i++ {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		b.WriteString(style.Render(" " + padRight(cell, widths[i]) + " "))
		b.WriteString(sep)
	}
	return b.String() + "\n"
}

// RenderBudgetBar renders spend against a limit as a bar colored by how
// much of the limit is used, followed by the percentage.
func RenderBudgetBar(usedPct float64, width int) string {
	if width <= 0 {
		return ""
	}
	frac := usedPct / 100
	if frac > 1 {
		frac = 1
	}
	if frac < 0 {
		frac = 0
	}
	filled := int(frac * float64(width))

	style := moneyStyle
	switch {
	case usedPct > 100:
		style = lipgloss.NewStyle().Foreground(ColorRed)
	case usedPct >= 80:
		style = warnStyle
	}

	bar := style.Render(strings.Repeat("█", filled)) + dimStyle.Render(strings.Repeat("░", width-filled))
	return fmt.Sprintf("%s %s", bar, style.Render(FormatPercent(usedPct)))
}

// RenderSparkline generates a unicode block sparkline from a series of values.
func RenderSparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}

	blocks := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	peak := values[0]
	for _, v := range values[1:] {
		if v > peak {
			peak = v
		}
	}
	if peak == 0 {
		peak = 1
	}

	var b strings.Builder
	for _, v := range values {
		idx := int(v / peak * float64(len(blocks)-1))
		if idx >= len(blocks) {
			idx = len(blocks) - 1
		}
		if idx < 0 {
			idx = 0
		}
		b.WriteRune(blocks[idx])
	}

	return b.String()
}

// RenderHorizontalBar renders one labeled bar of a bar chart. The label is
// padded to labelWidth and the bar scaled against maxValue.
func RenderHorizontalBar(label string, labelWidth int, value, maxValue float64, maxWidth int, suffix string) string {
	barLen := 0
	if maxValue > 0 {
		barLen = int(value / maxValue * float64(maxWidth))
	}
	if barLen < 0 {
		barLen = 0
	}
	if barLen == 0 && value > 0 {
		barLen = 1
	}
	color := barColors[barColorIndex(label)]
	bar := lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("█", barLen))
	return fmt.Sprintf("  %s %s %s", padRight(label, labelWidth), bar, mutedStyle.Render(suffix))
}

// RenderWarning renders a highlighted warning line.
func RenderWarning(msg string) string {
	return warnStyle.Render("⚠ " + msg)
}

// RenderMuted renders secondary text.
func RenderMuted(msg string) string {
	return mutedStyle.Render(msg)
}

// RenderMoney renders an already formatted amount in the money color.
func RenderMoney(s string) string {
	return moneyStyle.Render(s)
}

func barColorIndex(label string) int {
	var h uint32
	for _, r := range label {
		h = h*31 + uint32(r)
	}
	return int(h % uint32(len(barColors)))
}

func padRight(s string, w int) string {
	if gap := w - lipgloss.Width(s); gap > 0 {
		return s + strings.Repeat(" ", gap)
	}
	return s
}

func padLeft(s string, w int) string {
	if gap := w - lipgloss.Width(s); gap > 0 {
		return strings.Repeat(" ", gap) + s
	}
	return s
}
