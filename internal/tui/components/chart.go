package components

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/sravya/xtrack/internal/tui/theme"
)

var sparkBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Sparkline renders a unicode sparkline from values.
func Sparkline(values []float64, color lipgloss.Color) string {
	if len(values) == 0 {
		return ""
	}
	t := theme.Active
	peak := maxOf(values)

	var buf strings.Builder
	buf.Grow(len(values) * 3)
	for _, v := range values {
		idx := int(v / peak * float64(len(sparkBlocks)-1))
		idx = min(max(idx, 0), len(sparkBlocks)-1)
		buf.WriteRune(sparkBlocks[idx])
	}
	return lipgloss.NewStyle().Foreground(color).Background(t.Surface).Render(buf.String())
}

// BarChart renders a vertical bar chart with a labeled Y axis. Labels, when
// given, must match values one to one and are printed under the X axis.
// Too many values for the width are sampled down.
func BarChart(values []float64, labels []string, color lipgloss.Color, width, height int) string {
	if len(values) == 0 {
		return ""
	}
	if width < 15 || height < 3 {
		return Sparkline(values, color)
	}
	t := theme.Active

	peak := maxOf(values)
	step := chartTickStep(peak)
	for math.Ceil(peak/step) > float64(max(height/2, 2)) {
		step *= 2
	}
	ceiling := math.Ceil(peak/step) * step
	ticks := max(int(math.Round(ceiling/step)), 1)
	rowsPerTick := max(height/ticks, 2)
	chartH := rowsPerTick * ticks

	yLabelW := max(len(formatChartLabel(ceiling))+1, 4)
	chartW := max(width-yLabelW-1, 5)

	n := len(values)
	if maxBars := (chartW + 1) / 3; n > maxBars && maxBars >= 2 {
		values, labels = sampleSeries(values, labels, maxBars)
		n = maxBars
	}
	gap := 1
	if n == 1 {
		gap = 0
	}
	barW := min(max((chartW-(n-1)*gap)/n, 1), 6)
	axisLen := n*barW + (n-1)*gap

	axisStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	barStyle := lipgloss.NewStyle().Foreground(color).Background(t.Surface)
	blank := lipgloss.NewStyle().Background(t.Surface)
	partial := []rune{' ', '▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	var b strings.Builder
	for row := chartH; row >= 1; row-- {
		top := ceiling * float64(row) / float64(chartH)
		bottom := ceiling * float64(row-1) / float64(chartH)

		label := ""
		if row%rowsPerTick == 0 {
			label = formatChartLabel(step * float64(row/rowsPerTick))
		}
		b.WriteString(axisStyle.Render(fmt.Sprintf("%*s│", yLabelW, label)))

		for i, v := range values {
			if i > 0 && gap > 0 {
				b.WriteString(blank.Render(strings.Repeat(" ", gap)))
			}
			switch {
			case v >= top:
				b.WriteString(barStyle.Render(strings.Repeat("█", barW)))
			case v > bottom:
				idx := min(max(int((v-bottom)/(top-bottom)*8), 1), 8)
				b.WriteString(barStyle.Render(strings.Repeat(string(partial[idx]), barW)))
			default:
				b.WriteString(blank.Render(strings.Repeat(" ", barW)))
			}
		}
		b.WriteString("\n")
	}

	b.WriteString(axisStyle.Render(fmt.Sprintf("%*s└", yLabelW, "0")))
	b.WriteString(axisStyle.Render(strings.Repeat("─", axisLen)))

	if len(labels) == n {
		b.WriteString("\n")
		b.WriteString(blank.Render(strings.Repeat(" ", yLabelW+1)))
		b.WriteString(axisStyle.Render(axisLabels(labels, barW+gap, axisLen)))
	}
	return b.String()
}

// HBar renders one horizontal bar scaled to maxValue, e.g. a category's
// share of total spending.
func HBar(value, maxValue float64, width int, color lipgloss.Color) string {
	t := theme.Active
	filled := 0
	if maxValue > 0 {
		filled = int(math.Round(value / maxValue * float64(width)))
	}
	filled = min(max(filled, 0), width)
	if value > 0 && filled == 0 {
		filled = 1
	}

	bar := lipgloss.NewStyle().Foreground(color).Background(t.Surface).Render(strings.Repeat("█", filled))
	rest := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface).Render(strings.Repeat("·", width-filled))
	return bar + rest
}

// StackedBar renders segments side by side in one bar of total width
// scaled to maxTotal. Colors are matched to segments by index.
func StackedBar(segments []float64, colors []lipgloss.Color, maxTotal float64, width int) string {
	t := theme.Active
	if maxTotal <= 0 || len(colors) == 0 {
		return lipgloss.NewStyle().Background(t.Surface).Render(strings.Repeat(" ", width))
	}

	var b strings.Builder
	used := 0
	for i, v := range segments {
		cells := int(math.Round(v / maxTotal * float64(width)))
		if v > 0 && cells == 0 {
			cells = 1
		}
		cells = min(cells, width-used)
		if cells <= 0 {
			continue
		}
		style := lipgloss.NewStyle().Foreground(colors[i%len(colors)]).Background(t.Surface)
		b.WriteString(style.Render(strings.Repeat("█", cells)))
		used += cells
	}
	b.WriteString(lipgloss.NewStyle().Background(t.Surface).Render(strings.Repeat(" ", width-used)))
	return b.String()
}

// axisLabels places labels under their bars, skipping any that would
// overlap the previous one.
func axisLabels(labels []string, stride, axisLen int) string {
	buf := []rune(strings.Repeat(" ", axisLen))
	lastEnd := -1
	for i, lbl := range labels {
		pos := i * stride
		r := []rune(lbl)
		if pos <= lastEnd || pos+len(r) > axisLen {
			continue
		}
		copy(buf[pos:], r)
		lastEnd = pos + len(r)
	}
	return strings.TrimRight(string(buf), " ")
}

func sampleSeries(values []float64, labels []string, n int) ([]float64, []string) {
	sampled := make([]float64, n)
	var sampledLabels []string
	if len(labels) == len(values) {
		sampledLabels = make([]string, n)
	}
	for i := range sampled {
		src := i * (len(values) - 1) / (n - 1)
		sampled[i] = values[src]
		if sampledLabels != nil {
			sampledLabels[i] = labels[src]
		}
	}
	return sampled, sampledLabels
}

func maxOf(values []float64) float64 {
	peak := 0.0
	for _, v := range values {
		peak = max(peak, v)
	}
	if peak == 0 {
		return 1
	}
	return peak
}

// chartTickStep computes a round tick interval targeting about five ticks.
func chartTickStep(maxVal float64) float64 {
	if maxVal <= 0 {
		return 1
	}
	rough := maxVal / 5
	base := math.Pow(10, math.Floor(math.Log10(rough)))
	switch frac := rough / base; {
	case frac < 1.5:
		return base
	case frac < 3.5:
		return 2 * base
	default:
		return 5 * base
	}
}

func formatChartLabel(v float64) string {
	switch {
	case v >= 1e6:
		return trimZero(fmt.Sprintf("%.1f", v/1e6)) + "M"
	case v >= 1e3:
		return trimZero(fmt.Sprintf("%.1f", v/1e3)) + "k"
	case v >= 1:
		return fmt.Sprintf("%.0f", v)
	default:
		return fmt.Sprintf("%.2f", v)
	}
}

func trimZero(s string) string {
	return strings.TrimSuffix(s, ".0")
}
