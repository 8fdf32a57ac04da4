package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/sravya/xtrack/internal/tui/theme"
)

func init() {
	// Force TrueColor output so ANSI codes are generated in tests
	lipgloss.SetColorProfile(termenv.TrueColor)
}

func TestLayoutRowSumsToTotal(t *testing.T) {
	for _, tc := range []struct{ total, n int }{{100, 3}, {80, 4}, {7, 5}, {121, 2}} {
		widths := LayoutRow(tc.total, tc.n)
		if len(widths) != tc.n {
			t.Fatalf("LayoutRow(%d, %d) returned %d widths", tc.total, tc.n, len(widths))
		}
		sum := 0
		for _, w := range widths {
			sum += w
		}
		if sum != tc.total {
			t.Errorf("LayoutRow(%d, %d) sums to %d", tc.total, tc.n, sum)
		}
	}
	if LayoutRow(10, 0) != nil {
		t.Error("LayoutRow with n=0 should be nil")
	}
}

func TestCardRowPadsShortCards(t *testing.T) {
	theme.SetActive("flexoki-dark")

	shortCard := ContentCard("Short", "Content", 22)
	tallCard := ContentCard("Tall", "Line 1\nLine 2\nLine 3\nLine 4\nLine 5", 22)
	shortLines := lipgloss.Height(shortCard)
	tallLines := lipgloss.Height(tallCard)
	if shortLines >= tallLines {
		t.Fatal("test setup error: short card should be shorter than tall card")
	}

	joined := CardRow([]string{tallCard, shortCard})
	lines := strings.Split(joined, "\n")
	if len(lines) != tallLines {
		t.Fatalf("joined height = %d, want %d", len(lines), tallLines)
	}

	width := lipgloss.Width(lines[0])
	for i, line := range lines {
		if lipgloss.Width(line) != width {
			t.Errorf("line %d width = %d, want %d", i, lipgloss.Width(line), width)
		}
		if i >= shortLines && !strings.Contains(line, "\x1b[") {
			t.Errorf("padding line %d has no styling: %q", i, line)
		}
	}
}

func TestMetricCardRowWidth(t *testing.T) {
	row := MetricCardRow([]Metric{
		{Label: "Total", Value: "₹1,250.00"},
		{Label: "Count", Value: "12"},
		{Label: "Top", Value: "Food", Note: "₹800.00"},
	}, 90)
	for i, line := range strings.Split(row, "\n") {
		if w := lipgloss.Width(line); w != 90 {
			t.Errorf("line %d width = %d, want 90", i, w)
		}
	}
}

func TestTabIdxByKey(t *testing.T) {
	for i, tab := range Tabs {
		if got := TabIdxByKey(tab.Key); got != i {
			t.Errorf("TabIdxByKey(%q) = %d, want %d", tab.Key, got, i)
		}
	}
	if TabIdxByKey('z') != -1 {
		t.Error("unknown key should return -1")
	}
}

func TestTabBarWidthMatchesTabs(t *testing.T) {
	for active := range Tabs {
		want := len(Tabs) - 1 // separators
		for i, tab := range Tabs {
			want += TabVisualWidth(tab, i == active)
		}
		bar := RenderTabBar(active, want)
		if got := lipgloss.Width(bar); got != want {
			t.Errorf("active=%d: tab bar width %d, want %d", active, got, want)
		}
	}
}

func TestSparklineLength(t *testing.T) {
	got := Sparkline([]float64{0, 1, 2, 4, 8}, theme.Active.Accent)
	if w := lipgloss.Width(got); w != 5 {
		t.Errorf("sparkline width = %d, want 5", w)
	}
	if Sparkline(nil, theme.Active.Accent) != "" {
		t.Error("empty sparkline should render nothing")
	}
}

func TestBarChartStaysInWidth(t *testing.T) {
	values := make([]float64, 90)
	labels := make([]string, 90)
	for i := range values {
		values[i] = float64(i % 13)
		labels[i] = "d"
	}
	chart := BarChart(values, labels, theme.Active.Accent, 60, 8)
	for i, line := range strings.Split(chart, "\n") {
		if w := lipgloss.Width(line); w > 60 {
			t.Errorf("line %d width %d exceeds 60", i, w)
		}
	}
}

func TestStackedBarFillsWidth(t *testing.T) {
	colors := theme.Active.Series()
	for _, segs := range [][]float64{{10, 20, 30}, {0, 0, 5}, {1, 1000}} {
		bar := StackedBar(segs, colors, 60, 40)
		if w := lipgloss.Width(bar); w != 40 {
			t.Errorf("StackedBar(%v) width = %d, want 40", segs, w)
		}
	}
}

func TestChartTickStep(t *testing.T) {
	tests := []struct {
		max  float64
		want float64
	}{
		{0, 1},
		{10, 2},
		{100, 20},
		{1000, 200},
		{4000, 500},
		{45, 5},
	}
	for _, tt := range tests {
		if got := chartTickStep(tt.max); got != tt.want {
			t.Errorf("chartTickStep(%v) = %v, want %v", tt.max, got, tt.want)
		}
	}
}

func TestFormatChartLabel(t *testing.T) {
	tests := map[float64]string{
		0.5:     "0.50",
		20:      "20",
		2000:    "2k",
		2500:    "2.5k",
		3000000: "3M",
	}
	for v, want := range tests {
		if got := formatChartLabel(v); got != want {
			t.Errorf("formatChartLabel(%v) = %q, want %q", v, got, want)
		}
	}
}
