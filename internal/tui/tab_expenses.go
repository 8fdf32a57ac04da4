package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sravya/xtrack/internal/cli"
	"github.com/sravya/xtrack/internal/model"
	"github.com/sravya/xtrack/internal/tui/components"
	"github.com/sravya/xtrack/internal/tui/theme"
)

// Tab indexes, matching components.Tabs.
const (
	tabExpenses = iota
	tabAnalytics
	tabMonthly
	tabBudget
)

func (a App) updateExpenseKeys(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "j", "down":
		a.moveCursor(1)
	case "k", "up":
		a.moveCursor(-1)
	case "g", "home":
		a.list.cursor = 0
	case "G", "end":
		a.list.cursor = max(len(a.rows)-1, 0)
	case "enter":
		if e, ok := a.selectedExpense(); ok {
			return a.openForm(&e)
		}
	case "d", "delete":
		if e, ok := a.selectedExpense(); ok {
			a.pendingDelete = &e
		}
	}
	return a, nil
}

func (a *App) moveCursor(delta int) {
	a.list.cursor = min(max(a.list.cursor+delta, 0), max(len(a.rows)-1, 0))
}

func (a App) selectedExpense() (model.Expense, bool) {
	if a.list.cursor < 0 || a.list.cursor >= len(a.rows) {
		return model.Expense{}, false
	}
	return a.rows[a.list.cursor], true
}

func (a App) renderExpensesTab(cw, h int) string {
	chips := a.renderCategoryChips(cw)
	listH := h - lipgloss.Height(chips)
	return chips + "\n" + a.renderExpenseList(cw, listH)
}

// renderCategoryChips shows every configured category with its toggle key,
// highlighting the ones the selection includes.
func (a App) renderCategoryChips(cw int) string {
	t := theme.Active
	onKey := lipgloss.NewStyle().Foreground(t.Background).Background(t.Accent).Bold(true)
	offKey := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	space := lipgloss.NewStyle().Background(t.Surface).Render(" ")

	var lines []string
	line, lineW := "", 0
	for i, c := range a.categories {
		keyLabel := " "
		if i < 9 {
			keyLabel = fmt.Sprintf("%d", i+1)
		}
		name := c.Label()
		var chip string
		if a.sel.Has(c) {
			nameStyle := lipgloss.NewStyle().Foreground(categoryColor(a.categories, c)).Background(t.Surface).Bold(true)
			chip = onKey.Render(keyLabel) + space + nameStyle.Render(name)
		} else {
			chip = offKey.Render(keyLabel) + space + dimStyle.Render(name)
		}
		chipW := lipgloss.Width(chip) + 2
		if lineW > 0 && lineW+chipW > cw {
			lines = append(lines, line)
			line, lineW = "", 0
		}
		line += space + chip + space
		lineW += chipW
	}
	if line != "" {
		lines = append(lines, line)
	}

	row := lipgloss.NewStyle().Background(t.Surface).Width(cw)
	for i := range lines {
		lines[i] = row.Render(lines[i])
	}
	return strings.Join(lines, "\n")
}

func (a App) renderExpenseList(cw, h int) string {
	t := theme.Active
	innerW := components.CardInnerWidth(cw)

	if len(a.rows) == 0 {
		msg := "No expenses match the current filters"
		if len(a.expenses) == 0 {
			msg = "No expenses yet. Press n to add one"
		}
		return components.ContentCard("Expenses",
			lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).Render(msg), cw)
	}

	dateW, catW, amountW := 11, 18, 14
	if a.isCompactLayout() {
		catW = 14
	}
	titleW := max(innerW-dateW-catW-amountW-3, 10)

	headerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	moneyStyle := lipgloss.NewStyle().Foreground(t.Green).Background(t.Surface)
	selectedStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceHover).Bold(true)

	var body strings.Builder
	body.WriteString(headerStyle.Render(fmt.Sprintf("%-*s %-*s %-*s %*s",
		dateW, "Date", titleW, "Title", catW, "Category", amountW, "Amount")))
	body.WriteString("\n")
	body.WriteString(mutedStyle.Render(strings.Repeat("─", innerW)))
	body.WriteString("\n")

	visible := max(h-6, 3) // card border (2) + title (1) + header (2) + footer (1)
	offset := a.list.offset
	if a.list.cursor < offset {
		offset = a.list.cursor
	}
	if a.list.cursor >= offset+visible {
		offset = a.list.cursor - visible + 1
	}
	end := min(offset+visible, len(a.rows))

	for i := offset; i < end; i++ {
		e := a.rows[i]
		date := fmt.Sprintf("%-*s", dateW, cli.FormatDate(e.Date))
		title := padTo(cli.Truncate(e.Title, titleW), titleW)
		cat := padTo(cli.Truncate(e.Category.Label(), catW), catW)
		amount := fmt.Sprintf("%*s", amountW, cli.FormatMoney(a.currency, e.Amount))

		if i == a.list.cursor {
			body.WriteString(selectedStyle.Render(date + " " + title + " " + cat + " " + amount))
		} else {
			catStyle := lipgloss.NewStyle().Foreground(categoryColor(a.categories, e.Category)).Background(t.Surface)
			body.WriteString(mutedStyle.Render(date) + rowStyle.Render(" "+title+" ") +
				catStyle.Render(cat) + moneyStyle.Render(" "+amount))
		}
		body.WriteString("\n")
	}
	body.WriteString(mutedStyle.Render(fmt.Sprintf("%d-%d of %d", offset+1, end, len(a.rows))))

	return components.ContentCard("Expenses", body.String(), cw)
}

// padTo pads s with spaces to display width w.
func padTo(s string, w int) string {
	if gap := w - lipgloss.Width(s); gap > 0 {
		return s + strings.Repeat(" ", gap)
	}
	return s
}
