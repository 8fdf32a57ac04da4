// Package tui provides the interactive Bubble Tea dashboard for xtrack.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sravya/xtrack/internal/cli"
	"github.com/sravya/xtrack/internal/config"
	"github.com/sravya/xtrack/internal/model"
	"github.com/sravya/xtrack/internal/pipeline"
	"github.com/sravya/xtrack/internal/selection"
	"github.com/sravya/xtrack/internal/store"
	"github.com/sravya/xtrack/internal/tui/components"
	"github.com/sravya/xtrack/internal/tui/theme"
)

// Filters is the initial filter state, usually taken from command line flags.
type Filters struct {
	Category model.Category // empty selects every category
	From     time.Time
	To       time.Time
	Search   string
}

// App is the root Bubble Tea model.
type App struct {
	repo       store.Repository
	categories model.Categories
	limits     model.BudgetLimits
	currency   string

	// Data
	expenses []model.Expense
	loaded   bool
	loadErr  error
	loadTime time.Duration
	seq      int // id of the latest load request

	// Views of the filtered snapshot
	dash   pipeline.Dashboard
	daily  []model.DailyTotal
	rows   []model.Expense // filtered, newest first
	alerts []model.Alert

	// Filter state
	sel    selection.Selection
	period period
	from   time.Time
	to     time.Time
	query  string

	// Auto-refresh state
	refreshInterval time.Duration
	refreshing      bool

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool
	status    string
	list      listState
	search    searchState
	spinner   spinner.Model

	// Add/edit form
	form     *huh.Form
	formVals *expenseForm

	// Expense awaiting delete confirmation
	pendingDelete *model.Expense
}

type listState struct {
	cursor int
	offset int
}

type searchState struct {
	active bool
	input  textinput.Model
	prev   string // query to restore on cancel
}

const (
	minTerminalWidth = 80
	compactWidth     = 120
	maxContentWidth  = 180

	minContentHeight = 5
	minRefresh       = 5 * time.Second
)

// NewApp creates the dashboard over repo.
func NewApp(repo store.Repository, cfg config.Config, f Filters) App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	cats := cfg.CategoryList()
	sel := selection.New(cats)
	if f.Category != "" {
		sel = selection.Only(cats, f.Category)
	}

	p := periodAll
	if !f.From.IsZero() || !f.To.IsZero() {
		p = periodCustom
	}

	interval := time.Duration(cfg.Server.RefreshIntervalSec) * time.Second
	if interval < minRefresh {
		interval = 30 * time.Second
	}

	return App{
		repo:            repo,
		categories:      cats,
		limits:          cfg.BudgetLimits(),
		currency:        cfg.General.Currency,
		sel:             sel,
		period:          p,
		from:            f.From,
		to:              f.To,
		query:           f.Search,
		refreshInterval: interval,
		spinner:         sp,
		seq:             1,
	}
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnableMouseCellMotion,
		loadCmd(a.repo, a.seq),
		a.spinner.Tick,
		refreshTickCmd(a.refreshInterval),
	)
}

// reload requests a new snapshot. Any response to an earlier request that
// arrives afterwards is ignored.
func (a *App) reload() tea.Cmd {
	a.seq++
	a.refreshing = true
	return loadCmd(a.repo, a.seq)
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.form != nil {
			a.form = a.form.WithWidth(min(msg.Width, 72))
		}
		return a, nil

	case expensesLoadedMsg:
		if msg.seq != a.seq {
			return a, nil
		}
		a.refreshing = false
		a.loaded = true
		a.loadTime = msg.took
		a.loadErr = msg.err
		if msg.err == nil {
			a.expenses = msg.expenses
		}
		a.recompute()
		return a, nil

	case mutationMsg:
		if msg.err != nil {
			a.status = "Error: " + msg.err.Error()
			return a, nil
		}
		a.status = msg.note
		cmd := a.reload()
		return a, cmd

	case refreshTickMsg:
		cmds := []tea.Cmd{refreshTickCmd(a.refreshInterval)}
		if a.loaded && !a.refreshing && a.form == nil {
			cmds = append(cmds, a.reload())
		}
		return a, tea.Batch(cmds...)

	case spinner.TickMsg:
		if !a.loaded {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil

	case tea.MouseMsg:
		return a.updateMouse(msg)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if !a.loaded {
			return a, nil
		}
		if a.form != nil {
			return a.updateForm(msg)
		}
		if a.search.active {
			return a.updateSearch(msg)
		}
		if a.pendingDelete != nil {
			return a.updateConfirmDelete(msg)
		}
		return a.updateKeys(msg)
	}

	// Forward unhandled messages (cursor blinks, etc.) to the form.
	if a.form != nil {
		return a.updateForm(msg)
	}
	return a, nil
}

func (a App) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "?" {
		a.showHelp = !a.showHelp
		return a, nil
	}
	if a.showHelp {
		a.showHelp = false
		return a, nil
	}

	switch key {
	case "q":
		return a, tea.Quit
	case "r":
		if !a.refreshing {
			cmd := a.reload()
			return a, cmd
		}
		return a, nil
	case "p":
		a.cyclePeriod()
		return a, nil
	case "0":
		a.toggleAllCategories()
		return a, nil
	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		a.toggleCategory(int(key[0] - '1'))
		return a, nil
	case "/":
		a.search = searchState{active: true, input: newSearchInput(a.query), prev: a.query}
		cmd := a.search.input.Focus()
		return a, cmd
	case "esc":
		if a.query != "" {
			a.query = ""
			a.recompute()
		}
		return a, nil
	case "left", "shift+tab":
		a.activeTab = (a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs)
		return a, nil
	case "right", "tab":
		a.activeTab = (a.activeTab + 1) % len(components.Tabs)
		return a, nil
	case "n":
		return a.openForm(nil)
	}

	if len(msg.Runes) == 1 {
		if idx := components.TabIdxByKey(msg.Runes[0]); idx >= 0 {
			a.activeTab = idx
			return a, nil
		}
	}

	if a.activeTab == tabExpenses {
		return a.updateExpenseKeys(key)
	}
	return a, nil
}

func (a App) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if !a.loaded || a.showHelp || a.form != nil {
		return a, nil
	}
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		if a.activeTab == tabExpenses {
			a.moveCursor(-1)
		}
	case tea.MouseButtonWheelDown:
		if a.activeTab == tabExpenses {
			a.moveCursor(1)
		}
	case tea.MouseButtonLeft:
		if msg.Action == tea.MouseActionPress && msg.Y == 0 {
			if tab := a.tabAtX(msg.X); tab >= 0 {
				a.activeTab = tab
			}
		}
	}
	return a, nil
}

func (a App) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		a.search.active = false
		return a, nil
	case "esc":
		a.query = a.search.prev
		a.search.active = false
		a.recompute()
		return a, nil
	}

	var cmd tea.Cmd
	a.search.input, cmd = a.search.input.Update(msg)
	if q := a.search.input.Value(); q != a.query {
		a.query = q
		a.list.cursor = 0
		a.recompute()
	}
	return a, cmd
}

func (a App) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	e := *a.pendingDelete
	a.pendingDelete = nil
	if msg.String() == "y" || msg.String() == "Y" {
		return a, deleteCmd(a.repo, e)
	}
	a.status = "Delete canceled"
	return a, nil
}

func newSearchInput(value string) textinput.Model {
	ti := textinput.New()
	ti.Prompt = "/ "
	ti.Placeholder = "search titles"
	ti.CharLimit = 100
	ti.Width = 40
	ti.SetValue(value)
	return ti
}

func (a App) contentWidth() int {
	return min(a.width, maxContentWidth)
}

func (a App) isCompactLayout() bool {
	return a.contentWidth() < compactWidth
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}
	if !a.loaded {
		return a.viewLoading()
	}
	if a.form != nil {
		return a.viewForm()
	}
	if a.showHelp {
		return a.viewHelp()
	}
	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	msg := fmt.Sprintf(
		"\n  Terminal too narrow (%d cols)\n\n  xtrack needs at least %d columns.\n",
		a.width, minTerminalWidth,
	)
	h := max(a.height, 5)
	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewLoading() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(2, 4)
	logoStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	subtitleStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	body := logoStyle.Render("◈ xtrack") + subtitleStyle.Render(" · expenses") + "\n\n" +
		a.spinner.View() + subtitleStyle.Render(" Loading expenses...")

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(body),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewHelp() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)
	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	sectionStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.Cyan).Background(t.Surface).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	sections := []struct {
		title    string
		bindings [][2]string
	}{
		{"Navigation", [][2]string{
			{"e a m b", "Jump to tab"},
			{"← →", "Previous / Next tab"},
			{"j k", "Move in the expense list"},
			{"g G", "First / Last expense"},
		}},
		{"Filters", [][2]string{
			{"1-9", "Toggle category"},
			{"0", "Select all / none"},
			{"p", "Cycle period"},
			{"/", "Search titles"},
			{"Esc", "Clear search"},
		}},
		{"Actions", [][2]string{
			{"n", "New expense"},
			{"Enter", "Edit expense"},
			{"d", "Delete expense"},
			{"r", "Reload"},
			{"?", "Toggle help"},
			{"q", "Quit"},
		}},
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ Keyboard Shortcuts"))
	b.WriteString("\n")
	for _, s := range sections {
		b.WriteString("\n")
		b.WriteString(sectionStyle.Render(s.title))
		b.WriteString("\n")
		for _, bind := range s.bindings {
			fmt.Fprintf(&b, "  %s  %s\n",
				keyStyle.Render(fmt.Sprintf("%-8s", bind[0])),
				descStyle.Render(bind[1]))
		}
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Press any key to close"))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()

	header := components.RenderTabBar(a.activeTab, w) + "\n" + a.renderFilterRow(w)
	statusBar := components.RenderStatusBar(w, a.statusHints(), a.statusInfo(), a.refreshing)

	contentH := max(a.height-lipgloss.Height(header)-lipgloss.Height(statusBar), minContentHeight)

	var content string
	switch a.activeTab {
	case tabExpenses:
		content = a.renderExpensesTab(cw, contentH)
	case tabAnalytics:
		content = a.renderAnalyticsTab(cw)
	case tabMonthly:
		content = a.renderMonthlyTab(cw)
	case tabBudget:
		content = a.renderBudgetTab(cw)
	}

	content = padHeight(truncateHeight(content, contentH), contentH)
	content = fillLinesWithBackground(content, cw, t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
	return lipgloss.Place(w, a.height, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) renderFilterRow(w int) string {
	t := theme.Active
	pill := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	accent := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)

	var parts []string
	for _, p := range a.filterSummary() {
		parts = append(parts, accent.Render(p))
	}
	row := pill.Render(" ") + strings.Join(parts, pill.Render(" │ "))
	if a.search.active {
		row += pill.Render("   ") + a.search.input.View()
	}
	return lipgloss.NewStyle().Background(t.Surface).Width(w).Render(row)
}

func (a App) statusHints() string {
	switch {
	case a.pendingDelete != nil:
		return fmt.Sprintf("Delete %q? [y]es / any key to cancel", a.pendingDelete.Title)
	case a.search.active:
		return "[enter]apply  [esc]cancel"
	}
	return "[?]help  [n]ew  [/]search  [p]eriod  [q]uit"
}

func (a App) statusInfo() string {
	if a.status != "" {
		return a.status
	}
	if a.loadErr != nil {
		return "Load failed: " + a.loadErr.Error()
	}
	return fmt.Sprintf("%s of %s · %s",
		cli.FormatNumber(int64(len(a.dash.Expenses))),
		cli.FormatNumber(int64(len(a.expenses))),
		cli.FormatMoney(a.currency, a.dash.Metrics.TotalSpent))
}

// tabAtX returns the tab index at the given X coordinate, or -1 if none.
// Hitboxes follow the same width rules as RenderTabBar.
func (a App) tabAtX(x int) int {
	pos := 0
	for i, tab := range components.Tabs {
		tabW := components.TabVisualWidth(tab, i == a.activeTab)
		if x >= pos && x < pos+tabW {
			return i
		}
		pos += tabW + 1 // separator
	}
	return -1
}

// ─── Helpers ────────────────────────────────────────────────────

func categoryColor(cats model.Categories, c model.Category) lipgloss.Color {
	return theme.Active.SeriesColor(cats.Index(c))
}

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}

// fillLinesWithBackground pads each line to width w with background color.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = lipgloss.PlaceHorizontal(w, lipgloss.Left, line, lipgloss.WithWhitespaceBackground(bg))
	}
	return strings.Join(lines, "\n")
}
