package tui

import (
	"errors"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/sravya/xtrack/internal/model"
	"github.com/sravya/xtrack/internal/tui/theme"
)

// expenseForm holds the values bound to the add/edit form. It lives on the
// heap so the form's pointers survive copies of App.
type expenseForm struct {
	id       string
	title    string
	amount   string
	date     string
	category string
}

func newExpenseForm(e *model.Expense, defaultCategory model.Category) *expenseForm {
	if e == nil {
		return &expenseForm{
			date:     time.Now().Format(model.DateLayout),
			category: string(defaultCategory),
		}
	}
	return &expenseForm{
		id:       e.ID,
		title:    e.Title,
		amount:   e.Amount.StringFixed(2),
		date:     e.Date.Format(model.DateLayout),
		category: string(e.Category),
	}
}

// draft converts the validated form values.
func (f *expenseForm) draft() (model.Draft, error) {
	amount, err := parseAmount(f.amount)
	if err != nil {
		return model.Draft{}, err
	}
	date, err := model.ParseDate(f.date)
	if err != nil {
		return model.Draft{}, errors.New("date must be YYYY-MM-DD")
	}
	d := model.Draft{
		Title:    strings.TrimSpace(f.title),
		Amount:   amount,
		Date:     date,
		Category: model.Category(f.category),
	}
	return d, d.Validate()
}

func parseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Decimal{}, errors.New("amount must be a number")
	}
	if d.IsNegative() {
		return decimal.Decimal{}, model.ErrNegativeAmount
	}
	return d, nil
}

func (a App) openForm(e *model.Expense) (tea.Model, tea.Cmd) {
	def := model.Category("")
	if len(a.categories) > 0 {
		def = a.categories[0]
	}
	if c, ok := a.sel.Selected(); ok {
		def = c
	}
	a.formVals = newExpenseForm(e, def)
	a.form = buildExpenseForm(a.formVals, a.categories)
	if a.width > 0 {
		a.form = a.form.WithWidth(min(a.width, 72))
	}
	cmd := a.form.Init()
	return a, cmd
}

func buildExpenseForm(v *expenseForm, cats model.Categories) *huh.Form {
	title := "New expense"
	if v.id != "" {
		title = "Edit expense"
	}

	options := make([]huh.Option[string], len(cats))
	for i, c := range cats {
		options[i] = huh.NewOption(c.Label(), string(c))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().Title(title),
			huh.NewInput().
				Title("Title").
				Value(&v.title).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return model.ErrEmptyTitle
					}
					return nil
				}),
			huh.NewInput().
				Title("Amount").
				Placeholder("0.00").
				Value(&v.amount).
				Validate(func(s string) error {
					_, err := parseAmount(s)
					return err
				}),
			huh.NewInput().
				Title("Date").
				Placeholder(model.DateLayout).
				Value(&v.date).
				Validate(func(s string) error {
					if _, err := model.ParseDate(s); err != nil {
						return errors.New("date must be YYYY-MM-DD")
					}
					return nil
				}),
			huh.NewSelect[string]().
				Title("Category").
				Options(options...).
				Value(&v.category),
		),
	).WithShowHelp(true)
}

func (a App) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.form = f
	}

	switch a.form.State {
	case huh.StateCompleted:
		vals := a.formVals
		a.form, a.formVals = nil, nil
		d, err := vals.draft()
		if err != nil {
			a.status = "Error: " + err.Error()
			return a, nil
		}
		return a, saveCmd(a.repo, vals.id, d)
	case huh.StateAborted:
		a.form, a.formVals = nil, nil
		a.status = "Canceled"
		return a, nil
	}
	return a, cmd
}

func (a App) viewForm() string {
	t := theme.Active
	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Padding(1, 2).
		Render(a.form.View())
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card,
		lipgloss.WithWhitespaceBackground(t.Background))
}
