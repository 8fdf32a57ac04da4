package pipeline

import (
	"strings"
	"time"

	"github.com/sravya/xtrack/internal/model"
)

// Criteria selects a subset of expenses. A zero From or To leaves that side
// of the date range open. AnyCategory matches every category, including ones
// outside the configured list; otherwise an empty Categories set matches
// nothing.
type Criteria struct {
	AnyCategory bool
	Categories  model.CategorySet
	From        time.Time
	To          time.Time
	TitleQuery  string
}

// AllCategories returns criteria with no category, date or title
// restriction.
func AllCategories() Criteria {
	return Criteria{AnyCategory: true}
}

// matchesCategory reports whether c passes the category predicate.
func (c Criteria) matchesCategory(cat model.Category) bool {
	return c.AnyCategory || c.Categories.Has(cat)
}

// Filter returns the expenses matching every criterion, in input order.
func Filter(expenses []model.Expense, c Criteria) []model.Expense {
	from, to := model.DateOf(c.From), model.DateOf(c.To)
	query := strings.ToLower(strings.TrimSpace(c.TitleQuery))

	result := make([]model.Expense, 0, len(expenses))
	for _, e := range expenses {
		if !c.matchesCategory(e.Category) {
			continue
		}
		if !inDateRange(e.Date, from, to) {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(e.Title), query) {
			continue
		}
		result = append(result, e)
	}
	return result
}

// FilterByCategories returns expenses whose category is in set.
func FilterByCategories(expenses []model.Expense, set model.CategorySet) []model.Expense {
	var result []model.Expense
	for _, e := range expenses {
		if set.Has(e.Category) {
			result = append(result, e)
		}
	}
	return result
}

// FilterByDateRange returns expenses dated within [from, to], both inclusive.
func FilterByDateRange(expenses []model.Expense, from, to time.Time) []model.Expense {
	if from.IsZero() && to.IsZero() {
		return expenses
	}
	from, to = model.DateOf(from), model.DateOf(to)

	var result []model.Expense
	for _, e := range expenses {
		if inDateRange(e.Date, from, to) {
			result = append(result, e)
		}
	}
	return result
}

// FilterByTitle returns expenses whose title contains query, ignoring case.
func FilterByTitle(expenses []model.Expense, query string) []model.Expense {
	query = strings.TrimSpace(query)
	if query == "" {
		return expenses
	}
	var result []model.Expense
	for _, e := range expenses {
		if containsIgnoreCase(e.Title, query) {
			result = append(result, e)
		}
	}
	return result
}

// inDateRange expects from and to already truncated to dates.
func inDateRange(date, from, to time.Time) bool {
	if from.IsZero() && to.IsZero() {
		return true
	}
	if date.IsZero() {
		return false
	}
	d := model.DateOf(date)
	if !from.IsZero() && d.Before(from) {
		return false
	}
	if !to.IsZero() && d.After(to) {
		return false
	}
	return true
}

func containsIgnoreCase(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
