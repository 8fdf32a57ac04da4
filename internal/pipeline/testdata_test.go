package pipeline

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/sravya/xtrack/internal/model"
)

func expense(id, title, amount, date string, cat model.Category) model.Expense {
	e := model.Expense{ID: id, Title: title, Amount: decimal.RequireFromString(amount), Category: cat}
	if date != "" {
		t, err := model.ParseDate(date)
		if err != nil {
			panic(err)
		}
		e.Date = t
	}
	return e
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// sampleExpenses is the three-record fixture used across the pipeline tests.
func sampleExpenses() []model.Expense {
	return []model.Expense{
		expense("1", "Groceries", "100", "2024-01-01", "Food"),
		expense("2", "Dinner out", "50", "2024-01-03", "Food"),
		expense("3", "Bus pass", "30", "2024-01-02", "Transport"),
	}
}

func assertDecimal(t *testing.T, name string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(dec(want)) {
		t.Errorf("%s = %s, want %s", name, got, want)
	}
}
