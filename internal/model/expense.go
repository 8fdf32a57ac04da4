// Package model defines domain types for expenses, categories and the
// aggregates derived from them.
package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar date format used at every boundary.
const DateLayout = "2006-01-02"

// Validation errors returned by Draft.Validate and Expense.Validate.
var (
	ErrEmptyTitle      = errors.New("title is required")
	ErrNegativeAmount  = errors.New("amount must not be negative")
	ErrMissingDate     = errors.New("date is required")
	ErrMissingCategory = errors.New("category is required")
	ErrMissingID       = errors.New("id is required")
)

// Expense is one recorded expense.
type Expense struct {
	ID       string
	Title    string
	Amount   decimal.Decimal
	Date     time.Time
	Category Category
}

// Draft is an expense that has not been stored yet.
type Draft struct {
	Title    string
	Amount   decimal.Decimal
	Date     time.Time
	Category Category
}

// Validate checks the fields every stored expense must carry.
func (d Draft) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return ErrEmptyTitle
	}
	if d.Amount.IsNegative() {
		return ErrNegativeAmount
	}
	if d.Date.IsZero() {
		return ErrMissingDate
	}
	if strings.TrimSpace(string(d.Category)) == "" {
		return ErrMissingCategory
	}
	return nil
}

// WithID turns the draft into an expense with the given id.
func (d Draft) WithID(id string) Expense {
	return Expense{
		ID:       id,
		Title:    strings.TrimSpace(d.Title),
		Amount:   d.Amount,
		Date:     DateOf(d.Date),
		Category: d.Category,
	}
}

// Draft returns the expense without its id.
func (e Expense) Draft() Draft {
	return Draft{Title: e.Title, Amount: e.Amount, Date: e.Date, Category: e.Category}
}

// Validate checks the expense fields, including the id.
func (e Expense) Validate() error {
	if e.ID == "" {
		return ErrMissingID
	}
	return e.Draft().Validate()
}

type expenseJSON struct {
	ID       string          `json:"id,omitempty"`
	Title    string          `json:"title"`
	Amount   decimal.Decimal `json:"amount"`
	Date     string          `json:"date"`
	Category Category        `json:"category"`
}

// MarshalJSON writes the date as YYYY-MM-DD.
func (e Expense) MarshalJSON() ([]byte, error) {
	var date string
	if !e.Date.IsZero() {
		date = e.Date.Format(DateLayout)
	}
	return json.Marshal(expenseJSON{
		ID: e.ID, Title: e.Title, Amount: e.Amount, Date: date, Category: e.Category,
	})
}

// UnmarshalJSON accepts the amount as a number or a string and the date as
// YYYY-MM-DD or RFC 3339.
func (e *Expense) UnmarshalJSON(b []byte) error {
	var raw expenseJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	var date time.Time
	if raw.Date != "" {
		d, err := ParseDate(raw.Date)
		if err != nil {
			return fmt.Errorf("date %q: %w", raw.Date, err)
		}
		date = d
	}
	*e = Expense{ID: raw.ID, Title: raw.Title, Amount: raw.Amount, Date: date, Category: raw.Category}
	return nil
}

// DateOf truncates t to its calendar date at UTC midnight. The calendar
// fields are taken from t's own location so a date parsed in local time
// keeps its day.
func DateOf(t time.Time) time.Time {
	if t.IsZero() {
		return time.Time{}
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD date, falling back to RFC 3339 timestamps.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return DateOf(t), nil
}

// DaysBetween returns the number of whole calendar days from a to b. It
// counts days directly, so spans longer than a time.Duration still work.
func DaysBetween(a, b time.Time) int {
	return int((DateOf(b).Unix() - DateOf(a).Unix()) / secondsPerDay)
}

const secondsPerDay = 24 * 60 * 60
