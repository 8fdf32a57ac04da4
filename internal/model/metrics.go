package model

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// MonthKeyLayout formats a date as its month bucket label, e.g. "Jan 2024".
const MonthKeyLayout = "Jan 2006"

// MonthKey identifies a calendar month bucket.
type MonthKey string

// MonthKeyOf returns the bucket label for t.
func MonthKeyOf(t time.Time) MonthKey {
	return MonthKey(t.Format(MonthKeyLayout))
}

// CategoryTotals maps categories to summed amounts and remembers the order
// in which each category was first added. The zero value is ready to use.
type CategoryTotals struct {
	order []Category
	sums  map[Category]decimal.Decimal
}

// Add accumulates amount under c.
func (t *CategoryTotals) Add(c Category, amount decimal.Decimal) {
	if t.sums == nil {
		t.sums = make(map[Category]decimal.Decimal)
	}
	cur, ok := t.sums[c]
	if !ok {
		t.order = append(t.order, c)
	}
	t.sums[c] = cur.Add(amount)
}

// Get returns the total for c and whether c was ever added.
func (t CategoryTotals) Get(c Category) (decimal.Decimal, bool) {
	v, ok := t.sums[c]
	return v, ok
}

// Total returns the total for c, zero when absent.
func (t CategoryTotals) Total(c Category) decimal.Decimal {
	return t.sums[c]
}

// Categories returns the keys in first-added order.
func (t CategoryTotals) Categories() Categories {
	out := make(Categories, len(t.order))
	copy(out, t.order)
	return out
}

// Len returns the number of categories.
func (t CategoryTotals) Len() int { return len(t.order) }

// Sum returns the total across all categories.
func (t CategoryTotals) Sum() decimal.Decimal {
	sum := decimal.Zero
	for _, c := range t.order {
		sum = sum.Add(t.sums[c])
	}
	return sum
}

// MarshalJSON encodes the totals as an object with keys in insertion order.
func (t CategoryTotals) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range t.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(string(c))
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.WriteString(`"` + t.sums[c].StringFixed(2) + `"`)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MonthlyTotals holds per-category totals for each month, months in order
// of first appearance. The zero value is ready to use.
type MonthlyTotals struct {
	order  []MonthKey
	months map[MonthKey]*CategoryTotals
}

// Add accumulates amount under month and category.
func (m *MonthlyTotals) Add(month MonthKey, c Category, amount decimal.Decimal) {
	if m.months == nil {
		m.months = make(map[MonthKey]*CategoryTotals)
	}
	ct, ok := m.months[month]
	if !ok {
		ct = &CategoryTotals{}
		m.months[month] = ct
		m.order = append(m.order, month)
	}
	ct.Add(c, amount)
}

// Months returns the month keys in first-appearance order.
func (m MonthlyTotals) Months() []MonthKey {
	out := make([]MonthKey, len(m.order))
	copy(out, m.order)
	return out
}

// Month returns the category totals for one month.
func (m MonthlyTotals) Month(k MonthKey) (CategoryTotals, bool) {
	ct, ok := m.months[k]
	if !ok {
		return CategoryTotals{}, false
	}
	return *ct, true
}

// Len returns the number of months.
func (m MonthlyTotals) Len() int { return len(m.order) }

// TopCategory is the category with the highest total. Found is false when
// there was nothing to rank.
type TopCategory struct {
	Category Category        `json:"category"`
	Total    decimal.Decimal `json:"total"`
	Found    bool            `json:"found"`
}

// NoTopCategory is returned for an empty record set.
var NoTopCategory = TopCategory{}

// Name returns the category name, or "N/A" when there is none.
func (t TopCategory) Name() string {
	if !t.Found {
		return "N/A"
	}
	return string(t.Category)
}

// Metrics holds the headline numbers for a record set.
type Metrics struct {
	TotalSpent       decimal.Decimal `json:"total_spent"`
	TransactionCount int             `json:"transaction_count"`
	Top              TopCategory     `json:"top_category"`
	AveragePerDay    decimal.Decimal `json:"average_per_day"`
}

// DailyTotal holds the amount spent on one calendar day.
type DailyTotal struct {
	Date  time.Time       `json:"date"`
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
}

// PieSlice is one entry of a category distribution chart.
type PieSlice struct {
	Name  string          `json:"name"`
	Value decimal.Decimal `json:"value"`
}

// StackedRow is one month of a stacked bar chart. Values holds an entry for
// every category in Categories, zero when nothing was spent.
type StackedRow struct {
	Month      MonthKey
	Categories Categories
	Values     map[Category]decimal.Decimal
}

// Value returns the amount for c in this month.
func (r StackedRow) Value(c Category) decimal.Decimal {
	return r.Values[c]
}

// MarshalJSON flattens the row into {"month": ..., "<category>": ...} with
// category keys in series order.
func (r StackedRow) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"month":`)
	m, err := json.Marshal(string(r.Month))
	if err != nil {
		return nil, err
	}
	buf.Write(m)
	for _, c := range r.Categories {
		k, err := json.Marshal(string(c))
		if err != nil {
			return nil, err
		}
		buf.WriteByte(',')
		buf.Write(k)
		buf.WriteString(`:"` + r.Values[c].StringFixed(2) + `"`)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
