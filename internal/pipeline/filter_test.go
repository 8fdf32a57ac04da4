package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sravya/xtrack/internal/model"
)

func ids(expenses []model.Expense) []string {
	out := make([]string, len(expenses))
	for i, e := range expenses {
		out[i] = e.ID
	}
	return out
}

func TestFilter_AllCategoriesIsIdentity(t *testing.T) {
	records := sampleExpenses()
	got := Filter(records, AllCategories())
	assert.Equal(t, records, got)
}

func TestFilter_AllCategoriesKeepsUnknownCategories(t *testing.T) {
	records := append(sampleExpenses(),
		expense("4", "Vet", "50", "2024-01-04", "Pets"),
		expense("5", "Cash", "1000", "2024-01-05", "Uncategorized"),
	)
	got := Filter(records, AllCategories())
	assert.Equal(t, []string{"1", "2", "3", "4", "5"}, ids(got))

	d := BuildDashboard(records, AllCategories(), nil, model.DefaultCategories)
	assertDecimal(t, "total", d.Metrics.TotalSpent, "1230")
	assert.Equal(t, 5, d.Metrics.TransactionCount)
}

func TestFilter_EmptyCategorySetMatchesNothing(t *testing.T) {
	records := sampleExpenses()
	for _, set := range []model.CategorySet{nil, {}} {
		c := Criteria{Categories: set, TitleQuery: "bus"}
		assert.Empty(t, Filter(records, c))
	}
}

func TestFilter_Criteria(t *testing.T) {
	records := []model.Expense{
		expense("1", "Morning Coffee", "3.50", "2024-01-01", "Food"),
		expense("2", "Taxi home", "18", "2024-01-02", "Transport"),
		expense("3", "coffee beans", "12", "2024-01-05", "Shopping"),
		expense("4", "Team lunch", "40", "2024-01-10", "Food"),
		expense("5", "Mystery", "1", "", "Food"),
	}
	day := func(s string) time.Time {
		d, err := model.ParseDate(s)
		require.NoError(t, err)
		return d
	}

	tests := []struct {
		name string
		c    Criteria
		want []string
	}{
		{"single category", Criteria{Categories: model.NewCategorySet("Food")}, []string{"1", "4", "5"}},
		{"title is case-insensitive", Criteria{Categories: model.DefaultCategories.Set(), TitleQuery: "COFFEE"}, []string{"1", "3"}},
		{"whitespace query ignored", Criteria{Categories: model.DefaultCategories.Set(), TitleQuery: "   "}, []string{"1", "2", "3", "4", "5"}},
		{"query is trimmed", Criteria{Categories: model.DefaultCategories.Set(), TitleQuery: " lunch "}, []string{"4"}},
		{"from inclusive", Criteria{Categories: model.DefaultCategories.Set(), From: day("2024-01-05")}, []string{"3", "4"}},
		{"to inclusive", Criteria{Categories: model.DefaultCategories.Set(), To: day("2024-01-02")}, []string{"1", "2"}},
		{"range", Criteria{Categories: model.DefaultCategories.Set(), From: day("2024-01-02"), To: day("2024-01-05")}, []string{"2", "3"}},
		{"all combined", Criteria{Categories: model.NewCategorySet("Food", "Shopping"), From: day("2024-01-01"), To: day("2024-01-31"), TitleQuery: "coffee"}, []string{"1", "3"}},
		{"unknown category excluded", Criteria{Categories: model.NewCategorySet("Pets")}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Filter(records, tt.c)))
		})
	}
}

func TestFilter_BoundsCompareCalendarDates(t *testing.T) {
	records := []model.Expense{expense("1", "Late snack", "4", "2024-03-10", "Food")}
	// A bound carrying a time of day still includes the whole day.
	to := time.Date(2024, 3, 10, 0, 0, 1, 0, time.UTC)
	from := time.Date(2024, 3, 10, 23, 59, 0, 0, time.UTC)
	got := Filter(records, Criteria{Categories: model.NewCategorySet("Food"), From: from, To: to})
	assert.Len(t, got, 1)
}

func TestFilter_DoesNotMutateInput(t *testing.T) {
	records := sampleExpenses()
	before := append([]model.Expense(nil), records...)
	_ = Filter(records, Criteria{Categories: model.NewCategorySet("Transport")})
	assert.Equal(t, before, records)
}

func TestFilterHelpers(t *testing.T) {
	records := sampleExpenses()

	assert.Equal(t, []string{"3"}, ids(FilterByCategories(records, model.NewCategorySet("Transport"))))
	assert.Equal(t, records, FilterByDateRange(records, time.Time{}, time.Time{}))

	from, _ := model.ParseDate("2024-01-02")
	assert.Equal(t, []string{"2", "3"}, ids(FilterByDateRange(records, from, time.Time{})))

	assert.Equal(t, records, FilterByTitle(records, ""))
	assert.Equal(t, []string{"2"}, ids(FilterByTitle(records, "DINNER")))
}
