package pipeline

import (
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sravya/xtrack/internal/model"
)

func TestAggregate_FoodScenario(t *testing.T) {
	filtered := Filter(sampleExpenses(), Criteria{Categories: model.NewCategorySet("Food")})
	require.Len(t, filtered, 2)

	assertDecimal(t, "TotalSpent", TotalSpent(filtered), "150")
	assert.Equal(t, 2, TransactionCount(filtered))

	top := TopCategory(filtered)
	assert.True(t, top.Found)
	assert.Equal(t, model.Category("Food"), top.Category)
	assertDecimal(t, "Top.Total", top.Total, "150")

	avg := AveragePerDay(filtered)
	assert.Equal(t, "50.00", avg.StringFixed(2))

	agg := Aggregate(filtered)
	assertDecimal(t, "agg.TotalSpent", agg.TotalSpent, "150")
	assert.Equal(t, 2, agg.Count)
	assert.Equal(t, top.Category, agg.Top.Category)
	assertDecimal(t, "agg.Top.Total", agg.Top.Total, "150")
	assertDecimal(t, "agg.AveragePerDay", agg.AveragePerDay, "50")
}

func TestAggregateByCategory_FirstAppearanceOrder(t *testing.T) {
	records := []model.Expense{
		expense("1", "a", "5", "2024-01-01", "Travel"),
		expense("2", "b", "7", "2024-01-01", "Food"),
		expense("3", "c", "1", "2024-01-01", "Travel"),
		expense("4", "d", "2", "2024-01-01", "Pets"),
	}
	totals := AggregateByCategory(records)
	assert.Equal(t, model.Categories{"Travel", "Food", "Pets"}, totals.Categories())
	assertDecimal(t, "Travel", totals.Total("Travel"), "6")
	assertDecimal(t, "Pets", totals.Total("Pets"), "2")

	_, ok := totals.Get("Health")
	assert.False(t, ok)
}

func TestAggregateByCategory_OrderIndependentSums(t *testing.T) {
	records := []model.Expense{
		expense("1", "a", "0.10", "2024-01-01", "Food"),
		expense("2", "b", "0.20", "2024-01-02", "Food"),
		expense("3", "c", "19.99", "2024-01-03", "Shopping"),
		expense("4", "d", "0.70", "2024-01-04", "Food"),
		expense("5", "e", "1000.01", "2024-01-05", "Travel"),
		expense("6", "f", "3.33", "2024-01-06", "Shopping"),
	}
	want := AggregateByCategory(records)

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 20; i++ {
		shuffled := append([]model.Expense(nil), records...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

		got := AggregateByCategory(shuffled)
		for _, c := range want.Categories() {
			assert.True(t, want.Total(c).Equal(got.Total(c)), "%s: %s != %s", c, want.Total(c), got.Total(c))
		}
	}
	assertDecimal(t, "Food", want.Total("Food"), "1.00")
}

func TestTotalSpent_EqualsCategorySum(t *testing.T) {
	records := append(sampleExpenses(),
		expense("4", "Pills", "12.34", "2024-02-01", "Health"),
		expense("5", "Undated", "5", "", "Work"),
	)
	totals := AggregateByCategory(records)
	assert.True(t, TotalSpent(records).Equal(totals.Sum()))

	assert.True(t, TotalSpent(nil).IsZero())
}

func TestTopCategory(t *testing.T) {
	assert.Equal(t, model.NoTopCategory, TopCategory(nil))
	assert.Equal(t, "N/A", TopCategory(nil).Name())

	single := []model.Expense{expense("1", "Gym", "25.50", "2024-01-01", "Health")}
	top := TopCategory(single)
	assert.Equal(t, model.Category("Health"), top.Category)
	assertDecimal(t, "Total", top.Total, "25.50")

	tied := []model.Expense{
		expense("1", "a", "10", "2024-01-01", "Work"),
		expense("2", "b", "4", "2024-01-01", "Food"),
		expense("3", "c", "6", "2024-01-01", "Food"),
	}
	assert.Equal(t, model.Category("Work"), TopCategory(tied).Category, "tie goes to the first category seen")
}

func TestAveragePerDay(t *testing.T) {
	assert.True(t, AveragePerDay(nil).IsZero())

	sameDay := []model.Expense{
		expense("1", "a", "10", "2024-05-05", "Food"),
		expense("2", "b", "15.25", "2024-05-05", "Food"),
	}
	assertDecimal(t, "same day", AveragePerDay(sameDay), "25.25")

	thirds := []model.Expense{
		expense("1", "a", "10", "2024-05-01", "Food"),
		expense("2", "b", "0", "2024-05-03", "Food"),
	}
	assertDecimal(t, "rounded", AveragePerDay(thirds), "3.33")

	undated := []model.Expense{expense("1", "a", "10", "", "Food")}
	assert.True(t, AveragePerDay(undated).IsZero())

	// 730486 calendar days from a mistyped year 0024 through 2024-01-01.
	typo := []model.Expense{
		expense("1", "a", "0", "0024-01-01", "Food"),
		expense("2", "b", "730486", "2024-01-01", "Food"),
	}
	assertDecimal(t, "long span", AveragePerDay(typo), "1")
}

func TestAggregateByCategoryPerMonth(t *testing.T) {
	records := []model.Expense{
		expense("1", "a", "60", "2024-02-10", "Food"),
		expense("2", "b", "40", "2024-01-20", "Food"),
		expense("3", "c", "30", "2024-02-11", "Transport"),
		expense("4", "d", "5", "", "Food"),
	}
	monthly := AggregateByCategoryPerMonth(records)

	assert.Equal(t, []model.MonthKey{"Feb 2024", "Jan 2024"}, monthly.Months(), "months keep first-seen order")

	feb, ok := monthly.Month("Feb 2024")
	require.True(t, ok)
	assertDecimal(t, "Feb Food", feb.Total("Food"), "60")
	assertDecimal(t, "Feb Transport", feb.Total("Transport"), "30")

	_, ok = monthly.Month("Mar 2024")
	assert.False(t, ok)
}

func TestAggregate_NegativeAmountsContributeNothing(t *testing.T) {
	bad := expense("2", "bad", "0", "2024-01-01", "Food")
	bad.Amount = decimal.NewFromInt(-50)
	records := []model.Expense{expense("1", "ok", "10", "2024-01-01", "Food"), bad}

	agg := Aggregate(records)
	assertDecimal(t, "TotalSpent", agg.TotalSpent, "10")
	assert.Equal(t, 2, agg.Count)
	assertDecimal(t, "Food", agg.ByCategory.Total("Food"), "10")
}

func TestAggregateDays(t *testing.T) {
	assert.Nil(t, AggregateDays(nil))

	records := []model.Expense{
		expense("1", "a", "10", "2024-01-03", "Food"),
		expense("2", "b", "5", "2024-01-01", "Food"),
		expense("3", "c", "2.50", "2024-01-03", "Transport"),
	}
	days := AggregateDays(records)
	require.Len(t, days, 3)

	assert.Equal(t, "2024-01-01", days[0].Date.Format(model.DateLayout))
	assert.True(t, days[1].Total.IsZero(), "gap day is zero-filled")
	assertDecimal(t, "Jan 3", days[2].Total, "12.50")
	assert.Equal(t, 2, days[2].Count)
}
