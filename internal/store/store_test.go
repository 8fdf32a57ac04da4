package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sravya/xtrack/internal/model"
)

func openSQLite(t *testing.T) Repository {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "expenses.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func openMemory(t *testing.T) Repository {
	t.Helper()
	return NewMemory()
}

var backends = []struct {
	name string
	open func(*testing.T) Repository
}{
	{"sqlite", openSQLite},
	{"memory", openMemory},
}

func draft(title, amount, date string, cat model.Category) model.Draft {
	d, _ := time.Parse(model.DateLayout, date)
	return model.Draft{Title: title, Amount: decimal.RequireFromString(amount), Date: d, Category: cat}
}

func TestRepository_CRUD(t *testing.T) {
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()
			repo := b.open(t)

			lunch, err := repo.Create(ctx, draft("Lunch", "12.50", "2024-01-05", "Food"))
			require.NoError(t, err)
			assert.NotEmpty(t, lunch.ID)

			taxi, err := repo.Create(ctx, draft("Taxi", "30", "2024-01-06", "Transport"))
			require.NoError(t, err)

			got, err := repo.Get(ctx, lunch.ID)
			require.NoError(t, err)
			assert.Equal(t, "Lunch", got.Title)
			assert.Equal(t, "12.50", got.Amount.StringFixed(2))
			assert.Equal(t, "2024-01-05", got.Date.Format(model.DateLayout))

			got.Title = "Team lunch"
			got.Amount = decimal.RequireFromString("48.20")
			updated, err := repo.Update(ctx, got)
			require.NoError(t, err)
			assert.Equal(t, "Team lunch", updated.Title)

			list, err := repo.List(ctx)
			require.NoError(t, err)
			require.Len(t, list, 2)
			assert.Equal(t, lunch.ID, list[0].ID, "update keeps insertion order")
			assert.Equal(t, "48.20", list[0].Amount.StringFixed(2))
			assert.Equal(t, taxi.ID, list[1].ID)

			require.NoError(t, repo.Delete(ctx, lunch.ID))
			_, err = repo.Get(ctx, lunch.ID)
			assert.ErrorIs(t, err, ErrNotFound)

			list, err = repo.List(ctx)
			require.NoError(t, err)
			assert.Len(t, list, 1)
		})
	}
}

func TestRepository_NotFound(t *testing.T) {
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()
			repo := b.open(t)

			_, err := repo.Get(ctx, "missing")
			assert.ErrorIs(t, err, ErrNotFound)

			assert.ErrorIs(t, repo.Delete(ctx, "missing"), ErrNotFound)

			e := draft("Ghost", "1", "2024-01-01", "Food").WithID("missing")
			_, err = repo.Update(ctx, e)
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestRepository_Validation(t *testing.T) {
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()
			repo := b.open(t)

			_, err := repo.Create(ctx, draft("", "1", "2024-01-01", "Food"))
			assert.ErrorIs(t, err, model.ErrEmptyTitle)

			_, err = repo.Create(ctx, draft("Refund", "-5", "2024-01-01", "Food"))
			assert.ErrorIs(t, err, model.ErrNegativeAmount)

			_, err = repo.Create(ctx, model.Draft{Title: "Undated", Category: "Food"})
			assert.ErrorIs(t, err, model.ErrMissingDate)

			_, err = repo.Create(ctx, draft("Odd", "1", "2024-01-01", ""))
			assert.ErrorIs(t, err, model.ErrMissingCategory)
		})
	}
}

func TestRepository_SaveUpserts(t *testing.T) {
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()
			repo := b.open(t)

			e := draft("Imported", "10", "2024-02-01", "Shopping").WithID("imp-1")
			require.NoError(t, repo.Save(ctx, e))

			e.Amount = decimal.RequireFromString("11.75")
			require.NoError(t, repo.Save(ctx, e))

			list, err := repo.List(ctx)
			require.NoError(t, err)
			require.Len(t, list, 1)
			assert.Equal(t, "11.75", list[0].Amount.StringFixed(2))

			require.NoError(t, repo.Save(ctx, draft("No id", "0", "2024-02-02", "Food").WithID("")))
			list, err = repo.List(ctx)
			require.NoError(t, err)
			require.Len(t, list, 2)
			assert.NotEmpty(t, list[1].ID)
		})
	}
}

func TestRepository_ExactDecimalRoundTrip(t *testing.T) {
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()
			repo := b.open(t)

			for i := 0; i < 10; i++ {
				_, err := repo.Create(ctx, draft("Coin", "0.10", "2024-03-01", "Food"))
				require.NoError(t, err)
			}
			list, err := repo.List(ctx)
			require.NoError(t, err)

			sum := decimal.Zero
			for _, e := range list {
				sum = sum.Add(e.Amount)
			}
			assert.True(t, sum.Equal(decimal.NewFromInt(1)), "sum = %s", sum)
		})
	}
}

func TestFileTracker(t *testing.T) {
	ctx := context.Background()
	sqlite, err := Open(filepath.Join(t.TempDir(), "expenses.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlite.Close() })

	for name, tr := range map[string]FileTracker{"sqlite": sqlite, "memory": NewMemory()} {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, tr.TrackFile(ctx, "/tmp/a.csv", FileInfo{MtimeNs: 1, SizeBytes: 10}))
			require.NoError(t, tr.TrackFile(ctx, "/tmp/a.csv", FileInfo{MtimeNs: 2, SizeBytes: 20}))

			files, err := tr.TrackedFiles(ctx)
			require.NoError(t, err)
			assert.Equal(t, map[string]FileInfo{"/tmp/a.csv": {MtimeNs: 2, SizeBytes: 20}}, files)
		})
	}
}

func TestOpen_Reopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "expenses.db")

	s, err := Open(path)
	require.NoError(t, err)
	_, err = s.Create(ctx, draft("Persisted", "5", "2024-04-01", "Health"))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
