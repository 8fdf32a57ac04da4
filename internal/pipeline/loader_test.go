package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sravya/xtrack/internal/store"
)

func writeFile(t *testing.T, dir, name string, lines ...string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.jsonl",
		`{"title":"Coffee","amount":3,"date":"2024-01-01","category":"Food"}`,
		`garbage`,
	)
	writeFile(t, dir, "b.csv",
		`title,amount,date,category`,
		`Bus,2.40,2024-01-02,Transport`,
	)
	writeFile(t, dir, "c.json", `{not an array`)

	var calls atomic.Int32
	result, err := Load(dir, func(current, total int) {
		calls.Add(1)
		assert.Equal(t, 3, total)
	})
	require.NoError(t, err)

	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, 3, result.TotalFiles)
	assert.Equal(t, 2, result.ParsedFiles)
	assert.Equal(t, 1, result.FileErrors)
	assert.Equal(t, 1, result.ParseErrors)
	require.Len(t, result.Expenses, 2)
	assert.Equal(t, "Coffee", result.Expenses[0].Title)
	assert.Equal(t, "Bus", result.Expenses[1].Title)
}

func TestLoad_MissingDir(t *testing.T) {
	result, err := Load(filepath.Join(t.TempDir(), "nope"), nil)
	require.NoError(t, err)
	assert.Zero(t, result.TotalFiles)
}

func TestImport_SkipsUnchangedFiles(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := writeFile(t, dir, "export.jsonl",
		`{"id":"e1","title":"Rent","amount":"900","date":"2024-01-01","category":"Utilities"}`,
		`{"id":"e2","title":"Gym","amount":"40","date":"2024-01-02","category":"Health"}`,
	)
	repo := store.NewMemory()

	first, err := Import(ctx, dir, repo, repo, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, first.Saved)
	assert.Zero(t, first.Skipped)

	second, err := Import(ctx, dir, repo, repo, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, second.Skipped)
	assert.Zero(t, second.Saved)

	// Changing the file re-imports it; ids make the save an update.
	writeFile(t, dir, "export.jsonl",
		`{"id":"e1","title":"Rent","amount":"950","date":"2024-01-01","category":"Utilities"}`,
		`{"id":"e2","title":"Gym","amount":"40","date":"2024-01-02","category":"Health"}`,
		`{"id":"e3","title":"Doctor","amount":"60","date":"2024-01-03","category":"Health"}`,
	)
	later := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(path, later, later))

	third, err := Import(ctx, dir, repo, repo, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, third.Saved)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "950.00", list[0].Amount.StringFixed(2))
}

func TestImport_ReimportWithoutIDsUpdatesInPlace(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := writeFile(t, dir, "bank.csv",
		`date,title,amount,category`,
		`2024-02-01,Groceries,45.10,Food`,
	)
	repo := store.NewMemory()

	_, err := Import(ctx, dir, repo, repo, nil)
	require.NoError(t, err)

	writeFile(t, dir, "bank.csv",
		`date,title,amount,category`,
		`2024-02-01,Groceries,47.10,Food`,
		`2024-02-03,Bus pass,30,Transport`,
	)
	later := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(path, later, later))

	_, err = Import(ctx, dir, repo, repo, nil)
	require.NoError(t, err)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2, "the edited row replaces its earlier copy")
	assert.Equal(t, "47.10", list[0].Amount.StringFixed(2))
	assert.Equal(t, "Bus pass", list[1].Title)
}
