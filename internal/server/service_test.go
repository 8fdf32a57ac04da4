package server

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sravya/xtrack/internal/model"
	"github.com/sravya/xtrack/internal/pipeline"
	"github.com/sravya/xtrack/internal/store"
)

func mustExpense(t *testing.T, title, amount, date string, cat model.Category) model.Expense {
	t.Helper()
	d, err := model.ParseDate(date)
	if err != nil {
		t.Fatal(err)
	}
	return model.Expense{Title: title, Amount: decimal.RequireFromString(amount), Date: d, Category: cat}
}

func TestDiffSnapshots(t *testing.T) {
	prev := Snapshot{Count: 10, TotalSpent: decimal.RequireFromString("100.50")}
	curr := Snapshot{Count: 12, TotalSpent: decimal.RequireFromString("130.60")}

	delta := diffSnapshots(prev, curr)
	if delta.Count != 2 {
		t.Fatalf("Count delta = %d, want 2", delta.Count)
	}
	if delta.TotalSpent.StringFixed(2) != "30.10" {
		t.Fatalf("TotalSpent delta = %s, want 30.10", delta.TotalSpent)
	}
	if delta.isZero() {
		t.Fatal("delta unexpectedly reported as zero")
	}
	if !diffSnapshots(curr, curr).isZero() {
		t.Fatal("identical snapshots produced a non-zero delta")
	}
}

func TestPublishEventRingBuffer(t *testing.T) {
	s := New(Config{
		Interval:     10 * time.Second,
		EventsBuffer: 2,
	}, store.NewMemory())

	s.publishEvent(Event{ID: 1})
	s.publishEvent(Event{ID: 2})
	s.publishEvent(Event{ID: 3})

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.events) != 2 {
		t.Fatalf("events len = %d, want 2", len(s.events))
	}
	if s.events[0].ID != 2 || s.events[1].ID != 3 {
		t.Fatalf("events ring contains IDs [%d, %d], want [2, 3]", s.events[0].ID, s.events[1].ID)
	}
}

func TestRefreshPublishesDeltasAndAlerts(t *testing.T) {
	ctx := context.Background()
	repo := store.NewMemory(mustExpense(t, "Groceries", "100", "2024-01-01", "Food"))
	s := New(Config{Limits: model.BudgetLimits{"Food": decimal.NewFromInt(120)}}, repo)

	s.Refresh(ctx)
	s.Refresh(ctx) // unchanged store publishes nothing

	if _, err := repo.Create(ctx, mustExpense(t, "Dinner", "50", "2024-01-03", "Food").Draft()); err != nil {
		t.Fatal(err)
	}
	s.Refresh(ctx)
	s.Refresh(ctx) // still over budget by the same amount: no repeat alert

	s.mu.RLock()
	events := append([]Event(nil), s.events...)
	s.mu.RUnlock()

	var types []string
	for _, ev := range events {
		types = append(types, ev.Type)
	}
	want := []string{EventSnapshot, EventExpenseDelta, EventBudgetAlert}
	if len(types) != len(want) {
		t.Fatalf("event types = %v, want %v", types, want)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Fatalf("event types = %v, want %v", types, want)
		}
	}

	alert := events[2]
	if len(alert.Alerts) != 1 || alert.Alerts[0].ExceededBy.StringFixed(2) != "30.00" {
		t.Errorf("budget alert = %+v, want Food over by 30.00", alert.Alerts)
	}
	if got := events[1].Delta.TotalSpent.StringFixed(2); got != "50.00" {
		t.Errorf("delta total = %s, want 50.00", got)
	}

	st := s.snapshotStatus()
	if st.RefreshCount != 4 || st.Summary.Count != 2 || st.Summary.TopCategory != "Food" {
		t.Errorf("status = %+v", st)
	}
}

func TestRefreshCountsImportedCategories(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	csv := "title,amount,date,category\n" +
		"Cash,10,2024-01-01,\n" +
		"Lunch,20,2024-01-02,Food\n" +
		"Vet,30,2024-01-03,Pets\n"
	if err := os.WriteFile(filepath.Join(dir, "export.csv"), []byte(csv), 0o600); err != nil {
		t.Fatal(err)
	}
	repo := store.NewMemory()
	if _, err := pipeline.Import(ctx, dir, repo, repo, nil); err != nil {
		t.Fatal(err)
	}

	s := New(Config{}, repo)
	s.Refresh(ctx)

	st := s.snapshotStatus()
	if st.Summary.Count != 3 {
		t.Fatalf("snapshot count = %d, want 3", st.Summary.Count)
	}
	if got := st.Summary.TotalSpent.StringFixed(2); got != "60.00" {
		t.Fatalf("snapshot total = %s, want 60.00", got)
	}
}

// stallingRepo blocks its first List until release is closed, returning the
// rows it saw before blocking.
type stallingRepo struct {
	store.Repository
	once    sync.Once
	entered chan struct{}
	release chan struct{}
	listed  chan struct{}
}

func (r *stallingRepo) List(ctx context.Context) ([]model.Expense, error) {
	first := false
	r.once.Do(func() { first = true })
	rows, err := r.Repository.List(ctx)
	if first {
		close(r.entered)
		<-r.release
	} else {
		select {
		case r.listed <- struct{}{}:
		default:
		}
	}
	return rows, err
}

func TestRefreshKeepsNewestSnapshot(t *testing.T) {
	ctx := context.Background()
	repo := &stallingRepo{
		Repository: store.NewMemory(),
		entered:    make(chan struct{}),
		release:    make(chan struct{}),
		listed:     make(chan struct{}, 1),
	}
	s := New(Config{}, repo)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		s.Refresh(ctx)
	}()
	<-repo.entered

	if _, err := repo.Create(ctx, mustExpense(t, "Lunch", "12", "2024-01-02", "Food").Draft()); err != nil {
		t.Fatal(err)
	}
	go func() {
		defer wg.Done()
		s.Refresh(ctx)
	}()

	// Give the second refresh a chance to overtake the stalled one.
	select {
	case <-repo.listed:
	case <-time.After(50 * time.Millisecond):
	}
	close(repo.release)
	wg.Wait()

	if st := s.snapshotStatus(); st.Summary.Count != 1 {
		t.Fatalf("snapshot count = %d, want 1", st.Summary.Count)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ev := range s.events {
		if ev.Delta.Count < 0 {
			t.Fatalf("event %d reports a negative count delta %d", ev.ID, ev.Delta.Count)
		}
	}
}
