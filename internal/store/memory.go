package store

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/sravya/xtrack/internal/model"
)

// Memory is an in-process Repository. It is safe for concurrent use and
// hands out copies, so callers never share state with the store.
type Memory struct {
	mu       sync.RWMutex
	order    []string
	expenses map[string]model.Expense
	files    map[string]FileInfo
}

var (
	_ Repository  = (*Memory)(nil)
	_ FileTracker = (*Memory)(nil)
)

// NewMemory returns a store seeded with the given expenses. Seeds without
// an id get one.
func NewMemory(seed ...model.Expense) *Memory {
	m := &Memory{
		expenses: make(map[string]model.Expense, len(seed)),
		files:    make(map[string]FileInfo),
	}
	for _, e := range seed {
		_ = m.Save(context.Background(), e)
	}
	return m
}

// List returns every expense in insertion order.
func (m *Memory) List(_ context.Context) ([]model.Expense, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]model.Expense, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.expenses[id])
	}
	return out, nil
}

// Get returns the expense with the given id.
func (m *Memory) Get(_ context.Context, id string) (model.Expense, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.expenses[id]
	if !ok {
		return model.Expense{}, ErrNotFound
	}
	return e, nil
}

// Create validates d, assigns a new id and stores it.
func (m *Memory) Create(_ context.Context, d model.Draft) (model.Expense, error) {
	if err := d.Validate(); err != nil {
		return model.Expense{}, err
	}
	e := d.WithID(uuid.NewString())

	m.mu.Lock()
	defer m.mu.Unlock()
	m.put(e)
	return e, nil
}

// Update replaces an existing expense.
func (m *Memory) Update(_ context.Context, e model.Expense) (model.Expense, error) {
	if err := e.Validate(); err != nil {
		return model.Expense{}, err
	}
	e = e.Draft().WithID(e.ID)

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.expenses[e.ID]; !ok {
		return model.Expense{}, ErrNotFound
	}
	m.expenses[e.ID] = e
	return e, nil
}

// Delete removes the expense with the given id.
func (m *Memory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.expenses[id]; !ok {
		return ErrNotFound
	}
	delete(m.expenses, id)
	for i, x := range m.order {
		if x == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

// Save inserts or overwrites e.
func (m *Memory) Save(_ context.Context, e model.Expense) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	e.Title = strings.TrimSpace(e.Title)
	if e.Title == "" {
		return model.ErrEmptyTitle
	}
	if e.Date.IsZero() {
		return model.ErrMissingDate
	}
	e.Date = model.DateOf(e.Date)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.put(e)
	return nil
}

// Close is a no-op.
func (m *Memory) Close() error { return nil }

// TrackedFiles returns the import files recorded so far.
func (m *Memory) TrackedFiles(_ context.Context) (map[string]FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]FileInfo, len(m.files))
	for k, v := range m.files {
		out[k] = v
	}
	return out, nil
}

// TrackFile records an imported file.
func (m *Memory) TrackFile(_ context.Context, path string, fi FileInfo) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[path] = fi
	return nil
}

// put must be called with mu held.
func (m *Memory) put(e model.Expense) {
	if _, ok := m.expenses[e.ID]; !ok {
		m.order = append(m.order, e.ID)
	}
	m.expenses[e.ID] = e
}
