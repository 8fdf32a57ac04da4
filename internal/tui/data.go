package tui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sravya/xtrack/internal/model"
	"github.com/sravya/xtrack/internal/store"
)

const storeTimeout = 10 * time.Second

// expensesLoadedMsg carries a fresh snapshot of the store. seq identifies
// the request so responses that arrive out of order are discarded.
type expensesLoadedMsg struct {
	seq      int
	expenses []model.Expense
	err      error
	took     time.Duration
}

// mutationMsg reports the outcome of a create, update or delete.
type mutationMsg struct {
	note string
	err  error
}

type refreshTickMsg struct{}

func loadCmd(repo store.Repository, seq int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()

		start := time.Now()
		expenses, err := repo.List(ctx)
		return expensesLoadedMsg{seq: seq, expenses: expenses, err: err, took: time.Since(start)}
	}
}

// saveCmd creates the expense when id is empty and updates it otherwise.
func saveCmd(repo store.Repository, id string, d model.Draft) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()

		if id == "" {
			e, err := repo.Create(ctx, d)
			if err != nil {
				return mutationMsg{err: fmt.Errorf("adding expense: %w", err)}
			}
			return mutationMsg{note: fmt.Sprintf("Added %q", e.Title)}
		}
		e, err := repo.Update(ctx, d.WithID(id))
		if err != nil {
			return mutationMsg{err: fmt.Errorf("updating expense: %w", err)}
		}
		return mutationMsg{note: fmt.Sprintf("Updated %q", e.Title)}
	}
}

func deleteCmd(repo store.Repository, e model.Expense) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()

		if err := repo.Delete(ctx, e.ID); err != nil {
			return mutationMsg{err: fmt.Errorf("deleting expense: %w", err)}
		}
		return mutationMsg{note: fmt.Sprintf("Deleted %q", e.Title)}
	}
}

func refreshTickCmd(every time.Duration) tea.Cmd {
	return tea.Tick(every, func(time.Time) tea.Msg {
		return refreshTickMsg{}
	})
}
