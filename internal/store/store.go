// Package store persists expenses. SQLite backs the command line tools and
// the server; Memory backs tests and ephemeral sessions.
package store

import (
	"context"
	"errors"

	"github.com/sravya/xtrack/internal/model"
)

// ErrNotFound is returned when no expense has the requested id.
var ErrNotFound = errors.New("expense not found")

// Repository is the expense store contract. List returns expenses in the
// order they were first stored.
type Repository interface {
	List(ctx context.Context) ([]model.Expense, error)
	Get(ctx context.Context, id string) (model.Expense, error)
	Create(ctx context.Context, d model.Draft) (model.Expense, error)
	Update(ctx context.Context, e model.Expense) (model.Expense, error)
	Delete(ctx context.Context, id string) error
	Save(ctx context.Context, e model.Expense) error
	Close() error
}

// FileInfo holds the tracked mtime and size of an imported file.
type FileInfo struct {
	MtimeNs   int64
	SizeBytes int64
}

// FileTracker remembers which import files were already loaded.
type FileTracker interface {
	TrackedFiles(ctx context.Context) (map[string]FileInfo, error)
	TrackFile(ctx context.Context, path string, fi FileInfo) error
}
