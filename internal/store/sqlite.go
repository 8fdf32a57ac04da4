package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sravya/xtrack/internal/model"

	_ "modernc.org/sqlite" // register sqlite driver
)

// SQLite stores expenses in a SQLite database.
type SQLite struct {
	db *sql.DB
}

var (
	_ Repository  = (*SQLite)(nil)
	_ FileTracker = (*SQLite)(nil)
)

// Open opens or creates the database at dbPath and applies migrations.
func Open(dbPath string) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o750); err != nil {
		return nil, fmt.Errorf("creating db dir: %w", err)
	}

	if err := runMigrations(dbPath); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening expense db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging expense db: %w", err)
	}

	return &SQLite{db: db}, nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

const selectExpense = `SELECT id, title, amount, date, category FROM expenses`

// List returns every expense in insertion order.
func (s *SQLite) List(ctx context.Context) ([]model.Expense, error) {
	rows, err := s.db.QueryContext(ctx, selectExpense+` ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("listing expenses: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var expenses []model.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

// Get returns the expense with the given id.
func (s *SQLite) Get(ctx context.Context, id string) (model.Expense, error) {
	row := s.db.QueryRowContext(ctx, selectExpense+` WHERE id = ?`, id)
	e, err := scanExpense(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Expense{}, ErrNotFound
	}
	return e, err
}

// Create validates d, assigns a new id and stores it.
func (s *SQLite) Create(ctx context.Context, d model.Draft) (model.Expense, error) {
	if err := d.Validate(); err != nil {
		return model.Expense{}, err
	}
	e := d.WithID(uuid.NewString())
	now := timestamp()

	_, err := s.db.ExecContext(ctx, `INSERT INTO expenses
		(id, title, amount, date, category, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Title, e.Amount.String(), e.Date.Format(model.DateLayout), string(e.Category), now, now,
	)
	if err != nil {
		return model.Expense{}, fmt.Errorf("inserting expense: %w", err)
	}
	return e, nil
}

// Update replaces the stored fields of an existing expense.
func (s *SQLite) Update(ctx context.Context, e model.Expense) (model.Expense, error) {
	if err := e.Validate(); err != nil {
		return model.Expense{}, err
	}
	e = e.Draft().WithID(e.ID)

	res, err := s.db.ExecContext(ctx, `UPDATE expenses
		SET title = ?, amount = ?, date = ?, category = ?, updated_at = ?
		WHERE id = ?`,
		e.Title, e.Amount.String(), e.Date.Format(model.DateLayout), string(e.Category), timestamp(), e.ID,
	)
	if err != nil {
		return model.Expense{}, fmt.Errorf("updating expense %s: %w", e.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return model.Expense{}, err
	}
	if n == 0 {
		return model.Expense{}, ErrNotFound
	}
	return e, nil
}

// Delete removes the expense with the given id.
func (s *SQLite) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting expense %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Save inserts e, or overwrites the stored expense with the same id. An
// empty id gets a fresh one. Imported records may carry a zero amount, so
// only the title and date are required here.
func (s *SQLite) Save(ctx context.Context, e model.Expense) error {
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
	now := timestamp()

	_, err := s.db.ExecContext(ctx, `INSERT INTO expenses
		(id, title, amount, date, category, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			amount = excluded.amount,
			date = excluded.date,
			category = excluded.category,
			updated_at = excluded.updated_at`,
		e.ID, e.Title, e.Amount.String(), model.DateOf(e.Date).Format(model.DateLayout), string(e.Category), now, now,
	)
	if err != nil {
		return fmt.Errorf("saving expense %s: %w", e.ID, err)
	}
	return nil
}

// Count returns the number of stored expenses.
func (s *SQLite) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM expenses`).Scan(&count)
	return count, err
}

// TrackedFiles returns file_path -> FileInfo for every imported file.
func (s *SQLite) TrackedFiles(ctx context.Context) (map[string]FileInfo, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT file_path, mtime_ns, size_bytes FROM import_files`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	result := make(map[string]FileInfo)
	for rows.Next() {
		var path string
		var fi FileInfo
		if err := rows.Scan(&path, &fi.MtimeNs, &fi.SizeBytes); err != nil {
			return nil, err
		}
		result[path] = fi
	}
	return result, rows.Err()
}

// TrackFile records that path was imported at the given mtime and size.
func (s *SQLite) TrackFile(ctx context.Context, path string, fi FileInfo) error {
	_, err := s.db.ExecContext(ctx, `INSERT OR REPLACE INTO import_files
		(file_path, mtime_ns, size_bytes, imported_at) VALUES (?, ?, ?, ?)`,
		path, fi.MtimeNs, fi.SizeBytes, timestamp())
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanExpense(row scanner) (model.Expense, error) {
	var (
		e                      model.Expense
		amount, date, category string
	)
	if err := row.Scan(&e.ID, &e.Title, &amount, &date, &category); err != nil {
		return model.Expense{}, err
	}
	// Hand-edited rows read bad amounts as zero and bad dates as unset.
	e.Amount, _ = decimal.NewFromString(amount)
	e.Date, _ = time.Parse(model.DateLayout, date)
	e.Category = model.Category(category)
	return e, nil
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
