// Package server exposes the expense store over HTTP: the REST API, an
// analytics endpoint and a live event stream of snapshot changes.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/sravya/xtrack/internal/model"
	"github.com/sravya/xtrack/internal/pipeline"
	"github.com/sravya/xtrack/internal/store"
)

// Config controls the server runtime behavior.
type Config struct {
	Addr         string
	Interval     time.Duration
	EventsBuffer int
	Categories   model.Categories
	Limits       model.BudgetLimits
}

// Snapshot is a compact state of the whole store for status and events.
type Snapshot struct {
	At            time.Time       `json:"at"`
	Count         int             `json:"count"`
	TotalSpent    decimal.Decimal `json:"total_spent"`
	AveragePerDay decimal.Decimal `json:"average_per_day"`
	TopCategory   string          `json:"top_category"`
	Alerts        []model.Alert   `json:"alerts"`
}

// Delta captures the change between two snapshots.
type Delta struct {
	Count      int             `json:"count"`
	TotalSpent decimal.Decimal `json:"total_spent"`
}

func (d Delta) isZero() bool {
	return d.Count == 0 && d.TotalSpent.IsZero()
}

// Event types.
const (
	EventSnapshot     = "snapshot"
	EventExpenseDelta = "expense_delta"
	EventBudgetAlert  = "budget_alert"
)

// Event is emitted whenever the snapshot changes.
type Event struct {
	ID        int64         `json:"id"`
	Type      string        `json:"type"`
	Timestamp time.Time     `json:"timestamp"`
	Snapshot  Snapshot      `json:"snapshot"`
	Delta     Delta         `json:"delta"`
	Alerts    []model.Alert `json:"alerts,omitempty"`
}

// Status is served at /v1/status.
type Status struct {
	StartedAt          time.Time `json:"started_at"`
	LastRefreshAt      time.Time `json:"last_refresh_at"`
	RefreshIntervalSec int       `json:"refresh_interval_sec"`
	RefreshCount       int64     `json:"refresh_count"`
	Summary            Snapshot  `json:"summary"`
	LastError          string    `json:"last_error,omitempty"`
	EventCount         int       `json:"event_count"`
	SubscriberCount    int       `json:"subscriber_count"`
}

// Service serves the HTTP API and tracks store snapshots.
type Service struct {
	cfg  Config
	repo store.Repository
	log  *slog.Logger

	// refreshMu orders whole refreshes so an older List never replaces a
	// newer snapshot.
	refreshMu sync.Mutex

	mu            sync.RWMutex
	startedAt     time.Time
	lastRefreshAt time.Time
	refreshCount  int64
	lastError     string
	hasSnapshot   bool
	snapshot      Snapshot
	nextEventID   int64
	events        []Event

	nextSubID int
	subs      map[int]chan Event
}

// New returns a service over repo with the provided config.
func New(cfg Config, repo store.Repository) *Service {
	if cfg.Interval < 2*time.Second {
		cfg.Interval = 10 * time.Second
	}
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8080"
	}
	if len(cfg.Categories) == 0 {
		cfg.Categories = model.DefaultCategories
	}

	return &Service{
		cfg:       cfg,
		repo:      repo,
		log:       slog.Default().With("component", "server"),
		startedAt: time.Now(),
		subs:      make(map[int]chan Event),
	}
}

// Handler returns the HTTP handler with every route mounted.
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /v1/status", s.handleStatus)
	mux.HandleFunc("GET /v1/events", s.handleEvents)
	mux.HandleFunc("GET /v1/stream", s.handleStream)

	mux.HandleFunc("GET /api/expenses", s.handleListExpenses)
	mux.HandleFunc("GET /api/expenses/{id}", s.handleGetExpense)
	mux.HandleFunc("POST /api/expenses", s.handleSaveExpense)
	mux.HandleFunc("PUT /api/expenses/{id}", s.handleUpdateExpense)
	mux.HandleFunc("DELETE /api/expenses/{id}", s.handleDeleteExpense)
	mux.HandleFunc("GET /api/analytics", s.handleAnalytics)
	mux.HandleFunc("GET /api/categories", s.handleCategories)

	return s.withCORS(s.withLogging(mux))
}

// Run serves HTTP on cfg.Addr and refreshes the snapshot on an interval
// until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Service) Serve(ctx context.Context, ln net.Listener) error {
	server := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	// Seed initial snapshot so status is useful immediately.
	s.Refresh(ctx)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		ticker := time.NewTicker(s.cfg.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				s.Refresh(gctx)
			}
		}
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// Refresh reloads the store and publishes an event when the snapshot
// changed since the last refresh.
func (s *Service) Refresh(ctx context.Context) {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	expenses, err := s.repo.List(ctx)
	now := time.Now()
	if err != nil {
		s.mu.Lock()
		s.lastError = err.Error()
		s.lastRefreshAt = now
		s.refreshCount++
		s.mu.Unlock()
		s.log.Error("refresh failed", "error", err)
		return
	}

	dash := pipeline.BuildDashboard(expenses, pipeline.AllCategories(), s.cfg.Limits, s.cfg.Categories)
	snap := snapshotFromMetrics(dash.Metrics, dash.Alerts, now)

	var pending []Event

	s.mu.Lock()
	prev := s.snapshot
	prevExists := s.hasSnapshot

	s.hasSnapshot = true
	s.snapshot = snap
	s.lastRefreshAt = now
	s.refreshCount++
	s.lastError = ""

	if !prevExists {
		pending = append(pending, s.newEvent(EventSnapshot, snap, Delta{}, nil))
	} else if delta := diffSnapshots(prev, snap); !delta.isZero() {
		pending = append(pending, s.newEvent(EventExpenseDelta, snap, delta, nil))
	}
	if changed := pipeline.ChangedAlerts(prev.Alerts, snap.Alerts); len(changed) > 0 {
		pending = append(pending, s.newEvent(EventBudgetAlert, snap, Delta{}, changed))
	}
	s.mu.Unlock()

	for _, ev := range pending {
		s.publishEvent(ev)
	}
}

// newEvent must be called with mu held.
func (s *Service) newEvent(typ string, snap Snapshot, delta Delta, alerts []model.Alert) Event {
	s.nextEventID++
	return Event{
		ID:        s.nextEventID,
		Type:      typ,
		Timestamp: snap.At,
		Snapshot:  snap,
		Delta:     delta,
		Alerts:    alerts,
	}
}

func snapshotFromMetrics(m model.Metrics, alerts []model.Alert, at time.Time) Snapshot {
	return Snapshot{
		At:            at,
		Count:         m.TransactionCount,
		TotalSpent:    m.TotalSpent,
		AveragePerDay: m.AveragePerDay,
		TopCategory:   m.Top.Name(),
		Alerts:        alerts,
	}
}

func diffSnapshots(prev, curr Snapshot) Delta {
	return Delta{
		Count:      curr.Count - prev.Count,
		TotalSpent: curr.TotalSpent.Sub(prev.TotalSpent),
	}
}

func (s *Service) publishEvent(ev Event) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}

	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	s.mu.Unlock()
}

func (s *Service) snapshotStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Status{
		StartedAt:          s.startedAt,
		LastRefreshAt:      s.lastRefreshAt,
		RefreshIntervalSec: int(s.cfg.Interval.Seconds()),
		RefreshCount:       s.refreshCount,
		Summary:            s.snapshot,
		LastError:          s.lastError,
		EventCount:         len(s.events),
		SubscriberCount:    len(s.subs),
	}
}

func (s *Service) addSubscriber(ch chan Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	return id
}

func (s *Service) removeSubscriber(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}
