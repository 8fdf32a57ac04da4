package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sravya/xtrack/internal/model"
	"github.com/sravya/xtrack/internal/pipeline"
	"github.com/sravya/xtrack/internal/selection"
	"github.com/sravya/xtrack/internal/store"
)

const maxBodyBytes = 1 << 20

func (s *Service) handleRoot(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("xtrack server is running\n"))
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.snapshotStatus())
}

func (s *Service) handleEvents(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	events := make([]Event, len(s.events))
	copy(events, s.events)
	s.mu.RUnlock()

	writeJSON(w, http.StatusOK, events)
}

func (s *Service) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan Event, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	// Send current snapshot immediately.
	current := Event{
		Type:      EventSnapshot,
		Timestamp: time.Now(),
		Snapshot:  s.snapshotStatus().Summary,
	}
	writeSSE(w, current)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-ch:
			writeSSE(w, ev)
			flusher.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintf(w, "event: %s\n", ev.Type)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}

func (s *Service) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := s.repo.List(r.Context())
	if err != nil {
		s.serverError(w, "listing expenses", err)
		return
	}
	if expenses == nil {
		expenses = []model.Expense{}
	}
	writeJSON(w, http.StatusOK, expenses)
}

func (s *Service) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	e, err := s.repo.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.storeError(w, "getting expense", err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// handleSaveExpense creates an expense, or updates it when the body carries
// an id. An unknown id is stored as given.
func (s *Service) handleSaveExpense(w http.ResponseWriter, r *http.Request) {
	e, ok := decodeExpense(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	if e.ID == "" {
		created, err := s.repo.Create(ctx, e.Draft())
		if err != nil {
			s.storeError(w, "creating expense", err)
			return
		}
		s.Refresh(ctx)
		writeJSON(w, http.StatusCreated, created)
		return
	}

	updated, err := s.repo.Update(ctx, e)
	if errors.Is(err, store.ErrNotFound) {
		e = e.Draft().WithID(e.ID)
		if err := e.Validate(); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := s.repo.Save(ctx, e); err != nil {
			s.serverError(w, "saving expense", err)
			return
		}
		s.Refresh(ctx)
		writeJSON(w, http.StatusCreated, e)
		return
	}
	if err != nil {
		s.storeError(w, "updating expense", err)
		return
	}
	s.Refresh(ctx)
	writeJSON(w, http.StatusOK, updated)
}

func (s *Service) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	e, ok := decodeExpense(w, r)
	if !ok {
		return
	}
	e.ID = r.PathValue("id")

	updated, err := s.repo.Update(r.Context(), e)
	if err != nil {
		s.storeError(w, "updating expense", err)
		return
	}
	s.Refresh(r.Context())
	writeJSON(w, http.StatusOK, updated)
}

func (s *Service) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	if err := s.repo.Delete(r.Context(), r.PathValue("id")); err != nil {
		s.storeError(w, "deleting expense", err)
		return
	}
	s.Refresh(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

// handleAnalytics serves the dashboard for the filter given in the query:
// category (repeatable), from, to (YYYY-MM-DD) and q.
func (s *Service) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	c, err := s.criteriaFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	expenses, err := s.repo.List(r.Context())
	if err != nil {
		s.serverError(w, "listing expenses", err)
		return
	}
	writeJSON(w, http.StatusOK, pipeline.BuildDashboard(expenses, c, s.cfg.Limits, s.cfg.Categories))
}

func (s *Service) handleCategories(w http.ResponseWriter, _ *http.Request) {
	type entry struct {
		Name  string `json:"name"`
		Label string `json:"label"`
		Limit string `json:"limit,omitempty"`
	}
	out := make([]entry, 0, len(s.cfg.Categories))
	for _, c := range s.cfg.Categories {
		e := entry{Name: string(c), Label: c.Label()}
		if l, ok := s.cfg.Limits[c]; ok {
			e.Limit = l.StringFixed(2)
		}
		out = append(out, e)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Service) criteriaFromQuery(r *http.Request) (pipeline.Criteria, error) {
	q := r.URL.Query()
	var names []string
	for _, v := range q["category"] {
		names = append(names, strings.Split(v, ",")...)
	}
	c := selection.CriteriaFromNames(s.cfg.Categories, names)
	c.TitleQuery = q.Get("q")
	var err error
	if v := q.Get("from"); v != "" {
		if c.From, err = model.ParseDate(v); err != nil {
			return c, fmt.Errorf("invalid from date %q", v)
		}
	}
	if v := q.Get("to"); v != "" {
		if c.To, err = model.ParseDate(v); err != nil {
			return c, fmt.Errorf("invalid to date %q", v)
		}
	}
	return c, nil
}

func decodeExpense(w http.ResponseWriter, r *http.Request) (model.Expense, bool) {
	var e model.Expense
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&e); err != nil {
		writeError(w, http.StatusBadRequest, "invalid expense: "+err.Error())
		return e, false
	}
	return e, true
}

func (s *Service) storeError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case isValidation(err):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.serverError(w, op, err)
	}
}

func (s *Service) serverError(w http.ResponseWriter, op string, err error) {
	s.log.Error(op, "error", err)
	writeError(w, http.StatusInternalServerError, "internal error")
}

func isValidation(err error) bool {
	for _, target := range []error{
		model.ErrEmptyTitle, model.ErrNegativeAmount, model.ErrMissingDate,
		model.ErrMissingCategory, model.ErrMissingID,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
