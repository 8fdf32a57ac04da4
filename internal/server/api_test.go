package server

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sravya/xtrack/internal/model"
	"github.com/sravya/xtrack/internal/store"
)

func newTestServer(t *testing.T, seed ...model.Expense) (*httptest.Server, *store.Memory) {
	t.Helper()
	repo := store.NewMemory(seed...)
	s := New(Config{Limits: model.BudgetLimits{"Food": decimal.NewFromInt(120)}}, repo)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts, repo
}

func do(t *testing.T, method, url, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestAPI_Root(t *testing.T) {
	ts, _ := newTestServer(t)
	resp := do(t, http.MethodGet, ts.URL+"/", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestAPI_ExpenseLifecycle(t *testing.T) {
	ts, repo := newTestServer(t)

	resp := do(t, http.MethodPost, ts.URL+"/api/expenses",
		`{"title":"Lunch","amount":12.5,"date":"2024-01-05","category":"Food"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created model.Expense
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	require.NotEmpty(t, created.ID)

	resp = do(t, http.MethodGet, ts.URL+"/api/expenses/"+created.ID, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// POST with an id edits, as the browser client does.
	resp = do(t, http.MethodPost, ts.URL+"/api/expenses",
		`{"id":"`+created.ID+`","title":"Team lunch","amount":"40","date":"2024-01-05","category":"Food"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, http.MethodPut, ts.URL+"/api/expenses/"+created.ID,
		`{"title":"Team lunch","amount":"45.10","date":"2024-01-05","category":"Food"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	got, err := repo.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Team lunch", got.Title)
	assert.Equal(t, "45.10", got.Amount.StringFixed(2))

	resp = do(t, http.MethodGet, ts.URL+"/api/expenses", "")
	var list []model.Expense
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	assert.Len(t, list, 1)

	resp = do(t, http.MethodDelete, ts.URL+"/api/expenses/"+created.ID, "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = do(t, http.MethodDelete, ts.URL+"/api/expenses/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = do(t, http.MethodGet, ts.URL+"/api/expenses/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPI_PostWithUnknownIDStoresIt(t *testing.T) {
	ts, repo := newTestServer(t)
	resp := do(t, http.MethodPost, ts.URL+"/api/expenses",
		`{"id":"legacy-7","title":"Bus","amount":2,"date":"2024-01-05","category":"Transport"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	_, err := repo.Get(context.Background(), "legacy-7")
	assert.NoError(t, err)
}

func TestAPI_PostWithUnknownIDTrimsTitle(t *testing.T) {
	ts, _ := newTestServer(t)
	resp := do(t, http.MethodPost, ts.URL+"/api/expenses",
		`{"id":"legacy-8","title":"  Bus  ","amount":2,"date":"2024-01-05","category":"Transport"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var saved model.Expense
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&saved))
	assert.Equal(t, "Bus", saved.Title)

	resp = do(t, http.MethodGet, ts.URL+"/api/expenses/legacy-8", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var stored model.Expense
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&stored))
	assert.Equal(t, saved, stored, "the response matches what was stored")
}

func TestAPI_CategoryQueryIgnoresCase(t *testing.T) {
	ts, _ := newTestServer(t,
		mustExpense(t, "Groceries", "100", "2024-01-01", "Food"),
		mustExpense(t, "Bus", "30", "2024-01-02", "Transport"),
	)

	resp := do(t, http.MethodGet, ts.URL+"/api/analytics?category=food", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body struct {
		Expenses []model.Expense `json:"expenses"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Expenses, 1)
	assert.Equal(t, "Groceries", body.Expenses[0].Title)
}

func TestAPI_Validation(t *testing.T) {
	ts, _ := newTestServer(t)
	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"title":`},
		{"empty title", `{"title":"","amount":1,"date":"2024-01-01","category":"Food"}`},
		{"negative amount", `{"title":"x","amount":-1,"date":"2024-01-01","category":"Food"}`},
		{"bad date", `{"title":"x","amount":1,"date":"01/01/2024","category":"Food"}`},
		{"missing category", `{"title":"x","amount":1,"date":"2024-01-01"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, http.MethodPost, ts.URL+"/api/expenses", tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestAPI_Analytics(t *testing.T) {
	ts, _ := newTestServer(t,
		mustExpense(t, "Groceries", "100", "2024-01-01", "Food"),
		mustExpense(t, "Dinner", "50", "2024-01-03", "Food"),
		mustExpense(t, "Bus", "30", "2024-01-02", "Transport"),
	)

	resp := do(t, http.MethodGet, ts.URL+"/api/analytics?category=Food", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Expenses []model.Expense `json:"expenses"`
		Metrics  struct {
			TotalSpent       string `json:"total_spent"`
			TransactionCount int    `json:"transaction_count"`
			AveragePerDay    string `json:"average_per_day"`
			Top              struct {
				Category string `json:"category"`
			} `json:"top_category"`
		} `json:"metrics"`
		Alerts []struct {
			Category   string `json:"category"`
			ExceededBy string `json:"exceeded_by"`
		} `json:"alerts"`
		Stacked []map[string]string `json:"stacked"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))

	assert.Len(t, body.Expenses, 2)
	assert.Equal(t, "150", body.Metrics.TotalSpent)
	assert.Equal(t, 2, body.Metrics.TransactionCount)
	assert.Equal(t, "50", body.Metrics.AveragePerDay)
	assert.Equal(t, "Food", body.Metrics.Top.Category)
	require.Len(t, body.Alerts, 1)
	assert.Equal(t, "30", body.Alerts[0].ExceededBy)
	require.Len(t, body.Stacked, 1)
	assert.Equal(t, "Jan 2024", body.Stacked[0]["month"])

	resp = do(t, http.MethodGet, ts.URL+"/api/analytics?from=2024-01-02&to=2024-01-02", "")
	var ranged struct {
		Expenses []model.Expense `json:"expenses"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&ranged))
	require.Len(t, ranged.Expenses, 1)
	assert.Equal(t, "Bus", ranged.Expenses[0].Title)

	resp = do(t, http.MethodGet, ts.URL+"/api/analytics?from=yesterday", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_StreamSendsSnapshot(t *testing.T) {
	ts, _ := newTestServer(t, mustExpense(t, "Groceries", "100", "2024-01-01", "Food"))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/v1/stream", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))
	line, err := bufio.NewReader(resp.Body).ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "event: snapshot\n", line)
}
