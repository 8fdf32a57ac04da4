package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/sravya/xtrack/internal/model"
)

func TestLoad_DefaultsWhenMissing(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if Exists() {
		t.Error("Exists() = true before any save")
	}
	if got := cfg.CategoryList(); len(got) != 8 || got[0] != "Food" {
		t.Errorf("CategoryList() = %v, want the 8 defaults", got)
	}
	if cfg.General.Currency != "₹" {
		t.Errorf("Currency = %q, want ₹", cfg.General.Currency)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg := DefaultConfig()
	cfg.Categories = []string{"Rent", "Food", "Fun"}
	if err := cfg.SetLimit("Food", decimal.NewFromInt(120)); err != nil {
		t.Fatal(err)
	}
	if err := cfg.SetLimit("Fun", decimal.RequireFromString("49.99")); err != nil {
		t.Fatal(err)
	}
	cfg.Appearance.Theme = "catppuccin-mocha"

	if err := Save(cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !Exists() {
		t.Fatal("Exists() = false after save")
	}

	got, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if want := (model.Categories{"Rent", "Food", "Fun"}); len(got.CategoryList()) != 3 || got.CategoryList()[0] != want[0] {
		t.Errorf("CategoryList() = %v, want %v", got.CategoryList(), want)
	}
	limits := got.BudgetLimits()
	if limits["Food"].StringFixed(2) != "120.00" {
		t.Errorf("Food limit = %s, want 120.00", limits["Food"])
	}
	if limits["Fun"].StringFixed(2) != "49.99" {
		t.Errorf("Fun limit = %s, want 49.99", limits["Fun"])
	}
	data, err := os.ReadFile(ConfigPath())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `Fun = "49.99"`) {
		t.Errorf("limits not written as decimal strings:\n%s", data)
	}
	if got.Appearance.Theme != "catppuccin-mocha" {
		t.Errorf("Theme = %q", got.Appearance.Theme)
	}
}

func TestLoad_ParseError(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	if err := os.MkdirAll(filepath.Join(dir, "xtrack"), 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(ConfigPath(), []byte("categories = [broken"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestSetLimit(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.SetLimit("Food", decimal.NewFromInt(10)); err != nil {
		t.Fatal(err)
	}
	if err := cfg.SetLimit("Food", decimal.NewFromInt(-1)); err == nil {
		t.Error("negative limit accepted")
	}
	if err := cfg.SetLimit("Food", decimal.RequireFromString("10.005")); err == nil {
		t.Error("sub-cent limit accepted")
	}
	if got := cfg.BudgetLimits()["Food"].String(); got != "10" {
		t.Errorf("Food limit = %s, want 10 after rejected updates", got)
	}

	if !cfg.ClearLimit("Food") {
		t.Error("ClearLimit reported no limit")
	}
	if _, ok := cfg.BudgetLimits()["Food"]; ok {
		t.Error("limit still present after removal")
	}
	if cfg.ClearLimit("Food") {
		t.Error("ClearLimit removed a limit twice")
	}
}

func TestLoad_LimitsKeepExactDecimals(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	if err := os.MkdirAll(filepath.Join(dir, "xtrack"), 0o750); err != nil {
		t.Fatal(err)
	}
	body := "[budget.limits]\nFood = \"100.10\"\nTravel = 250\nFun = \"100.005\"\n"
	if err := os.WriteFile(ConfigPath(), []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	limits := cfg.BudgetLimits()
	if got := limits["Food"].StringFixed(2); got != "100.10" {
		t.Errorf("Food limit = %s, want 100.10", got)
	}
	if got := limits["Travel"].StringFixed(2); got != "250.00" {
		t.Errorf("Travel limit = %s, want 250.00", got)
	}
	if _, ok := limits["Fun"]; ok {
		t.Error("sub-cent limit was rounded instead of rejected")
	}
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "budget.limits.Fun") {
		t.Errorf("Validate() = %v, want a budget.limits.Fun error", err)
	}
}

func TestValidate_CollectsErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.General.Currency = ""
	cfg.Budget.Limits = map[string]decimal.Decimal{"Food": decimal.NewFromInt(-5)}
	cfg.Server.RefreshIntervalSec = 0

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"currency", "budget.limits.Food", "refresh_interval_sec"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %q", err, want)
		}
	}
}

func TestDBPath(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/data")
	cfg := DefaultConfig()
	if got := cfg.DBPath(); got != filepath.Join("/data", "xtrack", "expenses.db") {
		t.Errorf("DBPath() = %q", got)
	}
	cfg.General.DBPath = "/tmp/x.db"
	if got := cfg.DBPath(); got != "/tmp/x.db" {
		t.Errorf("DBPath() = %q", got)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("XTRACK_DB", "/tmp/env.db")
	t.Setenv("XTRACK_ADDR", ":9999")
	t.Setenv("XTRACK_CURRENCY", "$")

	cfg := DefaultConfig()
	if err := ApplyEnv(&cfg); err != nil {
		t.Fatalf("ApplyEnv: %v", err)
	}
	if cfg.General.DBPath != "/tmp/env.db" || cfg.Server.Addr != ":9999" || cfg.General.Currency != "$" {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.General.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want untouched default", cfg.General.LogLevel)
	}
}

func TestResolveCategory(t *testing.T) {
	cats := model.DefaultCategories

	got, err := ResolveCategory(cats, "  food ")
	if err != nil || got != "Food" {
		t.Fatalf("ResolveCategory(food) = %q, %v", got, err)
	}

	_, err = ResolveCategory(cats, "Trvel")
	var unknown *UnknownCategoryError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownCategoryError, got %v", err)
	}
	if unknown.Suggestion != "Travel" {
		t.Errorf("Suggestion = %q, want Travel", unknown.Suggestion)
	}

	_, err = ResolveCategory(cats, "Spaceships")
	if !errors.As(err, &unknown) || unknown.Suggestion != "" {
		t.Errorf("expected no suggestion, got %v", err)
	}
}
