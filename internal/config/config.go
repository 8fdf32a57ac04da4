// Package config loads and saves the xtrack configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/shopspring/decimal"

	"github.com/sravya/xtrack/internal/model"
)

// Config holds all xtrack configuration.
type Config struct {
	General    GeneralConfig    `toml:"general"`
	Categories []string         `toml:"categories"`
	Budget     BudgetConfig     `toml:"budget"`
	Appearance AppearanceConfig `toml:"appearance"`
	Server     ServerConfig     `toml:"server"`
}

// GeneralConfig holds general preferences.
type GeneralConfig struct {
	DBPath    string `toml:"db_path,omitempty"`
	Currency  string `toml:"currency"`
	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`
}

// BudgetConfig holds per-category spending limits. Limits are written as
// quoted decimal strings; bare TOML numbers are accepted on load.
type BudgetConfig struct {
	Limits map[string]decimal.Decimal `toml:"limits,omitempty"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// ServerConfig holds settings for the HTTP server.
type ServerConfig struct {
	Addr               string `toml:"addr"`
	RefreshIntervalSec int    `toml:"refresh_interval_sec"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			Currency:  "₹",
			LogLevel:  "warn",
			LogFormat: "text",
		},
		Categories: model.DefaultCategories.Strings(),
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
		Server: ServerConfig{
			Addr:               "127.0.0.1:8080",
			RefreshIntervalSec: 10,
		},
	}
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "xtrack")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "xtrack")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// DataDir returns the XDG-compliant data directory.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "xtrack")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "xtrack")
}

// DBPath returns the expense database path: the configured one if set,
// otherwise expenses.db in the data directory.
func (c Config) DBPath() string {
	if c.General.DBPath != "" {
		return expandHome(c.General.DBPath)
	}
	return filepath.Join(DataDir(), "expenses.db")
}

// CategoryList returns the configured categories, or the defaults when the
// list is empty.
func (c Config) CategoryList() model.Categories {
	cats := model.ParseCategories(c.Categories)
	if len(cats) == 0 {
		return model.DefaultCategories
	}
	return cats
}

// BudgetLimits returns the configured limits. Entries Validate rejects are
// left out.
func (c Config) BudgetLimits() model.BudgetLimits {
	limits := make(model.BudgetLimits, len(c.Budget.Limits))
	for name, v := range c.Budget.Limits {
		if limitError(v) == nil {
			limits[model.Category(name)] = v
		}
	}
	return limits
}

// SetLimit sets the limit for a category.
func (c *Config) SetLimit(cat model.Category, amount decimal.Decimal) error {
	if err := limitError(amount); err != nil {
		return err
	}
	if c.Budget.Limits == nil {
		c.Budget.Limits = make(map[string]decimal.Decimal)
	}
	c.Budget.Limits[string(cat)] = amount
	return nil
}

// ClearLimit removes the limit for a category and reports whether one was set.
func (c *Config) ClearLimit(cat model.Category) bool {
	if _, ok := c.Budget.Limits[string(cat)]; !ok {
		return false
	}
	delete(c.Budget.Limits, string(cat))
	return true
}

func limitError(v decimal.Decimal) error {
	if v.IsNegative() {
		return model.ErrNegativeAmount
	}
	if !v.Equal(v.Round(2)) {
		return fmt.Errorf("%s has more than two decimal places", v)
	}
	return nil
}

// Validate reports every problem with the configuration at once.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.General.Currency) == "" {
		errs = append(errs, errors.New("general.currency must not be empty"))
	}
	for name, v := range c.Budget.Limits {
		if err := limitError(v); err != nil {
			errs = append(errs, fmt.Errorf("budget.limits.%s: %w", name, err))
		}
	}
	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr must not be empty"))
	}
	if c.Server.RefreshIntervalSec <= 0 {
		errs = append(errs, errors.New("server.refresh_interval_sec must be positive"))
	}
	return errors.Join(errs...)
}

// Load reads the config file, returning defaults if it doesn't exist.
func Load() (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(ConfigPath())
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	dir := ConfigDir()
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(ConfigPath(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
