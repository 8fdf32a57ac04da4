package config

import (
	"fmt"

	"github.com/caarlos0/env/v9"
	"github.com/joho/godotenv"
)

// EnvOverrides holds settings that environment variables may override.
type EnvOverrides struct {
	DBPath    string `env:"XTRACK_DB"`
	Addr      string `env:"XTRACK_ADDR"`
	LogLevel  string `env:"XTRACK_LOG_LEVEL"`
	LogFormat string `env:"XTRACK_LOG_FORMAT"`
	Currency  string `env:"XTRACK_CURRENCY"`
}

// LoadDotEnv loads a .env file from the working directory when present.
// Variables already set in the environment win.
func LoadDotEnv() {
	_ = godotenv.Load()
}

// ApplyEnv overlays environment overrides onto cfg.
func ApplyEnv(cfg *Config) error {
	var o EnvOverrides
	if err := env.Parse(&o); err != nil {
		return fmt.Errorf("parsing environment: %w", err)
	}
	if o.DBPath != "" {
		cfg.General.DBPath = o.DBPath
	}
	if o.Addr != "" {
		cfg.Server.Addr = o.Addr
	}
	if o.LogLevel != "" {
		cfg.General.LogLevel = o.LogLevel
	}
	if o.LogFormat != "" {
		cfg.General.LogFormat = o.LogFormat
	}
	if o.Currency != "" {
		cfg.General.Currency = o.Currency
	}
	return nil
}
