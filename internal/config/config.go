// Package config reads planwright settings from the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/alexanderramin/planwright/internal/scheduler"
)

// Config holds process-wide settings.
type Config struct {
	// DBPath is the SQLite file. Empty means the default under the home directory.
	DBPath      string
	LogUseCases bool
	HoursPerDay float64
	HorizonDays int
	AtRiskDays  int
}

// Default returns a Config with the scheduler defaults and no DB path.
func Default() Config {
	opts := scheduler.DefaultOptions()
	return Config{
		HoursPerDay: opts.HoursPerDay,
		HorizonDays: opts.HorizonDays,
		AtRiskDays:  opts.AtRiskBufferDays,
	}
}

// Load reads PLANWRIGHT_* environment variables over Default.
// Unparseable or out-of-range values are ignored.
func Load() Config {
	cfg := Default()

	if v := os.Getenv("PLANWRIGHT_DB"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("PLANWRIGHT_LOG_USE_CASES"); v != "" {
		cfg.LogUseCases, _ = strconv.ParseBool(v)
	}
	if v := os.Getenv("PLANWRIGHT_HOURS_PER_DAY"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 && f <= 24 {
			cfg.HoursPerDay = f
		}
	}
	if v := os.Getenv("PLANWRIGHT_HORIZON_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.HorizonDays = n
		}
	}
	if v := os.Getenv("PLANWRIGHT_AT_RISK_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.AtRiskDays = n
		}
	}

	return cfg
}

// ResolveDBPath returns DBPath, or ~/.planwright/planwright.db when unset.
func (c Config) ResolveDBPath() (string, error) {
	if c.DBPath != "" {
		return c.DBPath, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}
	return filepath.Join(home, ".planwright", "planwright.db"), nil
}

// SchedulerOptions maps the config onto scheduler.Options.
func (c Config) SchedulerOptions() scheduler.Options {
	return scheduler.Options{
		HoursPerDay:      c.HoursPerDay,
		HorizonDays:      c.HorizonDays,
		AtRiskBufferDays: c.AtRiskDays,
	}
}
