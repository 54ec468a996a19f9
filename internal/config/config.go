// Package config loads runtime configuration from environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the process-level configuration. Per-user scheduling settings
// (grace minutes, reset time) live in the persisted state, not here.
type Config struct {
	// DataDir holds the shared state file and the history journal. Empty
	// means ~/.petprogress.
	DataDir string `env:"PETPROGRESS_DATA_DIR"`
	// Timezone day keys are computed in. Empty means the system zone.
	Timezone string `env:"PETPROGRESS_TZ"`
	// SnoozeMinutes is the default snooze duration.
	SnoozeMinutes int `env:"PETPROGRESS_SNOOZE_MINUTES" envDefault:"15"`
	// StageConfig optionally points at a stage table JSON file.
	StageConfig string `env:"PETPROGRESS_STAGE_CONFIG"`
	// Journal disables the history journal when false.
	Journal bool `env:"PETPROGRESS_JOURNAL" envDefault:"true"`
}

// Load parses the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Location resolves the configured timezone.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}
