// Package config carries the run-level knobs the core does not decide for
// itself: the missing-data sentinel, the forced-alight counting policy,
// dwell-model constants, RNG seed defaults, and the hosted wall-clock
// timeout. Loaded the way the teacher's sibling examples load theirs:
// defaults first, then an optional YAML overlay.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full set of operator-tunable knobs for a run.
type Config struct {
	Dwell     DwellConfig     `yaml:"dwell"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Execution ExecutionConfig `yaml:"execution"`
	LogLevel  string          `yaml:"log_level"`
}

// DwellConfig holds the per-event dwell-time constants used by Bus (spec
// §4.6/glossary "Dwell"). Setting Enabled to false collapses every dwell
// phase to zero duration.
type DwellConfig struct {
	Enabled       bool    `yaml:"enabled"`
	AlightTimeMin float64 `yaml:"alight_time_min"`
	BoardTimeMin  float64 `yaml:"board_time_min"`
	DoorOpenMin   float64 `yaml:"door_open_min"`
	DoorCloseMin  float64 `yaml:"door_close_min"`
}

// MetricsConfig carries the two Open-Question resolutions from spec §9.
type MetricsConfig struct {
	// SlotSentinel fills per-slot cells with no observations (spec §7).
	SlotSentinel float64 `yaml:"slot_sentinel"`
	// GlobalDefault fills the global summary when a monitor never saw a
	// tally (spec §7: "global summary uses 0.0 default").
	GlobalDefault float64 `yaml:"global_default"`
	// CountForcedAlightTowardCustomers resolves spec §9's second open
	// question. This implementation counts a passenger toward
	// customers_count at the moment they board, matching invariant 5
	// ("customers_count equals the number of boarded events") regardless
	// of how they later alight, so this flag exists for documentation and
	// is not consulted by the boarding/alighting code path.
	CountForcedAlightTowardCustomers bool `yaml:"count_forced_alight_toward_customers"`
}

// ExecutionConfig controls RNG seeding and the hosted wall-clock budget.
type ExecutionConfig struct {
	// Seed is the RNG seed to use when the run command's --seed flag is 0.
	// Zero here too means "derive from the wall clock and record the
	// derived value in the run's logs" (spec §5, Determinism: "seed source
	// must be explicit").
	Seed int64 `yaml:"seed"`
	// WallClockTimeout is the wall-clock budget for a hosted run; zero
	// means no budget. No code in this module reads it: the run command
	// always runs the simulation to completion.
	WallClockTimeout time.Duration `yaml:"wall_clock_timeout"`
}

// Default returns the baseline configuration every run starts from.
func Default() *Config {
	return &Config{
		Dwell: DwellConfig{
			Enabled:       true,
			AlightTimeMin: 0.05,
			BoardTimeMin:  0.05,
			DoorOpenMin:   0.1,
			DoorCloseMin:  0.1,
		},
		Metrics: MetricsConfig{
			SlotSentinel:                     -99999.9,
			GlobalDefault:                    0.0,
			CountForcedAlightTowardCustomers: false,
		},
		Execution: ExecutionConfig{
			Seed:             0,
			WallClockTimeout: 300 * time.Second,
		},
		LogLevel: "info",
	}
}

// Load reads path as a YAML overlay on top of Default. A missing file is
// not an error; it simply leaves the defaults in place.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}
