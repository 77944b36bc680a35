package loops

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tailored-agentic-units/chmset/chm"
	"github.com/tailored-agentic-units/chmset/store"
)

const (
	defaultGoroutines    = 8
	defaultTrials        = 3
	defaultIterations    = 100000
	defaultKeyRange      = 10000
	defaultRemovePercent = 10
	defaultInsertPercent = 10
	defaultCodec         = "json"
	defaultSnapshotKey   = "setloop/final"
)

// Config holds the workload shape of a stress run plus the settings the
// command uses to persist its final set.
type Config struct {
	Goroutines    int          `json:"goroutines,omitempty"`
	Trials        int          `json:"trials,omitempty"`
	Iterations    int          `json:"iterations,omitempty"` // operations per goroutine per trial
	KeyRange      int          `json:"key_range,omitempty"`
	RemovePercent int          `json:"remove_percent,omitempty"`
	InsertPercent int          `json:"insert_percent,omitempty"`
	Seed          uint64       `json:"seed,omitempty"` // 0 picks a random seed
	Set           chm.Config   `json:"set"`
	Store         store.Config `json:"store"`
	Codec         string       `json:"codec,omitempty"`
	SnapshotKey   string       `json:"snapshot_key,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults for all sections.
func DefaultConfig() Config {
	return Config{
		Goroutines:    defaultGoroutines,
		Trials:        defaultTrials,
		Iterations:    defaultIterations,
		KeyRange:      defaultKeyRange,
		RemovePercent: defaultRemovePercent,
		InsertPercent: defaultInsertPercent,
		Set:           chm.DefaultConfig(),
		Store:         store.DefaultConfig(),
		Codec:         defaultCodec,
		SnapshotKey:   defaultSnapshotKey,
	}
}

// Merge applies non-zero values from source into c, delegating to each
// section's Merge method. A zero percentage cannot override a default.
func (c *Config) Merge(source *Config) {
	c.Set.Merge(&source.Set)
	c.Store.Merge(&source.Store)

	if source.Goroutines > 0 {
		c.Goroutines = source.Goroutines
	}
	if source.Trials > 0 {
		c.Trials = source.Trials
	}
	if source.Iterations > 0 {
		c.Iterations = source.Iterations
	}
	if source.KeyRange > 0 {
		c.KeyRange = source.KeyRange
	}
	if source.RemovePercent > 0 {
		c.RemovePercent = source.RemovePercent
	}
	if source.InsertPercent > 0 {
		c.InsertPercent = source.InsertPercent
	}
	if source.Seed != 0 {
		c.Seed = source.Seed
	}
	if source.Codec != "" {
		c.Codec = source.Codec
	}
	if source.SnapshotKey != "" {
		c.SnapshotKey = source.SnapshotKey
	}
}

// Validate reports the first setting that cannot drive a run.
func (c *Config) Validate() error {
	switch {
	case c.Goroutines <= 0:
		return fmt.Errorf("%w: goroutines must be positive, got %d", ErrInvalidConfig, c.Goroutines)
	case c.Trials <= 0:
		return fmt.Errorf("%w: trials must be positive, got %d", ErrInvalidConfig, c.Trials)
	case c.Iterations <= 0:
		return fmt.Errorf("%w: iterations must be positive, got %d", ErrInvalidConfig, c.Iterations)
	case c.KeyRange <= 0:
		return fmt.Errorf("%w: key range must be positive, got %d", ErrInvalidConfig, c.KeyRange)
	case c.RemovePercent < 0 || c.InsertPercent < 0:
		return fmt.Errorf("%w: percentages must not be negative", ErrInvalidConfig)
	case c.RemovePercent+c.InsertPercent > 100:
		return fmt.Errorf("%w: remove and insert percentages sum to %d", ErrInvalidConfig, c.RemovePercent+c.InsertPercent)
	}
	return c.Set.Validate()
}

// LoadConfig reads a JSON config file, merges it with defaults, and returns
// the resulting Config.
func LoadConfig(filename string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var loaded Config
	if err := json.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.Merge(&loaded)
	return &cfg, nil
}
