package chm

import (
	"fmt"
	"math"
)

const (
	DefaultInitialCapacity  = 16
	DefaultLoadFactor       = 0.75
	DefaultConcurrencyLevel = 16

	// MinLoadFactor bounds table memory to 1/MinLoadFactor slots per entry.
	// There is no upper bound: a load factor too large for any table to
	// reach disables growth.
	MinLoadFactor = 0.01

	maxCapacity = 1 << 30
	maxSegments = 1 << 16
)

// Config holds the sizing hints for a Map. Hints only shape the initial
// table layout; the map grows as needed.
type Config struct {
	InitialCapacity  int     `json:"initial_capacity,omitempty"`
	LoadFactor       float32 `json:"load_factor,omitempty"`
	ConcurrencyLevel int     `json:"concurrency_level,omitempty"`
	Observer         string  `json:"observer,omitempty"` // observability registry name; empty disables events.
}

// DefaultConfig returns the default sizing: 16 entries, 0.75 load factor,
// 16 segments.
func DefaultConfig() Config {
	return Config{
		InitialCapacity:  DefaultInitialCapacity,
		LoadFactor:       DefaultLoadFactor,
		ConcurrencyLevel: DefaultConcurrencyLevel,
	}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.InitialCapacity > 0 {
		c.InitialCapacity = source.InitialCapacity
	}
	if source.LoadFactor > 0 {
		c.LoadFactor = source.LoadFactor
	}
	if source.ConcurrencyLevel > 0 {
		c.ConcurrencyLevel = source.ConcurrencyLevel
	}
	if source.Observer != "" {
		c.Observer = source.Observer
	}
}

// Validate reports the first sizing hint that cannot build a map.
func (c *Config) Validate() error {
	if c.InitialCapacity < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidCapacity, c.InitialCapacity)
	}
	if !(c.LoadFactor >= MinLoadFactor) || math.IsInf(float64(c.LoadFactor), 0) {
		return fmt.Errorf("%w: %v", ErrInvalidLoadFactor, c.LoadFactor)
	}
	if c.ConcurrencyLevel <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidConcurrency, c.ConcurrencyLevel)
	}
	return nil
}

// layout returns the segment count (a power of two) and the initial table
// length of each segment (also a power of two).
func (c *Config) layout() (segments, perSegment int) {
	level := min(c.ConcurrencyLevel, maxSegments)
	segments = 1
	for segments < level {
		segments <<= 1
	}

	capacity := min(c.InitialCapacity, maxCapacity)
	per := capacity / segments
	if per*segments < capacity {
		per++
	}

	perSegment = 1
	for perSegment < per {
		perSegment <<= 1
	}
	return segments, perSegment
}
