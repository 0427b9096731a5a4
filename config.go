// Package cacheprobe configuration constants
package cacheprobe

import (
	"fmt"
	"strconv"
)

// Byte units
const (
	KiB = 1024
	MiB = 1024 * KiB
)

// PointerWidth is the size in bytes of one traversal slot.
const PointerWidth = strconv.IntSize / 8

// Size sweep defaults
const (
	// DefaultMinSizeBytes is the first candidate size; it is also the sweep step
	DefaultMinSizeBytes = 8 * KiB

	// DefaultMaxSizeBytes is the last candidate size (inclusive)
	DefaultMaxSizeBytes = 256 * KiB

	// DefaultHops is the traversal length of every warm-up and timed pass
	DefaultHops = 1000000

	// DefaultWindowSize is the number of differences summed per smoothing window
	DefaultWindowSize = 3

	// tailOutliers is the number of trailing differences left out of smoothing
	tailOutliers = 2
)

// Line size detection
const (
	// DefaultCollapseRatio is the factor by which the max hop jump must fall
	DefaultCollapseRatio = 10
)

// Memory parameters
const (
	// DefaultAlignment is the boundary every traversal buffer starts on
	DefaultAlignment = 4 * KiB
)

// Config holds the parameters of one probe run.
type Config struct {
	MinSizeBytes  int
	MaxSizeBytes  int
	Hops          int
	WindowSize    int
	CollapseRatio int
	Alignment     int

	// CPU is the logical CPU the measuring thread is pinned to; -1 keeps the
	// first CPU of the current affinity mask.
	CPU int

	// Counters enables hardware L1D miss counting around timed passes.
	Counters bool
}

// DefaultConfig returns the configuration of the zero-argument run.
func DefaultConfig() Config {
	return Config{
		MinSizeBytes:  DefaultMinSizeBytes,
		MaxSizeBytes:  DefaultMaxSizeBytes,
		Hops:          DefaultHops,
		WindowSize:    DefaultWindowSize,
		CollapseRatio: DefaultCollapseRatio,
		Alignment:     DefaultAlignment,
		CPU:           -1,
	}
}

// Validate reports the first parameter that would produce invalid geometry.
func (c Config) Validate() error {
	switch {
	case c.MinSizeBytes < PointerWidth:
		return NewInvalidArgError("Config", fmt.Sprintf("min size %d is below one slot", c.MinSizeBytes))
	case c.MaxSizeBytes < c.MinSizeBytes:
		return NewInvalidArgError("Config", fmt.Sprintf("max size %d is below min size %d", c.MaxSizeBytes, c.MinSizeBytes))
	case c.Hops <= 0:
		return NewInvalidArgError("Config", "hops must be positive")
	case c.WindowSize < 2:
		return ErrInvalidWindow
	case c.CollapseRatio < 2:
		return NewInvalidArgError("Config", "collapse ratio must be at least 2")
	case c.Alignment < PointerWidth || c.Alignment&(c.Alignment-1) != 0:
		return NewInvalidArgError("Config", fmt.Sprintf("alignment %d is not a power of two slot multiple", c.Alignment))
	}
	return nil
}
