package cacheprobe

import (
	"fmt"
	"time"
)

// LevelSample is one point of the size sweep: the buffer size in bytes and
// the time of one timed pass over it.
type LevelSample struct {
	Bytes   int           `json:"bytes"`
	Elapsed time.Duration `json:"elapsed_ns"`

	L1DMisses uint64 `json:"l1d_misses,omitempty"`
	Counted   bool   `json:"counted,omitempty"`
}

// SweepLevelSizes measures buffers of minBytes, 2*minBytes, ... up to and
// including maxBytes. The stride grows with the buffer so every pass stays
// near hops hops no matter how large the buffer is.
func SweepLevelSizes(m Measurer, minBytes, maxBytes, hops int) ([]LevelSample, error) {
	minSlots := minBytes / PointerWidth
	maxSlots := maxBytes / PointerWidth
	if minSlots <= 0 {
		return nil, NewInvalidArgError("SweepLevelSizes", fmt.Sprintf("min size %d is below one slot", minBytes))
	}
	if hops <= 0 {
		return nil, NewInvalidArgError("SweepLevelSizes", "hops must be positive")
	}

	samples := make([]LevelSample, 0, maxSlots/minSlots)
	for slots := minSlots; slots <= maxSlots; slots += minSlots {
		step := max(1, slots/hops)
		stats, err := m.Throughput(slots, step, hops)
		if err != nil {
			return nil, fmt.Errorf("measuring %d bytes: %w", slots*PointerWidth, err)
		}
		samples = append(samples, LevelSample{
			Bytes:     slots * PointerWidth,
			Elapsed:   stats.Elapsed,
			L1DMisses: stats.L1DMisses,
			Counted:   stats.Counted,
		})
	}
	return samples, nil
}

// windowedJump is a smoothed marginal cost tagged with the size it ends at.
type windowedJump struct {
	bytes int
	sum   time.Duration
}

// SelectCacheSize returns the size at which traversal time grew fastest over
// window consecutive size increments. The last two increments are left out
// as noise. On ties the smallest size wins.
func SelectCacheSize(samples []LevelSample, window int) (int, error) {
	if window < 2 {
		return 0, ErrInvalidWindow
	}
	if len(samples) < window+tailOutliers+1 {
		return 0, fmt.Errorf("%d samples, window %d: %w", len(samples), window, ErrTooFewSamples)
	}

	diffs := make([]LevelSample, 0, len(samples)-1)
	for i := 1; i < len(samples); i++ {
		diffs = append(diffs, LevelSample{
			Bytes:   samples[i].Bytes,
			Elapsed: samples[i].Elapsed - samples[i-1].Elapsed,
		})
	}

	jumps := make([]windowedJump, 0, len(diffs))
	for i := window - 1; i < len(diffs)-tailOutliers; i++ {
		var sum time.Duration
		for j := i + 1 - window; j <= i; j++ {
			sum += diffs[j].Elapsed
		}
		jumps = append(jumps, windowedJump{bytes: diffs[i].Bytes, sum: sum})
	}

	best := jumps[0]
	for _, j := range jumps[1:] {
		if j.sum > best.sum {
			best = j
		}
	}
	return best.bytes, nil
}
