// Package cacheprobe hardware counter integration for timed passes
package cacheprobe

import (
	"fmt"
	"strings"
)

// MissCounter counts first-level data cache read misses of the calling
// thread between Start and Stop.
type MissCounter interface {
	Start() error
	Stop() (uint64, error)
	Close() error
}

// MissesPerHop returns the L1D misses per hop of a counted sample, or -1
// when the sample was not counted.
func MissesPerHop(s LevelSample, hops int) float64 {
	if !s.Counted || hops <= 0 {
		return -1
	}
	return float64(s.L1DMisses) / float64(hops)
}

// FormatCounters renders counted samples for display, one line per sample.
func FormatCounters(samples []LevelSample, hops int) string {
	var sb strings.Builder
	for _, s := range samples {
		if !s.Counted {
			continue
		}
		sb.WriteString(fmt.Sprintf("%s\t%d L1D misses\t%.3f/hop\n",
			formatKiB(s.Bytes), s.L1DMisses, MissesPerHop(s, hops)))
	}
	return sb.String()
}
