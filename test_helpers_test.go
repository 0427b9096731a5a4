package cacheprobe

import (
	"testing"
	"time"
)

// newPoolOrFail creates a heap pool and fails the test if unsuccessful
func newPoolOrFail(t testing.TB, alignment int) *AlignedPool {
	t.Helper()
	p, err := NewAlignedPool(alignment)
	if err != nil {
		t.Fatalf("NewAlignedPool(%d) failed: %v", alignment, err)
	}
	return p
}

// newBufferOrFail builds a traversal buffer and fails the test if unsuccessful
func newBufferOrFail(t testing.TB, size, step int, alloc Allocator) *TraversalBuffer {
	t.Helper()
	b, err := NewTraversalBuffer(size, step, alloc)
	if err != nil {
		t.Fatalf("NewTraversalBuffer(%d, %d) failed: %v", size, step, err)
	}
	return b
}

// samplesFromNanos builds a size sweep of len(nanos) samples starting at and
// stepping by stepBytes.
func samplesFromNanos(stepBytes int, nanos ...int64) []LevelSample {
	samples := make([]LevelSample, len(nanos))
	for i, n := range nanos {
		samples[i] = LevelSample{
			Bytes:   (i + 1) * stepBytes,
			Elapsed: time.Duration(n),
		}
	}
	return samples
}

type throughputCall struct {
	slots, step, hops int
}

// modelMeasurer is a synthetic Measurer. Throughput times come from
// elapsed(bytes); per-hop traces come from hop(strideBytes, k).
type modelMeasurer struct {
	elapsed func(bytes int) time.Duration
	hop     func(strideBytes, k int) int64

	throughputCalls []throughputCall
	traceSteps      []int
}

func (m *modelMeasurer) Throughput(slots, step, hops int) (PassStats, error) {
	m.throughputCalls = append(m.throughputCalls, throughputCall{slots, step, hops})
	return PassStats{Elapsed: m.elapsed(slots * PointerWidth)}, nil
}

func (m *modelMeasurer) Trace(slots, step, hops int) (HopTrace, error) {
	m.traceSteps = append(m.traceSteps, step)
	nanos := make([]int64, hops)
	for k := range nanos {
		nanos[k] = m.hop(step*PointerWidth, k)
	}
	return HopTrace{Nanos: nanos, Terminal: slots - 1}, nil
}

// lineModel returns hop timings that alternate between a hit and a miss
// while the stride is below lineBytes and are uniform misses from there on.
func lineModel(lineBytes int) func(strideBytes, k int) int64 {
	return func(strideBytes, k int) int64 {
		if strideBytes < lineBytes && k%2 == 1 {
			return 4
		}
		return 90
	}
}
