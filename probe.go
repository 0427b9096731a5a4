package cacheprobe

import (
	"log/slog"
	"time"
)

// HopTrace holds the duration of every single hop of a timed chase and the
// slot index the chase ended on.
type HopTrace struct {
	Nanos    []int64
	Terminal int
}

// Touch chases n hops from the anchor and returns the slot index reached.
// Callers must use the result; it is the only thing keeping the chase live.
func Touch(b *TraversalBuffer, n int) int {
	slots := b.slots
	pos := b.Anchor()
	for i := 0; i < n; i++ {
		pos = slots[pos]
	}
	return pos
}

// TouchTimed performs the same chase as Touch, taking a monotonic timestamp
// immediately before and after each hop. The trace is sized up front so the
// chase itself does not allocate.
func TouchTimed(b *TraversalBuffer, n int) HopTrace {
	slots := b.slots
	nanos := make([]int64, n)
	pos := b.Anchor()
	for i := 0; i < n; i++ {
		start := time.Now()
		pos = slots[pos]
		nanos[i] = int64(time.Since(start))
	}
	return HopTrace{Nanos: nanos, Terminal: pos}
}

// PassStats is the outcome of one timed throughput pass.
type PassStats struct {
	Elapsed time.Duration

	// L1DMisses is valid only when Counted is set.
	L1DMisses uint64
	Counted   bool
}

// Measurer produces the raw timings the sweeps work from. Each call measures
// a freshly built buffer of slots slots linked at step.
type Measurer interface {
	// Throughput runs one untimed warm-up pass and one timed pass of hops
	// hops and reports the aggregate time of the timed pass.
	Throughput(slots, step, hops int) (PassStats, error)

	// Trace runs one pass of hops hops timing every hop.
	Trace(slots, step, hops int) (HopTrace, error)
}

// Prober measures real traversal buffers on the calling thread.
type Prober struct {
	alloc   Allocator
	logger  *slog.Logger
	counter MissCounter
}

// ProberOption configures a Prober.
type ProberOption func(*Prober)

// WithLogger sets the logger progress and chase results are reported to.
func WithLogger(logger *slog.Logger) ProberOption {
	return func(p *Prober) {
		p.logger = logger
	}
}

// WithMissCounter counts L1D misses around every timed throughput pass.
func WithMissCounter(c MissCounter) ProberOption {
	return func(p *Prober) {
		p.counter = c
	}
}

// NewProber creates a Prober drawing buffer storage from alloc.
func NewProber(alloc Allocator, opts ...ProberOption) *Prober {
	p := &Prober{
		alloc:  alloc,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Throughput implements Measurer.
func (p *Prober) Throughput(slots, step, hops int) (PassStats, error) {
	buf, err := NewTraversalBuffer(slots, step, p.alloc)
	if err != nil {
		return PassStats{}, err
	}

	warm := Touch(buf, hops)

	var stats PassStats
	if p.counter != nil {
		if err := p.counter.Start(); err != nil {
			buf.Release()
			return PassStats{}, err
		}
	}

	start := time.Now()
	timed := Touch(buf, hops)
	stats.Elapsed = time.Since(start)

	if p.counter != nil {
		misses, err := p.counter.Stop()
		if err != nil {
			buf.Release()
			return PassStats{}, err
		}
		stats.L1DMisses = misses
		stats.Counted = true
	}

	p.logger.Debug("counting caches",
		"slots", slots, "step", step, "warm", warm, "timed", timed,
		"elapsed", stats.Elapsed)

	if err := buf.Release(); err != nil {
		return PassStats{}, err
	}
	return stats, nil
}

// Trace implements Measurer.
func (p *Prober) Trace(slots, step, hops int) (HopTrace, error) {
	buf, err := NewTraversalBuffer(slots, step, p.alloc)
	if err != nil {
		return HopTrace{}, err
	}

	trace := TouchTimed(buf, hops)

	p.logger.Debug("tracing hops",
		"slots", slots, "step", step, "hops", hops, "terminal", trace.Terminal)

	if err := buf.Release(); err != nil {
		return HopTrace{}, err
	}
	return trace, nil
}
