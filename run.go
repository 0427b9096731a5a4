package cacheprobe

import (
	"log/slog"
	"time"
)

// Run sweeps buffer sizes, selects the L1 capacity and detects the line size
// at that capacity, all measured through m.
func Run(cfg Config, m Measurer) (*Report, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	samples, err := SweepLevelSizes(m, cfg.MinSizeBytes, cfg.MaxSizeBytes, cfg.Hops)
	if err != nil {
		return nil, err
	}

	cacheSize, err := SelectCacheSize(samples, cfg.WindowSize)
	if err != nil {
		return nil, err
	}

	lineSize, err := detectLineSize(m, cacheSize, cfg.CollapseRatio)
	if err != nil {
		return nil, err
	}

	return &Report{
		Timestamp:  time.Now(),
		Samples:    samples,
		SweepStep:  cfg.MinSizeBytes,
		Hops:       cfg.Hops,
		WindowSize: cfg.WindowSize,
		CacheSize:  cacheSize,
		LineSize:   lineSize,
	}, nil
}

// NewHardwareProber builds a Prober over the platform's aligned allocator,
// with an L1D miss counter when cfg.Counters is set and the platform has one.
// The returned close function releases the counter.
func NewHardwareProber(cfg Config, logger *slog.Logger) (*Prober, func() error, error) {
	alloc, err := DefaultAllocator(cfg.Alignment)
	if err != nil {
		return nil, nil, err
	}

	opts := []ProberOption{WithLogger(logger)}
	closeFn := func() error { return nil }

	if cfg.Counters {
		counter, err := OpenMissCounter()
		if err != nil {
			logger.Warn("hardware counters unavailable, sampling time only", "err", err)
		} else {
			opts = append(opts, WithMissCounter(counter))
			closeFn = counter.Close
		}
	}

	return NewProber(alloc, opts...), closeFn, nil
}
