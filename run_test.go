package cacheprobe

import (
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"
)

// cliffModel is a traversal time that is flat up to 32 KiB, climbs over
// the next three increments and is flat again.
func cliffModel(bytes int) time.Duration {
	const base = time.Millisecond
	switch {
	case bytes <= 32*KiB:
		return base
	case bytes <= 56*KiB:
		return base + time.Duration((bytes-32*KiB)/(8*KiB))*3*time.Microsecond
	default:
		return base + 9*time.Microsecond
	}
}

func TestRunSyntheticMachine(t *testing.T) {
	m := &modelMeasurer{
		elapsed: cliffModel,
		hop:     lineModel(64),
	}

	report, err := Run(DefaultConfig(), m)
	if err != nil {
		t.Fatal(err)
	}

	if len(report.Samples) != 32 {
		t.Errorf("got %d samples, want 32", len(report.Samples))
	}
	if report.CacheSize != 56*KiB {
		t.Errorf("CacheSize = %d, want %d", report.CacheSize, 56*KiB)
	}
	if report.LineSize != 64 {
		t.Errorf("LineSize = %d, want 64", report.LineSize)
	}
	if report.SweepStep != 8*KiB || report.WindowSize != 3 || report.Hops != DefaultHops {
		t.Errorf("report parameters = %d/%d/%d", report.SweepStep, report.WindowSize, report.Hops)
	}
	for _, step := range m.traceSteps {
		if step >= 56*KiB/PointerWidth {
			t.Errorf("traced step %d not below the buffer", step)
		}
	}
}

func TestRunRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.WindowSize = 1

	m := &modelMeasurer{elapsed: cliffModel, hop: lineModel(64)}
	if _, err := Run(cfg, m); !errors.Is(err, ErrInvalidWindow) {
		t.Errorf("Run = %v, want ErrInvalidWindow", err)
	}
	if len(m.throughputCalls) != 0 {
		t.Error("invalid configuration must not measure anything")
	}
}

func TestRunPropagatesMeasurementErrors(t *testing.T) {
	boom := NewMeasurementError("Throughput", "boom", nil)
	if _, err := Run(DefaultConfig(), failingMeasurer{err: boom}); !errors.Is(err, boom) {
		t.Errorf("Run = %v, want wrapped measurement error", err)
	}
}

func TestNewHardwareProber(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	cfg := DefaultConfig()
	cfg.Counters = true
	p, closeFn, err := NewHardwareProber(cfg, logger)
	if err != nil {
		t.Fatalf("NewHardwareProber: %v", err)
	}
	defer closeFn()

	if p.alloc.Alignment() != DefaultAlignment {
		t.Errorf("alignment = %d, want %d", p.alloc.Alignment(), DefaultAlignment)
	}

	stats, err := p.Throughput(1024, 1, 10000)
	if err != nil {
		t.Fatalf("Throughput: %v", err)
	}
	if p.counter != nil && !stats.Counted {
		t.Error("counter configured but sample not counted")
	}
}
