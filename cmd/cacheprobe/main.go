// Copyright ©2024 The GUDA Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command cacheprobe measures the L1 data cache size and line size
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"runtime/debug"

	"github.com/LynnColeArt/cacheprobe"
)

func main() {
	defaults := cacheprobe.DefaultConfig()
	var (
		minSize     = flag.Int("min", defaults.MinSizeBytes, "First buffer size in bytes (also the sweep step)")
		maxSize     = flag.Int("max", defaults.MaxSizeBytes, "Last buffer size in bytes")
		hops        = flag.Int("hops", defaults.Hops, "Hops per traversal pass")
		window      = flag.Int("window", defaults.WindowSize, "Differences summed per smoothing window")
		align       = flag.Int("align", defaults.Alignment, "Buffer alignment in bytes")
		cpu         = flag.Int("cpu", defaults.CPU, "CPU to pin the measuring thread to (-1: first allowed)")
		counters    = flag.Bool("counters", false, "Count L1D misses per sample (Linux perf events)")
		jsonOut     = flag.String("json", "", "Write the report as JSON to this file")
		compareWith = flag.String("compare", "", "Compare the capacity against a previous JSON report")
		showHost    = flag.Bool("host", false, "Print the host description")
		debugFlag   = flag.Bool("debug", false, "Enable debug logging")
		versionFlag = flag.Bool("version", false, "Print version and exit")
	)
	flag.Parse()

	if *versionFlag {
		v, _ := cacheprobe.Version()
		if v == "" {
			v = "devel"
		}
		fmt.Printf("cacheprobe version %s\n", v)
		os.Exit(0)
	}

	logLevel := slog.LevelInfo
	if *debugFlag {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))

	cfg := cacheprobe.Config{
		MinSizeBytes:  *minSize,
		MaxSizeBytes:  *maxSize,
		Hops:          *hops,
		WindowSize:    *window,
		CollapseRatio: defaults.CollapseRatio,
		Alignment:     *align,
		CPU:           *cpu,
		Counters:      *counters,
	}

	if err := run(cfg, logger, *jsonOut, *compareWith, *showHost); err != nil {
		logger.Error("probe failed", "err", err)
		os.Exit(1)
	}
}

func run(cfg cacheprobe.Config, logger *slog.Logger, jsonOut, compareWith string, showHost bool) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	host, err := cacheprobe.DescribeHost(context.Background())
	if err != nil {
		logger.Debug("host description incomplete", "err", err)
	}

	pinned, unpin, err := cacheprobe.PinThread(cfg.CPU)
	if err != nil {
		return err
	}
	defer unpin()
	host.PinnedCPU = pinned
	logger.Debug("measuring thread pinned", "cpu", pinned)

	prober, closeProber, err := cacheprobe.NewHardwareProber(cfg, logger)
	if err != nil {
		return err
	}
	defer closeProber()

	// Keep collections out of the timed passes.
	gcPercent := debug.SetGCPercent(-1)
	report, err := cacheprobe.Run(cfg, prober)
	debug.SetGCPercent(gcPercent)
	if err != nil {
		return err
	}
	report.Host = host

	if showHost {
		fmt.Print(host.String())
	}
	if _, err := report.WriteTo(os.Stdout); err != nil {
		return err
	}
	if cfg.Counters {
		fmt.Print(cacheprobe.FormatCounters(report.Samples, report.Hops))
	}

	if jsonOut != "" {
		if err := cacheprobe.SaveReport(jsonOut, report); err != nil {
			return err
		}
		logger.Info("report saved", "path", jsonOut)
	}

	if compareWith != "" {
		previous, err := cacheprobe.LoadReport(compareWith)
		if err != nil {
			return err
		}
		if cacheprobe.SameBreakpoint(previous, report) {
			logger.Info("capacity matches previous run",
				"previous", previous.CacheSize, "current", report.CacheSize)
		} else {
			logger.Warn("capacity differs from previous run by more than one step",
				"previous", previous.CacheSize, "current", report.CacheSize,
				"step", max(previous.SweepStep, report.SweepStep))
		}
	}
	return nil
}
