package cacheprobe

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/sugawarayuuta/sonnet"
)

// Report is the result of one probe run.
type Report struct {
	Timestamp  time.Time     `json:"timestamp"`
	Host       HostInfo      `json:"host"`
	Samples    []LevelSample `json:"samples"`
	SweepStep  int           `json:"sweep_step"`
	Hops       int           `json:"hops"`
	WindowSize int           `json:"window_size"`
	CacheSize  int           `json:"cache_size"`
	LineSize   int           `json:"line_size"`
}

// formatKiB renders a byte count in KiB the way the sample table shows it.
func formatKiB(bytes int) string {
	return strconv.FormatFloat(float64(bytes)/KiB, 'g', -1, 64)
}

// WriteSamples writes one "<KiB>\t<nanos>" line per sample.
func WriteSamples(w io.Writer, samples []LevelSample) error {
	bw := bufio.NewWriter(w)
	for _, s := range samples {
		if _, err := fmt.Fprintf(bw, "%s\t%d\n", formatKiB(s.Bytes), s.Elapsed.Nanoseconds()); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteSummary writes the two result lines. The capacity is a byte count
// under a "KB" label, kept for compatibility with existing output parsers.
func WriteSummary(w io.Writer, cacheSize, lineSize int) error {
	if _, err := fmt.Fprintf(w, "L1 cache size -- %d KB\n", cacheSize); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "L1 cache line size -- %d bytes\n", lineSize)
	return err
}

// WriteTo writes the sample table followed by the summary lines.
func (r *Report) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	if err := WriteSamples(cw, r.Samples); err != nil {
		return cw.n, err
	}
	err := WriteSummary(cw, r.CacheSize, r.LineSize)
	return cw.n, err
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// SaveReport writes r to path as JSON
func SaveReport(path string, r *Report) error {
	data, err := sonnet.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// LoadReport reads a report written by SaveReport
func LoadReport(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read report: %w", err)
	}
	var r Report
	if err := sonnet.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to parse report %s: %w", path, err)
	}
	return &r, nil
}

// SameBreakpoint reports whether two runs selected the same capacity to
// within one sweep step. Single timing passes are noisy, so exact equality
// is not expected between runs.
func SameBreakpoint(a, b *Report) bool {
	tolerance := max(a.SweepStep, b.SweepStep)
	d := a.CacheSize - b.CacheSize
	if d < 0 {
		d = -d
	}
	return d <= tolerance
}
