package cacheprobe

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"unsafe"

	"github.com/shirou/gopsutil/v4/cpu"
	xcpu "golang.org/x/sys/cpu"
)

// AssumedLineSize is the cache line size the Go toolchain pads to on this
// architecture.
const AssumedLineSize = int(unsafe.Sizeof(xcpu.CacheLinePad{}))

// HostInfo describes the machine a probe ran on
type HostInfo struct {
	Arch            string `json:"arch"`
	ModelName       string `json:"model_name,omitempty"`
	LogicalCores    int    `json:"logical_cores,omitempty"`
	ReportedCacheKB int    `json:"reported_cache_kb,omitempty"` // as reported by the OS, usually the last level
	PointerWidth    int    `json:"pointer_width"`
	AssumedLineSize int    `json:"assumed_line_size"`
	PinnedCPU       int    `json:"pinned_cpu"`
}

// DescribeHost collects what the OS reports about the CPU. Fields the OS does
// not report are left zero; the error is informational.
func DescribeHost(ctx context.Context) (HostInfo, error) {
	info := HostInfo{
		Arch:            runtime.GOARCH,
		PointerWidth:    PointerWidth,
		AssumedLineSize: AssumedLineSize,
		PinnedCPU:       -1,
	}

	if n, err := cpu.CountsWithContext(ctx, true); err == nil {
		info.LogicalCores = n
	}

	stats, err := cpu.InfoWithContext(ctx)
	if err != nil {
		return info, fmt.Errorf("reading cpu info: %w", err)
	}
	if len(stats) > 0 {
		info.ModelName = strings.TrimSpace(stats[0].ModelName)
		info.ReportedCacheKB = int(stats[0].CacheSize)
	}
	return info, nil
}

// String formats the host description for display
func (h HostInfo) String() string {
	var sb strings.Builder
	sb.WriteString("Host:\n")
	if h.ModelName != "" {
		sb.WriteString(fmt.Sprintf("  CPU:               %s\n", h.ModelName))
	}
	sb.WriteString(fmt.Sprintf("  Arch:              %s\n", h.Arch))
	if h.LogicalCores > 0 {
		sb.WriteString(fmt.Sprintf("  Logical cores:     %d\n", h.LogicalCores))
	}
	if h.ReportedCacheKB > 0 {
		sb.WriteString(fmt.Sprintf("  Reported cache:    %d KB\n", h.ReportedCacheKB))
	}
	sb.WriteString(fmt.Sprintf("  Pointer width:     %d bytes\n", h.PointerWidth))
	sb.WriteString(fmt.Sprintf("  Assumed line size: %d bytes\n", h.AssumedLineSize))
	if h.PinnedCPU >= 0 {
		sb.WriteString(fmt.Sprintf("  Pinned CPU:        %d\n", h.PinnedCPU))
	}
	return sb.String()
}
