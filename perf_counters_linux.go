//go:build linux

// Package cacheprobe provides the Linux perf_event_open miss counter
package cacheprobe

import (
	"encoding/binary"
	"unsafe"

	"golang.org/x/sys/unix"
)

// perfMissCounter reads L1D read misses from a perf event bound to the
// calling thread on any CPU.
type perfMissCounter struct {
	fd int
}

// l1dReadMiss encodes the L1D/read/miss hardware cache event.
func l1dReadMiss() uint64 {
	return uint64(unix.PERF_COUNT_HW_CACHE_L1D) |
		uint64(unix.PERF_COUNT_HW_CACHE_OP_READ)<<8 |
		uint64(unix.PERF_COUNT_HW_CACHE_RESULT_MISS)<<16
}

// OpenMissCounter opens an L1D miss counter for the calling thread. The
// caller should already be locked to its OS thread.
func OpenMissCounter() (MissCounter, error) {
	attr := &unix.PerfEventAttr{
		Type:   unix.PERF_TYPE_HW_CACHE,
		Size:   uint32(unsafe.Sizeof(unix.PerfEventAttr{})),
		Config: l1dReadMiss(),
		Bits:   unix.PerfBitDisabled | unix.PerfBitExcludeKernel | unix.PerfBitExcludeHv,
	}

	fd, err := unix.PerfEventOpen(attr, 0, -1, -1, unix.PERF_FLAG_FD_CLOEXEC)
	if err != nil {
		return nil, NewCounterError("OpenMissCounter", "perf_event_open failed", err)
	}
	return &perfMissCounter{fd: fd}, nil
}

// Start resets and enables the counter
func (c *perfMissCounter) Start() error {
	if err := unix.IoctlSetInt(c.fd, unix.PERF_EVENT_IOC_RESET, 0); err != nil {
		return NewCounterError("Start", "reset failed", err)
	}
	if err := unix.IoctlSetInt(c.fd, unix.PERF_EVENT_IOC_ENABLE, 0); err != nil {
		return NewCounterError("Start", "enable failed", err)
	}
	return nil
}

// Stop disables the counter and returns the misses since Start
func (c *perfMissCounter) Stop() (uint64, error) {
	if err := unix.IoctlSetInt(c.fd, unix.PERF_EVENT_IOC_DISABLE, 0); err != nil {
		return 0, NewCounterError("Stop", "disable failed", err)
	}

	var buf [8]byte
	n, err := unix.Read(c.fd, buf[:])
	if err != nil {
		return 0, NewCounterError("Stop", "read failed", err)
	}
	if n != len(buf) {
		return 0, NewCounterError("Stop", "short counter read", nil)
	}
	return binary.NativeEndian.Uint64(buf[:]), nil
}

// Close releases the perf event
func (c *perfMissCounter) Close() error {
	return unix.Close(c.fd)
}
