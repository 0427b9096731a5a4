package cacheprobe

import (
	"fmt"
	"sync"
	"unsafe"
)

// Allocator hands out slot storage for traversal buffers. Every slice it
// returns starts on the allocator's alignment boundary and must be given back
// with Release once the measurement that owns it is done.
type Allocator interface {
	Allocate(slots int) ([]int, error)
	Release(buf []int) error
	Alignment() int
}

// AlignedPool allocates aligned slot slices from the Go heap by
// over-allocating and slicing at the first aligned offset. It keeps the
// backing arrays reachable until release and tracks usage statistics.
type AlignedPool struct {
	mu         sync.Mutex
	alignment  int
	allocated  map[uintptr]*allocation
	totalAlloc int64
	peakAlloc  int64
}

type allocation struct {
	backing []int
	size    int
	used    bool
}

// NewAlignedPool creates a heap pool aligning every buffer to alignment bytes.
// The alignment must be a power of two no smaller than one slot.
func NewAlignedPool(alignment int) (*AlignedPool, error) {
	if alignment < PointerWidth || alignment&(alignment-1) != 0 {
		return nil, NewInvalidArgError("NewAlignedPool", fmt.Sprintf("bad alignment %d", alignment))
	}
	return &AlignedPool{
		alignment: alignment,
		allocated: make(map[uintptr]*allocation),
	}, nil
}

// Alignment returns the boundary in bytes every buffer starts on
func (p *AlignedPool) Alignment() int {
	return p.alignment
}

// Allocate returns a zeroed slice of slots starting on the pool alignment
func (p *AlignedPool) Allocate(slots int) ([]int, error) {
	if slots <= 0 {
		return nil, ErrInvalidSize
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	extra := p.alignment / PointerWidth
	backing := make([]int, slots+extra)
	addr := uintptr(unsafe.Pointer(&backing[0]))

	offset := 0
	if mod := addr % uintptr(p.alignment); mod != 0 {
		offset = int((uintptr(p.alignment) - mod) / PointerWidth)
	}
	buf := backing[offset : offset+slots : offset+slots]

	bytes := int64(slots * PointerWidth)
	p.allocated[uintptr(unsafe.Pointer(&buf[0]))] = &allocation{
		backing: backing,
		size:    slots * PointerWidth,
		used:    true,
	}
	p.totalAlloc += bytes
	if p.totalAlloc > p.peakAlloc {
		p.peakAlloc = p.totalAlloc
	}
	return buf, nil
}

// Release returns a buffer to the pool
func (p *AlignedPool) Release(buf []int) error {
	if len(buf) == 0 {
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	key := uintptr(unsafe.Pointer(&buf[0]))
	alloc, ok := p.allocated[key]
	if !ok {
		return NewMemoryError("Release", "buffer not allocated by this pool", nil)
	}
	if !alloc.used {
		return ErrDoubleRelease
	}

	alloc.used = false
	alloc.backing = nil
	p.totalAlloc -= int64(alloc.size)
	return nil
}

// GetStats returns bytes currently held and the high-water mark
func (p *AlignedPool) GetStats() (allocated, peak int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.totalAlloc, p.peakAlloc
}

// isAligned reports whether buf starts on an alignment boundary.
func isAligned(buf []int, alignment int) bool {
	if len(buf) == 0 {
		return true
	}
	return uintptr(unsafe.Pointer(&buf[0]))%uintptr(alignment) == 0
}
