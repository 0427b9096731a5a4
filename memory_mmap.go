//go:build linux || darwin || freebsd

package cacheprobe

import (
	"fmt"
	"sync"
	"unsafe"

	"golang.org/x/sys/unix"
)

// MmapAllocator maps anonymous private memory for every buffer. Mappings
// start on a page boundary, so any alignment up to the page size holds
// without padding. Slot memory lives outside the Go heap and is never
// scanned or moved by the garbage collector.
type MmapAllocator struct {
	mu        sync.Mutex
	alignment int
	mappings  map[uintptr][]byte
}

// NewMmapAllocator creates an allocator for alignments up to the page size.
func NewMmapAllocator(alignment int) (*MmapAllocator, error) {
	page := unix.Getpagesize()
	if alignment < PointerWidth || alignment&(alignment-1) != 0 || alignment > page {
		return nil, NewInvalidArgError("NewMmapAllocator",
			fmt.Sprintf("alignment %d must be a power of two up to the page size %d", alignment, page))
	}
	return &MmapAllocator{
		alignment: alignment,
		mappings:  make(map[uintptr][]byte),
	}, nil
}

// Alignment returns the boundary in bytes every buffer starts on
func (a *MmapAllocator) Alignment() int {
	return a.alignment
}

// Allocate maps a fresh zeroed region large enough for slots
func (a *MmapAllocator) Allocate(slots int) ([]int, error) {
	if slots <= 0 {
		return nil, ErrInvalidSize
	}

	mem, err := unix.Mmap(-1, 0, slots*PointerWidth,
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, NewMemoryError("Allocate", fmt.Sprintf("mmap of %d slots failed", slots), err)
	}

	buf := unsafe.Slice((*int)(unsafe.Pointer(&mem[0])), slots)

	a.mu.Lock()
	a.mappings[uintptr(unsafe.Pointer(&mem[0]))] = mem
	a.mu.Unlock()
	return buf, nil
}

// Release unmaps the region behind buf
func (a *MmapAllocator) Release(buf []int) error {
	if len(buf) == 0 {
		return nil
	}

	key := uintptr(unsafe.Pointer(&buf[0]))
	a.mu.Lock()
	mem, ok := a.mappings[key]
	delete(a.mappings, key)
	a.mu.Unlock()

	if !ok {
		return ErrDoubleRelease
	}
	if err := unix.Munmap(mem); err != nil {
		return NewMemoryError("Release", "munmap failed", err)
	}
	return nil
}

// DefaultAllocator returns the platform's preferred aligned allocator,
// falling back to the heap pool when the alignment exceeds a page.
func DefaultAllocator(alignment int) (Allocator, error) {
	if alignment <= unix.Getpagesize() {
		a, err := NewMmapAllocator(alignment)
		if err != nil {
			return nil, err
		}
		return a, nil
	}
	p, err := NewAlignedPool(alignment)
	if err != nil {
		return nil, err
	}
	return p, nil
}
