//go:build !linux && !darwin && !freebsd

package cacheprobe

// DefaultAllocator returns the heap pool on platforms without mmap support.
func DefaultAllocator(alignment int) (Allocator, error) {
	p, err := NewAlignedPool(alignment)
	if err != nil {
		return nil, err
	}
	return p, nil
}
