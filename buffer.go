package cacheprobe

// TraversalBuffer is a chain of pointer-sized slots. Each slot holds the index
// of the next slot to visit, so chasing it touches memory in an order that
// depends on the value just loaded rather than on the address just used.
//
// The chase starts at the anchor (the last slot) and walks backwards step
// slots at a time. The final slot of the walk holds the sentinel, which is
// the anchor index itself, so the chase is a cycle and can run for any number
// of hops. Slots the walk never reaches also hold the sentinel.
type TraversalBuffer struct {
	slots []int
	step  int
	alloc Allocator
}

// NewTraversalBuffer builds a buffer of size slots linked at the given stride.
// Storage comes from alloc and goes back to it on Release.
func NewTraversalBuffer(size, step int, alloc Allocator) (*TraversalBuffer, error) {
	if size <= 0 {
		return nil, ErrInvalidSize
	}
	if step <= 0 {
		return nil, ErrInvalidStep
	}

	slots, err := alloc.Allocate(size)
	if err != nil {
		return nil, err
	}

	sentinel := size - 1
	for k := range slots {
		slots[k] = sentinel
	}
	for i, j := size-1, size-1-step; j >= 0; i, j = j, j-step {
		slots[i] = j
		slots[j] = sentinel
	}

	return &TraversalBuffer{
		slots: slots,
		step:  step,
		alloc: alloc,
	}, nil
}

// Len returns the number of slots
func (b *TraversalBuffer) Len() int {
	return len(b.slots)
}

// Step returns the stride between consecutive visits
func (b *TraversalBuffer) Step() int {
	return b.step
}

// Bytes returns the memory footprint of the slots
func (b *TraversalBuffer) Bytes() int {
	return len(b.slots) * PointerWidth
}

// Anchor returns the slot every chase starts from
func (b *TraversalBuffer) Anchor() int {
	return len(b.slots) - 1
}

// Sentinel returns the value stored at the end of the chain
func (b *TraversalBuffer) Sentinel() int {
	return len(b.slots) - 1
}

// Next returns the slot visited after i
func (b *TraversalBuffer) Next(i int) int {
	return b.slots[i]
}

// ChainLength returns the number of hops from the anchor back to the
// sentinel, which is ceil(Len/Step) when the stride is smaller than the
// buffer and 1 otherwise.
func (b *TraversalBuffer) ChainLength() int {
	pos := b.slots[b.Anchor()]
	hops := 1
	for pos != b.Sentinel() {
		pos = b.slots[pos]
		hops++
	}
	return hops
}

// Release hands the slot storage back to the allocator. The buffer must not
// be used afterwards.
func (b *TraversalBuffer) Release() error {
	if b.slots == nil {
		return ErrDoubleRelease
	}
	err := b.alloc.Release(b.slots)
	b.slots = nil
	return err
}
