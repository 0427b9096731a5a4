package cacheprobe

import "fmt"

// DetectLineSize chases a cacheBytes buffer at strides of 1, 2, 4, ... slots
// and returns the first stride, in bytes, at which the largest jump between
// consecutive hop times drops below a tenth of the previous stride's. Below
// the line size some hops hit the line just loaded and some miss, so hop
// times jump around; from the line size up every hop misses and the jumps
// collapse. If no collapse is seen the first stride not below the buffer
// size is returned.
func DetectLineSize(m Measurer, cacheBytes int) (int, error) {
	return detectLineSize(m, cacheBytes, DefaultCollapseRatio)
}

func detectLineSize(m Measurer, cacheBytes, ratio int) (int, error) {
	size := cacheBytes / PointerWidth
	if size <= 0 {
		return 0, NewInvalidArgError("DetectLineSize", fmt.Sprintf("cache size %d is below one slot", cacheBytes))
	}

	var (
		lastMaxJump int64
		haveLast    bool
		step        int
	)
	for step = 1; step < size; step *= 2 {
		trace, err := m.Trace(size, step, size/step)
		if err != nil {
			return 0, fmt.Errorf("tracing stride %d: %w", step*PointerWidth, err)
		}

		jump, ok := maxJump(trace.Nanos)
		if !ok {
			continue
		}
		if haveLast && jump < lastMaxJump/int64(ratio) {
			return step * PointerWidth, nil
		}
		lastMaxJump = jump
		haveLast = true
	}
	return step * PointerWidth, nil
}

// maxJump returns the largest increase between consecutive hop times. It
// reports false when there are fewer than two hops.
func maxJump(nanos []int64) (int64, bool) {
	if len(nanos) < 2 {
		return 0, false
	}
	best := nanos[1] - nanos[0]
	for k := 2; k < len(nanos); k++ {
		if d := nanos[k] - nanos[k-1]; d > best {
			best = d
		}
	}
	return best, true
}
