//go:build linux

package cacheprobe

import (
	"fmt"
	"runtime"

	"golang.org/x/sys/unix"
)

// PinThread locks the calling goroutine to its OS thread and binds that
// thread to one logical CPU. A negative cpu selects the lowest CPU of the
// current affinity mask. It returns the CPU the thread is bound to and an
// unpin function restoring the previous mask and unlocking the thread.
func PinThread(cpu int) (int, func(), error) {
	runtime.LockOSThread()

	var prev unix.CPUSet
	if err := unix.SchedGetaffinity(0, &prev); err != nil {
		runtime.UnlockOSThread()
		return -1, nil, NewMeasurementError("PinThread", "reading affinity failed", err)
	}

	if cpu < 0 {
		cpu = firstCPU(&prev)
		if cpu < 0 {
			runtime.UnlockOSThread()
			return -1, nil, NewMeasurementError("PinThread", "empty affinity mask", nil)
		}
	}

	var set unix.CPUSet
	set.Set(cpu)
	if err := unix.SchedSetaffinity(0, &set); err != nil {
		runtime.UnlockOSThread()
		return -1, nil, NewMeasurementError("PinThread", fmt.Sprintf("binding to cpu %d failed", cpu), err)
	}

	unpin := func() {
		_ = unix.SchedSetaffinity(0, &prev)
		runtime.UnlockOSThread()
	}
	return cpu, unpin, nil
}

func firstCPU(set *unix.CPUSet) int {
	for i := 0; i < len(set)*64; i++ {
		if set.IsSet(i) {
			return i
		}
	}
	return -1
}
