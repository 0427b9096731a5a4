//go:build !linux

package cacheprobe

import "runtime"

// PinThread locks the calling goroutine to its OS thread. CPU binding is not
// available on this platform, so the returned CPU is always -1.
func PinThread(cpu int) (int, func(), error) {
	runtime.LockOSThread()
	return -1, runtime.UnlockOSThread, nil
}
