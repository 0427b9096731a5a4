//go:build !linux

// Package cacheprobe provides miss counter stubs for non-Linux platforms
package cacheprobe

// OpenMissCounter always fails on non-Linux platforms
func OpenMissCounter() (MissCounter, error) {
	return nil, ErrCountersUnavailable
}
