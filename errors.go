// Package cacheprobe structured error types
package cacheprobe

import (
	"errors"
	"fmt"
)

// ErrorType represents categories of errors
type ErrorType int

const (
	// Invalid argument errors (broken preconditions)
	ErrTypeInvalidArg ErrorType = iota
	// Buffer allocation errors
	ErrTypeMemory
	// Measurement errors
	ErrTypeMeasurement
	// Hardware counter errors
	ErrTypeCounter
)

// ProbeError represents a structured error with context
type ProbeError struct {
	Type    ErrorType
	Op      string // Operation that failed
	Message string // Human-readable message
	Err     error  // Underlying error if any
}

// Error implements the error interface
func (e *ProbeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("cacheprobe %s error in %s: %s (caused by: %v)",
			e.Type.String(), e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("cacheprobe %s error in %s: %s",
		e.Type.String(), e.Op, e.Message)
}

// Unwrap allows error chain inspection
func (e *ProbeError) Unwrap() error {
	return e.Err
}

// String returns the error type as a string
func (t ErrorType) String() string {
	switch t {
	case ErrTypeInvalidArg:
		return "InvalidArgument"
	case ErrTypeMemory:
		return "Memory"
	case ErrTypeMeasurement:
		return "Measurement"
	case ErrTypeCounter:
		return "Counter"
	default:
		return "Unknown"
	}
}

// NewInvalidArgError creates an invalid argument error
func NewInvalidArgError(op string, message string) error {
	return &ProbeError{
		Type:    ErrTypeInvalidArg,
		Op:      op,
		Message: message,
	}
}

// NewMemoryError creates a memory-related error
func NewMemoryError(op string, message string, err error) error {
	return &ProbeError{
		Type:    ErrTypeMemory,
		Op:      op,
		Message: message,
		Err:     err,
	}
}

// NewMeasurementError creates a measurement error
func NewMeasurementError(op string, message string, err error) error {
	return &ProbeError{
		Type:    ErrTypeMeasurement,
		Op:      op,
		Message: message,
		Err:     err,
	}
}

// NewCounterError creates a hardware counter error
func NewCounterError(op string, message string, err error) error {
	return &ProbeError{
		Type:    ErrTypeCounter,
		Op:      op,
		Message: message,
		Err:     err,
	}
}

var (
	// ErrInvalidSize indicates a buffer with no slots
	ErrInvalidSize = NewInvalidArgError("NewTraversalBuffer", "size must be positive")

	// ErrInvalidStep indicates a zero or negative stride
	ErrInvalidStep = NewInvalidArgError("NewTraversalBuffer", "step must be positive")

	// ErrInvalidWindow indicates a smoothing window below two
	ErrInvalidWindow = NewInvalidArgError("SelectCacheSize", "window size must be at least 2")

	// ErrTooFewSamples indicates a sweep too short to fill one window
	ErrTooFewSamples = NewInvalidArgError("SelectCacheSize", "not enough samples for the window")

	// ErrDoubleRelease indicates a buffer handed back twice
	ErrDoubleRelease = NewMemoryError("Release", "buffer already released", nil)

	// ErrCountersUnavailable indicates the platform cannot count cache misses
	ErrCountersUnavailable = NewCounterError("OpenMissCounter", "hardware counters not available", nil)
)

func errorType(err error) (ErrorType, bool) {
	var e *ProbeError
	if errors.As(err, &e) {
		return e.Type, true
	}
	return 0, false
}

// IsInvalidArgError checks if an error is an invalid argument error
func IsInvalidArgError(err error) bool {
	t, ok := errorType(err)
	return ok && t == ErrTypeInvalidArg
}

// IsMemoryError checks if an error is a memory error
func IsMemoryError(err error) bool {
	t, ok := errorType(err)
	return ok && t == ErrTypeMemory
}

// IsMeasurementError checks if an error is a measurement error
func IsMeasurementError(err error) bool {
	t, ok := errorType(err)
	return ok && t == ErrTypeMeasurement
}

// IsCounterError checks if an error is a hardware counter error
func IsCounterError(err error) bool {
	t, ok := errorType(err)
	return ok && t == ErrTypeCounter
}
