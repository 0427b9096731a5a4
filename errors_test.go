package cacheprobe

import (
	"errors"
	"fmt"
	"testing"
)

func TestStructuredErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantType ErrorType
		wantOp   string
		wantMsg  string
		checkFn  func(error) bool
	}{
		{
			name:     "Invalid Size",
			err:      ErrInvalidSize,
			wantType: ErrTypeInvalidArg,
			wantOp:   "NewTraversalBuffer",
			wantMsg:  "size must be positive",
			checkFn:  IsInvalidArgError,
		},
		{
			name:     "Invalid Window",
			err:      ErrInvalidWindow,
			wantType: ErrTypeInvalidArg,
			wantOp:   "SelectCacheSize",
			wantMsg:  "window size must be at least 2",
			checkFn:  IsInvalidArgError,
		},
		{
			name:     "Double Release",
			err:      ErrDoubleRelease,
			wantType: ErrTypeMemory,
			wantOp:   "Release",
			wantMsg:  "buffer already released",
			checkFn:  IsMemoryError,
		},
		{
			name:     "Counters Unavailable",
			err:      ErrCountersUnavailable,
			wantType: ErrTypeCounter,
			wantOp:   "OpenMissCounter",
			wantMsg:  "hardware counters not available",
			checkFn:  IsCounterError,
		},
		{
			name:     "Measurement",
			err:      NewMeasurementError("PinThread", "empty affinity mask", nil),
			wantType: ErrTypeMeasurement,
			wantOp:   "PinThread",
			wantMsg:  "empty affinity mask",
			checkFn:  IsMeasurementError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			probeErr, ok := tt.err.(*ProbeError)
			if !ok {
				t.Fatalf("Expected ProbeError, got %T", tt.err)
			}
			if probeErr.Type != tt.wantType {
				t.Errorf("Type = %v, want %v", probeErr.Type, tt.wantType)
			}
			if probeErr.Op != tt.wantOp {
				t.Errorf("Op = %q, want %q", probeErr.Op, tt.wantOp)
			}
			if probeErr.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", probeErr.Message, tt.wantMsg)
			}
			if !tt.checkFn(tt.err) {
				t.Errorf("type predicate returned false for %v", tt.err)
			}
		})
	}
}

func TestErrorChaining(t *testing.T) {
	cause := errors.New("cannot allocate memory")
	err := NewMemoryError("Allocate", "mmap of 8 slots failed", cause)

	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the cause")
	}
	want := "cacheprobe Memory error in Allocate: mmap of 8 slots failed (caused by: cannot allocate memory)"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	wrapped := fmt.Errorf("measuring 8192 bytes: %w", err)
	if !IsMemoryError(wrapped) {
		t.Error("predicate should see through fmt.Errorf wrapping")
	}
	if IsInvalidArgError(wrapped) || IsCounterError(errors.New("plain")) {
		t.Error("predicate matched the wrong error")
	}
}

func TestErrorTypeString(t *testing.T) {
	tests := []struct {
		typ  ErrorType
		want string
	}{
		{ErrTypeInvalidArg, "InvalidArgument"},
		{ErrTypeMemory, "Memory"},
		{ErrTypeMeasurement, "Measurement"},
		{ErrTypeCounter, "Counter"},
		{ErrorType(99), "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.typ.String(); got != tt.want {
			t.Errorf("ErrorType(%d).String() = %q, want %q", tt.typ, got, tt.want)
		}
	}
}
