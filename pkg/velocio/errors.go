// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package velocio

import (
	"errors"
	"fmt"
)

// Input errors. These are detected before any channel I/O happens.
var (
	ErrMalformedRange     = errors.New("malformed range")
	ErrMultipleRanges     = errors.New("multiple ranges unsupported")
	ErrOddLengthHex       = errors.New("odd length hex")
	ErrInvalidHexDigit    = errors.New("invalid hex digit")
	ErrEmptyInstruction   = errors.New("empty instruction")
	ErrUnknownOperation   = errors.New("unknown operation")
	ErrUnknownDisplayMode = errors.New("unknown display mode")
	ErrDuplicateOperation = errors.New("duplicate operation")
)

// ErrChannel is matched by every *ChannelError via errors.Is.
var ErrChannel = errors.New("channel error")

// ChannelError reports an I/O failure on the channel during a run.
// Frame is the zero-based index of the frame being processed.
type ChannelError struct {
	Op    string
	Frame int
	Err   error
}

func (e *ChannelError) Error() string {
	return fmt.Sprintf("channel %s failed at frame %d: %v", e.Op, e.Frame, e.Err)
}

func (e *ChannelError) Unwrap() error {
	return e.Err
}

// Is reports ErrChannel so callers can classify without errors.As.
func (e *ChannelError) Is(target error) bool {
	return target == ErrChannel
}

// IsInputError reports whether err was caused by bad user input rather than
// the device or the channel.
func IsInputError(err error) bool {
	for _, target := range []error{
		ErrMalformedRange,
		ErrMultipleRanges,
		ErrOddLengthHex,
		ErrInvalidHexDigit,
		ErrEmptyInstruction,
		ErrUnknownOperation,
		ErrUnknownDisplayMode,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
