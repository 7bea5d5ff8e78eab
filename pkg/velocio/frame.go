// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package velocio

import (
	"encoding/hex"
	"strings"
	"time"
)

// Frame is one complete binary message sent to the device.
type Frame []byte

// FrameSet is an ordered list of frames. Order is transmission order.
type FrameSet []Frame

// Hex returns the frame as space separated lowercase hex pairs.
func (f Frame) Hex() string {
	return FormatHex(f)
}

// Clone returns a copy of the frame.
func (f Frame) Clone() Frame {
	out := make(Frame, len(f))
	copy(out, f)
	return out
}

// Len returns the total number of bytes across all frames.
func (fs FrameSet) Len() int {
	n := 0
	for _, f := range fs {
		n += len(f)
	}
	return n
}

// Transaction pairs one transmitted frame with the bytes read back in the
// response window that followed it.
type Transaction struct {
	Index     int
	Tx        Frame
	Rx        []byte
	Timestamp time.Time
}

// Silent returns true if the device did not answer.
func (t Transaction) Silent() bool {
	return len(t.Rx) == 0
}

// FormatHex renders bytes as space separated lowercase hex pairs.
func FormatHex(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.Grow(len(data) * 3)
	for i, b := range data {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(hex.EncodeToString([]byte{b}))
	}
	return sb.String()
}
