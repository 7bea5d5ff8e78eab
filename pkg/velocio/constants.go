// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package velocio drives Velocio ACE/Vortex PLCs over their USB serial link.
//
// Frames are either taken from the builtin command table or compiled from raw
// hex text, optionally containing one inclusive byte range such as [01,06]
// that expands into one frame per value. The Engine sends each frame, waits a
// fixed settle delay and collects whatever the device answered. Renderer turns
// each exchange into one of the display modes.
//
// The package does not validate checksums or interpret response payloads.
package velocio

import "time"

// Serial defaults for the PLC's USB CDC port (8N1)
const (
	DefaultPort     = "/dev/ttyACM0"
	DefaultBaudRate = 9600
)

// DefaultSettle is the pause after a write and again after draining the
// response. The PLC has no acknowledgement, so this is all the framing we get.
const DefaultSettle = 100 * time.Millisecond

// Every command frame starts with this header
const (
	HeaderByte = 0x56
	AddressHi  = 0xFF
	AddressLo  = 0xFF
)

// Byte classes used by the display modes
const (
	CodeSpace = 0x20
	CodeDot   = '.'
	CodeFill  = 0xFF
)
