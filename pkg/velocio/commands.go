// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package velocio

import (
	"fmt"
	"strings"
)

// Group orders operations in listings
type Group int

const (
	GroupControl Group = iota
	GroupRead
	GroupDebug
	GroupUser
)

func (g Group) String() string {
	switch g {
	case GroupControl:
		return "Control Instructions"
	case GroupRead:
		return "Read Instructions"
	case GroupDebug:
		return "Debug Instructions"
	case GroupUser:
		return "User Instructions"
	default:
		return "UNKNOWN"
	}
}

// Operation is a named, pre-built list of frames
type Operation struct {
	Name        string
	Group       Group
	Description string
	Frames      FrameSet
}

// Run control sub-commands (byte 5 of a control frame)
const (
	subDebug   = 0xF0
	subRoutine = 0xF1
)

// Output bit masks for set_output_N
var outputMasks = []byte{0x01, 0x02, 0x04, 0x08, 0x10, 0x20}

const outputMaskAll = 0x3F

// controlFrame builds a 7 byte run or debug control frame.
func controlFrame(sub, code byte) Frame {
	return Frame{HeaderByte, AddressHi, AddressLo, 0x00, 0x07, sub, code}
}

// setOutputFrame builds the 21 byte write that switches the outputs in mask.
func setOutputFrame(mask byte, on bool) Frame {
	state := byte(0x00)
	if on {
		state = 0x01
	}
	return Frame{
		HeaderByte, AddressHi, AddressLo, 0x00, 0x15, 0x11, 0x01, 0x00, 0x01, 0x00, 0x00,
		0x09, 0x01, 0x00, 0x00, 0x01, 0x00, mask, 0x00, 0x00, state,
	}
}

// readBitsFrames builds one 8 byte read frame per tag index in first..last.
func readBitsFrames(first, last byte) FrameSet {
	fs := make(FrameSet, 0, int(last-first)+1)
	for i := first; i <= last; i++ {
		fs = append(fs, Frame{HeaderByte, AddressHi, AddressLo, 0x00, 0x08, 0x0A, 0x00, i})
	}
	return fs
}

// CommandTable maps operation names to frames
type CommandTable struct {
	ops   map[string]Operation
	order []string
}

// NewCommandTable creates an empty table
func NewCommandTable() *CommandTable {
	return &CommandTable{ops: make(map[string]Operation)}
}

// DefaultCommands returns the builtin operations
func DefaultCommands() *CommandTable {
	t := NewCommandTable()

	t.add("play", GroupControl, "start the routine at current position", controlFrame(subRoutine, 0x01))
	t.add("pause", GroupControl, "pause the routine at current position", controlFrame(subRoutine, 0x02))
	t.add("reset", GroupControl, "reset the routine to the beginning", controlFrame(subRoutine, 0x06))

	for i, mask := range outputMasks {
		t.add(fmt.Sprintf("set_output_%d_off", i+1), GroupControl,
			fmt.Sprintf("set output %d to off", i+1), setOutputFrame(mask, false))
	}
	t.add("set_output_all_off", GroupControl, "set all output to off", setOutputFrame(outputMaskAll, false))
	for i, mask := range outputMasks {
		t.add(fmt.Sprintf("set_output_%d_on", i+1), GroupControl,
			fmt.Sprintf("set output %d to on", i+1), setOutputFrame(mask, true))
	}
	t.add("set_output_all_on", GroupControl, "set all output to on", setOutputFrame(outputMaskAll, true))

	t.add("read_input_bits", GroupRead, "query the input bits and print the response", readBitsFrames(0x01, 0x06)...)
	t.add("read_output_bits", GroupRead, "query the output bits and print the response", readBitsFrames(0x07, 0x0C)...)

	t.add("enter_debug", GroupDebug, "put the device into debug mode for testing", controlFrame(subDebug, 0x02))
	t.add("exit_debug", GroupDebug, "exit the device debug mode for normal operation", controlFrame(subDebug, 0x01))
	t.add("step_into", GroupDebug, "step into the next call", controlFrame(subRoutine, 0x03))
	t.add("step_out", GroupDebug, "step out of the current subroutine", controlFrame(subRoutine, 0x04))
	t.add("step_over", GroupDebug, "step over the next call", controlFrame(subRoutine, 0x05))

	return t
}

func (t *CommandTable) add(name string, group Group, description string, frames ...Frame) {
	t.ops[name] = Operation{Name: name, Group: group, Description: description, Frames: frames}
	t.order = append(t.order, name)
}

// Define adds a user operation. Existing names cannot be redefined.
func (t *CommandTable) Define(name, description string, frames FrameSet) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: empty operation name", ErrEmptyInstruction)
	}
	if len(frames) == 0 {
		return fmt.Errorf("%w: operation %q has no frames", ErrEmptyInstruction, name)
	}
	if _, ok := t.ops[name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateOperation, name)
	}
	t.add(name, GroupUser, description, frames...)
	return nil
}

// Lookup returns the named operation. The returned frames are copies.
func (t *CommandTable) Lookup(name string) (Operation, error) {
	op, ok := t.ops[name]
	if !ok {
		return Operation{}, fmt.Errorf("%w: %q", ErrUnknownOperation, name)
	}
	frames := make(FrameSet, len(op.Frames))
	for i, f := range op.Frames {
		frames[i] = f.Clone()
	}
	op.Frames = frames
	return op, nil
}

// Has reports whether name is a known operation
func (t *CommandTable) Has(name string) bool {
	_, ok := t.ops[name]
	return ok
}

// Operations returns all operations grouped, in definition order within a group
func (t *CommandTable) Operations() []Operation {
	out := make([]Operation, 0, len(t.order))
	for g := GroupControl; g <= GroupUser; g++ {
		for _, name := range t.order {
			if op := t.ops[name]; op.Group == g {
				out = append(out, op)
			}
		}
	}
	return out
}

// Names returns operation names in listing order
func (t *CommandTable) Names() []string {
	ops := t.Operations()
	names := make([]string, len(ops))
	for i, op := range ops {
		names[i] = op.Name
	}
	return names
}
