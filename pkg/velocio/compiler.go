// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package velocio

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// CompileRaw turns raw hex tokens into frames.
//
// Tokens are concatenated with no separator, so "56 ff ff" given as three
// command line words and "56ffff" given as one compile the same. Whitespace
// inside a token is ignored. A single range marker expands into one frame per
// value, in ascending order.
func CompileRaw(tokens []string) (FrameSet, error) {
	text := strings.Join(strings.Fields(strings.Join(tokens, " ")), "")
	if text == "" {
		return nil, ErrEmptyInstruction
	}

	texts, err := ExpandRange(text)
	if err != nil {
		return nil, err
	}

	frames := make(FrameSet, 0, len(texts))
	for _, t := range texts {
		f, err := DecodeFrame(t)
		if err != nil {
			return nil, err
		}
		frames = append(frames, f)
	}
	return frames, nil
}

// CompileLines compiles each line as its own raw instruction and returns all
// resulting frames in order.
func CompileLines(lines []string) (FrameSet, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyInstruction
	}
	var frames FrameSet
	for i, line := range lines {
		fs, err := CompileRaw([]string{line})
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		frames = append(frames, fs...)
	}
	return frames, nil
}

// DecodeFrame decodes contiguous hex digit pairs into a frame.
// Invalid characters are reported before an odd digit count.
func DecodeFrame(text string) (Frame, error) {
	for i := 0; i < len(text); i++ {
		if !isHexDigit(text[i]) {
			return nil, fmt.Errorf("%w: %q at offset %d", ErrInvalidHexDigit, text[i], i)
		}
	}
	if len(text)%2 != 0 {
		return nil, fmt.Errorf("%w: %d digits in %q", ErrOddLengthHex, len(text), text)
	}

	data, err := hex.DecodeString(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidHexDigit, err)
	}
	return Frame(data), nil
}

func isHexDigit(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}
