// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package velocio

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Range marker delimiters, e.g. [07,0c] or [07-0c]
const (
	rangeOpen  = '['
	rangeClose = ']'
)

var rangeBody = regexp.MustCompile(`^([0-9a-fA-F]{2})[,\-]([0-9a-fA-F]{2})$`)

// ExpandRange expands the inclusive byte range marker in text into one string
// per value, in ascending order. The marker is replaced with the lowercase
// two digit hex form of each value; nothing else in text changes.
//
// Text without a marker is returned unchanged as the only element. At most one
// marker is supported.
func ExpandRange(text string) ([]string, error) {
	opens := strings.Count(text, string(rangeOpen))
	closes := strings.Count(text, string(rangeClose))
	if opens == 0 && closes == 0 {
		return []string{text}, nil
	}
	if opens > 1 {
		return nil, fmt.Errorf("%w: %d markers in %q", ErrMultipleRanges, opens, text)
	}

	start := strings.IndexByte(text, rangeOpen)
	end := strings.IndexByte(text, rangeClose)
	if opens != 1 || closes != 1 || end < start {
		return nil, fmt.Errorf("%w: unbalanced brackets in %q", ErrMalformedRange, text)
	}

	lo, hi, err := parseRangeBody(text[start+1 : end])
	if err != nil {
		return nil, err
	}

	prefix, suffix := text[:start], text[end+1:]
	out := make([]string, 0, hi-lo+1)
	for i := lo; i <= hi; i++ {
		out = append(out, prefix+fmt.Sprintf("%02x", i)+suffix)
	}
	return out, nil
}

// parseRangeBody parses "AA,BB" or "AA-BB" into inclusive bounds.
func parseRangeBody(body string) (int, int, error) {
	m := rangeBody.FindStringSubmatch(body)
	if m == nil {
		return 0, 0, fmt.Errorf("%w: [%s] (want [AA,BB] with two digit hex bounds)", ErrMalformedRange, body)
	}

	lo, err := strconv.ParseUint(m[1], 16, 8)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: start %q: %v", ErrMalformedRange, m[1], err)
	}
	hi, err := strconv.ParseUint(m[2], 16, 8)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: end %q: %v", ErrMalformedRange, m[2], err)
	}
	if lo > hi {
		return 0, 0, fmt.Errorf("%w: start 0x%02x > end 0x%02x", ErrMalformedRange, lo, hi)
	}
	return int(lo), int(hi), nil
}
