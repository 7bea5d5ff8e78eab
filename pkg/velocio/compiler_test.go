// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package velocio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileRaw_RangeRoundTrip(t *testing.T) {
	frames, err := CompileRaw([]string{"56", "ff", "ff", "00", "08", "0a", "00", "[01,03]"})
	require.NoError(t, err)
	require.Len(t, frames, 3)

	for i, f := range frames {
		want := Frame{0x56, 0xff, 0xff, 0x00, 0x08, 0x0a, 0x00, byte(i + 1)}
		assert.Equal(t, want, f, "frame %d", i)
	}
}

func TestCompileRaw_TokenBoundaries(t *testing.T) {
	tests := []struct {
		name   string
		tokens []string
	}{
		{"one word per byte", []string{"56", "ff", "ff", "00", "07", "f1", "01"}},
		{"single contiguous word", []string{"56ffff0007f101"}},
		{"uneven words", []string{"56f", "fff", "0007f101"}},
		{"spaces inside a word", []string{"56 ff ff 00 07 f1 01"}},
		{"mixed case", []string{"56FFff0007F101"}},
	}

	want := Frame{0x56, 0xff, 0xff, 0x00, 0x07, 0xf1, 0x01}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frames, err := CompileRaw(tt.tokens)
			require.NoError(t, err)
			require.Len(t, frames, 1)
			assert.Equal(t, want, frames[0])
		})
	}
}

func TestCompileRaw_Errors(t *testing.T) {
	tests := []struct {
		name   string
		tokens []string
		want   error
	}{
		{"odd length", []string{"56f"}, ErrOddLengthHex},
		{"odd length after range", []string{"56f", "[01,02]"}, ErrOddLengthHex},
		{"invalid digit", []string{"56", "fg"}, ErrInvalidHexDigit},
		{"prefix not allowed", []string{"0x56"}, ErrInvalidHexDigit},
		{"inverted range", []string{"56", "[0c,07]"}, ErrMalformedRange},
		{"two ranges", []string{"[01,02]", "[03,04]"}, ErrMultipleRanges},
		{"no tokens", nil, ErrEmptyInstruction},
		{"only whitespace", []string{" ", "\t"}, ErrEmptyInstruction},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frames, err := CompileRaw(tt.tokens)
			assert.ErrorIs(t, err, tt.want)
			assert.Nil(t, frames)
			assert.True(t, IsInputError(err))
		})
	}
}

func TestDecodeFrame(t *testing.T) {
	f, err := DecodeFrame("00ff7e")
	require.NoError(t, err)
	assert.Equal(t, Frame{0x00, 0xff, 0x7e}, f)

	f, err = DecodeFrame("")
	require.NoError(t, err)
	assert.Empty(t, f)

	_, err = DecodeFrame("0g1")
	assert.ErrorIs(t, err, ErrInvalidHexDigit, "invalid digit wins over odd length")
}

func TestCompileLines(t *testing.T) {
	frames, err := CompileLines([]string{"56ffff0007f002", "56 ff ff 00 08 0a 00 [01,02]"})
	require.NoError(t, err)
	require.Len(t, frames, 3)
	assert.Equal(t, Frame{0x56, 0xff, 0xff, 0x00, 0x07, 0xf0, 0x02}, frames[0])
	assert.Equal(t, byte(0x01), frames[1][7])
	assert.Equal(t, byte(0x02), frames[2][7])

	_, err = CompileLines([]string{"5601", "56f"})
	assert.ErrorIs(t, err, ErrOddLengthHex)
	assert.Contains(t, err.Error(), "line 2")

	_, err = CompileLines(nil)
	assert.ErrorIs(t, err, ErrEmptyInstruction)
}
