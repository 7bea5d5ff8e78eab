// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package velocio

import (
	"io"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func plainRenderer() *lipgloss.Renderer {
	r := lipgloss.NewRenderer(io.Discard)
	r.SetColorProfile(termenv.Ascii)
	return r
}

func ansiRenderer() *lipgloss.Renderer {
	r := lipgloss.NewRenderer(io.Discard)
	r.SetColorProfile(termenv.ANSI)
	return r
}

func TestParseDisplayMode(t *testing.T) {
	tests := []struct {
		in   string
		want DisplayMode
	}{
		{"", DisplayNormal},
		{"normal", DisplayNormal},
		{"raw", DisplayRaw},
		{"mixed", DisplayMixed},
		{" MIXED ", DisplayMixed},
	}
	for _, tt := range tests {
		got, err := ParseDisplayMode(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseDisplayMode("fancy")
	assert.ErrorIs(t, err, ErrUnknownDisplayMode)
	assert.True(t, IsInputError(err))
}

func TestIsAlphanumeric(t *testing.T) {
	for c := 0; c < 256; c++ {
		want := (c >= '0' && c <= '9') || (c >= 'A' && c <= 'z')
		assert.Equal(t, want, IsAlphanumeric(byte(c)), "code %d", c)
	}
}

func TestRender_Raw(t *testing.T) {
	r := NewRenderer(DisplayRaw, plainRenderer())
	assert.Equal(t, "hi", r.Render([]byte{0x56, 0xff}, []byte{0x68, 0x69}))
	assert.Equal(t, "", r.Render([]byte{0x56}, nil))
	assert.Equal(t, "\x00\xff", r.Render(nil, []byte{0x00, 0xff}))
}

func TestRender_Normal(t *testing.T) {
	r := NewRenderer(DisplayNormal, plainRenderer())

	got := r.Render([]byte{0x56, 0xff}, []byte{0x4f, 0x4b, 0x20, 0x2e, 0x00})
	assert.Equal(t, "tx: 56 ff rx: 4f 4b 20 2e 00 OK___", got)

	got = r.Render([]byte{0x01}, nil)
	assert.Equal(t, "tx: 01 rx:  ", got)
}

func TestRender_Mixed(t *testing.T) {
	r := NewRenderer(DisplayMixed, plainRenderer())

	got := r.Render([]byte{0x41}, []byte{0x41, 0x20, 0x2e, 0xff, 0x00, 0x7e})
	assert.Equal(t, "tx: 41 rx:  A  _  . ff 00 7e", got)
}

func TestRender_MixedStyles(t *testing.T) {
	lr := ansiRenderer()
	styles := NewStyles(lr)
	r := NewRenderer(DisplayMixed, lr)

	highlighted := styles.Highlight.Render("A")
	require.NotEqual(t, "A", highlighted, "ANSI profile must add escape sequences")

	got := r.Render([]byte{0x41}, []byte{0x41})
	assert.True(t, strings.HasSuffix(got, " "+highlighted), got)
	assert.Contains(t, got, styles.Label.Render("tx:"))

	dimmed := styles.Dim.Render("ff")
	require.NotEqual(t, "ff", dimmed)
	got = r.Render(nil, []byte{0xff})
	assert.True(t, strings.HasSuffix(got, dimmed), got)

	got = r.Render(nil, []byte{0x20})
	assert.True(t, strings.HasSuffix(got, " _"), got)
}

func TestRender_TotalOverAllBytes(t *testing.T) {
	all := make([]byte, 256)
	for i := range all {
		all[i] = byte(i)
	}
	for _, mode := range DisplayModes() {
		r := NewRenderer(mode, plainRenderer())
		assert.NotPanics(t, func() { r.Render(all, all) }, mode.String())
	}

	normal := NewRenderer(DisplayNormal, plainRenderer()).Render(nil, all)
	assert.Contains(t, normal, FormatHex(all))
}

func TestFormatHex(t *testing.T) {
	assert.Equal(t, "", FormatHex(nil))
	assert.Equal(t, "00", FormatHex([]byte{0}))
	assert.Equal(t, "56 ff 0a", FormatHex([]byte{0x56, 0xff, 0x0a}))
	assert.Equal(t, "56 ff", Frame{0x56, 0xff}.Hex())
}
