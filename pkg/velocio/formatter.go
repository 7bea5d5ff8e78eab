// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package velocio

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// DisplayMode selects how transactions are rendered
type DisplayMode string

const (
	DisplayNormal DisplayMode = "normal" // hex tx, hex rx, printable rx
	DisplayRaw    DisplayMode = "raw"    // rx bytes only, as characters
	DisplayMixed  DisplayMode = "mixed"  // hex tx, rx classified per byte
)

// DisplayModes lists the recognized modes in help order
func DisplayModes() []DisplayMode {
	return []DisplayMode{DisplayNormal, DisplayRaw, DisplayMixed}
}

// ParseDisplayMode parses a mode name. The empty string selects normal.
func ParseDisplayMode(s string) (DisplayMode, error) {
	switch DisplayMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", DisplayNormal:
		return DisplayNormal, nil
	case DisplayRaw:
		return DisplayRaw, nil
	case DisplayMixed:
		return DisplayMixed, nil
	}
	return "", fmt.Errorf("%w: %q (recognized modes are normal, raw and mixed)", ErrUnknownDisplayMode, s)
}

func (m DisplayMode) String() string {
	return string(m)
}

// IsAlphanumeric reports whether c is an ASCII digit or falls in the letter
// range 'A'..'z', which includes [\]^_`.
func IsAlphanumeric(c byte) bool {
	return (c > 47 && c < 58) || (c > 64 && c < 123)
}

// Styles holds the lipgloss styles used by the renderer
type Styles struct {
	Label     lipgloss.Style
	Highlight lipgloss.Style
	Dim       lipgloss.Style
}

// NewStyles creates the default styles bound to r
func NewStyles(r *lipgloss.Renderer) Styles {
	return Styles{
		Label:     r.NewStyle().Bold(true),
		Highlight: r.NewStyle().Foreground(lipgloss.Color("10")),
		Dim:       r.NewStyle().Faint(true),
	}
}

// Renderer formats transactions for one display mode
type Renderer struct {
	mode   DisplayMode
	styles Styles
}

// NewRenderer creates a renderer for mode. A nil lipgloss renderer selects
// lipgloss.DefaultRenderer, which detects the terminal's colour support.
func NewRenderer(mode DisplayMode, r *lipgloss.Renderer) *Renderer {
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}
	return &Renderer{mode: mode, styles: NewStyles(r)}
}

// Render formats tx and rx with the default renderer
func Render(mode DisplayMode, tx, rx []byte) string {
	return NewRenderer(mode, nil).Render(tx, rx)
}

// Mode returns the renderer's display mode
func (r *Renderer) Mode() DisplayMode {
	return r.mode
}

// RenderTransaction formats one transaction
func (r *Renderer) RenderTransaction(t Transaction) string {
	return r.Render(t.Tx, t.Rx)
}

// Render formats a transmitted frame and its response. Every byte value is
// handled; rendering never fails.
func (r *Renderer) Render(tx, rx []byte) string {
	switch r.mode {
	case DisplayRaw:
		return string(rx)

	case DisplayMixed:
		cells := make([]string, len(rx))
		for i, c := range rx {
			cells[i] = r.mixedCell(c)
		}
		return fmt.Sprintf("%s %s %s %s",
			r.styles.Label.Render("tx:"), FormatHex(tx),
			r.styles.Label.Render("rx:"), strings.Join(cells, " "))

	default:
		return fmt.Sprintf("%s %s %s %s %s",
			r.styles.Label.Render("tx:"), FormatHex(tx),
			r.styles.Label.Render("rx:"), FormatHex(rx), normalChars(rx))
	}
}

// mixedCell renders one received byte two columns wide so it lines up with
// the hex pairs around it.
func (r *Renderer) mixedCell(c byte) string {
	switch {
	case IsAlphanumeric(c):
		return " " + r.styles.Highlight.Render(string(rune(c)))
	case c == CodeSpace:
		return " _"
	case c == CodeDot:
		return " ."
	case c == CodeFill:
		return r.styles.Dim.Render(fmt.Sprintf("%02x", c))
	default:
		return fmt.Sprintf("%02x", c)
	}
}

// normalChars maps alphanumeric bytes to themselves and everything else to '_'
func normalChars(rx []byte) string {
	out := make([]byte, len(rx))
	for i, c := range rx {
		if IsAlphanumeric(c) {
			out[i] = c
		} else {
			out[i] = '_'
		}
	}
	return string(out)
}
