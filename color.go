// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package freehand

import (
	"fmt"
	"image/color"
	"math"
)

// RGBA represents a straight (non-premultiplied) color.
// Each component is in the range [0, 1].
type RGBA struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
	A float64 `json:"a"`
}

// Color converts RGBA to the standard color.Color interface.
func (c RGBA) Color() color.Color {
	return color.NRGBA{
		R: uint8(clamp255(c.R * 255)),
		G: uint8(clamp255(c.G * 255)),
		B: uint8(clamp255(c.B * 255)),
		A: uint8(clamp255(c.A * 255)),
	}
}

// FromColor converts a standard color.Color to RGBA.
func FromColor(c color.Color) RGBA {
	return FromNRGBA(color.NRGBAModel.Convert(c).(color.NRGBA))
}

// FromNRGBA converts an 8-bit straight alpha color to RGBA.
func FromNRGBA(c color.NRGBA) RGBA {
	return RGBA{
		R: float64(c.R) / 255,
		G: float64(c.G) / 255,
		B: float64(c.B) / 255,
		A: float64(c.A) / 255,
	}
}

// RGB creates an opaque color from RGB components.
func RGB(r, g, b float64) RGBA {
	return RGBA{R: r, G: g, B: b, A: 1.0}
}

// WithAlpha returns c with its alpha replaced by a.
func (c RGBA) WithAlpha(a float64) RGBA {
	c.A = a
	return c
}

// Premultiply returns a premultiplied color.
func (c RGBA) Premultiply() RGBA {
	return RGBA{
		R: c.R * c.A,
		G: c.G * c.A,
		B: c.B * c.A,
		A: c.A,
	}
}

// Premultiplied8 returns the premultiplied 8-bit form used by image.RGBA.
func (c RGBA) Premultiplied8() color.RGBA {
	p := c.Premultiply()
	return color.RGBA{
		R: uint8(math.Round(clamp255(p.R * 255))),
		G: uint8(math.Round(clamp255(p.G * 255))),
		B: uint8(math.Round(clamp255(p.B * 255))),
		A: uint8(math.Round(clamp255(p.A * 255))),
	}
}

// valid reports whether every component is finite and within [0, 1].
func (c RGBA) valid() bool {
	for _, v := range [4]float64{c.R, c.G, c.B, c.A} {
		if math.IsNaN(v) || v < 0 || v > 1 {
			return false
		}
	}
	return true
}

// ParseHex parses a color from a hex string.
// Supported formats: "RGB", "RGBA", "RRGGBB", "RRGGBBAA", with an optional
// leading '#'.
func ParseHex(hex string) (RGBA, error) {
	s := hex
	if s != "" && s[0] == '#' {
		s = s[1:]
	}

	var digits [8]uint32
	for i := 0; i < len(s); i++ {
		if i >= len(digits) {
			return RGBA{}, fmt.Errorf("freehand: invalid hex color %q", hex)
		}
		d, ok := hexDigit(s[i])
		if !ok {
			return RGBA{}, fmt.Errorf("freehand: invalid hex color %q", hex)
		}
		digits[i] = d
	}

	var r, g, b, a uint32 = 0, 0, 0, 255
	switch len(s) {
	case 3, 4:
		r, g, b = digits[0]*17, digits[1]*17, digits[2]*17
		if len(s) == 4 {
			a = digits[3] * 17
		}
	case 6, 8:
		r, g, b = digits[0]<<4|digits[1], digits[2]<<4|digits[3], digits[4]<<4|digits[5]
		if len(s) == 8 {
			a = digits[6]<<4 | digits[7]
		}
	default:
		return RGBA{}, fmt.Errorf("freehand: invalid hex color %q", hex)
	}

	return RGBA{
		R: float64(r) / 255,
		G: float64(g) / 255,
		B: float64(b) / 255,
		A: float64(a) / 255,
	}, nil
}

func hexDigit(c byte) (uint32, bool) {
	switch {
	case '0' <= c && c <= '9':
		return uint32(c - '0'), true
	case 'a' <= c && c <= 'f':
		return uint32(c - 'a' + 10), true
	case 'A' <= c && c <= 'F':
		return uint32(c - 'A' + 10), true
	}
	return 0, false
}

// clamp255 restricts a value to [0, 255] range.
func clamp255(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 255 {
		return 255
	}
	return x
}

// Common colors
var (
	Black       = RGB(0, 0, 0)
	White       = RGB(1, 1, 1)
	Red         = RGB(1, 0, 0)
	Green       = RGB(0, 1, 0)
	Blue        = RGB(0, 0, 1)
	Transparent = RGBA{}
)
