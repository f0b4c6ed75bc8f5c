// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package freehand

import (
	"fmt"
	"math"
)

// LineCap specifies the shape of stroke endpoints.
type LineCap int

const (
	// CapButt ends the stroke flat at its endpoints.
	CapButt LineCap = iota

	// CapRound terminates the stroke with a semicircle of the line width.
	CapRound

	// CapSquare extends the stroke by half the line width past its endpoints.
	CapSquare
)

// String returns the string representation of the line cap.
func (c LineCap) String() string {
	switch c {
	case CapButt:
		return "butt"
	case CapRound:
		return "round"
	case CapSquare:
		return "square"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (c LineCap) MarshalText() ([]byte, error) {
	if c < CapButt || c > CapSquare {
		return nil, fmt.Errorf("freehand: invalid line cap %d", int(c))
	}
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *LineCap) UnmarshalText(text []byte) error {
	switch string(text) {
	case "butt", "":
		*c = CapButt
	case "round":
		*c = CapRound
	case "square":
		*c = CapSquare
	default:
		return fmt.Errorf("freehand: invalid line cap %q", text)
	}
	return nil
}

const (
	// DefaultJoinAngle is the turn, in radians, above which a round join is
	// inserted between two segments.
	DefaultJoinAngle = math.Pi / 8

	// DefaultTolerance is the curve flattening tolerance in surface units.
	DefaultTolerance = 0.25

	// DefaultLineWidth is the line width of a new surface.
	DefaultLineWidth = 4.0
)

// Style is the drawing style captured when a stroke begins. Later changes to
// a surface's style never affect strokes already begun.
type Style struct {
	Color     RGBA
	Opacity   float64
	Width     float64
	Cap       LineCap
	JoinAngle float64
	Tolerance float64
}

// DefaultStyle returns an opaque black style of DefaultLineWidth.
func DefaultStyle() Style {
	return Style{
		Color:     Black,
		Opacity:   1,
		Width:     DefaultLineWidth,
		Cap:       CapButt,
		JoinAngle: DefaultJoinAngle,
		Tolerance: DefaultTolerance,
	}
}

// Validate reports whether s can be used to build a stroke.
// Errors wrap ErrInvalidStyle.
func (s Style) Validate() error {
	switch {
	case !finitePositive(s.Width):
		return fmt.Errorf("%w: width %v", ErrInvalidStyle, s.Width)
	case math.IsNaN(s.Opacity) || s.Opacity < 0 || s.Opacity > 1:
		return fmt.Errorf("%w: opacity %v", ErrInvalidStyle, s.Opacity)
	case !s.Color.valid():
		return fmt.Errorf("%w: color %+v", ErrInvalidStyle, s.Color)
	case s.Cap < CapButt || s.Cap > CapSquare:
		return fmt.Errorf("%w: cap %d", ErrInvalidStyle, int(s.Cap))
	case !finitePositive(s.JoinAngle):
		return fmt.Errorf("%w: join angle %v", ErrInvalidStyle, s.JoinAngle)
	case !finitePositive(s.Tolerance):
		return fmt.Errorf("%w: tolerance %v", ErrInvalidStyle, s.Tolerance)
	}
	return nil
}

// withDefaults fills zero join angle and tolerance with their defaults.
func (s Style) withDefaults() Style {
	if s.JoinAngle == 0 {
		s.JoinAngle = DefaultJoinAngle
	}
	if s.Tolerance == 0 {
		s.Tolerance = DefaultTolerance
	}
	return s
}

// tint returns the draw color: Color with its alpha scaled by Opacity.
func (s Style) tint() RGBA {
	return s.Color.WithAlpha(s.Color.A * s.Opacity)
}

func finitePositive(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}
