// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package freehand

// Matrix represents a 2D affine transformation matrix.
// It uses a 2x3 matrix in row-major order:
//
//	| a  b  c |
//	| d  e  f |
//
// This represents the transformation:
//
//	x' = a*x + b*y + c
//	y' = d*x + e*y + f
type Matrix struct {
	A, B, C float64
	D, E, F float64
}

// Identity returns the identity transformation matrix.
func Identity() Matrix {
	return Matrix{
		A: 1, B: 0, C: 0,
		D: 0, E: 1, F: 0,
	}
}

// Translate creates a translation matrix.
func Translate(x, y float64) Matrix {
	return Matrix{
		A: 1, B: 0, C: x,
		D: 0, E: 1, F: y,
	}
}

// Scale creates a scaling matrix.
func Scale(x, y float64) Matrix {
	return Matrix{
		A: x, B: 0, C: 0,
		D: 0, E: y, F: 0,
	}
}

// Ortho returns the projection from surface coordinates (origin top-left,
// y down, width×height units) to clip space (origin center, y up, [-1, 1]).
func Ortho(width, height float64) Matrix {
	if width <= 0 || height <= 0 {
		return Identity()
	}
	return Matrix{
		A: 2 / width, B: 0, C: -1,
		D: 0, E: -2 / height, F: 1,
	}
}

// Multiply multiplies two matrices (m * other).
func (m Matrix) Multiply(other Matrix) Matrix {
	return Matrix{
		A: m.A*other.A + m.B*other.D,
		B: m.A*other.B + m.B*other.E,
		C: m.A*other.C + m.B*other.F + m.C,
		D: m.D*other.A + m.E*other.D,
		E: m.D*other.B + m.E*other.E,
		F: m.D*other.C + m.E*other.F + m.F,
	}
}

// TransformPoint applies the transformation to a point.
func (m Matrix) TransformPoint(p Point) Point {
	return Point{
		X: m.A*p.X + m.B*p.Y + m.C,
		Y: m.D*p.X + m.E*p.Y + m.F,
	}
}

// Float32s packs the matrix as two vec4 rows (a, b, c, 0) and (d, e, f, 0),
// the layout the shaders expect for the projection uniform.
func (m Matrix) Float32s() [8]float32 {
	return [8]float32{
		float32(m.A), float32(m.B), float32(m.C), 0,
		float32(m.D), float32(m.E), float32(m.F), 0,
	}
}
