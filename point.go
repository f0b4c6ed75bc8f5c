// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package freehand

import "math"

// Point represents a 2D point or vector in surface coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pt is a convenience function to create a Point.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Add returns the sum of two points (vector addition).
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns the difference of two points (vector subtraction).
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Mul returns the point scaled by a scalar.
func (p Point) Mul(s float64) Point {
	return Point{X: p.X * s, Y: p.Y * s}
}

// Dot returns the dot product of two vectors.
func (p Point) Dot(q Point) float64 {
	return p.X*q.X + p.Y*q.Y
}

// Cross returns the 2D cross product (scalar).
func (p Point) Cross(q Point) float64 {
	return p.X*q.Y - p.Y*q.X
}

// Length returns the length of the vector.
func (p Point) Length() float64 {
	return math.Hypot(p.X, p.Y)
}

// Distance returns the distance between two points.
func (p Point) Distance(q Point) float64 {
	return p.Sub(q).Length()
}

// Normalize returns a unit vector in the same direction.
// The zero vector normalizes to the zero vector.
func (p Point) Normalize() Point {
	length := p.Length()
	if length == 0 {
		return Point{X: 0, Y: 0}
	}
	return Point{X: p.X / length, Y: p.Y / length}
}

// Lerp performs linear interpolation between two points.
// t=0 returns p, t=1 returns q, intermediate values interpolate.
func (p Point) Lerp(q Point, t float64) Point {
	return Point{
		X: p.X + (q.X-p.X)*t,
		Y: p.Y + (q.Y-p.Y)*t,
	}
}

// IsFinite reports whether both coordinates are finite numbers.
func (p Point) IsFinite() bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) &&
		!math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}

// Midpoint returns the arithmetic mean of p1 and p2.
func Midpoint(p1, p2 Point) Point {
	return Point{X: (p1.X + p2.X) / 2, Y: (p1.Y + p2.Y) / 2}
}

// UnitNormal returns the unit vector perpendicular to the segment p1→p2,
// pointing to the left of the direction of travel in a y-up frame.
//
// The result has NaN components when p1 == p2; callers filter
// coincident points first.
func UnitNormal(p1, p2 Point) Point {
	n := Point{X: p1.Y - p2.Y, Y: p2.X - p1.X}
	l := n.Length()
	return Point{X: n.X / l, Y: n.Y / l}
}

// Angle returns the unsigned angle between v and the positive x-axis,
// in [0, π]. The direction of rotation is not recoverable from the result.
//
// Angle returns NaN for the zero vector.
func Angle(v Point) float64 {
	l := v.Length()
	cos := v.X / l
	// Rounding can push |cos| slightly past 1 for near-axis vectors.
	if cos > 1 {
		cos = 1
	} else if cos < -1 {
		cos = -1
	}
	return math.Acos(cos)
}

// parallelEpsilon is the relative cross-product magnitude below which two
// vectors are treated as having equal slope.
const parallelEpsilon = 1e-9

// IsParallel reports whether v0 and v1 have the same slope. Vectors that
// both lie on the same axis are parallel, including antiparallel pairs.
func IsParallel(v0, v1 Point) bool {
	if (v0.X == 0 && v1.X == 0) || (v0.Y == 0 && v1.Y == 0) {
		return true
	}
	return math.Abs(v0.Cross(v1)) <= parallelEpsilon*v0.Length()*v1.Length()
}

// Rotate returns v rotated by angle radians around the origin.
func Rotate(v Point, angle float64) Point {
	sin, cos := math.Sincos(angle)
	return Point{
		X: v.X*cos - v.Y*sin,
		Y: v.X*sin + v.Y*cos,
	}
}

// RotateAboutPoint returns v rotated by angle radians around center.
func RotateAboutPoint(v Point, angle float64, center Point) Point {
	return Rotate(v.Sub(center), angle).Add(center)
}

// turnAngle returns the signed angle that rotates a onto b, in [-π, π].
// Both vectors must be non-zero.
func turnAngle(a, b Point) float64 {
	mag := Angle(Point{X: a.Dot(b), Y: a.Cross(b)})
	if a.Cross(b) < 0 {
		return -mag
	}
	return mag
}
