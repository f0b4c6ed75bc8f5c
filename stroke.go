// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package freehand

import "fmt"

// Stroke is one continuous drawing gesture: its input points, the style it
// began with and the triangle-strip mesh derived from them.
//
// A stroke is open until FinishWithPoint seals it. The mesh is a
// deterministic function of the points and style, so a stroke rebuilt from
// the same points is identical to the live one.
//
// Stroke borrows its PathShader; it never destroys it.
type Stroke struct {
	shader PathShader
	style  Style

	points  []Point
	mesh    Mesh
	builder *stripBuilder
	bounds  Rect
	sealed  bool
}

// NewStroke starts an open stroke at p.
func NewStroke(shader PathShader, p Point, style Style) (*Stroke, error) {
	style = style.withDefaults()
	if err := style.Validate(); err != nil {
		return nil, err
	}
	if !p.IsFinite() {
		return nil, fmt.Errorf("freehand: non-finite point %v", p)
	}
	s := &Stroke{
		shader: shader,
		style:  style,
		bounds: RectAt(p),
	}
	s.builder = newStripBuilder(&s.mesh, style)
	s.points = append(s.points, p)
	s.builder.addSample(p)
	return s, nil
}

// NewStrokeFromPoints builds an open stroke from points, appending each in
// order. It fails with ErrNoPoints when points is empty.
func NewStrokeFromPoints(shader PathShader, points []Point, style Style) (*Stroke, error) {
	if len(points) == 0 {
		return nil, ErrNoPoints
	}
	s, err := NewStroke(shader, points[0], style)
	if err != nil {
		return nil, err
	}
	for _, p := range points[1:] {
		if _, err := s.AppendPoint(p); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// AppendPoint adds p to an open stroke and extends the mesh. It returns the
// stroke's bounding rectangle after the append.
func (s *Stroke) AppendPoint(p Point) (Rect, error) {
	if s.sealed {
		return s.bounds, ErrStrokeSealed
	}
	if !p.IsFinite() {
		return s.bounds, fmt.Errorf("freehand: non-finite point %v", p)
	}
	s.points = append(s.points, p)
	before := s.mesh.Len()
	s.builder.addSample(p)
	s.grow(before)
	return s.bounds, nil
}

// FinishWithPoint appends p, closes the mesh with the end cap and seals the
// stroke. It returns the final bounding rectangle.
func (s *Stroke) FinishWithPoint(p Point) (Rect, error) {
	if _, err := s.AppendPoint(p); err != nil {
		return s.bounds, err
	}
	s.seal()
	return s.bounds, nil
}

func (s *Stroke) seal() {
	before := s.mesh.Len()
	s.builder.finish()
	s.grow(before)
	s.builder = nil
	s.sealed = true
}

func (s *Stroke) grow(before int) {
	if s.mesh.Len() == before {
		return
	}
	s.bounds = s.bounds.Union(s.mesh.Bounds())
	Logger().Debug("freehand: stroke mesh grew",
		"points", len(s.points), "vertices", s.mesh.Len(), "added", s.mesh.Len()-before)
}

// Render draws the mesh with the stroke color, its alpha scaled by the
// stroke opacity. It does not mutate the stroke.
func (s *Stroke) Render() error {
	if s.mesh.Len() == 0 {
		return nil
	}
	if s.shader == nil {
		return errNoShader
	}
	if err := s.shader.PrepareToDraw(); err != nil {
		return err
	}
	return s.shader.DrawMesh(&s.mesh, s.style.tint())
}

// release drops any per-mesh GPU state held by the shader.
func (s *Stroke) release() {
	if s.shader != nil {
		s.shader.ReleaseMesh(&s.mesh)
	}
}

// InputPoints returns a copy of the recorded input points, duplicates
// included.
func (s *Stroke) InputPoints() []Point {
	out := make([]Point, len(s.points))
	copy(out, s.points)
	return out
}

// BoundingRect returns the smallest rectangle enclosing every mesh vertex.
// A stroke without geometry has a zero-size rectangle at its first point.
func (s *Stroke) BoundingRect() Rect { return s.bounds }

// Mesh returns the stroke's triangle strip.
func (s *Stroke) Mesh() *Mesh { return &s.mesh }

// VertexCount returns the number of mesh vertices.
func (s *Stroke) VertexCount() int { return s.mesh.Len() }

// Style returns the style captured when the stroke began.
func (s *Stroke) Style() Style { return s.style }

// Color returns the stroke color.
func (s *Stroke) Color() RGBA { return s.style.Color }

// Opacity returns the stroke opacity.
func (s *Stroke) Opacity() float64 { return s.style.Opacity }

// Width returns the stroke line width.
func (s *Stroke) Width() float64 { return s.style.Width }

// Sealed reports whether the stroke has been finished.
func (s *Stroke) Sealed() bool { return s.sealed }
