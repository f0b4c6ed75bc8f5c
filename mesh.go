// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package freehand

import "math"

// minPointDistance is the distance below which two consecutive input points
// are treated as the same point.
const minPointDistance = 1e-6

// maxFlattenDepth bounds recursive curve subdivision.
const maxFlattenDepth = 16

// Mesh is the append-only triangle strip of a stroke. Indices of emitted
// vertices never change, so renderers can upload only the tail returned by
// Since.
type Mesh struct {
	vertices []Vertex
	bounds   Rect
	started  bool
}

// Len returns the number of vertices.
func (m *Mesh) Len() int { return len(m.vertices) }

// Vertices returns the strip vertices. The slice must not be modified.
func (m *Mesh) Vertices() []Vertex { return m.vertices }

// Since returns the vertices appended after the first i.
func (m *Mesh) Since(i int) []Vertex {
	if i >= len(m.vertices) {
		return nil
	}
	if i < 0 {
		i = 0
	}
	return m.vertices[i:]
}

// Bounds returns the smallest rectangle enclosing every vertex.
func (m *Mesh) Bounds() Rect { return m.bounds }

// add appends p. Bounds are tracked on the stored float32 position so they
// enclose exactly what is drawn.
func (m *Mesh) add(p Point) {
	v := vertexAt(p)
	q := v.Point()
	if !m.started {
		m.bounds = RectAt(q)
		m.started = true
	} else {
		m.bounds = m.bounds.Extend(q)
	}
	m.vertices = append(m.vertices, v)
}

// pair emits the strip pair (c + n·hw, c − n·hw).
func (m *Mesh) pair(c, n Point, hw float64) {
	m.add(c.Add(n.Mul(hw)))
	m.add(c.Sub(n.Mul(hw)))
}

// stripBuilder extrudes a smoothed centerline into a Mesh one input point at
// a time.
//
// Smoothing runs quadratic curves between the midpoints of consecutive
// samples, using each sample as the control point. The builder keeps only
// the state it needs to continue: the last accepted sample and the last
// emitted centerline point with its normal.
type stripBuilder struct {
	mesh *Mesh

	hw        float64
	cap       LineCap
	joinAngle float64
	tolerance float64
	arcStep   float64

	samples int
	last    Point
	first   Point

	cur        Point // last emitted centerline point
	norm       Point // normal of the last emitted segment
	hasSegment bool
}

func newStripBuilder(mesh *Mesh, style Style) *stripBuilder {
	hw := style.Width / 2
	b := &stripBuilder{
		mesh:      mesh,
		hw:        hw,
		cap:       style.Cap,
		joinAngle: style.JoinAngle,
		tolerance: style.Tolerance,
	}
	b.arcStep = arcStep(hw, style.Tolerance)
	return b
}

// arcStep returns the largest rotation whose chord deviates from an arc of
// radius r by at most tol.
func arcStep(r, tol float64) float64 {
	if tol >= r {
		return math.Pi / 2
	}
	return 2 * math.Acos(1-tol/r)
}

// addSample feeds the next input point. It reports false when p was
// filtered as a duplicate of the previous sample.
func (b *stripBuilder) addSample(p Point) bool {
	switch {
	case b.samples == 0:
		b.first, b.last, b.cur = p, p, p
	case p.Distance(b.last) < minPointDistance:
		return false
	case b.samples == 1:
		b.lineTo(Midpoint(b.last, p))
		b.last = p
	default:
		b.quadTo(b.last, Midpoint(b.last, p))
		b.last = p
	}
	b.samples++
	return true
}

// finish closes the centerline at the last sample and emits the end cap,
// or a dot when no segment was ever emitted.
func (b *stripBuilder) finish() {
	if b.samples >= 2 {
		b.lineTo(b.last)
	}
	if !b.hasSegment {
		b.dot(b.first)
		return
	}
	b.endCap(b.cur, b.norm)
}

func (b *stripBuilder) quadTo(ctrl, end Point) {
	v0 := ctrl.Sub(b.cur)
	v1 := end.Sub(ctrl)
	if IsParallel(v0, v1) && v0.Dot(v1) > 0 {
		b.lineTo(end)
		return
	}
	b.flattenQuadRec(b.cur, ctrl, end, 0)
}

func (b *stripBuilder) flattenQuadRec(p0, p1, p2 Point, depth int) {
	if depth >= maxFlattenDepth || distanceToLine(p1, p0, p2) < b.tolerance {
		b.lineTo(p2)
		return
	}

	q0 := p0.Lerp(p1, 0.5)
	q1 := p1.Lerp(p2, 0.5)
	q2 := q0.Lerp(q1, 0.5)

	b.flattenQuadRec(p0, q0, q2, depth+1)
	b.flattenQuadRec(q2, q1, p2, depth+1)
}

// lineTo extends the centerline from the current point to s.
func (b *stripBuilder) lineTo(s Point) {
	if s.Distance(b.cur) < minPointDistance {
		return
	}
	n := UnitNormal(b.cur, s)
	if !b.hasSegment {
		b.startCap(b.cur, n)
		b.mesh.pair(b.cur, n, b.hw)
		b.hasSegment = true
	} else if turn := turnAngle(b.norm, n); math.Abs(turn) > b.joinAngle {
		b.roundJoin(b.cur, turn)
		b.mesh.pair(b.cur, n, b.hw)
	}
	b.mesh.pair(s, n, b.hw)
	b.cur, b.norm = s, n
}

// roundJoin rotates the previous pair at c toward the new normal in steps no
// larger than the join angle. The final orientation is left to the caller.
func (b *stripBuilder) roundJoin(c Point, turn float64) {
	step := math.Min(b.joinAngle, b.arcStep)
	steps := int(math.Ceil(math.Abs(turn) / step))
	left := c.Add(b.norm.Mul(b.hw))
	right := c.Sub(b.norm.Mul(b.hw))
	for k := 1; k < steps; k++ {
		theta := turn * float64(k) / float64(steps)
		b.mesh.add(RotateAboutPoint(left, theta, c))
		b.mesh.add(RotateAboutPoint(right, theta, c))
	}
}

// capSteps returns the number of rotations used to sweep a quarter turn.
func (b *stripBuilder) capSteps() int {
	steps := int(math.Ceil((math.Pi / 2) / b.arcStep))
	return max(2, min(steps, 32))
}

// startCap emits the cap behind p, ending just before the pair (p, n).
func (b *stripBuilder) startCap(p, n Point) {
	switch b.cap {
	case CapRound:
		left := p.Add(n.Mul(b.hw))
		right := p.Sub(n.Mul(b.hw))
		steps := b.capSteps()
		for k := steps; k > 0; k-- {
			theta := (math.Pi / 2) * float64(k) / float64(steps)
			b.mesh.add(RotateAboutPoint(left, theta, p))
			b.mesh.add(RotateAboutPoint(right, -theta, p))
		}
	case CapSquare:
		d := Rotate(n, -math.Pi/2)
		b.mesh.pair(p.Sub(d.Mul(b.hw)), n, b.hw)
	}
}

// endCap emits the cap past p, starting just after the pair (p, n).
func (b *stripBuilder) endCap(p, n Point) {
	switch b.cap {
	case CapRound:
		left := p.Add(n.Mul(b.hw))
		right := p.Sub(n.Mul(b.hw))
		steps := b.capSteps()
		for k := 1; k <= steps; k++ {
			theta := (math.Pi / 2) * float64(k) / float64(steps)
			b.mesh.add(RotateAboutPoint(left, -theta, p))
			b.mesh.add(RotateAboutPoint(right, theta, p))
		}
	case CapSquare:
		d := Rotate(n, -math.Pi/2)
		b.mesh.pair(p.Add(d.Mul(b.hw)), n, b.hw)
	}
}

// dot emits the geometry of a stroke that never moved: a square for square
// caps, otherwise a disk of the line width.
func (b *stripBuilder) dot(p Point) {
	n := Point{X: 0, Y: 1}
	if b.cap == CapSquare {
		d := Point{X: 1, Y: 0}
		b.mesh.pair(p.Sub(d.Mul(b.hw)), n, b.hw)
		b.mesh.pair(p.Add(d.Mul(b.hw)), n, b.hw)
		return
	}
	saved := b.cap
	b.cap = CapRound
	b.startCap(p, n)
	b.mesh.pair(p, n, b.hw)
	b.endCap(p, n)
	b.cap = saved
}

// distanceToLine calculates the perpendicular distance from point p to line segment (a, b).
func distanceToLine(p, a, b Point) float64 {
	ab := b.Sub(a)
	abLen := ab.Length()

	if abLen < 1e-10 {
		return p.Distance(a)
	}

	ap := p.Sub(a)
	t := ap.Dot(ab) / (abLen * abLen)

	if t < 0 {
		return p.Distance(a)
	}
	if t > 1 {
		return p.Distance(b)
	}

	closest := a.Add(ab.Mul(t))
	return p.Distance(closest)
}
