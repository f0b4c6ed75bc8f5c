// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package raster

// clipPolygon clips the convex polygon in against the rectangle
// {minX, minY, maxX, maxY} and returns the result in place of in, along with
// the scratch slice for reuse.
func clipPolygon(in, scratch []Vec2, r [4]float32) (out, tmp []Vec2) {
	// Each edge keeps the half plane where inside returns true.
	edges := [4]struct {
		axis  int
		bound float32
		keepG bool
	}{
		{0, r[0], true},
		{0, r[2], false},
		{1, r[1], true},
		{1, r[3], false},
	}
	cur, next := in, scratch
	for _, e := range edges {
		if len(cur) == 0 {
			break
		}
		next = next[:0]
		inside := func(p Vec2) bool {
			if e.keepG {
				return p[e.axis] >= e.bound
			}
			return p[e.axis] <= e.bound
		}
		prev := cur[len(cur)-1]
		prevIn := inside(prev)
		for _, p := range cur {
			pIn := inside(p)
			if pIn != prevIn {
				next = append(next, intersect(prev, p, e.axis, e.bound))
			}
			if pIn {
				next = append(next, p)
			}
			prev, prevIn = p, pIn
		}
		cur, next = next, cur
	}
	return cur, next
}

// intersect returns the point of segment ab on the line p[axis] == bound.
func intersect(a, b Vec2, axis int, bound float32) Vec2 {
	t := (bound - a[axis]) / (b[axis] - a[axis])
	return Vec2{
		a[0] + (b[0]-a[0])*t,
		a[1] + (b[1]-a[1])*t,
	}
}
