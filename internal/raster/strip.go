// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package raster fills triangle strips and textured quads on an
// *image.RGBA. It is the software counterpart of the GPU path and texture
// programs.
package raster

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/vector"
)

// Vec2 is a position in destination pixel space.
type Vec2 [2]float32

// StripFiller rasterizes triangle strips with a reusable coverage buffer.
// The zero value is ready to use.
type StripFiller struct {
	z    *vector.Rasterizer
	poly []Vec2
	tmp  []Vec2
}

// Fill composites the strip pts over dst with the premultiplied color c.
//
// Every triangle is wound the same way before accumulation, so regions
// covered by several triangles are painted once at full coverage rather
// than blended repeatedly.
func (f *StripFiller) Fill(dst *image.RGBA, pts []Vec2, c color.RGBA) int {
	if len(pts) < 3 || c.A == 0 {
		return 0
	}
	size := dst.Bounds().Size()
	if size.X <= 0 || size.Y <= 0 {
		return 0
	}
	if f.z == nil {
		f.z = vector.NewRasterizer(size.X, size.Y)
	} else {
		f.z.Reset(size.X, size.Y)
	}

	clip := [4]float32{0, 0, float32(size.X), float32(size.Y)}
	tris := 0
	for i := 0; i+2 < len(pts); i++ {
		a, b, d := pts[i], pts[i+1], pts[i+2]
		area := cross(a, b, d)
		if area == 0 {
			continue
		}
		if area < 0 {
			b, d = d, b
		}
		f.poly = append(f.poly[:0], a, b, d)
		f.poly, f.tmp = clipPolygon(f.poly, f.tmp, clip)
		if len(f.poly) < 3 {
			continue
		}
		f.z.MoveTo(f.poly[0][0], f.poly[0][1])
		for _, p := range f.poly[1:] {
			f.z.LineTo(p[0], p[1])
		}
		f.z.ClosePath()
		tris++
	}
	if tris == 0 {
		return 0
	}
	f.z.DrawOp = draw.Over
	f.z.Draw(dst, dst.Bounds(), image.NewUniform(c), image.Point{})
	return tris
}

// cross returns twice the signed area of the triangle abc.
func cross(a, b, c Vec2) float32 {
	return (b[0]-a[0])*(c[1]-a[1]) - (b[1]-a[1])*(c[0]-a[0])
}
