// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package raster

import (
	"image"
	"image/draw"
	"math"

	xdraw "golang.org/x/image/draw"
)

// DrawQuad scales src onto the axis-aligned rectangle spanned by pts and
// composites it over dst with bilinear filtering. pts is a textured quad
// strip; only its extent is used.
func DrawQuad(dst *image.RGBA, pts []Vec2, src image.Image) bool {
	if len(pts) < 3 || src == nil || src.Bounds().Empty() {
		return false
	}
	minX, minY := float32(math.MaxFloat32), float32(math.MaxFloat32)
	maxX, maxY := -minX, -minY
	for _, p := range pts {
		minX = min(minX, p[0])
		minY = min(minY, p[1])
		maxX = max(maxX, p[0])
		maxY = max(maxY, p[1])
	}
	r := image.Rect(
		int(math.Round(float64(minX))), int(math.Round(float64(minY))),
		int(math.Round(float64(maxX))), int(math.Round(float64(maxY))),
	)
	if r.Empty() {
		return false
	}
	xdraw.ApproxBiLinear.Scale(dst, r, src, src.Bounds(), draw.Over, nil)
	return true
}
