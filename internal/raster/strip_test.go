// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package raster

import (
	"image"
	"image/color"
	"testing"
)

// near reports whether a and b differ by at most one per channel.
func near(a, b color.RGBA) bool {
	d := func(x, y uint8) bool { return int(x)-int(y) <= 1 && int(y)-int(x) <= 1 }
	return d(a.R, b.R) && d(a.G, b.G) && d(a.B, b.B) && d(a.A, b.A)
}

func TestStripFillerRectangle(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 20, 20))
	red := color.RGBA{R: 255, A: 255}

	// Two triangles covering [4,16]x[6,14].
	pts := []Vec2{{4, 6}, {4, 14}, {16, 6}, {16, 14}}

	var f StripFiller
	if n := f.Fill(dst, pts, red); n != 2 {
		t.Fatalf("Fill() rasterized %d triangles, want 2", n)
	}

	tests := []struct {
		name string
		x, y int
		want color.RGBA
	}{
		{"center", 10, 10, red},
		{"inside corner", 4, 6, red},
		{"left of rect", 2, 10, color.RGBA{}},
		{"below rect", 10, 16, color.RGBA{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := dst.RGBAAt(tt.x, tt.y); !near(got, tt.want) {
				t.Errorf("pixel (%d,%d) = %v, want %v", tt.x, tt.y, got, tt.want)
			}
		})
	}
}

func TestStripFillerOverlapPaintsOnce(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 10, 10))
	half := color.RGBA{R: 128, A: 128}

	// The same quad twice in one strip, plus a degenerate bridge.
	pts := []Vec2{{0, 0}, {0, 10}, {10, 0}, {10, 10}, {10, 10}, {0, 0}, {0, 0}, {0, 10}, {10, 0}, {10, 10}}

	var f StripFiller
	f.Fill(dst, pts, half)

	if got := dst.RGBAAt(5, 5); !near(got, half) {
		t.Errorf("overlapping coverage alpha = %d, want 128", got.A)
	}
}

func TestStripFillerClipsOffscreen(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 8, 8))
	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}

	pts := []Vec2{{-20, -20}, {-20, 30}, {30, -20}, {30, 30}}

	var f StripFiller
	if n := f.Fill(dst, pts, white); n != 2 {
		t.Fatalf("Fill() rasterized %d triangles, want 2", n)
	}
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			if got := dst.RGBAAt(x, y); !near(got, white) {
				t.Fatalf("pixel (%d,%d) = %v, want white", x, y, got)
			}
		}
	}
}

func TestStripFillerDegenerate(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 4, 4))
	var f StripFiller

	tests := []struct {
		name string
		pts  []Vec2
	}{
		{"empty", nil},
		{"two points", []Vec2{{0, 0}, {3, 3}}},
		{"collinear", []Vec2{{0, 0}, {1, 1}, {2, 2}, {3, 3}}},
		{"fully outside", []Vec2{{10, 10}, {10, 20}, {20, 10}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if n := f.Fill(dst, tt.pts, color.RGBA{A: 255}); n != 0 {
				t.Errorf("Fill() = %d, want 0", n)
			}
		})
	}
}

func TestClipPolygon(t *testing.T) {
	tri := []Vec2{{-5, 5}, {5, -5}, {5, 5}}
	out, _ := clipPolygon(tri, nil, [4]float32{0, 0, 10, 10})
	for _, p := range out {
		if p[0] < 0 || p[1] < 0 || p[0] > 10 || p[1] > 10 {
			t.Errorf("clipped vertex %v outside bounds", p)
		}
	}
	if len(out) < 3 {
		t.Fatalf("clipped polygon has %d vertices, want >= 3", len(out))
	}
}

func TestDrawQuad(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 10, 10))
	pts := []Vec2{{2, 2}, {2, 8}, {8, 2}, {8, 8}}
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.SetRGBA(x, y, color.RGBA{B: 255, A: 255})
		}
	}
	if !DrawQuad(dst, pts, img) {
		t.Fatal("DrawQuad() = false, want true")
	}
	if got := dst.RGBAAt(5, 5); !near(got, color.RGBA{B: 255, A: 255}) {
		t.Errorf("inside pixel = %v, want blue", got)
	}
	if got := dst.RGBAAt(0, 0); got.A != 0 {
		t.Errorf("outside pixel = %v, want transparent", got)
	}
	if DrawQuad(dst, pts[:2], img) {
		t.Error("DrawQuad() with two points = true, want false")
	}
}
