// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build !nogpu

package gpu

import (
	"encoding/binary"
	"image"
	"image/draw"
	"math"

	"github.com/gogpu/freehand"
)

// copyPitchAlignment is the BytesPerRow alignment required for
// texture-to-buffer copies.
const copyPitchAlignment = 256

// alignedRowBytes returns the padded row pitch for a readback of width w.
func alignedRowBytes(w uint32) uint32 {
	return (w*4 + copyPitchAlignment - 1) &^ (copyPitchAlignment - 1)
}

// pathUniformSize is projection (2 × vec4<f32>) + color (vec4<f32>).
const pathUniformSize = 48

// textureUniformSize is projection only.
const textureUniformSize = 32

func pathUniformBytes(proj freehand.Matrix, c freehand.RGBA) []byte {
	buf := make([]byte, 0, pathUniformSize)
	buf = appendMatrix(buf, proj)
	p := c.Premultiply()
	for _, v := range [4]float64{p.R, p.G, p.B, p.A} {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(float32(v)))
	}
	return buf
}

func textureUniformBytes(proj freehand.Matrix) []byte {
	return appendMatrix(make([]byte, 0, textureUniformSize), proj)
}

func appendMatrix(buf []byte, m freehand.Matrix) []byte {
	for _, f := range m.Float32s() {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(f))
	}
	return buf
}

// readbackToRGBA strips row padding from a BGRA readback and swizzles it
// into an RGBA image. Resolved pixels are already premultiplied.
func readbackToRGBA(src []byte, w, h int, pitch int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		row := src[y*pitch : y*pitch+w*4]
		dst := img.Pix[y*img.Stride : y*img.Stride+w*4]
		for i := 0; i < len(row); i += 4 {
			dst[i+0] = row[i+2]
			dst[i+1] = row[i+1]
			dst[i+2] = row[i+0]
			dst[i+3] = row[i+3]
		}
	}
	return img
}

// textureBytes returns img as tightly packed premultiplied RGBA.
func textureBytes(img image.Image) (data []byte, w, h int) {
	b := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Stride != b.Dx()*4 || b.Min != (image.Point{}) {
		rgba = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	}
	return rgba.Pix, b.Dx(), b.Dy()
}
