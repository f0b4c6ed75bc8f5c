// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package freehand

import (
	"encoding/binary"
	"math"
)

// Shader attribute slots. Vertex layouts bind each field to the slot of the
// same name.
const (
	// AttribPosition is the position slot of Vertex.
	AttribPosition = 0

	// TexAttribPosition is the position slot of TexturedVertex.
	TexAttribPosition = 0

	// TexAttribTexCoord is the texture coordinate slot of TexturedVertex.
	TexAttribTexCoord = 1
)

// Byte strides of the vertex structs as uploaded to the GPU.
const (
	VertexStride         = 8
	TexturedVertexStride = 16
)

// Vertex is one position of a stroke's triangle strip in surface coordinates.
type Vertex struct {
	Position [2]float32
}

// TexturedVertex is a position with a texture coordinate in [0, 1].
type TexturedVertex struct {
	Position [2]float32
	TexCoord [2]float32
}

// Point returns the vertex position as a Point.
func (v Vertex) Point() Point {
	return Point{X: float64(v.Position[0]), Y: float64(v.Position[1])}
}

func vertexAt(p Point) Vertex {
	return Vertex{Position: [2]float32{float32(p.X), float32(p.Y)}}
}

// AppendVertexBytes appends the little-endian encoding of vs to dst.
func AppendVertexBytes(dst []byte, vs []Vertex) []byte {
	for _, v := range vs {
		dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(v.Position[0]))
		dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(v.Position[1]))
	}
	return dst
}

// AppendTexturedVertexBytes appends the little-endian encoding of vs to dst.
func AppendTexturedVertexBytes(dst []byte, vs []TexturedVertex) []byte {
	for _, v := range vs {
		dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(v.Position[0]))
		dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(v.Position[1]))
		dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(v.TexCoord[0]))
		dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(v.TexCoord[1]))
	}
	return dst
}
