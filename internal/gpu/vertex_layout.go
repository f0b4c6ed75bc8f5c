// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build !nogpu

package gpu

import (
	"github.com/gogpu/freehand"
	"github.com/gogpu/gputypes"
)

// pathVertexLayout describes freehand.Vertex.
//
//	position (vec2<f32>) = 8 bytes (location 0)
func pathVertexLayout() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{
		{
			ArrayStride: freehand.VertexStride,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: freehand.AttribPosition},
			},
		},
	}
}

// textureVertexLayout describes freehand.TexturedVertex.
//
//	position (vec2<f32>) = 8 bytes (location 0)
//	texcoord (vec2<f32>) = 8 bytes (location 1)
func textureVertexLayout() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{
		{
			ArrayStride: freehand.TexturedVertexStride,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: freehand.TexAttribPosition},
				{Format: gputypes.VertexFormatFloat32x2, Offset: 8, ShaderLocation: freehand.TexAttribTexCoord},
			},
		},
	}
}
