// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package freehand

import "image"

// Shader is a compiled GPU program with a projection uniform.
//
// PrepareToDraw activates the program and uploads its uniforms; it must be
// called before each draw and fails with ErrNoFrame outside a frame.
type Shader interface {
	SetProjection(m Matrix)
	Projection() Matrix
	PrepareToDraw() error
}

// PathShader draws stroke meshes as solid tinted triangle strips.
//
// The shader may cache per-mesh GPU state keyed by the mesh pointer.
// ReleaseMesh drops that state when a stroke is discarded.
type PathShader interface {
	Shader
	DrawMesh(m *Mesh, color RGBA) error
	ReleaseMesh(m *Mesh)
}

// TextureShader draws a textured triangle strip sampling the texture it
// was created with. It owns that texture and releases it in Destroy.
type TextureShader interface {
	Shader
	DrawTextured(vs []TexturedVertex) error
	Destroy()
}

// Device creates shader programs and drives offscreen frames.
//
// A frame is bracketed by BeginFrame and EndFrame. ReadPixels returns the
// most recently ended frame; like every image.RGBA its pixels are
// alpha-premultiplied.
type Device interface {
	NewPathShader() (PathShader, error)
	NewTextureShader(img image.Image) (TextureShader, error)
	BeginFrame(width, height int, clear RGBA) error
	EndFrame() error
	ReadPixels() (*image.RGBA, error)
	Destroy()
}
