// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package freehand

// ImageQuad is a textured rectangle, used for a surface background image.
// It owns its TextureShader.
type ImageQuad struct {
	shader   TextureShader
	rect     Rect
	vertices [4]TexturedVertex
}

// NewImageQuad creates a quad covering rect that samples the shader's
// texture.
func NewImageQuad(shader TextureShader, rect Rect) *ImageQuad {
	q := &ImageQuad{shader: shader}
	q.SetRect(rect)
	return q
}

// Rect returns the rectangle the quad covers.
func (q *ImageQuad) Rect() Rect { return q.rect }

// SetRect moves the quad to cover rect.
func (q *ImageQuad) SetRect(rect Rect) {
	q.rect = rect
	x0, y0 := float32(rect.Min.X), float32(rect.Min.Y)
	x1, y1 := float32(rect.Max.X), float32(rect.Max.Y)
	// Strip order: top-left, bottom-left, top-right, bottom-right.
	q.vertices = [4]TexturedVertex{
		{Position: [2]float32{x0, y0}, TexCoord: [2]float32{0, 0}},
		{Position: [2]float32{x0, y1}, TexCoord: [2]float32{0, 1}},
		{Position: [2]float32{x1, y0}, TexCoord: [2]float32{1, 0}},
		{Position: [2]float32{x1, y1}, TexCoord: [2]float32{1, 1}},
	}
}

// Vertices returns the quad's four strip vertices.
func (q *ImageQuad) Vertices() [4]TexturedVertex { return q.vertices }

// Shader returns the texture shader the quad draws with.
func (q *ImageQuad) Shader() TextureShader { return q.shader }

// Render draws the quad.
func (q *ImageQuad) Render() error {
	if q.shader == nil {
		return errNoShader
	}
	if err := q.shader.PrepareToDraw(); err != nil {
		return err
	}
	return q.shader.DrawTextured(q.vertices[:])
}

// Destroy releases the texture shader.
func (q *ImageQuad) Destroy() {
	if q.shader != nil {
		q.shader.Destroy()
		q.shader = nil
	}
}
