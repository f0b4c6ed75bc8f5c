// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package freehand

import (
	"fmt"
	"image"
	"image/draw"

	"github.com/gogpu/freehand/internal/raster"
)

// SoftwareDevice renders frames on the CPU into an *image.RGBA.
//
// It implements the same contracts as the GPU device and is what a Surface
// uses when no device is configured.
type SoftwareDevice struct {
	frame     *image.RGBA
	last      *image.RGBA
	filler    raster.StripFiller
	scratch   []raster.Vec2
	destroyed bool
}

var _ Device = (*SoftwareDevice)(nil)

// NewSoftwareDevice creates a CPU device.
func NewSoftwareDevice() *SoftwareDevice {
	return &SoftwareDevice{}
}

// NewPathShader implements Device.
func (d *SoftwareDevice) NewPathShader() (PathShader, error) {
	if d.destroyed {
		return nil, ErrDeviceDestroyed
	}
	return &softwarePathShader{dev: d, proj: Identity()}, nil
}

// NewTextureShader implements Device.
func (d *SoftwareDevice) NewTextureShader(img image.Image) (TextureShader, error) {
	if d.destroyed {
		return nil, ErrDeviceDestroyed
	}
	if img == nil || img.Bounds().Empty() {
		return nil, fmt.Errorf("%w: empty texture image", ErrInvalidSize)
	}
	return &softwareTextureShader{dev: d, img: img, proj: Identity()}, nil
}

// BeginFrame implements Device.
func (d *SoftwareDevice) BeginFrame(width, height int, clear RGBA) error {
	if d.destroyed {
		return ErrDeviceDestroyed
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: frame %dx%d", ErrInvalidSize, width, height)
	}
	d.frame = image.NewRGBA(image.Rect(0, 0, width, height))
	if c := clear.Premultiplied8(); c.A != 0 {
		draw.Draw(d.frame, d.frame.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	}
	Logger().Debug("freehand: software frame", "width", width, "height", height)
	return nil
}

// EndFrame implements Device.
func (d *SoftwareDevice) EndFrame() error {
	if d.frame == nil {
		return ErrNoFrame
	}
	d.last, d.frame = d.frame, nil
	return nil
}

// ReadPixels implements Device.
func (d *SoftwareDevice) ReadPixels() (*image.RGBA, error) {
	if d.last == nil {
		return nil, ErrNoFrame
	}
	out := image.NewRGBA(d.last.Bounds())
	copy(out.Pix, d.last.Pix)
	return out, nil
}

// Destroy implements Device.
func (d *SoftwareDevice) Destroy() {
	d.frame, d.last = nil, nil
	d.destroyed = true
}

// viewport maps clip space onto a width×height pixel grid with y down.
func viewport(width, height float64) Matrix {
	return Translate(width/2, height/2).Multiply(Scale(width/2, -height/2))
}

// toPixels maps surface positions through proj into pixel space of the
// current frame.
func (d *SoftwareDevice) toPixels(proj Matrix, n int, at func(int) [2]float32) []raster.Vec2 {
	b := d.frame.Bounds()
	m := viewport(float64(b.Dx()), float64(b.Dy())).Multiply(proj)
	d.scratch = d.scratch[:0]
	for i := 0; i < n; i++ {
		pos := at(i)
		px := m.TransformPoint(Point{X: float64(pos[0]), Y: float64(pos[1])})
		d.scratch = append(d.scratch, raster.Vec2{float32(px.X), float32(px.Y)})
	}
	return d.scratch
}

type softwarePathShader struct {
	dev  *SoftwareDevice
	proj Matrix
}

func (s *softwarePathShader) SetProjection(m Matrix) { s.proj = m }
func (s *softwarePathShader) Projection() Matrix     { return s.proj }

func (s *softwarePathShader) PrepareToDraw() error {
	if s.dev.frame == nil {
		return ErrNoFrame
	}
	return nil
}

func (s *softwarePathShader) DrawMesh(m *Mesh, c RGBA) error {
	if s.dev.frame == nil {
		return ErrNoFrame
	}
	vs := m.Vertices()
	pts := s.dev.toPixels(s.proj, len(vs), func(i int) [2]float32 { return vs[i].Position })
	s.dev.filler.Fill(s.dev.frame, pts, c.Premultiplied8())
	return nil
}

func (s *softwarePathShader) ReleaseMesh(*Mesh) {}

type softwareTextureShader struct {
	dev  *SoftwareDevice
	img  image.Image
	proj Matrix
}

func (s *softwareTextureShader) SetProjection(m Matrix) { s.proj = m }
func (s *softwareTextureShader) Projection() Matrix     { return s.proj }

func (s *softwareTextureShader) PrepareToDraw() error {
	if s.img == nil {
		return ErrDeviceDestroyed
	}
	if s.dev.frame == nil {
		return ErrNoFrame
	}
	return nil
}

// DrawTextured maps the full texture onto the extent of vs. Texture
// coordinates other than the unit square are not supported on the CPU.
func (s *softwareTextureShader) DrawTextured(vs []TexturedVertex) error {
	if err := s.PrepareToDraw(); err != nil {
		return err
	}
	pts := s.dev.toPixels(s.proj, len(vs), func(i int) [2]float32 { return vs[i].Position })
	raster.DrawQuad(s.dev.frame, pts, s.img)
	return nil
}

func (s *softwareTextureShader) Destroy() { s.img = nil }
