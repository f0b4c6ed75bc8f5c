// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build !nogpu

package gpu

import (
	"fmt"
	"image"

	"github.com/gogpu/freehand"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

type textureShader struct {
	dev  *Device
	proj freehand.Matrix

	tex     hal.Texture
	view    hal.TextureView
	sampler hal.Sampler
}

func newTextureShader(d *Device, img image.Image) (*textureShader, error) {
	data, w, h := textureBytes(img)
	size := hal.Extent3D{Width: uint32(w), Height: uint32(h), DepthOrArrayLayers: 1} //nolint:gosec // image sizes fit uint32
	s := &textureShader{dev: d, proj: freehand.Identity()}

	tex, err := d.device.CreateTexture(&hal.TextureDescriptor{
		Label:         "freehand_background",
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("create background texture: %w", err)
	}
	s.tex = tex

	view, err := d.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         "freehand_background_view",
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		s.Destroy()
		return nil, fmt.Errorf("create background view: %w", err)
	}
	s.view = view

	sampler, err := d.device.CreateSampler(&hal.SamplerDescriptor{
		Label:        "freehand_background_sampler",
		AddressModeU: gputypes.AddressModeClampToEdge,
		AddressModeV: gputypes.AddressModeClampToEdge,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    gputypes.FilterModeLinear,
		MinFilter:    gputypes.FilterModeLinear,
		MipmapFilter: gputypes.FilterModeLinear,
	})
	if err != nil {
		s.Destroy()
		return nil, fmt.Errorf("create background sampler: %w", err)
	}
	s.sampler = sampler

	err = d.queue.WriteTexture(
		&hal.ImageCopyTexture{Texture: tex, MipLevel: 0},
		data,
		&hal.ImageDataLayout{
			Offset:       0,
			BytesPerRow:  uint32(w) * 4, //nolint:gosec // image sizes fit uint32
			RowsPerImage: uint32(h),     //nolint:gosec // image sizes fit uint32
		},
		&size,
	)
	if err != nil {
		s.Destroy()
		return nil, fmt.Errorf("upload background texture: %w", err)
	}
	freehand.Logger().Debug("freehand: background texture uploaded", "width", w, "height", h)
	return s, nil
}

func (s *textureShader) SetProjection(m freehand.Matrix) { s.proj = m }
func (s *textureShader) Projection() freehand.Matrix     { return s.proj }

func (s *textureShader) PrepareToDraw() error {
	if s.tex == nil || s.dev.destroyed {
		return freehand.ErrDeviceDestroyed
	}
	if s.dev.frame == nil {
		return freehand.ErrNoFrame
	}
	return nil
}

// DrawTextured records a strip draw of vs sampling the texture.
func (s *textureShader) DrawTextured(vs []freehand.TexturedVertex) error {
	if err := s.PrepareToDraw(); err != nil {
		return err
	}
	if len(vs) == 0 {
		return nil
	}
	d := s.dev
	vb, err := d.createAndUploadBuffer("freehand_quad_verts", freehand.AppendTexturedVertexBytes(nil, vs),
		gputypes.BufferUsageVertex|gputypes.BufferUsageCopyDst)
	if err != nil {
		return err
	}
	d.frame.buffers = append(d.frame.buffers, vb)

	ub, err := d.frameUniform("freehand_texture_uniform", textureUniformBytes(s.proj))
	if err != nil {
		return err
	}
	bg, err := d.frameBindGroup("freehand_texture_bind", d.textureProg.bindLayout, []gputypes.BindGroupEntry{
		{Binding: 0, Resource: gputypes.BufferBinding{
			Buffer: ub.NativeHandle(), Offset: 0, Size: textureUniformSize,
		}},
		{Binding: 1, Resource: gputypes.TextureViewBinding{
			TextureView: uintptr(s.view.NativeHandle()),
		}},
		{Binding: 2, Resource: gputypes.SamplerBinding{
			Sampler: uintptr(s.sampler.NativeHandle()),
		}},
	})
	if err != nil {
		return err
	}

	d.record(drawCall{
		pipeline:  d.textureProg.pipeline,
		bindGroup: bg,
		vertices:  vb,
		count:     uint32(len(vs)), //nolint:gosec // quad vertex counts fit uint32
	})
	return nil
}

// Destroy releases the texture. It is safe to call more than once.
func (s *textureShader) Destroy() {
	d := s.dev
	if d.device == nil {
		s.tex, s.view, s.sampler = nil, nil, nil
		return
	}
	if s.sampler != nil {
		d.device.DestroySampler(s.sampler)
		s.sampler = nil
	}
	if s.view != nil {
		d.device.DestroyTextureView(s.view)
		s.view = nil
	}
	if s.tex != nil {
		d.device.DestroyTexture(s.tex)
		s.tex = nil
	}
	delete(d.textures, s)
}
