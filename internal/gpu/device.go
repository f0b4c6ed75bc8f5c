// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build !nogpu

package gpu

import (
	"fmt"
	"image"
	"unsafe"

	"github.com/gogpu/freehand"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Device is a freehand.Device on a wgpu HAL device. Frames render offscreen
// into a 4× MSAA texture that resolves into a single-sample texture, which
// EndFrame copies back to the CPU. A stencil attachment keeps each stroke
// from blending twice over pixels its strip covers more than once.
//
// Device is not safe for concurrent use; it belongs to the render thread.
type Device struct {
	instance hal.Instance
	device   hal.Device
	queue    hal.Queue
	owned    bool // destroy device and instance in Destroy

	pathProg    *program
	textureProg *program

	paths    map[*pathShader]struct{}
	textures map[*textureShader]struct{}

	targets targets
	frame   *frame
	last    *image.RGBA

	destroyed bool
}

var _ freehand.Device = (*Device)(nil)

// NewDevice wraps a device and queue owned by the caller. Destroy releases
// only the resources Device created.
func NewDevice(device hal.Device, queue hal.Queue) *Device {
	return &Device{
		device:   device,
		queue:    queue,
		paths:    make(map[*pathShader]struct{}),
		textures: make(map[*textureShader]struct{}),
	}
}

// drawCall is one recorded strip draw. A non-nil reset pipeline redraws the
// strip after it to clear its stencil marks.
type drawCall struct {
	pipeline  hal.RenderPipeline
	reset     hal.RenderPipeline
	bindGroup hal.BindGroup
	vertices  hal.Buffer
	count     uint32
}

// frame collects draws between BeginFrame and EndFrame along with the
// transient resources they reference.
type frame struct {
	width, height uint32
	clear         gputypes.Color

	draws      []drawCall
	buffers    []hal.Buffer
	bindGroups []hal.BindGroup
}

// release destroys every transient resource of the frame.
func (f *frame) release(device hal.Device) {
	for _, bg := range f.bindGroups {
		device.DestroyBindGroup(bg)
	}
	for _, b := range f.buffers {
		device.DestroyBuffer(b)
	}
	f.bindGroups, f.buffers, f.draws = nil, nil, nil
}

// targets are the offscreen attachments, recreated on size change.
type targets struct {
	msaaTex     hal.Texture
	msaaView    hal.TextureView
	stencilTex  hal.Texture
	stencilView hal.TextureView
	resolveTex  hal.Texture
	resolveView hal.TextureView

	width, height uint32
}

func (d *Device) ensurePathProgram() error {
	if d.pathProg != nil {
		return nil
	}
	if err := validateShaders(); err != nil {
		return err
	}
	p, err := newProgram(d.device, pathProgramDesc())
	if err != nil {
		return fmt.Errorf("%w: %w", freehand.ErrShaderCompile, err)
	}
	d.pathProg = p
	return nil
}

func (d *Device) ensureTextureProgram() error {
	if d.textureProg != nil {
		return nil
	}
	if err := validateShaders(); err != nil {
		return err
	}
	p, err := newProgram(d.device, textureProgramDesc())
	if err != nil {
		return fmt.Errorf("%w: %w", freehand.ErrShaderCompile, err)
	}
	d.textureProg = p
	return nil
}

// NewPathShader implements freehand.Device.
func (d *Device) NewPathShader() (freehand.PathShader, error) {
	if d.destroyed {
		return nil, freehand.ErrDeviceDestroyed
	}
	if err := d.ensurePathProgram(); err != nil {
		return nil, err
	}
	s := &pathShader{
		dev:    d,
		proj:   freehand.Identity(),
		meshes: make(map[*freehand.Mesh]*meshBuffer),
	}
	d.paths[s] = struct{}{}
	return s, nil
}

// NewTextureShader implements freehand.Device. The image is uploaded once
// as a premultiplied RGBA8 texture.
func (d *Device) NewTextureShader(img image.Image) (freehand.TextureShader, error) {
	if d.destroyed {
		return nil, freehand.ErrDeviceDestroyed
	}
	if img == nil || img.Bounds().Empty() {
		return nil, fmt.Errorf("%w: empty texture image", freehand.ErrInvalidSize)
	}
	if err := d.ensureTextureProgram(); err != nil {
		return nil, err
	}
	s, err := newTextureShader(d, img)
	if err != nil {
		return nil, err
	}
	d.textures[s] = struct{}{}
	return s, nil
}

// BeginFrame implements freehand.Device. A frame left open by a previous
// BeginFrame is discarded.
func (d *Device) BeginFrame(width, height int, clear freehand.RGBA) error {
	if d.destroyed {
		return freehand.ErrDeviceDestroyed
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: frame %dx%d", freehand.ErrInvalidSize, width, height)
	}
	if d.frame != nil {
		d.frame.release(d.device)
	}
	c := clear.Premultiply()
	d.frame = &frame{
		width:  uint32(width),  //nolint:gosec // checked positive
		height: uint32(height), //nolint:gosec // checked positive
		clear:  gputypes.Color{R: c.R, G: c.G, B: c.B, A: c.A},
	}
	freehand.Logger().Debug("freehand: gpu frame", "width", width, "height", height)
	return nil
}

// EndFrame implements freehand.Device. It encodes the recorded draws in a
// single render pass and blocks until the resolved pixels are read back.
func (d *Device) EndFrame() error {
	f := d.frame
	if f == nil {
		return freehand.ErrNoFrame
	}
	d.frame = nil
	defer f.release(d.device)

	if err := d.ensureTargets(f.width, f.height); err != nil {
		return fmt.Errorf("ensure targets: %w", err)
	}
	img, err := d.encodeAndReadback(f)
	if err != nil {
		return err
	}
	d.last = img
	return nil
}

// ReadPixels implements freehand.Device.
func (d *Device) ReadPixels() (*image.RGBA, error) {
	if d.last == nil {
		return nil, freehand.ErrNoFrame
	}
	out := image.NewRGBA(d.last.Bounds())
	copy(out.Pix, d.last.Pix)
	return out, nil
}

// Destroy implements freehand.Device. A device passed to NewDevice stays
// alive; one created by Open is destroyed with its instance.
func (d *Device) Destroy() {
	if d.destroyed {
		return
	}
	d.destroyed = true
	if d.frame != nil {
		d.frame.release(d.device)
		d.frame = nil
	}
	for s := range d.paths {
		s.releaseAll()
	}
	for s := range d.textures {
		s.Destroy()
	}
	d.paths, d.textures = nil, nil
	d.destroyTargets()
	d.pathProg.destroy()
	d.textureProg.destroy()
	d.pathProg, d.textureProg = nil, nil
	d.last = nil

	if d.owned {
		if d.device != nil {
			d.device.Destroy()
		}
		if d.instance != nil {
			d.instance.Destroy()
		}
	}
	d.device, d.queue, d.instance = nil, nil, nil
}

// record appends a draw to the current frame.
func (d *Device) record(dc drawCall) {
	d.frame.draws = append(d.frame.draws, dc)
}

// createAndUploadBuffer creates a GPU buffer and uploads data.
func (d *Device) createAndUploadBuffer(label string, data []byte, usage gputypes.BufferUsage) (hal.Buffer, error) {
	buf, err := d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  uint64(len(data)),
		Usage: usage,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", label, err)
	}
	if err := d.queue.WriteBuffer(buf, 0, data); err != nil {
		d.device.DestroyBuffer(buf)
		return nil, fmt.Errorf("upload %s: %w", label, err)
	}
	return buf, nil
}

// frameUniform creates a uniform buffer that lives until the end of the
// current frame.
func (d *Device) frameUniform(label string, data []byte) (hal.Buffer, error) {
	buf, err := d.createAndUploadBuffer(label, data, gputypes.BufferUsageUniform|gputypes.BufferUsageCopyDst)
	if err != nil {
		return nil, err
	}
	d.frame.buffers = append(d.frame.buffers, buf)
	return buf, nil
}

// frameBindGroup creates a bind group that lives until the end of the
// current frame.
func (d *Device) frameBindGroup(label string, layout hal.BindGroupLayout, entries []gputypes.BindGroupEntry) (hal.BindGroup, error) {
	bg, err := d.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:   label,
		Layout:  layout,
		Entries: entries,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", label, err)
	}
	d.frame.bindGroups = append(d.frame.bindGroups, bg)
	return bg, nil
}

// retire destroys buf once no recorded draw can reference it.
func (d *Device) retire(buf hal.Buffer) {
	if d.frame != nil {
		d.frame.buffers = append(d.frame.buffers, buf)
		return
	}
	d.device.DestroyBuffer(buf)
}

// ensureTargets creates or recreates the MSAA and resolve textures if the
// requested dimensions differ from the current size.
func (d *Device) ensureTargets(w, h uint32) error {
	t := &d.targets
	if t.width == w && t.height == h && t.msaaTex != nil {
		return nil
	}
	d.destroyTargets()

	size := hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1}

	msaaTex, err := d.device.CreateTexture(&hal.TextureDescriptor{
		Label:         "freehand_msaa",
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   sampleCount,
		Dimension:     gputypes.TextureDimension2D,
		Format:        targetFormat,
		Usage:         gputypes.TextureUsageRenderAttachment,
	})
	if err != nil {
		return fmt.Errorf("create MSAA texture: %w", err)
	}
	t.msaaTex = msaaTex

	msaaView, err := d.device.CreateTextureView(msaaTex, &hal.TextureViewDescriptor{
		Label:         "freehand_msaa_view",
		Format:        targetFormat,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		d.destroyTargets()
		return fmt.Errorf("create MSAA view: %w", err)
	}
	t.msaaView = msaaView

	stencilTex, err := d.device.CreateTexture(&hal.TextureDescriptor{
		Label:         "freehand_stencil",
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   sampleCount,
		Dimension:     gputypes.TextureDimension2D,
		Format:        stencilFormat,
		Usage:         gputypes.TextureUsageRenderAttachment,
	})
	if err != nil {
		d.destroyTargets()
		return fmt.Errorf("create stencil texture: %w", err)
	}
	t.stencilTex = stencilTex

	stencilView, err := d.device.CreateTextureView(stencilTex, &hal.TextureViewDescriptor{
		Label: "freehand_stencil_view",
	})
	if err != nil {
		d.destroyTargets()
		return fmt.Errorf("create stencil view: %w", err)
	}
	t.stencilView = stencilView

	resolveTex, err := d.device.CreateTexture(&hal.TextureDescriptor{
		Label:         "freehand_resolve",
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        targetFormat,
		Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		d.destroyTargets()
		return fmt.Errorf("create resolve texture: %w", err)
	}
	t.resolveTex = resolveTex

	resolveView, err := d.device.CreateTextureView(resolveTex, &hal.TextureViewDescriptor{
		Label:         "freehand_resolve_view",
		Format:        targetFormat,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		d.destroyTargets()
		return fmt.Errorf("create resolve view: %w", err)
	}
	t.resolveView = resolveView

	t.width, t.height = w, h
	freehand.Logger().Debug("freehand: gpu targets allocated", "width", w, "height", h)
	return nil
}

func (d *Device) destroyTargets() {
	t := &d.targets
	if t.resolveView != nil {
		d.device.DestroyTextureView(t.resolveView)
	}
	if t.resolveTex != nil {
		d.device.DestroyTexture(t.resolveTex)
	}
	if t.stencilView != nil {
		d.device.DestroyTextureView(t.stencilView)
	}
	if t.stencilTex != nil {
		d.device.DestroyTexture(t.stencilTex)
	}
	if t.msaaView != nil {
		d.device.DestroyTextureView(t.msaaView)
	}
	if t.msaaTex != nil {
		d.device.DestroyTexture(t.msaaTex)
	}
	*t = targets{}
}

// encodeAndReadback encodes the frame's render pass, copies the resolve
// texture to a staging buffer, submits, waits and reads back pixels.
func (d *Device) encodeAndReadback(f *frame) (*image.RGBA, error) {
	w, h := f.width, f.height
	t := &d.targets

	encoder, err := d.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "freehand_encoder",
	})
	if err != nil {
		return nil, fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("freehand_frame"); err != nil {
		return nil, fmt.Errorf("begin encoding: %w", err)
	}

	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "freehand_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{
			{
				View:          t.msaaView,
				ResolveTarget: t.resolveView,
				LoadOp:        gputypes.LoadOpClear,
				StoreOp:       gputypes.StoreOpStore,
				ClearValue:    f.clear,
			},
		},
		DepthStencilAttachment: &hal.RenderPassDepthStencilAttachment{
			View:              t.stencilView,
			DepthLoadOp:       gputypes.LoadOpClear,
			DepthStoreOp:      gputypes.StoreOpDiscard,
			DepthClearValue:   1.0,
			StencilLoadOp:     gputypes.LoadOpClear,
			StencilStoreOp:    gputypes.StoreOpDiscard,
			StencilClearValue: 0,
		},
	})
	for _, dc := range f.draws {
		rp.SetPipeline(dc.pipeline)
		rp.SetBindGroup(0, dc.bindGroup, nil)
		rp.SetVertexBuffer(0, dc.vertices, 0)
		rp.Draw(dc.count, 1, 0, 0)
		if dc.reset != nil {
			rp.SetPipeline(dc.reset)
			rp.Draw(dc.count, 1, 0, 0)
		}
	}
	rp.End()

	// After the resolve the texture is a render attachment; the copy needs
	// it as a transfer source.
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: t.resolveTex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageRenderAttachment,
			NewUsage: gputypes.TextureUsageCopySrc,
		},
	}})

	pitch := alignedRowBytes(w)
	stagingSize := uint64(pitch) * uint64(h)
	stagingBuf, err := d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "freehand_staging",
		Size:  stagingSize,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		encoder.DiscardEncoding()
		return nil, fmt.Errorf("create staging buffer: %w", err)
	}
	defer d.device.DestroyBuffer(stagingBuf)

	encoder.CopyTextureToBuffer(t.resolveTex, stagingBuf, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: pitch, RowsPerImage: h},
		TextureBase:  hal.ImageCopyTexture{Texture: t.resolveTex, MipLevel: 0},
		Size:         hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	}})

	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: t.resolveTex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageCopySrc,
			NewUsage: gputypes.TextureUsageRenderAttachment,
		},
	}})

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return nil, fmt.Errorf("end encoding: %w", err)
	}
	defer d.device.FreeCommandBuffer(cmdBuf)

	subIdx, err := d.queue.Submit([]hal.CommandBuffer{cmdBuf})
	if err != nil {
		return nil, fmt.Errorf("submit: %w", err)
	}
	if err := d.device.WaitIdle(); err != nil {
		return nil, fmt.Errorf("wait for GPU: %w", err)
	}
	if done := d.queue.PollCompleted(); done < subIdx {
		return nil, fmt.Errorf("wait for GPU: submission %d not complete (at %d)", subIdx, done)
	}

	mapping, err := d.device.MapBuffer(stagingBuf, 0, stagingSize)
	if err != nil {
		return nil, fmt.Errorf("map staging buffer: %w", err)
	}
	readback := make([]byte, stagingSize)
	copy(readback, unsafe.Slice((*byte)(mapping.Ptr), stagingSize))
	if err := d.device.UnmapBuffer(stagingBuf); err != nil {
		return nil, fmt.Errorf("unmap staging buffer: %w", err)
	}
	return readbackToRGBA(readback, int(w), int(h), int(pitch)), nil
}
