// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build !nogpu

package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// sampleCount is the MSAA sample count of every pipeline and of the frame
// color attachment.
const sampleCount = 4

// targetFormat is the format of the offscreen color attachments.
const targetFormat = gputypes.TextureFormatBGRA8Unorm

// stencilFormat is the format of the frame depth/stencil attachment.
const stencilFormat = gputypes.TextureFormatDepth24PlusStencil8

// program is a compiled render pipeline with its bind group layout.
//
// A stencilled program covers each pixel at most once per draw: pipeline
// colors only where the stencil is zero and marks what it colored, and
// reset redraws the same strip with color writes off to zero the marks
// again. Overlapping triangles of one strip therefore blend a single time.
type program struct {
	device hal.Device

	shader     hal.ShaderModule
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	pipeline   hal.RenderPipeline
	reset      hal.RenderPipeline // nil unless stencilled
}

type programDesc struct {
	label   string
	source  string
	entries []gputypes.BindGroupLayoutEntry
	buffers []gputypes.VertexBufferLayout
	stencil bool
}

// stencilState returns the depth/stencil state of a pipeline in the frame
// pass. Depth is never tested.
func stencilState(compare gputypes.CompareFunction, pass hal.StencilOperation, mask uint32) *hal.DepthStencilState {
	face := hal.StencilFaceState{
		Compare:     compare,
		FailOp:      hal.StencilOperationKeep,
		DepthFailOp: hal.StencilOperationKeep,
		PassOp:      pass,
	}
	return &hal.DepthStencilState{
		Format:            stencilFormat,
		DepthWriteEnabled: false,
		DepthCompare:      gputypes.CompareFunctionAlways,
		StencilFront:      face,
		StencilBack:       face,
		StencilReadMask:   mask,
		StencilWriteMask:  mask,
	}
}

// newProgram creates a triangle-strip pipeline with premultiplied alpha
// blending and MSAA, plus the stencil reset pipeline when desc.stencil is
// set.
func newProgram(device hal.Device, desc programDesc) (*program, error) {
	p := &program{device: device}

	shader, err := device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  desc.label + "_shader",
		Source: hal.ShaderSource{WGSL: desc.source},
	})
	if err != nil {
		return nil, fmt.Errorf("compile %s shader: %w", desc.label, err)
	}
	p.shader = shader

	bindLayout, err := device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label:   desc.label + "_bind_layout",
		Entries: desc.entries,
	})
	if err != nil {
		p.destroy()
		return nil, fmt.Errorf("create %s bind layout: %w", desc.label, err)
	}
	p.bindLayout = bindLayout

	pipeLayout, err := device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            desc.label + "_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{p.bindLayout},
	})
	if err != nil {
		p.destroy()
		return nil, fmt.Errorf("create %s pipeline layout: %w", desc.label, err)
	}
	p.pipeLayout = pipeLayout

	draw := stencilState(gputypes.CompareFunctionAlways, hal.StencilOperationKeep, 0x00)
	if desc.stencil {
		draw = stencilState(gputypes.CompareFunctionEqual, hal.StencilOperationIncrementClamp, 0xFF)
	}
	pipeline, err := p.createPipeline(desc, "_pipeline", draw, gputypes.ColorWriteMaskAll)
	if err != nil {
		p.destroy()
		return nil, err
	}
	p.pipeline = pipeline

	if desc.stencil {
		zero := stencilState(gputypes.CompareFunctionNotEqual, hal.StencilOperationZero, 0xFF)
		reset, err := p.createPipeline(desc, "_stencil_reset", zero, gputypes.ColorWriteMaskNone)
		if err != nil {
			p.destroy()
			return nil, err
		}
		p.reset = reset
	}
	return p, nil
}

func (p *program) createPipeline(desc programDesc, suffix string, ds *hal.DepthStencilState, writeMask gputypes.ColorWriteMask) (hal.RenderPipeline, error) {
	premulBlend := gputypes.BlendStatePremultiplied()
	pipeline, err := p.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  desc.label + suffix,
		Layout: p.pipeLayout,
		Vertex: hal.VertexState{
			Module:     p.shader,
			EntryPoint: "vs_main",
			Buffers:    desc.buffers,
		},
		Fragment: &hal.FragmentState{
			Module:     p.shader,
			EntryPoint: "fs_main",
			Targets: []gputypes.ColorTargetState{
				{
					Format:    targetFormat,
					Blend:     &premulBlend,
					WriteMask: writeMask,
				},
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleStrip,
			CullMode: gputypes.CullModeNone,
		},
		DepthStencil: ds,
		Multisample: gputypes.MultisampleState{
			Count: sampleCount,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create %s%s: %w", desc.label, suffix, err)
	}
	return pipeline, nil
}

// destroy releases pipeline objects in reverse creation order.
func (p *program) destroy() {
	if p == nil || p.device == nil {
		return
	}
	if p.reset != nil {
		p.device.DestroyRenderPipeline(p.reset)
		p.reset = nil
	}
	if p.pipeline != nil {
		p.device.DestroyRenderPipeline(p.pipeline)
		p.pipeline = nil
	}
	if p.pipeLayout != nil {
		p.device.DestroyPipelineLayout(p.pipeLayout)
		p.pipeLayout = nil
	}
	if p.bindLayout != nil {
		p.device.DestroyBindGroupLayout(p.bindLayout)
		p.bindLayout = nil
	}
	if p.shader != nil {
		p.device.DestroyShaderModule(p.shader)
		p.shader = nil
	}
}

func pathProgramDesc() programDesc {
	return programDesc{
		label:  "freehand_path",
		source: pathShaderSource,
		entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
		},
		buffers: pathVertexLayout(),
		stencil: true,
	}
}

func textureProgramDesc() programDesc {
	return programDesc{
		label:  "freehand_texture",
		source: textureShaderSource,
		entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageVertex,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
			{
				Binding:    1,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
			{
				Binding:    2,
				Visibility: gputypes.ShaderStageFragment,
				Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
			},
		},
		buffers: textureVertexLayout(),
	}
}
