// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build !nogpu

package gpu

import (
	"fmt"

	"github.com/gogpu/freehand"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// initialMeshCapacity is the byte size of a fresh mesh vertex buffer.
const initialMeshCapacity = 256 * freehand.VertexStride

// meshBuffer is the GPU copy of one mesh. Vertices [0, uploaded) are
// resident; a mesh only ever grows at its tail.
type meshBuffer struct {
	buf      hal.Buffer
	capacity uint64
	uploaded int
}

type pathShader struct {
	dev    *Device
	proj   freehand.Matrix
	meshes map[*freehand.Mesh]*meshBuffer
}

func (s *pathShader) SetProjection(m freehand.Matrix) { s.proj = m }
func (s *pathShader) Projection() freehand.Matrix     { return s.proj }

func (s *pathShader) PrepareToDraw() error {
	if s.dev.destroyed {
		return freehand.ErrDeviceDestroyed
	}
	if s.dev.frame == nil {
		return freehand.ErrNoFrame
	}
	return nil
}

// DrawMesh uploads the vertices appended since the previous draw of m and
// records a strip draw tinted by c.
func (s *pathShader) DrawMesh(m *freehand.Mesh, c freehand.RGBA) error {
	if err := s.PrepareToDraw(); err != nil {
		return err
	}
	if m.Len() == 0 {
		return nil
	}
	mb, err := s.upload(m)
	if err != nil {
		return err
	}

	ub, err := s.dev.frameUniform("freehand_path_uniform", pathUniformBytes(s.proj, c))
	if err != nil {
		return err
	}
	bg, err := s.dev.frameBindGroup("freehand_path_bind", s.dev.pathProg.bindLayout, []gputypes.BindGroupEntry{
		{Binding: 0, Resource: gputypes.BufferBinding{
			Buffer: ub.NativeHandle(), Offset: 0, Size: pathUniformSize,
		}},
	})
	if err != nil {
		return err
	}

	s.dev.record(drawCall{
		pipeline:  s.dev.pathProg.pipeline,
		reset:     s.dev.pathProg.reset,
		bindGroup: bg,
		vertices:  mb.buf,
		count:     uint32(m.Len()), //nolint:gosec // vertex counts fit uint32
	})
	return nil
}

// upload makes the GPU copy of m current, growing its buffer by doubling
// when the mesh outgrows it.
func (s *pathShader) upload(m *freehand.Mesh) (*meshBuffer, error) {
	need := uint64(m.Len()) * freehand.VertexStride
	mb := s.meshes[m]
	if mb == nil || need > mb.capacity {
		capacity := uint64(initialMeshCapacity)
		if mb != nil {
			capacity = mb.capacity
		}
		for capacity < need {
			capacity *= 2
		}
		buf, err := s.dev.device.CreateBuffer(&hal.BufferDescriptor{
			Label: "freehand_mesh",
			Size:  capacity,
			Usage: gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst,
		})
		if err != nil {
			return nil, fmt.Errorf("create mesh buffer: %w", err)
		}
		if mb != nil {
			freehand.Logger().Debug("freehand: mesh buffer grew",
				"from", mb.capacity, "to", capacity, "vertices", m.Len())
			s.dev.retire(mb.buf)
		}
		mb = &meshBuffer{buf: buf, capacity: capacity}
		s.meshes[m] = mb
	}

	if tail := m.Since(mb.uploaded); len(tail) > 0 {
		offset := uint64(mb.uploaded) * freehand.VertexStride
		if err := s.dev.queue.WriteBuffer(mb.buf, offset, freehand.AppendVertexBytes(nil, tail)); err != nil {
			return nil, fmt.Errorf("upload mesh: %w", err)
		}
		mb.uploaded = m.Len()
	}
	return mb, nil
}

// ReleaseMesh drops the GPU copy of m.
func (s *pathShader) ReleaseMesh(m *freehand.Mesh) {
	mb, ok := s.meshes[m]
	if !ok {
		return
	}
	delete(s.meshes, m)
	if !s.dev.destroyed {
		s.dev.retire(mb.buf)
	}
}

func (s *pathShader) releaseAll() {
	for m, mb := range s.meshes {
		s.dev.retire(mb.buf)
		delete(s.meshes, m)
	}
}
