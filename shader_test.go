// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package freehand

// recordingShader is a PathShader that records calls.
type recordingShader struct {
	proj       Matrix
	prepared   int
	draws      []recordedDraw
	released   []*Mesh
	prepareErr error
}

type recordedDraw struct {
	vertices int
	color    RGBA
}

func (r *recordingShader) SetProjection(m Matrix) { r.proj = m }
func (r *recordingShader) Projection() Matrix     { return r.proj }

func (r *recordingShader) PrepareToDraw() error {
	r.prepared++
	return r.prepareErr
}

func (r *recordingShader) DrawMesh(m *Mesh, c RGBA) error {
	r.draws = append(r.draws, recordedDraw{vertices: m.Len(), color: c})
	return nil
}

func (r *recordingShader) ReleaseMesh(m *Mesh) { r.released = append(r.released, m) }

// recordingDevice wraps a SoftwareDevice and hands out recordingShaders.
type recordingDevice struct {
	*SoftwareDevice
	path      *recordingShader
	destroyed bool
}

func (d *recordingDevice) NewPathShader() (PathShader, error) {
	d.path = &recordingShader{}
	return d.path, nil
}

func (d *recordingDevice) Destroy() {
	d.destroyed = true
	d.SoftwareDevice.Destroy()
}
