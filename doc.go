// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package freehand turns live pointer input into smooth, variable-width
// strokes rendered through a GPU program.
//
// # Overview
//
// A [Surface] receives begin/extend/end point events from the host view,
// grows the active [Stroke] one point at a time and keeps completed strokes in
// z-order, newest last for Undo. Each stroke derives a triangle-strip [Mesh]
// from its input points: the raw points are smoothed with quadratic curves
// through their midpoints, the centerline is flattened and extruded by half
// the line width along its normals, and joins and caps are inserted where
// the path turns sharply or ends.
//
// # Quick Start
//
//	s, err := freehand.NewSurface(800, 600)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer s.Destroy()
//
//	s.SetLineWidth(4)
//	s.SetLineColor(freehand.Red)
//
//	_ = s.BeginStroke(freehand.Pt(10, 10))
//	_ = s.ExtendStroke(freehand.Pt(60, 40))
//	_, _ = s.EndStroke(freehand.Pt(120, 20))
//
//	img, err := s.ImageWithScale(2)
//
// # Devices
//
// Rendering goes through a [Device]. The default is the software device,
// which rasterizes meshes on the CPU. GPU rendering is provided by the
// github.com/gogpu/freehand/gpu package on top of gogpu/wgpu:
//
//	dev, err := gpu.Open()
//	s, err := freehand.NewSurface(800, 600, freehand.WithDevice(dev))
//
// # Coordinate System
//
//   - Origin (0,0) at top-left
//   - X increases right
//   - Y increases down
//
// # Threading
//
// A Surface and the shaders it owns belong to one render goroutine.
// [Surface.LoadPersistentDrawing] is the only operation that does work on
// another goroutine; its result is handed back through the surface's
// [Dispatcher].
package freehand

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0"
)
