// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package freehand

import "image"

// SurfaceOption configures a Surface during creation.
//
// Example:
//
//	// Default software rendering
//	s, err := freehand.NewSurface(800, 600)
//
//	// GPU rendering with a wide red pen
//	s, err := freehand.NewSurface(800, 600,
//	    freehand.WithDevice(dev),
//	    freehand.WithStyle(freehand.Style{Color: freehand.Red, Opacity: 1, Width: 8}),
//	)
type SurfaceOption func(*surfaceOptions)

// surfaceOptions holds optional configuration for Surface creation.
type surfaceOptions struct {
	device     Device
	style      Style
	delegate   Delegate
	dispatch   Dispatcher
	background RGBA
	image      image.Image
}

func defaultSurfaceOptions() surfaceOptions {
	return surfaceOptions{
		style:      DefaultStyle(),
		background: Transparent,
	}
}

// WithDevice sets the rendering device. The surface takes ownership and
// destroys it in Surface.Destroy. Without this option a SoftwareDevice is
// used.
func WithDevice(d Device) SurfaceOption {
	return func(o *surfaceOptions) {
		o.device = d
	}
}

// WithStyle sets the initial stroke style.
func WithStyle(s Style) SurfaceOption {
	return func(o *surfaceOptions) {
		o.style = s
	}
}

// WithDelegate sets the delegate notified of drawing events.
func WithDelegate(d Delegate) SurfaceOption {
	return func(o *surfaceOptions) {
		o.delegate = d
	}
}

// WithDispatcher sets the function that hands the result of
// LoadPersistentDrawing back to the render goroutine. By default the result
// is adopted directly from the loading goroutine under the surface lock.
func WithDispatcher(d Dispatcher) SurfaceOption {
	return func(o *surfaceOptions) {
		o.dispatch = d
	}
}

// WithBackgroundColor sets the color frames are cleared to.
func WithBackgroundColor(c RGBA) SurfaceOption {
	return func(o *surfaceOptions) {
		o.background = c
	}
}

// WithBackgroundImage sets an image drawn under all strokes, stretched to
// the surface size.
func WithBackgroundImage(img image.Image) SurfaceOption {
	return func(o *surfaceOptions) {
		o.image = img
	}
}
