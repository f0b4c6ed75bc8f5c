// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package freehand

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"math"
)

// ImageWithScale renders the drawing offscreen at scale times the surface
// size and returns the pixels. The drawing state is not modified.
func (s *Surface) ImageWithScale(scale float64) (*image.RGBA, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.imageLocked(scale, s.clearColor)
}

// ImageWithScaleBackground is like ImageWithScale but clears to bg instead
// of the surface background color. A background image is still drawn.
func (s *Surface) ImageWithScaleBackground(scale float64, bg RGBA) (*image.RGBA, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.imageLocked(scale, bg)
}

func (s *Surface) imageLocked(scale float64, bg RGBA) (*image.RGBA, error) {
	if !finitePositive(scale) {
		return nil, fmt.Errorf("%w: scale %v", ErrInvalidSize, scale)
	}
	if err := s.renderLocked(scale, bg); err != nil {
		return nil, err
	}
	img, err := s.device.ReadPixels()
	if err != nil {
		return nil, fmt.Errorf("freehand: read pixels: %w", err)
	}
	Logger().Debug("freehand: exported image",
		"scale", scale, "width", img.Bounds().Dx(), "height", img.Bounds().Dy())
	return img, nil
}

// WritePNG encodes ImageWithScale(scale) as PNG to w.
func (s *Surface) WritePNG(w io.Writer, scale float64) error {
	img, err := s.ImageWithScale(scale)
	if err != nil {
		return err
	}
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("freehand: encode png: %w", err)
	}
	return nil
}

// exportSize returns the pixel size of an export at scale.
func exportSize(width, height, scale float64) (int, int) {
	return int(math.Round(width * scale)), int(math.Round(height * scale))
}
