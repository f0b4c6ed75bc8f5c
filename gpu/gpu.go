// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build !nogpu

// Package gpu provides the hardware freehand.Device built on wgpu.
//
// A device renders offscreen with 4× MSAA and reads frames back for export.
// It belongs to the render thread that owns the Surface using it.
//
// Usage:
//
//	dev, err := gpu.Open()
//	if err != nil {
//		log.Fatal(err)
//	}
//	s, err := freehand.NewSurface(800, 600, freehand.WithDevice(dev))
//
// Hosts that already own a GPU device share it with FromProvider or FromHAL.
package gpu

import (
	"errors"

	"github.com/gogpu/freehand"
	gpuimpl "github.com/gogpu/freehand/internal/gpu"
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/wgpu/hal"
)

// ErrNilProvider is returned by FromProvider for a nil provider.
var ErrNilProvider = errors.New("freehand: nil device provider")

// ErrNoAdapter is returned by Open when no GPU adapter is available.
var ErrNoAdapter = gpuimpl.ErrNoAdapter

// Open creates a device on its own GPU instance. Destroying the device
// releases the instance.
func Open() (freehand.Device, error) {
	d, err := gpuimpl.Open()
	if err != nil {
		return nil, err
	}
	return d, nil
}

// FromProvider creates a device on the GPU device of a host such as a gogpu
// window. The provider must also expose HalDevice() and HalQueue(); the
// shared device outlives the returned one.
func FromProvider(provider gpucontext.DeviceProvider) (freehand.Device, error) {
	if provider == nil {
		return nil, ErrNilProvider
	}
	d, err := gpuimpl.FromProvider(provider)
	if err != nil {
		return nil, err
	}
	freehand.Logger().Debug("freehand: provider surface format", "format", provider.SurfaceFormat())
	return d, nil
}

// FromHAL creates a device on a HAL device and queue owned by the caller.
func FromHAL(device hal.Device, queue hal.Queue) freehand.Device {
	return gpuimpl.NewDevice(device, queue)
}
