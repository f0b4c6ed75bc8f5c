// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build !nogpu

package gpu

import (
	"errors"
	"fmt"

	"github.com/gogpu/freehand"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	// Register the Vulkan backend.
	_ "github.com/gogpu/wgpu/hal/vulkan"
)

// ErrNoAdapter is returned by Open when no GPU adapter is available.
var ErrNoAdapter = errors.New("freehand: no GPU adapters found")

// Open creates a Device on its own Vulkan instance, preferring a discrete
// or integrated GPU over other adapter types. The device and instance are
// destroyed with the Device.
func Open() (*Device, error) {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return nil, fmt.Errorf("vulkan backend not available")
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("create instance: %w", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, ErrNoAdapter
	}
	var selected *hal.ExposedAdapter
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	if selected == nil {
		selected = &adapters[0]
	}
	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("open device: %w", err)
	}
	freehand.Logger().Info("freehand: gpu device opened", "adapter", selected.Info.Name)

	d := NewDevice(openDev.Device, openDev.Queue)
	d.instance = instance
	d.owned = true
	return d, nil
}

// FromProvider creates a Device on a device shared by a host. The provider
// must expose HalDevice() any and HalQueue() any returning hal.Device and
// hal.Queue. The shared device is never destroyed by the Device.
func FromProvider(provider any) (*Device, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, fmt.Errorf("freehand: provider does not expose HAL types")
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("freehand: provider HalDevice is not hal.Device")
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("freehand: provider HalQueue is not hal.Queue")
	}
	freehand.Logger().Info("freehand: using shared gpu device")
	return NewDevice(device, queue), nil
}
