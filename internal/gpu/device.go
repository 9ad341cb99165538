// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package gpu

import (
	"fmt"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	// Register the Vulkan backend with hal.
	_ "github.com/gogpu/wgpu/hal/vulkan"
)

// Device is a HAL device and queue, either opened here or borrowed from a
// host application.
type Device struct {
	instance hal.Instance
	device   hal.Device
	queue    hal.Queue
	name     string

	// external is set for devices borrowed from a provider; Destroy leaves
	// them alone.
	external bool
}

// OpenDevice opens a device on the given backend, preferring a discrete or
// integrated GPU over software adapters.
func OpenDevice(backendType gputypes.Backend) (*Device, error) {
	backend, ok := hal.GetBackend(backendType)
	if !ok {
		return nil, fmt.Errorf("%w: backend %v not registered", ErrNoAdapter, backendType)
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
	selected := pickAdapter(adapters)

	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("open device: %w", err)
	}

	slogger().Info("gpu: adapter selected",
		"name", selected.Info.Name,
		"type", selected.Info.DeviceType)

	return &Device{
		instance: instance,
		device:   openDev.Device,
		queue:    openDev.Queue,
		name:     selected.Info.Name,
	}, nil
}

// pickAdapter returns the first hardware adapter, or the first adapter when
// none is hardware.
func pickAdapter(adapters []hal.ExposedAdapter) *hal.ExposedAdapter {
	for i := range adapters {
		switch adapters[i].Info.DeviceType {
		case gputypes.DeviceTypeDiscreteGPU, gputypes.DeviceTypeIntegratedGPU:
			return &adapters[i]
		}
	}
	return &adapters[0]
}

// NewFromProvider borrows the device of a host application. The provider
// must also implement HalDevice() any and HalQueue() any returning
// hal.Device and hal.Queue.
func NewFromProvider(provider gpucontext.DeviceProvider) (*Device, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, ErrNotHALProvider
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("%w: HalDevice is not hal.Device", ErrNotHALProvider)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("%w: HalQueue is not hal.Queue", ErrNotHALProvider)
	}

	name := "shared"
	if info := provider.AdapterInfo(); info.Name != "" {
		name = info.Name
	}
	slogger().Info("gpu: using shared device",
		"adapter", name,
		"format", provider.SurfaceFormat())
	return &Device{device: device, queue: queue, name: name, external: true}, nil
}

// Borrow uses an already open device and queue owned by the caller.
// Destroy leaves them alone.
func Borrow(device hal.Device, queue hal.Queue) *Device {
	return &Device{device: device, queue: queue, name: "borrowed", external: true}
}

// HAL returns the underlying device and queue.
func (d *Device) HAL() (hal.Device, hal.Queue) {
	return d.device, d.queue
}

// Name returns the adapter name.
func (d *Device) Name() string {
	return d.name
}

// External reports whether the device is borrowed from a provider.
func (d *Device) External() bool {
	return d.external
}

// NewPagePipeline creates a pipeline on this device.
func (d *Device) NewPagePipeline(cfg PipelineConfig) *PagePipeline {
	return NewPagePipeline(d.device, d.queue, cfg)
}

// Destroy releases the device and instance unless they are borrowed.
func (d *Device) Destroy() {
	if !d.external && d.device != nil {
		d.device.Destroy()
	}
	if d.instance != nil {
		d.instance.Destroy()
	}
	d.device = nil
	d.queue = nil
	d.instance = nil
}
