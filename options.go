// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package pageview

import "github.com/gogpu/gpucontext"

// Option configures a renderer during creation.
//
// Example:
//
//	r := pageview.NewSoftwareRenderer(
//	    pageview.WithBackground(pageview.Black),
//	    pageview.WithWorkers(4),
//	)
type Option func(*options)

// options holds optional configuration for renderer creation.
type options struct {
	background     RGBA
	workers        int
	maxTextureSize int
	spirv          bool
	provider       gpucontext.DeviceProvider

	// halDevice and halQueue hold a caller-owned wgpu HAL device; typed as
	// any so this file builds without the GPU backend.
	halDevice any
	halQueue  any
}

// DefaultMaxTextureSize is the largest page texture side uploaded as is.
// Larger sources are downscaled on Bind.
const DefaultMaxTextureSize = 8192

func defaultOptions() options {
	return options{
		background:     DefaultBackground,
		maxTextureSize: DefaultMaxTextureSize,
	}
}

func applyOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithBackground sets the clear color shown wherever the page does not
// cover the surface.
func WithBackground(c RGBA) Option {
	return func(o *options) {
		o.background = c
	}
}

// WithWorkers sets the number of shading goroutines of the software
// renderer. 0 uses GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithMaxTextureSize bounds the page texture size. Pages with a larger side
// are downscaled when bound. 0 disables the bound.
func WithMaxTextureSize(n int) Option {
	return func(o *options) {
		o.maxTextureSize = n
	}
}

// WithSPIRVShaders makes the GPU renderer compile its shaders to SPIR-V
// before handing them to the device.
func WithSPIRVShaders() Option {
	return func(o *options) {
		o.spirv = true
	}
}

// WithDeviceProvider makes the GPU renderer share the device of a host
// application instead of opening its own. The provider must also expose
// HalDevice() any and HalQueue() any.
func WithDeviceProvider(p gpucontext.DeviceProvider) Option {
	return func(o *options) {
		o.provider = p
	}
}
