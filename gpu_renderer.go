// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package pageview

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/pageview/internal/gpu"
)

func propagateLogger(l *slog.Logger) {
	gpu.SetLogger(l)
}

// WithHALDevice makes the GPU renderer draw on a device and queue owned by
// the caller. Close does not destroy them.
func WithHALDevice(device hal.Device, queue hal.Queue) Option {
	return func(o *options) {
		o.halDevice = device
		o.halQueue = queue
	}
}

// pipelineKey identifies one configured pass. Render pipelines are
// immutable, so each distinct pass and sampler gets its own.
type pipelineKey struct {
	transform bool
	sampler   SamplerConfig
}

// gpuPass is a pipeline and the page revision its texture holds.
type gpuPass struct {
	pipeline *gpu.PagePipeline
	revision uint64
}

// GPURenderer draws with the wgpu HAL. Pages are uploaded lazily into each
// pipeline the first time it draws after a Bind; pan and zoom only rewrite
// the 64-byte transform uniform.
//
// GPURenderer is safe for concurrent use.
type GPURenderer struct {
	mu     sync.Mutex
	opts   options
	device *gpu.Device
	format gputypes.TextureFormat
	passes map[pipelineKey]*gpuPass

	page     *Pixmap
	revision uint64
	closed   bool
}

// NewGPURenderer opens a GPU renderer. With WithHALDevice or
// WithDeviceProvider it borrows the given device; otherwise it opens the
// first usable Vulkan adapter.
func NewGPURenderer(opts ...Option) (*GPURenderer, error) {
	o := applyOptions(opts)
	format := gputypes.TextureFormatBGRA8Unorm

	var device *gpu.Device
	switch {
	case o.halDevice != nil:
		d, dok := o.halDevice.(hal.Device)
		q, qok := o.halQueue.(hal.Queue)
		if !dok || !qok {
			return nil, ErrNoHALProvider
		}
		device = gpu.Borrow(d, q)
	case o.provider != nil:
		d, err := gpu.NewFromProvider(o.provider)
		if err != nil {
			if errors.Is(err, gpu.ErrNotHALProvider) {
				return nil, fmt.Errorf("%w: %w", ErrNoHALProvider, err)
			}
			return nil, err
		}
		device = d
		if f := o.provider.SurfaceFormat(); f != gputypes.TextureFormatUndefined {
			format = f
		}
	default:
		d, err := gpu.OpenDevice(gputypes.BackendVulkan)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrNoGPU, err)
		}
		device = d
	}

	Logger().Info("pageview: GPU renderer ready", "device", device.Name(), "format", format)
	return &GPURenderer{
		opts:   o,
		device: device,
		format: format,
		passes: make(map[pipelineKey]*gpuPass),
	}, nil
}

// Backend returns "gpu".
func (r *GPURenderer) Backend() string {
	return BackendGPU
}

// DeviceName returns the adapter name, or a marker for borrowed devices.
func (r *GPURenderer) DeviceName() string {
	return r.device.Name()
}

// Bind records page as the current page. The upload happens on the next
// Draw of each pass.
func (r *GPURenderer) Bind(page *Pixmap) error {
	page, err := checkBind(page, r.opts.maxTextureSize)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrRendererClosed
	}
	data := make([]uint8, len(page.data))
	copy(data, page.data)
	r.page = &Pixmap{width: page.width, height: page.height, data: data}
	r.revision++
	return nil
}

// Draw renders the bound page into dst with pass and reads the result back.
func (r *GPURenderer) Draw(dst *Pixmap, pass PassConfig) error {
	if err := checkDraw(dst, pass); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	defer StartTimer("gpu draw").Stop()

	gp, err := r.prepare(pass)
	if err != nil {
		return err
	}
	pixels, err := gp.pipeline.Render(uint32(dst.width), uint32(dst.height), r.clearColor())
	if err != nil {
		return fmt.Errorf("pageview: render: %w", err)
	}
	storeReadback(dst, pixels, r.format)
	return nil
}

// storeReadback copies attachment pixels into dst, converting BGRA8
// attachments back to RGBA.
func storeReadback(dst *Pixmap, pixels []byte, format gputypes.TextureFormat) {
	copy(dst.data, pixels)
	switch format {
	case gputypes.TextureFormatBGRA8Unorm, gputypes.TextureFormatBGRA8UnormSrgb:
		SwapRB(dst.data)
	}
}

// DrawToView clears view to the background and draws the bound page into
// it with pass. view is typically the current surface texture of a host
// that shared its device through WithDeviceProvider, and must have the
// renderer's Format.
func (r *GPURenderer) DrawToView(view hal.TextureView, pass PassConfig) error {
	if view == nil {
		return ErrEmptyTarget
	}
	if err := pass.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	defer StartTimer("gpu draw to view").Stop()

	gp, err := r.prepare(pass)
	if err != nil {
		return err
	}
	if err := gp.pipeline.RenderToView(view, r.clearColor()); err != nil {
		return fmt.Errorf("pageview: render to view: %w", err)
	}
	return nil
}

// RecordDraw records the page draw into a render pass the host has already
// begun, so the page can share a pass with host content. The pass must
// target an attachment in the renderer's Format. The host submits.
func (r *GPURenderer) RecordDraw(rp hal.RenderPassEncoder, pass PassConfig) error {
	if rp == nil {
		return ErrEmptyTarget
	}
	if err := pass.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	gp, err := r.prepare(pass)
	if err != nil {
		return err
	}
	if err := gp.pipeline.RecordDraw(rp); err != nil {
		return fmt.Errorf("pageview: record draw: %w", err)
	}
	return nil
}

// Format returns the color attachment format the renderer draws in.
func (r *GPURenderer) Format() gputypes.TextureFormat {
	return r.format
}

// prepare returns the pipeline for pass with the current page uploaded and
// the pass transform written. r.mu must be held.
func (r *GPURenderer) prepare(pass PassConfig) (*gpuPass, error) {
	if r.closed {
		return nil, ErrRendererClosed
	}
	if r.page == nil {
		return nil, ErrNilTexture
	}

	gp := r.pass(pass)
	if gp.revision != r.revision {
		if err := gp.pipeline.SetTexture(uint32(r.page.width), uint32(r.page.height), r.page.data); err != nil {
			return nil, fmt.Errorf("pageview: upload page: %w", err)
		}
		gp.revision = r.revision
	}
	if pass.Transform != nil {
		if err := gp.pipeline.SetTransform(*pass.Transform); err != nil {
			return nil, fmt.Errorf("pageview: set transform: %w", err)
		}
	}
	return gp, nil
}

func (r *GPURenderer) clearColor() gputypes.Color {
	bg := r.opts.background
	return gputypes.Color{R: bg.R, G: bg.G, B: bg.B, A: bg.A}
}

// pass returns the pipeline for a pass, creating it on first use.
func (r *GPURenderer) pass(pass PassConfig) *gpuPass {
	key := pipelineKey{transform: pass.HasTransform(), sampler: pass.Sampler}
	if gp, ok := r.passes[key]; ok {
		return gp
	}
	shader := gpu.ShaderWGSL
	if r.opts.spirv {
		shader = gpu.ShaderSPIRV
	}
	gp := &gpuPass{pipeline: r.device.NewPagePipeline(gpu.PipelineConfig{
		Transform: key.transform,
		Format:    r.format,
		Sampler:   gpuSampler(pass.Sampler),
		Shader:    shader,
	})}
	r.passes[key] = gp
	Logger().Debug("pageview: pipeline added", "transform", key.transform,
		"filter", pass.Sampler.Filter, "passes", len(r.passes))
	return gp
}

// Close destroys all pipelines and, unless borrowed, the device.
func (r *GPURenderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrRendererClosed
	}
	r.closed = true
	for key, gp := range r.passes {
		gp.pipeline.Destroy()
		delete(r.passes, key)
	}
	r.device.Destroy()
	r.page = nil
	return nil
}

func gpuSampler(s SamplerConfig) gpu.SamplerDesc {
	filter := gputypes.FilterModeLinear
	if s.Filter == FilterNearest {
		filter = gputypes.FilterModeNearest
	}
	return gpu.SamplerDesc{
		Filter:   filter,
		AddressU: gpuAddress(s.AddressU),
		AddressV: gpuAddress(s.AddressV),
	}
}

func gpuAddress(a AddressMode) gputypes.AddressMode {
	switch a {
	case AddressRepeat:
		return gputypes.AddressModeRepeat
	case AddressMirror:
		return gputypes.AddressModeMirrorRepeat
	default:
		return gputypes.AddressModeClampToEdge
	}
}
