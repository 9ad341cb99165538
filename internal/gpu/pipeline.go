// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package gpu

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"
	"unsafe"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// transformUniformSize is the byte size of the mat4x4<f32> transform uniform.
const transformUniformSize = 64

// gpuWaitTimeout bounds how long a frame submission may take.
const gpuWaitTimeout = 5 * time.Second

// pollInterval is the sleep between queue completion polls.
const pollInterval = 250 * time.Microsecond

// copyRowAlignment is the required BytesPerRow alignment for texture to
// buffer copies.
const copyRowAlignment = 256

// SamplerDesc configures the page sampler.
type SamplerDesc struct {
	Filter   gputypes.FilterMode
	AddressU gputypes.AddressMode
	AddressV gputypes.AddressMode
}

// PipelineConfig describes one pass.
type PipelineConfig struct {
	// Transform selects the page pass (true) or the blit pass (false).
	Transform bool

	// Format is the color attachment format.
	Format gputypes.TextureFormat

	Sampler SamplerDesc
	Shader  ShaderFormat
}

// DefaultPipelineConfig returns a page pass config drawing into a
// BGRA8Unorm attachment with a linear, clamp-to-edge sampler.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Transform: true,
		Format:    gputypes.TextureFormatBGRA8Unorm,
		Sampler: SamplerDesc{
			Filter:   gputypes.FilterModeLinear,
			AddressU: gputypes.AddressModeClampToEdge,
			AddressV: gputypes.AddressModeClampToEdge,
		},
	}
}

// PagePipeline draws a page texture with the covering triangle.
//
// GPU objects are created lazily on first use. The transform uniform is a
// single persistent buffer; SetTransform rewrites it in place, and the write
// is ordered before any draw submitted afterwards on the same queue.
//
// PagePipeline is safe for concurrent use.
type PagePipeline struct {
	mu sync.Mutex

	device hal.Device
	queue  hal.Queue
	cfg    PipelineConfig

	// waitTimeout bounds submitAndWait.
	waitTimeout time.Duration

	shader          hal.ShaderModule
	textureLayout   hal.BindGroupLayout
	transformLayout hal.BindGroupLayout
	pipeLayout      hal.PipelineLayout
	pipeline        hal.RenderPipeline
	sampler         hal.Sampler

	transformBuf   hal.Buffer
	transformGroup hal.BindGroup

	page         textureSlot
	textureGroup hal.BindGroup

	target textureSlot

	destroyed bool
}

// textureSlot is a texture with its default view.
type textureSlot struct {
	tex           hal.Texture
	view          hal.TextureView
	width, height uint32
}

// NewPagePipeline creates a pipeline for the given device and queue. No GPU
// objects are created until the first texture upload, transform or draw.
func NewPagePipeline(device hal.Device, queue hal.Queue, cfg PipelineConfig) *PagePipeline {
	return &PagePipeline{
		device:      device,
		queue:       queue,
		cfg:         cfg,
		waitTimeout: gpuWaitTimeout,
	}
}

// Config returns the pipeline configuration.
func (p *PagePipeline) Config() PipelineConfig {
	return p.cfg
}

// SetTransform uploads a column-major 4x4 matrix to the transform uniform.
func (p *PagePipeline) SetTransform(m [16]float32) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.destroyed {
		return ErrClosed
	}
	if !p.cfg.Transform {
		return ErrNoTransform
	}
	if err := p.ensurePipeline(); err != nil {
		return err
	}
	if err := p.queue.WriteBuffer(p.transformBuf, 0, makeTransformUniform(m)); err != nil {
		return fmt.Errorf("write transform: %w", err)
	}
	return nil
}

// SetTexture uploads RGBA8 pixels (straight alpha, tightly packed rows) as
// the page texture. The texture is reallocated only when the size changes.
func (p *PagePipeline) SetTexture(width, height uint32, rgba []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.destroyed {
		return ErrClosed
	}
	if width == 0 || height == 0 {
		return ErrEmptyTarget
	}
	if uint64(len(rgba)) != uint64(width)*uint64(height)*4 {
		return fmt.Errorf("%w: got %d bytes for %dx%d", ErrPixelSize, len(rgba), width, height)
	}
	if err := p.ensurePipeline(); err != nil {
		return err
	}

	if p.page.tex == nil || p.page.width != width || p.page.height != height {
		if err := p.recreatePage(width, height); err != nil {
			return err
		}
	}

	err := p.queue.WriteTexture(
		&hal.ImageCopyTexture{Texture: p.page.tex, MipLevel: 0},
		rgba,
		&hal.ImageDataLayout{Offset: 0, BytesPerRow: width * 4, RowsPerImage: height},
		&hal.Extent3D{Width: width, Height: height, DepthOrArrayLayers: 1},
	)
	if err != nil {
		return fmt.Errorf("upload page texture: %w", err)
	}
	return nil
}

// recreatePage replaces the page texture and rebinds group 0.
func (p *PagePipeline) recreatePage(width, height uint32) error {
	p.destroyPage()

	slot, err := p.createTexture("page_texture", width, height,
		gputypes.TextureFormatRGBA8Unorm,
		gputypes.TextureUsageTextureBinding|gputypes.TextureUsageCopyDst)
	if err != nil {
		return err
	}
	p.page = slot

	group, err := p.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "page_texture_bind",
		Layout: p.textureLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.TextureViewBinding{TextureView: p.page.view.NativeHandle()}},
			{Binding: 1, Resource: gputypes.SamplerBinding{Sampler: p.sampler.NativeHandle()}},
		},
	})
	if err != nil {
		p.destroyPage()
		return fmt.Errorf("create texture bind group: %w", err)
	}
	p.textureGroup = group

	slogger().Info("gpu: page texture rebound", "width", width, "height", height)
	return nil
}

// TextureSize returns the size of the bound page texture, or zero.
func (p *PagePipeline) TextureSize() (uint32, uint32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.page.width, p.page.height
}

// RecordDraw records the pass's single draw into an open render pass. The
// pass must target an attachment in the configured format.
func (p *PagePipeline) RecordDraw(rp hal.RenderPassEncoder) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.readyToDraw(); err != nil {
		return err
	}
	p.recordDraw(rp)
	return nil
}

func (p *PagePipeline) recordDraw(rp hal.RenderPassEncoder) {
	rp.SetPipeline(p.pipeline)
	rp.SetBindGroup(0, p.textureGroup, nil)
	if p.cfg.Transform {
		rp.SetBindGroup(1, p.transformGroup, nil)
	}
	rp.Draw(3, 1, 0, 0)
}

func (p *PagePipeline) readyToDraw() error {
	if p.destroyed {
		return ErrClosed
	}
	if err := p.ensurePipeline(); err != nil {
		return err
	}
	if p.textureGroup == nil {
		return ErrNoTexture
	}
	return nil
}

// RenderToView clears view to clear and draws the page into it, then waits
// for the GPU to finish.
func (p *PagePipeline) RenderToView(view hal.TextureView, clear gputypes.Color) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.readyToDraw(); err != nil {
		return err
	}

	encoder, err := p.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "page_view_encoder"})
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("page_view"); err != nil {
		return fmt.Errorf("begin encoding: %w", err)
	}
	p.encodePass(encoder, view, clear)

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("end encoding: %w", err)
	}
	if err := p.submitAndWait(cmdBuf); err != nil {
		p.releaseAfterFailure(err, cmdBuf, nil)
		return err
	}
	p.device.FreeCommandBuffer(cmdBuf)
	return nil
}

// Render draws the page into an offscreen width x height attachment cleared
// to clear and returns its pixels as tightly packed rows in the attachment
// format: RGBA8 or BGRA8 byte order.
func (p *PagePipeline) Render(width, height uint32, clear gputypes.Color) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if width == 0 || height == 0 {
		return nil, ErrEmptyTarget
	}
	if err := p.readyToDraw(); err != nil {
		return nil, err
	}
	if err := p.ensureTarget(width, height); err != nil {
		return nil, fmt.Errorf("ensure target: %w", err)
	}

	encoder, err := p.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "page_render_encoder"})
	if err != nil {
		return nil, fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("page_render"); err != nil {
		return nil, fmt.Errorf("begin encoding: %w", err)
	}
	p.encodePass(encoder, p.target.view, clear)

	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: p.target.tex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageRenderAttachment,
			NewUsage: gputypes.TextureUsageCopySrc,
		},
	}})

	rowPitch := alignUp(width*4, copyRowAlignment)
	stagingSize := uint64(rowPitch) * uint64(height)
	staging, err := p.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "page_render_staging",
		Size:  stagingSize,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		encoder.DiscardEncoding()
		return nil, fmt.Errorf("create staging buffer: %w", err)
	}

	encoder.CopyTextureToBuffer(p.target.tex, staging, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: rowPitch, RowsPerImage: height},
		TextureBase:  hal.ImageCopyTexture{Texture: p.target.tex, MipLevel: 0},
		Size:         hal.Extent3D{Width: width, Height: height, DepthOrArrayLayers: 1},
	}})

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		p.device.DestroyBuffer(staging)
		return nil, fmt.Errorf("end encoding: %w", err)
	}
	if err := p.submitAndWait(cmdBuf); err != nil {
		p.releaseAfterFailure(err, cmdBuf, staging)
		return nil, err
	}
	p.device.FreeCommandBuffer(cmdBuf)
	defer p.device.DestroyBuffer(staging)

	mapping, err := p.device.MapBuffer(staging, 0, stagingSize)
	if err != nil {
		return nil, fmt.Errorf("map staging buffer: %w", err)
	}
	padded := unsafe.Slice((*byte)(mapping.Ptr), stagingSize)
	out := unpackRows(padded, width, height, rowPitch)
	if err := p.device.UnmapBuffer(staging); err != nil {
		return nil, fmt.Errorf("unmap staging buffer: %w", err)
	}
	return out, nil
}

func (p *PagePipeline) encodePass(encoder hal.CommandEncoder, view hal.TextureView, clear gputypes.Color) {
	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "page_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{
			{
				View:       view,
				LoadOp:     gputypes.LoadOpClear,
				StoreOp:    gputypes.StoreOpStore,
				ClearValue: clear,
			},
		},
	})
	p.recordDraw(rp)
	rp.End()
}

// submitAndWait submits cmdBuf and polls the queue until its submission
// index completes or p.waitTimeout elapses.
func (p *PagePipeline) submitAndWait(cmdBuf hal.CommandBuffer) error {
	idx, err := p.queue.Submit([]hal.CommandBuffer{cmdBuf})
	if err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	deadline := time.Now().Add(p.waitTimeout)
	for p.queue.PollCompleted() < idx {
		if time.Now().After(deadline) {
			return fmt.Errorf("%w: submission %d after %v", ErrTimeout, idx, p.waitTimeout)
		}
		time.Sleep(pollInterval)
	}
	return nil
}

// releaseAfterFailure frees a failed submission's command buffer and staging
// buffer. After a timeout the GPU may still be using them, so they are
// leaked instead.
func (p *PagePipeline) releaseAfterFailure(err error, cmdBuf hal.CommandBuffer, staging hal.Buffer) {
	if errors.Is(err, ErrTimeout) {
		slogger().Warn("gpu: submission timed out, leaking its resources", "timeout", p.waitTimeout)
		return
	}
	p.device.FreeCommandBuffer(cmdBuf)
	if staging != nil {
		p.device.DestroyBuffer(staging)
	}
}

// ensureTarget creates or resizes the offscreen color attachment.
func (p *PagePipeline) ensureTarget(width, height uint32) error {
	if p.target.tex != nil && p.target.width == width && p.target.height == height {
		return nil
	}
	p.destroySlot(&p.target)

	slot, err := p.createTexture("page_target", width, height, p.cfg.Format,
		gputypes.TextureUsageRenderAttachment|gputypes.TextureUsageCopySrc)
	if err != nil {
		return err
	}
	p.target = slot
	return nil
}

func (p *PagePipeline) createTexture(label string, width, height uint32,
	format gputypes.TextureFormat, usage gputypes.TextureUsage,
) (textureSlot, error) {
	tex, err := p.device.CreateTexture(&hal.TextureDescriptor{
		Label:         label,
		Size:          hal.Extent3D{Width: width, Height: height, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        format,
		Usage:         usage,
	})
	if err != nil {
		return textureSlot{}, fmt.Errorf("create %s: %w", label, err)
	}

	view, err := p.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         label + "_view",
		Format:        format,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		p.device.DestroyTexture(tex)
		return textureSlot{}, fmt.Errorf("create %s view: %w", label, err)
	}
	return textureSlot{tex: tex, view: view, width: width, height: height}, nil
}

// ensurePipeline creates shader, layouts, sampler, pipeline and, for the
// page pass, the transform uniform initialised to identity.
func (p *PagePipeline) ensurePipeline() error {
	if p.pipeline != nil {
		return nil
	}
	if err := p.createPipeline(); err != nil {
		p.destroyPipeline()
		return fmt.Errorf("create pipeline: %w", err)
	}
	slogger().Debug("gpu: page pipeline created",
		"transform", p.cfg.Transform,
		"shader", p.cfg.Shader.String(),
		"uniform_bytes", transformUniformSize)
	return nil
}

func (p *PagePipeline) createPipeline() error {
	label := "blit"
	if p.cfg.Transform {
		label = "page"
	}

	src, err := shaderSource(p.cfg.Shader, ShaderSource(p.cfg.Transform))
	if err != nil {
		return err
	}
	shader, err := p.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  label + "_shader",
		Source: src,
	})
	if err != nil {
		return fmt.Errorf("compile %s shader: %w", label, err)
	}
	p.shader = shader

	// Group 0: page texture (binding 0) and its sampler (binding 1).
	textureLayout, err := p.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: label + "_texture_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
			{
				Binding:    1,
				Visibility: gputypes.ShaderStageFragment,
				Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create texture layout: %w", err)
	}
	p.textureLayout = textureLayout
	layouts := []hal.BindGroupLayout{p.textureLayout}

	if p.cfg.Transform {
		// Group 1: transform uniform, read by the vertex stage only.
		transformLayout, err := p.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
			Label: "page_transform_layout",
			Entries: []gputypes.BindGroupLayoutEntry{
				{
					Binding:    0,
					Visibility: gputypes.ShaderStageVertex,
					Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
				},
			},
		})
		if err != nil {
			return fmt.Errorf("create transform layout: %w", err)
		}
		p.transformLayout = transformLayout
		layouts = append(layouts, p.transformLayout)
	}

	pipeLayout, err := p.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            label + "_pipe_layout",
		BindGroupLayouts: layouts,
	})
	if err != nil {
		return fmt.Errorf("create pipeline layout: %w", err)
	}
	p.pipeLayout = pipeLayout

	sampler, err := p.device.CreateSampler(&hal.SamplerDescriptor{
		Label:        label + "_sampler",
		AddressModeU: p.cfg.Sampler.AddressU,
		AddressModeV: p.cfg.Sampler.AddressV,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    p.cfg.Sampler.Filter,
		MinFilter:    p.cfg.Sampler.Filter,
		MipmapFilter: p.cfg.Sampler.Filter,
	})
	if err != nil {
		return fmt.Errorf("create sampler: %w", err)
	}
	p.sampler = sampler

	target := gputypes.ColorTargetState{
		Format:    p.cfg.Format,
		WriteMask: gputypes.ColorWriteMaskAll,
	}
	if !p.cfg.Transform {
		blend := straightAlphaOver()
		target.Blend = &blend
	}

	pipeline, err := p.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  label + "_pipeline",
		Layout: p.pipeLayout,
		Vertex: hal.VertexState{
			Module:     p.shader,
			EntryPoint: "vs_main",
		},
		Fragment: &hal.FragmentState{
			Module:     p.shader,
			EntryPoint: "fs_main",
			Targets:    []gputypes.ColorTargetState{target},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return fmt.Errorf("create render pipeline: %w", err)
	}
	p.pipeline = pipeline

	if p.cfg.Transform {
		return p.createTransformUniform()
	}
	return nil
}

func (p *PagePipeline) createTransformUniform() error {
	buf, err := p.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "page_transform",
		Size:  transformUniformSize,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create transform buffer: %w", err)
	}
	p.transformBuf = buf
	if err := p.queue.WriteBuffer(buf, 0, makeTransformUniform(identity4)); err != nil {
		return fmt.Errorf("write identity transform: %w", err)
	}

	group, err := p.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "page_transform_bind",
		Layout: p.transformLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{
				Buffer: buf.NativeHandle(), Offset: 0, Size: transformUniformSize,
			}},
		},
	})
	if err != nil {
		return fmt.Errorf("create transform bind group: %w", err)
	}
	p.transformGroup = group
	return nil
}

// straightAlphaOver blends a straight-alpha source over the attachment.
func straightAlphaOver() gputypes.BlendState {
	return gputypes.BlendState{
		Color: gputypes.BlendComponent{
			SrcFactor: gputypes.BlendFactorSrcAlpha,
			DstFactor: gputypes.BlendFactorOneMinusSrcAlpha,
			Operation: gputypes.BlendOperationAdd,
		},
		Alpha: gputypes.BlendComponent{
			SrcFactor: gputypes.BlendFactorOne,
			DstFactor: gputypes.BlendFactorOneMinusSrcAlpha,
			Operation: gputypes.BlendOperationAdd,
		},
	}
}

var identity4 = [16]float32{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 1, 0,
	0, 0, 0, 1,
}

// makeTransformUniform encodes a column-major matrix as 16 little-endian
// f32 values.
func makeTransformUniform(m [16]float32) []byte {
	buf := make([]byte, transformUniformSize)
	for i, v := range m {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

// unpackRows strips row padding from a readback.
func unpackRows(padded []byte, width, height, rowPitch uint32) []byte {
	out := make([]byte, int(width)*int(height)*4)
	rowBytes := int(width) * 4
	for y := range int(height) {
		copy(out[y*rowBytes:(y+1)*rowBytes], padded[y*int(rowPitch):y*int(rowPitch)+rowBytes])
	}
	return out
}

func alignUp(v, a uint32) uint32 {
	return (v + a - 1) / a * a
}

// Destroy releases every GPU object held by the pipeline. Safe to call more
// than once; later calls to other methods return ErrClosed.
func (p *PagePipeline) Destroy() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.destroySlot(&p.target)
	p.destroyPage()
	p.destroyPipeline()
	p.destroyed = true
}

func (p *PagePipeline) destroyPage() {
	if p.textureGroup != nil {
		p.device.DestroyBindGroup(p.textureGroup)
		p.textureGroup = nil
	}
	p.destroySlot(&p.page)
}

func (p *PagePipeline) destroySlot(s *textureSlot) {
	if s.view != nil {
		p.device.DestroyTextureView(s.view)
	}
	if s.tex != nil {
		p.device.DestroyTexture(s.tex)
	}
	*s = textureSlot{}
}

// destroyPipeline releases pipeline objects in reverse creation order.
func (p *PagePipeline) destroyPipeline() {
	if p.device == nil {
		return
	}
	if p.transformGroup != nil {
		p.device.DestroyBindGroup(p.transformGroup)
		p.transformGroup = nil
	}
	if p.transformBuf != nil {
		p.device.DestroyBuffer(p.transformBuf)
		p.transformBuf = nil
	}
	if p.pipeline != nil {
		p.device.DestroyRenderPipeline(p.pipeline)
		p.pipeline = nil
	}
	if p.sampler != nil {
		p.device.DestroySampler(p.sampler)
		p.sampler = nil
	}
	if p.pipeLayout != nil {
		p.device.DestroyPipelineLayout(p.pipeLayout)
		p.pipeLayout = nil
	}
	if p.transformLayout != nil {
		p.device.DestroyBindGroupLayout(p.transformLayout)
		p.transformLayout = nil
	}
	if p.textureLayout != nil {
		p.device.DestroyBindGroupLayout(p.textureLayout)
		p.textureLayout = nil
	}
	if p.shader != nil {
		p.device.DestroyShaderModule(p.shader)
		p.shader = nil
	}
}
