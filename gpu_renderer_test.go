// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package pageview

import (
	"testing"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noopDevice(t *testing.T) (hal.Device, hal.Queue) {
	t.Helper()
	instance, err := noop.API{}.CreateInstance(nil)
	require.NoError(t, err)
	adapters := instance.EnumerateAdapters(nil)
	require.NotEmpty(t, adapters)
	open, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	require.NoError(t, err)
	t.Cleanup(func() {
		open.Device.Destroy()
		instance.Destroy()
	})
	return open.Device, open.Queue
}

func newNoopRenderer(t *testing.T, opts ...Option) *GPURenderer {
	t.Helper()
	device, queue := noopDevice(t)
	r, err := NewGPURenderer(append([]Option{WithHALDevice(device, queue)}, opts...)...)
	require.NoError(t, err)
	return r
}

type plainProvider struct{}

func (plainProvider) Device() gpucontext.Device   { return nil }
func (plainProvider) Queue() gpucontext.Queue     { return nil }
func (plainProvider) Adapter() gpucontext.Adapter { return nil }
func (plainProvider) SurfaceFormat() gputypes.TextureFormat {
	return gputypes.TextureFormatRGBA8Unorm
}
func (plainProvider) AdapterInfo() gpucontext.AdapterInfo {
	return gpucontext.AdapterInfo{Name: "test", Type: gpucontext.AdapterTypeUnknown}
}

type halProvider struct {
	plainProvider
	device hal.Device
	queue  hal.Queue
}

func (p halProvider) HalDevice() any { return p.device }
func (p halProvider) HalQueue() any  { return p.queue }

func TestGPURenderer_DrawOnNoopDevice(t *testing.T) {
	r := newNoopRenderer(t)
	defer func() { _ = r.Close() }()

	assert.Equal(t, BackendGPU, r.Backend())
	assert.Equal(t, "borrowed", r.DeviceName())

	dst := NewPixmap(70, 3)
	assert.ErrorIs(t, r.Draw(dst, BlitPass(SamplerConfig{})), ErrNilTexture)

	require.NoError(t, r.Bind(gradientPage(8, 8)))
	v := NewView(70, 3)
	v.ZoomAt(2, 10, 1)
	require.NoError(t, r.Draw(dst, v.Pass(SamplerConfig{})))
	require.NoError(t, r.Draw(dst, BlitPass(SamplerConfig{})))
	require.NoError(t, r.Draw(dst, BlitPass(nearest)))

	assert.Len(t, r.passes, 3)
	for _, gp := range r.passes {
		assert.Equal(t, r.revision, gp.revision)
	}
}

func TestGPURenderer_PanDoesNotReupload(t *testing.T) {
	r := newNoopRenderer(t)
	defer func() { _ = r.Close() }()

	require.NoError(t, r.Bind(gradientPage(4, 4)))
	dst := NewPixmap(16, 16)
	v := NewView(16, 16)
	v.SetZoom(2)
	require.NoError(t, r.Draw(dst, v.Pass(SamplerConfig{})))

	v.PanPixels(3, 2)
	require.NoError(t, r.Draw(dst, v.Pass(SamplerConfig{})))
	assert.Len(t, r.passes, 1)
	assert.Equal(t, uint64(1), r.revision)

	require.NoError(t, r.Bind(gradientPage(4, 4)))
	assert.Equal(t, uint64(2), r.revision)
	require.NoError(t, r.Draw(dst, v.Pass(SamplerConfig{})))
	for _, gp := range r.passes {
		assert.Equal(t, uint64(2), gp.revision)
	}
}

// countingPass records the draw calls made into a host render pass.
type countingPass struct {
	hal.RenderPassEncoder
	pipelines int
	groups    []uint32
	vertices  uint32
	draws     int
}

func (c *countingPass) SetPipeline(hal.RenderPipeline) { c.pipelines++ }
func (c *countingPass) SetBindGroup(index uint32, _ hal.BindGroup, _ []uint32) {
	c.groups = append(c.groups, index)
}
func (c *countingPass) Draw(vertexCount, _, _, _ uint32) {
	c.vertices = vertexCount
	c.draws++
}

func noopView(t *testing.T, device hal.Device, format gputypes.TextureFormat) hal.TextureView {
	t.Helper()
	tex, err := device.CreateTexture(&hal.TextureDescriptor{
		Label:         "surface",
		Size:          hal.Extent3D{Width: 32, Height: 16, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        format,
		Usage:         gputypes.TextureUsageRenderAttachment,
	})
	require.NoError(t, err)
	view, err := device.CreateTextureView(tex, &hal.TextureViewDescriptor{Format: format})
	require.NoError(t, err)
	t.Cleanup(func() {
		device.DestroyTextureView(view)
		device.DestroyTexture(tex)
	})
	return view
}

func TestGPURenderer_DrawToView(t *testing.T) {
	device, queue := noopDevice(t)
	r, err := NewGPURenderer(WithDeviceProvider(halProvider{device: device, queue: queue}))
	require.NoError(t, err)
	defer func() { _ = r.Close() }()

	view := noopView(t, device, r.Format())
	assert.ErrorIs(t, r.DrawToView(view, BlitPass(SamplerConfig{})), ErrNilTexture)
	assert.ErrorIs(t, r.DrawToView(nil, BlitPass(SamplerConfig{})), ErrEmptyTarget)

	require.NoError(t, r.Bind(gradientPage(8, 8)))
	v := NewView(32, 16)
	v.ZoomAt(2, 4, 4)
	require.NoError(t, r.DrawToView(view, v.Pass(SamplerConfig{})))
	require.NoError(t, r.DrawToView(view, BlitPass(SamplerConfig{})))
	assert.Len(t, r.passes, 2)

	bad := Identity4()
	bad[7] = 1
	assert.ErrorIs(t, r.DrawToView(view, PassConfig{Transform: &bad}), ErrNotAffine)

	require.NoError(t, r.Close())
	assert.ErrorIs(t, r.DrawToView(view, BlitPass(SamplerConfig{})), ErrRendererClosed)
}

func TestGPURenderer_RecordDraw(t *testing.T) {
	r := newNoopRenderer(t)
	defer func() { _ = r.Close() }()

	rp := &countingPass{}
	assert.ErrorIs(t, r.RecordDraw(rp, BlitPass(SamplerConfig{})), ErrNilTexture)
	assert.ErrorIs(t, r.RecordDraw(nil, BlitPass(SamplerConfig{})), ErrEmptyTarget)

	require.NoError(t, r.Bind(gradientPage(4, 4)))
	require.NoError(t, r.RecordDraw(rp, PagePass(Identity4(), SamplerConfig{})))
	assert.Equal(t, 1, rp.pipelines)
	assert.Equal(t, []uint32{0, 1}, rp.groups)
	assert.Equal(t, uint32(3), rp.vertices)

	rp = &countingPass{}
	require.NoError(t, r.RecordDraw(rp, BlitPass(SamplerConfig{})))
	assert.Equal(t, []uint32{0}, rp.groups)
	assert.Equal(t, 1, rp.draws)
}

func TestGPURenderer_Errors(t *testing.T) {
	r := newNoopRenderer(t)

	assert.ErrorIs(t, r.Bind(nil), ErrNilTexture)
	require.NoError(t, r.Bind(NewPixmap(2, 2)))
	assert.ErrorIs(t, r.Draw(NewPixmap(0, 1), BlitPass(SamplerConfig{})), ErrEmptyTarget)

	bad := Identity4()
	bad[3] = 0.5
	assert.ErrorIs(t, r.Draw(NewPixmap(2, 2), PassConfig{Transform: &bad}), ErrNotAffine)

	require.NoError(t, r.Close())
	assert.ErrorIs(t, r.Close(), ErrRendererClosed)
	assert.ErrorIs(t, r.Bind(NewPixmap(2, 2)), ErrRendererClosed)
	assert.Empty(t, r.passes)
}

func TestGPURenderer_Providers(t *testing.T) {
	t.Run("not HAL", func(t *testing.T) {
		_, err := NewGPURenderer(WithDeviceProvider(plainProvider{}))
		assert.ErrorIs(t, err, ErrNoHALProvider)
	})
	t.Run("shared", func(t *testing.T) {
		device, queue := noopDevice(t)
		r, err := NewGPURenderer(WithDeviceProvider(halProvider{device: device, queue: queue}))
		require.NoError(t, err)
		assert.Equal(t, gputypes.TextureFormatRGBA8Unorm, r.format)

		require.NoError(t, r.Bind(NewPixmap(3, 3)))
		require.NoError(t, r.Draw(NewPixmap(5, 5), BlitPass(SamplerConfig{})))
		require.NoError(t, r.Close())
	})
}

func TestGPURenderer_SPIRV(t *testing.T) {
	r := newNoopRenderer(t, WithSPIRVShaders())
	defer func() { _ = r.Close() }()

	require.NoError(t, r.Bind(NewPixmap(2, 2)))
	err := r.Draw(NewPixmap(4, 4), PagePass(Identity4(), SamplerConfig{}))
	if err != nil {
		t.Skipf("SPIR-V backend path unavailable: %v", err)
	}
}

func TestStoreReadback(t *testing.T) {
	pixels := []byte{10, 20, 30, 255, 1, 2, 3, 128}

	dst := NewPixmap(2, 1)
	storeReadback(dst, pixels, gputypes.TextureFormatBGRA8Unorm)
	assert.Equal(t, []byte{30, 20, 10, 255, 3, 2, 1, 128}, dst.Data())
	assert.Equal(t, []byte{10, 20, 30, 255, 1, 2, 3, 128}, pixels)

	dst = NewPixmap(2, 1)
	storeReadback(dst, pixels, gputypes.TextureFormatRGBA8Unorm)
	assert.Equal(t, pixels, dst.Data())
}

func TestGPUSamplerMapping(t *testing.T) {
	d := gpuSampler(SamplerConfig{Filter: FilterNearest, AddressU: AddressRepeat, AddressV: AddressMirror})
	assert.Equal(t, gputypes.FilterModeNearest, d.Filter)
	assert.Equal(t, gputypes.AddressModeRepeat, d.AddressU)
	assert.Equal(t, gputypes.AddressModeMirrorRepeat, d.AddressV)

	d = gpuSampler(SamplerConfig{})
	assert.Equal(t, gputypes.FilterModeLinear, d.Filter)
	assert.Equal(t, gputypes.AddressModeClampToEdge, d.AddressU)
}
