// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package pageview

import (
	"sync"

	"github.com/gogpu/pageview/internal/parallel"
	"github.com/gogpu/pageview/internal/raster"
)

// SoftwareRenderer runs both passes on the CPU. It produces the same images
// as the GPU renderer up to filtering precision and is used when no adapter
// is available, in tests and for headless export.
//
// SoftwareRenderer is safe for concurrent use.
type SoftwareRenderer struct {
	mu     sync.Mutex
	opts   options
	pool   *parallel.Pool
	tex    *raster.Texture
	closed bool
}

// NewSoftwareRenderer creates a CPU renderer.
func NewSoftwareRenderer(opts ...Option) *SoftwareRenderer {
	o := applyOptions(opts)
	return &SoftwareRenderer{
		opts: o,
		pool: parallel.NewPool(o.workers),
	}
}

// Backend returns "cpu".
func (r *SoftwareRenderer) Backend() string {
	return BackendSoftware
}

// Bind copies page into the renderer's texture.
func (r *SoftwareRenderer) Bind(page *Pixmap) error {
	page, err := checkBind(page, r.opts.maxTextureSize)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrRendererClosed
	}
	if r.tex == nil || r.tex.Width != page.width || r.tex.Height != page.height {
		r.tex = raster.NewTexture(page.width, page.height)
		Logger().Debug("pageview: software texture allocated", "width", page.width, "height", page.height)
	}
	copy(r.tex.Pix, page.data)
	return nil
}

// Draw clears dst to the background and draws the bound page with pass.
func (r *SoftwareRenderer) Draw(dst *Pixmap, pass PassConfig) error {
	if err := checkDraw(dst, pass); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrRendererClosed
	}
	if r.tex == nil {
		return ErrNilTexture
	}
	defer StartTimer("software draw").Stop()

	frame := &raster.Frame{Width: dst.width, Height: dst.height, Pix: dst.data}
	frame.Clear(rasterColor(r.opts.background))

	p := raster.Pipeline{
		Transform: (*raster.Mat4)(pass.Transform),
		Sampler:   rasterSampler(pass.Sampler),
	}
	p.Draw(r.pool, frame, r.tex)
	return nil
}

// Close stops the worker pool. Further calls return ErrRendererClosed.
func (r *SoftwareRenderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrRendererClosed
	}
	r.closed = true
	r.pool.Close()
	r.tex = nil
	return nil
}

func rasterColor(c RGBA) raster.Color {
	return raster.Color{R: float32(c.R), G: float32(c.G), B: float32(c.B), A: float32(c.A)}
}

func rasterSampler(s SamplerConfig) raster.Sampler {
	return raster.Sampler{
		Filter:   rasterFilter(s.Filter),
		AddressU: rasterAddress(s.AddressU),
		AddressV: rasterAddress(s.AddressV),
	}
}

func rasterFilter(f Filter) raster.Filter {
	if f == FilterNearest {
		return raster.FilterNearest
	}
	return raster.FilterLinear
}

func rasterAddress(a AddressMode) raster.AddressMode {
	switch a {
	case AddressRepeat:
		return raster.AddressRepeat
	case AddressMirror:
		return raster.AddressMirror
	default:
		return raster.AddressClamp
	}
}
