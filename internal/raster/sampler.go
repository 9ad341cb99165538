// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package raster

import "github.com/chewxy/math32"

// Filter selects texel filtering.
type Filter uint8

const (
	// FilterLinear blends the four nearest texels.
	FilterLinear Filter = iota
	// FilterNearest picks the texel containing the coordinate.
	FilterNearest
)

// String returns the filter name.
func (f Filter) String() string {
	switch f {
	case FilterLinear:
		return "linear"
	case FilterNearest:
		return "nearest"
	default:
		return "unknown"
	}
}

// AddressMode decides which texel an out-of-range coordinate reads.
type AddressMode uint8

const (
	// AddressClamp repeats the edge texel.
	AddressClamp AddressMode = iota
	// AddressRepeat tiles the texture.
	AddressRepeat
	// AddressMirror tiles the texture, flipping every other tile.
	AddressMirror
)

// String returns the address mode name.
func (a AddressMode) String() string {
	switch a {
	case AddressClamp:
		return "clamp"
	case AddressRepeat:
		return "repeat"
	case AddressMirror:
		return "mirror"
	default:
		return "unknown"
	}
}

// Sampler mirrors a GPU sampler object. The zero value is linear, clamp to
// edge on both axes.
type Sampler struct {
	Filter   Filter
	AddressU AddressMode
	AddressV AddressMode
}

// Color is a straight-alpha RGBA color in [0, 1].
type Color struct {
	R, G, B, A float32
}

// Texture is an RGBA8 image with straight alpha, row-major, 4 bytes per
// texel, no padding between rows.
type Texture struct {
	Width  int
	Height int
	Pix    []uint8
}

// NewTexture allocates a transparent texture.
func NewTexture(width, height int) *Texture {
	return &Texture{Width: width, Height: height, Pix: make([]uint8, width*height*4)}
}

// Texel returns the texel at integer coordinates, which must be in range.
func (t *Texture) Texel(x, y int) Color {
	i := (y*t.Width + x) * 4
	return Color{
		R: float32(t.Pix[i]) / 255,
		G: float32(t.Pix[i+1]) / 255,
		B: float32(t.Pix[i+2]) / 255,
		A: float32(t.Pix[i+3]) / 255,
	}
}

// Sample reads the texture at normalized coordinates. (0,0) is the
// top-left corner of the first texel, (1,1) the bottom-right corner of the
// last one.
func (s Sampler) Sample(t *Texture, uv Vec2) Color {
	if t == nil || t.Width == 0 || t.Height == 0 {
		return Color{}
	}
	if s.Filter == FilterNearest {
		x := address(int(math32.Floor(uv.X*float32(t.Width))), t.Width, s.AddressU)
		y := address(int(math32.Floor(uv.Y*float32(t.Height))), t.Height, s.AddressV)
		return t.Texel(x, y)
	}

	fx := uv.X*float32(t.Width) - 0.5
	fy := uv.Y*float32(t.Height) - 0.5
	x0f, y0f := math32.Floor(fx), math32.Floor(fy)
	tx, ty := fx-x0f, fy-y0f
	x0, y0 := int(x0f), int(y0f)

	xa := address(x0, t.Width, s.AddressU)
	xb := address(x0+1, t.Width, s.AddressU)
	ya := address(y0, t.Height, s.AddressV)
	yb := address(y0+1, t.Height, s.AddressV)

	c00, c10 := t.Texel(xa, ya), t.Texel(xb, ya)
	c01, c11 := t.Texel(xa, yb), t.Texel(xb, yb)
	return Color{
		R: bilerp(c00.R, c10.R, c01.R, c11.R, tx, ty),
		G: bilerp(c00.G, c10.G, c01.G, c11.G, tx, ty),
		B: bilerp(c00.B, c10.B, c01.B, c11.B, tx, ty),
		A: bilerp(c00.A, c10.A, c01.A, c11.A, tx, ty),
	}
}

func address(i, n int, mode AddressMode) int {
	switch mode {
	case AddressRepeat:
		i %= n
		if i < 0 {
			i += n
		}
		return i
	case AddressMirror:
		period := 2 * n
		i %= period
		if i < 0 {
			i += period
		}
		if i >= n {
			i = period - 1 - i
		}
		return i
	default:
		if i < 0 {
			return 0
		}
		if i >= n {
			return n - 1
		}
		return i
	}
}

func bilerp(c00, c10, c01, c11, tx, ty float32) float32 {
	top := c00 + (c10-c00)*tx
	bottom := c01 + (c11-c01)*tx
	return top + (bottom-top)*ty
}
