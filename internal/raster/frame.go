// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package raster

// Frame is a color attachment: RGBA8, straight alpha, row-major.
type Frame struct {
	Width  int
	Height int
	Pix    []uint8
}

// NewFrame allocates a transparent black frame.
func NewFrame(width, height int) *Frame {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Frame{Width: width, Height: height, Pix: make([]uint8, width*height*4)}
}

// Clear fills the frame with c, like a render pass with a clear load op.
func (f *Frame) Clear(c Color) {
	r, g, b, a := quantize(c.R), quantize(c.G), quantize(c.B), quantize(c.A)
	for i := 0; i < len(f.Pix); i += 4 {
		f.Pix[i] = r
		f.Pix[i+1] = g
		f.Pix[i+2] = b
		f.Pix[i+3] = a
	}
}

// At returns the pixel at (x, y) as a Color.
func (f *Frame) At(x, y int) Color {
	i := (y*f.Width + x) * 4
	return Color{
		R: float32(f.Pix[i]) / 255,
		G: float32(f.Pix[i+1]) / 255,
		B: float32(f.Pix[i+2]) / 255,
		A: float32(f.Pix[i+3]) / 255,
	}
}

// RGBA returns the raw bytes of the pixel at (x, y).
func (f *Frame) RGBA(x, y int) (r, g, b, a uint8) {
	i := (y*f.Width + x) * 4
	return f.Pix[i], f.Pix[i+1], f.Pix[i+2], f.Pix[i+3]
}

func (f *Frame) store(x, y int, c Color) {
	i := (y*f.Width + x) * 4
	f.Pix[i] = quantize(c.R)
	f.Pix[i+1] = quantize(c.G)
	f.Pix[i+2] = quantize(c.B)
	f.Pix[i+3] = quantize(c.A)
}

// quantize converts to unorm8 the way a GPU writes an 8-bit attachment.
func quantize(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}
