// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package raster

import (
	"github.com/chewxy/math32"

	"github.com/gogpu/pageview/internal/parallel"
)

// Pipeline is one configured pass.
//
// With a Transform it is the page pass: transform stage, opaque policy,
// blending off. Without one it is the blit pass: identity stage,
// passthrough policy, straight-alpha "over" blending.
type Pipeline struct {
	Transform *Mat4
	Sampler   Sampler
}

// Policy returns the sampling policy the pass uses.
func (p *Pipeline) Policy() Policy {
	if p.Transform != nil {
		return Opaque
	}
	return Passthrough
}

// Blends reports whether fragments are blended over the attachment.
func (p *Pipeline) Blends() bool {
	return p.Transform == nil
}

// Vertex runs the pass's vertex stage for one ordinal.
func (p *Pipeline) Vertex(ordinal uint32) VertexOutput {
	if p.Transform != nil {
		return TransformStage(ordinal, p.Transform)
	}
	return IdentityStage(ordinal)
}

// Draw issues the single draw of the pass (3 vertices, 1 instance) into dst,
// sampling tex. Rows are shaded in parallel on pool; a nil pool shades on
// the calling goroutine.
func (p *Pipeline) Draw(pool *parallel.Pool, dst *Frame, tex *Texture) {
	if dst == nil || dst.Width == 0 || dst.Height == 0 {
		return
	}
	tri, ok := p.setup(dst.Width, dst.Height)
	if !ok {
		return
	}

	policy := p.Policy()
	blend := p.Blends()
	y0, y1 := tri.rows(dst.Height)
	x0, x1 := tri.cols(dst.Width)

	band := func(from, to int) {
		if from < y0 {
			from = y0
		}
		if to > y1 {
			to = y1
		}
		for y := from; y < to; y++ {
			for x := x0; x < x1; x++ {
				uv, inside := tri.interpolate(float32(x)+0.5, float32(y)+0.5)
				if !inside {
					continue
				}
				c := policy.Shade(p.Sampler.Sample(tex, uv))
				if blend {
					c = over(c, dst.At(x, y))
				}
				dst.store(x, y, c)
			}
		}
	}

	if pool == nil {
		band(0, dst.Height)
		return
	}
	pool.Rows(dst.Height, band)
}

// UVAt returns the interpolated texture coordinate at the centre of pixel
// (x, y) of a width x height attachment, and whether the pixel is covered.
func (p *Pipeline) UVAt(width, height, x, y int) (Vec2, bool) {
	tri, ok := p.setup(width, height)
	if !ok {
		return Vec2{}, false
	}
	return tri.interpolate(float32(x)+0.5, float32(y)+0.5)
}

// over is straight-alpha source-over: rgb = src*a + dst*(1-a),
// alpha = a + dst.a*(1-a).
func over(src, dst Color) Color {
	inv := 1 - src.A
	return Color{
		R: src.R*src.A + dst.R*inv,
		G: src.G*src.A + dst.G*inv,
		B: src.B*src.A + dst.B*inv,
		A: src.A + dst.A*inv,
	}
}

// triangle is a screen-space triangle with counter-clockwise winding in
// pixel coordinates (y down) and its per-vertex texture coordinates.
type triangle struct {
	sx, sy  [3]float32
	uv      [3]Vec2
	invArea float32
}

// setup runs the vertex stage, divides by w and applies the viewport
// transform. It fails for a degenerate triangle.
func (p *Pipeline) setup(width, height int) (triangle, bool) {
	var t triangle
	for i := range uint32(3) {
		out := p.Vertex(i)
		w := out.Position.W
		if w == 0 {
			return t, false
		}
		nx, ny := out.Position.X/w, out.Position.Y/w
		t.sx[i] = (nx + 1) * 0.5 * float32(width)
		t.sy[i] = (1 - ny) * 0.5 * float32(height)
		t.uv[i] = out.TexCoord
	}

	area := edge(t.sx[0], t.sy[0], t.sx[1], t.sy[1], t.sx[2], t.sy[2])
	if area == 0 {
		return t, false
	}
	if area < 0 {
		t.sx[1], t.sx[2] = t.sx[2], t.sx[1]
		t.sy[1], t.sy[2] = t.sy[2], t.sy[1]
		t.uv[1], t.uv[2] = t.uv[2], t.uv[1]
		area = -area
	}
	t.invArea = 1 / area
	return t, true
}

// rows returns the bounding rows of the triangle clipped to [0, height).
func (t *triangle) rows(height int) (int, int) {
	lo := math32.Floor(min(t.sy[0], t.sy[1], t.sy[2]))
	hi := math32.Ceil(max(t.sy[0], t.sy[1], t.sy[2]))
	return clampInt(int(lo), 0, height), clampInt(int(hi), 0, height)
}

// cols returns the bounding columns of the triangle clipped to [0, width).
func (t *triangle) cols(width int) (int, int) {
	lo := math32.Floor(min(t.sx[0], t.sx[1], t.sx[2]))
	hi := math32.Ceil(max(t.sx[0], t.sx[1], t.sx[2]))
	return clampInt(int(lo), 0, width), clampInt(int(hi), 0, width)
}

// interpolate evaluates the edge functions at (px, py) and, when the point is
// inside, returns the barycentric blend of the texture coordinates.
func (t *triangle) interpolate(px, py float32) (Vec2, bool) {
	w0 := edge(t.sx[1], t.sy[1], t.sx[2], t.sy[2], px, py)
	w1 := edge(t.sx[2], t.sy[2], t.sx[0], t.sy[0], px, py)
	w2 := edge(t.sx[0], t.sy[0], t.sx[1], t.sy[1], px, py)
	if w0 < 0 || w1 < 0 || w2 < 0 {
		return Vec2{}, false
	}
	b0, b1, b2 := w0*t.invArea, w1*t.invArea, w2*t.invArea
	return Vec2{
		X: b0*t.uv[0].X + b1*t.uv[1].X + b2*t.uv[2].X,
		Y: b0*t.uv[0].Y + b1*t.uv[1].Y + b2*t.uv[2].Y,
	}, true
}

// edge is twice the signed area of (a, b, c).
func edge(ax, ay, bx, by, cx, cy float32) float32 {
	return (cx-ax)*(by-ay) - (cy-ay)*(bx-ax)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
