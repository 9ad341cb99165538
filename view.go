// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package pageview

import "math"

// Default zoom limits and steps.
const (
	DefaultMinZoom = 1.0
	DefaultMaxZoom = 16.0

	// DefaultZoomStep is the zoom factor of one ZoomSteps step.
	DefaultZoomStep = 1.25

	// DefaultPanStep is the distance in pixels of one PanSteps step.
	DefaultPanStep = 40.0
)

// View is the host-side pan and zoom state of one page on a surface.
//
// The transform it produces is a uniform scale s followed by a clip-space
// translation t. View keeps s >= 1 and |t| <= s-1 on each axis; inside those
// bounds the moved covering triangle always encloses the clip rectangle, so
// no background ever shows at the edges.
//
// View is not safe for concurrent use.
type View struct {
	width, height int

	zoom float64
	pan  Point

	minZoom, maxZoom float64

	zoomStep, panStep float64
}

// NewView returns a view of a width x height pixel surface at zoom 1.
func NewView(width, height int) *View {
	return &View{
		width:   width,
		height:  height,
		zoom:    1,
		minZoom:  DefaultMinZoom,
		maxZoom:  DefaultMaxZoom,
		zoomStep: DefaultZoomStep,
		panStep:  DefaultPanStep,
	}
}

// SetSteps sets the zoom factor and pixel distance of one step. A zoom step
// that is not above 1, or a pan step that is not positive, leaves that step
// unchanged.
func (v *View) SetSteps(zoomStep, panStep float64) {
	if zoomStep > 1 && !math.IsInf(zoomStep, 0) {
		v.zoomStep = zoomStep
	}
	if panStep > 0 && !math.IsInf(panStep, 0) {
		v.panStep = panStep
	}
}

// Steps returns the zoom factor and pixel distance of one step.
func (v *View) Steps() (zoomStep, panStep float64) {
	return v.zoomStep, v.panStep
}

// SetZoomLimits sets the zoom range. Limits below 1 are raised to 1 and an
// inverted range is collapsed to min.
func (v *View) SetZoomLimits(minZoom, maxZoom float64) {
	minZoom = math.Max(minZoom, 1)
	if maxZoom < minZoom {
		maxZoom = minZoom
	}
	v.minZoom, v.maxZoom = minZoom, maxZoom
	v.clamp()
}

// ZoomLimits returns the zoom range.
func (v *View) ZoomLimits() (minZoom, maxZoom float64) {
	return v.minZoom, v.maxZoom
}

// Resize changes the surface size. Pan is kept in clip units, so the page
// stays put relative to the surface.
func (v *View) Resize(width, height int) {
	v.width, v.height = width, height
}

// Size returns the surface size in pixels.
func (v *View) Size() (width, height int) {
	return v.width, v.height
}

// Zoom returns the current scale.
func (v *View) Zoom() float64 {
	return v.zoom
}

// Pan returns the current clip-space translation.
func (v *View) Pan() Point {
	return v.pan
}

// Reset returns to zoom 1 with no pan.
func (v *View) Reset() {
	v.zoom = 1
	v.pan = Point{}
	v.clamp()
}

// SetZoom zooms about the surface centre.
func (v *View) SetZoom(zoom float64) {
	v.ZoomAtClip(zoom/v.zoom, Point{})
}

// ZoomAt multiplies the zoom by factor, keeping the page point under pixel
// (px, py) fixed.
func (v *View) ZoomAt(factor, px, py float64) {
	v.ZoomAtClip(factor, v.PixelToClip(px, py))
}

// ZoomAtClip multiplies the zoom by factor about a clip-space pivot.
// Non-positive factors are ignored.
func (v *View) ZoomAtClip(factor float64, pivot Point) {
	if factor <= 0 || math.IsNaN(factor) || math.IsInf(factor, 0) {
		return
	}
	next := clampFloat(v.zoom*factor, v.minZoom, v.maxZoom)
	m := ScaleAbout(next/v.zoom, pivot).Multiply(v.Matrix())
	v.pan = Point{X: m.C, Y: m.F}
	v.zoom = next
	v.clamp()
}

// ZoomSteps zooms in by n steps (out when n is negative), keeping the page
// point under pixel (px, py) fixed.
func (v *View) ZoomSteps(n int, px, py float64) {
	if n == 0 {
		return
	}
	v.ZoomAt(math.Pow(v.zoomStep, float64(n)), px, py)
}

// PanPixels moves the page by (dx, dy) surface pixels; positive dy moves it
// down.
func (v *View) PanPixels(dx, dy float64) {
	if v.width <= 0 || v.height <= 0 {
		return
	}
	v.PanClip(2*dx/float64(v.width), -2*dy/float64(v.height))
}

// PanSteps moves the page by (nx, ny) pan steps; positive ny moves it down.
func (v *View) PanSteps(nx, ny int) {
	v.PanPixels(float64(nx)*v.panStep, float64(ny)*v.panStep)
}

// PanClip moves the page by (dx, dy) in clip units.
func (v *View) PanClip(dx, dy float64) {
	v.pan.X += dx
	v.pan.Y += dy
	v.clamp()
}

// PixelToClip converts a surface pixel position to clip space. Pixel
// (0, 0) is the top-left corner, clip (-1, 1).
func (v *View) PixelToClip(px, py float64) Point {
	if v.width <= 0 || v.height <= 0 {
		return Point{}
	}
	return Point{
		X: 2*px/float64(v.width) - 1,
		Y: 1 - 2*py/float64(v.height),
	}
}

// PageUV returns the texture coordinate shown at surface pixel (px, py).
func (v *View) PageUV(px, py float64) Point {
	c := v.PixelToClip(px, py)
	raw := Point{X: (c.X - v.pan.X) / v.zoom, Y: (c.Y - v.pan.Y) / v.zoom}
	return Point{X: raw.X*0.5 + 0.5, Y: 1 - (raw.Y*0.5 + 0.5)}
}

// Matrix returns the 2D affine transform of the view.
func (v *View) Matrix() Matrix {
	return Matrix{A: v.zoom, C: v.pan.X, E: v.zoom, F: v.pan.Y}
}

// Transform returns the view transform for the page pass.
func (v *View) Transform() Mat4 {
	return Mat4FromAffine(v.Matrix())
}

// Pass returns a page pass config for the current view.
func (v *View) Pass(s SamplerConfig) PassConfig {
	return PagePass(v.Transform(), s)
}

func (v *View) clamp() {
	v.zoom = clampFloat(v.zoom, v.minZoom, v.maxZoom)
	limit := v.zoom - 1
	v.pan.X = clampFloat(v.pan.X, -limit, limit)
	v.pan.Y = clampFloat(v.pan.Y, -limit, limit)
}

func clampFloat(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
