// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package pageview

import "fmt"

// Filter selects texel filtering.
type Filter uint8

const (
	// FilterLinear blends neighbouring texels. It is the default.
	FilterLinear Filter = iota
	// FilterNearest picks the texel under the sample point.
	FilterNearest
)

// String returns the filter name.
func (f Filter) String() string {
	switch f {
	case FilterLinear:
		return "linear"
	case FilterNearest:
		return "nearest"
	}
	return fmt.Sprintf("Filter(%d)", uint8(f))
}

// ParseFilter parses "linear" or "nearest". The empty string is linear.
func ParseFilter(s string) (Filter, error) {
	switch s {
	case "", "linear":
		return FilterLinear, nil
	case "nearest":
		return FilterNearest, nil
	}
	return 0, fmt.Errorf("pageview: unknown filter %q", s)
}

// AddressMode decides what a coordinate outside [0, 1] samples.
type AddressMode uint8

const (
	// AddressClamp repeats the edge texel. It is the default.
	AddressClamp AddressMode = iota
	// AddressRepeat tiles the texture.
	AddressRepeat
	// AddressMirror tiles the texture, mirroring every other tile.
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
	}
	return fmt.Sprintf("AddressMode(%d)", uint8(a))
}

// ParseAddressMode parses "clamp", "repeat" or "mirror". The empty string is
// clamp.
func ParseAddressMode(s string) (AddressMode, error) {
	switch s {
	case "", "clamp":
		return AddressClamp, nil
	case "repeat":
		return AddressRepeat, nil
	case "mirror":
		return AddressMirror, nil
	}
	return 0, fmt.Errorf("pageview: unknown address mode %q", s)
}

// SamplerConfig pairs with the page texture. The zero value is linear,
// clamp to edge.
type SamplerConfig struct {
	Filter   Filter
	AddressU AddressMode
	AddressV AddressMode
}

// PassConfig selects and configures one of the two passes.
//
// A non-nil Transform selects the page pass: the covering triangle is moved
// by Transform, output is opaque and not blended. A nil Transform selects
// the blit pass: the triangle is fixed to the screen and the texture's alpha
// is blended over the background.
type PassConfig struct {
	Transform *Mat4
	Sampler   SamplerConfig
}

// PagePass returns a page pass config with the given transform.
func PagePass(m Mat4, s SamplerConfig) PassConfig {
	return PassConfig{Transform: &m, Sampler: s}
}

// BlitPass returns a blit pass config.
func BlitPass(s SamplerConfig) PassConfig {
	return PassConfig{Sampler: s}
}

// HasTransform reports whether this is the page pass.
func (p PassConfig) HasTransform() bool {
	return p.Transform != nil
}

// Validate rejects transforms that are not 2D affine. A transform that
// leaves part of the surface uncovered is valid; see CoversClip.
func (p PassConfig) Validate() error {
	if p.Transform != nil && !p.Transform.IsAffine2D() {
		return ErrNotAffine
	}
	return nil
}
