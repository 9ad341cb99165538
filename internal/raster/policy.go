// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package raster

// Policy is the output rule of the sampling stage.
type Policy uint8

const (
	// Opaque keeps the sampled color and forces alpha to 1.
	Opaque Policy = iota
	// Passthrough returns the sample unchanged.
	Passthrough
)

// String returns the policy name.
func (p Policy) String() string {
	if p == Passthrough {
		return "passthrough"
	}
	return "opaque"
}

// Shade applies the policy to a sample.
func (p Policy) Shade(s Color) Color {
	if p == Passthrough {
		return s
	}
	return Color{R: s.R, G: s.G, B: s.B, A: 1}
}
