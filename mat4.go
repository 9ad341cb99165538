// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package pageview

import "math"

// Mat4 is a 4x4 float32 matrix in column-major order, the memory layout of a
// WGSL mat4x4<f32> uniform. Element (row r, column c) is m[c*4+r].
type Mat4 [16]float32

// Identity4 returns the 4x4 identity.
func Identity4() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Mat4FromAffine embeds a 2D affine transform in clip space: z passes
// through unchanged and w stays 1.
func Mat4FromAffine(a Matrix) Mat4 {
	m := Identity4()
	m[0] = float32(a.A)
	m[1] = float32(a.D)
	m[4] = float32(a.B)
	m[5] = float32(a.E)
	m[12] = float32(a.C)
	m[13] = float32(a.F)
	return m
}

// At returns element (row, col).
func (m Mat4) At(row, col int) float32 {
	return m[col*4+row]
}

// IsAffine2D reports whether m is a 2D affine transform for an input with
// z = 0: output z stays 0 and w stays 1. The z column (m[8..11]) multiplies
// the zero input z and is ignored. Only such matrices keep texture
// coordinates linear in screen space.
func (m Mat4) IsAffine2D() bool {
	return m[2] == 0 && m[6] == 0 && m[14] == 0 && // z row
		m[3] == 0 && m[7] == 0 && m[15] == 1 // w row
}

// Affine extracts the 2D affine part. ok is false when m is not affine.
func (m Mat4) Affine() (a Matrix, ok bool) {
	if !m.IsAffine2D() {
		return Matrix{}, false
	}
	return Matrix{
		A: float64(m[0]), B: float64(m[4]), C: float64(m[12]),
		D: float64(m[1]), E: float64(m[5]), F: float64(m[13]),
	}, true
}

// Mul returns m * o (o is applied first).
func (m Mat4) Mul(o Mat4) Mat4 {
	var r Mat4
	for c := range 4 {
		for row := range 4 {
			var sum float32
			for k := range 4 {
				sum += m[k*4+row] * o[c*4+k]
			}
			r[c*4+row] = sum
		}
	}
	return r
}

// coverEpsilon absorbs float32 rounding at the covering boundary.
const coverEpsilon = 1e-5

// CoversClip reports whether the covering triangle, moved by m, still
// encloses the whole clip rectangle [-1, 1]^2. When it does not, the clear
// color shows at the surface edges.
//
// The check maps the four clip corners back into raw triangle space, where
// the triangle is x >= -1, y >= -1, x + y <= 2.
func CoversClip(m Mat4) bool {
	a, ok := m.Affine()
	if !ok {
		return false
	}
	inv, ok := a.Invert()
	if !ok {
		return false
	}
	for _, c := range [4]Point{{-1, -1}, {1, -1}, {-1, 1}, {1, 1}} {
		p := inv.TransformPoint(c)
		if p.X < -1-coverEpsilon || p.Y < -1-coverEpsilon || p.X+p.Y > 2+coverEpsilon {
			return false
		}
		if math.IsNaN(p.X) || math.IsNaN(p.Y) {
			return false
		}
	}
	return true
}
