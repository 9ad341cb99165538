// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package raster

// Vec2 is a 2D float32 vector.
type Vec2 struct {
	X, Y float32
}

// Vec4 is a homogeneous clip-space position.
type Vec4 struct {
	X, Y, Z, W float32
}

// Mat4 is a 4x4 matrix stored column-major, the layout of a WGSL
// mat4x4<f32> uniform. Element (row r, column c) is m[c*4+r].
type Mat4 [16]float32

// Identity4 is the 4x4 identity matrix.
var Identity4 = Mat4{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 1, 0,
	0, 0, 0, 1,
}

// MulVec4 returns m * v.
func (m *Mat4) MulVec4(v Vec4) Vec4 {
	return Vec4{
		X: m[0]*v.X + m[4]*v.Y + m[8]*v.Z + m[12]*v.W,
		Y: m[1]*v.X + m[5]*v.Y + m[9]*v.Z + m[13]*v.W,
		Z: m[2]*v.X + m[6]*v.Y + m[10]*v.Z + m[14]*v.W,
		W: m[3]*v.X + m[7]*v.Y + m[11]*v.Z + m[15]*v.W,
	}
}

// VertexOutput is what a vertex stage hands to the rasterizer.
type VertexOutput struct {
	Position Vec4
	TexCoord Vec2
}

// CoveringVertex returns the raw position of the covering triangle for a
// vertex ordinal: (-1,-1), (3,-1), (-1,3). Any ordinal other than 1 or 2
// behaves like 0.
func CoveringVertex(ordinal uint32) Vec2 {
	x, y := float32(-1), float32(-1)
	if ordinal == 1 {
		x = 3
	}
	if ordinal == 2 {
		y = 3
	}
	return Vec2{X: x, Y: y}
}

// TransformStage is the vertex stage of the page pass. The clip position is
// m applied to the raw vertex; the texture coordinate comes from the raw
// vertex so that transforming the triangle moves the page with it.
func TransformStage(ordinal uint32, m *Mat4) VertexOutput {
	p := CoveringVertex(ordinal)
	return VertexOutput{
		Position: m.MulVec4(Vec4{X: p.X, Y: p.Y, Z: 0, W: 1}),
		TexCoord: Vec2{X: p.X*0.5 + 0.5, Y: 1 - (p.Y*0.5 + 0.5)},
	}
}

// IdentityStage is the vertex stage of the blit pass. It derives both
// position and texture coordinate from the ordinal bits.
func IdentityStage(ordinal uint32) VertexOutput {
	u := float32((ordinal << 1) & 2)
	w := float32(ordinal & 2)
	return VertexOutput{
		Position: Vec4{X: u*2 - 1, Y: 1 - w*2, Z: 0, W: 1},
		TexCoord: Vec2{X: u, Y: w},
	}
}
