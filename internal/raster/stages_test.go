// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package raster

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func scaleTranslate(s, tx, ty float32) *Mat4 {
	return &Mat4{
		s, 0, 0, 0,
		0, s, 0, 0,
		0, 0, 1, 0,
		tx, ty, 0, 1,
	}
}

func TestCoveringVertex(t *testing.T) {
	assert.Equal(t, Vec2{-1, -1}, CoveringVertex(0))
	assert.Equal(t, Vec2{3, -1}, CoveringVertex(1))
	assert.Equal(t, Vec2{-1, 3}, CoveringVertex(2))
}

func TestTransformStage_Identity(t *testing.T) {
	want := []VertexOutput{
		{Position: Vec4{-1, -1, 0, 1}, TexCoord: Vec2{0, 1}},
		{Position: Vec4{3, -1, 0, 1}, TexCoord: Vec2{2, 1}},
		{Position: Vec4{-1, 3, 0, 1}, TexCoord: Vec2{0, -1}},
	}
	for i, w := range want {
		assert.Equal(t, w, TransformStage(uint32(i), &Identity4), "ordinal %d", i)
	}
}

func TestTransformStage_TexCoordIgnoresMatrix(t *testing.T) {
	m := scaleTranslate(2, 0.5, -0.75)
	for i := range uint32(3) {
		got := TransformStage(i, m)
		ref := TransformStage(i, &Identity4)
		assert.Equal(t, ref.TexCoord, got.TexCoord, "ordinal %d", i)

		raw := CoveringVertex(i)
		assert.Equal(t, Vec4{raw.X*2 + 0.5, raw.Y*2 - 0.75, 0, 1}, got.Position)
	}
}

func TestIdentityStage(t *testing.T) {
	want := []VertexOutput{
		{Position: Vec4{-1, 1, 0, 1}, TexCoord: Vec2{0, 0}},
		{Position: Vec4{3, 1, 0, 1}, TexCoord: Vec2{2, 0}},
		{Position: Vec4{-1, -3, 0, 1}, TexCoord: Vec2{0, 2}},
	}
	for i, w := range want {
		assert.Equal(t, w, IdentityStage(uint32(i)), "ordinal %d", i)
	}
}

// Both stages describe the same clip-to-uv map: u = (x+1)/2, v = (1-y)/2.
func TestStages_ShareClipToUVMap(t *testing.T) {
	for i := range uint32(3) {
		for _, out := range []VertexOutput{TransformStage(i, &Identity4), IdentityStage(i)} {
			assert.InDelta(t, (out.Position.X+1)/2, out.TexCoord.X, 1e-6)
			assert.InDelta(t, (1-out.Position.Y)/2, out.TexCoord.Y, 1e-6)
		}
	}
}

func TestMat4_MulVec4(t *testing.T) {
	m := scaleTranslate(3, 1, 2)
	got := m.MulVec4(Vec4{1, 1, 0, 1})
	assert.Equal(t, Vec4{4, 5, 0, 1}, got)
}

func TestPolicy_Shade(t *testing.T) {
	s := Color{0.2, 0.4, 0.6, 0.3}
	assert.Equal(t, Color{0.2, 0.4, 0.6, 1}, Opaque.Shade(s))
	assert.Equal(t, s, Passthrough.Shade(s))
	assert.Equal(t, "opaque", Opaque.String())
	assert.Equal(t, "passthrough", Passthrough.String())
}
