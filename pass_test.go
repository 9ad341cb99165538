// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package pageview

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFilter(t *testing.T) {
	for in, want := range map[string]Filter{"": FilterLinear, "linear": FilterLinear, "nearest": FilterNearest} {
		got, err := ParseFilter(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
		if in != "" {
			assert.Equal(t, in, got.String())
		}
	}
	_, err := ParseFilter("cubic")
	assert.Error(t, err)
	assert.Equal(t, "Filter(9)", Filter(9).String())
}

func TestParseAddressMode(t *testing.T) {
	for _, want := range []AddressMode{AddressClamp, AddressRepeat, AddressMirror} {
		got, err := ParseAddressMode(want.String())
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseAddressMode("wrap-around")
	assert.Error(t, err)
}

func TestPassConfig(t *testing.T) {
	s := SamplerConfig{Filter: FilterNearest, AddressU: AddressRepeat}

	blit := BlitPass(s)
	assert.False(t, blit.HasTransform())
	assert.Equal(t, s, blit.Sampler)
	assert.NoError(t, blit.Validate())

	m := Identity4()
	page := PagePass(m, s)
	require.True(t, page.HasTransform())
	assert.NoError(t, page.Validate())

	// PagePass copies the matrix.
	m[0] = 5
	assert.Equal(t, float32(1), page.Transform[0])

	page.Transform[3] = 0.5
	assert.ErrorIs(t, page.Validate(), ErrNotAffine)
}
