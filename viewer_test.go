// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package pageview

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingRenderer records calls and draws nothing.
type countingRenderer struct {
	binds  int
	draws  int
	last   PassConfig
	closed bool
}

func (r *countingRenderer) Bind(page *Pixmap) error {
	if page == nil {
		return ErrNilTexture
	}
	r.binds++
	return nil
}

func (r *countingRenderer) Draw(_ *Pixmap, pass PassConfig) error {
	r.draws++
	r.last = pass
	return nil
}

func (r *countingRenderer) Backend() string { return "counting" }

func (r *countingRenderer) Close() error {
	r.closed = true
	return nil
}

func pageOf(w, h int) func() (*Pixmap, error) {
	return func() (*Pixmap, error) { return NewPixmap(w, h), nil }
}

func TestViewer_ShowPageBindsOnKeyChange(t *testing.T) {
	r := &countingRenderer{}
	v := NewViewer(r, 100, 80, nil)

	require.NoError(t, v.ShowPage(key(1, 1), pageOf(10, 10)))
	require.NoError(t, v.ShowPage(key(1, 1), pageOf(10, 10)))
	assert.Equal(t, 1, r.binds)

	require.NoError(t, v.ShowPage(key(1, 2), pageOf(10, 10)))
	require.NoError(t, v.ShowPage(key(1, 1), func() (*Pixmap, error) {
		t.Fatal("page 1 should come from the cache")
		return nil, nil
	}))
	assert.Equal(t, 3, r.binds)
	assert.Equal(t, 3, v.Binds())

	cur, ok := v.Current()
	require.True(t, ok)
	assert.Equal(t, key(1, 1), cur)
}

func TestViewer_PanZoomDoesNotRebind(t *testing.T) {
	r := &countingRenderer{}
	v := NewViewer(r, 100, 80, nil)
	require.NoError(t, v.ShowPage(key(1, 1), pageOf(10, 10)))

	dst := NewPixmap(100, 80)
	for range 5 {
		v.View().ZoomAt(1.25, 30, 20)
		v.View().PanPixels(4, -3)
		require.NoError(t, v.Frame(dst))
	}
	assert.Equal(t, 1, r.binds)
	assert.Equal(t, 5, r.draws)
	require.True(t, r.last.HasTransform())
	assert.Equal(t, v.View().Transform(), *r.last.Transform)
}

func TestViewer_Blit(t *testing.T) {
	r := &countingRenderer{}
	v := NewViewer(r, 10, 10, nil)
	v.SetSampler(SamplerConfig{Filter: FilterNearest})
	require.NoError(t, v.ShowPage(key(1, 1), pageOf(4, 4)))

	v.SetBlit(true)
	assert.True(t, v.Blit())
	require.NoError(t, v.Frame(NewPixmap(10, 10)))
	assert.False(t, r.last.HasTransform())
	assert.Equal(t, FilterNearest, r.last.Sampler.Filter)
}

func TestViewer_FrameResizesView(t *testing.T) {
	v := NewViewer(&countingRenderer{}, 10, 10, nil)
	require.NoError(t, v.ShowPage(key(1, 1), pageOf(4, 4)))
	require.NoError(t, v.Frame(NewPixmap(30, 20)))

	w, h := v.View().Size()
	assert.Equal(t, 30, w)
	assert.Equal(t, 20, h)
}

func TestViewer_Errors(t *testing.T) {
	v := NewViewer(&countingRenderer{}, 10, 10, NewTextureCache(2))

	assert.ErrorIs(t, v.Frame(NewPixmap(10, 10)), ErrNilTexture)

	boom := errors.New("rasterizer failed")
	err := v.ShowPage(key(1, 7), func() (*Pixmap, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)
	_, ok := v.Current()
	assert.False(t, ok)

	require.NoError(t, v.ShowPage(key(1, 1), pageOf(2, 2)))
	assert.ErrorIs(t, v.Frame(NewPixmap(0, 0)), ErrEmptyTarget)
}

func TestViewer_Invalidate(t *testing.T) {
	r := &countingRenderer{}
	v := NewViewer(r, 10, 10, nil)
	require.NoError(t, v.ShowPage(key(1, 1), pageOf(2, 2)))
	require.NoError(t, v.ShowPage(key(1, 2), pageOf(2, 2)))

	assert.Equal(t, 2, v.Invalidate(2))
	assert.Equal(t, 0, v.Cache().Len())
	assert.ErrorIs(t, v.Frame(NewPixmap(10, 10)), ErrNilTexture)

	require.NoError(t, v.ShowPage(key(2, 2), pageOf(2, 2)))
	assert.Equal(t, 3, r.binds)
}

func TestViewer_WithSoftwareRenderer(t *testing.T) {
	r := newSoftware(t, WithBackground(Black))
	v := NewViewer(r, 16, 16, nil)
	page := gradientPage(16, 16)
	require.NoError(t, v.ShowPage(key(1, 1), func() (*Pixmap, error) { return page, nil }))
	v.SetSampler(nearest)

	dst := NewPixmap(16, 16)
	require.NoError(t, v.Frame(dst))
	assert.Equal(t, page.Data(), dst.Data())
	assert.Same(t, r, v.Renderer())
}

func TestViewer_SetView(t *testing.T) {
	r := &countingRenderer{}
	v := NewViewer(r, 100, 80, nil)
	require.NoError(t, v.ShowPage(key(1, 1), pageOf(10, 10)))

	view := NewView(100, 80)
	view.SetSteps(2, 10)
	view.ZoomSteps(1, 50, 40)
	v.SetView(view)
	v.SetView(nil)
	assert.Same(t, view, v.View())

	require.NoError(t, v.Frame(NewPixmap(100, 80)))
	require.NotNil(t, r.last.Transform)
	assert.Equal(t, view.Transform(), *r.last.Transform)
	assert.Equal(t, float32(2), r.last.Transform[0])
}
