// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package pageview

import (
	"fmt"
	"sync"
)

// Viewer ties a Renderer to a View and a TextureCache.
//
// ShowPage selects the page on display; the renderer is rebound only when
// the page key changes. Frame draws the current page with the view's pan and
// zoom, or with the blit pass when blit mode is on.
//
// Viewer is safe for concurrent use.
type Viewer struct {
	mu sync.Mutex

	renderer Renderer
	view     *View
	cache    *TextureCache
	sampler  SamplerConfig
	blit     bool

	current PageKey
	bound   bool
	binds   int
}

// NewViewer creates a viewer drawing with r onto a width x height surface.
// A nil cache gets a default-sized one.
func NewViewer(r Renderer, width, height int, cache *TextureCache) *Viewer {
	if cache == nil {
		cache = NewTextureCache(0)
	}
	return &Viewer{
		renderer: r,
		view:     NewView(width, height),
		cache:    cache,
	}
}

// SetView replaces the pan and zoom state, for example with one configured
// by the caller. A nil view is ignored.
func (v *Viewer) SetView(view *View) {
	if view == nil {
		return
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.view = view
}

// View returns the viewer's pan and zoom state. Callers must not use it
// concurrently with Frame.
func (v *Viewer) View() *View {
	return v.view
}

// Cache returns the page image cache.
func (v *Viewer) Cache() *TextureCache {
	return v.cache
}

// Renderer returns the renderer.
func (v *Viewer) Renderer() Renderer {
	return v.renderer
}

// SetSampler sets the sampler used by subsequent frames.
func (v *Viewer) SetSampler(s SamplerConfig) {
	v.mu.Lock()
	v.sampler = s
	v.mu.Unlock()
}

// SetBlit switches between the page pass (false) and the blit pass (true).
func (v *Viewer) SetBlit(on bool) {
	v.mu.Lock()
	v.blit = on
	v.mu.Unlock()
}

// Blit reports whether the blit pass is selected.
func (v *Viewer) Blit() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.blit
}

// ShowPage makes key the displayed page. render produces the page image on
// a cache miss. Showing the page already on display does nothing.
func (v *Viewer) ShowPage(key PageKey, render func() (*Pixmap, error)) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.bound && key == v.current {
		return nil
	}
	pm, hit, err := v.cache.GetOrRender(key, render)
	if err != nil {
		return fmt.Errorf("pageview: render page %d: %w", key.Page, err)
	}
	if err := v.renderer.Bind(pm); err != nil {
		return err
	}
	v.current = key
	v.bound = true
	v.binds++
	Logger().Info("pageview: page bound", "page", key.Page, "revision", key.Revision, "cached", hit)
	return nil
}

// Current returns the key of the displayed page.
func (v *Viewer) Current() (PageKey, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.current, v.bound
}

// Binds returns how many times the renderer has been rebound.
func (v *Viewer) Binds() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.binds
}

// Invalidate drops cached pages older than revision. The displayed page is
// rebound on the next ShowPage if its revision is older.
func (v *Viewer) Invalidate(revision uint64) int {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.bound && v.current.Revision < revision {
		v.bound = false
	}
	return v.cache.DropOlder(revision)
}

// Frame draws the displayed page into dst. The view is resized to dst
// first, so a resized surface keeps its pan within bounds.
func (v *Viewer) Frame(dst *Pixmap) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.bound {
		return ErrNilTexture
	}
	if dst.Empty() {
		return ErrEmptyTarget
	}
	if w, h := v.view.Size(); w != dst.width || h != dst.height {
		v.view.Resize(dst.width, dst.height)
	}

	pass := v.view.Pass(v.sampler)
	if v.blit {
		pass = BlitPass(v.sampler)
	}
	return v.renderer.Draw(dst, pass)
}
