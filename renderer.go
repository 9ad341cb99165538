// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package pageview

import (
	"fmt"
	"strings"
)

// Renderer draws a bound page texture into a pixmap with one pass.
//
// Bind uploads a page image; call it again when the page content changes.
// Draw clears dst to the background color and issues the pass's single
// covering-triangle draw. Pan and zoom only change pass.Transform and never
// require a new Bind.
type Renderer interface {
	Bind(page *Pixmap) error
	Draw(dst *Pixmap, pass PassConfig) error
	Backend() string
	Close() error
}

// Backend names accepted by NewRenderer.
const (
	BackendAuto     = "auto"
	BackendGPU      = "gpu"
	BackendSoftware = "cpu"
)

// NewRenderer creates a renderer for the named backend. "auto" (or "")
// tries the GPU and falls back to the software renderer.
func NewRenderer(backend string, opts ...Option) (Renderer, error) {
	switch strings.ToLower(backend) {
	case BackendSoftware, "software":
		return NewSoftwareRenderer(opts...), nil
	case BackendGPU:
		r, err := NewGPURenderer(opts...)
		if err != nil {
			return nil, err
		}
		return r, nil
	case BackendAuto, "":
		r, err := NewGPURenderer(opts...)
		if err == nil {
			return r, nil
		}
		Logger().Warn("pageview: GPU unavailable, using software renderer", "err", err)
		return NewSoftwareRenderer(opts...), nil
	}
	return nil, fmt.Errorf("pageview: unknown backend %q", backend)
}

// checkDraw validates Draw arguments common to all renderers.
func checkDraw(dst *Pixmap, pass PassConfig) error {
	if dst.Empty() {
		return ErrEmptyTarget
	}
	return pass.Validate()
}

// checkBind validates and, if needed, downscales a page for binding.
func checkBind(page *Pixmap, maxSide int) (*Pixmap, error) {
	if page == nil {
		return nil, ErrNilTexture
	}
	if page.Empty() {
		return nil, ErrEmptyTarget
	}
	return FitTexture(page, maxSide), nil
}
