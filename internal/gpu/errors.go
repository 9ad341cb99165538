// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package gpu

import "errors"

var (
	// ErrNoTexture is returned when drawing before a page texture is bound.
	ErrNoTexture = errors.New("gpu: no texture bound")

	// ErrEmptyTarget is returned for a zero-sized render target or texture.
	ErrEmptyTarget = errors.New("gpu: empty target")

	// ErrNoTransform is returned by SetTransform on a blit pipeline.
	ErrNoTransform = errors.New("gpu: pipeline has no transform stage")

	// ErrClosed is returned after Destroy.
	ErrClosed = errors.New("gpu: pipeline destroyed")

	// ErrNoAdapter is returned when no adapter can be opened.
	ErrNoAdapter = errors.New("gpu: no adapter available")

	// ErrNotHALProvider is returned when a device provider does not expose
	// HAL device and queue.
	ErrNotHALProvider = errors.New("gpu: provider does not expose HAL types")

	// ErrTimeout is returned when a submission does not complete in time.
	ErrTimeout = errors.New("gpu: timed out waiting for GPU")

	// ErrPixelSize is returned when uploaded pixels do not match width*height*4.
	ErrPixelSize = errors.New("gpu: pixel data size mismatch")
)
