// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package pageview

import "errors"

var (
	// ErrNilTexture is returned when drawing with no page bound, or when
	// binding a nil pixmap.
	ErrNilTexture = errors.New("pageview: nil texture")

	// ErrEmptyTarget is returned for a zero-sized destination or source.
	ErrEmptyTarget = errors.New("pageview: empty target")

	// ErrNotAffine is returned for a pass transform that is not a 2D affine
	// matrix; texture coordinates would no longer interpolate linearly.
	ErrNotAffine = errors.New("pageview: transform is not 2D affine")

	// ErrRendererClosed is returned by a renderer after Close.
	ErrRendererClosed = errors.New("pageview: renderer closed")

	// ErrNoGPU is returned when no GPU renderer can be created.
	ErrNoGPU = errors.New("pageview: GPU not available")

	// ErrNoHALProvider is returned when a device provider does not expose
	// wgpu HAL device and queue.
	ErrNoHALProvider = errors.New("pageview: device provider does not expose HAL types")

	// ErrUnsupportedImage is returned by LoadImage for files that are not a
	// supported image format.
	ErrUnsupportedImage = errors.New("pageview: unsupported image format")
)
