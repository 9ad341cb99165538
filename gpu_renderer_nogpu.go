// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build nogpu

package pageview

import "log/slog"

func propagateLogger(*slog.Logger) {}

// GPURenderer is unavailable in nogpu builds.
type GPURenderer struct{}

// NewGPURenderer always fails with ErrNoGPU in nogpu builds.
func NewGPURenderer(...Option) (*GPURenderer, error) {
	return nil, ErrNoGPU
}

// Backend returns "gpu".
func (*GPURenderer) Backend() string { return BackendGPU }

// DeviceName returns an empty string.
func (*GPURenderer) DeviceName() string { return "" }

// Bind returns ErrNoGPU.
func (*GPURenderer) Bind(*Pixmap) error { return ErrNoGPU }

// Draw returns ErrNoGPU.
func (*GPURenderer) Draw(*Pixmap, PassConfig) error { return ErrNoGPU }

// Close returns ErrNoGPU.
func (*GPURenderer) Close() error { return ErrNoGPU }
