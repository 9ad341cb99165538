// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package raster is the software reference for the covering-triangle page
// pipeline.
//
// It runs the same stages as the WGSL shaders in internal/gpu, in float32,
// on the CPU: the geometry generator, the transform and identity vertex
// stages, the sampling stage with its two output policies, and a
// triangle rasterizer that interpolates texture coordinates across the
// viewport. The GPU path and this package are expected to agree at every
// pixel centre up to sampler precision; tests in both packages rely on that.
package raster
