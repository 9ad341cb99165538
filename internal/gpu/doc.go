// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

// Package gpu draws a page texture with a single covering triangle on a
// wgpu HAL device.
//
// Two passes share one shader layout:
//
//   - page: the triangle is multiplied by a 4x4 transform held in a
//     persistent uniform buffer (group 1), giving pan and zoom without any
//     geometry upload. Output is opaque, blending is off.
//   - blit: the triangle is fixed to the screen and the sample's alpha is
//     blended over the attachment.
//
// Each frame is one Draw(3, 1, 0, 0) with no vertex or index buffers.
// PagePipeline owns the GPU objects; Device opens or borrows the device.
package gpu
