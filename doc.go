// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package pageview displays a page image on a surface with pan and zoom.
//
// # Overview
//
// A page is drawn with a single draw call of three vertices: a covering
// triangle with corners (-1,-1), (3,-1) and (-1,3) in clip space. The
// triangle encloses the whole clip rectangle, and its texture coordinates
// are chosen so that the visible part maps the page texture exactly onto
// the surface. No vertex buffer is involved.
//
// There are two passes:
//
//   - The page pass moves the triangle by a 4x4 transform held in a small
//     uniform buffer, samples the page as opaque and draws without blending.
//     Pan and zoom only rewrite that uniform.
//   - The blit pass keeps the triangle fixed to the screen, keeps the page's
//     alpha and blends it over the background with straight-alpha "over".
//
// # Quick Start
//
//	page, err := pageview.LoadImage("page.png")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	r, err := pageview.NewRenderer(pageview.BackendAuto)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer r.Close()
//
//	v := pageview.NewViewer(r, 800, 600, nil)
//	v.ShowPage(pageview.PageKey{Page: 1}, func() (*pageview.Pixmap, error) { return page, nil })
//	v.View().ZoomAt(2, 400, 300)
//
//	dst := pageview.NewPixmap(800, 600)
//	v.Frame(dst)
//	pageview.SaveImage(dst, "out.png")
//
// # Renderers
//
// GPURenderer draws with the wgpu HAL, either on its own device or on one
// shared by a host application (WithDeviceProvider, WithHALDevice).
// SoftwareRenderer runs the same two passes on the CPU. Build with the
// nogpu tag to leave the GPU backend out entirely.
//
// # Coverage
//
// The moved triangle still covers the surface as long as the transform
// scales by s >= 1 and translates by at most s-1 on each axis. View keeps
// its state inside that region; CoversClip checks an arbitrary transform.
//
// # Logging
//
// pageview logs through log/slog and is silent by default. See SetLogger.
package pageview
