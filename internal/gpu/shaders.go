// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package gpu

import (
	_ "embed"
	"fmt"

	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"
)

//go:embed shaders/page.wgsl
var pageShaderSource string

//go:embed shaders/blit.wgsl
var blitShaderSource string

// ShaderFormat selects how shader source reaches the device.
type ShaderFormat uint8

const (
	// ShaderWGSL hands WGSL text to the backend, which compiles it.
	ShaderWGSL ShaderFormat = iota

	// ShaderSPIRV compiles WGSL to SPIR-V with naga up front. Useful on
	// backends that only accept SPIR-V, and to fail early on shader errors.
	ShaderSPIRV
)

// String returns the format name.
func (f ShaderFormat) String() string {
	if f == ShaderSPIRV {
		return "spirv"
	}
	return "wgsl"
}

// ShaderSource returns the WGSL for the page pass (withTransform) or the
// blit pass.
func ShaderSource(withTransform bool) string {
	if withTransform {
		return pageShaderSource
	}
	return blitShaderSource
}

// shaderSource prepares the module source in the requested format.
func shaderSource(format ShaderFormat, wgsl string) (hal.ShaderSource, error) {
	if format != ShaderSPIRV {
		return hal.ShaderSource{WGSL: wgsl}, nil
	}
	words, err := compileSPIRV(wgsl)
	if err != nil {
		return hal.ShaderSource{}, err
	}
	return hal.ShaderSource{SPIRV: words}, nil
}

// compileSPIRV compiles WGSL to little-endian SPIR-V words.
func compileSPIRV(wgsl string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(wgsl)
	if err != nil {
		return nil, fmt.Errorf("compile shader: %w", err)
	}
	if len(spirvBytes)%4 != 0 {
		return nil, fmt.Errorf("compile shader: SPIR-V length %d not a multiple of 4", len(spirvBytes))
	}
	words := make([]uint32, len(spirvBytes)/4)
	for i := range words {
		words[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return words, nil
}
