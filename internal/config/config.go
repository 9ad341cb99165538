// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package config loads pageview viewer settings from TOML or YAML files.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"golang.org/x/image/colornames"
	"gopkg.in/yaml.v3"

	"github.com/gogpu/pageview"
)

// maxConfigSize bounds config files read by Load.
const maxConfigSize = 1 << 20

// ErrUnknownFormat is returned by Load for extensions other than .toml,
// .yaml and .yml.
var ErrUnknownFormat = errors.New("config: unknown file format")

// Config holds viewer settings. Zero fields take defaults on Load.
type Config struct {
	// Background is a hex color ("#0d0d0d") or a CSS color name ("navy").
	Background string `toml:"background" yaml:"background"`

	// Filter is "linear" or "nearest".
	Filter string `toml:"filter" yaml:"filter"`

	// Address is "clamp", "repeat" or "mirror".
	Address string `toml:"address" yaml:"address"`

	MinZoom float64 `toml:"min_zoom" yaml:"min_zoom"`
	MaxZoom float64 `toml:"max_zoom" yaml:"max_zoom"`

	// ZoomStep is the zoom factor of one step (View.ZoomSteps).
	ZoomStep float64 `toml:"zoom_step" yaml:"zoom_step"`

	// PanStep is the distance in pixels of one step (View.PanSteps).
	PanStep float64 `toml:"pan_step" yaml:"pan_step"`

	Width  int `toml:"width" yaml:"width"`
	Height int `toml:"height" yaml:"height"`

	// Backend is "auto", "gpu" or "cpu".
	Backend string `toml:"backend" yaml:"backend"`

	// Workers is the software renderer's goroutine count; 0 uses GOMAXPROCS.
	Workers int `toml:"workers" yaml:"workers"`

	// MaxTextureSize bounds the page texture side; 0 disables the bound.
	MaxTextureSize int `toml:"max_texture_size" yaml:"max_texture_size"`

	// CacheSize is the number of rendered pages kept in memory.
	CacheSize int `toml:"cache_size" yaml:"cache_size"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Background:     "#0d0d0d",
		Filter:         "linear",
		Address:        "clamp",
		MinZoom:        pageview.DefaultMinZoom,
		MaxZoom:        pageview.DefaultMaxZoom,
		ZoomStep:       pageview.DefaultZoomStep,
		PanStep:        pageview.DefaultPanStep,
		Width:          1024,
		Height:         768,
		Backend:        pageview.BackendAuto,
		MaxTextureSize: pageview.DefaultMaxTextureSize,
		CacheSize:      pageview.DefaultCacheSize,
	}
}

// Load reads a config file over the defaults. The format is chosen by
// extension. Fields absent from the file keep their default values.
func Load(path string) (Config, error) {
	cfg := Default()

	var unmarshal func([]byte, any) error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		unmarshal = toml.Unmarshal
	case ".yaml", ".yml":
		unmarshal = yaml.Unmarshal
	default:
		return cfg, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}

	info, err := os.Stat(path)
	if err != nil {
		return cfg, err
	}
	if info.Size() > maxConfigSize {
		return cfg, fmt.Errorf("config: %s is %d bytes, limit %d", path, info.Size(), maxConfigSize)
	}
	data, err := os.ReadFile(path) //nolint:gosec // path is user-provided intentionally
	if err != nil {
		return cfg, err
	}
	if err := unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks every field and reports all problems at once.
func (c Config) Validate() error {
	var errs []error
	if _, err := c.BackgroundColor(); err != nil {
		errs = append(errs, err)
	}
	if _, err := pageview.ParseFilter(c.Filter); err != nil {
		errs = append(errs, err)
	}
	if _, err := pageview.ParseAddressMode(c.Address); err != nil {
		errs = append(errs, err)
	}
	if c.MinZoom < 1 {
		errs = append(errs, fmt.Errorf("min_zoom %v below 1 would expose the background", c.MinZoom))
	}
	if c.MaxZoom < c.MinZoom {
		errs = append(errs, fmt.Errorf("max_zoom %v below min_zoom %v", c.MaxZoom, c.MinZoom))
	}
	if c.ZoomStep <= 1 {
		errs = append(errs, fmt.Errorf("zoom_step %v must be greater than 1", c.ZoomStep))
	}
	if c.PanStep <= 0 {
		errs = append(errs, fmt.Errorf("pan_step %v must be positive", c.PanStep))
	}
	if c.Width <= 0 || c.Height <= 0 {
		errs = append(errs, fmt.Errorf("size %dx%d must be positive", c.Width, c.Height))
	}
	switch strings.ToLower(c.Backend) {
	case pageview.BackendAuto, pageview.BackendGPU, pageview.BackendSoftware, "":
	default:
		errs = append(errs, fmt.Errorf("unknown backend %q", c.Backend))
	}
	if c.Workers < 0 || c.MaxTextureSize < 0 || c.CacheSize < 0 {
		errs = append(errs, errors.New("workers, max_texture_size and cache_size must not be negative"))
	}
	return errors.Join(errs...)
}

// BackgroundColor parses Background as a hex color or a CSS color name.
func (c Config) BackgroundColor() (pageview.RGBA, error) {
	if named, ok := colornames.Map[strings.ToLower(c.Background)]; ok {
		return pageview.FromColor(named), nil
	}
	return pageview.ParseHex(c.Background)
}

// Sampler returns the configured sampler.
func (c Config) Sampler() (pageview.SamplerConfig, error) {
	f, err := pageview.ParseFilter(c.Filter)
	if err != nil {
		return pageview.SamplerConfig{}, err
	}
	a, err := pageview.ParseAddressMode(c.Address)
	if err != nil {
		return pageview.SamplerConfig{}, err
	}
	return pageview.SamplerConfig{Filter: f, AddressU: a, AddressV: a}, nil
}

// Options returns renderer options for the configured background, workers
// and texture bound.
func (c Config) Options() ([]pageview.Option, error) {
	bg, err := c.BackgroundColor()
	if err != nil {
		return nil, err
	}
	return []pageview.Option{
		pageview.WithBackground(bg),
		pageview.WithWorkers(c.Workers),
		pageview.WithMaxTextureSize(c.MaxTextureSize),
	}, nil
}

// NewView returns a view with the configured size, zoom limits and steps.
func (c Config) NewView() *pageview.View {
	v := pageview.NewView(c.Width, c.Height)
	v.SetZoomLimits(c.MinZoom, c.MaxZoom)
	v.SetSteps(c.ZoomStep, c.PanStep)
	return v
}
