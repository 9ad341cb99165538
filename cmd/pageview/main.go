// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Command pageview renders a page image through the pan and zoom pipeline
// and writes the resulting frame to a file.
//
//	pageview -in page.png -out frame.png -zoom 2 -pivot 100,80
//	pageview -in page.png -out frame.png -zoom-steps 3 -pan-steps-x -2
//	pageview -in page.png -out frame.png -blit -backend cpu
//	pageview -in page.png -out frame.png -watch
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/errgroup"

	"github.com/gogpu/pageview"
	"github.com/gogpu/pageview/internal/config"
)

type flags struct {
	in, out    string
	configPath string
	backend    string
	blit       bool
	zoom       float64
	zoomSteps  int
	panX, panY float64
	panStepsX  int
	panStepsY  int
	pivot      string
	filter     string
	address    string
	width      int
	height     int
	watch      bool
	verbose    bool
}

func main() {
	var f flags
	flag.StringVar(&f.in, "in", "", "page image (png, jpeg, gif, bmp, tiff, webp)")
	flag.StringVar(&f.out, "out", "frame.png", "output file")
	flag.StringVar(&f.configPath, "config", "", "settings file (.toml, .yaml)")
	flag.StringVar(&f.backend, "backend", "", "renderer: auto, gpu or cpu")
	flag.BoolVar(&f.blit, "blit", false, "draw with the blit pass instead of the page pass")
	flag.Float64Var(&f.zoom, "zoom", 1, "zoom factor")
	flag.IntVar(&f.zoomSteps, "zoom-steps", 0, "zoom in by this many configured steps (negative zooms out)")
	flag.Float64Var(&f.panX, "pan-x", 0, "horizontal pan in pixels")
	flag.Float64Var(&f.panY, "pan-y", 0, "vertical pan in pixels")
	flag.IntVar(&f.panStepsX, "pan-steps-x", 0, "horizontal pan in configured steps")
	flag.IntVar(&f.panStepsY, "pan-steps-y", 0, "vertical pan in configured steps")
	flag.StringVar(&f.pivot, "pivot", "", "zoom pivot as x,y pixels (default: centre)")
	flag.StringVar(&f.filter, "filter", "", "texture filter: linear or nearest")
	flag.StringVar(&f.address, "address", "", "address mode: clamp, repeat or mirror")
	flag.IntVar(&f.width, "width", 0, "frame width")
	flag.IntVar(&f.height, "height", 0, "frame height")
	flag.BoolVar(&f.watch, "watch", false, "re-render whenever the input changes")
	flag.BoolVar(&f.verbose, "v", false, "debug logging")
	flag.Parse()

	if f.in == "" {
		flag.Usage()
		os.Exit(2)
	}
	level := slog.LevelWarn
	if f.verbose {
		level = slog.LevelDebug
	}
	pageview.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if err := run(f); err != nil {
		log.Fatalf("pageview: %v", err)
	}
}

func run(f flags) error {
	cfg, err := loadConfig(f)
	if err != nil {
		return err
	}
	opts, err := cfg.Options()
	if err != nil {
		return err
	}
	sampler, err := cfg.Sampler()
	if err != nil {
		return err
	}

	r, err := pageview.NewRenderer(cfg.Backend, opts...)
	if err != nil {
		return err
	}
	defer func() { _ = r.Close() }()

	v := pageview.NewViewer(r, cfg.Width, cfg.Height, pageview.NewTextureCache(cfg.CacheSize))
	v.SetSampler(sampler)
	v.SetBlit(f.blit)
	v.SetView(cfg.NewView())
	if err := applyView(v.View(), f); err != nil {
		return err
	}

	var revision uint64 = 1
	if err := renderFrame(v, f, cfg, revision); err != nil {
		return err
	}
	if !f.watch {
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return watch(ctx, f.in, func() error {
		revision++
		v.Invalidate(revision)
		return renderFrame(v, f, cfg, revision)
	})
}

func loadConfig(f flags) (config.Config, error) {
	cfg := config.Default()
	if f.configPath != "" {
		var err error
		if cfg, err = config.Load(f.configPath); err != nil {
			return cfg, err
		}
	}
	if f.backend != "" {
		cfg.Backend = f.backend
	}
	if f.filter != "" {
		cfg.Filter = f.filter
	}
	if f.address != "" {
		cfg.Address = f.address
	}
	if f.width > 0 {
		cfg.Width = f.width
	}
	if f.height > 0 {
		cfg.Height = f.height
	}
	return cfg, cfg.Validate()
}

func applyView(view *pageview.View, f flags) error {
	w, h := view.Size()
	px, py := float64(w)/2, float64(h)/2
	if f.pivot != "" {
		var err error
		if px, py, err = parsePoint(f.pivot); err != nil {
			return fmt.Errorf("-pivot: %w", err)
		}
	}
	view.ZoomAt(f.zoom, px, py)
	view.ZoomSteps(f.zoomSteps, px, py)
	view.PanPixels(f.panX, f.panY)
	view.PanSteps(f.panStepsX, f.panStepsY)

	zoomStep, _ := view.Steps()
	requested := f.zoom * math.Pow(zoomStep, float64(f.zoomSteps))
	if z := view.Zoom(); math.Abs(z-requested) > 1e-9*requested {
		pageview.Logger().Warn("zoom clamped", "requested", requested, "zoom", z)
	}
	return nil
}

func parsePoint(s string) (x, y float64, err error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return 0, 0, fmt.Errorf("want x,y, got %q", s)
	}
	if x, err = strconv.ParseFloat(strings.TrimSpace(xs), 64); err != nil {
		return 0, 0, err
	}
	if y, err = strconv.ParseFloat(strings.TrimSpace(ys), 64); err != nil {
		return 0, 0, err
	}
	return x, y, nil
}

func renderFrame(v *pageview.Viewer, f flags, cfg config.Config, revision uint64) error {
	defer pageview.StartTimer("frame").Stop()

	key := pageview.PageKey{Revision: revision, Page: 1, Width: cfg.Width, Height: cfg.Height}
	if err := v.ShowPage(key, func() (*pageview.Pixmap, error) {
		return pageview.LoadImage(f.in)
	}); err != nil {
		return err
	}

	dst := pageview.NewPixmap(cfg.Width, cfg.Height)
	if err := v.Frame(dst); err != nil {
		return err
	}
	if err := pageview.SaveImage(dst, f.out); err != nil {
		return err
	}
	log.Printf("%s: %dx%d frame saved to %s (zoom %.2f, %s)",
		v.Renderer().Backend(), cfg.Width, cfg.Height, f.out, v.View().Zoom(), passName(v))
	return nil
}

func passName(v *pageview.Viewer) string {
	if v.Blit() {
		return "blit pass"
	}
	return "page pass"
}

// watch calls onChange after every write to path until ctx is done.
func watch(ctx context.Context, path string, onChange func() error) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = w.Close() }()

	// Editors often replace files, so watch the directory.
	if err := w.Add(filepath.Dir(path)); err != nil {
		return err
	}
	target := filepath.Clean(path)
	changed := make(chan struct{}, 1)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case ev, ok := <-w.Events:
				if !ok {
					return nil
				}
				if filepath.Clean(ev.Name) != target || ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				select {
				case changed <- struct{}{}:
				default:
				}
			case err, ok := <-w.Errors:
				if !ok {
					return nil
				}
				return err
			}
		}
	})
	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-changed:
				if err := onChange(); err != nil {
					if errors.Is(err, pageview.ErrRendererClosed) {
						return err
					}
					// A half-written file fails to decode; the next event retries.
					pageview.Logger().Warn("render failed", "path", path, "err", err)
				}
			}
		}
	})
	log.Printf("watching %s", path)
	return g.Wait()
}
