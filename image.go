// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package pageview

import (
	"bufio"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/anthonynsimon/bild/transform"
	"github.com/h2non/filetype"
	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// sniffLen is how many header bytes filetype needs to recognise a format.
const sniffLen = 262

// LoadImage reads a PNG, JPEG, GIF, BMP, TIFF or WebP file into a pixmap.
func LoadImage(path string) (*Pixmap, error) {
	f, err := os.Open(path) //nolint:gosec // path is user-provided intentionally
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	pm, err := DecodeImage(f)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return pm, nil
}

// DecodeImage decodes an image stream into a pixmap. The format is detected
// from the content, not a file name.
func DecodeImage(r io.Reader) (*Pixmap, error) {
	br := bufio.NewReaderSize(r, sniffLen)
	head, err := br.Peek(sniffLen)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, err
	}
	if !filetype.IsImage(head) {
		kind, _ := filetype.Match(head)
		if kind == filetype.Unknown {
			return nil, ErrUnsupportedImage
		}
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedImage, kind.MIME.Value)
	}

	img, format, err := image.Decode(br)
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	b := img.Bounds()
	if b.Empty() {
		return nil, ErrEmptyTarget
	}

	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)

	Logger().Debug("pageview: image decoded", "format", format, "width", b.Dx(), "height", b.Dy())
	return FromImage(dst), nil
}

// FitTexture downscales pm so neither side exceeds maxSide, keeping the
// aspect ratio. Pixmaps that already fit, and maxSide <= 0, return pm
// unchanged.
func FitTexture(pm *Pixmap, maxSide int) *Pixmap {
	if pm.Empty() || maxSide <= 0 || (pm.width <= maxSide && pm.height <= maxSide) {
		return pm
	}
	w, h := pm.width, pm.height
	if w >= h {
		h = max(1, h*maxSide/w)
		w = maxSide
	} else {
		w = max(1, w*maxSide/h)
		h = maxSide
	}
	Logger().Info("pageview: downscaling texture",
		"from_width", pm.width, "from_height", pm.height, "width", w, "height", h)

	resized := transform.Resize(pm.ToImage(), w, h, transform.Linear)
	return FromImage(resized)
}

// SaveImage writes pm to path, choosing PNG, JPEG, GIF, BMP or TIFF from the
// extension.
func SaveImage(pm *Pixmap, path string) error {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	var encode func(io.Writer, image.Image) error
	switch ext {
	case "png":
		encode = png.Encode
	case "jpg", "jpeg":
		encode = func(w io.Writer, m image.Image) error { return jpeg.Encode(w, m, &jpeg.Options{Quality: 95}) }
	case "gif":
		encode = func(w io.Writer, m image.Image) error { return gif.Encode(w, m, nil) }
	case "bmp":
		encode = bmp.Encode
	case "tif", "tiff":
		encode = func(w io.Writer, m image.Image) error { return tiff.Encode(w, m, nil) }
	default:
		return fmt.Errorf("%w: extension %q", ErrUnsupportedImage, ext)
	}

	f, err := os.Create(path) //nolint:gosec // path is user-provided intentionally
	if err != nil {
		return err
	}
	if err := encode(f, pm.ToImage()); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
