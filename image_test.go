// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package pageview

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func checkerPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			if (x+y)%2 == 0 {
				img.SetNRGBA(x, y, color.NRGBA{R: 255, A: 255})
			} else {
				img.SetNRGBA(x, y, color.NRGBA{B: 255, A: 128})
			}
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestDecodeImage_PNG(t *testing.T) {
	pm, err := DecodeImage(bytes.NewReader(checkerPNG(t, 5, 3)))
	require.NoError(t, err)

	assert.Equal(t, 5, pm.Width())
	assert.Equal(t, 3, pm.Height())
	assert.Equal(t, color.NRGBA{R: 255, A: 255}, pm.At(0, 0))
	assert.Equal(t, color.NRGBA{B: 255, A: 128}, pm.At(1, 0))
}

func TestDecodeImage_Rejects(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"text", []byte(strings.Repeat("not an image ", 40))},
		{"zip", append([]byte{'P', 'K', 0x03, 0x04}, make([]byte, 300)...)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeImage(bytes.NewReader(tt.data))
			assert.ErrorIs(t, err, ErrUnsupportedImage)
		})
	}
}

func TestDecodeImage_Truncated(t *testing.T) {
	data := checkerPNG(t, 16, 16)
	_, err := DecodeImage(bytes.NewReader(data[:40]))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnsupportedImage)
}

func TestFitTexture(t *testing.T) {
	pm := NewPixmap(400, 100)
	pm.Clear(RGBA{G: 1, A: 1})

	assert.Same(t, pm, FitTexture(pm, 0))
	assert.Same(t, pm, FitTexture(pm, 400))

	small := FitTexture(pm, 100)
	assert.Equal(t, 100, small.Width())
	assert.Equal(t, 25, small.Height())
	c := small.At(50, 12).(color.NRGBA)
	assert.InDelta(t, 255, int(c.G), 1)
	assert.InDelta(t, 255, int(c.A), 1)
	assert.InDelta(t, 0, int(c.R), 1)

	tall := FitTexture(NewPixmap(10, 1000), 50)
	assert.Equal(t, 1, tall.Width())
	assert.Equal(t, 50, tall.Height())
}

func TestSaveImage(t *testing.T) {
	pm := NewPixmap(6, 4)
	pm.Clear(RGBA{R: 1, G: 1, A: 1})
	dir := t.TempDir()

	for _, ext := range []string{"png", "tiff"} {
		t.Run(ext, func(t *testing.T) {
			path := filepath.Join(dir, "page."+ext)
			require.NoError(t, SaveImage(pm, path))
			back, err := LoadImage(path)
			require.NoError(t, err)
			assert.Equal(t, pm.Data(), back.Data())
		})
	}

	for _, ext := range []string{"jpg", "bmp", "gif"} {
		t.Run(ext, func(t *testing.T) {
			path := filepath.Join(dir, "page."+ext)
			require.NoError(t, SaveImage(pm, path))
			back, err := LoadImage(path)
			require.NoError(t, err)
			assert.Equal(t, 6, back.Width())
			assert.Equal(t, 4, back.Height())
		})
	}

	assert.ErrorIs(t, SaveImage(pm, filepath.Join(dir, "page.xyz")), ErrUnsupportedImage)
}

func TestLoadImage_Missing(t *testing.T) {
	_, err := LoadImage(filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)
}
