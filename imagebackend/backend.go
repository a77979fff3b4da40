// Package imagebackend is a concrete atlas.Backend built on the standard
// image package, golang.org/x/image's extra format decoders, and
// github.com/disintegration/imaging for EXIF-aware decoding.
// The core package (atlas) never imports this package; it is wired in by
// cmd/atlaspack.
package imagebackend

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/bzeller/atlaspack/atlas"
)

var supportedExt = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".bmp":  true,
	".tif":  true,
	".tiff": true,
	".webp": true,
}

// Backend is the standard-library-plus-x/image implementation of
// atlas.Backend. The zero value is ready to use.
type Backend struct {
	// PadToPowerOfTwo rounds the canvas allocated in CreateCanvas up to the
	// next power-of-two width and height, leaving the extra border filled
	// with the neutral background. Placements recorded in the index are
	// unaffected: only the exported canvas grows. This exists for atlases
	// destined for GPU upload, where many drivers still expect power-of-two
	// texture dimensions.
	PadToPowerOfTwo bool
}

// New returns a ready-to-use Backend.
func New() *Backend { return &Backend{} }

var _ atlas.Backend = (*Backend)(nil)

// Supports implements atlas.Backend.
func (b *Backend) Supports(ext string) bool {
	return supportedExt[strings.ToLower(ext)]
}

// ReadInfo implements atlas.Backend using image.DecodeConfig, which for
// every format registered here reads only the header, not the pixel data.
func (b *Backend) ReadInfo(path string) (atlas.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return atlas.Image{}, fmt.Errorf("imagebackend: opening %s: %w", path, err)
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return atlas.Image{}, fmt.Errorf("imagebackend: reading header of %s: %w", path, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return atlas.Image{}, fmt.Errorf("imagebackend: %s has non-positive dimensions", path)
	}

	return atlas.NewImage(path, uint32(cfg.Width), uint32(cfg.Height)), nil
}

// canvas wraps the *image.NRGBA under construction, along with a mutex-free
// draw step: concurrent Paint calls are safe as long as their destination
// rectangles are disjoint, which the pack tree guarantees.
type canvas struct {
	img *image.NRGBA
}

// fillColor is the neutral background spec.md §6 calls for: opaque white.
var fillColor = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}

// CreateCanvas implements atlas.Backend.
func (b *Backend) CreateCanvas(size atlas.Size) atlas.Canvas {
	width, height := size.Width, size.Height
	if b.PadToPowerOfTwo {
		if !isPow2(width) {
			width = nextPow2(width)
		}
		if !isPow2(height) {
			height = nextPow2(height)
		}
	}

	img := image.NewNRGBA(image.Rect(0, 0, int(width), int(height)))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: fillColor}, image.Point{}, draw.Src)
	return &canvas{img: img}
}

// Paint implements atlas.Backend. It decodes path fresh on every call
// (Backend carries no cache) and draws it at pos with EXIF orientation
// already normalized by imaging.Open.
func (b *Backend) Paint(c atlas.Canvas, pos atlas.Pos, path string) bool {
	cv, ok := c.(*canvas)
	if !ok {
		return false
	}

	src, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return false
	}

	dstRect := image.Rect(int(pos.X), int(pos.Y), int(pos.X)+src.Bounds().Dx(), int(pos.Y)+src.Bounds().Dy())
	draw.Draw(cv.img, dstRect, src, src.Bounds().Min, draw.Src)
	return true
}

// Export implements atlas.Backend, encoding to PNG with maximum
// compression: the lossless default spec.md §6 names.
func (b *Backend) Export(c atlas.Canvas, path string) bool {
	cv, ok := c.(*canvas)
	if !ok {
		return false
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false
	}

	f, err := os.Create(path)
	if err != nil {
		return false
	}

	enc := png.Encoder{CompressionLevel: png.BestCompression}
	if err := enc.Encode(f, cv.img); err != nil {
		f.Close()
		return false
	}
	return f.Close() == nil
}
