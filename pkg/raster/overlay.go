package raster

import (
	"bytes"
	"fmt"
	"image"
	"os"
)

// Overlay is a color-keyed surface override raster sampled in normalized
// [0,1]x[0,1] coordinates over the mountain extent.
type Overlay struct {
	img image.Image
	w   int
	h   int
}

// LoadOverlay reads and decodes a surface overlay image.
func LoadOverlay(path string) (*Overlay, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrFileMissing, path)
		}
		return nil, fmt.Errorf("%w: reading %s: %v", ErrFileMissing, path, err)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: decoding overlay: %v", ErrFormatUnsupported, err)
	}

	b := img.Bounds()
	return &Overlay{img: img, w: b.Dx(), h: b.Dy()}, nil
}

// Sample returns the normalized RGB color at normalized coordinates (u, v).
// Coordinates outside [0,1] are clamped.
func (o *Overlay) Sample(u, v float32) (r, g, b float32) {
	x := int(u * float32(o.w-1))
	y := int(v * float32(o.h-1))
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	if x >= o.w {
		x = o.w - 1
	}
	if y >= o.h {
		y = o.h - 1
	}

	bounds := o.img.Bounds()
	cr, cg, cb, _ := o.img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
	return float32(cr) / 65535, float32(cg) / 65535, float32(cb) / 65535
}
