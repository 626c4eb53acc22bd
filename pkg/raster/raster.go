// Package raster decodes elevation rasters into flat height arrays.
//
// Three encodings are supported: single-channel raster images (8/16-bit,
// normalized then scaled), raw 16-bit unsigned little-endian, and raw
// 32-bit float little-endian. Every decoded sample is transformed by
// value*height_scale + height_offset.
package raster

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"os"

	// Registered image-raster codecs. PNG is the common case; DEM
	// sources also ship 16-bit TIFF and legacy BMP overlays.
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"github.com/icefall/frostline/pkg/manifest"
)

// Raster decoding errors.
var (
	ErrFileMissing       = errors.New("raster file missing")
	ErrFormatUnsupported = errors.New("raster format unsupported")
	ErrTruncatedRaster   = errors.New("truncated raster data")
)

// Heightfield is a decoded square elevation raster.
type Heightfield struct {
	Samples    []float32 // row-major, len Resolution*Resolution
	Resolution int

	// InferredResolution is set when the declared resolution did not match
	// the actual sample count and the resolution was recovered from the
	// byte count instead. Callers should log a warning but proceed.
	InferredResolution bool
}

// At returns the sample at grid coordinates (x, z) without bounds checking.
func (h *Heightfield) At(x, z int) float32 {
	return h.Samples[z*h.Resolution+x]
}

// Load reads and decodes the raster file at path according to spec.
func Load(path string, spec manifest.HeightmapSpec) (*Heightfield, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrFileMissing, path)
		}
		return nil, fmt.Errorf("%w: reading %s: %v", ErrFileMissing, path, err)
	}
	return Decode(data, spec)
}

// Decode decodes raster bytes according to spec.
func Decode(data []byte, spec manifest.HeightmapSpec) (*Heightfield, error) {
	var (
		hf  *Heightfield
		err error
	)

	switch spec.Format {
	case manifest.FormatImage:
		hf, err = decodeImage(data, spec.Resolution)
	case manifest.FormatRaw16:
		hf, err = decodeRaw16(data, spec.Resolution)
	case manifest.FormatRaw32:
		hf, err = decodeRaw32(data, spec.Resolution)
	default:
		return nil, fmt.Errorf("%w: %q", ErrFormatUnsupported, spec.Format)
	}
	if err != nil {
		return nil, err
	}

	for i, v := range hf.Samples {
		hf.Samples[i] = v*spec.HeightScale + spec.HeightOffset
	}
	if spec.FlipY {
		flipRows(hf)
	}
	return hf, nil
}

// decodeImage decodes a single-channel raster image. 8-bit samples are
// normalized by 255, 16-bit by 65535, before the scale/offset transform.
func decodeImage(data []byte, declared int) (*Heightfield, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: decoding image: %v", ErrFormatUnsupported, err)
	}

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w != h {
		return nil, fmt.Errorf("%w: non-square %s raster %dx%d", ErrFormatUnsupported, format, w, h)
	}
	if w < 2 {
		return nil, fmt.Errorf("%w: %s raster %dx%d is below the 2x2 minimum", ErrFormatUnsupported, format, w, h)
	}

	hf := &Heightfield{
		Samples:            make([]float32, w*h),
		Resolution:         w,
		InferredResolution: declared > 0 && declared != w,
	}

	for z := 0; z < h; z++ {
		for x := 0; x < w; x++ {
			c := img.At(b.Min.X+x, b.Min.Y+z)
			switch px := c.(type) {
			case color.Gray:
				hf.Samples[z*w+x] = float32(px.Y) / 255
			case color.Gray16:
				hf.Samples[z*w+x] = float32(px.Y) / 65535
			default:
				// Any other channel layout: take the 16-bit luminance.
				g := color.Gray16Model.Convert(c).(color.Gray16)
				hf.Samples[z*w+x] = float32(g.Y) / 65535
			}
		}
	}
	return hf, nil
}

// decodeRaw16 decodes raw 16-bit unsigned little-endian samples.
func decodeRaw16(data []byte, declared int) (*Heightfield, error) {
	if len(data) < 2 || len(data)%2 != 0 {
		return nil, fmt.Errorf("%w: %d bytes is not a whole number of 16-bit samples", ErrTruncatedRaster, len(data))
	}
	count := len(data) / 2

	res, inferred, err := resolveResolution(count, declared)
	if err != nil {
		return nil, err
	}

	hf := &Heightfield{
		Samples:            make([]float32, res*res),
		Resolution:         res,
		InferredResolution: inferred,
	}
	for i := range hf.Samples {
		hf.Samples[i] = float32(binary.LittleEndian.Uint16(data[i*2:]))
	}
	return hf, nil
}

// decodeRaw32 decodes raw 32-bit float little-endian samples.
func decodeRaw32(data []byte, declared int) (*Heightfield, error) {
	if len(data) < 4 || len(data)%4 != 0 {
		return nil, fmt.Errorf("%w: %d bytes is not a whole number of 32-bit samples", ErrTruncatedRaster, len(data))
	}
	count := len(data) / 4

	res, inferred, err := resolveResolution(count, declared)
	if err != nil {
		return nil, err
	}

	hf := &Heightfield{
		Samples:            make([]float32, res*res),
		Resolution:         res,
		InferredResolution: inferred,
	}
	for i := range hf.Samples {
		bits := binary.LittleEndian.Uint32(data[i*4:])
		hf.Samples[i] = math.Float32frombits(bits)
	}
	return hf, nil
}

// resolveResolution reconciles the declared resolution against the actual
// sample count. A mismatch is not a hard failure: the resolution is inferred
// from the sample count and loading proceeds.
func resolveResolution(count, declared int) (res int, inferred bool, err error) {
	if declared > 0 && declared*declared == count {
		return declared, false, nil
	}
	res = int(math.Sqrt(float64(count)))
	if res < 2 || res*res != count {
		return 0, false, fmt.Errorf("%w: %d samples is not a square raster", ErrTruncatedRaster, count)
	}
	return res, declared > 0, nil
}

// flipRows reverses the row order in place.
func flipRows(hf *Heightfield) {
	res := hf.Resolution
	for z := 0; z < res/2; z++ {
		top := hf.Samples[z*res : (z+1)*res]
		bot := hf.Samples[(res-1-z)*res : (res-z)*res]
		for x := range top {
			top[x], bot[x] = bot[x], top[x]
		}
	}
}
