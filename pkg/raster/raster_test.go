package raster

import (
	"bytes"
	"encoding/binary"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/icefall/frostline/pkg/manifest"
)

// raw16Bytes encodes uint16 samples little-endian.
func raw16Bytes(samples []uint16) []byte {
	buf := new(bytes.Buffer)
	for _, s := range samples {
		binary.Write(buf, binary.LittleEndian, s)
	}
	return buf.Bytes()
}

// raw32Bytes encodes float32 samples little-endian.
func raw32Bytes(samples []float32) []byte {
	buf := new(bytes.Buffer)
	for _, s := range samples {
		binary.Write(buf, binary.LittleEndian, s)
	}
	return buf.Bytes()
}

func TestDecode_Raw16(t *testing.T) {
	data := raw16Bytes([]uint16{0, 100, 200, 300})
	spec := manifest.HeightmapSpec{
		Format:       manifest.FormatRaw16,
		Resolution:   2,
		HeightScale:  0.5,
		HeightOffset: 1000,
	}

	hf, err := Decode(data, spec)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if hf.Resolution != 2 {
		t.Fatalf("expected resolution 2, got %d", hf.Resolution)
	}
	if hf.InferredResolution {
		t.Error("resolution matched declaration, should not be inferred")
	}

	want := []float32{1000, 1050, 1100, 1150}
	for i, w := range want {
		if hf.Samples[i] != w {
			t.Errorf("sample %d: expected %g, got %g", i, w, hf.Samples[i])
		}
	}
}

func TestDecode_Raw32(t *testing.T) {
	data := raw32Bytes([]float32{1.5, -2, 3.25, 0})
	spec := manifest.HeightmapSpec{
		Format:      manifest.FormatRaw32,
		Resolution:  2,
		HeightScale: 2,
	}

	hf, err := Decode(data, spec)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	want := []float32{3, -4, 6.5, 0}
	for i, w := range want {
		if hf.Samples[i] != w {
			t.Errorf("sample %d: expected %g, got %g", i, w, hf.Samples[i])
		}
	}
}

func TestDecode_SizeMismatchRecovered(t *testing.T) {
	// Declared 4x4 but only 3x3 samples present: resolution is inferred
	// from the byte count and loading proceeds.
	data := raw32Bytes(make([]float32, 9))
	spec := manifest.HeightmapSpec{
		Format:      manifest.FormatRaw32,
		Resolution:  4,
		HeightScale: 1,
	}

	hf, err := Decode(data, spec)
	if err != nil {
		t.Fatalf("expected size mismatch to be recovered, got %v", err)
	}
	if hf.Resolution != 3 {
		t.Errorf("expected inferred resolution 3, got %d", hf.Resolution)
	}
	if !hf.InferredResolution {
		t.Error("expected InferredResolution to be set")
	}
}

func TestDecode_NonSquareSampleCount(t *testing.T) {
	data := raw16Bytes(make([]uint16, 7))
	spec := manifest.HeightmapSpec{Format: manifest.FormatRaw16, HeightScale: 1}

	_, err := Decode(data, spec)
	if !errors.Is(err, ErrTruncatedRaster) {
		t.Errorf("expected ErrTruncatedRaster for 7 samples, got %v", err)
	}
}

func TestDecode_UnknownFormat(t *testing.T) {
	_, err := Decode([]byte{0, 0}, manifest.HeightmapSpec{Format: "raw24"})
	if !errors.Is(err, ErrFormatUnsupported) {
		t.Errorf("expected ErrFormatUnsupported, got %v", err)
	}
}

func TestDecode_FlipY(t *testing.T) {
	// 2x2 grid: rows [0,1] and [2,3] should swap under flip_y.
	data := raw32Bytes([]float32{0, 1, 2, 3})
	spec := manifest.HeightmapSpec{
		Format:      manifest.FormatRaw32,
		Resolution:  2,
		HeightScale: 1,
		FlipY:       true,
	}

	hf, err := Decode(data, spec)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	want := []float32{2, 3, 0, 1}
	for i, w := range want {
		if hf.Samples[i] != w {
			t.Errorf("sample %d: expected %g, got %g", i, w, hf.Samples[i])
		}
	}
}

func TestDecode_ImageGray8(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 2, 2))
	img.Pix = []uint8{0, 51, 102, 255}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}

	spec := manifest.HeightmapSpec{
		Format:      manifest.FormatImage,
		Resolution:  2,
		HeightScale: 255, // un-normalize for easy comparison
	}
	hf, err := Decode(buf.Bytes(), spec)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	want := []float32{0, 51, 102, 255}
	for i, w := range want {
		if diff := hf.Samples[i] - w; diff > 1e-3 || diff < -1e-3 {
			t.Errorf("sample %d: expected %g, got %g", i, w, hf.Samples[i])
		}
	}
}

func TestDecode_ImageGray16(t *testing.T) {
	img := image.NewGray16(image.Rect(0, 0, 2, 2))
	img.SetGray16(0, 0, color.Gray16{Y: 65535}) // full scale normalizes to exactly 1
	img.SetGray16(1, 0, color.Gray16{Y: 0})
	img.SetGray16(0, 1, color.Gray16{Y: 13107}) // 0.2
	img.SetGray16(1, 1, color.Gray16{Y: 32767})

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}

	spec := manifest.HeightmapSpec{
		Format:      manifest.FormatImage,
		Resolution:  2,
		HeightScale: 1,
	}
	hf, err := Decode(buf.Bytes(), spec)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if hf.Samples[0] != 1 {
		t.Errorf("expected full-scale sample to be 1, got %g", hf.Samples[0])
	}
	if hf.Samples[1] != 0 {
		t.Errorf("expected zero sample to be 0, got %g", hf.Samples[1])
	}
	if diff := hf.Samples[2] - 0.2; diff > 1e-3 || diff < -1e-3 {
		t.Errorf("expected ~0.2, got %g", hf.Samples[2])
	}
}

func TestDecode_ImageNonSquare(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 3, 2))
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}

	_, err := Decode(buf.Bytes(), manifest.HeightmapSpec{Format: manifest.FormatImage, HeightScale: 1})
	if !errors.Is(err, ErrFormatUnsupported) {
		t.Errorf("expected ErrFormatUnsupported for non-square image, got %v", err)
	}
}

func TestDecode_ImageBelowMinimumSize(t *testing.T) {
	// A 1x1 image is square but cannot seed a sampleable grid; it must be
	// rejected like the raw paths reject sub-2 resolutions.
	img := image.NewGray(image.Rect(0, 0, 1, 1))
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}

	_, err := Decode(buf.Bytes(), manifest.HeightmapSpec{Format: manifest.FormatImage, HeightScale: 1})
	if !errors.Is(err, ErrFormatUnsupported) {
		t.Errorf("expected ErrFormatUnsupported for 1x1 image, got %v", err)
	}
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load("/no/such/file.r32", manifest.HeightmapSpec{Format: manifest.FormatRaw32})
	if !errors.Is(err, ErrFileMissing) {
		t.Errorf("expected ErrFileMissing, got %v", err)
	}
}
