// Package manifest parses per-mountain terrain descriptors.
package manifest

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/icefall/frostline/pkg/math"
)

// Manifest format errors.
var (
	ErrManifestMissing = errors.New("mountain manifest missing")
	ErrManifestParse   = errors.New("mountain manifest parse error")
)

// Heightmap encodings.
const (
	FormatImage = "image-raster" // single-channel 8/16-bit raster image
	FormatRaw16 = "raw16"        // raw 16-bit unsigned little-endian
	FormatRaw32 = "raw32"        // raw 32-bit float little-endian
)

// Bounds is the world extent of a mountain.
type Bounds struct {
	MinX         float32 `yaml:"min_x"`
	MaxX         float32 `yaml:"max_x"`
	MinZ         float32 `yaml:"min_z"`
	MaxZ         float32 `yaml:"max_z"`
	MinElevation float32 `yaml:"min_elevation"`
	MaxElevation float32 `yaml:"max_elevation"`
}

// HeightmapSpec describes the elevation raster encoding.
type HeightmapSpec struct {
	Format       string  `yaml:"format"`
	Resolution   int     `yaml:"resolution"`
	HeightScale  float32 `yaml:"height_scale"`
	HeightOffset float32 `yaml:"height_offset"`
	FlipY        bool    `yaml:"flip_y"`
	Filename     string  `yaml:"filename"`
}

// ChunkLayout describes how the mountain is split into chunks.
type ChunkLayout struct {
	Enabled         bool    `yaml:"enabled"`
	CountX          int     `yaml:"count_x"`
	CountZ          int     `yaml:"count_z"`
	ChunkSize       float32 `yaml:"chunk_size"`
	ChunkResolution int     `yaml:"chunk_resolution"`
	Pattern         string  `yaml:"pattern"` // e.g. "chunk_{x}_{z}.r16"
}

// Color is a normalized RGB triple.
type Color struct {
	R float32 `yaml:"r"`
	G float32 `yaml:"g"`
	B float32 `yaml:"b"`
}

// SurfaceOverlay describes an optional color-keyed surface override raster.
type SurfaceOverlay struct {
	HasOverlay bool             `yaml:"has_overlay"`
	Filename   string           `yaml:"filename"`
	ColorMap   map[string]Color `yaml:"color_map"` // surface name -> key color
}

// Hazard is an authored hazard annotation.
type Hazard struct {
	Type     string    `yaml:"type"`
	Position math.Vec3 `yaml:"position"`
	Radius   float32   `yaml:"radius"`
	Severity float32   `yaml:"severity"`
}

// Route is an authored descent/ascent route.
type Route struct {
	Name       string      `yaml:"name"`
	Difficulty string      `yaml:"difficulty"`
	Waypoints  []math.Vec3 `yaml:"waypoints"`
}

// Manifest is the immutable per-mountain descriptor. Loaded once per
// mountain selection; read-only thereafter.
type Manifest struct {
	Name      string         `yaml:"name"`
	Bounds    Bounds         `yaml:"bounds"`
	Heightmap HeightmapSpec  `yaml:"heightmap"`
	Chunks    ChunkLayout    `yaml:"chunks"`
	Surfaces  SurfaceOverlay `yaml:"surfaces"`
	Hazards   []Hazard       `yaml:"hazards"`
	Routes    []Route        `yaml:"routes"`
}

// ChunkFilename substitutes chunk coordinates into the naming pattern.
// Chunked rasters live under the "chunks" sub-path of the mountain directory.
func (m *Manifest) ChunkFilename(cx, cz int) string {
	name := strings.ReplaceAll(m.Chunks.Pattern, "{x}", strconv.Itoa(cx))
	name = strings.ReplaceAll(name, "{z}", strconv.Itoa(cz))
	return name
}

// validate checks the manifest for internally inconsistent values.
func (m *Manifest) validate() error {
	if m.Bounds.MaxX <= m.Bounds.MinX || m.Bounds.MaxZ <= m.Bounds.MinZ {
		return fmt.Errorf("%w: degenerate bounds %+v", ErrManifestParse, m.Bounds)
	}
	switch m.Heightmap.Format {
	case FormatImage, FormatRaw16, FormatRaw32:
	default:
		return fmt.Errorf("%w: unknown heightmap format %q", ErrManifestParse, m.Heightmap.Format)
	}
	if m.Chunks.Enabled {
		if m.Chunks.CountX <= 0 || m.Chunks.CountZ <= 0 {
			return fmt.Errorf("%w: chunking enabled with counts %dx%d", ErrManifestParse, m.Chunks.CountX, m.Chunks.CountZ)
		}
		if m.Chunks.ChunkSize <= 0 || m.Chunks.ChunkResolution < 2 {
			return fmt.Errorf("%w: invalid chunk geometry (size %g, resolution %d)", ErrManifestParse, m.Chunks.ChunkSize, m.Chunks.ChunkResolution)
		}
		if m.Chunks.Pattern == "" {
			return fmt.Errorf("%w: chunking enabled without a filename pattern", ErrManifestParse)
		}
	} else if m.Heightmap.Filename == "" {
		return fmt.Errorf("%w: no heightmap filename", ErrManifestParse)
	}
	return nil
}
