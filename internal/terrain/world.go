package terrain

import (
	stdmath "math"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/icefall/frostline/internal/logger"
	"github.com/icefall/frostline/pkg/manifest"
	"github.com/icefall/frostline/pkg/math"
	"github.com/icefall/frostline/pkg/raster"
)

// ChunksSubdir is the sub-path holding per-chunk raster files.
const ChunksSubdir = "chunks"

// World owns a loaded mountain's terrain: the manifest, the chunk registry,
// and the overlay. It is read-mostly shared state; the only mutating entry
// points are LoadWorld and UpdateEnvironment, both of which run to
// completion on the calling thread before any read is valid.
type World struct {
	Manifest *manifest.Manifest

	chunks    map[ChunkCoord]*Chunk
	origin    math.Vec2 // world XZ of chunk (0,0)
	chunkSize float32
	tuning    Tuning
	env       Environment
	overlay   *raster.Overlay
	colorKeys []overlayKey
}

// overlayKey is one resolved color-map entry.
type overlayKey struct {
	color   manifest.Color
	surface SurfaceType
}

// LoadWorld loads, decodes and fully analyzes a mountain. It runs
// synchronously: manifest parsing, raster decoding and the three-pass chunk
// analysis all complete before it returns. A failed load aborts the whole
// mountain; the caller substitutes a procedural terrain wholesale (see
// GenerateWorld), never individual chunks.
func LoadWorld(dir, mountainID string, t Tuning, env Environment) (*World, error) {
	m, err := manifest.Load(dir, mountainID)
	if err != nil {
		return nil, err
	}

	w := &World{
		Manifest: m,
		chunks:   make(map[ChunkCoord]*Chunk),
		origin:   math.Vec2{X: m.Bounds.MinX, Y: m.Bounds.MinZ},
		tuning:   t,
		env:      env,
	}

	mountainDir := filepath.Join(dir, mountainID)

	if m.Surfaces.HasOverlay {
		overlay, err := raster.LoadOverlay(filepath.Join(mountainDir, m.Surfaces.Filename))
		if err != nil {
			return nil, err
		}
		w.overlay = overlay
		w.colorKeys = resolveColorKeys(m.Surfaces.ColorMap)
	}

	if m.Chunks.Enabled {
		w.chunkSize = m.Chunks.ChunkSize
		for cz := 0; cz < m.Chunks.CountZ; cz++ {
			for cx := 0; cx < m.Chunks.CountX; cx++ {
				path := filepath.Join(mountainDir, ChunksSubdir, m.ChunkFilename(cx, cz))
				hf, err := raster.Load(path, m.Heightmap)
				if err != nil {
					return nil, err
				}
				w.addChunk(ChunkCoord{X: cx, Z: cz}, hf, m.Chunks.ChunkResolution)
			}
		}
	} else {
		// Single chunk covering the whole extent at the raster's resolution.
		hf, err := raster.Load(filepath.Join(mountainDir, m.Heightmap.Filename), m.Heightmap)
		if err != nil {
			return nil, err
		}
		w.chunkSize = m.Bounds.MaxX - m.Bounds.MinX
		w.addChunk(ChunkCoord{}, hf, hf.Resolution)
	}

	for _, c := range w.chunks {
		AnalyzeChunk(c, env, t)
		w.applyOverlay(c)
	}

	logger.Info("mountain terrain loaded",
		zap.String("mountain", m.Name),
		zap.Int("chunks", len(w.chunks)),
	)
	return w, nil
}

// addChunk builds a chunk at a coordinate and fills its heights.
func (w *World) addChunk(coord ChunkCoord, hf *raster.Heightfield, resolution int) {
	if hf.InferredResolution {
		logger.Warn("raster resolution mismatch, inferred from sample count",
			zap.String("chunk", coord.String()),
			zap.Int("declared", w.Manifest.Heightmap.Resolution),
			zap.Int("inferred", hf.Resolution),
		)
	}

	origin := math.Vec2{
		X: w.origin.X + float32(coord.X)*w.chunkSize,
		Y: w.origin.Y + float32(coord.Z)*w.chunkSize,
	}
	c := NewChunk(coord, origin, w.chunkSize, resolution)
	c.SetHeights(hf)
	w.chunks[coord] = c
}

// Chunks returns the chunk registry values.
func (w *World) Chunks() map[ChunkCoord]*Chunk {
	return w.chunks
}

// ChunkAt returns the chunk owning a world position, or nil:
// chunk index = floor((world - origin) / chunk_size).
func (w *World) ChunkAt(wx, wz float32) *Chunk {
	if w.chunkSize <= 0 {
		return nil
	}
	coord := ChunkCoord{
		X: int(stdmath.Floor(float64((wx - w.origin.X) / w.chunkSize))),
		Z: int(stdmath.Floor(float64((wz - w.origin.Y) / w.chunkSize))),
	}
	if c := w.chunks[coord]; c != nil {
		return c
	}

	// A point exactly on a chunk's max edge floors into the neighboring
	// coordinate; when no chunk is loaded there, the lower neighbor that
	// still contains the point owns it.
	neighbors := [3]ChunkCoord{
		{X: coord.X - 1, Z: coord.Z},
		{X: coord.X, Z: coord.Z - 1},
		{X: coord.X - 1, Z: coord.Z - 1},
	}
	for _, nc := range neighbors {
		if c := w.chunks[nc]; c != nil && c.Contains(wx, wz) {
			return c
		}
	}
	return nil
}

// HeightAt returns the interpolated elevation at a world position, or the
// manifest's minimum elevation outside loaded terrain.
func (w *World) HeightAt(wx, wz float32) float32 {
	c := w.ChunkAt(wx, wz)
	if c == nil {
		if w.Manifest != nil {
			return w.Manifest.Bounds.MinElevation
		}
		return 0
	}
	return c.HeightAt(wx, wz)
}

// Tuning returns the tuning the world was analyzed with.
func (w *World) Tuning() Tuning {
	return w.tuning
}

// Environment returns the current environment snapshot.
func (w *World) Environment() Environment {
	return w.env
}

// UpdateEnvironment reclassifies every chunk's surface material for a new
// environment snapshot. Runs synchronously on the calling thread and skips
// geometry: slope, aspect, curvature and cliff fields are immutable after
// initial analysis.
func (w *World) UpdateEnvironment(env Environment) {
	w.env = env
	for _, c := range w.chunks {
		ReclassifyChunk(c, env, w.tuning)
		w.applyOverlay(c)
	}
	logger.Debug("surfaces reclassified", zap.Int("chunks", len(w.chunks)))
}

// applyOverlay force-overrides computed surface types from the color-keyed
// overlay raster. Non-matching colors leave the computed classification
// untouched.
func (w *World) applyOverlay(c *Chunk) {
	if w.overlay == nil || len(w.colorKeys) == 0 {
		return
	}

	b := w.Manifest.Bounds
	spanX := b.MaxX - b.MinX
	spanZ := b.MaxZ - b.MinZ
	if spanX <= 0 || spanZ <= 0 {
		return
	}

	for i := range c.Cells {
		cell := &c.Cells[i]
		pos := cell.Geometry.Position
		u := (pos.X - b.MinX) / spanX
		v := (pos.Z - b.MinZ) / spanZ
		r, g, bl := w.overlay.Sample(u, v)

		if s, ok := matchColorKey(w.colorKeys, r, g, bl); ok {
			cell.Material.Surface = s
			cell.Material.Friction = surfaceFriction(s)
			cell.Material.Firmness = surfaceFirmness(s)
		}
	}
}

// overlayMatchThreshold is the maximum normalized color-space distance for
// an overlay pixel to key a surface override.
const overlayMatchThreshold = 0.1

// resolveColorKeys maps manifest color-map names onto surface types,
// dropping unknown names with a warning.
func resolveColorKeys(colorMap map[string]manifest.Color) []overlayKey {
	keys := make([]overlayKey, 0, len(colorMap))
	for name, col := range colorMap {
		s, ok := SurfaceByName(name)
		if !ok {
			logger.Warn("overlay color map names unknown surface", zap.String("name", name))
			continue
		}
		keys = append(keys, overlayKey{color: col, surface: s})
	}
	return keys
}

// matchColorKey finds the nearest color-map entry within the match threshold.
func matchColorKey(keys []overlayKey, r, g, b float32) (SurfaceType, bool) {
	best := float32(stdmath.MaxFloat32)
	var surface SurfaceType
	found := false
	for _, k := range keys {
		dr := k.color.R - r
		dg := k.color.G - g
		db := k.color.B - b
		d := float32(stdmath.Sqrt(float64(dr*dr + dg*dg + db*db)))
		if d <= overlayMatchThreshold && d < best {
			best = d
			surface = k.surface
			found = true
		}
	}
	return surface, found
}

// Hazards returns the manifest's authored hazard annotations.
func (w *World) Hazards() []manifest.Hazard {
	if w.Manifest == nil {
		return nil
	}
	return w.Manifest.Hazards
}

// Routes returns the manifest's authored routes.
func (w *World) Routes() []manifest.Route {
	if w.Manifest == nil {
		return nil
	}
	return w.Manifest.Routes
}

// NearestHazard returns the authored hazard closest to a world XZ position
// and its distance, or nil when the mountain has none.
func (w *World) NearestHazard(pos math.Vec2) (*manifest.Hazard, float32) {
	hazards := w.Hazards()
	if len(hazards) == 0 {
		return nil, 0
	}

	bestIdx := 0
	best := pos.Distance(hazards[0].Position.XZ())
	for i := 1; i < len(hazards); i++ {
		if d := pos.Distance(hazards[i].Position.XZ()); d < best {
			best = d
			bestIdx = i
		}
	}
	return &hazards[bestIdx], best
}
