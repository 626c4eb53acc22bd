package terrain

import (
	stdmath "math"

	"go.uber.org/zap"

	"github.com/icefall/frostline/internal/logger"
	"github.com/icefall/frostline/pkg/manifest"
	"github.com/icefall/frostline/pkg/math"
	"github.com/icefall/frostline/pkg/raster"
)

// ProceduralParams shapes the synthetic fallback mountain substituted when a
// real mountain's data fails to load.
type ProceduralParams struct {
	Name       string
	Size       float32 // world units per side
	Resolution int     // grid points per side
	PeakHeight float32
	RidgeFreq  float32 // ridge waves across the extent
	RidgeAmp   float32
}

// DefaultProceduralParams returns a modest single-chunk placeholder peak.
func DefaultProceduralParams() ProceduralParams {
	return ProceduralParams{
		Name:       "placeholder",
		Size:       1024,
		Resolution: 129,
		PeakHeight: 2800,
		RidgeFreq:  6,
		RidgeAmp:   120,
	}
}

// GenerateWorld builds and fully analyzes a deterministic synthetic
// mountain: a central gaussian peak with radial sinusoidal ridges. Used as
// the wholesale substitute when LoadWorld fails; no gameplay-facing error
// is shown for the missing data.
func GenerateWorld(p ProceduralParams, t Tuning, env Environment) *World {
	if p.Resolution < 2 {
		p = DefaultProceduralParams()
	}

	half := p.Size / 2
	m := &manifest.Manifest{
		Name: p.Name,
		Bounds: manifest.Bounds{
			MinX:         -half,
			MaxX:         half,
			MinZ:         -half,
			MaxZ:         half,
			MinElevation: 0,
			MaxElevation: p.PeakHeight + p.RidgeAmp,
		},
	}

	w := &World{
		Manifest:  m,
		chunks:    make(map[ChunkCoord]*Chunk),
		origin:    math.Vec2{X: -half, Y: -half},
		chunkSize: p.Size,
		tuning:    t,
		env:       env,
	}

	c := NewChunk(ChunkCoord{}, w.origin, p.Size, p.Resolution)
	hf := &raster.Heightfield{
		Samples:    make([]float32, p.Resolution*p.Resolution),
		Resolution: p.Resolution,
	}
	for z := 0; z < p.Resolution; z++ {
		for x := 0; x < p.Resolution; x++ {
			hf.Samples[z*p.Resolution+x] = proceduralHeight(c.GridWorld(x, z), p)
		}
	}
	c.SetHeights(hf)

	w.chunks[c.Coord] = c
	AnalyzeChunk(c, env, t)

	logger.Info("procedural terrain substituted",
		zap.String("name", p.Name),
		zap.Int("resolution", p.Resolution),
	)
	return w
}

// proceduralHeight evaluates the synthetic heightfield at a world position.
func proceduralHeight(pos math.Vec2, p ProceduralParams) float32 {
	half := float64(p.Size / 2)
	r := stdmath.Hypot(float64(pos.X), float64(pos.Y)) / half

	peak := float64(p.PeakHeight) * stdmath.Exp(-r*r*3)

	theta := stdmath.Atan2(float64(pos.Y), float64(pos.X))
	ridges := float64(p.RidgeAmp) * stdmath.Sin(theta*float64(p.RidgeFreq)) * r * stdmath.Exp(-r*r)

	h := peak + ridges
	if h < 0 {
		h = 0
	}
	return float32(h)
}
