// Package terrain implements the terrain analysis engine: per-cell slope,
// aspect and curvature estimation, surface classification, hazard fields,
// contour extraction and slide-path prediction over chunked heightfields.
package terrain

import (
	"github.com/icefall/frostline/pkg/math"
)

// TerrainZone is the ordered slope-band classification of a cell.
type TerrainZone int

// Zone bands, least to most extreme.
const (
	ZoneWalkable TerrainZone = iota
	ZoneSlideable
	ZoneSteep
	ZoneDownclimb
	ZoneRappel
	ZoneCliff
)

// String returns the zone name.
func (z TerrainZone) String() string {
	switch z {
	case ZoneWalkable:
		return "walkable"
	case ZoneSlideable:
		return "slideable"
	case ZoneSteep:
		return "steep"
	case ZoneDownclimb:
		return "downclimb"
	case ZoneRappel:
		return "rappel"
	case ZoneCliff:
		return "cliff"
	default:
		return "unknown"
	}
}

// SurfaceType is the material classification of a cell.
type SurfaceType int

// Surface materials.
const (
	SurfaceDryRock SurfaceType = iota
	SurfaceWetRock
	SurfaceScree
	SurfaceIce
	SurfaceMixed // patchy rock and snow on steep faces
	SurfacePowder
	SurfaceSoftSnow
	SurfaceFirmSnow
)

// String returns the surface name. These names are also the keys accepted
// by manifest surface-overlay color maps.
func (s SurfaceType) String() string {
	switch s {
	case SurfaceDryRock:
		return "dry_rock"
	case SurfaceWetRock:
		return "wet_rock"
	case SurfaceScree:
		return "scree"
	case SurfaceIce:
		return "ice"
	case SurfaceMixed:
		return "mixed"
	case SurfacePowder:
		return "powder"
	case SurfaceSoftSnow:
		return "soft_snow"
	case SurfaceFirmSnow:
		return "firm_snow"
	default:
		return "unknown"
	}
}

// SurfaceByName maps overlay color-map keys to surface types.
func SurfaceByName(name string) (SurfaceType, bool) {
	for s := SurfaceDryRock; s <= SurfaceFirmSnow; s++ {
		if s.String() == name {
			return s, true
		}
	}
	return SurfaceDryRock, false
}

// surfaceFriction is the base friction coefficient per material.
func surfaceFriction(s SurfaceType) float32 {
	switch s {
	case SurfaceDryRock:
		return 0.9
	case SurfaceWetRock:
		return 0.55
	case SurfaceScree:
		return 0.7
	case SurfaceIce:
		return 0.08
	case SurfaceMixed:
		return 0.5
	case SurfacePowder:
		return 0.5
	case SurfaceSoftSnow:
		return 0.4
	case SurfaceFirmSnow:
		return 0.3
	default:
		return 0.9
	}
}

// surfaceFirmness is how much load-bearing resistance a material offers.
func surfaceFirmness(s SurfaceType) float32 {
	switch s {
	case SurfaceDryRock, SurfaceWetRock:
		return 1.0
	case SurfaceScree:
		return 0.6
	case SurfaceIce:
		return 0.95
	case SurfaceMixed:
		return 0.8
	case SurfacePowder:
		return 0.15
	case SurfaceSoftSnow:
		return 0.4
	case SurfaceFirmSnow:
		return 0.75
	default:
		return 1.0
	}
}

// CellGeometry is the immutable geometric description of a grid point.
// It is written once by the analysis pipeline and never changed by
// environment reclassification.
type CellGeometry struct {
	Position  math.Vec3 // world position, Y = elevation
	Slope     float32   // degrees, 0-90
	Downhill  math.Vec2 // unit descent direction in XZ, zero if flat
	Aspect    float32   // compass bearing the slope faces, [0,360)
	Normal    math.Vec3 // unit surface normal
	Curvature float32   // signed: positive = convex/ridge, negative = concave/gully
	Drainage  float32   // 0 = ridge, 1 = gully
}

// Elevation returns the cell's elevation.
func (g CellGeometry) Elevation() float32 { return g.Position.Y }

// CellMaterial is the mutable, environment-derived description of a grid
// point. Reclassification rewrites only this value.
type CellMaterial struct {
	Surface      SurfaceType
	Friction     float32
	Firmness     float32
	SnowDepth    float32
	IceProb      float32
	SunExposure  float32
	WindExposure float32
}

// CellHazard holds classification- and field-derived hazard data.
type CellHazard struct {
	Zone          TerrainZone
	IsCliff       bool
	RopeRequired  bool
	CliffDistance float32   // distance to nearest cliff cell in the same chunk
	CliffDir      math.Vec2 // unit direction toward that cliff cell
	IsExitZone    bool
	ExitQuality   float32
	IsSlideable   bool
	SlideRisk     float32
}

// TerrainCell is the per-grid-point record.
type TerrainCell struct {
	Geometry CellGeometry
	Material CellMaterial
	Hazard   CellHazard
}

// MaxCliffDistance is the cliff distance reported when no cliff exists in
// range (and by out-of-bounds query defaults).
const MaxCliffDistance float32 = 1e6

// DefaultCell returns the conservative cell reported for positions outside
// all loaded terrain: flat, walkable, dry rock, maximal cliff distance.
func DefaultCell(pos math.Vec3) TerrainCell {
	return TerrainCell{
		Geometry: CellGeometry{
			Position: pos,
			Normal:   math.Vec3{X: 0, Y: 1, Z: 0},
		},
		Material: CellMaterial{
			Surface:  SurfaceDryRock,
			Friction: surfaceFriction(SurfaceDryRock),
			Firmness: surfaceFirmness(SurfaceDryRock),
		},
		Hazard: CellHazard{
			Zone:          ZoneWalkable,
			CliffDistance: MaxCliffDistance,
		},
	}
}

// classifySlope maps a slope angle to its terrain zone. Bands are tested
// most-extreme first; thresholds are validated strictly increasing so every
// band stays reachable.
func classifySlope(slope float32, z ZoneThresholds) TerrainZone {
	switch {
	case slope >= z.CliffMin:
		return ZoneCliff
	case slope >= z.RappelMin:
		return ZoneRappel
	case slope >= z.DownclimbMin:
		return ZoneDownclimb
	case slope >= z.SteepMin:
		return ZoneSteep
	case slope >= z.SlideableMin:
		return ZoneSlideable
	default:
		return ZoneWalkable
	}
}
