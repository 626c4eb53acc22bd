package terrain

import (
	"github.com/icefall/frostline/pkg/math"
)

// Query is the unified, total read API over a loaded world. Every lookup is
// a pure function of a world position; positions outside all loaded (or
// not-yet-analyzed) chunks return a conservative default rather than an
// error, so callers never branch on terrain-query failure.
//
// A one-entry cell cache keyed by position proximity amortizes repeated
// same-tick lookups from multiple subsystems. Query is therefore not safe
// for concurrent use; give each reader thread its own Query over the shared
// World.
type Query struct {
	world *World

	cacheValid bool
	cachePos   math.Vec2
	cacheCell  TerrainCell
}

// NewQuery creates a query facade over a world.
func NewQuery(w *World) *Query {
	return &Query{world: w}
}

// CellAt returns the terrain cell owning a world XZ position, or the
// conservative default cell outside loaded terrain.
func (q *Query) CellAt(wx, wz float32) TerrainCell {
	pos := math.Vec2{X: wx, Y: wz}
	if q.cacheValid && pos.Distance(q.cachePos) <= q.world.tuning.Query.CacheRadius {
		return q.cacheCell
	}

	cell := q.lookup(wx, wz)
	q.cachePos = pos
	q.cacheCell = cell
	q.cacheValid = true
	return cell
}

// lookup resolves a position to a cell without touching the cache.
func (q *Query) lookup(wx, wz float32) TerrainCell {
	c := q.world.ChunkAt(wx, wz)
	if c == nil || !c.Analyzed {
		return DefaultCell(math.Vec3{X: wx, Y: q.world.HeightAt(wx, wz), Z: wz})
	}
	return *c.CellAtWorld(wx, wz)
}

// ElevationAt returns the bilinearly interpolated elevation.
func (q *Query) ElevationAt(wx, wz float32) float32 {
	return q.world.HeightAt(wx, wz)
}

// SlopeAt returns the slope angle in degrees.
func (q *Query) SlopeAt(wx, wz float32) float32 {
	return q.CellAt(wx, wz).Geometry.Slope
}

// AspectAt returns the compass bearing the slope faces.
func (q *Query) AspectAt(wx, wz float32) float32 {
	return q.CellAt(wx, wz).Geometry.Aspect
}

// NormalAt returns the unit surface normal.
func (q *Query) NormalAt(wx, wz float32) math.Vec3 {
	return q.CellAt(wx, wz).Geometry.Normal
}

// DownhillAt returns the unit descent direction, zero on flat ground.
func (q *Query) DownhillAt(wx, wz float32) math.Vec2 {
	return q.CellAt(wx, wz).Geometry.Downhill
}

// ZoneAt returns the terrain-zone band.
func (q *Query) ZoneAt(wx, wz float32) TerrainZone {
	return q.CellAt(wx, wz).Hazard.Zone
}

// SurfaceAt returns the surface material.
func (q *Query) SurfaceAt(wx, wz float32) SurfaceType {
	return q.CellAt(wx, wz).Material.Surface
}

// FrictionAt returns the surface friction coefficient.
func (q *Query) FrictionAt(wx, wz float32) float32 {
	return q.CellAt(wx, wz).Material.Friction
}

// CliffDistanceAt returns the distance to the nearest cliff cell in the
// owning chunk, MaxCliffDistance when none exists.
func (q *Query) CliffDistanceAt(wx, wz float32) float32 {
	return q.CellAt(wx, wz).Hazard.CliffDistance
}

// IsCliffAt reports whether the position is classified cliff.
func (q *Query) IsCliffAt(wx, wz float32) bool {
	return q.CellAt(wx, wz).Hazard.IsCliff
}

// ExitZoneAt reports whether the position is a safe stop zone and its
// quality score.
func (q *Query) ExitZoneAt(wx, wz float32) (bool, float32) {
	cell := q.CellAt(wx, wz)
	return cell.Hazard.IsExitZone, cell.Hazard.ExitQuality
}

// SlideRiskAt returns the slide-risk scalar, zero off slideable terrain.
func (q *Query) SlideRiskAt(wx, wz float32) float32 {
	return q.CellAt(wx, wz).Hazard.SlideRisk
}

// Invalidate drops the position cache. Call after UpdateEnvironment so the
// next lookup observes the reclassified material.
func (q *Query) Invalidate() {
	q.cacheValid = false
}
