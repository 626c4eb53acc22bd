package terrain

import (
	"github.com/icefall/frostline/pkg/math"
)

// SlideOutcome is how a predicted slide terminated.
type SlideOutcome int

// Slide outcomes.
const (
	SlideStopped SlideOutcome = iota // slope dropped below the slide minimum
	SlideCliff                       // reached a cliff cell (terminal/fatal)
	SlideLeftTerrain                 // point left all loaded terrain
	SlideUnresolved                  // step budget exhausted
)

// String returns the outcome name.
func (o SlideOutcome) String() string {
	switch o {
	case SlideStopped:
		return "stopped"
	case SlideCliff:
		return "cliff"
	case SlideLeftTerrain:
		return "left-terrain"
	case SlideUnresolved:
		return "unresolved"
	default:
		return "unknown"
	}
}

// SlidePath is the ordered point sequence of a predicted uncontrolled
// descent. Computed on demand, never persisted.
type SlidePath struct {
	Points  []math.Vec3
	Outcome SlideOutcome
}

// SimulateSlide predicts where an uncontrolled descent from start would
// terminate by repeatedly stepping a fixed distance along the current
// cell's downhill direction, resampling elevation each step. initialDir
// seeds the direction on flat starts; pass the zero vector when unknown.
//
// This is a deterministic heuristic for risk and fatality checks. It does
// not reproduce the real-time physics integrator and must never drive the
// rendering of an actual slide.
func SimulateSlide(w *World, start math.Vec3, initialDir math.Vec2, t Tuning) SlidePath {
	path := SlidePath{Outcome: SlideUnresolved}

	pos := start.XZ()
	dir := initialDir.Normalize()

	for step := 0; step < t.Slide.MaxSteps; step++ {
		chunk := w.ChunkAt(pos.X, pos.Y)
		if chunk == nil || !chunk.Analyzed {
			path.Outcome = SlideLeftTerrain
			return path
		}

		cell := chunk.CellAtWorld(pos.X, pos.Y)
		elev := chunk.HeightAt(pos.X, pos.Y)
		path.Points = append(path.Points, math.Vec3{X: pos.X, Y: elev, Z: pos.Y})

		if cell.Hazard.IsCliff {
			path.Outcome = SlideCliff
			return path
		}
		if cell.Geometry.Slope < t.Zones.SlideableMin {
			path.Outcome = SlideStopped
			return path
		}

		if d := cell.Geometry.Downhill; d.X != 0 || d.Y != 0 {
			dir = d
		}
		if dir.X == 0 && dir.Y == 0 {
			// Flat cell with no momentum: nowhere to go.
			path.Outcome = SlideStopped
			return path
		}
		pos = pos.Add(dir.Scale(t.Slide.StepDistance))
	}
	return path
}
