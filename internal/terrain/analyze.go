package terrain

import (
	stdmath "math"

	"go.uber.org/zap"

	"github.com/icefall/frostline/internal/logger"
	"github.com/icefall/frostline/pkg/math"
)

// The analysis pipeline is an explicit ordered sequence of passes over a
// chunk's flat cell arena. Later passes consume the complete output of
// earlier ones:
//
//  1. geometry: slope/aspect/curvature per cell, zone classification, and
//     collection of the cliff/exit-candidate/rope index lists;
//  2. cliff field: per-cell nearest-cliff distance and direction, which
//     requires the complete cliff set from pass 1;
//  3. derive: surface material plus exit-zone and slide-risk scalars, which
//     require both slope and cliff distance.
//
// The pass order is fixed here, never left to call sites.
type analysisPass struct {
	name string
	run  func(c *Chunk, env Environment, t Tuning)
}

func analysisPipeline() []analysisPass {
	return []analysisPass{
		{"geometry", passGeometry},
		{"cliff-field", passCliffField},
		{"derive", passDerive},
	}
}

// AnalyzeChunk runs the full analysis pipeline over one chunk and marks it
// ready for queries.
func AnalyzeChunk(c *Chunk, env Environment, t Tuning) {
	for _, pass := range analysisPipeline() {
		pass.run(c, env, t)
	}
	c.Analyzed = true
	logger.Debug("chunk analyzed",
		zap.String("chunk", c.Coord.String()),
		zap.Int("cliff_cells", len(c.cliffCells)),
		zap.Int("exit_candidates", len(c.exitCandidates)),
	)
}

// passGeometry computes discrete gradient, slope, aspect, curvature and
// drainage for every cell from a clamped 3x3 neighborhood, classifies the
// terrain zone, and collects the hazard index lists.
func passGeometry(c *Chunk, _ Environment, t Tuning) {
	c.cliffCells = c.cliffCells[:0]
	c.exitCandidates = c.exitCandidates[:0]
	c.ropeCells = c.ropeCells[:0]

	res := c.Resolution
	for z := 0; z < res; z++ {
		for x := 0; x < res; x++ {
			i := c.Index(x, z)
			cell := &c.Cells[i]

			dx, dz := c.gradientAt(x, z)
			cell.Geometry.Slope = slopeDegrees(dx, dz)
			cell.Geometry.Downhill = downhillDir(dx, dz)
			cell.Geometry.Aspect = aspectDegrees(cell.Geometry.Downhill)
			cell.Geometry.Normal = math.Vec3{X: -dx, Y: 1, Z: -dz}.Normalize()

			curv := -c.laplacianAt(x, z)
			cell.Geometry.Curvature = curv
			cell.Geometry.Drainage = math.Clamp(-curv*t.Surface.DrainageGain, 0, 1)

			zone := classifySlope(cell.Geometry.Slope, t.Zones)
			cell.Hazard.Zone = zone
			cell.Hazard.IsCliff = zone == ZoneCliff
			cell.Hazard.RopeRequired = zone >= ZoneRappel
			cell.Hazard.IsSlideable = zone == ZoneSlideable

			switch {
			case cell.Hazard.IsCliff:
				c.cliffCells = append(c.cliffCells, i)
			case zone == ZoneWalkable && curv <= 0:
				c.exitCandidates = append(c.exitCandidates, i)
			}
			if cell.Hazard.RopeRequired {
				c.ropeCells = append(c.ropeCells, i)
			}
		}
	}
}

// gradientAt estimates the ascent gradient (dh/dx, dh/dz) at a grid point.
// Interior cells use a Sobel kernel over the 3x3 neighborhood; edge cells,
// which lack diagonal neighbors, fall back to central differences over
// clamped indices.
func (c *Chunk) gradientAt(x, z int) (float32, float32) {
	res := c.Resolution
	if x == 0 || z == 0 || x == res-1 || z == res-1 {
		spanX := float32(min(x+1, res-1) - max(x-1, 0))
		spanZ := float32(min(z+1, res-1) - max(z-1, 0))
		dx := (c.HeightAtGrid(x+1, z) - c.HeightAtGrid(x-1, z)) / (spanX * c.CellSize)
		dz := (c.HeightAtGrid(x, z+1) - c.HeightAtGrid(x, z-1)) / (spanZ * c.CellSize)
		return dx, dz
	}

	dx := (c.HeightAtGrid(x+1, z-1) + 2*c.HeightAtGrid(x+1, z) + c.HeightAtGrid(x+1, z+1) -
		c.HeightAtGrid(x-1, z-1) - 2*c.HeightAtGrid(x-1, z) - c.HeightAtGrid(x-1, z+1)) /
		(8 * c.CellSize)
	dz := (c.HeightAtGrid(x-1, z+1) + 2*c.HeightAtGrid(x, z+1) + c.HeightAtGrid(x+1, z+1) -
		c.HeightAtGrid(x-1, z-1) - 2*c.HeightAtGrid(x, z-1) - c.HeightAtGrid(x+1, z-1)) /
		(8 * c.CellSize)
	return dx, dz
}

// laplacianAt is the discrete Laplacian (negative over ridges, positive in
// gullies) at a grid point with clamped neighbors.
func (c *Chunk) laplacianAt(x, z int) float32 {
	h := c.HeightAtGrid(x, z)
	sum := c.HeightAtGrid(x-1, z) + c.HeightAtGrid(x+1, z) +
		c.HeightAtGrid(x, z-1) + c.HeightAtGrid(x, z+1)
	return (sum - 4*h) / (c.CellSize * c.CellSize)
}

// slopeDegrees converts an ascent gradient to a slope angle in [0,90).
func slopeDegrees(dx, dz float32) float32 {
	g := float32(stdmath.Hypot(float64(dx), float64(dz)))
	return math.Degrees(float32(stdmath.Atan(float64(g))))
}

// downhillDir returns the unit descent direction, zero if flat.
func downhillDir(dx, dz float32) math.Vec2 {
	return math.Vec2{X: -dx, Y: -dz}.Normalize()
}

// aspectDegrees converts a downhill direction to the compass bearing the
// slope faces, normalized to [0,360). North is -Z.
func aspectDegrees(downhill math.Vec2) float32 {
	if downhill.X == 0 && downhill.Y == 0 {
		return 0
	}
	deg := math.Degrees(math.Atan2(downhill.X, -downhill.Y))
	if deg < 0 {
		deg += 360
	}
	return deg
}

// passCliffField computes, for every cell, the minimum Euclidean distance to
// any cliff cell within the same chunk plus the direction toward the nearest.
//
// This is chunk-local by design of the shipped data: a cell near a chunk
// boundary is blind to cliffs in the neighboring chunk. Seam behavior is an
// open question upstream; do not "fix" it here without deciding it globally.
func passCliffField(c *Chunk, _ Environment, _ Tuning) {
	if len(c.cliffCells) == 0 {
		for i := range c.Cells {
			c.Cells[i].Hazard.CliffDistance = MaxCliffDistance
			c.Cells[i].Hazard.CliffDir = math.Vec2{}
		}
		return
	}

	for i := range c.Cells {
		cell := &c.Cells[i]
		if cell.Hazard.IsCliff {
			cell.Hazard.CliffDistance = 0
			cell.Hazard.CliffDir = math.Vec2{}
			continue
		}

		pos := cell.Geometry.Position.XZ()
		best := float32(stdmath.MaxFloat32)
		var bestDir math.Vec2
		for _, ci := range c.cliffCells {
			cliffPos := c.Cells[ci].Geometry.Position.XZ()
			d := pos.Distance(cliffPos)
			if d < best {
				best = d
				bestDir = cliffPos.Sub(pos)
			}
		}
		cell.Hazard.CliffDistance = best
		cell.Hazard.CliffDir = bestDir.Normalize()
	}
}

// passDerive assigns surface material from geometry and environment, then
// the material- and field-dependent hazard scalars.
func passDerive(c *Chunk, env Environment, t Tuning) {
	for i := range c.Cells {
		cell := &c.Cells[i]
		cell.Material = classifySurface(cell.Geometry, env, t.Surface)
		deriveHazardScalars(cell, t)
	}

	// Exit flags settle only after cliff distances exist; refresh the final
	// exit list from the candidates.
	exits := c.exitCandidates[:0]
	for _, i := range c.exitCandidates {
		if c.Cells[i].Hazard.IsExitZone {
			exits = append(exits, i)
		}
	}
	c.exitCandidates = exits
}

// deriveHazardScalars computes exit-zone quality and slide risk for one
// cell. Requires slope (pass 1), cliff distance (pass 2) and ice
// probability (material).
func deriveHazardScalars(cell *TerrainCell, t Tuning) {
	slope := cell.Geometry.Slope
	cliffDist := cell.Hazard.CliffDistance
	slideMin := t.Zones.SlideableMin

	exitOK := slope < slideMin &&
		cell.Geometry.Curvature <= 0 &&
		!cell.Hazard.IsCliff &&
		cliffDist > t.Hazard.ExitMinCliffDist
	cell.Hazard.IsExitZone = exitOK
	if exitOK {
		cell.Hazard.ExitQuality = (1 - slope/slideMin) *
			math.Clamp(cliffDist/t.Hazard.CliffFalloff, 0, 1)
	} else {
		cell.Hazard.ExitQuality = 0
	}

	if cell.Hazard.IsSlideable {
		risk := (slope - slideMin) / 15 * 0.3
		if cliffDist < t.Hazard.CliffFalloff {
			risk += (1 - cliffDist/t.Hazard.CliffFalloff) * 0.5
		}
		risk += cell.Material.IceProb * 0.2
		cell.Hazard.SlideRisk = math.Clamp(risk, 0, 1)
	} else {
		cell.Hazard.SlideRisk = 0
	}
}

// ReclassifyChunk recomputes surface material (and the material-derived part
// of slide risk) for a new environment snapshot. Geometry, zones, and cliff
// fields are untouched.
func ReclassifyChunk(c *Chunk, env Environment, t Tuning) {
	for i := range c.Cells {
		cell := &c.Cells[i]
		cell.Material = classifySurface(cell.Geometry, env, t.Surface)
		deriveHazardScalars(cell, t)
	}
}
