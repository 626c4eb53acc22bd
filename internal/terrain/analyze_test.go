package terrain

import (
	stdmath "math"
	"testing"

	"github.com/icefall/frostline/pkg/math"
	"github.com/icefall/frostline/pkg/raster"
)

// buildChunk creates an analyzed-ready chunk from a height function over
// grid coordinates.
func buildChunk(res int, size float32, heightAt func(x, z int) float32) *Chunk {
	c := NewChunk(ChunkCoord{}, math.Vec2{}, size, res)
	hf := &raster.Heightfield{
		Samples:    make([]float32, res*res),
		Resolution: res,
	}
	for z := 0; z < res; z++ {
		for x := 0; x < res; x++ {
			hf.Samples[z*res+x] = heightAt(x, z)
		}
	}
	c.SetHeights(hf)
	return c
}

// testWorld wraps a single chunk in a world handle.
func testWorld(c *Chunk, t Tuning) *World {
	return &World{
		chunks:    map[ChunkCoord]*Chunk{c.Coord: c},
		origin:    c.Origin,
		chunkSize: c.Size,
		tuning:    t,
		env:       DefaultEnvironment(),
	}
}

func TestAnalyze_FlatChunkIsWalkable(t *testing.T) {
	tu := DefaultTuning()
	c := buildChunk(32, 31, func(x, z int) float32 { return 1500 })
	AnalyzeChunk(c, DefaultEnvironment(), tu)

	if !c.Analyzed {
		t.Fatal("chunk not marked analyzed")
	}

	for i := range c.Cells {
		cell := &c.Cells[i]
		if cell.Hazard.Zone != ZoneWalkable {
			t.Fatalf("cell %d: expected walkable, got %s", i, cell.Hazard.Zone)
		}
		if cell.Geometry.Slope > 0.01 {
			t.Fatalf("cell %d: expected slope ~0, got %g", i, cell.Geometry.Slope)
		}
		if cell.Hazard.IsCliff {
			t.Fatalf("cell %d: flat terrain classified as cliff", i)
		}
		if cell.Hazard.CliffDistance != MaxCliffDistance {
			t.Fatalf("cell %d: expected max cliff distance, got %g", i, cell.Hazard.CliffDistance)
		}
		if d := cell.Geometry.Downhill; d.X != 0 || d.Y != 0 {
			t.Fatalf("cell %d: expected zero downhill on flat ground, got %+v", i, d)
		}
	}
}

func TestAnalyze_StepChunkCliffEdge(t *testing.T) {
	tu := DefaultTuning()
	const res = 32
	const edge = 16 // columns >= edge sit 500 units higher
	c := buildChunk(res, res-1, func(x, z int) float32 {
		if x >= edge {
			return 500
		}
		return 0
	})
	AnalyzeChunk(c, DefaultEnvironment(), tu)

	// The two columns flanking the step see the full 500-unit rise within
	// one cell and must classify cliff; everything else is flat.
	for z := 0; z < res; z++ {
		for x := 0; x < res; x++ {
			cell := c.Cell(x, z)
			wantCliff := x == edge-1 || x == edge
			if cell.Hazard.IsCliff != wantCliff {
				t.Fatalf("cell (%d,%d): expected cliff=%v, slope %g", x, z, wantCliff, cell.Geometry.Slope)
			}
		}
	}

	// Cliff distance grows monotonically with Euclidean distance from the
	// step along each row.
	for z := 1; z < res-1; z++ {
		prev := float32(-1)
		for x := edge - 2; x >= 0; x-- {
			d := c.Cell(x, z).Hazard.CliffDistance
			if d <= prev {
				t.Fatalf("row %d: cliff distance not increasing away from edge at x=%d (%g <= %g)", z, x, d, prev)
			}
			prev = d
		}
	}
}

func TestClassifySlope_BandsExhaustiveAndOrdered(t *testing.T) {
	tu := DefaultTuning()

	// Every band must be reachable at its midpoint.
	z := tu.Zones
	cases := []struct {
		slope float32
		want  TerrainZone
	}{
		{z.SlideableMin / 2, ZoneWalkable},
		{(z.SlideableMin + z.SteepMin) / 2, ZoneSlideable},
		{(z.SteepMin + z.DownclimbMin) / 2, ZoneSteep},
		{(z.DownclimbMin + z.RappelMin) / 2, ZoneDownclimb},
		{(z.RappelMin + z.CliffMin) / 2, ZoneRappel},
		{(z.CliffMin + 90) / 2, ZoneCliff},
	}
	for _, tc := range cases {
		if got := classifySlope(tc.slope, z); got != tc.want {
			t.Errorf("slope %g: expected %s, got %s", tc.slope, tc.want, got)
		}
	}

	// Sweeping [0,90) the classification must be monotonically
	// non-decreasing and hit every band exactly once.
	seen := make(map[TerrainZone]bool)
	last := ZoneWalkable
	for s := float32(0); s < 90; s += 0.05 {
		zone := classifySlope(s, z)
		if zone < last {
			t.Fatalf("zone went backwards at slope %g: %s after %s", s, zone, last)
		}
		seen[zone] = true
		last = zone
	}
	for zone := ZoneWalkable; zone <= ZoneCliff; zone++ {
		if !seen[zone] {
			t.Errorf("band %s unreachable", zone)
		}
	}
}

func TestTuningValidate_RejectsMisorderedThresholds(t *testing.T) {
	tu := DefaultTuning()
	tu.Zones.SteepMin = tu.Zones.SlideableMin // duplicated threshold
	if err := tu.Validate(); err == nil {
		t.Error("expected duplicated threshold to fail validation")
	}

	tu = DefaultTuning()
	tu.Zones.RappelMin = tu.Zones.CliffMin + 5 // misordered
	if err := tu.Validate(); err == nil {
		t.Error("expected misordered threshold to fail validation")
	}

	if err := DefaultTuning().Validate(); err != nil {
		t.Errorf("default tuning must validate: %v", err)
	}
}

func TestCliffField_SingleCliffCell(t *testing.T) {
	tu := DefaultTuning()
	const res = 16
	c := buildChunk(res, res-1, func(x, z int) float32 { return 0 })

	// Force exactly one cliff cell and rerun the distance pass.
	target := c.Index(5, 9)
	c.Cells[target].Hazard.IsCliff = true
	c.cliffCells = []int{target}
	passCliffField(c, DefaultEnvironment(), tu)

	cliffPos := c.Cells[target].Geometry.Position.XZ()
	for z := 0; z < res; z++ {
		for x := 0; x < res; x++ {
			i := c.Index(x, z)
			if i == target {
				if c.Cells[i].Hazard.CliffDistance != 0 {
					t.Fatal("cliff cell must have zero distance")
				}
				continue
			}

			pos := c.Cells[i].Geometry.Position.XZ()
			want := pos.Distance(cliffPos)
			got := c.Cells[i].Hazard.CliffDistance
			if diff := got - want; diff > 1e-3 || diff < -1e-3 {
				t.Fatalf("cell (%d,%d): expected distance %g, got %g", x, z, want, got)
			}

			toCliff := cliffPos.Sub(pos).Normalize()
			dir := c.Cells[i].Hazard.CliffDir
			if dot := dir.Dot(toCliff); dot < 0.999 {
				t.Fatalf("cell (%d,%d): cliff direction %+v does not point at cliff (dot %g)", x, z, dir, dot)
			}
		}
	}
}

func TestExitQuality_MonotonicInSlope(t *testing.T) {
	tu := DefaultTuning()

	prev := float32(2) // above any possible quality
	for slope := float32(1); slope < tu.Zones.SlideableMin; slope += 1 {
		cell := TerrainCell{}
		cell.Geometry.Slope = slope
		cell.Geometry.Curvature = -0.1
		cell.Hazard.CliffDistance = 30 // fixed, below falloff
		deriveHazardScalars(&cell, tu)

		if !cell.Hazard.IsExitZone {
			t.Fatalf("slope %g below slide-min should be an exit zone", slope)
		}
		if cell.Hazard.ExitQuality >= prev {
			t.Fatalf("quality not strictly decreasing with slope: %g at slope %g (prev %g)",
				cell.Hazard.ExitQuality, slope, prev)
		}
		prev = cell.Hazard.ExitQuality
	}
}

func TestSlideRisk_OnlyOnSlideableCells(t *testing.T) {
	tu := DefaultTuning()

	cell := TerrainCell{}
	cell.Geometry.Slope = 30
	cell.Hazard.IsSlideable = true
	cell.Hazard.CliffDistance = 10
	cell.Material.IceProb = 0.5
	deriveHazardScalars(&cell, tu)
	if cell.Hazard.SlideRisk <= 0 || cell.Hazard.SlideRisk > 1 {
		t.Errorf("expected slide risk in (0,1], got %g", cell.Hazard.SlideRisk)
	}

	cell.Hazard.IsSlideable = false
	deriveHazardScalars(&cell, tu)
	if cell.Hazard.SlideRisk != 0 {
		t.Errorf("expected zero slide risk off slideable terrain, got %g", cell.Hazard.SlideRisk)
	}
}

func TestReclassify_PreservesGeometry(t *testing.T) {
	tu := DefaultTuning()
	c := buildChunk(24, 230, func(x, z int) float32 {
		return 2300 + 40*float32(stdmath.Sin(float64(x)*0.7)+stdmath.Cos(float64(z)*0.5))
	})
	AnalyzeChunk(c, DefaultEnvironment(), tu)

	before := make([]CellGeometry, len(c.Cells))
	for i := range c.Cells {
		before[i] = c.Cells[i].Geometry
	}

	warm := DefaultEnvironment()
	warm.BaseTemperature = 12
	warm.Precipitating = true
	warm.LastPrecip = PrecipRain
	warm.HoursSincePrecip = 0
	ReclassifyChunk(c, warm, tu)

	for i := range c.Cells {
		if c.Cells[i].Geometry != before[i] {
			t.Fatalf("cell %d: geometry changed by reclassification", i)
		}
	}
}
