package terrain

import (
	"fmt"

	"github.com/icefall/frostline/pkg/math"
	"github.com/icefall/frostline/pkg/raster"
)

// ChunkCoord identifies a chunk by integer grid coordinates.
type ChunkCoord struct {
	X, Z int
}

// String returns "x,z".
func (c ChunkCoord) String() string {
	return fmt.Sprintf("%d,%d", c.X, c.Z)
}

// AABB is an axis-aligned world bounding box.
type AABB struct {
	Min math.Vec3
	Max math.Vec3
}

// Chunk owns a resolution x resolution grid of cells plus a parallel flat
// elevation array. Cells are indexed z*Resolution+x. No query on a chunk is
// valid before Analyzed is set.
type Chunk struct {
	Coord      ChunkCoord
	Origin     math.Vec2 // world XZ of grid point (0,0)
	Size       float32   // world units per side
	Resolution int       // grid points per side
	CellSize   float32   // world units between grid points
	Heights    []float32
	Cells      []TerrainCell
	Bounds     AABB
	Analyzed   bool

	// Index lists collected by the geometry pass, consumed by the
	// hazard-field passes.
	cliffCells     []int
	exitCandidates []int
	ropeCells      []int
}

// NewChunk allocates an empty chunk. resolution must be at least 2.
func NewChunk(coord ChunkCoord, origin math.Vec2, size float32, resolution int) *Chunk {
	n := resolution * resolution
	return &Chunk{
		Coord:      coord,
		Origin:     origin,
		Size:       size,
		Resolution: resolution,
		CellSize:   size / float32(resolution-1),
		Heights:    make([]float32, n),
		Cells:      make([]TerrainCell, n),
		Bounds: AABB{
			Min: math.Vec3{X: origin.X, Z: origin.Y},
			Max: math.Vec3{X: origin.X + size, Z: origin.Y + size},
		},
	}
}

// Index returns the flat cell index for grid coordinates (x, z).
func (c *Chunk) Index(x, z int) int {
	return z*c.Resolution + x
}

// Cell returns the cell at grid coordinates (x, z), or nil if out of range.
func (c *Chunk) Cell(x, z int) *TerrainCell {
	if x < 0 || z < 0 || x >= c.Resolution || z >= c.Resolution {
		return nil
	}
	return &c.Cells[c.Index(x, z)]
}

// HeightAtGrid returns the stored elevation at grid coordinates, clamping
// indices to the valid range.
func (c *Chunk) HeightAtGrid(x, z int) float32 {
	if x < 0 {
		x = 0
	}
	if z < 0 {
		z = 0
	}
	if x >= c.Resolution {
		x = c.Resolution - 1
	}
	if z >= c.Resolution {
		z = c.Resolution - 1
	}
	return c.Heights[c.Index(x, z)]
}

// Contains reports whether a world XZ position falls inside the chunk.
func (c *Chunk) Contains(wx, wz float32) bool {
	return wx >= c.Bounds.Min.X && wx <= c.Bounds.Max.X &&
		wz >= c.Bounds.Min.Z && wz <= c.Bounds.Max.Z
}

// GridAt maps a world position to clamped grid coordinates:
// floor((world-origin)/cell_size), clamped to the valid range.
func (c *Chunk) GridAt(wx, wz float32) (int, int) {
	gx := int((wx - c.Origin.X) / c.CellSize)
	gz := int((wz - c.Origin.Y) / c.CellSize)
	if gx < 0 {
		gx = 0
	}
	if gz < 0 {
		gz = 0
	}
	if gx >= c.Resolution {
		gx = c.Resolution - 1
	}
	if gz >= c.Resolution {
		gz = c.Resolution - 1
	}
	return gx, gz
}

// CellAtWorld returns the cell owning a world position, clamped to the grid.
func (c *Chunk) CellAtWorld(wx, wz float32) *TerrainCell {
	gx, gz := c.GridAt(wx, wz)
	return &c.Cells[c.Index(gx, gz)]
}

// HeightAt returns the bilinearly interpolated elevation at an arbitrary
// in-chunk world position. Sampling at an exact grid coordinate returns the
// stored height.
func (c *Chunk) HeightAt(wx, wz float32) float32 {
	fx := (wx - c.Origin.X) / c.CellSize
	fz := (wz - c.Origin.Y) / c.CellSize

	gx := int(fx)
	gz := int(fz)
	if gx < 0 {
		gx = 0
	}
	if gz < 0 {
		gz = 0
	}
	if gx >= c.Resolution-1 {
		gx = c.Resolution - 2
	}
	if gz >= c.Resolution-1 {
		gz = c.Resolution - 2
	}

	tx := math.Clamp(fx-float32(gx), 0, 1)
	tz := math.Clamp(fz-float32(gz), 0, 1)

	h00 := c.Heights[c.Index(gx, gz)]
	h10 := c.Heights[c.Index(gx+1, gz)]
	h01 := c.Heights[c.Index(gx, gz+1)]
	h11 := c.Heights[c.Index(gx+1, gz+1)]

	south := math.Lerp(h00, h10, tx)
	north := math.Lerp(h01, h11, tx)
	return math.Lerp(south, north, tz)
}

// GridWorld returns the world XZ position of a grid point.
func (c *Chunk) GridWorld(x, z int) math.Vec2 {
	return math.Vec2{
		X: c.Origin.X + float32(x)*c.CellSize,
		Y: c.Origin.Y + float32(z)*c.CellSize,
	}
}

// SetHeights fills the chunk's elevation array from a decoded raster,
// bilinearly resampling when the raster's native resolution differs from
// the chunk resolution. Cell positions and elevation bounds are set here;
// everything else waits for the analysis pipeline.
func (c *Chunk) SetHeights(hf *raster.Heightfield) {
	res := c.Resolution
	if hf.Resolution == res {
		copy(c.Heights, hf.Samples)
	} else {
		scale := float32(hf.Resolution-1) / float32(res-1)
		for z := 0; z < res; z++ {
			for x := 0; x < res; x++ {
				c.Heights[c.Index(x, z)] = sampleBilinear(hf, float32(x)*scale, float32(z)*scale)
			}
		}
	}

	minE, maxE := c.Heights[0], c.Heights[0]
	for z := 0; z < res; z++ {
		for x := 0; x < res; x++ {
			h := c.Heights[c.Index(x, z)]
			if h < minE {
				minE = h
			}
			if h > maxE {
				maxE = h
			}
			p := c.GridWorld(x, z)
			c.Cells[c.Index(x, z)].Geometry.Position = math.Vec3{X: p.X, Y: h, Z: p.Y}
		}
	}
	c.Bounds.Min.Y = minE
	c.Bounds.Max.Y = maxE
}

// sampleBilinear samples a heightfield at fractional grid coordinates.
func sampleBilinear(hf *raster.Heightfield, fx, fz float32) float32 {
	gx := int(fx)
	gz := int(fz)
	if gx >= hf.Resolution-1 {
		gx = hf.Resolution - 2
	}
	if gz >= hf.Resolution-1 {
		gz = hf.Resolution - 2
	}
	tx := math.Clamp(fx-float32(gx), 0, 1)
	tz := math.Clamp(fz-float32(gz), 0, 1)

	south := math.Lerp(hf.At(gx, gz), hf.At(gx+1, gz), tx)
	north := math.Lerp(hf.At(gx, gz+1), hf.At(gx+1, gz+1), tx)
	return math.Lerp(south, north, tz)
}
