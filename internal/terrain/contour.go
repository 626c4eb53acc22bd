package terrain

import (
	stdmath "math"

	"github.com/icefall/frostline/pkg/math"
)

// Segment is one iso-elevation line segment in world XZ.
type Segment struct {
	A math.Vec2
	B math.Vec2
}

// ContourLine is the unordered bag of segments traced at one elevation.
// Segments are never stitched into closed paths; endpoints from adjacent
// quads or chunks are simply concatenated.
type ContourLine struct {
	Elevation float32
	Major     bool
	Segments  []Segment
}

// Quad corners are numbered counter-clockwise from the low-XZ corner:
// 0=(x,z) 1=(x+1,z) 2=(x+1,z+1) 3=(x,z+1). Edge i connects corner i to
// corner (i+1)%4. The table maps each of the 16 corner-sign configurations
// to the edge pairs crossed by the contour. Cases 5 and 10 are the
// ambiguous saddles; both always emit exactly two segments via this fixed
// lookup choice, which downstream map rendering depends on.
var marchingSquares = [16][][2]int{
	0:  nil,
	1:  {{3, 0}},
	2:  {{0, 1}},
	3:  {{3, 1}},
	4:  {{1, 2}},
	5:  {{3, 0}, {1, 2}},
	6:  {{0, 2}},
	7:  {{3, 2}},
	8:  {{2, 3}},
	9:  {{0, 2}},
	10: {{0, 1}, {2, 3}},
	11: {{1, 2}},
	12: {{3, 1}},
	13: {{0, 1}},
	14: {{3, 0}},
	15: nil,
}

// TraceContours extracts iso-elevation lines for every interval level inside
// [minElev, maxElev] across all analyzed chunks of the world. Levels at a
// multiple of the major interval are tagged major.
func TraceContours(w *World, minElev, maxElev float32, t ContourTuning) []ContourLine {
	if t.MinorInterval <= 0 || maxElev < minElev {
		return nil
	}

	var lines []ContourLine
	start := float32(stdmath.Ceil(float64(minElev/t.MinorInterval))) * t.MinorInterval
	for level := start; level <= maxElev; level += t.MinorInterval {
		line := ContourLine{
			Elevation: level,
			Major:     isMajorLevel(level, t.MajorInterval),
		}
		for _, c := range w.Chunks() {
			if !c.Analyzed {
				continue
			}
			line.Segments = append(line.Segments, traceChunkLevel(c, level)...)
		}
		if len(line.Segments) > 0 {
			lines = append(lines, line)
		}
	}
	return lines
}

// traceChunkLevel runs marching squares over each 2x2-cell quad of one chunk.
func traceChunkLevel(c *Chunk, level float32) []Segment {
	if level < c.Bounds.Min.Y || level > c.Bounds.Max.Y {
		return nil
	}

	var segs []Segment
	res := c.Resolution
	for z := 0; z < res-1; z++ {
		for x := 0; x < res-1; x++ {
			h := [4]float32{
				c.Heights[c.Index(x, z)],
				c.Heights[c.Index(x+1, z)],
				c.Heights[c.Index(x+1, z+1)],
				c.Heights[c.Index(x, z+1)],
			}

			var config int
			for i, v := range h {
				if v >= level {
					config |= 1 << i
				}
			}
			pairs := marchingSquares[config]
			if len(pairs) == 0 {
				continue
			}

			p := [4]math.Vec2{
				c.GridWorld(x, z),
				c.GridWorld(x+1, z),
				c.GridWorld(x+1, z+1),
				c.GridWorld(x, z+1),
			}
			for _, pair := range pairs {
				segs = append(segs, Segment{
					A: edgePoint(pair[0], level, h, p),
					B: edgePoint(pair[1], level, h, p),
				})
			}
		}
	}
	return segs
}

// edgePoint linearly interpolates the contour crossing along quad edge e.
func edgePoint(e int, level float32, h [4]float32, p [4]math.Vec2) math.Vec2 {
	a, b := e, (e+1)%4
	va, vb := h[a], h[b]

	t := float32(0.5)
	if vb != va {
		t = math.Clamp((level-va)/(vb-va), 0, 1)
	}
	return math.Vec2{
		X: math.Lerp(p[a].X, p[b].X, t),
		Y: math.Lerp(p[a].Y, p[b].Y, t),
	}
}

// isMajorLevel reports whether a level sits on the major interval grid.
func isMajorLevel(level, major float32) bool {
	if major <= 0 {
		return false
	}
	// math.Mod keeps the sign of the level; fold negative remainders back
	// into [0, major) so sub-zero levels are judged on the same grid.
	m := float32(stdmath.Mod(float64(level), float64(major)))
	if m < 0 {
		m += major
	}
	const eps = 1e-3
	return m < eps || major-m < eps
}
