// terraintool is a CLI utility for inspecting frostline mountain terrain.
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/icefall/frostline/internal/config"
	"github.com/icefall/frostline/internal/logger"
	"github.com/icefall/frostline/internal/terrain"
	"github.com/icefall/frostline/pkg/math"
)

func main() {
	// Global options (-config, -debug, -data, -logfile, -snowline) come
	// before the command; parsing stops at the first non-flag argument.
	config.ParseFlags()
	if flag.NArg() < 1 {
		printUsage()
		os.Exit(1)
	}

	command := flag.Arg(0)
	args := flag.Args()[1:]

	switch command {
	case "info":
		cmdInfo(args)
	case "contours":
		cmdContours(args)
	case "slide":
		cmdSlide(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`terraintool - frostline terrain inspection utility

Usage:
  terraintool [global options] <command> [options]

Global options:
  -config <path>    Path to config file
  -debug            Enable debug logging
  -data <dir>       Root directory containing mountain data
  -logfile <path>   Write logs to this file
  -snowline <elev>  Override snow line elevation

Commands:
  info <mountain-id>                    Load and analyze a mountain, print stats
  contours [-dump] <mountain-id>        Trace topo contours, print per-level counts
  slide <mountain-id> <x> <z>           Predict an uncontrolled slide from a point

Examples:
  terraintool -data ./mountains info kestrel-peak
  terraintool contours -dump kestrel-peak
  terraintool slide kestrel-peak 312.5 -80`)
}

// loadWorld loads the named mountain, substituting the procedural
// placeholder wholesale when real data fails (same contract as the game).
func loadWorld(mountainID string) *terrain.World {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	env := terrain.DefaultEnvironment()
	w, err := terrain.LoadWorld(cfg.Data.MountainDir, mountainID, cfg.Terrain, env)
	if err != nil {
		logger.Warn("mountain load failed, substituting procedural terrain")
		fmt.Fprintf(os.Stderr, "load failed (%v), using procedural placeholder\n", err)
		p := terrain.DefaultProceduralParams()
		p.Name = mountainID
		w = terrain.GenerateWorld(p, cfg.Terrain, env)
	}
	return w
}

func cmdInfo(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: terraintool info <mountain-id>")
		os.Exit(1)
	}
	w := loadWorld(args[0])
	defer logger.Sync()

	b := w.Manifest.Bounds
	fmt.Printf("Mountain: %s\n", w.Manifest.Name)
	fmt.Printf("Extent:   X [%.0f, %.0f]  Z [%.0f, %.0f]  elev [%.0f, %.0f]\n",
		b.MinX, b.MaxX, b.MinZ, b.MaxZ, b.MinElevation, b.MaxElevation)
	fmt.Printf("Chunks:   %d\n", len(w.Chunks()))
	fmt.Printf("Hazards:  %d authored, Routes: %d\n", len(w.Hazards()), len(w.Routes()))
	fmt.Println()

	zoneCount := make(map[terrain.TerrainZone]int)
	surfCount := make(map[terrain.SurfaceType]int)
	total := 0
	for _, c := range w.Chunks() {
		for i := range c.Cells {
			zoneCount[c.Cells[i].Hazard.Zone]++
			surfCount[c.Cells[i].Material.Surface]++
			total++
		}
	}

	fmt.Println("Cells by zone:")
	printHistogram(zoneHistogram(zoneCount), total)
	fmt.Println("Cells by surface:")
	printHistogram(surfaceHistogram(surfCount), total)
}

func cmdContours(args []string) {
	fs := flag.NewFlagSet("contours", flag.ExitOnError)
	dump := fs.Bool("dump", false, "Print every segment")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: terraintool contours [-dump] <mountain-id>")
		os.Exit(1)
	}
	w := loadWorld(fs.Arg(0))
	defer logger.Sync()

	b := w.Manifest.Bounds
	lines := terrain.TraceContours(w, b.MinElevation, b.MaxElevation, w.Tuning().Contour)

	for _, line := range lines {
		tag := "minor"
		if line.Major {
			tag = "MAJOR"
		}
		fmt.Printf("%8.1f  %s  %d segments\n", line.Elevation, tag, len(line.Segments))
		if *dump {
			for _, s := range line.Segments {
				fmt.Printf("    (%.2f, %.2f) -> (%.2f, %.2f)\n", s.A.X, s.A.Y, s.B.X, s.B.Y)
			}
		}
	}
}

func cmdSlide(args []string) {
	if len(args) < 3 {
		fmt.Fprintln(os.Stderr, "Usage: terraintool slide <mountain-id> <x> <z>")
		os.Exit(1)
	}
	x, errX := strconv.ParseFloat(args[1], 32)
	z, errZ := strconv.ParseFloat(args[2], 32)
	if errX != nil || errZ != nil {
		fmt.Fprintln(os.Stderr, "slide: x and z must be numbers")
		os.Exit(1)
	}

	w := loadWorld(args[0])
	defer logger.Sync()

	start := math.Vec3{X: float32(x), Y: w.HeightAt(float32(x), float32(z)), Z: float32(z)}
	path := terrain.SimulateSlide(w, start, math.Vec2{}, w.Tuning())

	fmt.Printf("Outcome: %s after %d steps\n", path.Outcome, len(path.Points))
	for i, p := range path.Points {
		fmt.Printf("  %3d  (%.2f, %.2f)  elev %.2f\n", i, p.X, p.Z, p.Y)
	}
}

type histEntry struct {
	name  string
	count int
}

func zoneHistogram(m map[terrain.TerrainZone]int) []histEntry {
	var out []histEntry
	for z, n := range m {
		out = append(out, histEntry{z.String(), n})
	}
	sortHistogram(out)
	return out
}

func surfaceHistogram(m map[terrain.SurfaceType]int) []histEntry {
	var out []histEntry
	for s, n := range m {
		out = append(out, histEntry{s.String(), n})
	}
	sortHistogram(out)
	return out
}

func sortHistogram(entries []histEntry) {
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].count > entries[j].count
	})
}

func printHistogram(entries []histEntry, total int) {
	for _, e := range entries {
		fmt.Printf("  %-10s %8d  (%.1f%%)\n", e.name, e.count, float64(e.count)/float64(total)*100)
	}
	fmt.Println()
}
