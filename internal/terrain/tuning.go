package terrain

import (
	"errors"
	"fmt"
)

// ErrBadZoneThresholds reports a zone band table that is not strictly
// increasing. A duplicated or misordered threshold silently makes a band
// unreachable, so this is validated up front.
var ErrBadZoneThresholds = errors.New("zone thresholds must be strictly increasing")

// ZoneThresholds partitions slope angle [0,90) into terrain-zone bands.
// Each value is the minimum slope (degrees) of its band; cells below
// SlideableMin are walkable.
type ZoneThresholds struct {
	SlideableMin float32 `yaml:"slideable_min"`
	SteepMin     float32 `yaml:"steep_min"`
	DownclimbMin float32 `yaml:"downclimb_min"`
	RappelMin    float32 `yaml:"rappel_min"`
	CliffMin     float32 `yaml:"cliff_min"`
}

// SurfaceTuning holds surface-classification parameters.
type SurfaceTuning struct {
	SnowLine          float32 `yaml:"snow_line"`           // elevation above which snow cover is assumed
	PermanentSnowLine float32 `yaml:"permanent_snow_line"` // elevation of year-round snow
	ScreeSlope        float32 `yaml:"scree_slope"`         // rock steeper than this sheds to scree
	MaxSnowSlope      float32 `yaml:"max_snow_slope"`      // snow cannot hold past this slope
	SoftSnowTemp      float32 `yaml:"soft_snow_temp"`      // snow softens above this temperature
	FreshSnowHours    float32 `yaml:"fresh_snow_hours"`    // snowfall younger than this is powder
	WetDrainage       float32 `yaml:"wet_drainage"`        // drainage above this counts as wet
	DrainageGain      float32 `yaml:"drainage_gain"`       // curvature-to-drainage scale factor
	MaxSnowDepth      float32 `yaml:"max_snow_depth"`
}

// HazardTuning holds hazard-field parameters.
type HazardTuning struct {
	CliffFalloff     float32 `yaml:"cliff_falloff"`      // distance over which cliff proximity stops mattering
	ExitMinCliffDist float32 `yaml:"exit_min_cliff_dist"` // exit zones must be at least this far from a cliff
}

// SlideTuning holds slide-path simulation parameters.
type SlideTuning struct {
	StepDistance float32 `yaml:"step_distance"`
	MaxSteps     int     `yaml:"max_steps"`
}

// ContourTuning holds contour-tracing intervals.
type ContourTuning struct {
	MinorInterval float32 `yaml:"minor_interval"`
	MajorInterval float32 `yaml:"major_interval"`
}

// QueryTuning holds query-facade parameters.
type QueryTuning struct {
	CacheRadius float32 `yaml:"cache_radius"` // position-proximity key for the one-entry cell cache
}

// Tuning bundles every terrain-engine parameter.
type Tuning struct {
	Zones   ZoneThresholds `yaml:"zones"`
	Surface SurfaceTuning  `yaml:"surface"`
	Hazard  HazardTuning   `yaml:"hazard"`
	Slide   SlideTuning    `yaml:"slide"`
	Contour ContourTuning  `yaml:"contour"`
	Query   QueryTuning    `yaml:"query"`
}

// DefaultTuning returns the shipped tuning values.
func DefaultTuning() Tuning {
	return Tuning{
		Zones: ZoneThresholds{
			SlideableMin: 25,
			SteepMin:     40,
			DownclimbMin: 55,
			RappelMin:    65,
			CliffMin:     75,
		},
		Surface: SurfaceTuning{
			SnowLine:          2200,
			PermanentSnowLine: 3400,
			ScreeSlope:        32,
			MaxSnowSlope:      55,
			SoftSnowTemp:      -2,
			FreshSnowHours:    12,
			WetDrainage:       0.5,
			DrainageGain:      2,
			MaxSnowDepth:      3,
		},
		Hazard: HazardTuning{
			CliffFalloff:     50,
			ExitMinCliffDist: 10,
		},
		Slide: SlideTuning{
			StepDistance: 2,
			MaxSteps:     400,
		},
		Contour: ContourTuning{
			MinorInterval: 50,
			MajorInterval: 250,
		},
		Query: QueryTuning{
			CacheRadius: 0.5,
		},
	}
}

// Validate checks the tuning for values that would corrupt classification.
func (t Tuning) Validate() error {
	z := t.Zones
	seq := []float32{0, z.SlideableMin, z.SteepMin, z.DownclimbMin, z.RappelMin, z.CliffMin}
	for i := 1; i < len(seq); i++ {
		if seq[i] <= seq[i-1] {
			return fmt.Errorf("%w: %v", ErrBadZoneThresholds, seq[1:])
		}
	}
	if z.CliffMin >= 90 {
		return fmt.Errorf("%w: cliff_min %g must be below 90", ErrBadZoneThresholds, z.CliffMin)
	}
	if t.Slide.MaxSteps <= 0 {
		return errors.New("slide max_steps must be positive")
	}
	if t.Slide.StepDistance <= 0 {
		return errors.New("slide step_distance must be positive")
	}
	if t.Hazard.CliffFalloff <= 0 {
		return errors.New("hazard cliff_falloff must be positive")
	}
	return nil
}
