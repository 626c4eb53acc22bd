package terrain

import (
	stdmath "math"

	"github.com/icefall/frostline/pkg/math"
)

// PrecipType is the most recent precipitation kind.
type PrecipType int

// Precipitation kinds.
const (
	PrecipNone PrecipType = iota
	PrecipSnow
	PrecipRain
)

// Environment is the weather snapshot driving surface classification.
// Pushed by the environment service; a new snapshot triggers synchronous
// reclassification of all loaded chunks.
type Environment struct {
	BaseTemperature  float32    // degrees C at the snow line
	LapseRate        float32    // degrees C lost per 100m of elevation gain
	SunAltitude      float32    // degrees above horizon, <=0 means night
	SunAzimuth       float32    // compass degrees
	HoursSincePrecip float32
	LastPrecip       PrecipType
	Precipitating    bool
}

// DefaultEnvironment returns a clear, cold mid-morning snapshot.
func DefaultEnvironment() Environment {
	return Environment{
		BaseTemperature:  -4,
		LapseRate:        0.65,
		SunAltitude:      35,
		SunAzimuth:       150,
		HoursSincePrecip: 48,
		LastPrecip:       PrecipSnow,
	}
}

// TemperatureAt returns the air temperature at an elevation:
// base_temperature - ((elevation - snow_line)/100) * lapse_rate.
func (e Environment) TemperatureAt(elevation, snowLine float32) float32 {
	return e.BaseTemperature - (elevation-snowLine)/100*e.LapseRate
}

// classifySurface assigns a surface material from cell geometry and the
// environment snapshot. Decision order: rock family below the snow line,
// steep-surface family past the maximum snow slope, snow family otherwise.
func classifySurface(g CellGeometry, env Environment, t SurfaceTuning) CellMaterial {
	elev := g.Elevation()
	temp := env.TemperatureAt(elev, t.SnowLine)

	sun := sunExposure(g.Normal, env)
	wind := math.Clamp(0.5+g.Curvature*t.DrainageGain, 0, 1)
	moist := g.Drainage > t.WetDrainage ||
		(env.LastPrecip == PrecipRain && env.HoursSincePrecip < 6)

	m := CellMaterial{
		SunExposure:  sun,
		WindExposure: wind,
	}

	switch {
	case elev < t.SnowLine:
		// Rock family.
		switch {
		case moist && temp > 0:
			m.Surface = SurfaceWetRock
		case g.Slope > t.ScreeSlope:
			m.Surface = SurfaceScree
		case temp <= 0 && moist:
			m.Surface = SurfaceIce
			m.IceProb = 1
		default:
			m.Surface = SurfaceDryRock
		}

	case g.Slope > t.MaxSnowSlope:
		// Too steep to hold snow.
		switch {
		case temp <= 0 && g.Drainage > 0.3:
			m.Surface = SurfaceIce
			m.IceProb = 1
		case temp <= 2:
			m.Surface = SurfaceMixed
		default:
			m.Surface = SurfaceDryRock
		}

	default:
		// Snow family.
		m.IceProb = iceProbability(g, env, temp, sun)
		m.SnowDepth = snowDepth(g, elev, wind, t)
		switch {
		case env.Precipitating || (env.LastPrecip == PrecipSnow && env.HoursSincePrecip < t.FreshSnowHours):
			m.Surface = SurfacePowder
		case m.IceProb > 0.5:
			m.Surface = SurfaceIce
		case temp > t.SoftSnowTemp:
			m.Surface = SurfaceSoftSnow
		default:
			m.Surface = SurfaceFirmSnow
		}
	}

	m.Friction = surfaceFriction(m.Surface)
	m.Firmness = surfaceFirmness(m.Surface)
	return m
}

// iceProbability combines recent-melt evidence, shade fraction, drainage and
// a north-facing-aspect bonus into the chance a snow cell has iced over.
func iceProbability(g CellGeometry, env Environment, temp, sun float32) float32 {
	// Melt-refreeze cycles happen when temperatures hover around freezing.
	melt := math.Clamp(1-absf(temp)/4, 0, 1)
	shade := 1 - sun

	// Flat cells have no meaningful aspect; the bonus applies only to
	// actual north-facing slopes.
	var northBonus float32
	if g.Slope > 0 && (g.Aspect >= 315 || g.Aspect < 45) {
		northBonus = 0.15
	}

	return math.Clamp(0.4*melt+0.25*shade+0.2*g.Drainage+northBonus, 0, 1)
}

// snowDepth estimates snow accumulation from elevation above the snow line,
// reduced on steeper slopes and wind-scoured convexities.
func snowDepth(g CellGeometry, elev, wind float32, t SurfaceTuning) float32 {
	span := t.PermanentSnowLine - t.SnowLine
	if span <= 0 {
		return 0
	}
	base := math.Clamp((elev-t.SnowLine)/span, 0, 1) * t.MaxSnowDepth
	slopeHold := math.Clamp(1-g.Slope/t.MaxSnowSlope, 0, 1)
	scour := 1 - 0.5*wind
	return base * slopeHold * scour
}

// sunExposure is the clamped cosine between the surface normal and the sun
// direction, zero at night.
func sunExposure(normal math.Vec3, env Environment) float32 {
	if env.SunAltitude <= 0 {
		return 0
	}
	alt := math.Radians(env.SunAltitude)
	az := math.Radians(env.SunAzimuth)
	sun := math.Vec3{
		X: float32(stdmath.Cos(float64(alt)) * stdmath.Sin(float64(az))),
		Y: float32(stdmath.Sin(float64(alt))),
		Z: -float32(stdmath.Cos(float64(alt)) * stdmath.Cos(float64(az))),
	}
	return math.Clamp(normal.Dot(sun), 0, 1)
}

func absf(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
