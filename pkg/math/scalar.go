// Package math provides math types and functions for game development.
package math

import "math"

// Clamp limits v to the range [lo, hi].
func Clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Lerp linearly interpolates between a and b by t.
func Lerp(a, b, t float32) float32 {
	return a + (b-a)*t
}

// Atan2 is float32 atan2 in radians.
func Atan2(y, x float32) float32 {
	return float32(math.Atan2(float64(y), float64(x)))
}

// Degrees converts radians to degrees.
func Degrees(rad float32) float32 {
	return rad * 180 / math.Pi
}

// Radians converts degrees to radians.
func Radians(deg float32) float32 {
	return deg * math.Pi / 180
}
