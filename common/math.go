package common

import "math"

// WrapClamp wraps n into the inclusive range [min, max].
func WrapClamp(n, min, max int) int {
	if max < min {
		return min
	}
	span := max - min + 1
	return min + ((n-min)%span+span)%span
}

// Finite reports whether f is neither NaN nor infinite.
func Finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Rotate turns (x, y) by deg degrees counter-clockwise about the origin.
func Rotate(x, y, deg float64) (float64, float64) {
	rad := deg * math.Pi / 180
	sin, cos := math.Sincos(rad)
	return x*cos - y*sin, x*sin + y*cos
}
