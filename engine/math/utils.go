package math

import (
	stdmath "math"

	"golang.org/x/exp/constraints"
)

// Clamp returns the value `f` clamped to the range [low, high].
// It works for any numeric type (integers and floats).
func Clamp[T constraints.Ordered](f, low, high T) T {
	if f < low {
		return low
	}
	if f > high {
		return high
	}
	return f
}

func DegToRad(degrees float32) float32 {
	return degrees * float32(stdmath.Pi/180.0)
}

func RadToDeg(radians float32) float32 {
	return radians * float32(180.0/stdmath.Pi)
}
