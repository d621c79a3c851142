package omath

import (
	"math"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
)

var (
	// Up is the world up axis.
	Up = mgl64.Vec3{0, 1, 0}
	// Forward is the direction an entity with an identity rotation faces.
	Forward = mgl64.Vec3{0, 0, -1}
	// Right is the right hand side of an entity with an identity rotation.
	Right = mgl64.Vec3{1, 0, 0}
)

// ClampFloat clamps the given value to the given range.
func ClampFloat(num, min, max float64) float64 {
	if num < min {
		return min
	}
	return math.Min(num, max)
}

// Vec32To64 converts a 32 bit vector to a 64 bit one.
func Vec32To64(vec3 mgl32.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{float64(vec3[0]), float64(vec3[1]), float64(vec3[2])}
}

// Vec64To32 converts a 64 bit vector to a 32 bit one.
func Vec64To32(vec3 mgl64.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{float32(vec3[0]), float32(vec3[1]), float32(vec3[2])}
}

// Horizontal returns the vector with its Y component removed.
func Horizontal(vec3 mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{vec3[0], 0, vec3[2]}
}

// HorizontalLen returns the length of the horizontal part of a vector.
func HorizontalLen(vec3 mgl64.Vec3) float64 {
	return math.Sqrt(vec3[0]*vec3[0] + vec3[2]*vec3[2])
}

// WithHorizontal returns vec3 with its X and Z components replaced by those of hz.
func WithHorizontal(vec3, hz mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{hz[0], vec3[1], hz[2]}
}

// FiniteVec3 returns true if none of the components of the vector are NaN or infinite.
func FiniteVec3(vec3 mgl64.Vec3) bool {
	for _, v := range vec3 {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Finite returns true if f is neither NaN nor infinite.
func Finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// ExpSmoothing returns the frame-rate independent blend factor 1 - e^(-rate*dt).
func ExpSmoothing(rate, dt float64) float64 {
	if rate <= 0 || dt <= 0 {
		return 0
	}
	return 1 - math.Exp(-rate*dt)
}

// Lerp linearly interpolates between two vectors.
func Lerp(from, to mgl64.Vec3, t float64) mgl64.Vec3 {
	return from.Add(to.Sub(from).Mul(t))
}

// Round32 will round a float32 to a given precision.
func Round32(val float32, precision int) float32 {
	pwr := math32.Pow(10, float32(precision))
	return math32.Round(val*pwr) / pwr
}
