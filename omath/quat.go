package omath

import (
	"math"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
)

// YawQuat returns the rotation about the up axis that turns Forward towards the horizontal
// direction passed. The identity rotation is returned for a zero direction.
func YawQuat(dir mgl64.Vec3) mgl64.Quat {
	if dir[0] == 0 && dir[2] == 0 {
		return mgl64.QuatIdent()
	}
	return mgl64.QuatRotate(math.Atan2(-dir[0], -dir[2]), Up)
}

// Slerp spherically interpolates between two rotations along the shortest arc.
func Slerp(from, to mgl64.Quat, t float64) mgl64.Quat {
	if from.Dot(to) < 0 {
		to = to.Scale(-1)
	}
	return mgl64.QuatSlerp(from, to, ClampFloat(t, 0, 1)).Normalize()
}

// FiniteQuat returns true if all components of the quaternion are finite.
func FiniteQuat(q mgl64.Quat) bool {
	return Finite(q.W) && FiniteVec3(q.V)
}

// Quat64To32 converts a 64 bit quaternion to a 32 bit one.
func Quat64To32(q mgl64.Quat) mgl32.Quat {
	return mgl32.Quat{W: float32(q.W), V: Vec64To32(q.V)}
}

// Quat32To64 converts a 32 bit quaternion to a 64 bit one, renormalising it to absorb the
// precision lost on the way through float32. Degenerate quaternions become the identity.
func Quat32To64(q mgl32.Quat) mgl64.Quat {
	l := math32.Sqrt(q.W*q.W + q.V[0]*q.V[0] + q.V[1]*q.V[1] + q.V[2]*q.V[2])
	if l < 1e-6 || math32.IsNaN(l) || math32.IsInf(l, 0) {
		return mgl64.QuatIdent()
	}
	return mgl64.Quat{W: float64(q.W / l), V: Vec32To64(q.V.Mul(1 / l))}
}
