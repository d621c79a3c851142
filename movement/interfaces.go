package movement

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// GroundResult is the result of a ground query.
type GroundResult struct {
	// Height is the height of the walkable surface below the queried position.
	Height float64
	// Normal is the surface normal. A zero normal means the surface is flat.
	Normal mgl64.Vec3
}

// GroundProvider bridges the terrain system for height lookups. QueryGround must return a finite
// height for every in-bounds horizontal coordinate, and false for positions with no ground at all.
type GroundProvider interface {
	QueryGround(pos mgl64.Vec3) (GroundResult, bool)
}

// LayerMask selects the collision layers a raycast may hit.
type LayerMask uint32

// LayerAll matches every collision layer.
const LayerAll LayerMask = math.MaxUint32

// RaycastHit describes the closest surface hit by a raycast.
type RaycastHit struct {
	Position mgl64.Vec3
	Normal   mgl64.Vec3
	Distance float64
}

// RaycastProvider bridges a collision engine that can detect footing beyond plain height lookups.
type RaycastProvider interface {
	Raycast(origin, direction mgl64.Vec3, maxDistance float64, mask LayerMask) (RaycastHit, bool)
}
