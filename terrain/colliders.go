package terrain

import (
	"math"
	"sync"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/df-mc/dragonfly/server/block/cube/trace"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/oomph-ac/netmove/movement"
	"github.com/oomph-ac/netmove/omath"
)

// DefaultGroundReach is the distance above a position that Colliders.QueryGround still considers
// a box top to be ground.
const DefaultGroundReach = 0.5

type collider struct {
	bb    cube.BBox
	layer movement.LayerMask
}

// Colliders is a world made of axis aligned boxes. It serves both ground queries and raycasts, so
// that a simulator using it finds footing on any box top. Colliders is safe for concurrent use.
type Colliders struct {
	// Reach is how far above the queried position a box top may be and still be returned by
	// QueryGround.
	Reach float64

	mu    sync.RWMutex
	boxes []collider
}

// NewColliders returns an empty collider world.
func NewColliders() *Colliders {
	return &Colliders{Reach: DefaultGroundReach}
}

// Add adds a box on the layers passed.
func (c *Colliders) Add(bb cube.BBox, layer movement.LayerMask) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.boxes = append(c.boxes, collider{bb: bb, layer: layer})
}

// Len returns the number of boxes in the world.
func (c *Colliders) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.boxes)
}

// QueryGround returns the highest box top below pos (plus Reach) whose horizontal extent contains
// pos.
func (c *Colliders) QueryGround(pos mgl64.Vec3) (movement.GroundResult, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	best, found := math.Inf(-1), false
	for _, col := range c.boxes {
		lo, hi := col.bb.Min(), col.bb.Max()
		if pos[0] < lo[0] || pos[0] > hi[0] || pos[2] < lo[2] || pos[2] > hi[2] {
			continue
		}
		if top := hi[1]; top <= pos[1]+c.Reach && top > best {
			best, found = top, true
		}
	}
	if !found {
		return movement.GroundResult{}, false
	}
	return movement.GroundResult{Height: best, Normal: omath.Up}, true
}

// Raycast returns the closest intersection of the ray with a box on the layers in mask.
func (c *Colliders) Raycast(origin, direction mgl64.Vec3, maxDistance float64, mask movement.LayerMask) (movement.RaycastHit, bool) {
	if direction.Len() < 1e-9 || !(maxDistance > 0) {
		return movement.RaycastHit{}, false
	}
	end := origin.Add(direction.Normalize().Mul(maxDistance))

	c.mu.RLock()
	defer c.mu.RUnlock()

	var (
		closest movement.RaycastHit
		found   bool
	)
	for _, col := range c.boxes {
		if col.layer&mask == 0 {
			continue
		}
		res, ok := trace.BBoxIntercept(col.bb, origin, end)
		if !ok {
			continue
		}
		dist := res.Position().Sub(origin).Len()
		if !found || dist < closest.Distance {
			closest = movement.RaycastHit{Position: res.Position(), Normal: faceNormal(res.Face()), Distance: dist}
			found = true
		}
	}
	return closest, found
}

func faceNormal(face cube.Face) mgl64.Vec3 {
	switch face {
	case cube.FaceDown:
		return mgl64.Vec3{0, -1, 0}
	case cube.FaceNorth:
		return mgl64.Vec3{0, 0, -1}
	case cube.FaceSouth:
		return mgl64.Vec3{0, 0, 1}
	case cube.FaceWest:
		return mgl64.Vec3{-1, 0, 0}
	case cube.FaceEast:
		return mgl64.Vec3{1, 0, 0}
	}
	return omath.Up
}
