package terrain

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/oomph-ac/netmove/movement"
	"github.com/oomph-ac/netmove/omath"
)

// Flat is an infinite flat plane at a fixed height.
type Flat struct {
	Height float64
}

// QueryGround ...
func (f Flat) QueryGround(mgl64.Vec3) (movement.GroundResult, bool) {
	return movement.GroundResult{Height: f.Height, Normal: omath.Up}, true
}
