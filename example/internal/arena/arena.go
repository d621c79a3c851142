// Package arena builds the world shared by the example server and bot. Both sides must simulate
// on identical terrain for prediction to match.
package arena

import (
	"math"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/oomph-ac/netmove/movement"
	"github.com/oomph-ac/netmove/terrain"
)

const (
	size     = 128
	cellSize = 1.0
)

// World is the terrain of the arena.
type World struct {
	Ground  *terrain.HeightMap
	Pillars *terrain.Colliders
}

// New generates the arena: rolling hills with a ring of pillars around the spawn.
func New() (World, error) {
	ground, err := terrain.GenerateHeightMap(-size/2, -size/2, cellSize, size+1, size+1, func(x, z float64) float64 {
		return 0.6*math.Sin(x/9) + 0.4*math.Cos(z/7)
	})
	if err != nil {
		return World{}, err
	}
	pillars := terrain.NewColliders()
	for i := 0; i < 8; i++ {
		angle := float64(i) * math.Pi / 4
		x, z := 20*math.Cos(angle), 20*math.Sin(angle)
		pillars.Add(cube.Box(x-1, -2, z-1, x+1, 1.5, z+1), movement.LayerAll)
	}
	return World{Ground: ground, Pillars: pillars}, nil
}
