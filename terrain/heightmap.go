package terrain

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/oomph-ac/netmove/movement"
	"github.com/oomph-ac/netmove/oerror"
	"github.com/oomph-ac/netmove/omath"
)

// HeightMap is a regular grid of heights. Heights between grid points are bilinearly interpolated.
// Positions outside of the grid have no ground.
type HeightMap struct {
	originX, originZ float64
	cellSize         float64
	width, depth     int
	heights          []float64
}

// NewHeightMap creates a height map of width*depth points, spaced cellSize apart, starting at the
// origin passed. heights is indexed as heights[z*width+x].
func NewHeightMap(originX, originZ, cellSize float64, width, depth int, heights []float64) (*HeightMap, error) {
	if width < 2 || depth < 2 {
		return nil, oerror.New("terrain: height map must be at least 2x2 points, got %dx%d", width, depth)
	}
	if !(cellSize > 0) || math.IsInf(cellSize, 0) {
		return nil, oerror.New("terrain: invalid cell size %v", cellSize)
	}
	if len(heights) != width*depth {
		return nil, oerror.New("terrain: expected %d heights, got %d", width*depth, len(heights))
	}
	for i, h := range heights {
		if !omath.Finite(h) {
			return nil, oerror.New("terrain: height %d is not finite", i)
		}
	}
	return &HeightMap{
		originX:  originX,
		originZ:  originZ,
		cellSize: cellSize,
		width:    width,
		depth:    depth,
		heights:  append([]float64(nil), heights...),
	}, nil
}

// GenerateHeightMap creates a height map by sampling f at every grid point.
func GenerateHeightMap(originX, originZ, cellSize float64, width, depth int, f func(x, z float64) float64) (*HeightMap, error) {
	heights := make([]float64, 0, width*depth)
	for z := 0; z < depth; z++ {
		for x := 0; x < width; x++ {
			heights = append(heights, f(originX+float64(x)*cellSize, originZ+float64(z)*cellSize))
		}
	}
	return NewHeightMap(originX, originZ, cellSize, width, depth, heights)
}

// Contains returns true if the horizontal coordinate passed is covered by the height map.
func (h *HeightMap) Contains(x, z float64) bool {
	gx, gz := (x-h.originX)/h.cellSize, (z-h.originZ)/h.cellSize
	return gx >= 0 && gz >= 0 && gx <= float64(h.width-1) && gz <= float64(h.depth-1)
}

// HeightAt returns the interpolated height at the horizontal coordinate passed. Coordinates outside
// of the map are clamped to its edge.
func (h *HeightMap) HeightAt(x, z float64) float64 {
	gx := omath.ClampFloat((x-h.originX)/h.cellSize, 0, float64(h.width-1))
	gz := omath.ClampFloat((z-h.originZ)/h.cellSize, 0, float64(h.depth-1))

	x0, z0 := int(gx), int(gz)
	x1, z1 := min(x0+1, h.width-1), min(z0+1, h.depth-1)
	fx, fz := gx-float64(x0), gz-float64(z0)

	top := h.at(x0, z0)*(1-fx) + h.at(x1, z0)*fx
	bottom := h.at(x0, z1)*(1-fx) + h.at(x1, z1)*fx
	return top*(1-fz) + bottom*fz
}

// NormalAt returns the surface normal at the horizontal coordinate passed, estimated from central
// differences of the interpolated height.
func (h *HeightMap) NormalAt(x, z float64) mgl64.Vec3 {
	e := h.cellSize * 0.5
	dx := (h.HeightAt(x+e, z) - h.HeightAt(x-e, z)) / (2 * e)
	dz := (h.HeightAt(x, z+e) - h.HeightAt(x, z-e)) / (2 * e)
	return mgl64.Vec3{-dx, 1, -dz}.Normalize()
}

// QueryGround ...
func (h *HeightMap) QueryGround(pos mgl64.Vec3) (movement.GroundResult, bool) {
	if !h.Contains(pos[0], pos[2]) {
		return movement.GroundResult{}, false
	}
	return movement.GroundResult{Height: h.HeightAt(pos[0], pos[2]), Normal: h.NormalAt(pos[0], pos[2])}, true
}

func (h *HeightMap) at(x, z int) float64 {
	return h.heights[z*h.width+x]
}
