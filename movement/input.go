package movement

import "github.com/go-gl/mathgl/mgl64"

// Buttons is a bitmask of the movement buttons held during a tick.
type Buttons uint16

const (
	ButtonForward Buttons = 1 << iota
	ButtonBack
	ButtonLeft
	ButtonRight
	ButtonJump
	ButtonSprint
	ButtonWalk
	ButtonCrouch
)

// Has returns true if all buttons in flag are held.
func (b Buttons) Has(flag Buttons) bool {
	return b&flag == flag
}

// Input represents a single tick's player intent. An Input is consumed exactly once by the
// simulator and never mutated after it is created.
type Input struct {
	Buttons Buttons
	// View is the orientation the player is looking in. Button directions are taken relative to
	// its horizontal projection.
	View mgl64.Quat
	// MoveVector is an explicit movement direction, used for point-and-click control. When it has
	// a non-zero horizontal part it overrides the directional buttons.
	MoveVector mgl64.Vec3
	// Delta is the elapsed time of the tick in seconds.
	Delta float64
}
