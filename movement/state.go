package movement

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/zeebo/xxh3"
)

// MoveState is the high level movement mode of an entity, derived from its physical state.
type MoveState uint8

const (
	MoveStateIdle MoveState = iota
	MoveStateWalking
	MoveStateRunning
	MoveStateSprinting
	MoveStateCrouching
	MoveStateJumping
	MoveStateFalling
)

// String ...
func (m MoveState) String() string {
	switch m {
	case MoveStateIdle:
		return "idle"
	case MoveStateWalking:
		return "walking"
	case MoveStateRunning:
		return "running"
	case MoveStateSprinting:
		return "sprinting"
	case MoveStateCrouching:
		return "crouching"
	case MoveStateJumping:
		return "jumping"
	case MoveStateFalling:
		return "falling"
	}
	return "unknown"
}

// Airborne returns true for the move states of entities that are not on the ground.
func (m MoveState) Airborne() bool {
	return m == MoveStateJumping || m == MoveStateFalling
}

// State is the complete simulatable state of one entity at an instant. States are values: the
// simulator returns a new State every tick and never writes through the AirTime pointer or the
// Effects slice of a state passed to it.
type State struct {
	Position mgl64.Vec3
	Velocity mgl64.Vec3
	// Acceleration is the velocity change per second of the last tick. It is informational.
	Acceleration mgl64.Vec3
	Rotation     mgl64.Quat

	Grounded bool
	// GroundNormal is the normal of the surface the entity stands on. It is only meaningful while
	// Grounded is true.
	GroundNormal mgl64.Vec3
	MoveState    MoveState
	// AirTime is the time in seconds since the entity left the ground. It is nil while grounded.
	AirTime *float64

	Effects Effects
}

// NewState returns the state of an entity spawned at the position and rotation passed. The
// entity starts airborne; the first simulated tick lands it if ground is within reach.
func NewState(pos mgl64.Vec3, rot mgl64.Quat) State {
	return State{
		Position:  pos,
		Rotation:  rot,
		MoveState: MoveStateFalling,
		AirTime:   airTime(0),
	}
}

// AirTimeValue returns the air time of the state, or zero while grounded.
func (s State) AirTimeValue() float64 {
	if s.AirTime == nil {
		return 0
	}
	return *s.AirTime
}

// Checksum returns a hash of the physical state, used to spot divergence between two
// simulations of the same entity.
func (s State) Checksum() uint64 {
	buf := make([]byte, 0, 14*8+2)
	for _, v := range [...]float64{
		s.Position[0], s.Position[1], s.Position[2],
		s.Velocity[0], s.Velocity[1], s.Velocity[2],
		s.Rotation.W, s.Rotation.V[0], s.Rotation.V[1], s.Rotation.V[2],
		s.GroundNormal[0], s.GroundNormal[1], s.GroundNormal[2],
		s.AirTimeValue(),
	} {
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(v))
	}
	grounded := byte(0)
	if s.Grounded {
		grounded = 1
	}
	buf = append(buf, grounded, byte(s.MoveState))
	return xxh3.Hash(buf)
}

func airTime(v float64) *float64 {
	return &v
}
