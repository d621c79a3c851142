package protocol

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/oomph-ac/netmove/movement"
	"github.com/oomph-ac/netmove/oerror"
	"github.com/oomph-ac/netmove/omath"
	gt "github.com/sandertv/gophertunnel/minecraft/protocol"
)

// maxEffects is the highest number of status effects a state may carry on the wire.
const maxEffects = 64

var errTooManyEffects = oerror.New("too many effects")

// Float64 reads/writes a float64 as its IEEE 754 bits.
func Float64(io gt.IO, x *float64) {
	bits := math.Float64bits(*x)
	io.Uint64(&bits)
	*x = math.Float64frombits(bits)
}

// Vec3 reads/writes a full precision vector.
func Vec3(io gt.IO, x *mgl64.Vec3) {
	Float64(io, &x[0])
	Float64(io, &x[1])
	Float64(io, &x[2])
}

// Quat reads/writes a full precision quaternion.
func Quat(io gt.IO, x *mgl64.Quat) {
	Float64(io, &x.W)
	Vec3(io, &x.V)
}

// CompactVec3 reads/writes a vector with float32 precision.
func CompactVec3(io gt.IO, x *mgl64.Vec3) {
	v := omath.Vec64To32(*x)
	io.Vec3(&v)
	if reading(io) {
		*x = omath.Vec32To64(v)
	}
}

// CompactQuat reads/writes a quaternion with float32 precision. Decoded quaternions are
// renormalised.
func CompactQuat(io gt.IO, x *mgl64.Quat) {
	q := omath.Quat64To32(*x)
	io.Float32(&q.W)
	io.Vec3(&q.V)
	if reading(io) {
		*x = omath.Quat32To64(mgl32.Quat{W: q.W, V: q.V})
	}
}

// OptionalCompactQuat reads/writes a quaternion that may be absent.
func OptionalCompactQuat(io gt.IO, x **mgl64.Quat) {
	present := *x != nil
	io.Bool(&present)
	if !present {
		*x = nil
		return
	}
	if *x == nil {
		*x = new(mgl64.Quat)
	}
	CompactQuat(io, *x)
}

// Config reads/writes a movement config.
func Config(io gt.IO, c *movement.Config) {
	for _, f := range []*float64{
		&c.Gravity, &c.GroundAcceleration, &c.AirAcceleration, &c.GroundFriction, &c.AirFriction,
		&c.MaxGroundSpeed, &c.MaxRunSpeed, &c.MaxSprintSpeed, &c.MaxAirSpeed, &c.MaxFallSpeed,
		&c.JumpHeight, &c.StepHeight, &c.SpeedTolerance, &c.TurnRate, &c.MaxDelta,
	} {
		Float64(io, f)
	}
}

// State reads/writes a full movement state.
func State(io gt.IO, s *movement.State) {
	Vec3(io, &s.Position)
	Vec3(io, &s.Velocity)
	Vec3(io, &s.Acceleration)
	Quat(io, &s.Rotation)
	io.Bool(&s.Grounded)
	Vec3(io, &s.GroundNormal)

	moveState := uint8(s.MoveState)
	io.Uint8(&moveState)
	s.MoveState = movement.MoveState(moveState)

	hasAirTime := s.AirTime != nil
	io.Bool(&hasAirTime)
	if hasAirTime {
		airTime := s.AirTimeValue()
		Float64(io, &airTime)
		if reading(io) {
			s.AirTime = &airTime
		}
	} else {
		s.AirTime = nil
	}

	Effects(io, &s.Effects)
}

// Effects reads/writes a set of status effects.
func Effects(io gt.IO, e *movement.Effects) {
	l := uint32(len(*e))
	io.Varuint32(&l)
	if l > maxEffects {
		panic(errTooManyEffects)
	}
	if int(l) != len(*e) {
		*e = make(movement.Effects, l)
	}
	for i := range *e {
		kind := uint8((*e)[i].Kind)
		io.Uint8(&kind)
		(*e)[i].Kind = movement.EffectKind(kind)
		Float64(io, &(*e)[i].Magnitude)
	}
}

// reading returns true if io decodes into the values passed to it.
func reading(io gt.IO) bool {
	_, ok := io.(*gt.Reader)
	return ok
}
