package movement

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/oomph-ac/netmove/omath"
)

// Simulate runs a movement simulation tick and returns the resulting state. It is deterministic:
// the same state, input, config and world always produce the same result.
func (s *Simulator) Simulate(state State, input Input) Result {
	dt := input.Delta
	if !omath.Finite(dt) || dt <= 0 {
		s.debugf("rejected input with delta %v", dt)
		return Result{State: state, Outcome: OutcomeRejected}
	}
	result := Result{Outcome: OutcomeNormal, Delta: dt}
	if dt > s.Config.MaxDelta {
		dt = s.Config.MaxDelta
		result.Delta, result.Clamped = dt, true
	}

	mods := state.Effects.Combine()
	next := state
	next.Rotation = normalizeRotation(state.Rotation)

	if !mods.CanMove {
		result.Outcome = OutcomeImmobile
		result.Landed = s.simulateImmobile(&next, mods, dt)
		next.Acceleration = next.Velocity.Sub(state.Velocity).Mul(1 / dt)
		result.State = next
		return result
	}

	wishDir := wishDirection(input)
	wishSpeed := s.gaitSpeed(input, state.MoveState) * mods.SpeedMultiplier

	if next.Grounded {
		result.Jumped = s.groundMove(&next, input, mods, wishDir, wishSpeed, dt)
	} else {
		s.airMove(&next, mods, wishDir, wishSpeed, dt)
	}

	speedCap := s.Config.MaxAirSpeed * mods.SpeedMultiplier
	if next.Grounded {
		speedCap = wishSpeed
	}
	next.Velocity = clampHorizontal(next.Velocity, speedCap)
	next.Position = next.Position.Add(next.Velocity.Mul(dt))

	result.Landed = s.resolveGround(&next)
	next.MoveState = s.moveState(next, input, mods)

	if wishDir.Len() > 1e-6 {
		next.Rotation = omath.Slerp(next.Rotation, omath.YawQuat(wishDir), omath.ExpSmoothing(s.Config.TurnRate, dt))
	}
	next.Acceleration = next.Velocity.Sub(state.Velocity).Mul(1 / dt)

	result.State = next
	return result
}

// groundMove applies friction, acceleration and jumping to a grounded entity. It returns true if
// the entity jumped.
func (s *Simulator) groundMove(state *State, input Input, mods Modifiers, wishDir mgl64.Vec3, wishSpeed, dt float64) bool {
	hz := applyFriction(omath.Horizontal(state.Velocity), s.Config.GroundFriction, dt)
	hz = accelerate(hz, wishDir, wishSpeed, wishSpeed, s.Config.GroundAcceleration, dt)
	state.Velocity = mgl64.Vec3{hz[0], 0, hz[2]}

	if input.Buttons.Has(ButtonJump) && mods.CanJump {
		state.Velocity[1] = s.Config.JumpVelocity(mods.JumpMultiplier)
		leaveGround(state)
		s.debugf("jump (vy=%.4f)", state.Velocity[1])
		return true
	}

	// Look one step ahead so that walking off a ledge starts the fall on this tick instead of
	// leaving the entity floating for one.
	ahead := state.Position.Add(state.Velocity.Mul(dt))
	if _, ok := s.support(ahead, 0); !ok {
		leaveGround(state)
		s.debugf("left ground at %v", state.Position)
	}
	return false
}

// airMove applies air friction, bounded air control and gravity to an airborne entity.
func (s *Simulator) airMove(state *State, mods Modifiers, wishDir mgl64.Vec3, wishSpeed, dt float64) {
	hz := applyFriction(omath.Horizontal(state.Velocity), s.Config.AirFriction, dt)
	hz = accelerate(hz, wishDir, wishSpeed*AirControlFraction, wishSpeed, s.Config.AirAcceleration, dt)
	state.Velocity = omath.WithHorizontal(state.Velocity, hz)
	s.applyGravity(state, mods, dt)
}

// simulateImmobile moves an entity that has no control over its movement. Only gravity applies,
// and only while airborne. It returns true if the entity landed.
func (s *Simulator) simulateImmobile(state *State, mods Modifiers, dt float64) bool {
	if !state.Grounded {
		s.applyGravity(state, mods, dt)
	}
	state.Position = state.Position.Add(state.Velocity.Mul(dt))

	landed := s.resolveGround(state)
	state.MoveState = s.moveState(*state, Input{}, mods)
	return landed
}

func (s *Simulator) applyGravity(state *State, mods Modifiers, dt float64) {
	vy := state.Velocity[1] - s.Config.Gravity*mods.GravityMultiplier*dt
	if vy < -s.Config.MaxFallSpeed {
		vy = -s.Config.MaxFallSpeed
	}
	state.Velocity[1] = vy
	state.AirTime = airTime(state.AirTimeValue() + dt)
}

// resolveGround checks for ground at the current position of the entity, snapping it onto the
// surface when it is supported. It returns true if the entity landed this tick.
func (s *Simulator) resolveGround(state *State) bool {
	ground, ok := s.support(state.Position, state.Velocity[1])
	if !ok {
		if state.Grounded || state.AirTime == nil {
			leaveGround(state)
		}
		return false
	}

	landed := !state.Grounded
	state.Position[1] = ground.Height
	state.GroundNormal = groundNormal(ground)
	state.Grounded = true
	state.AirTime = nil
	if landed {
		state.Velocity[1] = 0
		s.debugf("landed at %v", state.Position)
	}
	return landed
}

// support returns the ground supporting an entity at pos moving with vertical velocity vy. An
// entity is supported if it is not moving upward and is within StepHeight above the ground.
func (s *Simulator) support(pos mgl64.Vec3, vy float64) (GroundResult, bool) {
	if vy > 0 {
		return GroundResult{}, false
	}
	ground, ok := s.footing(pos)
	if !ok || !omath.Finite(ground.Height) {
		return GroundResult{}, false
	}
	if pos[1]-ground.Height > s.Config.StepHeight {
		return GroundResult{}, false
	}
	return ground, true
}

// footing finds the ground below pos, preferring the raycast provider when one is set.
func (s *Simulator) footing(pos mgl64.Vec3) (GroundResult, bool) {
	if s.Raycast != nil {
		mask := s.Mask
		if mask == 0 {
			mask = LayerAll
		}
		origin := pos.Add(omath.Up.Mul(s.Config.StepHeight))
		if hit, ok := s.Raycast.Raycast(origin, omath.Up.Mul(-1), s.Config.StepHeight*2, mask); ok {
			return GroundResult{Height: hit.Position[1], Normal: hit.Normal}, true
		}
	}
	if s.Ground == nil {
		return GroundResult{}, false
	}
	return s.Ground.QueryGround(pos)
}

// gaitSpeed returns the speed cap selected by the buttons held and the current move state.
func (s *Simulator) gaitSpeed(input Input, current MoveState) float64 {
	switch {
	case input.Buttons.Has(ButtonCrouch), input.Buttons.Has(ButtonWalk):
		return s.Config.MaxGroundSpeed
	case input.Buttons.Has(ButtonSprint) && current != MoveStateCrouching:
		return s.Config.MaxSprintSpeed
	}
	return s.Config.MaxRunSpeed
}

// moveState derives the move state from the physical state after a tick.
func (s *Simulator) moveState(state State, input Input, mods Modifiers) MoveState {
	if !state.Grounded {
		if state.Velocity[1] > 0 {
			return MoveStateJumping
		}
		return MoveStateFalling
	}
	if input.Buttons.Has(ButtonCrouch) {
		return MoveStateCrouching
	}

	speed := omath.HorizontalLen(state.Velocity)
	switch {
	case speed < IdleSpeedThreshold:
		return MoveStateIdle
	case speed > s.Config.MaxRunSpeed*mods.SpeedMultiplier+speedEpsilon:
		return MoveStateSprinting
	case speed > s.Config.MaxGroundSpeed*mods.SpeedMultiplier+speedEpsilon:
		return MoveStateRunning
	}
	return MoveStateWalking
}

// wishDirection returns the horizontal unit direction the input asks to move in, or the zero
// vector if there is none.
func wishDirection(input Input) mgl64.Vec3 {
	if explicit := omath.Horizontal(input.MoveVector); explicit.Len() > 1e-6 && omath.FiniteVec3(explicit) {
		return explicit.Normalize()
	}

	view := normalizeRotation(input.View)
	forward := omath.Horizontal(view.Rotate(omath.Forward))
	if forward.Len() < 1e-6 {
		// Looking straight up or down: derive forward from the right axis instead.
		right := omath.Horizontal(view.Rotate(omath.Right))
		forward = omath.Up.Cross(right)
	}
	if forward.Len() < 1e-6 {
		return mgl64.Vec3{}
	}
	forward = forward.Normalize()
	right := forward.Cross(omath.Up)

	var dir mgl64.Vec3
	if input.Buttons.Has(ButtonForward) {
		dir = dir.Add(forward)
	}
	if input.Buttons.Has(ButtonBack) {
		dir = dir.Sub(forward)
	}
	if input.Buttons.Has(ButtonRight) {
		dir = dir.Add(right)
	}
	if input.Buttons.Has(ButtonLeft) {
		dir = dir.Sub(right)
	}
	if dir.Len() < 1e-6 {
		return mgl64.Vec3{}
	}
	return dir.Normalize()
}

// applyFriction decays the speed of a horizontal velocity proportionally to friction*dt.
func applyFriction(hz mgl64.Vec3, friction, dt float64) mgl64.Vec3 {
	return hz.Mul(math.Max(0, 1-friction*dt))
}

// accelerate adds speed along wishDir. The speed along wishDir is only raised up to addCap, and by
// at most accel*dt*wishSpeed per tick.
func accelerate(hz, wishDir mgl64.Vec3, addCap, wishSpeed, accel, dt float64) mgl64.Vec3 {
	addSpeed := addCap - hz.Dot(wishDir)
	if addSpeed <= 0 {
		return hz
	}
	accelSpeed := math.Min(accel*dt*wishSpeed, addSpeed)
	return hz.Add(wishDir.Mul(accelSpeed))
}

// clampHorizontal limits the horizontal speed of a velocity, keeping its vertical part.
func clampHorizontal(vel mgl64.Vec3, max float64) mgl64.Vec3 {
	speed := omath.HorizontalLen(vel)
	if speed <= max || speed == 0 {
		return vel
	}
	scale := math.Max(max, 0) / speed
	return mgl64.Vec3{vel[0] * scale, vel[1], vel[2] * scale}
}

func leaveGround(state *State) {
	state.Grounded = false
	state.GroundNormal = mgl64.Vec3{}
	state.AirTime = airTime(0)
}

func groundNormal(ground GroundResult) mgl64.Vec3 {
	if ground.Normal.Len() < 1e-9 || !omath.FiniteVec3(ground.Normal) {
		return omath.Up
	}
	return ground.Normal.Normalize()
}

func normalizeRotation(q mgl64.Quat) mgl64.Quat {
	if l := q.Len(); l < 1e-9 || !omath.Finite(l) {
		return mgl64.QuatIdent()
	}
	return q.Normalize()
}
