package movement

import (
	"fmt"
	"math"

	"github.com/oomph-ac/netmove/oerror"
	"github.com/oomph-ac/netmove/omath"
)

var (
	ErrNonFinite   = oerror.New("state has non-finite components")
	ErrSpeedLimit  = oerror.New("state exceeds the speed limit")
	ErrOutOfBounds = oerror.New("state is outside of the world bounds")
)

// SpeedLimit returns the highest horizontal speed a legitimately simulated state with the
// modifiers passed may reach, before tolerance is applied.
func SpeedLimit(cfg Config, mods Modifiers) float64 {
	return math.Max(cfg.MaxSprintSpeed, cfg.MaxAirSpeed) * mods.SpeedMultiplier
}

// VerticalSpeedLimit returns the highest vertical speed, up or down, a legitimately simulated
// state with the modifiers passed may reach, before tolerance is applied.
func VerticalSpeedLimit(cfg Config, mods Modifiers) float64 {
	return math.Max(cfg.MaxFallSpeed, cfg.JumpVelocity(mods.JumpMultiplier))
}

// Check returns an error wrapping ErrNonFinite, ErrSpeedLimit or ErrOutOfBounds if the state
// could not have been produced by a legitimate simulation. It returns nil for valid states.
func Check(state State, cfg Config) error {
	if !omath.FiniteVec3(state.Position) || !omath.FiniteVec3(state.Velocity) || !omath.FiniteQuat(state.Rotation) {
		return fmt.Errorf("%w (pos=%v vel=%v)", ErrNonFinite, state.Position, state.Velocity)
	}
	mods := state.Effects.Combine()
	if speed, limit := omath.HorizontalLen(state.Velocity), SpeedLimit(cfg, mods)*cfg.SpeedTolerance; speed > limit {
		return fmt.Errorf("%w (horizontal speed=%.4f limit=%.4f)", ErrSpeedLimit, speed, limit)
	}
	if speed, limit := math.Abs(state.Velocity[1]), VerticalSpeedLimit(cfg, mods)*cfg.SpeedTolerance; speed > limit {
		return fmt.Errorf("%w (vertical speed=%.4f limit=%.4f)", ErrSpeedLimit, speed, limit)
	}
	for _, v := range state.Position {
		if math.Abs(v) > WorldBound {
			return fmt.Errorf("%w (pos=%v)", ErrOutOfBounds, state.Position)
		}
	}
	return nil
}

// Validate returns true if the state passes Check. It has no side effects.
func Validate(state State, cfg Config) bool {
	return Check(state, cfg) == nil
}
