package movement

import "math"

// EffectKind identifies the kind of a status effect.
type EffectKind uint8

const (
	// EffectSpeed multiplies movement speed caps by its magnitude.
	EffectSpeed EffectKind = iota + 1
	// EffectGravity multiplies gravity by its magnitude.
	EffectGravity
	// EffectJump multiplies the jump height by its magnitude.
	EffectJump
	// EffectRoot removes all control over movement. Gravity still applies.
	EffectRoot
	// EffectNoJump prevents jumping.
	EffectNoJump
)

// Effect is a single active status effect. Magnitude is only used by the multiplier kinds.
type Effect struct {
	Kind      EffectKind
	Magnitude float64
}

// Effects is the set of status effects active on an entity.
type Effects []Effect

// Modifiers is the combined result of all active effects, consumed by the simulator once per tick.
type Modifiers struct {
	SpeedMultiplier   float64
	GravityMultiplier float64
	JumpMultiplier    float64
	CanMove           bool
	CanJump           bool
}

// DefaultModifiers returns modifiers that have no effect on movement.
func DefaultModifiers() Modifiers {
	return Modifiers{
		SpeedMultiplier:   1,
		GravityMultiplier: 1,
		JumpMultiplier:    1,
		CanMove:           true,
		CanJump:           true,
	}
}

// Combine folds all effects into a single Modifiers value. Multipliers stack multiplicatively.
// Multiplier effects with a negative or non-finite magnitude are ignored.
func (e Effects) Combine() Modifiers {
	m := DefaultModifiers()
	for _, effect := range e {
		switch effect.Kind {
		case EffectSpeed, EffectGravity, EffectJump:
			mag := effect.Magnitude
			if math.IsNaN(mag) || math.IsInf(mag, 0) || mag < 0 {
				continue
			}
			switch effect.Kind {
			case EffectSpeed:
				m.SpeedMultiplier *= mag
			case EffectGravity:
				m.GravityMultiplier *= mag
			case EffectJump:
				m.JumpMultiplier *= mag
			}
		case EffectRoot:
			m.CanMove = false
		case EffectNoJump:
			m.CanJump = false
		}
	}
	return m
}

// With returns a copy of the set with the effect added.
func (e Effects) With(effect Effect) Effects {
	out := make(Effects, 0, len(e)+1)
	out = append(out, e...)
	return append(out, effect)
}

// Without returns a copy of the set with every effect of the kind passed removed.
func (e Effects) Without(kind EffectKind) Effects {
	out := make(Effects, 0, len(e))
	for _, effect := range e {
		if effect.Kind != kind {
			out = append(out, effect)
		}
	}
	return out
}
