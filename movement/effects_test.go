package movement

import (
	"math"
	"testing"
)

func TestEffectsCombine(t *testing.T) {
	if got := Effects(nil).Combine(); got != DefaultModifiers() {
		t.Fatalf("expected no effects to give default modifiers, got %+v", got)
	}

	mods := Effects{
		{Kind: EffectSpeed, Magnitude: 2},
		{Kind: EffectSpeed, Magnitude: 1.5},
		{Kind: EffectGravity, Magnitude: 0.5},
		{Kind: EffectJump, Magnitude: math.NaN()},
		{Kind: EffectJump, Magnitude: -3},
		{Kind: EffectNoJump},
	}.Combine()
	if mods.SpeedMultiplier != 3 {
		t.Fatalf("expected speed multipliers to stack to 3, got %v", mods.SpeedMultiplier)
	}
	if mods.GravityMultiplier != 0.5 || mods.JumpMultiplier != 1 {
		t.Fatalf("unexpected multipliers: %+v", mods)
	}
	if !mods.CanMove || mods.CanJump {
		t.Fatalf("expected movement but no jumping, got %+v", mods)
	}
}

func TestEffectsWithWithout(t *testing.T) {
	base := Effects{{Kind: EffectRoot}}
	with := base.With(Effect{Kind: EffectSpeed, Magnitude: 2})
	if len(base) != 1 || len(with) != 2 {
		t.Fatalf("expected With to copy, got base=%v with=%v", base, with)
	}
	without := with.Without(EffectRoot)
	if len(without) != 1 || without[0].Kind != EffectSpeed || !without.Combine().CanMove {
		t.Fatalf("expected root to be removed, got %v", without)
	}
}
