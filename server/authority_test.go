package server

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/oomph-ac/netmove/movement"
	"github.com/oomph-ac/netmove/protocol"
	"github.com/oomph-ac/netmove/settings"
	"github.com/oomph-ac/netmove/terrain"
	"github.com/sirupsen/logrus"
)

func groundedSpawn() movement.State {
	return movement.State{
		Rotation:     mgl64.QuatIdent(),
		Grounded:     true,
		GroundNormal: mgl64.Vec3{0, 1, 0},
	}
}

func forward(seq uint64, dt float64) *protocol.InputCommand {
	return &protocol.InputCommand{Sequence: seq, Input: movement.Input{
		Buttons: movement.ButtonForward,
		View:    mgl64.QuatIdent(),
		Delta:   dt,
	}}
}

func newTestAuthority(cfg movement.Config, maxQueued int, basics settings.Basics) *Authority {
	sim := movement.NewSimulator(cfg, terrain.Flat{})
	return NewAuthority(1, sim, groundedSpawn(), maxQueued, basics, logrus.New())
}

func TestAuthorityInputOrdering(t *testing.T) {
	a := newTestAuthority(movement.DefaultConfig(), 2, settings.DefaultSettings().Server.Validation)

	if err := a.HandleInput(forward(1, 0.05)); err != nil {
		t.Fatalf("expected first input to be queued, got %v", err)
	}
	if err := a.HandleInput(forward(1, 0.05)); !errors.Is(err, ErrStaleInput) {
		t.Fatalf("expected duplicate input to be rejected, got %v", err)
	}
	if err := a.HandleInput(forward(3, 0.05)); err != nil {
		t.Fatalf("expected input with a gap to be queued, got %v", err)
	}
	if err := a.HandleInput(forward(2, 0.05)); !errors.Is(err, ErrStaleInput) {
		t.Fatalf("expected reordered input to be rejected, got %v", err)
	}
	if err := a.HandleInput(forward(4, 0.05)); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("expected full queue to reject input, got %v", err)
	}

	res := a.Tick()
	if res.Simulated != 2 || res.Rejected != 0 {
		t.Fatalf("expected two accepted inputs, got %+v", res)
	}
	if snap := a.Snapshot(0); snap.Sequence != 3 || snap.Checksum != snap.State.Checksum() {
		t.Fatalf("expected snapshot of sequence 3 with a matching checksum, got %+v", snap)
	}
	if a.State().Velocity[2] >= 0 {
		t.Fatalf("expected entity to move forward, got %v", a.State().Velocity)
	}
}

func TestAuthorityMatchesClientSimulation(t *testing.T) {
	cfg := movement.DefaultConfig()
	a := newTestAuthority(cfg, 64, settings.DefaultSettings().Server.Validation)
	sim := movement.NewSimulator(cfg, terrain.Flat{})

	local := groundedSpawn()
	for seq := uint64(1); seq <= 30; seq++ {
		cmd := forward(seq, 1.0/30)
		if seq%10 == 0 {
			cmd.Input.Buttons |= movement.ButtonJump
		}
		local = sim.Simulate(local, cmd.Input).State
		if err := a.HandleInput(cmd); err != nil {
			t.Fatalf("input %d: %v", seq, err)
		}
		if seq%4 == 0 {
			a.Tick()
		}
	}
	a.Tick()

	if a.State().Checksum() != local.Checksum() {
		t.Fatalf("authoritative state diverged from the same inputs simulated locally:\n%+v\n%+v", a.State(), local)
	}
}

func TestAuthorityDiscardsInvalidState(t *testing.T) {
	cfg := movement.DefaultConfig()
	cfg.SpeedTolerance = 0.01
	basics := settings.Basics{Enabled: true, FailBuffer: 1, MaxBuffer: 2, MaxViolations: 2}
	a := newTestAuthority(cfg, 8, basics)

	if err := a.HandleInput(forward(1, 0.1)); err != nil {
		t.Fatalf("handle input: %v", err)
	}
	res := a.Tick()
	if res.Rejected != 1 || res.Punish {
		t.Fatalf("expected one rejected input without punishment, got %+v", res)
	}
	if state := a.State(); state.Position != (mgl64.Vec3{}) || state.Velocity != (mgl64.Vec3{}) {
		t.Fatalf("expected last good state to be kept, got %+v", state)
	}
	if a.Violations() != 1 {
		t.Fatalf("expected one violation, got %v", a.Violations())
	}

	if err := a.HandleInput(forward(2, math.NaN())); err != nil {
		t.Fatalf("handle input: %v", err)
	}
	if res := a.Tick(); !res.Punish {
		t.Fatalf("expected entity to be punished after reaching the maximum violations, got %+v", res)
	}
}

func TestAuthorityRemove(t *testing.T) {
	a := newTestAuthority(movement.DefaultConfig(), 8, settings.DefaultSettings().Server.Validation)
	if err := a.HandleInput(forward(1, 0.05)); err != nil {
		t.Fatalf("handle input: %v", err)
	}
	a.Remove()

	if res := a.Tick(); res.Simulated != 0 {
		t.Fatalf("expected pending input to be discarded on removal, got %+v", res)
	}
	if err := a.HandleInput(forward(2, 0.05)); !errors.Is(err, ErrRemoved) {
		t.Fatalf("expected input after removal to fail, got %v", err)
	}
}

func TestAuthorityStateIsCopy(t *testing.T) {
	a := newTestAuthority(movement.DefaultConfig(), 8, settings.DefaultSettings().Server.Validation)
	a.SetEffects(movement.Effects{{Kind: movement.EffectSpeed, Magnitude: 2}})

	state := a.State()
	state.Effects[0].Magnitude = 100
	if a.State().Effects[0].Magnitude != 2 {
		t.Fatalf("modifying a returned state changed the authoritative state")
	}
}
