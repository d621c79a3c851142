package client

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/oomph-ac/netmove/movement"
	"github.com/oomph-ac/netmove/omath"
	"github.com/oomph-ac/netmove/protocol"
	"github.com/oomph-ac/netmove/terrain"
	"github.com/sirupsen/logrus"
)

func spawnState() movement.State {
	return movement.State{
		Rotation:     mgl64.QuatIdent(),
		Grounded:     true,
		GroundNormal: omath.Up,
		MoveState:    movement.MoveStateIdle,
	}
}

func forwardInput() movement.Input {
	return movement.Input{Buttons: movement.ButtonForward, View: mgl64.QuatIdent(), Delta: 1.0 / 30}
}

func newTestPredictor(smoothing float64) (*Predictor, *movement.Simulator) {
	sim := movement.NewSimulator(movement.DefaultConfig(), terrain.Flat{})
	return NewPredictor(sim, spawnState(), smoothing, logrus.NewEntry(logrus.New())), sim
}

func snapshot(seq uint64, ts int64, state movement.State) *protocol.StateSnapshot {
	return &protocol.StateSnapshot{EntityID: 1, Sequence: seq, Timestamp: ts, State: state, Checksum: state.Checksum()}
}

func TestPredictorSequences(t *testing.T) {
	p, _ := newTestPredictor(movement.DefaultCorrectionSmoothing)
	for i := uint64(1); i <= 3; i++ {
		cmd, res := p.Predict(forwardInput())
		if cmd == nil || cmd.Sequence != i {
			t.Fatalf("expected command with sequence %d, got %+v", i, cmd)
		}
		if res.Outcome != movement.OutcomeNormal {
			t.Fatalf("expected normal outcome, got %v", res.Outcome)
		}
	}
	if n := len(p.Pending()); n != 3 {
		t.Fatalf("expected 3 pending inputs, got %d", n)
	}
	if p.State().Position[2] >= 0 {
		t.Fatalf("expected the entity to move forward, got %v", p.State().Position)
	}
}

func TestPredictorRejectedInput(t *testing.T) {
	p, _ := newTestPredictor(movement.DefaultCorrectionSmoothing)
	in := forwardInput()
	in.Delta = math.NaN()
	cmd, res := p.Predict(in)
	if cmd != nil || res.Outcome != movement.OutcomeRejected {
		t.Fatalf("expected rejected input without a command, got %+v %v", cmd, res.Outcome)
	}
	if len(p.Pending()) != 0 {
		t.Fatalf("rejected input must not be recorded")
	}
	if cmd, _ := p.Predict(forwardInput()); cmd.Sequence != 1 {
		t.Fatalf("expected sequence 1 after a rejected input, got %d", cmd.Sequence)
	}
}

func TestPredictorExactMatch(t *testing.T) {
	p, sim := newTestPredictor(movement.DefaultCorrectionSmoothing)
	p.Predict(forwardInput())
	p.Predict(forwardInput())

	server := sim.Simulate(spawnState(), forwardInput()).State
	if !p.Reconcile(snapshot(1, 33, server)) {
		t.Fatalf("expected snapshot to be applied")
	}
	stats := p.Stats()
	if stats.Corrections != 1 || stats.Exact != 1 || stats.MeanError != 0 {
		t.Fatalf("expected one exact correction, got %+v", stats)
	}
	if n := len(p.Pending()); n != 1 {
		t.Fatalf("expected 1 pending input, got %d", n)
	}
}

func TestPredictorStaleSnapshot(t *testing.T) {
	p, _ := newTestPredictor(1)
	moved := spawnState()
	moved.Position = mgl64.Vec3{4, 0, 0}
	if !p.Reconcile(snapshot(2, 100, moved)) {
		t.Fatalf("expected first snapshot to be applied")
	}

	old := spawnState()
	if p.Reconcile(snapshot(1, 66, old)) {
		t.Fatalf("expected older sequence to be ignored")
	}
	if p.Reconcile(snapshot(2, 100, old)) {
		t.Fatalf("expected duplicate timestamp to be ignored")
	}
	if p.State().Position != moved.Position {
		t.Fatalf("stale snapshots must not change the state, got %v", p.State().Position)
	}
}

func TestPredictorChecksumMismatch(t *testing.T) {
	p, _ := newTestPredictor(1)
	snap := snapshot(1, 33, spawnState())
	snap.Checksum++
	if p.Reconcile(snap) {
		t.Fatalf("expected snapshot with a mismatching checksum to be ignored")
	}
	if p.Stats().Corrections != 0 {
		t.Fatalf("expected no corrections")
	}
}

func TestPredictorConverges(t *testing.T) {
	p, _ := newTestPredictor(0.5)
	target := spawnState()
	target.Position = mgl64.Vec3{10, 0, 0}
	for i := int64(1); i <= 30; i++ {
		p.Reconcile(snapshot(0, i*33, target))
	}
	if d := p.State().Position.Sub(target.Position).Len(); d > 1e-6 {
		t.Fatalf("expected predicted position to converge, distance %v", d)
	}
	if stats := p.Stats(); stats.Corrections != 30 || stats.Exact != 0 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}
