package client

import (
	"github.com/oomph-ac/netmove/assert"
	"github.com/oomph-ac/netmove/movement"
	"github.com/oomph-ac/netmove/omath"
	"github.com/oomph-ac/netmove/protocol"
	"github.com/sirupsen/logrus"
)

// maxErrorSamples is the number of recent prediction errors kept for statistics.
const maxErrorSamples = 128

// Stats describes how well local prediction matched the authoritative simulation.
type Stats struct {
	// Corrections is the number of snapshots applied, and Exact the number of those that matched
	// the predicted state bit for bit.
	Corrections int
	Exact       int
	// MeanError and StdDevError describe the distance between predicted and authoritative
	// positions over recent snapshots.
	MeanError   float64
	StdDevError float64
}

// Predictor simulates a locally controlled entity ahead of the server and corrects it towards
// the snapshots the server sends. A Predictor is not safe for concurrent use.
type Predictor struct {
	sim       *movement.Simulator
	log       *logrus.Entry
	smoothing float64

	state   movement.State
	history History

	lastAcked     uint64
	lastTimestamp int64
	hasSnapshot   bool

	errors      []float64
	corrections int
	exact       int
}

// NewPredictor creates a predictor for an entity starting at the state spawn. smoothing is the
// share of the position error removed by every snapshot.
func NewPredictor(sim *movement.Simulator, spawn movement.State, smoothing float64, log *logrus.Entry) *Predictor {
	assert.IsTrue(sim != nil, "predictor has no simulator")
	return &Predictor{sim: sim, state: spawn, smoothing: smoothing, log: log}
}

// Predict simulates an input locally and returns the command to send to the server for it. If
// the simulator rejects the input, the command returned is nil.
func (p *Predictor) Predict(input movement.Input) (*protocol.InputCommand, movement.Result) {
	result := p.sim.Simulate(p.state, input)
	if result.Outcome == movement.OutcomeRejected {
		return nil, result
	}
	p.state = result.State

	seq := p.history.nextSeq
	if seq == 0 {
		seq = 1
	}
	p.history.Store(Record{Sequence: seq, Input: input, Predicted: result.State})
	return &protocol.InputCommand{Sequence: seq, Input: input}, result
}

// Reconcile applies an authoritative snapshot to the predicted state. Snapshots older than the
// newest one applied are ignored, in which case false is returned.
func (p *Predictor) Reconcile(snap *protocol.StateSnapshot) bool {
	if p.hasSnapshot && (snap.Sequence < p.lastAcked || snap.Timestamp <= p.lastTimestamp) {
		p.log.Debugf("ignored stale snapshot (seq=%d, timestamp=%d)", snap.Sequence, snap.Timestamp)
		return false
	}
	if snap.Checksum != snap.State.Checksum() {
		p.log.Warnf("snapshot %d has a mismatching checksum", snap.Sequence)
		return false
	}
	p.hasSnapshot = true
	p.lastAcked, p.lastTimestamp = snap.Sequence, snap.Timestamp

	if record, ok := p.history.Get(snap.Sequence); ok {
		p.recordError(record.Predicted.Position.Sub(snap.State.Position).Len())
		if record.Predicted.Checksum() == snap.Checksum {
			p.exact++
		}
	}
	p.corrections++
	p.state = movement.ApplyCorrection(p.state, snap.State, p.smoothing)
	return true
}

// State returns the current predicted state.
func (p *Predictor) State() movement.State {
	return p.state
}

// Pending returns the inputs sent to the server that no snapshot has acknowledged yet.
func (p *Predictor) Pending() []Record {
	return p.history.Unacknowledged(p.lastAcked)
}

// Stats returns statistics about the predictions made so far.
func (p *Predictor) Stats() Stats {
	return Stats{
		Corrections: p.corrections,
		Exact:       p.exact,
		MeanError:   omath.Mean(p.errors),
		StdDevError: omath.StandardDeviation(p.errors),
	}
}

func (p *Predictor) recordError(dist float64) {
	if len(p.errors) == maxErrorSamples {
		copy(p.errors, p.errors[1:])
		p.errors = p.errors[:maxErrorSamples-1]
	}
	p.errors = append(p.errors, dist)
}
