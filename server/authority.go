package server

import (
	"errors"
	"sync"

	"github.com/elliotchance/orderedmap/v2"
	"github.com/oomph-ac/netmove/assert"
	"github.com/oomph-ac/netmove/movement"
	"github.com/oomph-ac/netmove/oerror"
	"github.com/oomph-ac/netmove/protocol"
	"github.com/oomph-ac/netmove/settings"
	"github.com/sirupsen/logrus"
)

var (
	ErrRemoved    = oerror.New("entity was removed")
	ErrStaleInput = oerror.New("input is not newer than the last input received")
	ErrQueueFull  = oerror.New("input queue is full")
)

// TickResult describes what happened to an entity during a server tick.
type TickResult struct {
	// Simulated is the number of inputs simulated, and Rejected the number of those whose result
	// was discarded.
	Simulated int
	Rejected  int
	// Punish is true if the entity reached the maximum amount of violations.
	Punish bool
}

// Authority owns the authoritative state of a single entity. Clients only ever send input: the
// authority simulates it, validates the result and keeps the last valid state when validation
// fails. Authority is safe for concurrent use.
type Authority struct {
	id  uint64
	sim *movement.Simulator
	log *logrus.Entry

	mu        sync.Mutex
	state     movement.State
	queue     []*protocol.InputCommand
	maxQueued int
	// received is the sequence of the newest input queued, and processed the sequence of the
	// newest input simulated.
	received, processed uint64
	removed             bool

	detection *Detection
}

// NewAuthority creates an authority for the entity with the ID passed, starting at the state spawn.
func NewAuthority(id uint64, sim *movement.Simulator, spawn movement.State, maxQueued int, validation settings.Basics, log *logrus.Logger) *Authority {
	assert.IsTrue(sim != nil, "authority for entity %d has no simulator", id)
	assert.IsTrue(maxQueued > 0, "authority for entity %d has no input queue (max=%d)", id, maxQueued)
	return &Authority{
		id:        id,
		sim:       sim,
		log:       log.WithField("entity", id),
		state:     spawn,
		maxQueued: maxQueued,
		detection: NewDetection("Movement", "A", validation),
	}
}

// ID returns the ID of the entity.
func (a *Authority) ID() uint64 {
	return a.id
}

// HandleInput queues an input to be simulated on the next tick. Inputs must arrive with
// increasing sequence numbers; duplicates and reordered inputs are rejected.
func (a *Authority) HandleInput(cmd *protocol.InputCommand) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	switch {
	case a.removed:
		return ErrRemoved
	case cmd.Sequence <= a.received:
		return ErrStaleInput
	case len(a.queue) >= a.maxQueued:
		return ErrQueueFull
	}
	a.received = cmd.Sequence
	a.queue = append(a.queue, cmd)
	return nil
}

// Tick simulates every queued input in order.
func (a *Authority) Tick() TickResult {
	a.mu.Lock()
	defer a.mu.Unlock()

	var res TickResult
	for _, cmd := range a.queue {
		res.Simulated++
		if err := a.apply(cmd); err != nil {
			res.Rejected++
			extra := orderedmap.NewOrderedMap[string, any]()
			extra.Set("seq", cmd.Sequence)
			extra.Set("reason", err.Error())
			if a.detection.Fail(a.log, extra) {
				res.Punish = true
			}
			continue
		}
		a.detection.Debuff(0.05)
	}
	a.queue = a.queue[:0]
	return res
}

// apply simulates a single input, keeping the resulting state only if it is valid.
func (a *Authority) apply(cmd *protocol.InputCommand) error {
	a.processed = cmd.Sequence

	result := a.sim.Simulate(a.state, cmd.Input)
	if result.Outcome == movement.OutcomeRejected {
		return oerror.New("invalid delta %v", cmd.Input.Delta)
	}
	if err := movement.Check(result.State, a.sim.Config); err != nil {
		a.log.Debugf("discarded simulated state: %v", err)
		return err
	}
	if result.Clamped {
		a.log.Tracef("clamped delta %v to %v", cmd.Input.Delta, result.Delta)
	}
	a.state = result.State
	return nil
}

// SetEffects replaces the status effects of the entity.
func (a *Authority) SetEffects(effects movement.Effects) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.state.Effects = append(movement.Effects(nil), effects...)
}

// State returns a copy of the current authoritative state.
func (a *Authority) State() movement.State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return copyState(a.state)
}

// Snapshot returns the authoritative state of the entity as a message for its owner.
func (a *Authority) Snapshot(timestamp int64) *protocol.StateSnapshot {
	a.mu.Lock()
	defer a.mu.Unlock()

	state := copyState(a.state)
	return &protocol.StateSnapshot{
		EntityID:  a.id,
		Sequence:  a.processed,
		Timestamp: timestamp,
		State:     state,
		Checksum:  state.Checksum(),
	}
}

// PositionUpdate returns the current transform of the entity as a message for observers.
func (a *Authority) PositionUpdate(timestamp int64) *protocol.PositionUpdate {
	a.mu.Lock()
	defer a.mu.Unlock()

	rot := a.state.Rotation
	return &protocol.PositionUpdate{
		EntityID:  a.id,
		Position:  a.state.Position,
		Rotation:  &rot,
		Timestamp: timestamp,
	}
}

// Violations returns the current amount of violations of the entity.
func (a *Authority) Violations() float32 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.detection.Violations
}

// Remove marks the entity as removed and discards every pending input. Inputs received afterwards
// fail with ErrRemoved.
func (a *Authority) Remove() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.removed = true
	a.queue = nil
}

// Removed ...
func (a *Authority) Removed() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.removed
}

func copyState(s movement.State) movement.State {
	if s.AirTime != nil {
		v := *s.AirTime
		s.AirTime = &v
	}
	s.Effects = append(movement.Effects(nil), s.Effects...)
	return s
}

// isInputError returns true for errors caused by the input itself rather than by the connection.
func isInputError(err error) bool {
	return errors.Is(err, ErrStaleInput) || errors.Is(err, ErrQueueFull)
}
