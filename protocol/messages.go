package protocol

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/oomph-ac/netmove/interpolation"
	"github.com/oomph-ac/netmove/movement"
	gt "github.com/sandertv/gophertunnel/minecraft/protocol"
)

// Join is sent by the server to a client once it is connected, assigning the entity it controls.
type Join struct {
	EntityID uint64
	// TickRate is the number of authoritative ticks the server runs per second.
	TickRate uint32
}

// ID ...
func (*Join) ID() uint32 { return IDJoin }

// Marshal ...
func (pk *Join) Marshal(io gt.IO) {
	io.Varuint64(&pk.EntityID)
	io.Varuint32(&pk.TickRate)
}

// ConfigSync distributes the movement config of the server to a client. Fingerprint must match
// the fingerprint of Config.
type ConfigSync struct {
	Config      movement.Config
	Fingerprint uint64
}

// NewConfigSync returns a ConfigSync carrying the config passed.
func NewConfigSync(cfg movement.Config) *ConfigSync {
	return &ConfigSync{Config: cfg, Fingerprint: cfg.Fingerprint()}
}

// ID ...
func (*ConfigSync) ID() uint32 { return IDConfigSync }

// Marshal ...
func (pk *ConfigSync) Marshal(io gt.IO) {
	Config(io, &pk.Config)
	io.Uint64(&pk.Fingerprint)
}

// InputCommand carries a single tick of input from a client to the server.
type InputCommand struct {
	// Sequence is a number increasing by one with every input sent by a client.
	Sequence uint64
	Input    movement.Input
}

// ID ...
func (*InputCommand) ID() uint32 { return IDInputCommand }

// Marshal ...
func (pk *InputCommand) Marshal(io gt.IO) {
	io.Varuint64(&pk.Sequence)

	buttons := uint16(pk.Input.Buttons)
	io.Uint16(&buttons)
	pk.Input.Buttons = movement.Buttons(buttons)

	Quat(io, &pk.Input.View)
	Vec3(io, &pk.Input.MoveVector)
	Float64(io, &pk.Input.Delta)
}

// StateSnapshot is the authoritative state of an entity, sent to the client controlling it.
type StateSnapshot struct {
	EntityID uint64
	// Sequence is the sequence of the last input the server simulated for the entity.
	Sequence uint64
	// Timestamp is the server time, in milliseconds, at which the snapshot was taken.
	Timestamp int64
	State     movement.State
	// Checksum is the checksum of State, used to spot divergence between client and server.
	Checksum uint64
}

// ID ...
func (*StateSnapshot) ID() uint32 { return IDStateSnapshot }

// Marshal ...
func (pk *StateSnapshot) Marshal(io gt.IO) {
	io.Varuint64(&pk.EntityID)
	io.Varuint64(&pk.Sequence)
	io.Int64(&pk.Timestamp)
	State(io, &pk.State)
	io.Uint64(&pk.Checksum)
}

// PositionUpdate is a lightweight transform sample of an entity, broadcast to every client that
// does not control it.
type PositionUpdate struct {
	EntityID uint64
	Position mgl64.Vec3
	// Rotation is optional.
	Rotation *mgl64.Quat
	// Timestamp is the server time, in milliseconds, at which the sample was taken.
	Timestamp int64
}

// ID ...
func (*PositionUpdate) ID() uint32 { return IDPositionUpdate }

// Marshal ...
func (pk *PositionUpdate) Marshal(io gt.IO) {
	io.Varuint64(&pk.EntityID)
	CompactVec3(io, &pk.Position)
	OptionalCompactQuat(io, &pk.Rotation)
	io.Int64(&pk.Timestamp)
}

// Update returns the interpolation update carried by the message.
func (pk *PositionUpdate) Update() interpolation.Update {
	return interpolation.Update{Position: pk.Position, Rotation: pk.Rotation, Timestamp: pk.Timestamp}
}

// EntityRemoved notifies clients that an entity no longer exists.
type EntityRemoved struct {
	EntityID uint64
}

// ID ...
func (*EntityRemoved) ID() uint32 { return IDEntityRemoved }

// Marshal ...
func (pk *EntityRemoved) Marshal(io gt.IO) {
	io.Varuint64(&pk.EntityID)
}
