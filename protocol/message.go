package protocol

import (
	gt "github.com/sandertv/gophertunnel/minecraft/protocol"
)

const (
	IDJoin uint32 = iota + 1
	IDConfigSync
	IDInputCommand
	IDStateSnapshot
	IDPositionUpdate
	IDEntityRemoved
)

// Message is a message sent between the authoritative server and its clients. Marshal reads or
// writes the fields of the message depending on the IO passed.
type Message interface {
	ID() uint32
	Marshal(io gt.IO)
}

// pool maps message IDs to functions returning a new message of that ID.
var pool = map[uint32]func() Message{
	IDJoin:           func() Message { return &Join{} },
	IDConfigSync:     func() Message { return &ConfigSync{} },
	IDInputCommand:   func() Message { return &InputCommand{} },
	IDStateSnapshot:  func() Message { return &StateSnapshot{} },
	IDPositionUpdate: func() Message { return &PositionUpdate{} },
	IDEntityRemoved:  func() Message { return &EntityRemoved{} },
}
