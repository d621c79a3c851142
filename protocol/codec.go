package protocol

import (
	"bytes"
	"fmt"

	"github.com/oomph-ac/netmove/internal"
	"github.com/oomph-ac/netmove/oerror"
	gt "github.com/sandertv/gophertunnel/minecraft/protocol"
)

var (
	ErrUnknownMessage = oerror.New("unknown message id")
	ErrMalformed      = oerror.New("malformed message")
)

// Encode encodes a message, prefixed with its ID, into a new byte slice.
func Encode(msg Message) (b []byte, err error) {
	buf := internal.BufferPool.Get().(*bytes.Buffer)
	defer internal.BufferPool.Put(buf)
	buf.Reset()

	defer func() {
		if r := recover(); r != nil {
			b, err = nil, fmt.Errorf("%w: encoding message %d: %v", ErrMalformed, msg.ID(), r)
		}
	}()

	w := gt.NewWriter(buf, 0)
	id := msg.ID()
	w.Varuint32(&id)
	msg.Marshal(w)

	return bytes.Clone(buf.Bytes()), nil
}

// Decode decodes a single message from b. Any bytes left after the message are an error.
func Decode(b []byte) (msg Message, err error) {
	buf := internal.BufferPool.Get().(*bytes.Buffer)
	defer internal.BufferPool.Put(buf)
	buf.Reset()
	buf.Write(b)

	// The reader panics on malformed data.
	defer func() {
		if r := recover(); r != nil {
			msg, err = nil, fmt.Errorf("%w: %v", ErrMalformed, r)
		}
	}()

	r := gt.NewReader(buf, 0, false)
	var id uint32
	r.Varuint32(&id)

	newMsg, ok := pool[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownMessage, id)
	}
	msg = newMsg()
	msg.Marshal(r)

	if buf.Len() != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes after message %d", ErrMalformed, buf.Len(), id)
	}
	return msg, nil
}
