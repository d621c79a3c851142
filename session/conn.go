package session

import (
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/oomph-ac/netmove/oerror"
	"github.com/oomph-ac/netmove/protocol"
	"github.com/sirupsen/logrus"
	"go.uber.org/atomic"
)

var ErrClosed = oerror.New("session: connection closed")

// PacketConn is a reliable, ordered connection that delivers data in the same packets it was
// written in. *raknet.Conn implements it.
type PacketConn interface {
	ReadPacket() ([]byte, error)
	Write(b []byte) (int, error)
	Close() error
	RemoteAddr() net.Addr
}

// Conn reads and writes protocol messages over a PacketConn. ReadMessage must only be called from
// one goroutine at a time; WriteMessage is safe for concurrent use.
type Conn struct {
	conn PacketConn
	log  *logrus.Logger

	writeMu sync.Mutex
	closed  atomic.Bool
}

// NewConn wraps a PacketConn so that it can be used to send and receive messages.
func NewConn(conn PacketConn, log *logrus.Logger) *Conn {
	return &Conn{conn: conn, log: log}
}

// WriteMessage encodes and writes a single message to the connection.
func (c *Conn) WriteMessage(msg protocol.Message) (err error) {
	defer c.recover("write", &err)
	if c.closed.Load() {
		return ErrClosed
	}

	b, err := protocol.Encode(msg)
	if err != nil {
		return err
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if _, err := c.conn.Write(b); err != nil {
		return oerror.New("session: error writing message %d: %v", msg.ID(), err)
	}
	return nil
}

// ReadMessage blocks until the next message is received and returns it.
func (c *Conn) ReadMessage() (msg protocol.Message, err error) {
	defer c.recover("read", &err)
	if c.closed.Load() {
		return nil, ErrClosed
	}

	b, err := c.conn.ReadPacket()
	if err != nil {
		if c.closed.Load() {
			return nil, ErrClosed
		}
		return nil, err
	}
	return protocol.Decode(b)
}

// RemoteAddr ...
func (c *Conn) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}

// Latency returns the round trip time of the connection halved, if the underlying connection
// measures it.
func (c *Conn) Latency() time.Duration {
	if l, ok := c.conn.(interface{ Latency() time.Duration }); ok {
		return l.Latency()
	}
	return 0
}

// Close closes the connection. Calling Close more than once has no effect.
func (c *Conn) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	return c.conn.Close()
}

// Closed returns true if Close was called.
func (c *Conn) Closed() bool {
	return c.closed.Load()
}

// recover reports a panic raised while reading or writing to sentry and turns it into an error.
func (c *Conn) recover(op string, err *error) {
	v := recover()
	if v == nil {
		return
	}
	c.log.Errorf("session: %s panic: %v", op, v)

	hub := sentry.CurrentHub().Clone()
	hub.ConfigureScope(func(scope *sentry.Scope) {
		scope.SetTag("conn_op", op)
		scope.SetTag("remote_addr", c.conn.RemoteAddr().String())
	})
	hub.Recover(oerror.New(fmt.Sprintf("%v", v)))
	hub.Flush(time.Second * 5)

	*err = oerror.New("session: %s panic: %v", op, v)
}
