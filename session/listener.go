package session

import (
	"context"
	"net"

	"github.com/oomph-ac/netmove/oerror"
	"github.com/sandertv/go-raknet"
	"github.com/sirupsen/logrus"
)

// Listener accepts message connections over RakNet.
type Listener struct {
	l   *raknet.Listener
	log *logrus.Logger
}

// Listen starts listening for connections on the UDP address passed.
func Listen(addr string, log *logrus.Logger) (*Listener, error) {
	l, err := raknet.Listen(addr)
	if err != nil {
		return nil, oerror.New("session: error listening on %v: %v", addr, err)
	}
	return &Listener{l: l, log: log}, nil
}

// Accept blocks until the next connection is established and returns it. An error is returned if
// the Listener was closed.
func (l *Listener) Accept() (*Conn, error) {
	c, err := l.l.Accept()
	if err != nil {
		return nil, err
	}
	pc, ok := c.(PacketConn)
	if !ok {
		_ = c.Close()
		return nil, oerror.New("session: accepted connection of unexpected type %T", c)
	}
	return NewConn(pc, l.log), nil
}

// Addr returns the address the Listener is bound to.
func (l *Listener) Addr() net.Addr {
	return l.l.Addr()
}

// Close closes the Listener. Connections already accepted are not closed.
func (l *Listener) Close() error {
	return l.l.Close()
}

// Dial connects to a Listener at the address passed.
func Dial(ctx context.Context, addr string, log *logrus.Logger) (*Conn, error) {
	c, err := raknet.DialContext(ctx, addr)
	if err != nil {
		return nil, oerror.New("session: error dialing %v: %v", addr, err)
	}
	return NewConn(c, log), nil
}
