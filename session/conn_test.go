package session

import (
	"errors"
	"testing"
	"time"

	"github.com/oomph-ac/netmove/protocol"
	"github.com/sirupsen/logrus"
)

func TestConnMessages(t *testing.T) {
	a, b := Pipe()
	client, server := NewConn(a, logrus.New()), NewConn(b, logrus.New())

	if err := server.WriteMessage(&protocol.Join{EntityID: 12, TickRate: 20}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := server.WriteMessage(&protocol.EntityRemoved{EntityID: 4}); err != nil {
		t.Fatalf("write: %v", err)
	}

	msg, err := client.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if join, ok := msg.(*protocol.Join); !ok || join.EntityID != 12 || join.TickRate != 20 {
		t.Fatalf("expected join for entity 12, got %+v", msg)
	}
	msg, err = client.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if removed, ok := msg.(*protocol.EntityRemoved); !ok || removed.EntityID != 4 {
		t.Fatalf("expected removal of entity 4, got %+v", msg)
	}
}

func TestConnClose(t *testing.T) {
	a, b := Pipe()
	client, server := NewConn(a, logrus.New()), NewConn(b, logrus.New())

	if err := client.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := client.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
	if !client.Closed() {
		t.Fatalf("expected connection to report being closed")
	}
	if err := client.WriteMessage(&protocol.EntityRemoved{}); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected write on closed connection to fail with ErrClosed, got %v", err)
	}
	if _, err := server.ReadMessage(); err == nil {
		t.Fatalf("expected read from a closed pipe to fail")
	}
}

func TestConnMalformedMessage(t *testing.T) {
	a, b := Pipe()
	client := NewConn(a, logrus.New())
	if _, err := b.Write([]byte{0xff, 0xff, 0xff, 0xff, 0x0f}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := client.ReadMessage(); !errors.Is(err, protocol.ErrUnknownMessage) {
		t.Fatalf("expected unknown message error, got %v", err)
	}
}

type measuredConn struct {
	PacketConn
	latency time.Duration
}

func (m measuredConn) Latency() time.Duration {
	return m.latency
}

func TestConnLatency(t *testing.T) {
	a, _ := Pipe()
	if l := NewConn(a, logrus.New()).Latency(); l != 0 {
		t.Fatalf("expected zero latency for a transport that does not measure it, got %v", l)
	}
	conn := NewConn(measuredConn{PacketConn: a, latency: 25 * time.Millisecond}, logrus.New())
	if l := conn.Latency(); l != 25*time.Millisecond {
		t.Fatalf("expected latency of 25ms, got %v", l)
	}
}
