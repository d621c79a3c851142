package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/oomph-ac/netmove/interpolation"
	"github.com/oomph-ac/netmove/movement"
	"github.com/oomph-ac/netmove/oerror"
	"github.com/oomph-ac/netmove/protocol"
	"github.com/oomph-ac/netmove/session"
	"github.com/oomph-ac/netmove/settings"
	"github.com/sirupsen/logrus"
	"go.uber.org/atomic"
)

var (
	ErrConfigMismatch = oerror.New("movement config does not match its fingerprint")
	ErrHandshake      = oerror.New("unexpected message during handshake")
	ErrInvalidInput   = oerror.New("input rejected by the simulator")
)

// Config holds what a Client needs besides the movement config, which the server provides.
type Config struct {
	Interpolation       interpolation.Config
	CorrectionSmoothing float64
	// Ground must describe the same terrain the server simulates on.
	Ground  movement.GroundProvider
	Raycast movement.RaycastProvider
}

// ConfigFromSettings returns a client config using the settings passed.
func ConfigFromSettings(s settings.Settings, ground movement.GroundProvider) Config {
	return Config{
		Interpolation:       s.Interpolation,
		CorrectionSmoothing: s.Client.CorrectionSmoothing,
		Ground:              ground,
	}
}

// Client is a connection to a server controlling a single entity. It predicts the movement of
// its own entity and interpolates every other entity.
type Client struct {
	log  *logrus.Logger
	conn *session.Conn

	id       uint64
	tickRate uint32
	config   movement.Config

	mu        sync.Mutex
	predictor *Predictor

	interp *interpolation.System
	closed atomic.Bool
}

// Dial connects to the server at the address passed and completes the handshake.
func Dial(ctx context.Context, log *logrus.Logger, addr string, conf Config) (*Client, error) {
	conn, err := session.Dial(ctx, addr, log)
	if err != nil {
		return nil, err
	}
	c, err := New(ctx, log, conn, conf)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	return c, nil
}

// New completes the handshake over an established connection: the server assigns an entity,
// distributes its movement config and sends the spawn state of the entity.
func New(ctx context.Context, log *logrus.Logger, conn *session.Conn, conf Config) (*Client, error) {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()

	join, cs, spawn, err := handshake(conn)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	entry := log.WithField("entity", join.EntityID)
	sim := movement.NewSimulator(cs.Config, conf.Ground)
	sim.Raycast = conf.Raycast
	predictor := NewPredictor(sim, spawn.State, conf.CorrectionSmoothing, entry)
	predictor.Reconcile(spawn)

	interp := interpolation.NewSystem(conf.Interpolation, log)
	interp.SetLocalEntity(join.EntityID)

	entry.Infof("joined server with tick rate %d", join.TickRate)
	return &Client{
		log:       log,
		conn:      conn,
		id:        join.EntityID,
		tickRate:  join.TickRate,
		config:    cs.Config,
		predictor: predictor,
		interp:    interp,
	}, nil
}

// ID returns the ID of the entity controlled by the client.
func (c *Client) ID() uint64 {
	return c.id
}

// TickRate returns the tick rate of the server.
func (c *Client) TickRate() uint32 {
	return c.tickRate
}

// MovementConfig returns the movement config received from the server.
func (c *Client) MovementConfig() movement.Config {
	return c.config
}

// Interpolation returns the interpolation system used for remote entities.
func (c *Client) Interpolation() *interpolation.System {
	return c.interp
}

// Step predicts an input locally and sends it to the server. It returns the predicted state.
func (c *Client) Step(input movement.Input) (movement.State, error) {
	c.mu.Lock()
	cmd, result := c.predictor.Predict(input)
	c.mu.Unlock()

	if result.Outcome == movement.OutcomeRejected {
		return result.State, ErrInvalidInput
	}
	if err := c.conn.WriteMessage(cmd); err != nil {
		return result.State, err
	}
	return result.State, nil
}

// Latency returns the latency of the connection to the server, or zero if the transport does not
// measure it.
func (c *Client) Latency() time.Duration {
	return c.conn.Latency()
}

// State returns the current predicted state of the entity.
func (c *Client) State() movement.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.predictor.State()
}

// Stats returns prediction statistics.
func (c *Client) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.predictor.Stats()
}

// Run reads messages from the server until the connection is closed or the context is cancelled.
func (c *Client) Run(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() { _ = c.Close() })
	defer stop()

	for {
		msg, err := c.conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if c.closed.Load() || errors.Is(err, session.ErrClosed) {
				return nil
			}
			return err
		}
		if err := c.handle(msg); err != nil {
			return err
		}
	}
}

func (c *Client) handle(msg protocol.Message) error {
	switch msg := msg.(type) {
	case *protocol.StateSnapshot:
		if msg.EntityID != c.id {
			c.log.Debugf("snapshot for entity %d that is not ours", msg.EntityID)
			return nil
		}
		c.mu.Lock()
		c.predictor.Reconcile(msg)
		c.mu.Unlock()
	case *protocol.PositionUpdate:
		c.interp.OnPositionUpdate(msg.EntityID, msg.Update())
	case *protocol.EntityRemoved:
		c.interp.OnEntityRemoved(msg.EntityID)
	case *protocol.ConfigSync:
		if err := verifyConfig(msg); err != nil {
			return err
		}
		if msg.Config != c.config {
			return fmt.Errorf("%w: server changed its movement config mid session", ErrConfigMismatch)
		}
	default:
		c.log.Debugf("unexpected message %T from server", msg)
	}
	return nil
}

// Close closes the connection to the server.
func (c *Client) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	return c.conn.Close()
}

func verifyConfig(cs *protocol.ConfigSync) error {
	if cs.Config.Fingerprint() != cs.Fingerprint {
		return ErrConfigMismatch
	}
	if err := cs.Config.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrConfigMismatch, err)
	}
	return nil
}

// handshake reads the messages the server sends when an entity joins.
func handshake(conn *session.Conn) (*protocol.Join, *protocol.ConfigSync, *protocol.StateSnapshot, error) {
	join, err := expect[*protocol.Join](conn)
	if err != nil {
		return nil, nil, nil, err
	}
	cs, err := expect[*protocol.ConfigSync](conn)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := verifyConfig(cs); err != nil {
		return nil, nil, nil, err
	}
	spawn, err := expect[*protocol.StateSnapshot](conn)
	if err != nil {
		return nil, nil, nil, err
	}
	if spawn.EntityID != join.EntityID {
		return nil, nil, nil, fmt.Errorf("%w: spawn snapshot for entity %d, joined as %d", ErrHandshake, spawn.EntityID, join.EntityID)
	}
	return join, cs, spawn, nil
}

// expect reads the next message, failing if it is not of type T.
func expect[T protocol.Message](conn *session.Conn) (T, error) {
	var zero T
	msg, err := conn.ReadMessage()
	if err != nil {
		return zero, err
	}
	m, ok := msg.(T)
	if !ok {
		return zero, fmt.Errorf("%w: got %T, expected %T", ErrHandshake, msg, zero)
	}
	return m, nil
}
