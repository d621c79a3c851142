package server

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/elliotchance/orderedmap/v2"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/oomph-ac/netmove/movement"
	"github.com/oomph-ac/netmove/oerror"
	"github.com/oomph-ac/netmove/protocol"
	"github.com/oomph-ac/netmove/session"
	"github.com/oomph-ac/netmove/settings"
	"github.com/oomph-ac/netmove/worker"
	"github.com/sirupsen/logrus"
	"go.uber.org/atomic"
)

var ErrServerClosed = oerror.New("server closed")

// Config holds the world a Server simulates in.
type Config struct {
	Settings settings.Settings
	// Ground is used for ground queries by every entity. It must be safe for concurrent use.
	Ground movement.GroundProvider
	// Raycast is optional. It must be safe for concurrent use.
	Raycast movement.RaycastProvider
	// Spawn is the position new entities spawn at.
	Spawn mgl64.Vec3
}

type entry struct {
	auth *Authority
	conn *session.Conn
}

// Server runs the authoritative simulation of every connected entity at a fixed tick rate and
// distributes the results to clients.
type Server struct {
	log      *logrus.Logger
	settings settings.Settings
	sim      *movement.Simulator
	spawn    mgl64.Vec3

	mu       sync.Mutex
	entities *orderedmap.OrderedMap[uint64, *entry]
	nextID   uint64
	tick     uint64

	listener *session.Listener
	closed   atomic.Bool
}

// New creates a server from the config passed.
func New(log *logrus.Logger, conf Config) (*Server, error) {
	if err := conf.Settings.Validate(); err != nil {
		return nil, err
	}
	if conf.Ground == nil && conf.Raycast == nil {
		return nil, oerror.New("server: a ground or raycast provider is required")
	}
	sim := &movement.Simulator{Config: conf.Settings.Movement, Ground: conf.Ground, Raycast: conf.Raycast}
	if log.IsLevelEnabled(logrus.TraceLevel) {
		sim.Debugf = log.WithField("component", "simulator").Tracef
	}
	return &Server{
		log:      log,
		settings: conf.Settings,
		sim:      sim,
		spawn:    conf.Spawn,
		entities: orderedmap.NewOrderedMap[uint64, *entry](),
	}, nil
}

// ListenAndServe listens on the address in the settings of the server and serves connections until
// the context is cancelled or the server is closed.
func (s *Server) ListenAndServe(ctx context.Context) error {
	l, err := session.Listen(s.settings.Server.Address, s.log)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.listener = l
	s.mu.Unlock()
	s.log.Infof("server is now listening on %v", l.Addr())

	go func() {
		<-ctx.Done()
		_ = s.Close()
	}()
	go s.acceptLoop(l)
	return s.Run(ctx)
}

func (s *Server) acceptLoop(l *session.Listener) {
	for {
		conn, err := l.Accept()
		if err != nil {
			if !s.closed.Load() {
				s.log.Errorf("error accepting connection: %v", err)
			}
			return
		}
		if _, err := s.Join(conn); err != nil {
			s.log.Errorf("error joining %v: %v", conn.RemoteAddr(), err)
			_ = conn.Close()
		}
	}
}

// Join spawns an entity controlled by the connection passed and starts reading its input. It
// returns the ID of the entity.
func (s *Server) Join(conn *session.Conn) (uint64, error) {
	if s.closed.Load() {
		return 0, ErrServerClosed
	}

	s.mu.Lock()
	s.nextID++
	id := s.nextID
	spawn := movement.NewState(s.spawn, mgl64.QuatIdent())
	auth := NewAuthority(id, s.sim, spawn, s.settings.Server.MaxQueuedInputs, s.settings.Server.Validation, s.log)
	timestamp := s.timestamp()
	s.mu.Unlock()

	for _, msg := range []protocol.Message{
		&protocol.Join{EntityID: id, TickRate: uint32(s.settings.Server.TickRate)},
		protocol.NewConfigSync(s.settings.Movement),
		auth.Snapshot(timestamp),
	} {
		if err := conn.WriteMessage(msg); err != nil {
			return 0, err
		}
	}

	s.mu.Lock()
	s.entities.Set(id, &entry{auth: auth, conn: conn})
	s.mu.Unlock()

	s.log.WithField("entity", id).Infof("%v joined the server (latency=%v)", conn.RemoteAddr(), conn.Latency())
	go s.readLoop(id, auth, conn)
	return id, nil
}

func (s *Server) readLoop(id uint64, auth *Authority, conn *session.Conn) {
	log := s.log.WithField("entity", id)
	defer s.Remove(id)
	for {
		msg, err := conn.ReadMessage()
		if err != nil {
			if !conn.Closed() && !errors.Is(err, session.ErrClosed) {
				log.Debugf("error reading message: %v", err)
			}
			return
		}

		switch msg := msg.(type) {
		case *protocol.InputCommand:
			if err := auth.HandleInput(msg); err != nil {
				if !isInputError(err) {
					return
				}
				log.Debugf("dropped input %d: %v", msg.Sequence, err)
			}
		default:
			log.Debugf("unexpected message %T from client", msg)
		}
	}
}

// Remove removes an entity from the server, discarding its pending input and closing its
// connection. Every other client is notified.
func (s *Server) Remove(id uint64) {
	s.mu.Lock()
	e, ok := s.entities.Get(id)
	if !ok {
		s.mu.Unlock()
		return
	}
	s.entities.Delete(id)
	e.auth.Remove()
	others := s.connsLocked()
	s.mu.Unlock()

	_ = e.conn.Close()
	s.log.WithField("entity", id).Info("entity removed")
	for _, conn := range others {
		_ = conn.WriteMessage(&protocol.EntityRemoved{EntityID: id})
	}
}

// Entity returns the authority of an entity.
func (s *Server) Entity(id uint64) (*Authority, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entities.Get(id)
	if !ok {
		return nil, false
	}
	return e.auth, true
}

// Len returns the number of entities on the server.
func (s *Server) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entities.Len()
}

// Run ticks the server at its tick rate until the context is cancelled or the server is closed.
func (s *Server) Run(ctx context.Context) error {
	t := time.NewTicker(time.Second / time.Duration(s.settings.Server.TickRate))
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			if s.closed.Load() {
				return ErrServerClosed
			}
			s.Tick()
		}
	}
}

// Tick runs a single server tick: every entity simulates its queued input, after which snapshots
// and position updates are sent out.
func (s *Server) Tick() {
	s.mu.Lock()
	s.tick++
	tick, timestamp := s.tick, s.timestamp()
	entries := make([]*entry, 0, s.entities.Len())
	for el := s.entities.Front(); el != nil; el = el.Next() {
		entries = append(entries, el.Value)
	}
	s.mu.Unlock()

	results := make([]TickResult, len(entries))
	jobs := make([]func(), len(entries))
	for i, e := range entries {
		jobs[i] = func() { results[i] = e.auth.Tick() }
	}
	worker.Parallel(jobs...)

	for i, e := range entries {
		if results[i].Punish {
			s.log.WithField("entity", e.auth.ID()).Warn("removed for exceeding the maximum amount of movement violations")
			s.Remove(e.auth.ID())
		}
	}

	snapshot := tick%uint64(s.settings.Server.SnapshotInterval) == 0
	for _, e := range entries {
		if e.auth.Removed() {
			continue
		}
		if snapshot {
			_ = e.conn.WriteMessage(e.auth.Snapshot(timestamp))
		}
		update := e.auth.PositionUpdate(timestamp)
		for _, other := range entries {
			if other == e || other.auth.Removed() {
				continue
			}
			_ = other.conn.WriteMessage(update)
		}
	}
}

// Close closes the listener of the server and the connections of every entity.
func (s *Server) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	s.mu.Lock()
	l := s.listener
	ids := make([]uint64, 0, s.entities.Len())
	for el := s.entities.Front(); el != nil; el = el.Next() {
		ids = append(ids, el.Key)
	}
	s.mu.Unlock()

	for _, id := range ids {
		s.Remove(id)
	}
	if l != nil {
		return l.Close()
	}
	return nil
}

// timestamp returns the server time of the current tick in milliseconds. The server mutex must be
// held.
func (s *Server) timestamp() int64 {
	return int64(s.tick) * 1000 / int64(s.settings.Server.TickRate)
}

// connsLocked returns the connections of every entity. The server mutex must be held.
func (s *Server) connsLocked() []*session.Conn {
	conns := make([]*session.Conn, 0, s.entities.Len())
	for el := s.entities.Front(); el != nil; el = el.Next() {
		conns = append(conns, el.Value.conn)
	}
	return conns
}
