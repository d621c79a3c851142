package interpolation

import (
	"sync"

	"github.com/elliotchance/orderedmap/v2"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/oomph-ac/netmove/omath"
	"github.com/sirupsen/logrus"
)

// Update is a position update received for a remote entity.
type Update struct {
	Position mgl64.Vec3
	// Rotation is optional. When nil, the rotation of the previous sample is kept.
	Rotation *mgl64.Quat
	// Timestamp is the sender's timestamp of the update. Updates that are not newer than the
	// newest buffered one are discarded.
	Timestamp int64
}

// EntityTransform is the rendered transform of one entity for a frame.
type EntityTransform struct {
	ID   uint64
	Mode Mode
	Transform
}

// System smooths the movement of every entity that is not controlled locally. Updates may arrive
// on any goroutine; Advance is called once per render frame.
type System struct {
	mu  sync.Mutex
	cfg Config
	log *logrus.Logger

	now float64

	tracks *orderedmap.OrderedMap[uint64, *track]
	// removed holds the time at which recently removed entities were removed, oldest first.
	removed *orderedmap.OrderedMap[uint64, float64]

	local    uint64
	hasLocal bool
}

// NewSystem creates an interpolation system. A nil logger discards all logs.
func NewSystem(cfg Config, log *logrus.Logger) *System {
	if log == nil {
		log = logrus.New()
		log.SetLevel(logrus.PanicLevel)
	}
	return &System{
		cfg:     cfg,
		log:     log,
		tracks:  orderedmap.NewOrderedMap[uint64, *track](),
		removed: orderedmap.NewOrderedMap[uint64, float64](),
	}
}

// SetLocalEntity marks the entity passed as locally controlled. Updates for it are ignored and any
// state already tracked for it is dropped.
func (s *System) SetLocalEntity(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.local, s.hasLocal = id, true
	s.tracks.Delete(id)
}

// Now returns the local time of the system in seconds. It starts at zero and advances with every
// call to Advance.
func (s *System) Now() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// OnPositionUpdate buffers an update for a remote entity, tracking the entity if it is not yet
// known. It returns false if the update was ignored.
func (s *System) OnPositionUpdate(id uint64, u Update) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.hasLocal && id == s.local {
		return false
	}
	if _, ok := s.removed.Get(id); ok {
		return false
	}
	if !omath.FiniteVec3(u.Position) || (u.Rotation != nil && !omath.FiniteQuat(*u.Rotation)) {
		s.log.WithField("entity", id).Debug("interpolation: dropped non-finite update")
		return false
	}

	tr, ok := s.tracks.Get(id)
	if !ok {
		tr = newTrack(s.cfg.Capacity)
		s.tracks.Set(id, tr)
	} else if !tr.accepts(u.Timestamp) {
		s.log.WithField("entity", id).Debugf("interpolation: dropped out of order update (timestamp=%d)", u.Timestamp)
		return false
	}

	rot := mgl64.QuatIdent()
	if u.Rotation != nil {
		if l := u.Rotation.Len(); l > 1e-9 {
			rot = u.Rotation.Normalize()
		}
	} else if latest, ok := tr.samples.Latest(); ok {
		rot = latest.Rotation
	}
	tr.add(Sample{Position: u.Position, Rotation: rot, Time: s.now, Timestamp: u.Timestamp})
	return true
}

// OnEntityRemoved stops tracking an entity and discards its samples. Updates for the entity that
// arrive within the removal grace period are ignored.
func (s *System) OnEntityRemoved(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tracks.Delete(id)
	s.removed.Delete(id)
	s.removed.Set(id, s.now)
}

// Advance moves the clock of the system forward by dt seconds and returns the smoothed transform
// of every entity that has at least one sample, in the order the entities were first seen.
func (s *System) Advance(dt float64) []EntityTransform {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !omath.Finite(dt) || dt < 0 {
		dt = 0
	}
	s.now += dt
	s.expireRemoved()

	renderTime := s.now - s.cfg.Delay
	out := make([]EntityTransform, 0, s.tracks.Len())
	for el := s.tracks.Front(); el != nil; el = el.Next() {
		tr := el.Value
		if tr.samples.Len() == 0 {
			continue
		}
		mode := tr.advance(s.cfg, s.now, renderTime, dt)
		if mode == ModeStale {
			s.log.WithField("entity", el.Key).Trace("interpolation: entity is stale")
		}
		out = append(out, EntityTransform{ID: el.Key, Mode: mode, Transform: tr.visual})
	}
	return out
}

// Transform returns the last smoothed transform of an entity, as computed by Advance.
func (s *System) Transform(id uint64) (Transform, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tr, ok := s.tracks.Get(id)
	if !ok || !tr.placed {
		return Transform{}, false
	}
	return tr.visual, true
}

// Sample evaluates the unsmoothed transform of an entity at the render time passed, using the
// current time of the system to decide whether the entity is stale.
func (s *System) Sample(id uint64, renderTime float64) (Transform, Mode, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tr, ok := s.tracks.Get(id)
	if !ok {
		return Transform{}, ModeBuffering, false
	}
	return tr.sample(s.cfg, s.now, renderTime)
}

// Tracked returns the number of entities currently tracked.
func (s *System) Tracked() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tracks.Len()
}

// expireRemoved forgets removals older than the grace period, so that ids may be reused.
func (s *System) expireRemoved() {
	for el := s.removed.Front(); el != nil; {
		if s.now-el.Value < s.cfg.RemovalGrace {
			return
		}
		next := el.Next()
		s.removed.Delete(el.Key)
		el = next
	}
}
