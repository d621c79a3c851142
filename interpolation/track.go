package interpolation

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/oomph-ac/netmove/omath"
)

// Mode is the behaviour an entity is rendered with during a frame. It is derived from the sample
// buffer and the current time every frame and never stored.
type Mode uint8

const (
	// ModeBuffering is used while fewer than two samples are known.
	ModeBuffering Mode = iota
	// ModeInterpolating is used when two samples bracket the render time.
	ModeInterpolating
	// ModeExtrapolating is used when the render time is past the newest sample, which is still
	// recent enough to project from.
	ModeExtrapolating
	// ModeStale is used when no sample was received for longer than the extrapolation limit.
	ModeStale
)

// String ...
func (m Mode) String() string {
	switch m {
	case ModeBuffering:
		return "buffering"
	case ModeInterpolating:
		return "interpolating"
	case ModeExtrapolating:
		return "extrapolating"
	case ModeStale:
		return "stale"
	}
	return "unknown"
}

// Transform is the position and rotation of an entity.
type Transform struct {
	Position mgl64.Vec3
	Rotation mgl64.Quat
}

// track is the interpolation state of one remote entity.
type track struct {
	samples *RingBuffer

	// lastReceived is the local time the newest sample was received.
	lastReceived float64
	// target is the smoothed transform the entity should be at. visual follows it.
	target Transform
	visual Transform
	placed bool
}

func newTrack(capacity int) *track {
	return &track{samples: NewRingBuffer(capacity)}
}

// accepts returns true if a sample with the sender timestamp passed is newer than every sample
// already buffered.
func (tr *track) accepts(timestamp int64) bool {
	latest, ok := tr.samples.Latest()
	return !ok || timestamp > latest.Timestamp
}

func (tr *track) add(s Sample) {
	tr.samples.Add(s)
	tr.lastReceived = s.Time
}

// sample evaluates the raw transform of the entity at renderTime, without smoothing.
func (tr *track) sample(cfg Config, now, renderTime float64) (Transform, Mode, bool) {
	latest, ok := tr.samples.Latest()
	if !ok {
		return Transform{}, ModeBuffering, false
	}
	if tr.samples.Len() == 1 {
		return latest.Transform(), ModeBuffering, true
	}

	if older, newer, ok := tr.samples.Bracket(renderTime); ok {
		t := 0.0
		if span := newer.Time - older.Time; span > 0 {
			t = omath.ClampFloat((renderTime-older.Time)/span, 0, 1)
		}
		return Transform{
			Position: omath.Lerp(older.Position, newer.Position, t),
			Rotation: omath.Slerp(older.Rotation, newer.Rotation, t),
		}, ModeInterpolating, true
	}

	if oldest, _ := tr.samples.Oldest(); renderTime < oldest.Time {
		// The buffer has not caught up with the render delay yet: hold the oldest sample.
		return oldest.Transform(), ModeInterpolating, true
	}
	if now-tr.lastReceived > cfg.ExtrapolationLimit {
		return latest.Transform(), ModeStale, true
	}

	prev, _ := tr.samples.At(tr.samples.Len() - 2)
	span := latest.Time - prev.Time
	if span <= 0 {
		return latest.Transform(), ModeExtrapolating, true
	}
	velocity := latest.Position.Sub(prev.Position).Mul(1 / span)
	return Transform{
		Position: latest.Position.Add(velocity.Mul(renderTime - latest.Time)),
		Rotation: latest.Rotation,
	}, ModeExtrapolating, true
}

// advance updates the target and visual transforms of the entity for a frame of length dt.
func (tr *track) advance(cfg Config, now, renderTime, dt float64) Mode {
	raw, mode, ok := tr.sample(cfg, now, renderTime)
	if !ok {
		return mode
	}
	if mode == ModeExtrapolating && tr.placed {
		// Velocity estimates from jittered samples are noisy, so only part of the projection is
		// taken every frame.
		tr.target = Transform{
			Position: omath.Lerp(tr.target.Position, raw.Position, cfg.ExtrapolationDamping),
			Rotation: raw.Rotation,
		}
	} else {
		tr.target = raw
	}

	if !tr.placed || mode == ModeBuffering {
		tr.visual = tr.target
		tr.placed = true
		return mode
	}
	alpha := omath.ExpSmoothing(cfg.SmoothingRate, dt)
	tr.visual = Transform{
		Position: omath.Lerp(tr.visual.Position, tr.target.Position, alpha),
		Rotation: omath.Slerp(tr.visual.Rotation, tr.target.Rotation, alpha),
	}
	return mode
}
