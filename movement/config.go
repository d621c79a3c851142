package movement

import (
	"encoding/binary"
	"math"

	"github.com/oomph-ac/netmove/oerror"
	"github.com/zeebo/xxh3"
)

const (
	// AirControlFraction is the share of the wish speed that air acceleration may add to the
	// velocity along the wish direction. Tuned by feel.
	AirControlFraction = 0.5
	// IdleSpeedThreshold is the horizontal speed below which a grounded entity is idle.
	IdleSpeedThreshold = 0.1
	// WorldBound is the largest absolute coordinate a valid state may have on any axis.
	WorldBound = 1_000_000.0

	speedEpsilon = 1e-6
)

// Config holds the tunable constants of the movement simulation. The predicting and the
// authoritative side must run with identical configs; see Fingerprint.
type Config struct {
	// Gravity is the downward acceleration applied to airborne entities, in m/s².
	Gravity float64
	// GroundAcceleration and AirAcceleration scale how fast velocity approaches the wish velocity.
	GroundAcceleration float64
	AirAcceleration    float64
	// GroundFriction and AirFriction decay horizontal speed proportionally to friction*dt.
	GroundFriction float64
	AirFriction    float64

	// MaxGroundSpeed is the walking (and crouching) speed cap.
	MaxGroundSpeed float64
	MaxRunSpeed    float64
	MaxSprintSpeed float64
	MaxAirSpeed    float64
	// MaxFallSpeed is the terminal downward velocity.
	MaxFallSpeed float64

	// JumpHeight is the apex height of a jump from flat ground.
	JumpHeight float64
	// StepHeight is the ground detection tolerance: an entity within StepHeight of the ground that
	// is not moving upward is considered grounded.
	StepHeight float64
	// SpeedTolerance multiplies the speed limit used by Validate. It only absorbs timing jitter.
	SpeedTolerance float64
	// TurnRate is the rate of the exponential smoothing that turns an entity towards its wish
	// direction.
	TurnRate float64
	// MaxDelta is the largest tick delta, in seconds, that is integrated in one step. Larger
	// deltas are clamped.
	MaxDelta float64
}

// DefaultConfig returns the default movement configuration.
func DefaultConfig() Config {
	return Config{
		Gravity:            20,
		GroundAcceleration: 10,
		AirAcceleration:    2,
		GroundFriction:     6,
		AirFriction:        0.2,
		MaxGroundSpeed:     3,
		MaxRunSpeed:        6,
		MaxSprintSpeed:     9,
		MaxAirSpeed:        9,
		MaxFallSpeed:       30,
		JumpHeight:         1.2,
		StepHeight:         0.35,
		SpeedTolerance:     1.5,
		TurnRate:           12,
		MaxDelta:           0.25,
	}
}

// Validate returns an error if any value of the config is not a positive finite number.
func (c Config) Validate() error {
	for _, f := range c.fields() {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) || f.value <= 0 {
			return oerror.New("movement config: %s must be a positive finite number, got %v", f.name, f.value)
		}
	}
	return nil
}

// Fingerprint returns a hash of the config. Two configs with the same fingerprint produce the
// same simulation.
func (c Config) Fingerprint() uint64 {
	fields := c.fields()
	buf := make([]byte, 0, len(fields)*8)
	for _, f := range fields {
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(f.value))
	}
	return xxh3.Hash(buf)
}

// JumpVelocity returns the initial vertical velocity of a jump with the jump multiplier passed.
func (c Config) JumpVelocity(jumpMultiplier float64) float64 {
	return math.Sqrt(2 * c.Gravity * c.JumpHeight * jumpMultiplier)
}

type configField struct {
	name  string
	value float64
}

func (c Config) fields() []configField {
	return []configField{
		{"Gravity", c.Gravity},
		{"GroundAcceleration", c.GroundAcceleration},
		{"AirAcceleration", c.AirAcceleration},
		{"GroundFriction", c.GroundFriction},
		{"AirFriction", c.AirFriction},
		{"MaxGroundSpeed", c.MaxGroundSpeed},
		{"MaxRunSpeed", c.MaxRunSpeed},
		{"MaxSprintSpeed", c.MaxSprintSpeed},
		{"MaxAirSpeed", c.MaxAirSpeed},
		{"MaxFallSpeed", c.MaxFallSpeed},
		{"JumpHeight", c.JumpHeight},
		{"StepHeight", c.StepHeight},
		{"SpeedTolerance", c.SpeedTolerance},
		{"TurnRate", c.TurnRate},
		{"MaxDelta", c.MaxDelta},
	}
}
