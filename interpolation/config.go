package interpolation

import (
	"math"

	"github.com/oomph-ac/netmove/oerror"
)

const (
	// DefaultDelay is how far in the past, in seconds, remote entities are rendered.
	DefaultDelay = 0.1
	// DefaultExtrapolationLimit is how long, in seconds, an entity may go without updates before
	// it is frozen at its last known sample.
	DefaultExtrapolationLimit = 0.5
	// DefaultExtrapolationDamping is the share of an extrapolated position that is blended into the
	// running target each frame. Tuned by feel.
	DefaultExtrapolationDamping = 0.2
	// DefaultSmoothingRate is the rate of the exponential smoothing applied to visual transforms.
	DefaultSmoothingRate = 15
	// DefaultCapacity is the number of samples buffered per entity.
	DefaultCapacity = 20
	// DefaultRemovalGrace is how long, in seconds, updates for a removed entity are ignored.
	DefaultRemovalGrace = 1
)

// Config holds the tunables of an interpolation System. All durations are in seconds.
type Config struct {
	Delay                float64
	ExtrapolationLimit   float64
	ExtrapolationDamping float64
	SmoothingRate        float64
	Capacity             int
	RemovalGrace         float64
}

// DefaultConfig returns the default interpolation configuration.
func DefaultConfig() Config {
	return Config{
		Delay:                DefaultDelay,
		ExtrapolationLimit:   DefaultExtrapolationLimit,
		ExtrapolationDamping: DefaultExtrapolationDamping,
		SmoothingRate:        DefaultSmoothingRate,
		Capacity:             DefaultCapacity,
		RemovalGrace:         DefaultRemovalGrace,
	}
}

// Validate ...
func (c Config) Validate() error {
	switch {
	case !nonNegative(c.Delay):
		return oerror.New("interpolation config: delay must be a non-negative number, got %v", c.Delay)
	case !nonNegative(c.ExtrapolationLimit):
		return oerror.New("interpolation config: extrapolation limit must be a non-negative number, got %v", c.ExtrapolationLimit)
	case !(c.ExtrapolationDamping > 0 && c.ExtrapolationDamping <= 1):
		return oerror.New("interpolation config: extrapolation damping must be in (0, 1], got %v", c.ExtrapolationDamping)
	case !nonNegative(c.SmoothingRate) || c.SmoothingRate == 0:
		return oerror.New("interpolation config: smoothing rate must be positive, got %v", c.SmoothingRate)
	case c.Capacity < 2:
		return oerror.New("interpolation config: capacity must be at least 2, got %d", c.Capacity)
	case !nonNegative(c.RemovalGrace):
		return oerror.New("interpolation config: removal grace must be a non-negative number, got %v", c.RemovalGrace)
	}
	return nil
}

func nonNegative(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0) && f >= 0
}
