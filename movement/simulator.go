package movement

// Outcome describes which path the simulator took for a tick.
type Outcome uint8

const (
	// OutcomeNormal is a regular, fully controlled tick.
	OutcomeNormal Outcome = iota
	// OutcomeImmobile is a tick in which a root effect removed all control.
	OutcomeImmobile
	// OutcomeRejected is returned for inputs with a non-finite or non-positive delta. The state is
	// returned unchanged.
	OutcomeRejected
)

// String ...
func (o Outcome) String() string {
	switch o {
	case OutcomeNormal:
		return "normal"
	case OutcomeImmobile:
		return "immobile"
	case OutcomeRejected:
		return "rejected"
	}
	return "unknown"
}

// Result captures the outcome of a single simulation tick.
type Result struct {
	State   State
	Outcome Outcome

	// Delta is the tick time that was integrated, after clamping.
	Delta   float64
	Clamped bool

	Jumped bool
	Landed bool
}

// Simulator steps entity states forward using the world queries it is given. A Simulator holds no
// per-entity state and may be shared by any number of entities on the same goroutine.
type Simulator struct {
	Config Config
	// Ground is queried for the height of the ground below an entity. A nil Ground means there
	// is no ground anywhere.
	Ground GroundProvider
	// Raycast is optional. When set, it is used to find footing before falling back to Ground.
	Raycast RaycastProvider
	// Mask is the layer mask passed to Raycast. Zero means LayerAll.
	Mask LayerMask

	// Debugf receives internal simulation trace logs for callers that need deep diagnostics.
	Debugf func(format string, args ...any)
}

// NewSimulator returns a simulator using the config and ground provider passed.
func NewSimulator(cfg Config, ground GroundProvider) *Simulator {
	return &Simulator{Config: cfg, Ground: ground}
}

func (s *Simulator) debugf(format string, args ...any) {
	if s.Debugf != nil {
		s.Debugf(format, args...)
	}
}
