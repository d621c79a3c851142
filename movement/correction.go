package movement

import (
	"math"

	"github.com/oomph-ac/netmove/omath"
)

// DefaultCorrectionSmoothing is the share of the position error removed by a single correction.
const DefaultCorrectionSmoothing = 0.1

// ApplyCorrection blends a predicted state towards an authoritative one. The position moves by
// smoothing (clamped to [0, 1]) of the error, so repeated corrections converge without
// overshooting. Velocity, ground contact and move state are taken from the server outright. The
// rotation is kept, since it is driven by local input.
func ApplyCorrection(client, server State, smoothing float64) State {
	if math.IsNaN(smoothing) {
		smoothing = 0
	}
	smoothing = omath.ClampFloat(smoothing, 0, 1)

	corrected := client
	corrected.Position = omath.Lerp(client.Position, server.Position, smoothing)
	corrected.Velocity = server.Velocity
	corrected.Acceleration = server.Acceleration
	corrected.Grounded = server.Grounded
	corrected.GroundNormal = server.GroundNormal
	corrected.MoveState = server.MoveState
	corrected.AirTime = nil
	if server.AirTime != nil {
		corrected.AirTime = airTime(*server.AirTime)
	}
	corrected.Effects = append(Effects(nil), server.Effects...)
	return corrected
}
