package teleop

import (
	"math"

	"github.com/cear-inacap/york-control/pkg/input"
	"github.com/cear-inacap/york-control/pkg/kinematics"
)

// Speed bounds, in m/s for linear and rad/s for angular speed
const (
	DefaultLinearSpeed  = 0.1
	DefaultAngularSpeed = 1.0
	MaxLinearSpeed      = 0.4
	MaxAngularSpeed     = 1.5
	MinSpeed            = 0.01
)

// SpeedProfile scales unit intents into body velocities
type SpeedProfile struct {
	Linear  float64 `json:"linear"`
	Angular float64 `json:"angular"`
}

// DefaultSpeedProfile returns the speeds a session starts with
func DefaultSpeedProfile() SpeedProfile {
	return SpeedProfile{Linear: DefaultLinearSpeed, Angular: DefaultAngularSpeed}
}

// Apply multiplies both speeds by the step for each active signal, keeping
// them within [MinSpeed, Max*Speed].
func (p *SpeedProfile) Apply(up, down bool, step input.SpeedStep) {
	if up {
		p.Linear = clamp(p.Linear*step.Up, MinSpeed, MaxLinearSpeed)
		p.Angular = clamp(p.Angular*step.Up, MinSpeed, MaxAngularSpeed)
	}
	if down {
		p.Linear = clamp(p.Linear*step.Down, MinSpeed, MaxLinearSpeed)
		p.Angular = clamp(p.Angular*step.Down, MinSpeed, MaxAngularSpeed)
	}
}

// Scale turns an intent into a body velocity rounded to 2 decimals
func (p SpeedProfile) Scale(intent kinematics.BodyVelocity) kinematics.BodyVelocity {
	return kinematics.BodyVelocity{
		VX:    round2(intent.VX * p.Linear),
		VY:    round2(intent.VY * p.Linear),
		Omega: round2(intent.Omega * p.Angular),
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round2(v float64) float64 {
	r := math.Round(v*100) / 100
	if r == 0 {
		return 0 // no -0 in output
	}
	return r
}
