package kinematics

import "fmt"

// Names of the DK coefficient sets.
const (
	DKExact = "exact"
	DKCFV2  = "cfv2"
	DKSim   = "sim"
)

// DKCoefficients are the multipliers applied to the three wheel sums of the
// direct kinematics:
//
//	vx    = VX    * ( w1 + w2 + w3 + w4)
//	vy    = VY    * ( w1 - w2 + w3 - w4)
//	omega = Omega * (-w1 + w2 + w3 - w4)
//
// The real-robot and simulator tool chains historically used different VY
// and Omega multipliers. Only ExactDK inverts IK; the other two sets are kept
// so each target reproduces the numbers its own tooling reported.
type DKCoefficients struct {
	Name  string  `json:"name"`
	VX    float64 `json:"vx"`
	VY    float64 `json:"vy"`
	Omega float64 `json:"omega"`
}

// Apply runs the direct kinematics.
func (c DKCoefficients) Apply(w WheelVelocity) BodyVelocity {
	return BodyVelocity{
		VX:    c.VX * (w[0] + w[1] + w[2] + w[3]),
		VY:    c.VY * (w[0] - w[1] + w[2] - w[3]),
		Omega: c.Omega * (-w[0] + w[1] + w[2] - w[3]),
	}
}

// ExactDK returns the coefficients that invert Geometry.IK.
func ExactDK(g Geometry) DKCoefficients {
	r := g.radius()
	return DKCoefficients{
		Name:  DKExact,
		VX:    r / 4,
		VY:    r / 4,
		Omega: r * r / (4 * g.lever()),
	}
}

// CFV2DK returns the coefficients used by the CFV2 controller board tooling.
func CFV2DK(g Geometry) DKCoefficients {
	return DKCoefficients{
		Name:  DKCFV2,
		VX:    g.radius() / 4,
		VY:    g.R2 / 4,
		Omega: g.lever() / (4 * (g.A*g.A + g.B*g.B)),
	}
}

// SimDK returns the coefficients used by the simulator tooling.
func SimDK(g Geometry) DKCoefficients {
	r := g.radius()
	return DKCoefficients{
		Name:  DKSim,
		VX:    r / 4,
		VY:    r / 4,
		Omega: (g.A + g.B) * r / (4 * (g.A*g.A + g.B*g.B)),
	}
}

// DKCoefficientsByName resolves one of DKExact, DKCFV2 or DKSim.
func DKCoefficientsByName(name string, g Geometry) (DKCoefficients, error) {
	switch name {
	case DKExact:
		if g.lever() == 0 {
			return DKCoefficients{}, fmt.Errorf("exact DK needs a non-zero lever arm (a*r2 + b*(r1+r2))")
		}
		return ExactDK(g), nil
	case DKCFV2:
		if g.A == 0 && g.B == 0 {
			return DKCoefficients{}, fmt.Errorf("cfv2 DK needs a or b to be non-zero")
		}
		return CFV2DK(g), nil
	case DKSim:
		if g.A == 0 && g.B == 0 {
			return DKCoefficients{}, fmt.Errorf("sim DK needs a or b to be non-zero")
		}
		return SimDK(g), nil
	default:
		return DKCoefficients{}, fmt.Errorf("unknown DK coefficient set %q", name)
	}
}
