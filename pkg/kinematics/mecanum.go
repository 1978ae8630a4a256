// Package kinematics converts between YORK body-frame velocity and the
// angular velocities of its four Mecanum wheels.
package kinematics

import (
	"fmt"
	"math"
)

// BodyVelocity is a body-frame velocity: forward (m/s), lateral (m/s) and
// rotational (rad/s).
type BodyVelocity struct {
	VX    float64 `json:"vx" yaml:"vx"`
	VY    float64 `json:"vy" yaml:"vy"`
	Omega float64 `json:"omega" yaml:"omega"`
}

// WheelVelocity holds one angular velocity per wheel, in the order the
// inverse kinematics produces them (w1..w4).
type WheelVelocity [4]float64

// Geometry describes the Mecanum wheel radii and the frame half-distances to
// the wheel axles, in meters.
type Geometry struct {
	R1 float64 `yaml:"r1" json:"r1"`
	R2 float64 `yaml:"r2" json:"r2"`
	A  float64 `yaml:"a" json:"a"`
	B  float64 `yaml:"b" json:"b"`
}

// YorkGeometry is the geometry of the YORK robot.
var YorkGeometry = Geometry{R1: 0.097, R2: 0.01, A: 0.125, B: 0.105}

// Validate reports whether the geometry can be used by the transforms.
func (g Geometry) Validate() error {
	for name, v := range map[string]float64{"r1": g.R1, "r2": g.R2, "a": g.A, "b": g.B} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return fmt.Errorf("invalid geometry: %s=%v", name, v)
		}
	}
	if g.R1+g.R2 <= 0 {
		return fmt.Errorf("invalid geometry: r1+r2 must be positive")
	}
	return nil
}

func (g Geometry) radius() float64 { return g.R1 + g.R2 }

// lever is the combined rotational lever arm a*r2 + b*(r1+r2).
func (g Geometry) lever() float64 { return g.A*g.R2 + g.B*g.radius() }

// IK computes the wheel angular velocities for a body velocity.
func (g Geometry) IK(v BodyVelocity) WheelVelocity {
	r := g.radius()
	k := g.lever()
	den := g.R1*g.R1 + 2*g.R1*g.R2 + g.R2*g.R2

	return WheelVelocity{
		(-v.Omega*k + r*v.VY + v.VX*r) / den,
		(v.Omega*k - r*v.VY + v.VX*r) / den,
		(v.Omega*k + r*v.VY + v.VX*r) / den,
		(-v.Omega*k - r*v.VY + v.VX*r) / den,
	}
}

// Mecanum pairs a geometry with the coefficient set used for the direct
// kinematics of one actuation target.
type Mecanum struct {
	Geometry     Geometry
	Coefficients DKCoefficients
}

// NewMecanum builds a transform from a geometry and a named DK coefficient set.
func NewMecanum(g Geometry, dkName string) (Mecanum, error) {
	if err := g.Validate(); err != nil {
		return Mecanum{}, err
	}
	c, err := DKCoefficientsByName(dkName, g)
	if err != nil {
		return Mecanum{}, err
	}
	return Mecanum{Geometry: g, Coefficients: c}, nil
}

// IK computes the wheel angular velocities for a body velocity.
func (m Mecanum) IK(v BodyVelocity) WheelVelocity {
	return m.Geometry.IK(v)
}

// DK recovers a body velocity from wheel angular velocities.
func (m Mecanum) DK(w WheelVelocity) BodyVelocity {
	return m.Coefficients.Apply(w)
}
