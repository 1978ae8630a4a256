package kinematics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tolerance = 1e-9

func TestIK_ZeroIntent(t *testing.T) {
	w := YorkGeometry.IK(BodyVelocity{})
	assert.Equal(t, WheelVelocity{0, 0, 0, 0}, w)
}

func TestIK_MatchesFormula(t *testing.T) {
	g := YorkGeometry
	r := g.R1 + g.R2
	k := g.A*g.R2 + g.B*(g.R1+g.R2)
	den := g.R1*g.R1 + 2*g.R1*g.R2 + g.R2*g.R2

	tests := []BodyVelocity{
		{VX: 0.1},
		{VY: -0.25},
		{Omega: 1.5},
		{VX: 0.4, VY: 0.2, Omega: -0.7},
	}

	for _, v := range tests {
		want := WheelVelocity{
			(-v.Omega*k + r*v.VY + v.VX*r) / den,
			(v.Omega*k - r*v.VY + v.VX*r) / den,
			(v.Omega*k + r*v.VY + v.VX*r) / den,
			(-v.Omega*k - r*v.VY + v.VX*r) / den,
		}
		got := g.IK(v)
		for i := range want {
			assert.InDelta(t, want[i], got[i], tolerance, "IK(%+v)[%d]", v, i)
		}
	}
}

func TestIK_ForwardOnlyDrivesAllWheelsEqually(t *testing.T) {
	w := YorkGeometry.IK(BodyVelocity{VX: 0.1})
	expected := 0.1 / (YorkGeometry.R1 + YorkGeometry.R2)
	for i := range w {
		assert.InDelta(t, expected, w[i], tolerance)
	}
}

func TestExactDK_RoundTrip(t *testing.T) {
	m, err := NewMecanum(YorkGeometry, DKExact)
	require.NoError(t, err)

	for _, v := range []BodyVelocity{
		{VX: 0.1, VY: 0, Omega: 0},
		{VX: -0.3, VY: 0.2, Omega: 1.1},
		{VX: 0.4, VY: -0.4, Omega: -1.5},
		{VX: 123.4, VY: -56.7, Omega: 8.9},
	} {
		back := m.DK(m.IK(v))
		assert.InDelta(t, v.VX, back.VX, 1e-9)
		assert.InDelta(t, v.VY, back.VY, 1e-9)
		assert.InDelta(t, v.Omega, back.Omega, 1e-9)
	}
}

// The two historical coefficient sets disagree with each other and neither
// inverts IK for the lateral/rotational terms. These tests pin that down so a
// change to either set is a conscious one.
func TestHistoricalDK_DoNotRoundTrip(t *testing.T) {
	v := BodyVelocity{VX: 0.2, VY: 0.3, Omega: 1.0}

	cfv2, err := NewMecanum(YorkGeometry, DKCFV2)
	require.NoError(t, err)
	sim, err := NewMecanum(YorkGeometry, DKSim)
	require.NoError(t, err)

	fromCFV2 := cfv2.DK(cfv2.IK(v))
	fromSim := sim.DK(sim.IK(v))

	// forward term agrees everywhere
	assert.InDelta(t, v.VX, fromCFV2.VX, tolerance)
	assert.InDelta(t, v.VX, fromSim.VX, tolerance)

	// lateral: sim inverts, cfv2 scales by r2/(r1+r2)
	assert.InDelta(t, v.VY, fromSim.VY, tolerance)
	assert.InDelta(t, v.VY*YorkGeometry.R2/(YorkGeometry.R1+YorkGeometry.R2), fromCFV2.VY, tolerance)
	assert.Greater(t, math.Abs(fromCFV2.VY-v.VY), 0.1)

	// rotational: neither inverts; sim is off by under 1%, cfv2 by about half
	assert.Greater(t, math.Abs(fromCFV2.Omega-v.Omega), 0.4)
	assert.Greater(t, math.Abs(fromSim.Omega-v.Omega), 0.005)
	assert.Less(t, math.Abs(fromSim.Omega-v.Omega), 0.01)

	assert.NotEqual(t, cfv2.Coefficients.VY, sim.Coefficients.VY)
	assert.NotEqual(t, cfv2.Coefficients.Omega, sim.Coefficients.Omega)
}

func TestDKCoefficientsByName(t *testing.T) {
	for _, name := range []string{DKExact, DKCFV2, DKSim} {
		c, err := DKCoefficientsByName(name, YorkGeometry)
		require.NoError(t, err)
		assert.Equal(t, name, c.Name)
	}

	_, err := DKCoefficientsByName("bogus", YorkGeometry)
	assert.Error(t, err)

	_, err = DKCoefficientsByName(DKExact, Geometry{R1: 0.1})
	assert.Error(t, err)
}

func TestGeometry_Validate(t *testing.T) {
	assert.NoError(t, YorkGeometry.Validate())
	assert.Error(t, Geometry{}.Validate())
	assert.Error(t, Geometry{R1: -1, R2: 0.1}.Validate())
	assert.Error(t, Geometry{R1: math.NaN(), R2: 0.1}.Validate())

	_, err := NewMecanum(Geometry{}, DKExact)
	assert.Error(t, err)
}
