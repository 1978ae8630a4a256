package teleop

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cear-inacap/york-control/pkg/input"
	"github.com/cear-inacap/york-control/pkg/kinematics"
)

func TestSpeedProfile_Bounds(t *testing.T) {
	for _, step := range []input.SpeedStep{input.GamepadStep, input.KeyboardStep} {
		p := DefaultSpeedProfile()
		for i := 0; i < 1000; i++ {
			p.Apply(true, false, step)
			assert.LessOrEqual(t, p.Linear, MaxLinearSpeed)
			assert.LessOrEqual(t, p.Angular, MaxAngularSpeed)
		}
		assert.Equal(t, MaxLinearSpeed, p.Linear)
		assert.Equal(t, MaxAngularSpeed, p.Angular)

		for i := 0; i < 5000; i++ {
			p.Apply(false, true, step)
			assert.GreaterOrEqual(t, p.Linear, MinSpeed)
			assert.GreaterOrEqual(t, p.Angular, MinSpeed)
		}
		assert.Equal(t, MinSpeed, p.Linear)
		assert.Equal(t, MinSpeed, p.Angular)

		// recovers from the floor
		p.Apply(true, false, step)
		assert.Greater(t, p.Linear, MinSpeed)
	}
}

func TestSpeedProfile_Scale(t *testing.T) {
	p := DefaultSpeedProfile()
	assert.Equal(t, kinematics.BodyVelocity{VX: 0.1, VY: -0.1, Omega: 1}, p.Scale(kinematics.BodyVelocity{VX: 1, VY: -1, Omega: 1}))

	// rounded to 2 decimals, no negative zero
	got := p.Scale(kinematics.BodyVelocity{VX: 0.456, VY: -0.01, Omega: 0.333})
	assert.Equal(t, kinematics.BodyVelocity{VX: 0.05, VY: 0, Omega: 0.33}, got)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "running", StateRunning.String())
	text, err := StateTerminated.MarshalText()
	assert.NoError(t, err)
	assert.Equal(t, "terminated", string(text))
}
