package input

import (
	"sync"

	"github.com/cear-inacap/york-control/pkg/kinematics"
)

// Axis selects one component of the body velocity intent
type Axis int

const (
	AxisVX Axis = iota
	AxisVY
	AxisOmega
)

// IntentCell is the state shared between a device listener and the control
// loop. Speed signals come either as held levels (buttons) or as queued
// events (key presses); a snapshot consumes at most one queued event per
// direction.
type IntentCell struct {
	mu sync.Mutex

	intent      kinematics.BodyVelocity
	upHeld      bool
	downHeld    bool
	pendingUp   int
	pendingDown int
	err         error
}

// SetAxis sets one intent component, clamped to [-1, 1]
func (c *IntentCell) SetAxis(axis Axis, value float64) {
	value = clampUnit(value)

	c.mu.Lock()
	defer c.mu.Unlock()

	switch axis {
	case AxisVX:
		c.intent.VX = value
	case AxisVY:
		c.intent.VY = value
	case AxisOmega:
		c.intent.Omega = value
	}
}

// SetIntent replaces the whole intent, clamping each component
func (c *IntentCell) SetIntent(v kinematics.BodyVelocity) {
	v = kinematics.BodyVelocity{VX: clampUnit(v.VX), VY: clampUnit(v.VY), Omega: clampUnit(v.Omega)}

	c.mu.Lock()
	c.intent = v
	c.mu.Unlock()
}

// SetSpeedButtons records the held state of the speed buttons
func (c *IntentCell) SetSpeedButtons(up, down bool) {
	c.mu.Lock()
	c.upHeld, c.downHeld = up, down
	c.mu.Unlock()
}

// SetSpeedUpHeld records the held state of the speed up button
func (c *IntentCell) SetSpeedUpHeld(held bool) {
	c.mu.Lock()
	c.upHeld = held
	c.mu.Unlock()
}

// SetSpeedDownHeld records the held state of the speed down button
func (c *IntentCell) SetSpeedDownHeld(held bool) {
	c.mu.Lock()
	c.downHeld = held
	c.mu.Unlock()
}

// QueueSpeedUp records one speed up event
func (c *IntentCell) QueueSpeedUp() {
	c.mu.Lock()
	c.pendingUp++
	c.mu.Unlock()
}

// QueueSpeedDown records one speed down event
func (c *IntentCell) QueueSpeedDown() {
	c.mu.Lock()
	c.pendingDown++
	c.mu.Unlock()
}

// Stop ends the session; every later Snapshot returns err. The first error
// wins.
func (c *IntentCell) Stop(err error) {
	c.mu.Lock()
	if c.err == nil {
		c.err = err
	}
	c.mu.Unlock()
}

// Snapshot returns the current sample and consumes queued speed events
func (c *IntentCell) Snapshot() (Sample, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.err != nil {
		return Sample{}, c.err
	}

	s := Sample{
		Intent:    c.intent,
		SpeedUp:   c.upHeld,
		SpeedDown: c.downHeld,
	}
	if c.pendingUp > 0 {
		c.pendingUp--
		s.SpeedUp = true
	}
	if c.pendingDown > 0 {
		c.pendingDown--
		s.SpeedDown = true
	}
	return s, nil
}
