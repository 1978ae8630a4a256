// Package input turns operator devices into normalized velocity intents.
//
// Every Source produces, once per control loop iteration, a Sample holding an
// unscaled intent in [-1, 1] per axis plus two speed adjustment signals.
package input

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/cear-inacap/york-control/pkg/config"
	"github.com/cear-inacap/york-control/pkg/kinematics"
	customlog "github.com/cear-inacap/york-control/pkg/log"
)

var (
	// ErrInputDevice means the device listener failed and will produce no
	// further samples.
	ErrInputDevice = errors.New("input device error")
	// ErrQuit means the operator asked to stop.
	ErrQuit = errors.New("quit requested")
)

// Sample is one poll of an input source
type Sample struct {
	Intent    kinematics.BodyVelocity `json:"intent"`
	SpeedUp   bool                    `json:"speed_up"`
	SpeedDown bool                    `json:"speed_down"`
}

// SpeedStep holds the multiplicative factors applied per speed event
type SpeedStep struct {
	Up   float64
	Down float64
}

var (
	// GamepadStep is applied on every poll while a speed button is held.
	GamepadStep = SpeedStep{Up: 1.01, Down: 0.99}
	// KeyboardStep is applied once per key press or repeat.
	KeyboardStep = SpeedStep{Up: 1.1, Down: 0.9}
)

// Source is an operator input device
type Source interface {
	// Poll returns the current sample without waiting for new events.
	// ErrQuit and ErrInputDevice end the session.
	Poll(ctx context.Context) (Sample, error)
	Step() SpeedStep
	Close() error
}

// Helper is implemented by sources with operator instructions
type Helper interface {
	Help() string
}

// AxisFromRaw converts a raw 8-bit axis reading (128 at rest) into an intent.
// Full deflection toward 0 saturates at +1.
func AxisFromRaw(raw byte) float64 {
	return clampUnit((128 - float64(raw)) / 127)
}

func clampUnit(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return 0
	case v > 1:
		return 1
	case v < -1:
		return -1
	}
	return v
}

// Open builds the source selected by cfg.Input
func Open(cfg *config.Config, logger customlog.Logger) (Source, error) {
	switch cfg.Input {
	case config.InputGamepad:
		return OpenGamepad(cfg.Gamepad, logger)
	case config.InputKeyboard:
		return OpenKeyboard(cfg.KeyboardRelease(), logger)
	case config.InputWebSocket:
		return NewWebSocket(logger), nil
	default:
		return nil, fmt.Errorf("unknown input %q", cfg.Input)
	}
}
