package teleop

import (
	"time"

	"github.com/cear-inacap/york-control/pkg/kinematics"
)

// State is the teleop session state
type State int

const (
	StateDisconnected State = iota
	StateConnected
	StateRunning
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnected:
		return "connected"
	case StateRunning:
		return "running"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// MarshalText encodes the state by name
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Status is reported to observers on every state change and after every
// iteration. Err is the connect error, the send error of the iteration, or
// the termination reason.
type Status struct {
	State     State                    `json:"state"`
	Target    string                   `json:"target"`
	Address   string                   `json:"address"`
	Iteration uint64                   `json:"iteration"`
	Speed     SpeedProfile             `json:"speed"`
	Body      kinematics.BodyVelocity  `json:"body"`
	Wheels    kinematics.WheelVelocity `json:"wheels"`
	Err       error                    `json:"-"`
	Timestamp time.Time                `json:"timestamp"`
}

// Observer receives loop status updates. Observe runs on the loop goroutine
// and must not block.
type Observer interface {
	Observe(status Status)
}

// ObserverFunc adapts a function to Observer
type ObserverFunc func(status Status)

func (f ObserverFunc) Observe(status Status) { f(status) }
