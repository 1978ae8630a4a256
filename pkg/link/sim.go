package link

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/cear-inacap/york-control/pkg/kinematics"
	customlog "github.com/cear-inacap/york-control/pkg/log"
	"github.com/cear-inacap/york-control/pkg/remoteapi"
)

// simAPI is the subset of the "sim" namespace the link calls
type simAPI interface {
	GetObject(path string) (int64, error)
	GetSimulationState() (int64, error)
	StartSimulation() error
	SetJointTargetVelocity(handle int64, velocity float64) error
}

type simDialer func(endpoint string, timeout time.Duration, logger customlog.Logger) (simAPI, io.Closer, error)

func dialSim(endpoint string, timeout time.Duration, logger customlog.Logger) (simAPI, io.Closer, error) {
	client, err := remoteapi.Dial(endpoint, timeout, logger)
	if err != nil {
		return nil, nil, err
	}
	if err := client.Require("sim"); err != nil {
		client.Close()
		return nil, nil, err
	}
	return remoteapi.NewSim(client), client, nil
}

// SimOptions configures a SimLink
type SimOptions struct {
	Port    int
	Timeout time.Duration
	// Joints are the object paths of wheels 1..4, in IK order.
	Joints     []string
	Kinematics kinematics.Mecanum
}

// SimLink drives the YORK model in a running CoppeliaSim scene. Joint target
// velocities are sent unscaled, in rad/s.
type SimLink struct {
	opts   SimOptions
	logger customlog.Logger
	dial   simDialer

	mu        sync.Mutex
	sim       simAPI
	closer    io.Closer
	lastState int64
	handles   []int64
	configErr error
}

// NewSimLink creates an unconnected simulator link
func NewSimLink(opts SimOptions, logger customlog.Logger) *SimLink {
	return &SimLink{
		opts:   opts,
		logger: logger.WithField("target", "sim"),
		dial:   dialSim,
	}
}

// Connect opens a remote API session and checks that the simulation is not
// paused.
func (l *SimLink) Connect(ctx context.Context, address string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.sim != nil {
		return nil
	}

	endpoint := "tcp://" + net.JoinHostPort(address, strconv.Itoa(l.opts.Port))
	l.logger.Infof("Connecting to CoppeliaSim at %s", endpoint)

	sim, closer, err := l.dial(endpoint, l.opts.Timeout, l.logger)
	if err != nil {
		return fmt.Errorf("%w: failed to open remote api session at %s: %v", ErrConnection, endpoint, err)
	}

	state, err := sim.GetSimulationState()
	if err != nil {
		closer.Close()
		return fmt.Errorf("%w: simulator at %s did not answer: %v", ErrConnection, endpoint, err)
	}
	if state == remoteapi.SimulationPaused {
		closer.Close()
		return fmt.Errorf("%w: simulation at %s is paused", ErrConnection, endpoint)
	}

	l.sim = sim
	l.closer = closer
	l.lastState = state
	return nil
}

// IsConnected queries the simulation state; a paused simulation or a failed
// query counts as disconnected.
func (l *SimLink) IsConnected() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.sim == nil {
		return false
	}
	state, err := l.sim.GetSimulationState()
	if err != nil {
		l.logger.Debugf("Simulation state query failed: %v", err)
		return false
	}
	l.lastState = state
	return state != remoteapi.SimulationPaused
}

// SendWheelVelocities sets the four joint target velocities, resolving the
// joints on first use and starting a stopped simulation.
func (l *SimLink) SendWheelVelocities(ctx context.Context, w kinematics.WheelVelocity) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.sim == nil {
		return ErrNotConnected
	}
	if err := l.resolveJoints(); err != nil {
		return err
	}

	if l.lastState == remoteapi.SimulationStopped {
		if err := l.sim.StartSimulation(); err != nil {
			return fmt.Errorf("%w: failed to start simulation: %v", ErrTransport, err)
		}
		l.logger.Infof("Simulation started")
		l.lastState = remoteapi.SimulationAdvancingRunning
	}

	for i, handle := range l.handles {
		if err := l.sim.SetJointTargetVelocity(handle, w[i]); err != nil {
			return fmt.Errorf("%w: failed to set velocity of %s: %v", ErrTransport, l.opts.Joints[i], err)
		}
	}
	return nil
}

// resolveJoints caches the joint handles. A joint the scene rejects is a
// configuration error and is remembered for the rest of the session; other
// failures are transient.
func (l *SimLink) resolveJoints() error {
	if l.configErr != nil {
		return l.configErr
	}
	if l.handles != nil {
		return nil
	}
	if len(l.opts.Joints) != len(kinematics.WheelVelocity{}) {
		l.configErr = fmt.Errorf("%w: expected %d joint paths, got %d",
			ErrConfiguration, len(kinematics.WheelVelocity{}), len(l.opts.Joints))
		return l.configErr
	}

	handles := make([]int64, 0, len(l.opts.Joints))
	for _, path := range l.opts.Joints {
		h, err := l.sim.GetObject(path)
		if err != nil {
			var callErr *remoteapi.CallError
			if errors.As(err, &callErr) {
				l.configErr = fmt.Errorf("%w: robot joint %q not found in the scene: %v", ErrConfiguration, path, err)
				return l.configErr
			}
			return fmt.Errorf("%w: failed to resolve %s: %v", ErrTransport, path, err)
		}
		handles = append(handles, h)
	}
	l.handles = handles
	l.logger.Debugf("Resolved joint handles %v", handles)
	return nil
}

// Shutdown closes the remote API session. The simulation keeps running.
func (l *SimLink) Shutdown() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closer == nil {
		return nil
	}
	err := l.closer.Close()
	l.sim = nil
	l.closer = nil
	l.handles = nil
	l.configErr = nil
	if err != nil {
		return fmt.Errorf("failed to close remote api session: %w", err)
	}
	return nil
}

// Kinematics returns the transform configured for the simulator
func (l *SimLink) Kinematics() kinematics.Mecanum {
	return l.opts.Kinematics
}
