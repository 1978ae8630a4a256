// Package teleop runs the YORK teleoperation control loop: poll an input
// source, scale the intent by the session speed profile, turn it into wheel
// velocities and send them over the robot link.
package teleop

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/multierr"

	"github.com/cear-inacap/york-control/pkg/input"
	"github.com/cear-inacap/york-control/pkg/kinematics"
	"github.com/cear-inacap/york-control/pkg/link"
	customlog "github.com/cear-inacap/york-control/pkg/log"
)

// ErrConnectionLost ends a session whose link stopped reporting connected
var ErrConnectionLost = errors.New("connection to robot lost")

// Options configures a Loop
type Options struct {
	Target  string
	Address string
	// Period between iterations; 0 runs unthrottled.
	Period time.Duration
}

// Loop owns a link and an input source for one teleop session
type Loop struct {
	link      link.Link
	source    input.Source
	opts      Options
	logger    customlog.Logger
	observers []Observer

	mu        sync.RWMutex
	state     State
	speed     SpeedProfile
	iteration uint64
}

// NewLoop creates a loop in the Disconnected state
func NewLoop(l link.Link, src input.Source, opts Options, logger customlog.Logger) *Loop {
	return &Loop{
		link:   l,
		source: src,
		opts:   opts,
		logger: logger.WithField("target", opts.Target),
		state:  StateDisconnected,
		speed:  DefaultSpeedProfile(),
	}
}

// AddObserver registers an observer. Call before Run.
func (l *Loop) AddObserver(o Observer) {
	l.observers = append(l.observers, o)
}

// State returns the current session state
func (l *Loop) State() State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

// Speed returns the current speed profile
func (l *Loop) Speed() SpeedProfile {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.speed
}

// Run connects and drives the robot until the operator quits, the context
// is cancelled, the connection is lost, the input device fails or the target
// turns out to be misconfigured. A failed connect returns an error wrapping
// link.ErrConnection without sending anything. After a successful connect
// the link is always shut down before Run returns.
//
// Quitting returns nil; cancellation returns the context error.
func (l *Loop) Run(ctx context.Context) (err error) {
	if err := l.link.Connect(ctx, l.opts.Address); err != nil {
		l.logger.Errorf("Failed to connect to %s: %v", l.opts.Address, err)
		l.notify(l.status(StateDisconnected, err))
		return err
	}
	l.logger.Infof("Connected to %s", l.opts.Address)
	l.setState(StateConnected)
	l.notify(l.status(StateConnected, nil))

	defer func() {
		if shutdownErr := l.link.Shutdown(); shutdownErr != nil {
			l.logger.Warnf("Link shutdown failed: %v", shutdownErr)
			err = multierr.Append(err, shutdownErr)
		}
		l.setState(StateTerminated)
		l.notify(l.status(StateTerminated, err))
		l.logger.Infof("Teleop session terminated after %d iterations", l.Iterations())
	}()

	l.setState(StateRunning)

	var tick <-chan time.Time
	if l.opts.Period > 0 {
		ticker := time.NewTicker(l.opts.Period)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !l.link.IsConnected() {
			l.logger.Warnf("Link reports disconnected, stopping")
			return ErrConnectionLost
		}

		if err := l.step(ctx); err != nil {
			if errors.Is(err, input.ErrQuit) {
				return nil
			}
			return err
		}

		if tick != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-tick:
			}
		}
	}
}

// step runs one iteration. Send failures are reported and swallowed unless
// the target is misconfigured.
func (l *Loop) step(ctx context.Context) error {
	sample, err := l.source.Poll(ctx)
	if err != nil {
		switch {
		case errors.Is(err, input.ErrQuit):
			l.logger.Infof("Operator quit")
			return err
		case ctx.Err() != nil:
			return ctx.Err()
		case errors.Is(err, input.ErrInputDevice):
			return err
		default:
			return fmt.Errorf("%w: %v", input.ErrInputDevice, err)
		}
	}

	l.mu.Lock()
	l.speed.Apply(sample.SpeedUp, sample.SpeedDown, l.source.Step())
	speed := l.speed
	l.iteration++
	l.mu.Unlock()

	body, wheels := Command(l.link.Kinematics(), speed, sample.Intent)

	sendErr := l.link.SendWheelVelocities(ctx, wheels)
	if sendErr != nil {
		l.logger.Debugf("Send failed: %v", sendErr)
	}

	status := l.status(StateRunning, sendErr)
	status.Body = body
	status.Wheels = wheels
	l.notify(status)

	if errors.Is(sendErr, link.ErrConfiguration) {
		l.logger.Errorf("Target is misconfigured: %v", sendErr)
		return sendErr
	}
	return nil
}

// Iterations returns the number of completed polls
func (l *Loop) Iterations() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.iteration
}

func (l *Loop) setState(s State) {
	l.mu.Lock()
	l.state = s
	l.mu.Unlock()
}

func (l *Loop) status(state State, err error) Status {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return Status{
		State:     state,
		Target:    l.opts.Target,
		Address:   l.opts.Address,
		Iteration: l.iteration,
		Speed:     l.speed,
		Err:       err,
		Timestamp: time.Now(),
	}
}

func (l *Loop) notify(s Status) {
	for _, o := range l.observers {
		o.Observe(s)
	}
}

// Command scales an intent by the speed profile and returns the body
// velocity together with its wheel velocities
func Command(m kinematics.Mecanum, speed SpeedProfile, intent kinematics.BodyVelocity) (kinematics.BodyVelocity, kinematics.WheelVelocity) {
	body := speed.Scale(intent)
	return body, m.IK(body)
}
