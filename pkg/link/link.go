// Package link delivers wheel velocities to an actuation target: the real
// YORK robot over Modbus/TCP or its CoppeliaSim model over the remote API.
package link

import (
	"context"
	"errors"
	"fmt"

	"github.com/cear-inacap/york-control/pkg/config"
	"github.com/cear-inacap/york-control/pkg/kinematics"
	customlog "github.com/cear-inacap/york-control/pkg/log"
)

// Error classes returned by links. Callers match them with errors.Is.
var (
	// ErrConnection means the initial connect failed.
	ErrConnection = errors.New("connection error")
	// ErrTransport means a send failed on an established link.
	ErrTransport = errors.New("transport error")
	// ErrConfiguration means the target is reachable but not set up for YORK.
	ErrConfiguration = errors.New("configuration error")
	// ErrNotConnected is a transport error for sends before Connect.
	ErrNotConnected = fmt.Errorf("%w: link not connected", ErrTransport)
)

// Link sends wheel velocities to one actuation target. A Link is owned by a
// single control loop and is not meant for concurrent senders.
type Link interface {
	// Connect opens the link. It returns nil iff IsConnected would then
	// report true; failures wrap ErrConnection.
	Connect(ctx context.Context, address string) error
	IsConnected() bool
	SendWheelVelocities(ctx context.Context, w kinematics.WheelVelocity) error
	// Shutdown releases the link. Safe to call more than once or before
	// Connect.
	Shutdown() error
	// Kinematics is the transform configured for this target.
	Kinematics() kinematics.Mecanum
}

// New builds the link selected by cfg.Target
func New(cfg *config.Config, logger customlog.Logger) (Link, error) {
	switch cfg.Target {
	case config.TargetNetwork:
		kin, err := cfg.NetworkKinematics()
		if err != nil {
			return nil, err
		}
		return NewNetworkLink(NetworkOptions{
			Port:         cfg.Network.Port,
			UnitID:       uint8(cfg.Network.UnitID),
			BaseRegister: uint16(cfg.Network.BaseRegister),
			Timeout:      cfg.NetworkTimeout(),
			Kinematics:   kin,
		}, logger), nil
	case config.TargetSim:
		kin, err := cfg.SimulatorKinematics()
		if err != nil {
			return nil, err
		}
		return NewSimLink(SimOptions{
			Port:       cfg.Simulator.Port,
			Timeout:    cfg.SimulatorTimeout(),
			Joints:     cfg.Simulator.Joints,
			Kinematics: kin,
		}, logger), nil
	default:
		return nil, fmt.Errorf("unknown target %q", cfg.Target)
	}
}
