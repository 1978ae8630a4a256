package link

import (
	"context"
	"fmt"
	"math"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/simonvetter/modbus"

	"github.com/cear-inacap/york-control/pkg/kinematics"
	customlog "github.com/cear-inacap/york-control/pkg/log"
)

// Register scale used by the robot firmware:
// 0 = -100 %, 16384 = stopped, 32768 = +100 %.
const (
	RegisterMin  = 0
	RegisterZero = 16384
	RegisterMax  = 32768

	// FullScale is the wheel velocity mapped to 100 %.
	FullScale = 10.0
)

// ScaleToRegister maps a wheel velocity onto the firmware's 16-bit scale,
// rounding to nearest and saturating at +/-100 %.
func ScaleToRegister(v float64) uint16 {
	if math.IsNaN(v) {
		return RegisterZero
	}
	x := math.Round(v*RegisterZero/FullScale + RegisterZero)
	if x < RegisterMin {
		x = RegisterMin
	}
	if x > RegisterMax {
		x = RegisterMax
	}
	return uint16(x)
}

// registerClient is the part of the modbus client the link uses
type registerClient interface {
	Open() error
	Close() error
	SetUnitId(id uint8) error
	WriteRegisters(addr uint16, values []uint16) error
}

type modbusDialer func(url string, timeout time.Duration) (registerClient, error)

func dialModbus(url string, timeout time.Duration) (registerClient, error) {
	client, err := modbus.NewClient(&modbus.ClientConfiguration{
		URL:     url,
		Timeout: timeout,
	})
	if err != nil {
		return nil, err
	}
	return client, nil
}

// NetworkOptions configures a NetworkLink
type NetworkOptions struct {
	Port         int
	UnitID       uint8
	BaseRegister uint16
	Timeout      time.Duration
	Kinematics   kinematics.Mecanum
}

// NetworkLink drives the real robot by writing the four scaled wheel
// velocities as one register block.
type NetworkLink struct {
	opts   NetworkOptions
	logger customlog.Logger
	dial   modbusDialer

	mu        sync.Mutex
	client    registerClient
	connected bool
}

// NewNetworkLink creates an unconnected Modbus/TCP link
func NewNetworkLink(opts NetworkOptions, logger customlog.Logger) *NetworkLink {
	return &NetworkLink{
		opts:   opts,
		logger: logger.WithField("target", "network"),
		dial:   dialModbus,
	}
}

// Connect opens a Modbus/TCP connection to address
func (l *NetworkLink) Connect(ctx context.Context, address string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.connected {
		return nil
	}

	url := "tcp://" + net.JoinHostPort(address, strconv.Itoa(l.opts.Port))
	l.logger.Infof("Connecting to YORK at %s", url)

	client, err := l.dial(url, l.opts.Timeout)
	if err != nil {
		return fmt.Errorf("%w: invalid modbus endpoint %s: %v", ErrConnection, url, err)
	}
	if err := client.Open(); err != nil {
		return fmt.Errorf("%w: failed to connect to %s: %v", ErrConnection, url, err)
	}
	if err := client.SetUnitId(l.opts.UnitID); err != nil {
		client.Close()
		return fmt.Errorf("%w: failed to set unit id %d: %v", ErrConnection, l.opts.UnitID, err)
	}

	l.client = client
	l.connected = true
	return nil
}

// IsConnected reports whether the connection is open
func (l *NetworkLink) IsConnected() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.connected
}

// SendWheelVelocities writes the scaled velocities to BaseRegister..+3.
// A failed write leaves the link connected.
func (l *NetworkLink) SendWheelVelocities(ctx context.Context, w kinematics.WheelVelocity) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.connected {
		return ErrNotConnected
	}

	values := make([]uint16, len(w))
	for i, v := range w {
		values[i] = ScaleToRegister(v)
	}
	if err := l.client.WriteRegisters(l.opts.BaseRegister, values); err != nil {
		return fmt.Errorf("%w: failed to write registers %d-%d: %v",
			ErrTransport, l.opts.BaseRegister, int(l.opts.BaseRegister)+len(values)-1, err)
	}
	return nil
}

// Shutdown closes the connection
func (l *NetworkLink) Shutdown() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.client == nil {
		return nil
	}
	err := l.client.Close()
	l.client = nil
	l.connected = false
	if err != nil {
		return fmt.Errorf("failed to close modbus connection: %w", err)
	}
	l.logger.Debugf("Modbus connection closed")
	return nil
}

// Kinematics returns the transform configured for the real robot
func (l *NetworkLink) Kinematics() kinematics.Mecanum {
	return l.opts.Kinematics
}
