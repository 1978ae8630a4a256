package link

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cear-inacap/york-control/pkg/config"
	"github.com/cear-inacap/york-control/pkg/kinematics"
	customlog "github.com/cear-inacap/york-control/pkg/log"
	"github.com/cear-inacap/york-control/pkg/remoteapi"
)

type fakeSim struct {
	state      int64
	stateErr   error
	objects    map[string]int64
	objectErr  error
	started    int
	velocities map[int64]float64
	setErr     error
	lookups    int
	closed     int
}

func newFakeSim() *fakeSim {
	return &fakeSim{
		state: remoteapi.SimulationStopped,
		objects: map[string]int64{
			"./york/RLmotor": 11,
			"./york/RRmotor": 12,
			"./york/FRmotor": 13,
			"./york/FLmotor": 14,
		},
		velocities: map[int64]float64{},
	}
}

func (f *fakeSim) GetObject(path string) (int64, error) {
	f.lookups++
	if f.objectErr != nil {
		return 0, f.objectErr
	}
	h, ok := f.objects[path]
	if !ok {
		return 0, &remoteapi.CallError{Func: "sim.getObject", Message: "object does not exist"}
	}
	return h, nil
}

func (f *fakeSim) GetSimulationState() (int64, error) { return f.state, f.stateErr }

func (f *fakeSim) StartSimulation() error {
	f.started++
	f.state = remoteapi.SimulationAdvancingRunning
	return nil
}

func (f *fakeSim) SetJointTargetVelocity(handle int64, velocity float64) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.velocities[handle] = velocity
	return nil
}

func (f *fakeSim) Close() error {
	f.closed++
	return nil
}

func newTestSimLink(t *testing.T, fake *fakeSim) (*SimLink, *string) {
	t.Helper()
	cfg := config.Default()
	kin, err := cfg.SimulatorKinematics()
	require.NoError(t, err)

	l := NewSimLink(SimOptions{
		Port:       cfg.Simulator.Port,
		Timeout:    time.Second,
		Joints:     cfg.Simulator.Joints,
		Kinematics: kin,
	}, customlog.NewNopLogger())

	var endpoint string
	l.dial = func(ep string, timeout time.Duration, logger customlog.Logger) (simAPI, io.Closer, error) {
		endpoint = ep
		return fake, fake, nil
	}
	return l, &endpoint
}

func TestSimLink_SendResolvesAndStarts(t *testing.T) {
	fake := newFakeSim()
	l, endpoint := newTestSimLink(t, fake)
	ctx := context.Background()

	require.NoError(t, l.Connect(ctx, "127.0.0.1"))
	assert.Equal(t, "tcp://127.0.0.1:23000", *endpoint)

	w := kinematics.WheelVelocity{1.5, -1.5, 2.5, -2.5}
	require.NoError(t, l.SendWheelVelocities(ctx, w))
	assert.Equal(t, 1, fake.started)
	assert.Equal(t, map[int64]float64{11: 1.5, 12: -1.5, 13: 2.5, 14: -2.5}, fake.velocities)

	// handles are cached, running simulation is not restarted
	require.NoError(t, l.SendWheelVelocities(ctx, w))
	assert.Equal(t, 4, fake.lookups)
	assert.Equal(t, 1, fake.started)
	assert.True(t, l.IsConnected())
}

func TestSimLink_MissingRobotIsConfigurationError(t *testing.T) {
	fake := newFakeSim()
	delete(fake.objects, "./york/FRmotor")
	l, _ := newTestSimLink(t, fake)
	ctx := context.Background()
	require.NoError(t, l.Connect(ctx, "127.0.0.1"))

	err := l.SendWheelVelocities(ctx, kinematics.WheelVelocity{})
	assert.ErrorIs(t, err, ErrConfiguration)
	assert.Contains(t, err.Error(), "./york/FRmotor")

	// the failure is remembered for the session
	lookups := fake.lookups
	err = l.SendWheelVelocities(ctx, kinematics.WheelVelocity{})
	assert.ErrorIs(t, err, ErrConfiguration)
	assert.Equal(t, lookups, fake.lookups)
	assert.Zero(t, fake.started)
}

func TestSimLink_LookupTimeoutIsTransient(t *testing.T) {
	fake := newFakeSim()
	fake.objectErr = errors.New("resource temporarily unavailable")
	l, _ := newTestSimLink(t, fake)
	ctx := context.Background()
	require.NoError(t, l.Connect(ctx, "127.0.0.1"))

	err := l.SendWheelVelocities(ctx, kinematics.WheelVelocity{})
	assert.ErrorIs(t, err, ErrTransport)
	assert.NotErrorIs(t, err, ErrConfiguration)

	fake.objectErr = nil
	assert.NoError(t, l.SendWheelVelocities(ctx, kinematics.WheelVelocity{}))
}

func TestSimLink_ConnectFailures(t *testing.T) {
	t.Run("dial", func(t *testing.T) {
		l, _ := newTestSimLink(t, newFakeSim())
		l.dial = func(string, time.Duration, customlog.Logger) (simAPI, io.Closer, error) {
			return nil, nil, errors.New("no route to host")
		}
		assert.ErrorIs(t, l.Connect(context.Background(), "10.0.0.9"), ErrConnection)
		assert.False(t, l.IsConnected())
	})

	t.Run("no answer", func(t *testing.T) {
		fake := newFakeSim()
		fake.stateErr = errors.New("resource temporarily unavailable")
		l, _ := newTestSimLink(t, fake)
		assert.ErrorIs(t, l.Connect(context.Background(), "127.0.0.1"), ErrConnection)
		assert.Equal(t, 1, fake.closed)
		assert.ErrorIs(t, l.SendWheelVelocities(context.Background(), kinematics.WheelVelocity{}), ErrNotConnected)
	})

	t.Run("paused", func(t *testing.T) {
		fake := newFakeSim()
		fake.state = remoteapi.SimulationPaused
		l, _ := newTestSimLink(t, fake)
		assert.ErrorIs(t, l.Connect(context.Background(), "127.0.0.1"), ErrConnection)
		assert.False(t, l.IsConnected())
	})
}

func TestSimLink_PauseDisconnects(t *testing.T) {
	fake := newFakeSim()
	l, _ := newTestSimLink(t, fake)
	require.NoError(t, l.Connect(context.Background(), "127.0.0.1"))
	assert.True(t, l.IsConnected())

	fake.state = remoteapi.SimulationPaused
	assert.False(t, l.IsConnected())

	fake.state = remoteapi.SimulationAdvancingRunning
	fake.stateErr = errors.New("timeout")
	assert.False(t, l.IsConnected())
}

func TestSimLink_SetVelocityFailure(t *testing.T) {
	fake := newFakeSim()
	l, _ := newTestSimLink(t, fake)
	ctx := context.Background()
	require.NoError(t, l.Connect(ctx, "127.0.0.1"))

	fake.setErr = errors.New("timeout")
	assert.ErrorIs(t, l.SendWheelVelocities(ctx, kinematics.WheelVelocity{}), ErrTransport)
}

func TestSimLink_ShutdownIdempotent(t *testing.T) {
	fake := newFakeSim()
	l, _ := newTestSimLink(t, fake)

	require.NoError(t, l.Shutdown())
	require.NoError(t, l.Connect(context.Background(), "127.0.0.1"))
	require.NoError(t, l.Shutdown())
	require.NoError(t, l.Shutdown())
	assert.Equal(t, 1, fake.closed)
	assert.False(t, l.IsConnected())
}

func TestNew_SelectsTarget(t *testing.T) {
	cfg := config.Default()

	cfg.Target = config.TargetNetwork
	l, err := New(cfg, customlog.NewNopLogger())
	require.NoError(t, err)
	assert.IsType(t, &NetworkLink{}, l)
	assert.Equal(t, kinematics.DKCFV2, l.Kinematics().Coefficients.Name)

	cfg.Target = config.TargetSim
	l, err = New(cfg, customlog.NewNopLogger())
	require.NoError(t, err)
	assert.IsType(t, &SimLink{}, l)
	assert.Equal(t, kinematics.DKSim, l.Kinematics().Coefficients.Name)

	cfg.Target = "drone"
	_, err = New(cfg, customlog.NewNopLogger())
	assert.Error(t, err)
}
