package link

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cear-inacap/york-control/pkg/kinematics"
	customlog "github.com/cear-inacap/york-control/pkg/log"
)

type write struct {
	addr   uint16
	values []uint16
}

type fakeRegisters struct {
	openErr  error
	writeErr error
	unitID   uint8
	writes   []write
	closed   int
}

func (f *fakeRegisters) Open() error { return f.openErr }
func (f *fakeRegisters) Close() error {
	f.closed++
	return nil
}
func (f *fakeRegisters) SetUnitId(id uint8) error {
	f.unitID = id
	return nil
}
func (f *fakeRegisters) WriteRegisters(addr uint16, values []uint16) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.writes = append(f.writes, write{addr: addr, values: append([]uint16(nil), values...)})
	return nil
}

func newTestNetworkLink(t *testing.T, fake *fakeRegisters) (*NetworkLink, *string) {
	t.Helper()
	kin, err := kinematics.NewMecanum(kinematics.YorkGeometry, kinematics.DKCFV2)
	require.NoError(t, err)

	l := NewNetworkLink(NetworkOptions{
		Port:         502,
		UnitID:       1,
		BaseRegister: 40101,
		Timeout:      time.Second,
		Kinematics:   kin,
	}, customlog.NewNopLogger())

	var dialed string
	l.dial = func(url string, timeout time.Duration) (registerClient, error) {
		dialed = url
		return fake, nil
	}
	return l, &dialed
}

func TestScaleToRegister(t *testing.T) {
	tests := []struct {
		in   float64
		want uint16
	}{
		{0, 16384},
		{10, 32768},
		{-10, 0},
		{5, 24576},
		{-5, 8192},
		{0.0003, 16384},
		{0.0007, 16385},
		{25, 32768},
		{-25, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ScaleToRegister(tt.in), "ScaleToRegister(%v)", tt.in)
	}
}

func TestNetworkLink_ConnectAndSend(t *testing.T) {
	fake := &fakeRegisters{}
	l, dialed := newTestNetworkLink(t, fake)
	ctx := context.Background()

	assert.False(t, l.IsConnected())
	require.NoError(t, l.Connect(ctx, "192.168.1.50"))
	assert.True(t, l.IsConnected())
	assert.Equal(t, "tcp://192.168.1.50:502", *dialed)
	assert.Equal(t, uint8(1), fake.unitID)

	require.NoError(t, l.SendWheelVelocities(ctx, kinematics.WheelVelocity{0, 10, -10, 5}))
	require.Len(t, fake.writes, 1)
	assert.Equal(t, uint16(40101), fake.writes[0].addr)
	assert.Equal(t, []uint16{16384, 32768, 0, 24576}, fake.writes[0].values)
}

func TestNetworkLink_ConnectFailure(t *testing.T) {
	fake := &fakeRegisters{openErr: errors.New("connection refused")}
	l, _ := newTestNetworkLink(t, fake)

	err := l.Connect(context.Background(), "10.0.0.1")
	assert.ErrorIs(t, err, ErrConnection)
	assert.False(t, l.IsConnected())

	err = l.SendWheelVelocities(context.Background(), kinematics.WheelVelocity{})
	assert.ErrorIs(t, err, ErrNotConnected)
	assert.ErrorIs(t, err, ErrTransport)
	assert.Empty(t, fake.writes)
}

func TestNetworkLink_UnreachableAddress(t *testing.T) {
	kin, err := kinematics.NewMecanum(kinematics.YorkGeometry, kinematics.DKCFV2)
	require.NoError(t, err)
	l := NewNetworkLink(NetworkOptions{Port: 1, UnitID: 1, BaseRegister: 40101, Timeout: 200 * time.Millisecond, Kinematics: kin},
		customlog.NewNopLogger())

	err = l.Connect(context.Background(), "127.0.0.1")
	assert.ErrorIs(t, err, ErrConnection)
	assert.False(t, l.IsConnected())
	assert.NoError(t, l.Shutdown())
}

func TestNetworkLink_SendFailureKeepsLink(t *testing.T) {
	fake := &fakeRegisters{}
	l, _ := newTestNetworkLink(t, fake)
	ctx := context.Background()
	require.NoError(t, l.Connect(ctx, "127.0.0.1"))

	fake.writeErr = errors.New("i/o timeout")
	err := l.SendWheelVelocities(ctx, kinematics.WheelVelocity{1, 1, 1, 1})
	assert.ErrorIs(t, err, ErrTransport)
	assert.True(t, l.IsConnected())

	fake.writeErr = nil
	assert.NoError(t, l.SendWheelVelocities(ctx, kinematics.WheelVelocity{1, 1, 1, 1}))
}

func TestNetworkLink_ShutdownIdempotent(t *testing.T) {
	fake := &fakeRegisters{}
	l, _ := newTestNetworkLink(t, fake)

	require.NoError(t, l.Shutdown())
	require.NoError(t, l.Connect(context.Background(), "127.0.0.1"))
	require.NoError(t, l.Shutdown())
	require.NoError(t, l.Shutdown())
	assert.Equal(t, 1, fake.closed)
	assert.False(t, l.IsConnected())
}
