package main

import (
	"bytes"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cear-inacap/york-control/pkg/config"
)

func TestTeleopCommand_FlagsOverrideConfig(t *testing.T) {
	var cmd TeleopCommand
	p := flags.NewParser(&cmd, flags.None)
	_, err := p.ParseArgs([]string{"--target", "network", "--address", "10.0.0.7", "--input", "gamepad", "--rate-hz", "25", "--telemetry", "tcp://*:5560"})
	require.NoError(t, err)

	cfg := config.Default()
	cmd.apply(cfg)

	assert.Equal(t, config.TargetNetwork, cfg.Target)
	assert.Equal(t, "10.0.0.7", cfg.Address)
	assert.Equal(t, config.InputGamepad, cfg.Input)
	assert.Equal(t, 25, cfg.Loop.RateHz)
	assert.Equal(t, 0, cfg.Server.HTTPPort, "unset port keeps the configured value")
	assert.True(t, cfg.Telemetry.Enabled())
	require.NoError(t, cfg.Validate())
}

func TestTeleopCommand_DefaultsKeepConfig(t *testing.T) {
	var cmd TeleopCommand
	_, err := flags.NewParser(&cmd, flags.None).ParseArgs(nil)
	require.NoError(t, err)

	cfg := config.Default()
	cmd.apply(cfg)
	assert.Equal(t, config.Default(), cfg)
}

func TestTeleopCommand_RejectsUnknownTarget(t *testing.T) {
	var cmd TeleopCommand
	_, err := flags.NewParser(&cmd, flags.None).ParseArgs([]string{"--target", "drone"})
	assert.Error(t, err)
}

func TestTeleopCommand_BusyHTTPPortEndsSession(t *testing.T) {
	t.Chdir(t.TempDir())

	busy, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	defer busy.Close()
	port := strconv.Itoa(busy.Addr().(*net.TCPAddr).Port)

	var cmd TeleopCommand
	_, err = flags.NewParser(&cmd, flags.None).ParseArgs([]string{
		"--target", "network", "--input", "websocket", "--http-port", port, "--log-level", "error",
	})
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- cmd.Execute(nil) }()
	select {
	case err := <-done:
		require.Error(t, err)
		assert.Contains(t, err.Error(), "http server")
		assert.Contains(t, err.Error(), "address already in use")
	case <-time.After(5 * time.Second):
		t.Fatal("session kept running without its HTTP server")
	}
}

func TestIKCommand(t *testing.T) {
	t.Chdir(t.TempDir())

	var out bytes.Buffer
	cmd := IKCommand{out: &out}
	_, err := flags.NewParser(&cmd, flags.None).ParseArgs([]string{"--target", "network", "--vx", "0.107"})
	require.NoError(t, err)
	require.NoError(t, cmd.Execute(nil))

	// 0.107 m/s forward over r1+r2 = 0.107 m gives 1 rad/s on every wheel
	assert.Contains(t, out.String(), "wheels (rad/s) : [1.0000, 1.0000, 1.0000, 1.0000]")
	assert.Contains(t, out.String(), "registers      : [18022 18022 18022 18022]")
}

func TestIKCommand_SimHasNoRegisters(t *testing.T) {
	t.Chdir(t.TempDir())

	var out bytes.Buffer
	cmd := IKCommand{out: &out}
	_, err := flags.NewParser(&cmd, flags.None).ParseArgs([]string{"--target", "sim", "--omega=-1"})
	require.NoError(t, err)
	require.NoError(t, cmd.Execute(nil))
	assert.NotContains(t, out.String(), "registers")
}

func TestDKCommand_ExactRoundTrip(t *testing.T) {
	t.Chdir(t.TempDir())

	var out bytes.Buffer
	cmd := DKCommand{out: &out}
	_, err := flags.NewParser(&cmd, flags.None).ParseArgs([]string{"--dk", "exact", "--w1", "1", "--w2", "1", "--w3", "1", "--w4", "1"})
	require.NoError(t, err)
	require.NoError(t, cmd.Execute(nil))
	assert.Equal(t, "vx, vy, omega_r : [0.1070, 0.0000, 0.0000] (exact)\n", out.String())
}

func TestKinematicsOptions_ReadsConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "york.yaml")
	yaml := "target: network\nnetwork:\n  dk: exact\n  geometry: {r1: 0.2, r2: 0.0, a: 0.1, b: 0.1}\n"
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	m, target, err := KinematicsOptions{Config: path}.mecanum()
	require.NoError(t, err)
	assert.Equal(t, config.TargetNetwork, target)
	assert.Equal(t, 0.2, m.Geometry.R1)

	_, _, err = KinematicsOptions{Config: filepath.Join(dir, "missing.yaml")}.mecanum()
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "missing.yaml"))
}
