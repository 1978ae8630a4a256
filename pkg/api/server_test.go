package api

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http/httptest"
	"testing"
	"time"

	fastws "github.com/fasthttp/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cear-inacap/york-control/domain/diagnostic"
	"github.com/cear-inacap/york-control/domain/teleop"
	"github.com/cear-inacap/york-control/pkg/config"
	"github.com/cear-inacap/york-control/pkg/input"
	"github.com/cear-inacap/york-control/pkg/kinematics"
	customlog "github.com/cear-inacap/york-control/pkg/log"
	"github.com/cear-inacap/york-control/services"
)

func newTestApp(t *testing.T, control *input.WebSocket) (*fiber.App, *diagnostic.Service) {
	t.Helper()
	cfgSvc, err := services.NewTeleopConfigService(config.Default(), "", customlog.NewNopLogger())
	require.NoError(t, err)
	diag := diagnostic.NewService("york")
	return NewApp(Dependencies{Diagnostic: diag, Config: cfgSvc, Control: control}, customlog.NewNopLogger()), diag
}

func get(t *testing.T, app *fiber.App, path string) (int, []byte) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("GET", path, nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, body
}

func TestHealth(t *testing.T) {
	app, _ := newTestApp(t, nil)
	code, body := get(t, app, "/health")
	assert.Equal(t, fiber.StatusOK, code)
	assert.JSONEq(t, `{"status":"healthy"}`, string(body))
}

func TestStatusRoute(t *testing.T) {
	app, diag := newTestApp(t, nil)
	diag.Observe(teleop.Status{State: teleop.StateRunning, Iteration: 12})

	code, body := get(t, app, "/api/v1/status")
	require.Equal(t, fiber.StatusOK, code)

	var decoded struct {
		Diagnostic diagnostic.Snapshot `json:"diagnostic"`
	}
	require.NoError(t, json.Unmarshal(body, &decoded))
	assert.Equal(t, uint64(12), decoded.Diagnostic.Iterations)
}

func TestConfigRoute(t *testing.T) {
	app, _ := newTestApp(t, nil)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/config/teleop", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/x-yaml", resp.Header.Get(fiber.HeaderContentType))
	assert.Equal(t, "defaults", resp.Header.Get("X-Config-Source"))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	cfg, err := config.Parse(body)
	require.NoError(t, err)
	assert.Equal(t, config.TargetSim, cfg.Target)
}

func TestConfigRoute_ReportsOverrides(t *testing.T) {
	cfg := config.Default()
	cfg.Target = config.TargetNetwork
	cfg.Address = "10.0.0.7"
	cfgSvc, err := services.NewTeleopConfigService(cfg, "/etc/york/york.yaml", customlog.NewNopLogger())
	require.NoError(t, err)
	app := NewApp(Dependencies{Config: cfgSvc}, customlog.NewNopLogger())

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/config/teleop", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "/etc/york/york.yaml", resp.Header.Get("X-Config-Source"))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	served, err := config.Parse(body)
	require.NoError(t, err)
	assert.Equal(t, config.TargetNetwork, served.Target)
	assert.Equal(t, "10.0.0.7", served.Address)
}

func TestConfigRoute_IsReadOnly(t *testing.T) {
	app, _ := newTestApp(t, nil)
	resp, err := app.Test(httptest.NewRequest("PUT", "/api/v1/config/teleop", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusMethodNotAllowed, resp.StatusCode)
}

func TestControlRoute_Disabled(t *testing.T) {
	app, _ := newTestApp(t, nil)
	code, body := get(t, app, ControlPath)
	assert.Equal(t, fiber.StatusNotFound, code)
	assert.Contains(t, string(body), "error")
}

func TestControlRoute_RequiresUpgrade(t *testing.T) {
	app, _ := newTestApp(t, input.NewWebSocket(customlog.NewNopLogger()))
	code, _ := get(t, app, ControlPath)
	assert.Equal(t, fiber.StatusUpgradeRequired, code)
}

func TestControlRoute_DrivesSource(t *testing.T) {
	source := input.NewWebSocket(customlog.NewNopLogger())
	app, _ := newTestApp(t, source)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go app.Listener(ln)
	defer app.Shutdown()

	conn, _, err := fastws.DefaultDialer.Dial("ws://"+ln.Addr().String()+ControlPath, nil)
	require.NoError(t, err)

	msg := `{"linear":{"x":0.5,"y":-1},"angular":{"z":0.25}}`
	require.NoError(t, conn.WriteMessage(fastws.TextMessage, []byte(msg)))

	want := kinematics.BodyVelocity{VX: 0.5, VY: -1, Omega: 0.25}
	require.Eventually(t, func() bool {
		s, err := source.Poll(context.Background())
		return err == nil && s.Intent == want
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, source.Clients())

	// the intent drops to zero when the operator goes away
	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool {
		s, err := source.Poll(context.Background())
		return err == nil && s.Intent == kinematics.BodyVelocity{} && source.Clients() == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestServe_StopsOnCancel(t *testing.T) {
	app, _ := newTestApp(t, nil)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Serve(ctx, app, port, customlog.NewNopLogger()) }()

	require.Eventually(t, func() bool {
		c, err := net.Dial("tcp", ln.Addr().String())
		if err != nil {
			return false
		}
		c.Close()
		return true
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(ShutdownTimeout + time.Second):
		t.Fatal("server did not stop")
	}
}

func TestServe_BusyPort(t *testing.T) {
	app, _ := newTestApp(t, nil)

	busy, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	defer busy.Close()
	port := busy.Addr().(*net.TCPAddr).Port

	_, err = Listen(port)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "http server")

	done := make(chan error, 1)
	go func() { done <- Serve(context.Background(), app, port, customlog.NewNopLogger()) }()
	select {
	case err := <-done:
		assert.ErrorContains(t, err, "address already in use")
	case <-time.After(time.Second):
		t.Fatal("Serve did not report the busy port")
	}
}
