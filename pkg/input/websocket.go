package input

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync/atomic"
	"syscall"

	"github.com/gofiber/contrib/websocket"

	"github.com/cear-inacap/york-control/pkg/kinematics"
	customlog "github.com/cear-inacap/york-control/pkg/log"
)

// Vector3 is a 3D vector as found in geometry_msgs/Twist
type Vector3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// ControlMessage is a Twist style command. Linear x/y and angular z are
// intents in [-1, 1]; the speed flags behave like held buttons.
type ControlMessage struct {
	Linear    Vector3 `json:"linear"`
	Angular   Vector3 `json:"angular"`
	SpeedUp   bool    `json:"speed_up"`
	SpeedDown bool    `json:"speed_down"`
}

// Intent returns the body velocity intent carried by the message
func (m ControlMessage) Intent() kinematics.BodyVelocity {
	return kinematics.BodyVelocity{VX: m.Linear.X, VY: m.Linear.Y, Omega: m.Angular.Z}
}

// MessageConn is the read side of a websocket connection
type MessageConn interface {
	ReadMessage() (messageType int, p []byte, err error)
	RemoteAddr() net.Addr
}

// WebSocket accepts control messages from websocket clients. When the last
// client disconnects the intent drops to zero.
type WebSocket struct {
	cell    IntentCell
	logger  customlog.Logger
	clients atomic.Int32
}

// NewWebSocket creates a websocket input source. Connections are fed to it
// by the HTTP server.
func NewWebSocket(logger customlog.Logger) *WebSocket {
	return &WebSocket{logger: logger.WithField("input", "websocket")}
}

// HandleMessage applies one JSON control message
func (w *WebSocket) HandleMessage(data []byte) error {
	var msg ControlMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return fmt.Errorf("invalid control message: %w", err)
	}
	w.cell.SetIntent(msg.Intent())
	w.cell.SetSpeedButtons(msg.SpeedUp, msg.SpeedDown)
	return nil
}

// Handle serves a fiber websocket connection until it closes
func (w *WebSocket) Handle(conn *websocket.Conn) {
	w.Serve(conn)
}

// Serve reads control messages from conn until it closes
func (w *WebSocket) Serve(conn MessageConn) {
	w.logger.Infof("Control WebSocket connected: %s", conn.RemoteAddr())
	w.clients.Add(1)
	defer func() {
		if w.clients.Add(-1) == 0 {
			w.cell.SetIntent(kinematics.BodyVelocity{})
			w.cell.SetSpeedButtons(false, false)
		}
		w.logger.Infof("Control WebSocket disconnected: %s", conn.RemoteAddr())
	}()

	for {
		mt, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) &&
				!errors.Is(err, syscall.EPIPE) && !errors.Is(err, syscall.ECONNRESET) {
				w.logger.Warnf("Control WS read error: %v", err)
			}
			return
		}
		if mt != websocket.TextMessage {
			w.logger.Debugf("Ignoring non-text Control WS message type: %d", mt)
			continue
		}
		if err := w.HandleMessage(msg); err != nil {
			w.logger.Warnf("%v: %s", err, string(msg))
		}
	}
}

// Clients returns the number of connected control clients
func (w *WebSocket) Clients() int {
	return int(w.clients.Load())
}

// Poll returns the latest command
func (w *WebSocket) Poll(ctx context.Context) (Sample, error) {
	if err := ctx.Err(); err != nil {
		return Sample{}, err
	}
	return w.cell.Snapshot()
}

// Step returns the per-poll speed factors of a held button
func (w *WebSocket) Step() SpeedStep {
	return GamepadStep
}

// Help describes how to drive over websocket
func (w *WebSocket) Help() string {
	return `Send {"linear":{"x":..,"y":..},"angular":{"z":..}} to /ws/control`
}

// Close stops accepting commands
func (w *WebSocket) Close() error {
	w.cell.Stop(ErrQuit)
	return nil
}
