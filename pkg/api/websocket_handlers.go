package api

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"github.com/cear-inacap/york-control/pkg/input"
	customlog "github.com/cear-inacap/york-control/pkg/log"
)

// ControlPath is where websocket clients stream control messages
const ControlPath = "/ws/control"

// RegisterControlRoutes exposes the websocket input source. Plain HTTP
// requests to the endpoint are rejected with 426.
func RegisterControlRoutes(app *fiber.App, source *input.WebSocket, logger customlog.Logger) {
	app.Use(ControlPath, func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get(ControlPath, websocket.New(source.Handle))

	logger.Debugf("Registered websocket control endpoint at %s", ControlPath)
}
