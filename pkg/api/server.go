// Package api serves the optional YORK status HTTP API and the websocket
// control endpoint.
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/cear-inacap/york-control/domain/diagnostic"
	"github.com/cear-inacap/york-control/pkg/input"
	customlog "github.com/cear-inacap/york-control/pkg/log"
	"github.com/cear-inacap/york-control/services"
)

// ShutdownTimeout bounds graceful shutdown of the HTTP server
const ShutdownTimeout = 5 * time.Second

// Dependencies are the services exposed over HTTP. Control is nil unless the
// session reads its intent from a websocket.
type Dependencies struct {
	Diagnostic *diagnostic.Service
	Config     services.TeleopConfigService
	Control    *input.WebSocket
}

// NewApp creates the fiber app with every route registered
func NewApp(deps Dependencies, logger customlog.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "YORK Control",
		ErrorHandler:          customErrorHandler,
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(requestLogger(logger))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "online",
			"service": "york control",
		})
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "healthy"})
	})

	if deps.Diagnostic != nil {
		app.Get("/api/v1/status", deps.Diagnostic.StatusHandler)
	}
	if deps.Config != nil {
		RegisterConfigRoutes(app, deps.Config, logger)
	}
	if deps.Control != nil {
		RegisterControlRoutes(app, deps.Control, logger)
	}

	return app
}

// Listen binds the HTTP port so a busy port is reported before the session
// starts driving the robot
func Listen(port int) (net.Listener, error) {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return nil, fmt.Errorf("http server: %w", err)
	}
	return ln, nil
}

// Serve listens on port until ctx is cancelled, then shuts down gracefully
func Serve(ctx context.Context, app *fiber.App, port int, logger customlog.Logger) error {
	ln, err := Listen(port)
	if err != nil {
		return err
	}
	return ServeListener(ctx, app, ln, logger)
}

// ServeListener serves app on an already bound listener until ctx is
// cancelled or the server fails
func ServeListener(ctx context.Context, app *fiber.App, ln net.Listener, logger customlog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Infof("HTTP server listening on %s", ln.Addr())
		errCh <- app.Listener(ln)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Infof("Shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		return fmt.Errorf("http server forced to shutdown: %w", err)
	}
	return nil
}

func requestLogger(logger customlog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		logger.Debugf("%s %s -> %d (%s)", c.Method(), c.Path(), c.Response().StatusCode(), time.Since(start))
		return err
	}
}

// customErrorHandler renders errors as JSON
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
	})
}
