package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/multierr"

	"github.com/cear-inacap/york-control/domain/diagnostic"
	"github.com/cear-inacap/york-control/domain/teleop"
	"github.com/cear-inacap/york-control/pkg/api"
	"github.com/cear-inacap/york-control/pkg/config"
	"github.com/cear-inacap/york-control/pkg/input"
	"github.com/cear-inacap/york-control/pkg/link"
	customlog "github.com/cear-inacap/york-control/pkg/log"
	"github.com/cear-inacap/york-control/pkg/zeromq"
	"github.com/cear-inacap/york-control/services"
)

// TeleopCommand runs one teleoperation session. Flags override the
// configuration file.
type TeleopCommand struct {
	Config    string `short:"c" long:"config" description:"Configuration file (default ./york.yaml when present)"`
	Target    string `short:"t" long:"target" choice:"network" choice:"sim" description:"Actuation target"`
	Address   string `short:"a" long:"address" description:"Robot or simulator host"`
	Input     string `short:"i" long:"input" choice:"gamepad" choice:"keyboard" choice:"websocket" description:"Input source"`
	RateHz    int    `long:"rate-hz" default:"-1" description:"Control loop rate, 0 for unthrottled (-1 keeps the configured rate)"`
	HTTPPort  int    `long:"http-port" default:"-1" description:"Status API port, 0 disables it (-1 keeps the configured port)"`
	Telemetry string `long:"telemetry" description:"ZeroMQ PUB address for wheel command telemetry, e.g. tcp://*:5560"`
	LogLevel  string `long:"log-level" choice:"debug" choice:"info" choice:"warn" choice:"error" description:"Log level"`
}

func (c *TeleopCommand) apply(cfg *config.Config) {
	if c.Target != "" {
		cfg.Target = c.Target
	}
	if c.Address != "" {
		cfg.Address = c.Address
	}
	if c.Input != "" {
		cfg.Input = c.Input
	}
	if c.RateHz >= 0 {
		cfg.Loop.RateHz = c.RateHz
	}
	if c.HTTPPort >= 0 {
		cfg.Server.HTTPPort = c.HTTPPort
	}
	if c.Telemetry != "" {
		cfg.Telemetry.PublishAddress = c.Telemetry
	}
	if c.LogLevel != "" {
		cfg.Logging.Level = c.LogLevel
	}
}

func (c *TeleopCommand) Execute(args []string) (err error) {
	cfg, cfgPath, err := config.LoadBootstrapConfig(c.Config, ".")
	if err != nil {
		return err
	}
	c.apply(cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	console := customlog.NewTerminalWriter(os.Stderr)
	logger, err := customlog.NewLogrusLoggerWithConsole(cfg.Logging.Level, cfg.Logging.LogPath, console)
	if err != nil {
		return err
	}
	if cfgPath != "" {
		logger.Infof("Loaded configuration from %s", cfgPath)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	runCtx, cancelRun := context.WithCancelCause(ctx)
	defer cancelRun(nil)

	robot, err := link.New(cfg, logger)
	if err != nil {
		return err
	}

	source, err := input.Open(cfg, logger)
	if err != nil {
		return err
	}
	sourceClosed := false
	closeSource := func() error {
		if sourceClosed {
			return nil
		}
		sourceClosed = true
		console.SetRaw(false)
		return source.Close()
	}
	defer func() { err = multierr.Append(err, closeSource()) }()

	raw := false
	if t, ok := source.(interface{ RawTerminal() bool }); ok {
		raw = t.RawTerminal()
	}
	console.SetRaw(raw)

	loop := teleop.NewLoop(robot, source, teleop.Options{
		Target:  cfg.Target,
		Address: cfg.Address,
		Period:  cfg.LoopPeriod(),
	}, logger)

	reporter := teleop.NewConsoleReporter(os.Stdout, raw)
	if h, ok := source.(input.Helper); ok {
		reporter.Banner("YORK teleoperation", h.Help())
	}
	loop.AddObserver(reporter)

	diag := diagnostic.NewService(cfg.RobotID)
	loop.AddObserver(diag)

	if cfg.Telemetry.Enabled() {
		sender, sendErr := zeromq.NewMessageSender(cfg.Telemetry.PublishAddress, logger)
		if sendErr != nil {
			return sendErr
		}
		publisher := zeromq.NewTelemetryPublisher(sender, cfg.Telemetry.Topic, cfg.Telemetry.Workers, cfg.Telemetry.QueueSize, logger)
		loop.AddObserver(publisher)
		defer func() {
			publisher.Stop()
			err = multierr.Append(err, sender.Close())
		}()
	}

	if cfg.Server.HTTPPort > 0 {
		cfgService, svcErr := services.NewTeleopConfigService(cfg, cfgPath, logger)
		if svcErr != nil {
			return svcErr
		}
		deps := api.Dependencies{Diagnostic: diag, Config: cfgService}
		if ws, ok := source.(*input.WebSocket); ok {
			deps.Control = ws
		}
		app := api.NewApp(deps, logger)

		ln, listenErr := api.Listen(cfg.Server.HTTPPort)
		if listenErr != nil {
			logger.Errorf("Failed to start HTTP server: %v", listenErr)
			return listenErr
		}

		serverCtx, stopServer := context.WithCancel(ctx)
		serverErr := make(chan error, 1)
		go func() {
			serveErr := api.ServeListener(serverCtx, app, ln, logger)
			if serveErr != nil {
				logger.Errorf("HTTP server stopped: %v", serveErr)
				// the session cannot be controlled or observed without it
				cancelRun(serveErr)
			}
			serverErr <- serveErr
		}()
		defer func() {
			stopServer()
			if serveErr := <-serverErr; serveErr != nil && !errors.Is(err, serveErr) {
				err = multierr.Append(err, serveErr)
			}
		}()
	}

	runErr := loop.Run(runCtx)
	// restore the terminal before anything else is printed
	closeErr := closeSource()

	if errors.Is(runErr, context.Canceled) {
		if cause := context.Cause(runCtx); !errors.Is(cause, context.Canceled) {
			runErr = cause
		} else {
			logger.Infof("Interrupted")
			runErr = nil
		}
	}
	if runErr != nil {
		return multierr.Append(fmt.Errorf("teleop session ended: %w", runErr), closeErr)
	}
	return closeErr
}
