package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cear-inacap/york-control/pkg/kinematics"
)

// Actuation targets
const (
	TargetNetwork = "network"
	TargetSim     = "sim"
)

// Input sources
const (
	InputGamepad   = "gamepad"
	InputKeyboard  = "keyboard"
	InputWebSocket = "websocket"
)

// Config represents the YORK teleoperation configuration
type Config struct {
	Version   string          `yaml:"version" json:"version"`
	RobotID   string          `yaml:"robot_id" json:"robot_id"`
	Target    string          `yaml:"target" json:"target"`
	Address   string          `yaml:"address" json:"address"`
	Input     string          `yaml:"input" json:"input"`
	Network   NetworkConfig   `yaml:"network" json:"network"`
	Simulator SimulatorConfig `yaml:"simulator" json:"simulator"`
	Loop      LoopConfig      `yaml:"loop" json:"loop"`
	Gamepad   GamepadConfig   `yaml:"gamepad" json:"gamepad"`
	Keyboard  KeyboardConfig  `yaml:"keyboard" json:"keyboard"`
	Logging   LoggingConfig   `yaml:"logging" json:"logging"`
	Server    ServerConfig    `yaml:"server" json:"server"`
	Telemetry TelemetryConfig `yaml:"telemetry" json:"telemetry"`
}

// NetworkConfig holds the Modbus/TCP settings for the real robot
type NetworkConfig struct {
	Port         int                  `yaml:"port" json:"port"`
	UnitID       int                  `yaml:"unit_id" json:"unit_id"`
	BaseRegister int                  `yaml:"base_register" json:"base_register"`
	TimeoutMs    int                  `yaml:"timeout_ms" json:"timeout_ms"`
	Geometry     *kinematics.Geometry `yaml:"geometry,omitempty" json:"geometry,omitempty"`
	DK           string               `yaml:"dk" json:"dk"`
}

// SimulatorConfig holds the CoppeliaSim remote API settings
type SimulatorConfig struct {
	Port      int                  `yaml:"port" json:"port"`
	TimeoutMs int                  `yaml:"timeout_ms" json:"timeout_ms"`
	Joints    []string             `yaml:"joints" json:"joints"`
	Geometry  *kinematics.Geometry `yaml:"geometry,omitempty" json:"geometry,omitempty"`
	DK        string               `yaml:"dk" json:"dk"`
}

// LoopConfig holds control loop pacing; 0 means unthrottled
type LoopConfig struct {
	RateHz int `yaml:"rate_hz" json:"rate_hz"`
}

// GamepadConfig maps joystick axis and button numbers onto intents. Numbers
// follow the Linux joystick API (first axis and first button are 0); -1
// leaves a control unmapped.
type GamepadConfig struct {
	Device    string `yaml:"device" json:"device"`
	AxisVX    int    `yaml:"axis_vx" json:"axis_vx"`
	AxisVY    int    `yaml:"axis_vy" json:"axis_vy"`
	AxisOmega int    `yaml:"axis_omega" json:"axis_omega"`
	SpeedUp   int    `yaml:"button_speed_up" json:"button_speed_up"`
	SpeedDown int    `yaml:"button_speed_down" json:"button_speed_down"`
}

// KeyboardConfig holds keyboard listener settings
type KeyboardConfig struct {
	ReleaseMs int `yaml:"release_ms" json:"release_ms"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Version: "1.0",
		RobotID: "york",
		Target:  TargetSim,
		Address: "127.0.0.1",
		Input:   InputKeyboard,
		Network: NetworkConfig{
			Port:         502,
			UnitID:       1,
			BaseRegister: 40101,
			TimeoutMs:    1000,
			DK:           kinematics.DKCFV2,
		},
		Simulator: SimulatorConfig{
			Port:      23000,
			TimeoutMs: 2000,
			Joints: []string{
				"./york/RLmotor",
				"./york/RRmotor",
				"./york/FRmotor",
				"./york/FLmotor",
			},
			DK: kinematics.DKSim,
		},
		Loop: LoopConfig{RateHz: 0},
		Gamepad: GamepadConfig{
			Device:    "/dev/input/js0",
			AxisVX:    1,
			AxisVY:    3,
			AxisOmega: 0,
			SpeedUp:   1,
			SpeedDown: 0,
		},
		Keyboard: KeyboardConfig{ReleaseMs: 700},
		Logging:  LoggingConfig{Level: "info"},
		Telemetry: TelemetryConfig{
			Topic:     "york.telemetry.wheels",
			QueueSize: 64,
			Workers:   1,
		},
	}
}

// LoadConfig loads configuration from the specified file path on top of the
// defaults and validates it
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML on top of the defaults and validates the result
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks required fields and value ranges
func (c *Config) Validate() error {
	switch c.Target {
	case TargetNetwork, TargetSim:
	default:
		return fmt.Errorf("invalid target %q: expected %q or %q", c.Target, TargetNetwork, TargetSim)
	}
	switch c.Input {
	case InputGamepad, InputKeyboard, InputWebSocket:
	default:
		return fmt.Errorf("invalid input %q: expected %q, %q or %q", c.Input, InputGamepad, InputKeyboard, InputWebSocket)
	}
	if c.Input == InputWebSocket && c.Server.HTTPPort <= 0 {
		return fmt.Errorf("input %q requires server.http_port", InputWebSocket)
	}
	if c.Server.HTTPPort < 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("invalid server.http_port %d", c.Server.HTTPPort)
	}
	if c.Address == "" {
		return fmt.Errorf("missing required field in config: address")
	}
	if c.Network.Port <= 0 || c.Network.Port > 65535 {
		return fmt.Errorf("invalid network.port %d", c.Network.Port)
	}
	if c.Network.UnitID < 0 || c.Network.UnitID > 255 {
		return fmt.Errorf("invalid network.unit_id %d", c.Network.UnitID)
	}
	if c.Network.BaseRegister < 0 || c.Network.BaseRegister > 65535-3 {
		return fmt.Errorf("invalid network.base_register %d", c.Network.BaseRegister)
	}
	if c.Network.TimeoutMs <= 0 {
		return fmt.Errorf("invalid network.timeout_ms %d", c.Network.TimeoutMs)
	}
	if c.Simulator.Port <= 0 || c.Simulator.Port > 65535 {
		return fmt.Errorf("invalid simulator.port %d", c.Simulator.Port)
	}
	if c.Simulator.TimeoutMs <= 0 {
		return fmt.Errorf("invalid simulator.timeout_ms %d", c.Simulator.TimeoutMs)
	}
	if len(c.Simulator.Joints) != 4 {
		return fmt.Errorf("simulator.joints must list 4 joint paths, got %d", len(c.Simulator.Joints))
	}
	for name, n := range map[string]int{
		"axis_vx":           c.Gamepad.AxisVX,
		"axis_vy":           c.Gamepad.AxisVY,
		"axis_omega":        c.Gamepad.AxisOmega,
		"button_speed_up":   c.Gamepad.SpeedUp,
		"button_speed_down": c.Gamepad.SpeedDown,
	} {
		if n < -1 || n > 254 {
			return fmt.Errorf("invalid gamepad.%s %d", name, n)
		}
	}
	if c.Loop.RateHz < 0 {
		return fmt.Errorf("invalid loop.rate_hz %d", c.Loop.RateHz)
	}
	if c.Keyboard.ReleaseMs <= 0 {
		return fmt.Errorf("invalid keyboard.release_ms %d", c.Keyboard.ReleaseMs)
	}
	if _, err := c.NetworkKinematics(); err != nil {
		return fmt.Errorf("network kinematics: %w", err)
	}
	if _, err := c.SimulatorKinematics(); err != nil {
		return fmt.Errorf("simulator kinematics: %w", err)
	}
	return nil
}

// NetworkKinematics returns the transform used by the real robot link
func (c *Config) NetworkKinematics() (kinematics.Mecanum, error) {
	return kinematics.NewMecanum(geometryOrDefault(c.Network.Geometry), c.Network.DK)
}

// SimulatorKinematics returns the transform used by the simulator link
func (c *Config) SimulatorKinematics() (kinematics.Mecanum, error) {
	return kinematics.NewMecanum(geometryOrDefault(c.Simulator.Geometry), c.Simulator.DK)
}

// NetworkTimeout returns the Modbus request timeout
func (c *Config) NetworkTimeout() time.Duration {
	return time.Duration(c.Network.TimeoutMs) * time.Millisecond
}

// SimulatorTimeout returns the remote API request timeout
func (c *Config) SimulatorTimeout() time.Duration {
	return time.Duration(c.Simulator.TimeoutMs) * time.Millisecond
}

// KeyboardRelease returns how long a key is held after its last repeat
func (c *Config) KeyboardRelease() time.Duration {
	return time.Duration(c.Keyboard.ReleaseMs) * time.Millisecond
}

// LoopPeriod returns the pause between iterations, 0 when unthrottled
func (c *Config) LoopPeriod() time.Duration {
	if c.Loop.RateHz == 0 {
		return 0
	}
	return time.Second / time.Duration(c.Loop.RateHz)
}

// Marshal encodes the configuration as YAML
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

func geometryOrDefault(g *kinematics.Geometry) kinematics.Geometry {
	if g == nil {
		return kinematics.YorkGeometry
	}
	return *g
}
