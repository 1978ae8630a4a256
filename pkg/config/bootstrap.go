package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// DefaultConfigFile is looked up in the working directory when no path is given
const DefaultConfigFile = "york.yaml"

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level   string `yaml:"level" json:"level"`
	LogPath string `yaml:"log_path,omitempty" json:"log_path,omitempty"`
}

// ServerConfig holds the optional status HTTP server settings; 0 disables it
type ServerConfig struct {
	HTTPPort int `yaml:"http_port" json:"http_port"`
}

// TelemetryConfig holds the optional ZeroMQ telemetry publisher settings
type TelemetryConfig struct {
	PublishAddress string `yaml:"publish_address" json:"publish_address"`
	Topic          string `yaml:"topic" json:"topic"`
	QueueSize      int    `yaml:"queue_size" json:"queue_size"`
	Workers        int    `yaml:"workers" json:"workers"`
}

// Enabled reports whether a publish address is configured
func (t TelemetryConfig) Enabled() bool {
	return t.PublishAddress != ""
}

// LoadBootstrapConfig resolves the configuration file to use.
// An explicit path must exist. Without one, york.yaml in configDir is used
// when present and the defaults otherwise.
func LoadBootstrapConfig(path, configDir string) (*Config, string, error) {
	if path != "" {
		cfg, err := LoadConfig(path)
		if err != nil {
			return nil, "", fmt.Errorf("error loading config file '%s': %w", path, err)
		}
		return cfg, path, nil
	}

	candidate := filepath.Join(configDir, DefaultConfigFile)
	if _, err := os.Stat(candidate); err != nil {
		if os.IsNotExist(err) {
			return Default(), "", nil
		}
		return nil, "", fmt.Errorf("error checking config file '%s': %w", candidate, err)
	}

	cfg, err := LoadConfig(candidate)
	if err != nil {
		return nil, "", fmt.Errorf("error loading config file '%s': %w", candidate, err)
	}
	return cfg, candidate, nil
}
