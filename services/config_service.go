package services

import (
	"fmt"

	"github.com/cear-inacap/york-control/pkg/config"
	customlog "github.com/cear-inacap/york-control/pkg/log"
)

// TeleopConfigService exposes the configuration the session was started
// with. It is read-only: changes take effect on the next start.
type TeleopConfigService interface {
	GetCurrentConfig() *config.Config
	GetCurrentConfigYAML() ([]byte, error)
	Source() string
}

// teleopConfigService implements the TeleopConfigService interface.
type teleopConfigService struct {
	path    string
	logger  customlog.Logger
	current *config.Config
}

// NewTeleopConfigService wraps the loaded configuration. path is the file it
// came from, empty when the defaults are in use.
func NewTeleopConfigService(cfg *config.Config, path string, logger customlog.Logger) (TeleopConfigService, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	if logger == nil {
		logger = customlog.NewNopLogger()
	}

	if path == "" {
		logger.Infof("TeleopConfigService serving built-in defaults")
	} else {
		logger.Infof("TeleopConfigService initialized for path: %s", path)
	}

	return &teleopConfigService{
		path:    path,
		logger:  logger,
		current: cfg,
	}, nil
}

// GetCurrentConfig returns the active configuration. Callers must not modify it.
func (s *teleopConfigService) GetCurrentConfig() *config.Config {
	return s.current
}

// GetCurrentConfigYAML returns the effective configuration, command line
// overrides included, as YAML
func (s *teleopConfigService) GetCurrentConfigYAML() ([]byte, error) {
	data, err := s.current.Marshal()
	if err != nil {
		s.logger.Errorf("Error encoding configuration for YAML export: %v", err)
		return nil, fmt.Errorf("error encoding configuration: %w", err)
	}
	return data, nil
}

// Source returns the configuration file the session started from, or
// "defaults"
func (s *teleopConfigService) Source() string {
	if s.path == "" {
		return "defaults"
	}
	return s.path
}
