package remoteapi

import "fmt"

// Simulation states reported by sim.getSimulationState
const (
	SimulationStopped          int64 = 0x00
	SimulationPaused           int64 = 0x08
	SimulationAdvancingRunning int64 = 0x11
)

// Sim wraps the handful of "sim" namespace calls used by YORK
type Sim struct {
	client *Client
}

// NewSim returns a typed view of the "sim" namespace
func NewSim(client *Client) *Sim {
	return &Sim{client: client}
}

// GetObject resolves an object path such as "./york/RLmotor" to a handle
func (s *Sim) GetObject(path string) (int64, error) {
	ret, err := s.client.Call("sim.getObject", path)
	if err != nil {
		return 0, err
	}
	return firstInt(ret, "sim.getObject")
}

// GetSimulationState returns one of the Simulation* constants
func (s *Sim) GetSimulationState() (int64, error) {
	ret, err := s.client.Call("sim.getSimulationState")
	if err != nil {
		return 0, err
	}
	return firstInt(ret, "sim.getSimulationState")
}

// StartSimulation starts (or resumes) the simulation
func (s *Sim) StartSimulation() error {
	_, err := s.client.Call("sim.startSimulation")
	return err
}

// SetJointTargetVelocity sets a joint's target velocity in rad/s
func (s *Sim) SetJointTargetVelocity(handle int64, velocity float64) error {
	_, err := s.client.Call("sim.setJointTargetVelocity", handle, velocity)
	return err
}

func firstInt(ret []interface{}, fn string) (int64, error) {
	if len(ret) == 0 {
		return 0, fmt.Errorf("%w: %s returned nothing", ErrInvalidResponse, fn)
	}
	return AsInt64(ret[0])
}
