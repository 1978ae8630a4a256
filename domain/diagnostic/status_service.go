// Package diagnostic keeps the latest teleop status for the HTTP API.
package diagnostic

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/cear-inacap/york-control/domain/teleop"
)

// Snapshot is the last reported loop status plus session counters
type Snapshot struct {
	RobotID      string        `json:"robot_id"`
	Status       teleop.Status `json:"status"`
	Error        string        `json:"error,omitempty"`
	Iterations   uint64        `json:"iterations"`
	SendFailures uint64        `json:"send_failures"`
	StartedAt    time.Time     `json:"started_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// Service records loop status updates. It is a teleop.Observer.
type Service struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

// NewService creates a diagnostic service instance
func NewService(robotID string) *Service {
	now := time.Now()
	return &Service{
		snapshot: Snapshot{
			RobotID:   robotID,
			Status:    teleop.Status{State: teleop.StateDisconnected},
			StartedAt: now,
			UpdatedAt: now,
		},
	}
}

// Observe stores the status and updates the counters
func (s *Service) Observe(status teleop.Status) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.Status = status
	s.snapshot.Error = ""
	if status.Err != nil {
		s.snapshot.Error = status.Err.Error()
	}
	if status.State == teleop.StateRunning {
		s.snapshot.Iterations = status.Iteration
		if status.Err != nil {
			s.snapshot.SendFailures++
		}
	}
	s.snapshot.UpdatedAt = time.Now()
}

// Snapshot returns the current diagnostic snapshot
func (s *Service) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.snapshot
}

// StatusHandler handles API requests for the teleop status
func (s *Service) StatusHandler(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":     "success",
		"diagnostic": s.Snapshot(),
	})
}
