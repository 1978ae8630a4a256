package processing

import (
	"sync"

	customlog "github.com/cear-inacap/york-control/pkg/log"
)

// MessagePublisher defines the interface for publishing messages
type MessagePublisher interface {
	PublishMessage(topic string, data []byte) error
}

// PublishProcessor returns a Processor that publishes each job's payload
func PublishProcessor(publisher MessagePublisher) Processor {
	return func(job *Job) error {
		return publisher.PublishMessage(job.Topic, job.Payload)
	}
}

// LoggingResultHandler logs failed jobs. Repeated failures for a topic are
// logged once until the topic succeeds again.
type LoggingResultHandler struct {
	logger  customlog.Logger
	mu      sync.Mutex
	failing map[string]bool
}

// NewLoggingResultHandler creates a new logging result handler
func NewLoggingResultHandler(logger customlog.Logger) *LoggingResultHandler {
	return &LoggingResultHandler{
		logger:  logger,
		failing: make(map[string]bool),
	}
}

// HandleResult handles a processed job result
func (h *LoggingResultHandler) HandleResult(result *ProcessResult) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if result.Error != nil {
		if !h.failing[result.Topic] {
			h.logger.Errorf("Failed to publish message for topic '%s': %v", result.Topic, result.Error)
			h.failing[result.Topic] = true
		}
		return
	}
	if h.failing[result.Topic] {
		h.logger.Infof("Publishing for topic '%s' recovered", result.Topic)
		delete(h.failing, result.Topic)
	}
}

// CreateHandlerFunc creates a ResultHandler function for the Pool
func (h *LoggingResultHandler) CreateHandlerFunc() ResultHandler {
	return func(result *ProcessResult) {
		if result == nil {
			h.logger.Errorf("Received nil ProcessResult")
			return
		}
		h.HandleResult(result)
	}
}
