// Package zeromq publishes YORK telemetry on a ZeroMQ PUB socket.
package zeromq

import (
	"errors"
	"fmt"
	"sync"

	"github.com/pebbe/zmq4"

	customlog "github.com/cear-inacap/york-control/pkg/log"
)

// Common errors
var (
	ErrServiceClosed = errors.New("zeromq publisher is closed")
)

// MessageSender publishes [topic, payload] multipart messages
type MessageSender struct {
	ctx      *zmq4.Context
	socket   *zmq4.Socket
	endpoint string
	logger   customlog.Logger
	running  bool
	mu       sync.Mutex
}

// NewMessageSender binds a PUB socket to address (for example tcp://*:5560)
func NewMessageSender(address string, logger customlog.Logger) (*MessageSender, error) {
	ctx, err := zmq4.NewContext()
	if err != nil {
		return nil, fmt.Errorf("failed to create ZMQ context: %w", err)
	}

	socket, err := ctx.NewSocket(zmq4.PUB)
	if err != nil {
		ctx.Term()
		return nil, fmt.Errorf("failed to create PUB socket: %w", err)
	}

	if err := socket.SetLinger(0); err != nil {
		socket.Close()
		ctx.Term()
		return nil, fmt.Errorf("failed to set linger option: %w", err)
	}

	if err := socket.Bind(address); err != nil {
		socket.Close()
		ctx.Term()
		return nil, fmt.Errorf("failed to bind to %s: %w", address, err)
	}

	endpoint, err := socket.GetLastEndpoint()
	if err != nil {
		endpoint = address
	}
	logger.Infof("Telemetry publisher bound to %s", endpoint)

	return &MessageSender{
		ctx:      ctx,
		socket:   socket,
		endpoint: endpoint,
		logger:   logger,
		running:  true,
	}, nil
}

// Endpoint returns the bound endpoint, with wildcard ports resolved
func (s *MessageSender) Endpoint() string {
	return s.endpoint
}

// PublishMessage sends a message with the given topic
func (s *MessageSender) PublishMessage(topic string, message []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return ErrServiceClosed
	}

	// topic frame first so subscribers can filter on it
	if _, err := s.socket.Send(topic, zmq4.SNDMORE); err != nil {
		return fmt.Errorf("failed to send topic: %w", err)
	}
	if _, err := s.socket.SendBytes(message, 0); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

// Close releases the socket and context
func (s *MessageSender) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}
	s.running = false

	err := s.socket.Close()
	s.socket = nil
	if termErr := s.ctx.Term(); err == nil {
		err = termErr
	}
	return err
}
