package remoteapi

import (
	"fmt"
	"sync"
	"time"

	"github.com/pebbe/zmq4"

	customlog "github.com/cear-inacap/york-control/pkg/log"
)

// zmqTransport is a REQ socket connected to the simulator's remote API port
type zmqTransport struct {
	ctx    *zmq4.Context
	socket *zmq4.Socket
	mu     sync.Mutex
}

// DialZMQ creates a REQ socket connected to endpoint (tcp://host:port).
// ZeroMQ connects lazily, so an unreachable simulator only shows up as a
// timeout on the first call.
func DialZMQ(endpoint string, timeout time.Duration) (Transport, error) {
	ctx, err := zmq4.NewContext()
	if err != nil {
		return nil, fmt.Errorf("failed to create ZMQ context: %w", err)
	}

	socket, err := ctx.NewSocket(zmq4.REQ)
	if err != nil {
		ctx.Term()
		return nil, fmt.Errorf("failed to create REQ socket: %w", err)
	}

	fail := func(what string, err error) (Transport, error) {
		socket.Close()
		ctx.Term()
		return nil, fmt.Errorf("failed to %s: %w", what, err)
	}

	if err := socket.SetLinger(0); err != nil {
		return fail("set linger option", err)
	}
	if err := socket.SetRcvtimeo(timeout); err != nil {
		return fail("set receive timeout", err)
	}
	if err := socket.SetSndtimeo(timeout); err != nil {
		return fail("set send timeout", err)
	}
	// A timed out request must not wedge the REQ state machine.
	if err := socket.SetReqRelaxed(1); err != nil {
		return fail("set relaxed option", err)
	}
	if err := socket.SetReqCorrelate(1); err != nil {
		return fail("set correlate option", err)
	}
	if err := socket.Connect(endpoint); err != nil {
		return fail(fmt.Sprintf("connect to %s", endpoint), err)
	}

	return &zmqTransport{ctx: ctx, socket: socket}, nil
}

func (t *zmqTransport) Roundtrip(req []byte) ([]byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.socket == nil {
		return nil, ErrClientClosed
	}
	if _, err := t.socket.SendBytes(req, 0); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	resp, err := t.socket.RecvBytes(0)
	if err != nil {
		return nil, fmt.Errorf("failed to receive response: %w", err)
	}
	return resp, nil
}

func (t *zmqTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.socket == nil {
		return nil
	}
	err := t.socket.Close()
	t.socket = nil
	if termErr := t.ctx.Term(); err == nil {
		err = termErr
	}
	return err
}

// Dial connects a client to the remote API at endpoint
func Dial(endpoint string, timeout time.Duration, logger customlog.Logger) (*Client, error) {
	transport, err := DialZMQ(endpoint, timeout)
	if err != nil {
		return nil, err
	}
	logger.Debugf("remote api socket connected to %s", endpoint)
	return NewClient(transport, logger), nil
}
