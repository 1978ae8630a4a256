// Package remoteapi is a small client for the CoppeliaSim ZeroMQ remote API.
//
// Requests and responses are CBOR maps exchanged over a REQ socket:
//
//	request:  {"uuid": ..., "ver": 2, "lang": "go", "func": "sim.getObject", "args": [...]}
//	response: {"success": true, "ret": [...]} or {"success": false, "error": "..."}
package remoteapi

import (
	"errors"
	"fmt"
	"sync"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"

	customlog "github.com/cear-inacap/york-control/pkg/log"
)

// ProtocolVersion is the remote API protocol version sent with every request
const ProtocolVersion = 2

// Common errors
var (
	ErrClientClosed    = errors.New("remote api client is closed")
	ErrInvalidResponse = errors.New("invalid remote api response")
)

// CallError is returned when the simulator rejects a call
type CallError struct {
	Func    string
	Message string
}

func (e *CallError) Error() string {
	return fmt.Sprintf("remote api call %s failed: %s", e.Func, e.Message)
}

// Transport moves one encoded request to the simulator and returns the
// encoded response
type Transport interface {
	Roundtrip(req []byte) ([]byte, error)
	Close() error
}

type request struct {
	UUID string        `cbor:"uuid"`
	Ver  int           `cbor:"ver"`
	Lang string        `cbor:"lang"`
	Func string        `cbor:"func"`
	Args []interface{} `cbor:"args"`
}

type response struct {
	Success bool          `cbor:"success"`
	Ret     []interface{} `cbor:"ret"`
	Error   string        `cbor:"error"`
}

// Client issues remote API calls over a Transport. Calls are serialized
// because a REQ socket allows one request in flight.
type Client struct {
	transport Transport
	uuid      string
	logger    customlog.Logger

	mu     sync.Mutex
	closed bool
}

// NewClient creates a client over an existing transport
func NewClient(transport Transport, logger customlog.Logger) *Client {
	return &Client{
		transport: transport,
		uuid:      uuid.NewString(),
		logger:    logger,
	}
}

// Call invokes a remote function and returns its return values
func (c *Client) Call(fn string, args ...interface{}) ([]interface{}, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrClientClosed
	}

	if args == nil {
		args = []interface{}{}
	}
	reqData, err := cbor.Marshal(request{
		UUID: c.uuid,
		Ver:  ProtocolVersion,
		Lang: "go",
		Func: fn,
		Args: args,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s request: %w", fn, err)
	}

	respData, err := c.transport.Roundtrip(reqData)
	if err != nil {
		return nil, fmt.Errorf("remote api call %s: %w", fn, err)
	}

	var resp response
	if err := cbor.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidResponse, fn, err)
	}
	if !resp.Success {
		return nil, &CallError{Func: fn, Message: resp.Error}
	}

	c.logger.Debugf("remote api %s -> %v", fn, resp.Ret)
	return resp.Ret, nil
}

// Require loads a remote API namespace such as "sim"
func (c *Client) Require(name string) error {
	_, err := c.Call("zmqRemoteApi.require", name)
	return err
}

// Close releases the transport. It is safe to call more than once.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	return c.transport.Close()
}

// AsInt64 converts a decoded CBOR number into an int64
func AsInt64(v interface{}) (int64, error) {
	switch n := v.(type) {
	case int64:
		return n, nil
	case uint64:
		return int64(n), nil
	case int:
		return int64(n), nil
	case float64:
		return int64(n), nil
	default:
		return 0, fmt.Errorf("%w: expected a number, got %T", ErrInvalidResponse, v)
	}
}
