package input

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"golang.org/x/term"

	customlog "github.com/cear-inacap/york-control/pkg/log"
)

const ctrlC = 0x03

type keyBinding struct {
	axis  Axis
	value float64
}

var movementKeys = map[byte]keyBinding{
	'i': {AxisVX, 1},
	'k': {AxisVX, -1},
	'u': {AxisVY, 1},
	'o': {AxisVY, -1},
	'j': {AxisOmega, 1},
	'l': {AxisOmega, -1},
}

const keyboardHelp = `Movement keys:
   u    i    o
   j    k    l

q/z : speed up/down 10%

's' to quit`

// Keyboard reads single key presses from a raw-mode terminal. Terminals do
// not report key release, so an axis falls back to 0 when its key has not
// repeated within the release timeout.
type Keyboard struct {
	in      io.Reader
	release time.Duration
	cell    IntentCell
	logger  customlog.Logger
	restore func() error

	mu        sync.Mutex
	timers    map[Axis]*time.Timer
	gens      map[Axis]uint64
	closed    bool
	closeOnce sync.Once
	done      chan struct{}
}

// OpenKeyboard puts stdin into raw mode and listens for keys
func OpenKeyboard(release time.Duration, logger customlog.Logger) (*Keyboard, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return nil, fmt.Errorf("%w: stdin is not a terminal", ErrInputDevice)
	}
	state, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to enter raw mode: %v", ErrInputDevice, err)
	}

	k := NewKeyboard(os.Stdin, release, logger)
	k.restore = func() error { return term.Restore(fd, state) }
	return k, nil
}

// NewKeyboard starts reading keys from in
func NewKeyboard(in io.Reader, release time.Duration, logger customlog.Logger) *Keyboard {
	k := &Keyboard{
		in:      in,
		release: release,
		logger:  logger.WithField("input", "keyboard"),
		timers:  make(map[Axis]*time.Timer),
		gens:    make(map[Axis]uint64),
		done:    make(chan struct{}),
	}
	go k.readLoop()
	return k
}

func (k *Keyboard) readLoop() {
	defer close(k.done)

	buf := make([]byte, 64)
	for {
		n, err := k.in.Read(buf)
		for _, b := range buf[:n] {
			if !k.handleKey(b) {
				return
			}
		}
		if err != nil {
			if k.isClosed() || errors.Is(err, os.ErrClosed) {
				return
			}
			k.logger.Errorf("Keyboard read failed: %v", err)
			k.cell.Stop(fmt.Errorf("%w: keyboard read failed: %v", ErrInputDevice, err))
			return
		}
	}
}

// handleKey applies one key press and reports whether to keep listening
func (k *Keyboard) handleKey(b byte) bool {
	if binding, ok := movementKeys[b]; ok {
		k.press(binding)
		return true
	}

	switch b {
	case 'q':
		k.cell.QueueSpeedUp()
	case 'z':
		k.cell.QueueSpeedDown()
	case 's', ctrlC:
		k.logger.Infof("Quit key pressed")
		k.cell.Stop(ErrQuit)
		return false
	}
	return true
}

// press sets the axis and (re)arms its synthetic key release
func (k *Keyboard) press(b keyBinding) {
	k.cell.SetAxis(b.axis, b.value)

	k.mu.Lock()
	defer k.mu.Unlock()

	if k.closed {
		return
	}
	k.gens[b.axis]++
	gen := k.gens[b.axis]
	if t, ok := k.timers[b.axis]; ok {
		t.Stop()
	}
	k.timers[b.axis] = time.AfterFunc(k.release, func() {
		k.mu.Lock()
		current := k.gens[b.axis] == gen
		k.mu.Unlock()
		if current {
			k.cell.SetAxis(b.axis, 0)
		}
	})
}

func (k *Keyboard) isClosed() bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.closed
}

// Poll returns the held keys and at most one queued speed event per
// direction
func (k *Keyboard) Poll(ctx context.Context) (Sample, error) {
	if err := ctx.Err(); err != nil {
		return Sample{}, err
	}
	return k.cell.Snapshot()
}

// Step returns the per-press keyboard speed factors
func (k *Keyboard) Step() SpeedStep {
	return KeyboardStep
}

// Help lists the key bindings
func (k *Keyboard) Help() string {
	return keyboardHelp
}

// RawTerminal reports whether the keyboard switched the terminal to raw
// mode, where output lines need an explicit carriage return.
func (k *Keyboard) RawTerminal() bool {
	return k.restore != nil
}

// Close stops the release timers and restores the terminal. A read blocked
// on stdin is abandoned.
func (k *Keyboard) Close() error {
	var err error
	k.closeOnce.Do(func() {
		k.mu.Lock()
		k.closed = true
		for _, t := range k.timers {
			t.Stop()
		}
		k.mu.Unlock()

		if k.restore != nil {
			err = k.restore()
		}
		if c, ok := k.in.(io.Closer); ok && k.in != os.Stdin {
			if cerr := c.Close(); err == nil {
				err = cerr
			}
		}
	})
	return err
}
