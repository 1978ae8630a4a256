package input

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/splace/joysticks"

	"github.com/cear-inacap/york-control/pkg/config"
	customlog "github.com/cear-inacap/york-control/pkg/log"
)

// Joystick is the event side of a joysticks.HID. Hats are axis pairs
// numbered from 1 (hat 1 is axes 0 and 1); buttons are numbered from 1.
type Joystick interface {
	OnMove(hat uint8) chan joysticks.Event
	OnClose(button uint8) chan joysticks.Event
	OnOpen(button uint8) chan joysticks.Event
	ParcelOutEvents()
}

// RawFromAxisValue reduces a signed 16-bit joystick axis value to the 8-bit
// reading expected by AxisFromRaw (0 at full negative, 128 at rest).
func RawFromAxisValue(v int16) byte {
	return byte((int32(v) + 32768) >> 8)
}

// axisValueFromCoord undoes the library's normalisation of an axis to [-1,1]
func axisValueFromCoord(c float32) int16 {
	v := math.Round(float64(c) * 32767)
	return int16(math.Max(-32768, math.Min(32767, v)))
}

// JoystickIndex maps a /dev/input/jsN path onto the 1-based index taken by
// joysticks.Connect.
func JoystickIndex(device string) (int, error) {
	name := filepath.Base(device)
	if !strings.HasPrefix(name, "js") {
		return 0, fmt.Errorf("gamepad device %q is not a jsN node", device)
	}
	n, err := strconv.Atoi(strings.TrimPrefix(name, "js"))
	if err != nil || n < 0 {
		return 0, fmt.Errorf("gamepad device %q is not a jsN node", device)
	}
	return n + 1, nil
}

// Gamepad follows a joystick's hat and button channels in the background.
// Speed buttons are level signals: every poll while a button is held applies
// one step.
type Gamepad struct {
	js      Joystick
	mapping config.GamepadConfig
	cell    IntentCell
	logger  customlog.Logger

	closeOnce sync.Once
	closed    chan struct{}
	done      chan struct{}
}

// OpenGamepad connects to the configured joystick device
func OpenGamepad(cfg config.GamepadConfig, logger customlog.Logger) (*Gamepad, error) {
	index, err := JoystickIndex(cfg.Device)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInputDevice, err)
	}
	hid := joysticks.Connect(index)
	if hid == nil {
		return nil, fmt.Errorf("%w: failed to open gamepad %s", ErrInputDevice, cfg.Device)
	}
	logger.Infof("Reading gamepad events from %s", cfg.Device)
	return NewGamepad(hid, cfg, logger), nil
}

// hatBinding is the intent axis driven by each coordinate of one hat
type hatBinding struct {
	axes  [2]Axis
	bound [2]bool
}

// NewGamepad subscribes to the mapped hats and buttons of js and starts
// dispatching its events.
func NewGamepad(js Joystick, mapping config.GamepadConfig, logger customlog.Logger) *Gamepad {
	g := &Gamepad{
		js:      js,
		mapping: mapping,
		logger:  logger.WithField("input", "gamepad"),
		closed:  make(chan struct{}),
		done:    make(chan struct{}),
	}

	hats := map[uint8]*hatBinding{}
	bind := func(number int, axis Axis) {
		if number < 0 {
			return
		}
		hat := uint8(number/2 + 1)
		b, ok := hats[hat]
		if !ok {
			b = &hatBinding{}
			hats[hat] = b
		}
		b.axes[number%2] = axis
		b.bound[number%2] = true
	}
	bind(mapping.AxisVX, AxisVX)
	bind(mapping.AxisVY, AxisVY)
	bind(mapping.AxisOmega, AxisOmega)

	// channels must exist before events are parcelled out
	for hat, b := range hats {
		go g.forward(js.OnMove(hat), g.moveHandler(*b))
	}
	g.bindButton(mapping.SpeedUp, g.cell.SetSpeedUpHeld)
	g.bindButton(mapping.SpeedDown, g.cell.SetSpeedDownHeld)

	go g.parcel()
	return g
}

func (g *Gamepad) bindButton(number int, set func(bool)) {
	if number < 0 {
		return
	}
	button := uint8(number + 1)
	go g.forward(g.js.OnClose(button), func(joysticks.Event) { set(true) })
	go g.forward(g.js.OnOpen(button), func(joysticks.Event) { set(false) })
}

func (g *Gamepad) moveHandler(b hatBinding) func(joysticks.Event) {
	return func(ev joysticks.Event) {
		c, ok := ev.(joysticks.CoordsEvent)
		if !ok {
			return
		}
		coords := [2]float32{c.X, c.Y}
		for i, v := range coords {
			if b.bound[i] {
				g.cell.SetAxis(b.axes[i], AxisFromRaw(RawFromAxisValue(axisValueFromCoord(v))))
			}
		}
	}
}

func (g *Gamepad) forward(events chan joysticks.Event, apply func(joysticks.Event)) {
	for {
		select {
		case <-g.closed:
			return
		case ev := <-events:
			apply(ev)
		}
	}
}

// parcel runs the library dispatcher; it only returns when the device stops
// delivering events.
func (g *Gamepad) parcel() {
	defer close(g.done)
	g.js.ParcelOutEvents()
	select {
	case <-g.closed:
		return
	default:
	}
	g.logger.Errorf("Gamepad device %s stopped delivering events", g.mapping.Device)
	g.cell.Stop(fmt.Errorf("%w: gamepad %s disconnected", ErrInputDevice, g.mapping.Device))
}

// Poll returns the latest axis and button state
func (g *Gamepad) Poll(ctx context.Context) (Sample, error) {
	if err := ctx.Err(); err != nil {
		return Sample{}, err
	}
	return g.cell.Snapshot()
}

// Step returns the per-poll gamepad speed factors
func (g *Gamepad) Step() SpeedStep {
	return GamepadStep
}

// Help describes the gamepad controls
func (g *Gamepad) Help() string {
	return "Left stick: forward/turn, right stick: sideways\n" +
		"B/A: speed up/down 1%\n" +
		"Ctrl+C to exit"
}

// Close stops dispatching events. The joysticks library keeps the device
// node open until the process exits.
func (g *Gamepad) Close() error {
	g.closeOnce.Do(func() {
		close(g.closed)
	})
	return nil
}
