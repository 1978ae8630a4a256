package teleop

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/cear-inacap/york-control/pkg/kinematics"
)

// ConsoleReporter prints human readable status lines for the operator
type ConsoleReporter struct {
	out io.Writer
	eol string

	titleStyle lipgloss.Style
	okStyle    lipgloss.Style
	errStyle   lipgloss.Style
	dimStyle   lipgloss.Style

	mu sync.Mutex
}

// NewConsoleReporter writes to out. rawTerminal selects "\r\n" line endings
// for terminals in raw mode.
func NewConsoleReporter(out io.Writer, rawTerminal bool) *ConsoleReporter {
	r := lipgloss.NewRenderer(out)
	eol := "\n"
	if rawTerminal {
		eol = "\r\n"
	}
	return &ConsoleReporter{
		out:        out,
		eol:        eol,
		titleStyle: r.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		okStyle:    r.NewStyle().Foreground(lipgloss.Color("46")),
		errStyle:   r.NewStyle().Foreground(lipgloss.Color("196")),
		dimStyle:   r.NewStyle().Foreground(lipgloss.Color("241")),
	}
}

// Banner prints the title and the input instructions
func (c *ConsoleReporter) Banner(title, help string) {
	c.println(c.titleStyle.Render(title))
	for _, line := range strings.Split(help, "\n") {
		c.println(line)
	}
	c.println("")
}

// Observe implements Observer
func (c *ConsoleReporter) Observe(s Status) {
	switch s.State {
	case StateDisconnected:
		if s.Err != nil {
			c.println(c.errStyle.Render(fmt.Sprintf("could not connect to YORK at %s: %v", s.Address, s.Err)))
		}
	case StateConnected:
		c.println(c.okStyle.Render(fmt.Sprintf("connected to YORK at %s (%s)", s.Address, s.Target)))
	case StateRunning:
		if s.Err != nil {
			c.println(c.errStyle.Render(fmt.Sprintf("could not send data to the robot: %v", s.Err)))
			return
		}
		c.println(c.dimStyle.Render("vx, vy, omega_r :") + " " + FormatBody(s.Body))
	case StateTerminated:
		if s.Err != nil {
			c.println(c.errStyle.Render(fmt.Sprintf("teleoperation stopped: %v", s.Err)))
			return
		}
		c.println("teleoperation stopped")
	}
}

func (c *ConsoleReporter) println(line string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprint(c.out, line, c.eol)
}

// FormatBody renders a body velocity as [vx, vy, omega]
func FormatBody(v kinematics.BodyVelocity) string {
	return "[" + formatFloat(v.VX) + ", " + formatFloat(v.VY) + ", " + formatFloat(v.Omega) + "]"
}

// FormatWheels renders wheel velocities as [w1, w2, w3, w4]
func FormatWheels(w kinematics.WheelVelocity) string {
	parts := make([]string, len(w))
	for i, v := range w {
		parts[i] = strconv.FormatFloat(v, 'f', 4, 64)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func formatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}
