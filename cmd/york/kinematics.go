package main

import (
	"fmt"
	"io"
	"os"

	"github.com/cear-inacap/york-control/domain/teleop"
	"github.com/cear-inacap/york-control/pkg/config"
	"github.com/cear-inacap/york-control/pkg/kinematics"
	"github.com/cear-inacap/york-control/pkg/link"
)

// KinematicsOptions selects the transform the same way a teleop session does
type KinematicsOptions struct {
	Config string `short:"c" long:"config" description:"Configuration file (default ./york.yaml when present)"`
	Target string `short:"t" long:"target" choice:"network" choice:"sim" description:"Actuation target whose geometry and DK set are used"`
	DK     string `long:"dk" choice:"exact" choice:"cfv2" choice:"sim" description:"Override the DK coefficient set"`
}

func (o KinematicsOptions) mecanum() (kinematics.Mecanum, string, error) {
	cfg, _, err := config.LoadBootstrapConfig(o.Config, ".")
	if err != nil {
		return kinematics.Mecanum{}, "", err
	}
	target := cfg.Target
	if o.Target != "" {
		target = o.Target
	}
	if o.DK != "" {
		cfg.Network.DK = o.DK
		cfg.Simulator.DK = o.DK
	}

	var m kinematics.Mecanum
	if target == config.TargetNetwork {
		m, err = cfg.NetworkKinematics()
	} else {
		m, err = cfg.SimulatorKinematics()
	}
	return m, target, err
}

// IKCommand prints calc_IK for one body velocity. Use --vx=-0.1 style for
// negative values.
type IKCommand struct {
	KinematicsOptions
	VX    float64 `long:"vx" default:"0" description:"Forward velocity (m/s)"`
	VY    float64 `long:"vy" default:"0" description:"Lateral velocity (m/s)"`
	Omega float64 `long:"omega" default:"0" description:"Rotational velocity (rad/s)"`

	out io.Writer
}

func (c *IKCommand) Execute(args []string) error {
	m, target, err := c.mecanum()
	if err != nil {
		return err
	}
	w := m.IK(kinematics.BodyVelocity{VX: c.VX, VY: c.VY, Omega: c.Omega})

	out := writerOrStdout(c.out)
	fmt.Fprintf(out, "wheels (rad/s) : %s\n", teleop.FormatWheels(w))
	if target == config.TargetNetwork {
		regs := make([]uint16, len(w))
		for i, v := range w {
			regs[i] = link.ScaleToRegister(v)
		}
		fmt.Fprintf(out, "registers      : %v\n", regs)
	}
	return nil
}

// DKCommand prints calc_DK for one set of wheel velocities
type DKCommand struct {
	KinematicsOptions
	W1 float64 `long:"w1" default:"0" description:"Wheel 1 velocity (rad/s)"`
	W2 float64 `long:"w2" default:"0" description:"Wheel 2 velocity (rad/s)"`
	W3 float64 `long:"w3" default:"0" description:"Wheel 3 velocity (rad/s)"`
	W4 float64 `long:"w4" default:"0" description:"Wheel 4 velocity (rad/s)"`

	out io.Writer
}

func (c *DKCommand) Execute(args []string) error {
	m, _, err := c.mecanum()
	if err != nil {
		return err
	}
	v := m.DK(kinematics.WheelVelocity{c.W1, c.W2, c.W3, c.W4})

	fmt.Fprintf(writerOrStdout(c.out), "vx, vy, omega_r : [%.4f, %.4f, %.4f] (%s)\n", v.VX, v.VY, v.Omega, m.Coefficients.Name)
	return nil
}

func writerOrStdout(w io.Writer) io.Writer {
	if w == nil {
		return os.Stdout
	}
	return w
}
