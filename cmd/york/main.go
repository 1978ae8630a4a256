package main

import (
	"os"

	"github.com/jessevdk/go-flags"
)

type Options struct {
	Teleop TeleopCommand `command:"teleop" alias:"run" description:"Drive YORK from a gamepad, the keyboard or a websocket client"`
	IK     IKCommand     `command:"ik" description:"Print the wheel velocities for a body velocity"`
	DK     DKCommand     `command:"dk" description:"Print the body velocity for four wheel velocities"`
}

var opts Options
var parser = flags.NewParser(&opts, flags.Default)

func main() {
	parser.LongDescription = "YORK - Mecanum robot teleoperation for the real robot (Modbus/TCP) and its CoppeliaSim model"

	_, err := parser.Parse()
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				os.Exit(0)
			}
		}
		os.Exit(1)
	}
}
