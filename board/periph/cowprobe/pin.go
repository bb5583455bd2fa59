// Linux periph.io-backed pin backend for cowprobe
// https://github.com/cowlab/cowprobe
//
// Copyright (c) Cowlab
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package cowprobe adapts periph.io/x/conn/v3/gpio.PinIO, resolved by
// name through periph.io/x/host/v3's platform driver registry, into
// pin.Pin — a second, runnable, non-mock implementation of the debug
// port abstraction for bring-up on a Linux single-board computer
// without a custom MCU port (spec §6).
package cowprobe

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"

	cowpin "github.com/cowlab/cowprobe/pin"
)

// adapter narrows a periph gpio.PinIO down to cowprobe's pin.Pin.
type adapter struct {
	p gpio.PinIO
}

func (a *adapter) Out(l cowpin.Level) error {
	return a.p.Out(l)
}

func (a *adapter) In() error {
	return a.p.In(gpio.Float, gpio.NoEdge)
}

func (a *adapter) Read() (cowpin.Level, error) {
	return a.p.Read(), nil
}

// Init loads the periph.io host drivers; must be called once before
// NewPortByName.
func Init() error {
	_, err := host.Init()
	return err
}

// NewPortByName resolves four GPIO line names (as exposed by the
// running periph platform driver, e.g. "GPIO17") into a pin.Port.
func NewPortByName(d0, d1, d2, d3 string) (*cowpin.Port, error) {
	names := []string{d0, d1, d2, d3}
	pins := make([]gpio.PinIO, len(names))

	for i, name := range names {
		p := gpioreg.ByName(name)
		if p == nil {
			return nil, fmt.Errorf("cowprobe: unknown GPIO pin %q", name)
		}
		pins[i] = p
	}

	return &cowpin.Port{
		D0: &adapter{pins[0]},
		D1: &adapter{pins[1]},
		D2: &adapter{pins[2]},
		D3: &adapter{pins[3]},
	}, nil
}
