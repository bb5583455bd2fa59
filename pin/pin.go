// CMSIS-DAP debug port pin abstraction
// https://github.com/cowlab/cowprobe
//
// Copyright (c) Cowlab
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package pin defines the narrow pin/port interface that the SWD and JTAG
// wire engines are built against, so that neither engine knows whether it
// is driving real MCU GPIOs, a periph.io-backed Linux GPIO header, or a
// recording mock.
package pin

import (
	"periph.io/x/conn/v3/gpio"
)

// Level mirrors periph.io/x/conn/v3/gpio.Level, the vocabulary the core
// borrows rather than re-inventing.
type Level = gpio.Level

const (
	Low  = gpio.Low
	High = gpio.High
)

// Pin is the capability set the wire engines require of a single debug
// port signal: direction control, level set, level read. It is a narrowed
// gpio.PinIO (periph.io/x/conn/v3/gpio); periph pins do not satisfy it
// directly (their In and Read signatures differ), so board/periph wraps
// them in an adapter.
type Pin interface {
	// Out drives the pin as an output and sets its level.
	Out(l Level) error
	// In configures the pin as a floating input.
	In() error
	// Read returns the current level of the pin.
	Read() (Level, error)
}

// Mode selects the electrical configuration of the four debug port pins,
// per spec §3/§4.1.
type Mode int

const (
	// ModeHiZ tri-states all debug port pins.
	ModeHiZ Mode = iota
	// ModeSWD configures D1=SWDIO, D2=SWCLK, D3=nRESET.
	ModeSWD
	// ModeJTAG configures D0=TDI(in), D1=TMS(out), D2=TCK(out), D3=TDO(out).
	ModeJTAG
)

// Port bundles the four debug port pins (D0..D3). It has no separate
// control for external direction buffers: each Pin's Out/In is the only
// direction switch it makes, so no buffer-then-MCU ordering is applied.
// Settle inserts a short delay (>=1 instruction cycle on real hardware)
// before every switch of a pin to output, after all pins go Hi-Z, and
// before SWDIO turns to input; it may be a no-op on backends without bus
// contention risk.
type Port struct {
	D0, D1, D2, D3 Pin
	Settle         func()
}

func (p *Port) settle() {
	if p.Settle != nil {
		p.Settle()
	}
}

// SetMode transitions the debug port to the requested electrical mode.
func (p *Port) SetMode(m Mode) error {
	switch m {
	case ModeHiZ:
		return p.allIn()
	case ModeSWD:
		if err := p.in(p.D0); err != nil {
			return err
		}
		p.settle()
		if err := p.out(p.D1, High); err != nil {
			return err
		}
		if err := p.out(p.D2, High); err != nil {
			return err
		}
		return p.out(p.D3, High)
	case ModeJTAG:
		if err := p.in(p.D0); err != nil {
			return err
		}
		p.settle()
		if err := p.out(p.D1, Low); err != nil {
			return err
		}
		if err := p.out(p.D2, Low); err != nil {
			return err
		}
		return p.out(p.D3, Low)
	default:
		return errInvalidMode(m)
	}
}

func (p *Port) allIn() error {
	for _, pin := range []Pin{p.D0, p.D1, p.D2, p.D3} {
		if err := p.in(pin); err != nil {
			return err
		}
	}
	p.settle()
	return nil
}

func (p *Port) in(pin Pin) error {
	if pin == nil {
		return nil
	}
	return pin.In()
}

func (p *Port) out(pin Pin, l Level) error {
	if pin == nil {
		return nil
	}
	p.settle()
	return pin.Out(l)
}

// SwdioDir switches the direction of D1 (SWDIO) mid-transaction, for SWD
// bus turnarounds. The driven level after switching to output is
// undefined until the next Out call; callers must not rely on it.
func (p *Port) SwdioDir(out bool) error {
	if out {
		return p.out(p.D1, Low)
	}
	p.settle()
	return p.in(p.D1)
}

type errInvalidMode Mode

func (e errInvalidMode) Error() string {
	return "pin: invalid port mode"
}
