// JTAG wire engine
// https://github.com/cowlab/cowprobe
//
// Copyright (c) Cowlab
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package jtag implements the bit-level JTAG transport: TMS sequencing
// and simultaneous TDI/TDO shift, grounded on the original firmware's
// jtag_tms_sequence/jtag_shift/jtag_rshift.
package jtag

import (
	"github.com/cowlab/cowprobe/pin"
)

// Engine drives TCK/TMS/TDI/TDO through a pin.Port. D0=TDI(in),
// D1=TMS(out), D2=TCK(out), D3=TDO(out), per spec §4.1/§6.
type Engine struct {
	Port *pin.Port

	BitDelay int
	Spin     func(cycles int)
}

func (e *Engine) spin() {
	if e.Spin != nil {
		e.Spin(e.BitDelay)
	}
}

func (e *Engine) clk() {
	e.Port.D2.Out(pin.Low)
	e.spin()
	e.Port.D2.Out(pin.High)
	e.spin()
}

func level(bit int) pin.Level {
	if bit != 0 {
		return pin.High
	}
	return pin.Low
}

func bit(l pin.Level) int {
	if l == pin.High {
		return 1
	}
	return 0
}

// TMSSequence clocks n (<=32) bits of seq onto TMS, LSB-first, with the
// data output D3 held low, per spec §4.3.
func (e *Engine) TMSSequence(seq uint32, n int) {
	for i := 0; i < n; i++ {
		e.Port.D1.Out(level(int(seq & 1)))
		e.Port.D3.Out(pin.Low)
		e.clk()
		seq >>= 1
	}
}

// Shift clocks n (<=32) bits of value out on D3 LSB-first while holding
// TMS at tms, simultaneously sampling D0, and returns the bits read
// back LSB-first — the normal JTAG data/instruction register shift.
func (e *Engine) Shift(value uint32, n int, tms int) uint32 {
	var result uint32

	for i := 0; i < n; i++ {
		e.Port.D1.Out(level(tms))
		e.Port.D3.Out(level(int(value & 1)))

		lvl, _ := e.Port.D0.Read()
		result |= uint32(bit(lvl)) << uint(i)

		e.clk()
		value >>= 1
	}

	return result
}

// ShiftMSBFirst8 is the MSB-first, fixed-8-bit shift variant present in
// the original firmware as jtag_rshift but not named in the CMSIS-DAP
// v1 command set. It is not used by any DAP handler; kept for parity
// with the original and exercised only by its own test.
func (e *Engine) ShiftMSBFirst8(value byte, tms int) byte {
	var result byte

	for i := 7; i >= 0; i-- {
		e.Port.D1.Out(level(tms))
		e.Port.D3.Out(level(int((value >> uint(i)) & 1)))

		lvl, _ := e.Port.D0.Read()
		result |= byte(bit(lvl)) << uint(i)

		e.clk()
	}

	return result
}
