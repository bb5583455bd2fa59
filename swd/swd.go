// Serial Wire Debug wire engine
// https://github.com/cowlab/cowprobe
//
// Copyright (c) Cowlab
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package swd implements the bit-level SWD transport: clocked read/write
// of SWDIO, bus turnaround, and the full SWD transaction state machine
// with ACK/WAIT/FAULT handling and retry.
package swd

import (
	"github.com/cowlab/cowprobe/pin"
)

// ACK values returned by a target on the wire, per CMSIS-DAP/ARM ADI.
const (
	ACK_OK    = 0b001
	ACK_WAIT  = 0b010
	ACK_FAULT = 0b100
)

// Request Transfer Block bits (spec §3).
const (
	APnDP = 1 << 0
	RnW   = 1 << 1
)

// Engine drives SWCLK/SWDIO through a pin.Port, applying BitDelay half-
// cycles of Spin between clock edges. BitDelay is advisory cycle count;
// Spin is the platform-provided busy-wait primitive (DESIGN NOTES:
// "the platform provides a spin_cycles(n) primitive").
type Engine struct {
	Port *pin.Port

	BitDelay int
	Spin     func(cycles int)

	// TurnaroundPeriod is the number of idle clocks inserted on a bus
	// turnaround (1..4, spec default 1).
	TurnaroundPeriod int
}

func (e *Engine) spin() {
	if e.Spin != nil {
		e.Spin(e.BitDelay)
	}
}

func (e *Engine) clk(level pin.Level) {
	e.Port.D2.Out(level)
	e.spin()
}

// Write shifts n (<=32) bits of v LSB-first onto SWDIO, one SWCLK
// falling-then-rising edge per bit.
func (e *Engine) Write(v uint32, n int) {
	for i := 0; i < n; i++ {
		if v&1 != 0 {
			e.Port.D1.Out(pin.High)
		} else {
			e.Port.D1.Out(pin.Low)
		}

		e.clk(pin.Low)
		e.clk(pin.High)

		v >>= 1
	}
}

// Read shifts n (<=32) bits in from SWDIO LSB-first, sampling after the
// falling edge of SWCLK.
func (e *Engine) Read(n int) uint32 {
	var result uint32

	for i := 0; i < n; i++ {
		e.clk(pin.Low)

		lvl, _ := e.Port.D1.Read()
		if lvl == pin.High {
			result |= 1 << uint(i)
		}

		e.clk(pin.High)
	}

	return result
}

// Turnaround executes one (or TurnaroundPeriod, if >1) idle clock(s) while
// switching SWDIO direction. dirOut selects the direction SWDIO ends up
// in after the turnaround.
func (e *Engine) Turnaround(dirOut bool) {
	period := e.TurnaroundPeriod
	if period < 1 {
		period = 1
	}

	for i := 0; i < period; i++ {
		if dirOut && i == 0 {
			e.clk(pin.Low)
			e.Port.D1.Out(pin.Low)
			e.clk(pin.High)
			continue
		}

		if !dirOut && i == 0 {
			e.Port.D1.In()
		}

		e.clk(pin.Low)
		e.clk(pin.High)
	}
}

// Idle parks SWDIO high, per spec §4.2.
func (e *Engine) Idle() {
	e.Port.D1.Out(pin.High)
}

// parity returns the even-parity bit of v (1 for an odd number of set
// bits), grounded on the XOR-fold implementation in swd.c's _parity().
func parity(v uint32) uint32 {
	v ^= v >> 16
	v ^= v >> 8
	v ^= v >> 4
	v &= 0xf

	return (0x6996 >> v) & 1
}

// header composes the 8-bit SWD request packet (spec §4.2 step 1):
// start(1) | APnDP | RnW | A[2:3] | parity | stop(0) | park(1).
func header(req byte) byte {
	data := uint32(req&0x0f) << 1
	data |= parity(data) << 5
	data |= 0x81

	return byte(data)
}

// Result carries the outcome of one SWD transaction.
type Result struct {
	ACK          int
	Value        uint32
	ParityError  bool
}

// Transfer executes one full SWD transaction (spec §4.2): header clock,
// turnaround, ACK read, and (on ACK_OK) the data phase. On ACK_WAIT it
// retries up to retryWait times, per sub-transaction, resolving the
// ambiguity noted in spec §9 in favor of the CMSIS-DAP-conformant
// behavior rather than the original firmware's early-break.
func (e *Engine) Transfer(req byte, value uint32, retryWait int) Result {
	if retryWait < 1 {
		retryWait = 1
	}

	var res Result

	for attempt := 0; attempt < retryWait; attempt++ {
		e.Write(uint32(header(req)), 8)
		e.Turnaround(false)
		res.ACK = int(e.Read(3))

		switch res.ACK {
		case ACK_WAIT:
			e.Turnaround(true)
			e.spin()
			continue

		case ACK_OK:
			if req&RnW != 0 {
				data := e.Read(32)
				p := e.Read(1)

				res.Value = data
				res.ParityError = p != parity(data)

				e.Turnaround(true)
			} else {
				e.Turnaround(true)
				e.Write(value, 32)
				e.Write(parity(value), 1)
				e.Idle()
			}

			return res

		default:
			// ACK_FAULT or a protocol error: abort without retry.
			return res
		}
	}

	return res
}

// IdleCycles clocks n additional idle SWCLK cycles with SWDIO held high,
// used after a write transaction per spec §4.2 step 3 and
// DAP_TransferConfigure's IdleCycles parameter.
func (e *Engine) IdleCycles(n int) {
	e.Idle()
	for i := 0; i < n; i++ {
		e.clk(pin.Low)
		e.clk(pin.High)
	}
}
