// https://github.com/cowlab/cowprobe
//
// Copyright (c) Cowlab
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package dap

import "github.com/cowlab/cowprobe/pin"

// SWJ pin bit positions, spec §4.5.
const (
	pinSWCLKTCK = 0
	pinSWDIOTMS = 1
	pinTDI      = 2
	pinTDO      = 3
	pinNTRST    = 5
	pinNRESET   = 7
)

// handleSWJPins implements DAP_SWJ_Pins (0x10): apply output for each
// selected bit, then report current input state in the same layout.
// Only SWCLK/TCK (D2), SWDIO/TMS (D1) and nRESET (D3) are wired to real
// pins on this four-pin port; TDI/TDO/nTRST bits are accepted but have
// no electrical effect, matching the D0..D3 port of spec §6.
func handleSWJPins(s *State, req []byte, rsp []byte) (int, error) {
	rsp[0] = cmdSWJPins

	output := reqByte(req, 1)
	selectMask := reqByte(req, 2)

	apply := func(bit uint, p pin.Pin) {
		if p == nil || selectMask&(1<<bit) == 0 {
			return
		}
		if output&(1<<bit) != 0 {
			p.Out(pin.High)
		} else {
			p.Out(pin.Low)
		}
	}

	apply(pinSWCLKTCK, s.Port.D2)
	apply(pinSWDIOTMS, s.Port.D1)
	apply(pinNRESET, s.Port.D3)

	read := func(bit uint, p pin.Pin) byte {
		if p == nil {
			return 0
		}
		l, err := p.Read()
		if err != nil || l != pin.High {
			return 0
		}
		return 1
	}

	var state byte
	state |= read(pinSWCLKTCK, s.Port.D2) << pinSWCLKTCK
	state |= read(pinSWDIOTMS, s.Port.D1) << pinSWDIOTMS
	state |= read(pinNRESET, s.Port.D3) << pinNRESET

	rsp[1] = state
	return 2, nil
}

// clockDivisor relates a requested clock frequency in Hz to the per-half-cycle
// bit_delay. The probe has no dynamic PLL; this is a coarse mapping
// that keeps bit_delay within a sane range regardless of host-
// requested frequency, matching spec §3's "advisory only" language.
func clockDivisor(hz uint32) int {
	if hz == 0 {
		return defaultBitDelay
	}

	delay := int(1_000_000_000 / hz)
	if delay < 1 {
		delay = 1
	}
	if delay > 10_000 {
		delay = 10_000
	}

	return delay
}

// handleSWJClock implements DAP_SWJ_Clock (0x11): stores clock_khz and
// recomputes bit_delay.
func handleSWJClock(s *State, req []byte, rsp []byte) (int, error) {
	rsp[0] = cmdSWJClock

	hz := reqU32(req, 1)
	s.ClockKHz = hz / 1000
	s.BitDelay = clockDivisor(hz)
	s.syncEngines()

	rsp[1] = 0x00
	return 2, nil
}

// handleSWJSequence implements DAP_SWJ_Sequence (0x12): bit-count (0
// means 256), followed by ceil(count/8) data bytes LSB-first per byte,
// clocked onto SWDIO/TMS with one SWCLK toggle per bit.
func handleSWJSequence(s *State, req []byte, rsp []byte) (int, error) {
	rsp[0] = cmdSWJSequence

	count := int(reqByte(req, 1))
	if count == 0 {
		count = 256
	}

	nbytes := (count + 7) / 8
	remaining := count

	for i := 0; i < nbytes; i++ {
		b := reqByte(req, 2+i)
		n := remaining
		if n > 8 {
			n = 8
		}

		s.SWD.Write(uint32(b), n)
		remaining -= n
	}

	rsp[1] = 0x00
	return 2, nil
}

// handleSWDConfigure implements DAP_SWD_Configure (0x13): bits0-1
// turnaround period minus one, bit2 always-data-phase.
func handleSWDConfigure(s *State, req []byte, rsp []byte) (int, error) {
	rsp[0] = cmdSWDConfigure

	cfg := reqByte(req, 1)
	s.TurnaroundPeriod = int(cfg&0x03) + 1
	s.DataPhase = cfg&0x04 != 0
	s.syncEngines()

	rsp[1] = 0x00
	return 2, nil
}
