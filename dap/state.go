// CMSIS-DAP v1 command dispatcher and handlers
// https://github.com/cowlab/cowprobe
//
// Copyright (c) Cowlab
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package dap implements the CMSIS-DAP v1 command dispatcher and the
// per-command handlers, driving the swd and jtag wire engines through
// the pin abstraction.
package dap

import (
	"github.com/cowlab/cowprobe/internal/ratelog"
	"github.com/cowlab/cowprobe/jtag"
	"github.com/cowlab/cowprobe/pin"
	"github.com/cowlab/cowprobe/swd"
)

// Mode is the probe's connection mode.
type Mode int

const (
	ModeUnused Mode = iota
	ModeSWD
	ModeJTAG
)

// State is the process-wide probe-state singleton (spec §3): constructed
// once by the front-end and passed by pointer into Dispatch, matching the
// teacher's convention of an explicit owned struct rather than file-scope
// globals.
type State struct {
	Port *pin.Port
	Log  *ratelog.Logger

	SWD  *swd.Engine
	JTAG *jtag.Engine

	Mode Mode

	ClockKHz         uint32
	TurnaroundPeriod int
	DataPhase        bool
	IdleCycles       int
	RetryWait        int
	RetryMatch       int
	BitDelay         int

	// Spin is the platform busy-wait primitive, handed to both wire
	// engines by NewState and called directly by DAP_Delay.
	Spin func(cycles int)
}

// defaults match spec §3.
const (
	defaultTurnaroundPeriod = 1
	defaultRetryWait        = 16
	defaultBitDelay         = 80
)

// NewState builds a State wired to port and logger, with all engines
// idle (mode Unused, all pins Hi-Z).
func NewState(port *pin.Port, spin func(int), log *ratelog.Logger) *State {
	s := &State{
		Port:             port,
		Log:              log,
		Spin:             spin,
		TurnaroundPeriod: defaultTurnaroundPeriod,
		RetryWait:        defaultRetryWait,
		BitDelay:         defaultBitDelay,
	}

	s.SWD = &swd.Engine{Port: port, BitDelay: s.BitDelay, Spin: spin, TurnaroundPeriod: s.TurnaroundPeriod}
	s.JTAG = &jtag.Engine{Port: port, BitDelay: s.BitDelay, Spin: spin}

	port.SetMode(pin.ModeHiZ)

	return s
}

// syncEngines copies BitDelay and TurnaroundPeriod into the wire engines
// after state changes (Connect, SWJ_Clock, SWD_Configure).
func (s *State) syncEngines() {
	s.SWD.BitDelay = s.BitDelay
	s.SWD.TurnaroundPeriod = s.TurnaroundPeriod
	s.JTAG.BitDelay = s.BitDelay
}
