// https://github.com/cowlab/cowprobe
//
// Copyright (c) Cowlab
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package dap

import "github.com/cowlab/cowprobe/pin"

// DAP_Connect port arguments, spec §4.5.
const (
	portDefault = 0
	portSWD     = 1
	portJTAG    = 2
)

// handleConnect implements DAP_Connect (0x02): selects SWD or JTAG,
// applies the electrical mode, and refreshes retry_wait to its
// post-Connect default (spec §3).
func handleConnect(s *State, req []byte, rsp []byte) (int, error) {
	rsp[0] = cmdConnect

	port := reqByte(req, 1)

	var mode Mode
	var pinMode pin.Mode
	var selected byte

	switch port {
	case portDefault, portSWD:
		mode, pinMode, selected = ModeSWD, pin.ModeSWD, portSWD
	case portJTAG:
		mode, pinMode, selected = ModeJTAG, pin.ModeJTAG, portJTAG
	default:
		rsp[1] = 0
		return 2, nil
	}

	if err := s.Port.SetMode(pinMode); err != nil {
		rsp[1] = 0
		return 2, nil
	}

	s.Mode = mode
	s.RetryWait = defaultRetryWait
	s.syncEngines()

	if s.Log != nil {
		s.Log.Always("dap: connected, mode=%d", mode)
	}

	rsp[1] = selected
	return 2, nil
}

// handleDisconnect implements DAP_Disconnect (0x03): all debug pins
// return to Hi-Z and mode resets to Unused.
func handleDisconnect(s *State, req []byte, rsp []byte) (int, error) {
	rsp[0] = cmdDisconnect

	s.Port.SetMode(pin.ModeHiZ)
	s.Mode = ModeUnused

	rsp[1] = 0x00
	return 2, nil
}

// handleHostStatus implements DAP_HostStatus (0x01). No host indicator
// LEDs are wired (spec §1: MCU GPIO register programming is out of
// scope), so every call succeeds without electrical effect.
func handleHostStatus(s *State, req []byte, rsp []byte) (int, error) {
	rsp[0] = cmdHostStatus
	rsp[1] = 0x00
	return 2, nil
}

// handleResetTarget implements DAP_ResetTarget (0x0A): the command is
// acknowledged but device-specific execute is not implemented, per
// spec §4.5 — matching the original firmware's behavior exactly
// (this one was never a stub pending completion).
func handleResetTarget(s *State, req []byte, rsp []byte) (int, error) {
	rsp[0] = cmdResetTarget
	rsp[1] = 0x00
	rsp[2] = 0x00
	return 3, nil
}
