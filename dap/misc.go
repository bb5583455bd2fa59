// https://github.com/cowlab/cowprobe
//
// Copyright (c) Cowlab
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package dap

import "github.com/cowlab/cowprobe/swd"

// abortDPAddress is the DP ABORT register address (A[2:3]=0b00,
// APnDP=0), written by DAP_WriteABORT.
const abortDPAddress = 0x00

// handleWriteABORT implements DAP_WriteABORT (0x08): writes the 4-byte
// value to the ABORT DP register via swd.Transfer. Unlike the original
// firmware (which reports 0xFF unconditionally), this is the spec-
// mandated compliant behavior (spec §4.5).
func handleWriteABORT(s *State, req []byte, rsp []byte) (int, error) {
	rsp[0] = cmdWriteABORT

	if s.Mode != ModeSWD {
		return 0, ErrUnsupported
	}

	value := reqU32(req, 1)
	res := s.SWD.Transfer(abortDPAddress, value, s.RetryWait)

	if res.ACK != swd.ACK_OK {
		rsp[1] = 0xFF
		return 2, nil
	}

	rsp[1] = 0x00
	return 2, nil
}

// handleDelay implements DAP_Delay (0x09): busy/sleep-waits the
// requested microseconds and replies OK, rather than the original
// firmware's unconditional "not supported yet" (spec §4.5).
func handleDelay(s *State, req []byte, rsp []byte) (int, error) {
	rsp[0] = cmdDelay

	us := reqU16(req, 1)
	if s.Spin != nil {
		// cyclesPerUS is a coarse approximation; real calibration is a
		// board concern (see board/tamago's Spin and the paced spin in
		// cmd/cowprobe-sim).
		const cyclesPerUS = 1
		s.Spin(int(us) * cyclesPerUS)
	}

	rsp[1] = 0x00
	return 2, nil
}

// handleTransferConfigure implements DAP_TransferConfigure (0x04):
// idle-cycles (1 byte), retry-wait (2 bytes), retry-match (2 bytes).
func handleTransferConfigure(s *State, req []byte, rsp []byte) (int, error) {
	rsp[0] = cmdTransferConfigure

	s.IdleCycles = int(reqByte(req, 1))
	s.RetryWait = int(reqU16(req, 2))
	s.RetryMatch = int(reqU16(req, 4))

	rsp[1] = 0x00
	return 2, nil
}
