// https://github.com/cowlab/cowprobe
//
// Copyright (c) Cowlab
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package dap

import "github.com/cowlab/cowprobe/swd"

// Transfer Request Block bit layout, spec §3.
const (
	trbAPnDP      = 1 << 0
	trbRnW        = 1 << 1
	trbA23        = 0b11 << 2
	trbValueMatch = 1 << 4
	trbMatchMask  = 1 << 5
)

// rdbuffAddress is the Transfer Request Block byte for a DP RDBUFF
// read: APnDP=0, RnW=1, A[2:3]=0b11 (register offset 0x0C), used to
// drain the posted-AP-read pipeline.
const rdbuffAddress = 0b11<<2 | trbRnW

// DAP_Transfer (0x05) is absent from the retrieved original firmware
// entirely; it is built here directly from the CMSIS-DAP v1 transfer
// semantics of spec §4.5, reusing the SWD engine already grounded for
// §4.2.
//
// handleTransfer implements DAP_Transfer: DAP-index (ignored for SWD),
// transfer-count N, then N request/value entries. AP reads are posted
// — the value returned by the Nth AP-read transaction belongs to the
// (N-1)th request — so a trailing RDBUFF read drains the pipeline
// whenever the final executed entry was an AP read.
func handleTransfer(s *State, req []byte, rsp []byte) (int, error) {
	rsp[0] = cmdTransfer

	if s.Mode != ModeSWD {
		rsp[1] = 0
		rsp[2] = 0
		return 3, nil
	}

	count := int(reqByte(req, 2))
	ri := 3
	wi := 3 // [cmd, executed_count, last_ack] precede read data

	matchMask := ^uint32(0)
	executed := 0
	lastAck := swd.ACK_OK
	lastWasAPRead := false

	var matchValue uint32

	for i := 0; i < count; i++ {
		reqByte0 := reqByte(req, ri)
		ri++

		if reqByte0&trbMatchMask != 0 {
			matchMask = reqU32(req, ri)
			ri += 4
			executed++
			continue
		}

		isRead := reqByte0&trbRnW != 0
		isAPRead := isRead && reqByte0&trbAPnDP != 0

		if isRead {
			if reqByte0&trbValueMatch != 0 {
				matchValue = reqU32(req, ri)
				ri += 4

				retries := s.RetryMatch
				if retries < 1 {
					retries = 1
				}

				var res swd.Result
				for attempt := 0; attempt < retries; attempt++ {
					res = s.SWD.Transfer(reqByte0&0x0f, 0, s.RetryWait)
					if res.ACK != swd.ACK_OK {
						break
					}
					if res.Value&matchMask == matchValue&matchMask {
						break
					}
				}

				lastAck = res.ACK
				lastWasAPRead = isAPRead

				if res.ACK != swd.ACK_OK {
					executed++
					break
				}

				putU32(rsp[wi:], res.Value)
				wi += 4
				executed++
				continue
			}

			res := s.SWD.Transfer(reqByte0&0x0f, 0, s.RetryWait)
			lastAck = res.ACK
			lastWasAPRead = isAPRead

			if res.ACK != swd.ACK_OK {
				executed++
				break
			}

			putU32(rsp[wi:], res.Value)
			wi += 4
			executed++
			continue
		}

		value := reqU32(req, ri)
		ri += 4

		res := s.SWD.Transfer(reqByte0&0x0f, value, s.RetryWait)
		lastAck = res.ACK
		lastWasAPRead = false
		executed++

		if res.ACK != swd.ACK_OK {
			break
		}

		s.SWD.IdleCycles(s.IdleCycles)
	}

	if lastWasAPRead && lastAck == swd.ACK_OK {
		drain := s.SWD.Transfer(rdbuffAddress, 0, s.RetryWait)
		lastAck = drain.ACK
		if drain.ACK == swd.ACK_OK && wi > 3 {
			putU32(rsp[wi-4:], drain.Value)
		}
	}

	rsp[1] = byte(executed)
	rsp[2] = byte(lastAck)
	return wi, nil
}
