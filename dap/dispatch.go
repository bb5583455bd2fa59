// https://github.com/cowlab/cowprobe
//
// Copyright (c) Cowlab
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package dap

// Command IDs, spec §4.5.
const (
	cmdInfo              = 0x00
	cmdHostStatus        = 0x01
	cmdConnect           = 0x02
	cmdDisconnect        = 0x03
	cmdTransferConfigure = 0x04
	cmdTransfer          = 0x05
	cmdWriteABORT        = 0x08
	cmdDelay             = 0x09
	cmdResetTarget       = 0x0A
	cmdSWJPins           = 0x10
	cmdSWJClock          = 0x11
	cmdSWJSequence       = 0x12
	cmdSWDConfigure      = 0x13
	cmdSWDSequence       = 0x1D
)

// dapError is the sentinel the dispatcher maps onto the 2-byte
// DAP_ERROR response. Handlers return it to signal "known command, not
// supported" rather than writing a 0xFF status byte themselves.
type dapError struct{}

func (dapError) Error() string { return "dap: unsupported" }

// ErrUnsupported is returned by a handler that recognizes the command
// but does not implement it.
var ErrUnsupported error = dapError{}

// handlerFunc processes one command. req is the full request packet
// including the command byte at req[0]; rsp is a caller-owned buffer at
// least 64 bytes long. handlerFunc writes the full response (including
// echoing req[0] at rsp[0]) and returns the number of bytes written.
type handlerFunc func(s *State, req []byte, rsp []byte) (n int, err error)

var handlers = map[byte]handlerFunc{
	cmdInfo:             handleInfo,
	cmdHostStatus:       handleHostStatus,
	cmdConnect:          handleConnect,
	cmdDisconnect:       handleDisconnect,
	cmdTransferConfigure: handleTransferConfigure,
	cmdTransfer:         handleTransfer,
	cmdWriteABORT:       handleWriteABORT,
	cmdDelay:            handleDelay,
	cmdResetTarget:      handleResetTarget,
	cmdSWJPins:          handleSWJPins,
	cmdSWJClock:         handleSWJClock,
	cmdSWJSequence:      handleSWJSequence,
	cmdSWDConfigure:     handleSWDConfigure,
	cmdSWDSequence:      handleSWDSequence,
}

// Dispatch routes one received command packet to its handler and
// returns the response slice (a sub-slice of rsp). Exactly one response
// is produced per call, per spec §4.4/§5: unknown command IDs and
// handler errors both yield the 2-byte DAP_ERROR form [cmd, 0xFF].
func Dispatch(s *State, req []byte, rsp []byte) []byte {
	if len(req) == 0 {
		return rsp[:0]
	}

	cmd := req[0]

	h, ok := handlers[cmd]
	if !ok {
		return errorResponse(rsp, cmd)
	}

	n, err := h(s, req, rsp)
	if err != nil || n < 1 {
		if s.Log != nil {
			s.Log.Printf("dispatch", "dap: command %#02x failed: %v", cmd, err)
		}
		return errorResponse(rsp, cmd)
	}

	return rsp[:n]
}

func errorResponse(rsp []byte, cmd byte) []byte {
	rsp[0] = cmd
	rsp[1] = 0xFF
	return rsp[:2]
}

// reqByte safely reads req[i], returning 0 for a malformed short packet
// (spec §7: "best-effort dispatch; undefined fields read as zero").
func reqByte(req []byte, i int) byte {
	if i < 0 || i >= len(req) {
		return 0
	}
	return req[i]
}

func reqU16(req []byte, i int) uint16 {
	lo := uint16(reqByte(req, i))
	hi := uint16(reqByte(req, i+1))
	return lo | hi<<8
}

func reqU32(req []byte, i int) uint32 {
	b0 := uint32(reqByte(req, i))
	b1 := uint32(reqByte(req, i+1))
	b2 := uint32(reqByte(req, i+2))
	b3 := uint32(reqByte(req, i+3))
	return b0 | b1<<8 | b2<<16 | b3<<24
}

func putU16(b []byte, v uint16) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
}

func putU32(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}
