// https://github.com/cowlab/cowprobe
//
// Copyright (c) Cowlab
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package dap

// DAP_Info sub-IDs, spec §4.5.
const (
	infoVendor       = 0x01
	infoProduct      = 0x02
	infoSerial       = 0x03
	infoProtocol     = 0x04
	infoTargetFirst  = 0x05
	infoTargetLast   = 0x09
	infoCapabilities = 0xF0
	infoTestTimer    = 0xF1
	infoUARTRxBuf    = 0xFB
	infoUARTTxBuf    = 0xFC
	infoSWOBuf       = 0xFD
	infoPacketCount  = 0xFE
	infoPacketSize   = 0xFF
)

// Info identity strings; names by what they advertise rather than
// mirroring the original's PORT/VID macros.
var (
	infoVendorName  = "Cowlab"
	infoProductName = "Cowprobe CMSIS-DAP"
	infoSerialNum   = "0123"
	protocolVersion = "2.0.0"
)

const (
	packetCount = 1
	packetSize  = 64
)

// handleInfo implements DAP_Info (0x00): string sub-IDs return
// [0x00, len+1, chars..., 0] with the trailing NUL counted in the
// length byte (spec §9 resolves the "2+len" vs "2+len+1" ambiguity in
// favor of the latter, matching CMSIS-DAP). Numeric sub-IDs return a
// fixed-width, length-prefixed form.
func handleInfo(s *State, req []byte, rsp []byte) (int, error) {
	rsp[0] = cmdInfo
	sub := reqByte(req, 1)

	switch {
	case sub == infoVendor:
		return infoString(rsp, infoVendorName), nil
	case sub == infoProduct:
		return infoString(rsp, infoProductName), nil
	case sub == infoSerial:
		return infoString(rsp, infoSerialNum), nil
	case sub == infoProtocol:
		return infoString(rsp, protocolVersion), nil
	case sub >= infoTargetFirst && sub <= infoTargetLast:
		// No target-specific vendor strings are wired; report empty.
		return infoString(rsp, ""), nil

	case sub == infoCapabilities:
		rsp[1] = 0x01
		rsp[2] = 0x03 // bit0 SWD, bit1 JTAG
		return 3, nil

	case sub == infoTestTimer:
		rsp[1] = 0x00
		return 2, nil

	case sub == infoUARTRxBuf, sub == infoUARTTxBuf, sub == infoSWOBuf:
		rsp[1] = 0x00
		return 2, nil

	case sub == infoPacketCount:
		rsp[1] = 0x01
		rsp[2] = packetCount
		return 3, nil

	case sub == infoPacketSize:
		rsp[1] = 0x02
		putU16(rsp[2:4], packetSize)
		return 4, nil
	}

	return 0, ErrUnsupported
}

func infoString(rsp []byte, s string) int {
	rsp[1] = byte(len(s) + 1)
	n := 2 + copy(rsp[2:], s)
	rsp[n] = 0
	return n + 1
}
