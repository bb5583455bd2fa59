// https://github.com/cowlab/cowprobe
//
// Copyright (c) Cowlab
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package dap

// DAP_SWD_Sequence (0x1D) is absent from the retrieved original
// firmware entirely; it is built here directly from the CMSIS-DAP v1
// wire semantics of spec §4.5, reusing the SWD engine primitives
// already grounded for §4.2 (swd.Engine.Write/Read and the port's
// SwdioDir turnaround control).

const (
	swdSeqBitCountMask = 0x3F
	swdSeqDirInput     = 0x80
)

// handleSWDSequence implements DAP_SWD_Sequence (0x1D): sequence-count,
// then per sequence one info byte (bits0-5 bit-count, 0 meaning 64;
// bit7 direction, 1=input), followed by output data bytes for output
// sequences. Input sequences append their captured bytes to the
// response in order. SWDIO direction is restored to output at the end.
func handleSWDSequence(s *State, req []byte, rsp []byte) (int, error) {
	rsp[0] = cmdSWDSequence

	count := int(reqByte(req, 1))
	ri := 2
	wi := 1

	rsp[wi] = 0x00
	wi++

	for i := 0; i < count; i++ {
		info := reqByte(req, ri)
		ri++

		nbits := int(info & swdSeqBitCountMask)
		if nbits == 0 {
			nbits = 64
		}

		nbytes := (nbits + 7) / 8

		if info&swdSeqDirInput != 0 {
			s.Port.SwdioDir(false)

			remaining := nbits
			for b := 0; b < nbytes; b++ {
				n := remaining
				if n > 8 {
					n = 8
				}
				rsp[wi] = byte(s.SWD.Read(n))
				wi++
				remaining -= n
			}
		} else {
			s.Port.SwdioDir(true)

			remaining := nbits
			for b := 0; b < nbytes; b++ {
				n := remaining
				if n > 8 {
					n = 8
				}
				s.SWD.Write(uint32(reqByte(req, ri)), n)
				ri++
				remaining -= n
			}
		}
	}

	s.Port.SwdioDir(true)

	return wi, nil
}
