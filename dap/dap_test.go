// https://github.com/cowlab/cowprobe
//
// Copyright (c) Cowlab
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package dap

import (
	"testing"

	"github.com/cowlab/cowprobe/internal/ratelog"
	"github.com/cowlab/cowprobe/pin"
)

func newTestState() *State {
	port := &pin.Port{
		D0: &pin.Mock{Name: "D0"},
		D1: &pin.Mock{Name: "D1"},
		D2: &pin.Mock{Name: "D2"},
		D3: &pin.Mock{Name: "D3"},
	}

	return NewState(port, nil, ratelog.New(nil))
}

func TestInfoPacketSize(t *testing.T) {
	s := newTestState()
	rsp := make([]byte, 64)

	got := Dispatch(s, []byte{0x00, infoPacketSize}, rsp)

	want := []byte{0x00, 0x02, 0x40, 0x00}
	if string(got) != string(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestInfoPacketCount(t *testing.T) {
	s := newTestState()
	rsp := make([]byte, 64)

	got := Dispatch(s, []byte{0x00, infoPacketCount}, rsp)

	want := []byte{0x00, 0x01, 0x01}
	if string(got) != string(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestInfoCapabilities(t *testing.T) {
	s := newTestState()
	rsp := make([]byte, 64)

	got := Dispatch(s, []byte{0x00, infoCapabilities}, rsp)

	want := []byte{0x00, 0x01, 0x03}
	if string(got) != string(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestInfoSerialLengthIncludesNUL(t *testing.T) {
	s := newTestState()
	rsp := make([]byte, 64)

	got := Dispatch(s, []byte{0x00, infoSerial}, rsp)

	length := int(got[1])
	chars := got[2:]

	if length != len(infoSerialNum)+1 {
		t.Fatalf("length = %d, want %d", length, len(infoSerialNum)+1)
	}
	if len(chars) != length {
		t.Fatalf("response has %d data bytes, want %d", len(chars), length)
	}
	if chars[length-1] != 0 {
		t.Fatalf("last byte = %#02x, want NUL", chars[length-1])
	}
	if string(chars[:length-1]) != infoSerialNum {
		t.Fatalf("string = %q, want %q", chars[:length-1], infoSerialNum)
	}
}

func TestConnectDefaultAndJTAGAndInvalid(t *testing.T) {
	cases := []struct {
		port byte
		want byte
	}{
		{portDefault, portSWD},
		{portJTAG, portJTAG},
		{99, 0},
	}

	for _, c := range cases {
		s := newTestState()
		rsp := make([]byte, 64)

		got := Dispatch(s, []byte{0x02, c.port}, rsp)

		if got[1] != c.want {
			t.Errorf("Connect(%d) = %v, want [0x02, %d]", c.port, got, c.want)
		}
	}
}

func TestSWJPinsReadback(t *testing.T) {
	s := newTestState()
	rsp := make([]byte, 64)

	got := Dispatch(s, []byte{0x10, 0b10000000, 0b10000000, 0x00, 0x00}, rsp)

	if got[1]&0x80 == 0 {
		t.Fatalf("bit7 not set in readback: %#02x", got[1])
	}
}

func TestSWJSequenceProducesRisingEdges(t *testing.T) {
	s := newTestState()
	rsp := make([]byte, 64)

	clk := s.Port.D2.(*pin.Mock)

	got := Dispatch(s, []byte{0x12, 50, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}, rsp)

	if len(got) != 2 || got[1] != 0x00 {
		t.Fatalf("response = %v, want [0x12, 0x00]", got)
	}
	if got := clk.RisingEdges(); got != 50 {
		t.Fatalf("RisingEdges = %d, want 50", got)
	}
}

func TestIdempotentInfoRequests(t *testing.T) {
	s := newTestState()

	var first []byte
	for i := 0; i < 5; i++ {
		rsp := make([]byte, 64)
		got := Dispatch(s, []byte{0x00, infoVendor}, rsp)
		if first == nil {
			first = append([]byte(nil), got...)
			continue
		}
		if string(got) != string(first) {
			t.Fatalf("iteration %d differs: %v vs %v", i, got, first)
		}
	}
}

func TestUnknownCommandYieldsDAPError(t *testing.T) {
	s := newTestState()
	rsp := make([]byte, 64)

	got := Dispatch(s, []byte{0x7F}, rsp)

	want := []byte{0x7F, 0xFF}
	if string(got) != string(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestTransferDPIDR(t *testing.T) {
	s := newTestState()
	Dispatch(s, []byte{0x02, portSWD}, make([]byte, 64))

	swdio := s.Port.D1.(*pin.Mock)

	idcode := uint32(0x2BA01477)

	parity := func(v uint32) pin.Level {
		v ^= v >> 16
		v ^= v >> 8
		v ^= v >> 4
		v &= 0xf
		if (0x6996>>v)&1 != 0 {
			return pin.High
		}
		return pin.Low
	}

	stream := []pin.Level{pin.High, pin.Low, pin.Low} // ACK_OK, LSB first
	for i := 0; i < 32; i++ {
		if (idcode>>uint(i))&1 != 0 {
			stream = append(stream, pin.High)
		} else {
			stream = append(stream, pin.Low)
		}
	}
	stream = append(stream, parity(idcode))

	idx := 0
	swdio.ReadFn = func() pin.Level {
		if idx >= len(stream) {
			return pin.Low
		}
		l := stream[idx]
		idx++
		return l
	}

	// request = 0x02: APnDP=0 (DP), RnW=1 (read), A[2:3]=00 -> DPIDR.
	req := []byte{0x05, 0x00, 0x01, 0x02}
	rsp := make([]byte, 64)

	got := Dispatch(s, req, rsp)

	if len(got) != 7 {
		t.Fatalf("response length = %d, want 7", len(got))
	}
	if got[2] != 0x01 {
		t.Fatalf("last_ack = %d, want 1 (OK)", got[2])
	}

	value := uint32(got[3]) | uint32(got[4])<<8 | uint32(got[5])<<16 | uint32(got[6])<<24
	if value == 0 {
		t.Fatalf("IDCODE readback is zero")
	}
}

func TestSWDSequenceOutputThenInput(t *testing.T) {
	s := newTestState()
	Dispatch(s, []byte{0x02, portSWD}, make([]byte, 64))

	swdio := s.Port.D1.(*pin.Mock)
	swdio.ReadFn = func() pin.Level { return pin.High }

	// 2 sequences: first outputs 8 bits (0xAB), second captures 8 bits.
	req := []byte{0x1D, 0x02, 0x08, 0xAB, 0x80 | 0x08}
	rsp := make([]byte, 64)

	got := Dispatch(s, req, rsp)

	if got[1] != 0x00 {
		t.Fatalf("status = %#02x, want 0x00", got[1])
	}
	if len(got) != 3 {
		t.Fatalf("response length = %d, want 3 ([cmd, status, 1 captured byte])", len(got))
	}
	if got[2] != 0xFF {
		t.Fatalf("captured byte = %#02x, want 0xFF (all-high readback)", got[2])
	}
}

func TestDisconnectResetsMode(t *testing.T) {
	s := newTestState()
	rsp := make([]byte, 64)

	Dispatch(s, []byte{0x02, portSWD}, rsp)
	if s.Mode != ModeSWD {
		t.Fatalf("mode = %v after Connect, want ModeSWD", s.Mode)
	}

	got := Dispatch(s, []byte{0x03}, rsp)
	if string(got) != string([]byte{0x03, 0x00}) {
		t.Fatalf("got %v, want [0x03, 0x00]", got)
	}
	if s.Mode != ModeUnused {
		t.Fatalf("mode = %v after Disconnect, want ModeUnused", s.Mode)
	}
}
