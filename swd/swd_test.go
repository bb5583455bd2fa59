// https://github.com/cowlab/cowprobe
//
// Copyright (c) Cowlab
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package swd

import (
	"testing"

	"github.com/cowlab/cowprobe/pin"
)

func TestParityEven(t *testing.T) {
	cases := []struct {
		v    uint32
		want uint32
	}{
		{0x00000000, 0},
		{0x00000001, 1},
		{0x00000003, 0},
		{0xA5A5A5A5, 0}, // 16 set bits
		{0xFFFFFFFF, 0}, // 32 set bits
		{0x80000000, 1},
	}

	for _, c := range cases {
		if got := parity(c.v); got != c.want {
			t.Errorf("parity(%#x) = %d, want %d", c.v, got, c.want)
		}
	}
}

func TestHeaderParity(t *testing.T) {
	// DP read, APnDP=0 RnW=1 A2=0 A3=0 -> request=0b0010
	h := header(RnW)

	// bit layout: start(1) APnDP RnW A2 A3 parity stop(0) park(1)
	if h&0x01 == 0 {
		t.Fatalf("start bit not set: %#02x", h)
	}
	if h&0x80 == 0 {
		t.Fatalf("park bit not set: %#02x", h)
	}
	if h&0x40 != 0 {
		t.Fatalf("stop bit should be 0: %#02x", h)
	}
	// One set request bit (RnW), so the even-parity bit (bit 5) is 1.
	if h&0x20 == 0 {
		t.Fatalf("parity bit not set: %#02x", h)
	}
}

func newTestEngine() (*Engine, *pin.Mock, *pin.Mock) {
	swdio := &pin.Mock{Name: "SWDIO"}
	swclk := &pin.Mock{Name: "SWCLK"}

	e := &Engine{
		Port: &pin.Port{D1: swdio, D2: swclk},
	}

	return e, swdio, swclk
}

// TestTransferOKRead drives a canned ACK_OK + data + parity response
// through ReadFn and checks the engine reassembles it correctly.
func TestTransferOKRead(t *testing.T) {
	e, swdio, _ := newTestEngine()

	// Response stream after the 8 header bits + 1 turnaround clock:
	// 3 ACK bits (OK = 0b001, LSB first -> 1,0,0), then 32 data bits
	// (0xDEADBEEF, LSB first), then 1 parity bit.
	want := uint32(0xDEADBEEF)
	stream := []pin.Level{}
	ack := []int{1, 0, 0}
	for _, b := range ack {
		stream = append(stream, lvl(b))
	}
	for i := 0; i < 32; i++ {
		stream = append(stream, lvl(int((want>>uint(i))&1)))
	}
	stream = append(stream, lvl(int(parity(want))))

	idx := 0
	swdio.ReadFn = func() pin.Level {
		if idx >= len(stream) {
			return pin.Low
		}
		l := stream[idx]
		idx++
		return l
	}

	res := e.Transfer(RnW, 0, 1)

	if res.ACK != ACK_OK {
		t.Fatalf("ACK = %d, want ACK_OK", res.ACK)
	}
	if res.Value != want {
		t.Fatalf("Value = %#x, want %#x", res.Value, want)
	}
	if res.ParityError {
		t.Fatalf("unexpected parity error")
	}
}

func lvl(bit int) pin.Level {
	if bit != 0 {
		return pin.High
	}
	return pin.Low
}

// TestTransferWaitRetry verifies a WAIT ack is retried up to retryWait
// times rather than surfaced on the first sub-transaction.
func TestTransferWaitRetry(t *testing.T) {
	e, swdio, _ := newTestEngine()

	attempt := 0
	swdio.ReadFn = func() pin.Level {
		// First transaction: ACK = WAIT (0b010 -> bits 0,1,0).
		// Second transaction: ACK = OK (0b001 -> bits 1,0,0), then 33
		// zero bits for a read of 0 with correct (zero) parity.
		seq := []pin.Level{}
		if attempt == 0 {
			seq = []pin.Level{pin.Low, pin.High, pin.Low}
		} else {
			seq = append(seq, pin.High, pin.Low, pin.Low)
			for i := 0; i < 33; i++ {
				seq = append(seq, pin.Low)
			}
		}

		l := seq[callIdx]
		callIdx++
		if callIdx >= len(seq) {
			callIdx = 0
			attempt++
		}
		return l
	}

	res := e.Transfer(RnW, 0, 2)

	if res.ACK != ACK_OK {
		t.Fatalf("ACK = %d, want ACK_OK after retry", res.ACK)
	}
}

var callIdx int
