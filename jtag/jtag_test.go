// https://github.com/cowlab/cowprobe
//
// Copyright (c) Cowlab
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package jtag

import (
	"testing"

	"github.com/cowlab/cowprobe/pin"
)

func newTestEngine() (*Engine, *pin.Mock, *pin.Mock) {
	tdi := &pin.Mock{Name: "TDI"}
	tms := &pin.Mock{Name: "TMS"}
	tck := &pin.Mock{Name: "TCK"}
	tdo := &pin.Mock{Name: "TDO"}

	e := &Engine{
		Port: &pin.Port{D0: tdi, D1: tms, D2: tck, D3: tdo},
	}

	return e, tck, tms
}

func TestTMSSequenceClocksNBits(t *testing.T) {
	e, tck, tms := newTestEngine()

	e.TMSSequence(0b1011, 4)

	if got := tck.RisingEdges(); got != 4 {
		t.Fatalf("RisingEdges = %d, want 4", got)
	}

	// TMS trace should read back 1,1,0,1 (LSB first) at each falling edge.
	want := []pin.Level{pin.High, pin.High, pin.Low, pin.High}
	got := []pin.Level{}
	for _, e := range tms.Trace {
		if !e.Dir {
			got = append(got, e.Level)
		}
	}

	if len(got) != len(want) {
		t.Fatalf("TMS edges = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("TMS bit %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestShiftLoopback(t *testing.T) {
	e, _, _ := newTestEngine()

	tdiPin := e.Port.D0.(*pin.Mock)

	readback := uint32(0)
	idx := 0
	bits := []int{1, 0, 1, 1, 0, 0, 1, 0}
	tdiPin.ReadFn = func() pin.Level {
		b := bits[idx%len(bits)]
		idx++
		if b != 0 {
			return pin.High
		}
		return pin.Low
	}

	readback = e.Shift(0xAA, 8, 0)

	var want uint32
	for i, b := range bits {
		if b != 0 {
			want |= 1 << uint(i)
		}
	}

	if readback != want {
		t.Fatalf("Shift readback = %#x, want %#x", readback, want)
	}
}

func TestShiftMSBFirst8(t *testing.T) {
	e, tck, _ := newTestEngine()

	e.ShiftMSBFirst8(0xA5, 0)

	if got := tck.RisingEdges(); got != 8 {
		t.Fatalf("RisingEdges = %d, want 8", got)
	}
}
