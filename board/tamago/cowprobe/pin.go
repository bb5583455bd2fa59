// Bare-metal pin backend for cowprobe
// https://github.com/cowlab/cowprobe
//
// Copyright (c) Cowlab
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package cowprobe wires the probe's D0..D3 debug port pins to real
// hardware under `GOOS=tamago GOARCH=arm`; it provides no CMSIS-DAP bulk
// endpoint. It carries no MCU-specific register
// programming of its own (spec §1 excludes that); RegisterPin is a
// generic single-bit GPIO register adapter, grounded on the teacher's
// soc/nxp/gpio.Pin and internal/reg primitives, that a board package
// instantiates with the concrete addresses of its own SoC.
package cowprobe

import (
	"sync"
	"unsafe"

	"github.com/cowlab/cowprobe/bits"
	"github.com/cowlab/cowprobe/pin"
)

var regMutex sync.Mutex

// RegisterPin implements pin.Pin directly against a data register and
// a direction register, one bit each, following the Set/Clear/Get
// idiom of the teacher's internal/reg and soc/nxp/gpio packages. It
// drops the teacher's cache-flush call (tied to a specific SoC cache
// controller outside this package's scope) since the dispatch loop
// already serializes all pin access on one goroutine (spec §5) and
// therefore needs no mutual-exclusion beyond regMutex guarding the
// read-modify-write itself.
type RegisterPin struct {
	Data uint32
	Dir  uint32
	Bit  int
}

func (p *RegisterPin) dataReg() *uint32 { return (*uint32)(unsafe.Pointer(uintptr(p.Data))) }
func (p *RegisterPin) dirReg() *uint32  { return (*uint32)(unsafe.Pointer(uintptr(p.Dir))) }

// Out drives the pin as an output at the given level.
func (p *RegisterPin) Out(l pin.Level) error {
	regMutex.Lock()
	defer regMutex.Unlock()

	bits.Set(p.dirReg(), p.Bit)
	bits.SetTo(p.dataReg(), p.Bit, l == pin.High)

	return nil
}

// In configures the pin as a floating input.
func (p *RegisterPin) In() error {
	regMutex.Lock()
	defer regMutex.Unlock()

	bits.Clear(p.dirReg(), p.Bit)

	return nil
}

// Read returns the pin's current level.
func (p *RegisterPin) Read() (pin.Level, error) {
	regMutex.Lock()
	defer regMutex.Unlock()

	if bits.Get(p.dataReg(), p.Bit) {
		return pin.High, nil
	}

	return pin.Low, nil
}

// Spin busy-waits approximately n CPU cycles via an empty counted
// loop, the platform primitive spec §9 calls for
// ("the platform provides a spin_cycles(n) primitive"). A real board
// calibrates the constant relating loop iterations to wall-clock time
// against its clock speed; this one assumes roughly one iteration per
// cycle, adequate for the NOP-delay role bit-banging needs.
func Spin(cycles int) {
	for i := 0; i < cycles; i++ {
	}
}
