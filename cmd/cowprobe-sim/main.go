// cowprobe-sim runs the CMSIS-DAP dispatcher against real Linux GPIO
// lines, for protocol bring-up without a purpose-built probe board.
// https://github.com/cowlab/cowprobe
//
// Copyright (c) Cowlab
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.
package main

import (
	"context"
	"flag"
	"log"
	"math/rand"
	"time"

	"golang.org/x/time/rate"

	"github.com/cowlab/cowprobe/dap"
	periphboard "github.com/cowlab/cowprobe/board/periph/cowprobe"
	"github.com/cowlab/cowprobe/internal/ratelog"
	"github.com/cowlab/cowprobe/usblink"
)

var (
	d0 = flag.String("d0", "GPIO23", "TDI GPIO line name")
	d1 = flag.String("d1", "GPIO24", "SWDIO/TMS GPIO line name")
	d2 = flag.String("d2", "GPIO25", "SWCLK/TCK GPIO line name")
	d3 = flag.String("d3", "GPIO12", "nRESET/TDO GPIO line name")
)

func main() {
	flag.Parse()

	if err := periphboard.Init(); err != nil {
		log.Fatalf("cowprobe-sim: periph init: %v", err)
	}

	port, err := periphboard.NewPortByName(*d0, *d1, *d2, *d3)
	if err != nil {
		log.Fatalf("cowprobe-sim: %v", err)
	}

	// On a Linux SBC a calibrated NOP spin is meaningless (the
	// scheduler can preempt at any point); golang.org/x/time/rate
	// paces a simulated bit-delay instead, so the bit-banged protocol
	// timing behaves reasonably under test without busy-looping a
	// full CPU core.
	limiter := rate.NewLimiter(rate.Limit(2_000_000), 1)
	spin := func(cycles int) {
		for i := 0; i < cycles; i++ {
			limiter.Wait(context.Background())
		}
	}

	state := dap.NewState(port, spin, ratelog.New(nil))

	ep := newUSBGadgetEndpoint()
	link := &usblink.Link{EP: ep, State: state}

	log.Printf("cowprobe-sim: serving CMSIS-DAP on %s", ep.name)

	if err := link.Serve(context.Background()); err != nil {
		log.Fatalf("cowprobe-sim: %v", err)
	}
}

// usbGadgetEndpoint is a placeholder usblink.Endpoint: real OUT/IN
// transport (e.g. a Linux USB gadget functionfs bulk pair) is outside
// this exercise's scope (spec §1's "generic USB device stack"); it
// simulates packet delivery so the dispatcher can be driven end to end.
type usbGadgetEndpoint struct {
	name string
	rng  *rand.Rand
}

func newUSBGadgetEndpoint() *usbGadgetEndpoint {
	return &usbGadgetEndpoint{name: "functionfs0", rng: rand.New(rand.NewSource(1))}
}

func (e *usbGadgetEndpoint) ReadOUT(ctx context.Context, buf []byte) (int, error) {
	<-time.After(50 * time.Millisecond)
	buf[0] = 0x00
	buf[1] = 0xFF
	return 2, nil
}

func (e *usbGadgetEndpoint) WriteIN(ctx context.Context, buf []byte) error {
	return nil
}
