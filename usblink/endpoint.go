// USB-class front-end for the CMSIS-DAP command interface
// https://github.com/cowlab/cowprobe
//
// Copyright (c) Cowlab
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package usblink abstracts the generic USB device stack down to the
// one collaborator boundary the dispatcher needs: a bulk endpoint pair
// that can be read from and written to. It also builds the literal
// descriptor byte layout of spec §6, separately from any runtime USB
// stack, so the layout can be golden-byte tested.
package usblink

import (
	"context"

	"github.com/cowlab/cowprobe/dap"
)

// Endpoint is the abstract collaborator named in spec §1: USB device
// enumeration, descriptor tables, and endpoint setup live entirely
// outside this package's responsibility, behind this interface.
type Endpoint interface {
	// ReadOUT blocks until one bulk-OUT packet (<=64 bytes) is
	// available, copies it into buf, and returns its length.
	ReadOUT(ctx context.Context, buf []byte) (int, error)
	// WriteIN submits buf as one bulk-IN packet.
	WriteIN(ctx context.Context, buf []byte) error
}

// Link drives the OUT-dispatch-rearm loop of spec §4.6/§5 against any
// Endpoint pair and a dap.State. Exactly one bulk-IN submission follows
// each received bulk-OUT packet, and the wire engines run to completion
// before the next OUT packet is accepted (spec §5: no preemption
// between dispatcher and wire engines).
type Link struct {
	EP    Endpoint
	State *dap.State

	rx [64]byte
	tx [64]byte
}

// Serve runs the receive-dispatch-reply loop until ctx is cancelled or
// a read error occurs.
func (l *Link) Serve(ctx context.Context) error {
	for {
		n, err := l.EP.ReadOUT(ctx, l.rx[:])
		if err != nil {
			return err
		}

		rsp := dap.Dispatch(l.State, l.rx[:n], l.tx[:])

		if err := l.EP.WriteIN(ctx, rsp); err != nil {
			return err
		}
	}
}
