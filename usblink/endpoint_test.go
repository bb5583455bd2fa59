// https://github.com/cowlab/cowprobe
//
// Copyright (c) Cowlab
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package usblink

import (
	"context"
	"errors"
	"testing"

	"github.com/cowlab/cowprobe/dap"
	"github.com/cowlab/cowprobe/internal/ratelog"
	"github.com/cowlab/cowprobe/pin"
)

var errStop = errors.New("test: stop")

type fakeEndpoint struct {
	packets [][]byte
	idx     int
	sent    [][]byte
}

func (f *fakeEndpoint) ReadOUT(ctx context.Context, buf []byte) (int, error) {
	if f.idx >= len(f.packets) {
		return 0, errStop
	}
	n := copy(buf, f.packets[f.idx])
	f.idx++
	return n, nil
}

func (f *fakeEndpoint) WriteIN(ctx context.Context, buf []byte) error {
	cp := append([]byte(nil), buf...)
	f.sent = append(f.sent, cp)
	return nil
}

func TestLinkServeDispatchesOnePacketAtATime(t *testing.T) {
	port := &pin.Port{
		D0: &pin.Mock{}, D1: &pin.Mock{}, D2: &pin.Mock{}, D3: &pin.Mock{},
	}
	state := dap.NewState(port, nil, ratelog.New(nil))

	ep := &fakeEndpoint{
		packets: [][]byte{
			{0x00, 0xFF},
			{0x03},
		},
	}

	link := &Link{EP: ep, State: state}

	err := link.Serve(context.Background())
	if !errors.Is(err, errStop) {
		t.Fatalf("Serve returned %v, want errStop", err)
	}

	if len(ep.sent) != 2 {
		t.Fatalf("sent %d packets, want 2", len(ep.sent))
	}
	if ep.sent[0][0] != 0x00 {
		t.Fatalf("first reply cmd = %#02x, want 0x00", ep.sent[0][0])
	}
	if ep.sent[1][0] != 0x03 {
		t.Fatalf("second reply cmd = %#02x, want 0x03", ep.sent[1][0])
	}
}
