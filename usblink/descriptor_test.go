// https://github.com/cowlab/cowprobe
//
// Copyright (c) Cowlab
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package usblink

import "testing"

func TestDeviceDescriptorFixedFields(t *testing.T) {
	d := NewDeviceDescriptor(0x0001)
	b := d.Bytes()

	if len(b) != deviceLength {
		t.Fatalf("length = %d, want %d", len(b), deviceLength)
	}

	vid := uint16(b[8]) | uint16(b[9])<<8
	if vid != 0x2E8A {
		t.Fatalf("VID = %#04x, want 0x2E8A", vid)
	}
}

func TestCMSISDAPInterfaceEndpointOrdering(t *testing.T) {
	iface := NewCMSISDAPInterface(2)

	if len(iface.Endpoints) != 2 {
		t.Fatalf("endpoints = %d, want 2", len(iface.Endpoints))
	}
	if iface.Endpoints[0].EndpointAddress != 0x07 {
		t.Fatalf("first endpoint = %#02x, want 0x07 (OUT before IN)", iface.Endpoints[0].EndpointAddress)
	}
	if iface.Endpoints[1].EndpointAddress != 0x88 {
		t.Fatalf("second endpoint = %#02x, want 0x88", iface.Endpoints[1].EndpointAddress)
	}
}

func TestConfigurationTotalLength(t *testing.T) {
	cfg := NewConfigurationDescriptor()
	cfg.AddInterface(NewCMSISDAPInterface(0))

	b := cfg.Bytes()

	total := uint16(b[2]) | uint16(b[3])<<8
	if int(total) != len(b) {
		t.Fatalf("TotalLength = %d, actual bytes = %d", total, len(b))
	}
}

func TestStringsStableOrder(t *testing.T) {
	strs := Strings()
	if len(strs) != 3 {
		t.Fatalf("len(Strings()) = %d, want 3", len(strs))
	}
}
