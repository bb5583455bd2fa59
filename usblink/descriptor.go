// https://github.com/cowlab/cowprobe
//
// Copyright (c) Cowlab
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package usblink

import (
	"bytes"
	"encoding/binary"
)

// Standard USB descriptor type codes and sizes, grounded on the same
// constants the teacher's soc/imx6/usb/descriptor.go defines.
const (
	descDevice        = 1
	descConfiguration = 2
	descString        = 3
	descInterface     = 4
	descEndpoint      = 5

	deviceLength        = 18
	configurationLength = 9
	interfaceLength     = 9
	endpointLength      = 7
)

// DeviceDescriptor implements the standard USB device descriptor
// (USB2.0 p290, Table 9-8), fixed to the values of spec §6: VID 0x2E8A,
// Miscellaneous device class (IAD protocol), bcdDevice 0x0100.
type DeviceDescriptor struct {
	Length            uint8
	DescriptorType    uint8
	BcdUSB            uint16
	DeviceClass       uint8
	DeviceSubClass    uint8
	DeviceProtocol    uint8
	MaxPacketSize     uint8
	VendorId          uint16
	ProductId         uint16
	Device            uint16
	Manufacturer      uint8
	Product           uint8
	SerialNumber      uint8
	NumConfigurations uint8
}

// deviceClassMiscellaneous + IAD multi-interface-function subclass/
// protocol, per spec §6.
const (
	deviceClassMiscellaneous = 0xEF
	deviceSubClassIAD        = 0x02
	deviceProtocolIAD        = 0x01
)

// NewDeviceDescriptor builds the device descriptor with the PID
// supplied by the caller (board-specific; there is no single PID-MAP
// macro target in this abstraction, spec §6).
func NewDeviceDescriptor(pid uint16) *DeviceDescriptor {
	return &DeviceDescriptor{
		Length:            deviceLength,
		DescriptorType:    descDevice,
		BcdUSB:            0x0200,
		DeviceClass:       deviceClassMiscellaneous,
		DeviceSubClass:    deviceSubClassIAD,
		DeviceProtocol:    deviceProtocolIAD,
		MaxPacketSize:     64,
		VendorId:          0x2E8A,
		ProductId:         pid,
		Device:            0x0100,
		Manufacturer:      1,
		Product:           2,
		SerialNumber:      3,
		NumConfigurations: 1,
	}
}

// Bytes renders the descriptor to wire format.
func (d *DeviceDescriptor) Bytes() []byte {
	buf := new(bytes.Buffer)
	binary.Write(buf, binary.LittleEndian, d)
	return buf.Bytes()
}

// EndpointDescriptor implements the standard endpoint descriptor
// (USB2.0 p297, Table 9-13).
type EndpointDescriptor struct {
	Length          uint8
	DescriptorType  uint8
	EndpointAddress uint8
	Attributes      uint8
	MaxPacketSize   uint16
	Interval        uint8
}

const (
	transferTypeBulk = 0x02
)

// NewBulkEndpoint builds a bulk endpoint descriptor. address must
// include the IN direction bit (0x80) for IN endpoints.
func NewBulkEndpoint(address uint8) *EndpointDescriptor {
	return &EndpointDescriptor{
		Length:          endpointLength,
		DescriptorType:  descEndpoint,
		EndpointAddress: address,
		Attributes:      transferTypeBulk,
		MaxPacketSize:   64,
	}
}

func (d *EndpointDescriptor) Bytes() []byte {
	buf := new(bytes.Buffer)
	binary.Write(buf, binary.LittleEndian, d)
	return buf.Bytes()
}

// InterfaceDescriptor implements the standard interface descriptor
// (USB2.0 p293).
type InterfaceDescriptor struct {
	Length            uint8
	DescriptorType    uint8
	InterfaceNumber   uint8
	AlternateSetting  uint8
	NumEndpoints      uint8
	InterfaceClass    uint8
	InterfaceSubClass uint8
	InterfaceProtocol uint8
	Interface         uint8

	Endpoints []*EndpointDescriptor
}

const interfaceClassVendor = 0xFF

// NewCMSISDAPInterface builds the vendor-specific interface carrying
// the CMSIS-DAP bulk-OUT-then-bulk-IN endpoint pair — the descriptor
// ordering OpenOCD requires per spec §4.6/§6.
func NewCMSISDAPInterface(number uint8) *InterfaceDescriptor {
	return &InterfaceDescriptor{
		Length:          interfaceLength,
		DescriptorType:  descInterface,
		InterfaceNumber: number,
		NumEndpoints:    2,
		InterfaceClass:  interfaceClassVendor,
		Endpoints: []*EndpointDescriptor{
			NewBulkEndpoint(0x07),
			NewBulkEndpoint(0x88),
		},
	}
}

func (d *InterfaceDescriptor) Bytes() []byte {
	buf := new(bytes.Buffer)

	binary.Write(buf, binary.LittleEndian, d.Length)
	binary.Write(buf, binary.LittleEndian, d.DescriptorType)
	binary.Write(buf, binary.LittleEndian, d.InterfaceNumber)
	binary.Write(buf, binary.LittleEndian, d.AlternateSetting)
	binary.Write(buf, binary.LittleEndian, d.NumEndpoints)
	binary.Write(buf, binary.LittleEndian, d.InterfaceClass)
	binary.Write(buf, binary.LittleEndian, d.InterfaceSubClass)
	binary.Write(buf, binary.LittleEndian, d.InterfaceProtocol)
	binary.Write(buf, binary.LittleEndian, d.Interface)

	for _, ep := range d.Endpoints {
		buf.Write(ep.Bytes())
	}

	return buf.Bytes()
}

// ConfigurationDescriptor implements the standard configuration
// descriptor (USB2.0 p293), aggregating the interfaces added through
// AddInterface. This package builds only the CMSIS-DAP vendor interface;
// it has no builder for the CDC ACM interfaces.
type ConfigurationDescriptor struct {
	Length             uint8
	DescriptorType     uint8
	TotalLength        uint16
	NumInterfaces      uint8
	ConfigurationValue uint8
	Configuration      uint8
	Attributes         uint8
	MaxPower           uint8

	Interfaces []*InterfaceDescriptor
}

func NewConfigurationDescriptor() *ConfigurationDescriptor {
	return &ConfigurationDescriptor{
		Length:             configurationLength,
		DescriptorType:     descConfiguration,
		ConfigurationValue: 1,
		Attributes:         0x80, // bus-powered
		MaxPower:           250,
	}
}

func (d *ConfigurationDescriptor) AddInterface(iface *InterfaceDescriptor) {
	d.Interfaces = append(d.Interfaces, iface)
	d.NumInterfaces = uint8(len(d.Interfaces))
}

func (d *ConfigurationDescriptor) Bytes() []byte {
	buf := new(bytes.Buffer)

	var body bytes.Buffer
	for _, iface := range d.Interfaces {
		body.Write(iface.Bytes())
	}

	d.TotalLength = uint16(configurationLength) + uint16(body.Len())

	binary.Write(buf, binary.LittleEndian, d.Length)
	binary.Write(buf, binary.LittleEndian, d.DescriptorType)
	binary.Write(buf, binary.LittleEndian, d.TotalLength)
	binary.Write(buf, binary.LittleEndian, d.NumInterfaces)
	binary.Write(buf, binary.LittleEndian, d.ConfigurationValue)
	binary.Write(buf, binary.LittleEndian, d.Configuration)
	binary.Write(buf, binary.LittleEndian, d.Attributes)
	binary.Write(buf, binary.LittleEndian, d.MaxPower)

	buf.Write(body.Bytes())

	return buf.Bytes()
}

// StringDescriptor implements the standard UTF-16LE string descriptor
// (USB2.0 p273, 9.6.7).
type StringDescriptor struct {
	Length         uint8
	DescriptorType uint8
	data           []byte
}

func NewStringDescriptor(s string) *StringDescriptor {
	var data []byte
	for _, r := range s {
		data = append(data, byte(r), 0x00)
	}

	return &StringDescriptor{
		Length:         uint8(2 + len(data)),
		DescriptorType: descString,
		data:           data,
	}
}

func (d *StringDescriptor) Bytes() []byte {
	buf := new(bytes.Buffer)
	binary.Write(buf, binary.LittleEndian, d.Length)
	binary.Write(buf, binary.LittleEndian, d.DescriptorType)
	buf.Write(d.data)
	return buf.Bytes()
}

// Identity strings mandated by spec §6 — host-visible and must remain
// stable.
const (
	ManufacturerString = "Cowlab"
	ProductString      = "Cowprobe CMSIS-DAP"
	SerialString       = "0123"
)

// Strings returns the manufacturer/product/serial string descriptors
// in the fixed order spec §6 requires (indices 1..3).
func Strings() []*StringDescriptor {
	return []*StringDescriptor{
		NewStringDescriptor(ManufacturerString),
		NewStringDescriptor(ProductString),
		NewStringDescriptor(SerialString),
	}
}
