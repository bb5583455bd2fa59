// https://github.com/cowlab/cowprobe
//
// Copyright (c) Cowlab
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package cowprobe

import (
	"github.com/cowlab/cowprobe/dap"
	"github.com/cowlab/cowprobe/internal/ratelog"
	"github.com/cowlab/cowprobe/pin"
)

// Port wires the four RegisterPin instances for D0..D3. A concrete
// board (one per supported SoC) constructs this with its own register
// addresses and bit numbers, the same division of labor as the
// teacher's board package supplying addresses to a shared SoC driver.
func NewPort(d0, d1, d2, d3 RegisterPin) *pin.Port {
	return &pin.Port{
		D0:     &d0,
		D1:     &d1,
		D2:     &d2,
		D3:     &d3,
		Settle: func() { Spin(1) },
	}
}

// NewState builds a dap.State wired to the bare-metal port and spin
// primitive, logging to the standard logger (tamago boards normally
// arrange for log output to reach a UART via the runtime console).
func NewState(port *pin.Port) *dap.State {
	return dap.NewState(port, Spin, ratelog.New(nil))
}
