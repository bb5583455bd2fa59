// https://github.com/cowlab/cowprobe
//
// Copyright (c) Cowlab
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package pin

// Edge records one state change observed on a Mock pin.
type Edge struct {
	// Level is the level driven (direction changes record the prior level).
	Level Level
	// Dir is true when this edge is a direction change to input.
	Dir bool
}

// Mock is a Pin implementation that records every Out/In call as an
// edge trace in Trace (and every Read result in Reads), used by swd/jtag/dap tests to verify bit-level framing
// without hardware (DESIGN NOTES: "testable against a mock that records
// edge traces").
type Mock struct {
	Name   string
	level  Level
	input  bool
	Trace  []Edge
	Reads  []Level
	ReadFn func() Level
}

// Out drives the mock pin as an output.
func (m *Mock) Out(l Level) error {
	m.input = false
	m.level = l
	m.Trace = append(m.Trace, Edge{Level: l})
	return nil
}

// In configures the mock pin as an input.
func (m *Mock) In() error {
	m.input = true
	m.Trace = append(m.Trace, Edge{Level: m.level, Dir: true})
	return nil
}

// Read returns the level the mock is currently driving (or, if ReadFn is
// set, a level supplied by the test to simulate an external driver).
func (m *Mock) Read() (Level, error) {
	if m.ReadFn != nil {
		l := m.ReadFn()
		m.Reads = append(m.Reads, l)
		return l, nil
	}

	m.Reads = append(m.Reads, m.level)
	return m.level, nil
}

// RisingEdges counts the number of Low->High transitions recorded in the
// trace, used to verify Testable Property 8 (SWJ_Sequence clock edges).
func (m *Mock) RisingEdges() int {
	count := 0
	prev := Low

	for _, e := range m.Trace {
		if e.Dir {
			continue
		}
		if prev == Low && e.Level == High {
			count++
		}
		prev = e.Level
	}

	return count
}
