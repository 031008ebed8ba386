package sim

import "fmt"

// DefaultMemorySize is the Memory device's word count when none is given,
// matching spec.md's 16K-word default.
const DefaultMemorySize = 16384

// Memory is the destructive-read main-store device: each cell toggles
// between full (holds a value nobody has consumed yet) and empty (its
// value was read and not yet written back). Reading a full or empty cell
// both succeed and return the stored word, then mark the cell empty.
// Writing an empty cell succeeds and marks it full; writing a cell that is
// still full -- meaning the instruction sequencer wrote without reading
// first -- is the one condition spec.md calls a fatal invariant violation,
// so it panics rather than returning an error.
//
// Grounded on original_source/rtl/sim.py's Memory class, which instead
// models each cell as Python None/int and raises on "write before read";
// the full/empty flip-flop here is the same idea made explicit.
type Memory struct {
	base uint16
	data []uint16
	full []bool
}

// NewMemory allocates a Memory device of the given size in words.
func NewMemory(size int) *Memory {
	return &Memory{
		data: make([]uint16, size),
		full: make([]bool, size),
	}
}

func (m *Memory) SetBase(addr uint16) { m.base = addr }
func (m *Memory) Size() int           { return len(m.data) }

func (m *Memory) index(addr uint16) int {
	return int(addr - m.base)
}

// Read returns the word stored at addr and empties the cell.
func (m *Memory) Read(addr uint16) (uint16, error) {
	i := m.index(addr)
	v := m.data[i]
	m.full[i] = false
	return v, nil
}

// Write stores data at addr. It panics if the cell still holds a value
// nobody has read since the last write.
func (m *Memory) Write(addr uint16, data uint16) error {
	i := m.index(addr)
	if m.full[i] {
		panic(fmt.Sprintf("sim: memory invariant violated: write to MEM[0x%04x] before its previous value was read", addr))
	}
	m.data[i] = data
	m.full[i] = true
	return nil
}

// Load sets addr to data for initial program image loading, bypassing the
// read-before-write requirement -- a freshly loaded cell is "full" and
// ready to be read by the running program.
func (m *Memory) Load(addr uint16, data uint16) {
	i := m.index(addr)
	m.data[i] = data
	m.full[i] = true
}

// Snapshot returns the defined (full) cells as an address->value map,
// suitable for MemDumpEvent and for comparing a run's post-image against a
// reference map (spec.md scenario S7).
func (m *Memory) Snapshot() map[uint16]uint16 {
	out := map[uint16]uint16{}
	for i, full := range m.full {
		if full {
			out[m.base+uint16(i)] = m.data[i]
		}
	}
	return out
}

// Terminator is a one-word device: any write sets the exit code and marks
// the device terminated at once; Simulator.Tick reports this with a
// TerminateEvent on the following tick. Reading it is
// permitted and simply returns the last-written code (or zero).
type Terminator struct {
	base       uint16
	code       uint16
	terminated bool
}

// NewTerminator returns a Terminator device, conventionally mapped at the
// top of the address space (0xFFFF).
func NewTerminator() *Terminator {
	return &Terminator{}
}

func (t *Terminator) SetBase(addr uint16) { t.base = addr }
func (t *Terminator) Size() int           { return 1 }

func (t *Terminator) Read(addr uint16) (uint16, error) {
	return t.code, nil
}

func (t *Terminator) Write(addr uint16, data uint16) error {
	t.code = data
	t.terminated = true
	return nil
}

// Terminated reports whether this device has ever been written to.
func (t *Terminator) Terminated() bool { return t.terminated }

// Code returns the exit code latched by the last write.
func (t *Terminator) Code() uint16 { return t.code }
