package sim

// TerminatorAddr is the fixed address of the Terminator device -- the top
// of the 16-bit address space.
const TerminatorAddr uint16 = 0xFFFF

// Simulator wires a CPU, its Memory, and the Terminator device together and
// drives tick-at-a-time or whole-run stepping on top of CPU's
// phase-at-a-time Step. Grounded on original_source/rtl/sim.py's System
// class, which performs the same wiring (one Memory at address 0, the CPU,
// a clock-consumer set) but drives it via Python's round-robin generator
// scheduler rather than an explicit Run loop.
type Simulator struct {
	Bus        *Bus
	Memory     *Memory
	Terminator *Terminator
	CPU        *CPU

	Events []Event

	terminateEmitted bool
}

// NewSimulator allocates a Simulator with a Memory device of memSize words
// at address 0 and a Terminator at TerminatorAddr.
func NewSimulator(memSize int) *Simulator {
	bus := NewBus()
	mem := NewMemory(memSize)
	term := NewTerminator()
	bus.Register(0, mem)
	bus.Register(TerminatorAddr, term)

	return &Simulator{
		Bus:        bus,
		Memory:     mem,
		Terminator: term,
		CPU:        NewCPU(bus, term),
	}
}

// Load writes an assembled program image into memory starting at origin,
// using Memory.Load so the destructive-read invariant doesn't reject the
// initial fill.
func (s *Simulator) Load(origin uint16, words []uint16) {
	for i, w := range words {
		s.Memory.Load(origin+uint16(i), w)
	}
}

// Interrupt requests that the next fetched instruction be overridden by the
// synthetic interrupt-dispatch SWAP, honored only while interrupts are
// enabled on the CPU (spec.md §5).
func (s *Simulator) Interrupt() {
	s.CPU.InterruptPending = true
}

// Tick advances the simulation by exactly one clock phase, recording and
// returning the events it produced. The Terminator firing mid-phase (a
// write to TerminatorAddr) ends CPU.Terminated() for good, but that phase's
// own events -- whatever write tripped it -- are returned first; the next
// Tick call yields a single TerminateEvent (spec.md §4.3: "the next
// simulation step yields a SimEventTerminate"), and every Tick after that is
// a no-op.
func (s *Simulator) Tick() []Event {
	if s.CPU.Terminated() {
		if s.terminateEmitted {
			return nil
		}
		s.terminateEmitted = true
		events := []Event{TerminateEvent{Code: s.Terminator.Code()}}
		s.Events = append(s.Events, events...)
		return events
	}
	events := s.CPU.Step()
	s.Events = append(s.Events, events...)
	return events
}

// Run ticks the simulator until the Terminator has fired and its
// TerminateEvent has been emitted, or maxTicks is reached (0 means
// unbounded), returning the exit code and whether termination actually
// occurred.
func (s *Simulator) Run(maxTicks int) (code uint16, terminated bool) {
	for i := 0; maxTicks == 0 || i < maxTicks; i++ {
		wasTerminated := s.CPU.Terminated()
		s.Tick()
		if wasTerminated {
			return s.Terminator.Code(), true
		}
	}
	return s.Terminator.Code(), s.CPU.Terminated() && s.terminateEmitted
}

// DumpMemory returns a MemDumpEvent snapshotting every defined memory cell.
func (s *Simulator) DumpMemory() MemDumpEvent {
	return MemDumpEvent{Words: s.Memory.Snapshot()}
}

// MismatchKind classifies one address-level difference found by Compare.
type MismatchKind int

const (
	// MismatchMissing: the reference expects a defined word here, but the
	// current image has none (the cell was never written, or was read and
	// left empty).
	MismatchMissing MismatchKind = iota
	// MismatchDiffering: both images define this address, with different words.
	MismatchDiffering
	// MismatchExtraneous: the current image defines a word the reference
	// doesn't mention at all.
	MismatchExtraneous
)

func (k MismatchKind) String() string {
	switch k {
	case MismatchMissing:
		return "missing"
	case MismatchDiffering:
		return "differing"
	case MismatchExtraneous:
		return "extraneous"
	default:
		return "unknown"
	}
}

// Mismatch is one address where the current memory image disagrees with a
// reference map.
type Mismatch struct {
	Kind      MismatchKind
	Addr      uint16
	Want, Got uint16
}

// Compare reports every address where the current memory image disagrees
// with a reference map -- used to check a run's post-image against a
// golden map (spec.md scenario S7 and original_source/rtl/tb_cpu.py's
// per-address assertions).
func (s *Simulator) Compare(reference map[uint16]uint16) []Mismatch {
	var mismatches []Mismatch
	got := s.Memory.Snapshot()

	for addr, want := range reference {
		have, ok := got[addr]
		switch {
		case !ok:
			mismatches = append(mismatches, Mismatch{Kind: MismatchMissing, Addr: addr, Want: want})
		case have != want:
			mismatches = append(mismatches, Mismatch{Kind: MismatchDiffering, Addr: addr, Want: want, Got: have})
		}
	}
	for addr, have := range got {
		if _, ok := reference[addr]; !ok {
			mismatches = append(mismatches, Mismatch{Kind: MismatchExtraneous, Addr: addr, Got: have})
		}
	}
	return mismatches
}
