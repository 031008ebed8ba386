package sim

import "fmt"

// Event is one observable effect of a simulation tick: a bus access, a
// register change, an instruction fetch, a status snapshot, or termination.
// The exact String() text matches spec.md §6's wire format so that golden
// transcripts of a run are stable across Go and the original tooling.
type Event interface {
	String() string
}

// ReadEvent reports a bus read completing.
type ReadEvent struct {
	Addr uint16
	Data uint16
}

func (e ReadEvent) String() string {
	return fmt.Sprintf("read MEM[0x%04x] returned 0x%04x", e.Addr, e.Data)
}

// WriteEvent reports a bus write completing.
type WriteEvent struct {
	Addr uint16
	Data uint16
}

func (e WriteEvent) String() string {
	return fmt.Sprintf("write MEM[0x%04x] <- 0x%04x", e.Addr, e.Data)
}

// RegUpdateEvent reports a register file change -- $pc/$sp/$r0/$r1, or the
// pseudo-register "inten".
type RegUpdateEvent struct {
	Name string
	Old  uint16
	New  uint16
}

func (e RegUpdateEvent) String() string {
	return fmt.Sprintf("%s: 0x%04x -> 0x%04x", e.Name, e.Old, e.New)
}

// InstFetchEvent reports the fetch phase of an instruction, carrying its
// disassembled text alongside the raw word so a trace reads like a listing.
type InstFetchEvent struct {
	Addr   uint16
	Word   uint16
	Disasm string
}

func (e InstFetchEvent) String() string {
	return fmt.Sprintf("fetch 0x%04x: 0x%04x  %s", e.Addr, e.Word, e.Disasm)
}

// CpuStatusEvent is a full register-file snapshot, emitted once per
// completed instruction.
type CpuStatusEvent struct {
	PC, SP, R0, R1 uint16
	InterruptsOn   bool
}

func (e CpuStatusEvent) String() string {
	return fmt.Sprintf("cpu: pc=0x%04x sp=0x%04x r0=0x%04x r1=0x%04x inten=%t",
		e.PC, e.SP, e.R0, e.R1, e.InterruptsOn)
}

// TerminateEvent reports that the Terminator device was written to, ending
// the run with the given exit code.
type TerminateEvent struct {
	Code uint16
}

func (e TerminateEvent) String() string {
	return fmt.Sprintf("terminate: exit code 0x%04x", e.Code)
}

// MemDumpEvent carries a full memory image, as returned by
// Simulator.DumpMemory.
type MemDumpEvent struct {
	Words map[uint16]uint16
}

func (e MemDumpEvent) String() string {
	return fmt.Sprintf("memdump: %d words", len(e.Words))
}
