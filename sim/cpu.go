package sim

import (
	"fmt"

	"github.com/tinyproc/d16/isa"
)

// phase names the current step of the fetch/decode/execute micro-sequence.
// A CPU advances exactly one phase per call to Step, matching spec.md §4.3's
// tick-by-tick description (so a recorded trace's tick count is meaningful,
// not just a black-box "ran one instruction" count).
type phase int

const (
	phaseResetRead phase = iota
	phaseResetWriteback
	phaseResetSetPC
	phaseFetch
	phaseRefresh
	phaseGather
	phaseSwapWrite
	phaseWriteback
	phaseExecute
	phasePCUpdate
)

// CPU holds the d16 register file and the in-flight state of whichever
// instruction phase is currently executing. Grounded on
// original_source/rtl/sim.py's Processor class, restructured from its
// Python-generator coroutine into an explicit phase field so each Step call
// can be driven independently by a caller (the teacher's jawr-mos6502 debug
// stepper drives its CPU the same tick-at-a-time way).
type CPU struct {
	bus *Bus

	pc, sp, r0, r1 uint16
	inten          bool

	phase phase

	// scratch state for the instruction currently being decoded/executed.
	fetchWord  uint16
	fields     isa.Fields
	memAddr    uint16
	memRef     bool // OPB is a memory-dereferencing form
	opBValue   uint16
	opAValue   uint16
	regResult  bool
	memResult  bool
	skipPC     bool
	skipNext   bool
	swapOldReg uint16

	// InterruptPending is sampled during the interrupt-override decode step;
	// set it any time between Steps to request an injected interrupt.
	InterruptPending bool

	terminator *Terminator
}

// NewCPU returns a CPU wired to bus, starting in its reset sub-sequence.
// term, if non-nil, is polled by Terminated to detect program exit.
func NewCPU(bus *Bus, term *Terminator) *CPU {
	return &CPU{bus: bus, terminator: term, phase: phaseResetRead}
}

func (c *CPU) regValue(r isa.Reg) uint16 {
	switch r {
	case isa.RegPC:
		return c.pc
	case isa.RegSP:
		return c.sp
	case isa.RegR0:
		return c.r0
	case isa.RegR1:
		return c.r1
	default:
		panic(fmt.Sprintf("sim: invalid register selector %d", r))
	}
}

func (c *CPU) setReg(r isa.Reg, v uint16, events *[]Event) {
	old := c.regValue(r)
	switch r {
	case isa.RegPC:
		c.pc = v
	case isa.RegSP:
		c.sp = v
	case isa.RegR0:
		c.r0 = v
	case isa.RegR1:
		c.r1 = v
	}
	if old != v {
		*events = append(*events, RegUpdateEvent{Name: r.String(), Old: old, New: v})
	}
}

func (c *CPU) setInten(v bool, events *[]Event) {
	if c.inten == v {
		return
	}
	old, new := uint16(0), uint16(0)
	if c.inten {
		old = 1
	}
	if v {
		new = 1
	}
	c.inten = v
	*events = append(*events, RegUpdateEvent{Name: "inten", Old: old, New: new})
}

// Status returns a snapshot of the full register file.
func (c *CPU) Status() CpuStatusEvent {
	return CpuStatusEvent{PC: c.pc, SP: c.sp, R0: c.r0, R1: c.r1, InterruptsOn: c.inten}
}

// Step advances the CPU by exactly one phase of its micro-sequence,
// returning whatever events that phase produced.
func (c *CPU) Step() []Event {
	var events []Event

	switch c.phase {
	case phaseResetRead:
		v, _ := c.bus.Read(0)
		events = append(events, ReadEvent{Addr: 0, Data: v})
		c.fetchWord = v
		c.phase = phaseResetWriteback

	case phaseResetWriteback:
		c.bus.Write(0, c.fetchWord)
		events = append(events, WriteEvent{Addr: 0, Data: c.fetchWord})
		c.phase = phaseResetSetPC

	case phaseResetSetPC:
		c.setReg(isa.RegPC, c.fetchWord, &events)
		c.phase = phaseFetch

	case phaseFetch:
		word, _ := c.bus.Read(c.pc)
		c.fetchWord = word
		c.fields = isa.Decode(word)
		events = append(events, InstFetchEvent{Addr: c.pc, Word: word, Disasm: isa.Disassemble(word)})
		c.phase = phaseRefresh

	case phaseRefresh:
		c.bus.Write(c.pc, c.fetchWord)
		c.maybeInjectInterrupt()
		c.phase = phaseGather

	case phaseGather:
		c.gatherOperands(&events)
		if c.fields.Opcode == isa.OpSWAP {
			c.phase = phaseSwapWrite
		} else {
			c.phase = phaseWriteback
		}

	case phaseSwapWrite:
		c.swapOldReg = c.opAValue
		c.setReg(c.fields.OPA, c.opBValue, &events)
		c.phase = phaseWriteback

	case phaseWriteback:
		c.writebackPhase(&events)
		c.phase = phaseExecute

	case phaseExecute:
		c.execute(&events)
		c.phase = phasePCUpdate

	case phasePCUpdate:
		c.pcUpdate(&events)
		events = append(events, c.Status())
		c.phase = phaseFetch

	default:
		panic("sim: unreachable phase")
	}

	return events
}

// InReset reports whether the CPU is still running its reset sub-sequence.
func (c *CPU) InReset() bool {
	return c.phase == phaseResetRead || c.phase == phaseResetWriteback || c.phase == phaseResetSetPC
}

// maybeInjectInterrupt implements the decode-time interrupt override: when
// an interrupt is pending and interrupts are enabled, the fetched word is
// discarded and replaced with a synthetic "SWAP $pc, [1]" -- dispatch
// through the fixed vector at address 1. This step produces no event and
// consumes no tick of its own; it happens between the Refresh and Gather
// phases, same as spec.md §4.3 step 3.
func (c *CPU) maybeInjectInterrupt() {
	if !c.InterruptPending || !c.inten {
		return
	}
	c.InterruptPending = false
	c.fields = isa.Fields{Opcode: isa.OpSWAP, D: 0, OPA: isa.RegPC, OPB: isa.OPBMemImm, Immed: 1}
}

// gatherOperands reads OPA directly from the register file (register reads
// are never destructive) and resolves OPB: a destructive bus read if OPB is
// a memory form, or a plain base+immediate computation otherwise. mem_op_addr
// is always computed, memory-form or not, matching
// original_source/rtl/sim.py's unconditional `mem_op_addr = reg_b + immed`.
func (c *CPU) gatherOperands(events *[]Event) {
	c.opAValue = c.regValue(c.fields.OPA)

	base, hasBase := c.fields.OPB.Base()
	addr := uint16(c.fields.Immed)
	if hasBase {
		addr += c.regValue(base)
	}
	c.memAddr = addr
	c.memRef = c.fields.OPB.IsMemory()

	if c.memRef {
		v, _ := c.bus.Read(addr)
		*events = append(*events, ReadEvent{Addr: addr, Data: v})
		c.opBValue = v
	} else {
		c.opBValue = addr
	}

	c.regResult, c.memResult = destinationSides(c.fields)
	c.skipPC = c.regResult && c.fields.OPA == isa.RegPC
}

// destinationSides decides which side(s) of the instruction receive the
// computed result, per spec.md §4.3 step 7: predicates never write;
// otherwise D picks the register (D=0) or memory/OPB (D=1) side, and SWAP
// always writes both (the register side having already happened in
// phaseSwapWrite).
func destinationSides(f isa.Fields) (regResult, memResult bool) {
	if f.Opcode.IsPredicate() {
		return false, false
	}
	if f.Opcode == isa.OpSWAP {
		return true, true
	}
	return f.D == 0, f.D != 0
}

// writebackPhase refreshes the memory cell gathered in the prior phase with
// its own value, unless that cell is the instruction's result destination
// (in which case Execute performs the cell's one allowed write, using the
// computed result instead of the raw refresh value).
func (c *CPU) writebackPhase(events *[]Event) {
	if !c.memRef || c.memResult {
		return
	}
	c.bus.Write(c.memAddr, c.opBValue)
	*events = append(*events, WriteEvent{Addr: c.memAddr, Data: c.opBValue})
}

func (c *CPU) execute(events *[]Event) {
	f := c.fields

	var result uint16
	if f.Opcode == isa.OpSWAP {
		result = c.swapOldReg
	} else {
		var predicateTrue bool
		result, predicateTrue = alu(f.Opcode, f.D, c.opAValue, c.opBValue, c.inten)
		if f.Opcode.IsPredicate() {
			c.skipNext = predicateTrue
			return
		}
	}

	if c.memResult {
		c.bus.Write(c.memAddr, result)
		*events = append(*events, WriteEvent{Addr: c.memAddr, Data: result})
	} else if c.regResult {
		c.setReg(f.OPA, result, events)
	}
}

func (c *CPU) pcUpdate(events *[]Event) {
	if c.fields.Opcode == isa.OpSWAP && c.fields.D == 0 {
		c.setInten(!c.inten, events)
	}

	if c.skipPC {
		c.skipNext = false
		return
	}
	step := uint16(1)
	if c.skipNext {
		step = 2
	}
	c.skipNext = false
	c.setReg(isa.RegPC, c.pc+step, events)
}

// Terminated reports whether the attached Terminator device has fired.
func (c *CPU) Terminated() bool {
	return c.terminator != nil && c.terminator.Terminated()
}
