package sim

import "github.com/tinyproc/d16/isa"

func ror16(v uint16) uint16 {
	return (v >> 1) | (v << 15)
}

func rol16(v uint16) uint16 {
	return (v << 1) | (v >> 15)
}

// alu computes the result (for data-moving opcodes) or the D-selected
// comparison outcome (for predicates). opa is always the OPA register
// value; opb is the gathered OPB value (memory word, register+immediate
// sum, or immediate, depending on form). inten is read for ISTAT.
//
// Grounded line-for-line on original_source/rtl/sim.py's execute block
// (the long if/elif chain over inst_field_opcode), with two deliberate
// divergences from that file:
//
//  1. Predicates: sim.py computes a boolean it names "noskip" whose sense
//     is backwards from spec.md's predicate semantics (spec.md requires a
//     true condition to skip the next instruction; the raw prototype's pc
//     update advances by 1, not 2, on a true condition). The per-opcode
//     condition formulas below are ported as-is; cpu.go's pcUpdate applies
//     spec.md's skip direction rather than the prototype's.
//  2. ISTAT: sim.py line 265 reads `alu_result = 0 if self.inten else 2`,
//     i.e. inten=true yields 0. spec.md §3 is explicit the other way
//     (OPA <- 2 when interrupts are enabled, 0 when disabled). This is
//     followed here, not the prototype.
func alu(op isa.Opcode, d uint8, opa, opb uint16, inten bool) (result uint16, predicateTrue bool) {
	switch op {
	case isa.OpSWAP:
		return opa, false
	case isa.OpOR:
		return opa | opb, false
	case isa.OpAND:
		return opa & opb, false
	case isa.OpXOR:
		return opa ^ opb, false
	case isa.OpADD:
		return opa + opb, false
	case isa.OpSUB:
		return opa - opb, false
	case isa.OpISUB:
		return opb - opa, false
	case isa.OpMOV:
		if d == 0 {
			return opb, false
		}
		return opa, false
	case isa.OpISTAT:
		if inten {
			return 2, false
		}
		return 0, false
	case isa.OpROR:
		if d == 0 {
			return ror16(opa), false
		}
		return ror16(opb), false
	case isa.OpROL:
		if d == 0 {
			return rol16(opa), false
		}
		return rol16(opb), false
	case isa.OpEQ:
		if d == 0 {
			return 0, opa == opb
		}
		return 0, opa != opb
	case isa.OpLTU:
		if d == 0 {
			return 0, opa < opb
		}
		return 0, opa >= opb
	case isa.OpLTS:
		if d == 0 {
			return 0, int16(opa) < int16(opb)
		}
		return 0, int16(opa) >= int16(opb)
	case isa.OpLES:
		if d == 0 {
			return 0, int16(opa) <= int16(opb)
		}
		return 0, int16(opa) > int16(opb)
	default:
		// Reserved opcode 0100 (UNK): the assembler never emits it, and
		// original_source/rtl/sim.py asserts False on it rather than passing
		// OPA through. Panicking here matches that, over spec.md's looser
		// "may pass OPA through" phrasing -- see DESIGN.md.
		panic("sim: reserved opcode executed")
	}
}
