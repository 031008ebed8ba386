package isa

import "fmt"

// mnemonicForm holds the two textual templates for an opcode, indexed by D.
// Each template takes opa text as %[1]s and opb text as %[2]s, so templates
// that swap display order for D=1 (to mirror the memory-first source form
// that produces that word) just reference the verbs in the other order.
//
// The SWAP entry intentionally does not match original_source/rtl/disasm.py's
// inst_formats table literally: that table pairs D=0 with "SWAP" and D=1
// with "SWAPI", but the assembler forces SWAP text to always encode D=1 and
// SWAPI text to always encode D=0 (original_source/rtl/asm.py's
// parse_swap/parse_swapi). Keeping the Python table's pairing here would
// disassemble a D=1 word as "SWAPI ...", which reassembles to D=0 -- breaking
// the disassemble/reassemble round trip. D=1 maps to "SWAP" and D=0 to
// "SWAPI" below so the round trip holds.
type mnemonicForm struct {
	d0, d1 string
}

var mnemonics = map[Opcode]mnemonicForm{
	OpSWAP:  {"SWAPI %[1]s, %[2]s", "SWAP %[1]s, %[2]s"},
	OpOR:    {"OR %[1]s, %[2]s", "OR %[2]s, %[1]s"},
	OpAND:   {"AND %[1]s, %[2]s", "AND %[2]s, %[1]s"},
	OpXOR:   {"XOR %[1]s, %[2]s", "XOR %[2]s, %[1]s"},
	OpUNK:   {"**** UNK **** %[1]s, %[2]s", "**** UNK **** %[2]s, %[1]s"},
	OpADD:   {"ADD %[1]s, %[2]s", "ADD %[2]s, %[1]s"},
	OpSUB:   {"SUB %[1]s, %[2]s", "ISUB %[2]s, %[1]s"},
	OpISUB:  {"ISUB %[1]s, %[2]s", "SUB %[2]s, %[1]s"},
	OpMOV:   {"MOV %[1]s, %[2]s", "MOV %[2]s, %[1]s"},
	OpISTAT: {"ISTAT %[1]s", "ISTAT %[1]s"},
	OpROR:   {"ROR %[1]s", "ROR %[1]s"},
	OpROL:   {"ROL %[1]s", "ROL %[1]s"},
	OpEQ:    {"IF_EQ %[1]s, %[2]s", "IF_NEQ %[1]s, %[2]s"},
	OpLTU:   {"IF_LTU %[1]s, %[2]s", "IF_GEU %[1]s, %[2]s"},
	OpLTS:   {"IF_LTS %[1]s, %[2]s", "IF_GES %[1]s, %[2]s"},
	OpLES:   {"IF_LES %[1]s, %[2]s", "IF_GTS %[1]s, %[2]s"},
}

// isUnary reports whether this opcode only ever shows one operand: OPA on
// D=0, OPB on D=1, mirroring INST_ISTAT/INST_ROR/INST_ROL in disasm.py.
func isUnary(op Opcode) bool {
	return op == OpISTAT || op == OpROR || op == OpROL
}

func formatOPA(r Reg) string {
	return r.String()
}

func formatOPB(opb OPB, immed int16) string {
	ofs := ""
	if immed > 0 {
		ofs = fmt.Sprintf("+%d", immed)
	} else if immed < 0 {
		ofs = fmt.Sprintf("%d", immed)
	}
	switch opb {
	case OPBMemPC:
		return fmt.Sprintf("[$pc%s]", ofs)
	case OPBMemSP:
		return fmt.Sprintf("[$sp%s]", ofs)
	case OPBMemR0:
		return fmt.Sprintf("[$r0%s]", ofs)
	case OPBMemImm:
		return fmt.Sprintf("[%d]", immed)
	case OPBRegPC:
		return fmt.Sprintf("$pc%s", ofs)
	case OPBRegSP:
		return fmt.Sprintf("$sp%s", ofs)
	case OPBRegR0:
		return fmt.Sprintf("$r0%s", ofs)
	case OPBImm:
		return fmt.Sprintf("%d", immed)
	default:
		return "?"
	}
}

// Disassemble renders a raw instruction word as its textual mnemonic form.
func Disassemble(word uint16) string {
	f := Decode(word)
	form, ok := mnemonics[f.Opcode]
	if !ok {
		return fmt.Sprintf("**** UNK(%04b) **** %s, %s", f.Opcode, formatOPA(f.OPA), formatOPB(f.OPB, f.Immed))
	}

	text := form.d0
	if f.D != 0 {
		text = form.d1
	}

	if isUnary(f.Opcode) {
		arg := formatOPA(f.OPA)
		if f.D != 0 {
			arg = formatOPB(f.OPB, f.Immed)
		}
		return fmt.Sprintf(text, arg)
	}

	return fmt.Sprintf(text, formatOPA(f.OPA), formatOPB(f.OPB, f.Immed))
}
