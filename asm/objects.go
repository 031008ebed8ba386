package asm

import "github.com/tinyproc/d16/isa"

// instructionWord is a fully-parsed instruction awaiting only its
// immediate's final value, mirroring original_source/rtl/asm.py's
// Instruction class. The opcode/D/OPA/OPB fields are already fixed by the
// per-mnemonic parser; only Immed is deferred.
type instructionWord struct {
	opcode isa.Opcode
	d      uint8
	opa    isa.Reg
	opb    isa.OPB
	immed  *Expression
}

func (w *instructionWord) size() int { return 1 }

func (w *instructionWord) machineCode(symtab *SymbolTable) ([]uint16, error) {
	v, err := w.immed.Value(symtab)
	if err != nil {
		return nil, err
	}
	if v < -32 || v > 31 {
		return nil, newError(KindImmediateOutOfRange, 0, "immediate value %d is out of range", v)
	}
	return []uint16{isa.Encode(w.opcode, w.d, w.opa, w.opb, int16(v))}, nil
}

// pseudoWord is a ".word a, b, c" directive: each comma-separated expression
// becomes one raw word in the image, mirroring asm.py's PseudoOpWord. An
// empty slot between two commas (or a bare ".word") assembles to 0; a
// trailing comma adds no word.
type pseudoWord struct {
	values []*Expression
}

func (w *pseudoWord) size() int { return len(w.values) }

func (w *pseudoWord) machineCode(symtab *SymbolTable) ([]uint16, error) {
	out := make([]uint16, len(w.values))
	for i, expr := range w.values {
		v, err := expr.Value(symtab)
		if err != nil {
			return nil, err
		}
		if v < -32768 || v > 65535 {
			return nil, newError(KindImmediateOutOfRange, 0, "value %d doesn't fit in 16 bits", v)
		}
		out[i] = uint16(v)
	}
	return out, nil
}
