package asm

import "github.com/tinyproc/d16/isa"

var opaRegNames = map[string]isa.Reg{
	"$pc": isa.RegPC,
	"$sp": isa.RegSP,
	"$r0": isa.RegR0,
	"$r1": isa.RegR1,
}

var opbMemRegNames = map[string]isa.OPB{
	"$pc": isa.OPBMemPC,
	"$sp": isa.OPBMemSP,
	"$r0": isa.OPBMemR0,
}

var opbImmedRegNames = map[string]isa.OPB{
	"$pc": isa.OPBRegPC,
	"$sp": isa.OPBRegSP,
	"$r0": isa.OPBRegR0,
}

// parseConstantExpression consumes tokens from cursor up to (but not
// including) the next "]" or "," and wraps them in an Expression, mirroring
// asm.py's parse_constant_expression.
func parseConstantExpression(tokens []string, cursor int, forcePlus bool) (*Expression, int, error) {
	if forcePlus {
		if cursor >= len(tokens) || (tokens[cursor] != "+" && tokens[cursor] != "-") {
			return nil, cursor, newError(KindSyntax, 0, "constant offset must start with + or -")
		}
	}
	start := cursor
	for cursor < len(tokens) {
		if tokens[cursor] == "]" || tokens[cursor] == "," {
			break
		}
		cursor++
	}
	if cursor == start {
		return nil, cursor, newError(KindSyntax, 0, "expected a constant expression")
	}
	return NewExpression(tokens[start:cursor]), cursor, nil
}

// parseOPB parses one OPB operand starting at cursor, returning the form,
// its immediate expression, and the cursor just past it. Mirrors
// asm.py's parse_opb.
func parseOPB(tokens []string, cursor int, allowImmed bool) (isa.OPB, *Expression, int, error) {
	if cursor >= len(tokens) {
		return 0, nil, cursor, newError(KindSyntax, 0, "unexpected end of line")
	}
	if tokens[cursor] == "[" {
		cursor++
		if cursor >= len(tokens) {
			return 0, nil, cursor, newError(KindSyntax, 0, "unterminated memory reference")
		}
		var opb isa.OPB
		var immed *Expression
		var err error
		if base, ok := opbMemRegNames[tokens[cursor]]; ok {
			opb = base
			cursor++
			if cursor < len(tokens) && tokens[cursor] == "]" {
				immed = ConstExpression(0)
			} else {
				immed, cursor, err = parseConstantExpression(tokens, cursor, true)
				if err != nil {
					return 0, nil, cursor, err
				}
			}
		} else {
			opb = isa.OPBMemImm
			immed, cursor, err = parseConstantExpression(tokens, cursor, false)
			if err != nil {
				return 0, nil, cursor, err
			}
		}
		if cursor >= len(tokens) || tokens[cursor] != "]" {
			return 0, nil, cursor, newError(KindSyntax, 0, "memory reference is not terminated properly")
		}
		cursor++
		return opb, immed, cursor, nil
	}

	if !allowImmed {
		return 0, nil, cursor, newError(KindSyntax, 0, "%q is invalid as operand B here", tokens[cursor])
	}
	if base, ok := opbImmedRegNames[tokens[cursor]]; ok {
		cursor++
		if cursor == len(tokens) || tokens[cursor] == "," {
			return base, ConstExpression(0), cursor, nil
		}
		immed, cursor, err := parseConstantExpression(tokens, cursor, true)
		if err != nil {
			return 0, nil, cursor, err
		}
		return base, immed, cursor, nil
	}
	immed, cursor, err := parseConstantExpression(tokens, cursor, false)
	if err != nil {
		return 0, nil, cursor, err
	}
	return isa.OPBImm, immed, cursor, nil
}

type dualArg struct {
	d     uint8
	opa   isa.Reg
	opb   isa.OPB
	immed *Expression
}

// parseDualArg implements the two-operand grammar shared by OR/AND/XOR/ADD/
// MOV/SUB/ISUB/the predicates/SWAP, mirroring asm.py's parse_dual_arg:
//
//	[mem], reg   -> d=1, opa=reg (second token), opb=mem form
//	reg, opb     -> d=0, opa=reg (first token),  opb=second operand
func parseDualArg(tokens []string) (*dualArg, error) {
	cursor := 1
	if cursor >= len(tokens) {
		return nil, newError(KindSyntax, 0, "line is too short")
	}
	var da dualArg
	if tokens[cursor] == "[" {
		da.d = 1
		opb, immed, next, err := parseOPB(tokens, cursor, false)
		if err != nil {
			return nil, err
		}
		cursor = next
		da.opb, da.immed = opb, immed
		if cursor >= len(tokens) || tokens[cursor] != "," {
			return nil, newError(KindSyntax, 0, "there must be a comma after the first operand")
		}
		cursor++
		if cursor >= len(tokens) {
			return nil, newError(KindSyntax, 0, "line is too short")
		}
		opa, ok := opaRegNames[tokens[cursor]]
		if !ok {
			return nil, newError(KindInvalidRegister, 0, "%q is not a register", tokens[cursor])
		}
		da.opa = opa
		cursor++
	} else if opa, ok := opaRegNames[tokens[cursor]]; ok {
		da.d = 0
		da.opa = opa
		cursor++
		if cursor >= len(tokens) || tokens[cursor] != "," {
			return nil, newError(KindSyntax, 0, "there must be a comma after the first operand")
		}
		cursor++
		opb, immed, next, err := parseOPB(tokens, cursor, true)
		if err != nil {
			return nil, err
		}
		da.opb, da.immed = opb, immed
		cursor = next
	} else if tokens[cursor][0] == '$' {
		return nil, newError(KindInvalidRegister, 0, "%q is not a register", tokens[cursor])
	} else {
		return nil, newError(KindSyntax, 0, "I don't understand the first argument %q", tokens[cursor])
	}
	if cursor != len(tokens) {
		return nil, newError(KindSyntax, 0, "line is too long")
	}
	return &da, nil
}

// parseSingleArg implements the one-operand grammar used by ISTAT/ROL/ROR.
func parseSingleArg(tokens []string) (*dualArg, error) {
	cursor := 1
	if cursor >= len(tokens) {
		return nil, newError(KindSyntax, 0, "line is too short")
	}
	var da dualArg
	if tokens[cursor] == "[" {
		da.d = 1
		opb, immed, next, err := parseOPB(tokens, cursor, false)
		if err != nil {
			return nil, err
		}
		da.opa = isa.RegPC
		da.opb, da.immed = opb, immed
		cursor = next
	} else if opa, ok := opaRegNames[tokens[cursor]]; ok {
		da.d = 0
		da.opa = opa
		da.opb = isa.OPBImm
		da.immed = ConstExpression(0)
		cursor++
	} else {
		return nil, newError(KindSyntax, 0, "I don't understand the argument %q", tokens[cursor])
	}
	if cursor != len(tokens) {
		return nil, newError(KindSyntax, 0, "line is too long")
	}
	return &da, nil
}

type mnemonicParser func(opcode isa.Opcode, tokens []string) (*instructionWord, error)

func plainDualArg(opcode isa.Opcode, tokens []string) (*instructionWord, error) {
	da, err := parseDualArg(tokens)
	if err != nil {
		return nil, err
	}
	return &instructionWord{opcode: opcode, d: da.d, opa: da.opa, opb: da.opb, immed: da.immed}, nil
}

func parseSwap(opcode isa.Opcode, tokens []string) (*instructionWord, error) {
	da, err := parseDualArg(tokens)
	if err != nil {
		return nil, err
	}
	return &instructionWord{opcode: opcode, d: 1, opa: da.opa, opb: da.opb, immed: da.immed}, nil
}

func parseSwapi(opcode isa.Opcode, tokens []string) (*instructionWord, error) {
	da, err := parseDualArg(tokens)
	if err != nil {
		return nil, err
	}
	return &instructionWord{opcode: opcode, d: 0, opa: da.opa, opb: da.opb, immed: da.immed}, nil
}

// parseSub/parseIsub implement the SUB<->ISUB opcode swap: writing the
// memory operand first (which parseDualArg reports as d=1) re-encodes as
// the other mnemonic's opcode with D=1, so SUB and ISUB disassemble back to
// whichever mnemonic was actually typed (spec.md's SUB/ISUB operand-order
// rule, grounded on asm.py's parse_sub/parse_isub).
func parseSub(opcode isa.Opcode, tokens []string) (*instructionWord, error) {
	da, err := parseDualArg(tokens)
	if err != nil {
		return nil, err
	}
	if da.d == 1 {
		return &instructionWord{opcode: isa.OpISUB, d: 1, opa: da.opa, opb: da.opb, immed: da.immed}, nil
	}
	return &instructionWord{opcode: opcode, d: 0, opa: da.opa, opb: da.opb, immed: da.immed}, nil
}

func parseIsub(opcode isa.Opcode, tokens []string) (*instructionWord, error) {
	da, err := parseDualArg(tokens)
	if err != nil {
		return nil, err
	}
	if da.d == 1 {
		return &instructionWord{opcode: isa.OpSUB, d: 1, opa: da.opa, opb: da.opb, immed: da.immed}, nil
	}
	return &instructionWord{opcode: opcode, d: 0, opa: da.opa, opb: da.opb, immed: da.immed}, nil
}

func parseEq(opcode isa.Opcode, tokens []string) (*instructionWord, error) {
	da, err := parseDualArg(tokens)
	if err != nil {
		return nil, err
	}
	return &instructionWord{opcode: opcode, d: 0, opa: da.opa, opb: da.opb, immed: da.immed}, nil
}

func parseNeq(opcode isa.Opcode, tokens []string) (*instructionWord, error) {
	da, err := parseDualArg(tokens)
	if err != nil {
		return nil, err
	}
	return &instructionWord{opcode: opcode, d: 1, opa: da.opa, opb: da.opb, immed: da.immed}, nil
}

// parsePosPred/parseNegPred back LTU/LTS/LES and their GEU/GES/GTS
// complements. Operand order controls D the same way it does for the
// binary ops (mem-first => d=1); for predicates D also picks the test
// polarity, so writing the operands in memory-first order silently inverts
// the test -- that's intentional (see asm.py's own comment on
// parse_pos_pred) and is why IF_GEU/IF_GES/IF_GTS exist as separate
// mnemonics instead of just meaning "same as IF_LTU but swapped operands".
func parsePosPred(opcode isa.Opcode, tokens []string) (*instructionWord, error) {
	da, err := parseDualArg(tokens)
	if err != nil {
		return nil, err
	}
	return &instructionWord{opcode: opcode, d: da.d, opa: da.opa, opb: da.opb, immed: da.immed}, nil
}

func parseNegPred(opcode isa.Opcode, tokens []string) (*instructionWord, error) {
	da, err := parseDualArg(tokens)
	if err != nil {
		return nil, err
	}
	return &instructionWord{opcode: opcode, d: 1 - da.d, opa: da.opa, opb: da.opb, immed: da.immed}, nil
}

func parseUnary(opcode isa.Opcode, tokens []string) (*instructionWord, error) {
	da, err := parseSingleArg(tokens)
	if err != nil {
		return nil, err
	}
	return &instructionWord{opcode: opcode, d: da.d, opa: da.opa, opb: da.opb, immed: da.immed}, nil
}

type mnemonicEntry struct {
	opcode isa.Opcode
	parse  mnemonicParser
}

var mnemonicTable = map[string]mnemonicEntry{
	"swap":    {isa.OpSWAP, parseSwap},
	"swapi":   {isa.OpSWAP, parseSwapi},
	"or":      {isa.OpOR, plainDualArg},
	"and":     {isa.OpAND, plainDualArg},
	"xor":     {isa.OpXOR, plainDualArg},
	"add":     {isa.OpADD, plainDualArg},
	"sub":     {isa.OpSUB, parseSub},
	"isub":    {isa.OpISUB, parseIsub},
	"mov":     {isa.OpMOV, plainDualArg},
	"if_eq":   {isa.OpEQ, parseEq},
	"if_neq":  {isa.OpEQ, parseNeq},
	"if_ltu":  {isa.OpLTU, parsePosPred},
	"if_geu":  {isa.OpLTU, parseNegPred},
	"if_lts":  {isa.OpLTS, parsePosPred},
	"if_ges":  {isa.OpLTS, parseNegPred},
	"if_les":  {isa.OpLES, parsePosPred},
	"if_gts":  {isa.OpLES, parseNegPred},
	"istat":   {isa.OpISTAT, parseUnary},
	"rol":     {isa.OpROL, parseUnary},
	"ror":     {isa.OpROR, parseUnary},
}
