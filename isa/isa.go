// Package isa is the pure data model of the d16 instruction set: field
// layout, register and operand encodings, and the opcode table. Nothing in
// this package touches memory or registers — it only knows how to turn
// field values into a 16-bit instruction word and back.
package isa

// Field offsets and widths, bits 15..0 MSB to LSB.
const (
	OpcodeOfs  = 12
	OpcodeSize = 4
	DOfs       = 11
	DSize      = 1
	OPBOfs     = 8
	OPBSize    = 3
	OPAOfs     = 6
	OPASize    = 2
	ImmedOfs   = 0
	ImmedSize  = 6
)

const (
	OpcodeMask uint16 = 1<<OpcodeSize - 1
	DMask      uint16 = 1<<DSize - 1
	OPBMask    uint16 = 1<<OPBSize - 1
	OPAMask    uint16 = 1<<OPASize - 1
	ImmedMask  uint16 = 1<<ImmedSize - 1
)

// Reg is one of the four OPA register selectors.
type Reg uint8

const (
	RegPC Reg = 0b00
	RegSP Reg = 0b01
	RegR0 Reg = 0b10
	RegR1 Reg = 0b11
)

func (r Reg) String() string {
	switch r {
	case RegPC:
		return "$pc"
	case RegSP:
		return "$sp"
	case RegR0:
		return "$r0"
	case RegR1:
		return "$r1"
	default:
		return "$?"
	}
}

// OPB is the 3-bit operand-B form selector. Bit 2 distinguishes memory
// forms (0) from register/immediate-only forms (1).
type OPB uint8

const (
	OPBMemPC  OPB = 0b000
	OPBMemSP  OPB = 0b001
	OPBMemR0  OPB = 0b010
	OPBMemImm OPB = 0b011
	OPBRegPC  OPB = 0b100
	OPBRegSP  OPB = 0b101
	OPBRegR0  OPB = 0b110
	OPBImm    OPB = 0b111
)

const opbClassMemBit = 0b100

// IsMemory reports whether this OPB form reads/writes through memory
// (OPB bit 2 clear).
func (o OPB) IsMemory() bool {
	return uint8(o)&opbClassMemBit == 0
}

// Base returns the register this OPB form adds IMMED to, and whether the
// form has a base register at all ([imm]/imm have an implicit base of 0).
func (o OPB) Base() (reg Reg, hasBase bool) {
	switch o {
	case OPBMemPC, OPBRegPC:
		return RegPC, true
	case OPBMemSP, OPBRegSP:
		return RegSP, true
	case OPBMemR0, OPBRegR0:
		return RegR0, true
	case OPBMemImm, OPBImm:
		return RegPC, false
	default:
		return RegPC, false
	}
}

// Opcode is the 4-bit operation class.
type Opcode uint8

const (
	OpSWAP Opcode = 0b0000
	OpOR   Opcode = 0b0001
	OpAND  Opcode = 0b0010
	OpXOR  Opcode = 0b0011
	OpUNK  Opcode = 0b0100 // reserved; never emitted by the assembler
	OpADD  Opcode = 0b0101
	OpSUB  Opcode = 0b0110
	OpISUB Opcode = 0b0111
	OpMOV  Opcode = 0b1000
	OpISTAT Opcode = 0b1001
	OpROR  Opcode = 0b1010
	OpROL  Opcode = 0b1011
	OpEQ   Opcode = 0b1100
	OpLTU  Opcode = 0b1101
	OpLTS  Opcode = 0b1110
	OpLES  Opcode = 0b1111
)

// IsPredicate reports whether this opcode is one of EQ/LTU/LTS/LES — the
// four instructions that never write a register or memory location and
// instead decide whether $pc advances by 1 or 2.
func (o Opcode) IsPredicate() bool {
	switch o {
	case OpEQ, OpLTU, OpLTS, OpLES:
		return true
	default:
		return false
	}
}

// Fields is a fully decoded instruction word, with Immed already
// sign-extended to 16 bits.
type Fields struct {
	Opcode Opcode
	D      uint8
	OPA    Reg
	OPB    OPB
	Immed  int16
}

// SignExtend6 sign-extends a 6-bit two's-complement value to int16.
func SignExtend6(raw uint16) int16 {
	raw &= ImmedMask
	if raw&(1<<(ImmedSize-1)) != 0 {
		return int16(raw) - (1 << ImmedSize)
	}
	return int16(raw)
}

// signTruncate6 takes a signed value already known to be in [-32,31] and
// returns its 6-bit two's-complement bit pattern.
func signTruncate6(v int16) uint16 {
	return uint16(v) & ImmedMask
}

// Encode packs the given fields into a 16-bit instruction word. The caller
// is responsible for range-checking imm6 (the assembler does this via
// ImmediateOutOfRange); Encode itself only truncates.
func Encode(opcode Opcode, d uint8, opa Reg, opb OPB, imm6 int16) uint16 {
	return uint16(opcode)<<OpcodeOfs |
		uint16(d&1)<<DOfs |
		uint16(opb)<<OPBOfs |
		uint16(opa)<<OPAOfs |
		signTruncate6(imm6)<<ImmedOfs
}

// Decode unpacks a 16-bit instruction word into its fields, sign-extending
// IMMED.
func Decode(word uint16) Fields {
	return Fields{
		Opcode: Opcode((word >> OpcodeOfs) & OpcodeMask),
		D:      uint8((word >> DOfs) & DMask),
		OPB:    OPB((word >> OPBOfs) & OPBMask),
		OPA:    Reg((word >> OPAOfs) & OPAMask),
		Immed:  SignExtend6((word >> ImmedOfs) & ImmedMask),
	}
}
