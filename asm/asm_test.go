package asm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinyproc/d16/isa"
)

func TestAssembleSimpleProgram(t *testing.T) {
	source := `
.section TEXT 0x1000
START:
	mov $r0, 5
	add $r0, 3
	.word 0xBEEF, , 7
`
	start, words, err := Assemble(source)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x1000), start)
	require.Len(t, words, 5)

	assert.Equal(t, isa.Decode(words[0]), isa.Decode(isa.Encode(isa.OpMOV, 0, isa.RegR0, isa.OPBImm, 5)))
	assert.Equal(t, isa.Decode(words[1]), isa.Decode(isa.Encode(isa.OpADD, 0, isa.RegR0, isa.OPBImm, 3)))
	assert.Equal(t, uint16(0xBEEF), words[2])
	assert.Equal(t, uint16(0), words[3])
	assert.Equal(t, uint16(7), words[4])
}

func TestAssembleLabelReference(t *testing.T) {
	source := `
.section TEXT 0
LOOP:
	add $r0, 1
	if_neq $r0, 10
	mov $pc, LOOP
`
	start, words, err := Assemble(source)
	require.NoError(t, err)
	assert.Equal(t, uint16(0), start)
	require.Len(t, words, 3)
	assert.Equal(t, "MOV $pc, 0", isa.Disassemble(words[2]))
}

// TestRoundTrip is invariant 1 of spec.md §8: for every valid instruction
// line, assembling it and then disassembling the result reassembles to the
// exact same word.
func TestRoundTrip(t *testing.T) {
	lines := []string{
		"mov $r0, 5",
		"mov [$r0-2], $sp",
		"add $r1, [$pc+3]",
		"sub $r0, $sp",
		"sub [$sp], $r0",
		"isub $r0, $sp",
		"isub [$r0+1], $sp",
		"swap $sp, [5]",
		"swapi $r1, [3]",
		"if_eq $r0, 4",
		"if_neq $r0, 4",
		"if_ltu $r0, $sp",
		"if_geu $r0, $sp",
		"rol $r0",
		"ror [$sp-2]",
		"istat $r0",
		"or $r0, $sp",
		"xor [$r0], $r1",
	}
	for _, line := range lines {
		line := line
		t.Run(line, func(t *testing.T) {
			src := ".section T 0\n" + line
			_, words, err := Assemble(src)
			require.NoError(t, err)
			require.Len(t, words, 1)

			disasm := isa.Disassemble(words[0])
			_, reWords, err := Assemble(".section T 0\n" + disasm)
			require.NoError(t, err, "reassembling %q", disasm)
			require.Len(t, reWords, 1)
			assert.Equal(t, words[0], reWords[0], "round trip mismatch: %q -> %q", line, disasm)
		})
	}
}

func TestImmediateOutOfRange(t *testing.T) {
	_, _, err := Assemble(".section T 0\nmov $r0, 1000")
	require.Error(t, err)
	asmErr, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, KindImmediateOutOfRange, asmErr.Kind)
}

func TestSectionNotActive(t *testing.T) {
	_, _, err := Assemble("mov $r0, 5")
	require.Error(t, err)
	asmErr, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, KindSectionNotActive, asmErr.Kind)
}

func TestOverlappingDefinition(t *testing.T) {
	source := `
.section T 0
mov $r0, 1
.section T 0
mov $r0, 2
`
	_, _, err := Assemble(source)
	require.Error(t, err)
	asmErr, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, KindOverlappingDefinition, asmErr.Kind)
}

func TestInvalidRegister(t *testing.T) {
	_, _, err := Assemble(".section T 0\nmov $r9, 5")
	require.Error(t, err)
	asmErr, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, KindInvalidRegister, asmErr.Kind)
}
