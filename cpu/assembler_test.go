package cpu

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezrec/bus8/device"
	"github.com/ezrec/bus8/program"
)

func assemble(t *testing.T, asm *Assembler, source ...string) program.Image {
	prog, err := asm.Parse(strings.NewReader(strings.Join(source, "\n")))
	require.NoError(t, err)

	image, err := prog.Output()
	require.NoError(t, err)

	return image
}

func TestAssembler(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	prog, err := asm.Parse(strings.NewReader(""))
	assert.NoError(err)
	assert.Empty(prog.Data())

	assert.Equal("0", asm.Equate["LINENO"])
	assert.Equal(fmt.Sprintf("%#v", device.STATUS_CARRY), asm.Equate["STATUS_CARRY"])
	assert.Equal(fmt.Sprintf("%#v", device.STATUS_ZERO), asm.Equate["STATUS_ZERO"])
}

func TestAssemblerProgram(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	image := assemble(t, asm,
		".org $10",
		"start:  lda #$2A   ; load",
		"        sta out",
		"        bne start",
		"        hlt",
		"out:    .byte 0",
		"        .word start, $1234",
	)

	assert.Equal(program.Image{
		0x10: 0xA9, 0x11: 0x2A,
		0x12: 0x8D, 0x13: 0x00, 0x14: 0x18,
		0x15: 0xD0, 0x16: 0x10,
		0x17: 0x00,
		0x18: 0x00,
		0x19: 0x00, 0x1a: 0x10,
		0x1b: 0x12, 0x1c: 0x34,
	}, image)

	assert.Equal(map[uint16]int{0x10: 2, 0x12: 3, 0x15: 4, 0x17: 5}, asm.LineNo)
}

func TestAssemblerOperands(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		line  string
		bytes []byte
	}){
		{"nop", []byte{0xEA}},
		{"NOP", []byte{0xEA}},
		{"ldx #%00001111", []byte{0xA2, 0x0f}},
		{"ldy #-1", []byte{0xA0, 0xff}},
		{"lda #'A'", []byte{0xA9, 0x41}},
		{"adc #$(1 << 4)", []byte{0x69, 0x10}},
		{"adc $beef", []byte{0x6D, 0xbe, 0xef}},
		{"jmp 4660", []byte{0x4C, 0x12, 0x34}},
		{"bne $42", []byte{0xD0, 0x42}},
		{"ldy $0102", []byte{0xAC, 0x01, 0x02}},
		{"stx $0203", []byte{0x8E, 0x02, 0x03}},
	}

	for _, entry := range table {
		image := assemble(t, &Assembler{}, entry.line)
		expected := program.Image{}
		for n, value := range entry.bytes {
			expected[uint16(n)] = value
		}
		assert.Equal(expected, image, entry.line)
	}
}

func TestAssemblerEqu(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	asm.Predefine("BASE", "$20")
	asm.Predefine("BASE", "$30")

	image := assemble(t, asm,
		".equ CONST_10 $10",
		"lda #CONST_10",
		"ldx #$(CONST_10 + CONST_10)",
		".equ CONST_30 $(2 * CONST_10 + CONST_10)",
		"ldy #CONST_30",
		"sta BASE",
		"ldx #$(LINENO * 2)",
	)

	assert.Equal(program.Image{
		0: 0xA9, 1: 0x10,
		2: 0xA2, 3: 0x20,
		4: 0xA0, 5: 0x30,
		6: 0x8D, 7: 0x00, 8: 0x30,
		9: 0xA2, 10: 14,
	}, image)
	assert.Equal("$30", asm.Equate["BASE"])
}

func TestAssemblerMacro(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	image := assemble(t, asm,
		".macro ADD2 v",
		"clc",
		"adc #v",
		"adc #v",
		".endm",
		"ADD2 3",
		".macro SPIN",
		"@loop: jmp @loop",
		".endm",
		"SPIN",
	)

	assert.Equal(program.Image{
		0: 0x18,
		1: 0x69, 2: 0x03,
		3: 0x69, 4: 0x03,
		5: 0x4C, 6: 0x00, 7: 0x05,
	}, image)
	assert.Equal([]string{"v"}, asm.Macro["ADD2"].Args)
	assert.Len(asm.Macro["SPIN"].Lines, 1)
	assert.Equal(map[uint16]int{0: 2, 1: 3, 3: 4, 5: 8}, asm.LineNo)
}

func TestAssemblerLabel(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	prog, err := asm.Parse(strings.NewReader(strings.Join([]string{
		"        jmp R0",
		"R1:     nop",
		"R0: AND_ALSO:",
		"",
		"        bne R1",
	}, "\n")))
	require.NoError(t, err)

	assert.Equal(map[string]uint16{"R1": 3, "R0": 4, "AND_ALSO": 4}, prog.Labels())

	image, err := prog.Output()
	assert.NoError(err)
	assert.Equal(program.Image{
		0: 0x4C, 1: 0x00, 2: 0x04,
		3: 0xEA,
		4: 0xD0, 5: 0x03,
	}, image)

	// Undefined labels are reported when resolved.
	prog, err = asm.Parse(strings.NewReader("jmp NOWHERE"))
	assert.NoError(err)
	_, err = prog.Output()
	assert.Equal(program.ErrLabelNotFound("NOWHERE"), err)
}

func TestAssemblerErrSyntax(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	// Various syntax errors
	table := [](struct {
		prog string
		line int
	}){
		{"DUP:\nDUP:\n", 2},
		{"1bad: nop", 1},
		{"lda #nothing", 1},
		{"lda #$(\"aaa\")", 1},
		{"lda #$(more(\"aaa\"))", 1},
		{"lda #256", 1},
		{"lda #-129", 1},
		{"jmp $10000", 1},
		{"bne 300", 1},
		{"xyzzy", 1},
		{"nop\nlda 1 2", 2},
		{"sta #1", 1},
		{"hlt 5", 1},
		{".equ", 1},
		{".equ A", 1},
		{".equ A 1\n.equ A 2\n", 2},
		{".org", 1},
		{".org here", 1},
		{".byte", 1},
		{".word", 1},
		{".bogus", 1},
		{".macro A B C\n.endm\nA 1\n", 3},
		{".macro A B\nlda #B\n.endm\nA 1\nA nothing\n", 5},
		{".macro A B\n.macro C\n.endm\n.endm", 2},
		{".macro A B\n.endm\n.macro A\n.endm\n", 3},
		{".macro\n", 1},
		{".macro A B\n.endm\n.endm\n", 3},
		{".macro A\nnop\n", 2},
	}

	for _, entry := range table {
		_, err := asm.Parse(strings.NewReader(entry.prog))
		var syntax *ErrSyntax
		if assert.ErrorAs(err, &syntax, entry.prog) {
			assert.Equal(entry.line, syntax.LineNo, entry.prog)
		}
	}
}

func TestAssemblerErrors(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		prog string
		err  error
	}){
		{"DUP:\nDUP:\n", ErrLabelDuplicate},
		{"lda #nothing", ErrParseNumber("nothing")},
		{"lda #256", ErrValueRange},
		{"xyzzy", ErrMnemonicUnknown("xyzzy")},
		{".macro A\n.endm\n.endm", ErrMacroLonelyEndm},
		{".macro A\n", ErrMacroLonely},
	}

	for _, entry := range table {
		_, err := (&Assembler{}).Parse(strings.NewReader(entry.prog))
		assert.True(errors.Is(err, entry.err), "%v: %v", entry.prog, err)
	}

	// Macro errors carry the macro name.
	_, err := (&Assembler{}).Parse(strings.NewReader(".macro M\nsta #1\n.endm\nM\n"))
	var macro *ErrMacro
	if assert.ErrorAs(err, &macro) {
		assert.Equal("M", macro.Macro)
		assert.Equal(2, macro.Line)
	}
	var unsupported *ErrOperandUnsupported
	assert.ErrorAs(err, &unsupported)
}

func TestAssemblerInstructions(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{
		Instructions: InstructionSet{
			NOP: Standard[NOP],
		},
	}

	image := assemble(t, asm, "nop")
	assert.Equal(program.Image{0: 0xEA}, image)

	_, err := asm.Parse(strings.NewReader("hlt"))
	assert.ErrorIs(err, ErrMnemonicUnknown("hlt"))
}
