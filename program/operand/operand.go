// Package operand encodes the argument shape of an instruction.
package operand

import (
	"github.com/ezrec/bus8/program"
	"github.com/ezrec/bus8/program/ref"
)

// Kind is the addressing mode of an operand.
type Kind int

//go:generate go tool stringer -linecomment -type=Kind
const (
	KIND_NONE      = Kind(0) // none
	KIND_IMMEDIATE = Kind(1) // immediate
	KIND_ABSOLUTE  = Kind(2) // absolute
	KIND_RELATIVE  = Kind(3) // relative
)

// Operand turns an opcode into the statement that emits it.
type Operand interface {
	Kind() Kind
	// Statement appends the opcode, then the operand's own references.
	Statement(opcode byte) program.Statement
}

// None is an instruction without an argument.
type None struct{}

// Immediate is a literal byte argument.
type Immediate byte

// Absolute is a 16-bit address, given directly or by label.
// A non-empty Label takes precedence over Address.
type Absolute struct {
	Address uint16
	Label   string
}

// Relative is a page offset, given directly or by label.
// A non-empty Label takes precedence over Offset.
type Relative struct {
	Offset byte
	Label  string
}

var (
	_ Operand = None{}
	_ Operand = Immediate(0)
	_ Operand = Absolute{}
	_ Operand = Relative{}
)

func (None) Kind() Kind      { return KIND_NONE }
func (Immediate) Kind() Kind { return KIND_IMMEDIATE }
func (Absolute) Kind() Kind  { return KIND_ABSOLUTE }
func (Relative) Kind() Kind  { return KIND_RELATIVE }

func emit(opcode byte, refs ...program.Reference) program.Statement {
	return func(prog program.Program) program.Program {
		return prog.WithValue(ref.Literal(opcode)).WithValues(refs...)
	}
}

func (None) Statement(opcode byte) program.Statement {
	return emit(opcode)
}

func (imm Immediate) Statement(opcode byte) program.Statement {
	return emit(opcode, ref.Literal(imm))
}

func (abs Absolute) Statement(opcode byte) program.Statement {
	if len(abs.Label) != 0 {
		return emit(opcode, ref.Absolute(abs.Label))
	}
	return emit(opcode, ref.PairFor(abs.Address))
}

func (rel Relative) Statement(opcode byte) program.Statement {
	if len(rel.Label) != 0 {
		return emit(opcode, ref.Relative(rel.Label))
	}
	return emit(opcode, ref.Literal(rel.Offset))
}
