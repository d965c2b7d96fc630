package cpu

import (
	"errors"
	"strings"

	"github.com/ezrec/bus8/internal"
	"github.com/ezrec/bus8/program/operand"
	"github.com/ezrec/bus8/translate"
)

var f = translate.From

var (
	// Controller errors
	ErrCycleLimit = errors.New(f("cycle limit exceeded"))

	// Assembler errors
	ErrEquateSyntax       = errors.New(f(".equ syntax"))
	ErrEquateDuplicate    = errors.New(f(".equ duplicated"))
	ErrLabelDuplicate     = errors.New(f("label duplicated"))
	ErrLabelInvalid       = errors.New(f("label invalid"))
	ErrMacroSyntax        = errors.New(f(".macro syntax"))
	ErrMacroNesting       = errors.New(f(".macro in .macro prohibited"))
	ErrMacroDuplicate     = errors.New(f(".macro duplicated"))
	ErrMacroLonely        = errors.New(f(".macro without .endm"))
	ErrMacroLonelyEndm    = errors.New(f(".endm without .macro"))
	ErrDirectiveInvalid   = errors.New(f("directive invalid"))
	ErrDirectiveArgs      = errors.New(f("directive arguments"))
	ErrOpcodeExtraArgs    = errors.New(f("excessive arguments"))
	ErrOpcodeValueMissing = errors.New(f("value missing"))
	ErrValueRange         = errors.New(f("value out of range"))
)

// ErrEntry is a state matched by no entry, or by more than one.
type ErrEntry struct {
	State      State
	Candidates []Entry
	Reason     string
}

func (err *ErrEntry) Error() string {
	lines := []string{f("microcode %v: %v", err.State, err.Reason)}
	for _, ent := range err.Candidates {
		lines = append(lines, "  "+ent.String())
	}
	return strings.Join(lines, "\n")
}

// ErrDuplicateOpcode lists instances that share an opcode.
type ErrDuplicateOpcode struct {
	Opcodes []Opcode
}

func (err *ErrDuplicateOpcode) Error() string {
	var parts []string
	for _, op := range err.Opcodes {
		parts = append(parts, f("%v %v %v", internal.HexByte(op.Opcode), op.Mnemonic, op.Kind))
	}
	return f("duplicate opcodes: %v", strings.Join(parts, ", "))
}

// ErrStatusConflict is a step whose status condition contradicts its
// status key.
type ErrStatusConflict struct {
	Opcode Opcode
	Key    StatusKey
	Step   int
}

func (err *ErrStatusConflict) Error() string {
	return f("%v %v step %d: status condition conflicts with %v/%v",
		err.Opcode.Mnemonic, internal.HexByte(err.Opcode.Opcode), err.Step,
		internal.HexByte(err.Key.Value), internal.HexByte(err.Key.Mask))
}

// ErrOperandUnsupported is an operand kind an instruction does not accept.
type ErrOperandUnsupported struct {
	Mnemonic Mnemonic
	Kind     operand.Kind
}

func (err *ErrOperandUnsupported) Error() string {
	return f("%v does not accept a %v operand", err.Mnemonic, err.Kind)
}

// ErrOperandCount is an instruction given more than one operand.
type ErrOperandCount struct {
	Mnemonic Mnemonic
	Count    int
}

func (err *ErrOperandCount) Error() string {
	return f("%v given %d operands", err.Mnemonic, err.Count)
}

type ErrMnemonicUnknown string

func (err ErrMnemonicUnknown) Error() string {
	return f("instruction %v unknown", string(err))
}

type ErrParseNumber string

func (err ErrParseNumber) Error() string {
	return f("'%v' is not a number", string(err))
}

type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}

type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err *ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err *ErrSyntax) Unwrap() error {
	return err.Err
}

type ErrMacro struct {
	Macro string
	Line  int
	Err   error
}

func (err *ErrMacro) Error() string {
	return f("macro %v line %v %v", err.Macro, err.Line, err.Err.Error())
}

func (err *ErrMacro) Unwrap() error {
	return err.Err
}
