// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"iter"
	"maps"
	"slices"
	"strings"

	"github.com/ezrec/bus8/device"
	"github.com/ezrec/bus8/internal"
	"github.com/ezrec/bus8/program"
	"github.com/ezrec/bus8/program/operand"
)

// Mnemonic names an instruction of the Standard set.
type Mnemonic string

const (
	HLT = Mnemonic("HLT")
	NOP = Mnemonic("NOP")
	LDA = Mnemonic("LDA")
	STA = Mnemonic("STA")
	LDX = Mnemonic("LDX")
	STX = Mnemonic("STX")
	LDY = Mnemonic("LDY")
	STY = Mnemonic("STY")
	INX = Mnemonic("INX")
	DEX = Mnemonic("DEX")
	INY = Mnemonic("INY")
	DEY = Mnemonic("DEY")
	SEC = Mnemonic("SEC")
	CLC = Mnemonic("CLC")
	ADC = Mnemonic("ADC")
	JMP = Mnemonic("JMP")
	BNE = Mnemonic("BNE")
)

// InstructionSet maps mnemonics to their instruction definitions.
type InstructionSet map[Mnemonic]Instruction

// aluUnary runs reg through a single operand ALU op.
func aluUnary(reg string, op string) []Step {
	return []Step{
		NewStep(reg+".out", "alu.lhs.in"),
		NewStep("alu." + op),
		NewStep("alu.result.out", reg+".in"),
	}
}

// addWith adds the byte loaded into alu.lhs to a, with carry.
func addWith(load []Step) []Step {
	return Steps(load, []Step{
		NewStep("alu.rhs.in", "a.out"),
		NewStep("alu.add"),
		NewStep("alu.result.out", "a.in"),
	})
}

// Standard is the instruction set of the bus8 computer. Opcodes follow the
// MOS 6502 where the instruction exists there.
var Standard = InstructionSet{
	HLT: Instruction{}.WithInstance(operand.KIND_NONE, 0x00, NewStep("clock.disable")),
	NOP: Instruction{}.WithInstance(operand.KIND_NONE, 0xEA),
	LDA: Instruction{}.
		WithInstance(operand.KIND_IMMEDIATE, 0xA9, LoadFromPC("a.in")...).
		WithInstance(operand.KIND_ABSOLUTE, 0xAD, LoadFromAddrAtPC("a.in")...),
	STA: Instruction{}.WithInstance(operand.KIND_ABSOLUTE, 0x8D, StoreToAddrAtPC("a.out")...),
	LDX: Instruction{}.
		WithInstance(operand.KIND_IMMEDIATE, 0xA2, LoadFromPC("x.in")...).
		WithInstance(operand.KIND_ABSOLUTE, 0xAE, LoadFromAddrAtPC("x.in")...),
	STX: Instruction{}.WithInstance(operand.KIND_ABSOLUTE, 0x8E, StoreToAddrAtPC("x.out")...),
	LDY: Instruction{}.
		WithInstance(operand.KIND_IMMEDIATE, 0xA0, LoadFromPC("y.in")...).
		WithInstance(operand.KIND_ABSOLUTE, 0xAC, LoadFromAddrAtPC("y.in")...),
	STY: Instruction{}.WithInstance(operand.KIND_ABSOLUTE, 0x8C, StoreToAddrAtPC("y.out")...),
	INX: Instruction{}.WithInstance(operand.KIND_NONE, 0xE8, aluUnary("x", "inc")...),
	DEX: Instruction{}.WithInstance(operand.KIND_NONE, 0xCA, aluUnary("x", "dec")...),
	INY: Instruction{}.WithInstance(operand.KIND_NONE, 0xC8, aluUnary("y", "inc")...),
	DEY: Instruction{}.WithInstance(operand.KIND_NONE, 0x88, aluUnary("y", "dec")...),
	SEC: Instruction{}.WithInstance(operand.KIND_NONE, 0x38, NewStep("alu.carry_set")),
	CLC: Instruction{}.WithInstance(operand.KIND_NONE, 0x18, NewStep("alu.carry_clear")),
	ADC: Instruction{}.
		WithInstance(operand.KIND_IMMEDIATE, 0x69, addWith(LoadFromPC("alu.lhs.in"))...).
		WithInstance(operand.KIND_ABSOLUTE, 0x6D, addWith(LoadFromAddrAtPC("alu.lhs.in"))...),
	JMP: Instruction{}.WithInstance(operand.KIND_ABSOLUTE, 0x4C, Steps(
		LoadFromPC("controller.address_buffer.in"),
		LoadFromPC("program_counter.low_byte.in"),
		[]Step{NewStep("controller.address_buffer.out", "program_counter.high_byte.in")},
	)...),
	// Taken while ZERO is set; otherwise the offset byte is skipped.
	BNE: Instruction{}.WithOperandInstance(operand.KIND_RELATIVE,
		NewOperandInstance(0xD0).
			WithStatusInstance(device.STATUS_ZERO, device.STATUS_ZERO, LoadFromPC("program_counter.low_byte.in")...).
			WithStatusInstance(device.STATUS_ZERO, 0, NewStep("program_counter.increment")),
	),
}

// Mnemonics returns the instruction names in order.
func (is InstructionSet) Mnemonics() []Mnemonic {
	return slices.Sorted(maps.Keys(is))
}

// Opcode is one opcode of an instruction set.
type Opcode struct {
	Mnemonic Mnemonic
	Kind     operand.Kind
	Opcode   byte
}

// Opcodes iterates every opcode of the set, by mnemonic then operand kind.
func (is InstructionSet) Opcodes() iter.Seq[Opcode] {
	return func(yield func(Opcode) bool) {
		for _, name := range is.Mnemonics() {
			ins := is[name]
			for _, kind := range ins.Kinds() {
				if !yield(Opcode{Mnemonic: name, Kind: kind, Opcode: ins.OperandInstances[kind].Opcode}) {
					return
				}
			}
		}
	}
}

// Lookup finds the mnemonic and operand kind of an opcode.
func (is InstructionSet) Lookup(opcode byte) (op Opcode, ok bool) {
	for op = range is.Opcodes() {
		if op.Opcode == opcode {
			ok = true
			return
		}
	}
	op = Opcode{}
	return
}

// Validate checks that no two instances share an opcode, and that no step
// contradicts the status condition it runs under.
func (is InstructionSet) Validate() (err error) {
	for op := range is.Opcodes() {
		oi := is[op.Mnemonic].OperandInstances[op.Kind]
		for key, steps := range oi.StatusInstances {
			for n, step := range steps {
				if step.Conflicts(key.Mask, key.Value) {
					err = &ErrStatusConflict{Opcode: op, Key: key, Step: n}
					return
				}
			}
		}
	}

	seen := map[byte]Opcode{}
	var dups []Opcode
	for op := range is.Opcodes() {
		prior, found := seen[op.Opcode]
		if found {
			if !slices.Contains(dups, prior) {
				dups = append(dups, prior)
			}
			dups = append(dups, op)
			continue
		}
		seen[op.Opcode] = op
	}

	if len(dups) != 0 {
		err = &ErrDuplicateOpcode{Opcodes: dups}
	}

	return
}

// Entries validates the set, then returns the union of every instruction's
// microcode entries.
func (is InstructionSet) Entries() (entries []Entry, err error) {
	err = is.Validate()
	if err != nil {
		return
	}

	all := internal.IterSeqFlatMap(slices.Values(is.Mnemonics()), func(name Mnemonic) iter.Seq[Entry] {
		return slices.Values(is[name].Entries())
	})
	entries = uniqueEntries(slices.Collect(all))

	return
}

// Statement returns the statement that emits name with the operands.
// Errors are recorded on the program, and reported by its Output.
func (is InstructionSet) Statement(name Mnemonic, operands ...operand.Operand) program.Statement {
	return func(prog program.Program) program.Program {
		var op operand.Operand = operand.None{}
		switch len(operands) {
		case 0:
		case 1:
			op = operands[0]
		default:
			return prog.WithError(&ErrOperandCount{Mnemonic: name, Count: len(operands)})
		}

		ins, ok := is[name]
		if !ok {
			return prog.WithError(ErrMnemonicUnknown(name))
		}

		oi, ok := ins.OperandInstance(op.Kind())
		if !ok {
			return prog.WithError(&ErrOperandUnsupported{Mnemonic: name, Kind: op.Kind()})
		}

		return op.Statement(oi.Opcode)(prog)
	}
}

// With returns the statement for the Standard instruction with operands.
func (m Mnemonic) With(operands ...operand.Operand) program.Statement {
	return Standard.Statement(m, operands...)
}

// Apply emits the Standard instruction without an operand.
func (m Mnemonic) Apply(prog program.Program) program.Program {
	return m.With()(prog)
}

// ParseMnemonic finds a mnemonic, case insensitive.
func (is InstructionSet) ParseMnemonic(word string) (m Mnemonic, ok bool) {
	m = Mnemonic(strings.ToUpper(word))
	_, ok = is[m]
	return
}
