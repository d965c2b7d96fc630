// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"iter"
	"maps"
	"slices"

	"github.com/ezrec/bus8/internal"
	"github.com/ezrec/bus8/program/operand"
)

const (
	CONTROL_COUNTER_INCREMENT = "controller.instruction_counter.increment"
	CONTROL_COUNTER_RESET     = "controller.instruction_counter.reset"
)

// StatusKey selects one step sequence of an opcode by status flags.
type StatusKey struct {
	Mask  byte
	Value byte
}

// OperandInstance is the opcode and step sequences for one operand kind.
type OperandInstance struct {
	Opcode          byte
	StatusInstances map[StatusKey][]Step
}

// NewOperandInstance returns an instance with no step sequences.
func NewOperandInstance(opcode byte) OperandInstance {
	return OperandInstance{Opcode: opcode}
}

// WithStatusInstances returns an instance with the sequences added.
func (oi OperandInstance) WithStatusInstances(instances map[StatusKey][]Step) OperandInstance {
	merged := maps.Clone(oi.StatusInstances)
	if merged == nil {
		merged = make(map[StatusKey][]Step, len(instances))
	}
	for key, steps := range instances {
		merged[key] = slices.Clone(steps)
	}
	oi.StatusInstances = merged
	return oi
}

// WithStatusInstance returns an instance that runs steps when
// status & mask == value.
func (oi OperandInstance) WithStatusInstance(mask, value byte, steps ...Step) OperandInstance {
	return oi.WithStatusInstances(map[StatusKey][]Step{{Mask: mask, Value: value}: steps})
}

// Entries returns the preamble and every status sequence of the opcode.
func (oi OperandInstance) Entries() (entries []Entry) {
	entries = Preamble()
	start := byte(len(PreambleSteps()))
	for _, key := range slices.SortedFunc(maps.Keys(oi.StatusInstances), compareStatusKey) {
		steps := oi.StatusInstances[key]
		entries = append(entries, entriesForSteps(Exactly(oi.Opcode), start, true, steps, key.Mask, key.Value)...)
	}
	return
}

func compareStatusKey(a, b StatusKey) int {
	if a.Mask != b.Mask {
		return int(a.Mask) - int(b.Mask)
	}
	return int(a.Value) - int(b.Value)
}

// Instruction is a named operation with one opcode per accepted operand kind.
type Instruction struct {
	OperandInstances map[operand.Kind]OperandInstance
}

// WithOperandInstance returns an instruction accepting kind.
func (ins Instruction) WithOperandInstance(kind operand.Kind, oi OperandInstance) Instruction {
	merged := maps.Clone(ins.OperandInstances)
	if merged == nil {
		merged = map[operand.Kind]OperandInstance{}
	}
	merged[kind] = oi
	ins.OperandInstances = merged
	return ins
}

// WithInstance returns an instruction running steps for opcode when given
// an operand of kind.
func (ins Instruction) WithInstance(kind operand.Kind, opcode byte, steps ...Step) Instruction {
	return ins.WithOperandInstance(kind, NewOperandInstance(opcode).WithStatusInstance(0, 0, steps...))
}

// WithStatusInstance is WithInstance for a status keyed step sequence.
func (ins Instruction) WithStatusInstance(kind operand.Kind, opcode byte, mask, value byte, steps ...Step) Instruction {
	return ins.WithOperandInstance(kind, NewOperandInstance(opcode).WithStatusInstance(mask, value, steps...))
}

// Kinds returns the accepted operand kinds, in order.
func (ins Instruction) Kinds() []operand.Kind {
	return slices.Sorted(maps.Keys(ins.OperandInstances))
}

// OperandInstance returns the instance for an operand kind.
func (ins Instruction) OperandInstance(kind operand.Kind) (oi OperandInstance, ok bool) {
	oi, ok = ins.OperandInstances[kind]
	return
}

// Entries returns the deduplicated microcode entries of all operand kinds.
func (ins Instruction) Entries() []Entry {
	var seqs []iter.Seq[Entry]
	for _, kind := range ins.Kinds() {
		seqs = append(seqs, slices.Values(ins.OperandInstances[kind].Entries()))
	}
	return uniqueEntries(slices.Collect(internal.IterSeqConcat(seqs...)))
}

// entriesForSteps numbers steps from start. Every step but the last
// increments the instruction counter; the last one resets it, or
// increments it when reset is false.
func entriesForSteps(instruction Match, start byte, reset bool, steps []Step, mask, value byte) (entries []Entry) {
	if len(steps) == 0 {
		steps = []Step{{}}
	}

	last := CONTROL_COUNTER_INCREMENT
	if reset {
		last = CONTROL_COUNTER_RESET
	}

	for n, step := range steps {
		control := CONTROL_COUNTER_INCREMENT
		if n == len(steps)-1 {
			control = last
		}
		counter := Exactly(start + byte(n))
		entries = append(entries, step.WithControls(control).Entry(instruction, counter, mask, value))
	}

	return
}

// Steps collects step sequences into one.
func Steps(seqs ...[]Step) (steps []Step) {
	for _, seq := range seqs {
		steps = append(steps, seq...)
	}
	return
}

// LoadFromPC reads the byte at the program counter into dest, and
// advances the program counter.
func LoadFromPC(dest string) []Step {
	return []Step{
		NewStep("program_counter.high_byte.out", "memory.address_high_byte.in"),
		NewStep("program_counter.low_byte.out", "memory.address_low_byte.in"),
		NewStep("memory.out", "program_counter.increment", dest),
	}
}

// LoadAddrAtPC points memory at the big-endian address stored at the
// program counter.
func LoadAddrAtPC() []Step {
	return Steps(
		LoadFromPC("controller.address_buffer.in"),
		LoadFromPC("memory.address_low_byte.in"),
		[]Step{NewStep("controller.address_buffer.out", "memory.address_high_byte.in")},
	)
}

// LoadFromAddrAtPC reads the byte at the address stored at the program
// counter into dest.
func LoadFromAddrAtPC(dest string) []Step {
	return Steps(LoadAddrAtPC(), []Step{NewStep("memory.out", dest)})
}

// StoreToAddrAtPC writes src to the address stored at the program counter.
func StoreToAddrAtPC(src string) []Step {
	return Steps(LoadAddrAtPC(), []Step{NewStep(src, "memory.in")})
}

// PreambleSteps is the fetch cycle shared by every instruction.
func PreambleSteps() []Step {
	return LoadFromPC("controller.instruction_buffer.in")
}

// Preamble returns the fetch cycle entries, which match any opcode.
func Preamble() []Entry {
	return entriesForSteps(Any(), 0, false, PreambleSteps(), 0, 0)
}
