package cpu

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/ezrec/bus8/internal"
)

// Match is an optional byte. The zero value matches anything.
type Match struct {
	Value byte
	Valid bool
}

// Any matches every value.
func Any() Match {
	return Match{}
}

// Exactly matches only value.
func Exactly(value byte) Match {
	return Match{Value: value, Valid: true}
}

// Matches is true if value satisfies the match.
func (m Match) Matches(value byte) bool {
	return !m.Valid || m.Value == value
}

func (m Match) String() string {
	if !m.Valid {
		return "*"
	}
	return internal.HexByte(m.Value)
}

func (m Match) compare(other Match) int {
	if m.Valid != other.Valid {
		if !m.Valid {
			return -1
		}
		return 1
	}
	return cmp.Compare(m.Value, other.Value)
}

// State is the decode input of the controller for one cycle.
type State struct {
	Instruction        byte // Opcode in the instruction buffer.
	InstructionCounter byte // Step within the instruction.
	Status             byte // ALU status flags.
}

func (st State) String() string {
	return fmt.Sprintf("op=%v step=%v status=%v",
		internal.HexByte(st.Instruction), st.InstructionCounter, internal.HexByte(st.Status))
}

// Entry is one row of the microcode table.
type Entry struct {
	Instruction        Match
	InstructionCounter Match
	StatusMask         byte
	StatusValue        byte
	Controls           []string // Sorted, unique.
}

// Matches is true if the entry applies to the state.
func (ent Entry) Matches(st State) bool {
	return ent.Instruction.Matches(st.Instruction) &&
		ent.InstructionCounter.Matches(st.InstructionCounter) &&
		st.Status&ent.StatusMask == ent.StatusValue
}

// Has is true if the entry asserts control.
func (ent Entry) Has(control string) bool {
	_, found := slices.BinarySearch(ent.Controls, control)
	return found
}

// String is the canonical form of the entry, also used as its identity.
func (ent Entry) String() string {
	counter := "*"
	if ent.InstructionCounter.Valid {
		counter = fmt.Sprintf("%v", ent.InstructionCounter.Value)
	}
	return fmt.Sprintf("op=%v step=%v status=%v/%v [%v]",
		ent.Instruction, counter,
		internal.HexByte(ent.StatusValue), internal.HexByte(ent.StatusMask),
		strings.Join(ent.Controls, " "))
}

func compareEntry(a, b Entry) int {
	return cmp.Or(
		a.Instruction.compare(b.Instruction),
		a.InstructionCounter.compare(b.InstructionCounter),
		cmp.Compare(a.StatusMask, b.StatusMask),
		cmp.Compare(a.StatusValue, b.StatusValue),
		slices.Compare(a.Controls, b.Controls),
	)
}

// uniqueEntries sorts entries and drops duplicates.
func uniqueEntries(entries []Entry) []Entry {
	entries = slices.Clone(entries)
	slices.SortFunc(entries, compareEntry)
	return slices.CompactFunc(entries, func(a, b Entry) bool {
		return compareEntry(a, b) == 0
	})
}
