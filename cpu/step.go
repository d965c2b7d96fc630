package cpu

import (
	"slices"
)

// Step is the set of controls asserted for one clock cycle, with an
// optional status precondition.
type Step struct {
	Controls    []string // Sorted, unique.
	StatusMask  byte
	StatusValue byte
}

// NewStep returns a step asserting controls.
func NewStep(controls ...string) Step {
	return Step{}.WithControls(controls...)
}

// WithControls returns a step that also asserts controls.
func (st Step) WithControls(controls ...string) Step {
	merged := append(slices.Clone(st.Controls), controls...)
	slices.Sort(merged)
	merged = slices.Compact(merged)
	if len(merged) == 0 {
		merged = nil
	}
	st.Controls = merged
	return st
}

// WithStatus returns a step that requires the mask bits to be set or clear.
func (st Step) WithStatus(mask byte, set bool) Step {
	st.StatusMask |= mask
	if set {
		st.StatusValue |= mask
	} else {
		st.StatusValue &^= mask
	}
	return st
}

// Conflicts is true if the step's status condition contradicts
// status & mask == value on a bit both inspect.
func (st Step) Conflicts(mask, value byte) bool {
	return (st.StatusValue^value)&st.StatusMask&mask != 0
}

// Entry builds the microcode entry for the step. The status condition is
// the union of the step's own and the one supplied; on conflicting bits the
// result never matches as the step intends, so InstructionSet.Validate
// rejects them.
func (st Step) Entry(instruction, counter Match, statusMask, statusValue byte) Entry {
	return Entry{
		Instruction:        instruction,
		InstructionCounter: counter,
		StatusMask:         st.StatusMask | statusMask,
		StatusValue:        st.StatusValue | statusValue,
		Controls:           slices.Clone(st.Controls),
	}
}
