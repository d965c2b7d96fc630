package cpu

import (
	"iter"
	"math/bits"
)

// VERIFY_STEP_LIMIT bounds the steps walked per opcode by Verify.
const VERIFY_STEP_LIMIT = 255

// Verify walks every opcode of the set from the first fetch step to the
// counter reset, under every combination of the status bits the table
// inspects, and checks that exactly one entry matches at each step.
//
// Status is assumed constant for the duration of an instruction.
func (is InstructionSet) Verify() (err error) {
	entries, err := is.Entries()
	if err != nil {
		return
	}

	var mask byte
	for _, ent := range entries {
		mask |= ent.StatusMask
	}

	for op := range is.Opcodes() {
		for status := range statusSubsets(mask) {
			err = verifyPath(entries, op.Opcode, status)
			if err != nil {
				return
			}
		}
	}

	return
}

// verifyPath follows one opcode under a fixed status.
func verifyPath(entries []Entry, opcode byte, status byte) (err error) {
	for counter := 0; counter <= VERIFY_STEP_LIMIT; counter++ {
		st := State{Instruction: opcode, InstructionCounter: byte(counter), Status: status}
		var ent Entry
		ent, err = selectEntry(entries, st)
		if err != nil {
			return
		}
		switch {
		case ent.Has(CONTROL_COUNTER_INCREMENT):
			continue
		case ent.Has(CONTROL_COUNTER_RESET):
			return
		default:
			err = &ErrEntry{State: st, Candidates: []Entry{ent}, Reason: f("counter never advances")}
			return
		}
	}

	err = &ErrEntry{State: State{Instruction: opcode, Status: status}, Reason: f("counter never resets")}
	return
}

// statusSubsets yields every status value using only the bits of mask.
func statusSubsets(mask byte) iter.Seq[byte] {
	return func(yield func(byte) bool) {
		count := 1 << bits.OnesCount8(mask)
		for n := range count {
			var status byte
			bit := 0
			for pos := range 8 {
				if mask&(1<<pos) == 0 {
					continue
				}
				if n&(1<<bit) != 0 {
					status |= 1 << pos
				}
				bit++
			}
			if !yield(status) {
				return
			}
		}
	}
}

// selectEntry finds the single entry matching a state.
func selectEntry(entries []Entry, st State) (ent Entry, err error) {
	var candidates []Entry
	for _, candidate := range entries {
		if candidate.Matches(st) {
			candidates = append(candidates, candidate)
		}
	}

	if len(candidates) != 1 {
		reason := f("no entry matches")
		if len(candidates) > 1 {
			reason = f("%d entries match", len(candidates))
		}
		err = &ErrEntry{State: st, Candidates: candidates, Reason: reason}
		return
	}

	ent = candidates[0]
	return
}
