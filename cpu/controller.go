// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"log"

	"github.com/pkg/errors"

	"github.com/ezrec/bus8/component"
	"github.com/ezrec/bus8/device"
)

// Flags reports the status bits the microcode can branch on.
type Flags interface {
	Status() byte
}

// Ticker advances a whole machine by one clock edge.
type Ticker interface {
	Tick() error
}

// Controller decodes the instruction buffer, step counter and status flags
// into the control lines to assert for each cycle.
type Controller struct {
	Verbose    bool // If set, logs every decoded state.
	CycleLimit int  // If non-zero, maximum cycles of a single instruction.

	InstructionBuffer  *device.Register
	InstructionCounter *device.Counter
	AddressBuffer      *device.Register

	entries []Entry
	tree    *component.Tree
	flags   Flags
}

var _ device.Device = (*Controller)(nil)

// NewController creates a controller node named `controller` under parent,
// decoding with the entries table.
func NewController(tree *component.Tree, parent component.ID, bus *device.Bus, entries []Entry, flags Flags) (ctl *Controller) {
	id := tree.AddChild(parent, "controller")
	ctl = &Controller{
		InstructionBuffer:  device.NewRegister(tree, id, "instruction_buffer", bus),
		InstructionCounter: device.NewCounter(tree, id, "instruction_counter", bus),
		AddressBuffer:      device.NewRegister(tree, id, "address_buffer", bus),
		entries:            uniqueEntries(entries),
		tree:               tree,
		flags:              flags,
	}
	return
}

// Entries returns a copy of the microcode table.
func (ctl *Controller) Entries() []Entry {
	return uniqueEntries(ctl.entries)
}

// Validate checks that every control named by the table exists.
func (ctl *Controller) Validate() (err error) {
	for _, ent := range ctl.entries {
		for _, control := range ent.Controls {
			_, err = ctl.tree.Control(control)
			if err != nil {
				err = errors.Wrap(err, f("entry %v", ent))
				return
			}
		}
	}
	return
}

// State reads the current decode input.
func (ctl *Controller) State() State {
	return State{
		Instruction:        ctl.InstructionBuffer.Value,
		InstructionCounter: ctl.InstructionCounter.Value,
		Status:             ctl.flags.Status(),
	}
}

// Entry returns the single table entry matching state.
func (ctl *Controller) Entry(st State) (ent Entry, err error) {
	return selectEntry(ctl.entries, st)
}

// Apply asserts the controls of the current state's entry, and clears
// every other control in the tree.
func (ctl *Controller) Apply() (err error) {
	st := ctl.State()
	ent, err := ctl.Entry(st)
	if err != nil {
		return
	}

	if ctl.Verbose {
		log.Printf("%v: %v", st, ent.Controls)
	}

	err = ctl.tree.SetControls(ent.Controls...)
	if err != nil {
		err = errors.Wrap(err, f("state %v", st))
		return
	}

	return
}

func (ctl *Controller) Drive() {
	ctl.InstructionBuffer.Drive()
	ctl.InstructionCounter.Drive()
	ctl.AddressBuffer.Drive()
}

func (ctl *Controller) Tick() {
	ctl.InstructionBuffer.Tick()
	ctl.InstructionCounter.Tick()
	ctl.AddressBuffer.Tick()
}

// RunInstruction ticks root until the step counter returns to zero,
// returning the cycles consumed.
func (ctl *Controller) RunInstruction(root Ticker) (cycles int, err error) {
	for {
		err = root.Tick()
		if err != nil {
			return
		}
		cycles++
		if ctl.InstructionCounter.Value == 0 {
			return
		}
		if ctl.CycleLimit > 0 && cycles >= ctl.CycleLimit {
			err = errors.Wrap(ErrCycleLimit, f("state %v", ctl.State()))
			return
		}
	}
}

// RunInstructions runs count instructions, returning the total cycles.
func (ctl *Controller) RunInstructions(root Ticker, count int) (cycles int, err error) {
	for range count {
		var n int
		n, err = ctl.RunInstruction(root)
		cycles += n
		if err != nil {
			return
		}
	}
	return
}
