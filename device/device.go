// Package device provides the bus peripherals of the bus8 computer.
// It includes the shared Bus, byte Registers and Counters, the 16-bit
// ProgramCounter, sparse Memory, the ALU and the Clock.
//
// Every device owns a node in a component.Tree, and reads its control
// lines from the tree on each clock edge.
package device

import (
	"github.com/ezrec/bus8/component"
)

// Device defines the interface for all peripherals on the bus.
// A clock edge is split into two phases, so that every device sees the
// bus value driven during the same cycle.
type Device interface {
	// Drive writes the bus if an output control is asserted.
	Drive()
	// Tick latches inputs and performs the asserted operations.
	Tick()
}

// Bus is the single shared byte slot. The last writer in a cycle wins.
type Bus struct {
	value byte
}

// Value on the bus.
func (bus *Bus) Value() byte {
	return bus.value
}

// Set the value on the bus.
func (bus *Bus) Set(value byte) {
	bus.value = value
}

// lines is the set of control lines owned by one device node.
type lines struct {
	tree *component.Tree
	id   component.ID
}

func (ln lines) add(name string) component.ControlID {
	return ln.tree.AddControl(ln.id, name)
}

func (ln lines) on(cid component.ControlID) bool {
	return ln.tree.Asserted(cid)
}
