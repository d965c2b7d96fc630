package device

import (
	"github.com/ezrec/bus8/component"
)

// Register is a byte latch with `in` and `out` controls.
type Register struct {
	Value byte

	lines
	bus *Bus
	in  component.ControlID
	out component.ControlID
}

var _ Device = (*Register)(nil)

// NewRegister creates a named register under parent.
func NewRegister(tree *component.Tree, parent component.ID, name string, bus *Bus) (reg *Register) {
	reg = &Register{
		lines: lines{tree: tree, id: tree.AddChild(parent, name)},
		bus:   bus,
	}
	reg.in = reg.add("in")
	reg.out = reg.add("out")
	return
}

// ID of the register's component node.
func (reg *Register) ID() component.ID {
	return reg.id
}

func (reg *Register) Drive() {
	if reg.on(reg.out) {
		reg.bus.Set(reg.Value)
	}
}

func (reg *Register) Tick() {
	if reg.on(reg.in) {
		reg.Value = reg.bus.Value()
	}
}

// Counter is a Register with `increment` and `reset` controls.
// Increment has priority over reset.
type Counter struct {
	Register
	increment component.ControlID
	reset     component.ControlID
}

var _ Device = (*Counter)(nil)

// NewCounter creates a named counter under parent.
func NewCounter(tree *component.Tree, parent component.ID, name string, bus *Bus) (ctr *Counter) {
	ctr = &Counter{Register: *NewRegister(tree, parent, name, bus)}
	ctr.increment = ctr.add("increment")
	ctr.reset = ctr.add("reset")
	return
}

func (ctr *Counter) Tick() {
	switch {
	case ctr.on(ctr.increment):
		ctr.Value++
	case ctr.on(ctr.reset):
		ctr.Value = 0
	}
	ctr.Register.Tick()
}
