package device

import (
	"github.com/ezrec/bus8/component"
)

const (
	STATUS_CARRY = byte(0x01) // ALU carry flag.
	STATUS_ZERO  = byte(0x02) // ALU zero flag.
)

// ALU operates on its `lhs` and `rhs` registers into `result`.
type ALU struct {
	Lhs    *Register
	Rhs    *Register
	Result *Register
	Carry  bool
	Zero   bool

	lines
	opAdd      component.ControlID
	opInc      component.ControlID
	opDec      component.ControlID
	carrySet   component.ControlID
	carryClear component.ControlID
}

var _ Device = (*ALU)(nil)

// NewALU creates a named ALU under parent.
func NewALU(tree *component.Tree, parent component.ID, name string, bus *Bus) (alu *ALU) {
	alu = &ALU{
		lines: lines{tree: tree, id: tree.AddChild(parent, name)},
	}
	alu.opAdd = alu.add("add")
	alu.opInc = alu.add("inc")
	alu.opDec = alu.add("dec")
	alu.carrySet = alu.add("carry_set")
	alu.carryClear = alu.add("carry_clear")
	alu.Lhs = NewRegister(tree, alu.id, "lhs", bus)
	alu.Rhs = NewRegister(tree, alu.id, "rhs", bus)
	alu.Result = NewRegister(tree, alu.id, "result", bus)
	return
}

// Status returns the flags as STATUS_* bits.
func (alu *ALU) Status() (status byte) {
	if alu.Carry {
		status |= STATUS_CARRY
	}
	if alu.Zero {
		status |= STATUS_ZERO
	}
	return
}

func (alu *ALU) Drive() {
	alu.Lhs.Drive()
	alu.Rhs.Drive()
	alu.Result.Drive()
}

func (alu *ALU) Tick() {
	alu.Lhs.Tick()
	alu.Rhs.Tick()
	alu.Result.Tick()

	switch {
	case alu.on(alu.carrySet):
		alu.Carry = true
	case alu.on(alu.carryClear):
		alu.Carry = false
	}

	switch {
	case alu.on(alu.opAdd):
		sum := uint(alu.Lhs.Value) + uint(alu.Rhs.Value)
		if alu.Carry {
			sum++
		}
		alu.setResult(byte(sum))
		alu.Carry = sum > 0xff
	case alu.on(alu.opInc):
		alu.setResult(alu.Lhs.Value + 1)
	case alu.on(alu.opDec):
		alu.setResult(alu.Lhs.Value - 1)
	}
}

func (alu *ALU) setResult(value byte) {
	alu.Result.Value = value
	alu.Zero = value == 0
}

// Clock gates the computer's free-running mode through `disable`.
type Clock struct {
	lines
	disable component.ControlID
}

var _ Device = (*Clock)(nil)

// NewClock creates a named clock under parent.
func NewClock(tree *component.Tree, parent component.ID, name string) (clk *Clock) {
	clk = &Clock{
		lines: lines{tree: tree, id: tree.AddChild(parent, name)},
	}
	clk.disable = clk.add("disable")
	return
}

// Disabled is true while `disable` is asserted.
func (clk *Clock) Disabled() bool {
	return clk.on(clk.disable)
}

// Enable clears `disable`.
func (clk *Clock) Enable() {
	clk.tree.Set(clk.disable, false)
}

func (clk *Clock) Drive() {}

func (clk *Clock) Tick() {}
