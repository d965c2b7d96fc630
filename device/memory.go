package device

import (
	"github.com/ezrec/bus8/component"
	"github.com/ezrec/bus8/internal"
)

// ProgramCounter is a 16-bit counter split over `high_byte` and `low_byte`
// registers. The counter moves before the byte registers latch, so a
// branch that loads `low_byte` in the same cycle keeps the incremented page.
type ProgramCounter struct {
	HighByte *Register
	LowByte  *Register

	lines
	increment component.ControlID
	reset     component.ControlID
}

var _ Device = (*ProgramCounter)(nil)

// NewProgramCounter creates a named program counter under parent.
func NewProgramCounter(tree *component.Tree, parent component.ID, name string, bus *Bus) (pc *ProgramCounter) {
	pc = &ProgramCounter{
		lines: lines{tree: tree, id: tree.AddChild(parent, name)},
	}
	pc.increment = pc.add("increment")
	pc.reset = pc.add("reset")
	pc.HighByte = NewRegister(tree, pc.id, "high_byte", bus)
	pc.LowByte = NewRegister(tree, pc.id, "low_byte", bus)
	return
}

// Value of the program counter.
func (pc *ProgramCounter) Value() uint16 {
	return internal.Unpartition(pc.HighByte.Value, pc.LowByte.Value)
}

// SetValue sets the program counter.
func (pc *ProgramCounter) SetValue(value uint16) {
	pc.HighByte.Value, pc.LowByte.Value = internal.Partition(value)
}

func (pc *ProgramCounter) Drive() {
	pc.HighByte.Drive()
	pc.LowByte.Drive()
}

func (pc *ProgramCounter) Tick() {
	switch {
	case pc.on(pc.increment):
		pc.SetValue(pc.Value() + 1)
	case pc.on(pc.reset):
		pc.SetValue(0)
	}
	pc.HighByte.Tick()
	pc.LowByte.Tick()
}

// Memory is a sparse 64K byte store addressed by two byte registers.
// Unwritten addresses read as 0x00.
type Memory struct {
	Data            map[uint16]byte
	AddressHighByte *Register
	AddressLowByte  *Register

	lines
	bus *Bus
	in  component.ControlID
	out component.ControlID
}

var _ Device = (*Memory)(nil)

// NewMemory creates a named memory under parent.
func NewMemory(tree *component.Tree, parent component.ID, name string, bus *Bus) (mem *Memory) {
	mem = &Memory{
		Data:  map[uint16]byte{},
		lines: lines{tree: tree, id: tree.AddChild(parent, name)},
		bus:   bus,
	}
	mem.in = mem.add("in")
	mem.out = mem.add("out")
	mem.AddressHighByte = NewRegister(tree, mem.id, "address_high_byte", bus)
	mem.AddressLowByte = NewRegister(tree, mem.id, "address_low_byte", bus)
	return
}

// Address currently selected by the address registers.
func (mem *Memory) Address() uint16 {
	return internal.Unpartition(mem.AddressHighByte.Value, mem.AddressLowByte.Value)
}

// SetAddress selects an address.
func (mem *Memory) SetAddress(address uint16) {
	mem.AddressHighByte.Value, mem.AddressLowByte.Value = internal.Partition(address)
}

// Load copies an image into memory.
func (mem *Memory) Load(image map[uint16]byte) {
	for address, value := range image {
		mem.Data[address] = value
	}
}

func (mem *Memory) Drive() {
	if mem.on(mem.out) {
		mem.bus.Set(mem.Data[mem.Address()])
	}
	mem.AddressHighByte.Drive()
	mem.AddressLowByte.Drive()
}

// Tick stores at the current address before the address registers latch.
func (mem *Memory) Tick() {
	if mem.on(mem.in) {
		mem.Data[mem.Address()] = mem.bus.Value()
	}
	mem.AddressHighByte.Tick()
	mem.AddressLowByte.Tick()
}
