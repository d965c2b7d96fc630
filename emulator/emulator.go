// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package emulator wires the bus8 computer together: bus, registers,
// program counter, memory, ALU, clock and the microcoded controller.
package emulator

import (
	"log"

	"github.com/pkg/errors"

	"github.com/ezrec/bus8/component"
	"github.com/ezrec/bus8/cpu"
	"github.com/ezrec/bus8/device"
	"github.com/ezrec/bus8/program"
)

// Computer state. Controller + registers + memory on one bus.
type Computer struct {
	Verbose bool // If set, enables verbose logging.
	Cycles  int  // Total cycles since creation.

	Tree           *component.Tree
	Bus            *device.Bus
	A              *device.Register
	X              *device.Register
	Y              *device.Register
	ProgramCounter *device.ProgramCounter
	Memory         *device.Memory
	ALU            *device.ALU
	Clock          *device.Clock
	Controller     *cpu.Controller

	devices []device.Device
}

var _ cpu.Ticker = (*Computer)(nil)

// New creates a computer with the Standard instruction set, and memory
// loaded from image.
func New(image program.Image) (c *Computer, err error) {
	return NewWithInstructions(cpu.Standard, image)
}

// NewWithInstructions creates a computer decoding the given instruction set.
func NewWithInstructions(set cpu.InstructionSet, image program.Image) (c *Computer, err error) {
	entries, err := set.Entries()
	if err != nil {
		return
	}

	tree := component.NewTree("computer")
	bus := &device.Bus{}

	c = &Computer{
		Tree:           tree,
		Bus:            bus,
		A:              device.NewRegister(tree, component.ROOT, "a", bus),
		X:              device.NewRegister(tree, component.ROOT, "x", bus),
		Y:              device.NewRegister(tree, component.ROOT, "y", bus),
		ProgramCounter: device.NewProgramCounter(tree, component.ROOT, "program_counter", bus),
		Memory:         device.NewMemory(tree, component.ROOT, "memory", bus),
		ALU:            device.NewALU(tree, component.ROOT, "alu", bus),
		Clock:          device.NewClock(tree, component.ROOT, "clock"),
	}
	c.Controller = cpu.NewController(tree, component.ROOT, bus, entries, c.ALU)

	c.devices = []device.Device{
		c.Controller,
		c.A,
		c.X,
		c.Y,
		c.ProgramCounter,
		c.Memory,
		c.ALU,
		c.Clock,
	}

	err = tree.Seal()
	if err != nil {
		c = nil
		err = errors.Wrap(err, f("computer"))
		return
	}

	err = c.Controller.Validate()
	if err != nil {
		c = nil
		return
	}

	c.Memory.Load(image)

	return
}

// FromProgram resolves a program and loads it into a new computer.
func FromProgram(prog program.Program) (c *Computer, err error) {
	image, err := prog.Output()
	if err != nil {
		return
	}

	return New(image)
}

// State returns the controller's current decode input.
func (c *Computer) State() cpu.State {
	return c.Controller.State()
}

// Status returns the ALU flags as device.STATUS_* bits.
func (c *Computer) Status() byte {
	return c.ALU.Status()
}

// Tick performs a single clock cycle: the controller asserts the controls
// for the current state, every device drives the bus, then every device
// latches.
func (c *Computer) Tick() (err error) {
	c.Controller.Verbose = c.Verbose

	pc := c.ProgramCounter.Value()
	defer func() {
		if err != nil {
			err = &ErrRuntime{Address: pc, Cycle: c.Cycles, Err: err}
		}
	}()

	err = c.Controller.Apply()
	if err != nil {
		return
	}

	for _, dev := range c.devices {
		dev.Drive()
	}

	for _, dev := range c.devices {
		dev.Tick()
	}

	c.Cycles++

	return
}

// RunInstruction runs one instruction, returning the cycles it took.
func (c *Computer) RunInstruction() (cycles int, err error) {
	return c.Controller.RunInstruction(c)
}

// RunInstructions runs count instructions, returning the total cycles.
func (c *Computer) RunInstructions(count int) (cycles int, err error) {
	return c.Controller.RunInstructions(c, count)
}

// Run ticks until the clock is disabled, returning the cycles it took.
// Controller.CycleLimit bounds each instruction, not the whole run.
func (c *Computer) Run() (cycles int, err error) {
	c.Clock.Enable()
	steps := 0
	for !c.Clock.Disabled() {
		err = c.Tick()
		if err != nil {
			return
		}
		cycles++
		steps++
		if c.Controller.InstructionCounter.Value == 0 {
			steps = 0
			continue
		}
		if c.Controller.CycleLimit > 0 && steps >= c.Controller.CycleLimit {
			err = &ErrRuntime{Address: c.ProgramCounter.Value(), Cycle: c.Cycles, Err: cpu.ErrCycleLimit}
			return
		}
	}

	if c.Verbose {
		log.Printf("halted after %v cycles at %v", cycles, c.State())
	}

	return
}
