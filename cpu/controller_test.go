package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezrec/bus8/component"
	"github.com/ezrec/bus8/device"
)

type flags byte

func (fl flags) Status() byte { return byte(fl) }

// machine is a controller with a single register, a, on its bus.
type machine struct {
	tree *component.Tree
	ctl  *Controller
	a    *device.Register
}

func newMachine(t *testing.T, status byte, entries ...Entry) *machine {
	tree := component.NewTree("test")
	bus := &device.Bus{}
	m := &machine{
		tree: tree,
		a:    device.NewRegister(tree, component.ROOT, "a", bus),
	}
	m.ctl = NewController(tree, component.ROOT, bus, entries, flags(status))
	require.NoError(t, tree.Seal())
	return m
}

func (m *machine) Tick() (err error) {
	err = m.ctl.Apply()
	if err != nil {
		return
	}
	m.ctl.Drive()
	m.a.Drive()
	m.ctl.Tick()
	m.a.Tick()
	return
}

func TestController(t *testing.T) {
	assert := assert.New(t)

	// Fetch one byte from nowhere, then move the instruction into a.
	entries := append(
		entriesForSteps(Any(), 0, false, []Step{NewStep()}, 0, 0),
		entriesForSteps(Exactly(0), 1, true, []Step{
			NewStep("controller.instruction_buffer.out", "a.in"),
			NewStep(),
		}, 0, 0)...,
	)

	m := newMachine(t, 0, entries...)
	assert.NoError(m.ctl.Validate())
	assert.Equal(uniqueEntries(entries), m.ctl.Entries())

	m.a.Value = 0x55
	cycles, err := m.ctl.RunInstruction(m)
	assert.NoError(err)
	assert.Equal(3, cycles)
	assert.Equal(byte(0), m.a.Value)
	assert.Equal(byte(0), m.ctl.InstructionCounter.Value)

	cycles, err = m.ctl.RunInstructions(m, 2)
	assert.NoError(err)
	assert.Equal(6, cycles)
}

func TestControllerApply(t *testing.T) {
	assert := assert.New(t)

	entries := []Entry{
		NewStep("a.in", CONTROL_COUNTER_INCREMENT).Entry(Any(), Exactly(0), 0, 0),
	}
	m := newMachine(t, 0, entries...)

	a_in, err := m.tree.Control("a.in")
	require.NoError(t, err)
	a_out, err := m.tree.Control("a.out")
	require.NoError(t, err)

	m.tree.Set(a_out, true)
	assert.NoError(m.ctl.Apply())
	assert.True(m.tree.Asserted(a_in))
	assert.False(m.tree.Asserted(a_out))
	assert.Equal([]string{"a.in", CONTROL_COUNTER_INCREMENT}, m.tree.AssertedControls())
}

func TestControllerEntryErrors(t *testing.T) {
	assert := assert.New(t)

	// Two entries for step 0 when carry is set.
	entries := []Entry{
		NewStep("a.in").Entry(Any(), Exactly(0), 0, 0),
		NewStep("a.out").Entry(Any(), Exactly(0), device.STATUS_CARRY, device.STATUS_CARRY),
	}

	m := newMachine(t, device.STATUS_CARRY, entries...)
	err := m.ctl.Apply()
	var ent *ErrEntry
	assert.ErrorAs(err, &ent)
	assert.Len(ent.Candidates, 2)
	assert.Equal(State{Status: device.STATUS_CARRY}, ent.State)
	assert.Contains(err.Error(), "op=0x00 step=0 status=0x01")

	// Nothing for step 1.
	m = newMachine(t, 0, entries...)
	m.ctl.InstructionCounter.Value = 1
	_, err = m.ctl.RunInstruction(m)
	assert.ErrorAs(err, &ent)
	assert.Empty(ent.Candidates)
}

func TestControllerValidate(t *testing.T) {
	assert := assert.New(t)

	m := newMachine(t, 0, NewStep("b.in").Entry(Any(), Any(), 0, 0))
	err := m.ctl.Validate()
	assert.ErrorIs(err, component.ErrChildNotFound("b"))

	m = newMachine(t, 0, NewStep("a.sideways").Entry(Any(), Any(), 0, 0))
	err = m.ctl.Validate()
	assert.ErrorIs(err, component.ErrControlNotFound("a.sideways"))
}

func TestControllerCycleLimit(t *testing.T) {
	assert := assert.New(t)

	// The counter never resets.
	m := newMachine(t, 0,
		NewStep(CONTROL_COUNTER_INCREMENT).Entry(Any(), Any(), 0, 0),
	)
	m.ctl.CycleLimit = 10

	cycles, err := m.ctl.RunInstruction(m)
	assert.ErrorIs(err, ErrCycleLimit)
	assert.Equal(10, cycles)
}
