package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStep(t *testing.T) {
	assert := assert.New(t)

	st := NewStep("b.in", "a.out", "b.in")
	assert.Equal([]string{"a.out", "b.in"}, st.Controls)

	assert.Nil(NewStep().Controls)
	assert.Equal(NewStep("a.out", "b.in"), NewStep("a.out").WithControls("b.in"))

	// WithControls never modifies the receiver.
	_ = st.WithControls("c.in")
	assert.Equal([]string{"a.out", "b.in"}, st.Controls)
}

func TestStepWithStatus(t *testing.T) {
	assert := assert.New(t)

	st := Step{}.WithStatus(0x1, false).WithStatus(0x2, true)
	assert.Equal(byte(0x3), st.StatusMask)
	assert.Equal(byte(0x2), st.StatusValue)

	st = st.WithStatus(0x2, false)
	assert.Equal(byte(0x3), st.StatusMask)
	assert.Equal(byte(0x0), st.StatusValue)
}

func TestStepEntry(t *testing.T) {
	assert := assert.New(t)

	st := NewStep("a.in").WithStatus(0x1, true)
	ent := st.Entry(Exactly(0xEA), Exactly(3), 0x2, 0x2)

	assert.Equal(Entry{
		Instruction:        Exactly(0xEA),
		InstructionCounter: Exactly(3),
		StatusMask:         0x3,
		StatusValue:        0x3,
		Controls:           []string{"a.in"},
	}, ent)

	assert.True(ent.Matches(State{Instruction: 0xEA, InstructionCounter: 3, Status: 0x3}))
	assert.False(ent.Matches(State{Instruction: 0xEA, InstructionCounter: 3, Status: 0x2}))
	assert.False(ent.Matches(State{Instruction: 0xEA, InstructionCounter: 4, Status: 0x3}))
	assert.False(ent.Matches(State{Instruction: 0xEB, InstructionCounter: 3, Status: 0x3}))
}

func TestEntry(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("*", Any().String())
	assert.Equal("0x2a", Exactly(0x2a).String())
	assert.True(Any().Matches(0x99))
	assert.False(Exactly(1).Matches(2))

	ent := NewStep("b.in", "a.out").Entry(Any(), Exactly(1), 0, 0)
	assert.True(ent.Has("a.out"))
	assert.False(ent.Has("a.in"))
	assert.Equal("op=* step=1 status=0x00/0x00 [a.out b.in]", ent.String())

	st := State{Instruction: 0xd0, InstructionCounter: 4, Status: 2}
	assert.Equal("op=0xd0 step=4 status=0x02", st.String())

	entries := uniqueEntries([]Entry{ent, NewStep().Entry(Exactly(0), Exactly(0), 0, 0), ent})
	assert.Len(entries, 2)
	assert.Equal(Any(), entries[0].Instruction)
}
