package ref

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/bus8/program"
)

func TestPairFor(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(Pair{High: 0xbe, Low: 0xef}, PairFor(0xbeef))
	assert.Equal(Pair{}, PairFor(0))
}

func TestResolve(t *testing.T) {
	assert := assert.New(t)

	prog := program.New().WithLabelAt(0xbeef, "v").WithLabelAt(0x0042, "near")

	table := [](struct {
		ref     program.Reference
		address uint16
		size    int
		data    []byte
		err     error
	}){
		{Literal(0x2a), 0, 1, []byte{0x2a}, nil},
		{Pair{High: 1, Low: 2}, 0, 2, []byte{1, 2}, nil},
		{Absolute("v"), 0, 2, []byte{0xbe, 0xef}, nil},
		{Absolute("missing"), 0, 2, nil, program.ErrLabelNotFound("missing")},
		{Relative("near"), 0x00ff, 1, []byte{0x42}, nil},
		{Relative("v"), 0xbe00, 1, []byte{0xef}, nil},
		{Relative("v"), 0xbf00, 1, nil, &ErrAddressNotLocal{Label: "v", Address: 0xbf00, Target: 0xbeef}},
		{Relative("missing"), 0, 1, nil, program.ErrLabelNotFound("missing")},
	}

	for _, entry := range table {
		assert.Equal(entry.size, entry.ref.Size(), entry.ref)
		data, err := entry.ref.Resolve(prog, entry.address)
		assert.Equal(entry.err, err, entry.ref)
		assert.Equal(entry.data, data, entry.ref)
	}
}

func TestRelativePageOfOffsetByte(t *testing.T) {
	assert := assert.New(t)

	// Branch opcode at 0x10ff, offset byte at 0x1100: the offset byte's
	// page decides, not the opcode's.
	prog := program.New().
		At(0x10ff).
		WithValues(Literal(0xd0), Relative("target")).
		WithLabelAt(0x1180, "target")

	image, err := prog.Output()
	assert.NoError(err)
	assert.Equal(program.Image{0x10ff: 0xd0, 0x1100: 0x80}, image)

	prog = prog.WithLabelAt(0x10f0, "target")
	_, err = prog.Output()
	var notLocal *ErrAddressNotLocal
	assert.ErrorAs(err, &notLocal)
	assert.Equal(uint16(0x1100), notLocal.Address)
}

func FuzzRelative(f *testing.F) {
	f.Add(uint16(0x0000), uint16(0x00ff))
	f.Add(uint16(0xbeef), uint16(0xbe42))
	f.Add(uint16(0x10ff), uint16(0x1100))

	f.Fuzz(func(t *testing.T, address uint16, target uint16) {
		assert := assert.New(t)

		prog := program.New().WithLabelAt(target, "t")
		data, err := Relative("t").Resolve(prog, address)
		if address>>8 == target>>8 {
			assert.NoError(err)
			assert.Equal([]byte{byte(target)}, data)
		} else {
			assert.Error(err)
			assert.Nil(data)
		}
	})
}
