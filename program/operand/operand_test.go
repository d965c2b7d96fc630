package operand

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/bus8/program"
	"github.com/ezrec/bus8/program/ref"
)

func TestOperandStatement(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		operand Operand
		kind    string
		refs    []program.Reference
	}){
		{None{}, "none", nil},
		{Immediate(0x2a), "immediate", []program.Reference{ref.Literal(0x2a)}},
		{Absolute{Address: 0xbeef}, "absolute", []program.Reference{ref.Pair{High: 0xbe, Low: 0xef}}},
		{Absolute{Address: 0xbeef, Label: "v"}, "absolute", []program.Reference{ref.Absolute("v")}},
		{Relative{Offset: 0x42}, "relative", []program.Reference{ref.Literal(0x42)}},
		{Relative{Label: "loop"}, "relative", []program.Reference{ref.Relative("loop")}},
	}

	for _, entry := range table {
		assert.Equal(entry.kind, entry.operand.Kind().String())

		start := program.New().At(0x10)
		got := start.WithStatement(entry.operand.Statement(0xa9))
		expected := start.WithValue(ref.Literal(0xa9)).WithValues(entry.refs...)
		assert.Equal(expected, got, entry.operand)

		size := 1
		for _, r := range entry.refs {
			size += r.Size()
		}
		assert.Equal(uint16(0x10+size), got.Next(), entry.operand)
	}
}

func TestKindString(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("Kind(9)", Kind(9).String())
}
