// Package ref provides the Reference kinds emitted into a program.Program.
package ref

import (
	"github.com/ezrec/bus8/internal"
	"github.com/ezrec/bus8/program"
	"github.com/ezrec/bus8/translate"
)

var f = translate.From

// Literal is a single byte.
type Literal byte

// Pair is two bytes, high byte first.
type Pair struct {
	High byte
	Low  byte
}

// Absolute is the address of a label, high byte first.
type Absolute string

// Relative is the low byte of a label's address, which must share its page
// with the byte holding the offset.
type Relative string

var (
	_ program.Reference = Literal(0)
	_ program.Reference = Pair{}
	_ program.Reference = Absolute("")
	_ program.Reference = Relative("")
)

// PairFor splits an address into a Pair.
func PairFor(value uint16) (pair Pair) {
	pair.High, pair.Low = internal.Partition(value)
	return
}

func (lit Literal) Apply(prog program.Program) program.Program { return prog.WithValue(lit) }
func (pair Pair) Apply(prog program.Program) program.Program   { return prog.WithValue(pair) }
func (abs Absolute) Apply(prog program.Program) program.Program { return prog.WithValue(abs) }
func (rel Relative) Apply(prog program.Program) program.Program { return prog.WithValue(rel) }

func (lit Literal) Size() int  { return 1 }
func (pair Pair) Size() int    { return 2 }
func (abs Absolute) Size() int { return 2 }
func (rel Relative) Size() int { return 1 }

func (lit Literal) Resolve(prog program.Program, address uint16) (data []byte, err error) {
	data = []byte{byte(lit)}
	return
}

func (pair Pair) Resolve(prog program.Program, address uint16) (data []byte, err error) {
	data = []byte{pair.High, pair.Low}
	return
}

func (abs Absolute) Resolve(prog program.Program, address uint16) (data []byte, err error) {
	target, err := prog.Label(string(abs))
	if err != nil {
		return
	}
	high, low := internal.Partition(target)
	data = []byte{high, low}
	return
}

// Resolve compares the target page against the page of address, the
// location of the offset byte itself.
func (rel Relative) Resolve(prog program.Program, address uint16) (data []byte, err error) {
	target, err := prog.Label(string(rel))
	if err != nil {
		return
	}
	targetHigh, targetLow := internal.Partition(target)
	high, _ := internal.Partition(address)
	if targetHigh != high {
		err = &ErrAddressNotLocal{Label: string(rel), Address: address, Target: target}
		return
	}
	data = []byte{targetLow}
	return
}

// ErrAddressNotLocal is a relative reference to a label in another page.
type ErrAddressNotLocal struct {
	Label   string
	Address uint16
	Target  uint16
}

func (err *ErrAddressNotLocal) Error() string {
	return f("label %v at %v is not local to %v", err.Label, internal.HexWord(err.Target), internal.HexWord(err.Address))
}
