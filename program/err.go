package program

import (
	"github.com/ezrec/bus8/internal"
	"github.com/ezrec/bus8/translate"
)

var f = translate.From

type ErrLabelNotFound string

func (err ErrLabelNotFound) Error() string {
	return f("label %v not found", string(err))
}

// ErrAddressOverflow is a value or label placed past the end of memory.
type ErrAddressOverflow struct {
	Address int // Cursor when placed; may be MEMORY_SIZE.
	Size    int
}

func (err *ErrAddressOverflow) Error() string {
	if err.Address >= MEMORY_SIZE {
		return f("address past end of memory")
	}
	return f("%d bytes at %v run past end of memory", err.Size, internal.HexWord(uint16(err.Address)))
}
