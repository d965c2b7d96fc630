package emulator

import (
	"github.com/ezrec/bus8/internal"
	"github.com/ezrec/bus8/translate"
)

var f = translate.From

// ErrRuntime indicates the location of a runtime error.
type ErrRuntime struct {
	Address uint16 // Program counter when the cycle started.
	Cycle   int
	Err     error
}

func (err *ErrRuntime) Error() string {
	return f("pc %v cycle %d %v", internal.HexWord(err.Address), err.Cycle, err.Err)
}

func (err *ErrRuntime) Unwrap() error {
	return err.Err
}
