package component

import (
	"errors"

	"github.com/ezrec/bus8/translate"
)

var f = translate.From

var (
	ErrSealed = errors.New(f("component tree sealed"))
)

type ErrChildNotFound string

func (err ErrChildNotFound) Error() string {
	return f("child %v not found", string(err))
}

type ErrControlNotFound string

func (err ErrControlNotFound) Error() string {
	return f("control %v not found", string(err))
}

// ErrValidation is a structural defect found while sealing a tree.
type ErrValidation struct {
	Path   string
	Reason string
}

func (err *ErrValidation) Error() string {
	return f("component '%v': %v", err.Path, err.Reason)
}
