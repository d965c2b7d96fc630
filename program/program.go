// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package program assembles symbolic programs into byte images.
//
// A Program is an immutable value: every builder method returns a new
// Program and leaves the receiver untouched. References to labels may be
// added before the label is defined; they are only resolved by Output.
package program

import (
	"maps"
	"slices"
)

// MEMORY_SIZE is the size of the address space.
const MEMORY_SIZE = 0x10000

// Image is a sparse memory image.
type Image map[uint16]byte

// Entry is anything that can be added to a Program.
type Entry interface {
	Apply(prog Program) Program
}

// Statement is a pure transformation of a Program.
type Statement func(prog Program) Program

var _ Entry = Statement(nil)

// Apply the statement.
func (stmt Statement) Apply(prog Program) Program {
	return stmt(prog)
}

// Reference is a fixed size, possibly label dependent, unit of output.
type Reference interface {
	Entry
	// Size in bytes of the resolved reference.
	Size() int
	// Resolve the reference when placed at address.
	Resolve(prog Program, address uint16) (data []byte, err error)
}

// Label names the current write address when used as an Entry.
type Label string

var _ Entry = Label("")

// Apply defines the label at the current address.
func (label Label) Apply(prog Program) Program {
	return prog.WithLabel(string(label))
}

// Program is a set of references at addresses, a label table and a cursor.
type Program struct {
	data   map[uint16]Reference
	labels map[string]uint16
	next   int // One past the last written byte, up to MEMORY_SIZE.
	err    error
}

// New returns an empty Program with the cursor at 0x0000.
func New() Program {
	return Program{}
}

// Build returns a new Program with the entries applied in order.
func Build(entries ...Entry) Program {
	return New().WithEntries(entries...)
}

func (prog Program) clone() Program {
	if prog.data == nil {
		prog.data = map[uint16]Reference{}
	} else {
		prog.data = maps.Clone(prog.data)
	}
	if prog.labels == nil {
		prog.labels = map[string]uint16{}
	} else {
		prog.labels = maps.Clone(prog.labels)
	}
	return prog
}

// Next is the current write address.
func (prog Program) Next() uint16 {
	return uint16(prog.next)
}

// Err is the first error recorded while building.
func (prog Program) Err() error {
	return prog.err
}

// Data returns a copy of the unresolved references by address.
func (prog Program) Data() map[uint16]Reference {
	return maps.Clone(prog.data)
}

// Labels returns a copy of the label table.
func (prog Program) Labels() map[string]uint16 {
	return maps.Clone(prog.labels)
}

// Label returns the address of a label.
func (prog Program) Label(name string) (address uint16, err error) {
	address, ok := prog.labels[name]
	if !ok {
		err = ErrLabelNotFound(name)
	}
	return
}

// WithError records a build error. Only the first error is kept.
func (prog Program) WithError(err error) Program {
	if prog.err == nil && err != nil {
		prog = prog.clone()
		prog.err = err
	}
	return prog
}

// At moves the cursor to an address.
func (prog Program) At(address uint16) Program {
	prog = prog.clone()
	prog.next = int(address)
	return prog
}

// AtLabel moves the cursor to an already defined label.
func (prog Program) AtLabel(name string) Program {
	address, err := prog.Label(name)
	if err != nil {
		return prog.WithError(err)
	}
	return prog.At(address)
}

// WithValueAt places a reference at an address without moving the cursor.
// A reference running past the end of memory records ErrAddressOverflow.
func (prog Program) WithValueAt(address uint16, ref Reference) Program {
	if int(address)+ref.Size() > MEMORY_SIZE {
		return prog.WithError(&ErrAddressOverflow{Address: int(address), Size: ref.Size()})
	}
	prog = prog.clone()
	prog.data[address] = ref
	return prog
}

// WithValue places a reference at the cursor and advances past it.
func (prog Program) WithValue(ref Reference) Program {
	if prog.next+ref.Size() > MEMORY_SIZE {
		return prog.WithError(&ErrAddressOverflow{Address: prog.next, Size: ref.Size()})
	}
	prog = prog.WithValueAt(uint16(prog.next), ref)
	prog.next += ref.Size()
	return prog
}

// WithValues places each reference in turn.
func (prog Program) WithValues(refs ...Reference) Program {
	for _, ref := range refs {
		prog = prog.WithValue(ref)
	}
	return prog
}

// WithLabelAt defines a label at an address.
func (prog Program) WithLabelAt(address uint16, name string) Program {
	prog = prog.clone()
	prog.labels[name] = address
	return prog
}

// WithLabel defines a label at the cursor.
func (prog Program) WithLabel(name string) Program {
	if prog.next >= MEMORY_SIZE {
		return prog.WithError(&ErrAddressOverflow{Address: prog.next})
	}
	return prog.WithLabelAt(uint16(prog.next), name)
}

// WithStatement applies a statement.
func (prog Program) WithStatement(stmt Statement) Program {
	return stmt(prog)
}

// WithEntry applies an entry.
func (prog Program) WithEntry(entry Entry) Program {
	switch it := entry.(type) {
	case Reference:
		return prog.WithValue(it)
	case Statement:
		return prog.WithStatement(it)
	default:
		return entry.Apply(prog)
	}
}

// WithEntries applies entries in order.
func (prog Program) WithEntries(entries ...Entry) Program {
	for _, entry := range entries {
		prog = prog.WithEntry(entry)
	}
	return prog
}

// Output resolves every reference, in address order, into an image.
func (prog Program) Output() (image Image, err error) {
	if prog.err != nil {
		err = prog.err
		return
	}

	image = Image{}
	for _, address := range slices.Sorted(maps.Keys(prog.data)) {
		var data []byte
		data, err = prog.data[address].Resolve(prog, address)
		if err != nil {
			image = nil
			return
		}
		for n, value := range data {
			image[address+uint16(n)] = value
		}
	}

	return
}
