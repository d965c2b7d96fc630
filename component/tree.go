// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package component holds the named component tree of the bus8 computer.
//
// Nodes and their boolean controls live in a flat arena addressed by index.
// The tree is built once, validated by Seal, and from then on only the
// control values change.
package component

import (
	"slices"
	"strings"
)

// ID is the arena index of a component node.
type ID int

// ControlID is the arena index of a control line.
type ControlID int

const (
	ROOT       = ID(0)  // The root node of every tree.
	INVALID    = ID(-1) // Returned by structural changes on a sealed tree.
	NO_CONTROL = ControlID(-1)
)

type node struct {
	name     string
	parent   ID
	children []ID
	controls []ControlID
}

type control struct {
	name     string
	owner    ID
	asserted bool
}

// Tree is an arena of named components and their control lines.
type Tree struct {
	nodes    []node
	controls []control
	sealed   bool
	err      error
}

// NewTree creates a tree with a single root node.
func NewTree(name string) (tree *Tree) {
	tree = &Tree{
		nodes: []node{{name: name, parent: INVALID}},
	}
	return
}

// AddChild adds a named child component under parent.
func (tree *Tree) AddChild(parent ID, name string) (id ID) {
	if tree.sealed {
		tree.fail(ErrSealed)
		return INVALID
	}

	id = ID(len(tree.nodes))
	tree.nodes = append(tree.nodes, node{name: name, parent: parent})
	if tree.valid(parent) {
		tree.nodes[parent].children = append(tree.nodes[parent].children, id)
	}

	return
}

// AddControl adds a named control line to a component.
func (tree *Tree) AddControl(owner ID, name string) (cid ControlID) {
	if tree.sealed {
		tree.fail(ErrSealed)
		return NO_CONTROL
	}

	cid = ControlID(len(tree.controls))
	tree.controls = append(tree.controls, control{name: name, owner: owner})
	if tree.valid(owner) {
		tree.nodes[owner].controls = append(tree.nodes[owner].controls, cid)
	}

	return
}

func (tree *Tree) valid(id ID) bool {
	return id >= 0 && int(id) < len(tree.nodes)
}

func (tree *Tree) fail(err error) {
	if tree.err == nil {
		tree.err = err
	}
}

// Err returns the first structural change attempted after Seal.
func (tree *Tree) Err() error {
	return tree.err
}

// Sealed is true once the tree has been validated.
func (tree *Tree) Sealed() bool {
	return tree.sealed
}

// Seal validates the whole tree and freezes its shape.
func (tree *Tree) Seal() (err error) {
	if tree.sealed {
		return
	}

	for n := range tree.nodes {
		err = tree.validate(ID(n))
		if err != nil {
			return
		}
	}

	tree.sealed = true

	return
}

// validate checks one node's links and name uniqueness.
func (tree *Tree) validate(id ID) (err error) {
	nd := &tree.nodes[id]

	if id != ROOT {
		if !tree.valid(nd.parent) {
			err = &ErrValidation{Path: tree.Path(id), Reason: f("parent missing")}
			return
		}
		if !slices.Contains(tree.nodes[nd.parent].children, id) {
			err = &ErrValidation{Path: tree.Path(id), Reason: f("parent does not list child")}
			return
		}
	}

	if len(nd.name) == 0 || strings.Contains(nd.name, ".") {
		err = &ErrValidation{Path: tree.Path(id), Reason: f("invalid name '%v'", nd.name)}
		return
	}

	names := make(map[string]bool, len(nd.children)+len(nd.controls))
	for _, child := range nd.children {
		name := tree.nodes[child].name
		if tree.nodes[child].parent != id {
			err = &ErrValidation{Path: tree.Path(child), Reason: f("child does not refer to parent")}
			return
		}
		if names[name] {
			err = &ErrValidation{Path: tree.Path(id), Reason: f("duplicate child '%v'", name)}
			return
		}
		names[name] = true
	}

	for _, cid := range nd.controls {
		ctl := &tree.controls[cid]
		if ctl.owner != id {
			err = &ErrValidation{Path: tree.Path(id), Reason: f("control '%v' owner mismatch", ctl.name)}
			return
		}
		if len(ctl.name) == 0 || strings.Contains(ctl.name, ".") {
			err = &ErrValidation{Path: tree.Path(id), Reason: f("invalid control name '%v'", ctl.name)}
			return
		}
		if names[ctl.name] {
			err = &ErrValidation{Path: tree.Path(id), Reason: f("duplicate control '%v'", ctl.name)}
			return
		}
		names[ctl.name] = true
	}

	return
}

// Name of a component.
func (tree *Tree) Name(id ID) string {
	return tree.nodes[id].name
}

// Path returns the dotted path of a component, relative to the root.
func (tree *Tree) Path(id ID) string {
	var parts []string
	for id != ROOT && tree.valid(id) {
		parts = append(parts, tree.nodes[id].name)
		id = tree.nodes[id].parent
	}
	slices.Reverse(parts)
	return strings.Join(parts, ".")
}

// ControlPath returns the dotted path of a control line.
func (tree *Tree) ControlPath(cid ControlID) string {
	ctl := tree.controls[cid]
	path := tree.Path(ctl.owner)
	if len(path) == 0 {
		return ctl.name
	}
	return path + "." + ctl.name
}

// Children of a component, in insertion order.
func (tree *Tree) Children(id ID) []ID {
	return slices.Clone(tree.nodes[id].children)
}

// Child looks up a component by dotted path from the root.
func (tree *Tree) Child(path string) (id ID, err error) {
	id = ROOT
	if len(path) == 0 {
		return
	}

	for part := range strings.SplitSeq(path, ".") {
		next := INVALID
		for _, child := range tree.nodes[id].children {
			if tree.nodes[child].name == part {
				next = child
				break
			}
		}
		if next == INVALID {
			err = ErrChildNotFound(path)
			return INVALID, err
		}
		id = next
	}

	return
}

// Control looks up a control line by dotted path from the root.
func (tree *Tree) Control(path string) (cid ControlID, err error) {
	owner := ""
	name := path
	if dot := strings.LastIndex(path, "."); dot >= 0 {
		owner = path[:dot]
		name = path[dot+1:]
	}

	id, err := tree.Child(owner)
	if err != nil {
		return NO_CONTROL, err
	}

	for _, cid = range tree.nodes[id].controls {
		if tree.controls[cid].name == name {
			return
		}
	}

	return NO_CONTROL, ErrControlNotFound(path)
}

// Controls returns the dotted paths of every control line in the tree.
func (tree *Tree) Controls() (paths []string) {
	paths = make([]string, len(tree.controls))
	for n := range tree.controls {
		paths[n] = tree.ControlPath(ControlID(n))
	}
	return
}

// Asserted is the current value of a control line.
func (tree *Tree) Asserted(cid ControlID) bool {
	return tree.controls[cid].asserted
}

// Set asserts or clears a single control line.
func (tree *Tree) Set(cid ControlID, asserted bool) {
	tree.controls[cid].asserted = asserted
}

// AssertedControls returns the sorted paths of all asserted control lines.
func (tree *Tree) AssertedControls() (paths []string) {
	for n, ctl := range tree.controls {
		if ctl.asserted {
			paths = append(paths, tree.ControlPath(ControlID(n)))
		}
	}
	slices.Sort(paths)
	return
}

// SetControls clears every control in the tree, then asserts exactly the
// named ones. All names are resolved before any control changes.
func (tree *Tree) SetControls(paths ...string) (err error) {
	cids := make([]ControlID, len(paths))
	for n, path := range paths {
		cids[n], err = tree.Control(path)
		if err != nil {
			return
		}
	}

	for n := range tree.controls {
		tree.controls[n].asserted = false
	}

	for _, cid := range cids {
		tree.controls[cid].asserted = true
	}

	return
}
