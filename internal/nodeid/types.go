// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package nodeid

// Address is the structured form of a data id.
type Address struct {
	// Path is the child-index path from the root element.
	Path []int
	// External is set for elements held in an owner's external children.
	External *External
	// Dummy marks a placeholder element of an empty loop.
	Dummy bool
}

// External locates an element inside the external children of the owner at
// Address.Path. Path starts with the index of the external child and
// continues below it.
type External struct {
	Slot string
	Path []int
}

// New returns the address of the element at path.
func New(path ...int) *Address {
	return &Address{Path: append([]int(nil), path...)}
}

// Child returns the address of the i-th child of a. Children of dummy
// elements are dummies too.
func (a *Address) Child(i int) *Address {
	if a.External != nil {
		return &Address{
			Path:     extend(a.Path),
			External: &External{Slot: a.External.Slot, Path: extend(a.External.Path, i)},
			Dummy:    a.Dummy,
		}
	}
	return &Address{Path: extend(a.Path, i), Dummy: a.Dummy}
}

// Slot returns the address of the i-th external child held by a in slot.
func (a *Address) Slot(slot string, i int) *Address {
	return &Address{Path: extend(a.Path), External: &External{Slot: slot, Path: []int{i}}}
}

func extend(path []int, more ...int) []int {
	out := make([]int, len(path), len(path)+len(more))
	copy(out, path)
	return append(out, more...)
}
