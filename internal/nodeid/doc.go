// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

/*
Package nodeid provides a structured representation for the data ids of
elements in an interpreted document tree.

The canonical format is the comma-separated child-index path of the element,
e.g. `0,2,1`. The root element is `main`. Copies of elements that were placed
into an open container of a component are additionally namespaced by the
owner's path and the slot id: `0,1:inner-external:3`. Placeholder elements
created for empty loops carry a `:dummy` suffix.

This package centralizes all formatting and parsing of these ids so the
interpreter, its tests and any runtime consuming the output agree on them.
*/
package nodeid
