// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// Package ftd is the interpreter and tree constructor for DDL documents.
//
// # Pipeline
//
// A document goes through the following passes, in order:
//
//  1. Sections: the source is split into sections by package section.
//  2. Declarations: imports, records, or-types, variables and components are
//     compiled in document order and inserted into the bag, the symbol table
//     shared by a document and everything it imports.
//  3. Instructions: top-level invocations are compiled into instructions.
//  4. Execution: the instruction stream is materialised into an Element tree
//     rooted at a Column. Nested invocations, `container:` cursor changes,
//     `$loop$` expansion, open-container slots and markup are handled here.
//  5. Post-pass: heading regions are re-nested, data ids are assigned and the
//     dependency maps used by a runtime for reactivity are extracted.
//
// # Values
//
// Kind is the type of a value. PropertyValue is the unresolved form of a
// value (a literal, a reference to a bag entry, or a component argument) and
// Value is its resolved form. A Property is the compiled binding of one
// component argument: a default PropertyValue plus conditional overrides.
//
// The interpreter is synchronous and single threaded. The bag is written only
// while declarations are compiled; execution and the post-pass only read it,
// with the exception of Component.Invocations and the per-instance locals.
package ftd
