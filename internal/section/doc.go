// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// Package section turns DDL source text into an ordered list of sections.
//
// A document is a sequence of sections:
//
//	-- <name>: <caption>
//	<key>: <value>
//	<key> if <expr>: <value>
//
//	<body>
//
//	--- <sub-name>: <caption>
//	<key>: <value>
//
// Headers end at the first blank line; everything up to the next section or
// subsection marker is the body. A leading `/` comments out a section,
// subsection, header or body and the node is kept (flagged) until
// RemoveComments drops it. Lines starting with `;` are discarded. A body line
// starting with `\` has the backslash removed, which lets a body contain text
// that would otherwise look like a marker.
//
// Header and caption values are stored verbatim: interpreting `$` references
// and `\` escapes in values is the interpreter's job.
package section
