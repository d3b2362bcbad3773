// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

// Package registry provides a named registry of built-in definitions.
//
// The interpreter keeps its kernel components (ftd.text, ftd.column, ...)
// in a Registry. Definitions are registered once during start-up; a
// duplicate name is a programming error and panics. After registration the
// registry is validated so a kernel with an inconsistent argument table is
// caught before any document is interpreted.
package registry
