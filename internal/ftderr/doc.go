// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// Package ftderr defines the structured error taxonomy shared by the section
// parser and the interpreter.
//
// Every error produced while reading or interpreting a document carries the
// document identifier and the line number it refers to. Errors are never
// recovered inside the interpreter; they surface to the caller unchanged and
// can be rendered as HCL diagnostics by the CLI.
package ftderr
