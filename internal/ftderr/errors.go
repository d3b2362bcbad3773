// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package ftderr

import (
	"errors"
	"fmt"

	"github.com/hashicorp/hcl/v2"
)

// Kind is the semantic category of an Error.
type Kind int

const (
	// ParseError is a malformed section, header, body or markup region.
	ParseError Kind = iota
	// NotFound is a name absent from the bag or the headers.
	NotFound
	// UnknownData is a header key not declared by the component.
	UnknownData
	// MoreThanOneSubSection is an ambiguous single-subsection lookup.
	MoreThanOneSubSection
	// TypeMismatch is a kind check that failed.
	TypeMismatch
	// MissingData is a required argument without any value source.
	MissingData
	// ForbiddenUsage is a construct used where it is not allowed.
	ForbiddenUsage
	// InvalidInput is a bad CLI flag or project configuration value.
	InvalidInput
)

var kindNames = map[Kind]string{
	ParseError:            "ParseError",
	NotFound:              "NotFound",
	UnknownData:           "UnknownData",
	MoreThanOneSubSection: "MoreThanOneSubSection",
	TypeMismatch:          "TypeMismatch",
	MissingData:           "MissingData",
	ForbiddenUsage:        "ForbiddenUsage",
	InvalidInput:          "InvalidInput",
}

// String returns the category name.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Error is a located interpreter error.
type Error struct {
	Kind    Kind
	Message string
	DocID   string
	Line    int
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s (%s:%d)", e.Kind, e.Message, e.DocID, e.Line)
}

// Diagnostic converts the error into an HCL diagnostic so that it can be
// printed with hcl.NewDiagnosticTextWriter.
func (e *Error) Diagnostic() *hcl.Diagnostic {
	pos := hcl.Pos{Line: e.Line, Column: 1}
	return &hcl.Diagnostic{
		Severity: hcl.DiagError,
		Summary:  e.Kind.String(),
		Detail:   e.Message,
		Subject: &hcl.Range{
			Filename: e.DocID,
			Start:    pos,
			End:      pos,
		},
	}
}

func newError(kind Kind, msg, docID string, line int) *Error {
	return &Error{Kind: kind, Message: msg, DocID: docID, Line: line}
}

// Parse returns a ParseError.
func Parse(msg, docID string, line int) error {
	return newError(ParseError, msg, docID, line)
}

// NotFoundf returns a NotFound error with a formatted message.
func NotFoundf(docID string, line int, format string, args ...any) error {
	return newError(NotFound, fmt.Sprintf(format, args...), docID, line)
}

// Parsef returns a ParseError with a formatted message.
func Parsef(docID string, line int, format string, args ...any) error {
	return newError(ParseError, fmt.Sprintf(format, args...), docID, line)
}

// UnknownDataf returns an UnknownData error.
func UnknownDataf(docID string, line int, format string, args ...any) error {
	return newError(UnknownData, fmt.Sprintf(format, args...), docID, line)
}

// MoreThanOnef returns a MoreThanOneSubSection error.
func MoreThanOnef(docID string, line int, format string, args ...any) error {
	return newError(MoreThanOneSubSection, fmt.Sprintf(format, args...), docID, line)
}

// TypeMismatchf returns a TypeMismatch error.
func TypeMismatchf(docID string, line int, format string, args ...any) error {
	return newError(TypeMismatch, fmt.Sprintf(format, args...), docID, line)
}

// MissingDataf returns a MissingData error.
func MissingDataf(docID string, line int, format string, args ...any) error {
	return newError(MissingData, fmt.Sprintf(format, args...), docID, line)
}

// Forbiddenf returns a ForbiddenUsage error.
func Forbiddenf(docID string, line int, format string, args ...any) error {
	return newError(ForbiddenUsage, fmt.Sprintf(format, args...), docID, line)
}

// InvalidInputf returns an InvalidInput error. It is not tied to a document
// line, so DocID names the offending source (a flag or a config file).
func InvalidInputf(source string, format string, args ...any) error {
	return newError(InvalidInput, fmt.Sprintf(format, args...), source, 0)
}

// Is reports whether err, or any error it wraps, is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// Diagnostics converts err into HCL diagnostics. Errors that are not *Error
// become a single diagnostic without a source range.
func Diagnostics(err error) hcl.Diagnostics {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return hcl.Diagnostics{e.Diagnostic()}
	}
	var diags hcl.Diagnostics
	if errors.As(err, &diags) {
		return diags
	}
	return hcl.Diagnostics{{
		Severity: hcl.DiagError,
		Summary:  "Error",
		Detail:   err.Error(),
	}}
}
