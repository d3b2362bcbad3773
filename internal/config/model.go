// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package config

import (
	"context"

	"github.com/zclconf/go-cty/cty"
)

const (
	// DefaultExtension is the file extension of DDL documents.
	DefaultExtension = ".ftd"
	// ProjectFileName is the project file looked up next to the documents.
	ProjectFileName = "ftd.hcl"
)

// Model is the unified, format-agnostic representation of a project
// configuration.
type Model struct {
	Package Package
	Output  Output
	// Variables are predeclared in the bag of every interpreted document.
	Variables map[string]cty.Value
	// Aliases are import aliases available to every document, alias → doc id.
	Aliases map[string]string
}

// Package locates the documents of a project.
type Package struct {
	Name      string
	Root      string
	Extension string
}

// Output controls where and how the interpretation result is written.
type Output struct {
	Path   string
	Pretty bool
}

// DefaultModel returns the configuration used when no project file exists.
func DefaultModel() *Model {
	return &Model{
		Package:   Package{Root: ".", Extension: DefaultExtension},
		Variables: map[string]cty.Value{},
		Aliases:   map[string]string{},
	}
}

// ProjectLoader reads a project file into a Model.
type ProjectLoader interface {
	Load(ctx context.Context, path string) (*Model, error)
}
