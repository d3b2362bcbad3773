// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package hcl

import "github.com/hashicorp/hcl/v2"

// fileRoot is the top level of a project file.
type fileRoot struct {
	Package   *packageBlock    `hcl:"package,block"`
	Output    *outputBlock     `hcl:"output,block"`
	Variables []*variableBlock `hcl:"variable,block"`
	Aliases   []*aliasBlock    `hcl:"alias,block"`
}

type packageBlock struct {
	Name      string  `hcl:"name,label"`
	Root      *string `hcl:"root,optional"`
	Extension *string `hcl:"extension,optional"`
}

type outputBlock struct {
	Path   *string `hcl:"path,optional"`
	Pretty *bool   `hcl:"pretty,optional"`
}

// variableBlock predeclares a variable in every interpreted document. Type
// is an optional type constraint such as `string` or `list(number)`.
type variableBlock struct {
	Name        string         `hcl:"name,label"`
	Type        hcl.Expression `hcl:"type,optional"`
	Value       hcl.Expression `hcl:"value"`
	Description *string        `hcl:"description,optional"`
}

type aliasBlock struct {
	Name     string `hcl:"name,label"`
	Document string `hcl:"document"`
}
