// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

// Package hcl provides the concrete HCL implementation of the project
// configuration. It parses the optional `ftd.hcl` file, decodes its blocks
// with gohcl and translates them into the format-agnostic config.Model.
//
// Variable values are ordinary HCL expressions evaluated against a small
// context: environment variables are available as `env.NAME` and a handful
// of cty standard library functions (upper, lower, join, format, concat)
// can be called.
package hcl
