// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package hcl

import (
	"sort"

	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/specialistvlad/ftdgo/internal/config"
	"github.com/zclconf/go-cty/cty"
)

// Encode renders m as a project file that Parse reads back into an
// equivalent model. Variables and aliases are written in name order.
func Encode(m *config.Model) []byte {
	f := hclwrite.NewEmptyFile()
	body := f.Body()

	pkg := body.AppendNewBlock("package", []string{m.Package.Name}).Body()
	pkg.SetAttributeValue("root", cty.StringVal(m.Package.Root))
	pkg.SetAttributeValue("extension", cty.StringVal(m.Package.Extension))

	body.AppendNewline()
	out := body.AppendNewBlock("output", nil).Body()
	if m.Output.Path != "" {
		out.SetAttributeValue("path", cty.StringVal(m.Output.Path))
	}
	out.SetAttributeValue("pretty", cty.BoolVal(m.Output.Pretty))

	for _, name := range sortedNames(m.Variables) {
		body.AppendNewline()
		v := body.AppendNewBlock("variable", []string{name}).Body()
		v.SetAttributeValue("value", m.Variables[name])
	}
	for _, name := range sortedNames(m.Aliases) {
		body.AppendNewline()
		a := body.AppendNewBlock("alias", []string{name}).Body()
		a.SetAttributeValue("document", cty.StringVal(m.Aliases[name]))
	}
	return f.Bytes()
}

func sortedNames[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
