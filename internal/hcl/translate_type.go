// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package hcl

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/specialistvlad/ftdgo/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
)

// primitiveTypes are the type keywords a variable block may name. Each has a
// DDL counterpart: string, integer or decimal, boolean, and anything.
var primitiveTypes = map[string]cty.Type{
	"string": cty.String,
	"number": cty.Number,
	"bool":   cty.Bool,
	"any":    cty.DynamicPseudoType,
}

// collectionTypes build the element-typed collections, which become DDL
// lists and objects.
var collectionTypes = map[string]func(cty.Type) cty.Type{
	"list": cty.List,
	"set":  cty.Set,
	"map":  cty.Map,
}

// typeExprToCtyType reads the `type` attribute of a variable block, such as
// `string` or `list(number)`, without evaluating it.
func typeExprToCtyType(ctx context.Context, expr hcl.Expression) (cty.Type, error) {
	logger := ctxlog.FromContext(ctx)

	switch e := expr.(type) {
	case *hclsyntax.ScopeTraversalExpr:
		if len(e.Traversal) != 1 {
			return cty.NilType, fmt.Errorf("invalid type %q", traversalString(e.Traversal))
		}
		name := e.Traversal.RootName()
		t, ok := primitiveTypes[name]
		if !ok {
			return cty.NilType, fmt.Errorf("unknown type %q", name)
		}
		logger.Debug("Parsed primitive type.", "type", name)
		return t, nil

	case *hclsyntax.FunctionCallExpr:
		build, ok := collectionTypes[e.Name]
		if !ok {
			return cty.NilType, fmt.Errorf("unknown type constructor %q", e.Name)
		}
		if len(e.Args) != 1 {
			return cty.NilType, fmt.Errorf("%s() takes one element type, got %d", e.Name, len(e.Args))
		}
		elem, err := typeExprToCtyType(ctx, e.Args[0])
		if err != nil {
			return cty.NilType, err
		}
		if elem == cty.DynamicPseudoType {
			return cty.NilType, fmt.Errorf("%s(any) is not supported; omit the type instead", e.Name)
		}
		t := build(elem)
		logger.Debug("Parsed collection type.", "type", t.FriendlyName())
		return t, nil
	}
	return cty.NilType, fmt.Errorf("unsupported type expression %T", expr)
}

func traversalString(tr hcl.Traversal) string {
	return string(hclwrite.TokensForTraversal(tr).Bytes())
}
