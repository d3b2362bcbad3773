// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

// This file translates the decoded HCL blocks into the format-agnostic
// configuration model.

package hcl

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/ftdgo/internal/config"
	"github.com/specialistvlad/ftdgo/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

func translatePackage(b *packageBlock, out *config.Package, base string) {
	if b == nil {
		out.Root = base
		return
	}
	out.Name = b.Name
	if b.Root != nil {
		out.Root = resolvePath(base, *b.Root)
	} else {
		out.Root = base
	}
	if b.Extension != nil {
		out.Extension = *b.Extension
	}
}

func translateOutput(b *outputBlock, out *config.Output, base string) {
	if b == nil {
		return
	}
	if b.Path != nil && *b.Path != "" {
		out.Path = resolvePath(base, *b.Path)
	}
	if b.Pretty != nil {
		out.Pretty = *b.Pretty
	}
}

func resolvePath(base, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

// translateVariable evaluates the value of a variable block and converts it
// to its declared type, if any.
func translateVariable(ctx context.Context, v *variableBlock, evalCtx *hcl.EvalContext) (cty.Value, error) {
	logger := ctxlog.FromContext(ctx)

	want := cty.DynamicPseudoType
	if isExprDefined(ctx, v.Type, "type") {
		t, err := typeExprToCtyType(ctx, v.Type)
		if err != nil {
			return cty.NilVal, err
		}
		want = t
	}

	val, diags := v.Value.Value(evalCtx)
	if diags.HasErrors() {
		return cty.NilVal, diags
	}
	if !val.IsWhollyKnown() {
		return cty.NilVal, fmt.Errorf("value is not known")
	}
	if want == cty.DynamicPseudoType {
		return val, nil
	}

	converted, err := convert.Convert(val, want)
	if err != nil {
		return cty.NilVal, fmt.Errorf("cannot convert %s to required type %s: %w", val.Type().FriendlyName(), want.FriendlyName(), err)
	}
	if !val.Type().Equals(converted.Type()) {
		logger.Debug("Implicitly converted variable type.",
			"variable", v.Name,
			"from", val.Type().FriendlyName(),
			"to", converted.Type().FriendlyName(),
		)
	}
	return converted, nil
}

// isExprDefined reports whether an optional attribute was written in the
// file. gohcl fills omitted optional expressions with a zero-width
// placeholder, so a nil check is not enough.
func isExprDefined(ctx context.Context, expr hcl.Expression, attrName string) bool {
	if expr == nil {
		return false
	}
	r := expr.Range()
	defined := r.End.Byte > r.Start.Byte
	ctxlog.FromContext(ctx).Debug("Checking if HCL attribute was explicitly defined.",
		"attribute", attrName,
		"hcl_range", r.String(),
		"is_defined", defined,
	)
	return defined
}
