// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package ftd

import (
	"strings"

	"github.com/specialistvlad/ftdgo/internal/ftderr"
)

// BooleanOp tags the form of a Boolean.
type BooleanOp int

const (
	BoolLiteral BooleanOp = iota
	BoolEqual
	BoolNotEqual
	BoolIsNull
	BoolIsNotNull
	BoolIsEmpty
	BoolIsNotEmpty
)

// Boolean is a compiled condition expression.
type Boolean struct {
	Op      BooleanOp
	Literal bool
	Left    PropertyValue
	Right   PropertyValue
}

var suffixOps = []struct {
	suffix string
	op     BooleanOp
}{
	{" is not null", BoolIsNotNull},
	{" is null", BoolIsNull},
	{" is not empty", BoolIsNotEmpty},
	{" is empty", BoolIsEmpty},
}

// BooleanFromExpr compiles a condition such as `$x == 10`, `$name is null`,
// `present` or `not $dark-mode`. A bare operand must be boolean.
func (d *Doc) BooleanFromExpr(expr string, ec exprContext) (Boolean, error) {
	expr = strings.TrimSpace(expr)
	switch expr {
	case "true":
		return Boolean{Op: BoolLiteral, Literal: true}, nil
	case "false":
		return Boolean{Op: BoolLiteral, Literal: false}, nil
	case "":
		return Boolean{}, ftderr.Parsef(d.ID, ec.line, "empty condition")
	}

	for _, s := range suffixOps {
		if !strings.HasSuffix(expr, s.suffix) {
			continue
		}
		left, err := d.operand(strings.TrimSuffix(expr, s.suffix), ec)
		if err != nil {
			return Boolean{}, err
		}
		if (s.op == BoolIsNull || s.op == BoolIsNotNull) && !left.GetKind().IsOptional() {
			return Boolean{}, ftderr.TypeMismatchf(d.ID, ec.line, "%q is not optional and can never be null", expr)
		}
		return Boolean{Op: s.op, Left: left}, nil
	}

	for _, cmp := range []struct {
		sep string
		op  BooleanOp
	}{{" != ", BoolNotEqual}, {" == ", BoolEqual}} {
		l, r, found := strings.Cut(expr, cmp.sep)
		if !found {
			continue
		}
		left, err := d.operand(l, ec)
		if err != nil {
			return Boolean{}, err
		}
		right, err := d.comparand(r, left.GetKind(), ec)
		if err != nil {
			return Boolean{}, err
		}
		return Boolean{Op: cmp.op, Left: left, Right: right}, nil
	}

	want := true
	if rest, found := strings.CutPrefix(expr, "not "); found {
		want = false
		expr = rest
	}
	left, err := d.operand(expr, ec)
	if err != nil {
		return Boolean{}, err
	}
	if !left.GetKind().IsBoolean() {
		return Boolean{}, ftderr.TypeMismatchf(d.ID, ec.line, "condition %q is %s, expected boolean", expr, left.GetKind())
	}
	return Boolean{Op: BoolEqual, Left: left, Right: LiteralPV(BooleanValue(want))}, nil
}

// operand resolves the reference side of a condition; the leading `$` is
// optional.
func (d *Doc) operand(raw string, ec exprContext) (PropertyValue, error) {
	raw = strings.TrimPrefix(strings.TrimSpace(raw), "$")
	if raw == "" {
		return PropertyValue{}, ftderr.Parsef(d.ID, ec.line, "missing operand in condition")
	}
	return d.resolveReference(raw, ec)
}

// comparand is the right hand side of a comparison: a `$reference` or a
// literal of the left side's kind.
func (d *Doc) comparand(raw string, k Kind, ec exprContext) (PropertyValue, error) {
	raw = strings.TrimSpace(raw)
	if ref, found := strings.CutPrefix(raw, "$"); found {
		right, err := d.resolveReference(ref, ec)
		if err != nil {
			return PropertyValue{}, err
		}
		if !k.IsSameAs(right.GetKind()) {
			return PropertyValue{}, ftderr.TypeMismatchf(d.ID, ec.line, "cannot compare %s with %s %q", k, right.GetKind(), raw)
		}
		return right, nil
	}
	v, err := d.parseLiteral(unescape(raw), k.Inner(), SourceHeader, ec.line)
	if err != nil {
		return PropertyValue{}, err
	}
	return LiteralPV(v), nil
}

// Eval evaluates b.
func (b Boolean) Eval(d *Doc, s Scope, line int) (bool, error) {
	if b.Op == BoolLiteral {
		return b.Literal, nil
	}
	left, err := b.Left.Resolve(d, s, line)
	if err != nil {
		return false, err
	}
	switch b.Op {
	case BoolIsNull:
		return left.IsNull(), nil
	case BoolIsNotNull:
		return !left.IsNull(), nil
	case BoolIsEmpty:
		return left.IsEmpty(), nil
	case BoolIsNotEmpty:
		return !left.IsEmpty(), nil
	}
	right, err := b.Right.Resolve(d, s, line)
	if err != nil {
		return false, err
	}
	if b.Op == BoolNotEqual {
		return !left.Equal(right), nil
	}
	return left.Equal(right), nil
}

func (b Boolean) operands() []PropertyValue {
	switch b.Op {
	case BoolLiteral:
		return nil
	case BoolEqual, BoolNotEqual:
		return []PropertyValue{b.Left, b.Right}
	}
	return []PropertyValue{b.Left}
}

// IsConstant reports whether b depends on no component argument.
func (b Boolean) IsConstant() bool {
	for _, pv := range b.operands() {
		if pv.Type == PVVariable {
			return false
		}
	}
	return true
}

// IsArgConstant reports whether b depends on no local variable or loop item.
func (b Boolean) IsArgConstant() bool {
	for _, pv := range b.operands() {
		if pv.Type != PVVariable {
			continue
		}
		root, _ := splitPath(pv.Name)
		if strings.HasPrefix(root, "@") || root == loopVar {
			return false
		}
	}
	return true
}

// SetNull reports whether an element guarded by b may be replaced with Null
// when b is false. It may not when b depends on a local or on a variable
// flagged `$always-include$`, because a runtime can still flip it.
func (b Boolean) SetNull(d *Doc, line int) bool {
	if !b.IsArgConstant() {
		return false
	}
	for _, name := range b.References() {
		if isLocalKey(name) {
			return false
		}
		v, err := d.GetVariable(line, RootName(name))
		if err == nil && v.Flags.AlwaysInclude {
			return false
		}
	}
	return true
}

// References lists the bag paths b reads.
func (b Boolean) References() []string {
	var out []string
	for _, pv := range b.operands() {
		if pv.Type == PVReference {
			out = append(out, pv.Name)
		}
	}
	return out
}

// Substitute replaces argument operands with the bindings of s.
func (b Boolean) Substitute(d *Doc, s Scope, line int) (Boolean, error) {
	if b.Op == BoolLiteral {
		return b, nil
	}
	left, err := b.Left.Substitute(d, s, line)
	if err != nil {
		return Boolean{}, err
	}
	b.Left = left
	if b.Op == BoolEqual || b.Op == BoolNotEqual {
		right, err := b.Right.Substitute(d, s, line)
		if err != nil {
			return Boolean{}, err
		}
		b.Right = right
	}
	return b, nil
}

// Sentinel values of runtime conditions on null and empty checks.
const (
	condIsNull     = "$IsNull$"
	condIsNotNull  = "$IsNotNull$"
	condIsEmpty    = "$IsEmpty$"
	condIsNotEmpty = "$IsNotEmpty$"
)

// ToCondition converts b into the runtime form {variable, value}. It returns
// nil when b reads no bag entry and so can never change at runtime.
func (b Boolean) ToCondition(d *Doc, line int) (*Condition, error) {
	switch b.Op {
	case BoolLiteral:
		return nil, nil
	case BoolIsNull, BoolIsNotNull, BoolIsEmpty, BoolIsNotEmpty:
		if b.Left.Type != PVReference {
			return nil, nil
		}
		value := map[BooleanOp]string{
			BoolIsNull:     condIsNull,
			BoolIsNotNull:  condIsNotNull,
			BoolIsEmpty:    condIsEmpty,
			BoolIsNotEmpty: condIsNotEmpty,
		}[b.Op]
		return &Condition{Variable: b.Left.Name, Value: value}, nil
	}
	ref, other := b.Left, b.Right
	if ref.Type != PVReference {
		ref, other = other, ref
	}
	if ref.Type != PVReference {
		return nil, nil
	}
	v, err := other.Resolve(d, Scope{}, line)
	if err != nil {
		return nil, err
	}
	s, ok := v.ToString()
	if !ok {
		if !v.IsNull() {
			return nil, ftderr.TypeMismatchf(d.ID, line, "cannot compare %q with a composite value at runtime", ref.Name)
		}
		s = condIsNull
	}
	return &Condition{Variable: ref.Name, Value: s, Negated: b.Op == BoolNotEqual}, nil
}
