// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package ftd

import (
	"testing"

	"github.com/specialistvlad/ftdgo/internal/ftderr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBooleanFromExpr(t *testing.T) {
	doc := newTestDoc()
	require.NoError(t, doc.insert(1, &Variable{Name: "foo#dark", Kind: BooleanKind(), Value: LiteralPV(BooleanValue(true))}))
	require.NoError(t, doc.insert(1, &Variable{Name: "foo#count", Kind: IntegerKind(), Value: LiteralPV(IntegerValue(3))}))
	require.NoError(t, doc.insert(1, &Variable{Name: "foo#nick", Kind: OptionalKind(StringKind()), Value: LiteralPV(NoneValue(StringKind()))}))
	require.NoError(t, doc.insert(1, &Variable{Name: "foo#tags", Kind: ListKind(StringKind()), Value: LiteralPV(ListValue(StringKind(), nil))}))

	testCases := []struct {
		expr     string
		want     bool
		wantCond *Condition
	}{
		{expr: "true", want: true},
		{expr: "dark", want: true, wantCond: &Condition{Variable: "foo#dark", Value: "true"}},
		{expr: "not $dark", want: false, wantCond: &Condition{Variable: "foo#dark", Value: "false"}},
		{expr: "$count == 3", want: true, wantCond: &Condition{Variable: "foo#count", Value: "3"}},
		{expr: "$count != 3", want: false, wantCond: &Condition{Variable: "foo#count", Value: "3", Negated: true}},
		{expr: "$nick is null", want: true, wantCond: &Condition{Variable: "foo#nick", Value: "$IsNull$"}},
		{expr: "$nick is not null", want: false, wantCond: &Condition{Variable: "foo#nick", Value: "$IsNotNull$"}},
		{expr: "$tags is empty", want: true, wantCond: &Condition{Variable: "foo#tags", Value: "$IsEmpty$"}},
	}

	for _, tc := range testCases {
		t.Run(tc.expr, func(t *testing.T) {
			b, err := doc.BooleanFromExpr(tc.expr, exprContext{line: 1})
			require.NoError(t, err)

			got, err := b.Eval(doc, Scope{}, 1)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)

			cond, err := b.ToCondition(doc, 1)
			require.NoError(t, err)
			assert.Equal(t, tc.wantCond, cond)
			assert.True(t, b.IsConstant())
		})
	}
}

func TestBooleanFromExpr_ReferenceComparand(t *testing.T) {
	doc := newTestDoc()
	require.NoError(t, doc.insert(1, &Variable{Name: "foo#count", Kind: IntegerKind(), Value: LiteralPV(IntegerValue(3))}))
	require.NoError(t, doc.insert(1, &Variable{Name: "foo#limit", Kind: IntegerKind(), Value: LiteralPV(IntegerValue(3))}))
	require.NoError(t, doc.insert(1, &Variable{Name: "foo#label", Kind: StringKind(), Value: LiteralPV(StringValue("3", SourceHeader))}))

	b, err := doc.BooleanFromExpr("$count == $limit", exprContext{line: 1})
	require.NoError(t, err)
	got, err := b.Eval(doc, Scope{}, 1)
	require.NoError(t, err)
	assert.True(t, got)

	_, err = doc.BooleanFromExpr("$count != $label", exprContext{line: 1})
	require.Error(t, err)
	assert.True(t, ftderr.Is(err, ftderr.TypeMismatch), "got %v", err)
}

func TestBoolean_ArgumentOperands(t *testing.T) {
	doc := newTestDoc()
	ec := exprContext{args: argKinds{"flag": BooleanKind(), "@open": BooleanKind()}, line: 1}

	b, err := doc.BooleanFromExpr("$flag", ec)
	require.NoError(t, err)
	assert.False(t, b.IsConstant())
	assert.True(t, b.IsArgConstant())

	local, err := doc.BooleanFromExpr("$@open", ec)
	require.NoError(t, err)
	assert.False(t, local.IsArgConstant())

	bound, err := local.Substitute(doc, Scope{Args: map[string]Binding{"@open": {Value: BooleanValue(false), Reference: "open@0"}}}, 1)
	require.NoError(t, err)
	assert.True(t, bound.IsConstant())
	assert.False(t, bound.SetNull(doc, 1), "locals can change at runtime")
}
