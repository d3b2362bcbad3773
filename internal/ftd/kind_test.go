// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package ftd

import (
	"testing"

	"github.com/specialistvlad/ftdgo/internal/ftderr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDoc() *Doc {
	return NewDoc(testDocID, make(map[string]Thing), make(map[string]*Variable))
}

func TestKindFromString(t *testing.T) {
	doc := newTestDoc()
	require.NoError(t, doc.insert(1, &Record{Name: "foo#person", Fields: map[string]Kind{}}))
	require.NoError(t, doc.insert(1, &OrType{Name: "foo#lead", Variants: []*Record{{Name: "foo#lead.individual"}}}))

	testCases := []struct {
		expr string
		want string
	}{
		{expr: "string", want: "string"},
		{expr: "caption", want: "caption"},
		{expr: "body or caption", want: "caption or body"},
		{expr: "integer", want: "integer"},
		{expr: "optional boolean", want: "optional boolean"},
		{expr: "integer list", want: "integer list"},
		{expr: "list decimal", want: "decimal list"},
		{expr: "optional person list", want: "optional foo#person list"},
		{expr: "string map", want: "string map"},
		{expr: "person", want: "foo#person"},
		{expr: "lead", want: "foo#lead"},
		{expr: "lead.individual", want: "foo#lead.individual"},
		{expr: "ftd.ui", want: "ftd.ui"},
	}
	for _, tc := range testCases {
		t.Run(tc.expr, func(t *testing.T) {
			k, err := doc.KindFromString(tc.expr, 1)
			require.NoError(t, err)
			assert.Equal(t, tc.want, k.String())
		})
	}
}

func TestKindFromString_Errors(t *testing.T) {
	doc := newTestDoc()
	testCases := []struct {
		expr     string
		wantKind ftderr.Kind
	}{
		{expr: "", wantKind: ftderr.ParseError},
		{expr: "string or integer", wantKind: ftderr.ForbiddenUsage},
		{expr: "inherit", wantKind: ftderr.ForbiddenUsage},
		{expr: "unknown-thing", wantKind: ftderr.NotFound},
		{expr: "two words", wantKind: ftderr.ParseError},
	}
	for _, tc := range testCases {
		t.Run(tc.expr, func(t *testing.T) {
			_, err := doc.KindFromString(tc.expr, 1)
			require.Error(t, err)
			assert.True(t, ftderr.Is(err, tc.wantKind), "got %v", err)
		})
	}
}

func TestKindFromString_WithDefault(t *testing.T) {
	doc := newTestDoc()

	k, err := doc.KindFromString("optional integer with default 5", 1)
	require.NoError(t, err)
	require.True(t, k.IsOptional())
	require.NotNil(t, k.GetDefault())
	assert.Equal(t, "5", *k.GetDefault())
	assert.Nil(t, k.StripDefault().GetDefault())
}

func TestKind_IsSameAs(t *testing.T) {
	testCases := []struct {
		name string
		a, b Kind
		want bool
	}{
		{name: "caption is a string", a: CaptionOrBodyKind(), b: StringKind(), want: true},
		{name: "optional is ignored", a: OptionalKind(IntegerKind()), b: IntegerKind(), want: true},
		{name: "scalar mismatch", a: StringKind(), b: IntegerKind(), want: false},
		{name: "list items compared", a: ListKind(StringKind()), b: ListKind(IntegerKind()), want: false},
		{name: "records by name", a: RecordKind("foo#a"), b: RecordKind("foo#b"), want: false},
		{name: "variant matches or-type", a: OrTypeKind("foo#lead"), b: OrTypeWithVariantKind("foo#lead", "company"), want: true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.a.IsSameAs(tc.b))
		})
	}
}

func TestOptionalKind_Collapses(t *testing.T) {
	k := OptionalKind(OptionalKind(StringKind()))
	assert.Equal(t, KindString, k.Inner().Type)
	assert.Equal(t, "optional caption", OptionalKind(StringKind()).AsCaption().String())
}
