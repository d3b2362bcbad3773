// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package ftd

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/specialistvlad/ftdgo/internal/ftderr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMarkup(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		want  []markupNode
		plain string
	}{
		{
			name:  "plain",
			input: "hello world",
			want:  []markupNode{{text: "hello world"}},
			plain: "hello world",
		},
		{
			name:  "one region",
			input: "hello {b: world}!",
			want: []markupNode{
				{text: "hello "},
				{style: "b", children: []markupNode{{text: "world"}}},
				{text: "!"},
			},
			plain: "hello world!",
		},
		{
			name:  "nested regions",
			input: "{outer: a {inner: b} c}",
			want: []markupNode{
				{style: "outer", children: []markupNode{
					{text: "a "},
					{style: "inner", children: []markupNode{{text: "b"}}},
					{text: " c"},
				}},
			},
			plain: "a b c",
		},
		{
			name:  "qualified style without space",
			input: "{lib#em:x}",
			want:  []markupNode{{style: "lib#em", children: []markupNode{{text: "x"}}}},
			plain: "x",
		},
		{
			name:  "escaped braces",
			input: `\{not: markup\}`,
			want:  []markupNode{{text: "{not: markup}"}},
			plain: "{not: markup}",
		},
		{
			name:  "braces without style",
			input: "f() { return 1 }",
			want:  []markupNode{{text: "f() { return 1 }"}},
			plain: "f() { return 1 }",
		},
		{
			name:  "literal braces inside region",
			input: "{code: f() {x}} and {: y}",
			want: []markupNode{
				{style: "code", children: []markupNode{{text: "f() {x}"}}},
				{text: " and {: y}"},
			},
			plain: "f() {x} and {: y}",
		},
		{
			name:  "empty",
			input: "",
			want:  nil,
			plain: "",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := parseMarkup(testDocID, 1, tc.input)
			require.NoError(t, err)
			if diff := cmp.Diff(tc.want, got, cmp.AllowUnexported(markupNode{})); diff != "" {
				t.Errorf("parseMarkup() mismatch (-want +got):\n%s", diff)
			}
			assert.Equal(t, tc.plain, plainText(got))
		})
	}
}

func TestParseMarkup_Errors(t *testing.T) {
	for _, input := range []string{
		"a {b: c",
		"a } b",
	} {
		t.Run(input, func(t *testing.T) {
			_, err := parseMarkup(testDocID, 3, input)
			require.Error(t, err)
			assert.True(t, ftderr.Is(err, ftderr.ParseError))
		})
	}
}
