// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package ftd

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/specialistvlad/ftdgo/internal/config"
	"github.com/specialistvlad/ftdgo/internal/ftderr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDocID = "foo"

func interpret(t *testing.T, source string, opts ...Option) *Document {
	t.Helper()
	doc, err := Interpret(context.Background(), testDocID, source, opts...)
	require.NoError(t, err)
	require.NotNil(t, doc)
	return doc
}

func strPtr(s string) *string { return &s }

func TestInterpret_VariableAndText(t *testing.T) {
	doc := interpret(t, "-- integer x: 10\n\n-- ftd.text:\ntext: hello\n")

	require.Equal(t, ElementColumn, doc.Main.Type)
	require.Len(t, doc.Main.Children(), 1)
	text := doc.Main.Children()[0]
	assert.Equal(t, ElementText, text.Type)
	assert.Equal(t, "hello", text.Text.Text)
	assert.Equal(t, "header", text.Text.Source)
	assert.Empty(t, text.Common.Reference)
	assert.Equal(t, "0", text.Common.DataID)
	assert.Equal(t, "main", doc.Main.Common.DataID)

	x, ok := doc.Bag["foo#x"].(*Variable)
	require.True(t, ok, "foo#x should be a variable")
	assert.Equal(t, IntegerValue(10), x.Value.Value)
	assert.JSONEq(t, "10", string(doc.Data["foo#x"].Value))
}

func TestInterpret_Reference(t *testing.T) {
	doc := interpret(t, "-- string name: Amit\n\n-- ftd.text: $name\n")

	require.Len(t, doc.Main.Children(), 1)
	text := doc.Main.Children()[0]
	assert.Equal(t, "Amit", text.Text.Text)
	assert.Equal(t, "foo#name", text.Common.Reference)

	deps := doc.Data["foo#name"].Dependencies
	assert.Equal(t, []Dependency{{Type: DependencyValue}}, deps["0"])
}

func TestInterpret_ConditionalAttribute(t *testing.T) {
	source := `-- boolean present: false
-- ftd.text foo:
caption name:
color: white
color if present: green
color if not present: red
text: $name

-- foo: hello
`
	doc := interpret(t, source)

	require.Len(t, doc.Main.Children(), 1)
	text := doc.Main.Children()[0]
	assert.Equal(t, "hello", text.Text.Text)
	assert.Equal(t, "caption", text.Text.Source)
	assert.Equal(t, "red", text.Common.Style["color"])

	want := ConditionalAttribute{
		Conditions: []ConditionWithValue{
			{Condition: Condition{Variable: "foo#present", Value: "true"}, Value: strPtr("green")},
			{Condition: Condition{Variable: "foo#present", Value: "false"}, Value: strPtr("red")},
		},
		Default: strPtr("white"),
	}
	if diff := cmp.Diff(want, text.Common.ConditionalAttributes["color"]); diff != "" {
		t.Errorf("conditional attribute mismatch (-want +got):\n%s", diff)
	}

	deps := doc.Data["foo#present"].Dependencies["0"]
	require.Len(t, deps, 2)
	assert.Equal(t, DependencyStyle, deps[0].Type)
	assert.Equal(t, "true", *deps[0].Condition)
	assert.Contains(t, deps[0].Parameters, "color")

	comp, ok := doc.Bag["foo#foo"].(*Component)
	require.True(t, ok)
	require.Len(t, comp.Invocations, 1)
	assert.Equal(t, "hello", comp.Invocations[0]["name"].Text)
}

const peopleSource = `-- record person:
caption name:
integer age:

-- person list people:

-- ftd.text person-name:
caption name:
text: $name

-- ftd.column:

--- person-name:
$loop$: $people as $p
name: $p.name
`

func TestInterpret_LoopOverRecords(t *testing.T) {
	source := peopleSource + `
-- people: Amit
age: 20

-- people: Shobhit
age: 30
`
	// Updates come after the loop in the source but are compiled before
	// execution starts.
	doc := interpret(t, source)

	require.Len(t, doc.Main.Children(), 1)
	column := doc.Main.Children()[0]
	require.Len(t, column.Children(), 2)

	for i, want := range []string{"Amit", "Shobhit"} {
		el := column.Children()[i]
		assert.Equal(t, want, el.Text.Text)
		assert.Equal(t, fmt.Sprintf("foo#people.%d.name", i), el.Common.Reference)
		assert.False(t, el.Common.IsDummy)
	}
	assert.Equal(t, "0,1", column.Children()[1].Common.DataID)

	deps := doc.Data["foo#people"].Dependencies
	assert.Equal(t, []Dependency{{Type: DependencyValue, Remaining: "0.name"}}, deps["0,0"])

	rec := doc.Bag["foo#person"].(*Record)
	assert.Equal(t, []string{"name", "age"}, rec.Order)
}

func TestInterpret_EmptyLoopEmitsDummy(t *testing.T) {
	doc := interpret(t, peopleSource)

	column := doc.Main.Children()[0]
	require.Len(t, column.Children(), 1)
	dummy := column.Children()[0]
	assert.True(t, dummy.Common.IsDummy)
	assert.Equal(t, "", dummy.Text.Text)
	assert.Equal(t, "0,0:dummy", dummy.Common.DataID)
}

func TestInterpret_LiteralEmptyLoopHasNoDummy(t *testing.T) {
	source := `-- ftd.text item:
caption name:
text: $name

-- ftd.column page:
string list names:

--- item:
$loop$: $names as $n
name: $n

-- page:
`
	doc := interpret(t, source)

	page := doc.Main.Children()[0]
	assert.Empty(t, page.Children())
}

func TestInterpret_OpenContainerSlot(t *testing.T) {
	source := `-- ftd.column toc:
id: toc
open: body

--- ftd.text: Table of contents

--- ftd.column:
id: body

-- toc:

-- ftd.text: first

-- container: ftd.main

-- ftd.text: outside

-- container: body

-- ftd.text: second
`
	doc := interpret(t, source)

	top := doc.Main.Children()
	require.Len(t, top, 2)
	toc, outside := top[0], top[1]
	assert.Equal(t, "outside", outside.Text.Text)
	assert.Equal(t, "1", outside.Common.DataID)

	body := toc.At([]int{1})
	require.NotNil(t, body)
	assert.Equal(t, "body", body.Common.ID)
	require.Len(t, body.Children(), 2)
	assert.Equal(t, "first", body.Children()[0].Text.Text)
	assert.Equal(t, "second", body.Children()[1].Text.Text)
	assert.Equal(t, "0,1,1", body.Children()[1].Common.DataID)

	ext := toc.Container.ExternalChildren
	require.NotNil(t, ext)
	assert.Equal(t, "body", ext.OpenID)
	assert.Equal(t, [][]int{{1}}, ext.Paths)
	require.Len(t, ext.Children, 2)
	assert.Equal(t, "first", ext.Children[0].Text.Text)
	assert.Equal(t, "0:body-external:1", ext.Children[1].Common.DataID)

	want := ExternalChildrenDependenciesMap{
		"0": {{Condition: []string{"0,1"}, SetAt: "0,1"}},
	}
	if diff := cmp.Diff(want, doc.ExternalChildren); diff != "" {
		t.Errorf("external children map mismatch (-want +got):\n%s", diff)
	}
}

func TestInterpret_ContainerBesideSlotIsExternal(t *testing.T) {
	source := `-- ftd.column toc:
open: body

--- ftd.column:
id: body

--- ftd.column:
id: inner

-- toc:

-- ftd.text: first

-- container: inner

-- ftd.text: deep
`
	doc := interpret(t, source)

	toc := doc.Main.Children()[0]
	inner := toc.At([]int{1})
	require.NotNil(t, inner)
	assert.Equal(t, "inner", inner.Common.ID)
	require.Len(t, inner.Children(), 1)
	assert.Equal(t, "deep", inner.Children()[0].Text.Text)

	ext := toc.Container.ExternalChildren
	require.NotNil(t, ext)
	assert.Equal(t, [][]int{{0}, {1}}, ext.Paths)
	require.Len(t, ext.Children, 2)
	assert.Equal(t, "first", ext.Children[0].Text.Text)
	assert.Equal(t, "deep", ext.Children[1].Text.Text)

	want := ExternalChildrenDependenciesMap{
		"0": {
			{Condition: []string{"0,0"}, SetAt: "0,0"},
			{Condition: []string{"0,1"}, SetAt: "0,1"},
		},
	}
	if diff := cmp.Diff(want, doc.ExternalChildren); diff != "" {
		t.Errorf("external children map mismatch (-want +got):\n%s", diff)
	}
}

func TestInterpret_ChildrenOfInvocationGoToOpenSlot(t *testing.T) {
	source := `-- ftd.column card:
open: content

--- ftd.row:
id: content

-- card:

--- ftd.text: inside
`
	doc := interpret(t, source)

	card := doc.Main.Children()[0]
	row := card.At([]int{0})
	require.Len(t, row.Children(), 1)
	assert.Equal(t, "inside", row.Children()[0].Text.Text)
	require.NotNil(t, card.Container.ExternalChildren)
	assert.Len(t, card.Container.ExternalChildren.Children, 1)
}

func TestInterpret_OpenKernelContainer(t *testing.T) {
	source := `-- ftd.row:
open: true

-- ftd.text: a

-- ftd.text: b
`
	doc := interpret(t, source)

	require.Len(t, doc.Main.Children(), 1)
	row := doc.Main.Children()[0]
	assert.Len(t, row.Children(), 2)
	assert.Nil(t, row.Container.ExternalChildren)
}

func TestInterpret_RegionRenesting(t *testing.T) {
	source := `-- ftd.column:
region: h1

-- ftd.text: b
region: h2

-- ftd.text: c
region: h2
`
	doc := interpret(t, source)

	require.Len(t, doc.Main.Children(), 1)
	h1 := doc.Main.Children()[0]
	assert.Equal(t, RegionH1, h1.Common.Region)
	require.Len(t, h1.Children(), 2)
	assert.Equal(t, "b", h1.Children()[0].Text.Text)
	assert.Equal(t, "0,1", h1.Children()[1].Common.DataID)
}

func TestInterpret_ConstantFalseConditionIsNull(t *testing.T) {
	source := `-- boolean show: false

-- ftd.text: hidden
if: $show

-- ftd.text: shown
`
	doc := interpret(t, source)

	require.Len(t, doc.Main.Children(), 2)
	assert.True(t, doc.Main.Children()[0].IsNull())
	assert.Equal(t, "shown", doc.Main.Children()[1].Text.Text)
}

func TestInterpret_AlwaysIncludeKeepsHiddenElement(t *testing.T) {
	source := `-- boolean show: false
$always-include$: true

-- ftd.text: hidden
if: $show
`
	doc := interpret(t, source)

	el := doc.Main.Children()[0]
	require.False(t, el.IsNull())
	assert.True(t, el.Common.IsNotVisible)
	assert.Equal(t, &Condition{Variable: "foo#show", Value: "true"}, el.Common.Condition)

	deps := doc.Data["foo#show"].Dependencies["0"]
	require.Len(t, deps, 1)
	assert.Equal(t, DependencyVisible, deps[0].Type)
}

func TestInterpret_LocalsAndEvents(t *testing.T) {
	source := `-- ftd.text toggle-text:
caption title:
boolean @open: false
color if $@open: red
text: $title
$on-click$: toggle $@open

-- toggle-text: hello
`
	doc := interpret(t, source)

	el := doc.Main.Children()[0]
	assert.Equal(t, map[string]string{"open": "open@0"}, el.Common.Locals)
	assert.Equal(t, []Event{{Name: "click", Action: Action{Action: "toggle", Target: "open@0"}}}, el.Common.Events)
	assert.NotContains(t, el.Common.Style, "color")

	ca := el.Common.ConditionalAttributes["color"]
	require.Len(t, ca.Conditions, 1)
	assert.Equal(t, Condition{Variable: "open@0", Value: "true"}, ca.Conditions[0].Condition)
	assert.Nil(t, ca.Default)

	assert.Equal(t, map[string]string{"open@0": "0"}, doc.Locals)
	require.Contains(t, doc.Data, "open@0")
	assert.JSONEq(t, "false", string(doc.Data["open@0"].Value))
}

func TestInterpret_LocalConditionNeverNull(t *testing.T) {
	source := `-- ftd.column panel:
boolean @open: false

--- ftd.text: details
if: $@open

-- panel:
`
	doc := interpret(t, source)

	details := doc.Main.Children()[0].Children()[0]
	require.False(t, details.IsNull())
	assert.True(t, details.Common.IsNotVisible)
	assert.Equal(t, "open@0", details.Common.Condition.Variable)
}

func TestInterpret_EventWithValue(t *testing.T) {
	source := `-- integer count: 0

-- ftd.integer: $count
$on-click$: increment $count by 2
$on-mouse-enter$: set-value $count 10
`
	doc := interpret(t, source)

	el := doc.Main.Children()[0]
	assert.Equal(t, "0", el.Formatted.Value)
	assert.Equal(t, "foo#count", el.Common.Reference)
	want := []Event{
		{Name: "click", Action: Action{Action: "increment", Target: "foo#count", Parameters: map[string][]string{"by": {"2"}}}},
		{Name: "mouse-enter", Action: Action{Action: "set-value", Target: "foo#count", Parameters: map[string][]string{"value": {"10"}}}},
	}
	if diff := cmp.Diff(want, el.Common.Events); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestInterpret_EventNames(t *testing.T) {
	for _, name := range []string{"click", "mouseenter", "mouseleave", "input", "change", "clickoutside"} {
		t.Run(name, func(t *testing.T) {
			source := "-- boolean b: false\n\n-- ftd.text: a\n$on-" + name + "$: toggle $b\n"
			doc := interpret(t, source)

			events := doc.Main.Children()[0].Common.Events
			require.Len(t, events, 1)
			assert.Equal(t, name, events[0].Name)
			assert.Equal(t, "toggle", events[0].Action.Action)
			assert.Equal(t, "foo#b", events[0].Action.Target)
		})
	}
}

func TestInterpret_ConditionalVariable(t *testing.T) {
	source := `-- boolean dark: true
$always-include$: true

-- string color: white

-- color: black
if: $dark

-- ftd.text: $color
`
	doc := interpret(t, source)

	assert.Equal(t, "black", doc.Main.Children()[0].Text.Text)
	assert.JSONEq(t, `"black"`, string(doc.Data["foo#color"].Value))
	deps := doc.Data["foo#dark"].Dependencies["foo#color"]
	require.Len(t, deps, 1)
	assert.Equal(t, DependencyVariable, deps[0].Type)
}

func TestInterpret_UIArgument(t *testing.T) {
	source := `-- ftd.column frame:
ftd.ui body: ftd.text
> text: default body

--- $body:

-- frame:

-- frame:
body: ftd.integer
> value: 7
`
	doc := interpret(t, source)

	require.Len(t, doc.Main.Children(), 2)
	first := doc.Main.Children()[0].Children()[0]
	assert.Equal(t, ElementText, first.Type)
	assert.Equal(t, "default body", first.Text.Text)
	second := doc.Main.Children()[1].Children()[0]
	assert.Equal(t, ElementInteger, second.Type)
	assert.Equal(t, "7", second.Formatted.Value)
}

func TestInterpret_Markup(t *testing.T) {
	source := `-- ftd.text: hello {bold: world} and {italic: more}

--- ftd.text bold:
color: red
`
	doc := interpret(t, source)

	el := doc.Main.Children()[0]
	assert.Equal(t, ElementMarkup, el.Type)
	assert.Equal(t, "hello world and more", el.Text.Text)
	require.Len(t, el.Text.Markups, 4)
	bold := el.Text.Markups[1]
	assert.Equal(t, "world", bold.Text)
	require.NotNil(t, bold.Element)
	assert.Equal(t, "red", bold.Element.Common.Style["color"])
	assert.Equal(t, "world", bold.Element.Text.Text)
	assert.Nil(t, el.Text.Markups[3].Element, "unknown styles stay plain")
}

func TestInterpret_MarkupWithBagComponent(t *testing.T) {
	source := `-- ftd.text highlight:
caption content:
color: yellow
text: $content

-- ftd.text: see {highlight: this}
`
	doc := interpret(t, source)

	el := doc.Main.Children()[0]
	require.Len(t, el.Text.Markups, 2)
	hl := el.Text.Markups[1].Element
	require.NotNil(t, hl)
	assert.Equal(t, "this", hl.Text.Text)
	assert.Equal(t, "yellow", hl.Common.Style["color"])
}

func TestInterpret_EscapedBraces(t *testing.T) {
	doc := interpret(t, "-- ftd.text: a \\{b\\} c\n")

	el := doc.Main.Children()[0]
	assert.Equal(t, ElementText, el.Type)
	assert.Equal(t, "a {b} c", el.Text.Text)
}

func TestInterpret_Import(t *testing.T) {
	loader := config.MapLoader{
		"lib": "-- string greeting: hi\n\n-- ftd.text message:\ncaption msg:\ntext: $msg\n",
	}
	doc := interpret(t, "-- import: lib as l\n\n-- l.message: $l.greeting\n", WithLoader(loader))

	el := doc.Main.Children()[0]
	assert.Equal(t, "hi", el.Text.Text)
	assert.Equal(t, "lib#greeting", el.Common.Reference)
	assert.Contains(t, doc.Bag, "lib#message")
}

func TestInterpret_Aliases(t *testing.T) {
	loader := config.MapLoader{"lib/colors": "-- string primary: blue\n"}
	doc := interpret(t, "-- ftd.text: $colors.primary\n",
		WithLoader(loader), WithAliases(map[string]string{"colors": "lib/colors"}))

	assert.Equal(t, "blue", doc.Main.Children()[0].Text.Text)
}

func TestInterpret_PredeclaredVariables(t *testing.T) {
	doc := interpret(t, "-- ftd.text: $title\n",
		WithVariables(map[string]Value{"title": StringValue("Welcome", SourceHeader)}))

	assert.Equal(t, "Welcome", doc.Main.Children()[0].Text.Text)
}

func TestInterpret_OrType(t *testing.T) {
	source := `-- or-type lead:

--- individual:
caption name:
string phone:

--- company:
caption name:
string contact:

-- lead.individual amit: Amit
phone: 12345

-- ftd.text: $amit.phone
`
	doc := interpret(t, source)

	assert.Equal(t, "12345", doc.Main.Children()[0].Text.Text)
	assert.Equal(t, "foo#amit.phone", doc.Main.Children()[0].Common.Reference)
}

func TestInterpret_Errors(t *testing.T) {
	testCases := []struct {
		name     string
		source   string
		opts     []Option
		wantKind ftderr.Kind
	}{
		{name: "unknown header", source: "-- ftd.text: hi\ncolour: red\n", wantKind: ftderr.UnknownData},
		{name: "missing text", source: "-- ftd.text:\n", wantKind: ftderr.MissingData},
		{name: "type mismatch", source: "-- integer x: 10\n\n-- ftd.text: $x\n", wantKind: ftderr.TypeMismatch},
		{name: "bad integer", source: "-- integer x: ten\n", wantKind: ftderr.ParseError},
		{name: "redeclared", source: "-- integer x: 1\n\n-- integer x: 2\n", wantKind: ftderr.ForbiddenUsage},
		{name: "unknown container", source: "-- container: nope\n", wantKind: ftderr.NotFound},
		{name: "unknown component", source: "-- nothing:\n", wantKind: ftderr.NotFound},
		{name: "unbalanced markup", source: "-- ftd.text: a {b: c\n", wantKind: ftderr.ParseError},
		{name: "import without loader", source: "-- import: lib\n", wantKind: ftderr.NotFound},
		{
			name:     "import cycle",
			source:   "-- import: b\n",
			opts:     []Option{WithLoader(config.MapLoader{"b": "-- import: foo\n"})},
			wantKind: ftderr.ForbiddenUsage,
		},
		{name: "union kind", source: "-- string or integer x: 1\n", wantKind: ftderr.ForbiddenUsage},
		{name: "conditional declaration", source: "-- boolean b: true\n\n-- string s: x\nif: $b\n", wantKind: ftderr.ForbiddenUsage},
		{name: "null check on required", source: "-- string s: x\n\n-- ftd.text: a\nif: $s is null\n", wantKind: ftderr.TypeMismatch},
		{name: "comparison of different kinds", source: "-- integer n: 1\n\n-- string s: 1\n\n-- ftd.text: x\nif: $n == $s\n", wantKind: ftderr.TypeMismatch},
		{name: "unknown event", source: "-- boolean b: true\n\n-- ftd.text: a\n$on-hover$: toggle $b\n", wantKind: ftderr.ParseError},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Interpret(context.Background(), testDocID, tc.source, tc.opts...)
			require.Error(t, err)
			assert.True(t, ftderr.Is(err, tc.wantKind), "expected %s, got %v", tc.wantKind, err)
		})
	}
}

func TestInterpret_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Interpret(ctx, testDocID, "-- ftd.text: hi\n")
	require.ErrorIs(t, err, context.Canceled)
}

func TestDocument_ElementByDataID(t *testing.T) {
	source := `-- ftd.column toc:
open: body

--- ftd.text: Contents

--- ftd.column:
id: body

-- toc:

-- ftd.column:

--- ftd.text: first
`
	doc := interpret(t, source)

	var walk func(el *Element)
	walk = func(el *Element) {
		if el.IsNull() || el.Common == nil {
			return
		}
		got, err := doc.ElementByDataID(el.Common.DataID)
		require.NoError(t, err, el.Common.DataID)
		assert.Same(t, el.Common, got.Common, el.Common.DataID)
		if el.Container == nil {
			return
		}
		for i := range el.Container.Children {
			walk(&el.Container.Children[i])
		}
		if ext := el.Container.ExternalChildren; ext != nil {
			for i := range ext.Children {
				walk(&ext.Children[i])
			}
		}
	}
	walk(&doc.Main)

	ext, err := doc.ElementByDataID("0:body-external:0,0")
	require.NoError(t, err)
	assert.Equal(t, "first", ext.Text.Text)

	_, err = doc.ElementByDataID("0,9")
	assert.True(t, ftderr.Is(err, ftderr.NotFound), "got %v", err)
	_, err = doc.ElementByDataID("0:other-external:0")
	assert.True(t, ftderr.Is(err, ftderr.NotFound), "got %v", err)
	_, err = doc.ElementByDataID("0;1")
	assert.True(t, ftderr.Is(err, ftderr.InvalidInput), "got %v", err)
}

func TestDocument_JSON(t *testing.T) {
	doc := interpret(t, "-- string name: Amit\n\n-- ftd.text: $name\n")

	raw, err := doc.JSON(false)
	require.NoError(t, err)

	var decoded struct {
		Main struct {
			Type      string `json:"type"`
			Container struct {
				Children []struct {
					Common struct {
						DataID    string `json:"data_id"`
						Reference string `json:"reference"`
					} `json:"common"`
				} `json:"children"`
			} `json:"container"`
		} `json:"main"`
		Data map[string]struct {
			Value json.RawMessage `json:"value"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "column", decoded.Main.Type)
	require.Len(t, decoded.Main.Container.Children, 1)
	assert.Equal(t, "0", decoded.Main.Container.Children[0].Common.DataID)
	assert.Equal(t, "foo#name", decoded.Main.Container.Children[0].Common.Reference)
	assert.JSONEq(t, `"Amit"`, string(decoded.Data["foo#name"].Value))

	pretty, err := doc.JSON(true)
	require.NoError(t, err)
	assert.Contains(t, string(pretty), "\n  \"main\"")
}
