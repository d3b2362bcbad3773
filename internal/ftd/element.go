// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package ftd

import (
	"github.com/specialistvlad/ftdgo/internal/ftderr"
)

// ElementType names the kind of a rendered element.
type ElementType string

const (
	ElementText      ElementType = "text"
	ElementTextBlock ElementType = "text-block"
	ElementCode      ElementType = "code"
	ElementImage     ElementType = "image"
	ElementRow       ElementType = "row"
	ElementColumn    ElementType = "column"
	ElementIFrame    ElementType = "iframe"
	ElementInput     ElementType = "input"
	ElementInteger   ElementType = "integer"
	ElementBoolean   ElementType = "boolean"
	ElementDecimal   ElementType = "decimal"
	ElementScene     ElementType = "scene"
	ElementGrid      ElementType = "grid"
	ElementMarkup    ElementType = "markup"
	ElementNull      ElementType = "null"
)

// Region is a semantic role of an element.
type Region string

const (
	RegionH0               Region = "h0"
	RegionH1               Region = "h1"
	RegionH2               Region = "h2"
	RegionH3               Region = "h3"
	RegionH4               Region = "h4"
	RegionH5               Region = "h5"
	RegionH6               Region = "h6"
	RegionH7               Region = "h7"
	RegionTitle            Region = "title"
	RegionMainContent      Region = "main"
	RegionNavigation       Region = "navigation"
	RegionAside            Region = "aside"
	RegionFooter           Region = "footer"
	RegionDescription      Region = "description"
	RegionAnnounce         Region = "announce"
	RegionAnnounceUrgently Region = "announce-urgently"
)

var regions = map[Region]bool{
	RegionH0: true, RegionH1: true, RegionH2: true, RegionH3: true,
	RegionH4: true, RegionH5: true, RegionH6: true, RegionH7: true,
	RegionTitle: true, RegionMainContent: true, RegionNavigation: true,
	RegionAside: true, RegionFooter: true, RegionDescription: true,
	RegionAnnounce: true, RegionAnnounceUrgently: true,
}

// ParseRegion validates a `region:` value.
func ParseRegion(docID string, line int, s string) (Region, error) {
	r := Region(s)
	if !regions[r] {
		return "", ftderr.Parsef(docID, line, "unknown region %q", s)
	}
	return r, nil
}

// HeadingPriority returns 0 for h0 up to 7 for h7; ok is false for regions
// that are not headings.
func (r Region) HeadingPriority() (int, bool) {
	if len(r) == 2 && r[0] == 'h' && r[1] >= '0' && r[1] <= '7' {
		return int(r[1] - '0'), true
	}
	return 0, false
}

// Condition is the runtime form of a Boolean: the element or attribute
// applies when Variable equals Value, or differs from it when Negated.
type Condition struct {
	Variable string `json:"variable"`
	Value    string `json:"value"`
	Negated  bool   `json:"negated,omitempty"`
}

// ConditionWithValue is one conditional value of an attribute.
type ConditionWithValue struct {
	Condition Condition `json:"condition"`
	Value     *string   `json:"value"`
}

// ConditionalAttribute describes an attribute whose value depends on
// runtime conditions. Default is the value when none of them hold.
type ConditionalAttribute struct {
	Conditions []ConditionWithValue `json:"conditions"`
	Default    *string              `json:"default"`
}

// Common holds the attributes every element carries.
type Common struct {
	DataID                string                          `json:"data_id"`
	ID                    string                          `json:"id,omitempty"`
	Region                Region                          `json:"region,omitempty"`
	Condition             *Condition                      `json:"condition,omitempty"`
	IsNotVisible          bool                            `json:"is_not_visible,omitempty"`
	IsDummy               bool                            `json:"is_dummy,omitempty"`
	Events                []Event                         `json:"events,omitempty"`
	ConditionalAttributes map[string]ConditionalAttribute `json:"conditional_attributes,omitempty"`
	Reference             string                          `json:"reference,omitempty"`
	Locals                map[string]string               `json:"locals,omitempty"`
	Style                 map[string]string               `json:"style,omitempty"`
}

// ExternalChildren records elements placed into an open container of a
// component from outside the component's own definition. Paths are relative
// to the owning element.
type ExternalChildren struct {
	OpenID   string    `json:"open_id"`
	Paths    [][]int   `json:"paths"`
	Children []Element `json:"children"`
}

// Container holds the children of row, column, scene and grid elements.
type Container struct {
	Children         []Element         `json:"children"`
	ExternalChildren *ExternalChildren `json:"external_children,omitempty"`
	Open             bool              `json:"open,omitempty"`
	OpenID           string            `json:"open_id,omitempty"`
	Wrap             bool              `json:"wrap,omitempty"`
}

// IsOpen reports whether following siblings become children.
func (c *Container) IsOpen() bool { return c.Open || c.OpenID != "" }

// Markup is one region of marked-up text. Element is the styled element the
// region renders as; plain text regions have none.
type Markup struct {
	Text     string   `json:"text"`
	Element  *Element `json:"element,omitempty"`
	Children []Markup `json:"children,omitempty"`
}

// Text is the payload of text, text-block, code and markup elements.
type Text struct {
	Text      string   `json:"text"`
	Source    string   `json:"source"`
	Lang      string   `json:"lang,omitempty"`
	LineClamp *int64   `json:"line_clamp,omitempty"`
	Markups   []Markup `json:"markups,omitempty"`
}

// Image is the payload of image elements.
type Image struct {
	Src         string `json:"src"`
	Description string `json:"description,omitempty"`
	Crop        bool   `json:"crop,omitempty"`
}

// IFrame is the payload of iframe elements.
type IFrame struct {
	Src string `json:"src"`
}

// Input is the payload of input elements.
type Input struct {
	Placeholder string `json:"placeholder,omitempty"`
	Value       string `json:"value,omitempty"`
	Multiline   bool   `json:"multiline,omitempty"`
}

// Formatted is the payload of integer, boolean and decimal elements.
type Formatted struct {
	Value  string `json:"value"`
	Format string `json:"format,omitempty"`
}

// Element is a node of the output tree.
type Element struct {
	Type      ElementType `json:"type"`
	Common    *Common     `json:"common,omitempty"`
	Container *Container  `json:"container,omitempty"`
	Text      *Text       `json:"text,omitempty"`
	Image     *Image      `json:"image,omitempty"`
	IFrame    *IFrame     `json:"iframe,omitempty"`
	Input     *Input      `json:"input,omitempty"`
	Formatted *Formatted  `json:"formatted,omitempty"`
}

// NullElement is the placeholder for an invocation whose condition is false
// and can never become true at runtime.
func NullElement() Element { return Element{Type: ElementNull} }

// IsNull reports whether e is a Null placeholder.
func (e *Element) IsNull() bool { return e.Type == ElementNull }

// Children returns the container children of e, nil for leaves.
func (e *Element) Children() []Element {
	if e.Container == nil {
		return nil
	}
	return e.Container.Children
}

// At walks a child-index path below e. It returns nil when the path leaves
// the tree or crosses a leaf.
func (e *Element) At(path []int) *Element {
	cur := e
	for _, i := range path {
		if cur.Container == nil || i < 0 || i >= len(cur.Container.Children) {
			return nil
		}
		cur = &cur.Container.Children[i]
	}
	return cur
}

// Clone returns a deep copy of the element tree.
func (e Element) Clone() Element {
	out := e
	if e.Common != nil {
		c := *e.Common
		c.Events = append([]Event(nil), e.Common.Events...)
		c.ConditionalAttributes = cloneMap(e.Common.ConditionalAttributes)
		c.Locals = cloneMap(e.Common.Locals)
		c.Style = cloneMap(e.Common.Style)
		out.Common = &c
	}
	if e.Container != nil {
		c := *e.Container
		c.Children = cloneElements(e.Container.Children)
		if e.Container.ExternalChildren != nil {
			ext := *e.Container.ExternalChildren
			ext.Paths = append([][]int(nil), ext.Paths...)
			ext.Children = cloneElements(ext.Children)
			c.ExternalChildren = &ext
		}
		out.Container = &c
	}
	if e.Text != nil {
		t := *e.Text
		out.Text = &t
	}
	return out
}

func cloneElements(in []Element) []Element {
	if in == nil {
		return nil
	}
	out := make([]Element, len(in))
	for i, e := range in {
		out[i] = e.Clone()
	}
	return out
}

func cloneMap[V any](m map[string]V) map[string]V {
	if m == nil {
		return nil
	}
	out := make(map[string]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
