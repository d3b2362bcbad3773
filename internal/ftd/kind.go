// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package ftd

import (
	"strings"

	"github.com/specialistvlad/ftdgo/internal/ftderr"
	"github.com/specialistvlad/ftdgo/internal/section"
)

// KindType tags the variant held by a Kind.
type KindType int

const (
	KindString KindType = iota
	KindInteger
	KindDecimal
	KindBoolean
	KindObject
	KindRecord
	KindOrType
	KindOrTypeWithVariant
	KindList
	KindOptional
	KindMap
	KindUI
)

// UIDefault is the default component expression of a UI-kind argument.
type UIDefault struct {
	Name   string         `json:"name"`
	Header section.Header `json:"header,omitempty"`
}

// Kind is a type in the DDL type system. Only the fields relevant to Type are
// meaningful. Default holds the textual default literal, if any.
type Kind struct {
	Type      KindType   `json:"type"`
	Caption   bool       `json:"caption,omitempty"`
	Body      bool       `json:"body,omitempty"`
	Name      string     `json:"name,omitempty"`
	Variant   string     `json:"variant,omitempty"`
	Of        *Kind      `json:"of,omitempty"`
	Default   *string    `json:"default,omitempty"`
	UIDefault *UIDefault `json:"ui_default,omitempty"`
}

func StringKind() Kind        { return Kind{Type: KindString} }
func CaptionKind() Kind       { return Kind{Type: KindString, Caption: true} }
func BodyKind() Kind          { return Kind{Type: KindString, Body: true} }
func CaptionOrBodyKind() Kind { return Kind{Type: KindString, Caption: true, Body: true} }
func IntegerKind() Kind       { return Kind{Type: KindInteger} }
func DecimalKind() Kind       { return Kind{Type: KindDecimal} }
func BooleanKind() Kind       { return Kind{Type: KindBoolean} }
func ObjectKind() Kind        { return Kind{Type: KindObject} }
func UIKind() Kind            { return Kind{Type: KindUI} }

// RecordKind is the kind of instances of the named record.
func RecordKind(name string) Kind { return Kind{Type: KindRecord, Name: name} }

// OrTypeKind is the kind of values of the named or-type.
func OrTypeKind(name string) Kind { return Kind{Type: KindOrType, Name: name} }

// OrTypeWithVariantKind selects one variant of an or-type.
func OrTypeWithVariantKind(name, variant string) Kind {
	return Kind{Type: KindOrTypeWithVariant, Name: name, Variant: variant}
}

// ListKind is a list of item.
func ListKind(item Kind) Kind { return Kind{Type: KindList, Of: &item} }

// MapKind is a string-keyed map of item.
func MapKind(item Kind) Kind { return Kind{Type: KindMap, Of: &item} }

// OptionalKind wraps k, collapsing nested optionals.
func OptionalKind(k Kind) Kind {
	if k.Type == KindOptional {
		return k
	}
	return Kind{Type: KindOptional, Of: &k}
}

// IsOptional reports whether k is an Optional.
func (k Kind) IsOptional() bool { return k.Type == KindOptional }

// Inner strips one Optional layer.
func (k Kind) Inner() Kind {
	if k.Type == KindOptional && k.Of != nil {
		return *k.Of
	}
	return k
}

// IsList reports whether k, ignoring optionality, is a list.
func (k Kind) IsList() bool { return k.Inner().Type == KindList }

// ListItem returns the item kind of a (possibly optional) list kind.
func (k Kind) ListItem() Kind {
	inner := k.Inner()
	if inner.Type == KindList && inner.Of != nil {
		return *inner.Of
	}
	return inner
}

func (k Kind) IsString() bool  { return k.Inner().Type == KindString }
func (k Kind) IsInteger() bool { return k.Inner().Type == KindInteger }
func (k Kind) IsDecimal() bool { return k.Inner().Type == KindDecimal }
func (k Kind) IsBoolean() bool { return k.Inner().Type == KindBoolean }
func (k Kind) IsRecord() bool  { return k.Inner().Type == KindRecord }
func (k Kind) IsUI() bool      { return k.Inner().Type == KindUI }

// IsCaption reports whether the kind may be filled from a caption.
func (k Kind) IsCaption() bool { return k.Inner().Caption }

// IsBody reports whether the kind may be filled from a body.
func (k Kind) IsBody() bool { return k.Inner().Body }

// AsCaption marks k as fillable from a caption.
func (k Kind) AsCaption() Kind {
	if k.Type == KindOptional && k.Of != nil {
		return OptionalKind(k.Of.AsCaption())
	}
	k.Caption = true
	return k
}

// IsOrType reports whether k is an or-type, with or without a variant.
func (k Kind) IsOrType() bool {
	t := k.Inner().Type
	return t == KindOrType || t == KindOrTypeWithVariant
}

// GetDefault returns the default literal of k or of its optional inner kind.
func (k Kind) GetDefault() *string {
	if k.Default != nil {
		return k.Default
	}
	if k.Type == KindOptional && k.Of != nil {
		return k.Of.Default
	}
	return nil
}

// WithDefault returns a copy of k carrying def.
func (k Kind) WithDefault(def *string) Kind {
	if def == nil {
		return k
	}
	d := *def
	if k.Type == KindOptional && k.Of != nil {
		inner := *k.Of
		inner.Default = &d
		k.Of = &inner
		return k
	}
	k.Default = &d
	return k
}

// StripDefault returns k without any default.
func (k Kind) StripDefault() Kind {
	k.Default = nil
	k.UIDefault = nil
	if k.Of != nil {
		inner := k.Of.StripDefault()
		k.Of = &inner
	}
	return k
}

// IsSameAs compares kinds structurally, ignoring defaults, caption/body
// markers and one Optional layer on either side.
func (k Kind) IsSameAs(other Kind) bool {
	a, b := k.Inner(), other.Inner()
	switch a.Type {
	case KindOrType, KindOrTypeWithVariant:
		return (b.Type == KindOrType || b.Type == KindOrTypeWithVariant) && a.Name == b.Name
	}
	if a.Type != b.Type {
		return false
	}
	switch a.Type {
	case KindRecord:
		return a.Name == b.Name
	case KindList, KindMap:
		if a.Of == nil || b.Of == nil {
			return a.Of == b.Of
		}
		return a.Of.IsSameAs(*b.Of)
	}
	return true
}

// String returns the canonical textual form of k.
func (k Kind) String() string {
	if k.Caption && k.Type != KindString {
		base := k
		base.Caption = false
		return "caption " + base.String()
	}
	switch k.Type {
	case KindString:
		switch {
		case k.Caption && k.Body:
			return "caption or body"
		case k.Caption:
			return "caption"
		case k.Body:
			return "body"
		}
		return "string"
	case KindInteger:
		return "integer"
	case KindDecimal:
		return "decimal"
	case KindBoolean:
		return "boolean"
	case KindObject:
		return "object"
	case KindRecord, KindOrType:
		return k.Name
	case KindOrTypeWithVariant:
		return k.Name + "." + k.Variant
	case KindList:
		return innerString(k) + " list"
	case KindMap:
		return innerString(k) + " map"
	case KindOptional:
		return "optional " + innerString(k)
	case KindUI:
		return "ftd.ui"
	}
	return "unknown"
}

func innerString(k Kind) string {
	if k.Of == nil {
		return "unknown"
	}
	return k.Of.String()
}

const withDefaultClause = " with default "

// KindFromString parses a kind expression such as `optional integer`,
// `person list`, `caption or body` or `lead.individual` in the context of d.
// A trailing `with default <literal>` clause attaches a default.
func (d *Doc) KindFromString(expr string, line int) (Kind, error) {
	expr = strings.TrimSpace(expr)
	var def *string
	if before, after, found := strings.Cut(expr, withDefaultClause); found {
		v := strings.TrimSpace(after)
		def = &v
		expr = strings.TrimSpace(before)
	}
	k, err := d.kindFromString(expr, line)
	if err != nil {
		return Kind{}, err
	}
	return k.WithDefault(def), nil
}

func (d *Doc) kindFromString(expr string, line int) (Kind, error) {
	switch {
	case expr == "":
		return Kind{}, ftderr.Parsef(d.ID, line, "empty kind")
	case expr == "inherit":
		return Kind{}, ftderr.Forbiddenf(d.ID, line, "inherit is only allowed in component argument declarations")
	case strings.HasPrefix(expr, "optional "):
		inner, err := d.kindFromString(strings.TrimSpace(strings.TrimPrefix(expr, "optional ")), line)
		if err != nil {
			return Kind{}, err
		}
		return OptionalKind(inner), nil
	case strings.HasSuffix(expr, " list"):
		inner, err := d.kindFromString(strings.TrimSpace(strings.TrimSuffix(expr, " list")), line)
		if err != nil {
			return Kind{}, err
		}
		return ListKind(inner), nil
	case strings.HasPrefix(expr, "list "):
		inner, err := d.kindFromString(strings.TrimSpace(strings.TrimPrefix(expr, "list ")), line)
		if err != nil {
			return Kind{}, err
		}
		return ListKind(inner), nil
	case strings.HasSuffix(expr, " map"):
		inner, err := d.kindFromString(strings.TrimSpace(strings.TrimSuffix(expr, " map")), line)
		if err != nil {
			return Kind{}, err
		}
		return MapKind(inner), nil
	}

	switch expr {
	case "string":
		return StringKind(), nil
	case "caption":
		return CaptionKind(), nil
	case "body":
		return BodyKind(), nil
	case "caption or body", "body or caption":
		return CaptionOrBodyKind(), nil
	case "integer":
		return IntegerKind(), nil
	case "decimal":
		return DecimalKind(), nil
	case "boolean":
		return BooleanKind(), nil
	case "object":
		return ObjectKind(), nil
	case "ftd.ui", "ui":
		return UIKind(), nil
	}

	if strings.Contains(expr, " or ") {
		return Kind{}, ftderr.Forbiddenf(d.ID, line, "unsupported union kind %q: only `caption or body` is allowed", expr)
	}
	if strings.ContainsAny(expr, " \t") {
		return Kind{}, ftderr.Parsef(d.ID, line, "invalid kind %q", expr)
	}

	thing, err := d.GetThing(line, expr)
	if err != nil {
		return Kind{}, err
	}
	switch t := thing.(type) {
	case *Record:
		return RecordKind(t.Name), nil
	case *OrType:
		return OrTypeKind(t.Name), nil
	case OrTypeWithVariant:
		return OrTypeWithVariantKind(t.OrType.Name, t.Variant), nil
	case *Component:
		return UIKind(), nil
	}
	return Kind{}, ftderr.TypeMismatchf(d.ID, line, "%q is not a kind", expr)
}
