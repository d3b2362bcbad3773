// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package ftd

import (
	"strings"

	"github.com/specialistvlad/ftdgo/internal/ftderr"
	"github.com/specialistvlad/ftdgo/internal/section"
)

const alwaysIncludeFlag = "$always-include$"

// sectionParts is the shape shared by sections and subsections that a value
// is built from.
type sectionParts struct {
	caption *string
	header  section.Header
	body    *section.Body
	subs    section.SubSections
	line    int
}

func partsOf(s *section.Section) sectionParts {
	return sectionParts{caption: s.Caption, header: s.Header, body: s.Body, subs: s.SubSections, line: s.Line}
}

func partsOfSub(s *section.SubSection) sectionParts {
	return sectionParts{caption: s.Caption, header: s.Header, body: s.Body, line: s.Line}
}

// declaredKind parses the kind of a field or argument declaration and
// attaches its default. A UI kind's default is a component expression whose
// properties are the `>` lines under the declaration.
func (d *Doc) declaredKind(kindExpr, def string, uiHeader section.Header, line int) (Kind, error) {
	k, err := d.KindFromString(kindExpr, line)
	if err != nil {
		return Kind{}, err
	}
	if def == "" {
		return k, nil
	}
	if k.IsUI() && !strings.HasPrefix(def, "$") {
		inner := k.Inner()
		inner.UIDefault = &UIDefault{Name: def, Header: uiHeader}
		if k.IsOptional() {
			return OptionalKind(inner), nil
		}
		return inner, nil
	}
	return k.WithDefault(&def), nil
}

// captionField returns the name of the field filled from a caption.
func (r *Record) captionField() string {
	for _, name := range r.Order {
		if r.Fields[name].IsCaption() {
			return name
		}
	}
	return ""
}

// declareFields reads `<kind> <field>: <default>` and `$<field>: <kind>`
// header lines into rec.
func (d *Doc) declareFields(rec *Record, h section.Header) error {
	header, nested := nestedHeaders(h)
	for _, kv := range header {
		var field, kindExpr, def string
		if name, found := strings.CutPrefix(kv.Key, "$"); found {
			field, kindExpr = name, kv.Value
		} else {
			tokens := strings.Fields(kv.Key)
			if len(tokens) < 2 {
				return ftderr.Parsef(d.ID, kv.Line, "field %q of %s needs a kind", kv.Key, rec.Name)
			}
			field = tokens[len(tokens)-1]
			kindExpr = strings.Join(tokens[:len(tokens)-1], " ")
			def = kv.Value
		}
		if _, dup := rec.Fields[field]; dup {
			return ftderr.Forbiddenf(d.ID, kv.Line, "field %q of %s is declared twice", field, rec.Name)
		}
		k, err := d.declaredKind(kindExpr, def, nested[kv.Line], kv.Line)
		if err != nil {
			return err
		}
		rec.Fields[field] = k
		rec.Order = append(rec.Order, field)
	}
	return nil
}

// recordFromSection compiles `-- record <name>:`. The record is in the bag
// before its fields are read so it may refer to itself, e.g. in a list.
func (d *Doc) recordFromSection(s *section.Section, name string) (*Record, error) {
	rec := &Record{Name: d.ID + "#" + name, Fields: make(map[string]Kind), Line: s.Line}
	if err := d.insert(s.Line, rec); err != nil {
		return nil, err
	}
	if err := d.declareFields(rec, s.Header); err != nil {
		return nil, err
	}
	return rec, nil
}

// orTypeFromSection compiles `-- or-type <name>:` with one subsection per
// variant.
func (d *Doc) orTypeFromSection(s *section.Section, name string) (*OrType, error) {
	ot := &OrType{Name: d.ID + "#" + name, Line: s.Line}
	if err := d.insert(s.Line, ot); err != nil {
		return nil, err
	}
	if len(s.SubSections) == 0 {
		return nil, ftderr.MissingDataf(d.ID, s.Line, "or-type %s has no variants", ot.Name)
	}
	for i := range s.SubSections {
		sub := &s.SubSections[i]
		if _, dup := ot.Variant(sub.Name); dup {
			return nil, ftderr.Forbiddenf(d.ID, sub.Line, "variant %q of %s is declared twice", sub.Name, ot.Name)
		}
		rec := &Record{Name: ot.Name + "." + sub.Name, Fields: make(map[string]Kind), Line: sub.Line}
		if err := d.declareFields(rec, sub.Header); err != nil {
			return nil, err
		}
		ot.Variants = append(ot.Variants, rec)
	}
	return ot, nil
}

// recordValue builds an instance of rec from a caption, header and body.
func (d *Doc) recordValue(rec *Record, header section.Header, caption *string, body *section.Body, ec exprContext) (Value, error) {
	props, err := d.resolveProperties(propertySource{
		header:  header,
		caption: caption,
		body:    body,
		args:    rec.Fields,
		owner:   rec.Name,
		ec:      ec,
	})
	if err != nil {
		return Value{}, err
	}
	fields := make(map[string]PropertyValue, len(rec.Fields))
	for name, k := range rec.Fields {
		p, ok := props[name]
		if !ok {
			fields[name] = LiteralPV(NoneValue(k))
			continue
		}
		if len(p.Conditions) > 0 {
			return Value{}, ftderr.Forbiddenf(d.ID, ec.line, "field %q of %s cannot be conditional", name, rec.Name)
		}
		fields[name] = *p.Default
	}
	return RecordValue(rec.Name, fields), nil
}

// valueFromSection builds a value of kind k from a whole section: scalars
// from the caption or body, records from caption, header and body, lists
// from subsections, objects and maps from the header.
func (d *Doc) valueFromSection(p sectionParts, k Kind, ec exprContext) (PropertyValue, error) {
	ec = ec.at(p.line)
	if p.caption != nil && strings.HasPrefix(*p.caption, "$") && len(p.header) == 0 && len(p.subs) == 0 {
		return d.valueFromString(*p.caption, k, SourceCaption, ec)
	}

	inner := k.Inner()
	switch inner.Type {
	case KindList:
		item := k.ListItem()
		items := make([]PropertyValue, 0, len(p.subs))
		for i := range p.subs {
			pv, err := d.valueFromSection(partsOfSub(&p.subs[i]), item, ec)
			if err != nil {
				return PropertyValue{}, err
			}
			items = append(items, pv)
		}
		return LiteralPV(ListValue(item, items)), nil
	case KindRecord, KindOrTypeWithVariant:
		name := inner.Name
		if inner.Type == KindOrTypeWithVariant {
			name += "." + inner.Variant
		}
		rec, err := d.GetRecord(ec.line, name)
		if err != nil {
			return PropertyValue{}, err
		}
		v, err := d.recordValue(rec, p.header, p.caption, p.body, ec)
		if err != nil {
			return PropertyValue{}, err
		}
		if inner.Type == KindOrTypeWithVariant {
			v = OrTypeValue(inner.Name, inner.Variant, v.Fields)
		}
		return LiteralPV(v), nil
	case KindOrType:
		return PropertyValue{}, ftderr.Forbiddenf(d.ID, ec.line, "a value of or-type %s must name its variant, e.g. %s.<variant>", inner.Name, inner.Name)
	case KindObject:
		fields := make(map[string]PropertyValue, len(p.header))
		for _, kv := range p.header {
			pv, err := d.objectField(kv, ec.at(kv.Line))
			if err != nil {
				return PropertyValue{}, err
			}
			fields[kv.Key] = pv
		}
		return LiteralPV(ObjectValue(fields)), nil
	case KindMap:
		entries := make(map[string]Value, len(p.header))
		for _, kv := range p.header {
			pv, err := d.valueFromString(kv.Value, *inner.Of, SourceHeader, ec.at(kv.Line))
			if err != nil {
				return PropertyValue{}, err
			}
			v, err := pv.Resolve(d, Scope{}, kv.Line)
			if err != nil {
				return PropertyValue{}, err
			}
			entries[kv.Key] = v
		}
		return LiteralPV(MapValue(*inner.Of, entries)), nil
	case KindUI:
		if p.caption == nil {
			return PropertyValue{}, ftderr.MissingDataf(d.ID, ec.line, "a ftd.ui value needs a component name")
		}
		return d.uiValue(*p.caption, p.header, ec)
	}

	if len(p.header) > 0 {
		return PropertyValue{}, ftderr.UnknownDataf(d.ID, p.header[0].Line, "unexpected header %q on a %s value", p.header[0].Key, k)
	}
	switch {
	case p.caption != nil:
		return d.valueFromString(*p.caption, k, SourceCaption, ec)
	case p.body != nil:
		return d.valueFromString(p.body.Value, k, SourceBody, ec.at(p.body.Line))
	}
	if def := k.GetDefault(); def != nil {
		return d.valueFromString(*def, k, SourceDefault, ec)
	}
	if k.IsOptional() {
		return LiteralPV(NoneValue(inner)), nil
	}
	return PropertyValue{}, ftderr.MissingDataf(d.ID, ec.line, "a %s value is required", k)
}

func (d *Doc) objectField(kv section.KV, ec exprContext) (PropertyValue, error) {
	if ref, found := strings.CutPrefix(kv.Value, "$"); found {
		return d.resolveReference(ref, ec)
	}
	return LiteralPV(StringValue(unescape(kv.Value), SourceHeader)), nil
}

// variableFromSection compiles `-- <kind> <name>: <value>`.
func (d *Doc) variableFromSection(s *section.Section, kindExpr, name string) (*Variable, error) {
	k, err := d.KindFromString(kindExpr, s.Line)
	if err != nil {
		return nil, err
	}
	flags, header, err := d.variableFlags(s.Header)
	if err != nil {
		return nil, err
	}
	if _, ok := header.StrOptional("if"); ok {
		return nil, ftderr.Forbiddenf(d.ID, s.Line, "a declaration cannot be conditional; add conditions with `-- %s:` updates", name)
	}
	parts := partsOf(s)
	parts.header = header
	pv, err := d.valueFromSection(parts, k, exprContext{line: s.Line})
	if err != nil {
		return nil, err
	}
	v := &Variable{Name: d.ID + "#" + name, Kind: k, Value: pv, Flags: flags, Line: s.Line}
	if err := d.insert(s.Line, v); err != nil {
		return nil, err
	}
	if k.IsRecord() {
		if rec, err := d.GetRecord(s.Line, k.Inner().Name); err == nil {
			rec.Instances = append(rec.Instances, v.Name)
		}
	}
	return v, nil
}

func (d *Doc) variableFlags(h section.Header) (VariableFlags, section.Header, error) {
	var flags VariableFlags
	if _, ok := h.StrOptional(alwaysIncludeFlag); !ok {
		return flags, h, nil
	}
	line := 0
	for _, kv := range h {
		if kv.Key == alwaysIncludeFlag {
			line = kv.Line
		}
	}
	b, err := h.Bool(d.ID, line, alwaysIncludeFlag)
	if err != nil {
		return flags, nil, err
	}
	flags.AlwaysInclude = b
	return flags, h.Without(alwaysIncludeFlag), nil
}

// updateVariable applies `-- <name>: ...` to an existing variable. Lists
// get the section appended as an item; with an `if:` header the value is
// added as a condition; otherwise the value is replaced.
func (d *Doc) updateVariable(v *Variable, s *section.Section) error {
	header := s.Header
	cond, conditional := header.StrOptional("if")
	if conditional {
		header = header.Without("if")
	}
	parts := partsOf(s)
	parts.header = header
	ec := exprContext{line: s.Line}

	if v.Kind.IsList() && !conditional {
		if v.Value.Type != PVValue {
			return ftderr.Forbiddenf(d.ID, s.Line, "%s refers to %s and cannot be appended to", v.Name, v.Value.Name)
		}
		item, err := d.valueFromSection(parts, v.Kind.ListItem(), ec)
		if err != nil {
			return err
		}
		list := v.Value.Value.Unwrap()
		items := append(append([]PropertyValue(nil), list.List...), item)
		v.Value = LiteralPV(ListValue(v.Kind.ListItem(), items))
		return nil
	}

	pv, err := d.valueFromSection(parts, v.Kind, ec)
	if err != nil {
		return err
	}
	if !conditional {
		v.Value = pv
		return nil
	}
	b, err := d.BooleanFromExpr(cond, ec)
	if err != nil {
		return err
	}
	v.Conditions = append(v.Conditions, ConditionalValue{Condition: b, Value: pv})
	return nil
}
