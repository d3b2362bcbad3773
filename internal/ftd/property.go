// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package ftd

import (
	"strings"

	"github.com/specialistvlad/ftdgo/internal/ftderr"
	"github.com/specialistvlad/ftdgo/internal/section"
)

// loopVar is the argument name a `$loop$` item is bound to.
const loopVar = "$loop$"

// argKinds maps the argument names visible to an expression to their kinds.
// Locals are keyed with an `@` prefix and the loop item as `$loop$`.
type argKinds map[string]Kind

// exprContext is the compile time environment of an expression.
type exprContext struct {
	args      argKinds
	loopAlias string
	line      int
}

func (ec exprContext) at(line int) exprContext {
	ec.line = line
	return ec
}

// Property is the compiled binding of one argument: a default and an ordered
// list of conditional overrides, the last true of which wins.
type Property struct {
	Default          *PropertyValue
	Conditions       []ConditionalValue
	NestedProperties map[string]Property
}

// Eval selects the property value that applies under s.
func (p Property) Eval(d *Doc, s Scope, line int) (*PropertyValue, error) {
	out := p.Default
	for i := range p.Conditions {
		ok, err := p.Conditions[i].Condition.Eval(d, s, line)
		if err != nil {
			return nil, err
		}
		if ok {
			out = &p.Conditions[i].Value
		}
	}
	if out == nil {
		return nil, ftderr.MissingDataf(d.ID, line, "no default and no matching condition")
	}
	return out, nil
}

// Substitute replaces argument references in p with the bindings of s.
func (p Property) Substitute(d *Doc, s Scope, line int) (Property, error) {
	out := Property{NestedProperties: p.NestedProperties}
	if p.Default != nil {
		pv, err := p.Default.Substitute(d, s, line)
		if err != nil {
			return Property{}, err
		}
		out.Default = &pv
	}
	for _, c := range p.Conditions {
		cond, err := c.Condition.Substitute(d, s, line)
		if err != nil {
			return Property{}, err
		}
		pv, err := c.Value.Substitute(d, s, line)
		if err != nil {
			return Property{}, err
		}
		out.Conditions = append(out.Conditions, ConditionalValue{Condition: cond, Value: pv})
	}
	return out, nil
}

// Substitute replaces an argument reference with its binding: a reference
// when the argument was bound to a bag entry, a literal otherwise. UI
// literals have their properties substituted too.
func (pv PropertyValue) Substitute(d *Doc, s Scope, line int) (PropertyValue, error) {
	switch pv.Type {
	case PVReference:
		return pv, nil
	case PVValue:
		if pv.Value.Type != ValueUI || len(pv.Value.UIData) == 0 {
			return pv, nil
		}
		data, err := substituteAll(d, pv.Value.UIData, s, line)
		if err != nil {
			return PropertyValue{}, err
		}
		return LiteralPV(UIValue(pv.Value.Name, data)), nil
	}
	root, rest := splitPath(pv.Name)
	b, ok := s.Args[root]
	if !ok {
		return PropertyValue{}, d.notFound(line, "argument %q is not bound", root)
	}
	v, ref, err := b.walk(d, rest, line)
	if err != nil {
		return PropertyValue{}, err
	}
	if ref != "" {
		return ReferencePV(ref, pv.Kind), nil
	}
	return LiteralPV(v), nil
}

func substituteAll(d *Doc, props map[string]Property, s Scope, line int) (map[string]Property, error) {
	out := make(map[string]Property, len(props))
	for name, p := range props {
		sp, err := p.Substitute(d, s, line)
		if err != nil {
			return nil, err
		}
		out[name] = sp
	}
	return out, nil
}

// unescape drops the leading backslash that marks a value starting with `$`
// or `\` as literal text.
func unescape(raw string) string {
	if strings.HasPrefix(raw, `\`) {
		return raw[1:]
	}
	return raw
}

// resolveReference resolves a reference (without its `$`) to an argument,
// local, loop item or bag entry, in that order.
func (d *Doc) resolveReference(raw string, ec exprContext) (PropertyValue, error) {
	root, rest := splitPath(raw)
	switch {
	case root == "loop$":
		root = loopVar
	case ec.loopAlias != "" && root == ec.loopAlias:
		root = loopVar
	}
	for _, candidate := range []string{root, "@" + root} {
		k, ok := ec.args[candidate]
		if !ok {
			continue
		}
		kind, err := d.walkKind(k, rest, ec.line, nil)
		if err != nil {
			return PropertyValue{}, err
		}
		return VariablePV(strings.Join(append([]string{candidate}, rest...), "."), kind), nil
	}
	if root == loopVar {
		return PropertyValue{}, ftderr.Forbiddenf(d.ID, ec.line, "%q is only available inside a `$loop$` invocation", raw)
	}
	fq := d.ResolveName(raw)
	k, err := d.KindOf(ec.line, fq)
	if err != nil {
		return PropertyValue{}, err
	}
	return ReferencePV(fq, k), nil
}

// valueFromString compiles one header, caption or body value into a
// PropertyValue of kind k. A leading `$` makes it a reference.
func (d *Doc) valueFromString(raw string, k Kind, source TextSource, ec exprContext) (PropertyValue, error) {
	if ref, found := strings.CutPrefix(raw, "$"); found {
		pv, err := d.resolveReference(ref, ec)
		if err != nil {
			return PropertyValue{}, err
		}
		if !k.IsSameAs(pv.GetKind()) {
			return PropertyValue{}, ftderr.TypeMismatchf(d.ID, ec.line, "%s is %s, expected %s", raw, pv.GetKind(), k)
		}
		return pv, nil
	}
	raw = unescape(raw)
	inner := k.Inner()
	if k.IsOptional() && raw == "" {
		return LiteralPV(NoneValue(inner)), nil
	}
	switch inner.Type {
	case KindString, KindInteger, KindDecimal, KindBoolean:
		v, err := d.parseLiteral(raw, inner, source, ec.line)
		if err != nil {
			return PropertyValue{}, err
		}
		return LiteralPV(v), nil
	case KindUI:
		return d.uiValue(raw, nil, ec)
	case KindRecord:
		rec, err := d.GetRecord(ec.line, inner.Name)
		if err != nil {
			return PropertyValue{}, err
		}
		if rec.captionField() != "" {
			v, err := d.recordValue(rec, nil, &raw, nil, ec)
			if err != nil {
				return PropertyValue{}, err
			}
			return LiteralPV(v), nil
		}
	}
	return PropertyValue{}, ftderr.TypeMismatchf(d.ID, ec.line, "a %s value must be given as a reference, got %q", k, raw)
}

// uiValue compiles a component expression with its `>` property lines.
func (d *Doc) uiValue(name string, header section.Header, ec exprContext) (PropertyValue, error) {
	comp, err := d.GetComponent(ec.line, strings.TrimSpace(name))
	if err != nil {
		return PropertyValue{}, err
	}
	props, err := d.resolveProperties(propertySource{
		header: header,
		args:   comp.invocationArguments(),
		owner:  comp.FullName,
		ec:     ec,
	})
	if err != nil {
		return PropertyValue{}, err
	}
	return LiteralPV(UIValue(comp.FullName, props)), nil
}

// propertySource is everything resolveProperties reads for one invocation.
type propertySource struct {
	header    section.Header
	caption   *string
	body      *section.Body
	args      map[string]Kind
	inherited map[string]Property
	owner     string
	ec        exprContext
}

// nestedHeaders groups `> key: value` lines under the line of the header
// they follow.
func nestedHeaders(h section.Header) (section.Header, map[int]section.Header) {
	plain := make(section.Header, 0, len(h))
	nested := make(map[int]section.Header)
	parent := -1
	for _, kv := range h {
		if key, found := strings.CutPrefix(kv.Key, ">"); found {
			if parent >= 0 {
				nested[parent] = append(nested[parent], section.KV{Line: kv.Line, Key: strings.TrimSpace(key), Value: kv.Value})
			}
			continue
		}
		parent = kv.Line
		plain = append(plain, kv)
	}
	return plain, nested
}

// resolveProperties binds header, caption and body values to the arguments
// in src.args. For each argument the first source that applies wins:
// inherited properties, header lines, caption, body, the kind's default.
// Optional arguments with no value are omitted; missing required ones fail.
func (d *Doc) resolveProperties(src propertySource) (map[string]Property, error) {
	header, nested := nestedHeaders(src.header)
	for _, kv := range header {
		name, _ := section.SplitCondition(kv.Key)
		if _, ok := src.args[name]; !ok {
			return nil, ftderr.UnknownDataf(d.ID, kv.Line, "%s has no argument %q", src.owner, name)
		}
	}

	out := make(map[string]Property)
	captionUsed, bodyUsed := false, false
	for _, name := range sortedKeys(src.args) {
		k := src.args[name]
		if p, ok := src.inherited[name]; ok {
			out[name] = p
			continue
		}
		if values := header.ConditionalStr(name); len(values) > 0 {
			p, err := d.propertyFromHeader(name, k, values, nested, src)
			if err != nil {
				return nil, err
			}
			out[name] = p
			continue
		}
		switch {
		case k.IsCaption() && src.caption != nil && !captionUsed:
			captionUsed = true
			pv, err := d.valueFromString(*src.caption, k, SourceCaption, src.ec)
			if err != nil {
				return nil, err
			}
			out[name] = Property{Default: &pv}
			continue
		case k.IsBody() && src.body != nil && !bodyUsed:
			bodyUsed = true
			pv, err := d.valueFromString(src.body.Value, k, SourceBody, src.ec.at(src.body.Line))
			if err != nil {
				return nil, err
			}
			out[name] = Property{Default: &pv}
			continue
		}
		pv, ok, err := d.defaultValue(name, k, src)
		if err != nil {
			return nil, err
		}
		if ok {
			out[name] = Property{Default: &pv}
		}
	}
	return out, nil
}

func (d *Doc) propertyFromHeader(name string, k Kind, values []section.ConditionalValue, nested map[int]section.Header, src propertySource) (Property, error) {
	var p Property
	for _, cv := range values {
		ec := src.ec.at(cv.Line)
		var (
			pv  PropertyValue
			err error
		)
		if k.IsUI() && !strings.HasPrefix(cv.Value, "$") {
			pv, err = d.uiValue(cv.Value, nested[cv.Line], ec)
			if err == nil {
				p.NestedProperties = pv.Value.UIData
			}
		} else {
			pv, err = d.valueFromString(cv.Value, k, SourceHeader, ec)
		}
		if err != nil {
			return Property{}, err
		}
		if cv.Condition == nil {
			p.Default = &pv
			continue
		}
		cond, err := d.BooleanFromExpr(*cv.Condition, ec)
		if err != nil {
			return Property{}, err
		}
		p.Conditions = append(p.Conditions, ConditionalValue{Condition: cond, Value: pv})
	}
	if p.Default != nil {
		return p, nil
	}
	pv, ok, err := d.defaultValue(name, k, src)
	if err != nil {
		return Property{}, err
	}
	if !ok {
		pv = LiteralPV(NoneValue(k.Inner()))
	}
	p.Default = &pv
	return p, nil
}

// defaultValue computes the value of an argument no header, caption or body
// supplied. ok is false for optional arguments, which stay unset.
func (d *Doc) defaultValue(name string, k Kind, src propertySource) (PropertyValue, bool, error) {
	if def := k.GetDefault(); def != nil {
		pv, err := d.valueFromString(*def, k, SourceDefault, src.ec)
		return pv, err == nil, err
	}
	if ui := k.Inner().UIDefault; ui != nil {
		pv, err := d.uiValue(ui.Name, ui.Header, src.ec)
		return pv, err == nil, err
	}
	switch {
	case k.IsOptional():
		return PropertyValue{}, false, nil
	case k.Type == KindList:
		return LiteralPV(ListValue(k.ListItem(), nil)), true, nil
	}
	return PropertyValue{}, false, ftderr.MissingDataf(d.ID, src.ec.line, "%s: argument %q is required", src.owner, name)
}
