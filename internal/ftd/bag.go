// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package ftd

import (
	"strconv"
	"strings"

	"github.com/specialistvlad/ftdgo/internal/ftderr"
)

// KernelDoc is the document id kernel components live in. The alias `ftd`
// always resolves to it.
const KernelDoc = "ftd"

// Thing is an entry of the bag.
type Thing interface {
	thingName() string
}

// VariableFlags are the `$...$` flags of a variable declaration.
type VariableFlags struct {
	AlwaysInclude bool `json:"always_include,omitempty"`
}

// ConditionalValue is a PropertyValue guarded by a Boolean.
type ConditionalValue struct {
	Condition Boolean
	Value     PropertyValue
}

// Variable is a named, typed value. Conditions override Value; the last true
// condition wins.
type Variable struct {
	Name       string
	Kind       Kind
	Value      PropertyValue
	Conditions []ConditionalValue
	Flags      VariableFlags
	Line       int
}

// Record is a named product type.
type Record struct {
	Name      string
	Fields    map[string]Kind
	Order     []string
	Instances []string
	Line      int
}

// OrType is a named sum type; each variant is a record named
// `<or-type>.<variant>`.
type OrType struct {
	Name     string
	Variants []*Record
	Line     int
}

// OrTypeWithVariant is returned by lookups of `<or-type>.<variant>` names.
type OrTypeWithVariant struct {
	OrType  *OrType
	Variant string
}

func (v *Variable) thingName() string        { return v.Name }
func (r *Record) thingName() string          { return r.Name }
func (o *OrType) thingName() string          { return o.Name }
func (c *Component) thingName() string       { return c.FullName }
func (o OrTypeWithVariant) thingName() string { return o.OrType.Name + "." + o.Variant }

// Variant returns the record of the named variant.
func (o *OrType) Variant(name string) (*Record, bool) {
	for _, r := range o.Variants {
		if strings.TrimPrefix(r.Name, o.Name+".") == name {
			return r, true
		}
	}
	return nil, false
}

// Doc is the compilation context of one document: its id, its import aliases
// and the bag it shares with every document it imports.
type Doc struct {
	ID      string
	Aliases map[string]string
	Bag     map[string]Thing
	// Locals holds the per-instance local variables of executed components,
	// keyed by `<name>@<execution path>`.
	Locals map[string]*Variable
}

// NewDoc creates a document context over bag, registering the kernel alias.
func NewDoc(id string, bag map[string]Thing, locals map[string]*Variable) *Doc {
	return &Doc{
		ID:      id,
		Aliases: map[string]string{KernelDoc: KernelDoc},
		Bag:     bag,
		Locals:  locals,
	}
}

func (d *Doc) notFound(line int, format string, args ...any) error {
	return ftderr.NotFoundf(d.ID, line, format, args...)
}

// ResolveName qualifies name: `alias.rest` becomes `<doc>#rest` when alias is
// an import alias, a bare name becomes `<this doc>#name`. Qualified names and
// local keys are returned unchanged.
func (d *Doc) ResolveName(name string) string {
	if strings.Contains(name, "#") || isLocalKey(name) {
		return name
	}
	if first, rest, found := strings.Cut(name, "."); found {
		if target, ok := d.Aliases[first]; ok {
			return target + "#" + rest
		}
	}
	return d.ID + "#" + name
}

func isLocalKey(name string) bool {
	root, _, _ := strings.Cut(name, ".")
	return strings.Contains(root, "@")
}

// LocalKey is the bag key of a component local for one execution path.
func LocalKey(name string, path []int) string {
	parts := make([]string, len(path))
	for i, p := range path {
		parts[i] = strconv.Itoa(p)
	}
	return name + "@" + strings.Join(parts, ",")
}

// GetThing looks up name in the bag. Variant names of or-types resolve to an
// OrTypeWithVariant.
func (d *Doc) GetThing(line int, name string) (Thing, error) {
	fq := d.ResolveName(name)
	if isLocalKey(fq) {
		if v, ok := d.Locals[fq]; ok {
			return v, nil
		}
		return nil, d.notFound(line, "local %q not found", fq)
	}
	if t, ok := d.Bag[fq]; ok {
		return t, nil
	}
	hash := strings.Index(fq, "#")
	if dot := strings.LastIndex(fq, "."); dot > hash {
		if ot, ok := d.Bag[fq[:dot]].(*OrType); ok {
			variant := fq[dot+1:]
			if _, ok := ot.Variant(variant); ok {
				return OrTypeWithVariant{OrType: ot, Variant: variant}, nil
			}
		}
	}
	return nil, d.notFound(line, "%q not found", fq)
}

// GetVariable looks up a variable (or local) by name.
func (d *Doc) GetVariable(line int, name string) (*Variable, error) {
	t, err := d.GetThing(line, name)
	if err != nil {
		return nil, err
	}
	v, ok := t.(*Variable)
	if !ok {
		return nil, ftderr.TypeMismatchf(d.ID, line, "%q is not a variable", name)
	}
	return v, nil
}

// GetRecord looks up a record, including or-type variants.
func (d *Doc) GetRecord(line int, name string) (*Record, error) {
	t, err := d.GetThing(line, name)
	if err != nil {
		return nil, err
	}
	switch r := t.(type) {
	case *Record:
		return r, nil
	case OrTypeWithVariant:
		rec, _ := r.OrType.Variant(r.Variant)
		return rec, nil
	}
	return nil, ftderr.TypeMismatchf(d.ID, line, "%q is not a record", name)
}

// GetComponent looks up a component by name.
func (d *Doc) GetComponent(line int, name string) (*Component, error) {
	t, err := d.GetThing(line, name)
	if err != nil {
		return nil, err
	}
	c, ok := t.(*Component)
	if !ok {
		return nil, ftderr.TypeMismatchf(d.ID, line, "%q is not a component", name)
	}
	return c, nil
}

// splitThingPath splits a qualified path into the bag key of its root thing
// and the remaining dotted segments.
func splitThingPath(fq string) (string, []string) {
	hash := strings.Index(fq, "#")
	prefix, local := fq[:hash+1], fq[hash+1:]
	parts := strings.Split(local, ".")
	return prefix + parts[0], parts[1:]
}

// RootName returns the bag key a qualified path starts at.
func RootName(fq string) string {
	root, _ := splitThingPath(fq)
	return root
}

// GetValue resolves a qualified dotted path such as `foo#people.0.name` to a
// value. Conditional variables evaluate to their last true condition.
func (d *Doc) GetValue(line int, name string) (Value, error) {
	root, rest := splitThingPath(d.ResolveName(name))
	v, err := d.GetVariable(line, root)
	if err != nil {
		return Value{}, err
	}
	val, err := v.Resolve(d, line)
	if err != nil {
		return Value{}, err
	}
	return d.walkValue(val, rest, line)
}

// Resolve evaluates the variable, applying its conditions.
func (v *Variable) Resolve(d *Doc, line int) (Value, error) {
	pv := v.Value
	for _, c := range v.Conditions {
		ok, err := c.Condition.Eval(d, Scope{}, line)
		if err != nil {
			return Value{}, err
		}
		if ok {
			pv = c.Value
		}
	}
	return pv.Resolve(d, Scope{}, line)
}

// KindOf reports the declared kind found at a qualified dotted path.
func (d *Doc) KindOf(line int, name string) (Kind, error) {
	root, rest := splitThingPath(d.ResolveName(name))
	v, err := d.GetVariable(line, root)
	if err != nil {
		return Kind{}, err
	}
	return d.walkKind(v.Kind, rest, line, func() (Value, error) { return v.Resolve(d, line) })
}

// walkKind follows dotted segments through record fields and list items.
// Objects and maps have no static field kinds, so the value is consulted.
func (d *Doc) walkKind(k Kind, segments []string, line int, value func() (Value, error)) (Kind, error) {
	for i, seg := range segments {
		inner := k.Inner()
		switch inner.Type {
		case KindRecord, KindOrTypeWithVariant:
			name := inner.Name
			if inner.Type == KindOrTypeWithVariant {
				name = inner.Name + "." + inner.Variant
			}
			rec, err := d.GetRecord(line, name)
			if err != nil {
				return Kind{}, err
			}
			field, ok := rec.Fields[seg]
			if !ok {
				return Kind{}, d.notFound(line, "record %s has no field %q", rec.Name, seg)
			}
			k = field
		case KindList:
			if _, err := strconv.Atoi(seg); err != nil {
				return Kind{}, d.notFound(line, "list index %q is not a number", seg)
			}
			k = *inner.Of
		case KindMap:
			k = *inner.Of
		case KindObject, KindOrType:
			if value == nil {
				return Kind{}, d.notFound(line, "cannot infer the kind of field %q", seg)
			}
			v, err := value()
			if err != nil {
				return Kind{}, err
			}
			fv, err := d.walkValue(v, segments[:i+1], line)
			if err != nil {
				return Kind{}, err
			}
			return d.walkKind(fv.GetKind(), segments[i+1:], line, nil)
		default:
			return Kind{}, d.notFound(line, "cannot read %q from a %s value", seg, inner)
		}
	}
	return k, nil
}

// insert adds a thing to the bag, rejecting redeclarations.
func (d *Doc) insert(line int, t Thing) error {
	name := t.thingName()
	if _, exists := d.Bag[name]; exists {
		return ftderr.Forbiddenf(d.ID, line, "%q is already declared", name)
	}
	d.Bag[name] = t
	return nil
}
