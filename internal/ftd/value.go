// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package ftd

import (
	"sort"
	"strconv"
	"strings"
)

// ValueType tags the variant held by a Value.
type ValueType int

const (
	ValueNone ValueType = iota
	ValueString
	ValueInteger
	ValueDecimal
	ValueBoolean
	ValueObject
	ValueRecord
	ValueOrType
	ValueList
	ValueOptional
	ValueMap
	ValueUI
)

// TextSource records where a string value came from.
type TextSource int

const (
	SourceHeader TextSource = iota
	SourceCaption
	SourceBody
	SourceDefault
)

func (s TextSource) String() string {
	switch s {
	case SourceCaption:
		return "caption"
	case SourceBody:
		return "body"
	case SourceDefault:
		return "default"
	}
	return "header"
}

// Value is a resolved DDL value. Composite values hold PropertyValues so a
// record field may itself be a reference into the bag.
type Value struct {
	Type    ValueType
	Kind    Kind // None, List and Map item, Optional inner
	Text    string
	Source  TextSource
	Integer int64
	Decimal float64
	Boolean bool
	Name    string // record, or-type, ui component
	Variant string
	Fields  map[string]PropertyValue
	List    []PropertyValue
	Inner   *Value
	Map     map[string]Value
	UIData  map[string]Property
}

func NoneValue(k Kind) Value { return Value{Type: ValueNone, Kind: k.Inner()} }

func StringValue(text string, source TextSource) Value {
	return Value{Type: ValueString, Text: text, Source: source}
}

func IntegerValue(v int64) Value   { return Value{Type: ValueInteger, Integer: v} }
func DecimalValue(v float64) Value { return Value{Type: ValueDecimal, Decimal: v} }
func BooleanValue(v bool) Value    { return Value{Type: ValueBoolean, Boolean: v} }

func ObjectValue(fields map[string]PropertyValue) Value {
	return Value{Type: ValueObject, Fields: fields}
}

func RecordValue(name string, fields map[string]PropertyValue) Value {
	return Value{Type: ValueRecord, Name: name, Fields: fields}
}

func OrTypeValue(name, variant string, fields map[string]PropertyValue) Value {
	return Value{Type: ValueOrType, Name: name, Variant: variant, Fields: fields}
}

func ListValue(item Kind, items []PropertyValue) Value {
	return Value{Type: ValueList, Kind: item, List: items}
}

func MapValue(item Kind, entries map[string]Value) Value {
	return Value{Type: ValueMap, Kind: item, Map: entries}
}

// OptionalValue wraps v; a nil v is the null value of kind k.
func OptionalValue(k Kind, v *Value) Value {
	if v != nil && (v.Type == ValueOptional || v.Type == ValueNone) {
		return *v
	}
	return Value{Type: ValueOptional, Kind: k.Inner(), Inner: v}
}

func UIValue(component string, data map[string]Property) Value {
	return Value{Type: ValueUI, Name: component, UIData: data}
}

// GetKind reports the kind of v.
func (v Value) GetKind() Kind {
	switch v.Type {
	case ValueNone, ValueOptional:
		return OptionalKind(v.Kind)
	case ValueString:
		return StringKind()
	case ValueInteger:
		return IntegerKind()
	case ValueDecimal:
		return DecimalKind()
	case ValueBoolean:
		return BooleanKind()
	case ValueObject:
		return ObjectKind()
	case ValueRecord:
		return RecordKind(v.Name)
	case ValueOrType:
		return OrTypeWithVariantKind(v.Name, v.Variant)
	case ValueList:
		return ListKind(v.Kind)
	case ValueMap:
		return MapKind(v.Kind)
	}
	return UIKind()
}

// Unwrap strips Optional layers holding data.
func (v Value) Unwrap() Value {
	for v.Type == ValueOptional && v.Inner != nil {
		v = *v.Inner
	}
	return v
}

// IsNull reports whether v carries no data.
func (v Value) IsNull() bool {
	u := v.Unwrap()
	return u.Type == ValueNone || (u.Type == ValueOptional && u.Inner == nil)
}

// IsEmpty reports whether v is null, an empty string, list, map or object.
func (v Value) IsEmpty() bool {
	if v.IsNull() {
		return true
	}
	u := v.Unwrap()
	switch u.Type {
	case ValueString:
		return u.Text == ""
	case ValueList:
		return len(u.List) == 0
	case ValueMap:
		return len(u.Map) == 0
	case ValueObject:
		return len(u.Fields) == 0
	}
	return false
}

// ToString renders scalar values; ok is false for null and composite values.
func (v Value) ToString() (s string, ok bool) {
	u := v.Unwrap()
	switch u.Type {
	case ValueString:
		return u.Text, true
	case ValueInteger:
		return strconv.FormatInt(u.Integer, 10), true
	case ValueDecimal:
		return strconv.FormatFloat(u.Decimal, 'f', -1, 64), true
	case ValueBoolean:
		return strconv.FormatBool(u.Boolean), true
	case ValueUI:
		return u.Name, true
	}
	return "", false
}

// Equal compares scalar values by their textual rendering and null values by
// nullness.
func (v Value) Equal(other Value) bool {
	if v.IsNull() || other.IsNull() {
		return v.IsNull() && other.IsNull()
	}
	a, ok := v.ToString()
	if !ok {
		return false
	}
	b, ok := other.ToString()
	return ok && a == b
}

// PropertyValueType tags the variant held by a PropertyValue.
type PropertyValueType int

const (
	// PVValue is a literal.
	PVValue PropertyValueType = iota
	// PVReference names a bag entry by its fully qualified dotted path.
	PVReference
	// PVVariable names a component argument, a local (`@name`) or `$loop$`.
	PVVariable
)

// PropertyValue is an unresolved value.
type PropertyValue struct {
	Type  PropertyValueType
	Value Value
	Name  string
	Kind  Kind
}

func LiteralPV(v Value) PropertyValue {
	return PropertyValue{Type: PVValue, Value: v, Kind: v.GetKind()}
}

func ReferencePV(name string, k Kind) PropertyValue {
	return PropertyValue{Type: PVReference, Name: name, Kind: k}
}

func VariablePV(name string, k Kind) PropertyValue {
	return PropertyValue{Type: PVVariable, Name: name, Kind: k}
}

// GetKind reports the kind of the property value.
func (pv PropertyValue) GetKind() Kind {
	if pv.Type == PVValue {
		return pv.Value.GetKind()
	}
	return pv.Kind
}

// Binding is a resolved argument. Reference is the fully qualified bag path
// (or local key) the value was read from, empty for literals.
type Binding struct {
	Value     Value
	Reference string
}

// Scope holds the argument bindings visible while a component executes.
type Scope struct {
	Args map[string]Binding
}

// With returns a copy of s with name bound to b.
func (s Scope) With(name string, b Binding) Scope {
	args := make(map[string]Binding, len(s.Args)+1)
	for k, v := range s.Args {
		args[k] = v
	}
	args[name] = b
	return Scope{Args: args}
}

// Resolve resolves pv against the bag of d and the bindings of s.
func (pv PropertyValue) Resolve(d *Doc, s Scope, line int) (Value, error) {
	v, _, err := pv.ResolveWithRef(d, s, line)
	return v, err
}

// ResolveWithRef resolves pv and reports the bag path it was read from.
func (pv PropertyValue) ResolveWithRef(d *Doc, s Scope, line int) (Value, string, error) {
	switch pv.Type {
	case PVReference:
		v, err := d.GetValue(line, pv.Name)
		return v, pv.Name, err
	case PVVariable:
		root, rest := splitPath(pv.Name)
		b, ok := s.Args[root]
		if !ok {
			return Value{}, "", d.notFound(line, "argument %q is not bound", root)
		}
		return b.walk(d, rest, line)
	}
	return pv.Value, "", nil
}

func (b Binding) walk(d *Doc, segments []string, line int) (Value, string, error) {
	if len(segments) == 0 {
		return b.Value, b.Reference, nil
	}
	if b.Reference != "" {
		ref := b.Reference + "." + strings.Join(segments, ".")
		v, err := d.GetValue(line, ref)
		return v, ref, err
	}
	v, err := d.walkValue(b.Value, segments, line)
	return v, "", err
}

func splitPath(name string) (string, []string) {
	parts := strings.Split(name, ".")
	return parts[0], parts[1:]
}

// walkValue follows dotted segments into records, objects, or-types, lists
// (by index) and maps.
func (d *Doc) walkValue(v Value, segments []string, line int) (Value, error) {
	for _, seg := range segments {
		v = v.Unwrap()
		switch v.Type {
		case ValueRecord, ValueObject, ValueOrType:
			field, ok := v.Fields[seg]
			if !ok {
				return Value{}, d.notFound(line, "field %q not found", seg)
			}
			next, err := field.Resolve(d, Scope{}, line)
			if err != nil {
				return Value{}, err
			}
			v = next
		case ValueList:
			i, err := strconv.Atoi(seg)
			if err != nil || i < 0 || i >= len(v.List) {
				return Value{}, d.notFound(line, "list index %q out of range", seg)
			}
			next, err := v.List[i].Resolve(d, Scope{}, line)
			if err != nil {
				return Value{}, err
			}
			v = next
		case ValueMap:
			next, ok := v.Map[seg]
			if !ok {
				return Value{}, d.notFound(line, "map key %q not found", seg)
			}
			v = next
		default:
			return Value{}, d.notFound(line, "cannot read %q from a scalar value", seg)
		}
	}
	return v, nil
}

// sortedKeys returns the keys of m in lexical order.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
