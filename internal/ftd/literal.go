// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package ftd

import (
	"encoding/json"
	"math/big"

	"github.com/specialistvlad/ftdgo/internal/ftderr"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// parseLiteral converts raw text into a scalar Value of kind k using cty's
// string conversions, so `10`, `1.5`, `true` are read the same way the
// project config reads them.
func (d *Doc) parseLiteral(raw string, k Kind, source TextSource, line int) (Value, error) {
	switch k.Inner().Type {
	case KindString:
		return StringValue(raw, source), nil
	case KindInteger:
		n, err := convert.Convert(cty.StringVal(raw), cty.Number)
		if err != nil {
			return Value{}, ftderr.Parsef(d.ID, line, "%q is not an integer", raw)
		}
		bf := n.AsBigFloat()
		if !bf.IsInt() {
			return Value{}, ftderr.Parsef(d.ID, line, "%q is not an integer", raw)
		}
		i, acc := bf.Int64()
		if acc != big.Exact {
			return Value{}, ftderr.Parsef(d.ID, line, "%q overflows an integer", raw)
		}
		return IntegerValue(i), nil
	case KindDecimal:
		n, err := convert.Convert(cty.StringVal(raw), cty.Number)
		if err != nil {
			return Value{}, ftderr.Parsef(d.ID, line, "%q is not a decimal", raw)
		}
		f, _ := n.AsBigFloat().Float64()
		return DecimalValue(f), nil
	case KindBoolean:
		b, err := convert.Convert(cty.StringVal(raw), cty.Bool)
		if err != nil {
			return Value{}, ftderr.Parsef(d.ID, line, "%q is not a boolean", raw)
		}
		return BooleanValue(b.True()), nil
	}
	return Value{}, ftderr.TypeMismatchf(d.ID, line, "a %s value cannot be written as a literal", k.Inner())
}

// ToCty converts v into a cty value, resolving nested property values
// against the bag.
func (d *Doc) ToCty(v Value, line int) (cty.Value, error) {
	v = v.Unwrap()
	switch v.Type {
	case ValueNone, ValueOptional:
		return cty.NullVal(cty.DynamicPseudoType), nil
	case ValueString:
		return cty.StringVal(v.Text), nil
	case ValueInteger:
		return cty.NumberIntVal(v.Integer), nil
	case ValueDecimal:
		return cty.NumberFloatVal(v.Decimal), nil
	case ValueBoolean:
		return cty.BoolVal(v.Boolean), nil
	case ValueUI:
		return cty.StringVal(v.Name), nil
	case ValueRecord, ValueObject, ValueOrType:
		if len(v.Fields) == 0 {
			return cty.EmptyObjectVal, nil
		}
		attrs := make(map[string]cty.Value, len(v.Fields))
		for name, field := range v.Fields {
			fv, err := field.Resolve(d, Scope{}, line)
			if err != nil {
				return cty.NilVal, err
			}
			cv, err := d.ToCty(fv, line)
			if err != nil {
				return cty.NilVal, err
			}
			attrs[name] = cv
		}
		return cty.ObjectVal(attrs), nil
	case ValueList:
		if len(v.List) == 0 {
			return cty.EmptyTupleVal, nil
		}
		items := make([]cty.Value, 0, len(v.List))
		for _, item := range v.List {
			iv, err := item.Resolve(d, Scope{}, line)
			if err != nil {
				return cty.NilVal, err
			}
			cv, err := d.ToCty(iv, line)
			if err != nil {
				return cty.NilVal, err
			}
			items = append(items, cv)
		}
		return cty.TupleVal(items), nil
	case ValueMap:
		if len(v.Map) == 0 {
			return cty.EmptyObjectVal, nil
		}
		attrs := make(map[string]cty.Value, len(v.Map))
		for key, entry := range v.Map {
			cv, err := d.ToCty(entry, line)
			if err != nil {
				return cty.NilVal, err
			}
			attrs[key] = cv
		}
		return cty.ObjectVal(attrs), nil
	}
	return cty.NullVal(cty.DynamicPseudoType), nil
}

// ToJSON serialises v as JSON with object keys in lexical order.
func (d *Doc) ToJSON(v Value, line int) (json.RawMessage, error) {
	cv, err := d.ToCty(v, line)
	if err != nil {
		return nil, err
	}
	b, err := ctyjson.SimpleJSONValue{Value: cv}.MarshalJSON()
	if err != nil {
		return nil, ftderr.InvalidInputf(d.ID, "serialising value: %v", err)
	}
	return b, nil
}

// FromCty converts a cty value into a Value. It is used for variables that
// come from the project configuration.
func FromCty(v cty.Value) (Value, error) {
	if v.IsNull() {
		return NoneValue(StringKind()), nil
	}
	if !v.IsKnown() {
		return Value{}, ftderr.InvalidInputf("config", "value is not known")
	}
	ty := v.Type()
	switch {
	case ty == cty.String:
		var s string
		if err := gocty.FromCtyValue(v, &s); err != nil {
			return Value{}, ftderr.InvalidInputf("config", "%v", err)
		}
		return StringValue(s, SourceHeader), nil
	case ty == cty.Bool:
		var b bool
		if err := gocty.FromCtyValue(v, &b); err != nil {
			return Value{}, ftderr.InvalidInputf("config", "%v", err)
		}
		return BooleanValue(b), nil
	case ty == cty.Number:
		bf := v.AsBigFloat()
		if bf.IsInt() {
			if i, acc := bf.Int64(); acc == big.Exact {
				return IntegerValue(i), nil
			}
		}
		f, _ := bf.Float64()
		return DecimalValue(f), nil
	case ty.IsListType() || ty.IsTupleType() || ty.IsSetType():
		var items []PropertyValue
		item := StringKind()
		for it := v.ElementIterator(); it.Next(); {
			_, ev := it.Element()
			iv, err := FromCty(ev)
			if err != nil {
				return Value{}, err
			}
			item = iv.GetKind()
			items = append(items, LiteralPV(iv))
		}
		return ListValue(item, items), nil
	case ty.IsObjectType() || ty.IsMapType():
		fields := make(map[string]PropertyValue)
		for it := v.ElementIterator(); it.Next(); {
			k, ev := it.Element()
			fv, err := FromCty(ev)
			if err != nil {
				return Value{}, err
			}
			fields[k.AsString()] = LiteralPV(fv)
		}
		return ObjectValue(fields), nil
	}
	return Value{}, ftderr.InvalidInputf("config", "unsupported value type %s", ty.FriendlyName())
}
