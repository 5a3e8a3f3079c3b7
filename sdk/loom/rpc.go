// Copyright 2019-2020, Loomstack, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package loom

import (
	structpb "github.com/golang/protobuf/ptypes/struct"
	"github.com/pkg/errors"
	"github.com/zclconf/go-cty/cty"
)

// unknownValueSentinel is the string the engine substitutes for values that
// are not known until the deployment executes.
const unknownValueSentinel = "04da6b54-80e4-46f7-96ec-b56ff0331ba9"

// Special keys marking a wire struct as a secret envelope.
const (
	specialSigKey    = "4dabf18193072939515e22adb298388d"
	specialSecretSig = "1b47061264138c4ac30d75fd1eb44270"
	secretValueKey   = "value"
)

type marshalOptions struct {
	// KeepUnknowns marshals unknown values as the sentinel instead of
	// dropping them; set during dry-run planning.
	KeepUnknowns bool
}

// marshalProperties converts a property bag to its wire form. Keys are
// assumed to already be wire names. Null values are retained so that the
// engine sees declared-but-unset placeholders.
func marshalProperties(m PropertyMap, opts marshalOptions) (*structpb.Struct, error) {
	fields := make(map[string]*structpb.Value, len(m))
	for k, v := range m {
		fv, err := marshalValue(v, opts)
		if err != nil {
			return nil, errors.Wrapf(err, "marshaling property %q", k)
		}
		if fv != nil {
			fields[k] = fv
		}
	}
	return &structpb.Struct{Fields: fields}, nil
}

// marshalValue converts a single cty value to its wire form. A nil result
// means the value was elided (an unknown under !KeepUnknowns).
func marshalValue(v cty.Value, opts marshalOptions) (*structpb.Value, error) {
	switch {
	case v == cty.NilVal || v.IsNull():
		return &structpb.Value{Kind: &structpb.Value_NullValue{NullValue: structpb.NullValue_NULL_VALUE}}, nil
	case v.HasMark(secretMark):
		unmarked, _ := v.Unmark()
		element, err := marshalValue(unmarked, opts)
		if err != nil {
			return nil, err
		}
		if element == nil {
			return nil, nil
		}
		return &structpb.Value{Kind: &structpb.Value_StructValue{StructValue: &structpb.Struct{
			Fields: map[string]*structpb.Value{
				specialSigKey:  {Kind: &structpb.Value_StringValue{StringValue: specialSecretSig}},
				secretValueKey: element,
			},
		}}}, nil
	case !v.IsKnown():
		if !opts.KeepUnknowns {
			return nil, nil
		}
		return &structpb.Value{Kind: &structpb.Value_StringValue{StringValue: unknownValueSentinel}}, nil
	}

	t := v.Type()
	switch {
	case t.IsListType() || t.IsSetType() || t.IsTupleType():
		var vals []*structpb.Value
		it := v.ElementIterator()
		for it.Next() {
			_, e := it.Element()
			ev, err := marshalValue(e, opts)
			if err != nil {
				return nil, err
			}
			if ev != nil {
				vals = append(vals, ev)
			}
		}
		return &structpb.Value{Kind: &structpb.Value_ListValue{ListValue: &structpb.ListValue{Values: vals}}}, nil
	case t.IsMapType() || t.IsObjectType():
		fields := map[string]*structpb.Value{}
		it := v.ElementIterator()
		for it.Next() {
			k, e := it.Element()
			ev, err := marshalValue(e, opts)
			if err != nil {
				return nil, err
			}
			if ev != nil {
				fields[k.AsString()] = ev
			}
		}
		return &structpb.Value{Kind: &structpb.Value_StructValue{StructValue: &structpb.Struct{Fields: fields}}}, nil
	case t == cty.Bool:
		return &structpb.Value{Kind: &structpb.Value_BoolValue{BoolValue: v.True()}}, nil
	case t == cty.Number:
		f, _ := v.AsBigFloat().Float64()
		return &structpb.Value{Kind: &structpb.Value_NumberValue{NumberValue: f}}, nil
	case t == cty.String:
		return &structpb.Value{Kind: &structpb.Value_StringValue{StringValue: v.AsString()}}, nil
	default:
		return nil, errors.Errorf("unexpected property type %v", t.FriendlyName())
	}
}

// unmarshalProperties converts an engine property struct back into a bag.
// Keys keep their wire names; callers translate as needed.
func unmarshalProperties(s *structpb.Struct) PropertyMap {
	m := PropertyMap{}
	if s == nil {
		return m
	}
	for k, v := range s.Fields {
		m[k] = unmarshalValue(v)
	}
	return m
}

func unmarshalValue(v *structpb.Value) cty.Value {
	if v == nil {
		return cty.NullVal(cty.DynamicPseudoType)
	}
	switch kind := v.Kind.(type) {
	case *structpb.Value_NullValue:
		return cty.NullVal(cty.DynamicPseudoType)
	case *structpb.Value_BoolValue:
		return cty.BoolVal(kind.BoolValue)
	case *structpb.Value_NumberValue:
		return cty.NumberFloatVal(kind.NumberValue)
	case *structpb.Value_StringValue:
		if kind.StringValue == unknownValueSentinel {
			return cty.UnknownVal(cty.DynamicPseudoType)
		}
		return cty.StringVal(kind.StringValue)
	case *structpb.Value_ListValue:
		elems := kind.ListValue.GetValues()
		if len(elems) == 0 {
			return cty.EmptyTupleVal
		}
		vals := make([]cty.Value, len(elems))
		for i, e := range elems {
			vals[i] = unmarshalValue(e)
		}
		return cty.TupleVal(vals)
	case *structpb.Value_StructValue:
		fields := kind.StructValue.GetFields()
		if sig, ok := fields[specialSigKey]; ok {
			if sig.GetStringValue() == specialSecretSig {
				return unmarshalValue(fields[secretValueKey]).Mark(secretMark)
			}
		}
		if len(fields) == 0 {
			return cty.EmptyObjectVal
		}
		attrs := make(map[string]cty.Value, len(fields))
		for k, e := range fields {
			attrs[k] = unmarshalValue(e)
		}
		return cty.ObjectVal(attrs)
	default:
		return cty.NullVal(cty.DynamicPseudoType)
	}
}
