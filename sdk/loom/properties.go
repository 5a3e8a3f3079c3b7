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
	"context"
	"reflect"

	"github.com/zclconf/go-cty/cty"
)

// PropertyMap is a bag of named property values. Inputs supplied by the
// program use local property names; the runtime translates keys to wire names
// at the engine boundary.
type PropertyMap map[string]cty.Value

var secretMark interface{} = &struct{}{}

// Secret marks a value so that it is flagged for the engine and never
// displayed in plaintext.
func Secret(v cty.Value) cty.Value {
	return v.Mark(secretMark)
}

var outputType = reflect.TypeOf(Output{})
var outputCapsule = cty.Capsule("Output", outputType)

// OutputVal wraps a not-yet-resolved output so that it can appear inside a
// property bag. The runtime awaits the output before submitting the bag.
func OutputVal(o *Output) cty.Value {
	return cty.CapsuleVal(outputCapsule, o)
}

func isOutputVal(v cty.Value) bool {
	return v.Type().IsCapsuleType() && v.Type().EncapsulatedType() == outputType
}

// Copy returns a shallow copy of the property map.
func (m PropertyMap) Copy() PropertyMap {
	c := make(PropertyMap, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}

// awaitProperties resolves every deferred output inside the map, returning a
// fully concrete map along with the bindings the outputs depend on. Unknown
// outputs stay unknown; rejected outputs fail the whole bag.
func awaitProperties(ctx context.Context, m PropertyMap) (PropertyMap, []*Binding, error) {
	out := make(PropertyMap, len(m))
	var deps []*Binding
	for k, v := range m {
		resolved, vdeps, err := awaitValue(ctx, v)
		if err != nil {
			return nil, nil, err
		}
		out[k] = resolved
		deps = append(deps, vdeps...)
	}
	return out, deps, nil
}

func awaitValue(ctx context.Context, v cty.Value) (cty.Value, []*Binding, error) {
	if isOutputVal(v) {
		o := v.EncapsulatedValue().(*Output)
		val, known, err := o.Value(ctx)
		if err != nil {
			return cty.Value{}, nil, err
		}
		if !known {
			val = cty.UnknownVal(cty.DynamicPseudoType)
		}
		var deps []*Binding
		if o.binding != nil {
			deps = []*Binding{o.binding}
		}
		return val, deps, nil
	}

	if v.IsNull() || !v.IsKnown() {
		return v, nil, nil
	}

	t := v.Type()
	switch {
	case t.IsListType() || t.IsSetType() || t.IsTupleType():
		var deps []*Binding
		var vals []cty.Value
		it := v.ElementIterator()
		for it.Next() {
			_, e := it.Element()
			resolved, edeps, err := awaitValue(ctx, e)
			if err != nil {
				return cty.Value{}, nil, err
			}
			vals = append(vals, resolved)
			deps = append(deps, edeps...)
		}
		if len(vals) == 0 {
			return v, nil, nil
		}
		return cty.TupleVal(vals), deps, nil
	case t.IsMapType() || t.IsObjectType():
		var deps []*Binding
		attrs := map[string]cty.Value{}
		it := v.ElementIterator()
		for it.Next() {
			k, e := it.Element()
			resolved, edeps, err := awaitValue(ctx, e)
			if err != nil {
				return cty.Value{}, nil, err
			}
			attrs[k.AsString()] = resolved
			deps = append(deps, edeps...)
		}
		if len(attrs) == 0 {
			return v, nil, nil
		}
		return cty.ObjectVal(attrs), deps, nil
	}

	return v, nil, nil
}
